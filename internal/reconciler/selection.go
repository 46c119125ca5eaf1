package reconciler

import (
	"context"
	"sort"
	"time"
)

// selection is the viewer's local trio picking mode. It is only touched under Reconciler.mu.
type selection struct {
	active bool
	chosen map[int]bool
	cancel context.CancelFunc
}

func (s *selection) positions() []int {
	out := make([]int, 0, len(s.chosen))
	for p := range s.chosen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func (r *Reconciler) enterSelection() {
	r.exitSelection()
	if r.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.sel = selection{active: true, chosen: map[int]bool{}, cancel: cancel}
	r.out.SetSelectable(true)
	r.out.SetSelected(nil)
	r.out.SetCountdown(r.countdown)
	go r.runCountdown(ctx, r.countdown)
}

// runCountdown ticks the visible counter down. Each tick is published under mu, so a tick
// never lands after the selection that owns it was exited.
func (r *Reconciler) runCountdown(ctx context.Context, n int) {
	t := time.NewTicker(r.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if n > 0 {
			n--
		}
		r.mu.Lock()
		if ctx.Err() == nil {
			r.out.SetCountdown(n)
		}
		r.mu.Unlock()
		if n == 0 {
			return
		}
	}
}

func (r *Reconciler) exitSelection() {
	if !r.sel.active {
		return
	}
	r.sel.cancel()
	r.sel = selection{}
	r.out.SetSelectable(false)
	r.out.SetSelected(nil)
	r.out.SetCountdown(-1)
}
