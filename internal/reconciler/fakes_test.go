package reconciler

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"trio.game/internal/cards"
	"trio.game/internal/protocol"
)

type recorder struct {
	mu         sync.Mutex
	holdFx     bool
	messages   []string
	notices    []string
	actions    []Action
	boards     []Board
	decks      []int
	selectable []bool
	selected   [][]int
	countdowns []int
	hints      [][3]cards.Card
	effects    []string
	pendingFx  []func()
}

func (r *recorder) Message(text string) {
	r.mu.Lock()
	r.messages = append(r.messages, text)
	r.mu.Unlock()
}
func (r *recorder) Notice(text string) {
	r.mu.Lock()
	r.notices = append(r.notices, text)
	r.mu.Unlock()
}
func (r *recorder) SetAction(a Action)        { r.mu.Lock(); r.actions = append(r.actions, a); r.mu.Unlock() }
func (r *recorder) RenderPlayers([]PlayerRow) {}
func (r *recorder) RenderBoard(b Board)       { r.mu.Lock(); r.boards = append(r.boards, b); r.mu.Unlock() }
func (r *recorder) RenderDeck(n int)          { r.mu.Lock(); r.decks = append(r.decks, n); r.mu.Unlock() }
func (r *recorder) SetSelectable(on bool) {
	r.mu.Lock()
	r.selectable = append(r.selectable, on)
	r.mu.Unlock()
}
func (r *recorder) SetSelected(p []int) {
	r.mu.Lock()
	r.selected = append(r.selected, append([]int(nil), p...))
	r.mu.Unlock()
}
func (r *recorder) SetCountdown(s int) {
	r.mu.Lock()
	r.countdowns = append(r.countdowns, s)
	r.mu.Unlock()
}
func (r *recorder) ShowHint(t [3]cards.Card) {
	r.mu.Lock()
	r.hints = append(r.hints, t)
	r.mu.Unlock()
}

func (r *recorder) effect(name string, done func()) {
	r.mu.Lock()
	r.effects = append(r.effects, name)
	hold := r.holdFx
	if hold {
		r.pendingFx = append(r.pendingFx, done)
	}
	r.mu.Unlock()
	if !hold {
		done()
	}
}

func (r *recorder) Reveal(rv Reveal, done func()) {
	r.effect("reveal "+strconv.Itoa(rv.Card.Position)+" "+string(rv.Reason), done)
}
func (r *recorder) Move(m Move, done func()) {
	r.effect("move "+strconv.Itoa(m.From)+"->"+strconv.Itoa(m.To), done)
}
func (r *recorder) Blink(b Blink, done func()) {
	r.effect("blink "+strconv.Itoa(len(b.Cards)), done)
}

// finishOne completes the oldest held effect.
func (r *recorder) finishOne() bool {
	r.mu.Lock()
	if len(r.pendingFx) == 0 {
		r.mu.Unlock()
		return false
	}
	done := r.pendingFx[0]
	r.pendingFx = r.pendingFx[1:]
	r.mu.Unlock()
	done()
	return true
}

func (r *recorder) lastAction() Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return Action{}
	}
	return r.actions[len(r.actions)-1]
}

func (r *recorder) lastCountdown() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.countdowns) == 0 {
		return 0, false
	}
	return r.countdowns[len(r.countdowns)-1], true
}

func (r *recorder) effectLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.effects...)
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []protocol.Action
}

func (f *fakeSender) Send(_ context.Context, a protocol.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, a)
	return f.err
}

func (f *fakeSender) last() (protocol.Action, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return protocol.Action{}, false
	}
	return f.sent[len(f.sent)-1], true
}

type fakeFetcher struct {
	mu    sync.Mutex
	snap  protocol.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (protocol.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return protocol.Snapshot{}, f.err
	}
	return f.snap, nil
}

func (f *fakeFetcher) set(s protocol.Snapshot) {
	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()
}

var errBoom = errors.New("boom")

func wireBoard(values ...int) []*protocol.WireCard {
	out := make([]*protocol.WireCard, len(values))
	for i, v := range values {
		if v >= 0 {
			out[i] = &protocol.WireCard{Value: v}
		}
	}
	return out
}

func players(ids ...string) map[string]protocol.Player {
	m := map[string]protocol.Player{}
	for _, id := range ids {
		m[id] = protocol.Player{ID: id, Name: "name-" + id}
	}
	return m
}

func intp(n int) *int { return &n }

type harness struct {
	r       *Reconciler
	out     *recorder
	sender  *fakeSender
	fetcher *fakeFetcher
}

func newHarness(viewer string, snap protocol.Snapshot) *harness {
	h := &harness{out: &recorder{}, sender: &fakeSender{}, fetcher: &fakeFetcher{snap: snap}}
	h.r = New(Config{
		Viewer:   Viewer{UserID: viewer, GameID: "g1"},
		Renderer: h.out,
		Sender:   h.sender,
		Fetcher:  h.fetcher,
	})
	h.r.ApplySnapshot(snap, false)
	return h
}
