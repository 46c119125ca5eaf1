package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"trio.game/internal/persistence/journal"
	"trio.game/internal/protocol"
	"trio.game/internal/reconciler"
	"trio.game/internal/render/headless"
	"trio.game/internal/trio"
)

func main() {
	var (
		dir      = flag.String("journal", "", "journal dir containing journal-*.jsonl.zst")
		session  = flag.String("session", "", "replay only this session id (optional)")
		validate = flag.Bool("validate", false, "check every frame against the wire schemas")
		asJSON   = flag.Bool("json", false, "print the final mirror as a snapshot document")
		verbose  = flag.Bool("v", false, "print every rendered line")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "missing -journal")
		os.Exit(2)
	}
	sessions, err := load(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read journal:", err)
		os.Exit(1)
	}

	var v *protocol.Validator
	if *validate {
		if v, err = protocol.NewValidator(); err != nil {
			fmt.Fprintln(os.Stderr, "schemas:", err)
			os.Exit(1)
		}
	}
	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stdout, "[replay] ", 0)
	}

	failed := false
	for _, s := range sessions {
		if *session != "" && s.id != *session {
			continue
		}
		res, err := replay(s, v, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "session %s: %v\n", s.id, err)
			failed = true
			continue
		}
		res.print(os.Stdout, *asJSON)
		if res.invalid > 0 {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

type session struct {
	id      string
	game    string
	entries []journal.Entry
}

// load groups the journal entries by session, in order of first appearance.
func load(dir string) ([]*session, error) {
	r, err := journal.OpenDir(dir)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	byID := map[string]*session{}
	var out []*session
	for r.Next() {
		e := r.Entry()
		s, ok := byID[e.Session]
		if !ok {
			s = &session{id: e.Session, game: e.Game}
			byID[e.Session] = s
			out = append(out, s)
		}
		s.entries = append(s.entries, e)
	}
	return out, r.Err()
}

type result struct {
	session   string
	game      string
	events    int
	snapshots int
	invalid   int
	final     reconciler.GameState
}

// recorded hands the reconciler the snapshots that were fetched during the live session.
type recorded struct {
	entries []journal.Entry
	next    int
}

var errNoSnapshot = errors.New("no recorded snapshot at this point")

func (f *recorded) Fetch(context.Context) (protocol.Snapshot, error) {
	if f.next >= len(f.entries) || f.entries[f.next].Kind != journal.KindSnapshot {
		return protocol.Snapshot{}, errNoSnapshot
	}
	raw := f.entries[f.next].Data
	f.next++
	return protocol.DecodeSnapshot(raw)
}

type offline struct{}

func (offline) Send(context.Context, protocol.Action) error {
	return errors.New("replay is read only")
}

func replay(s *session, v *protocol.Validator, logger *log.Logger) (result, error) {
	res := result{session: s.id, game: s.game}
	src := &recorded{entries: s.entries}
	rec := reconciler.New(reconciler.Config{
		Renderer: headless.New(headless.WithLogger(logger)),
		Sender:   offline{},
		Fetcher:  src,
		Logger:   logger,
	})
	defer rec.Close()
	ctx := context.Background()

	for src.next < len(src.entries) {
		e := src.entries[src.next]
		switch e.Kind {
		case journal.KindSnapshot:
			res.snapshots++
			if v != nil {
				if err := v.ValidateSnapshot(e.Data); err != nil {
					res.invalid++
					fmt.Fprintf(os.Stderr, "seq %d: snapshot: %v\n", e.Seq, err)
				}
			}
			if err := rec.Resync(ctx); err != nil {
				return res, fmt.Errorf("seq %d: %w", e.Seq, err)
			}
		case journal.KindEvent:
			src.next++
			res.events++
			if v != nil {
				if err := v.ValidateEvent(e.Data); err != nil {
					res.invalid++
					fmt.Fprintf(os.Stderr, "seq %d: event: %v\n", e.Seq, err)
				}
			}
			ev, err := protocol.DecodeEvent(e.Data)
			if err != nil {
				return res, fmt.Errorf("seq %d: %w", e.Seq, err)
			}
			before := src.next
			if err := rec.Apply(ctx, ev); err != nil {
				return res, fmt.Errorf("seq %d: %w", e.Seq, err)
			}
			res.snapshots += src.next - before
		default:
			return res, fmt.Errorf("seq %d: unknown entry kind %q", e.Seq, e.Kind)
		}
	}
	res.final = rec.State()
	return res, nil
}

func (r result) print(w io.Writer, asJSON bool) {
	if asJSON {
		snap := r.final.Snapshot()
		snap.ID = r.game
		b, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Fprintln(w, string(b))
		return
	}
	fmt.Fprintf(w, "session %s game=%s events=%d snapshots=%d invalid=%d\n",
		r.session, r.game, r.events, r.snapshots, r.invalid)
	fmt.Fprintf(w, "  state=%s cards_left=%d queue=[%s]\n",
		r.final.State, r.final.CardsLeft, strings.Join(r.final.Queue, " "))
	for _, row := range r.final.Rows("") {
		fmt.Fprintf(w, "  %-20s %3d\n", row.Name, row.Score)
	}
	board := r.final.Board.Cards()
	fmt.Fprintf(w, "  board: %d cards, %d trios\n", len(board), len(trio.FindAllTrios(board)))
}
