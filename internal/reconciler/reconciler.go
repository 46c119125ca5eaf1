// Package reconciler keeps a local mirror of one game in step with the server's event
// stream, decides the legal action of the viewer and schedules the visual effects.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"trio.game/internal/protocol"
	"trio.game/internal/sequencer"
	"trio.game/internal/trio"
)

var (
	ErrUnhandledEvent = errors.New("reconciler: unhandled event")
	ErrActionDisabled = errors.New("reconciler: no action available")
	ErrNotSelecting   = errors.New("reconciler: not in selection mode")
	ErrEmptySlot      = errors.New("reconciler: no card at position")
)

// StateChangeFunc observes game state transitions caused by events. It runs after the
// reconciler released its lock and gets a copy of the mirror.
type StateChangeFunc func(prev, next protocol.GameState, g GameState)

type Config struct {
	Viewer    Viewer
	Renderer  Renderer
	Sender    ActionSender
	Fetcher   SnapshotFetcher
	Sequencer *sequencer.Sequencer
	Logger    *log.Logger

	// Countdown is the number of seconds shown while selecting. Default 5.
	Countdown int
	// Tick is the countdown step. Default one second.
	Tick time.Duration

	OnStateChange StateChangeFunc
}

type Reconciler struct {
	viewer    Viewer
	out       Renderer
	sender    ActionSender
	fetcher   SnapshotFetcher
	seq       *sequencer.Sequencer
	log       *log.Logger
	countdown int
	tick      time.Duration
	onChange  StateChangeFunc

	mu       sync.Mutex
	game     GameState
	current  Action
	sel      selection
	awaiting bool // a three-card selection was submitted and the verdict is pending
	closed   bool
}

func New(cfg Config) *Reconciler {
	r := &Reconciler{
		viewer:    cfg.Viewer,
		out:       cfg.Renderer,
		sender:    cfg.Sender,
		fetcher:   cfg.Fetcher,
		seq:       cfg.Sequencer,
		log:       cfg.Logger,
		countdown: cfg.Countdown,
		tick:      cfg.Tick,
		onChange:  cfg.OnStateChange,
		game:      newGameState(),
		current:   ActionWait,
	}
	if r.log == nil {
		r.log = log.New(io.Discard, "", 0)
	}
	if r.seq == nil {
		r.seq = sequencer.New(sequencer.WithLogger(r.log))
	}
	if r.countdown <= 0 {
		r.countdown = 5
	}
	if r.tick <= 0 {
		r.tick = time.Second
	}
	return r
}

// State returns a copy of the mirror.
func (r *Reconciler) State() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Clone()
}

// LegalAction is the action currently offered to the viewer.
func (r *Reconciler) LegalAction() Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Reconciler) Selecting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel.active
}

// Selected lists the positions picked so far in the current selection.
func (r *Reconciler) Selected() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel.positions()
}

// Apply folds one event into the mirror. Events that require a resync fetch the snapshot
// synchronously, so the next event is applied on top of it.
func (r *Reconciler) Apply(ctx context.Context, ev protocol.Event) error {
	r.mu.Lock()
	prev := r.game.State
	err := r.applyLocked(ctx, ev)
	next := r.game.State
	var snap GameState
	if err == nil && prev != next && r.onChange != nil {
		snap = r.game.Clone()
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if prev != next && r.onChange != nil {
		r.onChange(prev, next, snap)
	}
	return nil
}

func (r *Reconciler) applyLocked(ctx context.Context, ev protocol.Event) error {
	resync, skipBoard := false, false

	switch e := ev.(type) {
	case protocol.GameStateChanged:
		r.game.State = e.State
		r.awaiting = false
		r.exitSelection()
		r.out.Message(stateMessage(e.State))
		resync, skipBoard = true, e.State == protocol.StatePlaying

	case protocol.PlayerJoined:
		r.game.Players[e.Player.ID] = e.Player
		if _, ok := r.game.Scores[e.Player.ID]; !ok {
			r.game.Scores[e.Player.ID] = 0
		}
		r.out.Message(r.displayName(e.Player) + " joined the game")
		r.renderPlayers()
		resync = true

	case protocol.PlayerLeft:
		name := r.displayName(e.Player)
		delete(r.game.Players, e.Player.ID)
		delete(r.game.Scores, e.Player.ID)
		r.game.Queue = r.game.knownOnly(r.game.Queue)
		r.out.Message(name + " left the game")
		r.renderPlayers()
		resync = true

	case protocol.PlayerSelects:
		r.applyQueue(e)
		if e.Player.ID == r.viewer.UserID && r.viewer.UserID != "" {
			r.awaiting = false
			r.enterSelection()
		}

	case protocol.PlayerDeclares:
		r.applyQueue(e)

	case protocol.SelectTimeout, protocol.SelectGiveUp, protocol.SelectNoLonger, protocol.SelectFailure:
		qe := e.(protocol.QueueEvent)
		r.applyQueue(qe)
		r.resolveOwn(qe.Change().Player.ID)

	case protocol.SelectSuccess:
		blink := Blink{Player: e.Player, Positions: append([]int(nil), e.Positions...)}
		for _, p := range e.Positions {
			if c, ok := r.game.Board.Remove(p); ok {
				blink.Cards = append(blink.Cards, c)
			}
		}
		r.applyQueue(e)
		r.resolveOwn(e.Player.ID)
		r.enqueueBlink(blink)

	case protocol.CardsDrawn:
		if msg := drawMessage(e.Reason); msg != "" {
			r.out.Message(msg)
		}
		for i, pos := range e.Positions {
			r.game.Board.Put(pos, e.Cards[i].Value)
			c, _ := r.game.Board.At(pos)
			r.enqueueReveal(Reveal{Card: c, Reason: e.Reason})
		}
		r.game.CardsLeft = e.NbCardsBeforeDraw - len(e.Cards)
		if r.game.CardsLeft < 0 {
			r.game.CardsLeft = 0
		}
		r.out.RenderDeck(r.game.CardsLeft)

	case protocol.CardsMoved:
		for i, from := range e.From {
			to := e.To[i]
			m := Move{From: from, To: to}
			if c, ok := r.game.Board.Move(from, to); ok {
				m.Value, m.Known = c.Value, true
			} else {
				r.log.Printf("cards_moved: slot %d is empty in the mirror", from)
			}
			r.enqueueMove(m)
		}

	default:
		return fmt.Errorf("%w: %T", ErrUnhandledEvent, ev)
	}

	if resync {
		if err := r.resyncLocked(ctx, skipBoard); err != nil {
			r.log.Printf("resync after %s: %v", ev.EventType(), err)
		}
	}
	r.publishAction()
	return nil
}

// applyQueue takes the queue, score and status message of a selection queue event.
func (r *Reconciler) applyQueue(ev protocol.QueueEvent) {
	q := ev.Change()
	if q.Player.ID != "" {
		if _, ok := r.game.Players[q.Player.ID]; !ok {
			r.game.Players[q.Player.ID] = q.Player
		}
	}
	if q.NewScore != nil {
		r.game.Scores[q.Player.ID] = *q.NewScore
	}
	r.game.Queue = r.game.knownOnly(q.Queue)
	if len(r.game.Queue) != len(q.Queue) {
		r.log.Printf("%s: queue names unknown players: %v", ev.EventType(), q.Queue)
	}
	r.out.Message(r.queueMessage(ev))
	r.renderPlayers()
}

// resolveOwn ends the viewer's selection when the event is about the viewer.
func (r *Reconciler) resolveOwn(playerID string) {
	if r.viewer.UserID == "" || playerID != r.viewer.UserID {
		return
	}
	r.awaiting = false
	r.exitSelection()
}

func (r *Reconciler) publishAction() {
	a := LegalAction(r.game, r.viewer.UserID)
	if r.awaiting && a == ActionCancel {
		a = ActionWait
	}
	r.current = a
	r.out.SetAction(a)
}

func (r *Reconciler) renderPlayers() {
	r.out.RenderPlayers(r.game.Rows(r.viewer.UserID))
}

// Resync replaces the whole mirror with a freshly fetched snapshot.
func (r *Reconciler) Resync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.resyncLocked(ctx, false)
	r.publishAction()
	return err
}

func (r *Reconciler) resyncLocked(ctx context.Context, skipBoard bool) error {
	if r.fetcher == nil {
		return errors.New("reconciler: no snapshot fetcher")
	}
	snap, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.out.Notice("Could not reload the game: " + err.Error())
		return err
	}
	r.applySnapshotLocked(snap, skipBoard)
	return nil
}

// ApplySnapshot replaces the mirror with snap. With skipBoard the local board is kept,
// since it is being rebuilt by draw events.
func (r *Reconciler) ApplySnapshot(snap protocol.Snapshot, skipBoard bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applySnapshotLocked(snap, skipBoard)
	r.publishAction()
}

func (r *Reconciler) applySnapshotLocked(snap protocol.Snapshot, skipBoard bool) {
	g := FromSnapshot(snap)
	if skipBoard {
		g.Board = r.game.Board
	}
	r.game = g

	if r.sel.active && (g.State != protocol.StatePlaying || g.QueueRank(r.viewer.UserID) != 0) {
		r.exitSelection()
	}
	if r.awaiting && g.QueueRank(r.viewer.UserID) != 0 {
		r.awaiting = false
	}
	r.renderPlayers()
	if !skipBoard {
		r.out.RenderBoard(g.Board.Clone())
	}
	r.out.RenderDeck(g.CardsLeft)
}

// Act submits the action currently offered.
func (r *Reconciler) Act(ctx context.Context) error {
	r.mu.Lock()
	a := r.current
	r.mu.Unlock()
	if !a.Enabled() {
		return ErrActionDisabled
	}
	return r.submit(ctx, protocol.Action{Type: a.Type})
}

// ToggleCard picks or unpicks the card at pos. The third pick submits the selection.
func (r *Reconciler) ToggleCard(ctx context.Context, pos int) error {
	r.mu.Lock()
	if !r.sel.active {
		r.mu.Unlock()
		return ErrNotSelecting
	}
	if _, ok := r.game.Board.At(pos); !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w %d", ErrEmptySlot, pos)
	}
	if r.sel.chosen[pos] {
		delete(r.sel.chosen, pos)
	} else {
		r.sel.chosen[pos] = true
	}
	picked := r.sel.positions()
	if len(picked) < 3 {
		r.out.SetSelected(picked)
		r.mu.Unlock()
		return nil
	}
	r.exitSelection()
	r.awaiting = true
	r.current = ActionWait
	r.out.SetAction(ActionWait)
	r.mu.Unlock()

	return r.submit(ctx, protocol.SelectTrio(picked))
}

func (r *Reconciler) submit(ctx context.Context, a protocol.Action) error {
	if r.sender == nil {
		return errors.New("reconciler: no action sender")
	}
	if err := r.sender.Send(ctx, a); err != nil {
		r.log.Printf("action %s failed: %v", a.Type, err)
		r.out.Notice(fmt.Sprintf("%s failed: %v", a.Type, err))
		return err
	}
	return nil
}

// Hint shows the first trio of the mirrored board, if any.
func (r *Reconciler) Hint() ([3]int, bool) {
	r.mu.Lock()
	cs := r.game.Board.Cards()
	r.mu.Unlock()
	t, ok := trio.FindFirstTrio(cs)
	if !ok {
		r.out.Notice("No trio on the board")
		return [3]int{}, false
	}
	r.out.ShowHint(t)
	return trio.Positions(t), true
}

// Close stops the selection countdown. Later events are still applied.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.exitSelection()
}

func (r *Reconciler) enqueueReveal(rv Reveal) {
	r.seq.Enqueue(fmt.Sprintf("reveal %d (%s)", rv.Card.Position, rv.Reason), func(tok *sequencer.Token) bool {
		r.out.Reveal(rv, r.completer(tok))
		return false
	})
}

func (r *Reconciler) enqueueMove(m Move) {
	r.seq.Enqueue(fmt.Sprintf("move %d->%d", m.From, m.To), func(tok *sequencer.Token) bool {
		r.out.Move(m, r.completer(tok))
		return false
	})
}

func (r *Reconciler) enqueueBlink(b Blink) {
	r.seq.Enqueue(fmt.Sprintf("blink %v", b.Positions), func(tok *sequencer.Token) bool {
		r.out.Blink(b, r.completer(tok))
		return false
	})
}

func (r *Reconciler) completer(tok *sequencer.Token) func() {
	return func() {
		if err := tok.Done(); err != nil {
			r.log.Printf("effect %s: %v", tok.Name(), err)
		}
	}
}
