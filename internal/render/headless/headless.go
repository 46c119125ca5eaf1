// Package headless is a Renderer that draws nothing and records what it was asked to do.
package headless

import (
	"fmt"
	"io"
	"log"
	"sync"

	"trio.game/internal/cards"
	"trio.game/internal/reconciler"
)

type Renderer struct {
	log *log.Logger

	mu         sync.Mutex
	hold       bool
	pending    []func()
	lines      []string
	action     reconciler.Action
	board      reconciler.Board
	cardsLeft  int
	selectable bool
	selected   []int
	countdown  int
	hint       []int
	effects    int
}

type Option func(*Renderer)

// WithLogger mirrors every recorded line to l.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// HoldEffects keeps effects running until Finish is called.
func HoldEffects() Option {
	return func(r *Renderer) { r.hold = true }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{log: log.New(io.Discard, "", 0), countdown: -1}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Renderer) record(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.lines = append(r.lines, line)
	r.log.Print(line)
}

func (r *Renderer) Message(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("message: %s", text)
}

func (r *Renderer) Notice(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("notice: %s", text)
}

func (r *Renderer) SetAction(a reconciler.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a != r.action {
		r.record("action: %s", a)
	}
	r.action = a
}

func (r *Renderer) RenderPlayers(rows []reconciler.PlayerRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range rows {
		r.record("player: %s %d rank=%d", p.Name, p.Score, p.Rank)
	}
}

func (r *Renderer) RenderBoard(b reconciler.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = b.Clone()
	r.record("board: %d cards", b.Count())
}

func (r *Renderer) RenderDeck(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cardsLeft = n
}

func (r *Renderer) SetSelectable(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectable = on
}

func (r *Renderer) SetSelected(p []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = append([]int(nil), p...)
}

func (r *Renderer) SetCountdown(s int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countdown = s
}

func (r *Renderer) ShowHint(t [3]cards.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hint = []int{t[0].Position, t[1].Position, t[2].Position}
	r.record("hint: %v", r.hint)
}

func (r *Renderer) Reveal(rv reconciler.Reveal, done func()) {
	r.mu.Lock()
	r.board.Put(rv.Card.Position, rv.Card.Value)
	r.record("reveal: %s (%s)", rv.Card, rv.Reason)
	r.finishLocked(done)
}

func (r *Renderer) Move(m reconciler.Move, done func()) {
	r.mu.Lock()
	r.board.Move(m.From, m.To)
	r.record("move: %d -> %d", m.From, m.To)
	r.finishLocked(done)
}

func (r *Renderer) Blink(b reconciler.Blink, done func()) {
	r.mu.Lock()
	for _, p := range b.Positions {
		r.board.Remove(p)
	}
	r.record("trio: %s %v", b.Player.Name, b.Positions)
	r.finishLocked(done)
}

// finishLocked releases mu, then completes or holds the effect.
func (r *Renderer) finishLocked(done func()) {
	r.effects++
	if r.hold {
		r.pending = append(r.pending, done)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	done()
}

// Finish completes the oldest held effect and reports whether there was one.
func (r *Renderer) Finish() bool {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return false
	}
	done := r.pending[0]
	r.pending = r.pending[1:]
	r.mu.Unlock()
	done()
	return true
}

func (r *Renderer) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *Renderer) Action() reconciler.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.action
}

// Board is the board as drawn so far, which lags the mirror while effects are pending.
func (r *Renderer) Board() reconciler.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.Clone()
}

func (r *Renderer) CardsLeft() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cardsLeft
}

func (r *Renderer) Countdown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countdown
}

func (r *Renderer) Selectable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectable
}

func (r *Renderer) Effects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effects
}
