// Package bot plays a game automatically: it declares as soon as the board holds a trio and
// picks the first trio it finds when it becomes the selector.
package bot

import (
	"context"
	"io"
	"log"
	"time"

	"trio.game/internal/cards"
	"trio.game/internal/reconciler"
	"trio.game/internal/trio"
)

// Game is the part of the Reconciler the bot drives.
type Game interface {
	State() reconciler.GameState
	LegalAction() reconciler.Action
	Selecting() bool
	Selected() []int
	Act(ctx context.Context) error
	ToggleCard(ctx context.Context, pos int) error
}

type Config struct {
	// Think delays every move.
	Think time.Duration
	// Lobby lets the bot join, start and restart games, not only play them.
	Lobby  bool
	Logger *log.Logger
}

type Player struct {
	cfg  Config
	log  *log.Logger
	game Game
	poke chan struct{}
}

func New(cfg Config) *Player {
	p := &Player{cfg: cfg, log: cfg.Logger, poke: make(chan struct{}, 1)}
	if p.log == nil {
		p.log = log.New(io.Discard, "", 0)
	}
	return p
}

// Attach sets the game to play. It must be called before Run.
func (p *Player) Attach(g Game) { p.game = g }

// Wrap returns a renderer that forwards to inner and wakes the bot whenever the offered
// action or the selection mode changes.
func (p *Player) Wrap(inner reconciler.Renderer) reconciler.Renderer {
	return &watcher{Renderer: inner, p: p}
}

// Poke schedules a move evaluation.
func (p *Player) Poke() {
	select {
	case p.poke <- struct{}{}:
	default:
	}
}

func (p *Player) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.poke:
		}
		if p.cfg.Think > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.cfg.Think):
			}
		}
		p.Step(ctx)
	}
}

// Step makes at most one move.
func (p *Player) Step(ctx context.Context) {
	if p.game == nil {
		return
	}
	if p.game.Selecting() {
		p.pick(ctx)
		return
	}
	a := p.game.LegalAction()
	switch a {
	case reconciler.ActionTrio:
		if _, ok := p.findTrio(); ok {
			p.act(ctx, a)
		}
	case reconciler.ActionJoin, reconciler.ActionStart, reconciler.ActionFinish, reconciler.ActionAgain:
		if p.cfg.Lobby {
			p.act(ctx, a)
		}
	}
}

func (p *Player) act(ctx context.Context, a reconciler.Action) {
	p.log.Printf("action %s", a.Label)
	if err := p.game.Act(ctx); err != nil {
		p.log.Printf("action %s: %v", a.Label, err)
	}
}

func (p *Player) findTrio() ([3]cards.Card, bool) {
	return trio.FindFirstTrio(p.game.State().Board.Cards())
}

// pick completes the current selection with the first trio on the board.
func (p *Player) pick(ctx context.Context) {
	t, ok := p.findTrio()
	if !ok {
		p.log.Printf("selecting but no trio on the board")
		return
	}
	want := trio.Positions(t)
	chosen := map[int]bool{}
	for _, pos := range p.game.Selected() {
		chosen[pos] = true
	}
	// Drop picks that are not part of the trio, then add the missing ones.
	for pos := range chosen {
		if pos != want[0] && pos != want[1] && pos != want[2] {
			if err := p.game.ToggleCard(ctx, pos); err != nil {
				p.log.Printf("unselect %d: %v", pos, err)
				return
			}
		}
	}
	for _, pos := range want {
		if chosen[pos] {
			continue
		}
		if err := p.game.ToggleCard(ctx, pos); err != nil {
			p.log.Printf("select %d: %v", pos, err)
			return
		}
	}
	p.log.Printf("selected %v", want)
}

type watcher struct {
	reconciler.Renderer
	p *Player
}

func (w *watcher) SetAction(a reconciler.Action) {
	w.Renderer.SetAction(a)
	w.p.Poke()
}

func (w *watcher) SetSelectable(on bool) {
	w.Renderer.SetSelectable(on)
	if on {
		w.p.Poke()
	}
}
