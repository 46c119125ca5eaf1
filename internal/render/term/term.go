// Package term draws the game in a terminal with pterm.
package term

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"trio.game/internal/cards"
	"trio.game/internal/protocol"
	"trio.game/internal/reconciler"
)

const columns = 4

type Renderer struct {
	out    io.Writer
	effect time.Duration

	mu         sync.Mutex
	board      reconciler.Board
	players    []reconciler.PlayerRow
	cardsLeft  int
	action     reconciler.Action
	selectable bool
	selected   map[int]bool
	hint       map[int]bool
	blinking   map[int]bool
	countdown  int
}

// New draws to w (stdout when nil). Effects last effect each; zero completes them at once.
func New(w io.Writer, effect time.Duration) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{out: w, effect: effect, countdown: -1}
}

func (r *Renderer) println(s string) {
	_, _ = io.WriteString(r.out, strings.TrimRight(s, "\n")+"\n")
}

func (r *Renderer) Message(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.println(pterm.Info.Sprint(text))
}

func (r *Renderer) Notice(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.println(pterm.Warning.Sprint(text))
}

func (r *Renderer) SetAction(a reconciler.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a == r.action {
		return
	}
	r.action = a
	r.println(actionLine(a))
}

func actionLine(a reconciler.Action) string {
	if !a.Enabled() {
		return pterm.Gray("[ " + a.Label + " ]")
	}
	return pterm.LightGreen("[ "+a.Label+" ]") + pterm.Gray("  type 'action'")
}

func (r *Renderer) RenderPlayers(rows []reconciler.PlayerRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = append([]reconciler.PlayerRow(nil), rows...)
	r.println(r.playersTable())
}

func (r *Renderer) playersTable() string {
	data := pterm.TableData{{"Player", "Score", "Status"}}
	for _, p := range r.players {
		name := p.Name
		if p.You {
			name = pterm.LightCyan(name + " (you)")
		}
		status := ""
		switch {
		case p.Rank == 0:
			status = pterm.LightYellow("selecting")
		case p.Rank > 0:
			status = fmt.Sprintf("waiting #%d", p.Rank)
		}
		data = append(data, []string{name, fmt.Sprint(p.Score), status})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return s
}

func (r *Renderer) RenderBoard(b reconciler.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = b.Clone()
	r.hint = nil
	r.println(r.boardTable())
}

// boardTable lays the slots out row by row, columns wide.
func (r *Renderer) boardTable() string {
	if r.board.Len() == 0 {
		return pterm.Gray("(empty board)")
	}
	var data pterm.TableData
	row := []string{}
	for pos := 0; pos < r.board.Len(); pos++ {
		row = append(row, r.cell(pos))
		if len(row) == columns {
			data = append(data, row)
			row = []string{}
		}
	}
	if len(row) > 0 {
		for len(row) < columns {
			row = append(row, "")
		}
		data = append(data, row)
	}
	s, err := pterm.DefaultTable.WithBoxed().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return s
}

func (r *Renderer) cell(pos int) string {
	c, ok := r.board.At(pos)
	if !ok {
		return pterm.Gray(fmt.Sprintf("%2d  ·", pos))
	}
	text := fmt.Sprintf("%2d  %s", pos, CardLabel(c.Value))
	switch {
	case r.blinking[pos]:
		return pterm.BgLightYellow.Sprint(text)
	case r.selected[pos]:
		return pterm.BgCyan.Sprint(text)
	case r.hint[pos]:
		return pterm.BgLightMagenta.Sprint(text)
	}
	return text
}

// CardLabel is a short colored description of a card value.
func CardLabel(value int) string {
	d := cards.Describe(value)
	glyph := map[int]string{0: "O", 1: "◇", 2: "~"}[d.Shape]
	if glyph == "" {
		glyph = "?"
	}
	fill := map[int]string{0: "■", 1: "▤", 2: "□"}[d.Fill]
	if fill == "" {
		fill = "?"
	}
	s := fmt.Sprintf("%s %s", strings.Repeat(glyph, d.Count()), fill)
	switch d.Color {
	case 0:
		return pterm.LightRed(s)
	case 1:
		return pterm.LightGreen(s)
	case 2:
		return pterm.LightMagenta(s)
	}
	return s
}

func (r *Renderer) RenderDeck(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == r.cardsLeft {
		return
	}
	r.cardsLeft = n
	r.println(pterm.Gray(fmt.Sprintf("%d cards left in the deck", n)))
}

func (r *Renderer) SetSelectable(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on == r.selectable {
		return
	}
	r.selectable = on
	if on {
		r.println(pterm.LightYellow("Your turn: pick 3 cards with 'select N'"))
	}
}

func (r *Renderer) SetSelected(positions []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = map[int]bool{}
	for _, p := range positions {
		r.selected[p] = true
	}
	if len(positions) > 0 {
		r.println(r.boardTable())
	}
}

func (r *Renderer) SetCountdown(seconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.countdown
	r.countdown = seconds
	if seconds >= 0 && seconds != prev {
		r.println(pterm.LightYellow(fmt.Sprintf("%ds", seconds)))
	}
}

func (r *Renderer) ShowHint(t [3]cards.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hint = map[int]bool{}
	for _, c := range t {
		r.hint[c.Position] = true
	}
	r.println(r.boardTable())
}

func (r *Renderer) Reveal(rv reconciler.Reveal, done func()) {
	r.mu.Lock()
	r.board.Put(rv.Card.Position, rv.Card.Value)
	line := fmt.Sprintf("+ %2d  %s", rv.Card.Position, CardLabel(rv.Card.Value))
	if rv.Reason != protocol.DrawRefill {
		line += pterm.Gray(" (" + string(rv.Reason) + ")")
	}
	r.println(line)
	r.mu.Unlock()
	r.after(done)
}

func (r *Renderer) Move(m reconciler.Move, done func()) {
	r.mu.Lock()
	r.board.Move(m.From, m.To)
	r.println(pterm.Gray(fmt.Sprintf("  %2d -> %2d", m.From, m.To)))
	r.mu.Unlock()
	r.after(done)
}

func (r *Renderer) Blink(b reconciler.Blink, done func()) {
	r.mu.Lock()
	r.blinking = map[int]bool{}
	for _, p := range b.Positions {
		r.blinking[p] = true
	}
	r.println(r.boardTable())
	r.mu.Unlock()

	r.after(func() {
		r.mu.Lock()
		positions := append([]int(nil), b.Positions...)
		sort.Ints(positions)
		for _, p := range positions {
			r.board.Remove(p)
		}
		r.blinking = nil
		r.hint = nil
		r.println(r.boardTable())
		r.mu.Unlock()
		done()
	})
}

func (r *Renderer) after(done func()) {
	if r.effect <= 0 {
		done()
		return
	}
	time.AfterFunc(r.effect, done)
}

// Redraw prints the whole table again.
func (r *Renderer) Redraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.println(r.playersTable())
	r.println(r.boardTable())
	r.println(pterm.Gray(fmt.Sprintf("%d cards left in the deck", r.cardsLeft)))
	r.println(actionLine(r.action))
}
