package reconciler

import (
	"sort"

	"trio.game/internal/cards"
	"trio.game/internal/protocol"
)

// Board is the slot array of the table. Slot index is the identity of a card place.
type Board struct {
	slots []slot
}

type slot struct {
	value    int
	occupied bool
}

// BoardFromWire builds a board from a snapshot's board array; nil entries are empty slots.
func BoardFromWire(ws []*protocol.WireCard) Board {
	b := Board{slots: make([]slot, len(ws))}
	for i, c := range ws {
		if c != nil {
			b.slots[i] = slot{value: c.Value, occupied: true}
		}
	}
	return b
}

// Len is the number of slots, occupied or not.
func (b Board) Len() int { return len(b.slots) }

func (b Board) At(pos int) (cards.Card, bool) {
	if pos < 0 || pos >= len(b.slots) || !b.slots[pos].occupied {
		return cards.Card{}, false
	}
	return cards.Card{Position: pos, Value: b.slots[pos].value}, true
}

// Put places value at pos, growing the board when pos is past its end.
func (b *Board) Put(pos, value int) {
	if pos < 0 {
		return
	}
	for pos >= len(b.slots) {
		b.slots = append(b.slots, slot{})
	}
	b.slots[pos] = slot{value: value, occupied: true}
}

func (b *Board) Remove(pos int) (cards.Card, bool) {
	c, ok := b.At(pos)
	if ok {
		b.slots[pos] = slot{}
	}
	return c, ok
}

// Move relocates the card at from to to. It reports false when from is empty.
func (b *Board) Move(from, to int) (cards.Card, bool) {
	c, ok := b.Remove(from)
	if !ok {
		return cards.Card{}, false
	}
	b.Put(to, c.Value)
	return cards.Card{Position: to, Value: c.Value}, true
}

// Cards returns the occupied slots in ascending position order.
func (b Board) Cards() []cards.Card {
	out := make([]cards.Card, 0, len(b.slots))
	for i, s := range b.slots {
		if s.occupied {
			out = append(out, cards.Card{Position: i, Value: s.value})
		}
	}
	return out
}

func (b Board) Count() int {
	n := 0
	for _, s := range b.slots {
		if s.occupied {
			n++
		}
	}
	return n
}

func (b Board) Clone() Board {
	return Board{slots: append([]slot(nil), b.slots...)}
}

// Wire is the inverse of BoardFromWire.
func (b Board) Wire() []*protocol.WireCard {
	out := make([]*protocol.WireCard, len(b.slots))
	for i, s := range b.slots {
		if s.occupied {
			out[i] = &protocol.WireCard{Value: s.value}
		}
	}
	return out
}

// GameState is the local mirror of the server's game document.
type GameState struct {
	State     protocol.GameState
	OwnerID   string
	Players   map[string]protocol.Player
	Scores    map[string]int
	Queue     []string
	Board     Board
	CardsLeft int
}

func newGameState() GameState {
	return GameState{
		Players: map[string]protocol.Player{},
		Scores:  map[string]int{},
	}
}

// FromSnapshot builds a mirror from a full game document. Queue entries and scores of
// unknown players are dropped.
func FromSnapshot(s protocol.Snapshot) GameState {
	g := newGameState()
	g.State = s.State
	g.OwnerID = s.OwnerID
	for id, p := range s.Players {
		if p.ID == "" {
			p.ID = id
		}
		g.Players[id] = p
	}
	for id, score := range s.Scores {
		if _, ok := g.Players[id]; ok {
			g.Scores[id] = score
		}
	}
	g.Queue = g.knownOnly(s.Queue)
	g.Board = BoardFromWire(s.Board)
	g.CardsLeft = s.CardsLeft
	return g
}

// Snapshot is the inverse of FromSnapshot.
func (g GameState) Snapshot() protocol.Snapshot {
	c := g.Clone()
	return protocol.Snapshot{
		State:     c.State,
		OwnerID:   c.OwnerID,
		Players:   c.Players,
		Scores:    c.Scores,
		Queue:     c.Queue,
		Board:     c.Board.Wire(),
		CardsLeft: c.CardsLeft,
	}
}

func (g GameState) Clone() GameState {
	c := g
	c.Players = make(map[string]protocol.Player, len(g.Players))
	for k, v := range g.Players {
		c.Players[k] = v
	}
	c.Scores = make(map[string]int, len(g.Scores))
	for k, v := range g.Scores {
		c.Scores[k] = v
	}
	c.Queue = append([]string(nil), g.Queue...)
	c.Board = g.Board.Clone()
	return c
}

// QueueRank is the viewer's place in the selection queue: 0 selecting, >0 waiting, -1 absent.
func (g GameState) QueueRank(id string) int {
	for i, q := range g.Queue {
		if q == id {
			return i
		}
	}
	return -1
}

func (g GameState) IsPlayer(id string) bool {
	if id == "" {
		return false
	}
	_, ok := g.Players[id]
	return ok
}

// PlayerName falls back to the id for players the mirror does not know.
func (g GameState) PlayerName(id string) string {
	if p, ok := g.Players[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

func (g GameState) knownOnly(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := g.Players[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// PlayerRow is one line of the score table.
type PlayerRow struct {
	ID    string
	Name  string
	Score int
	Rank  int // QueueRank of the player
	You   bool
}

// Rows lists the players by descending score, then name.
func (g GameState) Rows(viewer string) []PlayerRow {
	rows := make([]PlayerRow, 0, len(g.Players))
	for id, p := range g.Players {
		name := p.Name
		if name == "" {
			name = id
		}
		rows = append(rows, PlayerRow{
			ID:    id,
			Name:  name,
			Score: g.Scores[id],
			Rank:  g.QueueRank(id),
			You:   viewer != "" && id == viewer,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}
