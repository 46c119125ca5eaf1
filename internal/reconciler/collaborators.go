package reconciler

import (
	"context"

	"trio.game/internal/cards"
	"trio.game/internal/protocol"
)

// Viewer identifies the local user and the game whose stream is consumed.
type Viewer struct {
	UserID string // empty for anonymous sessions
	GameID string
}

// Reveal is a card appearing in a slot.
type Reveal struct {
	Card   cards.Card
	Reason protocol.DrawReason
}

// Move is a card changing slot. Value is only meaningful when Known is set.
type Move struct {
	From, To int
	Value    int
	Known    bool
}

// Blink highlights a claimed trio before its cards leave the board.
type Blink struct {
	Player    protocol.Player
	Positions []int
	Cards     []cards.Card
}

// Renderer draws the game. Every method may be called from any goroutine. The effect
// methods (Reveal, Move, Blink) must call done exactly once when the effect is over, and
// must not hold a lock of their own while doing so.
type Renderer interface {
	Message(text string)
	Notice(text string)
	SetAction(a Action)
	RenderPlayers(rows []PlayerRow)
	RenderBoard(b Board)
	RenderDeck(cardsLeft int)
	SetSelectable(on bool)
	SetSelected(positions []int)
	SetCountdown(seconds int) // negative hides the countdown
	ShowHint(t [3]cards.Card)

	Reveal(r Reveal, done func())
	Move(m Move, done func())
	Blink(b Blink, done func())
}

// ActionSender posts a player action to the game server.
type ActionSender interface {
	Send(ctx context.Context, a protocol.Action) error
}

// SnapshotFetcher loads the full game document.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (protocol.Snapshot, error)
}
