package protocol

import "encoding/json"

// BaseMessage lets us route JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// GameState is the authoritative lifecycle state of a game.
type GameState string

const (
	StatePreparing GameState = "preparing"
	StatePlaying   GameState = "playing"
	StateOver      GameState = "over"
	StateFinished  GameState = "finished"
)

func (s GameState) Valid() bool {
	switch s {
	case StatePreparing, StatePlaying, StateOver, StateFinished:
		return true
	}
	return false
}

// Player is a game participant as sent by the server.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WireCard is a card as serialized on the board and in cards_drawn.
type WireCard struct {
	Value int `json:"value"`
}
