package protocol

import "encoding/json"

// Snapshot is the full game document returned by GET /games/{id}. Empty board slots are
// JSON nulls.
type Snapshot struct {
	ID        string            `json:"id,omitempty"`
	State     GameState         `json:"state"`
	OwnerID   string            `json:"ownerId"`
	Players   map[string]Player `json:"players"`
	Scores    map[string]int    `json:"scores"`
	Queue     []string          `json:"queue"`
	Board     []*WireCard       `json:"board"`
	CardsLeft int               `json:"cardsLeft"`
}

func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(b, &s)
	return s, err
}
