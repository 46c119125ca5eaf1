package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event types pushed on a game's event stream.
const (
	TypeGameStateChanged = "game_state_changed"
	TypePlayerJoined     = "player_joined"
	TypePlayerLeft       = "player_left"
	TypePlayerSelects    = "player_selects"
	TypePlayerDeclares   = "player_declares"
	TypeSelectTimeout    = "select_timeout"
	TypeSelectGiveUp     = "select_giveup"
	TypeSelectNoLonger   = "select_nolonger"
	TypeSelectSuccess    = "select_success"
	TypeSelectFailure    = "select_failure"
	TypeCardsDrawn       = "cards_drawn"
	TypeCardsMoved       = "cards_moved"
)

// EventTypes lists every event type the client understands.
var EventTypes = []string{
	TypeGameStateChanged,
	TypePlayerJoined,
	TypePlayerLeft,
	TypePlayerSelects,
	TypePlayerDeclares,
	TypeSelectTimeout,
	TypeSelectGiveUp,
	TypeSelectNoLonger,
	TypeSelectSuccess,
	TypeSelectFailure,
	TypeCardsDrawn,
	TypeCardsMoved,
}

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMalformedEvent   = errors.New("malformed event")
)

// Event is one server-pushed record. The concrete types below are the only implementations.
type Event interface {
	EventType() string
	isEvent()
}

// DrawReason tells why cards were drawn.
type DrawReason string

const (
	DrawRefill   DrawReason = "refill"   // refill the board up to 12 cards
	DrawExtra    DrawReason = "extra"    // 3 extra cards because the board had no trio
	DrawReplaced DrawReason = "replaced" // 3 extra cards replaced, still no trio
)

type GameStateChanged struct {
	Type  string    `json:"type"`
	State GameState `json:"state"`
}

type PlayerJoined struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

type PlayerLeft struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

// QueueChange is the payload shared by every selection queue event.
type QueueChange struct {
	Type     string   `json:"type"`
	Player   Player   `json:"player"`
	NewScore *int     `json:"newScore,omitempty"`
	Queue    []string `json:"queue"`
}

func (q QueueChange) Change() QueueChange { return q }

// QueueEvent is implemented by every event embedding QueueChange.
type QueueEvent interface {
	Event
	Change() QueueChange
}

type PlayerSelects struct{ QueueChange }
type PlayerDeclares struct{ QueueChange }
type SelectTimeout struct{ QueueChange }
type SelectGiveUp struct{ QueueChange }
type SelectNoLonger struct{ QueueChange }

type SelectSuccess struct {
	QueueChange
	Positions []int `json:"positions"`
}

type SelectFailure struct {
	QueueChange
	Faulty []string `json:"faulty,omitempty"`
}

type CardsDrawn struct {
	Type              string     `json:"type"`
	Reason            DrawReason `json:"reason"`
	NbCardsBeforeDraw int        `json:"nbCardsBeforeDraw"`
	Cards             []WireCard `json:"cards"`
	Positions         []int      `json:"positions"`
}

type CardsMoved struct {
	Type string `json:"type"`
	From []int  `json:"from"`
	To   []int  `json:"to"`
}

func (GameStateChanged) EventType() string { return TypeGameStateChanged }
func (PlayerJoined) EventType() string     { return TypePlayerJoined }
func (PlayerLeft) EventType() string       { return TypePlayerLeft }
func (PlayerSelects) EventType() string    { return TypePlayerSelects }
func (PlayerDeclares) EventType() string   { return TypePlayerDeclares }
func (SelectTimeout) EventType() string    { return TypeSelectTimeout }
func (SelectGiveUp) EventType() string     { return TypeSelectGiveUp }
func (SelectNoLonger) EventType() string   { return TypeSelectNoLonger }
func (SelectSuccess) EventType() string    { return TypeSelectSuccess }
func (SelectFailure) EventType() string    { return TypeSelectFailure }
func (CardsDrawn) EventType() string       { return TypeCardsDrawn }
func (CardsMoved) EventType() string       { return TypeCardsMoved }

func (GameStateChanged) isEvent() {}
func (PlayerJoined) isEvent()     {}
func (PlayerLeft) isEvent()       {}
func (PlayerSelects) isEvent()    {}
func (PlayerDeclares) isEvent()   {}
func (SelectTimeout) isEvent()    {}
func (SelectGiveUp) isEvent()     {}
func (SelectNoLonger) isEvent()   {}
func (SelectSuccess) isEvent()    {}
func (SelectFailure) isEvent()    {}
func (CardsDrawn) isEvent()       {}
func (CardsMoved) isEvent()       {}

// DecodeEvent parses one frame of the event stream.
func DecodeEvent(b []byte) (Event, error) {
	base, err := DecodeBase(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	var ev Event
	switch base.Type {
	case TypeGameStateChanged:
		var e GameStateChanged
		err = json.Unmarshal(b, &e)
		if err == nil && !e.State.Valid() {
			err = fmt.Errorf("state %q", e.State)
		}
		ev = e
	case TypePlayerJoined:
		var e PlayerJoined
		err = json.Unmarshal(b, &e)
		ev = e
	case TypePlayerLeft:
		var e PlayerLeft
		err = json.Unmarshal(b, &e)
		ev = e
	case TypePlayerSelects:
		var e PlayerSelects
		err = json.Unmarshal(b, &e)
		ev = e
	case TypePlayerDeclares:
		var e PlayerDeclares
		err = json.Unmarshal(b, &e)
		ev = e
	case TypeSelectTimeout:
		var e SelectTimeout
		err = json.Unmarshal(b, &e)
		ev = e
	case TypeSelectGiveUp:
		var e SelectGiveUp
		err = json.Unmarshal(b, &e)
		ev = e
	case TypeSelectNoLonger:
		var e SelectNoLonger
		err = json.Unmarshal(b, &e)
		ev = e
	case TypeSelectSuccess:
		var e SelectSuccess
		err = json.Unmarshal(b, &e)
		ev = e
	case TypeSelectFailure:
		var e SelectFailure
		err = json.Unmarshal(b, &e)
		ev = e
	case TypeCardsDrawn:
		var e CardsDrawn
		err = json.Unmarshal(b, &e)
		if err == nil && len(e.Cards) != len(e.Positions) {
			err = fmt.Errorf("%d cards for %d positions", len(e.Cards), len(e.Positions))
		}
		ev = e
	case TypeCardsMoved:
		var e CardsMoved
		err = json.Unmarshal(b, &e)
		if err == nil && len(e.From) != len(e.To) {
			err = fmt.Errorf("%d sources for %d destinations", len(e.From), len(e.To))
		}
		ev = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, base.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, base.Type, err)
	}
	return ev, nil
}

// EncodeEvent is the inverse of DecodeEvent; the "type" field is always set from the Go type.
func EncodeEvent(ev Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	t, _ := json.Marshal(ev.EventType())
	m["type"] = t
	return json.Marshal(m)
}
