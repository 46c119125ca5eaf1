package protocol_test

import (
	"testing"

	"trio.game/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("compile schemas: %v", err)
	}

	frames := []string{
		`{"type":"game_state_changed","state":"over"}`,
		`{"type":"player_joined","player":{"id":"bob","name":"Bob"}}`,
		`{"type":"player_declares","player":{"id":"amy","name":"Amy"},"newScore":null,"queue":["bob","amy"]}`,
		`{"type":"select_success","player":{"id":"bob","name":"Bob"},"positions":[0,4,7],"newScore":3,"queue":[]}`,
		`{"type":"select_failure","player":{"id":"bob","name":"Bob"},"faulty":["number"],"newScore":-1,"queue":[]}`,
		`{"type":"cards_drawn","reason":"extra","nbCardsBeforeDraw":9,"cards":[{"value":0},{"value":21},{"value":170}],"positions":[12,13,14]}`,
		`{"type":"cards_moved","from":[12],"to":[3]}`,
	}
	for _, f := range frames {
		if err := v.ValidateEvent([]byte(f)); err != nil {
			t.Fatalf("validate %s: %v", f, err)
		}
	}

	snapshot := `{
	  "id":"g1",
	  "ownerId":"bob",
	  "state":"preparing",
	  "players":{"bob":{"id":"bob","name":"Bob"}},
	  "scores":{},
	  "queue":[],
	  "cardsLeft":81,
	  "board":[null,null,{"value":42}]
	}`
	if err := v.ValidateSnapshot([]byte(snapshot)); err != nil {
		t.Fatalf("validate snapshot: %v", err)
	}
}

func TestSchemas_RejectMalformed(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("compile schemas: %v", err)
	}
	bad := []string{
		`{"type":"board_exploded"}`,
		`{"type":"game_state_changed","state":"paused"}`,
		`{"type":"player_left"}`,
		`{"type":"select_success","player":{"id":"bob","name":"Bob"},"positions":[0,4],"queue":[]}`,
		`{"type":"cards_drawn","reason":"lucky","nbCardsBeforeDraw":9,"cards":[],"positions":[]}`,
		`{"type":"cards_moved","from":[-1],"to":[3]}`,
	}
	for _, f := range bad {
		if err := v.ValidateEvent([]byte(f)); err == nil {
			t.Fatalf("expected %s to be rejected", f)
		}
	}
	if err := v.ValidateSnapshot([]byte(`{"state":"playing"}`)); err == nil {
		t.Fatalf("expected incomplete snapshot to be rejected")
	}
}
