package main

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"trio.game/internal/persistence/journal"
	"trio.game/internal/protocol"
)

func writeJournal(t *testing.T, dir string, lines ...string) {
	t.Helper()
	w, err := journal.NewWriter(dir, "g1", journal.WithSession("s1"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	for _, l := range lines {
		kind, data, _ := strings.Cut(l, " ")
		if err := w.Append(journal.Kind(kind), []byte(data)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReplayRebuildsMirror(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir,
		`snapshot {"state":"preparing","ownerId":"u1","players":{"u1":{"id":"u1","name":"Ann"}},"scores":{"u1":0},"queue":[],"board":[],"cardsLeft":81}`,
		`event {"type":"player_joined","player":{"id":"u2","name":"Bob"}}`,
		`snapshot {"state":"preparing","ownerId":"u1","players":{"u1":{"id":"u1","name":"Ann"},"u2":{"id":"u2","name":"Bob"}},"scores":{"u1":0,"u2":0},"queue":[],"board":[],"cardsLeft":81}`,
		`event {"type":"cards_drawn","reason":"refill","nbCardsBeforeDraw":0,"cards":[{"value":0},{"value":1},{"value":2}],"positions":[0,1,2]}`,
		`event {"type":"game_state_changed","state":"playing"}`,
		`snapshot {"state":"playing","ownerId":"u1","players":{"u1":{"id":"u1","name":"Ann"},"u2":{"id":"u2","name":"Bob"}},"scores":{"u1":0,"u2":0},"queue":[],"board":[],"cardsLeft":78}`,
		`event {"type":"select_success","player":{"id":"u2","name":"Bob"},"newScore":1,"queue":[],"positions":[0,1,2]}`,
	)

	sessions, err := load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || len(sessions[0].entries) != 7 {
		t.Fatalf("sessions %+v", sessions)
	}
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatal(err)
	}
	res, err := replay(sessions[0], v, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.events != 4 || res.snapshots != 3 || res.invalid != 0 {
		t.Fatalf("counts %+v", res)
	}
	if res.final.State != protocol.StatePlaying || res.final.Scores["u2"] != 1 || res.final.Board.Count() != 0 {
		t.Fatalf("final %+v", res.final)
	}

	var buf bytes.Buffer
	res.print(&buf, false)
	if !strings.Contains(buf.String(), "state=playing") || !strings.Contains(buf.String(), "Bob") {
		t.Fatalf("output %q", buf.String())
	}
}

func TestReplayStopsOnBadFrame(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, `event {"type":"cards_moved","from":[1],"to":[]}`)
	sessions, err := load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := replay(sessions[0], nil, log.New(io.Discard, "", 0)); err == nil {
		t.Fatalf("expected decode error")
	}
}
