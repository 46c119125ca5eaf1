package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trio.game/internal/config"
	"trio.game/internal/persistence/history"
	"trio.game/internal/render/headless"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.ServerURL = "http://127.0.0.1:1"
	cfg.GameID = "g1"
	cfg.UserID = "u1"
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestOpenFailsCleanlyOnBadHistoryPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t)
	cfg.Journal.Dir = filepath.Join(dir, "journal")
	cfg.History.DBPath = filepath.Join(blocker, "history.db")

	sess, closers, err := open(cfg, headless.New(), log.New(io.Discard, "", 0))
	if err == nil || !strings.HasPrefix(err.Error(), "history:") {
		t.Fatalf("expected history error, got %v", err)
	}
	if sess != nil || closers != nil {
		t.Fatalf("partial session returned")
	}
	files, err := os.ReadDir(cfg.Journal.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("journal left files behind: %v", files)
	}
}

func TestOpenWiresStores(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Journal.Dir = filepath.Join(dir, "journal")
	cfg.History.DBPath = filepath.Join(dir, "history.db")
	cfg.ValidateEvents = true

	sess, closers, err := open(cfg, headless.New(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(closers) != 1 {
		t.Fatalf("closers %d", len(closers))
	}
	sess.Close()
	for _, c := range closers {
		c()
	}

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer store.Close()
	rounds, err := store.Recent(context.Background(), 5)
	if err != nil || len(rounds) != 0 {
		t.Fatalf("recent %v %v", rounds, err)
	}
}

func TestApplyFlagsOverridesConfig(t *testing.T) {
	cfg := testConfig(t)
	applyFlags(&cfg, "https://other.test/", "g2", "", "tok", "/tmp/j", "", true)
	if cfg.GameID != "g2" || cfg.UserID != "u1" || cfg.AuthToken != "tok" || !cfg.ValidateEvents {
		t.Fatalf("cfg %+v", cfg)
	}
	if cfg.Journal.Dir != "/tmp/j" || cfg.History.DBPath != "" {
		t.Fatalf("stores %+v %+v", cfg.Journal, cfg.History)
	}
	if !strings.HasPrefix(cfg.EventsURL(), "wss://other.test/games/g2/") {
		t.Fatalf("events url %s", cfg.EventsURL())
	}
}
