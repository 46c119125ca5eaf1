// Package history keeps the final scores of finished rounds in a local sqlite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

type Score struct {
	PlayerID string
	Name     string
	Score    int
}

// Round is one game that reached the over state.
type Round struct {
	ID        int64
	GameID    string
	SessionID string
	OwnerID   string
	EndedAt   time.Time
	Scores    []Score // best first
}

// Winner is the best score, or false for a round without players.
func (r Round) Winner() (Score, bool) {
	if len(r.Scores) == 0 {
		return Score{}, false
	}
	return r.Scores[0], true
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ended ON rounds(ended_at);`,
		`CREATE TABLE IF NOT EXISTS round_scores (
			round_id INTEGER NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL,
			PRIMARY KEY (round_id, player_id)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func sortScores(sc []Score) {
	sort.Slice(sc, func(i, j int) bool {
		if sc[i].Score != sc[j].Score {
			return sc[i].Score > sc[j].Score
		}
		return sc[i].Name < sc[j].Name
	})
}

// Record stores a round and returns its id.
func (s *Store) Record(ctx context.Context, r Round) (int64, error) {
	if r.GameID == "" {
		return 0, fmt.Errorf("history: empty game id")
	}
	if r.EndedAt.IsZero() {
		r.EndedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rounds(game_id, session_id, owner_id, ended_at) VALUES(?, ?, ?, ?)`,
		r.GameID, r.SessionID, r.OwnerID, r.EndedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("history: insert round: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, sc := range r.Scores {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO round_scores(round_id, player_id, name, score) VALUES(?, ?, ?, ?)`,
			id, sc.PlayerID, sc.Name, sc.Score); err != nil {
			return 0, fmt.Errorf("history: insert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Recent lists the last limit rounds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, session_id, owner_id, ended_at FROM rounds ORDER BY ended_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var out []Round
	for rows.Next() {
		var r Round
		var ended string
		if err := rows.Scan(&r.ID, &r.GameID, &r.SessionID, &r.OwnerID, &ended); err != nil {
			_ = rows.Close()
			return nil, err
		}
		r.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
		out = append(out, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sc, err := s.scores(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Scores = sc
	}
	return out, nil
}

func (s *Store) scores(ctx context.Context, roundID int64) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, name, score FROM round_scores WHERE round_id = ?`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.PlayerID, &sc.Name, &sc.Score); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortScores(out)
	return out, nil
}
