// Package journal records every frame a client received, as compressed JSONL, so that a
// session can be replayed offline.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

type Kind string

const (
	KindEvent    Kind = "event"
	KindSnapshot Kind = "snapshot"
)

const filePrefix = "journal"

// Entry is one journal line.
type Entry struct {
	Seq     uint64          `json:"seq"`
	At      time.Time       `json:"at"`
	Session string          `json:"session"`
	Game    string          `json:"game"`
	Kind    Kind            `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

// Writer appends entries to hourly rotated journal-YYYY-MM-DD-HH.jsonl.zst files.
type Writer struct {
	dir     string
	game    string
	session string
	now     func() time.Time

	mu      sync.Mutex
	seq     uint64
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

type Option func(*Writer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithSession sets the session id instead of a fresh uuid.
func WithSession(id string) Option {
	return func(w *Writer) { w.session = id }
}

func NewWriter(dir, game string, opts ...Option) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("journal: empty dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &Writer{dir: dir, game: game, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	if w.session == "" {
		w.session = uuid.NewString()
	}
	return w, nil
}

func (w *Writer) Session() string { return w.session }

// Append writes data, which must be a JSON document, and flushes it.
func (w *Writer) Append(kind Kind, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UTC()
	hour := now.Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	w.seq++
	b, err := json.Marshal(Entry{
		Seq:     w.seq,
		At:      now,
		Session: w.session,
		Game:    w.game,
		Kind:    kind,
		Data:    json.RawMessage(data),
	})
	if err != nil {
		w.seq--
		return fmt.Errorf("journal: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", filePrefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}
