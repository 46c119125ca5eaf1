// Package client runs one game session: it feeds the event stream into a Reconciler and
// keeps the journal and results history.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"trio.game/internal/persistence/history"
	"trio.game/internal/persistence/journal"
	"trio.game/internal/protocol"
	"trio.game/internal/reconciler"
	"trio.game/internal/sequencer"
	"trio.game/internal/transport/events"
)

// RawFetcher loads the game document as received from the server.
type RawFetcher interface {
	FetchRaw(ctx context.Context) ([]byte, error)
}

type Config struct {
	Viewer   reconciler.Viewer
	Stream   events.Config
	Sender   reconciler.ActionSender
	Fetcher  RawFetcher
	Renderer reconciler.Renderer

	// Optional.
	Journal   *journal.Writer
	History   *history.Store
	Validator *protocol.Validator
	Logger    *log.Logger

	StallTimeout time.Duration
	Countdown    int
}

type Session struct {
	cfg    Config
	log    *log.Logger
	seq    *sequencer.Sequencer
	rec    *reconciler.Reconciler
	stream *events.Stream

	mu     sync.Mutex
	runCtx context.Context
	frames uint64

	closeOnce sync.Once
}

func New(cfg Config) (*Session, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("client: renderer is required")
	}
	if cfg.Fetcher == nil || cfg.Sender == nil {
		return nil, errors.New("client: sender and fetcher are required")
	}
	s := &Session{cfg: cfg, log: cfg.Logger, runCtx: context.Background()}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	s.seq = sequencer.New(sequencer.WithLogger(s.log), sequencer.WithStallTimeout(cfg.StallTimeout))
	s.rec = reconciler.New(reconciler.Config{
		Viewer:        cfg.Viewer,
		Renderer:      cfg.Renderer,
		Sender:        cfg.Sender,
		Fetcher:       snapshotSource{s: s},
		Sequencer:     s.seq,
		Logger:        s.log,
		Countdown:     cfg.Countdown,
		OnStateChange: s.stateChanged,
	})
	if cfg.Stream.Logger == nil {
		cfg.Stream.Logger = s.log
	}
	s.stream = events.NewStream(cfg.Stream, s)
	return s, nil
}

func (s *Session) Reconciler() *reconciler.Reconciler { return s.rec }
func (s *Session) Sequencer() *sequencer.Sequencer    { return s.seq }

// Run loads the game and consumes its events until ctx is done or Close is called. It
// returns the error of a frame that could not be understood.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	if err := s.rec.Resync(ctx); err != nil {
		s.log.Printf("initial load: %v", err)
	}
	err := s.stream.Run(ctx)
	if err != nil {
		s.cfg.Renderer.Notice("Stopped: " + err.Error())
	}
	return err
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.stream.Close()
		s.rec.Close()
		if s.cfg.Journal != nil {
			if err := s.cfg.Journal.Close(); err != nil {
				s.log.Printf("journal close: %v", err)
			}
		}
	})
}

func (s *Session) ctx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCtx
}

func (s *Session) HandleConnected(reconnect bool) {
	if reconnect {
		s.cfg.Renderer.Notice("Reconnected")
	}
	// Frames missed while disconnected are recovered from the snapshot.
	if err := s.rec.Resync(s.ctx()); err != nil {
		s.log.Printf("resync on connect: %v", err)
	}
}

func (s *Session) HandleFrame(frame []byte) error {
	s.mu.Lock()
	s.frames++
	s.mu.Unlock()

	if s.cfg.Journal != nil {
		if err := s.cfg.Journal.Append(journal.KindEvent, frame); err != nil {
			s.log.Printf("journal: %v", err)
		}
	}
	if s.cfg.Validator != nil {
		if err := s.cfg.Validator.ValidateEvent(frame); err != nil {
			return fmt.Errorf("%w: %v", protocol.ErrMalformedEvent, err)
		}
	}
	ev, err := protocol.DecodeEvent(frame)
	if err != nil {
		return err
	}
	return s.rec.Apply(s.ctx(), ev)
}

func (s *Session) HandleDisconnected(err error) {
	s.cfg.Renderer.Notice("Connection lost, reconnecting")
}

// Frames is the number of event frames received so far.
func (s *Session) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Session) stateChanged(prev, next protocol.GameState, g reconciler.GameState) {
	s.log.Printf("game %s: %s -> %s", s.cfg.Viewer.GameID, prev, next)
	if next != protocol.StateOver || s.cfg.History == nil {
		return
	}
	session := ""
	if s.cfg.Journal != nil {
		session = s.cfg.Journal.Session()
	}
	round := RoundOf(s.cfg.Viewer.GameID, session, g, time.Now())
	if _, err := s.cfg.History.Record(s.ctx(), round); err != nil {
		s.log.Printf("history: %v", err)
	}
}

// RoundOf turns a finished mirror into a history record.
func RoundOf(gameID, session string, g reconciler.GameState, at time.Time) history.Round {
	r := history.Round{GameID: gameID, SessionID: session, OwnerID: g.OwnerID, EndedAt: at}
	for _, row := range g.Rows("") {
		r.Scores = append(r.Scores, history.Score{PlayerID: row.ID, Name: row.Name, Score: row.Score})
	}
	return r
}

// snapshotSource journals and validates every snapshot before handing it to the reconciler.
type snapshotSource struct{ s *Session }

func (f snapshotSource) Fetch(ctx context.Context) (protocol.Snapshot, error) {
	s := f.s
	raw, err := s.cfg.Fetcher.FetchRaw(ctx)
	if err != nil {
		return protocol.Snapshot{}, err
	}
	if s.cfg.Journal != nil {
		if err := s.cfg.Journal.Append(journal.KindSnapshot, raw); err != nil {
			s.log.Printf("journal: %v", err)
		}
	}
	if s.cfg.Validator != nil {
		if err := s.cfg.Validator.ValidateSnapshot(raw); err != nil {
			s.log.Printf("snapshot does not match schema: %v", err)
		}
	}
	snap, err := protocol.DecodeSnapshot(raw)
	if err != nil {
		return protocol.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
