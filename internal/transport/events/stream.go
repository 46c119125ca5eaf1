// Package events consumes a game's server-pushed event stream over a websocket.
package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handler receives the stream. All calls happen on the goroutine running Stream.Run.
type Handler interface {
	// HandleConnected runs after every successful dial. reconnect is false the first time.
	HandleConnected(reconnect bool)
	// HandleFrame gets one text frame. An error stops the stream.
	HandleFrame(frame []byte) error
	HandleDisconnected(err error)
}

type Config struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
	// ReadTimeout drops a silent connection. Pings are sent at half this period.
	ReadTimeout time.Duration
	MaxBackoff  time.Duration
	Logger      *log.Logger
}

type Stream struct {
	cfg Config
	h   Handler
	log *log.Logger

	closeOnce sync.Once
	stop      chan struct{}

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	dials     int
}

type handlerError struct{ err error }

func (e handlerError) Error() string { return e.err.Error() }

func NewStream(cfg Config, h Handler) *Stream {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	s := &Stream{cfg: cfg, h: h, log: cfg.Logger, stop: make(chan struct{})}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	return s
}

// Run dials and reads until ctx is done, Close is called or the handler fails. Transport
// errors trigger a reconnect with exponential backoff.
func (s *Stream) Run(ctx context.Context) error {
	backoff := 200 * time.Millisecond
	for {
		if s.stopped(ctx) {
			return nil
		}
		wasConnected, err := s.connectAndReadLoop(ctx)
		var he handlerError
		if errors.As(err, &he) {
			return fmt.Errorf("events: %w", he.err)
		}
		if s.stopped(ctx) {
			return nil
		}
		s.log.Printf("events: %v", err)
		if wasConnected {
			backoff = 200 * time.Millisecond
			s.h.HandleDisconnected(err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-time.After(backoff):
		}
		if backoff < s.cfg.MaxBackoff {
			backoff *= 2
			if backoff > s.cfg.MaxBackoff {
				backoff = s.cfg.MaxBackoff
			}
		}
	}
}

func (s *Stream) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Stream) connectAndReadLoop(ctx context.Context) (bool, error) {
	d := websocket.Dialer{HandshakeTimeout: s.cfg.HandshakeTimeout}
	conn, resp, err := d.DialContext(ctx, s.cfg.URL, s.cfg.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("dial %s: %w (status %d)", s.cfg.URL, err, resp.StatusCode)
		}
		return false, fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.dials++
	reconnect := s.dials > 1
	s.mu.Unlock()

	done := make(chan struct{})
	defer func() {
		close(done)
		s.mu.Lock()
		s.conn = nil
		s.connected = false
		s.mu.Unlock()
		_ = conn.Close()
	}()
	go s.watch(ctx, conn, done)

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		})
	}

	s.log.Printf("events: connected to %s (reconnect=%v)", s.cfg.URL, reconnect)
	s.h.HandleConnected(reconnect)

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		if typ != websocket.TextMessage {
			s.log.Printf("events: skipping %d byte binary frame", len(msg))
			continue
		}
		if err := s.h.HandleFrame(msg); err != nil {
			return true, handlerError{err}
		}
	}
}

// watch closes conn when the stream is stopped, and keeps it alive with pings.
func (s *Stream) watch(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	var ping <-chan time.Time
	if s.cfg.ReadTimeout > 0 {
		t := time.NewTicker(s.cfg.ReadTimeout / 2)
		defer t.Stop()
		ping = t.C
	}
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-s.stop:
			_ = conn.Close()
			return
		case <-ping:
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		}
	}
}

func (s *Stream) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close stops Run. It is safe to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		c := s.conn
		s.mu.Unlock()
		if c != nil {
			_ = c.Close()
		}
	})
}
