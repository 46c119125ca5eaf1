// Package sequencer plays mutually exclusive effects one at a time, strictly in the order
// they were enqueued. An effect either finishes synchronously or hands back a Token whose
// Done must be called exactly once when it really finishes.
package sequencer

import (
	"errors"
	"io"
	"log"
	"sync"
	"time"
)

var (
	ErrAlreadyCompleted = errors.New("sequencer: unit already completed")
	ErrStaleToken       = errors.New("sequencer: token is not the active unit")
)

// Work runs one unit. It returns true when the effect is already over, false when the
// caller will call tok.Done later.
type Work func(tok *Token) bool

type unit struct {
	name string
	work Work
}

type Sequencer struct {
	log          *log.Logger
	stallTimeout time.Duration

	mu      sync.Mutex
	queue   []unit
	active  *Token
	pumping bool
	stalls  uint64
}

type Option func(*Sequencer)

// WithStallTimeout force-advances an asynchronous unit that has not completed after d.
// Zero disables the watchdog.
func WithStallTimeout(d time.Duration) Option {
	return func(s *Sequencer) { s.stallTimeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.log = l
		}
	}
}

func New(opts ...Option) *Sequencer {
	s := &Sequencer{log: log.New(io.Discard, "", 0)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Enqueue appends a unit. When nothing is running the unit starts before Enqueue returns.
func (s *Sequencer) Enqueue(name string, work Work) {
	s.mu.Lock()
	s.queue = append(s.queue, unit{name: name, work: work})
	s.log.Printf("[QUEUED] %s", name)
	if s.active != nil || s.pumping {
		s.mu.Unlock()
		return
	}
	s.pumping = true
	s.mu.Unlock()
	s.pump()
}

// Advance finishes the active unit, whatever it is, and starts the next one.
func (s *Sequencer) Advance() {
	s.mu.Lock()
	tok := s.active
	s.mu.Unlock()
	if tok == nil {
		return
	}
	_ = tok.complete(endForced)
}

// Idle reports whether no unit is running and none is waiting.
func (s *Sequencer) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active == nil && len(s.queue) == 0 && !s.pumping
}

// Pending is the number of units waiting behind the active one.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Active returns the name of the running unit, or "" when idle.
func (s *Sequencer) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.name
}

// Stalls counts the units force-advanced by the watchdog.
func (s *Sequencer) Stalls() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stalls
}

// pump runs units until one goes asynchronous or the queue drains. Only one goroutine
// pumps at a time; completions that arrive while pumping only clear s.active.
func (s *Sequencer) pump() {
	for {
		s.mu.Lock()
		if s.active != nil || len(s.queue) == 0 {
			s.pumping = false
			s.mu.Unlock()
			return
		}
		u := s.queue[0]
		s.queue[0] = unit{}
		s.queue = s.queue[1:]
		tok := &Token{s: s, name: u.name}
		s.active = tok
		s.mu.Unlock()

		s.log.Printf("[START] %s", u.name)
		if u.work(tok) {
			_ = tok.complete(endDone)
			continue
		}

		s.mu.Lock()
		if s.active == tok && s.stallTimeout > 0 {
			tok.timer = time.AfterFunc(s.stallTimeout, func() { _ = tok.complete(endStalled) })
		}
		s.mu.Unlock()
	}
}

type endReason int

const (
	endDone endReason = iota
	endForced
	endStalled
)

// Token is the completion handle of one unit.
type Token struct {
	s      *Sequencer
	name   string
	done   bool
	forced bool
	timer  *time.Timer
}

func (t *Token) Name() string { return t.name }

// Done signals that the unit's effect has finished. A second call returns
// ErrAlreadyCompleted; a call after the watchdog moved on returns ErrStaleToken.
func (t *Token) Done() error { return t.complete(endDone) }

func (t *Token) complete(why endReason) error {
	s := t.s
	s.mu.Lock()
	if t.forced {
		s.mu.Unlock()
		return ErrStaleToken
	}
	if t.done {
		s.mu.Unlock()
		return ErrAlreadyCompleted
	}
	if s.active != t {
		s.mu.Unlock()
		return ErrStaleToken
	}
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	s.active = nil
	switch why {
	case endStalled:
		t.forced = true
		s.stalls++
		s.log.Printf("[STALL] %s: no completion after %s, advancing", t.name, s.stallTimeout)
	case endForced:
		t.forced = true
		s.log.Printf("[ADVANCE] %s", t.name)
	default:
		s.log.Printf("[END] %s", t.name)
	}
	if s.pumping {
		s.mu.Unlock()
		return nil
	}
	s.pumping = true
	s.mu.Unlock()
	s.pump()
	return nil
}
