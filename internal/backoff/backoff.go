// Package backoff computes a jittered exponential reconnect schedule for
// the session core, the way connwatch computes a startup probe schedule:
// a delay that doubles from an initial value up to a ceiling, reset after a
// successful connection.
package backoff

import (
	"math/rand"
	"time"
)

// Config controls the backoff schedule.
type Config struct {
	// Initial is the delay before the first retry (default 250ms).
	Initial time.Duration
	// Max is the ceiling the delay grows to (default 30s).
	Max time.Duration
	// Multiplier scales the delay after each attempt (default 2.0).
	Multiplier float64
	// Jitter is the fractional +/- randomization applied to each returned
	// delay (default 0.25, i.e. +/-25%).
	Jitter float64
}

// DefaultConfig is the schedule a rosbridge session reconnects with: 250ms
// initial, doubling, capped at 30s, +/-25% jitter.
func DefaultConfig() Config {
	return Config{
		Initial:    250 * time.Millisecond,
		Max:        30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Initial <= 0 {
		c.Initial = d.Initial
	}
	if c.Max <= 0 {
		c.Max = d.Max
	}
	if c.Multiplier <= 0 {
		c.Multiplier = d.Multiplier
	}
	if c.Jitter <= 0 {
		c.Jitter = d.Jitter
	}
	return c
}

// Sequence produces successive reconnect delays. It is not safe for
// concurrent use; the session core drives it from its single actor
// goroutine.
type Sequence struct {
	cfg    Config
	next   time.Duration
	jitter func() float64 // returns a value in [-1, 1); overridable for tests
}

// NewSequence builds a Sequence from cfg, filling zero-value fields with
// DefaultConfig's values.
func NewSequence(cfg Config) *Sequence {
	cfg = cfg.withDefaults()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Sequence{
		cfg:  cfg,
		next: cfg.Initial,
		jitter: func() float64 {
			return r.Float64()*2 - 1
		},
	}
}

// WithJitterFunc overrides the jitter source, primarily for deterministic
// tests. f must return a value in [-1, 1].
func (s *Sequence) WithJitterFunc(f func() float64) *Sequence {
	s.jitter = f
	return s
}

// Next returns the delay to wait before the next reconnect attempt, then
// advances the underlying (unjittered) delay toward Max.
func (s *Sequence) Next() time.Duration {
	base := s.next

	s.next = time.Duration(float64(s.next) * s.cfg.Multiplier)
	if s.next > s.cfg.Max {
		s.next = s.cfg.Max
	}

	jittered := time.Duration(float64(base) * (1 + s.cfg.Jitter*s.jitter()))
	if jittered < 0 {
		jittered = 0
	}
	return jittered
}

// Reset returns the sequence to its initial delay, called after a
// successful connection so the next involuntary disconnect starts the
// schedule over.
func (s *Sequence) Reset() {
	s.next = s.cfg.Initial
}
