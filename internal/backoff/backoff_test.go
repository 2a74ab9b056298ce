package backoff

import (
	"testing"
	"time"
)

func noJitter() float64 { return 0 }

func TestSequenceDoublesUpToMax(t *testing.T) {
	s := NewSequence(Config{
		Initial:    250 * time.Millisecond,
		Max:        2 * time.Second,
		Multiplier: 2.0,
	}).WithJitterFunc(noJitter)

	want := []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		2 * time.Second, // capped
	}
	for i, w := range want {
		got := s.Next()
		if got != w {
			t.Errorf("attempt %d: got %v, want %v", i, got, w)
		}
	}
}

func TestSequenceReset(t *testing.T) {
	s := NewSequence(Config{Initial: 250 * time.Millisecond, Max: 30 * time.Second, Multiplier: 2.0}).WithJitterFunc(noJitter)
	s.Next()
	s.Next()
	s.Reset()
	got := s.Next()
	if got != 250*time.Millisecond {
		t.Errorf("after Reset, got %v, want 250ms", got)
	}
}

func TestSequenceJitterBounds(t *testing.T) {
	s := NewSequence(Config{Initial: 1 * time.Second, Max: 30 * time.Second, Multiplier: 2.0, Jitter: 0.25}).
		WithJitterFunc(func() float64 { return 1 })
	got := s.Next()
	want := 1250 * time.Millisecond
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	s2 := NewSequence(Config{Initial: 1 * time.Second, Max: 30 * time.Second, Multiplier: 2.0, Jitter: 0.25}).
		WithJitterFunc(func() float64 { return -1 })
	got2 := s2.Next()
	want2 := 750 * time.Millisecond
	if got2 != want2 {
		t.Errorf("got %v, want %v", got2, want2)
	}
}

func TestDefaultConfigMatchesSpec(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Initial != 250*time.Millisecond {
		t.Errorf("Initial = %v", cfg.Initial)
	}
	if cfg.Max != 30*time.Second {
		t.Errorf("Max = %v", cfg.Max)
	}
	if cfg.Jitter != 0.25 {
		t.Errorf("Jitter = %v", cfg.Jitter)
	}
}

func TestZeroValueConfigFilledWithDefaults(t *testing.T) {
	s := NewSequence(Config{}).WithJitterFunc(noJitter)
	got := s.Next()
	if got != 250*time.Millisecond {
		t.Errorf("got %v, want 250ms", got)
	}
}
