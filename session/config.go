package session

import (
	"fmt"
	"time"
)

// Config configures a Session at construction. Zero-value optional fields
// are filled in by applyDefaults.
type Config struct {
	// URL is the rosbridge WebSocket endpoint, e.g. "ws://robot:9090".
	// Required.
	URL string

	// SubscriberQueueDepth is the bounded delivery buffer depth applied to
	// every subscription that does not request its own queue_length.
	// Default 10.
	SubscriberQueueDepth int

	// ServiceCallTimeout is the default deadline applied to CallService
	// when the caller does not supply a context deadline. Zero means no
	// default timeout.
	ServiceCallTimeout time.Duration

	// InitialReconnectBackoff is the delay before the first reconnect
	// attempt after an involuntary disconnect. Default 250ms.
	InitialReconnectBackoff time.Duration

	// MaxReconnectBackoff is the ceiling the reconnect delay grows to.
	// Default 30s.
	MaxReconnectBackoff time.Duration

	// AutoReconnect enables the reconnect loop on involuntary disconnect.
	// DefaultConfig and bridgecfg.Load set it to true; applyDefaults does
	// not touch it, so a zero-value Config leaves it false.
	AutoReconnect bool
}

// applyDefaults returns a copy of cfg with zero-value optional fields
// filled in.
func (cfg Config) applyDefaults() Config {
	if cfg.SubscriberQueueDepth <= 0 {
		cfg.SubscriberQueueDepth = 10
	}
	if cfg.InitialReconnectBackoff <= 0 {
		cfg.InitialReconnectBackoff = 250 * time.Millisecond
	}
	if cfg.MaxReconnectBackoff <= 0 {
		cfg.MaxReconnectBackoff = 30 * time.Second
	}
	return cfg
}

// Validate reports the first problem found with cfg, or nil if it is
// usable. AutoReconnect has no zero-value ambiguity (false is a valid,
// explicit choice), so New defaults it to true only when callers use
// DefaultConfig, not via applyDefaults.
func (cfg Config) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("session: Config.URL is required")
	}
	if cfg.SubscriberQueueDepth < 0 {
		return fmt.Errorf("session: Config.SubscriberQueueDepth must not be negative")
	}
	if cfg.InitialReconnectBackoff < 0 {
		return fmt.Errorf("session: Config.InitialReconnectBackoff must not be negative")
	}
	if cfg.MaxReconnectBackoff < 0 {
		return fmt.Errorf("session: Config.MaxReconnectBackoff must not be negative")
	}
	return nil
}

// DefaultConfig returns a Config with every default applied and
// AutoReconnect enabled, for callers who only need to set URL.
func DefaultConfig(url string) Config {
	cfg := Config{URL: url, AutoReconnect: true}.applyDefaults()
	return cfg
}
