// Package bridgecfg loads session.Config from an optional YAML file, for
// host applications that prefer an external config file over constructing
// session.Config by hand.
package bridgecfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rosbridgego/rosbridge/session"
)

// FileConfig is the YAML-facing shape. Durations are accepted as strings
// ("250ms", "30s") rather than raw nanoseconds, matching how a human would
// actually edit the file.
type FileConfig struct {
	URL                     string `yaml:"url"`
	SubscriberQueueDepth    int    `yaml:"subscriber_queue_depth"`
	ServiceCallTimeout      string `yaml:"service_call_timeout"`
	InitialReconnectBackoff string `yaml:"initial_reconnect_backoff"`
	MaxReconnectBackoff     string `yaml:"max_reconnect_backoff"`
	AutoReconnect           *bool  `yaml:"auto_reconnect"`
	LogLevel                string `yaml:"log_level"`
}

// Load reads path, expands environment variables (e.g. ${ROSBRIDGE_URL}),
// and converts the result into a validated session.Config. AutoReconnect
// defaults to true when the file omits it; other omitted fields stay zero
// and are filled in by session.New. LogLevel is returned separately since
// it configures rlog, not session.Config.
func Load(path string) (session.Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Config{}, "", fmt.Errorf("bridgecfg: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var fc FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return session.Config{}, "", fmt.Errorf("bridgecfg: parse %s: %w", path, err)
	}

	cfg, err := fc.toSessionConfig()
	if err != nil {
		return session.Config{}, "", fmt.Errorf("bridgecfg: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return session.Config{}, "", fmt.Errorf("bridgecfg: %s: %w", path, err)
	}

	return cfg, fc.LogLevel, nil
}

func (fc FileConfig) toSessionConfig() (session.Config, error) {
	cfg := session.Config{
		URL:                  fc.URL,
		SubscriberQueueDepth: fc.SubscriberQueueDepth,
		AutoReconnect:        true, // file-driven sessions default to reconnecting
	}
	if fc.AutoReconnect != nil {
		cfg.AutoReconnect = *fc.AutoReconnect
	}

	var err error
	if cfg.ServiceCallTimeout, err = parseDuration(fc.ServiceCallTimeout, "service_call_timeout"); err != nil {
		return session.Config{}, err
	}
	if cfg.InitialReconnectBackoff, err = parseDuration(fc.InitialReconnectBackoff, "initial_reconnect_backoff"); err != nil {
		return session.Config{}, err
	}
	if cfg.MaxReconnectBackoff, err = parseDuration(fc.MaxReconnectBackoff, "max_reconnect_backoff"); err != nil {
		return session.Config{}, err
	}

	return cfg, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
