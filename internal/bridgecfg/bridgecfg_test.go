package bridgecfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndParsesDurations(t *testing.T) {
	path := writeTempConfig(t, ""+
		"url: ws://robot:9090\n"+
		"subscriber_queue_depth: 25\n"+
		"service_call_timeout: 5s\n"+
		"initial_reconnect_backoff: 100ms\n"+
		"max_reconnect_backoff: 10s\n"+
		"log_level: debug\n")

	cfg, logLevel, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "ws://robot:9090" {
		t.Fatalf("URL = %q", cfg.URL)
	}
	if cfg.SubscriberQueueDepth != 25 {
		t.Fatalf("SubscriberQueueDepth = %d, want 25", cfg.SubscriberQueueDepth)
	}
	if cfg.ServiceCallTimeout != 5*time.Second {
		t.Fatalf("ServiceCallTimeout = %v, want 5s", cfg.ServiceCallTimeout)
	}
	if cfg.InitialReconnectBackoff != 100*time.Millisecond {
		t.Fatalf("InitialReconnectBackoff = %v, want 100ms", cfg.InitialReconnectBackoff)
	}
	if cfg.MaxReconnectBackoff != 10*time.Second {
		t.Fatalf("MaxReconnectBackoff = %v, want 10s", cfg.MaxReconnectBackoff)
	}
	if !cfg.AutoReconnect {
		t.Fatal("AutoReconnect should default to true")
	}
	if logLevel != "debug" {
		t.Fatalf("logLevel = %q, want debug", logLevel)
	}
}

func TestLoadExplicitAutoReconnectFalse(t *testing.T) {
	path := writeTempConfig(t, "url: ws://robot:9090\nauto_reconnect: false\n")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutoReconnect {
		t.Fatal("AutoReconnect should be false when explicitly set")
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("BRIDGECFG_TEST_HOST", "robot.local")
	path := writeTempConfig(t, "url: ws://${BRIDGECFG_TEST_HOST}:9090\n")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "ws://robot.local:9090" {
		t.Fatalf("URL = %q, want env-expanded host", cfg.URL)
	}
}

func TestLoadMissingURLFailsValidation(t *testing.T) {
	path := writeTempConfig(t, "subscriber_queue_depth: 5\n")

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing url")
	}
}

func TestLoadMalformedDurationFails(t *testing.T) {
	path := writeTempConfig(t, "url: ws://robot:9090\nservice_call_timeout: not-a-duration\n")

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
