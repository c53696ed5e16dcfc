package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_ENV", "does-not-exist")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "release" {
		t.Errorf("mode = %q, want release", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.ReadLimit != 32768 {
		t.Errorf("read_limit = %d, want 32768", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.OrchestrateDelay != 600*time.Millisecond {
		t.Errorf("orchestrate_delay = %v, want 600ms", cfg.OrchestrateDelay)
	}
	if cfg.SendBuffer != 32 {
		t.Errorf("send_buffer = %d, want 32", cfg.SendBuffer)
	}
	if len(cfg.StunURLs) != 1 || cfg.StunURLs[0] != "stun:stun.l.google.com:19302" {
		t.Errorf("stun_urls = %v, want default google stun", cfg.StunURLs)
	}
}
