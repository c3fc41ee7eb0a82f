package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "AUTH_ADDR", "CALL_TIMEOUT", "KAFKA_BROKERS", "MAX_CONNS", "AUTH_PASSWORD_MODE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.HTTPAddr != ":3000" {
		t.Fatalf("expected :3000, got %q", cfg.HTTPAddr)
	}
	if cfg.AuthAddr != "127.0.0.1:4000" {
		t.Fatalf("expected auth on 4000, got %q", cfg.AuthAddr)
	}
	if cfg.CallTimeout != 4*time.Second {
		t.Fatalf("expected 4s call timeout, got %v", cfg.CallTimeout)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected kafka disabled, got %v", cfg.KafkaBrokers)
	}
	if cfg.MaxConns != 1024 {
		t.Fatalf("expected 1024 max conns, got %d", cfg.MaxConns)
	}
	if cfg.PasswordMode != "plain" {
		t.Fatalf("expected plain password mode, got %q", cfg.PasswordMode)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CALL_TIMEOUT", "250ms")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("MAX_CONNS", "-3")

	cfg := Load()

	if cfg.CallTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.CallTimeout)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.MaxConns != 1024 {
		t.Fatalf("expected fallback to default, got %d", cfg.MaxConns)
	}
}
