package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proxer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "proxer.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := DefaultConfig()
	if cfg.TestURL != want.TestURL || cfg.TimeoutSeconds != want.TimeoutSeconds ||
		cfg.Workers != want.Workers || cfg.Protocol != want.Protocol ||
		cfg.OutputDir != want.OutputDir || len(cfg.Sources) != 0 {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, want)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %s, want 5s", cfg.Timeout())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
test_url: http://127.0.0.1:9/ip
timeout_seconds: 2
workers: 10
protocol: socks5
output_dir: out
sources: [spysme, sslproxies]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.TestURL != "http://127.0.0.1:9/ip" {
		t.Errorf("test_url = %q", cfg.TestURL)
	}
	if cfg.Timeout() != 2*time.Second {
		t.Errorf("Timeout() = %s, want 2s", cfg.Timeout())
	}
	if cfg.Workers != 10 {
		t.Errorf("workers = %d, want 10", cfg.Workers)
	}
	if cfg.Protocol != ProtocolSOCKS5 {
		t.Errorf("protocol = %q, want socks5", cfg.Protocol)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("output_dir = %q, want out", cfg.OutputDir)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[0] != "spysme" {
		t.Errorf("sources = %v", cfg.Sources)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := writeConfig(t, "workers: 5\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Workers != 5 {
		t.Errorf("workers = %d, want 5", cfg.Workers)
	}
	if cfg.TestURL != defaultTestURL || cfg.Protocol != ProtocolHTTP {
		t.Errorf("untouched fields changed: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{name: "zero workers", content: "workers: 0\n", sentinel: ErrWorkerCount},
		{name: "negative workers", content: "workers: -1\n", sentinel: ErrWorkerCount},
		{name: "bad protocol", content: "protocol: ftp\n", sentinel: ErrProtocol},
		{name: "zero timeout", content: "timeout_seconds: 0\n"},
		{name: "unknown source", content: "sources: [bogus]\n"},
		{name: "broken yaml", content: "workers: [oops\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() = nil error, want a rejection")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("err = %v, want %v", err, tt.sentinel)
			}
		})
	}
}
