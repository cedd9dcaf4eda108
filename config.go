package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Proxy protocols a probe can route through.
const (
	ProtocolHTTP   = "http"
	ProtocolSOCKS5 = "socks5"
)

func validProtocol(p string) bool {
	return p == ProtocolHTTP || p == ProtocolSOCKS5
}

const (
	defaultConfigFile = "proxer.yaml"
	defaultTestURL    = "https://httpbin.org/ip"
	defaultTimeoutS   = 5
	defaultWorkers    = 50
	defaultOutputDir  = "ProxerProxies"
)

// Config carries the tunables for a run.
type Config struct {
	TestURL        string   `yaml:"test_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Workers        int      `yaml:"workers"`
	Protocol       string   `yaml:"protocol"`
	OutputDir      string   `yaml:"output_dir"`
	Sources        []string `yaml:"sources"` // empty means every registered source
}

// DefaultConfig matches the tool's original tuning: five second probes,
// fifty workers, httpbin as the origin echo.
func DefaultConfig() Config {
	return Config{
		TestURL:        defaultTestURL,
		TimeoutSeconds: defaultTimeoutS,
		Workers:        defaultWorkers,
		Protocol:       ProtocolHTTP,
		OutputDir:      defaultOutputDir,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads path if it exists and overlays it on the defaults. A
// missing file yields the plain defaults; a present but broken file is an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TimeoutSeconds <= 0 {
		return errors.New("timeout_seconds must be positive")
	}
	if c.Workers <= 0 {
		return ErrWorkerCount
	}
	if !validProtocol(c.Protocol) {
		return fmt.Errorf("%w: %q", ErrProtocol, c.Protocol)
	}
	for _, name := range c.Sources {
		if _, ok := sourceByName(name); !ok {
			return fmt.Errorf("unknown source %q", name)
		}
	}
	return nil
}
