package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
session:
  open: "09:15"
  close: "15:30"
  timezone: Asia/Kolkata
  poll_interval: 1m
  instruments:
    - name: NIFTY
      expiry_weekday: thursday
    - name: SENSEX
engine:
  trading_cutoff: "14:30"
kafka:
  brokers: ["localhost:9092"]
feed:
  base_url: https://marketdata.example.com/v1
  timeout: 10s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("unexpected environment %q", cfg.Environment)
	}
	if cfg.Session.PollInterval.Std() != time.Minute {
		t.Fatalf("unexpected poll interval %v", cfg.Session.PollInterval)
	}
	if cfg.Feed.Timeout.Std() != 10*time.Second {
		t.Fatalf("unexpected feed timeout %v", cfg.Feed.Timeout)
	}

	// Unset engine fields keep their defaults.
	if cfg.Engine.Throttle.Threshold == 0 {
		t.Fatal("engine defaults must survive a partial engine section")
	}
	if cfg.Engine.TradingCutoff.String() != "14:30" {
		t.Fatalf("unexpected cutoff %v", cfg.Engine.TradingCutoff)
	}

	wd := cfg.ExpiryWeekdays()
	if wd["NIFTY"] != time.Thursday {
		t.Fatalf("unexpected expiry weekday %v", wd["NIFTY"])
	}
	if _, ok := wd["SENSEX"]; ok {
		t.Fatal("SENSEX has no expiry weekday configured")
	}
	names := cfg.InstrumentNames()
	if len(names) != 2 || names[0] != "NIFTY" || names[1] != "SENSEX" {
		t.Fatalf("unexpected instrument names %v", names)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FEED_API_KEY", "secret")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Feed.APIKey != "secret" {
		t.Fatalf("unexpected api key %q", cfg.Feed.APIKey)
	}
}

func TestValidateErrors(t *testing.T) {
	load := func() *Config {
		cfg, err := Load(writeConfig(t, sampleYAML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"environment", func(c *Config) { c.Environment = "" }, "environment"},
		{"window", func(c *Config) { c.Session.Open = c.Session.Close }, "must precede"},
		{"instruments", func(c *Config) { c.Session.Instruments = nil }, "instruments"},
		{"brokers", func(c *Config) { c.Kafka.Brokers = nil }, "brokers"},
		{"feed", func(c *Config) { c.Feed.BaseURL = "" }, "base_url"},
	}
	for _, tc := range cases {
		cfg := load()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}
