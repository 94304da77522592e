package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tipledger/storage"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBackend != storage.BackendLevelDB {
		t.Fatalf("unexpected backend %q", cfg.StorageBackend)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ListenAddress != cfg.ListenAddress || reloaded.Ledger != cfg.Ledger {
		t.Fatalf("reloaded config differs: %+v vs %+v", reloaded, cfg)
	}
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `ListenAddress = "0.0.0.0:9100"
DataDir = "/var/lib/tipledger"
StorageBackend = "Bolt"
Environment = "prod"

[log]
Level = "debug"
File = "/var/log/tipledger.log"

[telemetry]
Traces = true
SampleRatio = 0.5
Headers = "authorization=Bearer abc"

[ledger]
TipCooldownSeconds = 10
MaxTipsPerDay = 20

[ratelimit]
RequestsPerSecond = 5
Burst = 10
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBackend != storage.BackendBolt {
		t.Fatalf("backend not normalised: %q", cfg.StorageBackend)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxBackups != 5 {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if !cfg.Telemetry.Traces || cfg.Telemetry.SampleRatio != 0.5 || cfg.Telemetry.Endpoint != "localhost:4318" {
		t.Fatalf("unexpected telemetry config: %+v", cfg.Telemetry)
	}
	if cfg.Ledger.TipCooldownSeconds != 10 || cfg.Ledger.MaxTipsPerDay != 20 {
		t.Fatalf("unexpected ledger config: %+v", cfg.Ledger)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("ValidatorKey = \"abc\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "ValidatorKey") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "memory without data dir", mutate: func(c *Config) { c.StorageBackend = storage.BackendMemory; c.DataDir = "" }, ok: true},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "postgres" }},
		{name: "missing data dir", mutate: func(c *Config) { c.DataDir = " " }},
		{name: "missing listen", mutate: func(c *Config) { c.ListenAddress = "" }},
		{name: "cooldown too long", mutate: func(c *Config) { c.Ledger.TipCooldownSeconds = MaxTipCooldownSeconds + 1 }},
		{name: "negative burst", mutate: func(c *Config) { c.RateLimit.Burst = -1 }},
		{name: "sample ratio", mutate: func(c *Config) { c.Telemetry.SampleRatio = 1.5 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
