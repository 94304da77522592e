package config

import (
	"fmt"
	"strings"

	"tipledger/storage"
)

// MaxTipCooldownSeconds bounds the configurable cooldown to one day.
const MaxTipCooldownSeconds = uint64(86_400)

// Validate rejects configurations the node cannot run with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case storage.BackendLevelDB, storage.BackendBolt, storage.BackendMemory:
	default:
		return fmt.Errorf("storage: unknown backend %q", c.StorageBackend)
	}
	if c.StorageBackend != storage.BackendMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("storage: data dir required for %s backend", c.StorageBackend)
	}
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("listen address required")
	}
	if c.Ledger.TipCooldownSeconds > MaxTipCooldownSeconds {
		return fmt.Errorf("ledger: tip cooldown exceeds %d seconds", MaxTipCooldownSeconds)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("ratelimit: values must not be negative")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: sample ratio must be within [0, 1]")
	}
	return nil
}
