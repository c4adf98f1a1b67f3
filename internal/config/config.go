// Package config holds runtime settings for the wizard CLI.
package config

import (
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultLegacyKey is the application-wide key that protected project
	// containers before per-project secrets existed. It must stay stable:
	// changing it orphans every container saved by a 1.x release.
	DefaultLegacyKey = "wizard-2.1-internal-key-v1.0-secure"

	// LegacyKeyEnv names the environment variable overriding DefaultLegacyKey
	// for key rotation.
	LegacyKeyEnv = "WIZARD_LEGACY_KEY"
)

// Config holds runtime settings for the wizard CLI.
//
// Fields:
//   - LogLevel: minimum level emitted by the logger (debug|info|warn|error).
//   - SecretsDir: directory used by the file-based secret backend.
//   - UseKeyring: whether to try the OS keyring before the file backend.
//   - LegacyKey: fallback key for containers saved without a per-project secret.
//   - PollInterval: how often the upload client polls processing status.
type Config struct {
	LogLevel     string
	SecretsDir   string
	LegacyKey    string
	UseKeyring   bool
	PollInterval time.Duration
}

// LoadDefaults populates c with sensible defaults. The legacy key is read
// from LegacyKeyEnv once here; nothing else consults the environment.
func (c *Config) LoadDefaults() {
	c.LogLevel = "info"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.SecretsDir = filepath.Join(home, ".wizard", "keys")

	c.UseKeyring = true

	c.LegacyKey = DefaultLegacyKey
	if v := os.Getenv(LegacyKeyEnv); v != "" {
		c.LegacyKey = v
	}

	c.PollInterval = 5 * time.Second
}

// Validate reports whether the loaded configuration is usable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.SecretsDir, validation.Required),
		validation.Field(&c.PollInterval, validation.Required,
			validation.Min(time.Second)),
	)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
