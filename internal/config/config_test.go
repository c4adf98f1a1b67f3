package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(LegacyKeyEnv, "")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "info", c.LogLevel)
	assert.Contains(t, c.SecretsDir, ".wizard")
	assert.True(t, c.UseKeyring)
	assert.Equal(t, DefaultLegacyKey, c.LegacyKey)
	assert.Equal(t, 5*time.Second, c.PollInterval)
}

func TestLoadDefaults_LegacyKeyEnvOverride(t *testing.T) {
	t.Setenv(LegacyKeyEnv, "rotated-key-v2")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "rotated-key-v2", c.LegacyKey)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv(LegacyKeyEnv, "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.UseKeyring)
	assert.Equal(t, DefaultLegacyKey, cfg.LegacyKey)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "empty secrets dir", mutate: func(c *Config) { c.SecretsDir = "" }, wantErr: true},
		{name: "poll interval too small", mutate: func(c *Config) { c.PollInterval = 100 * time.Millisecond }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
