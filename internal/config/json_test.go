package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"log_level":     "debug",
		"secrets_dir":   "/var/lib/wizard/keys",
		"use_keyring":   false,
		"legacy_key":    "file-key",
		"poll_interval": "10s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "/var/lib/wizard/keys", cfg.SecretsDir)
		assert.False(t, cfg.UseKeyring)
		assert.Equal(t, "file-key", cfg.LegacyKey)
		assert.Equal(t, 10*time.Second, cfg.PollInterval)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			LogLevel:     "warn",
			SecretsDir:   "/keep",
			UseKeyring:   true,
			PollInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "/keep", cfg.SecretsDir)
		assert.True(t, cfg.UseKeyring)
		assert.Equal(t, 42*time.Second, cfg.PollInterval)
	})

	t.Run("partial file overrides only named settings", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"log_level": "error",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{
			LogLevel:     "info",
			SecretsDir:   "/keep",
			UseKeyring:   true,
			PollInterval: 5 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, "/keep", cfg.SecretsDir)
		assert.True(t, cfg.UseKeyring)
		assert.Equal(t, 5*time.Second, cfg.PollInterval)
	})

	t.Run("integer poll interval is nanoseconds", func(t *testing.T) {
		nanos := writeTempJSON(t, dir, "nanos.json", map[string]any{
			"poll_interval": int64(3 * time.Second),
		})
		os.Args = []string{"testbin", "-config", nanos}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, 3*time.Second, cfg.PollInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
