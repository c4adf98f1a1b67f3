package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-l", "debug", "-s", "/tmp/keys", "-k=false", "-p", "10"},
			expected: &Config{
				LogLevel:     "debug",
				SecretsDir:   "/tmp/keys",
				UseKeyring:   false,
				PollInterval: 10 * time.Second,
			},
		},
		{
			name: "defaults survive when flags absent",
			args: []string{"cmd"},
			expected: &Config{
				LogLevel:     "info",
				SecretsDir:   "/keep",
				UseKeyring:   true,
				PollInterval: 5 * time.Second,
			},
		},
		{
			name:        "incorrect poll interval",
			args:        []string{"cmd", "-p", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{
				LogLevel:     "info",
				SecretsDir:   "/keep",
				UseKeyring:   true,
				PollInterval: 5 * time.Second,
			}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
