package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
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
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-b", "https://pm.example", "-d", "db", "-s", "secret",
				"-t", "1", "-r", "3", "-e", "60", "-R", "redis:6379", "-m", "smtp", "-l", "debug",
			},
			expected: &Config{
				HTTPAddr:                     "127.0.0.1:9090",
				BaseURL:                      "https://pm.example",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				EphemeralTokenTTL:            time.Hour,
				RedisAddr:                    "redis:6379",
				MailProvider:                 "smtp",
				LogLevel:                     "debug",
			},
		},
		{
			name:     "unrelated flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-x", "1"},
			expected: &Config{},
		},
		{
			name:        "non-numeric duration panics",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
