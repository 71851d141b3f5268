package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONDefaults(t *testing.T) {
	path := writeConfig(t, "client.json", `{"version": "v1"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoad_EnvReferences(t *testing.T) {
	t.Setenv("NEXUSQUERY_BACKEND", "https://api.example.com")
	t.Setenv("GOOGLE_CLIENT_ID", "client.apps.googleusercontent.com")
	t.Setenv("GOOGLE_CLIENT_SECRET", "'GOCSPX-secret'")

	path := writeConfig(t, "client.json", `{
		"version": "v1",
		"backendURL": {"$env": "NEXUSQUERY_BACKEND"},
		"google": {
			"clientId": {"$env": "GOOGLE_CLIENT_ID"},
			"clientSecret": {"$env": "GOOGLE_CLIENT_SECRET"}
		},
		"timing": {"messageTtl": "2s"},
		"effects": {"cursorTrail": false}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	require.NotNil(t, cfg.Google)
	assert.Equal(t, "client.apps.googleusercontent.com", cfg.Google.ClientID)
	assert.Equal(t, Secret("GOCSPX-secret"), cfg.Google.ClientSecret)
	assert.True(t, cfg.GoogleEnabled())
	assert.Equal(t, 2*time.Second, cfg.Timing.MessageTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.RefreshInterval)
	assert.True(t, cfg.Effects.Background)
	assert.False(t, cfg.Effects.CursorTrail)
}

func TestLoad_JSONC(t *testing.T) {
	path := writeConfig(t, "client.jsonc", `{
		// local backend
		"version": "v1",
		"backendURL": "http://127.0.0.1:9000", /* dev port */
		"signUpVia": "provider",
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.BackendURL)
	assert.Equal(t, SignUpViaProvider, cfg.SignUpVia)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "client.yaml", `
version: v1
backendURL: http://localhost:8080
requestTimeout: 10s
timing:
  logoutDelay: 250ms
effects:
  background: false
log:
  level: debug
  file: /tmp/nq.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.LogoutDelay)
	assert.False(t, cfg.Effects.Background)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/nq.log", cfg.Log.File)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		expectError string
	}{
		{
			name:        "missing_version",
			file:        "c.json",
			content:     `{"backendURL": "http://localhost:8000"}`,
			expectError: "config version is required",
		},
		{
			name:        "wrong_version",
			file:        "c.json",
			content:     `{"version": "v0"}`,
			expectError: "unsupported config version: v0",
		},
		{
			name:        "inline_client_secret",
			file:        "c.json",
			content:     `{"version": "v1", "google": {"clientId": "id", "clientSecret": "plain"}}`,
			expectError: "google.clientSecret must use environment variable reference",
		},
		{
			name:        "unset_env",
			file:        "c.json",
			content:     `{"version": "v1", "backendURL": {"$env": "NEXUSQUERY_UNSET_FOR_TEST"}}`,
			expectError: "environment variable NEXUSQUERY_UNSET_FOR_TEST not set",
		},
		{
			name:        "bad_duration",
			file:        "c.json",
			content:     `{"version": "v1", "timing": {"messageTtl": "soon"}}`,
			expectError: "parsing timing.messageTtl",
		},
		{
			name:        "bad_yaml",
			file:        "c.yml",
			content:     "version: [v1",
			expectError: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:        "empty_backend",
			mutate:      func(c *Config) { c.BackendURL = "" },
			expectError: "backendURL is required",
		},
		{
			name:        "ftp_backend",
			mutate:      func(c *Config) { c.BackendURL = "ftp://example.com" },
			expectError: "backendURL must be http or https",
		},
		{
			name:        "unknown_signup_mode",
			mutate:      func(c *Config) { c.SignUpVia = "carrier-pigeon" },
			expectError: "signUpVia must be",
		},
		{
			name:        "zero_message_ttl",
			mutate:      func(c *Config) { c.Timing.MessageTTL = 0 },
			expectError: "timing.messageTtl must be positive",
		},
		{
			name:        "negative_logout_delay",
			mutate:      func(c *Config) { c.Timing.LogoutDelay = -time.Second },
			expectError: "timing.logoutDelay cannot be negative",
		},
		{
			name:        "half_google_config",
			mutate:      func(c *Config) { c.Google = &GoogleConfig{ClientID: "id"} },
			expectError: "google.clientSecret is required",
		},
		{
			name:        "bad_log_level",
			mutate:      func(c *Config) { c.Log.Level = "chatty" },
			expectError: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := ValidateConfig(&cfg)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}
