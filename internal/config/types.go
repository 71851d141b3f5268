package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ConfigVersion is the only config file version this build understands.
const ConfigVersion = "v1"

// DefaultBackendURL is the compiled-in backend address. It serves the
// bootstrap /config endpoint and is the API base when the backend does not
// advertise its own API_URL.
const DefaultBackendURL = "http://localhost:8000"

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// SignUpVia selects which collaborator creates new accounts.
type SignUpVia string

const (
	// SignUpViaBackend posts to the backend's /auth/signup endpoint.
	SignUpViaBackend SignUpVia = "backend"
	// SignUpViaProvider creates the account directly with the identity provider.
	SignUpViaProvider SignUpVia = "provider"
)

// GoogleConfig holds the OAuth client used for the loopback Google sign-in.
// Desktop OAuth clients have a "secret" that is not confidential, but it is
// still kept out of logs.
type GoogleConfig struct {
	ClientID     string `json:"clientId"`
	ClientSecret Secret `json:"clientSecret"`
}

// TimingConfig holds the UI delays. Defaults match the behaviour users of
// the web client are used to.
type TimingConfig struct {
	MessageTTL          time.Duration `json:"messageTtl"`
	RefreshInterval     time.Duration `json:"refreshInterval"`
	LogoutDelay         time.Duration `json:"logoutDelay"`
	SignUpRedirectDelay time.Duration `json:"signUpRedirectDelay"`
}

// EffectsConfig toggles the decorative effects.
type EffectsConfig struct {
	Background  bool `json:"background"`
	CursorTrail bool `json:"cursorTrail"`
}

// LogConfig controls where and how verbosely the client logs.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Config represents the client configuration with resolved values
type Config struct {
	Version             string        `json:"version"`
	BackendURL          string        `json:"backendURL"`
	RequestTimeout      time.Duration `json:"requestTimeout"`
	GoogleSignInTimeout time.Duration `json:"googleSignInTimeout"`
	SignUpVia           SignUpVia     `json:"signUpVia"`
	Google              *GoogleConfig `json:"google,omitempty"`
	Timing              TimingConfig  `json:"timing"`
	Effects             EffectsConfig `json:"effects"`
	Log                 LogConfig     `json:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Version:             ConfigVersion,
		BackendURL:          DefaultBackendURL,
		RequestTimeout:      30 * time.Second,
		GoogleSignInTimeout: 3 * time.Minute,
		SignUpVia:           SignUpViaBackend,
		Timing: TimingConfig{
			MessageTTL:          5 * time.Second,
			RefreshInterval:     500 * time.Millisecond,
			LogoutDelay:         1 * time.Second,
			SignUpRedirectDelay: 3 * time.Second,
		},
		Effects: EffectsConfig{
			Background:  true,
			CursorTrail: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GoogleEnabled reports whether Google sign-in credentials are configured.
func (c Config) GoogleEnabled() bool {
	return c.Google != nil && c.Google.ClientID != ""
}

// RawConfigValue represents a value that could be a string or env ref.
// This is only used during parsing, not in the final config
type RawConfigValue struct {
	value string
}

// ParseConfigValue parses a JSON value that could be a string or reference object
func ParseConfigValue(raw json.RawMessage) (*RawConfigValue, error) {
	// Try plain string first
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return &RawConfigValue{value: str}, nil
	}

	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return nil, fmt.Errorf("unknown reference type in config value")
	}
	value := os.Getenv(envVar)
	if value == "" {
		return nil, fmt.Errorf("environment variable %s not set", envVar)
	}
	// Strip surrounding quotes if present (only matching pairs)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return &RawConfigValue{value: value}, nil
}

// String returns the resolved value.
func (v *RawConfigValue) String() string {
	return v.value
}
