package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/dgellow/nexusquery/internal/envutil"
	"github.com/dgellow/nexusquery/internal/log"
)

// Load loads and processes the config with immediate env var resolution.
// The format follows the file extension: .json, .jsonc (comments allowed)
// or .yaml/.yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	data, err = toJSON(path, data)
	if err != nil {
		return Config{}, err
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if version != ConfigVersion {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// The custom UnmarshalJSON methods resolve env vars immediately
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func toJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting config YAML: %w", err)
		}
		return out, nil
	case ".jsonc":
		return jsonc.ToJSON(data), nil
	default:
		return data, nil
	}
}

// validateRawConfig validates the config structure before environment resolution
func validateRawConfig(rawConfig map[string]any) error {
	google, ok := rawConfig["google"].(map[string]any)
	if !ok {
		return nil
	}
	value, exists := google["clientSecret"]
	if !exists {
		return nil
	}
	if s, isString := value.(string); isString {
		if s == "" {
			return nil
		}
		return fmt.Errorf("google.clientSecret must use environment variable reference for security")
	}
	if refMap, isMap := value.(map[string]any); isMap {
		if _, hasEnv := refMap["$env"]; !hasEnv {
			return fmt.Errorf("google.clientSecret must use {\"$env\": \"VAR_NAME\"} format")
		}
	}
	return nil
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	if config.BackendURL == "" {
		return fmt.Errorf("backendURL is required")
	}
	u, err := url.Parse(config.BackendURL)
	if err != nil {
		return fmt.Errorf("backendURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backendURL must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backendURL must include a host")
	}
	if u.Scheme == "http" && !isLoopback(u.Hostname()) && !envutil.IsDev() {
		log.LogWarn("backendURL %s uses plain http; ID tokens will be sent unencrypted", config.BackendURL)
	}

	switch config.SignUpVia {
	case SignUpViaBackend, SignUpViaProvider:
	default:
		return fmt.Errorf("signUpVia must be %q or %q, got %q", SignUpViaBackend, SignUpViaProvider, config.SignUpVia)
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("requestTimeout must be positive")
	}
	if config.GoogleSignInTimeout <= 0 {
		return fmt.Errorf("googleSignInTimeout must be positive")
	}

	timing := config.Timing
	if timing.MessageTTL <= 0 {
		return fmt.Errorf("timing.messageTtl must be positive")
	}
	if timing.RefreshInterval <= 0 {
		return fmt.Errorf("timing.refreshInterval must be positive")
	}
	if timing.LogoutDelay < 0 {
		return fmt.Errorf("timing.logoutDelay cannot be negative")
	}
	if timing.SignUpRedirectDelay < 0 {
		return fmt.Errorf("timing.signUpRedirectDelay cannot be negative")
	}

	if g := config.Google; g != nil {
		if g.ClientID == "" && g.ClientSecret != "" {
			return fmt.Errorf("google.clientId is required when google.clientSecret is set")
		}
		if g.ClientID != "" && g.ClientSecret == "" {
			return fmt.Errorf("google.clientSecret is required when google.clientId is set")
		}
	}

	if _, err := parseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func parseLevel(level string) (string, error) {
	switch strings.ToLower(level) {
	case "", "error", "warn", "warning", "info", "debug", "trace":
		return strings.ToLower(level), nil
	default:
		return "", fmt.Errorf("invalid log level: %s", level)
	}
}
