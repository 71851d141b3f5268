package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// UnmarshalJSON implements custom unmarshaling for Config. Omitted fields
// keep their Default() values, durations are Go duration strings and the
// backend URL and Google credentials may be $env references.
func (c *Config) UnmarshalJSON(data []byte) error {
	type rawTiming struct {
		MessageTTL          string `json:"messageTtl"`
		RefreshInterval     string `json:"refreshInterval"`
		LogoutDelay         string `json:"logoutDelay"`
		SignUpRedirectDelay string `json:"signUpRedirectDelay"`
	}
	type rawEffects struct {
		Background  *bool `json:"background"`
		CursorTrail *bool `json:"cursorTrail"`
	}
	type rawConfig struct {
		Version             string          `json:"version"`
		BackendURL          json.RawMessage `json:"backendURL,omitempty"`
		RequestTimeout      string          `json:"requestTimeout,omitempty"`
		GoogleSignInTimeout string          `json:"googleSignInTimeout,omitempty"`
		SignUpVia           SignUpVia       `json:"signUpVia,omitempty"`
		Google              *GoogleConfig   `json:"google,omitempty"`
		Timing              rawTiming       `json:"timing"`
		Effects             rawEffects      `json:"effects"`
		Log                 LogConfig       `json:"log"`
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Default()
	c.Version = raw.Version
	c.Google = raw.Google

	if raw.BackendURL != nil {
		parsed, err := ParseConfigValue(raw.BackendURL)
		if err != nil {
			return fmt.Errorf("parsing backendURL: %w", err)
		}
		c.BackendURL = parsed.String()
	}
	if raw.SignUpVia != "" {
		c.SignUpVia = raw.SignUpVia
	}
	if raw.Log.Level != "" {
		c.Log.Level = raw.Log.Level
	}
	c.Log.File = raw.Log.File

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"requestTimeout", raw.RequestTimeout, &c.RequestTimeout},
		{"googleSignInTimeout", raw.GoogleSignInTimeout, &c.GoogleSignInTimeout},
		{"timing.messageTtl", raw.Timing.MessageTTL, &c.Timing.MessageTTL},
		{"timing.refreshInterval", raw.Timing.RefreshInterval, &c.Timing.RefreshInterval},
		{"timing.logoutDelay", raw.Timing.LogoutDelay, &c.Timing.LogoutDelay},
		{"timing.signUpRedirectDelay", raw.Timing.SignUpRedirectDelay, &c.Timing.SignUpRedirectDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if raw.Effects.Background != nil {
		c.Effects.Background = *raw.Effects.Background
	}
	if raw.Effects.CursorTrail != nil {
		c.Effects.CursorTrail = *raw.Effects.CursorTrail
	}

	return nil
}

// UnmarshalJSON implements custom unmarshaling for GoogleConfig so both
// credentials can come from the environment.
func (g *GoogleConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		ClientID     json.RawMessage `json:"clientId"`
		ClientSecret json.RawMessage `json:"clientSecret"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ClientID != nil {
		parsed, err := ParseConfigValue(raw.ClientID)
		if err != nil {
			return fmt.Errorf("parsing google.clientId: %w", err)
		}
		g.ClientID = parsed.String()
	}
	if raw.ClientSecret != nil {
		parsed, err := ParseConfigValue(raw.ClientSecret)
		if err != nil {
			return fmt.Errorf("parsing google.clientSecret: %w", err)
		}
		g.ClientSecret = Secret(parsed.String())
	}
	return nil
}
