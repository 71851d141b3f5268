package envutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDev(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"production", false},
		{"dev", true},
		{"Development", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("NEXUSQUERY_ENV", tt.value)
			assert.Equal(t, tt.want, IsDev())
		})
	}
}

func TestURLOverride(t *testing.T) {
	t.Setenv("SECURE_TOKEN_URL", "")
	assert.Equal(t, "https://default", URLOverride("SECURE_TOKEN_URL", "https://default"))

	t.Setenv("SECURE_TOKEN_URL", " http://127.0.0.1:9099/token ")
	assert.Equal(t, "http://127.0.0.1:9099/token", URLOverride("SECURE_TOKEN_URL", "https://default"))
}
