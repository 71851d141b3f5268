package urlutil

import (
	"testing"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		endpoint string
		want     string
		wantErr  bool
	}{
		{
			name:     "simple endpoint",
			base:     "http://localhost:8000",
			endpoint: "/config",
			want:     "http://localhost:8000/config",
		},
		{
			name:     "base with trailing slash",
			base:     "http://localhost:8000/",
			endpoint: "/api/query",
			want:     "http://localhost:8000/api/query",
		},
		{
			name:     "base with path",
			base:     "https://example.com/nexus",
			endpoint: "/auth/status",
			want:     "https://example.com/nexus/auth/status",
		},
		{
			name:     "endpoint without leading slash",
			base:     "https://example.com",
			endpoint: "health",
			want:     "https://example.com/health",
		},
		{
			name:     "query preserved",
			base:     "https://example.com",
			endpoint: "/api/query?limit=10&q=a+b",
			want:     "https://example.com/api/query?limit=10&q=a+b",
		},
		{
			name:     "trailing slash preserved",
			base:     "https://example.com",
			endpoint: "/auth/",
			want:     "https://example.com/auth/",
		},
		{
			name:     "relative base rejected",
			base:     "localhost:8000",
			endpoint: "/config",
			wantErr:  true,
		},
		{
			name:     "invalid base URL",
			base:     "://invalid",
			endpoint: "/config",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Endpoint(tt.base, tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Errorf("Endpoint() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Endpoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustEndpoint(t *testing.T) {
	result := MustEndpoint("https://example.com", "/health")
	if result != "https://example.com/health" {
		t.Errorf("MustEndpoint() = %v, want %v", result, "https://example.com/health")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("MustEndpoint() should have panicked")
		}
	}()
	MustEndpoint("://invalid", "/health")
}
