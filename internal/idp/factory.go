package idp

import (
	"context"
	"fmt"
)

// Settings selects and configures the identity provider.
type Settings struct {
	// Type is the provider type. Empty means "firebase".
	Type     string
	Firebase FirebaseConfig
}

// NewProvider creates a Provider based on the Settings.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	switch s.Type {
	case "", "firebase":
		return NewFirebaseProvider(ctx, s.Firebase)

	default:
		return nil, fmt.Errorf("unknown provider type: %s", s.Type)
	}
}
