package envutil

import (
	"os"
	"strings"
)

// IsDev checks if we're running in development mode
// where warnings about insecure local setups are relaxed
func IsDev() bool {
	env := strings.ToLower(os.Getenv("NEXUSQUERY_ENV"))
	return env == "development" || env == "dev"
}

// URLOverride returns the endpoint named by the environment variable, or
// fallback when it is unset. Tests and local emulators use it to redirect
// calls to Google endpoints.
func URLOverride(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
