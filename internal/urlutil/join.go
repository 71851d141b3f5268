package urlutil

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Endpoint resolves an API endpoint such as "/api/query" or "/config?v=1"
// against a base URL. The base path is kept as a prefix, so a backend
// mounted under "https://host/nexus" serves "/config" at "/nexus/config".
// A query string on the endpoint replaces any query on the base.
func Endpoint(base, endpoint string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL %q must be absolute", base)
	}

	p, query, hasQuery := strings.Cut(endpoint, "?")
	u.Path = path.Join("/", u.Path, p)
	// Preserve trailing slash if the endpoint had one
	if strings.HasSuffix(p, "/") && u.Path != "/" {
		u.Path += "/"
	}
	if hasQuery {
		u.RawQuery = query
	}
	u.Fragment = ""

	return u.String(), nil
}

// MustEndpoint is like Endpoint but panics on error (for use with known-good URLs)
func MustEndpoint(base, endpoint string) string {
	result, err := Endpoint(base, endpoint)
	if err != nil {
		panic(err)
	}
	return result
}
