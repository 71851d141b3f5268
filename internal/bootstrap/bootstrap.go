// Package bootstrap fetches the client's remote configuration from the
// backend and builds the identity provider from it.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/ioutil"
	"github.com/dgellow/nexusquery/internal/log"
	"github.com/dgellow/nexusquery/internal/session"
	"github.com/dgellow/nexusquery/internal/urlutil"
)

// UserMessage is what the UI shows when bootstrap fails.
const UserMessage = "Failed to initialize app. Check backend /config endpoint."

// RemoteConfig is the backend's GET /config response.
type RemoteConfig struct {
	APIKey     config.Secret `json:"apiKey"`
	AuthDomain string        `json:"authDomain"`
	ProjectID  string        `json:"projectId"`
	// APIURL is the base for API calls. It falls back to the backend URL
	// the config was fetched from.
	APIURL string `json:"API_URL,omitempty"`
}

// Error is a failed bootstrap. The application cannot continue after one.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bootstrap failed while %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ProviderFactory builds the identity provider for a remote config.
type ProviderFactory func(ctx context.Context, remote *RemoteConfig) (idp.Provider, error)

// FirebaseFactory returns a ProviderFactory for Firebase, with Google
// sign-in enabled when google is non-nil.
func FirebaseFactory(google *config.GoogleConfig) ProviderFactory {
	return func(ctx context.Context, remote *RemoteConfig) (idp.Provider, error) {
		fc := idp.FirebaseConfig{
			APIKey:     string(remote.APIKey),
			AuthDomain: remote.AuthDomain,
			ProjectID:  remote.ProjectID,
		}
		if google != nil {
			fc.GoogleClientID = google.ClientID
			fc.GoogleClientSecret = string(google.ClientSecret)
		}
		return idp.NewProvider(ctx, idp.Settings{Type: "firebase", Firebase: fc})
	}
}

// Loader performs the one-time bootstrap.
type Loader struct {
	state      *session.State
	baseURL    string
	httpClient *http.Client
	factory    ProviderFactory

	group  singleflight.Group
	mu     sync.Mutex
	remote *RemoteConfig
}

// NewLoader creates a loader that fetches {baseURL}/config. A nil
// httpClient gets a client with the given timeout.
func NewLoader(state *session.State, baseURL string, httpClient *http.Client, timeout time.Duration, factory ProviderFactory) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Loader{
		state:      state,
		baseURL:    baseURL,
		httpClient: httpClient,
		factory:    factory,
	}
}

// Load fetches the remote config, builds the provider and initializes the
// state. Concurrent calls share one fetch; once it has succeeded, later
// calls return the stored config. Failures are not retried.
func (l *Loader) Load(ctx context.Context) (*RemoteConfig, error) {
	l.mu.Lock()
	if l.remote != nil {
		remote := l.remote
		l.mu.Unlock()
		return remote, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do("config", func() (any, error) {
		l.mu.Lock()
		remote := l.remote
		l.mu.Unlock()
		if remote != nil {
			return remote, nil
		}
		return l.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RemoteConfig), nil
}

func (l *Loader) load(ctx context.Context) (*RemoteConfig, error) {
	remote, err := l.fetch(ctx)
	if err != nil {
		log.LogErrorWithFields("bootstrap", "Failed to load remote config", map[string]any{
			"backend": l.baseURL,
			"error":   err.Error(),
		})
		return nil, err
	}

	log.LogInfoWithFields("bootstrap", "Remote config loaded", map[string]any{
		"apiKey":     remote.APIKey.String(),
		"authDomain": remote.AuthDomain,
		"projectId":  remote.ProjectID,
		"apiURL":     remote.APIURL,
	})

	provider, err := l.factory(ctx, remote)
	if err != nil {
		return nil, &Error{Stage: "initializing identity provider", Err: err}
	}
	log.LogInfoWithFields("bootstrap", "Identity provider initialized", map[string]any{
		"provider": provider.Type(),
	})

	if err := l.state.Initialize(remote.APIURL, provider); err != nil {
		return nil, &Error{Stage: "initializing state", Err: err}
	}

	l.mu.Lock()
	l.remote = remote
	l.mu.Unlock()
	return remote, nil
}

func (l *Loader) fetch(ctx context.Context) (*RemoteConfig, error) {
	target, err := urlutil.Endpoint(l.baseURL, "/config")
	if err != nil {
		return nil, &Error{Stage: "resolving backend URL", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Stage: "creating request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Stage: "fetching config", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := ioutil.ReadLimited(resp.Body, 512)
		return nil, &Error{Stage: "fetching config", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	data, err := ioutil.ReadBody(resp.Body, ioutil.MaxResponseBody)
	if err != nil {
		return nil, &Error{Stage: "reading config", Err: err}
	}

	var remote RemoteConfig
	if err := json.Unmarshal(data, &remote); err != nil {
		return nil, &Error{Stage: "decoding config", Err: err}
	}
	if remote.APIKey == "" {
		return nil, &Error{Stage: "validating config", Err: fmt.Errorf("apiKey is missing")}
	}
	if remote.APIURL == "" {
		remote.APIURL = l.baseURL
	}
	return &remote, nil
}
