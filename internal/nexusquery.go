package internal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgellow/nexusquery/internal/bootstrap"
	"github.com/dgellow/nexusquery/internal/client"
	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/effects"
	"github.com/dgellow/nexusquery/internal/log"
	"github.com/dgellow/nexusquery/internal/session"
	"github.com/dgellow/nexusquery/internal/ui"
)

// Backdrop tuning.
const (
	networkNodes     = 36
	networkThreshold = 14.0
	trailPerSecond   = 30
	trailLifetime    = 600 * time.Millisecond
)

// NexusQuery represents the complete client application
type NexusQuery struct {
	config  config.Config
	state   *session.State
	loader  *bootstrap.Loader
	gateway *client.Client
	effects *effects.Registry
}

// NewNexusQuery creates the client with all dependencies built. Nothing
// touches the network until Run or Check.
func NewNexusQuery(cfg config.Config) (*NexusQuery, error) {
	log.LogInfoWithFields("nexusquery", "Building client", map[string]any{
		"backendURL": cfg.BackendURL,
		"signUpVia":  string(cfg.SignUpVia),
		"google":     cfg.GoogleEnabled(),
	})

	state := session.New()
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	registry, err := buildEffects(cfg.Effects)
	if err != nil {
		return nil, fmt.Errorf("failed to set up effects: %w", err)
	}

	return &NexusQuery{
		config:  cfg,
		state:   state,
		loader:  bootstrap.NewLoader(state, cfg.BackendURL, httpClient, cfg.RequestTimeout, bootstrap.FirebaseFactory(cfg.Google)),
		gateway: client.New(state, httpClient, cfg.RequestTimeout),
		effects: registry,
	}, nil
}

func buildEffects(cfg config.EffectsConfig) (*effects.Registry, error) {
	registry := effects.NewRegistry()
	if cfg.Background {
		seed := uint64(time.Now().UnixNano())
		if err := registry.Register(effects.NewNetworkBackground(networkNodes, networkThreshold, seed)); err != nil {
			return nil, err
		}
	}
	if cfg.CursorTrail {
		if err := registry.Register(effects.NewCursorTrail(trailPerSecond, trailLifetime)); err != nil {
			return nil, err
		}
	}
	log.LogDebugWithFields("nexusquery", "Effects registered", map[string]any{
		"effects": registry.Names(),
	})
	return registry, nil
}

// Model returns a fresh UI model wired to the client's collaborators.
func (n *NexusQuery) Model() *ui.Model {
	return ui.New(ui.Options{
		Config:  n.config,
		State:   n.state,
		Loader:  n.loader,
		Gateway: n.gateway,
		Effects: n.effects,
	})
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
func (n *NexusQuery) Run(ctx context.Context) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if n.config.Effects.CursorTrail {
		opts = append(opts, tea.WithMouseAllMotion())
	}

	log.LogInfoWithFields("nexusquery", "Starting client", nil)
	if _, err := tea.NewProgram(n.Model(), opts...).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	log.LogInfoWithFields("nexusquery", "Client exited", nil)
	return nil
}

// Check bootstraps headlessly and calls the backend health endpoint.
func (n *NexusQuery) Check(ctx context.Context) (*client.HealthResponse, error) {
	remote, err := n.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	health, err := n.gateway.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("health check against %s: %w", remote.APIURL, err)
	}
	return health, nil
}
