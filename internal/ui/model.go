// Package ui is the terminal front end: the sign-in, sign-up and dashboard
// pages, the session binder that switches between them, and the banner
// presenter.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgellow/nexusquery/internal/bootstrap"
	"github.com/dgellow/nexusquery/internal/client"
	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/effects"
	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/log"
	"github.com/dgellow/nexusquery/internal/session"
)

// Loader performs the one-time bootstrap.
type Loader interface {
	Load(ctx context.Context) (*bootstrap.RemoteConfig, error)
}

// Gateway is the backend API the pages call.
type Gateway interface {
	Status(ctx context.Context) (*client.StatusResponse, error)
	Query(ctx context.Context) (*client.QueryResponse, error)
	SignUp(ctx context.Context, email, password string) (*client.SignUpResponse, error)
	SendVerificationEmail(ctx context.Context, email string) (*client.MessageResponse, error)
	Logout(ctx context.Context) (*client.MessageResponse, error)
}

// Options configures a Model.
type Options struct {
	Config  config.Config
	State   *session.State
	Loader  Loader
	Gateway Gateway
	// Effects may be nil or empty; the backdrop is then blank.
	Effects *effects.Registry
	// Timer defaults to TickTimer.
	Timer Timer
	// Theme defaults to DefaultTheme.
	Theme *Theme
}

// Model is the root bubbletea model.
type Model struct {
	cfg     config.Config
	state   *session.State
	loader  Loader
	gateway Gateway
	effects *effects.Registry
	timer   Timer

	keys   KeyMap
	help   help.Model
	styles styles

	// Bootstrap.
	ready   bool
	bootErr error
	changes <-chan *idp.Session

	// Pages.
	active      Page
	inputs      [numInputs]textinput.Model
	focus       int
	presenter   *Presenter
	google      *googleSignIn
	identity    string
	queryResult *client.QueryResponse

	width, height int
	canvas        *effects.Canvas
}

// New creates the model. The sign-in page is active until the session
// binder decides otherwise.
func New(opts Options) *Model {
	timer := opts.Timer
	if timer == nil {
		timer = TickTimer
	}
	theme := DefaultTheme
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	registry := opts.Effects
	if registry == nil {
		registry = effects.NewRegistry()
	}

	s := newStyles(theme)
	h := help.New()
	h.Styles.ShortKey = s.help.Bold(true)
	h.Styles.ShortDesc = s.help
	h.Styles.ShortSeparator = s.faint

	m := &Model{
		cfg:       opts.Config,
		state:     opts.State,
		loader:    opts.Loader,
		gateway:   opts.Gateway,
		effects:   registry,
		timer:     timer,
		keys:      DefaultKeyMap,
		help:      h,
		styles:    s,
		inputs:    newInputs(),
		presenter: NewPresenter(opts.Config.Timing.MessageTTL, timer),
		canvas:    effects.NewCanvas(0, 0),
	}
	m.navigate(PageSignIn)
	return m
}

type bootstrapDoneMsg struct{ err error }

// Init starts the bootstrap, the dashboard refresh and the effects.
func (m *Model) Init() tea.Cmd {
	loader := m.loader
	timeout := m.cfg.RequestTimeout
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := loader.Load(ctx)
		return bootstrapDoneMsg{err: err}
	}
	return tea.Batch(load, m.scheduleRefresh(), m.effects.Init())
}

// Update handles a message. Every message also reaches the effects.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.effects.Update(msg)}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	case bootstrapDoneMsg:
		cmds = append(cmds, m.handleBootstrap(msg))
	case sessionChangedMsg:
		cmds = append(cmds, m.handleSessionChange(msg))
	case sessionClosedMsg:
		log.LogWarn("Session change stream closed")
	case clearBannerMsg:
		m.presenter.Clear(msg.page)
	case refreshTickMsg:
		cmds = append(cmds, m.handleRefresh())
	case signInResultMsg:
		cmds = append(cmds, m.handleSignInResult(msg))
	case signUpResultMsg:
		cmds = append(cmds, m.handleSignUpResult(msg))
	case signUpSignedOutMsg:
		cmds = append(cmds, m.handleSignUpSignedOut(msg))
	case signUpRedirectMsg:
		cmds = append(cmds, m.handleSignUpRedirect())
	case verifyResultMsg:
		cmds = append(cmds, m.handleVerifyResult(msg))
	case googleStartedMsg:
		cmds = append(cmds, m.handleGoogleStarted(msg))
	case googleResultMsg:
		cmds = append(cmds, m.handleGoogleResult(msg))
	case statusResultMsg:
		cmds = append(cmds, m.handleStatusResult(msg))
	case queryResultMsg:
		cmds = append(cmds, m.handleQueryResult(msg))
	case logoutResultMsg:
		cmds = append(cmds, m.handleLogoutResult(msg))
	case logoutRedirectMsg:
		m.navigate(PageSignIn)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleBootstrap(msg bootstrapDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.bootErr = msg.err
		log.LogErrorWithFields("ui", "Bootstrap failed", map[string]any{
			"error": msg.err.Error(),
		})
		return nil
	}
	m.ready = true
	return m.bindSession(m.state.Provider())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.cancelGoogleSignIn()
		return tea.Quit
	}

	// The bootstrap error modal blocks the whole application.
	if m.bootErr != nil {
		if key.Matches(msg, m.keys.Submit, m.keys.Cancel) {
			return tea.Quit
		}
		return nil
	}
	if !m.ready {
		return nil
	}

	switch m.active {
	case PageApp:
		switch {
		case key.Matches(msg, m.keys.Status):
			return m.checkStatus()
		case key.Matches(msg, m.keys.Query):
			return m.runQuery()
		case key.Matches(msg, m.keys.Logout):
			return m.logout()
		}
		return nil

	case PageSignIn:
		if m.google != nil {
			if key.Matches(msg, m.keys.Cancel) {
				m.cancelGoogleSignIn()
			}
			return nil
		}
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submitSignIn()
		case key.Matches(msg, m.keys.GoogleSignIn):
			return m.beginGoogleSignIn()
		case key.Matches(msg, m.keys.ToSignUp):
			m.navigate(PageSignUp)
			return nil
		}

	case PageSignUp:
		switch {
		case key.Matches(msg, m.keys.Submit):
			if id, ok := m.focusedInput(); ok && id == verifyEmail {
				return m.submitVerification()
			}
			return m.submitSignUp()
		case key.Matches(msg, m.keys.ToSignIn):
			m.navigate(PageSignIn)
			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.NextField):
		m.cycleFocus(1)
		return nil
	case key.Matches(msg, m.keys.PrevField):
		m.cycleFocus(-1)
		return nil
	}

	id, ok := m.focusedInput()
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[id], cmd = m.inputs[id].Update(msg)
	return cmd
}

// Ready reports whether bootstrap has completed.
func (m *Model) Ready() bool {
	return m.ready
}

// BootstrapError returns the bootstrap failure, if any.
func (m *Model) BootstrapError() error {
	return m.bootErr
}

// Banner returns the page's current banner.
func (m *Model) Banner(page Page) (Banner, bool) {
	return m.presenter.Banner(page)
}

// Identity returns the dashboard's "Logged in as" label.
func (m *Model) Identity() string {
	return m.identity
}
