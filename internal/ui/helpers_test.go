package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/nexusquery/internal/bootstrap"
	"github.com/dgellow/nexusquery/internal/client"
	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/session"
	"github.com/dgellow/nexusquery/internal/testutil"
)

type mockGateway struct {
	mock.Mock
}

func (g *mockGateway) Status(ctx context.Context) (*client.StatusResponse, error) {
	args := g.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.StatusResponse), args.Error(1)
}

func (g *mockGateway) Query(ctx context.Context) (*client.QueryResponse, error) {
	args := g.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.QueryResponse), args.Error(1)
}

func (g *mockGateway) SignUp(ctx context.Context, email, password string) (*client.SignUpResponse, error) {
	args := g.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.SignUpResponse), args.Error(1)
}

func (g *mockGateway) SendVerificationEmail(ctx context.Context, email string) (*client.MessageResponse, error) {
	args := g.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.MessageResponse), args.Error(1)
}

func (g *mockGateway) Logout(ctx context.Context) (*client.MessageResponse, error) {
	args := g.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.MessageResponse), args.Error(1)
}

// stubLoader initializes the state with a fixed provider, or fails.
type stubLoader struct {
	state    *session.State
	provider idp.Provider
	err      error
}

func (l *stubLoader) Load(ctx context.Context) (*bootstrap.RemoteConfig, error) {
	if l.err != nil {
		return nil, l.err
	}
	if err := l.state.Initialize("http://backend.test", l.provider); err != nil {
		return nil, err
	}
	return &bootstrap.RemoteConfig{APIKey: "key", APIURL: "http://backend.test"}, nil
}

// callLog records collaborator calls across goroutines.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *callLog) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type fixture struct {
	t        *testing.T
	cfg      config.Config
	state    *session.State
	provider *testutil.MockProvider
	gateway  *mockGateway
	loader   *stubLoader
	timer    *testutil.FakeTimer
	changes  chan *idp.Session
	model    *Model
	driver   *testutil.Driver
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}

	state := session.New()
	provider := &testutil.MockProvider{}
	changes := make(chan *idp.Session, 8)
	provider.On("Changes").Return(changes).Maybe()

	f := &fixture{
		t:        t,
		cfg:      cfg,
		state:    state,
		provider: provider,
		gateway:  &mockGateway{},
		loader:   &stubLoader{state: state, provider: provider},
		timer:    &testutil.FakeTimer{},
		changes:  changes,
	}
	f.model = New(Options{
		Config:  cfg,
		State:   state,
		Loader:  f.loader,
		Gateway: f.gateway,
		Timer:   f.timer.Schedule,
	})
	f.driver = testutil.NewDriver(t, f.model, 50*time.Millisecond)
	return f
}

// boot runs Init and waits until the binder has seen the signed-out state.
func (f *fixture) boot() {
	f.t.Helper()
	f.changes <- nil
	f.driver.Init()
	require.True(f.t, f.driver.Settle(func() bool { return f.model.Ready() && len(f.changes) == 0 }))
}

// signIn publishes a session and waits for the dashboard.
func (f *fixture) signIn(s *idp.Session) {
	f.t.Helper()
	f.changes <- s
	require.True(f.t, f.driver.Settle(func() bool { return f.model.ActivePage() == PageApp }))
}

func (f *fixture) banner(page Page) string {
	b, _ := f.model.Banner(page)
	return b.Text
}

func (f *fixture) severity(page Page) Severity {
	b, _ := f.model.Banner(page)
	return b.Severity
}

// fire delivers the oldest pending timer with delay d.
func (f *fixture) fire(d time.Duration) {
	f.t.Helper()
	s, ok := f.timer.Take(d)
	require.True(f.t, ok, "no timer pending for %s", d)
	f.driver.Send(s.Msg)
}

func (f *fixture) hasTimer(d time.Duration) bool {
	for _, s := range f.timer.Pending() {
		if s.Delay == d {
			return true
		}
	}
	return false
}

// fireAll delivers every pending timer with delay d, oldest first.
func (f *fixture) fireAll(d time.Duration) int {
	f.t.Helper()
	n := 0
	for {
		s, ok := f.timer.Take(d)
		if !ok {
			return n
		}
		f.driver.Send(s.Msg)
		n++
	}
}
