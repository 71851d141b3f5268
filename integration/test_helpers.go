package integration

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/nexusquery/internal"
	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/testutil"
	"github.com/dgellow/nexusquery/internal/ui"
)

const driverWait = 100 * time.Millisecond

// testEnv is a running identity toolkit and backend pair.
type testEnv struct {
	idp     *FakeIdentityToolkit
	backend *FakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	idp := NewFakeIdentityToolkit()
	t.Cleanup(idp.Close)
	backend := NewFakeBackend(idp)
	t.Cleanup(backend.Close)

	t.Setenv("IDENTITY_TOOLKIT_URL", idp.URL()+"/")
	t.Setenv("SECURE_TOKEN_URL", idp.URL()+"/token")
	return &testEnv{idp: idp, backend: backend}
}

// testConfig returns a config pointed at the fake backend. Banners and the
// refresh loop outlive the test; the navigation delays are short so they
// fire while the driver waits.
func (e *testEnv) testConfig(opts ...func(*config.Config)) config.Config {
	cfg := config.Default()
	cfg.BackendURL = e.backend.URL()
	cfg.RequestTimeout = 5 * time.Second
	cfg.Timing.MessageTTL = time.Hour
	cfg.Timing.RefreshInterval = time.Hour
	cfg.Timing.LogoutDelay = 10 * time.Millisecond
	cfg.Timing.SignUpRedirectDelay = 10 * time.Millisecond
	cfg.Effects = config.EffectsConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// testClient drives a full client against the fakes.
type testClient struct {
	t      *testing.T
	nq     *internal.NexusQuery
	model  *ui.Model
	driver *testutil.Driver
}

func (e *testEnv) newTestClient(t *testing.T, opts ...func(*config.Config)) *testClient {
	t.Helper()
	nq, err := internal.NewNexusQuery(e.testConfig(opts...))
	require.NoError(t, err)

	model := nq.Model()
	c := &testClient{
		t:      t,
		nq:     nq,
		model:  model,
		driver: testutil.NewDriver(t, model, driverWait),
	}
	c.driver.Init()
	return c
}

// start boots the client and waits for the sign-in page.
func (e *testEnv) start(t *testing.T, opts ...func(*config.Config)) *testClient {
	t.Helper()
	c := e.newTestClient(t, opts...)
	c.waitFor(func() bool { return c.model.Ready() }, "bootstrap")
	require.Equal(t, ui.PageSignIn, c.model.ActivePage())
	return c
}

func (c *testClient) waitFor(cond func() bool, what string) {
	c.t.Helper()
	require.True(c.t, c.driver.Settle(cond), "timed out waiting for %s", what)
}

func (c *testClient) waitForPage(page ui.Page) {
	c.t.Helper()
	c.waitFor(func() bool { return c.model.ActivePage() == page }, "page "+page.String())
}

func (c *testClient) waitForBanner(page ui.Page, text string) {
	c.t.Helper()
	c.waitFor(func() bool {
		b, ok := c.model.Banner(page)
		return ok && b.Text == text
	}, "banner "+text)
}

func (c *testClient) banner(page ui.Page) string {
	b, _ := c.model.Banner(page)
	return b.Text
}

// fill types into the focused field and the one after it.
func (c *testClient) fill(first, second string) {
	c.driver.Type(first)
	c.driver.Press(tea.KeyTab)
	c.driver.Type(second)
}

func (c *testClient) signIn(email, password string) {
	c.t.Helper()
	c.fill(email, password)
	c.driver.Press(tea.KeyEnter)
}

func (c *testClient) ctrl(k tea.KeyType) {
	c.driver.Send(tea.KeyMsg{Type: k})
}

func (c *testClient) key(r rune) {
	c.driver.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}
