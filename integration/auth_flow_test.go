package integration

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/nexusquery/internal"
	"github.com/dgellow/nexusquery/internal/ui"
)

func TestSignInQueryLogout(t *testing.T) {
	env := newTestEnv(t)
	uid := env.idp.AddUser("ada@example.com", "hunter22")
	c := env.start(t)

	c.signIn("ada@example.com", "hunter22")
	c.waitForPage(ui.PageApp)
	assert.Equal(t, "Logged in as: ada@example.com", c.model.Identity())

	c.key('q')
	c.waitForBanner(ui.PageApp, "Query executed successfully!")
	require.NotNil(t, c.model.QueryResult())
	assert.Equal(t, "Sample data for user "+uid, c.model.QueryResult().Results)
	assert.Contains(t, c.model.View(), "Sample data for user "+uid)

	c.key('s')
	c.waitForBanner(ui.PageApp, "Backend is connected and running successfully!")

	c.key('l')
	c.waitForPage(ui.PageSignIn)
	assert.Equal(t, []string{uid}, env.backend.LoggedOut())
	assert.Empty(t, c.model.Identity())
	assert.Nil(t, c.model.QueryResult())

	calls := env.backend.Calls()
	assert.Contains(t, calls, "GET /config")
	assert.Contains(t, calls, "GET /api/query")
	assert.Contains(t, calls, "GET /auth/status")
	assert.Contains(t, calls, "POST /auth/logout")
}

func TestSignIn_Errors(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "hunter22",
			want:     "No account found. Please create an account first.",
		},
		{
			name:     "wrong password",
			email:    "ada@example.com",
			password: "not-it",
			want:     "Incorrect password. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.idp.AddUser("ada@example.com", "hunter22")
			c := env.start(t)

			c.signIn(tt.email, tt.password)
			c.waitForBanner(ui.PageSignIn, tt.want)
			assert.Equal(t, ui.PageSignIn, c.model.ActivePage())
			assert.NotContains(t, env.backend.Calls(), "GET /api/query")
		})
	}
}

func TestTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.idp.ExpiresIn = "1"
	env.idp.AddUser("ada@example.com", "hunter22")
	c := env.start(t)

	c.signIn("ada@example.com", "hunter22")
	c.waitForPage(ui.PageApp)

	c.key('q')
	c.waitForBanner(ui.PageApp, "Query executed successfully!")
	assert.Equal(t, 1, env.idp.Refreshed(), "a token inside the expiry window is refreshed before use")

	c.key('s')
	c.waitForBanner(ui.PageApp, "Backend is connected and running successfully!")
	assert.Equal(t, 1, env.idp.Refreshed(), "the refreshed token is reused")
}

func TestLogout_InvalidatedToken(t *testing.T) {
	env := newTestEnv(t)
	env.idp.AddUser("ada@example.com", "hunter22")
	c := env.start(t)

	c.signIn("ada@example.com", "hunter22")
	c.waitForPage(ui.PageApp)

	// Forget every issued token so the backend rejects the next call.
	env.idp.mu.Lock()
	env.idp.tokens = make(map[string]string)
	env.idp.mu.Unlock()

	c.key('l')
	c.waitForBanner(ui.PageApp, "Logout failed. Please try again.")
	assert.Equal(t, ui.PageApp, c.model.ActivePage())
	assert.Empty(t, env.backend.LoggedOut())
}

func TestBootstrapFailure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.ConfigStatus = 503
	c := env.newTestClient(t)

	c.waitFor(func() bool { return c.model.BootstrapError() != nil }, "bootstrap error")
	assert.False(t, c.model.Ready())
	assert.Contains(t, c.model.View(), "Failed to initialize app. Check backend /config endpoint.")

	c.driver.Type("ada@example.com")
	assert.False(t, c.driver.Quit())
	c.driver.Press(tea.KeyEnter)
	assert.True(t, c.driver.Quit())
}

func TestCheck(t *testing.T) {
	env := newTestEnv(t)
	nq, err := internal.NewNexusQuery(env.testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := nq.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "NexusQuery Auth Service", health.Service)
}

func TestCheck_ConfigUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.backend.ConfigStatus = 500
	nq, err := internal.NewNexusQuery(env.testConfig())
	require.NoError(t, err)

	_, err = nq.Check(context.Background())
	assert.Error(t, err)
	assert.NotContains(t, env.backend.Calls(), "GET /health")
}
