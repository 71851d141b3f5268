package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/nexusquery/internal/client"
	"github.com/dgellow/nexusquery/internal/testutil"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func signedInFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.boot()
	f.signIn(testutil.NewSession("uid-1", "ada@example.com", "token"))
	return f
}

func TestDashboard_Status(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		f := signedInFixture(t)
		f.gateway.On("Status", mock.Anything).
			Return(&client.StatusResponse{FirebaseUID: "uid-1", Email: "ada@example.com"}, nil)

		f.driver.Send(runeKey('s'))

		assert.Equal(t, msgStatusOK, f.banner(PageApp))
		assert.Equal(t, SeveritySuccess, f.severity(PageApp))
		assert.True(t, f.hasTimer(f.cfg.Timing.MessageTTL))
	})

	t.Run("unreachable", func(t *testing.T) {
		f := signedInFixture(t)
		f.gateway.On("Status", mock.Anything).Return(nil, &client.APIError{Status: 401, Detail: "Invalid token"})

		f.driver.Send(runeKey('s'))

		assert.Equal(t, msgStatusFailed, f.banner(PageApp))
		assert.Equal(t, SeverityError, f.severity(PageApp))
	})
}

func TestDashboard_Query(t *testing.T) {
	t.Run("result shown", func(t *testing.T) {
		f := signedInFixture(t)
		result := &client.QueryResponse{
			Status:  "success",
			Message: "Query executed successfully.",
			UserID:  "uid-1",
			Results: "Sample data for user uid-1",
		}
		f.gateway.On("Query", mock.Anything).Return(result, nil)

		f.driver.Send(runeKey('q'))

		assert.Equal(t, msgQueryOK, f.banner(PageApp))
		assert.Equal(t, result, f.model.QueryResult())
		assert.Contains(t, f.model.View(), "Sample data for user uid-1")
	})

	t.Run("failure", func(t *testing.T) {
		f := signedInFixture(t)
		f.gateway.On("Query", mock.Anything).Return(nil, errors.New("connection refused"))

		f.driver.Send(runeKey('q'))

		assert.Equal(t, msgQueryFailed, f.banner(PageApp))
		assert.Nil(t, f.model.QueryResult())
	})

	t.Run("cleared on navigation", func(t *testing.T) {
		f := signedInFixture(t)
		f.gateway.On("Query", mock.Anything).Return(&client.QueryResponse{Results: "rows"}, nil)
		f.driver.Send(runeKey('q'))
		require.NotNil(t, f.model.QueryResult())

		require.NoError(t, f.model.ShowPage("signin"))
		assert.Nil(t, f.model.QueryResult())
	})
}

func TestDashboard_LogoutOrder(t *testing.T) {
	f := signedInFixture(t)

	var calls callLog
	var progress string
	f.gateway.On("Logout", mock.Anything).
		Run(func(mock.Arguments) {
			progress = f.banner(PageApp)
			calls.add("gateway")
		}).
		Return(&client.MessageResponse{Status: "success"}, nil)
	f.provider.On("SignOut", mock.Anything).
		Run(func(mock.Arguments) { calls.add("provider") }).
		Return(nil)

	f.driver.Send(runeKey('l'))

	assert.Equal(t, msgLoggingOut, progress)
	assert.Equal(t, []string{"gateway", "provider"}, calls.get())
	assert.Equal(t, msgLoggedOut, f.banner(PageApp))
	assert.Equal(t, PageApp, f.model.ActivePage(), "navigation waits for the delay")

	f.fire(f.cfg.Timing.LogoutDelay)
	assert.Equal(t, PageSignIn, f.model.ActivePage())
}

func TestDashboard_LogoutFailure(t *testing.T) {
	t.Run("gateway", func(t *testing.T) {
		f := signedInFixture(t)
		f.gateway.On("Logout", mock.Anything).Return(nil, &client.APIError{Status: 500})

		f.driver.Send(runeKey('l'))

		assert.Equal(t, msgLogoutFailed, f.banner(PageApp))
		assert.Equal(t, SeverityError, f.severity(PageApp))
		assert.Equal(t, PageApp, f.model.ActivePage())
		assert.False(t, f.hasTimer(f.cfg.Timing.LogoutDelay))
		f.provider.AssertNotCalled(t, "SignOut", mock.Anything)
	})

	t.Run("provider", func(t *testing.T) {
		f := signedInFixture(t)
		f.gateway.On("Logout", mock.Anything).Return(&client.MessageResponse{}, nil)
		f.provider.On("SignOut", mock.Anything).Return(errors.New("boom"))

		f.driver.Send(runeKey('l'))

		assert.Equal(t, msgLogoutFailed, f.banner(PageApp))
		assert.Equal(t, PageApp, f.model.ActivePage())
	})
}

func TestDashboard_IdentityRefresh(t *testing.T) {
	f := signedInFixture(t)
	assert.Equal(t, "Logged in as: ada@example.com", f.model.Identity())

	f.state.SetSession(testutil.NewSession("uid-1", "ada.lovelace@example.com", "token"))
	f.fire(f.cfg.Timing.RefreshInterval)

	assert.Equal(t, "Logged in as: ada.lovelace@example.com", f.model.Identity())
	assert.True(t, f.hasTimer(f.cfg.Timing.RefreshInterval), "tick re-armed")
}

func TestDashboard_KeysIgnoredElsewhere(t *testing.T) {
	f := newFixture(t)
	f.boot()

	f.driver.Send(runeKey('s'))
	f.driver.Send(runeKey('q'))
	f.driver.Send(runeKey('l'))

	assert.Equal(t, "sql", f.model.value(signInEmail), "letters go to the focused input")
	f.gateway.AssertNotCalled(t, "Status", mock.Anything)
	f.gateway.AssertNotCalled(t, "Query", mock.Anything)
	f.gateway.AssertNotCalled(t, "Logout", mock.Anything)
}
