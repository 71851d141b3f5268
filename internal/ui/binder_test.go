package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/nexusquery/internal/testutil"
)

func TestBinder_FollowsSessionChanges(t *testing.T) {
	f := newFixture(t)
	f.boot()
	assert.Equal(t, PageSignIn, f.model.ActivePage())
	assert.Nil(t, f.state.Session())

	s := testutil.NewSession("uid-1", "ada@example.com", "token")
	f.signIn(s)
	assert.Equal(t, s, f.state.Session())

	f.changes <- nil
	require.True(t, f.driver.Settle(func() bool { return f.model.ActivePage() == PageSignIn }))
	assert.Nil(t, f.state.Session())
	assert.Empty(t, f.model.Identity())
}

func TestBinder_SignOutLeavesSignUpPage(t *testing.T) {
	f := newFixture(t)
	f.boot()
	f.driver.Send(tea.KeyMsg{Type: tea.KeyCtrlN})
	f.driver.Type("ada@example.com")

	f.changes <- nil
	f.driver.Settle(func() bool { return len(f.changes) == 0 })
	// Give the binder a chance to handle the change.
	f.driver.Settle(func() bool { return false })

	assert.Equal(t, PageSignUp, f.model.ActivePage())
	assert.Equal(t, "ada@example.com", f.model.value(signUpEmail), "page was not reset")
}

func TestBinder_SessionOnStartup(t *testing.T) {
	f := newFixture(t)
	s := testutil.NewSession("uid-1", "ada@example.com", "token")
	f.changes <- s
	f.driver.Init()

	require.True(t, f.driver.Settle(func() bool { return f.model.ActivePage() == PageApp }))
	assert.Equal(t, s, f.state.Session())
}

func TestBinder_ClosedStream(t *testing.T) {
	f := newFixture(t)
	close(f.changes)
	f.driver.Init()
	require.True(t, f.driver.Settle(func() bool { return f.model.Ready() }))
	f.driver.Settle(func() bool { return false })

	assert.Equal(t, PageSignIn, f.model.ActivePage())
}
