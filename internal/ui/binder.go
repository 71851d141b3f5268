package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/log"
)

type (
	sessionChangedMsg struct{ session *idp.Session }
	sessionClosedMsg  struct{}
)

// waitForSession delivers the next session change. It is re-armed after
// every change for the life of the program.
func waitForSession(changes <-chan *idp.Session) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-changes
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionChangedMsg{session: s}
	}
}

// bindSession subscribes to the provider's session changes. The first
// change reflects the state at subscription time.
func (m *Model) bindSession(provider idp.Provider) tea.Cmd {
	if provider == nil {
		return nil
	}
	m.changes = provider.Changes()
	log.LogDebugWithFields("binder", "Listening for session changes", map[string]any{
		"provider": provider.Type(),
	})
	return waitForSession(m.changes)
}

// handleSessionChange keeps the current session in sync and picks the page:
// the dashboard when signed in, sign-in when signed out. A user on the
// sign-up page stays there when signed out.
func (m *Model) handleSessionChange(msg sessionChangedMsg) tea.Cmd {
	m.state.SetSession(msg.session)

	if msg.session != nil {
		log.LogInfoWithFields("binder", "User signed in", map[string]any{
			"uid":      msg.session.UID,
			"provider": msg.session.ProviderID,
		})
		m.navigate(PageApp)
		m.refreshIdentity()
	} else {
		log.LogDebug("User signed out")
		m.identity = ""
		if m.active != PageSignUp {
			m.navigate(PageSignIn)
		}
	}

	return waitForSession(m.changes)
}
