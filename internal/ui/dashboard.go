package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgellow/nexusquery/internal/client"
	"github.com/dgellow/nexusquery/internal/log"
)

const (
	msgStatusChecking = "Checking backend connection..."
	msgStatusOK       = "Backend is connected and running successfully!"
	msgStatusFailed   = "Unable to connect to backend. Please check if the server is running."
	msgQueryRunning   = "Running your query..."
	msgQueryOK        = "Query executed successfully!"
	msgQueryFailed    = "Query failed. Please try again or check your connection."
	msgLoggingOut     = "Logging you out..."
	msgLoggedOut      = "Logged out successfully!"
	msgLogoutFailed   = "Logout failed. Please try again."
)

type refreshTickMsg struct{}

func (m *Model) scheduleRefresh() tea.Cmd {
	return m.timer(m.cfg.Timing.RefreshInterval, refreshTickMsg{})
}

// handleRefresh updates the identity label while the dashboard is shown and
// re-arms the tick.
func (m *Model) handleRefresh() tea.Cmd {
	if m.active == PageApp {
		m.refreshIdentity()
	}
	return m.scheduleRefresh()
}

func (m *Model) refreshIdentity() {
	if s := m.state.Session(); s != nil {
		m.identity = "Logged in as: " + s.Email
	}
}

type statusResultMsg struct {
	resp *client.StatusResponse
	err  error
}

func (m *Model) checkStatus() tea.Cmd {
	m.presenter.Progress(PageApp, msgStatusChecking)
	gateway := m.gateway
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		resp, err := gateway.Status(ctx)
		return statusResultMsg{resp: resp, err: err}
	}
}

func (m *Model) handleStatusResult(msg statusResultMsg) tea.Cmd {
	if msg.err != nil {
		log.LogWarnWithFields("dashboard", "Status check failed", map[string]any{
			"error": msg.err.Error(),
		})
		return m.presenter.Show(PageApp, msgStatusFailed, SeverityError)
	}
	log.LogDebugWithFields("dashboard", "Status check passed", map[string]any{
		"uid":      msg.resp.FirebaseUID,
		"verified": msg.resp.EmailVerified,
		"role":     msg.resp.Role,
	})
	return m.presenter.Show(PageApp, msgStatusOK, SeveritySuccess)
}

type queryResultMsg struct {
	resp *client.QueryResponse
	err  error
}

func (m *Model) runQuery() tea.Cmd {
	m.presenter.Progress(PageApp, msgQueryRunning)
	gateway := m.gateway
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		resp, err := gateway.Query(ctx)
		return queryResultMsg{resp: resp, err: err}
	}
}

func (m *Model) handleQueryResult(msg queryResultMsg) tea.Cmd {
	if msg.err != nil {
		log.LogWarnWithFields("dashboard", "Query failed", map[string]any{
			"error": msg.err.Error(),
		})
		return m.presenter.Show(PageApp, msgQueryFailed, SeverityError)
	}
	log.LogInfoWithFields("dashboard", "Query result", map[string]any{
		"user_id": msg.resp.UserID,
		"message": msg.resp.Message,
	})
	// A result that lands after navigating away is dropped with the page.
	if m.active == PageApp {
		m.queryResult = msg.resp
	}
	return m.presenter.Show(PageApp, msgQueryOK, SeveritySuccess)
}

type (
	logoutResultMsg   struct{ err error }
	logoutRedirectMsg struct{}
)

// logout revokes the backend session, then signs out of the provider.
// Either failure stops the sequence.
func (m *Model) logout() tea.Cmd {
	m.presenter.Progress(PageApp, msgLoggingOut)
	gateway := m.gateway
	provider := m.state.Provider()
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		if _, err := gateway.Logout(ctx); err != nil {
			return logoutResultMsg{err: err}
		}
		if provider == nil {
			return logoutResultMsg{err: client.ErrNotInitialized}
		}
		return logoutResultMsg{err: provider.SignOut(ctx)}
	}
}

func (m *Model) handleLogoutResult(msg logoutResultMsg) tea.Cmd {
	if msg.err != nil {
		log.LogWarnWithFields("dashboard", "Logout failed", map[string]any{
			"error": msg.err.Error(),
		})
		return m.presenter.Show(PageApp, msgLogoutFailed, SeverityError)
	}
	log.LogInfoWithFields("dashboard", "Logged out", nil)
	return tea.Batch(
		m.presenter.Show(PageApp, msgLoggedOut, SeveritySuccess),
		m.timer(m.cfg.Timing.LogoutDelay, logoutRedirectMsg{}),
	)
}

// QueryResult returns the last query result shown on the dashboard.
func (m *Model) QueryResult() *client.QueryResponse {
	return m.queryResult
}
