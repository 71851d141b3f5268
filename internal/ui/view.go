package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/dgellow/nexusquery/internal/bootstrap"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// panelContentWidth is the text width inside the form panel.
	panelContentWidth = 48
)

// View renders the active page in a panel over the effects backdrop.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = defaultWidth, defaultHeight
	}

	var box string
	switch {
	case m.bootErr != nil:
		box = m.styles.modal.Render(m.bootstrapErrorView())
	case !m.ready:
		box = m.styles.panel.Render(m.loadingView())
	default:
		box = m.styles.panel.Render(m.pageView())
	}

	boxWidth, boxHeight := lipgloss.Size(box)
	if boxWidth >= width || boxHeight >= height {
		return box
	}

	return spliceOverlay(m.backdrop(width, height), strings.Split(box, "\n"),
		(width-boxWidth)/2, (height-boxHeight)/2)
}

func (m *Model) backdrop(width, height int) string {
	if m.canvas.Width() != width || m.canvas.Height() != height {
		m.canvas.Resize(width, height)
	}
	m.effects.Draw(m.canvas)
	return m.canvas.Render(m.styles.backdrop)
}

func (m *Model) loadingView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render("NexusQuery"),
		"",
		m.styles.faint.Render("Connecting to backend..."),
	)
}

func (m *Model) bootstrapErrorView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.banners[SeverityError].Render(bootstrap.UserMessage),
		"",
		m.styles.faint.Render(ansi.Wordwrap(m.bootErr.Error(), panelContentWidth, " /")),
		"",
		m.styles.help.Render("press enter to quit"),
	)
}

func (m *Model) pageView() string {
	var sections []string
	switch m.active {
	case PageSignIn:
		sections = m.signInView()
	case PageSignUp:
		sections = m.signUpView()
	case PageApp:
		sections = m.dashboardView()
	}

	if b, ok := m.presenter.Banner(m.active); ok {
		sections = append(sections, "", m.styles.banners[b.Severity].Render(
			ansi.Wordwrap(b.Text, panelContentWidth, " ")))
	}

	bindings := m.keys.bindingsFor(m.active, m.cfg.GoogleEnabled(), m.google != nil)
	sections = append(sections, "", m.help.ShortHelpView(bindings))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) field(label string, id inputID) []string {
	return []string{m.styles.label.Render(label), m.inputs[id].View()}
}

func (m *Model) signInView() []string {
	sections := []string{
		m.styles.title.Render("NexusQuery"),
		m.styles.subtitle.Render("Sign in to your account"),
		"",
	}
	sections = append(sections, m.field("Email", signInEmail)...)
	sections = append(sections, m.field("Password", signInPassword)...)

	if m.google != nil && m.google.flow != nil {
		sections = append(sections, "",
			m.styles.label.Render("Open this URL in your browser to continue with Google:"),
			m.styles.faint.Render(ansi.Hardwrap(m.google.flow.AuthURL(), panelContentWidth, false)),
		)
	}
	return sections
}

func (m *Model) signUpView() []string {
	sections := []string{
		m.styles.title.Render("Create your account"),
		m.styles.subtitle.Render("A verification email is sent after sign-up"),
		"",
	}
	sections = append(sections, m.field("Email", signUpEmail)...)
	sections = append(sections, m.field("Password", signUpPassword)...)
	sections = append(sections, "", m.styles.subtitle.Render("Didn't get the email?"))
	sections = append(sections, m.field("Resend verification to", verifyEmail)...)
	return sections
}

func (m *Model) dashboardView() []string {
	sections := []string{
		m.styles.title.Render("Dashboard"),
		m.styles.subtitle.Render(m.identity),
	}
	if r := m.queryResult; r != nil {
		sections = append(sections, "",
			m.styles.label.Render(ansi.Wordwrap(r.Message, panelContentWidth, " ")),
			m.styles.faint.Render(ansi.Wordwrap(r.Results, panelContentWidth, " ")),
		)
	}
	return sections
}
