package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the client. Page-specific bindings
// only fire on their page; text keys on the dashboard are free because it
// has no inputs.
type KeyMap struct {
	// Form navigation.
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	// Sign-in page.
	GoogleSignIn key.Binding
	ToSignUp     key.Binding

	// Sign-up page.
	ToSignIn key.Binding

	// Dashboard.
	Status key.Binding
	Query  key.Binding
	Logout key.Binding

	Cancel key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "prev field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	GoogleSignIn: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("C-g", "google sign-in"),
	),
	ToSignUp: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "create account"),
	),
	ToSignIn: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("C-b", "back to sign in"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "check status"),
	),
	Query: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "run query"),
	),
	Logout: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "log out"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}

// bindingsFor returns the help line bindings for a page.
func (k KeyMap) bindingsFor(page Page, googleEnabled, googlePending bool) []key.Binding {
	switch page {
	case PageSignIn:
		if googlePending {
			return []key.Binding{k.Cancel, k.Quit}
		}
		bindings := []key.Binding{k.NextField, k.Submit}
		if googleEnabled {
			bindings = append(bindings, k.GoogleSignIn)
		}
		return append(bindings, k.ToSignUp, k.Quit)
	case PageSignUp:
		return []key.Binding{k.NextField, k.Submit, k.ToSignIn, k.Quit}
	case PageApp:
		return []key.Binding{k.Status, k.Query, k.Logout, k.Quit}
	}
	return []key.Binding{k.Quit}
}
