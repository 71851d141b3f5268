package ui

import (
	"errors"
	"fmt"

	"github.com/dgellow/nexusquery/internal/log"
)

// ErrUnknownPage is returned by ShowPage for a name outside the page set.
var ErrUnknownPage = errors.New("unknown page")

// Page is one of the client's full-screen views. Exactly one is active.
type Page int

const (
	PageSignIn Page = iota
	PageSignUp
	PageApp
)

// Pages lists every page in display order.
var Pages = []Page{PageSignIn, PageSignUp, PageApp}

var pageNames = map[Page]string{
	PageSignIn: "signin",
	PageSignUp: "signup",
	PageApp:    "app",
}

func (p Page) String() string {
	if name, ok := pageNames[p]; ok {
		return name
	}
	return fmt.Sprintf("page(%d)", int(p))
}

// ParsePage returns the page with the given name.
func ParsePage(name string) (Page, error) {
	for page, n := range pageNames {
		if n == name {
			return page, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPage, name)
}

// PageElementID is the page's stable identifier, "page-{name}".
func PageElementID(p Page) string {
	return "page-" + p.String()
}

// MessageElementID is the identifier of the page's banner, "{name}-message".
func MessageElementID(p Page) string {
	return p.String() + "-message"
}

// ShowPage makes the named page the only active one, then empties every
// input and clears every banner on every page. Focus moves to the first
// input of the new page. An unknown name changes nothing.
func (m *Model) ShowPage(name string) error {
	page, err := ParsePage(name)
	if err != nil {
		log.LogWarn("Refusing to show page: %v", err)
		return err
	}

	m.active = page

	for id := range m.inputs {
		m.inputs[id].Reset()
		m.inputs[id].Blur()
	}
	m.presenter.ClearAll()
	m.queryResult = nil

	m.focus = 0
	m.focusCurrent()

	log.LogDebugWithFields("router", "Page shown", map[string]any{
		"page": PageElementID(page),
	})
	return nil
}

// ActivePage returns the page currently shown.
func (m *Model) ActivePage() Page {
	return m.active
}

func (m *Model) navigate(page Page) {
	// Pages from the fixed set always resolve
	_ = m.ShowPage(page.String())
}
