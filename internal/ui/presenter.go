package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgellow/nexusquery/internal/log"
)

// Severity is the kind of a banner message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Banner is the transient status message of a page.
type Banner struct {
	Text     string
	Severity Severity
}

// Timer schedules msg to be delivered after d.
type Timer func(d time.Duration, msg tea.Msg) tea.Cmd

// TickTimer is the production Timer, backed by tea.Tick.
func TickTimer(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// clearBannerMsg is the auto-clear timer firing for a page.
type clearBannerMsg struct {
	page Page
}

// Presenter holds at most one banner per page. Non-error banners expire
// after the TTL; errors stay until cleared or replaced.
type Presenter struct {
	banners map[Page]Banner
	ttl     time.Duration
	timer   Timer
}

// NewPresenter creates a presenter whose non-error banners expire after ttl.
func NewPresenter(ttl time.Duration, timer Timer) *Presenter {
	if timer == nil {
		timer = TickTimer
	}
	return &Presenter{
		banners: make(map[Page]Banner),
		ttl:     ttl,
		timer:   timer,
	}
}

// Show replaces the page's banner and, for non-error severities, returns
// the command that clears it after the TTL.
//
// The clear is not tied to this banner: when it fires it clears whatever
// the page shows, so an older timer can cut a newer message short.
func (p *Presenter) Show(page Page, text string, severity Severity) tea.Cmd {
	p.banners[page] = Banner{Text: text, Severity: severity}

	log.LogTraceWithFields("presenter", "Message shown", map[string]any{
		"element":  MessageElementID(page),
		"severity": severity.String(),
		"text":     text,
	})

	if severity == SeverityError {
		return nil
	}
	return p.timer(p.ttl, clearBannerMsg{page: page})
}

// Progress replaces the page's banner with an info message that has no
// timer. It stays until the outcome of the action replaces it.
func (p *Presenter) Progress(page Page, text string) {
	p.banners[page] = Banner{Text: text, Severity: SeverityInfo}

	log.LogTraceWithFields("presenter", "Progress shown", map[string]any{
		"element": MessageElementID(page),
		"text":    text,
	})
}

// Banner returns the page's current banner.
func (p *Presenter) Banner(page Page) (Banner, bool) {
	b, ok := p.banners[page]
	return b, ok
}

// Clear removes the page's banner.
func (p *Presenter) Clear(page Page) {
	delete(p.banners, page)
}

// ClearAll removes every banner.
func (p *Presenter) ClearAll() {
	for page := range p.banners {
		delete(p.banners, page)
	}
}
