package testutil

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduled is a timer registered with a FakeTimer.
type Scheduled struct {
	Delay time.Duration
	Msg   tea.Msg
}

// FakeTimer records timers instead of starting them. Tests fire them by
// sending the recorded message.
type FakeTimer struct {
	mu        sync.Mutex
	scheduled []Scheduled
}

// Schedule records the timer and returns no command.
func (f *FakeTimer) Schedule(d time.Duration, msg tea.Msg) tea.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, Scheduled{Delay: d, Msg: msg})
	return nil
}

// Pending returns the timers not yet taken, oldest first.
func (f *FakeTimer) Pending() []Scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Scheduled(nil), f.scheduled...)
}

// Take removes and returns the oldest timer with the given delay.
func (f *FakeTimer) Take(d time.Duration) (Scheduled, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.scheduled {
		if s.Delay == d {
			f.scheduled = append(f.scheduled[:i], f.scheduled[i+1:]...)
			return s, true
		}
	}
	return Scheduled{}, false
}

// Driver runs a bubbletea model without a terminal. Commands run in order
// on the test goroutine; one that has not returned within the wait
// stays pending and is delivered by Settle.
type Driver struct {
	t       *testing.T
	model   tea.Model
	wait    time.Duration
	pending []chan tea.Msg
	quit    bool
}

// NewDriver wraps model. Commands that block longer than wait become pending.
func NewDriver(t *testing.T, model tea.Model, wait time.Duration) *Driver {
	return &Driver{t: t, model: model, wait: wait}
}

// Init runs the model's Init command.
func (d *Driver) Init() {
	d.Run(d.model.Init())
}

// Send delivers msg to the model and runs the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, cmd := range msg {
			d.Run(cmd)
		}
		return
	case tea.QuitMsg:
		d.quit = true
	}
	model, cmd := d.model.Update(msg)
	d.model = model
	d.Run(cmd)
}

// Run executes cmd and delivers its message.
func (d *Driver) Run(cmd tea.Cmd) {
	d.t.Helper()
	if cmd == nil {
		return
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		d.Send(msg)
	case <-time.After(d.wait):
		d.pending = append(d.pending, ch)
	}
}

// Settle delivers pending commands until cond holds, or until the wait
// elapses with nothing delivered. It reports whether cond holds.
func (d *Driver) Settle(cond func() bool) bool {
	d.t.Helper()
	deadline := time.Now().Add(d.wait)
	limit := time.Now().Add(20 * d.wait)
	for {
		if cond() {
			return true
		}
		delivered := false
		for i := 0; i < len(d.pending); i++ {
			select {
			case msg := <-d.pending[i]:
				d.pending = append(d.pending[:i], d.pending[i+1:]...)
				d.Send(msg)
				delivered = true
			default:
				continue
			}
			break
		}
		if delivered && time.Now().Before(limit) {
			deadline = time.Now().Add(d.wait)
			continue
		}
		if time.Now().After(deadline) {
			return cond()
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Type sends each rune of s as a key press.
func (d *Driver) Type(s string) {
	d.t.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Press sends a special key.
func (d *Driver) Press(k tea.KeyType) {
	d.t.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// Model returns the current model.
func (d *Driver) Model() tea.Model {
	return d.model
}

// Quit reports whether the model asked the program to quit.
func (d *Driver) Quit() bool {
	return d.quit
}
