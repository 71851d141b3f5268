// Package effects implements the decorative backdrop: an animated node
// network and a particle trail that follows the mouse. Effects are purely
// visual; nothing else in the client depends on them.
package effects

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameInterval is the animation tick. 100ms gives ~10fps, which is smooth
// enough for a backdrop and cheap on terminals.
const FrameInterval = 100 * time.Millisecond

// Effect is a decorative animation drawn behind the UI.
type Effect interface {
	// Name identifies the effect in logs and in the registry.
	Name() string
	// Init is called once, when the program starts.
	Init() tea.Cmd
	// Update receives every program message. Effects ignore what they
	// don't use.
	Update(msg tea.Msg) tea.Cmd
	// Draw paints the current frame onto the canvas.
	Draw(canvas *Canvas)
}

// Registry holds the effects enabled for this run, in draw order.
type Registry struct {
	effects []Effect
	names   map[string]bool
}

// NewRegistry creates an empty registry. An empty registry is valid and
// draws nothing.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds an effect. Names must be unique.
func (r *Registry) Register(effect Effect) error {
	name := effect.Name()
	if r.names[name] {
		return fmt.Errorf("effect %q already registered", name)
	}
	r.names[name] = true
	r.effects = append(r.effects, effect)
	return nil
}

// Names returns the registered effect names in draw order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.effects))
	for _, effect := range r.effects {
		names = append(names, effect.Name())
	}
	return names
}

// Len returns the number of registered effects.
func (r *Registry) Len() int {
	return len(r.effects)
}

// Init initializes every effect.
func (r *Registry) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(r.effects))
	for _, effect := range r.effects {
		cmds = append(cmds, effect.Init())
	}
	return tea.Batch(cmds...)
}

// Update forwards msg to every effect.
func (r *Registry) Update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(r.effects))
	for _, effect := range r.effects {
		cmds = append(cmds, effect.Update(msg))
	}
	return tea.Batch(cmds...)
}

// Draw clears the canvas and paints every effect in registration order.
func (r *Registry) Draw(canvas *Canvas) {
	canvas.Clear()
	for _, effect := range r.effects {
		effect.Draw(canvas)
	}
}
