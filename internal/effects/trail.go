package effects

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

const maxParticles = 64

// trailGlyphs go from freshest to most faded.
var trailGlyphs = []rune{'✦', '*', '+', '·'}

type particle struct {
	x, y int
	born time.Time
}

type trailTickMsg struct{}

// CursorTrail spawns particles where the mouse moves. Spawning is rate
// limited so fast motion does not flood the screen; particles fade out over
// their lifetime.
type CursorTrail struct {
	limiter  *rate.Limiter
	lifetime time.Duration
	now      func() time.Time

	particles []particle
	ticking   bool
}

// NewCursorTrail creates a trail spawning at most perSecond particles per
// second, each visible for lifetime.
func NewCursorTrail(perSecond float64, lifetime time.Duration) *CursorTrail {
	return &CursorTrail{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (t *CursorTrail) Name() string {
	return "cursor-trail"
}

func (t *CursorTrail) Init() tea.Cmd {
	return nil
}

func (t *CursorTrail) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion {
			return nil
		}
		now := t.now()
		if !t.limiter.AllowN(now, 1) {
			return nil
		}
		t.particles = append(t.particles, particle{x: msg.X, y: msg.Y, born: now})
		if len(t.particles) > maxParticles {
			t.particles = t.particles[len(t.particles)-maxParticles:]
		}
		if !t.ticking {
			t.ticking = true
			return t.tick()
		}
	case trailTickMsg:
		t.prune(t.now())
		if len(t.particles) == 0 {
			t.ticking = false
			return nil
		}
		return t.tick()
	}
	return nil
}

func (t *CursorTrail) tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(time.Time) tea.Msg {
		return trailTickMsg{}
	})
}

func (t *CursorTrail) prune(now time.Time) {
	live := t.particles[:0]
	for _, p := range t.particles {
		if now.Sub(p.born) < t.lifetime {
			live = append(live, p)
		}
	}
	t.particles = live
}

// Len returns the number of live particles.
func (t *CursorTrail) Len() int {
	return len(t.particles)
}

func (t *CursorTrail) Draw(canvas *Canvas) {
	now := t.now()
	for _, p := range t.particles {
		age := now.Sub(p.born)
		if age >= t.lifetime {
			continue
		}
		heat := 1 - float64(age)/float64(t.lifetime)
		idx := int((1 - heat) * float64(len(trailGlyphs)))
		idx = min(idx, len(trailGlyphs)-1)
		canvas.Set(p.x, p.y, trailGlyphs[idx], heat)
	}
}
