package effects

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Zero(t, r.Len())

	require.NoError(t, r.Register(NewNetworkBackground(4, 10, 1)))
	require.NoError(t, r.Register(NewCursorTrail(10, time.Second)))
	assert.Equal(t, []string{"network-background", "cursor-trail"}, r.Names())

	err := r.Register(NewCursorTrail(5, time.Second))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"cursor-trail" already registered`)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_EmptyDrawsNothing(t *testing.T) {
	r := NewRegistry()
	canvas := NewCanvas(3, 2)
	canvas.Set(0, 0, 'x', 1)

	r.Draw(canvas)
	assert.Equal(t, "   \n   ", canvas.String())
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(5, 3)
	c.Set(-1, 0, 'x', 1)
	c.Set(5, 0, 'x', 1)
	c.Set(0, 3, 'x', 1)
	assert.Equal(t, "     \n     \n     ", c.String(), "out-of-bounds writes are dropped")

	c.Line(0, 0, 4, 2, '#', 0.5)
	assert.Equal(t, '#', c.At(0, 0).Glyph)
	assert.Equal(t, '#', c.At(4, 2).Glyph)
	assert.Equal(t, '#', c.At(2, 1).Glyph)

	// Cooler writes do not overwrite hotter cells
	c.Set(2, 1, '.', 0.1)
	assert.Equal(t, '#', c.At(2, 1).Glyph)
	c.Set(2, 1, '@', 0.9)
	assert.Equal(t, '@', c.At(2, 1).Glyph)

	c.Resize(2, 1)
	assert.Equal(t, "  ", c.String())
	assert.Equal(t, ' ', c.At(9, 9).Glyph)
}

func TestNetworkBackground_LinksWithinThreshold(t *testing.T) {
	n := NewNetworkBackground(0, 10, 1)
	n.SetNodes(80, 24, []Node{
		{X: 0, Y: 0},
		{X: 6, Y: 0},  // 6 from node 0
		{X: 0, Y: 4},  // 8 from node 0 once rows are scaled
		{X: 40, Y: 0}, // far from everything
		{X: 46, Y: 0}, // 6 from node 3
	})

	links := n.Links()
	pairs := make([][2]int, 0, len(links))
	for _, l := range links {
		pairs = append(pairs, [2]int{l.A, l.B})
		assert.Greater(t, l.Strength, 0.0)
		assert.LessOrEqual(t, l.Strength, 1.0)
	}
	// node 1 and node 2 are 10 apart, exactly the threshold, so not linked
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {3, 4}}, pairs)
	assert.InDelta(t, 0.4, links[0].Strength, 1e-9)
}

func TestNetworkBackground_LinkCountMatchesPairwiseDistances(t *testing.T) {
	n := NewNetworkBackground(30, 12, 42)
	n.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	nodes := n.Nodes()
	require.Len(t, nodes, 30)

	want := 0
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			dx := nodes[i].X - nodes[j].X
			dy := (nodes[i].Y - nodes[j].Y) * 2
			if dx*dx+dy*dy < 12*12 {
				want++
			}
		}
	}
	assert.Len(t, n.Links(), want)
}

func TestNetworkBackground_StaysInBounds(t *testing.T) {
	n := NewNetworkBackground(20, 10, 7)
	n.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	for i := 0; i < 500; i++ {
		n.Update(networkTickMsg{})
	}
	for _, node := range n.Nodes() {
		assert.GreaterOrEqual(t, node.X, 0.0)
		assert.Less(t, node.X, 40.0)
		assert.GreaterOrEqual(t, node.Y, 0.0)
		assert.Less(t, node.Y, 10.0)
	}

	canvas := NewCanvas(40, 10)
	n.Draw(canvas)
	assert.Contains(t, canvas.String(), "•")
}

func TestNetworkBackground_TicksReschedule(t *testing.T) {
	n := NewNetworkBackground(3, 10, 1)
	assert.NotNil(t, n.Init())
	assert.NotNil(t, n.Update(networkTickMsg{}))
	assert.Nil(t, n.Update(tea.KeyMsg{}))
}

func TestCursorTrail_ThrottlesSpawns(t *testing.T) {
	trail := NewCursorTrail(10, time.Second)
	now := time.Unix(1000, 0)
	trail.now = func() time.Time { return now }

	// A burst of motion at one instant spawns a single particle
	cmd := trail.Update(motion(1, 1))
	assert.NotNil(t, cmd, "first particle starts the fade ticker")
	for i := 0; i < 20; i++ {
		assert.Nil(t, trail.Update(motion(i, 1)))
	}
	assert.Equal(t, 1, trail.Len())

	// One rate interval later, one more is allowed
	now = now.Add(100 * time.Millisecond)
	trail.Update(motion(5, 5))
	trail.Update(motion(6, 5))
	assert.Equal(t, 2, trail.Len())
}

func TestCursorTrail_IgnoresClicks(t *testing.T) {
	trail := NewCursorTrail(10, time.Second)
	trail.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Zero(t, trail.Len())
}

func TestCursorTrail_Fades(t *testing.T) {
	trail := NewCursorTrail(100, time.Second)
	now := time.Unix(1000, 0)
	trail.now = func() time.Time { return now }

	trail.Update(motion(2, 0))
	canvas := NewCanvas(5, 1)
	trail.Draw(canvas)
	assert.Equal(t, '✦', canvas.At(2, 0).Glyph)

	now = now.Add(800 * time.Millisecond)
	canvas.Clear()
	trail.Draw(canvas)
	assert.Equal(t, '·', canvas.At(2, 0).Glyph)
	assert.NotNil(t, trail.Update(trailTickMsg{}), "ticker runs while particles live")

	now = now.Add(time.Second)
	assert.Nil(t, trail.Update(trailTickMsg{}), "ticker stops once all particles faded")
	assert.Zero(t, trail.Len())

	canvas.Clear()
	trail.Draw(canvas)
	assert.Equal(t, "     ", canvas.String())
}

func TestCanvas_RenderWithRamp(t *testing.T) {
	c := NewCanvas(3, 1)
	c.Set(1, 0, '*', 1)
	out := c.Render(nil)
	assert.Equal(t, " * ", out)
	assert.True(t, strings.Contains(c.String(), "*"))
}
