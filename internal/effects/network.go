package effects

import (
	"math"
	"math/rand/v2"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// cellAspect compensates for terminal cells being about twice as tall as
// they are wide, so link distances look round on screen.
const cellAspect = 2.0

// Node is a drifting point of the network background.
type Node struct {
	X, Y   float64
	VX, VY float64
}

// Link joins two nodes closer than the link threshold. Strength is 1 for
// coincident nodes and falls to 0 at the threshold.
type Link struct {
	A, B     int
	Strength float64
}

type networkTickMsg struct{}

// NetworkBackground draws drifting nodes joined by lines when they come
// close to each other.
type NetworkBackground struct {
	count     int
	threshold float64
	rng       *rand.Rand

	width, height int
	nodes         []Node
}

// NewNetworkBackground creates a background of count nodes that link when
// closer than threshold cells. seed makes the layout reproducible.
func NewNetworkBackground(count int, threshold float64, seed uint64) *NetworkBackground {
	return &NetworkBackground{
		count:     count,
		threshold: threshold,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (n *NetworkBackground) Name() string {
	return "network-background"
}

func (n *NetworkBackground) Init() tea.Cmd {
	return n.tick()
}

func (n *NetworkBackground) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		n.resize(msg.Width, msg.Height)
	case networkTickMsg:
		n.step()
		return n.tick()
	}
	return nil
}

func (n *NetworkBackground) tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(time.Time) tea.Msg {
		return networkTickMsg{}
	})
}

// resize scatters the nodes on the first size and rescales them after.
func (n *NetworkBackground) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if n.nodes == nil {
		n.nodes = make([]Node, n.count)
		for i := range n.nodes {
			n.nodes[i] = Node{
				X:  n.rng.Float64() * float64(width),
				Y:  n.rng.Float64() * float64(height),
				VX: (n.rng.Float64() - 0.5) * 0.8,
				VY: (n.rng.Float64() - 0.5) * 0.4,
			}
		}
	} else if n.width > 0 && n.height > 0 {
		sx := float64(width) / float64(n.width)
		sy := float64(height) / float64(n.height)
		for i := range n.nodes {
			n.nodes[i].X *= sx
			n.nodes[i].Y *= sy
		}
	}
	n.width, n.height = width, height
}

// step advances every node one frame, bouncing off the edges.
func (n *NetworkBackground) step() {
	w, h := float64(n.width), float64(n.height)
	for i := range n.nodes {
		node := &n.nodes[i]
		node.X += node.VX
		node.Y += node.VY
		if node.X < 0 || node.X >= w {
			node.VX = -node.VX
			node.X = math.Max(0, math.Min(node.X, w-1))
		}
		if node.Y < 0 || node.Y >= h {
			node.VY = -node.VY
			node.Y = math.Max(0, math.Min(node.Y, h-1))
		}
	}
}

// SetNodes replaces the node set.
func (n *NetworkBackground) SetNodes(width, height int, nodes []Node) {
	n.width, n.height = width, height
	n.nodes = append([]Node(nil), nodes...)
}

// Nodes returns a copy of the current nodes.
func (n *NetworkBackground) Nodes() []Node {
	return append([]Node(nil), n.nodes...)
}

// Links returns every pair of nodes closer than the threshold. It compares
// all pairs, which is fine for the few dozen nodes a backdrop needs.
func (n *NetworkBackground) Links() []Link {
	var links []Link
	for i := 0; i < len(n.nodes); i++ {
		for j := i + 1; j < len(n.nodes); j++ {
			dx := n.nodes[i].X - n.nodes[j].X
			dy := (n.nodes[i].Y - n.nodes[j].Y) * cellAspect
			d := math.Hypot(dx, dy)
			if d < n.threshold {
				links = append(links, Link{A: i, B: j, Strength: 1 - d/n.threshold})
			}
		}
	}
	return links
}

func (n *NetworkBackground) Draw(canvas *Canvas) {
	for _, link := range n.Links() {
		a, b := n.nodes[link.A], n.nodes[link.B]
		canvas.Line(int(a.X), int(a.Y), int(b.X), int(b.Y), '·', link.Strength*0.6)
	}
	for _, node := range n.nodes {
		canvas.Set(int(node.X), int(node.Y), '•', 0.8)
	}
}
