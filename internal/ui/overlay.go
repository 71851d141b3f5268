package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// spliceOverlay replaces the region of view starting at (x, y) with the
// overlay lines. Truncation is ANSI-aware, so the styling of the view on
// either side of the overlay survives.
func spliceOverlay(view string, overlay []string, x, y int) string {
	if len(overlay) == 0 {
		return view
	}

	lines := strings.Split(view, "\n")
	width := 0
	for _, line := range overlay {
		width = max(width, ansi.StringWidth(line))
	}

	for i, line := range overlay {
		row := y + i
		if row < 0 || row >= len(lines) {
			continue
		}
		under := lines[row]

		var b strings.Builder
		if x > 0 {
			prefix := ansi.Truncate(under, x, "")
			b.WriteString(prefix)
			if pad := x - ansi.StringWidth(prefix); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteString("\x1b[0m")
		b.WriteString(line)
		if pad := width - ansi.StringWidth(line); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString("\x1b[0m")
		if end := x + width; end < ansi.StringWidth(under) {
			b.WriteString(ansi.TruncateLeft(under, end, ""))
		}
		lines[row] = b.String()
	}

	return strings.Join(lines, "\n")
}
