package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/pdrpinto/firepath"
)

var (
	freeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	fireStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginRight(1)
)

// plainOutput drops styling when stdout is not a terminal so piped output
// stays greppable.
var plainOutput = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())

func styled(style lipgloss.Style, s string) string {
	if plainOutput {
		return s
	}
	return style.Render(s)
}

// renderGrid draws g with path cells marked. Burning cells on the path keep
// the fire glyph so an intrusion stays visible.
func renderGrid(title string, g firepath.Grid, path []firepath.Coord) string {
	onPath := make(map[firepath.Coord]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	var b strings.Builder
	b.WriteString(styled(titleStyle, title))
	n := g.Size()
	for r := 0; r < n; r++ {
		b.WriteByte('\n')
		for c := 0; c < n; c++ {
			coord := firepath.Coord{Row: r, Col: c}
			switch cell := g.At(coord); {
			case cell == firepath.Fire:
				b.WriteString(styled(fireStyle, "F"))
			case cell == firepath.Blocked:
				b.WriteString(styled(blockedStyle, "#"))
			case onPath[coord]:
				b.WriteString(styled(pathStyle, "*"))
			default:
				b.WriteString(styled(freeStyle, "."))
			}
		}
	}
	if plainOutput {
		return b.String() + "\n"
	}
	return panelStyle.Render(b.String())
}

// renderPanels lays panels out side by side.
func renderPanels(panels ...string) string {
	if plainOutput {
		return strings.Join(panels, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}
