package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	accentColor = lipgloss.Color("#C89A3A")
	targetColor = lipgloss.Color("#E5484D")
)

// styles is bound to one renderer so that SSH sessions draw with their
// client's color profile.
type styles struct {
	renderer *lipgloss.Renderer

	title   lipgloss.Style
	running lipgloss.Style
	state   lipgloss.Style
	hud     lipgloss.Style
	muted   lipgloss.Style
	footer  lipgloss.Style
	panel   lipgloss.Style
	disc    lipgloss.Style
	center  lipgloss.Style

	// discFill is the glyph under disc cells; a background color alone is
	// invisible without color support.
	discFill string
}

func newStyles(r *lipgloss.Renderer) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	s := styles{
		renderer: r,
		title:    r.NewStyle().Foreground(accentColor).Bold(true),
		running:  r.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
		state:    r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		hud:      r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		footer:   r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(accentColor).
			Padding(0, 2),
		disc:     r.NewStyle().Background(targetColor),
		center:   r.NewStyle().Background(targetColor).Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		discFill: " ",
	}
	if r.ColorProfile() == termenv.Ascii {
		s.discFill = "#"
	}
	return s
}

// place centers content in a width x height block.
func (s styles) place(width, height int, content string) string {
	return s.renderer.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
