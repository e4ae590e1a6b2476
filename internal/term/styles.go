package term

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Date      lipgloss.Style
	Text      lipgloss.Style
	Dim       lipgloss.Style
	Axis      lipgloss.Style
	AxisLabel lipgloss.Style
	Outline   lipgloss.Style
	Scanner   lipgloss.Style
	Tick      lipgloss.Style
	TickFocus lipgloss.Style
	fill      lipgloss.Color
}

func StylesFor(t Theme) Styles {
	return Styles{
		Date:      lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Text:      lipgloss.NewStyle().Foreground(t.Subtext),
		Dim:       lipgloss.NewStyle().Foreground(t.Dim),
		Axis:      lipgloss.NewStyle().Foreground(t.Axis),
		AxisLabel: lipgloss.NewStyle().Foreground(t.Subtext),
		Outline:   lipgloss.NewStyle().Foreground(t.Outline),
		Scanner:   lipgloss.NewStyle().Foreground(t.Scanner),
		Tick:      lipgloss.NewStyle().Foreground(t.Dim),
		TickFocus: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		fill:      t.Fill,
	}
}

// BandStyle returns the fill style for a band color, falling back to the
// theme fill when the palette had none.
func (s Styles) BandStyle(color string) lipgloss.Style {
	c := s.fill
	if color != "" {
		c = lipgloss.Color(color)
	}
	return lipgloss.NewStyle().Foreground(c)
}
