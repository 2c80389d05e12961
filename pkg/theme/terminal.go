package theme

import (
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TerminalColor returns the token's color when p supports at least 256
// colors and lipgloss.NoColor{} otherwise.
func (t *Theme) TerminalColor(p colorprofile.Profile, token string) lipgloss.TerminalColor {
	if p < colorprofile.ANSI256 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(t.Color(token))
}

// Swatch returns a style that paints a token as a background block.
func (t *Theme) Swatch(p colorprofile.Profile, token string) lipgloss.Style {
	return lipgloss.NewStyle().Background(t.TerminalColor(p, token)).Padding(0, 1)
}
