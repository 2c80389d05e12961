package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestColor_Resolution(t *testing.T) {
	th := Default()
	tests := []struct {
		token string
		want  string
	}{
		{"complexity", "#5c6bc0"},
		{"COMPLEXITY", "#5c6bc0"},
		{"#ABCDEF", "#abcdef"},
		{"#zzz", DefaultColor},
		{"no-such-token", DefaultColor},
		{"", DefaultColor},
	}
	for _, tt := range tests {
		if got := th.Color(tt.token); got != tt.want {
			t.Errorf("Color(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestColor_NilTheme(t *testing.T) {
	var th *Theme
	if got := th.Color("complexity"); got != DefaultColor {
		t.Errorf("nil theme Color = %q, want fallback", got)
	}
	if got := th.NumberColor("effort"); got != DefaultNumberColor {
		t.Errorf("nil theme NumberColor = %q, want fallback", got)
	}
}

func TestPadding(t *testing.T) {
	th := Default()
	tests := []struct {
		in   string
		want float64
	}{
		{"", DefaultPadding},
		{"md", 4},
		{"LG", 8},
		{"3.5", 3.5},
		{"6px", 6},
		{"-2", 0},
		{"huge", DefaultPadding},
		{"NaN", DefaultPadding},
		{"Inf", DefaultPadding},
		{"-Inf", DefaultPadding},
		{"+infpx", DefaultPadding},
	}
	for _, tt := range tests {
		if got := th.Padding(tt.in); got != tt.want {
			t.Errorf("Padding(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad_MergesOverDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	data := "colors:\n  complexity: \"#000000\"\nspacing:\n  md: 5\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	th, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := th.Color("complexity"); got != "#000000" {
		t.Errorf("override not applied: %q", got)
	}
	if got := th.Color("effort"); got != "#26a69a" {
		t.Errorf("default lost: %q", got)
	}
	if got := th.Padding("md"); got != 5 {
		t.Errorf("spacing override = %v, want 5", got)
	}
}

func TestLoad_MissingAndInvalid(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("missing theme should not error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("colors: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestTerminalColor_Profile(t *testing.T) {
	th := Default()
	tests := []struct {
		profile colorprofile.Profile
		want    lipgloss.TerminalColor
	}{
		{colorprofile.NoTTY, lipgloss.NoColor{}},
		{colorprofile.Ascii, lipgloss.NoColor{}},
		{colorprofile.ANSI, lipgloss.NoColor{}},
		{colorprofile.ANSI256, lipgloss.Color("#5c6bc0")},
		{colorprofile.TrueColor, lipgloss.Color("#5c6bc0")},
	}
	for _, tt := range tests {
		if got := th.TerminalColor(tt.profile, "complexity"); got != tt.want {
			t.Errorf("profile %v: got %#v, want %#v", tt.profile, got, tt.want)
		}
	}
}
