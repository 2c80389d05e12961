// Package theme resolves semantic style tokens (slot roles, item color
// names, spacing names) to concrete values. Unknown or malformed tokens fall
// back to defaults instead of failing a render.
package theme

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Fallback values used when a token cannot be resolved.
const (
	DefaultColor       = "#9e9e9e"
	DefaultNumberColor = "#212121"
	DefaultPadding     = 2.0
)

// Non-slot roles.
const (
	RoleBackground  = "background"
	RoleStroke      = "stroke"
	RolePlaceholder = "placeholder"
	RoleAxis        = "axis"
	RoleText        = "text"
	RoleHighlight   = "highlight"
)

// Theme maps tokens to colors and spacing.
type Theme struct {
	Colors       map[string]string  `yaml:"colors,omitempty"`
	NumberColors map[string]string  `yaml:"number_colors,omitempty"`
	Spacing      map[string]float64 `yaml:"spacing,omitempty"`
}

// Default returns the built-in theme.
func Default() *Theme {
	return &Theme{
		Colors: map[string]string{
			"complexity":       "#5c6bc0",
			"effort":           "#26a69a",
			"doubt":            "#ab47bc",
			"business_value":   "#ef5350",
			"time_criticality": "#ffa726",
			"risk_reduction":   "#66bb6a",
			RoleBackground:     "#f5f5f5",
			RoleStroke:         "#bdbdbd",
			RolePlaceholder:    "#cfd8dc",
			RoleAxis:           "#616161",
			RoleText:           "#212121",
			RoleHighlight:      "#ffd54f",
			// item palette
			"red":    "#e57373",
			"orange": "#ffb74d",
			"yellow": "#fff176",
			"green":  "#81c784",
			"teal":   "#4db6ac",
			"blue":   "#64b5f6",
			"purple": "#ba68c8",
			"grey":   "#90a4ae",
		},
		NumberColors: map[string]string{
			"complexity":       "#ffffff",
			"effort":           "#ffffff",
			"doubt":            "#ffffff",
			"business_value":   "#ffffff",
			"time_criticality": "#212121",
			"risk_reduction":   "#212121",
		},
		Spacing: map[string]float64{
			"none": 0,
			"xs":   1,
			"sm":   2,
			"md":   4,
			"lg":   8,
		},
	}
}

// Load reads a YAML theme and merges it over Default. A missing file is not
// an error.
func Load(path string) (*Theme, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("reading theme: %w", err)
	}
	var override Theme
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("parsing theme: %w", err)
	}
	t.Merge(&override)
	return t, nil
}

// Merge copies every entry of o over t.
func (t *Theme) Merge(o *Theme) {
	if o == nil {
		return
	}
	for k, v := range o.Colors {
		t.Colors[k] = v
	}
	for k, v := range o.NumberColors {
		t.NumberColors[k] = v
	}
	for k, v := range o.Spacing {
		t.Spacing[k] = v
	}
}

// Color resolves a token or literal hex color. Unknown tokens and invalid
// colors resolve to DefaultColor.
func (t *Theme) Color(token string) string {
	return t.resolve(t.colors(), token, DefaultColor)
}

// NumberColor resolves the label color for a slot role.
func (t *Theme) NumberColor(role string) string {
	var m map[string]string
	if t != nil {
		m = t.NumberColors
	}
	return t.resolve(m, role, DefaultNumberColor)
}

func (t *Theme) colors() map[string]string {
	if t == nil {
		return nil
	}
	return t.Colors
}

func (t *Theme) resolve(m map[string]string, token, fallback string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return fallback
	}
	if strings.HasPrefix(token, "#") {
		return normalizeHex(token, fallback)
	}
	v, ok := m[strings.ToLower(token)]
	if !ok {
		return fallback
	}
	return normalizeHex(v, fallback)
}

func normalizeHex(s, fallback string) string {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c.Hex()
}

// Padding resolves a spacing token or a numeric override such as "3.5".
// Negative overrides clamp to 0; non-finite overrides and unknown tokens
// use DefaultPadding.
func (t *Theme) Padding(tokenOrOverride string) float64 {
	s := strings.TrimSpace(tokenOrOverride)
	if s == "" {
		return DefaultPadding
	}
	if v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DefaultPadding
		}
		if v < 0 {
			return 0
		}
		return v
	}
	if t != nil {
		if v, ok := t.Spacing[strings.ToLower(s)]; ok {
			return v
		}
	}
	return DefaultPadding
}
