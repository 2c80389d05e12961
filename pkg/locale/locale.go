// Package locale holds localized string templates and locale-aware number
// formatting. Templates carry a single literal {value} token.
package locale

import (
	"embed"
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"
)

// Token is the substitution placeholder.
const Token = "{value}"

// Template keys.
const (
	KeyRoleProcessing     = "role.processing"
	KeyRoleWaiting        = "role.waiting"
	KeyTooltipTitle       = "tooltip.title"
	KeyTooltipRole        = "tooltip.role"
	KeyTooltipID          = "tooltip.id"
	KeyTooltipJobSize     = "tooltip.job_size"
	KeyTooltipCoD         = "tooltip.cod"
	KeyTooltipWSJF        = "tooltip.wsjf"
	KeyTooltipAccumulated = "tooltip.accumulated"
	KeyNoData             = "chart.no_data"
	KeyTotal              = "chart.total"
	KeyLegendJobSize      = "legend.job_size"
	KeyLegendCoD          = "legend.cod"
	KeyAxisZero           = "axis.zero"
)

// LegendKey returns the legend template key for a slot.
func LegendKey(slot string) string {
	return "legend." + slot
}

//go:embed bundles/*.yaml
var builtin embed.FS

// Bundle is a set of templates for one language.
type Bundle struct {
	Lang    string            `yaml:"lang"`
	Strings map[string]string `yaml:"strings"`

	tag     language.Tag
	printer *message.Printer
}

// Substitute replaces every {value} token in tmpl with value. Templates
// without the token are returned unchanged; nothing else is inserted.
func Substitute(tmpl, value string) string {
	return strings.ReplaceAll(tmpl, Token, value)
}

// Builtin returns the embedded bundle for lang, falling back to English.
func Builtin(lang string) *Bundle {
	base := mustParse("en")
	tag, err := language.Parse(lang)
	if err != nil {
		return base
	}
	lb, _ := tag.Base()
	data, err := builtin.ReadFile("bundles/" + lb.String() + ".yaml")
	if err != nil {
		return base
	}
	bundle, err := parse(data)
	if err != nil {
		return base
	}
	bundle.fill(base)
	return bundle
}

// Load reads a YAML bundle from disk, filling missing keys from the builtin
// bundle of the same language.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale bundle: %w", err)
	}
	b, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing locale bundle %s: %w", path, err)
	}
	b.fill(Builtin(b.Lang))
	return b, nil
}

func mustParse(lang string) *Bundle {
	data, err := builtin.ReadFile("bundles/" + lang + ".yaml")
	if err != nil {
		panic(err)
	}
	b, err := parse(data)
	if err != nil {
		panic(err)
	}
	return b
}

func parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b.Strings == nil {
		b.Strings = make(map[string]string)
	}
	b.setLang(b.Lang)
	return &b, nil
}

func (b *Bundle) setLang(lang string) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	b.Lang = tag.String()
	b.tag = tag
	b.printer = message.NewPrinter(tag)
}

func (b *Bundle) fill(from *Bundle) {
	for k, v := range from.Strings {
		if _, ok := b.Strings[k]; !ok {
			b.Strings[k] = v
		}
	}
}

// T returns the template for key. Unknown keys return the key itself.
func (b *Bundle) T(key string) string {
	if b == nil {
		return key
	}
	if s, ok := b.Strings[key]; ok {
		return s
	}
	return key
}

// Format substitutes value into the template for key.
func (b *Bundle) Format(key, value string) string {
	return Substitute(b.T(key), value)
}

// Decimal formats v with the bundle's decimal separator and at most
// maxFrac fraction digits.
func (b *Bundle) Decimal(v float64, maxFrac int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	p := message.NewPrinter(language.English)
	if b != nil && b.printer != nil {
		p = b.printer
	}
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFrac)))
}

// Integer formats v rounded to the nearest integer without grouping.
func Integer(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v)
	if r == 0 {
		r = 0 // normalize -0
	}
	return fmt.Sprintf("%.0f", r)
}
