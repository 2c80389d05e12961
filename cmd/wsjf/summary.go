package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/priority"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

const (
	defaultWidth  = 100
	minTitleWidth = 10
)

// column widths in cells; the title takes what is left
var columns = []struct {
	header string
	width  int
}{
	{"#", 4},
	{"", 2}, // color swatch
	{"ID", 12},
	{"Title", 0},
	{"Size", 8},
	{"CoD", 8},
	{"WSJF", 8},
}

const titleColumn = 3

// terminalWidth returns the stdout terminal width, falling back to
// $COLUMNS and then defaultWidth.
func terminalWidth() int {
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

func titleWidth(total int) int {
	used := 0
	for _, c := range columns {
		used += c.width + 1
	}
	return max(minTitleWidth, total-used)
}

// cell pads or truncates s to exactly w display cells.
func cell(s string, w int, right bool) string {
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	if right {
		return runewidth.FillLeft(s, w)
	}
	return runewidth.FillRight(s, w)
}

// renderSummary formats the backlog in rank order with each item's job
// size, cost of delay and WSJF score, followed by the total delay cost.
// Swatches are colored only when profile supports 256 colors.
func renderSummary(items []model.WorkItem, total float64, width int, profile colorprofile.Profile, th *theme.Theme, lc *locale.Bundle) string {
	if width <= 0 {
		width = defaultWidth
	}
	tw := titleWidth(width)
	header := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Faint(true)

	var b strings.Builder
	var hdr []string
	for i, c := range columns {
		w := c.width
		if i == titleColumn {
			w = tw
		}
		hdr = append(hdr, cell(c.header, w, i > titleColumn))
	}
	b.WriteString(header.Render(strings.Join(hdr, " ")))
	b.WriteByte('\n')

	number := func(v float64, ok bool) string {
		if !ok {
			return "-"
		}
		return lc.Decimal(v, 2)
	}
	for _, it := range priority.ByRank(items) {
		rank := "-"
		if it.Rank > 0 {
			rank = strconv.Itoa(it.Rank)
		}
		row := []string{
			cell(rank, columns[0].width, true),
			th.Swatch(profile, it.Color).Render(""),
			cell(it.ID, columns[2].width, false),
			cell(it.Title, tw, false),
			cell(number(it.JobSize()), columns[4].width, true),
			cell(number(it.CoD()), columns[5].width, true),
			cell(number(it.WSJF()), columns[6].width, true),
		}
		line := strings.Join(row, " ")
		if !it.Estimated() {
			line = dim.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(header.Render(lc.Format(locale.KeyTotal, locale.Integer(total))))
	b.WriteByte('\n')
	return b.String()
}
