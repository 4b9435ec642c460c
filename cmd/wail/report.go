package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wail/resolve"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	ifaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderReport writes the resolution report. Styles are only applied when
// the destination is a terminal.
func renderReport(w io.Writer, r *resolve.Report, styled bool) {
	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(paint(titleStyle, "wail"))
	b.WriteString(" ")
	if r.Valid {
		b.WriteString(paint(okStyle, r.Summary()))
	} else {
		b.WriteString(paint(errorStyle, r.Summary()))
	}
	b.WriteString("\n")

	if len(r.Discovered) > 0 {
		b.WriteString("\nLinks:\n")
		for _, c := range r.Discovered {
			fmt.Fprintf(&b, "  %s -> %s %s\n",
				paint(linkStyle, c.Source),
				paint(linkStyle, c.Target),
				paint(ifaceStyle, c.Interface().String()))
		}
	}

	if len(r.Unlinked) > 0 {
		b.WriteString("\nUnlinked:\n")
		for _, u := range r.Unlinked {
			line := fmt.Sprintf("  %s needs %s", u.Component, paint(ifaceStyle, u.Interface.String()))
			if len(u.Candidates) > 0 {
				line += " (candidates: " + strings.Join(u.Candidates, ", ") + ")"
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warn := range r.Warnings {
			b.WriteString("  - ")
			b.WriteString(paint(warnStyle, warn))
			b.WriteString("\n")
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range r.Errors {
			b.WriteString("  - ")
			b.WriteString(paint(errorStyle, e.Error()))
			b.WriteString("\n")
		}
	}

	io.WriteString(w, b.String())
}
