package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wail"
	"github.com/wippyai/wail/link"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

type interactiveModel struct {
	err      error
	opts     wail.Options
	result   *wail.Result
	names    []string
	filter   textinput.Model
	detail   viewport.Model
	selected int
	width    int
	height   int
	state    modelState
}

type modelState int

const (
	stateSelectComponent modelState = iota
	stateFilter
	stateShowDetail
)

func newInteractiveModel(opts wail.Options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "component name"
	ti.Width = 40

	return &interactiveModel{
		opts:   opts,
		filter: ti,
		detail: viewport.New(80, 20),
		state:  stateSelectComponent,
	}
}

type loadedMsg struct {
	err    error
	result *wail.Result
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.assemble
}

// assemble runs the pipeline. An invalid report still yields a result, so
// the browser can show what failed.
func (m *interactiveModel) assemble() tea.Msg {
	res, err := wail.Run(context.Background(), m.opts)
	if res == nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{result: res}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 5)

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.result = msg.result
		m.refreshNames()

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectComponent && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectComponent && m.selected < len(m.names)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateSelectComponent {
				m.state = stateFilter
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if m.state == stateSelectComponent && len(m.names) > 0 {
				m.detail.SetContent(m.describe(m.names[m.selected]))
				m.detail.GotoTop()
				m.state = stateShowDetail
			}

		case "esc":
			if m.state == stateShowDetail {
				m.state = stateSelectComponent
			}
		}
	}

	if m.state == stateShowDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.filter.Blur()
		m.state = stateSelectComponent
		m.refreshNames()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refreshNames()
	return m, cmd
}

func (m *interactiveModel) refreshNames() {
	if m.result == nil {
		return
	}
	query := strings.ToLower(m.filter.Value())
	m.names = m.names[:0]
	for _, c := range m.result.Graph.Components {
		if query == "" || strings.Contains(strings.ToLower(c.Name), query) {
			m.names = append(m.names, c.Name)
		}
	}
	if m.selected >= len(m.names) {
		m.selected = max(len(m.names)-1, 0)
	}
}

// describe renders everything known about one component.
func (m *interactiveModel) describe(name string) string {
	g := m.result.Graph
	var b strings.Builder

	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n\n")

	if entry, ok := g.Component(name); ok {
		fmt.Fprintf(&b, "type   %s\n", entry.Type)
		if entry.Properties.Image != "" {
			fmt.Fprintf(&b, "image  %s\n", entry.Properties.Image)
		}
		if app := entry.Properties.Application; app != nil {
			fmt.Fprintf(&b, "shared %s/%s\n", app.Name, app.Component)
		}
		for _, t := range entry.Traits {
			fmt.Fprintf(&b, "trait  %s\n", t.Type)
		}
	}

	cat, ok := g.Catalog(name)
	if !ok {
		b.WriteString(mutedStyle.Render("\nno catalog"))
		return b.String()
	}

	wl := g.Whitelist()
	links := g.LinksFrom(name)

	b.WriteString("\nImports:\n")
	for _, id := range cat.Imports {
		line := "  " + ifaceStyle.Render(id.String())
		switch {
		case wl.Contains(id):
			line += " " + mutedStyle.Render("runtime")
		default:
			for _, c := range links {
				if c.Interface() == id {
					line += " " + linkState(c)
					break
				}
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\nExports:\n")
	for _, id := range cat.Exports {
		b.WriteString("  " + ifaceStyle.Render(id.String()))
		var users []string
		for _, c := range g.Links {
			if c.Target == name && c.Interface() == id {
				users = append(users, c.Source)
			}
		}
		if len(users) > 0 {
			b.WriteString(" " + mutedStyle.Render("<- "+strings.Join(users, ", ")))
		}
		b.WriteString("\n")
	}

	var problems []string
	for _, e := range m.result.Report.Errors {
		if e.Component == name {
			problems = append(problems, e.Detail)
		}
	}
	if len(problems) > 0 {
		b.WriteString("\nErrors:\n")
		for _, p := range problems {
			b.WriteString("  " + errorStyle.Render(p) + "\n")
		}
	}
	return b.String()
}

func linkState(c *link.Constructor) string {
	switch c.State {
	case link.Resolved, link.Pinned:
		return linkStyle.Render("-> "+c.Target) + " " + mutedStyle.Render(c.State.String())
	case link.Unsatisfiable:
		return errorStyle.Render(c.State.String())
	default:
		return warnStyle.Render(c.State.String())
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.result == nil {
		return "Assembling application..."
	}

	if m.state == stateShowDetail {
		return m.detail.View() + "\n" + helpStyle.Render("↑/↓ scroll • esc back • q quit")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wail"))
	b.WriteString(" ")
	if m.result.Report.Valid {
		b.WriteString(okStyle.Render(m.result.Report.Summary()))
	} else {
		b.WriteString(errorStyle.Render(m.result.Report.Summary()))
	}
	b.WriteString("\n\n")

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.names) == 0 {
		b.WriteString(mutedStyle.Render("no components"))
		b.WriteString("\n")
	}
	for i, name := range m.names {
		line := name
		if n := len(m.result.Graph.LinksFrom(name)); n > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" (%d links)", n))
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + name))
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))
	return b.String()
}

func runInteractive(opts wail.Options) error {
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
