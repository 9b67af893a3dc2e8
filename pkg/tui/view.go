package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("243"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	crumbStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bindingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (m *Model) View() tea.View {
	var b strings.Builder

	if form := m.stack.ActiveForm(); form != nil {
		label := form.Target.Title()
		if form.Target.Field != nil && form.Target.Field.Label != "" {
			label = form.Target.Field.Label
		}
		b.WriteString(m.style(headerStyle, label))
		b.WriteString("\n")
		b.WriteString(m.field.View())
		b.WriteString("\n")
	} else {
		b.WriteString(m.searchLine())
		b.WriteString("\n")
		b.WriteString(m.listView())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(m.style(errorStyle, m.status))
		} else {
			b.WriteString(m.style(statusStyle, m.status))
		}
	}

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m *Model) searchLine() string {
	crumbs := m.breadcrumb()
	if crumbs == "" {
		return m.search.View()
	}
	return m.style(crumbStyle, crumbs) + "  " + m.search.View()
}

// breadcrumb joins the parent names of every page above the root.
func (m *Model) breadcrumb() string {
	return strings.Join(m.stack.Breadcrumbs(), " / ")
}

func (m *Model) listView() string {
	maxRows := m.winHeight - 4
	if maxRows < 1 {
		maxRows = 1
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	var b strings.Builder
	for i := start; i < len(m.rows) && i < start+maxRows; i++ {
		r := m.rows[i]
		if r.header != "" {
			b.WriteString(m.style(headerStyle, r.header))
			b.WriteString("\n")
		}
		b.WriteString(m.rowLine(i))
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(m.style(statusStyle, "no matching commands"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) rowLine(i int) string {
	r := m.rows[i]
	s := r.sug

	title := s.Title()
	if len(s.Name) > 1 {
		title += "  " + strings.Join(s.Name[1:], " / ")
	}
	marker := "  "
	if s.IsFavorite {
		marker = m.style(favoriteStyle, "★ ")
	}
	suffix := ""
	if s.Keybinding != "" {
		suffix = "  " + m.style(bindingStyle, s.Keybinding)
	}
	if s.HasChildren {
		suffix += " ›"
	}

	line := marker + truncate(title, m.winWidth-runewidth.StringWidth(suffix)-4) + suffix
	if i == m.cursor {
		return m.style(selectedStyle, line)
	}
	return line
}

func (m *Model) style(st lipgloss.Style, s string) string {
	if m.noColor {
		return s
	}
	return st.Render(s)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
