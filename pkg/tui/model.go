// Package tui renders the command palette in a terminal. It drives the same
// engine the stdio protocol exposes: a search input over the current page's
// sections, drill-down into groups, form capture for inputs, and global
// keybinding dispatch.
package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/dispatch"
	"github.com/jamesmacfie/monocle-sub001/internal/keybind"
	"github.com/jamesmacfie/monocle-sub001/internal/navigator"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
	"github.com/jamesmacfie/monocle-sub001/pkg/palette"
)

// row is one selectable line in the flattened section list.
type row struct {
	header string
	sug    suggest.Suggestion
}

// Model is the palette TUI state.
type Model struct {
	engine *palette.Engine
	ec     command.Context
	stack  *navigator.Stack

	search textinput.Model
	field  textinput.Model

	rows []row
	// deepSearch holds the pre-flattened leaves of deep-searchable groups;
	// they join the root page's rows while a query is active.
	deepSearch []suggest.Suggestion
	cursor     int
	// captured holds input-row values for the current page so a submit row
	// can fire with them after the form closes.
	captured  map[string]string
	winWidth  int
	winHeight int

	noColor   bool
	status    string
	statusErr bool
	quitting  bool
}

// New builds the model with a fresh command snapshot.
func New(ctx context.Context, engine *palette.Engine, ec command.Context, noColor bool) (*Model, error) {
	set, err := engine.GetCommands(ctx, ec)
	if err != nil {
		return nil, err
	}

	si := textinput.New()
	si.Placeholder = "Search commands"
	si.Focus()
	si.SetWidth(60)

	fi := textinput.New()
	fi.SetWidth(60)

	m := &Model{
		engine:     engine,
		ec:         ec,
		stack:      engine.NewStack(set),
		deepSearch: set.DeepSearchItems,
		captured:   map[string]string{},
		search:     si,
		field:      fi,
		winWidth:   80,
		winHeight:  24,
		noColor:    noColor,
	}
	m.rebuildRows()
	return m, nil
}

// Run starts the palette program and blocks until it exits.
func Run(ctx context.Context, engine *palette.Engine, ec command.Context, noColor bool) error {
	m, err := New(ctx, engine, ec, noColor)
	if err != nil {
		return err
	}
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = prog.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.winWidth = msg.Width
		m.winHeight = msg.Height
		m.search.SetWidth(msg.Width - 4)
		m.field.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	keyStr := msg.String()

	switch keyStr {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	if m.stack.ActiveForm() != nil {
		return m.handleFormKey(ctx, keyStr, msg)
	}

	switch keyStr {
	case "esc":
		if !m.stack.NavigateBack() {
			m.quitting = true
			return m, tea.Quit
		}
		m.restoreSearch()
		return m, nil
	case "backspace":
		if m.search.Value() == "" {
			if m.stack.NavigateBack() {
				m.restoreSearch()
			}
			return m, nil
		}
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil
	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.selectCurrent(ctx)
	}

	// Modified keys never reach the search input; they are offered to the
	// binding registry instead.
	if ev, ok := parseEvent(keyStr); ok && ev.String() != "" {
		if id, matched := m.engine.MatchEvent(ctx, m.ec, ev); matched {
			res := m.engine.Execute(ctx, m.ec, id, nil, nil)
			return m.afterExecute(res, false)
		}
		if hasModifier(keyStr) {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.stack.UpdateSearch(m.search.Value())
	m.rebuildRows()
	return m, cmd
}

func (m *Model) handleFormKey(ctx context.Context, keyStr string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.stack.ActiveForm()
	switch keyStr {
	case "esc":
		m.stack.NavigateBack()
		return m, nil
	case "enter":
		if form.Target.Field != nil {
			m.stack.SetFormValue(form.Target.Field.Name, m.field.Value())
			m.captured[form.Target.Field.Name] = m.field.Value()
		}
		if form.Target.Kind == suggest.KindInput {
			// Plain inputs only capture a value; a submit row in the same
			// group fires the execution.
			m.stack.NavigateBack()
			return m, nil
		}
		res := m.stack.SubmitForm(ctx, m.ec)
		return m.afterExecute(res, form.Target.RemainOpen)
	}
	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

func (m *Model) selectCurrent(ctx context.Context) (tea.Model, tea.Cmd) {
	sug, ok := m.selected()
	if !ok {
		return m, nil
	}

	if sug.Kind == suggest.KindSubmit {
		// Gather sibling input values captured on this page before firing.
		res := m.engine.Execute(ctx, m.ec, sug.ID, sug.ParentPath, m.pageValues())
		return m.afterExecute(res, sug.RemainOpen)
	}

	outcome, res := m.stack.SelectCommand(ctx, m.ec, sug)
	switch outcome {
	case navigator.OutcomeNavigated:
		m.search.SetValue("")
		m.cursor = 0
		m.captured = map[string]string{}
		m.rebuildRows()
	case navigator.OutcomeFormOpened:
		m.field.SetValue("")
		if sug.Field != nil {
			m.field.Placeholder = sug.Field.Placeholder
		}
		m.field.Focus()
	case navigator.OutcomeExecuted:
		return m.afterExecute(res, sug.RemainOpen)
	}
	return m, nil
}

func (m *Model) afterExecute(res dispatch.Result, remainOpen bool) (tea.Model, tea.Cmd) {
	if msg := res.ErrorMessage(); msg != "" {
		m.status = msg
		m.statusErr = true
		return m, nil
	}
	m.status = ""
	m.statusErr = false
	if remainOpen {
		m.refresh(context.Background())
		return m, nil
	}
	m.quitting = true
	return m, tea.Quit
}

// refresh re-snapshots the catalog so favorite and recent rows reflect the
// action that just ran.
func (m *Model) refresh(ctx context.Context) {
	set, err := m.engine.GetCommands(ctx, m.ec)
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return
	}
	m.stack.SetRoot(set.Commands())
	m.deepSearch = set.DeepSearchItems
	m.rebuildRows()
}

// pageValues collects values captured for input rows on the current page.
func (m *Model) pageValues() map[string]string {
	return m.captured
}

func (m *Model) restoreSearch() {
	m.search.SetValue(m.stack.Top().SearchText)
	m.cursor = 0
	m.rebuildRows()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m *Model) selected() (suggest.Suggestion, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return suggest.Suggestion{}, false
	}
	return m.rows[m.cursor].sug, true
}

// rebuildRows flattens the top page's sections through the search filter.
// Favorites and recents only show on the root page with an empty query; a
// root query additionally searches the pre-flattened deep-search leaves so
// nested items surface without navigating into their groups.
func (m *Model) rebuildRows() {
	page := m.stack.Top()
	query := m.search.Value()
	atRoot := page.ID == navigator.RootPageID
	emptyQuery := strings.TrimSpace(query) == ""

	var rows []row
	if atRoot && emptyQuery {
		rows = appendSection(rows, "Favorites", page.Commands.Favorites, query)
		rows = appendSection(rows, "Recents", page.Commands.Recents, query)
	}
	rows = appendSection(rows, "Commands", page.Commands.Suggestions, query)
	if atRoot && !emptyQuery {
		rows = appendSection(rows, "Search", dedupe(m.deepSearch, page.Commands.Suggestions), query)
	}
	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = 0
	}
}

// dedupe drops deep-search items whose ID already appears among the
// top-level suggestions.
func dedupe(deep, top []suggest.Suggestion) []suggest.Suggestion {
	seen := make(map[string]bool, len(top))
	for _, s := range top {
		seen[s.ID] = true
	}
	var out []suggest.Suggestion
	for _, s := range deep {
		if seen[s.ID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func appendSection(rows []row, header string, sugs []suggest.Suggestion, query string) []row {
	first := true
	for _, s := range sugs {
		if !matches(s, query) {
			continue
		}
		h := ""
		if first {
			h = header
			first = false
		}
		rows = append(rows, row{header: h, sug: s})
	}
	return rows
}

// matches reports whether every query token is a substring of the
// suggestion's title, breadcrumb, keywords or description.
func matches(s suggest.Suggestion, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	var hay strings.Builder
	for _, part := range s.Name {
		hay.WriteString(strings.ToLower(part))
		hay.WriteByte(' ')
	}
	for _, kw := range s.Keywords {
		hay.WriteString(strings.ToLower(kw))
		hay.WriteByte(' ')
	}
	hay.WriteString(strings.ToLower(s.Description))
	text := hay.String()

	for _, token := range strings.Fields(query) {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}

// parseEvent translates a bubbletea key string like "alt+shift+k" into a
// binding event. Plain printable keys are reported with InTextInput set so
// the registry leaves them to the search field.
func parseEvent(keyStr string) (keybind.Event, bool) {
	if keyStr == "" {
		return keybind.Event{}, false
	}
	parts := strings.Split(keyStr, "+")
	ev := keybind.Event{Key: parts[len(parts)-1], InTextInput: true}
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl":
			ev.Ctrl = true
		case "alt":
			ev.Alt = true
		case "shift":
			ev.Shift = true
		case "meta", "cmd", "super":
			ev.Meta = true
		default:
			return keybind.Event{}, false
		}
	}
	return ev, true
}

func hasModifier(keyStr string) bool {
	return strings.Contains(keyStr, "+")
}
