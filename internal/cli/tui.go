package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	"github.com/matzehuels/navtree/pkg/navigation"
	"github.com/matzehuels/navtree/pkg/validate"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCommand opens the interactive navigation panel.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit the hierarchy interactively",
		Long: `Open an interactive navigation panel.

Changes are applied locally at once and sent to the store in the background.
Renames and additions are announced to other views after the configured
settle delay (client.settle_delay).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			routes := make(chan string, 8)
			s, err := c.openSession(ctx, sessionOptions{
				settleDelay: c.Config().Client.SettleDelay,
				navigate: func(url string) {
					select {
					case routes <- url:
					default:
					}
				},
			})
			if err != nil {
				return err
			}

			m := newNavModel(ctx, s.svc, routes)
			defer m.unsubscribe()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
			if _, err := p.Run(); err != nil {
				_ = s.close()
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			return s.finish(context.WithoutCancel(ctx))
		},
	}
}

// =============================================================================
// Key bindings
// =============================================================================

type navKeys struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Favorite key.Binding
	Add      key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Mark     key.Binding
	Above    key.Binding
	Into     key.Binding
	Below    key.Binding
	Search   key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func defaultNavKeys() navKeys {
	return navKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "open")),
		Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Mark:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Above:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "drop above")),
		Into:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "drop into")),
		Below:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "drop below")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// browseHelp implements help.KeyMap for the default mode.
type browseHelp struct{ k navKeys }

func (h browseHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Open, h.k.Favorite, h.k.Add, h.k.Rename, h.k.Delete, h.k.Mark, h.k.Search, h.k.Quit}
}

func (h browseHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// moveHelp implements help.KeyMap while an entry is marked for moving.
type moveHelp struct{ k navKeys }

func (h moveHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Above, h.k.Into, h.k.Below, h.k.Cancel}
}

func (h moveHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// =============================================================================
// Messages
// =============================================================================

// collectionMsg carries a collection published by the service.
type collectionMsg []dashboard.Entry

// routeMsg carries a route the service navigated to.
type routeMsg string

// appliedMsg reports the outcome of a change.
type appliedMsg struct {
	ok  string
	err error
}

func waitForCollection(ch <-chan []dashboard.Entry) tea.Cmd {
	return func() tea.Msg {
		entries, ok := <-ch
		if !ok {
			return nil
		}
		return collectionMsg(entries)
	}
}

func waitForRoute(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return routeMsg(<-ch)
	}
}

// =============================================================================
// navModel - Interactive hierarchy editor
// =============================================================================

type navMode int

const (
	modeBrowse navMode = iota
	modeAdd
	modeRename
	modeConfirmDelete
	modeMove
	modeSearch
)

// row is one visible line of the flattened tree.
type row struct {
	node  *hierarchy.Node
	depth int
}

// navModel is the bubbletea model for the navigation panel.
type navModel struct {
	ctx         context.Context
	svc         *navigation.Service
	updates     <-chan []dashboard.Entry
	unsubscribe func()
	routes      <-chan string

	keys  navKeys
	help  help.Model
	input textinput.Model

	rows   []row
	cursor int
	offset int
	height int

	mode    navMode
	marked  string
	route   string
	status  string
	failed  bool
	pending int
}

func newNavModel(ctx context.Context, svc *navigation.Service, routes <-chan string) *navModel {
	updates, unsubscribe := svc.Subscribe(4)

	input := textinput.New()
	input.CharLimit = 120
	input.Prompt = "› "

	m := &navModel{
		ctx:         ctx,
		svc:         svc,
		updates:     updates,
		unsubscribe: unsubscribe,
		routes:      routes,
		keys:        defaultNavKeys(),
		help:        help.New(),
		input:       input,
		height:      15,
	}
	m.setCollection(svc.Collection())
	if fav, ok := svc.Favorite(); ok {
		m.moveTo(fav.Link)
	}
	return m
}

func (m *navModel) Init() tea.Cmd {
	return tea.Batch(waitForCollection(m.updates), waitForRoute(m.routes))
}

func (m *navModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.help.Width = msg.Width
		return m, nil

	case collectionMsg:
		selected := m.selected()
		m.setCollection(msg)
		m.moveTo(selected)
		return m, waitForCollection(m.updates)

	case routeMsg:
		m.route = string(msg)
		return m, waitForRoute(m.routes)

	case appliedMsg:
		m.pending--
		m.failed = msg.err != nil
		if msg.err != nil {
			m.status = errors.UserMessage(msg.err)
		} else {
			m.status = msg.ok
		}
		// Refresh so the cursor follows the edited entry even before a
		// deferred broadcast arrives.
		selected := m.selected()
		m.setCollection(m.svc.Collection())
		m.moveTo(selected)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeRename, modeSearch:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeMove:
			return m.updateMove(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *navModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Cancel):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.step(-1)
	case key.Matches(msg, m.keys.Down):
		m.step(1)
	case key.Matches(msg, m.keys.Open):
		if n := m.current(); n != nil {
			m.svc.SetActive(n.Link)
			m.route = n.ReportPath()
		}
	case key.Matches(msg, m.keys.Favorite):
		if n := m.current(); n != nil {
			return m, m.apply(navigation.Change{Kind: dashboard.FavoriteSelected, Current: n.Entry},
				iconFavorite+" "+n.Title+" is the favorite")
		}
	case key.Matches(msg, m.keys.Add):
		m.startInput(modeAdd, "", "New dashboard title")
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Rename):
		if n := m.current(); n != nil {
			m.startInput(modeRename, n.Title, "New title")
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keys.Delete):
		if m.current() != nil {
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Mark):
		if n := m.current(); n != nil {
			m.marked = n.Link
			m.mode = modeMove
			m.status = ""
		}
	case key.Matches(msg, m.keys.Search):
		m.startInput(modeSearch, "", "Search titles")
		return m, textinput.Blink
	}
	return m, nil
}

func (m *navModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		if mode != modeSearch && !m.checkInput().Valid {
			return m, nil
		}
		m.mode = modeBrowse
		m.input.Blur()
		switch mode {
		case modeAdd:
			return m, m.apply(navigation.Change{Kind: dashboard.Added, Current: dashboard.Entry{Title: value}},
				"Added "+value)
		case modeRename:
			n := m.current()
			if n == nil || value == n.Title {
				return m, nil
			}
			prev := n.Entry
			return m, m.apply(navigation.Change{Kind: dashboard.Renamed, Previous: &prev, Current: dashboard.Entry{Title: value}},
				"Renamed "+prev.Title+" "+iconArrow+" "+value)
		case modeSearch:
			if matches := hierarchy.Search(m.svc.Tree(), value); len(matches) > 0 && value != "" {
				m.moveTo(matches[0].Link)
				m.status = fmt.Sprintf("%d match(es)", len(matches))
			} else {
				m.status = "no matches"
			}
			m.failed = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *navModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	n := m.current()
	if n == nil || msg.String() != "y" {
		return m, nil
	}
	removed := hierarchy.Len([]*hierarchy.Node{n})
	return m, m.apply(navigation.Change{Kind: dashboard.Deleted, Current: n.Entry},
		fmt.Sprintf("Deleted %d dashboard(s)", removed))
}

func (m *navModel) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var zone dashboard.Zone
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.marked = ""
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.step(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.step(1)
		return m, nil
	case key.Matches(msg, m.keys.Above):
		zone = dashboard.Above
	case key.Matches(msg, m.keys.Into):
		zone = dashboard.Center
	case key.Matches(msg, m.keys.Below):
		zone = dashboard.Below
	default:
		return m, nil
	}

	target := m.current()
	if target == nil {
		return m, nil
	}
	dragged := m.marked
	m.mode = modeBrowse
	m.marked = ""
	m.pending++
	svc, ctx := m.svc, m.ctx
	return m, func() tea.Msg {
		if err := svc.Drop(ctx, dragged, target.Link, zone); err != nil {
			return appliedMsg{err: err}
		}
		return appliedMsg{ok: fmt.Sprintf("Moved %s %s %s", dragged, strings.ToLower(zone.String()), target.Link)}
	}
}

// apply runs a change off the update loop.
func (m *navModel) apply(c navigation.Change, ok string) tea.Cmd {
	m.pending++
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if err := svc.Apply(ctx, c); err != nil {
			return appliedMsg{err: err}
		}
		return appliedMsg{ok: ok}
	}
}

func (m *navModel) startInput(mode navMode, value, placeholder string) {
	m.mode = mode
	m.status = ""
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
}

// checkInput validates the title being typed. Renaming an entry to its
// own title is allowed.
func (m *navModel) checkInput() validate.Result {
	value := m.input.Value()
	if m.mode == modeRename {
		if n := m.current(); n != nil && value == n.Title {
			return validate.OK
		}
	}
	return m.svc.CheckTitle(value)
}

// =============================================================================
// Cursor and rows
// =============================================================================

func (m *navModel) setCollection(entries []dashboard.Entry) {
	m.rows = m.rows[:0]
	hierarchy.Walk(hierarchy.ToTree(entries), func(n *hierarchy.Node) bool {
		m.rows = append(m.rows, row{node: n, depth: n.Depth})
		return true
	})
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

func (m *navModel) current() *hierarchy.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m *navModel) selected() string {
	if n := m.current(); n != nil {
		return n.Link
	}
	return ""
}

func (m *navModel) moveTo(link string) {
	for i, r := range m.rows {
		if r.node.Link == link {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *navModel) step(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.rows) {
		return
	}
	m.cursor = next
	m.scroll()
}

func (m *navModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// =============================================================================
// View
// =============================================================================

func (m *navModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dashboards"))
	if m.route != "" {
		b.WriteString("  " + StyleLink.Render(m.route))
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  No dashboards yet. Press a to add one."))
		b.WriteString("\n")
	}

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd, modeRename, modeSearch:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.mode != modeSearch {
			if res := m.checkInput(); !res.Valid && m.input.Value() != "" {
				b.WriteString(statusErrorStyle.Render("  " + res.Message))
				b.WriteString("\n")
			}
		}
	case modeConfirmDelete:
		if n := m.current(); n != nil {
			extra := hierarchy.Len([]*hierarchy.Node{n}) - 1
			prompt := fmt.Sprintf("Delete %s", n.Title)
			if extra > 0 {
				prompt += fmt.Sprintf(" and %d descendant(s)", extra)
			}
			b.WriteString(StyleWarning.Render(prompt + "? (y/N)"))
			b.WriteString("\n")
		}
	case modeMove:
		b.WriteString(listMarkedStyle.Render("Moving " + m.marked))
		b.WriteString("\n")
		b.WriteString(m.help.View(moveHelp{m.keys}))
		return b.String()
	default:
		if m.pending > 0 {
			b.WriteString(listDimStyle.Render("saving…"))
			b.WriteString("\n")
		} else if m.status != "" {
			style := StyleSuccess
			if m.failed {
				style = statusErrorStyle
			}
			b.WriteString(style.Render(m.status))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(browseHelp{m.keys}))
	return b.String()
}

func (m *navModel) renderRow(i int) string {
	r := m.rows[i]
	n := r.node

	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}
	indent := strings.Repeat("  ", r.depth)

	title := n.Title
	if n.IsMain {
		title = iconFavorite + " " + title
	}
	style := listNormalStyle
	switch {
	case n.Link == m.marked:
		style = listMarkedStyle
	case i == m.cursor:
		style = listSelectedStyle
	case n.IsMain:
		style = StyleFavorite
	}
	line := cursor + indent + style.Render(title) + " " + listDimStyle.Render("/"+n.Link)
	if m.svc.IsActive(n.Link) {
		line += " " + StyleHighlight.Render("●")
	}
	return line
}
