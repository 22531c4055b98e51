// Package tui renders the country directory in the terminal. The model keeps
// the same state machine and projection as the web surface; only the
// rendering differs.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/actuallystonmai/country-directory/internal/source"
	"github.com/actuallystonmai/country-directory/internal/view"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// loadedMsg carries a finished load. seq identifies the load that produced
// it; results of superseded loads are dropped.
type loadedMsg struct {
	seq   int
	users []domain.User
	err   error
}

type Model struct {
	ctx    context.Context
	loader source.Loader
	log    *zap.Logger

	users  []domain.User
	ui     view.State
	status domain.LoadStatus
	err    error
	seq    int
	cursor int

	width   int
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  styles
}

// New returns a model that loads once on Init. ctx bounds every load; cancel
// it when the program exits so an in-flight request is abandoned.
func New(ctx context.Context, loader source.Loader, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	return Model{
		ctx:     ctx,
		loader:  loader,
		log:     log.Named("tui"),
		ui:      view.Initial(),
		status:  domain.StatusLoading,
		keys:    defaultKeys(),
		help:    help.New(),
		spinner: sp,
		styles:  defaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	ctx, loader, seq := m.ctx, m.loader, m.seq
	return func() tea.Msg {
		users, err := loader.Load(ctx)
		return loadedMsg{seq: seq, users: users, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		if msg.seq != m.seq || m.ctx.Err() != nil {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("fetch_failed", zap.Error(msg.err))
			m.status = domain.StatusFailed
			m.err = msg.err
			return m, nil
		}
		m.users = msg.users
		m.status = domain.StatusReady
		m.err = nil
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		if m.status != domain.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	countries := m.countries()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(countries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(countries) > 0 {
			m.ui = view.Reduce(m.ui, view.ToggleCountry{Country: countries[m.cursor].Name})
		}
	case key.Matches(msg, m.keys.All):
		m.ui = view.Reduce(m.ui, view.SetFilter{Filter: domain.FilterAll})
	case key.Matches(msg, m.keys.Male):
		m.ui = view.Reduce(m.ui, view.SetFilter{Filter: domain.FilterMale})
	case key.Matches(msg, m.keys.Female):
		m.ui = view.Reduce(m.ui, view.SetFilter{Filter: domain.FilterFemale})
	case key.Matches(msg, m.keys.Cycle):
		m.ui = view.Reduce(m.ui, view.SetFilter{Filter: m.ui.Filter.Next()})
	case key.Matches(msg, m.keys.Reload):
		if m.status == domain.StatusLoading {
			return m, nil
		}
		m.seq++
		m.status = domain.StatusLoading
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.load())
	}

	return m, nil
}

func (m Model) countries() []view.Country {
	return view.Project(m.users, m.ui).Countries
}

func (m *Model) clampCursor() {
	n := len(m.countries())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	page := view.Project(m.users, m.ui)
	page.Status = m.status

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Country User List"))
	b.WriteString("\n")
	b.WriteString(m.renderFilter(page.Filter))
	b.WriteString("\n\n")

	switch m.status {
	case domain.StatusLoading:
		b.WriteString(m.spinner.View() + m.styles.Status.Render(" Loading users…"))
		b.WriteString("\n\n")
	case domain.StatusFailed:
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Loading users failed: %v (press r to retry)", m.err)))
		b.WriteString("\n\n")
	default:
		if len(page.Countries) == 0 {
			b.WriteString(m.styles.Status.Render("No users loaded."))
			b.WriteString("\n\n")
		}
	}

	for i, c := range page.Countries {
		line := fmt.Sprintf("%s (total: %d)", c.Name, c.Total)
		if i == m.cursor {
			b.WriteString(m.styles.Cursor.Render("› " + line))
		} else {
			b.WriteString(m.styles.Country.Render("  " + line))
		}
		b.WriteString("\n")
		if c.Expanded {
			b.WriteString(m.renderMembers(c))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderFilter(active domain.GenderFilter) string {
	parts := make([]string, 0, len(domain.GenderFilters))
	for _, f := range domain.GenderFilters {
		if f == active {
			parts = append(parts, m.styles.Cursor.Render("["+f.Label()+"]"))
			continue
		}
		parts = append(parts, m.styles.Filter.Render(f.Label()))
	}
	return "Filter by Gender: " + strings.Join(parts, " ")
}

func (m Model) renderMembers(c view.Country) string {
	if c.Empty {
		return m.styles.Expanded.Render(m.styles.Empty.Render("No data"))
	}

	cards := make([]string, 0, len(c.Members))
	for _, u := range c.Members {
		cards = append(cards, lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Member.Render(u.FullName),
			m.styles.Detail.Render(fmt.Sprintf("Gender: %s · City: %s · State: %s · Registered: %s",
				u.Gender, u.City, u.State, u.Registered)),
		))
	}
	return m.styles.Expanded.Render(lipgloss.JoinVertical(lipgloss.Left, cards...))
}
