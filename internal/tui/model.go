// Package tui implements the interactive ledger browser.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/service"
)

// View selects which entity the browser pages through.
type View int

const (
	// ViewRecords pages through ledger records.
	ViewRecords View = iota
	// ViewInvestments pages through trade lots.
	ViewInvestments
)

func (v View) String() string {
	if v == ViewInvestments {
		return "Investments"
	}
	return "Records"
}

// Source is the part of the ledger the browser reads.
type Source interface {
	service.Records
	service.Investments
	ListCategories(ctx context.Context, filter model.KindFilter) ([]model.Category, error)
}

// Model is the bubbletea model for the browser.
type Model struct {
	ctx      context.Context
	source   Source
	err      error
	keys     KeyMap
	help     help.Model
	table    table.Model
	view     View
	page     int
	pages    int
	pageSize int
	loading  bool
}

var (
	titleStyle  = cli.TitleStyle.UnsetMargins()
	footerStyle = cli.SubtleStyle
)

// NewModel creates a browser showing the newest page of records.
func NewModel(ctx context.Context, source Source, pageSize int) Model {
	t := table.New(
		table.WithColumns(columnsFor(ViewRecords)),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cli.SubtleColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(cli.PrimaryColor)
	t.SetStyles(s)

	return Model{
		ctx:      ctx,
		source:   source,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		table:    t,
		view:     ViewRecords,
		pageSize: pageSize,
		loading:  true,
	}
}

// WithView returns a copy of m that opens on view v.
func (m Model) WithView(v View) Model {
	m.view = v
	m.table.SetColumns(columnsFor(v))
	return m
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadPage(m.view, 0)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		if msg.view != m.view {
			m.table.SetRows(nil)
			m.table.SetColumns(columnsFor(msg.view))
		}
		m.view = msg.view
		m.page = msg.page
		m.pages = msg.pages
		m.table.SetRows(msg.rows)
		m.table.GotoTop()
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetHeight(max(min(m.pageSize, msg.Height-6), 3))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case m.loading:
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		if m.page+1 >= m.pages {
			return m, nil
		}
		return m.request(m.view, m.page+1)
	case key.Matches(msg, m.keys.PrevPage):
		if m.page == 0 {
			return m, nil
		}
		return m.request(m.view, m.page-1)
	case key.Matches(msg, m.keys.FirstPage):
		return m.request(m.view, 0)
	case key.Matches(msg, m.keys.LastPage):
		return m.request(m.view, max(m.pages-1, 0))
	case key.Matches(msg, m.keys.SwitchView):
		next := ViewInvestments
		if m.view == ViewInvestments {
			next = ViewRecords
		}
		return m.request(next, 0)
	case key.Matches(msg, m.keys.Refresh):
		return m.request(m.view, m.page)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) request(view View, page int) (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.loadPage(view, page)
}

// loadPage fetches one page, clamping it to the last page that exists.
func (m Model) loadPage(view View, page int) tea.Cmd {
	ctx, source, size := m.ctx, m.source, m.pageSize
	return func() tea.Msg {
		msg := pageLoadedMsg{view: view}

		var err error
		if view == ViewInvestments {
			msg.pages, err = source.CountInvestmentPages(ctx, size)
		} else {
			msg.pages, err = source.CountRecordPages(ctx, size)
		}
		if err != nil {
			msg.err = err
			return msg
		}
		msg.page = min(page, max(msg.pages-1, 0))

		if view == ViewInvestments {
			msg.rows, msg.err = investmentRows(ctx, source, msg.page, size)
		} else {
			msg.rows, msg.err = recordRows(ctx, source, msg.page, size)
		}
		return msg
	}
}

func recordRows(ctx context.Context, source Source, page, size int) ([]table.Row, error) {
	records, err := source.ListRecordsPage(ctx, page, size)
	if err != nil {
		return nil, err
	}
	categories, err := source.ListCategories(ctx, model.AllKinds)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		category := names[r.CategoryID]
		if r.CategoryID == 0 {
			category = "(none)"
		}
		rows = append(rows, table.Row{
			fmt.Sprint(r.ID),
			r.Date.Format(model.DateLayout),
			r.Description,
			r.Amount.StringFixed(2),
			category,
		})
	}
	return rows, nil
}

func investmentRows(ctx context.Context, source Source, page, size int) ([]table.Row, error) {
	investments, err := source.ListInvestmentsPage(ctx, page, size)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, 0, len(investments))
	for _, i := range investments {
		rows = append(rows, table.Row{
			fmt.Sprint(i.ID),
			i.Date.Format(model.DateLayout),
			i.Code,
			i.Quantity.String(),
			i.UnitPrice.StringFixed(2),
			i.Cost().StringFixed(2),
		})
	}
	return rows, nil
}

func columnsFor(view View) []table.Column {
	if view == ViewInvestments {
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Date", Width: 10},
			{Title: "Code", Width: 10},
			{Title: "Quantity", Width: 10},
			{Title: "Unit Price", Width: 12},
			{Title: "Cost", Width: 12},
		}
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 10},
		{Title: "Description", Width: 30},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 20},
	}
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(cli.LedgerIcon + " " + m.view.String()))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(cli.FormatError(m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.pages == 0 && !m.loading {
		b.WriteString(cli.InfoStyle.Render(fmt.Sprintf("No %s yet.", strings.ToLower(m.view.String()))))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	status := fmt.Sprintf("page %d/%d", m.page+1, max(m.pages, 1))
	if m.loading {
		status += " · loading…"
	}
	b.WriteString(footerStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// Page returns the zero-indexed page on screen.
func (m Model) Page() int { return m.page }

// Pages returns the number of pages in the current view.
func (m Model) Pages() int { return m.pages }

// CurrentView returns the entity being browsed.
func (m Model) CurrentView() View { return m.view }

// Rows returns the rows on screen.
func (m Model) Rows() []table.Row { return m.table.Rows() }
