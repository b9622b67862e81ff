// Package listview is the interactive List-Filter-Paginate screen. It drives
// a listing.ViewModel from the bubbletea update loop: fetches run as commands
// and come back tagged, search input is debounced for server-side sources,
// and the list reloads on refresh, focus regain and change-feed events.
package listview

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/salesdesk/salesdesk/cli/api"
	"github.com/salesdesk/salesdesk/cli/tui/models"
	"github.com/salesdesk/salesdesk/cli/tui/styles"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
)

// Column renders one table column.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Dialog is a form shown over the list. Submit runs once the form completes;
// an error reopens the form with the message and the values kept.
type Dialog struct {
	Title  string
	Build  func() *huh.Form
	Submit func(ctx context.Context) error
	Done   string
}

// Action is a row action bound to a key.
type Action[T any] struct {
	Key key.Binding
	// Allowed hides the action for rows it does not apply to.
	Allowed func(T) bool
	// Confirm, when set, asks a yes/no question before Run.
	Confirm func(T) string
	// Dialog, when set, opens a form instead of calling Run.
	Dialog func(T) *Dialog
	Run    func(ctx context.Context, item T) error
	Done   string
}

// StatusOption is one value of the status filter cycle.
type StatusOption struct {
	Label string
	Value *int
}

// Config describes one list screen.
type Config[T listing.Record] struct {
	Title    string
	Source   listing.Source[T]
	Strategy listing.Strategy
	Columns  []Column[T]

	PageSize   int
	Query      string
	Statuses   []StatusOption
	Descending bool
	// Debounce is the quiet window for server-side search input.
	Debounce time.Duration

	Detail  func(ctx context.Context, item T) (string, error)
	Add     func() *Dialog
	Actions []Action[T]

	// Events is the change feed; events whose type is in Resources reload the list.
	Events    <-chan api.Event
	Resources []string
}

type screen int

const (
	screenList screen = iota
	screenSearch
	screenForm
	screenConfirm
	screenDetail
)

// Model is the bubbletea model of a list screen.
type Model[T listing.Record] struct {
	models.BaseModel
	cfg Config[T]
	vm  *listing.ViewModel[T]

	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	debouncer *listing.Debouncer
	statusIdx int
	rows      []T

	screen      screen
	dialog      *Dialog
	form        *huh.Form
	formErr     string
	submitting  bool
	confirmText string
	confirmRun  func(ctx context.Context) error
	confirmDone string

	detail        string
	detailErr     string
	detailLoading bool
	notFound      bool

	busy  bool
	flash string
	fault string
}

func New[T listing.Record](ctx context.Context, cfg Config[T]) *Model[T] {
	var status *int
	if len(cfg.Statuses) > 0 {
		status = cfg.Statuses[0].Value
	}
	vm := listing.New[T](listing.Options{
		Strategy:   cfg.Strategy,
		PageSize:   cfg.PageSize,
		Status:     status,
		Descending: cfg.Descending,
		Describe:   crm.DisplayMessage,
	})
	vm.SetQuery(cfg.Query)

	search := textinput.New()
	search.Placeholder = "type to filter"
	search.Prompt = "/ "
	search.SetValue(cfg.Query)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := &Model[T]{
		BaseModel: models.NewBaseModel(ctx),
		cfg:       cfg,
		vm:        vm,
		table:     newTable(cfg.Columns),
		search:    search,
		spinner:   sp,
		help:      help.New(),
		keys:      defaultKeyMap(cfg),
	}
	if cfg.Strategy == listing.ServerSide {
		m.debouncer = listing.NewDebouncer(cfg.Debounce)
	}
	return m
}

func newTable[T any](cols []Column[T]) table.Model {
	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		columns[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.Highlight).
		Background(styles.Surface).
		Bold(true)
	t.SetStyles(s)
	return t
}

// ViewModel exposes the listing state, mainly for tests.
func (m *Model[T]) ViewModel() *listing.ViewModel[T] {
	return m.vm
}

// Run shows the screen until the user quits.
func Run[T listing.Record](ctx context.Context, cfg Config[T]) error {
	m := New(ctx, cfg)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run %s screen: %w", cfg.Title, err)
	}
	return nil
}

// Close releases the search debouncer.
func (m *Model[T]) Close() {
	if m.debouncer != nil {
		m.debouncer.Stop()
	}
}
