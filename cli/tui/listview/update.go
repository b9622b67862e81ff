package listview

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/salesdesk/salesdesk/cli/api"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
)

type fetchedMsg[T any] struct {
	resp listing.Response[T]
}

type queryMsg struct {
	query string
}

type eventMsg struct {
	evt api.Event
	ok  bool
}

type actionMsg struct {
	done   string
	err    error
	dialog *Dialog
}

type detailMsg struct {
	body string
	err  error
}

func (m *Model[T]) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitQuery(), m.waitEvent(), m.spinner.Tick)
}

func (m *Model[T]) load() tea.Cmd {
	return m.fetch(m.vm.BeginLoad())
}

func (m *Model[T]) fetch(req listing.Request) tea.Cmd {
	ctx := m.Context()
	src := m.cfg.Source
	return func() tea.Msg {
		return fetchedMsg[T]{resp: listing.Fetch(ctx, src, req)}
	}
}

func (m *Model[T]) waitQuery() tea.Cmd {
	if m.debouncer == nil {
		return nil
	}
	ctx := m.Context()
	ch := m.debouncer.C()
	return func() tea.Msg {
		select {
		case q := <-ch:
			return queryMsg{query: q}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model[T]) waitEvent() tea.Cmd {
	if m.cfg.Events == nil {
		return nil
	}
	ctx := m.Context()
	ch := m.cfg.Events
	return func() tea.Msg {
		select {
		case evt, ok := <-ch:
			return eventMsg{evt: evt, ok: ok}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.resize()
		if m.form != nil {
			m.form = m.form.WithWidth(min(msg.Width-4, 80))
		}
		return m, nil
	case fetchedMsg[T]:
		accepted, refetch := m.vm.Resolve(msg.resp)
		if !accepted {
			return m, nil
		}
		m.refreshRows()
		if refetch {
			return m, m.load()
		}
		return m, nil
	case queryMsg:
		cmds := []tea.Cmd{m.waitQuery()}
		if m.screen == screenList || m.screen == screenSearch {
			cmds = append(cmds, m.applyQuery(msg.query))
		}
		return m, tea.Batch(cmds...)
	case eventMsg:
		if !msg.ok {
			m.cfg.Events = nil
			return m, nil
		}
		cmds := []tea.Cmd{m.waitEvent()}
		if msg.evt.Matches(m.cfg.Resources...) {
			cmds = append(cmds, m.load())
		}
		return m, tea.Batch(cmds...)
	case tea.FocusMsg:
		return m, m.load()
	case actionMsg:
		return m, m.finishAction(msg)
	case detailMsg:
		m.detailLoading = false
		switch {
		case errors.Is(msg.err, crm.ErrNotFound):
			m.notFound = true
		case msg.err != nil:
			m.detailErr = crm.DisplayMessage(msg.err)
		default:
			m.detail = msg.body
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.screen {
	case screenForm:
		return m, m.updateForm(msg)
	case screenSearch:
		return m, m.updateSearch(msg)
	case screenConfirm:
		return m, m.updateConfirm(msg)
	case screenDetail:
		return m, m.updateDetail(msg)
	default:
		return m, m.updateList(msg)
	}
}

func (m *Model[T]) updateList(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	if cmd := m.BaseModel.Update(msg); cmd != nil {
		return cmd
	}
	m.fault = ""
	switch {
	case key.Matches(k, m.keys.Quit):
		return tea.Quit
	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(k, m.keys.Search):
		m.screen = screenSearch
		m.search.SetValue(m.vm.Query())
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(k, m.keys.Clear):
		if m.vm.Query() == "" {
			return nil
		}
		m.search.SetValue("")
		return m.applyQuery("")
	case key.Matches(k, m.keys.Next):
		return m.gotoPage(m.vm.Page() + 1)
	case key.Matches(k, m.keys.Prev):
		return m.gotoPage(m.vm.Page() - 1)
	case key.Matches(k, m.keys.First):
		return m.gotoPage(1)
	case key.Matches(k, m.keys.Last):
		return m.gotoPage(m.vm.TotalPages())
	case key.Matches(k, m.keys.Grow):
		return m.stepPageSize(1)
	case key.Matches(k, m.keys.Shrink):
		return m.stepPageSize(-1)
	case key.Matches(k, m.keys.Refresh):
		if m.vm.State() == listing.StatusError {
			req, err := m.vm.Retry()
			if err == nil {
				return m.fetch(req)
			}
		}
		m.flash = ""
		return m.load()
	case key.Matches(k, m.keys.Status):
		return m.cycleStatus()
	case key.Matches(k, m.keys.Order):
		if m.vm.SetDescending(!m.vm.Descending()) {
			return m.load()
		}
		return nil
	case key.Matches(k, m.keys.Add):
		return m.openDialog(m.cfg.Add())
	case key.Matches(k, m.keys.Open):
		return m.openDetail()
	}
	for _, a := range m.cfg.Actions {
		if key.Matches(k, a.Key) {
			return m.runAction(a)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *Model[T]) updateSearch(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c":
			return m.BaseModel.Update(msg)
		case "enter":
			m.screen = screenList
			m.search.Blur()
			return m.applyQuery(m.search.Value())
		case "esc":
			m.screen = screenList
			m.search.Blur()
			m.search.SetValue(m.vm.Query())
			return nil
		}
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	after := m.search.Value()
	if after == before {
		return cmd
	}
	if m.debouncer != nil {
		m.debouncer.Trigger(after)
		return cmd
	}
	return tea.Batch(cmd, m.applyQuery(after))
}

func (m *Model[T]) updateForm(msg tea.Msg) tea.Cmd {
	if m.submitting {
		return nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.closeDialog()
		return nil
	}
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.submitting = true
		m.formErr = ""
		ctx := m.Context()
		d := m.dialog
		return func() tea.Msg {
			return actionMsg{done: d.Done, err: d.Submit(ctx), dialog: d}
		}
	case huh.StateAborted:
		m.closeDialog()
		return nil
	}
	return cmd
}

func (m *Model[T]) updateConfirm(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok || m.busy {
		return nil
	}
	switch k.String() {
	case "y", "Y", "enter":
		m.screen = screenList
		return m.execute(m.confirmRun, m.confirmDone)
	case "n", "N", "esc", "q":
		m.screen = screenList
		m.confirmRun = nil
	case "ctrl+c":
		return m.BaseModel.Update(msg)
	}
	return nil
}

func (m *Model[T]) updateDetail(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "esc", "q", "enter", "backspace":
		m.screen = screenList
		if m.notFound {
			m.notFound = false
			return m.load()
		}
	case "ctrl+c":
		return m.BaseModel.Update(msg)
	}
	return nil
}

func (m *Model[T]) applyQuery(q string) tea.Cmd {
	need := m.vm.SetQuery(q)
	m.refreshRows()
	if need {
		return m.load()
	}
	return nil
}

func (m *Model[T]) gotoPage(n int) tea.Cmd {
	need := m.vm.SetPage(n)
	m.refreshRows()
	if need {
		return m.load()
	}
	return nil
}

func (m *Model[T]) stepPageSize(dir int) tea.Cmd {
	idx := 0
	for i, s := range listing.PageSizes {
		if s == m.vm.PageSize() {
			idx = i
		}
	}
	idx += dir
	if idx < 0 || idx >= len(listing.PageSizes) {
		return nil
	}
	need, err := m.vm.SetPageSize(listing.PageSizes[idx])
	if err != nil {
		m.fault = err.Error()
		return nil
	}
	m.refreshRows()
	if need {
		return m.load()
	}
	return nil
}

func (m *Model[T]) cycleStatus() tea.Cmd {
	if len(m.cfg.Statuses) < 2 {
		return nil
	}
	m.statusIdx = (m.statusIdx + 1) % len(m.cfg.Statuses)
	if m.vm.SetStatusFilter(m.cfg.Statuses[m.statusIdx].Value) {
		return m.load()
	}
	return nil
}

// selected returns the record under the cursor, refusing while a load is in flight.
func (m *Model[T]) selected() (T, bool) {
	var zero T
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return zero, false
	}
	item, err := m.vm.Activate(m.rows[idx].Key())
	switch {
	case errors.Is(err, listing.ErrBusy):
		m.flash = "Still loading, try again in a moment."
		return zero, false
	case err != nil:
		return zero, false
	}
	return item, true
}

func (m *Model[T]) openDetail() tea.Cmd {
	if m.cfg.Detail == nil {
		return nil
	}
	item, ok := m.selected()
	if !ok {
		return nil
	}
	m.screen = screenDetail
	m.detail, m.detailErr, m.notFound = "", "", false
	m.detailLoading = true
	ctx := m.Context()
	detail := m.cfg.Detail
	return func() tea.Msg {
		body, err := detail(ctx, item)
		return detailMsg{body: body, err: err}
	}
}

func (m *Model[T]) runAction(a Action[T]) tea.Cmd {
	if m.busy {
		return nil
	}
	item, ok := m.selected()
	if !ok {
		return nil
	}
	if a.Allowed != nil && !a.Allowed(item) {
		m.flash = "Not available for this record."
		return nil
	}
	if a.Dialog != nil {
		return m.openDialog(a.Dialog(item))
	}
	if a.Run == nil {
		return nil
	}
	run := func(ctx context.Context) error { return a.Run(ctx, item) }
	if a.Confirm != nil {
		m.screen = screenConfirm
		m.confirmText = a.Confirm(item)
		m.confirmRun = run
		m.confirmDone = a.Done
		return nil
	}
	return m.execute(run, a.Done)
}

func (m *Model[T]) execute(run func(context.Context) error, done string) tea.Cmd {
	if run == nil {
		return nil
	}
	m.busy = true
	m.flash = ""
	ctx := m.Context()
	return func() tea.Msg {
		return actionMsg{done: done, err: run(ctx)}
	}
}

func (m *Model[T]) openDialog(d *Dialog) tea.Cmd {
	if d == nil || d.Build == nil {
		return nil
	}
	m.dialog = d
	m.form = d.Build()
	m.formErr = ""
	m.submitting = false
	m.screen = screenForm
	if w, _ := m.Size(); w > 0 {
		m.form = m.form.WithWidth(min(w-4, 80))
	}
	return m.form.Init()
}

func (m *Model[T]) closeDialog() {
	m.dialog = nil
	m.form = nil
	m.formErr = ""
	m.submitting = false
	m.screen = screenList
}

func (m *Model[T]) finishAction(msg actionMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		if msg.dialog != nil && msg.dialog == m.dialog {
			cmd := m.openDialog(msg.dialog)
			m.formErr = crm.DisplayMessage(msg.err)
			return cmd
		}
		m.fault = crm.DisplayMessage(msg.err)
		return nil
	}
	if msg.dialog != nil {
		m.closeDialog()
	}
	m.flash = msg.done
	return m.load()
}

func (m *Model[T]) refreshRows() {
	m.rows = m.vm.PageItems()
	rows := make([]table.Row, len(m.rows))
	for i, item := range m.rows {
		row := make(table.Row, len(m.cfg.Columns))
		for j, c := range m.cfg.Columns {
			row[j] = c.Value(item)
		}
		rows[i] = row
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model[T]) resize() {
	w, h := m.Size()
	m.help.Width = w
	m.search.Width = max(w-10, 10)
	m.table.SetWidth(max(w-2, 20))
	m.table.SetHeight(max(h-12, 5))
}
