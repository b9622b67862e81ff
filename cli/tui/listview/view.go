package listview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/salesdesk/salesdesk/cli/tui/styles"
	"github.com/salesdesk/salesdesk/engine/listing"
)

func (m *Model[T]) View() string {
	if m.IsQuitting() {
		return ""
	}
	sections := []string{styles.RenderTitle(m.cfg.Title, m.hint()), ""}
	switch m.screen {
	case screenForm:
		sections = append(sections, m.formView())
	case screenConfirm:
		sections = append(sections, m.confirmView())
	case screenDetail:
		sections = append(sections, m.detailView())
	default:
		sections = append(sections, m.listView()...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model[T]) hint() string {
	parts := []string{}
	if len(m.cfg.Statuses) > 0 {
		parts = append(parts, "status: "+m.cfg.Statuses[m.statusIdx].Label)
	}
	if m.vm.Strategy() == listing.ServerSide {
		if m.vm.Descending() {
			parts = append(parts, "newest first")
		} else {
			parts = append(parts, "oldest first")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " • ")
}

func (m *Model[T]) listView() []string {
	out := []string{m.searchLine()}
	switch {
	case !m.vm.Loaded() && m.vm.State() == listing.StatusLoading:
		out = append(out, m.spinner.View()+" Loading...")
	case !m.vm.Loaded() && m.vm.State() == listing.StatusError:
	case len(m.rows) == 0:
		out = append(out, m.emptyView())
	default:
		out = append(out, m.table.View(), m.pagination())
	}
	out = append(out, m.statusLine(), m.help.View(m.keys))
	return out
}

func (m *Model[T]) searchLine() string {
	if m.screen == screenSearch {
		return m.search.View()
	}
	if q := m.vm.Query(); q != "" {
		return styles.InfoStyle.Render("search: "+q) + styles.HelpStyle.Render("  esc to clear")
	}
	return styles.HelpStyle.Render("/ to search")
}

func (m *Model[T]) emptyView() string {
	if q := m.vm.Query(); q != "" {
		return styles.WarningStyle.Render(fmt.Sprintf("No records match %q.", q))
	}
	return styles.WarningStyle.Render("No records found.")
}

func (m *Model[T]) pagination() string {
	page := m.vm.Page()
	total := m.vm.TotalPages()
	var b strings.Builder
	b.WriteString(styles.PageStyle.Render("‹"))
	for _, n := range m.vm.PageWindow() {
		if n == page {
			b.WriteString(styles.ActivePageStyle.Render(strconv.Itoa(n)))
			continue
		}
		b.WriteString(styles.PageStyle.Render(strconv.Itoa(n)))
	}
	b.WriteString(styles.PageStyle.Render("›"))
	summary := fmt.Sprintf("Page %d of %d • %d items • %d per page", page, total, m.vm.TotalCount(), m.vm.PageSize())
	return lipgloss.JoinHorizontal(lipgloss.Center, b.String(), styles.PaginationStyle.Render(summary))
}

func (m *Model[T]) statusLine() string {
	switch {
	case m.vm.State() == listing.StatusError:
		return styles.ErrorStyle.Render(m.vm.Message()) + styles.HelpStyle.Render("  r to retry")
	case m.vm.State() == listing.StatusLoading && m.vm.Loaded():
		return m.spinner.View() + styles.HelpStyle.Render(" Refreshing...")
	case m.busy:
		return m.spinner.View() + styles.HelpStyle.Render(" Working...")
	case m.fault != "":
		return styles.ErrorStyle.Render(m.fault)
	case m.flash != "":
		return styles.SuccessStyle.Render(m.flash)
	}
	return ""
}

func (m *Model[T]) formView() string {
	if m.form == nil {
		return ""
	}
	parts := []string{styles.InfoStyle.Render(m.dialog.Title), m.form.View()}
	if m.submitting {
		parts = append(parts, m.spinner.View()+styles.HelpStyle.Render(" Saving..."))
	}
	if m.formErr != "" {
		parts = append(parts, styles.ErrorStyle.Render(m.formErr))
	}
	parts = append(parts, styles.HelpStyle.Render("esc to cancel"))
	return styles.DialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model[T]) confirmView() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.WarningStyle.Render(m.confirmText),
		"",
		styles.HelpStyle.Render("y to confirm • n to cancel"),
	)
	return styles.DialogStyle.Render(body)
}

func (m *Model[T]) detailView() string {
	var body string
	switch {
	case m.detailLoading:
		body = m.spinner.View() + " Loading..."
	case m.notFound:
		body = styles.WarningStyle.Render("This record no longer exists.")
	case m.detailErr != "":
		body = styles.ErrorStyle.Render(m.detailErr)
	default:
		body = m.detail
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.DialogStyle.Render(body),
		styles.HelpStyle.Render("esc to go back"),
	)
}
