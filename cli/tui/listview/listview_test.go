package listview

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/salesdesk/salesdesk/cli/api"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id   string
	name string
}

func (i item) Key() string            { return i.id }
func (i item) SearchFields() []string { return []string{i.name} }

func items(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{id: fmt.Sprintf("id-%d", i+1), name: fmt.Sprintf("item %d", i+1)}
	}
	return out
}

type fakeSource struct {
	mu     sync.Mutex
	calls  []listing.Params
	handle func(call int, p listing.Params) (listing.Result[item], error)
}

func (f *fakeSource) FetchList(_ context.Context, p listing.Params) (listing.Result[item], error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	n := len(f.calls)
	f.mu.Unlock()
	return f.handle(n, p)
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) last() listing.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func staticSource(all []item) *fakeSource {
	return &fakeSource{handle: func(int, listing.Params) (listing.Result[item], error) {
		return listing.Result[item]{Items: all, TotalPages: 1, TotalCount: len(all)}, nil
	}}
}

func pagedSource(all []item) *fakeSource {
	return &fakeSource{handle: func(_ int, p listing.Params) (listing.Result[item], error) {
		matched := listing.Filter(all, p.SearchKeyword)
		start, end := listing.PageBounds(p.Page, p.PageSize, len(matched))
		return listing.Result[item]{
			Items:       matched[start:end],
			CurrentPage: p.Page,
			TotalPages:  listing.TotalPages(len(matched), p.PageSize),
			TotalCount:  len(matched),
			Paged:       true,
		}, nil
	}}
}

// newModel uses a canceled context so the query and event waiters return at once.
func newModel(t *testing.T, cfg Config[item]) *Model[item] {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if cfg.Columns == nil {
		cfg.Columns = []Column[item]{{Title: "Name", Width: 20, Value: func(i item) string { return i.name }}}
	}
	m := New(ctx, cfg)
	t.Cleanup(m.Close)
	return m
}

// run executes cmd and feeds every resulting message back into the model.
func run(m *Model[item], cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			run(m, c)
		}
	default:
		_, next := m.Update(msg)
		run(m, next)
	}
}

func press(m *Model[item], k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "end":
		msg = tea.KeyMsg{Type: tea.KeyEnd}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModel_ClientSide(t *testing.T) {
	t.Run("Should page and filter locally after a single fetch", func(t *testing.T) {
		src := staticSource(items(25))
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ClientSide})
		run(m, m.load())
		require.Equal(t, 1, src.count())
		assert.Len(t, m.rows, 10)
		assert.Equal(t, 3, m.vm.TotalPages())

		assert.Nil(t, press(m, "right"))
		assert.Equal(t, 2, m.vm.Page())
		assert.Equal(t, "item 11", m.rows[0].name)

		press(m, "end")
		assert.Equal(t, 3, m.vm.Page())
		assert.Len(t, m.rows, 5)

		press(m, "/")
		require.Equal(t, screenSearch, m.screen)
		for _, r := range "item 2" {
			press(m, string(r))
		}
		assert.Equal(t, "item 2", m.vm.Query())
		assert.Equal(t, 1, m.vm.Page())
		assert.Len(t, m.vm.Visible(), 7)
		press(m, "enter")
		assert.Equal(t, screenList, m.screen)
		assert.Equal(t, 1, src.count())

		press(m, "esc")
		assert.Empty(t, m.vm.Query())
		assert.Len(t, m.vm.Visible(), 25)
	})

	t.Run("Should reset to page one when the page size grows", func(t *testing.T) {
		src := staticSource(items(25))
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ClientSide})
		run(m, m.load())
		press(m, "right")
		assert.Nil(t, press(m, "+"))
		assert.Equal(t, 20, m.vm.PageSize())
		assert.Equal(t, 1, m.vm.Page())
		assert.Len(t, m.rows, 20)
	})

	t.Run("Should show an empty state when nothing matches", func(t *testing.T) {
		src := staticSource(items(3))
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ClientSide, Query: "zzz"})
		run(m, m.load())
		assert.Empty(t, m.rows)
		assert.Contains(t, m.View(), `No records match "zzz"`)
	})
}

func TestModel_ServerSide(t *testing.T) {
	t.Run("Should fetch each page and settled query from the server", func(t *testing.T) {
		src := pagedSource(items(25))
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ServerSide})
		run(m, m.load())
		assert.Equal(t, 1, src.last().Page)
		assert.Equal(t, 25, m.vm.TotalCount())

		run(m, press(m, "right"))
		assert.Equal(t, 2, src.count())
		assert.Equal(t, 2, src.last().Page)
		assert.Equal(t, "item 11", m.rows[0].name)

		_, cmd := m.Update(queryMsg{query: "item 1"})
		run(m, cmd)
		assert.Equal(t, "item 1", src.last().SearchKeyword)
		assert.Equal(t, 1, src.last().Page)
		assert.Equal(t, 11, m.vm.TotalCount())
	})

	t.Run("Should refetch when the server reports fewer pages than requested", func(t *testing.T) {
		all := items(25)
		src := pagedSource(all)
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ServerSide})
		run(m, m.load())
		src.handle = func(_ int, p listing.Params) (listing.Result[item], error) {
			if p.Page > 1 {
				return listing.Result[item]{CurrentPage: p.Page, TotalPages: 1, TotalCount: 4, Paged: true}, nil
			}
			return listing.Result[item]{Items: all[:4], CurrentPage: 1, TotalPages: 1, TotalCount: 4, Paged: true}, nil
		}
		run(m, press(m, "end"))
		assert.Equal(t, 3, src.count())
		assert.Equal(t, 1, m.vm.Page())
		assert.Len(t, m.rows, 4)
	})

	t.Run("Should cycle the status filter and toggle the order", func(t *testing.T) {
		pending, approved := 0, 1
		src := pagedSource(items(5))
		m := newModel(t, Config[item]{
			Title:    "Items",
			Source:   src,
			Strategy: listing.ServerSide,
			Statuses: []StatusOption{{Label: "Pending", Value: &pending}, {Label: "Approved", Value: &approved}},
		})
		run(m, m.load())
		require.NotNil(t, src.last().Status)
		assert.Equal(t, 0, *src.last().Status)

		run(m, press(m, "s"))
		assert.Equal(t, 1, *src.last().Status)
		assert.Contains(t, m.View(), "status: Approved")

		run(m, press(m, "o"))
		assert.True(t, src.last().IsDescending)
	})
}

func TestModel_Errors(t *testing.T) {
	t.Run("Should show the failure and recover on retry", func(t *testing.T) {
		src := staticSource(items(3))
		ok := src.handle
		src.handle = func(call int, p listing.Params) (listing.Result[item], error) {
			if call == 1 {
				return listing.Result[item]{}, crm.NewRemoteError("list items", 0, "", fmt.Errorf("dial tcp: refused"))
			}
			return ok(call, p)
		}
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ClientSide})
		run(m, m.load())
		assert.Equal(t, listing.StatusError, m.vm.State())
		assert.Contains(t, m.View(), "Cannot reach the server")

		run(m, press(m, "r"))
		assert.Equal(t, listing.StatusIdle, m.vm.State())
		assert.Len(t, m.rows, 3)
		assert.NotContains(t, m.View(), "Cannot reach the server")
	})

	t.Run("Should ignore a response superseded by a newer request", func(t *testing.T) {
		src := staticSource(items(3))
		m := newModel(t, Config[item]{Title: "Items", Source: src, Strategy: listing.ClientSide})
		older := m.vm.BeginLoad()
		newer := m.vm.BeginLoad()
		m.Update(fetchedMsg[item]{resp: listing.Fetch(context.Background(), listing.Source[item](src), newer)})
		m.Update(fetchedMsg[item]{resp: listing.Response[item]{Seq: older.Seq, Err: fmt.Errorf("late failure")}})
		assert.Equal(t, listing.StatusIdle, m.vm.State())
		assert.Len(t, m.rows, 3)
	})
}

func TestModel_Actions(t *testing.T) {
	newActionModel := func(t *testing.T, deleted *[]string, fail error) (*Model[item], *fakeSource) {
		src := staticSource(items(3))
		m := newModel(t, Config[item]{
			Title:    "Items",
			Source:   src,
			Strategy: listing.ClientSide,
			Actions: []Action[item]{{
				Key:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
				Confirm: func(i item) string { return "Delete " + i.name + "?" },
				Run: func(_ context.Context, i item) error {
					if fail != nil {
						return fail
					}
					*deleted = append(*deleted, i.id)
					return nil
				},
				Done: "Deleted.",
			}},
		})
		return m, src
	}

	t.Run("Should confirm, run the action and reload", func(t *testing.T) {
		var deleted []string
		m, src := newActionModel(t, &deleted, nil)
		run(m, m.load())
		press(m, "d")
		require.Equal(t, screenConfirm, m.screen)
		assert.Contains(t, m.View(), "Delete item 1?")

		run(m, press(m, "y"))
		assert.Equal(t, []string{"id-1"}, deleted)
		assert.Equal(t, 2, src.count())
		assert.Equal(t, "Deleted.", m.flash)
		assert.Equal(t, screenList, m.screen)
	})

	t.Run("Should keep the list when the action fails", func(t *testing.T) {
		var deleted []string
		m, src := newActionModel(t, &deleted, crm.NewRemoteError("delete item", http.StatusConflict, "item is in use", nil))
		run(m, m.load())
		press(m, "d")
		run(m, press(m, "y"))
		assert.Equal(t, 1, src.count())
		assert.Contains(t, m.View(), "item is in use")
	})

	t.Run("Should refuse row actions while loading", func(t *testing.T) {
		var deleted []string
		m, _ := newActionModel(t, &deleted, nil)
		run(m, m.load())
		m.vm.BeginLoad()
		assert.Nil(t, press(m, "d"))
		assert.Equal(t, screenList, m.screen)
		assert.Contains(t, m.flash, "Still loading")
	})
}

func TestModel_Events(t *testing.T) {
	t.Run("Should reload only for subscribed resources", func(t *testing.T) {
		src := staticSource(items(3))
		m := newModel(t, Config[item]{
			Title:     "Items",
			Source:    src,
			Strategy:  listing.ClientSide,
			Events:    make(chan api.Event),
			Resources: []string{"customer"},
		})
		run(m, m.load())

		_, cmd := m.Update(eventMsg{evt: api.Event{Type: "staff", Action: "created"}, ok: true})
		run(m, cmd)
		assert.Equal(t, 1, src.count())

		_, cmd = m.Update(eventMsg{evt: api.Event{Type: "customer", Action: "deleted"}, ok: true})
		run(m, cmd)
		assert.Equal(t, 2, src.count())

		_, cmd = m.Update(tea.FocusMsg{})
		run(m, cmd)
		assert.Equal(t, 3, src.count())

		m.Update(eventMsg{ok: false})
		assert.Nil(t, m.waitEvent())
	})
}

func TestModel_Detail(t *testing.T) {
	t.Run("Should render details and handle a vanished record", func(t *testing.T) {
		src := staticSource(items(2))
		gone := false
		m := newModel(t, Config[item]{
			Title:    "Items",
			Source:   src,
			Strategy: listing.ClientSide,
			Detail: func(_ context.Context, i item) (string, error) {
				if gone {
					return "", crm.NewRemoteError("get item", http.StatusNotFound, "", nil)
				}
				return "Name: " + i.name, nil
			},
		})
		run(m, m.load())

		run(m, press(m, "enter"))
		require.Equal(t, screenDetail, m.screen)
		assert.Contains(t, m.View(), "Name: item 1")
		press(m, "esc")
		assert.Equal(t, screenList, m.screen)

		gone = true
		run(m, press(m, "enter"))
		assert.True(t, m.notFound)
		assert.True(t, strings.Contains(m.View(), "no longer exists"))
		run(m, press(m, "esc"))
		assert.Equal(t, 2, src.count())
	})
}
