package listview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/salesdesk/salesdesk/engine/listing"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	First   key.Binding
	Last    key.Binding
	Grow    key.Binding
	Shrink  key.Binding
	Search  key.Binding
	Clear   key.Binding
	Refresh key.Binding
	Status  key.Binding
	Order   key.Binding
	Add     key.Binding
	Open    key.Binding
	Quit    key.Binding
	Help    key.Binding
	extra   []key.Binding
}

func defaultKeyMap[T listing.Record](cfg Config[T]) keyMap {
	km := keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:    key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next page")),
		Prev:    key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev page")),
		First:   key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first page")),
		Last:    key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last page")),
		Grow:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "page size")),
		Shrink:  key.NewBinding(key.WithKeys("-")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh/retry")),
		Status:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		Order:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
	km.Status.SetEnabled(len(cfg.Statuses) > 1)
	km.Order.SetEnabled(cfg.Strategy == listing.ServerSide)
	km.Add.SetEnabled(cfg.Add != nil)
	km.Open.SetEnabled(cfg.Detail != nil)
	for _, a := range cfg.Actions {
		km.extra = append(km.extra, a.Key)
	}
	return km
}

func (k keyMap) ShortHelp() []key.Binding {
	out := []key.Binding{k.Search, k.Next, k.Prev, k.Refresh, k.Add, k.Open}
	out = append(out, k.extra...)
	return append(out, k.Quit, k.Help)
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Next, k.Prev, k.First, k.Last, k.Grow},
		{k.Search, k.Clear, k.Status, k.Order, k.Refresh},
		append(append([]key.Binding{k.Add}, k.extra...), k.Quit),
	}
}
