package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode is how a command presents its result.
type Mode string

const (
	// ModeTUI runs the interactive dashboard screens.
	ModeTUI Mode = "tui"
	// ModeJSON prints machine-readable output and never prompts.
	ModeJSON Mode = "json"
)

// BaseModel carries the state every screen shares: the command context and
// the terminal size.
type BaseModel struct {
	ctx      context.Context
	width    int
	height   int
	quitting bool
}

func NewBaseModel(ctx context.Context) BaseModel {
	return BaseModel{ctx: ctx}
}

func (m BaseModel) Context() context.Context { return m.ctx }
func (m BaseModel) Size() (int, int)         { return m.width, m.height }
func (m BaseModel) IsQuitting() bool         { return m.quitting }

func (m *BaseModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles window sizing and the global quit keys.
func (m *BaseModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return tea.Quit
		}
	}
	return nil
}
