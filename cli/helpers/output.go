package helpers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/salesdesk/salesdesk/cli/tui/styles"
	"github.com/salesdesk/salesdesk/engine/export"
	"gopkg.in/yaml.v3"
)

// maxCellWidth bounds table cells so long addresses and notes stay on one line.
const maxCellWidth = 40

// OutputWriter handles different output formats
type OutputWriter struct {
	writer io.Writer
	format OutputFormat
}

func NewOutputWriter(writer io.Writer, format OutputFormat) *OutputWriter {
	return &OutputWriter{writer: writer, format: format}
}

// WriteData writes data in the configured format. Table output renders tbl,
// which is the same records flattened for display.
func (ow *OutputWriter) WriteData(data any, tbl export.Table) error {
	switch ow.format {
	case OutputFormatJSON:
		return ow.writeJSON(data)
	case OutputFormatYAML:
		return ow.writeYAML(data)
	case OutputFormatTable:
		return ow.writeTable(tbl)
	default:
		return fmt.Errorf("unsupported output format: %s", ow.format)
	}
}

func (ow *OutputWriter) writeJSON(data any) error {
	encoder := json.NewEncoder(ow.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (ow *OutputWriter) writeYAML(data any) error {
	encoder := yaml.NewEncoder(ow.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func (ow *OutputWriter) writeTable(tbl export.Table) error {
	if len(tbl.Rows) == 0 {
		_, err := fmt.Fprintln(ow.writer, "No records found.")
		return err
	}
	rows := make([][]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = Truncate(cell, maxCellWidth)
		}
		rows[i] = cells
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(tbl.Headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(ow.writer, t.Render())
	return err
}
