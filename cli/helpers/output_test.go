package helpers

import (
	"bytes"
	"testing"

	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputWriter(t *testing.T) {
	data := map[string]any{"items": []string{"Acme"}, "page": 1}
	tbl := export.Table{Sheet: "Customers", Headers: []string{"ID", "Company"}, Rows: [][]string{{"u1", "Acme"}}}

	t.Run("Should write indented JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatJSON).WriteData(data, tbl))
		assert.Contains(t, buf.String(), "\n  \"page\": 1")
	})

	t.Run("Should write YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatYAML).WriteData(data, tbl))
		assert.Contains(t, buf.String(), "page: 1")
		assert.Contains(t, buf.String(), "- Acme")
	})

	t.Run("Should render the table with headers", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatTable).WriteData(data, tbl))
		assert.Contains(t, buf.String(), "Company")
		assert.Contains(t, buf.String(), "Acme")
	})

	t.Run("Should report an empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatTable).WriteData(nil, export.Table{}))
		assert.Equal(t, "No records found.\n", buf.String())
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		assert.Error(t, NewOutputWriter(&bytes.Buffer{}, OutputFormatTUI).WriteData(data, tbl))
	})
}
