package helpers

// OutputFormat represents different output formats
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatTUI   OutputFormat = "tui"
)

// Exit codes returned by the salesdesk binary.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitValidation = 2
	ExitForbidden  = 3
	ExitNotFound   = 4
	ExitConflict   = 5
	ExitNetwork    = 6
	ExitTimeout    = 7
	ExitCanceled   = 130
)
