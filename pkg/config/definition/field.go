package definition

import (
	"reflect"
	"sort"
)

// FieldDef defines a configuration field with its metadata
type FieldDef struct {
	Path      string       // Config path like "cli.page_size"
	Default   any          // Default value
	CLIFlag   string       // CLI flag name like "page-size"
	Shorthand string       // Single character shorthand like "p"
	EnvVar    string       // Environment variable name like "SALESDESK_PAGE_SIZE"
	Type      reflect.Type // Field type for validation
	Help      string       // Help text for CLI
}

// Registry holds all configuration field definitions
type Registry struct {
	fields map[string]FieldDef
}

func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[string]FieldDef),
	}
}

func (r *Registry) Register(field *FieldDef) {
	r.fields[field.Path] = *field
}

func (r *Registry) GetField(path string) (FieldDef, bool) {
	field, exists := r.fields[path]
	return field, exists
}

// GetDefault returns the default value for a field path
func (r *Registry) GetDefault(path string) any {
	if field, exists := r.fields[path]; exists {
		return field.Default
	}
	return nil
}

// GetCLIFlagMapping returns a map of CLI flag names to config paths
func (r *Registry) GetCLIFlagMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.CLIFlag != "" {
			mapping[field.CLIFlag] = path
		}
	}
	return mapping
}

// FlagFields returns every field exposed as a CLI flag, ordered by path.
func (r *Registry) FlagFields() []FieldDef {
	out := make([]FieldDef, 0, len(r.fields))
	for _, field := range r.fields {
		if field.CLIFlag != "" {
			out = append(out, field)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
