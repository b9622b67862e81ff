package listing

import "strings"

// Record is anything an LFP page can list.
type Record interface {
	// Key is the stable identity used as render key and navigation target.
	Key() string
	// SearchFields are the textual fields the free-text query is matched against.
	SearchFields() []string
}

// Matches reports whether any field contains query, ignoring case.
// An empty query matches everything.
func Matches(fields []string, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter returns the records matching query in source order.
// The input slice is never modified.
func Filter[T Record](items []T, query string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item.SearchFields(), query) {
			out = append(out, item)
		}
	}
	return out
}
