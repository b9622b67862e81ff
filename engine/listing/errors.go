package listing

import "errors"

var (
	// ErrBusy is returned for row actions while a load is in flight.
	ErrBusy = errors.New("listing is loading")
	// ErrUnknownKey is returned when a key is not on the visible list.
	ErrUnknownKey      = errors.New("record not in current listing")
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrNotRetryable    = errors.New("listing is not in an error state")
)
