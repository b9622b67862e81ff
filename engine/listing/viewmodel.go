package listing

import (
	"slices"
)

// Status is the load state of a view-model.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Options configure a new view-model.
type Options struct {
	Strategy   Strategy
	PageSize   int
	Status     *int
	Descending bool
	// Describe turns a fetch error into the line shown to the user.
	// Defaults to err.Error().
	Describe func(error) string
}

// ViewModel is the List-Filter-Paginate state of one page.
//
// It is not safe for concurrent use. All mutations are expected to run on a
// single event loop; fetches happen elsewhere and come back through Resolve.
type ViewModel[T Record] struct {
	strategy   Strategy
	describe   func(error) string
	status     *int
	descending bool

	source  []T
	visible []T
	query   string

	page     int
	pageSize int

	serverPages int
	serverCount int

	state    Status
	err      error
	loaded   bool
	issued   uint64
	accepted uint64
}

func New[T Record](opts Options) *ViewModel[T] {
	size := opts.PageSize
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	describe := opts.Describe
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	return &ViewModel[T]{
		strategy:   opts.Strategy,
		describe:   describe,
		status:     opts.Status,
		descending: opts.Descending,
		page:       1,
		pageSize:   size,
		state:      StatusIdle,
	}
}

// BeginLoad enters Loading and returns the tagged request to run.
func (vm *ViewModel[T]) BeginLoad() Request {
	vm.issued++
	vm.state = StatusLoading
	vm.err = nil
	return Request{Seq: vm.issued, Params: vm.Params()}
}

// Params are the listing options the next fetch will send.
func (vm *ViewModel[T]) Params() Params {
	p := Params{Status: vm.status, IsDescending: vm.descending}
	if vm.strategy == ServerSide {
		p.SearchKeyword = vm.query
		p.Page = vm.page
		p.PageSize = vm.pageSize
	}
	return p
}

// Resolve applies a fetch outcome. It reports whether the response was
// accepted and whether the page had to be clamped in a way that needs a new
// server round trip. Only the latest request can ask for one.
//
// A response is accepted only if it is newer than the last accepted one.
// An older-than-latest success is still applied but the model stays Loading
// until the latest request resolves. Failures of superseded requests are
// dropped.
func (vm *ViewModel[T]) Resolve(resp Response[T]) (accepted bool, refetch bool) {
	if resp.Seq <= vm.accepted || resp.Seq > vm.issued {
		return false, false
	}
	latest := resp.Seq == vm.issued
	if resp.Err != nil {
		if !latest {
			return false, false
		}
		vm.accepted = resp.Seq
		vm.state = StatusError
		vm.err = resp.Err
		return true, false
	}
	vm.accepted = resp.Seq
	vm.source = slices.Clone(resp.Result.Items)
	vm.loaded = true
	if vm.strategy == ServerSide {
		vm.serverPages = resp.Result.TotalPages
		vm.serverCount = resp.Result.TotalCount
		if resp.Result.CurrentPage > 0 {
			vm.page = resp.Result.CurrentPage
		}
	}
	vm.recompute()
	if latest {
		vm.state = StatusIdle
		vm.err = nil
	}
	clamped := vm.clamp()
	return true, clamped && latest && vm.strategy == ServerSide
}

// Retry re-enters Loading from Error.
func (vm *ViewModel[T]) Retry() (Request, error) {
	if vm.state != StatusError {
		return Request{}, ErrNotRetryable
	}
	return vm.BeginLoad(), nil
}

// SetQuery updates the search text and resets to page 1. It reports whether
// the change requires a server fetch.
func (vm *ViewModel[T]) SetQuery(q string) bool {
	if q == vm.query {
		return false
	}
	vm.query = q
	vm.page = 1
	vm.recompute()
	return vm.strategy == ServerSide
}

// SetPage moves to page n, clamped to the available pages.
func (vm *ViewModel[T]) SetPage(n int) bool {
	n = ClampPage(n, vm.TotalPages())
	if n == vm.page {
		return false
	}
	vm.page = n
	return vm.strategy == ServerSide
}

// SetPageSize changes the page size and resets to page 1.
func (vm *ViewModel[T]) SetPageSize(size int) (bool, error) {
	if err := CheckPageSize(size); err != nil {
		return false, err
	}
	if size == vm.pageSize {
		return false, nil
	}
	vm.pageSize = size
	vm.page = 1
	return vm.strategy == ServerSide, nil
}

// SetStatusFilter changes the status parameter and resets to page 1.
func (vm *ViewModel[T]) SetStatusFilter(status *int) bool {
	if equalStatus(vm.status, status) {
		return false
	}
	vm.status = status
	vm.page = 1
	return true
}

// SetDescending changes the sort direction and resets to page 1.
func (vm *ViewModel[T]) SetDescending(desc bool) bool {
	if desc == vm.descending {
		return false
	}
	vm.descending = desc
	vm.page = 1
	return true
}

func equalStatus(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (vm *ViewModel[T]) recompute() {
	vm.visible = Filter(vm.source, vm.query)
	if vm.strategy == ClientSide {
		vm.clamp()
	}
}

func (vm *ViewModel[T]) clamp() bool {
	n := ClampPage(vm.page, vm.TotalPages())
	if n == vm.page {
		return false
	}
	vm.page = n
	return true
}

// Visible returns the filtered records across all pages.
func (vm *ViewModel[T]) Visible() []T {
	return slices.Clone(vm.visible)
}

// Items returns the last loaded records, unfiltered.
func (vm *ViewModel[T]) Items() []T {
	return slices.Clone(vm.source)
}

// PageItems returns the slice the renderer should draw.
func (vm *ViewModel[T]) PageItems() []T {
	if vm.strategy == ServerSide {
		return slices.Clone(vm.visible)
	}
	start, end := PageBounds(vm.page, vm.pageSize, len(vm.visible))
	return slices.Clone(vm.visible[start:end])
}

func (vm *ViewModel[T]) TotalPages() int {
	if vm.strategy == ServerSide {
		if vm.serverPages < 1 {
			return 1
		}
		return vm.serverPages
	}
	return TotalPages(len(vm.visible), vm.pageSize)
}

// TotalCount is the number of matching records across all pages.
func (vm *ViewModel[T]) TotalCount() int {
	if vm.strategy == ServerSide {
		return vm.serverCount
	}
	return len(vm.visible)
}

// PageWindow returns the page numbers the renderer shows around the current page.
func (vm *ViewModel[T]) PageWindow() []int {
	return PageWindow(vm.page, vm.TotalPages(), WindowWidth)
}

// Activate resolves a row key to its record. Row actions are refused while loading.
func (vm *ViewModel[T]) Activate(key string) (T, error) {
	var zero T
	if vm.state == StatusLoading {
		return zero, ErrBusy
	}
	for _, item := range vm.visible {
		if item.Key() == key {
			return item, nil
		}
	}
	return zero, ErrUnknownKey
}

func (vm *ViewModel[T]) State() Status      { return vm.state }
func (vm *ViewModel[T]) Err() error         { return vm.err }
func (vm *ViewModel[T]) Loaded() bool       { return vm.loaded }
func (vm *ViewModel[T]) Query() string      { return vm.query }
func (vm *ViewModel[T]) Page() int          { return vm.page }
func (vm *ViewModel[T]) PageSize() int      { return vm.pageSize }
func (vm *ViewModel[T]) Strategy() Strategy { return vm.strategy }
func (vm *ViewModel[T]) Descending() bool   { return vm.descending }

func (vm *ViewModel[T]) StatusFilter() *int {
	return vm.status
}

// Message is the display line for the current error, or "" outside Error.
func (vm *ViewModel[T]) Message() string {
	if vm.state != StatusError || vm.err == nil {
		return ""
	}
	return vm.describe(vm.err)
}

// ActionsEnabled reports whether row actions may run.
func (vm *ViewModel[T]) ActionsEnabled() bool {
	return vm.state != StatusLoading
}
