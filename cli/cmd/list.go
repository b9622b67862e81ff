package cmd

import (
	"context"
	"strings"

	"github.com/salesdesk/salesdesk/cli/helpers"
	"github.com/salesdesk/salesdesk/cli/tui/components"
	"github.com/salesdesk/salesdesk/cli/tui/forms"
	"github.com/salesdesk/salesdesk/cli/tui/listview"
	"github.com/salesdesk/salesdesk/cli/tui/styles"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/engine/listing"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

// maxClampRefetch bounds the refetch loop when the server keeps shrinking.
const maxClampRefetch = 3

// ListFlags are the listing options shared by every list command.
type ListFlags struct {
	Search   string
	Page     int
	PageSize int
	Desc     bool
	Export   string
}

// AddListFlags registers the shared list flags on cmd.
func AddListFlags(cmd *cobra.Command, f *ListFlags) {
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "Free-text search")
	cmd.Flags().IntVar(&f.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.PageSize, "page-size", 0, "Rows per page (10, 20, 30, 40 or 50; default cli.page_size)")
	cmd.Flags().BoolVar(&f.Desc, "desc", false, "Newest first")
	cmd.Flags().StringVar(&f.Export, "export", "", "Write the matching records to an .xlsx file")
}

// Options resolves the flags against configuration into view-model options.
func (f ListFlags) Options(e *CommandExecutor, strategy listing.Strategy, status *int) (listing.Options, error) {
	size := f.PageSize
	if size == 0 {
		size = e.Config().CLI.PageSize
	}
	if err := listing.CheckPageSize(size); err != nil {
		cliErr := helpers.NewCliError(helpers.CategoryValidation, err.Error())
		cliErr.Field = "page-size"
		return listing.Options{}, cliErr
	}
	if f.Page < 1 {
		cliErr := helpers.NewCliError(helpers.CategoryValidation, "page must be 1 or greater")
		cliErr.Field = "page"
		return listing.Options{}, cliErr
	}
	return listing.Options{
		Strategy:   strategy,
		PageSize:   size,
		Status:     status,
		Descending: f.Desc,
		Describe:   crm.DisplayMessage,
	}, nil
}

// PageOutput is the JSON and YAML shape of one listed page.
type PageOutput[T any] struct {
	Items      []T    `json:"items"           yaml:"items"`
	Page       int    `json:"page"            yaml:"page"`
	PageSize   int    `json:"pageSize"        yaml:"page_size"`
	TotalPages int    `json:"totalPages"      yaml:"total_pages"`
	TotalCount int    `json:"totalCount"      yaml:"total_count"`
	PageWindow []int  `json:"pageWindow"      yaml:"page_window"`
	Query      string `json:"query,omitempty" yaml:"query,omitempty"`
}

// LoadPage runs the non-interactive list flow: fetch, apply the query, move
// to the requested page and follow any clamp the server forces.
func LoadPage[T listing.Record](
	ctx context.Context,
	src listing.Source[T],
	opts listing.Options,
	f ListFlags,
) (*listing.ViewModel[T], error) {
	vm := listing.New[T](opts)
	vm.SetQuery(f.Search)
	if err := settle(ctx, vm, src); err != nil {
		return nil, err
	}
	if vm.SetPage(f.Page) {
		if err := settle(ctx, vm, src); err != nil {
			return nil, err
		}
	}
	return vm, nil
}

func settle[T listing.Record](ctx context.Context, vm *listing.ViewModel[T], src listing.Source[T]) error {
	for range maxClampRefetch {
		_, refetch := vm.Resolve(listing.Fetch(ctx, src, vm.BeginLoad()))
		if vm.State() == listing.StatusError {
			return vm.Err()
		}
		if !refetch {
			return nil
		}
		logger.FromContext(ctx).Debug("page clamped by server, refetching", "page", vm.Page())
	}
	return nil
}

// WritePage prints the current page and writes the export file when requested.
func WritePage[T listing.Record](
	ctx context.Context,
	e *CommandExecutor,
	vm *listing.ViewModel[T],
	f ListFlags,
	table func([]T) export.Table,
) error {
	if f.Export != "" {
		records := vm.Visible()
		if err := export.WriteFile(f.Export, table(records)); err != nil {
			return err
		}
		logger.FromContext(ctx).Info("exported records", "path", f.Export, "count", len(records))
	}
	items := vm.PageItems()
	out := PageOutput[T]{
		Items:      items,
		Page:       vm.Page(),
		PageSize:   vm.PageSize(),
		TotalPages: vm.TotalPages(),
		TotalCount: vm.TotalCount(),
		PageWindow: vm.PageWindow(),
		Query:      vm.Query(),
	}
	return e.Write(out, table(items))
}

// RunList is the JSON-mode body of every list command.
func RunList[T listing.Record](
	ctx context.Context,
	e *CommandExecutor,
	src listing.Source[T],
	strategy listing.Strategy,
	status *int,
	f ListFlags,
	table func([]T) export.Table,
) error {
	opts, err := f.Options(e, strategy, status)
	if err != nil {
		return err
	}
	var vm *listing.ViewModel[T]
	err = helpers.LogOperation(ctx, "list", func() error {
		var loadErr error
		vm, loadErr = LoadPage(ctx, src, opts, f)
		return loadErr
	})
	if err != nil {
		return err
	}
	return WritePage(ctx, e, vm, f, table)
}

// ScreenConfig fills the listview settings every interactive list shares:
// paging and search from flags and config, plus the live change feed.
func ScreenConfig[T listing.Record](
	ctx context.Context,
	e *CommandExecutor,
	f ListFlags,
	cfg listview.Config[T],
	resources ...string,
) (listview.Config[T], error) {
	opts, err := f.Options(e, cfg.Strategy, nil)
	if err != nil {
		return cfg, err
	}
	cfg.PageSize = opts.PageSize
	cfg.Query = f.Search
	cfg.Descending = f.Desc
	cfg.Debounce = e.Config().CLI.SearchDebounce
	if e.Client() != nil && len(resources) > 0 {
		events, err := e.Client().Subscribe(ctx)
		if err != nil {
			logger.FromContext(ctx).Warn("live updates unavailable", "error", err)
		} else {
			cfg.Events = events
			cfg.Resources = resources
		}
	}
	return cfg, nil
}

// Detail renders label/value pairs for the detail screens and `show` output.
func Detail(pairs ...string) string {
	lines := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		lines = append(lines, styles.LabelStyle.Render(pairs[i])+pairs[i+1])
	}
	return strings.Join(lines, "\n")
}

// Confirm asks a yes/no question and returns components.ErrFormCanceled on no.
func Confirm(ctx context.Context, question string) error {
	ok := false
	if err := components.RunForm(ctx, forms.ConfirmForm(question, &ok)); err != nil {
		return err
	}
	if !ok {
		return components.ErrFormCanceled
	}
	return nil
}

// StatusFilter parses a --status value; "all" and "" mean no filter.
func StatusFilter(value string, parse func(string) (int, error)) (*int, error) {
	if value == "" || value == "all" {
		return nil, nil
	}
	n, err := parse(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// RotateStatuses moves the option matching initial to the front so the
// screen opens on it.
func RotateStatuses(opts []listview.StatusOption, initial *int) []listview.StatusOption {
	for i, o := range opts {
		if (o.Value == nil && initial == nil) || (o.Value != nil && initial != nil && *o.Value == *initial) {
			return append(append([]listview.StatusOption{}, opts[i:]...), opts[:i]...)
		}
	}
	return opts
}
