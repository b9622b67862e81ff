package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/salesdesk/salesdesk/cli"
	"github.com/salesdesk/salesdesk/cli/helpers"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		// command handlers print their own errors; flag and setup errors are printed here
		var cliErr *helpers.CliError
		if !errors.As(err, &cliErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(helpers.ExitCode(err))
	}
}
