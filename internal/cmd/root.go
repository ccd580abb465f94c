package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	RootCmdName  = "autotax"
	RootCmdShort = "Vehicle tax catalog"
	RootCmdLong  = `autotax loads a catalog of vehicles and computes the yearly vehicle tax
for each of them, with optional prompt payment, public service and
account transfer discounts.`
)

// NewRootCmd builds the command tree. Each call returns independent
// commands, so tests can execute them in isolation.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           RootCmdName,
		Short:         RootCmdShort,
		Long:          RootCmdLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("source", "", "vehicle source: file or postgres (env VEHICLE_SOURCE)")
	flags.String("file", "", "vehicle file for the file source (env VEHICLE_FILE)")
	flags.String("env", "", "environment name, development enables console logs (env ENV)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSummaryCmd())
	root.AddCommand(newImportCmd())

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", RootCmdName, err)
		os.Exit(1)
	}
}
