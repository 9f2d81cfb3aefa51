// Command reactcheck is the CLI entrypoint for the host-side analysis
// engine: it launches a session, accepts one probe connection, and
// reports the assembled SessionReport. The browser-launch driver and the
// in-page probe injection are external collaborators referenced only by
// contract (spec §1's Out of scope); this binary only speaks the wire
// protocol they produce.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reactcheck/reactcheck/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "reactcheck",
		Short:         "Runtime performance analyzer for component-tree applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := config.BindFlags(rootCmd.PersistentFlags(), v); err != nil {
		fmt.Fprintf(os.Stderr, "reactcheck: %s\n", err)
		os.Exit(2)
	}

	rootCmd.AddCommand(
		scanCmd(v),
		reportCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
