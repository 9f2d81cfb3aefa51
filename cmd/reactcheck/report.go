package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactcheck/reactcheck/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect a previously written session report",
	}
	cmd.AddCommand(reportViewCmd())
	return cmd
}

func reportViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <path>",
		Short: "Validate and summarize a session report file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := report.Validate(data); err != nil {
				return err
			}
			r, err := report.Unmarshal(data)
			if err != nil {
				return err
			}

			fmt.Printf("session:    %s (%s)\n", r.Session.SessionID, r.Session.TargetURL)
			fmt.Printf("components: %d\n", r.Summary.UniqueComponents)
			fmt.Printf("renders:    %d (%d unnecessary)\n", r.Summary.TotalRenders, r.Summary.UnnecessaryRenders)
			fmt.Printf("severity:   %d critical, %d warning, %d info, %d healthy\n",
				r.Summary.CriticalCount, r.Summary.WarningCount, r.Summary.InfoCount, r.Summary.HealthyCount)
			fmt.Printf("chains:     %d\n", len(r.Chains))
			fmt.Printf("suggestions: %d\n", len(r.Suggestions))
			if r.Summary.Dropped > 0 {
				fmt.Printf("dropped:    %d events coalesced under back-pressure\n", r.Summary.Dropped)
			}
			return nil
		},
	}
}
