package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopline",
		Short: "Shopline — work order scheduling for the shop floor",
		Long:  "Shopline assigns production jobs to machines, tracks execution by operators, and keeps the schedule timeline consistent with the work order records.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newJobCmd())
	cmd.AddCommand(newResourceCmd())
	cmd.AddCommand(newAssignCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newPauseCmd())
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newUnassignCmd())
	cmd.AddCommand(newDowntimeCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopline %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
