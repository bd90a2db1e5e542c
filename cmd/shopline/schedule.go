package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/schedview"
)

func newScheduleCmd() *cobra.Command {
	var configPath, resourceID, from, to string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the schedule view, sorted by effective start",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, configPath, resourceID, from, to)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	cmd.Flags().StringVar(&resourceID, "resource", "", "filter by resource ID")
	cmd.Flags().StringVar(&from, "from", "", "range start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "range end (RFC3339)")
	return cmd
}

func runSchedule(cmd *cobra.Command, configPath, resourceID, fromStr, toStr string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
		to = &t
	}

	entries, err := schedview.Query(gormDB, resourceID, from, to, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s → %s  %-20s  %-9s  %d/%d  %s\n",
			e.WorkOrderID,
			e.StartAt.Format("01-02 15:04"),
			e.EndAt.Format("01-02 15:04"),
			e.ResourceName, e.Status, e.CompletedQty, e.TargetQty, e.JobID)
	}
	return nil
}
