package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/workorder"
)

func newAssignCmd() *cobra.Command {
	var configPath, scheduledStart string
	var qty int

	cmd := &cobra.Command{
		Use:   "assign <job-id> <resource-id>",
		Short: "Create a work order assigning a job to a resource",
		Long:  "Creates a queued work order for the job on the resource, computes its estimated duration from the resource's setup time and throughput, and appends it to the resource's queue.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(cmd, configPath, args[0], args[1], qty, scheduledStart)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	cmd.Flags().IntVar(&qty, "qty", 0, "target quantity (required)")
	cmd.Flags().StringVar(&scheduledStart, "start", "", "scheduled start (RFC3339, optional)")
	cmd.MarkFlagRequired("qty")
	return cmd
}

func runAssign(cmd *cobra.Command, configPath, jobID, resourceID string, qty int, scheduledStart string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	opts := workorder.AssignOpts{
		JobID:      jobID,
		ResourceID: resourceID,
		ActorID:    actor(),
		TargetQty:  qty,
	}
	if scheduledStart != "" {
		t, err := time.Parse(time.RFC3339, scheduledStart)
		if err != nil {
			return fmt.Errorf("parse --start: %w", err)
		}
		opts.ScheduledStart = &t
	}

	wo, err := workorder.Assign(gormDB, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created work order %s: job %s on %s, qty %d, est %dm\n",
		wo.ID, wo.JobID, resourceID, wo.TargetQty, wo.EstimatedDurationMin)
	return nil
}
