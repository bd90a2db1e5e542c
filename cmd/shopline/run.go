package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/workorder"
)

func newStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start <work-order-id>",
		Short: "Start or resume work on a work order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			wo, err := workorder.Start(gormDB, args[0], actor())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Work order %s is now active\n", wo.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func newPauseCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "pause <work-order-id>",
		Short: "Pause an active work order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			wo, err := workorder.Pause(gormDB, args[0], actor())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Work order %s paused at %d/%d\n", wo.ID, wo.CompletedQty, wo.TargetQty)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func newCompleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "complete <work-order-id> <delivered-qty>",
		Short: "Complete a work session with the quantity delivered",
		Long:  "Closes the current session with the delivered quantity. Delivering the full remainder completes the order; delivering less closes it as partial and queues a remainder order for the undelivered quantity.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delivered, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parse delivered quantity %q: %w", args[1], err)
			}
			return runComplete(cmd, configPath, args[0], delivered)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func runComplete(cmd *cobra.Command, configPath, id string, delivered int) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	result, err := workorder.Complete(gormDB, id, actor(), delivered)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	wo := result.Order
	if result.Remainder != nil {
		fmt.Fprintf(out, "Work order %s closed partial at %d/%d; remainder %s queued for %d\n",
			wo.ID, wo.CompletedQty, wo.TargetQty, result.Remainder.ID, result.Remainder.TargetQty)
		return nil
	}
	fmt.Fprintf(out, "Work order %s completed (%d/%d)\n", wo.ID, wo.CompletedQty, wo.TargetQty)
	return nil
}

func newUnassignCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "unassign <work-order-id>",
		Short: "Remove a non-terminal work order and its queue entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := workorder.Unassign(gormDB, args[0], actor()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Work order %s unassigned\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair partial orders missing their remainder",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			n, err := workorder.ReconcileSplits(gormDB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Repaired %d split(s)\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}
