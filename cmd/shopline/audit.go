package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/audit"
	"github.com/zulandar/shopline/internal/models"
)

func newAuditCmd() *cobra.Command {
	var configPath, workOrderID string

	cmd := &cobra.Command{
		Use:   "audit [job-id]",
		Short: "Print a job's audit ledger in causal order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && workOrderID == "" {
				return fmt.Errorf("a job ID or --workorder is required")
			}

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			var recs []models.AuditRecord
			if workOrderID != "" {
				recs, err = audit.ByWorkOrder(gormDB, workOrderID)
			} else {
				recs, err = audit.ByJob(gormDB, args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range recs {
				wo := "-"
				if r.WorkOrderID != nil {
					wo = *r.WorkOrderID
				}
				corr := ""
				if r.CorrelationID != "" {
					corr = "  corr=" + r.CorrelationID
				}
				fmt.Fprintf(out, "#%d  %s  %-24s  %s  by %s%s\n",
					r.ID, r.CreatedAt.Format("01-02 15:04:05"), r.Action, wo, r.ActorID, corr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	cmd.Flags().StringVar(&workOrderID, "workorder", "", "filter by work order ID instead")
	return cmd
}
