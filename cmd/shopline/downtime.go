package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/downtime"
)

func newDowntimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "downtime",
		Short: "Report or clear resource downtime",
	}

	cmd.AddCommand(newDowntimeReportCmd())
	cmd.AddCommand(newDowntimeClearCmd())
	return cmd
}

func newDowntimeReportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "report <resource-id> <reason>",
		Short: "Mark a resource as down",
		Long:  "Marks the resource down. While down, every affected work order's effective schedule keeps shifting by the elapsed downtime until the resource is cleared.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			res, err := downtime.Report(gormDB, args[0], strings.Join(args[1:], " "), actor())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resource %s marked down: %s\n", res.ID, res.DownReason)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func newDowntimeClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear <resource-id>",
		Short: "Mark a resource as up again",
		Long:  "Clears the resource's downtime. The accumulated push freezes at its last computed value; subsequent work proceeds from the frozen point.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			res, err := downtime.Clear(gormDB, args[0], actor())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resource %s cleared (timeline shifted %dm total)\n", res.ID, res.ShiftedMin)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}
