package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/resource"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

func newResourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Resource management commands",
	}

	cmd.AddCommand(newResourceAddCmd())
	cmd.AddCommand(newResourceListCmd())
	cmd.AddCommand(newResourceRenameCmd())
	return cmd
}

func newResourceAddCmd() *cobra.Command {
	var configPath string
	var setupMinutes, unitsPerHour int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new machine or workstation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			res, err := resource.Create(gormDB, resource.CreateOpts{
				Name:         args[0],
				SetupMinutes: setupMinutes,
				UnitsPerHour: unitsPerHour,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created resource %s: %s (setup %dm, %d units/h)\n",
				res.ID, res.Name, res.SetupMinutes, res.UnitsPerHour)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	cmd.Flags().IntVar(&setupMinutes, "setup", 0, "setup time in minutes")
	cmd.Flags().IntVar(&unitsPerHour, "rate", 0, "throughput in units per hour")
	return cmd
}

func newResourceListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources and their downtime state",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			resources, err := resource.List(gormDB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range resources {
				state := "up"
				if r.IsDown {
					state = fmt.Sprintf("DOWN since %s (%s)", r.DownSince.Format("15:04"), r.DownReason)
				}
				fmt.Fprintf(out, "%s  %-20s  setup=%dm rate=%d/h  %s\n",
					r.ID, r.Name, r.SetupMinutes, r.UnitsPerHour, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func newResourceRenameCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rename <resource-id> <name>",
		Short: "Rename a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			res, err := resource.Rename(gormDB, args[0], args[1], actor())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", res.ID, res.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

// listJobOrders returns a job's work orders, oldest first.
func listJobOrders(db *gorm.DB, jobID string) ([]models.WorkOrder, error) {
	return workorder.List(db, workorder.ListFilters{JobID: jobID})
}
