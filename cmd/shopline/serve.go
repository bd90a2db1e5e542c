package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopline/internal/config"
	"github.com/zulandar/shopline/internal/dashboard"
	"github.com/zulandar/shopline/internal/downtime"
	"github.com/zulandar/shopline/internal/notify"
	"github.com/zulandar/shopline/internal/notify/discord"
	"github.com/zulandar/shopline/internal/notify/slack"
	"github.com/zulandar/shopline/internal/schedview"
	"gorm.io/gorm"
)

const plannerHorizon = 7 * 24 * time.Hour

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the schedule API, sync worker and downtime planner",
		Long:  "Serves the schedule read API, consumes the change-event feed to keep the derived view, audit ledger and job status caches consistent, and materializes planned downtime windows. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Shopline config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()

	worker := &schedview.Worker{
		DB:           gormDB,
		PollInterval: cfg.Sync.PollInterval,
		MaxBackoff:   cfg.Sync.MaxBackoff,
		Notifier:     buildNotifier(cfg),
		Out:          out,
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- worker.Run(ctx)
	}()
	go func() {
		errCh <- dashboard.Start(ctx, dashboard.StartOpts{
			DB:   gormDB,
			Port: cfg.Dashboard.Port,
			Out:  out,
		})
	}()

	runPlanner(ctx, gormDB, cfg)

	stop()
	// Collect both goroutines; report the first failure.
	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// runPlanner expands planned downtime windows on a ticker until ctx is
// cancelled.
func runPlanner(ctx context.Context, gormDB *gorm.DB, cfg *config.Config) {
	if len(cfg.Downtime) == 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		if _, err := downtime.ExpandPlanned(gormDB, cfg.Downtime, time.Now(), plannerHorizon); err != nil {
			log.Printf("serve: expand planned downtime: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// buildNotifier wires the configured outbound sinks. Unset tokens
// disable their sink.
func buildNotifier(cfg *config.Config) *notify.Notifier {
	n := &notify.Notifier{}

	if cfg.Notify.SlackToken != "" {
		sink, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.SlackToken,
			ChannelID: cfg.Notify.SlackChannel,
		})
		if err != nil {
			log.Printf("serve: slack sink disabled: %v", err)
		} else {
			n.Sinks = append(n.Sinks, sink)
		}
	}
	if cfg.Notify.DiscordToken != "" {
		sink, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.DiscordToken,
			ChannelID: cfg.Notify.DiscordChannel,
		})
		if err != nil {
			log.Printf("serve: discord sink disabled: %v", err)
		} else {
			n.Sinks = append(n.Sinks, sink)
		}
	}

	if len(n.Sinks) == 0 {
		return nil
	}
	return n
}
