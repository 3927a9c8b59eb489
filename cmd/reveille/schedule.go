package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmarchant/reveille/internal/api"
	"github.com/jmarchant/reveille/internal/audio"
	"github.com/jmarchant/reveille/internal/config"
	"github.com/jmarchant/reveille/internal/scheduler"
)

var scheduleOpts struct {
	listen    string
	statePath string
	noReload  bool
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the bugle-call scheduler",
	Long: `Run the bugle-call scheduler until interrupted.

Loads the schedule file, registers every call as a day-filtered
trigger, and plays each call's audio file at its time. Weekday calls
fire Monday through Friday, weekend calls on Saturday and Sunday.

Changes to the schedule file are picked up without a restart. With an
api_token configured and --listen set, a small HTTP control API serves
run status and remote triggering.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleOpts.listen, "listen", "",
		"Address for the HTTP control API (e.g. :5000; empty disables it)")
	scheduleCmd.Flags().StringVar(&scheduleOpts.statePath, "state-file", "",
		"Path to the run-state JSON file (default: ~/.local/share/reveille/state.json)")
	scheduleCmd.Flags().BoolVar(&scheduleOpts.noReload, "no-reload", false,
		"Do not watch the schedule file for changes")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	configPath := globalOpts.configPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}

	// A bad schedule file is fatal at startup; later reload failures
	// keep the last good schedule instead.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	statePath := scheduleOpts.statePath
	if statePath == "" {
		statePath = config.StatePath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := audio.NewManager(logger)
	defer manager.Stop()

	manager.SetVolumePercent(cfg.Volume)
	manager.Preload(audioPaths(cfg))
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start audio manager: %w", err)
	}

	svc := scheduler.New(scheduler.Config{Location: loc, StatePath: statePath}, manager, logger)
	if err := svc.Apply(cfg.Schedule()); err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	logNextCall(svc)

	if !scheduleOpts.noReload {
		watcher, err := config.NewWatcher(configPath, func() {
			reloadSchedule(configPath, manager, svc)
		})
		if err != nil {
			return fmt.Errorf("failed to watch schedule file: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch schedule file: %w", err)
		}
		defer func() { _ = watcher.Stop() }()
	}

	if scheduleOpts.listen != "" {
		if cfg.APIToken == "" {
			return fmt.Errorf("--listen requires api_token in the schedule file")
		}
		srv := api.NewServer(cfg.APIToken, svc, logger)
		go func() {
			if err := srv.ListenAndServe(ctx, scheduleOpts.listen); err != nil {
				logger.Error("control api failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// reloadSchedule re-reads the schedule file and swaps the trigger set.
// On any load error the previous schedule stays active.
func reloadSchedule(path string, manager *audio.Manager, svc *scheduler.Service) {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn("schedule reload failed, keeping previous schedule", "error", err)
		return
	}

	manager.SetVolumePercent(cfg.Volume)
	manager.Reset()
	manager.Preload(audioPaths(cfg))

	if err := svc.Apply(cfg.Schedule()); err != nil {
		logger.Warn("schedule reload failed, keeping previous schedule", "error", err)
		return
	}

	logger.Info("schedule reloaded", "entries", cfg.Schedule().Len())
	logNextCall(svc)
}

// audioPaths collects every audio file referenced by the schedule,
// deduplicated.
func audioPaths(cfg *config.Config) []string {
	seen := make(map[string]bool)
	var out []string
	for _, calls := range []map[string]config.CallSpec{cfg.Weekdays, cfg.Weekends} {
		for _, call := range calls {
			if !seen[call.AudioFile] {
				seen[call.AudioFile] = true
				out = append(out, call.AudioFile)
			}
		}
	}
	return out
}

func logNextCall(svc *scheduler.Service) {
	sched := svc.Schedule()
	if sched == nil {
		return
	}
	if entry, at, ok := sched.Next(svc.Now()); ok {
		logger.Info("next call", "name", entry.Name, "at", at.Format("Mon 15:04"))
	} else {
		logger.Warn("schedule has no calls")
	}
}
