package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"marathon-migrate/internal/config"
	"marathon-migrate/internal/logging"
	"marathon-migrate/internal/migrate"
	"marathon-migrate/internal/progress"
	"marathon-migrate/internal/providers/backend"
	"marathon-migrate/internal/providers/legacy"
	"marathon-migrate/internal/ratelimit"
	"marathon-migrate/internal/report"
	"marathon-migrate/internal/sftpclient"
	"marathon-migrate/internal/store"
)

// runPipeline wires clients, cache, progress, and limiters from config and
// executes the requested phases.
func runPipeline(cmd *cobra.Command, flags *rootFlags, mode migrate.Mode) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	log := logging.New(os.Stderr, level, flags.jsonLogs || cfg.Log.JSON)

	if len(cfg.Marathons) == 0 {
		return fmt.Errorf("no marathons configured; add [[marathons]] entries to the config file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := migrate.Options{
		Courses: cfg.Marathons,
		Cache:   store.New(filepath.Join(cfg.DataDir, "courses")),
		Log:     log,
		Force:   flags.force,
	}

	if mode == migrate.ModeFull || mode == migrate.ModeDownload {
		if err := cfg.RequireLegacy(); err != nil {
			return err
		}
		limiter := ratelimit.New(cfg.Rate.LegacyRPS, cfg.Rate.LegacyBurst)
		src := legacy.New(cfg.Legacy.BaseURL, cfg.Legacy.Username, cfg.Legacy.Password, limiter)
		if cfg.Rate.FetchWorkers > 0 {
			src.FetchWorkers = cfg.Rate.FetchWorkers
		}
		opts.Source = src
	}

	if mode == migrate.ModeFull || mode == migrate.ModeUpload {
		if err := cfg.RequireBackend(); err != nil {
			return err
		}
		limiter := ratelimit.New(cfg.Rate.BackendRPS, cfg.Rate.BackendBurst)
		opts.Destination = backend.New(cfg.Backend.BaseURL, cfg.Backend.Email, cfg.Backend.Password, limiter)

		prog, err := progress.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer prog.Close()
		opts.Progress = prog
	}

	summary, err := migrate.New(opts).Run(ctx, mode)
	if err != nil {
		return err
	}

	reportDir := filepath.Join(cfg.DataDir, "reports")
	reportPath, err := report.Write(reportDir, summary)
	if err != nil {
		return err
	}
	log.Info("run report written", "path", reportPath)

	if flags.sftp || cfg.SFTP.Enabled {
		compressed, err := report.WriteCompressed(reportDir, summary)
		if err != nil {
			return err
		}
		if err := sftpclient.UploadReport(ctx, cfg.SFTP, compressed, filepath.Base(compressed)); err != nil {
			return err
		}
		log.Info("run report shipped", "remote_dir", cfg.SFTP.RemoteDir)
	}

	printRunOutcome(cmd, summary)
	if summary.HasFailures() {
		return fmt.Errorf("run finished with day failures; see %s", reportPath)
	}
	return nil
}

func printRunOutcome(cmd *cobra.Command, s report.RunSummary) {
	var created, updated, skippedDays, failures int
	var skippedCourses int
	for _, c := range s.Courses {
		created += c.DaysCreated
		updated += c.DaysUpdated
		skippedDays += c.DaysSkipped
		failures += len(c.Failures)
		if c.SkipReason != "" {
			skippedCourses++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s (%s): %d courses, %d skipped; days: %d created, %d updated, %d skipped, %d failed\n",
		s.RunID, s.Mode, len(s.Courses), skippedCourses, created, updated, skippedDays, failures)
}
