package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marathon-migrate/internal/config"
	"marathon-migrate/internal/migrate"
	"marathon-migrate/internal/progress"
)

func newDownloadCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "download",
		Aliases: []string{"download-only"},
		Short:   "Download and cache all configured marathons without touching the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, flags, migrate.ModeDownload)
		},
	}
}

func newUploadCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload previously cached marathons into the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, flags, migrate.ModeUpload)
		},
	}
}

func newListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"list-marathons"},
		Short:   "Print the configured marathons and their mapping status (no network calls)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if len(cfg.Marathons) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no marathons configured")
				return nil
			}

			uploaded := map[string]string{}
			if prog, err := progress.Open(cfg.DataDir); err == nil {
				if rows, err := prog.Snapshot(cmd.Context()); err == nil {
					for _, r := range rows {
						uploaded[r.SourceID] = fmt.Sprintf("%d/%d", r.LastUploadedDay, r.TotalDays)
					}
				}
				_ = prog.Close()
			}

			rows := make([][]string, 0, len(cfg.Marathons))
			for _, m := range cfg.Marathons {
				mapping := m.DestinationID
				if !m.Mapped() {
					mapping = "(unmapped, upload skipped)"
				}
				up := uploaded[m.SourceID]
				if up == "" {
					up = "-"
				}
				rows = append(rows, []string{
					m.SourceID,
					strings.TrimSpace(m.Title),
					strconv.Itoa(m.DayCount),
					mapping,
					up,
				})
			}

			out := renderTable(
				[]string{"SOURCE ID", "TITLE", "DAYS", "DESTINATION", "UPLOADED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = config.DefaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "output", "o", "", "target path (default migrate.toml)")
	return cmd
}
