package main

import (
	"github.com/spf13/cobra"

	"marathon-migrate/internal/migrate"
)

type rootFlags struct {
	configPath string
	logLevel   string
	jsonLogs   bool
	force      bool
	sftp       bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "marathon-migrate",
		Short:         "Migrate marathon content from the legacy platform into the new backend",
		Long: `marathon-migrate moves course ("marathon") content out of the legacy
vendor API into the new backend: it downloads each configured course's
day/category/exercise tree, flattens it into ordered per-day payloads,
caches them on disk, and upserts them into the destination course named
by the id mapping in the config file.

Run without a subcommand to perform the full download + upload pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, flags, migrate.ModeFull)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "configuration file path (default migrate.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "emit JSON log lines")
	rootCmd.PersistentFlags().BoolVar(&flags.force, "force", false, "re-upload days below the recorded high-water mark")
	rootCmd.PersistentFlags().BoolVar(&flags.sftp, "sftp", false, "upload the compressed run report via SFTP")

	rootCmd.AddCommand(newDownloadCommand(flags))
	rootCmd.AddCommand(newUploadCommand(flags))
	rootCmd.AddCommand(newListCommand(flags))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
