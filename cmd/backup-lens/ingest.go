package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"backup-lens/backups"
)

func newIngestCmd(stdout io.Writer) *cobra.Command {
	var dbPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Unify the backup feeds and archive the run to the SQLite history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			finalDB := cfg.DB
			if cmd.Flags().Changed("db") || finalDB == "" {
				finalDB = dbPath
			}
			finalDebug := cfg.Debug
			if cmd.Flags().Changed("debug") {
				finalDebug = debug
			}

			runner, err := backups.NewRunner(backups.RunnerConfig{
				DBPath: finalDB,
				Feeds:  feedsFromFlags(cmd, cfg),
				Debug:  finalDebug,
			})
			if err != nil {
				return err
			}
			defer runner.Close()

			records, err := runner.RunOnce()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "archived %d records to %s\n", len(records), finalDB)
			return nil
		},
	}

	addFeedFlags(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "backup-lens.db", "SQLite archive path")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logs")
	return cmd
}
