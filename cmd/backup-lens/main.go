package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"backup-lens/backups"
)

func main() {
	os.Exit(execute())
}

// newRootCmd returns the root cobra command for the backup-lens CLI.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "backup-lens",
		Short:         "Normalize and query Proxmox, PBS, and PMG backup feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringP("config", "c", "", "YAML config file path")

	cmd.AddCommand(newVersionCmd(stdout))
	cmd.AddCommand(newListCmd(stdout, stderr))
	cmd.AddCommand(newChartCmd(stdout))
	cmd.AddCommand(newIngestCmd(stdout))

	return cmd
}

func execute() int {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadConfig reads the --config file when given, or returns an empty config
// so flag-only invocations work.
func loadConfig(cmd *cobra.Command) (*backups.FileConfig, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		return &backups.FileConfig{}, nil
	}
	return backups.LoadConfig(path)
}

// feedsFromFlags merges per-command feed path flags over the config file.
func feedsFromFlags(cmd *cobra.Command, cfg *backups.FileConfig) backups.FeedsConfig {
	feeds := cfg.Feeds
	override := func(flagName string, dst *string) {
		if cmd.Flags().Changed(flagName) {
			v, _ := cmd.Flags().GetString(flagName)
			*dst = v
		}
	}
	override("snapshots", &feeds.Snapshots)
	override("storage", &feeds.Storage)
	override("pbs", &feeds.PBS)
	override("pmg", &feeds.PMG)
	override("guests", &feeds.Guests)
	return feeds
}

func addFeedFlags(cmd *cobra.Command) {
	cmd.Flags().String("snapshots", "", "Guest snapshot feed JSON file")
	cmd.Flags().String("storage", "", "Storage backup feed JSON file")
	cmd.Flags().String("pbs", "", "PBS backup feed JSON file")
	cmd.Flags().String("pmg", "", "PMG backup feed JSON file")
	cmd.Flags().String("guests", "", "Guest directory JSON file (vmid/name/instance)")
}
