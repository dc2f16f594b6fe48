package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dryRun bool

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "p4prune",
	Short: "Trim a Perforce proxy cache by last access time",
	Long: `p4prune - Trim a Perforce proxy cache by last access time.

Scans a p4p cache directory and deletes the least-recently-accessed
files until the disk reaches a target free-space percentage (drive
mode) or the cache shrinks to a target percentage of its own size
(folder mode). Supports dry runs and a persisted exclusion list.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Register all subcommands
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(excludeCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
