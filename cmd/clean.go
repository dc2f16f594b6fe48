package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/p4ops/p4prune/internal/config"
	"github.com/p4ops/p4prune/internal/engine"
	"github.com/p4ops/p4prune/internal/exclude"
	"github.com/p4ops/p4prune/internal/logging"
	"github.com/p4ops/p4prune/internal/target"
	"github.com/p4ops/p4prune/internal/tui"
)

var (
	folderMode bool
	lowPct     int
	highPct    int
	keepPct    int
	noTUI      bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <path>",
	Short: "Free up disk space",
	Long: `Delete the least-recently-accessed cache files until the space
target is met.

Drive mode (default): act when free space drops below --low percent and
delete until it would reach --high percent of the volume.

Folder mode (--folder): shrink the cache directory to --keep percent of
its current size, regardless of overall disk usage.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&folderMode, "folder", false, "Regulate the cache folder's own size instead of drive free space")
	cleanCmd.Flags().IntVar(&lowPct, "low", 20, "Drive mode: act when free space is below this percent")
	cleanCmd.Flags().IntVar(&highPct, "high", 30, "Drive mode: free space until this percent of the volume is free")
	cleanCmd.Flags().IntVar(&keepPct, "keep", 80, "Folder mode: percent of current cache size to keep")
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be deleted without deleting")
	cleanCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Line-per-event output even on a terminal")
}

func runClean(cmd *cobra.Command, args []string) error {
	excludePath, err := config.ExcludeFile()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	excl, err := exclude.Load(excludePath)
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if logPath, lerr := config.LogFile(); lerr == nil {
		logger = logging.Setup(logPath)
	}

	indexDir, err := config.IndexDir()
	if err != nil {
		return fmt.Errorf("resolve index dir: %w", err)
	}

	cfg := engine.Config{
		Path:     args[0],
		Mode:     target.ModeDrive,
		Low:      lowPct,
		High:     highPct,
		Keep:     keepPct,
		DryRun:   dryRun,
		Exclude:  excl,
		Logger:   logger,
		IndexDir: indexDir,
	}
	if folderMode {
		cfg.Mode = target.ModeFolder
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	run, err := engine.Start(ctx, cfg)
	if err != nil {
		if errors.Is(err, target.ErrConfig) {
			return err
		}
		return fmt.Errorf("start cleanup: %w", err)
	}

	var res *engine.RunResult
	if !noTUI && isatty.IsTerminal(os.Stdout.Fd()) {
		model := tui.NewCleanModel(run, cancel, cfg.Path, cfg.DryRun)
		if _, terr := tea.NewProgram(model).Run(); terr != nil {
			// TUI failure must not strand the pipeline.
			cancel()
		}
		res = run.Wait()
	} else {
		res = tui.RunPlain(os.Stdout, run, cfg.DryRun)
	}

	if res.Cancelled {
		fmt.Fprintln(os.Stderr, "cancelled: partial result above")
	}
	return nil
}
