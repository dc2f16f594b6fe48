package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/p4ops/p4prune/internal/config"
	"github.com/p4ops/p4prune/internal/exclude"
)

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage the exclusion list",
	Long: `View and edit the glob patterns marking files that must never be
deleted. The list is persisted and applied to every run. Fresh installs
are seeded with the Perforce proxy's own files (p4p.exe, p4p.conf, ...).`,
}

var excludeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the active exclusion patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, l, err := loadExcludeList()
		if err != nil {
			return err
		}
		fmt.Printf("exclusion list (%s):\n", path)
		for _, p := range l.Patterns() {
			fmt.Println("  " + p)
		}
		return nil
	},
}

var excludeAddCmd = &cobra.Command{
	Use:   "add <pattern>...",
	Short: "Add exclusion patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, l, err := loadExcludeList()
		if err != nil {
			return err
		}
		for _, p := range args {
			if l.Add(p) {
				fmt.Println("added: " + p)
			} else {
				fmt.Println("already present: " + p)
			}
		}
		return l.Save(path)
	},
}

var excludeRemoveCmd = &cobra.Command{
	Use:   "remove <pattern>...",
	Short: "Remove exclusion patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, l, err := loadExcludeList()
		if err != nil {
			return err
		}
		for _, p := range args {
			if l.Remove(p) {
				fmt.Println("removed: " + p)
			} else {
				fmt.Println("not found: " + p)
			}
		}
		return l.Save(path)
	},
}

var excludeEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the exclusion list in your editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, l, err := loadExcludeList()
		if err != nil {
			return err
		}
		// Materialize the file first so the editor always has content.
		if _, serr := os.Stat(path); os.IsNotExist(serr) {
			if werr := l.Save(path); werr != nil {
				return werr
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			if runtime.GOOS == "windows" {
				editor = "notepad"
			} else {
				editor = "vi"
			}
		}
		ed := exec.Command(editor, path)
		ed.Stdin, ed.Stdout, ed.Stderr = os.Stdin, os.Stdout, os.Stderr
		return ed.Run()
	},
}

func loadExcludeList() (string, *exclude.List, error) {
	path, err := config.ExcludeFile()
	if err != nil {
		return "", nil, fmt.Errorf("resolve config dir: %w", err)
	}
	l, err := exclude.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, l, nil
}

func init() {
	excludeCmd.AddCommand(excludeShowCmd)
	excludeCmd.AddCommand(excludeAddCmd)
	excludeCmd.AddCommand(excludeRemoveCmd)
	excludeCmd.AddCommand(excludeEditCmd)
}
