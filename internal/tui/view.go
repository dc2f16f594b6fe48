package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/p4ops/p4prune/internal/engine"
	"github.com/p4ops/p4prune/internal/ui"
)

func spinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ui.ColorPrimary)
}

func (m CleanModel) View() string {
	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")

	switch m.phase {
	case phaseScanning:
		s.WriteString(fmt.Sprintf("  %s Scanning cache — %d files (%s)\n",
			m.spin.View(), m.scanned, ui.FormatSize(m.scannedB)))

	case phaseDeleting:
		verb := "Deleting"
		if m.dryRun {
			verb = "Simulating"
		}
		pct := 0.0
		if m.planBytes > 0 {
			pct = float64(m.freedBytes) / float64(m.planBytes)
		}
		s.WriteString(fmt.Sprintf("  %s %s %d/%d files\n",
			m.spin.View(), verb, m.processed, m.planned))
		s.WriteString("  " + m.prog.ViewAs(pct) + "\n")
		s.WriteString(lipgloss.NewStyle().Foreground(ui.ColorTextDim).
			Render(fmt.Sprintf("  %s of %s freed",
				ui.FormatSize(m.freedBytes), ui.FormatSize(m.planBytes))))
		s.WriteString("\n")

	case phaseDone:
		s.WriteString(m.renderSummary())
	}

	if m.phase != phaseDone && len(m.recent) > 0 {
		s.WriteString("\n")
		dim := lipgloss.NewStyle().Foreground(ui.ColorMuted)
		for _, line := range m.recent {
			s.WriteString(dim.Render("  "+truncate(line, m.width-4)) + "\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m CleanModel) renderHeader() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Render("  p4prune " + ui.IconPipe + " " + m.path)

	if m.dryRun {
		tag := ui.TagWarningStyle().Render(" DRY RUN ")
		return title + "  " + tag
	}
	return title
}

func (m CleanModel) renderSummary() string {
	res := m.result
	if res == nil {
		return ""
	}

	var lines []string

	verb := "Freed"
	if res.DryRun {
		verb = "Would free"
	}
	lines = append(lines, fmt.Sprintf("  %s %s  (%d files deleted, %d errors)",
		ui.IconCheck, verb+" "+ui.FormatSize(res.BytesFreed), res.FilesDeleted, len(res.Errors)))

	if res.Cancelled {
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorWarning).
			Render("  "+ui.IconWarning+" Run cancelled — partial result"))
	}
	if res.TargetUnreached {
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorWarning).
			Render("  "+ui.IconWarning+" Inventory exhausted before the space target was met"))
	}
	for _, fe := range tail(res.Errors, 5) {
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorError).
			Render("  "+ui.IconError+" "+fe.Path+": "+fe.Msg))
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m CleanModel) renderFooter() string {
	if m.phase == phaseDone {
		return ""
	}
	if m.cancelling {
		return ui.HintBarStyle().Render("  stopping…")
	}
	return ui.HintBarStyle().Render("  q stop")
}

func truncate(s string, max int) string {
	if max < 8 {
		max = 8
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func tail(errs []engine.FileError, n int) []engine.FileError {
	if len(errs) <= n {
		return errs
	}
	return errs[len(errs)-n:]
}
