package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/p4ops/p4prune/internal/engine"
	"github.com/p4ops/p4prune/internal/ui"
)

// recentLines is how many per-file lines stay visible.
const recentLines = 8

// ─── Phases ──────────────────────────────────────────────────────────────────

type phase int

const (
	phaseScanning phase = iota
	phaseDeleting
	phaseDone
)

// ─── Messages ────────────────────────────────────────────────────────────────

type eventMsg engine.Event

// streamClosedMsg signals the pipeline closed its event channel. The
// final Done event can be dropped on cancellation, so stream close is
// the authoritative end-of-run signal.
type streamClosedMsg struct{}

// waitForEvent reads the next pipeline event. Re-issued after every
// eventMsg so the stream drains one message at a time.
func waitForEvent(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// ─── Model ───────────────────────────────────────────────────────────────────

// CleanModel is the bubbletea Model rendering one cleanup run.
type CleanModel struct {
	run    *engine.Run
	cancel context.CancelFunc

	spin spinner.Model
	prog progress.Model

	path   string
	dryRun bool
	width  int

	phase      phase
	cancelling bool

	scanned    int64
	scannedB   int64
	planned    int
	planBytes  int64
	processed  int
	freedBytes int64
	errs       int

	recent []string
	result *engine.RunResult
}

// NewCleanModel wires a started run to the TUI. cancel is invoked when the
// user requests a stop; the model keeps draining events until the partial
// result arrives.
func NewCleanModel(run *engine.Run, cancel context.CancelFunc, path string, dryRun bool) CleanModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle()),
	)
	pr := progress.New(progress.WithDefaultGradient())
	return CleanModel{
		run:    run,
		cancel: cancel,
		spin:   sp,
		prog:   pr,
		path:   path,
		dryRun: dryRun,
		width:  80,
	}
}

func (m CleanModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.run.Events()))
}

func (m CleanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.prog.Width = clamp(msg.Width-8, 20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.phase == phaseDone {
				return m, tea.Quit
			}
			// Cooperative stop: the pipeline returns a partial result.
			m.cancelling = true
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		return m.applyEvent(engine.Event(msg))

	case streamClosedMsg:
		m.phase = phaseDone
		m.result = m.run.Wait()
		return m, tea.Quit
	}

	return m, nil
}

func (m CleanModel) applyEvent(ev engine.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {

	case engine.EventRunStart:
		m.phase = phaseScanning

	case engine.EventScanProgress:
		m.scanned = ev.Scanned
		m.scannedB = ev.Bytes

	case engine.EventScanError:
		m.errs++
		m.push(ui.IconWarning + " " + ev.Path + ": " + ev.Err.Error())

	case engine.EventPlanReady:
		m.phase = phaseDeleting
		m.planned = len(ev.Plan.Files)
		m.planBytes = ev.Plan.EstimatedBytes

	case engine.EventFileProcessed:
		m.processed++
		if ev.Err != nil {
			m.errs++
			m.push(ui.IconError + " " + ev.Path + ": " + ev.Err.Error())
		} else {
			m.freedBytes += ev.Bytes
			m.push(ui.IconBullet + " " + ev.Path)
		}

	case engine.EventDone:
		m.phase = phaseDone
		m.result = ev.Result
		return m, tea.Quit
	}

	return m, waitForEvent(m.run.Events())
}

func (m *CleanModel) push(line string) {
	m.recent = append(m.recent, line)
	if len(m.recent) > recentLines {
		m.recent = m.recent[len(m.recent)-recentLines:]
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
