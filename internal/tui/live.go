// Package tui provides a live terminal view of a running solve: epoch
// counter, convergence trace and a heatmap of the latest snapshot.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/heatlab/internal/problem"
	"github.com/san-kum/heatlab/internal/relax"
	"github.com/san-kum/heatlab/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type progressMsg struct {
	epoch     int
	maxChange float64
}

type frameMsg struct {
	full  *mat.Dense
	epoch int
	final bool
}

type doneMsg struct {
	res *relax.Result
	err error
}

// watchReporter forwards progress into the TUI without ever blocking
// the solver loop.
type watchReporter struct {
	ch chan tea.Msg
}

func (w watchReporter) Report(epoch int, maxChange float64) {
	select {
	case w.ch <- progressMsg{epoch: epoch, maxChange: maxChange}:
	default:
	}
}

type watchExporter struct {
	ch chan tea.Msg
}

func (w watchExporter) ExportSnapshot(full *mat.Dense, _ float64, epoch int) error {
	select {
	case w.ch <- frameMsg{full: full, epoch: epoch}:
	default:
	}
	return nil
}

func (w watchExporter) ExportFinal(full *mat.Dense, _ float64) error {
	select {
	case w.ch <- frameMsg{full: full, final: true}:
	default:
	}
	return nil
}

type liveModel struct {
	updates chan tea.Msg
	opts    relax.Options

	epoch     int
	maxChange float64
	history   []float64
	frame     *mat.Dense
	done      bool
	res       *relax.Result
	err       error

	width  int
	height int
}

func waitForUpdate(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m liveModel) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case progressMsg:
		m.epoch = msg.epoch
		m.maxChange = msg.maxChange
		m.history = append(m.history, logChange(msg.maxChange))
		return m, waitForUpdate(m.updates)
	case frameMsg:
		m.frame = msg.full
		return m, waitForUpdate(m.updates)
	case doneMsg:
		m.done = true
		m.res = msg.res
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m liveModel) View() string {
	var sb strings.Builder
	sb.WriteString(cyan.Render("heatlab") + dim.Render("  jacobi relaxation") + "\n\n")

	progress := float64(m.epoch) / float64(m.opts.MaxIters)
	sb.WriteString(fmt.Sprintf("  %s %d\n", dim.Render("epoch"), m.epoch))
	sb.WriteString(fmt.Sprintf("  %s %.6f  %s %g\n",
		dim.Render("max_change"), m.maxChange,
		dim.Render("target"), m.opts.Delta))
	sb.WriteString(fmt.Sprintf("  %s %.2f%%\n\n", dim.Render("of cap"), progress*100))

	if len(m.history) > 1 {
		sb.WriteString("  " + dim.Render("log10 max_change") + "\n")
		sb.WriteString("  " + yellow.Render(viz.Sparkline(m.history, 60)) + "\n\n")
	}

	if m.frame != nil {
		sb.WriteString(indent(viz.Heatmap(m.frame, 30, 15), "  ") + "\n\n")
	}

	if m.done {
		if m.res != nil && m.res.Converged {
			sb.WriteString("  " + green.Render("converged") + "\n")
		} else {
			sb.WriteString("  " + yellow.Render("stopped at iteration cap") + "\n")
		}
	} else {
		sb.WriteString("  " + dim.Render("q to quit") + "\n")
	}
	return sb.String()
}

// Run solves p while displaying live progress. Any extra exporter (e.g.
// the CSV snapshot writer) runs alongside the view.
func Run(p *problem.Problem, opts relax.Options, extra relax.Exporter) (*relax.Result, error) {
	updates := make(chan tea.Msg, 128)

	solver := relax.New(p)
	solver.AddReporter(watchReporter{ch: updates})
	solver.AddExporter(watchExporter{ch: updates})
	if extra != nil {
		solver.AddExporter(extra)
	}

	go func() {
		res, err := solver.Run(opts)
		updates <- doneMsg{res: res, err: err}
	}()

	final, err := tea.NewProgram(liveModel{updates: updates, opts: opts}).Run()
	if err != nil {
		return nil, err
	}

	m := final.(liveModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.res == nil {
		return nil, fmt.Errorf("view closed before the solve finished")
	}
	return m.res, nil
}

func logChange(v float64) float64 {
	if v <= 0 {
		return -16
	}
	return math.Log10(v)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
