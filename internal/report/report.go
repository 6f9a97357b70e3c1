// Package report provides the solver's progress reporters.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Console prints one line per report, matching the classic solver
// output.
type Console struct {
	Out io.Writer
}

func NewConsole() *Console {
	return &Console{Out: os.Stdout}
}

func (c *Console) Report(epoch int, maxChange float64) {
	fmt.Fprintf(c.Out, "epoch %d | max_change=%.6f\n", epoch, maxChange)
}

// Log emits structured progress entries.
type Log struct {
	logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Log{logger: logger}
}

func (l *Log) Report(epoch int, maxChange float64) {
	l.logger.WithFields(logrus.Fields{
		"epoch":      epoch,
		"max_change": maxChange,
	}).Info("relaxation progress")
}

// History records every report for later plotting.
type History struct {
	Epochs  []int
	Changes []float64
}

func (h *History) Report(epoch int, maxChange float64) {
	h.Epochs = append(h.Epochs, epoch)
	h.Changes = append(h.Changes, maxChange)
}

func (h *History) Len() int { return len(h.Epochs) }
