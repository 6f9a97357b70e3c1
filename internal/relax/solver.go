// Package relax runs Jacobi relaxation of the Laplace equation over the
// half-domain assembled by the problem package.
package relax

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/heatlab/internal/field"
	"github.com/san-kum/heatlab/internal/problem"
)

// Exporter receives mirrored full-domain snapshots. ExportSnapshot is
// called at the snapshot cadence with the epoch that produced the field;
// ExportFinal is called exactly once when the solve terminates.
type Exporter interface {
	ExportSnapshot(full *mat.Dense, length float64, epoch int) error
	ExportFinal(full *mat.Dense, length float64) error
}

// Reporter receives progress at the reporting cadence. Purely
// observational; the solver ignores anything a reporter does.
type Reporter interface {
	Report(epoch int, maxChange float64)
}

// Options controls termination and collaborator cadences.
type Options struct {
	Delta       float64 // stop when the sweep's max change drops below this
	MaxIters    int     // hard cap on sweeps, safety fuse against non-convergence
	ReportEvery int
	SnapEvery   int
}

func DefaultOptions() Options {
	return Options{
		Delta:       1e-3,
		MaxIters:    2_000_000,
		ReportEvery: 500,
		SnapEvery:   500,
	}
}

// Result is the terminal state of a solve. Reaching MaxIters without
// meeting Delta is a normal return; check Converged.
type Result struct {
	Grid      *mat.Dense // final half-domain field
	Epochs    int
	MaxChange float64
	Converged bool
}

// Solver owns the grid for the duration of a solve and drives the sweep
// loop. Collaborators are invoked synchronously from the loop.
type Solver struct {
	prob      *problem.Problem
	variable  *field.Mask
	exporters []Exporter
	reporters []Reporter
}

func New(p *problem.Problem) *Solver {
	return &Solver{prob: p, variable: VariableMask(p)}
}

func (s *Solver) AddExporter(e Exporter) { s.exporters = append(s.exporters, e) }
func (s *Solver) AddReporter(r Reporter) { s.reporters = append(s.reporters, r) }

// FreeCells reports how many cells the sweep actually updates.
func (s *Solver) FreeCells() int { return s.variable.Count() }

// VariableMask derives the updatable cells: everything not Dirichlet,
// minus the symmetry column, the bottom and top rows and the outer wall
// column, which are governed by their own boundary rules.
func VariableMask(p *problem.Problem) *field.Mask {
	rows, cols := p.Grid.Dims()
	v := field.NewMask(rows, cols)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			v.Set(j, i, !p.Fixed.At(j, i))
		}
	}
	v.SetRect(0, rows-1, 0, 0, false)
	v.SetRect(0, 0, 0, cols-1, false)
	v.SetRect(rows-1, rows-1, 0, cols-1, false)
	v.SetRect(0, rows-1, cols-1, cols-1, false)
	return v
}

// Run sweeps until the max per-cell change drops below Delta or the
// epoch count reaches MaxIters, whichever happens first. Either exit
// path mirrors the field and hands it to every exporter as the final
// snapshot, independent of the snapshot cadence.
//
// Each sweep reads neighbor values exclusively from the previous iterate
// (two buffers, swapped per epoch). The write order within a sweep is
// fixed: masked neighbor averages, then the symmetry copy into column 0,
// then re-assertion of the Dirichlet cells. The change metric is taken
// over updatable cells only and is 0 when there are none.
func (s *Solver) Run(opts Options) (*Result, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	rows, cols := s.prob.Grid.Dims()
	cur := mat.DenseCopyOf(s.prob.Grid)
	next := mat.NewDense(rows, cols, nil)
	// Dirichlet cells keep the builder's values for the whole run.
	pinned := mat.DenseCopyOf(s.prob.Grid)

	monitor := Monitor{Delta: opts.Delta, MaxIters: opts.MaxIters}
	epochs := 0

	for {
		next.Copy(cur)

		for j := 1; j < rows-1; j++ {
			above := cur.RawRowView(j - 1)
			row := cur.RawRowView(j)
			below := cur.RawRowView(j + 1)
			out := next.RawRowView(j)
			for i := 1; i < cols-1; i++ {
				if !s.variable.At(j, i) {
					continue
				}
				out[i] = 0.25 * (above[i] + below[i] + row[i-1] + row[i+1])
			}
		}

		// Zero-gradient condition at the mirror axis.
		if cols > 1 {
			for j := 0; j < rows; j++ {
				next.Set(j, 0, next.At(j, 1))
			}
		}

		for j := 0; j < rows; j++ {
			for i := 0; i < cols; i++ {
				if s.prob.Fixed.At(j, i) {
					next.Set(j, i, pinned.At(j, i))
				}
			}
		}

		maxChange := field.MaxAbsDiff(next, cur, s.variable)

		cur, next = next, cur
		epochs++

		if epochs%opts.ReportEvery == 0 {
			for _, r := range s.reporters {
				r.Report(epochs, maxChange)
			}
		}
		if epochs%opts.SnapEvery == 0 {
			full := field.Mirror(cur)
			for _, e := range s.exporters {
				if err := e.ExportSnapshot(full, s.prob.Length, epochs); err != nil {
					return nil, fmt.Errorf("snapshot at epoch %d: %w", epochs, err)
				}
			}
		}

		if monitor.Done(epochs, maxChange) {
			full := field.Mirror(cur)
			for _, e := range s.exporters {
				if err := e.ExportFinal(full, s.prob.Length); err != nil {
					return nil, fmt.Errorf("final snapshot: %w", err)
				}
			}
			return &Result{
				Grid:      cur,
				Epochs:    epochs,
				MaxChange: maxChange,
				Converged: maxChange < opts.Delta,
			}, nil
		}
	}
}

func validateOptions(opts Options) error {
	if opts.Delta < 0 {
		return fmt.Errorf("delta must be non-negative, got %g", opts.Delta)
	}
	if opts.MaxIters < 1 {
		return fmt.Errorf("max iters must be at least 1, got %d", opts.MaxIters)
	}
	if opts.ReportEvery < 1 {
		return fmt.Errorf("report cadence must be at least 1, got %d", opts.ReportEvery)
	}
	if opts.SnapEvery < 1 {
		return fmt.Errorf("snapshot cadence must be at least 1, got %d", opts.SnapEvery)
	}
	return nil
}
