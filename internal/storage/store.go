// Package storage keeps solve runs on disk: one directory per run with
// metadata, the convergence history and the snapshot series.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/heatlab/internal/export"
	"github.com/san-kum/heatlab/internal/problem"
	"github.com/san-kum/heatlab/internal/relax"
)

// ErrRunNotFound is returned when a run id has no directory or metadata
// under the store.
var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	GridN        int      `json:"grid_n"`
	Length       float64  `json:"length"`
	InnerSize    float64  `json:"inner_size"`
	TTop         float64  `json:"t_top"`
	TBottom      float64  `json:"t_bottom"`
	TInner       float64  `json:"t_inner"`
	InitGuess    float64  `json:"init_guess"`
	BathHeight   *float64 `json:"bath_height,omitempty"`
	BathFraction float64  `json:"bath_fraction"`

	Delta       float64 `json:"delta"`
	MaxIters    int     `json:"max_iters"`
	ReportEvery int     `json:"report_every"`
	SnapEvery   int     `json:"snap_every"`

	// SnapshotDir is where the run's series was written; empty means the
	// store's own snapshots/ subdir.
	SnapshotDir string `json:"snapshot_dir,omitempty"`
	Prefix      string `json:"prefix"`

	Epochs    int     `json:"epochs"`
	MaxChange float64 `json:"max_change"`
	Converged bool    `json:"converged"`
	ElapsedMs int64   `json:"elapsed_ms"`
}

// NewRun allocates a run directory and returns its id.
func (s *Store) NewRun() (string, error) {
	runID := fmt.Sprintf("laplace_%d", time.Now().Unix())
	if err := os.MkdirAll(s.SnapshotDir(runID), 0755); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SnapshotDir is where the run's CSV snapshot series lives.
func (s *Store) SnapshotDir(runID string) string {
	return filepath.Join(s.baseDir, runID, "snapshots")
}

// SaveMetadata records the run's parameters and outcome. snapDir names
// the directory the snapshot series went to; pass "" for the store's
// default location.
func (s *Store) SaveMetadata(runID string, spec problem.Spec, opts relax.Options, snapDir, prefix string, res *relax.Result, elapsed time.Duration) error {
	meta := RunMetadata{
		ID:           runID,
		Timestamp:    time.Now(),
		GridN:        spec.N,
		Length:       spec.Length,
		InnerSize:    spec.InnerSize,
		TTop:         spec.TTop,
		TBottom:      spec.TBottom,
		TInner:       spec.TInner,
		InitGuess:    spec.InitGuess,
		BathHeight:   spec.BathHeight,
		BathFraction: spec.BathFraction,
		Delta:        opts.Delta,
		MaxIters:     opts.MaxIters,
		ReportEvery:  opts.ReportEvery,
		SnapEvery:    opts.SnapEvery,
		SnapshotDir:  snapDir,
		Prefix:       prefix,
		Epochs:       res.Epochs,
		MaxChange:    res.MaxChange,
		Converged:    res.Converged,
		ElapsedMs:    elapsed.Milliseconds(),
	}

	f, err := os.Create(filepath.Join(s.RunDir(runID), "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveHistory writes the (epoch, max_change) pairs sampled at the
// reporting cadence.
func (s *Store) SaveHistory(runID string, epochs []int, changes []float64) error {
	f, err := os.Create(filepath.Join(s.RunDir(runID), "history.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"epoch", "max_change"}); err != nil {
		return err
	}
	for i := range epochs {
		row := []string{
			strconv.Itoa(epochs[i]),
			strconv.FormatFloat(changes[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LoadHistory(runID string) ([]int, []float64, error) {
	f, err := os.Open(filepath.Join(s.RunDir(runID), "history.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	epochs := make([]int, 0, len(records))
	changes := make([]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		if len(records[i]) < 2 {
			continue
		}
		e, err := strconv.Atoi(records[i][0])
		if err != nil {
			continue
		}
		c, err := strconv.ParseFloat(records[i][1], 64)
		if err != nil {
			continue
		}
		epochs = append(epochs, e)
		changes = append(changes, c)
	}
	return epochs, changes, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// LoadFinal reads the run's terminal snapshot back into a full grid,
// from wherever the series was written.
func (s *Store) LoadFinal(runID string) (*mat.Dense, float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, 0, err
	}
	dir := meta.SnapshotDir
	if dir == "" {
		dir = s.SnapshotDir(runID)
	}
	f, err := os.Open(filepath.Join(dir, meta.Prefix+"_final.csv"))
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return export.ReadStructured(f)
}
