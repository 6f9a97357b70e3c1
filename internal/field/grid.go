package field

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewGrid returns a rows x cols grid with every cell set to value.
func NewGrid(rows, cols int, value float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = value
	}
	return mat.NewDense(rows, cols, data)
}

// Mask marks a subset of grid cells, one flag per cell, row-major.
type Mask struct {
	rows, cols int
	cells      []bool
}

func NewMask(rows, cols int) *Mask {
	return &Mask{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

func (m *Mask) Rows() int { return m.rows }
func (m *Mask) Cols() int { return m.cols }

func (m *Mask) At(row, col int) bool {
	return m.cells[row*m.cols+col]
}

func (m *Mask) Set(row, col int, v bool) {
	m.cells[row*m.cols+col] = v
}

// SetRect marks the inclusive block [rowLow..rowHigh] x [colLow..colHigh],
// clipped to the mask bounds.
func (m *Mask) SetRect(rowLow, rowHigh, colLow, colHigh int, v bool) {
	if rowLow < 0 {
		rowLow = 0
	}
	if colLow < 0 {
		colLow = 0
	}
	if rowHigh > m.rows-1 {
		rowHigh = m.rows - 1
	}
	if colHigh > m.cols-1 {
		colHigh = m.cols - 1
	}
	for j := rowLow; j <= rowHigh; j++ {
		for i := colLow; i <= colHigh; i++ {
			m.cells[j*m.cols+i] = v
		}
	}
}

// Any reports whether at least one cell is marked.
func (m *Mask) Any() bool {
	for _, c := range m.cells {
		if c {
			return true
		}
	}
	return false
}

// Count returns the number of marked cells.
func (m *Mask) Count() int {
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return n
}

// Mirror reconstructs the full symmetric field from its right half. The
// half grid's first column is the centerline and appears once in the
// output, so the full width is 2*cols-1 and always odd. The result is
// symmetric about its center column.
func Mirror(half *mat.Dense) *mat.Dense {
	rows, cols := half.Dims()
	full := mat.NewDense(rows, 2*cols-1, nil)
	for j := 0; j < rows; j++ {
		src := half.RawRowView(j)
		dst := full.RawRowView(j)
		for i := 0; i < cols; i++ {
			dst[cols-1+i] = src[i]
			dst[cols-1-i] = src[i]
		}
	}
	return full
}

// MaxAbsDiff returns the largest |a-b| over the cells marked in m, or 0
// when no cell is marked. Shapes of a, b and m must agree.
func MaxAbsDiff(a, b *mat.Dense, m *Mask) float64 {
	rows, cols := a.Dims()
	max := 0.0
	for j := 0; j < rows; j++ {
		ra := a.RawRowView(j)
		rb := b.RawRowView(j)
		for i := 0; i < cols; i++ {
			if !m.At(j, i) {
				continue
			}
			if d := math.Abs(ra[i] - rb[i]); d > max {
				max = d
			}
		}
	}
	return max
}
