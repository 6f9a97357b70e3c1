// Package export writes mirrored full-domain fields to disk: structured
// CSV tables consumable by ParaView and SVG heatmaps for quick viewing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// CSV writes one structured table per snapshot into Dir. Periodic
// snapshots are named <Prefix>_<epoch zero-padded to 6>.csv; the
// terminal snapshot is <Prefix>_final.csv.
type CSV struct {
	Dir    string
	Prefix string
}

func NewCSV(dir, prefix string) *CSV {
	return &CSV{Dir: dir, Prefix: prefix}
}

func (e *CSV) ExportSnapshot(full *mat.Dense, length float64, epoch int) error {
	return e.write(fmt.Sprintf("%s_%06d.csv", e.Prefix, epoch), full, length)
}

func (e *CSV) ExportFinal(full *mat.Dense, length float64) error {
	return e.write(e.Prefix+"_final.csv", full, length)
}

func (e *CSV) write(name string, full *mat.Dense, length float64) error {
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(e.Dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteStructured(f, full, length)
}

// WriteStructured emits one record per grid node in row-major order
// (row j outer, column i inner): i, j, k=0, x, y, Temperature. Physical
// coordinates span 0..length along both axes, so the spacing is
// length/(dim-1) per axis.
func WriteStructured(w io.Writer, full *mat.Dense, length float64) error {
	rows, cols := full.Dims()
	hx, hy := 0.0, 0.0
	if cols > 1 {
		hx = length / float64(cols-1)
	}
	if rows > 1 {
		hy = length / float64(rows-1)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"i", "j", "k", "x", "y", "Temperature"}); err != nil {
		return err
	}
	for j := 0; j < rows; j++ {
		y := float64(j) * hy
		row := full.RawRowView(j)
		for i := 0; i < cols; i++ {
			rec := []string{
				strconv.Itoa(i),
				strconv.Itoa(j),
				"0",
				strconv.FormatFloat(float64(i)*hx, 'g', -1, 64),
				strconv.FormatFloat(y, 'g', -1, 64),
				strconv.FormatFloat(row[i], 'g', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadStructured parses a table produced by WriteStructured back into a
// full grid and the domain length it was written with.
func ReadStructured(r io.Reader) (*mat.Dense, float64, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) < 2 {
		return nil, 0, fmt.Errorf("structured table has no records")
	}

	maxI, maxJ := 0, 0
	length := 0.0
	type node struct {
		i, j int
		v    float64
	}
	nodes := make([]node, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, 0, fmt.Errorf("short record: %v", rec)
		}
		i, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, 0, err
		}
		j, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, 0, err
		}
		y, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, 0, err
		}
		v, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, 0, err
		}
		if i > maxI {
			maxI = i
		}
		if j > maxJ {
			maxJ = j
		}
		if y > length {
			length = y
		}
		nodes = append(nodes, node{i: i, j: j, v: v})
	}

	full := mat.NewDense(maxJ+1, maxI+1, nil)
	for _, n := range nodes {
		full.Set(n.j, n.i, n.v)
	}
	return full, length, nil
}
