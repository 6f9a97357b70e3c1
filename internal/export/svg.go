package export

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// HeatmapSVG renders a full-domain field as an SVG raster, one square of
// side cell per grid node, cold-to-hot color ramp over the field's own
// value range. Row 0 is the bottom of the plate, so rows are flipped
// into screen coordinates.
func HeatmapSVG(full *mat.Dense, cell float64) string {
	rows, cols := full.Dims()
	lo, hi := valueRange(full)

	width := float64(cols) * cell
	height := float64(rows) * cell

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for j := 0; j < rows; j++ {
		row := full.RawRowView(j)
		y := float64(rows-1-j) * cell
		for i := 0; i < cols; i++ {
			t := 0.0
			if hi > lo {
				t = (row[i] - lo) / (hi - lo)
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(i)*cell, y, cell, cell, rampHex(t)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteHeatmapSVG renders full to path.
func WriteHeatmapSVG(path string, full *mat.Dense, cell float64) error {
	return os.WriteFile(path, []byte(HeatmapSVG(full, cell)), 0644)
}

func valueRange(m *mat.Dense) (lo, hi float64) {
	rows, cols := m.Dims()
	lo, hi = m.At(0, 0), m.At(0, 0)
	for j := 0; j < rows; j++ {
		row := m.RawRowView(j)
		for i := 0; i < cols; i++ {
			if row[i] < lo {
				lo = row[i]
			}
			if row[i] > hi {
				hi = row[i]
			}
		}
	}
	return lo, hi
}

// rampHex maps t in [0,1] from deep blue through pale to red.
func rampHex(t float64) string {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	var r, g, b int
	if t < 0.5 {
		u := t * 2
		r = lerpByte(0x1b, 0xf2, u)
		g = lerpByte(0x3b, 0xe8, u)
		b = lerpByte(0xa6, 0xd5, u)
	} else {
		u := (t - 0.5) * 2
		r = lerpByte(0xf2, 0xd6, u)
		g = lerpByte(0xe8, 0x2a, u)
		b = lerpByte(0xd5, 0x1f, u)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func lerpByte(a, b int, t float64) int {
	return a + int(t*float64(b-a))
}
