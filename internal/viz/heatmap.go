// Package viz renders temperature fields and convergence traces for the
// terminal.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))
)

// Heatmap renders the field as colored cells, downsampled to at most
// width x height character cells. Grid row 0 is the bottom of the plate,
// so the last grid row prints first. Two characters per cell keep the
// aspect roughly square.
func Heatmap(g *mat.Dense, width, height int) string {
	rows, cols := g.Dims()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width > cols {
		width = cols
	}
	if height > rows {
		height = rows
	}

	lo, hi := fieldRange(g)

	var sb strings.Builder
	for r := height - 1; r >= 0; r-- {
		j := r * (rows - 1) / max(height-1, 1)
		for c := 0; c < width; c++ {
			i := c * (cols - 1) / max(width-1, 1)
			t := 0.0
			if hi > lo {
				t = (g.At(j, i) - lo) / (hi - lo)
			}
			style := lipgloss.NewStyle().Foreground(rampColor(t))
			sb.WriteString(style.Render("██"))
		}
		if r > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Sparkline renders values as a one-line trace sampled to fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var sb strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func fieldRange(m *mat.Dense) (lo, hi float64) {
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

// rampColor maps t in [0,1] onto a cold-to-hot ANSI color ramp.
func rampColor(t float64) lipgloss.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	var r, g, b int
	if t < 0.5 {
		u := t * 2
		r = lerp(0x1b, 0xf2, u)
		g = lerp(0x3b, 0xe8, u)
		b = lerp(0xa6, 0xd5, u)
	} else {
		u := (t - 0.5) * 2
		r = lerp(0xf2, 0xd6, u)
		g = lerp(0xe8, 0x2a, u)
		b = lerp(0xd5, 0x1f, u)
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

func lerp(a, b int, t float64) int {
	return a + int(t*float64(b-a))
}
