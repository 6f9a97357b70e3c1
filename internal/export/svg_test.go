package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHeatmapSVG(t *testing.T) {
	g := mat.NewDense(2, 3, []float64{
		0, 50, 100,
		100, 50, 0,
	})

	svg := HeatmapSVG(g, 4.0)
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing xml prolog")
	}
	if !strings.Contains(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="12" height="8"`) {
		t.Errorf("unexpected dimensions in: %.120s", svg)
	}
	// Background + one rect per node.
	if got := strings.Count(svg, "<rect"); got != 7 {
		t.Errorf("expected 7 rects, got %d", got)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated svg")
	}
}

func TestHeatmapSVGUniformField(t *testing.T) {
	g := mat.NewDense(2, 2, []float64{5, 5, 5, 5})
	svg := HeatmapSVG(g, 2.0)
	// A flat field must not divide by its zero range.
	if !strings.Contains(svg, "</svg>") {
		t.Error("render failed on a uniform field")
	}
}

func TestWriteHeatmapSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.svg")
	g := mat.NewDense(2, 2, []float64{0, 1, 2, 3})
	if err := WriteHeatmapSVG(path, g, 3.0); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("file does not contain svg markup")
	}
}
