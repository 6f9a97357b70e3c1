package viz

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHeatmapDimensions(t *testing.T) {
	g := mat.NewDense(10, 10, nil)
	for j := 0; j < 10; j++ {
		for i := 0; i < 10; i++ {
			g.Set(j, i, float64(j*10+i))
		}
	}

	out := Heatmap(g, 8, 5)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
}

func TestHeatmapClampsToGridSize(t *testing.T) {
	g := mat.NewDense(3, 3, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8})
	out := Heatmap(g, 100, 100)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines for a 3-row grid, got %d", len(lines))
	}
}

func TestHeatmapUniformField(t *testing.T) {
	g := mat.NewDense(4, 4, nil)
	// A flat field must render without dividing by its zero range.
	out := Heatmap(g, 4, 4)
	if out == "" {
		t.Error("expected non-empty output")
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	runes := []rune(out)
	if len(runes) != 8 {
		t.Fatalf("expected 8 runes, got %d", len(runes))
	}
	if runes[0] != '▁' || runes[7] != '█' {
		t.Errorf("expected ramp from lowest to highest, got %q", out)
	}
}

func TestSparklineEmpty(t *testing.T) {
	out := Sparkline(nil, 5)
	if out != "─────" {
		t.Errorf("expected placeholder line, got %q", out)
	}
}

func TestSparklineFlat(t *testing.T) {
	out := Sparkline([]float64{2, 2, 2}, 3)
	if len([]rune(out)) != 3 {
		t.Errorf("expected 3 runes, got %q", out)
	}
}
