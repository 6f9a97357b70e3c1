package problem

import (
	"math"
	"testing"
)

func testSpec() Spec {
	return Spec{
		N:            9,
		Length:       8.0,
		InnerSize:    4.0,
		TTop:         100,
		TBottom:      32,
		TInner:       212,
		InitGuess:    90,
		BathFraction: 0.5,
	}
}

func TestBuildShapeAndSpacing(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		length float64
		nxHalf int
		hy     float64
		hx     float64
	}{
		{"odd 9", 9, 8.0, 5, 1.0, 1.0},
		{"odd 5", 5, 1.0, 3, 0.25, 0.25},
		{"odd 241", 241, 9.0, 121, 9.0 / 240, 0.0375},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSpec()
			s.N = tt.n
			s.Length = tt.length
			p := s.Build()

			rows, cols := p.Grid.Dims()
			if rows != tt.n || cols != tt.nxHalf {
				t.Errorf("expected %dx%d, got %dx%d", tt.n, tt.nxHalf, rows, cols)
			}
			if math.Abs(p.Hy-tt.hy) > 1e-12 {
				t.Errorf("hy = %f, want %f", p.Hy, tt.hy)
			}
			if math.Abs(p.Hx-tt.hx) > 1e-12 {
				t.Errorf("hx = %f, want %f", p.Hx, tt.hx)
			}
		})
	}
}

func TestBuildTopBottomFixed(t *testing.T) {
	p := testSpec().Build()
	rows, cols := p.Grid.Dims()

	for i := 0; i < cols; i++ {
		if !p.Fixed.At(0, i) || !p.Fixed.At(rows-1, i) {
			t.Fatalf("boundary rows must be fixed at column %d", i)
		}
	}
	if got := p.Grid.At(rows-1, 2); got != 100 {
		t.Errorf("top row = %f, want 100", got)
	}
	if got := p.Grid.At(0, 3); got != 32 {
		t.Errorf("bottom row = %f, want 32", got)
	}
}

func TestWallProfile(t *testing.T) {
	s := testSpec() // bath to mid-height: y0 = 4
	p := s.Build()
	rows, cols := p.Grid.Dims()
	wall := cols - 1

	for j := 0; j < rows; j++ {
		y := float64(j) * p.Hy
		want := 32.0
		if y > 4 {
			want = 32 + (100-32)*(y-4)/(8-4)
		}
		if got := p.Grid.At(j, wall); math.Abs(got-want) > 1e-12 {
			t.Errorf("wall row %d: %f, want %f", j, got, want)
		}
		if !p.Fixed.At(j, wall) {
			t.Errorf("wall row %d should be fixed", j)
		}
	}
}

func TestWallProfileDrainedBath(t *testing.T) {
	s := testSpec()
	h := 0.0
	s.BathHeight = &h
	p := s.Build()
	rows, cols := p.Grid.Dims()

	// Linear from bottom to top along the whole wall.
	for j := 0; j < rows; j++ {
		y := float64(j) * p.Hy
		want := 32 + (100-32)*y/8
		if got := p.Grid.At(j, cols-1); math.Abs(got-want) > 1e-12 {
			t.Errorf("wall row %d: %f, want %f", j, got, want)
		}
	}
}

func TestBathHeightClamped(t *testing.T) {
	s := testSpec()
	h := 100.0 // far above the plate
	s.BathHeight = &h
	p := s.Build()
	rows, cols := p.Grid.Dims()

	// Clamped to the plate height: the entire wall sits in the bath.
	for j := 0; j < rows; j++ {
		if got := p.Grid.At(j, cols-1); got != 32 {
			t.Errorf("wall row %d: %f, want 32", j, got)
		}
	}

	s2 := testSpec()
	h2 := -3.0
	s2.BathHeight = &h2
	p2 := s2.Build()
	// Clamped to 0: same as a drained bath.
	y := 1 * p2.Hy
	want := 32 + (100-32)*y/8
	if got := p2.Grid.At(1, 4); math.Abs(got-want) > 1e-12 {
		t.Errorf("drained wall row 1: %f, want %f", got, want)
	}
}

func TestBathAtFullHeightKeepsWallInBath(t *testing.T) {
	// hy*(ny-1) can land one ulp above Length; the whole wall must still
	// read as submerged instead of dividing by a zero dry span.
	s := Spec{
		N:         15,
		Length:    0.9,
		InnerSize: 0.3,
		TTop:      100,
		TBottom:   32,
		TInner:    212,
		InitGuess: 90,
	}
	h := 0.9
	s.BathHeight = &h
	p := s.Build()

	rows, cols := p.Grid.Dims()
	for j := 0; j < rows; j++ {
		if got := p.Grid.At(j, cols-1); got != 32 {
			t.Errorf("wall row %d: %f, want 32", j, got)
		}
	}

	s2 := s
	s2.BathHeight = nil
	s2.BathFraction = 1.0
	p2 := s2.Build()
	if got := p2.Grid.At(rows-1, cols-1); got != 32 {
		t.Errorf("full-fraction wall top: %f, want 32", got)
	}
}

func TestInnerBlockExtent(t *testing.T) {
	p := testSpec().Build()
	// N=9, L=8, inner 4: rows round((4-2)/1)=2 .. round((4+2)/1)=6,
	// cols 0 .. round(2/1)=2.
	for j := 2; j <= 6; j++ {
		for i := 0; i <= 2; i++ {
			if got := p.Grid.At(j, i); got != 212 {
				t.Errorf("block cell (%d,%d) = %f, want 212", j, i, got)
			}
			if !p.Fixed.At(j, i) {
				t.Errorf("block cell (%d,%d) should be fixed", j, i)
			}
		}
	}
	if p.Fixed.At(1, 1) || p.Fixed.At(7, 1) || p.Fixed.At(3, 3) {
		t.Error("cells adjacent to the block should not be fixed")
	}
}

func TestZeroInnerSizePinsCenterline(t *testing.T) {
	s := testSpec()
	s.InnerSize = 0
	p := s.Build()

	// Degenerate block: the single centerline cell at mid-height.
	if !p.Fixed.At(4, 0) {
		t.Error("expected the mid-height centerline cell to be fixed")
	}
	if p.Fixed.At(4, 1) || p.Fixed.At(3, 0) || p.Fixed.At(5, 0) {
		t.Error("zero-size block must not extend beyond one cell")
	}
}

func TestInteriorKeepsInitGuess(t *testing.T) {
	p := testSpec().Build()
	if got := p.Grid.At(1, 1); got != 90 {
		t.Errorf("interior cell = %f, want the initial guess 90", got)
	}
	if p.Fixed.At(1, 1) {
		t.Error("interior cell must not be fixed")
	}
}
