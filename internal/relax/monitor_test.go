package relax

import "testing"

func TestMonitorDone(t *testing.T) {
	m := Monitor{Delta: 1e-3, MaxIters: 100}

	tests := []struct {
		name      string
		epochs    int
		maxChange float64
		want      bool
	}{
		{"below threshold", 5, 1e-4, true},
		{"at threshold", 5, 1e-3, false},
		{"cap reached", 100, 1.0, true},
		{"past cap", 250, 1.0, true},
		{"neither", 5, 1.0, false},
		{"both", 100, 1e-9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Done(tt.epochs, tt.maxChange); got != tt.want {
				t.Errorf("Done(%d, %g) = %v, want %v", tt.epochs, tt.maxChange, got, tt.want)
			}
		})
	}
}

func TestMonitorIdempotent(t *testing.T) {
	m := Monitor{Delta: 1e-3, MaxIters: 100}

	// Asking again about a terminal state re-confirms termination.
	for i := 0; i < 3; i++ {
		if !m.Done(42, 1e-6) {
			t.Fatal("terminal state stopped being terminal")
		}
	}
}
