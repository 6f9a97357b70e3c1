package config

// Presets are ready-made plate configurations. "paradise" is the full
// resolution problem the defaults describe, writing its series to the
// classic flat directory; the others are quick runs for inspection and
// testing.
var Presets = map[string]*Config{
	"paradise": paradisePreset(),
	"coarse": {
		Grid:  GridConfig{N: 81, Length: 9.0, InnerSize: 3.0},
		Temps: TempConfig{Top: 100, Bottom: 32, Inner: 212, InitGuess: 90},
		Bath:  BathConfig{Fraction: 4.0 / 9.0},
		Solve: SolveConfig{
			Delta:       1e-3,
			MaxIters:    200_000,
			ReportEvery: 100,
			SnapEvery:   500,
		},
		Output: OutputConfig{Prefix: DefaultPrefix},
	},
	"gradient": {
		// No hot square, bath drained: converges to a pure vertical
		// gradient, useful as a sanity check.
		Grid:  GridConfig{N: 41, Length: 1.0, InnerSize: 0},
		Temps: TempConfig{Top: 100, Bottom: 0, Inner: 50, InitGuess: 50},
		Bath:  BathConfig{Height: float64Ptr(0)},
		Solve: SolveConfig{
			Delta:       1e-6,
			MaxIters:    100_000,
			ReportEvery: 100,
			SnapEvery:   1000,
		},
		Output: OutputConfig{Prefix: DefaultPrefix},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

func paradisePreset() *Config {
	cfg := DefaultConfig()
	cfg.Output.Dir = DefaultOutDir
	return cfg
}

func float64Ptr(v float64) *float64 { return &v }
