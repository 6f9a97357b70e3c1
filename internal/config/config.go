package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatlab/internal/problem"
	"github.com/san-kum/heatlab/internal/relax"
)

// Defaults reproduce the paradise plate: a 9 ft square cross-section,
// 3 ft hot square at 212 F, 32 F bath over the lower 4 ft of the walls.
const (
	DefaultN            = 241
	DefaultLength       = 9.0
	DefaultInnerSize    = 3.0
	DefaultTTop         = 100.0
	DefaultTBottom      = 32.0
	DefaultTInner       = 212.0
	DefaultInitGuess    = 90.0
	DefaultBathFraction = 4.0 / 9.0
	DefaultDelta        = 1e-3
	DefaultMaxIters     = 2_000_000
	DefaultReportEvery  = 500
	DefaultSnapEvery    = 500
	DefaultOutDir       = "paradise_series"
	DefaultPrefix       = "full_structured"
)

type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Temps  TempConfig   `yaml:"temps"`
	Bath   BathConfig   `yaml:"bath"`
	Solve  SolveConfig  `yaml:"solve"`
	Output OutputConfig `yaml:"output"`
}

type GridConfig struct {
	N         int     `yaml:"n"`
	Length    float64 `yaml:"length"`
	InnerSize float64 `yaml:"inner_size"`
}

type TempConfig struct {
	Top       float64 `yaml:"top"`
	Bottom    float64 `yaml:"bottom"`
	Inner     float64 `yaml:"inner"`
	InitGuess float64 `yaml:"init_guess"`
}

type BathConfig struct {
	// Height wins over Fraction when set.
	Height   *float64 `yaml:"height"`
	Fraction float64  `yaml:"fraction"`
}

type SolveConfig struct {
	Delta       float64 `yaml:"delta"`
	MaxIters    int     `yaml:"max_iters"`
	ReportEvery int     `yaml:"report_every"`
	SnapEvery   int     `yaml:"snap_every"`
}

type OutputConfig struct {
	// Dir overrides the run store's snapshot directory when set.
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			N:         DefaultN,
			Length:    DefaultLength,
			InnerSize: DefaultInnerSize,
		},
		Temps: TempConfig{
			Top:       DefaultTTop,
			Bottom:    DefaultTBottom,
			Inner:     DefaultTInner,
			InitGuess: DefaultInitGuess,
		},
		Bath: BathConfig{
			Fraction: DefaultBathFraction,
		},
		Solve: SolveConfig{
			Delta:       DefaultDelta,
			MaxIters:    DefaultMaxIters,
			ReportEvery: DefaultReportEvery,
			SnapEvery:   DefaultSnapEvery,
		},
		Output: OutputConfig{
			Prefix: DefaultPrefix,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ProblemSpec maps the config onto the builder's parameters.
func (c *Config) ProblemSpec() problem.Spec {
	return problem.Spec{
		N:            c.Grid.N,
		Length:       c.Grid.Length,
		InnerSize:    c.Grid.InnerSize,
		TTop:         c.Temps.Top,
		TBottom:      c.Temps.Bottom,
		TInner:       c.Temps.Inner,
		InitGuess:    c.Temps.InitGuess,
		BathHeight:   c.Bath.Height,
		BathFraction: c.Bath.Fraction,
	}
}

// SolverOptions maps the config onto the relaxation loop's options.
func (c *Config) SolverOptions() relax.Options {
	return relax.Options{
		Delta:       c.Solve.Delta,
		MaxIters:    c.Solve.MaxIters,
		ReportEvery: c.Solve.ReportEvery,
		SnapEvery:   c.Solve.SnapEvery,
	}
}
