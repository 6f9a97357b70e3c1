package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/heatlab/internal/config"
	"github.com/san-kum/heatlab/internal/export"
	"github.com/san-kum/heatlab/internal/relax"
	"github.com/san-kum/heatlab/internal/report"
	"github.com/san-kum/heatlab/internal/server"
	"github.com/san-kum/heatlab/internal/storage"
	"github.com/san-kum/heatlab/internal/tui"
	"github.com/san-kum/heatlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	gridN        int
	length       float64
	innerSize    float64
	tTop         float64
	tBottom      float64
	tInner       float64
	initGuess    float64
	bathHeight   float64
	bathFraction float64

	delta       float64
	maxIters    int
	reportEvery int
	snapEvery   int

	outDir  string
	prefix  string
	logJSON bool
	quiet   bool

	// show / export-svg / serve
	mapWidth  int
	mapHeight int
	svgOut    string
	svgCell   float64
	addr      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "heatlab",
		Short: "steady-state 2d heat relaxation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve the plate and write the snapshot series",
		RunE:  runSolve,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().BoolVar(&logJSON, "log-json", false, "structured progress logging")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress output")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "render a run's final field in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&mapWidth, "width", 40, "heatmap width in cells")
	showCmd.Flags().IntVar(&mapHeight, "height", 20, "heatmap height in cells")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's convergence history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	infoCmd := &cobra.Command{
		Use:   "info [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  infoRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run's final field as an svg heatmap",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output path (default <run_id>.svg)")
	exportSVGCmd.Flags().Float64Var(&svgCell, "cell", 3.0, "svg cell size in px")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "solve with a live terminal view",
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "solve while streaming snapshots to websocket clients",
		RunE:  runServe,
	}
	addProblemFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(runCmd, presetsCmd, listCmd, showCmd, plotCmd, infoCmd, exportSVGCmd, liveCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	cmd.Flags().IntVar(&gridN, "n", config.DefaultN, "grid resolution per side")
	cmd.Flags().Float64Var(&length, "length", config.DefaultLength, "plate side length")
	cmd.Flags().Float64Var(&innerSize, "inner-size", config.DefaultInnerSize, "hot square side length")
	cmd.Flags().Float64Var(&tTop, "t-top", config.DefaultTTop, "top edge temperature")
	cmd.Flags().Float64Var(&tBottom, "t-bottom", config.DefaultTBottom, "bottom edge temperature")
	cmd.Flags().Float64Var(&tInner, "t-inner", config.DefaultTInner, "hot square temperature")
	cmd.Flags().Float64Var(&initGuess, "init-guess", config.DefaultInitGuess, "initial interior guess")
	cmd.Flags().Float64Var(&bathHeight, "bath-height", 0, "explicit bath height (overrides fraction)")
	cmd.Flags().Float64Var(&bathFraction, "bath-fraction", config.DefaultBathFraction, "bath height as fraction of length")

	cmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "convergence threshold")
	cmd.Flags().IntVar(&maxIters, "max-iters", config.DefaultMaxIters, "iteration cap")
	cmd.Flags().IntVar(&reportEvery, "report-every", config.DefaultReportEvery, "progress cadence in epochs")
	cmd.Flags().IntVar(&snapEvery, "snap-every", config.DefaultSnapEvery, "snapshot cadence in epochs")

	cmd.Flags().StringVar(&outDir, "out", "", "snapshot directory (default inside the run store)")
	cmd.Flags().StringVar(&prefix, "prefix", config.DefaultPrefix, "snapshot file prefix")
}

// resolveConfig layers preset, config file and explicit flags, in that
// order of increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("n") {
		cfg.Grid.N = gridN
	}
	if flags.Changed("length") {
		cfg.Grid.Length = length
	}
	if flags.Changed("inner-size") {
		cfg.Grid.InnerSize = innerSize
	}
	if flags.Changed("t-top") {
		cfg.Temps.Top = tTop
	}
	if flags.Changed("t-bottom") {
		cfg.Temps.Bottom = tBottom
	}
	if flags.Changed("t-inner") {
		cfg.Temps.Inner = tInner
	}
	if flags.Changed("init-guess") {
		cfg.Temps.InitGuess = initGuess
	}
	if flags.Changed("bath-height") {
		h := bathHeight
		cfg.Bath.Height = &h
	}
	if flags.Changed("bath-fraction") {
		cfg.Bath.Fraction = bathFraction
		cfg.Bath.Height = nil
	}
	if flags.Changed("delta") {
		cfg.Solve.Delta = delta
	}
	if flags.Changed("max-iters") {
		cfg.Solve.MaxIters = maxIters
	}
	if flags.Changed("report-every") {
		cfg.Solve.ReportEvery = reportEvery
	}
	if flags.Changed("snap-every") {
		cfg.Solve.SnapEvery = snapEvery
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("prefix") {
		cfg.Output.Prefix = prefix
	}

	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.NewRun()
	if err != nil {
		return err
	}

	snapDir := cfg.Output.Dir
	if snapDir == "" {
		snapDir = st.SnapshotDir(runID)
	}

	spec := cfg.ProblemSpec()
	prob := spec.Build()

	solver := relax.New(prob)
	hist := &report.History{}
	solver.AddReporter(hist)
	if !quiet {
		if logJSON {
			logger := logrus.New()
			logger.SetFormatter(&logrus.JSONFormatter{})
			solver.AddReporter(report.NewLog(logger))
		} else {
			solver.AddReporter(report.NewConsole())
		}
	}
	solver.AddExporter(export.NewCSV(snapDir, cfg.Output.Prefix))

	fmt.Printf("solving %dx%d half-domain (%d free cells)...\n", spec.N, spec.N/2+1, solver.FreeCells())
	start := time.Now()
	res, err := solver.Run(cfg.SolverOptions())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := st.SaveMetadata(runID, spec, cfg.SolverOptions(), cfg.Output.Dir, cfg.Output.Prefix, res, elapsed); err != nil {
		return err
	}
	if err := st.SaveHistory(runID, hist.Epochs, hist.Changes); err != nil {
		return err
	}

	printSummary(res, elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("snapshots: %s\n", snapDir)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	spec := cfg.ProblemSpec()
	prob := spec.Build()

	var extra relax.Exporter
	if cfg.Output.Dir != "" {
		extra = export.NewCSV(cfg.Output.Dir, cfg.Output.Prefix)
	}

	start := time.Now()
	res, err := tui.Run(prob, cfg.SolverOptions(), extra)
	if err != nil {
		return err
	}
	printSummary(res, time.Since(start))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := logrus.New()
	hub := server.NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := server.New(hub, addr, logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.WithError(err).Error("snapshot server stopped")
		}
	}()

	spec := cfg.ProblemSpec()
	prob := spec.Build()

	solver := relax.New(prob)
	solver.AddReporter(report.NewLog(logger))
	solver.AddExporter(server.NewSnapshotBroadcaster(hub))
	if cfg.Output.Dir != "" {
		solver.AddExporter(export.NewCSV(cfg.Output.Dir, cfg.Output.Prefix))
	}

	start := time.Now()
	res, err := solver.Run(cfg.SolverOptions())
	if err != nil {
		return err
	}
	printSummary(res, time.Since(start))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tEPOCHS\tMAX_CHANGE\tCONVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6f\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.GridN,
			run.Epochs,
			run.MaxChange,
			run.Converged,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		return fmt.Errorf("%w (use 'heatlab list' to see stored runs)", err)
	}
	if err != nil {
		return err
	}
	full, _, err := st.LoadFinal(runID)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s\n", viz.TitleStyle.Render(meta.ID), viz.LabelStyle.Render(meta.Timestamp.Format("2006-01-02 15:04:05")))
	fmt.Printf("%s %s  %s %s  %s %v\n\n",
		viz.LabelStyle.Render("epochs"), viz.ValueStyle.Render(fmt.Sprintf("%d", meta.Epochs)),
		viz.LabelStyle.Render("max_change"), viz.ValueStyle.Render(fmt.Sprintf("%.6f", meta.MaxChange)),
		viz.LabelStyle.Render("converged"), meta.Converged)
	fmt.Println(viz.Heatmap(full, mapWidth, mapHeight))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	epochs, changes, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("no history to plot")
	}

	data := make([]float64, len(changes))
	for i, c := range changes {
		if c <= 0 {
			data[i] = -16
			continue
		}
		data[i] = math.Log10(c)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("log10 max_change vs report interval"),
	)
	fmt.Println(graph)
	fmt.Printf("\nreports: %d  last epoch: %d  last max_change: %.6g\n",
		len(epochs), epochs[len(epochs)-1], changes[len(changes)-1])
	return nil
}

func infoRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	full, _, err := st.LoadFinal(runID)
	if err != nil {
		return err
	}

	out := svgOut
	if out == "" {
		out = runID + ".svg"
	}
	if err := export.WriteHeatmapSVG(out, full, svgCell); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func printSummary(res *relax.Result, elapsed time.Duration) {
	if res.Converged {
		fmt.Printf("converged in %d iterations, max change = %.6f (%v)\n", res.Epochs, res.MaxChange, elapsed)
		return
	}
	fmt.Printf("iteration cap reached at %d, max change = %.6f (%v)\n", res.Epochs, res.MaxChange, elapsed)
}
