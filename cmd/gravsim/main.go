package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/vec"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	dt         float64
	duration   float64
	seed       int64
	collision  string
	minSep     float64
	metricList []string
	// plot
	series    string
	bodyIndex int
	// predict
	candX, candY   float64
	candVX, candVY float64
	candMass       float64
	candPinned     bool
	previewTime    float64
	svgPath        string
	// ensemble / sweep
	numRuns     int
	sweepParams []string
	sweepMetric string

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "2d newtonian gravity sandbox",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file (overrides the scenario argument)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricList, "metrics", nil, "metrics to record (default all)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "x,y", "comma separated: x,y,vx,vy,speed,mass,bodies,total_mass")
	plotCmd.Flags().IntVar(&bodyIndex, "body", 0, "body index for per-body series")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	predictCmd := &cobra.Command{
		Use:   "predict [scenario]",
		Short: "preview the path of a candidate body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  predict,
	}
	predictCmd.Flags().Float64Var(&candX, "x", 0, "candidate x")
	predictCmd.Flags().Float64Var(&candY, "y", 0, "candidate y")
	predictCmd.Flags().Float64Var(&candVX, "vx", 0, "candidate vx")
	predictCmd.Flags().Float64Var(&candVY, "vy", 0, "candidate vy")
	predictCmd.Flags().Float64Var(&candMass, "mass", 10, "candidate mass")
	predictCmd.Flags().BoolVar(&candPinned, "pinned", false, "candidate is pinned")
	predictCmd.Flags().Float64Var(&previewTime, "preview", 10, "preview duration")
	predictCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg to this path instead of a table")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "measure solver throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run jittered copies of a scenario in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addScenarioFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search scenario parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimize")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default scenario file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initScenario,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, predictCmd, liveCmd, presetsCmd, benchCmd, ensembleCmd, sweepCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "gravsim",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default from scenario)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration (default from scenario)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&collision, "collision", "", "collision policy: merge or destroy")
	cmd.Flags().Float64Var(&minSep, "min-sep", 0, "minimum separation used for forces")
}

// loadScenario resolves the scenario from --config, the argument, or the
// default, then applies any changed flags.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var (
		sc  *config.Scenario
		err error
	)
	switch {
	case configFile != "":
		sc, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) > 0:
		sc, err = config.Resolve(args[0])
		if err != nil {
			return nil, err
		}
	default:
		sc = config.GetPreset("orbit")
	}

	flags := cmd.Flags()
	if flags.Lookup("dt") != nil && flags.Changed("dt") {
		sc.Dt = dt
	}
	if flags.Lookup("time") != nil && flags.Changed("time") {
		sc.Duration = duration
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		sc.Seed = seed
	}
	if flags.Lookup("collision") != nil && flags.Changed("collision") {
		sc.Collision = collision
	}
	if flags.Lookup("min-sep") != nil && flags.Changed("min-sep") {
		sc.MinSeparation = minSep
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("scenario loaded", "name", sc.Name, "bodies", len(sc.Bodies), "dt", sc.Dt, "duration", sc.Duration)
	return sc, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	ms, err := experiment.NewRegistry().Metrics(metricList)
	if err != nil {
		return err
	}

	exp := experiment.New(sc)
	exp.SetLogger(logger)
	if err := exp.Setup(ms); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s...\n", sc.Name)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(sc, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  frames: %d\n", result.StepsTaken, len(result.Frames))
	fmt.Printf("merges: %d  absorbed: %d  destroyed: %d\n", result.Merges, result.Absorptions, result.Destructions)
	for _, e := range result.Errors {
		logger.Warn("run error", "err", e)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tBODIES\tPOLICY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%d\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Bodies,
			run.Policy,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	for _, name := range strings.Split(series, ",") {
		name = strings.TrimSpace(name)
		data, caption, err := seriesData(frames, name, bodyIndex)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			logger.Warn("series has no finite samples", "series", name)
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}
	return nil
}

// seriesData extracts one plottable series from stored frames. Per-body
// series end when the body no longer exists at that index.
func seriesData(frames []sim.Frame, name string, body int) ([]float64, string, error) {
	var pick func(f sim.Frame) (float64, bool)
	caption := name

	perBody := func(get func(b gravity.Body) float64) func(sim.Frame) (float64, bool) {
		caption = fmt.Sprintf("body %d %s", body, name)
		return func(f sim.Frame) (float64, bool) {
			if body < 0 || body >= len(f.Bodies) {
				return 0, false
			}
			return get(f.Bodies[body]), true
		}
	}

	switch name {
	case "x":
		pick = perBody(func(b gravity.Body) float64 { return b.Position.X })
	case "y":
		pick = perBody(func(b gravity.Body) float64 { return b.Position.Y })
	case "vx":
		pick = perBody(func(b gravity.Body) float64 { return b.Velocity.X })
	case "vy":
		pick = perBody(func(b gravity.Body) float64 { return b.Velocity.Y })
	case "speed":
		pick = perBody(func(b gravity.Body) float64 { return b.Velocity.Mag() })
	case "mass":
		pick = perBody(func(b gravity.Body) float64 { return b.Mass })
	case "bodies":
		pick = func(f sim.Frame) (float64, bool) { return float64(len(f.Bodies)), true }
	case "total_mass":
		pick = func(f sim.Frame) (float64, bool) {
			total := 0.0
			for _, b := range f.Bodies {
				total += b.Mass
			}
			return total, true
		}
	default:
		return nil, "", fmt.Errorf("unknown series: %s", name)
	}

	data := make([]float64, 0, len(frames))
	for _, f := range frames {
		v, ok := pick(f)
		if !ok {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		data = append(data, v)
	}
	return data, caption, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, frames)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.WriteFramesCSV(os.Stdout, frames)
}

func predict(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	solver, err := sc.Build()
	if err != nil {
		return err
	}

	candidate := gravity.Body{
		Position: vec.New(candX, candY),
		Velocity: vec.New(candVX, candVY),
		Mass:     candMass,
		Pinned:   candPinned,
	}
	path, err := solver.PredictTrajectory(candidate, previewTime)
	if err != nil {
		return err
	}
	full := int(previewTime * float64(solver.Resolution()))
	logger.Debug("trajectory predicted", "points", len(path), "full", full)

	if svgPath != "" {
		svg := export.FrameToSVG(solver.Bodies(), path, 800, 600)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d points)\n", svgPath, len(path))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTIME\tX\tY")
	h := 1 / float64(solver.Resolution())
	for i, p := range path {
		fmt.Fprintf(w, "%d\t%.2f\t%.3f\t%.3f\n", i+1, float64(i+1)*h, p.X, p.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(path) < full {
		fmt.Printf("\npath ends after %d of %d steps (hits a body)\n", len(path), full)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		return viz.RunPicker()
	}
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	solver, err := sc.Build()
	if err != nil {
		return err
	}
	return viz.RunLive(viz.NewModel(solver, sc.Name, sc.Dt, sc.TimeFactor))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tPINNED\tDURATION\tPOLICY")
	for _, name := range config.ListPresets() {
		sc := config.GetPreset(name)
		pinned := 0
		for _, b := range sc.Bodies {
			if b.Pinned {
				pinned++
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%s\n", name, len(sc.Bodies), pinned, sc.Duration, sc.Collision)
	}
	return w.Flush()
}

func benchScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	durations := []float64{1.0, 5.0}
	dts := []float64{0.01, 0.001}

	fmt.Printf("benchmarking %s (%d bodies)\n\n", sc.Name, len(sc.Bodies))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			c := sc.Clone()
			c.Duration, c.Dt, c.SampleEvery = dur, step, 0

			exp := experiment.New(c)
			if err := exp.Setup(nil); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1f\t%.4f\t%d\t%v\t%.0f\n", dur, step, result.StepsTaken, elapsed, stepsPerSec)
		}
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", numRuns)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewEnsemble(sc, numRuns, sc.Seed).
		WithMetrics(metrics.Defaults).
		WithLogger(logger).
		Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d runs of %s in %v\n\n", numRuns, sc.Name, time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tBODIES\tMERGES\tABSORBED\tENERGY_DRIFT\tMASS_LOSS")
	survivors := make([]float64, 0, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%d\t%d\t%.2e\t%.1f\n",
			i, sc.Seed+int64(i), r.Metrics["bodies"], r.Merges, r.Absorptions,
			r.Metrics["energy_drift"], r.Metrics["mass_loss"])
		survivors = append(survivors, r.Metrics["bodies"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(survivors) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(survivors, asciigraph.Height(6), asciigraph.Caption("surviving bodies per run")))
	}
	return nil
}

// parseParam parses "name=v1,v2,..." into a name and its values.
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q, want name=v1,v2", s)
	}
	parts := strings.Split(list, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value in --param %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return strings.TrimSpace(name), vals, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required (known: %v)", optim.Params)
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, vals, err := parseParam(p)
		if err != nil {
			return err
		}
		if err := optim.Apply(base.Clone(), name, 0); err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	registry := experiment.NewRegistry()
	if _, err := registry.GetMetric(sweepMetric); err != nil {
		return err
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		sc := base.Clone()
		for k, v := range params {
			if err := optim.Apply(sc, k, v); err != nil {
				return nil, err
			}
		}
		m, err := registry.GetMetric(sweepMetric)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(sc)
		exp.SetLogger(logger)
		if err := exp.Setup([]sim.Metric{m}); err != nil {
			return nil, err
		}
		return exp, nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, trials, err := optim.NewGridSearch(names, ranges).Search(ctx, build, sweepMetric)
	for _, tr := range trials {
		if tr.Err != nil {
			logger.Warn("trial failed", "params", tr.Params, "err", tr.Err)
		}
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(tr.Params[n], 'g', -1, 64))
		}
		row = append(row, fmt.Sprintf("%.6g", tr.Value))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	parts := make([]string, 0, len(best.Params))
	for _, k := range best.SortedKeys() {
		parts = append(parts, fmt.Sprintf("%s=%g", k, best.Params[k]))
	}
	fmt.Printf("\nbest: %s (%s %.6g)\n", strings.Join(parts, " "), sweepMetric, best.Value)
	return nil
}

func initScenario(cmd *cobra.Command, args []string) error {
	path := "scenario.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	sc := config.GetPreset("system")
	sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := config.Save(path, sc); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
