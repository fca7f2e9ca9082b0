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

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nssim/internal/analysis"
	"github.com/san-kum/nssim/internal/automation"
	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/experiment"
	"github.com/san-kum/nssim/internal/export"
	"github.com/san-kum/nssim/internal/metrics"
	"github.com/san-kum/nssim/internal/optim"
	"github.com/san-kum/nssim/internal/solver"
	"github.com/san-kum/nssim/internal/spectral"
	"github.com/san-kum/nssim/internal/storage"
	"github.com/san-kum/nssim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	saveConfig  string
	resolution  int
	batch       int
	samples     int
	viscosity   float64
	duration    float64
	dt          float64
	recordSteps int
	seed        int64
	workers     int
	initial     string
	forcingKind string
	forcingAmp  float64
	noiseKind   string
	noiseAlpha  float64
	concurrency int
	// render / spectrum
	outPath string
	sample  int
	record  int
	// sweeps
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	trials      int
	perturb     float64
	noSave      bool
	grid        []string
	metricName  string
	maximize    bool
	quiet       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nssim",
		Short: "pseudo-spectral 2d navier-stokes data generator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nssim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one batch and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "generate a dataset of samples in batches",
		Args:  cobra.NoArgs,
		RunE:  generateDataset,
	}
	addRunFlags(generateCmd)
	generateCmd.Flags().IntVar(&samples, "samples", config.DefaultBatch, "total number of samples")
	generateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "batches simulated at once (0 = unlimited)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and enstrophy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "energy spectrum of a recorded snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().IntVar(&record, "record", -1, "record index (-1 = last)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render snapshots of a run as png heatmaps",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outPath, "out", "", "output directory (default: run directory)")
	renderCmd.Flags().IntVar(&sample, "sample", 0, "sample to render")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tN\tNU\tT\tDT\tRECORDS\tFORCING\tNOISE")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%d\t%s\t%s\n",
					name, p.Resolution, p.Viscosity, p.Duration, p.Dt, p.RecordSteps, p.Forcing.Kind, p.Noise.Kind)
			}
			return w.Flush()
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "dry", false, "do not store any run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a parameter and report stability",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "viscosity", "parameter to sweep (viscosity, dt, duration, forcing, noise_alpha)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1e-4, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1e-2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a run over random seeds",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 10, "number of trials")

	separationCmd := &cobra.Command{
		Use:   "separation",
		Short: "estimate the growth rate of a small perturbation",
		Args:  cobra.NoArgs,
		RunE:  runSeparation,
	}
	addRunFlags(separationCmd)
	separationCmd.Flags().Float64Var(&perturb, "eps", 1e-6, "perturbation amplitude")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addRunFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter values, e.g. viscosity=1e-3,5e-4 (repeatable)")
	searchCmd.Flags().StringVar(&metricName, "metric", "energy", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "keep the largest metric instead of the smallest")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark solver throughput",
		Args:  cobra.NoArgs,
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&workers, "workers", 0, "goroutines per batch (0 = NumCPU)")

	rootCmd.AddCommand(runCmd, generateCmd, liveCmd, listCmd, plotCmd, spectrumCmd, analyzeCmd,
		renderCmd, exportCmd, presetsCmd, scenarioCmd, sweepCmd, monteCarloCmd, separationCmd, searchCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this path")
	cmd.Flags().IntVar(&resolution, "n", d.Resolution, "grid resolution (power of two)")
	cmd.Flags().IntVar(&batch, "batch", d.Batch, "samples per batch")
	cmd.Flags().Float64Var(&viscosity, "nu", d.Viscosity, "viscosity")
	cmd.Flags().Float64Var(&duration, "time", d.Duration, "final time")
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().IntVar(&recordSteps, "records", d.RecordSteps, "number of snapshots to record")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per batch (0 = NumCPU)")
	cmd.Flags().StringVar(&initial, "initial", d.Initial.Kind, "initial condition (grf, taylor_green, zero)")
	cmd.Flags().StringVar(&forcingKind, "forcing", d.Forcing.Kind, "deterministic forcing (none, periodic, kolmogorov)")
	cmd.Flags().Float64Var(&forcingAmp, "forcing-amp", d.Forcing.Amplitude, "forcing amplitude")
	cmd.Flags().StringVar(&noiseKind, "noise", d.Noise.Kind, "stochastic forcing (none, wiener)")
	cmd.Flags().Float64Var(&noiseAlpha, "noise-alpha", d.Noise.Alpha, "wiener covariance decay")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the metrics summary")
}

// buildConfig resolves defaults, then preset, then config file, then the
// flags the user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
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
		cfg.Resolution = resolution
	}
	if flags.Changed("batch") {
		cfg.Batch = batch
		if !flags.Changed("samples") {
			cfg.Samples = batch
		}
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("nu") {
		cfg.Viscosity = viscosity
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("records") {
		cfg.RecordSteps = recordSteps
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("initial") {
		cfg.Initial.Kind = initial
	}
	if flags.Changed("forcing") {
		cfg.Forcing.Kind = forcingKind
	}
	if flags.Changed("forcing-amp") {
		cfg.Forcing.Amplitude = forcingAmp
	}
	if flags.Changed("noise") {
		cfg.Noise.Kind = noiseKind
	}
	if flags.Changed("noise-alpha") {
		cfg.Noise.Alpha = noiseAlpha
	}

	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func report(cfg *config.Config, run *experiment.Run, st *storage.Store, elapsed time.Duration) error {
	runID, err := st.Save(cfg, run.Initial, run.Result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", run.Initial.Batch)
	fmt.Printf("steps: %d\n", run.Result.StepsTaken)
	fmt.Printf("snapshots: %d\n", len(run.Result.Snapshots))
	if !quiet {
		fmt.Println("\nmetrics:")
		for name, val := range run.Result.Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("running %s: N=%d batch=%d nu=%g T=%g dt=%g (%d steps)\n",
		cfg.Name, cfg.Resolution, cfg.Batch, cfg.Viscosity, cfg.Duration, cfg.Dt, cfg.Steps())
	start := time.Now()

	run, err := experiment.New(cfg).Run(ctx)
	if err != nil {
		return err
	}
	return report(cfg, run, st, time.Since(start))
}

func generateDataset(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	sizes := cfg.Batches()
	fmt.Printf("generating %d samples in %d batches: N=%d nu=%g T=%g dt=%g\n",
		cfg.Samples, len(sizes), cfg.Resolution, cfg.Viscosity, cfg.Duration, cfg.Dt)
	start := time.Now()

	run, err := experiment.New(cfg).Generate(ctx, concurrency)
	if err != nil {
		return err
	}
	return report(cfg, run, st, time.Since(start))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	start := time.Now()
	run, err := viz.Run(context.Background(), experiment.New(cfg))
	if err != nil {
		return err
	}
	return report(cfg, run, st, time.Since(start))
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
	fmt.Fprintln(w, "ID\tTIME\tN\tBATCH\tNU\tT\tDT\tRECORDS\tFORCING\tNOISE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%g\t%g\t%d\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Resolution,
			run.Batch,
			run.Viscosity,
			run.Duration,
			run.Dt,
			run.Records,
			run.Forcing,
			run.Noise,
		)
	}

	return w.Flush()
}

// diagnostics recomputes batch-mean energy and enstrophy per record.
func diagnostics(result *solver.Result) ([]float64, []float64, error) {
	if len(result.Snapshots) == 0 {
		return nil, nil, fmt.Errorf("no data")
	}
	energy, err := metrics.NewEnergy(result.Snapshots[0].N)
	if err != nil {
		return nil, nil, err
	}
	enstrophy := metrics.NewEnstrophy()
	for r, snap := range result.Snapshots {
		energy.Observe(snap, result.Times[r])
		enstrophy.Observe(snap, result.Times[r])
	}
	e, _ := energy.History()
	return e, enstrophy.History(), nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	result, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}

	energy, enstrophy, err := diagnostics(result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d  records: %d\n\n", meta.Batch, meta.Records)

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"kinetic energy vs time", energy},
		{"enstrophy vs time", enstrophy},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	result, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if len(result.Snapshots) == 0 {
		return fmt.Errorf("no data")
	}

	r := record
	if r < 0 {
		r = len(result.Snapshots) + r
	}
	if r < 0 || r >= len(result.Snapshots) {
		return fmt.Errorf("record %d out of range [0,%d)", record, len(result.Snapshots))
	}
	snap := result.Snapshots[r]

	g, err := spectral.NewGrid(snap.N)
	if err != nil {
		return err
	}
	tr := spectral.NewTransform(snap.N)

	mean := make([]float64, g.KMax+1)
	for b := 0; b < snap.Batch; b++ {
		for k, e := range analysis.EnergySpectrum(g, tr, snap.Sample(b)) {
			mean[k] += e / float64(snap.Batch)
		}
	}

	// log scale, skipping the empty k=0 shell
	logE := make([]float64, 0, len(mean)-1)
	for _, e := range mean[1:] {
		logE = append(logE, math.Log10(math.Max(e, 1e-300)))
	}

	fmt.Printf("energy spectrum at t=%.4f (record %d)\n\n", result.Times[r], r)
	fmt.Println(asciigraph.Plot(logE,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("log10 E(k), k = 1.."+fmt.Sprint(len(logE))),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	result, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}

	energy, _, err := diagnostics(result)
	if err != nil {
		return err
	}
	if len(energy) < 4 {
		return fmt.Errorf("need at least 4 records, have %d", len(energy))
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	// remove the mean so the zero bin does not dominate
	avg := 0.0
	for _, e := range energy {
		avg += e / float64(len(energy))
	}
	series := make([]float64, len(energy))
	for i, e := range energy {
		series[i] = e - avg
	}

	ps := analysis.PowerSpectrum(series)
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (kinetic energy)"),
	)
	fmt.Println(graph)
	fmt.Println()

	interval := result.Times[1] - result.Times[0]
	freq := analysis.DominantFrequency(series, interval)
	fmt.Printf("dominant frequency: %.3f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f\n", 1.0/freq)
	}

	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	result, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}

	dir := outPath
	if dir == "" {
		dir = filepath.Join(dataDir, runID, "png")
	}

	paths, err := export.Snapshots(dir, result.Snapshots, result.Times, sample)
	if err != nil {
		return err
	}

	energy, _, err := diagnostics(result)
	if err != nil {
		return err
	}
	p, err := export.Series("kinetic energy", "t", "E", result.Times, energy)
	if err != nil {
		return err
	}
	energyPath := filepath.Join(dir, "energy.png")
	if err := export.SavePNG(p, 6, 4, energyPath); err != nil {
		return err
	}

	fmt.Printf("wrote %d snapshots and %s\n", len(paths), energyPath)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.ExportRun(args[0], outPath); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("exported %s to %s\n", args[0], outPath)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st, err = openStore()
		if err != nil {
			return err
		}
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}

	results, err := automation.RunScenario(ctx, sc, st)
	if err != nil {
		return err
	}

	for i, res := range results {
		id := res.RunID
		if id == "" {
			id = "(not saved)"
		}
		fmt.Printf("  step %d: %s energy=%.6g\n", i+1, id, res.Run.Result.Metrics["energy"])
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTABLE\tFINAL E\tMAX E\tPEAK |W|\tFAILED AT\n", sweepParam)
	for _, r := range results {
		failed := "-"
		if !r.Stable && r.FailedAt > 0 {
			failed = fmt.Sprintf("%.4f", r.FailedAt)
		}
		fmt.Fprintf(w, "%g\t%v\t%.6g\t%.6g\t%.4g\t%s\n", r.ParamValue, r.Stable, r.FinalEnergy, r.MaxEnergy, r.Peak, failed)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	return nil
}

func runSeparation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	draw, err := reg.GetInitial(cfg)
	if err != nil {
		return err
	}
	f, err := reg.GetForcing(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	rate, err := analysis.SeparationRate(ctx, draw(1), f, cfg.Solver(), perturb)
	if err != nil {
		return err
	}

	fmt.Printf("separation rate: %.6f\n", rate)
	if rate > 0 {
		fmt.Printf("doubling time: %.4f\n", math.Ln2/rate)
	}
	return nil
}

func benchSolver(cmd *cobra.Command, args []string) error {
	resolutions := []int{32, 64, 128}
	batches := []int{1, 4}
	const steps = 50

	fmt.Printf("benchmarking solver (%d steps)\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tBATCH\tTIME\tSTEPS/SEC")

	for _, n := range resolutions {
		for _, b := range batches {
			cfg := config.GetPreset("smoke")
			cfg.Resolution, cfg.Batch = n, b
			cfg.Duration, cfg.Dt, cfg.RecordSteps = steps*1e-3, 1e-3, 1
			cfg.Workers = workers
			cfg.Seed = 42

			start := time.Now()
			if _, err := experiment.New(cfg).Run(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, b, elapsed, float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

// parseGrid reads name=v1,v2,... entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("bad grid entry %q, want name=v1,v2", entry)
		}
		var vals []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one --grid entry is required")
	}

	gs := optim.NewGridSearch(names, ranges)
	if maximize {
		gs.Maximize()
	}

	ctx, cancel := interruptible()
	defer cancel()

	best, err := gs.Search(ctx, cfg, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated: %d  unstable: %d\n", best.Evaluated, best.Unstable)
	fmt.Printf("best %s: %.6g\n", metricName, best.Value)
	keys := make([]string, 0, len(best.Params))
	for k := range best.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %g\n", k, best.Params[k])
	}
	return nil
}
