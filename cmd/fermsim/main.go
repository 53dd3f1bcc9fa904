package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fermsim/internal/analysis"
	"github.com/san-kum/fermsim/internal/bioreactor"
	"github.com/san-kum/fermsim/internal/config"
	"github.com/san-kum/fermsim/internal/integrators"
	"github.com/san-kum/fermsim/internal/metrics"
	"github.com/san-kum/fermsim/internal/sim"
	"github.com/san-kum/fermsim/internal/storage"
	"github.com/san-kum/fermsim/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	phEnabled  bool
	glucose    float64
	biomass    float64
	liquidVol  float64
	gasVol     float64
	temp       float64
	field      string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fermsim",
		Short: "fermentation bioreactor simulator",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fermsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "Ng", "column to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a recorded series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&field, "field", "Ng", "column to analyze")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal chart",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&field, "field", "Ng", "column to chart")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark stepping throughput",
		RunE:  benchModel,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, liveCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "named preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator (euler, rk4)")
	cmd.Flags().BoolVar(&phEnabled, "ph", false, "compute pH per step")
	cmd.Flags().Float64Var(&glucose, "glucose", 100, "initial glucose, mol")
	cmd.Flags().Float64Var(&biomass, "biomass", 1, "initial biomass, mol")
	cmd.Flags().Float64Var(&liquidVol, "volume", 1, "initial liquid volume, L")
	cmd.Flags().Float64Var(&gasVol, "gas-volume", 1, "initial gas volume, L")
	cmd.Flags().Float64Var(&temp, "temp", config.DefaultAmbient, "initial temperature, K")
}

// buildConfig layers preset < config file < explicit flags.
func buildConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.Default()
	label := "reactor"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
		c := *p
		cfg = &c
		label = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		label = "custom"
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("ph") {
		cfg.PH = phEnabled
	}
	if cmd.Flags().Changed("glucose") {
		cfg.InitState.Glucose = glucose
	}
	if cmd.Flags().Changed("biomass") {
		cfg.InitState.Biomass = biomass
	}
	if cmd.Flags().Changed("volume") {
		cfg.InitState.LiquidVol = liquidVol
	}
	if cmd.Flags().Changed("gas-volume") {
		cfg.InitState.GasVol = gasVol
	}
	if cmd.Flags().Changed("temp") {
		cfg.InitState.Temp = temp
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, label, nil
}

func makeIntegrator(name string) (sim.Integrator, error) {
	switch name {
	case "", "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}

func makeModel(cfg *config.Config) (*bioreactor.Model, error) {
	integ, err := makeIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []bioreactor.Option{
		bioreactor.WithStartTime(cfg.StartTime),
		bioreactor.WithIntegrator(integ),
		bioreactor.WithLogger(logger),
	}
	if cfg.PH {
		opts = append(opts, bioreactor.WithPH())
	}
	return bioreactor.New(cfg.InitState.Vector(), cfg.InputFunc(), opts...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, label, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	reactor, err := makeModel(cfg)
	if err != nil {
		return err
	}

	in, err := sim.ParseInputs(cfg.InputFunc()(cfg.StartTime))
	if err != nil {
		return err
	}
	ms := []metrics.Metric{
		metrics.NewFumarateYield(),
		metrics.NewTemperatureDeviation(in.Tamb),
		metrics.NewGlucoseDepletion(0.01 * cfg.InitState.Glucose),
	}

	steps := int(cfg.Duration / cfg.Dt)
	fmt.Printf("running %s for %d steps (dt=%g)...\n", label, steps, cfg.Dt)
	start := time.Now()

	for i := 0; i < steps; i++ {
		if err := reactor.Step(cfg.Dt); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	history := reactor.History()
	for k, row := range history {
		t := cfg.StartTime + float64(k)*cfg.Dt
		for _, m := range ms {
			m.Observe(row, t)
		}
	}

	metricVals := make(map[string]float64, len(ms))
	for _, m := range ms {
		metricVals[m.Name()] = m.Value()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Label:      label,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		StartTime:  cfg.StartTime,
		Integrator: cfg.Integrator,
		PH:         cfg.PH,
		Columns:    reactor.OutputNames(),
		Metrics:    metricVals,
	}, history)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("rows: %d\n", len(history))
	if n := reactor.NegativeExcursions(); n > 0 {
		fmt.Printf("warning: %d steps left a state component negative; consider a smaller dt\n", n)
	}
	fmt.Println("\nmetrics:")
	for name, val := range metricVals {
		fmt.Printf("  %s: %.6f\n", name, val)
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
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tDURATION\tDT\tINTEG\tPH")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%s\t%v\n",
			run.ID, run.Label, run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration, run.Dt, run.Integrator, run.PH)
	}
	return w.Flush()
}

func loadSeries(runID, column string) ([]float64, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rows, _, err := st.LoadHistory(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}

	idx := -1
	for i, name := range meta.Columns {
		if name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("unknown column %q (available: %v)", column, meta.Columns)
	}

	series := make([]float64, len(rows))
	for i, row := range rows {
		series[i] = row[idx]
	}
	return series, meta, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	series, meta, err := loadSeries(args[0], field)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series))
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s vs time", field)),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	series, meta, err := loadSeries(args[0], field)
	if err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(series)
	plotData := ps
	if len(plotData) > len(ps)/4 && len(ps) >= 8 {
		plotData = ps[:len(ps)/4]
	}

	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, field)
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", field)),
	))

	freq := analysis.DominantFrequency(series, meta.Dt)
	fmt.Printf("\ndominant frequency: %.4f per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f time units\n", 1.0/freq)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	reactor, err := makeModel(cfg)
	if err != nil {
		return err
	}

	idx := -1
	for i, name := range reactor.OutputNames() {
		if name == field {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown column %q (available: %v)", field, reactor.OutputNames())
	}

	return tui.Run(reactor, cfg.Dt, cfg.Duration, idx)
}

func benchModel(cmd *cobra.Command, args []string) error {
	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{0.001, 0.01, 0.1}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := config.Default()
			cfg.Dt = step
			cfg.Duration = dur

			reactor, err := makeModel(cfg)
			if err != nil {
				return err
			}

			steps := int(dur / step)
			start := time.Now()
			for i := 0; i < steps; i++ {
				if err := reactor.Step(step); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%.1f\t%.4f\t%d\t%v\t%.0f\n",
				dur, step, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
