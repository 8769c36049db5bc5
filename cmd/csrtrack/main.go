package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/csrtrack/internal/analysis"
	"github.com/san-kum/csrtrack/internal/archive"
	"github.com/san-kum/csrtrack/internal/automation"
	"github.com/san-kum/csrtrack/internal/beam"
	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/distgen"
	"github.com/san-kum/csrtrack/internal/experiment"
	"github.com/san-kum/csrtrack/internal/export"
	"github.com/san-kum/csrtrack/internal/optim"
	"github.com/san-kum/csrtrack/internal/sim"
	"github.com/san-kum/csrtrack/internal/storage"
	"github.com/san-kum/csrtrack/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	verbose     bool
	preset      string
	stepSize    float64
	noWake      bool
	field       string
	bins        int
	exportOut   string
	generateOut string
	aperture    float64
	seedCount   int
	xCoord      string
	yCoord      string
	svgFile     string
	scanArgs    []string
	metric      string
)

var logger = slog.Default()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.StatusFail.Render("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "csrtrack",
		Short:         "particle tracking with coherent synchrotron radiation wakes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultOutputDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step")

	runCmd := &cobra.Command{
		Use:   "run [config]",
		Short: "track a beam through a lattice",
		Args:  cobra.ExactArgs(1),
		RunE:  runTracking,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "replace the lattice with a preset")
	runCmd.Flags().Float64Var(&stepSize, "step", config.DefaultStepSize, "step size in m")
	runCmd.Flags().BoolVar(&noWake, "no-wake", false, "disable CSR kicks")
	runCmd.Flags().Float64Var(&aperture, "aperture", 0, "watch particles leaving |x| <= aperture (m)")

	seedsCmd := &cobra.Command{
		Use:   "seeds [config]",
		Short: "track several random seeds of a distgen beam concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeeds,
	}
	seedsCmd.Flags().IntVarP(&seedCount, "count", "n", 4, "number of seeds")
	seedsCmd.Flags().BoolVar(&noWake, "no-wake", false, "disable CSR kicks")
	seedsCmd.Flags().Float64Var(&aperture, "aperture", 0, "watch particles leaving |x| <= aperture (m)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "summarize a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a history column against s",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "sigma_x", "history column ("+strings.Join(recordFieldNames(), ", ")+")")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the plot as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and history as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	profileCmd := &cobra.Command{
		Use:   "profile [run_id]",
		Short: "current profile and form factor of the final beam",
		Args:  cobra.ExactArgs(1),
		RunE:  profileRun,
	}
	profileCmd.Flags().IntVar(&bins, "bins", config.DefaultBins, "number of z bins")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space scatter of the final beam",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xCoord, "x", "z", "horizontal coordinate")
	phaseCmd.Flags().StringVar(&yCoord, "y", "pz", "vertical coordinate")
	phaseCmd.Flags().StringVar(&svgFile, "svg", "", "also write the scatter as svg")

	scanCmd := &cobra.Command{
		Use:   "scan [config]",
		Short: "scan quadrupole strengths for the smallest metric",
		Args:  cobra.ExactArgs(1),
		RunE:  scanLattice,
	}
	scanCmd.Flags().StringArrayVar(&scanArgs, "k1", nil, "element=lo:hi:n, repeatable")
	scanCmd.Flags().StringVar(&metric, "metric", "sigma_x_growth", "metric to minimize")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of configs",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [distgen.yaml]",
		Short: "generate a particle group",
		Args:  cobra.ExactArgs(1),
		RunE:  generateBeam,
	}
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "beam.json", "output archive")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list lattice presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, seedsCmd, listCmd, statsCmd, plotCmd, exportCmd, profileCmd, phaseCmd, scanCmd, batchCmd, generateCmd, presetsCmd)
	return rootCmd
}

func runTracking(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Lattice = *p
	}
	if cmd.Flags().Changed("step") {
		cfg.Lattice.StepSize = stepSize
	}
	if noWake {
		cfg.CSR.Enabled = false
	}
	if cmd.Flags().Changed("aperture") {
		cfg.Aperture = aperture
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	outDir := cfg.OutputDir
	if cmd.Flags().Changed("data") || outDir == "" {
		outDir = dataDir
	}
	st := storage.New(outDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), logger); err != nil {
		return err
	}

	total := len(exp.Lattice().Steps())
	if !verbose {
		exp.Simulator().AddObserver(sim.ObserverFunc(func(b *beam.Beam, rec sim.Record) {
			fmt.Fprintf(os.Stderr, "\r%s %d/%d", viz.ProgressBar(float64(rec.Step)/float64(total), 30), rec.Step, total)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tracking %s: %d particles, %d steps over %.3f m\n",
		cfg.Name, exp.Beam().Len(), total, exp.Lattice().Length())
	start := time.Now()

	result, err := exp.Run(ctx)
	if !verbose {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.Metadata(), result, exp.Beam().ParticleGroup())
	if err != nil {
		return err
	}

	fmt.Printf("%s in %v\n", viz.StatusOK.Render("completed"), elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)

	return nil
}

func runSeeds(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if noWake {
		cfg.CSR.Enabled = false
	}
	if cmd.Flags().Changed("aperture") {
		cfg.Aperture = aperture
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tracking %d seeds of %s over %.3f m\n", seedCount, cfg.Name, exp.Lattice().Length())
	start := time.Now()

	results, err := exp.RunSeeds(ctx, seedCount)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s in %v\n\n", viz.StatusOK.Render("completed"), time.Since(start))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSIGMA_X\tSIGMA_Z\tSIGMA_E\tSLOPE")
	for i, r := range results {
		last := r.Last()
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\t%.4g\t%.4g\n", i, last.SigmaX, last.SigmaZ, last.SigmaEnergy, last.Slope)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nmetrics over seeds:")
	for _, name := range sortedKeys(results[0].Metrics) {
		mean, std := seedSpread(results, name)
		fmt.Fprintf(out, "  %s\n", viz.Metric(name, fmt.Sprintf("%.6g ± %.3g", mean, std)))
	}
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(m) {
		fmt.Printf("  %s\n", viz.Metric(name, fmt.Sprintf("%.6g", m[name])))
	}
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPARTICLES\tSTEPS\tLENGTH\tWAKE")

	for _, run := range runs {
		wake := "off"
		if run.Wake {
			wake = run.WakeSource
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3fm\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Length,
			wake,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Record, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(history) == 0 {
		return nil, nil, fmt.Errorf("run %s has no history", runID)
	}
	return meta, history, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}

	first, last := history[0], history[len(history)-1]

	fmt.Println(viz.HeaderStyle.Render("run " + meta.ID))
	fmt.Printf("particles: %d  charge: %.4g C  E_ref: %.6g eV\n", meta.Particles, meta.Charge, meta.ReferenceEnergy)
	fmt.Printf("lattice: %.3f m in %d steps of %.4g m\n\n", meta.Length, meta.Steps, meta.StepSize)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tINITIAL\tFINAL\tTREND")
	for _, name := range recordFieldNames() {
		get := recordFields[name]
		series := make([]float64, len(history))
		for i, rec := range history {
			series[i] = get(rec)
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%s\n", name, get(first), get(last), viz.Sparkline(series, 24))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printMetrics(meta.Metrics)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	get, ok := recordFields[field]
	if !ok {
		return fmt.Errorf("unknown field: %s (available: %v)", field, recordFieldNames())
	}

	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data := make([]float64, len(history))
	for i, rec := range history {
		data[i] = get(rec)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s vs s (0 to %.3f m)", field, history[len(history)-1].Position)),
	)
	fmt.Println(graph)

	if svgFile != "" {
		points := make([]analysis.Point, len(history))
		for i, rec := range history {
			points[i] = analysis.Point{X: rec.Position, Y: data[i]}
		}
		svg := export.LineSVG(points, 800, 400, "#00ccff", fmt.Sprintf("%s %s vs s", meta.ID, field))
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if exportOut == "" {
		return storage.ExportJSON(cmd.OutOrStdout(), meta, history)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := storage.ExportJSON(f, meta, history); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", meta.ID, exportOut)
	return nil
}

func loadFinalBeam(runID string) (*beam.Beam, error) {
	pg, err := storage.New(dataDir).LoadBeam(runID)
	if err != nil {
		return nil, err
	}
	return beam.FromParticleGroup(pg)
}

func profileRun(cmd *cobra.Command, args []string) error {
	b, err := loadFinalBeam(args[0])
	if err != nil {
		return err
	}

	p, err := analysis.NewProfile(b.Z(), b.Charge(), bins)
	if err != nil {
		return err
	}

	fmt.Printf("profile: %s\n", args[0])
	fmt.Printf("sigma_z: %.4g m  peak current: %.4g A\n\n", b.SigmaZ(), p.PeakCurrent())

	fmt.Println(asciigraph.Plot(p.Current(),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("current [A] over %d bins of %.3g m", bins, p.Width())),
	))
	fmt.Println()

	ff := analysis.FormFactor(p.Counts)
	k := analysis.Wavenumbers(bins, p.Width())
	fmt.Println(asciigraph.Plot(ff,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("form factor, k up to %.3g 1/m", k[len(k)-1])),
	))

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	b, err := loadFinalBeam(args[0])
	if err != nil {
		return err
	}

	ps, err := analysis.NewPhaseSpace(b, xCoord, yCoord)
	if err != nil {
		return err
	}

	fmt.Printf("phase space: %s (%s vs %s)\n\n", args[0], yCoord, xCoord)
	fmt.Print(ps.ASCII(80, 24))

	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(export.ScatterSVG(ps, 600, 600, "#00ff88")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func scanLattice(cmd *cobra.Command, args []string) error {
	base, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(scanArgs) == 0 {
		return fmt.Errorf("nothing to scan: pass --k1 element=lo:hi:n")
	}

	names := make([]string, len(scanArgs))
	ranges := make([][]float64, len(scanArgs))
	for i, arg := range scanArgs {
		names[i], ranges[i], err = parseScan(arg)
		if err != nil {
			return err
		}
		if !hasQuadrupole(base, names[i]) {
			return fmt.Errorf("no quadrupole named %s in %s", names[i], args[0])
		}
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Lattice.Elements = append([]config.ElementConfig(nil), base.Lattice.Elements...)
		for i, el := range cfg.Lattice.Elements {
			if k1, ok := params[el.Name]; ok {
				cfg.Lattice.Elements[i].K1 = k1
			}
		}
		exp := experiment.New(&cfg)
		if err := exp.Setup(registry, logger); err != nil {
			return nil, err
		}
		return exp, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(names, ranges)
	best, val, err := g.Search(ctx, build, metric)
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render("best " + metric))
	for _, name := range names {
		fmt.Printf("  %s\n", viz.Metric(name+" K1", fmt.Sprintf("%.6g", best[name])))
	}
	fmt.Printf("  %s\n", viz.Metric(metric, fmt.Sprintf("%.6g", val)))
	if n := g.Failed(); n > 0 {
		fmt.Println(viz.Subtle.Render(fmt.Sprintf("%d points failed", n)))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d runs\n", sc.Name, len(sc.Steps))
	outcomes, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tSTEPS\tSIGMA_X\tSIGMA_E")
	for _, o := range outcomes {
		last := o.Result.Last()
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4g\t%.4g\n", o.Name, o.RunID, o.Result.StepsTaken, last.SigmaX, last.SigmaEnergy)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func generateBeam(cmd *cobra.Command, args []string) error {
	gen, err := distgen.Load(args[0])
	if err != nil {
		return err
	}

	pg, err := gen.Run()
	if err != nil {
		return err
	}

	if err := archive.Write(generateOut, pg); err != nil {
		return err
	}

	in := gen.Input()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s particles (%.4g C) to %s\n", pg.Len(), in.Species, pg.Charge(), generateOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tELEMENTS\tLENGTH\tSTEP")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		length := 0.0
		for _, el := range p.Elements {
			length += el.Length
		}
		fmt.Fprintf(w, "%s\t%d\t%.3fm\t%.3gm\n", name, len(p.Elements), length, p.StepSize)
	}
	return w.Flush()
}
