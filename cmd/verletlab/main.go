package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/export"
	"github.com/san-kum/verletlab/internal/gui"
	"github.com/san-kum/verletlab/internal/metrics"
	"github.com/san-kum/verletlab/internal/scene"
	"github.com/san-kum/verletlab/internal/sim"
	"github.com/san-kum/verletlab/internal/storage"
	"github.com/san-kum/verletlab/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// scene configuration
	configFile  string
	preset      string
	frames      int
	seed        uint64
	workers     int
	subSteps    int
	recordEvery int
	runs        int

	compareFrames int
	themeName     string

	// export
	outFile  string
	frameIdx int
	traceIdx int
)

func main() {
	registry := scene.NewRegistry()

	rootCmd := &cobra.Command{
		Use:   "verletlab",
		Short: "verlet particle and constraint sandbox",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return gui.RunInteractive(registry, sceneConfig, logger)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verletlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless with its scripted input and save the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(cmd, registry, args[0])
		},
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 0, "capture a snapshot every N frames (0 uses the config)")
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of runs over consecutive seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded particles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(func(w io.Writer) error { return storage.New(dataDir).ExportCSV(w, args[0]) })
		},
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and snapshots to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(func(w io.Writer) error { return storage.New(dataDir).ExportJSON(w, args[0]) })
		},
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a recorded frame or a particle trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "snapshot index to draw (-1 for the last)")
	exportSVGCmd.Flags().IntVar(&traceIdx, "trace", -1, "draw the path of this particle index instead of a frame")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene across worker counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchScene(cmd, registry, args[0])
		},
	}
	addSceneFlags(benchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [preset1] [preset2] ...",
		Short: "compare presets of the same scene",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return comparePresets(registry, args[0], args[1:])
		},
	}
	compareCmd.Flags().IntVar(&compareFrames, "frames", 600, "frames per run")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene in the terminal with mouse input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			// the terminal owns stdout while the view is up
			logger.SetOutput(io.Discard)
			viz.SetTheme(themeName)
			return viz.RunLive(func() (scene.Scene, error) {
				cfg, err := loadConfig(cmd, name)
				if err != nil {
					return nil, err
				}
				return registry.Build(cfg, logger)
			})
		},
	}
	addSceneFlags(liveCmd)
	addThemeFlag(liveCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal scene picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(io.Discard)
			viz.SetTheme(themeName)
			return viz.RunInteractive(registry, logger)
		},
	}
	addThemeFlag(tuiCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [scene]",
		Short: "open a scene in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return gui.RunInteractive(registry, sceneConfig, logger)
			}
			cfg, err := loadConfig(cmd, args[0])
			if err != nil {
				return err
			}
			return gui.Run(registry, cfg, logger)
		},
	}
	addSceneFlags(guiCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range registry.List() {
				fmt.Println(name)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [scene]",
		Short: "print the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args[0])
			if err != nil {
				return err
			}
			if outFile != "" {
				return config.Save(outFile, cfg)
			}
			return config.Write(os.Stdout, cfg)
		},
	}
	addSceneFlags(configCmd)
	configCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		benchCmd, compareCmd, liveCmd, tuiCmd, guiCmd, presetsCmd, scenesCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "verletlab",
	})
	return nil
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate (0 uses the config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "collision workers (0 uses the config)")
	cmd.Flags().IntVar(&subSteps, "substeps", 0, "sub-steps per frame (0 uses the config)")
}

func addThemeFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&themeName, "theme", viz.CurrentTheme.Name,
		fmt.Sprintf("colour theme (%s)", strings.Join(viz.ThemeNames(), ", ")))
}

// loadConfig resolves a scene configuration: config file, else preset,
// else scene defaults, then flags on top.
func loadConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.Scene != name {
			logger.Warn("config scene overridden", "file", cfg.Scene, "arg", name)
			cfg.Scene = name
		}
	case preset != "":
		cfg = config.GetPreset(name, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
	default:
		cfg = config.ForScene(name)
	}

	flags := cmd.Flags()
	if flags.Changed("frames") && frames > 0 {
		cfg.Frames = frames
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") && workers > 0 {
		cfg.Solver.Workers = workers
	}
	if flags.Changed("substeps") && subSteps > 0 {
		cfg.Solver.SubSteps = subSteps
	}
	if flags.Lookup("record-every") != nil && flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sceneConfig feeds the window menu, which has no flags of its own.
func sceneConfig(name string) *config.Config {
	return config.ForScene(name)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newSimulator(registry *scene.Registry, cfg *config.Config) (*sim.Simulator, error) {
	sc, err := registry.Build(cfg, logger)
	if err != nil {
		return nil, err
	}
	s := sim.New(sc, logger)
	for _, m := range sim.DefaultMetrics(cfg.Solver.MaxSpeed) {
		s.AddMetric(m)
	}
	return s, nil
}

func runScene(cmd *cobra.Command, registry *scene.Registry, name string) error {
	cfg, err := loadConfig(cmd, name)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	simCfg := sim.Config{Frames: cfg.Frames, RecordEvery: cfg.RecordEvery}

	var results []*sim.Result
	logger.Info("running scene", "scene", name, "frames", cfg.Frames, "runs", runs)
	start := time.Now()
	if runs > 1 {
		results, err = sim.NewEnsemble(cfg, registry, runs, logger).Run(ctx, simCfg)
		if err != nil {
			return err
		}
	} else {
		s, err := newSimulator(registry, cfg)
		if err != nil {
			return err
		}
		result, err := s.Run(ctx, simCfg)
		if err != nil {
			return err
		}
		results = []*sim.Result{result}
	}
	elapsed := time.Since(start)

	for i, result := range results {
		runCfg := *cfg
		runCfg.Seed = cfg.Seed + uint64(i)
		runID, err := st.Save(&runCfg, result)
		if err != nil {
			return err
		}

		fmt.Printf("run id: %s\n", runID)
		fmt.Printf("frames: %d  snapshots: %d  errors: %d\n", result.FramesRun, len(result.Frames), len(result.Errors))
		fmt.Println("metrics:")
		for _, name := range sortedKeys(result.Metrics) {
			fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
		}
		for _, e := range result.Errors[:min(len(result.Errors), 3)] {
			logger.Warn("element error", "err", e)
		}
	}
	fmt.Printf("completed in %v\n", elapsed)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tSUBSTEPS\tSEED\tSNAPSHOTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.SubSteps,
			run.Seed,
			run.Snapshots,
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

	snaps, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(snaps) < 2 {
		return fmt.Errorf("no data to plot: %d snapshots", len(snaps))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("snapshots: %d\n\n", len(snaps))

	count := make([]float64, len(snaps))
	height := make([]float64, len(snaps))
	spread := make([]float64, len(snaps))
	for i, s := range snaps {
		count[i] = float64(len(s.Particles))
		if len(s.Particles) == 0 {
			continue
		}
		var sumY, minX, maxX float64
		minX, maxX = s.Particles[0].X, s.Particles[0].X
		for _, p := range s.Particles {
			sumY += p.Y
			minX = min(minX, p.X)
			maxX = max(maxX, p.X)
		}
		height[i] = meta.Height - sumY/float64(len(s.Particles))
		spread[i] = maxX - minX
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"particles", count},
		{"mean height above floor", height},
		{"horizontal spread", spread},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

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

func withOutput(fn func(w io.Writer) error) error {
	if outFile == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("run %s has no snapshots", args[0])
	}

	var svg string
	if traceIdx >= 0 {
		points := export.Trajectory(snaps, traceIdx)
		svg = export.TrajectoryToSVG(points, int(meta.Width), int(meta.Height), "#00ff88")
		if svg == "" {
			return fmt.Errorf("particle %d appears in fewer than two snapshots", traceIdx)
		}
	} else {
		idx := frameIdx
		if idx < 0 || idx >= len(snaps) {
			idx = len(snaps) - 1
		}
		svg = export.SnapshotToSVG(snaps[idx], meta.Width, meta.Height)
	}

	return withOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}

func benchScene(cmd *cobra.Command, registry *scene.Registry, name string) error {
	cfg, err := loadConfig(cmd, name)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("frames") {
		cfg.Frames = 300
	}

	workerCounts := []int{1, 2, 4, 8}
	if cmd.Flags().Changed("workers") {
		workerCounts = []int{cfg.Solver.Workers}
	}

	fmt.Printf("benchmarking %s (%d frames, %d sub-steps)\n\n", name, cfg.Frames, cfg.Solver.SubSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tPARTICLES\tLINKS\tTIME\tFRAMES/SEC\tSTEPS/SEC")

	for _, n := range workerCounts {
		runCfg := *cfg
		runCfg.Solver.Workers = n

		s, err := newSimulator(registry, &runCfg)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := s.Run(context.Background(), sim.Config{Frames: runCfg.Frames})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		world := s.Scene().World()
		fps := float64(result.FramesRun) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.0f\n",
			n, world.Particles.Len(), world.Links.Len(), elapsed.Round(time.Millisecond), fps, fps*float64(runCfg.Solver.SubSteps))
	}

	return w.Flush()
}

func comparePresets(registry *scene.Registry, name string, presets []string) error {
	fmt.Printf("comparing presets for %s (%d frames)\n\n", name, compareFrames)
	fmt.Printf("%-12s  %10s  %12s  %12s  %12s  %10s\n", "preset", "particles", "kinetic", "max_strain", "max_overlap", "time_ms")
	fmt.Println(strings.Repeat("-", 76))

	for _, p := range presets {
		cfg := config.GetPreset(name, p)
		if cfg == nil {
			fmt.Printf("%-12s  error: unknown preset\n", p)
			continue
		}
		s, err := newSimulator(registry, cfg)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", p, err)
			continue
		}

		start := time.Now()
		result, err := s.Run(context.Background(), sim.Config{Frames: compareFrames})
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", p, err)
			continue
		}

		w := s.Scene().World()
		fmt.Printf("%-12s  %10d  %12.2f  %12.4f  %12.4f  %10.2f\n", p,
			w.Particles.Len(),
			metrics.Kinetic(w.Particles),
			result.Metrics["max_link_strain"],
			result.Metrics["max_penetration"],
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}
