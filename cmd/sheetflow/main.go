package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nadeemsk/sheetflow/internal/config"
	"github.com/nadeemsk/sheetflow/internal/model"
	"github.com/nadeemsk/sheetflow/internal/ode"
	"github.com/nadeemsk/sheetflow/internal/store"
	"github.com/nadeemsk/sheetflow/internal/sweep"
	"github.com/nadeemsk/sheetflow/internal/viz"
)

var (
	configFile string
	preset     string
	outDir     string
	dataDir    string
	workbook   string
	integrator string
	etaMax     float64
	initStep   float64
	maxStep    float64
	relTol     float64
	absTol     float64
	widthIn    float64
	heightIn   float64
	dpi        int
	svgOut     bool
	// Study selection
	profileName string
	jsonOut     bool
	// Initial parameters for the live view
	weNum     float64
	betaNum   float64
	lambdaNum float64
	factor    float64
	step      float64
)

// main registers commands and flags and executes the root command. Invoking
// the binary without a subcommand runs the full sweep, matching what a plain
// figure-generation pass needs. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetflow",
		Short: "boundary layer similarity sweeps for tri-hybrid nanofluid sheets",
		RunE:  runSweep,
	}
	addSweepFlags(rootCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run every configured study and render the figures",
		RunE:  runSweep,
	}
	addSweepFlags(sweepCmd)

	runCmd := &cobra.Command{
		Use:   "run [param]",
		Short: "run the studies of one parameter and print diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  runParam,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().StringVar(&profileName, "profile", "", "restrict to one profile (velocity, crossflow, temperature)")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "emit study results as JSON")

	showCmd := &cobra.Command{
		Use:   "show [param]",
		Short: "preview the studies of one parameter in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  showParam,
	}
	addSolverFlags(showCmd)
	showCmd.Flags().StringVar(&profileName, "profile", "", "restrict to one profile (velocity, crossflow, temperature)")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "march one profile live in the terminal",
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	watchCmd.Flags().Float64Var(&etaMax, "eta-max", config.DefaultEtaMax, "outer edge of the similarity domain")
	watchCmd.Flags().Float64Var(&step, "step", config.DefaultInitStep, "march step")
	watchCmd.Flags().Float64Var(&weNum, "we", 0.5, "Weissenberg number")
	watchCmd.Flags().Float64Var(&betaNum, "beta", 0.5, "magnetic Prandtl number")
	watchCmd.Flags().Float64Var(&lambdaNum, "lambda", 0.5, "magnetic number")
	watchCmd.Flags().Float64Var(&factor, "factor", 1.0, "composition factor")

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list parameter tables, factors, studies and presets",
		RunE:  listParams,
	}
	paramsCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored studies",
		RunE:  listStudies,
	}
	runsCmd.Flags().StringVar(&dataDir, "data", ".sheetflow", "data directory")

	exportCmd := &cobra.Command{
		Use:   "export [study_id]",
		Short: "export stored study metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportStudy,
	}
	exportCmd.Flags().StringVar(&dataDir, "data", ".sheetflow", "data directory")

	rootCmd.AddCommand(sweepCmd, runCmd, showCmd, watchCmd, paramsCmd, runsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset solver settings")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator")
	cmd.Flags().Float64Var(&etaMax, "eta-max", config.DefaultEtaMax, "outer edge of the similarity domain")
	cmd.Flags().Float64Var(&initStep, "init-step", config.DefaultInitStep, "initial step size")
	cmd.Flags().Float64Var(&maxStep, "max-step", config.DefaultMaxStep, "maximum adaptive step size")
	cmd.Flags().Float64Var(&relTol, "rel-tol", config.DefaultRelTol, "relative tolerance")
	cmd.Flags().Float64Var(&absTol, "abs-tol", config.DefaultAbsTol, "absolute tolerance")
}

func addSweepFlags(cmd *cobra.Command) {
	addSolverFlags(cmd)
	cmd.Flags().StringVar(&outDir, "out", ".", "figure output directory")
	cmd.Flags().StringVar(&dataDir, "data", "", "persist study data under this directory")
	cmd.Flags().StringVar(&workbook, "workbook", "", "write an XLSX summary to this path")
	cmd.Flags().Float64Var(&widthIn, "width", config.DefaultWidthIn, "figure width in inches")
	cmd.Flags().Float64Var(&heightIn, "height", config.DefaultHeightIn, "figure height in inches")
	cmd.Flags().IntVar(&dpi, "dpi", config.DefaultDPI, "figure resolution")
	cmd.Flags().BoolVar(&svgOut, "svg", false, "also write an SVG next to each PNG")
}

// loadConfig resolves precedence: flags override the config file, which
// overrides the preset, which overrides built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		sc, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Solver = sc
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("integrator") {
		cfg.Solver.Integrator = integrator
	}
	if cmd.Flags().Changed("eta-max") {
		cfg.Solver.EtaMax = etaMax
	}
	if cmd.Flags().Changed("init-step") {
		cfg.Solver.InitStep = initStep
	}
	if cmd.Flags().Changed("max-step") {
		cfg.Solver.MaxStep = maxStep
	}
	if cmd.Flags().Changed("rel-tol") {
		cfg.Solver.RelTol = relTol
	}
	if cmd.Flags().Changed("abs-tol") {
		cfg.Solver.AbsTol = absTol
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = outDir
	}
	if cmd.Flags().Changed("data") {
		cfg.Output.DataDir = dataDir
	}
	if cmd.Flags().Changed("workbook") {
		cfg.Output.Workbook = workbook
	}
	if cmd.Flags().Changed("width") {
		cfg.Output.WidthIn = widthIn
	}
	if cmd.Flags().Changed("height") {
		cfg.Output.HeightIn = heightIn
	}
	if cmd.Flags().Changed("dpi") {
		cfg.Output.DPI = dpi
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runner := sweep.NewRunner(cfg)

	fmt.Printf("running %d studies with %s...\n", len(cfg.Studies), cfg.Solver.Integrator)
	start := time.Now()

	results, err := runner.RunAll(context.Background())
	if err != nil {
		return err
	}

	renderer := viz.NewRenderer(cfg.Output.WidthIn, cfg.Output.HeightIn, cfg.Output.DPI)
	for _, res := range results {
		fig := viz.StudyFigure(res)
		path := filepath.Join(cfg.Output.Dir, res.Study.File)
		if err := renderer.Save(fig, path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)

		if svgOut {
			svgPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".svg"
			if err := renderer.SaveSVG(fig, svgPath); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", svgPath)
		}
	}

	if cfg.Output.DataDir != "" {
		st := store.New(cfg.Output.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		for _, res := range results {
			if _, err := st.Save(res, cfg.Solver); err != nil {
				return err
			}
		}
		fmt.Printf("saved %d studies under %s\n", len(results), cfg.Output.DataDir)
	}

	if cfg.Output.Workbook != "" {
		if err := store.WriteWorkbook(cfg.Output.Workbook, results); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", cfg.Output.Workbook)
	}

	fmt.Printf("completed in %v\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nFIGURE\tPARAM\tPROFILE\tCURVES\tEVALS")
	for _, res := range results {
		evals := 0
		for _, c := range res.Curves {
			if c.Sol != nil {
				evals += c.Sol.Evals
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			res.Study.File, res.Study.Param, res.Study.Profile, len(res.Curves), evals)
	}
	return w.Flush()
}

func runParam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	studies := studiesFor(cfg, args[0])
	if len(studies) == 0 {
		return fmt.Errorf("no study sweeps parameter %q", args[0])
	}

	runner := sweep.NewRunner(cfg)
	for _, study := range studies {
		res, err := runner.RunStudy(context.Background(), study)
		if err != nil {
			return err
		}

		if jsonOut {
			if err := store.ExportJSON(os.Stdout, res, cfg.Solver); err != nil {
				return err
			}
			continue
		}

		fmt.Printf("%s (%s profile)\n", res.Study.Title, res.Study.Profile)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COMPOSITION\tVALUE\tFACTOR\tPOINTS\tWALL GRAD\tDISP THICK\tMOM THICK\tDECAY")
		for _, c := range res.Curves {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\t%.4f\t%.4f\t%.4f\t%.4f\n",
				c.Label, c.Param, c.Factor, len(c.Etas),
				c.Diag.WallVelocityGradient, c.Diag.DisplacementThickness,
				c.Diag.MomentumThickness, c.Diag.ThermalDecayRate)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func showParam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	studies := studiesFor(cfg, args[0])
	if len(studies) == 0 {
		return fmt.Errorf("no study sweeps parameter %q", args[0])
	}

	runner := sweep.NewRunner(cfg)
	for _, study := range studies {
		res, err := runner.RunStudy(context.Background(), study)
		if err != nil {
			return err
		}
		fmt.Println(viz.Preview(viz.StudyFigure(res), 80, 15))
		fmt.Println()
	}
	return nil
}

func studiesFor(cfg *config.Config, param string) []config.Study {
	studies := make([]config.Study, 0, len(cfg.Studies))
	for _, s := range cfg.Studies {
		if s.Param != param {
			continue
		}
		if profileName != "" && s.Profile != profileName {
			continue
		}
		studies = append(studies, s)
	}
	return studies
}

func runWatch(cmd *cobra.Command, args []string) error {
	sys := model.NewSheetFlow()
	sys.We = weNum
	sys.Beta = betaNum
	sys.Lambda = lambdaNum
	sys.Factor = factor

	registry := sweep.NewRegistry()
	integ, err := registry.GetIntegrator(integrator)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, registry.ListIntegrators())
	}

	odeCfg := ode.DefaultConfig()
	odeCfg.EtaMax = etaMax
	odeCfg.Step = step

	m := viz.NewModel(sys, integ, sys.DefaultState(), odeCfg)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tNAME\tVALUES\tBASELINE")
	for _, p := range cfg.Params {
		vals := make([]string, 0, len(p.Values))
		for _, v := range p.Values {
			vals = append(vals, strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\n", p.Key, p.Label, strings.Join(vals, ", "), p.Baseline())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACTOR\tCOMPOSITION")
	for i, f := range cfg.Factors {
		fmt.Fprintf(w, "%.2f\t%s\n", f, cfg.Labels[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDY\tPARAM\tPROFILE\tFILE")
	for i, s := range cfg.Studies {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, s.Param, s.Profile, s.File)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	presets := config.ListPresets()
	sort.Strings(presets)
	fmt.Println("\npresets:")
	for _, name := range presets {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func listStudies(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	studies, err := st.List()
	if err != nil {
		return err
	}

	if len(studies) == 0 {
		fmt.Println("no stored studies found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARAM\tPROFILE\tTIME\tCURVES\tINTEG")
	for _, meta := range studies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			meta.ID,
			meta.Param,
			meta.Profile,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			len(meta.Curves),
			meta.Solver.Integrator,
		)
	}
	return w.Flush()
}

func exportStudy(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
