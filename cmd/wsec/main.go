// Package main provides the CLI entrypoint for wsec.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wsec/internal/analysis"
	"github.com/verte-zerg/wsec/internal/catalog"
	"github.com/verte-zerg/wsec/internal/config"
	"github.com/verte-zerg/wsec/internal/model"
	"github.com/verte-zerg/wsec/internal/query"
	"github.com/verte-zerg/wsec/internal/report"
	"github.com/verte-zerg/wsec/internal/selection"
	"github.com/verte-zerg/wsec/internal/solver"
	"github.com/verte-zerg/wsec/internal/store"
	"github.com/verte-zerg/wsec/internal/tui"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	globalCatalog string
	globalDB      string

	loadN  float64
	loadMx float64
	loadMy float64
	loadVx float64
	loadVy float64
	loadT  float64

	maxvmFy       float64
	maxvmMeshSize float64
	maxvmOutput   string
	maxvmColor    bool
	maxvmNoBars   bool

	statusOutput string

	browseFy       float64
	browseMeshSize float64
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		logErrf("failed to load .env: %v\n", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, store.ErrStorageUnavailable) {
			logErrln("hint: start a selection with 'wsec all'")
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wsec",
		Short:         "Browse AISC W-sections and check them under a load case",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&globalCatalog, "catalog", "", "section table (.csv or .xlsx); empty uses the built-in subset of metric W-shapes")
	rootCmd.PersistentFlags().StringVar(&globalDB, "db", "", "selection database path")

	rootCmd.AddCommand(newAllCmd())
	rootCmd.AddCommand(newFilterCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newMaxVMCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// env bundles what every command needs for one invocation.
type env struct {
	cfg     config.FileConfig
	catalog *catalog.Catalog
	store   *store.Store
	svc     *selection.Service
}

func (e *env) Close() {
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// resolvePath picks the flag value, then the config file value, then the
// environment-aware default.
func resolvePath(flagValue string, cfgValue *string, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfgValue != nil && *cfgValue != "" {
		return *cfgValue
	}
	return fallback
}

func openEnv() (*env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cat, err := catalog.Load(resolvePath(globalCatalog, fileCfg.Catalog.Path, config.DefaultCatalogPath()))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	dbPath := resolvePath(globalDB, fileCfg.Store.Path, config.DefaultDBPath())
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	return &env{
		cfg:     fileCfg,
		catalog: cat,
		store:   st,
		svc: &selection.Service{
			Catalog: cat,
			Repo:    st,
			Notify:  func(msg string) { logErrln(msg) },
		},
	}, nil
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "all [--field expr ...]",
		Short:              "Start a new selection from the whole catalog",
		Long:               "Start a new selection from the whole catalog, optionally narrowed by\nfilters such as --d <=304 --Ix >503e6. Loads are cleared.",
		DisableFlagParsing: true,
		RunE:               runAllCmd,
	}
}

func runAllCmd(cmd *cobra.Command, args []string) error {
	return runSelectionCmd(cmd, args, func(ctx context.Context, svc *selection.Service, filters map[string]string) (selection.View, error) {
		return svc.All(ctx, filters)
	})
}

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "filter --field expr [--field expr ...]",
		Short:              "Narrow the current selection",
		Long:               "Narrow the current selection. Expressions use ==, !=, <, >, <=, >= or @\n(within 10%), e.g. --W @100 --bf >=250.",
		DisableFlagParsing: true,
		RunE:               runFilterCmd,
	}
}

func runFilterCmd(cmd *cobra.Command, args []string) error {
	return runSelectionCmd(cmd, args, func(ctx context.Context, svc *selection.Service, filters map[string]string) (selection.View, error) {
		if len(filters) == 0 {
			return selection.View{}, fmt.Errorf("filter needs at least one --field expr pair")
		}
		return svc.Filter(ctx, filters)
	})
}

type selectionFunc func(ctx context.Context, svc *selection.Service, filters map[string]string) (selection.View, error)

func runSelectionCmd(cmd *cobra.Command, args []string, run selectionFunc) error {
	filterArgs, help, err := splitGlobalArgs(args)
	if err != nil {
		return err
	}
	if help {
		return cmd.Help()
	}
	filters, err := query.ParseFilterArgs(filterArgs)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	v, err := run(cmd.Context(), e.svc, filters)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), report.SelectionTable(v, e.catalog.DisplayColumns()), 0)
}

// splitGlobalArgs pulls --catalog, --db and help flags out of the raw
// arguments of commands that parse their own flags.
func splitGlobalArgs(args []string) (rest []string, help bool, err error) {
	globals := map[string]*string{"catalog": &globalCatalog, "db": &globalDB}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-h" || arg == "--help" {
			help = true
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		target, ok := globals[name]
		if !strings.HasPrefix(arg, "--") || !ok {
			rest = append(rest, arg)
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, false, fmt.Errorf("flag --%s needs a value", name)
			}
			i++
			value = args[i]
		}
		*target = value
	}
	return rest, help, nil
}

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Merge load components into the current load case",
		Long:  "Merge load components into the current load case. Units are N and N·mm;\ncomponents not given keep their stored value.",
		Args:  cobra.NoArgs,
		RunE:  runApplyCmd,
	}
	cmd.Flags().Float64Var(&loadN, "n", 0, "axial force N (N)")
	cmd.Flags().Float64Var(&loadMx, "mx", 0, "strong-axis moment Mx (N·mm)")
	cmd.Flags().Float64Var(&loadMy, "my", 0, "weak-axis moment My (N·mm)")
	cmd.Flags().Float64Var(&loadVx, "vx", 0, "shear Vx (N)")
	cmd.Flags().Float64Var(&loadVy, "vy", 0, "shear Vy (N)")
	cmd.Flags().Float64Var(&loadT, "t", 0, "torsion T (N·mm)")
	return cmd
}

func runApplyCmd(cmd *cobra.Command, _ []string) error {
	loads := changedLoads(cmd)

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	v, err := e.svc.Apply(cmd.Context(), loads)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), report.SelectionTable(v, e.catalog.DisplayColumns()), 0)
}

func changedLoads(cmd *cobra.Command) map[string]float64 {
	flags := []struct {
		flag  string
		name  string
		value *float64
	}{
		{"n", model.LoadN, &loadN},
		{"mx", model.LoadMx, &loadMx},
		{"my", model.LoadMy, &loadMy},
		{"vx", model.LoadVx, &loadVx},
		{"vy", model.LoadVy, &loadVy},
		{"t", model.LoadT, &loadT},
	}
	loads := map[string]float64{}
	for _, f := range flags {
		if cmd.Flags().Changed(f.flag) {
			loads[f.name] = *f.value
		}
	}
	return loads
}

func newMaxVMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maxvm [start:stop:step]",
		Short: "Compute max von Mises stress and DCR for the selection",
		Long:  "Compute max von Mises stress and DCR for the selection under the stored\nloads. The optional slice picks rows by their # position; negative\npositions count from the end and need a separator: wsec maxvm -- -1.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMaxVMCmd,
	}
	cmd.Flags().Float64Var(&maxvmFy, "fy", analysis.DefaultFy, "yield strength (MPa)")
	cmd.Flags().Float64Var(&maxvmMeshSize, "mesh-size", solver.DefaultMeshSize, "target mesh cell area (mm²)")
	cmd.Flags().StringVarP(&maxvmOutput, "output", "o", "", "export to .xlsx, .pdf, .csv, .png or .svg")
	cmd.Flags().BoolVar(&maxvmColor, "color", false, "force coloured DCR bars")
	cmd.Flags().BoolVar(&maxvmNoBars, "no-bars", false, "do not draw DCR bars")
	return cmd
}

func runMaxVMCmd(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) == 1 {
		raw = args[0]
	}
	slice, err := query.ParseSlice(raw)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	applyFloatConfig(cmd, "fy", &maxvmFy, e.cfg.Analysis.Fy)
	applyFloatConfig(cmd, "mesh-size", &maxvmMeshSize, e.cfg.Analysis.MeshSize)
	if err := validateAnalysisFlags(maxvmFy, maxvmMeshSize); err != nil {
		return err
	}

	av, err := e.svc.Analyze(cmd.Context(), slice, maxvmFy, solver.CellSolver{MeshSize: maxvmMeshSize})
	if err != nil {
		return fmt.Errorf("failed to analyse selection: %w", err)
	}

	t := report.AnalysisTable(av, e.catalog.DisplayColumns())
	out := cmd.OutOrStdout()
	if err := report.Render(out, t, 0); err != nil {
		return err
	}
	if len(av.Results) > 0 {
		best, _ := analysis.MaxDCR(av.Results)
		if _, err := fmt.Fprintf(out, "Governing: %s, DCR %.3f\n", best.Record.Name, best.DCR); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if !maxvmNoBars {
			if err := report.RenderDCRBars(out, av.Results, 0, report.ShouldUseColor(out, maxvmColor)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return exportTable(out, maxvmOutput, t, av.Results)
}

func validateAnalysisFlags(fy, meshSize float64) error {
	if fy <= 0 {
		return fmt.Errorf("--fy must be > 0")
	}
	if meshSize <= 0 {
		return fmt.Errorf("--mesh-size must be > 0")
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current selection",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().StringVarP(&statusOutput, "output", "o", "", "export to .xlsx, .pdf or .csv")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	v, err := e.svc.Status(cmd.Context())
	if err != nil {
		return err
	}
	t := report.SelectionTable(v, e.catalog.DisplayColumns())
	if err := report.Render(cmd.OutOrStdout(), t, 0); err != nil {
		return err
	}
	return exportTable(cmd.OutOrStdout(), statusOutput, t, nil)
}

func exportTable(w io.Writer, path string, t report.Table, results []analysis.Result) error {
	if path == "" {
		return nil
	}
	if err := report.Export(path, t, results); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Wrote %s\n", path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the current selection and loads",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.svc.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset selection: %w", err)
	}
	logErrln("Selection cleared.")
	return nil
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and analyse the selection interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	cmd.Flags().Float64Var(&browseFy, "fy", analysis.DefaultFy, "yield strength (MPa)")
	cmd.Flags().Float64Var(&browseMeshSize, "mesh-size", solver.DefaultMeshSize, "target mesh cell area (mm²)")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	applyFloatConfig(cmd, "fy", &browseFy, e.cfg.Analysis.Fy)
	applyFloatConfig(cmd, "mesh-size", &browseMeshSize, e.cfg.Analysis.MeshSize)
	if err := validateAnalysisFlags(browseFy, browseMeshSize); err != nil {
		return err
	}

	m := tui.NewModel(*e.svc, tui.Options{
		Columns: e.catalog.DisplayColumns(),
		Fy:      browseFy,
		Solver:  solver.CellSolver{MeshSize: browseMeshSize},
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wsec %s\n", version)
			return err
		},
	}
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
