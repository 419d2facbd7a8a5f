package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/qcreport/pkg/config"
	"github.com/Sumatoshi-tech/qcreport/pkg/observability"
	"github.com/Sumatoshi-tech/qcreport/pkg/report"
)

// ErrNoResults is returned when no module found any of its log files.
var ErrNoResults = errors.New("no analysis results found")

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	global *globalOptions

	modules       []string
	outDir        string
	filename      string
	title         string
	dataFormat    string
	backend       string
	theme         string
	flatThreshold int
	ignore        []string
	prependDirs   bool

	registryFn registryProvider
}

// NewRunCommand creates the run command.
func NewRunCommand(global *globalOptions, registryFn registryProvider) *cobra.Command {
	rc := &RunCommand{global: global, registryFn: registryFn}

	cmd := &cobra.Command{
		Use:   "run [dir...]",
		Short: "Discover logs, run modules and write the report",
		Long:  "Search the given directories (default: configured roots) and write the report with its data files.",
		RunE:  rc.run,
	}

	cmd.Flags().StringSliceVarP(&rc.modules, "modules", "m", nil, "Modules to run (default: all)")
	cmd.Flags().StringVarP(&rc.outDir, "outdir", "o", "", "Directory for data files")
	cmd.Flags().StringVarP(&rc.filename, "filename", "n", "", "Report file name")
	cmd.Flags().StringVarP(&rc.title, "title", "i", "", "Report title")
	cmd.Flags().StringVarP(&rc.dataFormat, "data-format", "k", "", "Data file format: tsv, csv, json, yaml")
	cmd.Flags().StringVar(&rc.backend, "backend", "", "Interactive plot backend: payload, echarts")
	cmd.Flags().StringVar(&rc.theme, "theme", "", "Report theme: light, dark")
	cmd.Flags().IntVar(&rc.flatThreshold, "flat-threshold", 0, "Largest sample count drawn as an interactive bar plot")
	cmd.Flags().StringSliceVarP(&rc.ignore, "ignore", "x", nil, "Additional filename globs to ignore")
	cmd.Flags().BoolVarP(&rc.prependDirs, "dirs", "d", false, "Prepend directory names to sample names")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.global.loadConfig()
	if err != nil {
		return err
	}

	err = rc.applyFlags(cmd, cfg, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	providers, err := observability.Init(ctx, rc.global.observabilityConfig(cfg))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		if shutdownErr := providers.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			providers.Logger.Warn("Telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
		}
	}()

	return rc.execute(ctx, cmd, cfg, providers)
}

func (rc *RunCommand) execute(ctx context.Context, cmd *cobra.Command, cfg *config.Config, providers observability.Providers) error {
	registry, err := rc.registryFn()
	if err != nil {
		return err
	}

	run, err := report.NewRun(cfg, report.WithProviders(providers))
	if err != nil {
		return err
	}

	run.Logger.InfoContext(ctx, "Search path", slog.String("roots", strings.Join(cfg.Search.Roots, ", ")))

	ran, err := registry.RunAll(ctx, run, rc.modules...)
	if err != nil {
		return err
	}

	if len(ran) == 0 {
		run.Logger.WarnContext(ctx, "No analysis results found. Cleaning up..")

		return ErrNoResults
	}

	path, err := run.WriteReport(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\nData:   %s\n", path, run.Exporter.Dir())

	return nil
}

// applyFlags overrides configuration with the flags given on the command line.
func (rc *RunCommand) applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		cfg.Search.Roots = args
	}

	flags := cmd.Flags()

	if flags.Changed("outdir") {
		cfg.Output.Directory = rc.outDir
	}

	if flags.Changed("filename") {
		cfg.Output.ReportFilename = rc.filename
	}

	if flags.Changed("title") {
		cfg.Output.Title = rc.title
	}

	if flags.Changed("data-format") {
		cfg.Output.DataFormat = rc.dataFormat
	}

	if flags.Changed("backend") {
		cfg.Plots.InteractiveBackend = rc.backend
	}

	if flags.Changed("theme") {
		cfg.Plots.Theme = rc.theme
	}

	if flags.Changed("flat-threshold") {
		cfg.Plots.FlatThreshold = rc.flatThreshold
	}

	if flags.Changed("dirs") {
		cfg.Search.PrependDirs = rc.prependDirs
	}

	cfg.Search.IgnoreFiles = append(cfg.Search.IgnoreFiles, rc.ignore...)

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	return nil
}
