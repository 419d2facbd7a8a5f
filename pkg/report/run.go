// Package report holds the state of one report run and writes the report.
//
// A Run is created once per invocation and handed to every module. Modules
// register general statistics, data sources and report sections on it; the
// run then writes the HTML report and the data exports.
package report

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/qcreport/pkg/config"
	"github.com/Sumatoshi-tech/qcreport/pkg/datasource"
	"github.com/Sumatoshi-tech/qcreport/pkg/discovery"
	"github.com/Sumatoshi-tech/qcreport/pkg/export"
	"github.com/Sumatoshi-tech/qcreport/pkg/observability"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotpage"
	"github.com/Sumatoshi-tech/qcreport/pkg/samplename"
	"github.com/Sumatoshi-tech/qcreport/pkg/stats"
)

// Option configures optional Run collaborators.
type Option func(*Run)

// WithProviders sets the logger, tracer and meter of the run.
func WithProviders(providers observability.Providers) Option {
	return func(r *Run) {
		r.providers = providers
	}
}

// WithInteractiveRenderer replaces the renderer picked from the configured backend.
func WithInteractiveRenderer(renderer plotpage.InteractiveRenderer) Option {
	return func(r *Run) {
		r.interactive = renderer
	}
}

// WithImageEncoder replaces the PNG encoder of static plots.
func WithImageEncoder(encoder plotpage.ImageEncoder) Option {
	return func(r *Run) {
		r.encoder = encoder
	}
}

// WithClock sets the time source used for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Run) {
		r.now = now
	}
}

// Run is the context of one report run. It is not safe for concurrent use.
type Run struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  *observability.DiscoveryMetrics
	Resolver samplename.Resolver
	Stats    *stats.Table
	Sources  *datasource.Registry
	Exporter *export.Writer
	Plots    *plotpage.Selector

	theme       plotpage.Theme
	providers   observability.Providers
	interactive plotpage.InteractiveRenderer
	encoder     plotpage.ImageEncoder
	assets      []string
	sections    []plotpage.Section
	now         func() time.Time
}

// NewRun creates the run for cfg. Without WithProviders nothing is logged or
// recorded.
func NewRun(cfg *config.Config, options ...Option) (*Run, error) {
	run := &Run{
		Config:    cfg,
		providers: observability.Noop(nil),
		encoder:   plotpage.GoChartEncoder{},
		now:       time.Now,
	}

	for _, option := range options {
		option(run)
	}

	theme, err := plotpage.ParseTheme(cfg.Plots.Theme)
	if err != nil {
		return nil, fmt.Errorf("plot theme: %w", err)
	}

	run.theme = theme
	run.Logger = run.providers.Logger.With(slog.String("component", "report"))
	run.Tracer = run.providers.Tracer

	run.Metrics, err = observability.NewDiscoveryMetrics(run.providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("discovery metrics: %w", err)
	}

	run.Exporter, err = export.NewWriter(cfg.Output.Directory, cfg.Output.DataFormat, run.providers.Logger)
	if err != nil {
		return nil, fmt.Errorf("data export: %w", err)
	}

	if run.interactive == nil {
		run.interactive = run.backend()
	}

	run.Resolver = samplename.NewResolver(cfg.Search.CleanExts, cfg.Search.PrependDirs)
	run.Stats = stats.NewTable()
	run.Sources = datasource.NewRegistry(run.providers.Logger)
	run.Plots = plotpage.NewSelector(cfg.Plots.FlatThreshold, run.interactive,
		plotpage.NewStaticRenderer(run.encoder), run.providers.Logger)

	return run, nil
}

func (r *Run) backend() plotpage.InteractiveRenderer {
	if r.Config.Plots.InteractiveBackend == config.BackendECharts {
		renderer := plotpage.NewEChartsRenderer(r.theme)
		r.assets = append(r.assets, renderer.Assets()...)

		return renderer
	}

	return plotpage.PayloadRenderer{}
}

// Discovery returns a discovery engine over the configured search roots,
// labelled with module in logs and metrics.
func (r *Run) Discovery(module string) *discovery.Engine {
	search := r.Config.Search

	return discovery.NewEngine(discovery.Options{
		Roots:          search.Roots,
		IgnorePatterns: search.IgnoreFiles,
		SizeLimit:      search.SizeLimitBytes(),
		Resolver:       r.Resolver,
		Module:         module,
	},
		discovery.WithLogger(r.providers.Logger),
		discovery.WithTracer(r.Tracer),
		discovery.WithMetrics(r.Metrics),
	)
}

// AddSection appends a module section to the report.
func (r *Run) AddSection(section plotpage.Section) {
	r.sections = append(r.sections, section)
}

// Sections returns the module sections added so far, in order.
func (r *Run) Sections() []plotpage.Section {
	return r.sections
}
