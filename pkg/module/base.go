// Package module is the shared base of report modules. A module embeds
// Base, finds its tool's log files, parses them and contributes general
// statistics, plots and data files to the run.
package module

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html/template"
	"iter"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/qcreport/pkg/datasource"
	"github.com/Sumatoshi-tech/qcreport/pkg/discovery"
	"github.com/Sumatoshi-tech/qcreport/pkg/identity"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotpage"
	"github.com/Sumatoshi-tech/qcreport/pkg/report"
	"github.com/Sumatoshi-tech/qcreport/pkg/stats"
)

// Info describes a module in the report.
type Info struct {
	Name string
	// Anchor is the section id. Defaults to the slug of Name.
	Anchor string
	// Target is the link text of the intro. Defaults to Name.
	Target string
	Href   string
	Info   string
	Extra  template.HTML
}

// Base implements the helpers every module shares. It is bound to one run.
type Base struct {
	info   Info
	run    *report.Run
	logger *slog.Logger
	plots  []plotpage.Plot
}

// NewBase binds a module described by info to run.
func NewBase(run *report.Run, info Info) *Base {
	if info.Anchor == "" {
		info.Anchor = identity.Slug(info.Name)
	}

	if info.Target == "" {
		info.Target = info.Name
	}

	return &Base{
		info:   info,
		run:    run,
		logger: run.Logger.With(slog.String("module", info.Name)),
	}
}

// Name returns the module name.
func (b *Base) Name() string {
	return b.info.Name
}

// Anchor returns the module section id.
func (b *Base) Anchor() string {
	return b.info.Anchor
}

// Logger returns the module logger.
func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// Run returns the run the module is bound to.
func (b *Base) Run() *report.Run {
	return b.run
}

// Intro returns the module introduction shown above its plots.
func (b *Base) Intro() template.HTML {
	html := fmt.Sprintf(`<p><a href="%s" target="_blank">%s</a> %s</p>`,
		template.HTMLEscapeString(b.info.Href),
		template.HTMLEscapeString(b.info.Target),
		template.HTMLEscapeString(b.info.Info),
	)

	return template.HTML(html) + b.info.Extra //nolint:gosec // parts are escaped or caller-supplied HTML.
}

// FindLogFiles returns the files matching spec below the configured search roots.
func (b *Base) FindLogFiles(ctx context.Context, spec discovery.SearchSpec, mode discovery.Mode) iter.Seq[*discovery.LogFileMatch] {
	return b.run.Discovery(b.info.Name).Discover(ctx, spec, mode)
}

// CleanSampleName normalises a sample name found in a file under root.
func (b *Base) CleanSampleName(name, root string) string {
	return b.run.Resolver.Resolve(name, root)
}

// AddGeneralStats registers columns in the general statistics table under
// the module name. A second call replaces the first.
func (b *Base) AddGeneralStats(data map[string]map[string]any, columns ...stats.Column) {
	b.AddGeneralStatsIn("", data, columns...)
}

// AddGeneralStatsIn registers a block of columns under namespace, letting a
// module contribute several blocks. An empty namespace is the module name.
// Column ids always derive from the module name.
func (b *Base) AddGeneralStatsIn(namespace string, data map[string]map[string]any, columns ...stats.Column) {
	b.run.Stats.AddModuleColumns(b.info.Name, namespace, data, columns)
}

// AddDataSource records the file a sample was read from. An empty sample
// uses the sample name of match.
func (b *Base) AddDataSource(match *discovery.LogFileMatch, sample, section string) {
	b.run.Sources.Add(datasource.Source{
		Module:  b.info.Name,
		Section: section,
		Sample:  sample,
		Match:   match,
	})
}

// PlotBar builds and renders a bar plot. A plot without data, or one that
// fails to render, is replaced by an error message.
func (b *Base) PlotBar(datasets []plotdata.BarData, cats [][]plotdata.Category, cfg plotdata.BarConfig) template.HTML {
	result, err := plotdata.BuildBar(datasets, cats, cfg)
	if err != nil {
		if errors.Is(err, plotdata.ErrNoData) {
			b.logger.Warn("Tried to make bar plot, but had no data", slog.String("plot", cfg.ID))
		} else {
			b.logger.Error("Couldn't build bar plot", slog.String("plot", cfg.ID), slog.String("error", err.Error()))
		}

		return plotpage.ErrorHTML
	}

	html, err := b.run.Plots.Bar(result)
	if err != nil {
		b.logger.Error("Couldn't render bar plot", slog.String("plot", cfg.ID), slog.String("error", err.Error()))

		return plotpage.ErrorHTML
	}

	return html
}

// PlotXY builds and renders a line plot for module b.
func PlotXY[X cmp.Ordered](b *Base, datasets []plotdata.LineData[X], cfg plotdata.LineConfig) template.HTML {
	result := plotdata.BuildXY(datasets, cfg)

	html, err := b.run.Plots.Line(result)
	if err != nil {
		b.logger.Error("Couldn't render line plot", slog.String("plot", cfg.ID), slog.String("error", err.Error()))

		return plotpage.ErrorHTML
	}

	return html
}

// WriteDataFile saves data next to the report as filename plus the
// configured format extension.
func (b *Base) WriteDataFile(data map[string]map[string]any, filename string, columns ...string) error {
	path, err := b.run.Exporter.Write(filename, data, columns)
	if err != nil {
		return fmt.Errorf("%s: %w", b.info.Name, err)
	}

	b.logger.Debug("Wrote module data file", slog.String("path", path))

	return nil
}

// AddPlot appends a plot to the module section.
func (b *Base) AddPlot(title, description string, content template.HTML) {
	b.plots = append(b.plots, plotpage.Plot{
		Title:       strings.TrimSpace(title),
		Description: description,
		Content:     content,
	})
}

// AddSection adds the module section with every plot added so far to the
// report. Nothing is added when the module found no plots.
func (b *Base) AddSection() {
	if len(b.plots) == 0 {
		return
	}

	b.run.AddSection(plotpage.Section{
		Anchor: b.info.Anchor,
		Title:  b.info.Name,
		Intro:  b.Intro(),
		Plots:  b.plots,
	})

	b.plots = nil
}
