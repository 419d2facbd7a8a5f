package report

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/qcreport/pkg/plotpage"
)

// Data files written at the end of every run, without extension.
const (
	GeneralStatsFile = "qcreport_general_stats"
	SourcesFile      = "qcreport_sources"
)

// General statistics section of the report.
const (
	GeneralStatsAnchor = "general_stats"
	GeneralStatsTitle  = "General Statistics"
)

const (
	defaultTitle   = "qcreport"
	sampleHeader   = "Sample Name"
	dirPerm        = 0o755
	reportFilePerm = 0o644
)

// sourceColumns fixes the column order of the sources data file.
var sourceColumns = []string{"Module", "Section", "Sample Name", "Source"}

// WriteReport writes the data exports and the HTML report and returns the
// report path. A failed data export is logged and does not stop the report.
func (r *Run) WriteReport(ctx context.Context) (string, error) {
	ctx, span := r.Tracer.Start(ctx, "report.write")
	defer span.End()

	r.exportData(ctx)

	page, err := r.buildPage()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return "", err
	}

	path := r.Config.Output.ReportFilename

	err = writePage(path, page)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return "", err
	}

	span.SetAttributes(
		attribute.Int("sections", len(page.Sections)),
		attribute.Int("samples", len(r.Stats.Samples())),
	)

	if info, statErr := os.Stat(path); statErr == nil {
		r.Logger.InfoContext(ctx, "Report written",
			slog.String("path", path), slog.String("size", humanize.Bytes(uint64(info.Size())))) //nolint:gosec // file sizes are non-negative.
	}

	return path, nil
}

func (r *Run) exportData(ctx context.Context) {
	if r.Stats.Len() > 0 {
		var columns []string

		for _, h := range r.Stats.Headers() {
			columns = append(columns, h.ID)
		}

		if _, err := r.Exporter.Write(GeneralStatsFile, r.Stats.Rows(), columns); err != nil {
			r.Logger.ErrorContext(ctx, "Couldn't export general statistics", slog.String("error", err.Error()))
		}
	}

	if r.Sources.Len() > 0 {
		if _, err := r.Exporter.Write(SourcesFile, r.Sources.Table(), sourceColumns); err != nil {
			r.Logger.ErrorContext(ctx, "Couldn't export data sources", slog.String("error", err.Error()))
		}
	}
}

func (r *Run) buildPage() (*plotpage.Page, error) {
	title := r.Config.Output.Title
	if title == "" {
		title = defaultTitle
	}

	page := plotpage.NewPage(title, "").WithTheme(r.theme)
	page.Generated = r.now().Format(time.RFC1123)
	page.AddAssets(r.assets...)

	if r.Stats.Len() > 0 {
		table, err := r.GeneralStatsHTML()
		if err != nil {
			return nil, fmt.Errorf("render general statistics: %w", err)
		}

		page.Add(plotpage.Section{
			Anchor: GeneralStatsAnchor,
			Title:  GeneralStatsTitle,
			Plots:  []plotpage.Plot{{Content: table}},
		})
	}

	page.Add(r.sections...)

	return page, nil
}

// GeneralStatsHTML renders the general statistics table, one row per sample
// and one column per registered header.
func (r *Run) GeneralStatsHTML() (template.HTML, error) {
	headers := []plotpage.TableHeader{{Title: sampleHeader}}

	sections := r.Stats.Sections()
	for _, section := range sections {
		for _, h := range section.Headers {
			headers = append(headers, plotpage.TableHeader{
				Title:       h.Title,
				Description: h.Description,
				ID:          h.ID,
				Scale:       h.Scale,
				Min:         formatBound(h.DerivedMin),
				Max:         formatBound(h.DerivedMax),
			})
		}
	}

	samples := r.Stats.Samples()
	rows := make([][]string, 0, len(samples))

	for _, sample := range samples {
		row := []string{sample}

		for _, section := range sections {
			values := section.Data[sample]

			for _, h := range section.Headers {
				row = append(row, h.FormatValue(values[h.Key]))
			}
		}

		rows = append(rows, row)
	}

	return plotpage.RenderTable(headers, rows)
}

// formatBound renders a derived column bound. A column without numeric
// values has infinite bounds, which are left out.
func formatBound(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writePage(path string, page *plotpage.Page) error {
	if dir := filepath.Dir(path); dir != "." {
		err := os.MkdirAll(dir, dirPerm)
		if err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePerm)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	renderErr := page.Render(file)
	closeErr := file.Close()

	if renderErr != nil {
		return fmt.Errorf("write report %s: %w", path, renderErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close report %s: %w", path, closeErr)
	}

	return nil
}
