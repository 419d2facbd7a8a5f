// Package filescan is a reference module. It reports the size and line
// structure of every matching text file without parsing any tool syntax.
package filescan

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Sumatoshi-tech/qcreport/pkg/discovery"
	"github.com/Sumatoshi-tech/qcreport/pkg/module"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
	"github.com/Sumatoshi-tech/qcreport/pkg/report"
	"github.com/Sumatoshi-tech/qcreport/pkg/stats"
	"github.com/Sumatoshi-tech/qcreport/pkg/textutil"
)

// Name is the module name in the report.
const Name = "File Scan"

// Plot and data file ids.
const (
	LinesPlotID  = "filescan_lines_plot"
	LengthPlotID = "filescan_length_plot"
	DataFile     = "qcreport_filescan"
)

// DefaultBucketSize groups line lengths in steps of this many characters.
const DefaultBucketSize = 10

const (
	bytesPerKB = 1024
	percent    = 100
)

// DefaultNames are the filename tokens searched when Options has none.
var DefaultNames = []string{".log"}

// Options selects the files the module scans.
type Options struct {
	// Names are filename tokens. Defaults to DefaultNames when Contents is also empty.
	Names []string
	// Contents are tokens searched in the lines of each file.
	Contents []string
	// BucketSize is the line length histogram step.
	BucketSize int
}

// Module scans text files.
type Module struct {
	*module.Base

	spec   discovery.SearchSpec
	bucket int
}

// sample is what the module keeps of one file.
type sample struct {
	bytes   int
	summary textutil.LineSummary
}

// New binds the module to run.
func New(run *report.Run, opts Options) *Module {
	spec := discovery.SearchSpec{Names: opts.Names, Contents: opts.Contents}
	if spec.IsEmpty() {
		spec.Names = slices.Clone(DefaultNames)
	}

	bucket := opts.BucketSize
	if bucket < 1 {
		bucket = DefaultBucketSize
	}

	return &Module{
		Base: module.NewBase(run, module.Info{
			Name:   Name,
			Anchor: "filescan",
			Href:   "https://en.wikipedia.org/wiki/Text_file",
			Info:   "summarises the size and line structure of plain-text log files.",
		}),
		spec:   spec,
		bucket: bucket,
	}
}

// Factory returns a module factory for registries.
func Factory(opts Options) module.Factory {
	return func(run *report.Run) module.Module {
		return New(run, opts)
	}
}

// Analyze scans the matching files and adds the module to the report.
func (m *Module) Analyze(ctx context.Context) error {
	samples := make(map[string]sample)

	for match := range m.FindLogFiles(ctx, m.spec, discovery.ModeContents) {
		if match == nil {
			continue
		}

		if _, dup := samples[match.SampleName]; dup {
			m.Logger().Debug("Duplicate sample name found! Overwriting", slog.String("sample", match.SampleName))
		}

		samples[match.SampleName] = sample{
			bytes:   len(match.Content),
			summary: textutil.Summarize(match.Content, m.bucket),
		}

		m.AddDataSource(match, "", "")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", Name, err)
	}

	if len(samples) == 0 {
		return module.ErrNoLogs
	}

	m.Logger().Info("Found reports", slog.Int("samples", len(samples)))

	m.addGeneralStats(samples)

	err := m.WriteDataFile(dataTable(samples), DataFile, "bytes", "lines", "blank", "longest")
	if err != nil {
		m.Logger().Error("Couldn't write data file", slog.String("error", err.Error()))
	}

	m.AddPlot("Line Counts", "Non-empty and blank lines per file.", m.PlotBar(
		[]plotdata.BarData{lineCounts(samples)},
		[][]plotdata.Category{{
			{ID: "content", Name: "Non-empty lines", Color: "#437bb1"},
			{ID: "blank", Name: "Blank lines", Color: "#b1084c"},
		}},
		plotdata.BarConfig{
			ID:    LinesPlotID,
			Title: "File Scan: Line Counts",
			YLab:  "# Lines",
		},
	))

	counts, shares := lineLengths(samples)
	m.AddPlot("Line Lengths", fmt.Sprintf("Lines per length bucket of %d characters.", m.bucket), module.PlotXY(m.Base,
		[]plotdata.LineData[int]{counts, shares},
		plotdata.LineConfig{
			ID:    LengthPlotID,
			Title: "File Scan: Line Lengths",
			XLab:  "Line length (characters)",
			YLab:  "# Lines",
			DataLabels: []plotdata.DataLabel{
				{Name: "Counts", YLab: "# Lines"},
				{Name: "Percentages", YLab: "% of lines", YMax: stats.Float(percent)},
			},
		},
	))

	m.AddSection()

	return nil
}

func (m *Module) addGeneralStats(samples map[string]sample) {
	data := make(map[string]map[string]any, len(samples))

	for name, s := range samples {
		row := map[string]any{
			"bytes": s.bytes,
			"lines": s.summary.Lines,
		}

		if s.summary.Lines > 0 {
			row["percent_blank"] = float64(s.summary.Blank) / float64(s.summary.Lines) * percent
		}

		data[name] = row
	}

	m.AddGeneralStats(data,
		stats.Column{
			Key:         "bytes",
			Title:       "Size (KB)",
			Description: "File size in kilobytes",
			Scale:       "Blues",
			Modify:      func(v float64) float64 { return v / bytesPerKB },
		},
		stats.Column{
			Key:         "lines",
			Title:       "Lines",
			Description: "Number of lines",
			Format:      "%.0f",
		},
		stats.Column{
			Key:         "percent_blank",
			Title:       "% Blank",
			Description: "Percentage of blank lines",
			Scale:       "RdYlGn-rev",
			Min:         stats.Float(0),
			Max:         stats.Float(percent),
		},
	)
}

func dataTable(samples map[string]sample) map[string]map[string]any {
	data := make(map[string]map[string]any, len(samples))

	for name, s := range samples {
		data[name] = map[string]any{
			"bytes":   s.bytes,
			"lines":   s.summary.Lines,
			"blank":   s.summary.Blank,
			"longest": s.summary.Longest,
		}
	}

	return data
}

func lineCounts(samples map[string]sample) plotdata.BarData {
	data := make(plotdata.BarData, len(samples))

	for name, s := range samples {
		data[name] = map[string]float64{
			"content": float64(s.summary.Lines - s.summary.Blank),
			"blank":   float64(s.summary.Blank),
		}
	}

	return data
}

// lineLengths returns the length histogram of every sample as counts and as
// percentages of the sample's lines.
func lineLengths(samples map[string]sample) (plotdata.LineData[int], plotdata.LineData[int]) {
	counts := make(plotdata.LineData[int], len(samples))
	shares := make(plotdata.LineData[int], len(samples))

	for name, s := range samples {
		counts[name] = make(map[int]float64, len(s.summary.Lengths))
		shares[name] = make(map[int]float64, len(s.summary.Lengths))

		for bucket, n := range s.summary.Lengths {
			counts[name][bucket] = float64(n)
			shares[name][bucket] = float64(n) / float64(s.summary.Lines) * percent
		}
	}

	return counts, shares
}
