package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"maps"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/qcreport/pkg/identity"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
)

// EChartsAsset is the script the page loads for ECharts plots.
const EChartsAsset = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

const (
	chartWidth      = "100%"
	lineChartHeight = "450px"
	barRowPx        = 22
	barMinHeightPx  = 250
	stackName       = "total"
	percentScale    = 100

	modeCounts  = "counts"
	modePercent = "percent"
)

// EChartsRenderer draws plots with ECharts. Every dataset, and for bar plots
// every counts / percentages mode, becomes its own chart; the page switches
// between them.
type EChartsRenderer struct {
	opts *ChartOpts
}

// NewEChartsRenderer creates an EChartsRenderer styled for theme.
func NewEChartsRenderer(theme Theme) *EChartsRenderer {
	return &EChartsRenderer{opts: NewChartOpts(theme)}
}

// Assets returns the scripts the page must load.
func (r *EChartsRenderer) Assets() []string {
	return []string{EChartsAsset}
}

// Bar renders stacked horizontal bar charts, one bar per sample.
func (r *EChartsRenderer) Bar(result plotdata.BarResult) (template.HTML, error) {
	cfg := result.Config
	cfg.ID = identity.PlotID(cfg.ID, identity.InteractivePrefix)

	modes := []string{modeCounts}
	active := modeCounts

	if !cfg.HideCPSwitch {
		modes = append(modes, modePercent)

		if cfg.PercentDefault {
			active = modePercent
		}
	}

	var views []echartsView

	for k, dataset := range result.Datasets {
		for _, mode := range modes {
			chart := r.buildBar(fmt.Sprintf("%s_%d_%s", cfg.ID, k, mode), cfg, result.Samples[k], dataset, mode == modePercent)

			html, err := renderECharts(chart)
			if err != nil {
				return "", err
			}

			view := echartsView{Dataset: k, Visible: k == 0 && mode == active, Chart: html}
			if len(modes) > 1 {
				view.Mode = mode
			}

			views = append(views, view)
		}
	}

	return renderTemplate("plot_echarts.html", echartsData{
		ID:   cfg.ID,
		Mode: active,
		Switches: switchGroups(
			countsPercentSwitch(cfg.ID, cfg),
			datasetSwitch(cfg.ID, cfg.DataLabels, len(result.Datasets), false),
		),
		Views: views,
	})
}

// Line renders one line chart per dataset.
func (r *EChartsRenderer) Line(result plotdata.LineResult) (template.HTML, error) {
	cfg := result.Config
	cfg.ID = identity.PlotID(cfg.ID, identity.InteractivePrefix)

	views := make([]echartsView, 0, len(result.Datasets))

	for k, dataset := range result.Datasets {
		chart := r.buildLine(fmt.Sprintf("%s_%d", cfg.ID, k), cfg, result.Categories, dataset)

		html, err := renderECharts(chart)
		if err != nil {
			return "", err
		}

		views = append(views, echartsView{Dataset: k, Visible: k == 0, Chart: html})
	}

	return renderTemplate("plot_echarts.html", echartsData{
		ID:       cfg.ID,
		Mode:     modeCounts,
		Switches: switchGroups(datasetSwitch(cfg.ID, cfg.DataLabels, len(result.Datasets), true)),
		Views:    views,
	})
}

func (r *EChartsRenderer) buildBar(
	id string, cfg plotdata.BarConfig, samples []string, dataset plotdata.Dataset, percent bool,
) *charts.Bar {
	height := max(barMinHeightPx, len(samples)*barRowPx)

	valueAxis := r.opts.ValueXAxis(cfg.YLab, cfg.YMin, cfg.YMax)
	if percent {
		ceiling := float64(percentScale)
		valueAxis = r.opts.ValueXAxis("%", nil, &ceiling)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(r.opts.Init(id, chartWidth, fmt.Sprintf("%dpx", height))),
		charts.WithTitleOpts(r.opts.Title(cfg.Title)),
		charts.WithTooltipOpts(r.opts.Tooltip("axis")),
		charts.WithGridOpts(r.opts.Grid()),
		charts.WithLegendOpts(r.opts.Legend()),
		charts.WithXAxisOpts(valueAxis),
		charts.WithYAxisOpts(r.opts.LabelYAxis(cfg.XLab, samples)),
	)

	var totals []float64
	if percent {
		totals = sampleTotals(dataset, len(samples))
	}

	for idx, series := range dataset {
		data := make([]opts.BarData, len(samples))

		for i := range samples {
			v, ok := seriesValue(series, i)
			if !ok {
				continue
			}

			if percent {
				v = percentOf(v, totals[i])
			}

			data[i] = opts.BarData{Value: v}
		}

		color := series.Color
		if color == "" {
			color = PaletteColor(idx)
		}

		bar.AddSeries(series.Name, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: stackName}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}

	return bar
}

func (r *EChartsRenderer) buildLine(id string, cfg plotdata.LineConfig, categories []string, dataset plotdata.Dataset) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(r.opts.Init(id, chartWidth, lineChartHeight)),
		charts.WithTitleOpts(r.opts.Title(cfg.Title)),
		charts.WithTooltipOpts(r.opts.Tooltip("axis")),
		charts.WithGridOpts(r.opts.Grid()),
		charts.WithLegendOpts(r.opts.Legend()),
		charts.WithDataZoomOpts(r.opts.DataZoom()...),
		charts.WithYAxisOpts(r.opts.ValueYAxis(cfg.YLab, cfg.YMin, cfg.YMax)),
	)

	labels := categories
	if labels == nil && !numericPoints(dataset) {
		labels = pointLabels(dataset)
	}

	if labels != nil {
		line.SetGlobalOptions(charts.WithXAxisOpts(r.opts.LabelXAxis(cfg.XLab, labels)))
		line.SetXAxis(labels)
	} else {
		line.SetGlobalOptions(charts.WithXAxisOpts(r.opts.ValueXAxis(cfg.XLab, nil, nil)))
	}

	for idx, series := range dataset {
		var data []opts.LineData

		if series.Points != nil {
			data = make([]opts.LineData, len(series.Points))
			for i, p := range series.Points {
				data[i] = opts.LineData{Value: []any{p.X, p.Y}}
			}
		} else {
			data = make([]opts.LineData, len(series.Values))
			for i, v := range series.Values {
				if !math.IsNaN(v) {
					data[i] = opts.LineData{Value: v}
				}
			}
		}

		color := series.Color
		if color == "" {
			color = PaletteColor(idx)
		}

		line.AddSeries(series.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color}),
		)
	}

	return line
}

func renderECharts(chart Renderable) (template.HTML, error) {
	var buf bytes.Buffer

	err := WrapChart(chart).Render(&buf)
	if err != nil {
		return "", err
	}

	return template.HTML(buf.String()), nil //nolint:gosec // chart markup generated by go-echarts.
}

// seriesValue returns the value of series at bar i. Values of samples that
// lacked the category are missing from the end of a series.
func seriesValue(series plotdata.Series, i int) (float64, bool) {
	if i >= len(series.Values) || math.IsNaN(series.Values[i]) {
		return 0, false
	}

	return series.Values[i], true
}

func sampleTotals(dataset plotdata.Dataset, samples int) []float64 {
	totals := make([]float64, samples)

	for _, series := range dataset {
		for i := range samples {
			if v, ok := seriesValue(series, i); ok {
				totals[i] += v
			}
		}
	}

	return totals
}

func percentOf(v, total float64) float64 {
	if total == 0 {
		return 0
	}

	return v / total * percentScale
}

func numericPoints(dataset plotdata.Dataset) bool {
	for _, series := range dataset {
		for _, p := range series.Points {
			switch p.X.(type) {
			case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			default:
				return false
			}
		}
	}

	return true
}

func pointLabels(dataset plotdata.Dataset) []string {
	seen := make(map[string]struct{})

	for _, series := range dataset {
		for _, p := range series.Points {
			seen[fmt.Sprint(p.X)] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
