package plotpage_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotpage"
)

// recordingRenderer records the plots it is asked to draw.
type recordingRenderer struct {
	name  string
	bars  []plotdata.BarResult
	lines []plotdata.LineResult
}

func (r *recordingRenderer) Bar(result plotdata.BarResult) (template.HTML, error) {
	r.bars = append(r.bars, result)

	return template.HTML(r.name), nil
}

func (r *recordingRenderer) Line(result plotdata.LineResult) (template.HTML, error) {
	r.lines = append(r.lines, result)

	return template.HTML(r.name), nil
}

// recordingEncoder records figures and writes a fixed payload.
type recordingEncoder struct {
	figures []plotpage.Figure
	err     error
}

func (e *recordingEncoder) Encode(w io.Writer, fig plotpage.Figure) error {
	e.figures = append(e.figures, fig)
	if e.err != nil {
		return e.err
	}

	_, err := w.Write([]byte("png"))

	return err
}

func barResult(samples int) plotdata.BarResult {
	data := plotdata.BarData{}
	for i := range samples {
		data[string(rune('a'+i%26))+strings.Repeat("x", i/26)] = map[string]float64{"A": float64(i + 1)}
	}

	result, err := plotdata.BuildBar([]plotdata.BarData{data}, nil, plotdata.BarConfig{ID: "plot"})
	if err != nil {
		panic(err)
	}

	return result
}

func newSelector() (*plotpage.Selector, *recordingRenderer, *recordingRenderer) {
	interactive := &recordingRenderer{name: "interactive"}
	static := &recordingRenderer{name: "static"}

	return plotpage.NewSelector(0, interactive, static, slog.New(slog.DiscardHandler)), interactive, static
}

func TestSelector_Threshold(t *testing.T) {
	t.Parallel()

	selector, interactive, static := newSelector()
	assert.Equal(t, plotpage.DefaultFlatThreshold, selector.Threshold())

	html, err := selector.Bar(barResult(50))
	require.NoError(t, err)
	assert.Equal(t, template.HTML("interactive"), html)

	html, err = selector.Bar(barResult(51))
	require.NoError(t, err)
	assert.Equal(t, template.HTML("static"), html)

	assert.Len(t, interactive.bars, 1)
	require.Len(t, static.bars, 1)
	assert.Equal(t, 51, static.bars[0].SampleCount())
}

func TestSelector_LineAlwaysInteractive(t *testing.T) {
	t.Parallel()

	selector, interactive, _ := newSelector()

	data := plotdata.LineData[int]{}
	for i := range 200 {
		data[strings.Repeat("s", i+1)] = map[int]float64{1: 1}
	}

	_, err := selector.Line(plotdata.BuildXY([]plotdata.LineData[int]{data}, plotdata.LineConfig{}))
	require.NoError(t, err)
	assert.Len(t, interactive.lines, 1)
}

func TestSelector_WrapsErrors(t *testing.T) {
	t.Parallel()

	encoder := &recordingEncoder{err: errors.New("boom")}
	selector := plotpage.NewSelector(1, &recordingRenderer{}, plotpage.NewStaticRenderer(encoder), slog.New(slog.DiscardHandler))

	_, err := selector.Bar(barResult(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

var payloadRe = regexp.MustCompile(`(?s)mqc_plots\["([^"]+)"\] = (\{.*\});`)

func decodePayload(t *testing.T, html template.HTML) (string, map[string]any) {
	t.Helper()

	m := payloadRe.FindStringSubmatch(string(html))
	require.Len(t, m, 3, string(html))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(m[2]), &payload))

	return m[1], payload
}

func TestPayloadRenderer_Bar(t *testing.T) {
	t.Parallel()

	first := plotdata.BarData{"s1": {"A": 5, "B": 0}, "s2": {"A": 0, "B": 3}}
	second := plotdata.BarData{"s1": {"A": 1}}

	result, err := plotdata.BuildBar([]plotdata.BarData{first, second}, nil, plotdata.BarConfig{
		ID:             "reads_plot",
		PercentDefault: true,
		DataLabels:     []plotdata.DataLabel{{Name: "Reads", YLab: "Read count"}},
	})
	require.NoError(t, err)

	html, err := plotpage.PayloadRenderer{}.Bar(result)
	require.NoError(t, err)

	id, payload := decodePayload(t, html)
	assert.Equal(t, "reads_plot", id)
	assert.Equal(t, plotpage.PlotTypeBar, payload["plot_type"])
	assert.Equal(t, []any{[]any{"s1", "s2"}, []any{"s1"}}, payload["samples"])

	cfg, ok := payload["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "percent", cfg["stacking"])

	out := string(html)
	assert.Contains(t, out, `<div id="reads_plot" class="hc-plot not_rendered hc-bar-plot">`)
	assert.Contains(t, out, `data-action="set_percent" data-target="reads_plot">Percentages</button>`)
	assert.Contains(t, out, `class="btn btn-default btn-sm active" data-action="set_percent"`)
	assert.Contains(t, out, `data-ylab="Read count" data-newdata="0" data-target="reads_plot">Reads</button>`)
	assert.Contains(t, out, `data-newdata="1" data-target="reads_plot">2</button>`)
}

func TestPayloadRenderer_BarRandomIDNoSwitch(t *testing.T) {
	t.Parallel()

	result, err := plotdata.BuildBar([]plotdata.BarData{{"s1": {"A": 1}}}, nil, plotdata.BarConfig{HideCPSwitch: true})
	require.NoError(t, err)

	html, err := plotpage.PayloadRenderer{}.Bar(result)
	require.NoError(t, err)

	id, payload := decodePayload(t, html)
	assert.Regexp(t, `^mqc_hcplot_[A-Za-z]{10}$`, id)
	assert.NotContains(t, string(html), "switch_group")

	cfg, ok := payload["config"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, cfg, "stacking")
}

func TestPayloadRenderer_Line(t *testing.T) {
	t.Parallel()

	data := plotdata.LineData[string]{"s1": {"q1": 1, "q2": 2}, "s2": {"q2": 4}}
	ymax := 10.0

	result := plotdata.BuildXY([]plotdata.LineData[string]{data, data}, plotdata.LineConfig{
		ID:         "quality",
		Categories: true,
		DataLabels: []plotdata.DataLabel{{Name: "Raw", YMax: &ymax}},
	})

	html, err := plotpage.PayloadRenderer{}.Line(result)
	require.NoError(t, err)

	_, payload := decodePayload(t, html)
	assert.Equal(t, plotpage.PlotTypeLine, payload["plot_type"])
	assert.NotContains(t, payload, "samples")

	cfg, ok := payload["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"q1", "q2"}, cfg["categories"])

	datasets, ok := payload["datasets"].([]any)
	require.True(t, ok)
	require.Len(t, datasets, 2)

	s2 := datasets[0].([]any)[1].(map[string]any)
	assert.Equal(t, []any{nil, 4.0}, s2["data"])

	assert.Contains(t, string(html), `data-ylab="Raw" data-ymax="10" data-newdata="0"`)
	assert.Contains(t, string(html), "hc-line-plot")
}

func TestLayoutFigure(t *testing.T) {
	t.Parallel()

	result, err := plotdata.BuildBar([]plotdata.BarData{{
		"s1": {"A": 5, "B": 1},
		"s2": {"A": 2, "B": 3},
	}}, [][]plotdata.Category{{{ID: "A"}, {ID: "B", Color: "#123456"}}}, plotdata.BarConfig{XLab: "Sample", YLab: "Reads"})
	require.NoError(t, err)

	fig, err := plotpage.LayoutFigure(result)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, fig.Samples)
	assert.Equal(t, "Reads", fig.XLab)
	assert.Equal(t, "Sample", fig.YLab)
	assert.Equal(t, 1400, fig.WidthPx)
	assert.Equal(t, 600, fig.HeightPx)
	assert.Regexp(t, `^mqc_mplplot_[A-Za-z]{10}$`, fig.ID)

	require.Len(t, fig.Layers, 2)
	assert.Equal(t, plotpage.DefaultPalette[0], fig.Layers[0].Color)
	assert.Equal(t, []float64{0, 0}, fig.Layers[0].Offsets)
	assert.Equal(t, "#123456", fig.Layers[1].Color)
	assert.Equal(t, []float64{5, 2}, fig.Layers[1].Offsets)
	assert.Equal(t, []float64{1, 3}, fig.Layers[1].Values)
}

func TestLayoutFigure_Empty(t *testing.T) {
	t.Parallel()

	_, err := plotpage.LayoutFigure(plotdata.BarResult{})
	require.ErrorIs(t, err, plotpage.ErrEmptyFigure)
}

func TestFigureHeight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 600, plotpage.FigureHeight(1))
	assert.Equal(t, 600, plotpage.FigureHeight(13))
	assert.Equal(t, 1000, plotpage.FigureHeight(23))
	assert.Equal(t, 3000, plotpage.FigureHeight(69))
	assert.Equal(t, 3000, plotpage.FigureHeight(5000))
}

func TestPaletteColor_Wraps(t *testing.T) {
	t.Parallel()

	n := len(plotpage.DefaultPalette)

	assert.Equal(t, plotpage.DefaultPalette[0], plotpage.PaletteColor(0))
	assert.Equal(t, plotpage.DefaultPalette[n-1], plotpage.PaletteColor(n-1))
	assert.Equal(t, plotpage.DefaultPalette[0], plotpage.PaletteColor(n))
	assert.Equal(t, plotpage.DefaultPalette[1], plotpage.PaletteColor(n+1))
}

func TestStaticRenderer_Bar(t *testing.T) {
	t.Parallel()

	encoder := &recordingEncoder{}

	html, err := plotpage.NewStaticRenderer(encoder).Bar(barResult(60))
	require.NoError(t, err)

	require.Len(t, encoder.figures, 1)
	assert.Len(t, encoder.figures[0].Samples, 60)
	assert.Equal(t, `<div class="mqc_mplplot_plotgroup"><img src="data:image/png;base64,cG5n"/></div>`,
		strings.TrimSpace(string(html)))
}

func TestEChartsRenderer_Bar(t *testing.T) {
	t.Parallel()

	result, err := plotdata.BuildBar([]plotdata.BarData{
		{"s1": {"A": 5, "B": 1}},
		{"s1": {"A": 2}},
	}, nil, plotdata.BarConfig{ID: "ec", PercentDefault: true})
	require.NoError(t, err)

	html, err := plotpage.NewEChartsRenderer(plotpage.ThemeLight).Bar(result)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `id="ec"`)
	assert.Equal(t, 4, strings.Count(out, `class="plot-view`))
	assert.Equal(t, 1, strings.Count(out, `class="plot-view"`))
	assert.Contains(t, out, `data-dataset="0" data-mode="percent">`)
	assert.Contains(t, out, "ec_1_counts")
	assert.NotContains(t, out, "<!DOCTYPE")
	assert.Contains(t, out, `"stack":"total"`)
}

func TestEChartsRenderer_Line(t *testing.T) {
	t.Parallel()

	result := plotdata.BuildXY([]plotdata.LineData[int]{{"s1": {1: 2, 3: 4}}}, plotdata.LineConfig{ID: "len"})

	renderer := plotpage.NewEChartsRenderer(plotpage.ThemeDark)

	html, err := renderer.Line(result)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "len_0")
	assert.Contains(t, out, "echart-box")
	assert.NotContains(t, out, "switch_group")
	assert.Equal(t, []string{plotpage.EChartsAsset}, renderer.Assets())
}

func TestPage_Render(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("QC report", "Summary of <3> runs").WithTheme(plotpage.ThemeDark)
	page.AddAssets(plotpage.EChartsAsset, plotpage.EChartsAsset)
	page.Add(plotpage.Section{
		Anchor: "filescan",
		Title:  "File scan",
		Intro:  template.HTML(`<p>intro</p>`),
		Plots:  []plotpage.Plot{{Title: "Lines", Content: plotpage.ErrorHTML}},
	})

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, `<html lang="en" class="dark">`)
	assert.Contains(t, out, "Summary of &lt;3&gt; runs")
	assert.Contains(t, out, `<section id="filescan"`)
	assert.Contains(t, out, `<a href="#filescan">File scan</a>`)
	assert.Contains(t, out, "<p>intro</p>")
	assert.Contains(t, out, string(plotpage.ErrorHTML))
	assert.Equal(t, 1, strings.Count(out, plotpage.EChartsAsset))
	assert.Contains(t, out, "var mqc_plots = {};")
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	html, err := plotpage.RenderTable(
		[]plotpage.TableHeader{{Title: "Sample"}, {Title: "Depth", Description: "modA: depth"}},
		[][]string{{"s1", "10.0"}, {"<s2>", ""}},
	)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `<th title="modA: depth">Depth</th>`)
	assert.Contains(t, out, "<td>s1</td><td>10.0</td>")
	assert.Contains(t, out, "&lt;s2&gt;")
}

func TestRenderTable_ColumnScaleAttributes(t *testing.T) {
	t.Parallel()

	html, err := plotpage.RenderTable(
		[]plotpage.TableHeader{{Title: "Depth", ID: "moda_depth", Scale: "GnBu", Min: "0.5", Max: "20"}},
		nil,
	)
	require.NoError(t, err)

	assert.Contains(t, string(html), `<th data-id="moda_depth" data-scale="GnBu" data-dmin="0.5" data-dmax="20">Depth</th>`)
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := plotpage.ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)

	_, err = plotpage.ParseTheme("neon")
	require.ErrorIs(t, err, plotpage.ErrUnknownTheme)
}

type fullPageChart struct{}

func (fullPageChart) Render(w io.Writer) error {
	_, err := io.WriteString(w, `<!DOCTYPE html><html><head><style>.x{}</style></head><body>`+
		`<div class="container"><style>.y{}</style><div id="c"></div></div><script>go()</script></body></html>`)

	return err
}

func TestWrapChart_ExtractsContent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, plotpage.WrapChart(fullPageChart{}).Render(&buf))

	assert.Equal(t, `<div class="echart-box"><div id="c"></div></div><script>go()</script>`, buf.String())
	require.NoError(t, plotpage.WrapChart(nil).Render(&buf))
}
