package plotpage

import (
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Geometry of the static renderer, in pixels.
const (
	legendColumns  = 5
	legendRowPx    = 18
	legendGapPx    = 36
	legendSwatchPx = 10
	legendFontSize = 8
	labelFontSize  = 10
	titleFontSize  = 14
	titlePadPx     = 40
	sidePadPx      = 20
	axisPadPx      = 30
	tickLengthPx   = 4
	valueTicks     = 5
	maxLabelPx     = 300
	labelGapPx     = 6
	barFill        = 0.8
)

// GoChartEncoder draws figures with the go-chart raster renderer.
type GoChartEncoder struct{}

// plotArea is the box bars are drawn in and the value range it maps.
type plotArea struct {
	box   chart.Box
	scale chart.ContinuousRange
	slot  float64
}

// Encode renders fig as a PNG to w. Each layer segment starts at its offset
// on one value axis shared by every bar. The value axis label and the legend
// are drawn in a strip below fig.HeightPx.
func (GoChartEncoder) Encode(w io.Writer, fig Figure) error {
	legendPx := legendHeight(len(fig.Layers))

	r, err := chart.PNG(fig.WidthPx, fig.HeightPx+legendPx)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	r.SetDPI(chart.DefaultDPI)
	r.SetFont(font)

	fillRect(r, chart.Box{Right: fig.WidthPx, Bottom: fig.HeightPx + legendPx}, drawing.ColorWhite)

	area := layoutArea(r, fig)

	drawTitle(r, fig)
	drawBars(r, fig, area)
	drawSampleLabels(r, fig, area)
	drawValueAxis(r, area)
	drawLegend(r, fig, area.box)

	err = r.Save(w)
	if err != nil {
		return fmt.Errorf("save png: %w", err)
	}

	return nil
}

func layoutArea(r chart.Renderer, fig Figure) plotArea {
	r.SetFontSize(labelFontSize)

	labelPx := 0
	for _, name := range fig.Samples {
		labelPx = max(labelPx, r.MeasureText(name).Width())
	}

	box := chart.Box{
		Top:    titlePadPx,
		Left:   sidePadPx + min(labelPx, maxLabelPx) + labelGapPx,
		Right:  fig.WidthPx - sidePadPx,
		Bottom: fig.HeightPx - axisPadPx,
	}

	lo, hi := valueBounds(fig)

	return plotArea{
		box:   box,
		scale: chart.ContinuousRange{Min: lo, Max: hi, Domain: box.Width()},
		slot:  float64(box.Height()) / float64(max(1, len(fig.Samples))),
	}
}

// valueBounds returns the value axis range: XMin and XMax when set, else
// zero up to the largest bar total.
func valueBounds(fig Figure) (float64, float64) {
	lo, hi := 0.0, 0.0

	for _, layer := range fig.Layers {
		for i, v := range layer.Values {
			hi = max(hi, layer.Offsets[i]+v)
		}
	}

	if fig.XMin != nil {
		lo = *fig.XMin
	}

	if fig.XMax != nil {
		hi = *fig.XMax
	}

	if hi <= lo {
		hi = lo + 1
	}

	return lo, hi
}

// x maps a value to a pixel column clamped to the plot box.
func (a plotArea) x(v float64) int {
	v = min(a.scale.Max, max(a.scale.Min, v))

	return a.box.Left + a.scale.Translate(v)
}

// row returns the top and bottom pixel rows of bar i.
func (a plotArea) row(i int) (int, int) {
	top := float64(a.box.Top) + float64(i)*a.slot
	gap := a.slot * (1 - barFill) / 2

	y0 := int(top + gap)
	y1 := max(y0+1, int(top+a.slot-gap))

	return y0, y1
}

func drawBars(r chart.Renderer, fig Figure, area plotArea) {
	for i := range fig.Samples {
		y0, y1 := area.row(i)

		for _, layer := range fig.Layers {
			if i >= len(layer.Values) || layer.Values[i] <= 0 {
				continue
			}

			x0 := area.x(layer.Offsets[i])
			x1 := area.x(layer.Offsets[i] + layer.Values[i])

			if x1 <= x0 {
				continue
			}

			fillRect(r, chart.Box{Left: x0, Top: y0, Right: x1, Bottom: y1}, hexColor(layer.Color))
		}
	}
}

// drawSampleLabels writes sample names left of their bars. Labels are
// skipped when bars are thinner than the font.
func drawSampleLabels(r chart.Renderer, fig Figure, area plotArea) {
	if area.slot < labelFontSize {
		return
	}

	r.SetFontSize(labelFontSize)
	r.SetFontColor(drawing.ColorBlack)

	for i, name := range fig.Samples {
		y0, y1 := area.row(i)
		width := r.MeasureText(name).Width()
		r.Text(name, area.box.Left-labelGapPx-width, (y0+y1)/2+labelFontSize/2)
	}
}

func drawValueAxis(r chart.Renderer, area plotArea) {
	axis := drawing.ColorFromHex("666666")

	r.SetStrokeColor(axis)
	r.SetStrokeWidth(1)
	r.MoveTo(area.box.Left, area.box.Bottom)
	r.LineTo(area.box.Right, area.box.Bottom)
	r.Stroke()

	r.SetFontSize(legendFontSize)
	r.SetFontColor(axis)

	step := area.scale.GetDelta() / valueTicks

	for n := range valueTicks + 1 {
		v := area.scale.Min + float64(n)*step
		x := area.x(v)

		r.SetStrokeColor(axis)
		r.MoveTo(x, area.box.Bottom)
		r.LineTo(x, area.box.Bottom+tickLengthPx)
		r.Stroke()

		label := chart.FloatValueFormatter(v)
		width := r.MeasureText(label).Width()
		r.Text(label, x-width/2, area.box.Bottom+tickLengthPx+legendRowPx)
	}
}

func drawTitle(r chart.Renderer, fig Figure) {
	if fig.Title == "" {
		return
	}

	r.SetFontSize(titleFontSize)
	r.SetFontColor(drawing.ColorBlack)

	width := r.MeasureText(fig.Title).Width()
	r.Text(fig.Title, (fig.WidthPx-width)/2, titlePadPx*2/3)
}

func legendHeight(layers int) int {
	rows := (layers + legendColumns - 1) / legendColumns

	return legendGapPx + rows*legendRowPx + legendRowPx
}

// drawLegend draws the value axis label and one swatch per layer in rows of
// legendColumns below the plot box.
func drawLegend(r chart.Renderer, fig Figure, box chart.Box) {
	r.SetFontColor(drawing.ColorBlack)

	base := box.Bottom + axisPadPx

	if fig.XLab != "" {
		r.SetFontSize(labelFontSize)
		width := r.MeasureText(fig.XLab).Width()
		r.Text(fig.XLab, box.Left+(box.Width()-width)/2, base+legendGapPx/2+labelFontSize/2)
	}

	r.SetFontSize(legendFontSize)

	cell := box.Width() / legendColumns
	top := base + legendGapPx

	for idx, layer := range fig.Layers {
		x := box.Left + (idx%legendColumns)*cell
		y := top + (idx/legendColumns)*legendRowPx

		fillRect(r, chart.Box{Left: x, Top: y, Right: x + legendSwatchPx, Bottom: y + legendSwatchPx}, hexColor(layer.Color))
		r.SetFontColor(drawing.ColorBlack)
		r.Text(layer.Name, x+legendSwatchPx+4, y+legendSwatchPx)
	}
}

func fillRect(r chart.Renderer, box chart.Box, color drawing.Color) {
	r.SetFillColor(color)
	r.MoveTo(box.Left, box.Top)
	r.LineTo(box.Right, box.Top)
	r.LineTo(box.Right, box.Bottom)
	r.LineTo(box.Left, box.Bottom)
	r.Close()
	r.Fill()
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
