package plotpage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/Sumatoshi-tech/qcreport/pkg/identity"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
)

// Static figure geometry. Heights are in inches of samples/2.3, bounded, and
// converted to pixels at figureDPI.
const (
	figureDPI         = 100
	figureWidthIn     = 14
	figureMinHeightIn = 6
	figureMaxHeightIn = 30
	samplesPerInch    = 2.3
)

// ErrEmptyFigure is returned when a bar plot has no dataset to draw.
var ErrEmptyFigure = errors.New("figure has no data")

// BarLayer is one stacked series of a figure. Offsets[i] is where the
// segment of bar i starts: the sum of all earlier layers at that bar.
type BarLayer struct {
	Name    string
	Color   string
	Values  []float64
	Offsets []float64
}

// Figure is a fully laid out stacked horizontal bar chart.
type Figure struct {
	ID       string
	Title    string
	XLab     string
	YLab     string
	XMin     *float64
	XMax     *float64
	Samples  []string
	Layers   []BarLayer
	WidthPx  int
	HeightPx int
}

// ImageEncoder draws a figure as a PNG image.
type ImageEncoder interface {
	Encode(w io.Writer, fig Figure) error
}

// StaticRenderer draws the first dataset of a bar plot as an embedded PNG.
// It has no percentage mode and no dataset switching.
type StaticRenderer struct {
	encoder ImageEncoder
}

// NewStaticRenderer creates a StaticRenderer drawing with encoder.
func NewStaticRenderer(encoder ImageEncoder) *StaticRenderer {
	return &StaticRenderer{encoder: encoder}
}

// Bar renders the first dataset of result.
func (r *StaticRenderer) Bar(result plotdata.BarResult) (template.HTML, error) {
	fig, err := LayoutFigure(result)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	err = r.encoder.Encode(&buf, fig)
	if err != nil {
		return "", fmt.Errorf("encode figure %s: %w", fig.ID, err)
	}

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	return renderTemplate("plot_static.html", staticData{
		Image: template.URL(uri), //nolint:gosec // base64 PNG data generated here.
	})
}

// LayoutFigure computes bar offsets, colours and figure size for the first
// dataset of result. Bars run along the horizontal axis, so the plot's y
// label and limits apply to the x axis and vice versa.
func LayoutFigure(result plotdata.BarResult) (Figure, error) {
	if len(result.Datasets) == 0 || len(result.Samples) == 0 {
		return Figure{}, ErrEmptyFigure
	}

	cfg := result.Config
	samples := result.Samples[0]

	fig := Figure{
		ID:       identity.PlotID(cfg.ID, identity.StaticPrefix),
		Title:    cfg.Title,
		XLab:     cfg.YLab,
		YLab:     cfg.XLab,
		XMin:     cfg.YMin,
		XMax:     cfg.YMax,
		Samples:  samples,
		WidthPx:  figureWidthIn * figureDPI,
		HeightPx: FigureHeight(len(samples)),
	}

	offsets := make([]float64, len(samples))

	for idx, series := range result.Datasets[0] {
		layer := BarLayer{
			Name:    series.Name,
			Color:   series.Color,
			Values:  make([]float64, len(samples)),
			Offsets: make([]float64, len(samples)),
		}

		if layer.Color == "" {
			layer.Color = PaletteColor(idx)
		}

		copy(layer.Offsets, offsets)

		for i := range samples {
			v, _ := seriesValue(series, i)
			layer.Values[i] = v
			offsets[i] += v
		}

		fig.Layers = append(fig.Layers, layer)
	}

	return fig, nil
}

// FigureHeight returns the pixel height of a figure with samples bars.
func FigureHeight(samples int) int {
	inches := float64(samples) / samplesPerInch
	inches = min(figureMaxHeightIn, max(figureMinHeightIn, inches))

	return int(inches * figureDPI)
}
