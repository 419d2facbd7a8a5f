package plotpage

import (
	"fmt"
	"html/template"
	"log/slog"

	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
)

// DefaultFlatThreshold is the largest sample count drawn interactively.
const DefaultFlatThreshold = 50

// ErrorHTML replaces a plot that could not be drawn.
const ErrorHTML template.HTML = `<p class="text-danger">Error - was not able to plot data.</p>`

// InteractiveRenderer draws plots in the browser.
type InteractiveRenderer interface {
	Bar(result plotdata.BarResult) (template.HTML, error)
	Line(result plotdata.LineResult) (template.HTML, error)
}

// BarRenderer draws bar plots.
type BarRenderer interface {
	Bar(result plotdata.BarResult) (template.HTML, error)
}

// Selector picks the renderer for a plot by its size. Bar plots with more
// samples than the threshold are drawn as static images; smaller bar plots
// and all line plots are interactive.
type Selector struct {
	threshold   int
	interactive InteractiveRenderer
	static      BarRenderer
	logger      *slog.Logger
}

// NewSelector creates a Selector. A threshold below 1 uses DefaultFlatThreshold.
func NewSelector(threshold int, interactive InteractiveRenderer, static BarRenderer, logger *slog.Logger) *Selector {
	if threshold < 1 {
		threshold = DefaultFlatThreshold
	}

	return &Selector{
		threshold:   threshold,
		interactive: interactive,
		static:      static,
		logger:      logger.With(slog.String("component", "plots")),
	}
}

// Threshold returns the sample count above which bar plots go static.
func (s *Selector) Threshold() int {
	return s.threshold
}

// UseStatic reports whether a bar plot with samples bars is drawn as an image.
func (s *Selector) UseStatic(samples int) bool {
	return samples > s.threshold
}

// Bar renders result with the renderer matching its first dataset's size.
func (s *Selector) Bar(result plotdata.BarResult) (template.HTML, error) {
	samples := result.SampleCount()

	var (
		html template.HTML
		err  error
	)

	if s.UseStatic(samples) {
		s.logger.Debug("Drawing static bar plot", slog.String("id", result.Config.ID), slog.Int("samples", samples))
		html, err = s.static.Bar(result)
	} else {
		html, err = s.interactive.Bar(result)
	}

	if err != nil {
		return "", fmt.Errorf("render bar plot: %w", err)
	}

	return html, nil
}

// Line renders result interactively.
func (s *Selector) Line(result plotdata.LineResult) (template.HTML, error) {
	html, err := s.interactive.Line(result)
	if err != nil {
		return "", fmt.Errorf("render line plot: %w", err)
	}

	return html, nil
}
