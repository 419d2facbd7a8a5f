package plotpage

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const styleTagLen = 8 // len("</style>")

// Renderable is the interface for chart components.
type Renderable interface {
	Render(w io.Writer) error
}

// ChartWrapper wraps an echarts chart and renders only the chart content.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps an echarts chart to render only the div and script (no full HTML page).
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	if cw.chart == nil {
		return nil
	}

	var buf bytes.Buffer

	err := cw.chart.Render(&buf)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	_, err = io.WriteString(w, extractChartContent(buf.String()))
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

// extractChartContent cuts the chart element and its script out of a full
// go-echarts page. Fragments are returned unchanged.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			break
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			break
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}

	return content
}
