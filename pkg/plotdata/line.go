package plotdata

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
)

// LineData maps sample name to its x → y measurements.
type LineData[X cmp.Ordered] map[string]map[X]float64

// LineConfig configures a line plot.
type LineConfig struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	XLab  string `json:"xlab,omitempty"`
	YLab  string `json:"ylab,omitempty"`
	// Categories puts every sample on one shared category axis.
	Categories bool        `json:"-"`
	HideEmpty  bool        `json:"hide_empty,omitempty"`
	YMin       *float64    `json:"ymin,omitempty"`
	YMax       *float64    `json:"ymax,omitempty"`
	DataLabels []DataLabel `json:"data_labels,omitempty"`
	// Colors maps sample name to series colour.
	Colors map[string]string `json:"-"`
	// ExtraSeries are appended to the first dataset, e.g. annotation lines.
	ExtraSeries []Series `json:"-"`
}

// LineResult is the normalised line plot data.
type LineResult struct {
	Datasets []Dataset
	// Categories is the shared axis when LineConfig.Categories is set.
	Categories []string
	Config     LineConfig
}

// BuildXY builds one dataset per element of datasets, one series per sample
// in alphabetical order.
//
// Without a category axis each series holds [x, y] points sorted by x. With
// one, the axis is the sorted union of x values over all samples of all
// datasets and each series holds one value per axis entry, NaN where the
// sample has no value.
func BuildXY[X cmp.Ordered](datasets []LineData[X], cfg LineConfig) LineResult {
	result := LineResult{Config: cfg, Datasets: make([]Dataset, 0, len(datasets))}

	var axis []X
	if cfg.Categories {
		axis = lineAxis(datasets)

		result.Categories = make([]string, len(axis))
		for i, x := range axis {
			result.Categories[i] = fmt.Sprint(x)
		}
	}

	for _, data := range datasets {
		dataset := make(Dataset, 0, len(data))

		for _, sample := range slices.Sorted(maps.Keys(data)) {
			series := Series{Name: sample, Color: cfg.Colors[sample]}

			if cfg.Categories {
				series.Values = alignValues(data[sample], axis)
			} else {
				series.Points = sortedPoints(data[sample])
			}

			if cfg.HideEmpty && series.Max() <= 0 {
				continue
			}

			dataset = append(dataset, series)
		}

		result.Datasets = append(result.Datasets, dataset)
	}

	if len(result.Datasets) > 0 {
		result.Datasets[0] = append(result.Datasets[0], cfg.ExtraSeries...)
	}

	return result
}

func lineAxis[X cmp.Ordered](datasets []LineData[X]) []X {
	seen := make(map[X]struct{})

	for _, data := range datasets {
		for _, points := range data {
			for x := range points {
				seen[x] = struct{}{}
			}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

func alignValues[X cmp.Ordered](points map[X]float64, axis []X) []float64 {
	values := make([]float64, len(axis))

	for i, x := range axis {
		y, ok := points[x]
		if !ok {
			y = math.NaN()
		}

		values[i] = y
	}

	return values
}

func sortedPoints[X cmp.Ordered](points map[X]float64) []Point {
	out := make([]Point, 0, len(points))

	for _, x := range slices.Sorted(maps.Keys(points)) {
		out = append(out, Point{X: x, Y: points[x]})
	}

	return out
}
