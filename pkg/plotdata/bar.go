package plotdata

import (
	"errors"
	"maps"
	"slices"
)

// ErrNoData is returned when no dataset has a series with a positive value.
var ErrNoData = errors.New("no plottable data")

// BarData maps sample name to its category → value measurements.
type BarData map[string]map[string]float64

// Category is one stacked segment. Name is the legend label and defaults to ID.
type Category struct {
	ID    string
	Name  string
	Color string
}

// Names returns bare categories for ids, in order.
func Names(ids ...string) []Category {
	cats := make([]Category, 0, len(ids))
	for _, id := range ids {
		cats = append(cats, Category{ID: id, Name: id})
	}

	return cats
}

// BarConfig configures a stacked bar plot.
type BarConfig struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"`
	XLab  string   `json:"xlab,omitempty"`
	YLab  string   `json:"ylab,omitempty"`
	YMin  *float64 `json:"ymin,omitempty"`
	YMax  *float64 `json:"ymax,omitempty"`
	// HideCPSwitch removes the counts / percentages toggle.
	HideCPSwitch bool `json:"-"`
	// PercentDefault starts the plot in percentage mode.
	PercentDefault bool        `json:"-"`
	CountsLabel    string      `json:"-"`
	PercentLabel   string      `json:"-"`
	DataLabels     []DataLabel `json:"data_labels,omitempty"`
	// Stacking is set by renderers, "percent" in percentage mode.
	Stacking string `json:"stacking,omitempty"`
}

// BarResult is the normalised bar plot data. Samples[i] lists the bar order
// of Datasets[i].
type BarResult struct {
	Samples  [][]string
	Datasets []Dataset
	Config   BarConfig
}

// SampleCount returns the number of bars in the first dataset.
func (r BarResult) SampleCount() int {
	if len(r.Samples) == 0 {
		return 0
	}

	return len(r.Samples[0])
}

// BuildBar builds one dataset per element of datasets, one series per
// category. cats[i] lists the categories of datasets[i]; a single list is
// used for every dataset, and a nil or missing list is derived as the sorted
// union of the dataset's keys.
//
// A series holds the values of the samples that have its category, in
// alphabetical sample order. Series without a positive value are dropped,
// datasets without series are dropped, and ErrNoData is returned when
// nothing is left.
func BuildBar(datasets []BarData, cats [][]Category, cfg BarConfig) (BarResult, error) {
	result := BarResult{Config: cfg}

	for idx, data := range datasets {
		samples := slices.Sorted(maps.Keys(data))

		var dataset Dataset

		for _, cat := range categoriesFor(idx, data, cats) {
			values := make([]float64, 0, len(samples))

			for _, sample := range samples {
				if v, ok := data[sample][cat.ID]; ok {
					values = append(values, v)
				}
			}

			series := Series{Name: cat.Name, Values: values, Color: cat.Color}
			if cat.Name == "" {
				series.Name = cat.ID
			}

			if len(values) == 0 || series.Max() <= 0 {
				continue
			}

			dataset = append(dataset, series)
		}

		if len(dataset) == 0 {
			continue
		}

		result.Samples = append(result.Samples, samples)
		result.Datasets = append(result.Datasets, dataset)
	}

	if len(result.Datasets) == 0 {
		return result, ErrNoData
	}

	return result, nil
}

func categoriesFor(idx int, data BarData, cats [][]Category) []Category {
	switch {
	case idx < len(cats) && cats[idx] != nil:
		return cats[idx]
	case len(cats) == 1 && cats[0] != nil:
		return cats[0]
	}

	seen := make(map[string]struct{})

	for _, values := range data {
		for key := range values {
			seen[key] = struct{}{}
		}
	}

	return Names(slices.Sorted(maps.Keys(seen))...)
}
