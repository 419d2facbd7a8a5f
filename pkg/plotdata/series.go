// Package plotdata turns sample-keyed measurements into renderer-neutral
// series: x/y line series and stacked categorical bar series.
package plotdata

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is one x/y pair of a line series. It serialises as [x, y].
type Point struct {
	X any
	Y float64
}

// MarshalJSON encodes the point as a two element array.
func (p Point) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal([2]any{p.X, jsonFloat(p.Y)})
	if err != nil {
		return nil, fmt.Errorf("marshal point: %w", err)
	}

	return data, nil
}

// Series is one named line or one stacked bar segment. Exactly one of Values
// and Points is used: Values align to a shared axis (categories or samples),
// Points carry explicit x values. NaN in Values marks a missing value.
type Series struct {
	Name   string
	Values []float64
	Points []Point
	Color  string
}

type seriesJSON struct {
	Name  string `json:"name"`
	Data  any    `json:"data"`
	Color string `json:"color,omitempty"`
}

// MarshalJSON encodes the series as {"name", "data", "color"}. Missing values
// are written as null.
func (s Series) MarshalJSON() ([]byte, error) {
	out := seriesJSON{Name: s.Name, Color: s.Color}

	if s.Points != nil {
		out.Data = s.Points
	} else {
		values := make([]*float64, len(s.Values))

		for i, v := range s.Values {
			values[i] = jsonFloat(v)
		}

		out.Data = values
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal series %q: %w", s.Name, err)
	}

	return data, nil
}

// Max returns the largest value of the series, never below zero.
func (s Series) Max() float64 {
	var top float64

	for _, v := range s.Values {
		if !math.IsNaN(v) {
			top = math.Max(top, v)
		}
	}

	for _, p := range s.Points {
		top = math.Max(top, p.Y)
	}

	return top
}

// Dataset is one switchable group of series sharing an axis.
type Dataset []Series

// DataLabel names a dataset on its switch button.
type DataLabel struct {
	Name string   `json:"name"`
	YLab string   `json:"ylab,omitempty"`
	YMax *float64 `json:"ymax,omitempty"`
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
