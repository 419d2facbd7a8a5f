package plotpage

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/Sumatoshi-tech/qcreport/pkg/identity"
	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
)

// Plot types of the browser payload.
const (
	PlotTypeBar  = "bar_graph"
	PlotTypeLine = "xy_line"
)

// PayloadRenderer emits a placeholder element and a script that registers
// the plot data in the page-level mqc_plots object. Drawing is left to a
// browser-side charting runtime.
type PayloadRenderer struct{}

type barPayload struct {
	PlotType string             `json:"plot_type"`
	Samples  [][]string         `json:"samples"`
	Datasets []plotdata.Dataset `json:"datasets"`
	Config   plotdata.BarConfig `json:"config"`
}

type linePayload struct {
	PlotType string             `json:"plot_type"`
	Datasets []plotdata.Dataset `json:"datasets"`
	Config   lineConfigPayload  `json:"config"`
}

type lineConfigPayload struct {
	plotdata.LineConfig

	Categories []string `json:"categories,omitempty"`
}

// Bar renders a stacked bar plot with its counts / percentages toggle.
func (PayloadRenderer) Bar(result plotdata.BarResult) (template.HTML, error) {
	cfg := result.Config
	cfg.ID = identity.PlotID(cfg.ID, identity.InteractivePrefix)

	if !cfg.HideCPSwitch && cfg.PercentDefault {
		cfg.Stacking = stackingPercent
	}

	payload, err := json.Marshal(barPayload{
		PlotType: PlotTypeBar,
		Samples:  result.Samples,
		Datasets: result.Datasets,
		Config:   cfg,
	})
	if err != nil {
		return "", fmt.Errorf("marshal bar payload: %w", err)
	}

	return renderTemplate("plot_payload.html", payloadData{
		ID:    cfg.ID,
		Class: "hc-bar-plot",
		Switches: switchGroups(
			countsPercentSwitch(cfg.ID, cfg),
			datasetSwitch(cfg.ID, cfg.DataLabels, len(result.Datasets), false),
		),
		Payload: template.JS(payload), //nolint:gosec // json.Marshal escapes HTML characters.
	})
}

// Line renders a line plot.
func (PayloadRenderer) Line(result plotdata.LineResult) (template.HTML, error) {
	cfg := result.Config
	cfg.ID = identity.PlotID(cfg.ID, identity.InteractivePrefix)

	payload, err := json.Marshal(linePayload{
		PlotType: PlotTypeLine,
		Datasets: result.Datasets,
		Config:   lineConfigPayload{LineConfig: cfg, Categories: result.Categories},
	})
	if err != nil {
		return "", fmt.Errorf("marshal line payload: %w", err)
	}

	return renderTemplate("plot_payload.html", payloadData{
		ID:       cfg.ID,
		Class:    "hc-line-plot",
		Switches: switchGroups(datasetSwitch(cfg.ID, cfg.DataLabels, len(result.Datasets), true)),
		Payload:  template.JS(payload), //nolint:gosec // json.Marshal escapes HTML characters.
	})
}
