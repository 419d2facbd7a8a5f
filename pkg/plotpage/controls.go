package plotpage

import (
	"strconv"

	"github.com/Sumatoshi-tech/qcreport/pkg/plotdata"
)

// Button actions understood by the page runtime.
const (
	actionSetData    = "set_data"
	actionSetNumbers = "set_numbers"
	actionSetPercent = "set_percent"

	defaultCountsLabel  = "Counts"
	defaultPercentLabel = "Percentages"

	stackingPercent = "percent"
)

// countsPercentSwitch returns the counts / percentages toggle of a bar plot,
// or nil when it is hidden.
func countsPercentSwitch(id string, cfg plotdata.BarConfig) []switchButton {
	if cfg.HideCPSwitch {
		return nil
	}

	counts, percent := cfg.CountsLabel, cfg.PercentLabel
	if counts == "" {
		counts = defaultCountsLabel
	}

	if percent == "" {
		percent = defaultPercentLabel
	}

	return []switchButton{
		{Label: counts, Action: actionSetNumbers, Target: id, Active: !cfg.PercentDefault},
		{Label: percent, Action: actionSetPercent, Target: id, Active: cfg.PercentDefault},
	}
}

// datasetSwitch returns one button per dataset, or nil for a single dataset.
// Unlabelled datasets are numbered from 1.
func datasetSwitch(id string, labels []plotdata.DataLabel, count int, withYMax bool) []switchButton {
	if count < 2 {
		return nil
	}

	buttons := make([]switchButton, 0, count)

	for k := range count {
		button := switchButton{
			Label:   strconv.Itoa(k + 1),
			Action:  actionSetData,
			Target:  id,
			Active:  k == 0,
			HasData: true,
			NewData: k,
		}

		if k < len(labels) && labels[k].Name != "" {
			label := labels[k]
			button.Label = label.Name
			button.YLab = label.Name

			if label.YLab != "" {
				button.YLab = label.YLab
			}

			if withYMax && label.YMax != nil {
				button.YMax = strconv.FormatFloat(*label.YMax, 'f', -1, 64)
			}
		}

		buttons = append(buttons, button)
	}

	return buttons
}

func switchGroups(groups ...[]switchButton) [][]switchButton {
	var out [][]switchButton

	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}

	return out
}
