package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DataZoom defaults.
const dataZoomEndPercent = 100

// ChartOpts provides themed chart options based on the current theme.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates a new ChartOpts with the given theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// Init returns initialization options with themed background.
func (c *ChartOpts) Init(id, width, height string) opts.Initialization {
	return opts.Initialization{
		ChartID:         id,
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
		Theme:           c.theme.EChartsTheme,
	}
}

// Title returns title options with themed text colors.
func (c *ChartOpts) Title(title string) opts.Title {
	return opts.Title{
		Title:      title,
		Left:       "center",
		TitleStyle: &opts.TextStyle{Color: c.theme.ChartText},
	}
}

// Legend returns legend options with themed text color.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Bottom:    "0",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// LabelXAxis returns a category x-axis holding labels.
func (c *ChartOpts) LabelXAxis(name string, labels []string) opts.XAxis {
	return opts.XAxis{
		Type:      "category",
		Name:      name,
		Data:      labels,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  c.axisLine(),
	}
}

// LabelYAxis returns a category y-axis holding labels.
func (c *ChartOpts) LabelYAxis(name string, labels []string) opts.YAxis {
	return opts.YAxis{
		Type:      "category",
		Name:      name,
		Data:      labels,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  c.axisLine(),
	}
}

// ValueXAxis returns a numeric x-axis. Nil bounds are left to ECharts.
func (c *ChartOpts) ValueXAxis(name string, low, high *float64) opts.XAxis {
	axis := opts.XAxis{
		Type:      "value",
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  c.axisLine(),
		SplitLine: c.splitLine(),
	}

	if low != nil {
		axis.Min = *low
	}

	if high != nil {
		axis.Max = *high
	}

	return axis
}

// ValueYAxis returns a numeric y-axis. Nil bounds are left to ECharts.
func (c *ChartOpts) ValueYAxis(name string, low, high *float64) opts.YAxis {
	axis := opts.YAxis{
		Type:      "value",
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  c.axisLine(),
		SplitLine: c.splitLine(),
	}

	if low != nil {
		axis.Min = *low
	}

	if high != nil {
		axis.Max = *high
	}

	return axis
}

func (c *ChartOpts) axisLine() *opts.AxisLine {
	return &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}}
}

func (c *ChartOpts) splitLine() *opts.SplitLine {
	return &opts.SplitLine{
		Show:      opts.Bool(true),
		LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
	}
}

// Grid returns grid options with standard margins.
func (c *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		Top:          "10%",
		Bottom:       "15%",
		Left:         "5%",
		Right:        "5%",
		ContainLabel: opts.Bool(true),
	}
}

// DataZoom returns standard data zoom options.
func (c *ChartOpts) DataZoom() []opts.DataZoom {
	return []opts.DataZoom{
		{Type: "slider", Start: 0, End: dataZoomEndPercent},
		{Type: "inside"},
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}
