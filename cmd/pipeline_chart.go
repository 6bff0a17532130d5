package cmd

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
)

// renderStatsChart writes a stacked bar chart of working versions per stage
func renderStatsChart(w io.Writer, stats []services.PropStats) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Pipeline progress",
			Subtitle: "working versions per prop and stage",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	props := make([]string, 0, len(stats))
	for _, ps := range stats {
		props = append(props, ps.Prop)
	}
	bar.SetXAxis(props)

	for i, stage := range domain.Stages() {
		data := make([]opts.BarData, 0, len(stats))
		for _, ps := range stats {
			versions := 0
			if i < len(ps.Stages) {
				versions = ps.Stages[i].Versions
			}
			data = append(data, opts.BarData{Value: versions})
		}
		bar.AddSeries(stage.String(), data)
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "versions"}))

	return bar.Render(w)
}
