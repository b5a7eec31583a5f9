package report

import (
	"bytes"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// newCoverageChart creates a bar chart with one series per group kind and one
// bar per platform.
func newCoverageChart(projectName string, pages []PageSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: projectName + " Compatibility Reports",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Games without a report",
			Subtitle: projectName + " compatibility issues by platform",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)

	platforms := []string{}
	series := map[Kind][]opts.BarData{}
	for _, page := range pages {
		if page.Kind == KindMissing {
			platforms = append(platforms, page.Platform.Name)
		}
		series[page.Kind] = append(series[page.Kind], opts.BarData{Value: page.Count})
	}

	bar.SetXAxis(platforms)
	for _, kind := range []Kind{KindMissing, KindOutdated} {
		if data, ok := series[kind]; ok {
			bar.AddSeries(string(kind), data)
		}
	}
	return bar
}

// RenderChart renders a standalone HTML page with the counts of every page.
func (r *Renderer) RenderChart(pages []PageSummary) (string, error) {
	var buf bytes.Buffer
	if err := newCoverageChart(r.profile.Site.ProjectName, pages).Render(&buf); err != nil {
		return "", errors.Wrap(err, "unable to render chart page")
	}
	return buf.String(), nil
}
