package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Cubiaa/tft-labeler/dataset"
)

// WriteHTMLChart 把每个类别的数量渲染为 HTML 柱状图
func WriteHTMLChart(path string, r *dataset.TallyReport) error {
	names, values := series(r)
	data := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		data = append(data, opts.BarData{Value: v})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Unit tally", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Unit occurrences",
			Subtitle: fmt.Sprintf("images=%d units=%d avg=%.2f", r.TotalImages, r.TotalObjects, r.Average),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 90}}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	bar.SetXAxis(names).
		AddSeries("count", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("无法创建 %s: %v", path, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("渲染图表失败: %v", err)
	}
	return f.Close()
}
