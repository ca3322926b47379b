package report

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Cubiaa/tft-labeler/dataset"
)

// WritePNGChart 把每个类别的数量画成 PNG 柱状图，阈值以下的类别单独一列
func WritePNGChart(path string, r *dataset.TallyReport) error {
	names, values := series(r)
	if len(values) == 0 {
		return errors.New("没有可绘制的类别")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Unit occurrences (%d images, %d units)", r.TotalImages, r.TotalObjects)
	p.Y.Label.Text = "count"
	p.X.Tick.Label.Rotation = math.Pi / 2

	counts := make(plotter.Values, len(values))
	for i, v := range values {
		counts[i] = float64(v)
	}
	bars, err := plotter.NewBarChart(counts, vg.Points(8))
	if err != nil {
		return fmt.Errorf("创建柱状图失败: %v", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	threshold := plotter.NewFunction(func(float64) float64 { return dataset.RareThreshold })
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(threshold)
	p.Legend.Add(fmt.Sprintf("< %d", dataset.RareThreshold), threshold)

	p.NominalX(names...)

	width := vg.Points(float64(len(values))*12 + 120)
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	if err := p.Save(width, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("保存 %s 失败: %v", path, err)
	}
	return nil
}
