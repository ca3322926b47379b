// Package report 输出类别统计：文本摘要、HTML 柱状图和 PNG 柱状图
package report

import (
	"fmt"
	"io"

	"github.com/Cubiaa/tft-labeler/dataset"
)

// PrintTally 打印统计摘要；verbose 时先列出每个类别的数量
func PrintTally(w io.Writer, r *dataset.TallyReport, verbose bool) {
	if verbose {
		for _, c := range r.Counts {
			fmt.Fprintf(w, "%s: %d%s\n", c.Name, c.Count, unknownMark(c))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "📊 Total units: %d\n", r.TotalObjects)
	fmt.Fprintf(w, "Total images: %d\n", r.TotalImages)
	fmt.Fprintf(w, "Average units per image: %.2f (std dev %.2f)\n", r.Average, r.StdDev)

	fmt.Fprintf(w, "\n%d least occurring units:\n", len(r.Least))
	for _, c := range r.Least {
		fmt.Fprintf(w, "%s: %d%s\n", c.Name, c.Count, unknownMark(c))
	}

	fmt.Fprintf(w, "\nUnits that occur less than %d times:\n", dataset.RareThreshold)
	for _, c := range r.Rare {
		fmt.Fprintf(w, "%s: %d%s\n", c.Name, c.Count, unknownMark(c))
	}
	fmt.Fprintf(w, "%.1f%% of units occur less than %d times\n", r.RarePercent, dataset.RareThreshold)
}

func unknownMark(c dataset.ClassCount) string {
	if c.Known {
		return ""
	}
	return " ⚠️  (not in vocabulary)"
}

// series 按类别表顺序返回类别名和数量
func series(r *dataset.TallyReport) (names []string, values []int) {
	for _, c := range r.Counts {
		names = append(names, c.Name)
		values = append(values, c.Count)
	}
	return names, values
}
