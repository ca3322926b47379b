package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Cubiaa/tft-labeler/annotation"
)

// 统计报告参数
const (
	LeastCount    = 10  // 报告出现次数最少的类别数量
	RareThreshold = 100 // 出现次数低于该值的类别视为稀有
)

// ClassCount 一个类别的出现次数
type ClassCount struct {
	Name  string
	Count int
	Known bool // 是否在类别表中
}

// TallyReport 类别统计结果
type TallyReport struct {
	Counts       []ClassCount // 类别表顺序，表外类别按首次出现顺序排在后面
	TotalObjects int
	TotalImages  int
	Average      float64 // 每张图片的平均对象数
	StdDev       float64 // 每张图片对象数的标准差
	Least        []ClassCount
	Rare         []ClassCount
	RarePercent  float64
}

// Tally 统计数据集中每个类别的出现次数
//
// 类别表中的每个缩写都从 0 开始计数；标注中出现但不在类别表中的名称按原样计数。
func Tally(archive Archive, vocab *annotation.Vocabulary) (*TallyReport, error) {
	if _, err := os.Stat(archive.Labels); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, archive.Labels)
		}
		return nil, fmt.Errorf("无法访问目录 %s: %v", archive.Labels, err)
	}
	labels, err := listFiles(archive.Labels, LabelExt)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var counts []ClassCount
	if vocab != nil {
		for _, code := range vocab.Codes() {
			if _, ok := index[code]; ok {
				continue
			}
			index[code] = len(counts)
			counts = append(counts, ClassCount{Name: code, Known: true})
		}
	}

	perImage := make([]float64, 0, len(labels))
	total := 0
	for _, lbl := range labels {
		imagePath := archive.ImagePathFor(lbl.Stem)
		if _, err := os.Stat(imagePath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: 标注 %s 对应的图片 %s 不存在", ErrNotFound, lbl.Path, imagePath)
			}
			return nil, fmt.Errorf("无法访问 %s: %v", imagePath, err)
		}

		r, err := annotation.ReadFile(lbl.Path)
		if err != nil {
			return nil, err
		}
		for _, obj := range r.Objects {
			i, ok := index[obj.Name]
			if !ok {
				i = len(counts)
				index[obj.Name] = i
				counts = append(counts, ClassCount{Name: obj.Name})
			}
			counts[i].Count++
		}
		perImage = append(perImage, float64(len(r.Objects)))
		total += len(r.Objects)
	}

	report := &TallyReport{
		Counts:       counts,
		TotalObjects: total,
		TotalImages:  len(labels),
	}
	if len(perImage) > 0 {
		report.Average = stat.Mean(perImage, nil)
	}
	if len(perImage) > 1 {
		report.StdDev = stat.StdDev(perImage, nil)
		if math.IsNaN(report.StdDev) {
			report.StdDev = 0
		}
	}

	least := append([]ClassCount(nil), counts...)
	sort.SliceStable(least, func(i, j int) bool {
		return least[i].Count < least[j].Count
	})
	if len(least) > LeastCount {
		least = least[:LeastCount]
	}
	report.Least = least

	for _, c := range counts {
		if c.Count < RareThreshold {
			report.Rare = append(report.Rare, c)
		}
	}
	if len(counts) > 0 {
		report.RarePercent = 100 * float64(len(report.Rare)) / float64(len(counts))
	}
	return report, nil
}
