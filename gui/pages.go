package gui

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/Cubiaa/tft-labeler/annotation"
	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/yolo"
)

// Page 暂存区中的一张截图及其标注
type Page struct {
	Stem      string
	ImagePath string
	LabelPath string // 没有标注时为空
}

// LoadPages 按文件名顺序列出暂存区中的截图
func LoadPages(staging dataset.Archive) ([]Page, error) {
	listing, err := staging.Scan()
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(listing.Images))
	for _, img := range listing.Images {
		label, _ := listing.LabelPath(img.Stem)
		pages = append(pages, Page{Stem: img.Stem, ImagePath: img.Path, LabelPath: label})
	}
	return pages, nil
}

// RecordDetections 把标注中的对象转换为可绘制的检测框
func RecordDetections(rec annotation.Record) []yolo.Detection {
	dets := make([]yolo.Detection, 0, len(rec.Objects))
	for _, obj := range rec.Objects {
		dets = append(dets, yolo.Detection{
			Box: [4]float32{
				float32(obj.Box.XMin), float32(obj.Box.YMin),
				float32(obj.Box.XMax), float32(obj.Box.YMax),
			},
			Class: obj.Name,
		})
	}
	return dets
}

// Rendered 一页的绘制结果
type Rendered struct {
	Image   image.Image
	Objects []string // 每个对象一行
	Labeled bool
}

// Render 打开截图并画出标注框；标注缺失时只显示原图
func Render(page Page, opts *yolo.DetectionOptions) (*Rendered, error) {
	img, err := imaging.Open(page.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("无法打开图片 %s: %v", page.ImagePath, err)
	}
	if page.LabelPath == "" {
		return &Rendered{Image: img}, nil
	}

	rec, err := annotation.ReadFile(page.LabelPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Rendered{Image: img}, nil
		}
		return nil, err
	}

	// 标注没有置信度，Score 为 0 时只显示类别名
	out := &Rendered{
		Image:   yolo.DrawDetections(img, RecordDetections(rec), opts),
		Labeled: true,
	}
	for _, obj := range rec.Objects {
		b := obj.Box
		out.Objects = append(out.Objects, fmt.Sprintf("%s  (%d,%d)-(%d,%d)", obj.Name, b.XMin, b.YMin, b.XMax, b.YMax))
	}
	return out, nil
}

// planLines 把提交计划展开为每次移动一行
func planLines(plan *dataset.Plan) []string {
	moves := plan.Moves()
	lines := make([]string, 0, len(moves))
	for _, m := range moves {
		lines = append(lines, m.From+"  ->  "+m.To)
	}
	return lines
}

func position(index, total int) string {
	if total == 0 {
		return "0 / 0"
	}
	return strconv.Itoa(index+1) + " / " + strconv.Itoa(total)
}
