// Package autolabel 用已有模型为新截图生成标注草稿，供人工修正
package autolabel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/Cubiaa/tft-labeler/annotation"
	"github.com/Cubiaa/tft-labeler/yolo"
)

// DefaultIOUThreshold 草稿标注使用的非极大抑制阈值
const DefaultIOUThreshold = 0.5

// Predictor 模型推理
type Predictor interface {
	Predict(img image.Image) ([]yolo.Detection, error)
}

// Labeler 为没有标注的截图生成标注
type Labeler struct {
	Predictor    Predictor
	LabelsDir    string
	IOUThreshold float32   // 0 表示 DefaultIOUThreshold
	Out          io.Writer // 默认 os.Stdout
}

// Summary 一次运行的结果
type Summary struct {
	Labeled int // 新生成标注的图片数
	Skipped int // 已有标注而跳过的图片数
	Objects int // 写入的对象总数
}

func (l *Labeler) out() io.Writer {
	if l.Out == nil {
		return os.Stdout
	}
	return l.Out
}

func (l *Labeler) iouThreshold() float32 {
	if l.IOUThreshold <= 0 {
		return DefaultIOUThreshold
	}
	return l.IOUThreshold
}

// Run 为 imagesDir 中每张还没有标注的 png 生成标注，已有标注永远不会被覆盖
func (l *Labeler) Run(imagesDir string) (*Summary, error) {
	if l.Predictor == nil {
		return nil, errors.New("没有可用的模型")
	}
	for _, dir := range []string{imagesDir, l.LabelsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建目录 %s 失败: %v", dir, err)
		}
	}

	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("无法读取目录 %s: %v", imagesDir, err)
	}

	summary := &Summary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		n, labeled, err := l.LabelImage(filepath.Join(imagesDir, e.Name()))
		if err != nil {
			return summary, err
		}
		if !labeled {
			summary.Skipped++
			continue
		}
		summary.Labeled++
		summary.Objects += n
	}

	fmt.Fprintf(l.out(), "✅ 自动标注完成: 新标注 %d 张，跳过 %d 张，共 %d 个对象\n",
		summary.Labeled, summary.Skipped, summary.Objects)
	return summary, nil
}

// LabelPath 图片对应的标注路径
func (l *Labeler) LabelPath(imagePath string) string {
	return filepath.Join(l.LabelsDir, annotation.Stem(filepath.Base(imagePath))+".xml")
}

// LabelImage 为一张图片生成标注；已有标注时返回 labeled=false
func (l *Labeler) LabelImage(imagePath string) (objects int, labeled bool, err error) {
	labelPath := l.LabelPath(imagePath)
	if _, err := os.Stat(labelPath); err == nil {
		return 0, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, false, fmt.Errorf("无法检查 %s: %v", labelPath, err)
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return 0, false, fmt.Errorf("无法打开图像文件 '%s': %v", imagePath, err)
	}
	detections, err := l.Predictor.Predict(img)
	if err != nil {
		return 0, false, fmt.Errorf("%s 推理失败: %w", imagePath, err)
	}
	detections = yolo.NonMaxSuppression(detections, l.iouThreshold())

	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return 0, false, err
	}
	record := BuildRecord(abs, img, detections)

	if err := annotation.CreateFile(labelPath, record); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	fmt.Fprintf(l.out(), "💾 %s: %d 个对象\n", filepath.Base(labelPath), len(record.Objects))
	return len(record.Objects), true, nil
}

// BuildRecord 由检测结果生成标注
//
// 坐标截断为整数并限制在图像范围内，宽或高为 0 的框被丢弃。
func BuildRecord(imagePath string, img image.Image, detections []yolo.Detection) annotation.Record {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var objects []annotation.Object
	for _, d := range detections {
		box := annotation.Box{
			XMin: clamp(d.Box[0], width),
			YMin: clamp(d.Box[1], height),
			XMax: clamp(d.Box[2], width),
			YMax: clamp(d.Box[3], height),
		}
		if !box.Valid() {
			continue
		}
		objects = append(objects, annotation.NewObject(d.Class, box))
	}
	return annotation.NewRecord(imagePath, width, height, depth(img), objects)
}

func clamp(v float32, limit int) int {
	if v < 0 {
		return 0
	}
	if v > float32(limit) {
		return limit
	}
	return int(v)
}

// depth 图像通道数：灰度图为 1，其余按 RGB 记为 3
func depth(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	return 3
}
