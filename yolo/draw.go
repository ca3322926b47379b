package yolo

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawDetections 把检测框和类别标签画在原图的副本上
func DrawDetections(img image.Image, detections []Detection, opts *DetectionOptions) *image.RGBA {
	if opts == nil {
		opts = DefaultDetectionOptions()
	}

	// 转换为可绘制的图像
	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	boxColor := ParseColor(opts.BoxColor, color.RGBA{255, 0, 0, 255})
	labelColor := ParseColor(opts.LabelColor, color.RGBA{255, 255, 255, 255})

	for _, d := range detections {
		if opts.DrawBoxes {
			drawBBox(canvas, d.Box, boxColor, opts.LineWidth)
		}
		if opts.DrawLabels {
			label := d.Class
			if d.Score > 0 {
				label = fmt.Sprintf("%s %.2f", d.Class, d.Score)
			}
			drawLabel(canvas, label, int(d.Box[0]), int(d.Box[1])-20, labelColor)
		}
	}
	return canvas
}

// drawBBox 画矩形框，超出图像的部分被截断
func drawBBox(img *image.RGBA, bbox [4]float32, lineColor color.Color, lineWidth int) {
	bounds := img.Bounds()
	clampX := func(v float32) int {
		return int(max(float32(bounds.Min.X), min(float32(bounds.Max.X-1), v)))
	}
	clampY := func(v float32) int {
		return int(max(float32(bounds.Min.Y), min(float32(bounds.Max.Y-1), v)))
	}
	x1, y1, x2, y2 := clampX(bbox[0]), clampY(bbox[1]), clampX(bbox[2]), clampY(bbox[3])
	if lineWidth < 1 {
		lineWidth = 1
	}

	for i := 0; i < lineWidth; i++ {
		// 上边和下边
		for x := x1; x <= x2; x++ {
			img.Set(x, y1+i, lineColor)
			img.Set(x, y2-i, lineColor)
		}
		// 左边和右边
		for y := y1; y <= y2; y++ {
			img.Set(x1+i, y, lineColor)
			img.Set(x2-i, y, lineColor)
		}
	}
}

// drawLabel 在框上方绘制标签文本，放不下时画在框内
func drawLabel(img *image.RGBA, label string, x, yPos int, labelColor color.Color) {
	bounds := img.Bounds()
	face := basicfont.Face7x13
	const charWidth, textHeight, padding = 7, 13, 4

	textWidth := len(label) * charWidth
	if x+textWidth+padding*2 > bounds.Max.X {
		x = bounds.Max.X - textWidth - padding*2
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if yPos < bounds.Min.Y+textHeight+padding {
		yPos += 30
	}
	if yPos > bounds.Max.Y-textHeight-padding {
		yPos = bounds.Max.Y - textHeight - padding
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(yPos + textHeight - 2),
		},
	}
	d.DrawString(label)
}

// ParseColor 解析颜色名称，无法识别时返回 fallback
func ParseColor(name string, fallback color.RGBA) color.RGBA {
	switch strings.ToLower(name) {
	case "red":
		return color.RGBA{255, 0, 0, 255}
	case "green":
		return color.RGBA{0, 255, 0, 255}
	case "blue":
		return color.RGBA{0, 0, 255, 255}
	case "yellow":
		return color.RGBA{255, 255, 0, 255}
	case "cyan":
		return color.RGBA{0, 255, 255, 255}
	case "magenta":
		return color.RGBA{255, 0, 255, 255}
	case "white":
		return color.RGBA{255, 255, 255, 255}
	case "black":
		return color.RGBA{0, 0, 0, 255}
	case "orange":
		return color.RGBA{255, 165, 0, 255}
	case "purple":
		return color.RGBA{128, 0, 128, 255}
	default:
		return fallback
	}
}
