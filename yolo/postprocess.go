package yolo

import (
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
)

// Detection 检测结果结构体
type Detection struct {
	Box     [4]float32 // x1, y1, x2, y2
	Score   float32
	ClassID int
	Class   string
}

// Preprocess 把图像缩放到模型输入尺寸并转换为 [1, 3, h, w] 的归一化 RGB 数据
func Preprocess(img image.Image, width, height int) []float32 {
	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	plane := width * height
	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := resized.NRGBAAt(x, y)
			// 归一化到 [0, 1]
			data[0*plane+y*width+x] = float32(c.R) / 255.0
			data[1*plane+y*width+x] = float32(c.G) / 255.0
			data[2*plane+y*width+x] = float32(c.B) / 255.0
		}
	}
	return data
}

// anchorCount YOLOv8 三个检测头（步长 8/16/32）的候选框总数，640x640 时为 8400
func anchorCount(width, height int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		n += (width / stride) * (height / stride)
	}
	return n
}

// ParseDetections 解析 [1, 4+类别数, 候选框数] 格式的模型输出，丢弃低于 confThreshold 的候选框
//
// 返回的坐标仍在模型输入尺寸上。
func ParseDetections(output []float32, shape []int64, classes []string, confThreshold float32) ([]Detection, error) {
	if len(shape) != 3 || shape[0] != 1 {
		return nil, fmt.Errorf("不支持的输出形状: %v", shape)
	}
	numFeatures := int(shape[1])
	numDetections := int(shape[2])
	numClasses := numFeatures - 4
	if numClasses <= 0 {
		return nil, fmt.Errorf("无效的类别数量: %d (特征数: %d)", numClasses, numFeatures)
	}
	if len(output) < numFeatures*numDetections {
		return nil, fmt.Errorf("输出数据长度 %d 小于形状 %v", len(output), shape)
	}

	var detections []Detection
	for i := 0; i < numDetections; i++ {
		cx := output[0*numDetections+i]
		cy := output[1*numDetections+i]
		w := output[2*numDetections+i]
		h := output[3*numDetections+i]

		// 找到最大的类别概率
		var bestScore float32
		bestID := 0
		for c := 0; c < numClasses; c++ {
			score := output[(4+c)*numDetections+i]
			if score > bestScore {
				bestScore = score
				bestID = c
			}
		}
		if bestScore < confThreshold {
			continue
		}

		className := "unknown"
		if bestID < len(classes) {
			className = classes[bestID]
		}
		detections = append(detections, Detection{
			Box:     [4]float32{cx - w/2, cy - h/2, cx + w/2, cy + h/2},
			Score:   bestScore,
			ClassID: bestID,
			Class:   className,
		})
	}
	return detections, nil
}

// ScaleBoxes 把坐标从模型输入尺寸换算到原图尺寸
func ScaleBoxes(detections []Detection, scaleX, scaleY float32) {
	for i := range detections {
		detections[i].Box[0] *= scaleX
		detections[i].Box[1] *= scaleY
		detections[i].Box[2] *= scaleX
		detections[i].Box[3] *= scaleY
	}
}

// IoU 两个框的交并比
func IoU(box1, box2 [4]float32) float32 {
	interXMin := max(box1[0], box2[0])
	interYMin := max(box1[1], box2[1])
	interXMax := min(box1[2], box2[2])
	interYMax := min(box1[3], box2[3])

	interArea := max(0, interXMax-interXMin) * max(0, interYMax-interYMin)
	area1 := (box1[2] - box1[0]) * (box1[3] - box1[1])
	area2 := (box2[2] - box2[0]) * (box2[3] - box2[1])

	union := area1 + area2 - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}

// NonMaxSuppression 贪心非极大抑制，不区分类别
//
// 按分数从高到低处理，与已保留的任一框 IoU 大于 iouThreshold 的框被丢弃。
// 分数相同时保持输入顺序。不修改输入切片。
func NonMaxSuppression(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return nil
	}

	sorted := append([]Detection(nil), detections...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var keep []Detection
	for _, current := range sorted {
		keepCurrent := true
		for _, k := range keep {
			if IoU(current.Box, k.Box) > iouThreshold {
				keepCurrent = false
				break
			}
		}
		if keepCurrent {
			keep = append(keep, current)
		}
	}
	return keep
}
