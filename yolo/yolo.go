// Package yolo 用 ONNX Runtime 运行 YOLOv8 检测模型
//
// 检测器只负责加载模型和推理；非极大抑制由调用方按需要的阈值执行。
package yolo

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// YOLO 检测器
type YOLO struct {
	config  *YOLOConfig
	classes []string
	session *ort.DynamicAdvancedSession
	// 运行时配置
	runtimeConfig *DetectionOptions

	inputWidth  int
	inputHeight int
	outputShape ort.Shape
}

// NewYOLO 加载模型文件；classes 的顺序必须与训练时的类别顺序一致
func NewYOLO(modelPath string, classes []string, config *YOLOConfig) (*YOLO, error) {
	return NewYOLOWithOutput(modelPath, classes, config, os.Stdout)
}

// NewYOLOWithOutput 同 NewYOLO，加载过程的提示写入 out
func NewYOLOWithOutput(modelPath string, classes []string, config *YOLOConfig, out io.Writer) (*YOLO, error) {
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("模型文件 %s: %w", modelPath, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("无法访问模型文件 %s: %v", modelPath, err)
	}
	if len(classes) == 0 {
		return nil, errors.New("类别列表为空")
	}
	if config == nil {
		config = DefaultConfig()
	}

	if err := initEnvironment(config.LibraryPath); err != nil {
		return nil, err
	}

	sessionOptions, err := newSessionOptions(config, out)
	if err != nil {
		return nil, err
	}
	defer sessionOptions.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"images"}, []string{"output0"}, sessionOptions)
	if err != nil {
		return nil, fmt.Errorf("无法加载模型文件 '%s': %v", modelPath, err)
	}

	width, height := config.inputDims()
	outputShape := ort.NewShape(1, int64(4+len(classes)), int64(anchorCount(width, height)))
	fmt.Fprintf(out, "📊 输入 %dx%d，输出形状 %v，%d 个类别\n", width, height, outputShape, len(classes))

	return &YOLO{
		config:        config,
		classes:       append([]string(nil), classes...),
		session:       session,
		runtimeConfig: DefaultDetectionOptions(),
		inputWidth:    width,
		inputHeight:   height,
		outputShape:   outputShape,
	}, nil
}

// Close 关闭YOLO检测器
func (y *YOLO) Close() {
	if y.session != nil {
		y.session.Destroy()
		y.session = nil
	}
	// 不调用 ort.DestroyEnvironment()，可能有其他检测器还在使用
}

// SetRuntimeConfig 设置运行时检测配置
func (y *YOLO) SetRuntimeConfig(options *DetectionOptions) {
	if options == nil {
		options = DefaultDetectionOptions()
	}
	y.runtimeConfig = options
}

// Options 当前运行时检测配置
func (y *YOLO) Options() *DetectionOptions {
	return y.runtimeConfig
}

// Classes 模型类别列表
func (y *YOLO) Classes() []string {
	return append([]string(nil), y.classes...)
}

// Predict 对一张图片推理，返回置信度不低于阈值的候选框（坐标为原图像素，未做非极大抑制）
func (y *YOLO) Predict(img image.Image) ([]Detection, error) {
	if y.session == nil {
		return nil, errors.New("检测器已关闭")
	}

	bounds := img.Bounds()
	inputData := Preprocess(img, y.inputWidth, y.inputHeight)
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, int64(y.inputHeight), int64(y.inputWidth)), inputData)
	if err != nil {
		return nil, fmt.Errorf("无法创建输入张量: %v", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](y.outputShape)
	if err != nil {
		return nil, fmt.Errorf("无法创建输出张量: %v", err)
	}
	defer outputTensor.Destroy()

	if err := y.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("推理失败: %v", err)
	}

	detections, err := ParseDetections(outputTensor.GetData(), outputTensor.GetShape(), y.classes, y.runtimeConfig.ConfThreshold)
	if err != nil {
		return nil, err
	}
	ScaleBoxes(detections,
		float32(bounds.Dx())/float32(y.inputWidth),
		float32(bounds.Dy())/float32(y.inputHeight))
	return detections, nil
}

// Detect 推理并按运行时配置的 IOU 阈值做非极大抑制
func (y *YOLO) Detect(img image.Image) ([]Detection, error) {
	detections, err := y.Predict(img)
	if err != nil {
		return nil, err
	}
	return NonMaxSuppression(detections, y.runtimeConfig.IOUThreshold), nil
}

// DetectImage 检测单张图片文件
func (y *YOLO) DetectImage(imagePath string) ([]Detection, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("无法打开图像文件 '%s': %v", imagePath, err)
	}
	return y.Detect(img)
}

// DetectAndSave 检测图片并把画好检测框的结果保存到 outputPath
func (y *YOLO) DetectAndSave(imagePath, outputPath string) ([]Detection, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("无法打开图像文件 '%s': %v", imagePath, err)
	}
	detections, err := y.Detect(img)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(DrawDetections(img, detections, y.runtimeConfig), outputPath); err != nil {
		return nil, fmt.Errorf("无法保存结果图像: %v", err)
	}
	return detections, nil
}
