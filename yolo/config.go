package yolo

// YOLOConfig YOLO检测器配置（检测器级别 - 创建时设置）
type YOLOConfig struct {
	InputSize   int    // 输入尺寸（正方形时使用）
	InputWidth  int    // 输入宽度（非正方形时使用）
	InputHeight int    // 输入高度（非正方形时使用）
	UseGPU      bool   // 是否使用GPU
	GPUDeviceID int    // GPU设备ID（默认0，仅在UseGPU=true时有效）
	LibraryPath string // ONNX Runtime库路径
}

// DetectionOptions 检测选项
type DetectionOptions struct {
	ConfThreshold float32 // 置信度阈值
	IOUThreshold  float32 // IOU阈值
	DrawBoxes     bool    // 是否绘制检测框
	DrawLabels    bool    // 是否绘制标签
	BoxColor      string  // 检测框颜色
	LabelColor    string  // 标签颜色
	LineWidth     int     // 线条宽度
	FontSize      int     // 字体大小
}

// DefaultConfig 默认配置：640 正方形输入，CPU
func DefaultConfig() *YOLOConfig {
	return &YOLOConfig{
		InputSize: 640,
	}
}

// WithInputSize 设置正方形输入尺寸
func (c *YOLOConfig) WithInputSize(size int) *YOLOConfig {
	c.InputSize = size
	c.InputWidth = 0
	c.InputHeight = 0
	return c
}

// WithInputDimensions 设置非正方形输入尺寸
func (c *YOLOConfig) WithInputDimensions(width, height int) *YOLOConfig {
	c.InputWidth = width
	c.InputHeight = height
	return c
}

// WithGPU 设置是否使用GPU
func (c *YOLOConfig) WithGPU(use bool) *YOLOConfig {
	c.UseGPU = use
	return c
}

// WithGPUDeviceID 设置GPU设备ID
func (c *YOLOConfig) WithGPUDeviceID(deviceID int) *YOLOConfig {
	c.GPUDeviceID = deviceID
	return c
}

// WithLibraryPath 设置ONNX Runtime库路径
func (c *YOLOConfig) WithLibraryPath(path string) *YOLOConfig {
	c.LibraryPath = path
	return c
}

// inputDims 返回模型输入的宽和高
func (c *YOLOConfig) inputDims() (width, height int) {
	if c.InputWidth > 0 && c.InputHeight > 0 {
		return c.InputWidth, c.InputHeight
	}
	size := c.InputSize
	if size <= 0 {
		size = 640
	}
	return size, size
}

// DefaultDetectionOptions 默认检测选项（运行时级别）
func DefaultDetectionOptions() *DetectionOptions {
	return &DetectionOptions{
		ConfThreshold: 0.5,
		IOUThreshold:  0.5,
		DrawBoxes:     true,
		DrawLabels:    true,
		BoxColor:      "red",
		LabelColor:    "white",
		LineWidth:     2,
		FontSize:      12,
	}
}

// WithConfThreshold 设置置信度阈值
func (o *DetectionOptions) WithConfThreshold(threshold float32) *DetectionOptions {
	o.ConfThreshold = threshold
	return o
}

// WithIOUThreshold 设置IOU阈值
func (o *DetectionOptions) WithIOUThreshold(threshold float32) *DetectionOptions {
	o.IOUThreshold = threshold
	return o
}

// WithDrawBoxes 设置是否绘制检测框
func (o *DetectionOptions) WithDrawBoxes(draw bool) *DetectionOptions {
	o.DrawBoxes = draw
	return o
}

// WithDrawLabels 设置是否绘制标签
func (o *DetectionOptions) WithDrawLabels(draw bool) *DetectionOptions {
	o.DrawLabels = draw
	return o
}

// WithBoxColor 设置检测框颜色
func (o *DetectionOptions) WithBoxColor(color string) *DetectionOptions {
	o.BoxColor = color
	return o
}

// WithLabelColor 设置标签颜色
func (o *DetectionOptions) WithLabelColor(color string) *DetectionOptions {
	o.LabelColor = color
	return o
}

// WithLineWidth 设置线条宽度
func (o *DetectionOptions) WithLineWidth(width int) *DetectionOptions {
	o.LineWidth = width
	return o
}
