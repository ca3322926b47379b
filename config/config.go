// Package config 解析安装根目录、tftlabel.yaml 与环境变量
//
// 优先级从高到低：命令行参数（由调用方覆盖）、环境变量（包括根目录下 .env 中的值）、
// 配置文件、内置默认值。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/yolo"
)

// 环境变量
const (
	EnvRoot        = "TFTLABEL_ROOT"
	EnvConfig      = "TFTLABEL_CONFIG"
	EnvLibraryPath = "ONNXRUNTIME_LIB"
	EnvUseGPU      = "TFTLABEL_USE_GPU"
	EnvWindowTitle = "TFTLABEL_WINDOW_TITLE"
)

// DefaultConfigName 根目录下的默认配置文件名
const DefaultConfigName = "tftlabel.yaml"

// LoadOptions 命令行给出的位置
type LoadOptions struct {
	Root       string
	ConfigPath string
}

// Settings 解析后的配置
type Settings struct {
	Root       string // 安装根目录（绝对路径）
	ConfigPath string
	App        *AppConfig
}

// Load 按优先级解析配置
func Load(opts LoadOptions) (*Settings, error) {
	root := opts.Root
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("无法获取工作目录: %v", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("无法解析根目录: %v", err)
	}

	env := newEnvLookup(filepath.Join(root, ".env"))

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = env.get(EnvConfig)
	}
	if configPath == "" {
		configPath = filepath.Join(root, DefaultConfigName)
	}
	configPath = resolve(root, configPath)

	cm := NewConfigManager(configPath)
	if err := cm.LoadOrDefault(); err != nil {
		return nil, err
	}
	app := cm.Config()

	if v := env.get(EnvLibraryPath); v != "" {
		app.YOLO.LibraryPath = v
	}
	if v := env.get(EnvUseGPU); v != "" {
		use, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s 的值 %q 不是布尔值", EnvUseGPU, v)
		}
		app.GPU.Enabled = use
	}
	if v := env.get(EnvWindowTitle); v != "" {
		app.Capture.WindowTitle = v
	}

	return &Settings{Root: root, ConfigPath: configPath, App: app}, nil
}

// envLookup 先查进程环境变量，再查 .env 文件；不修改进程环境
type envLookup struct {
	dotenv map[string]string
}

func newEnvLookup(path string) envLookup {
	values, err := godotenv.Read(path)
	if err != nil {
		values = map[string]string{}
	}
	return envLookup{dotenv: values}
}

func (e envLookup) get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(e.dotenv[key])
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Resolve 把相对路径解析为根目录下的路径
func (s *Settings) Resolve(p string) string {
	return resolve(s.Root, p)
}

// Staging 暂存区（截图和待审核标注）
func (s *Settings) Staging() dataset.Archive {
	return dataset.New(s.Resolve(s.App.Paths.Screenshots), s.Resolve(s.App.Paths.Labels))
}

// Archive 编号数据集
func (s *Settings) Archive() dataset.Archive {
	return dataset.New(s.Resolve(s.App.Paths.ArchiveImages), s.Resolve(s.App.Paths.ArchiveLabels))
}

// ModelPath 模型文件
func (s *Settings) ModelPath() string {
	return s.Resolve(s.App.Paths.Model)
}

// VocabularyPath 类别表文件
func (s *Settings) VocabularyPath() string {
	return s.Resolve(s.App.Paths.Vocabulary)
}

// JournalPath 提交日志数据库
func (s *Settings) JournalPath() string {
	return s.Resolve(s.App.Paths.Journal)
}

// YOLOConfig 检测器配置
func (s *Settings) YOLOConfig() *yolo.YOLOConfig {
	c := yolo.DefaultConfig().
		WithGPU(s.App.GPU.Enabled).
		WithGPUDeviceID(s.App.GPU.DeviceID).
		WithLibraryPath(s.App.YOLO.LibraryPath)
	if s.App.YOLO.InputSize > 0 {
		c.WithInputSize(s.App.YOLO.InputSize)
	}
	if s.App.YOLO.InputWidth > 0 && s.App.YOLO.InputHeight > 0 {
		c.WithInputDimensions(s.App.YOLO.InputWidth, s.App.YOLO.InputHeight)
	}
	return c
}

// DetectionOptions 推理和绘制选项
func (s *Settings) DetectionOptions() *yolo.DetectionOptions {
	o := yolo.DefaultDetectionOptions().
		WithBoxColor(s.App.Review.BoxColor).
		WithLabelColor(s.App.Review.LabelColor).
		WithDrawLabels(s.App.Review.DrawLabels)
	if s.App.YOLO.ConfThreshold > 0 {
		o.WithConfThreshold(s.App.YOLO.ConfThreshold)
	}
	if s.App.YOLO.IOUThreshold > 0 {
		o.WithIOUThreshold(s.App.YOLO.IOUThreshold)
	}
	if s.App.Review.LineWidth > 0 {
		o.WithLineWidth(s.App.Review.LineWidth)
	}
	return o
}
