package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig 应用程序配置（tftlabel.yaml）
type AppConfig struct {
	Paths   PathsConfig     `yaml:"paths"`
	YOLO    YOLOSection     `yaml:"yolo"`
	GPU     GPUConfigStruct `yaml:"gpu"`
	Capture CaptureConfig   `yaml:"capture"`
	Review  ReviewConfig    `yaml:"review"`
}

// PathsConfig 目录和文件位置，相对路径基于安装根目录
type PathsConfig struct {
	Screenshots   string `yaml:"screenshots"`
	Labels        string `yaml:"labels"`
	ArchiveImages string `yaml:"archive_images"`
	ArchiveLabels string `yaml:"archive_labels"`
	Model         string `yaml:"model"`
	Vocabulary    string `yaml:"vocabulary"`
	Journal       string `yaml:"journal"`
}

// YOLOSection 检测器配置
type YOLOSection struct {
	InputSize     int     `yaml:"input_size"`
	InputWidth    int     `yaml:"input_width,omitempty"`
	InputHeight   int     `yaml:"input_height,omitempty"`
	ConfThreshold float32 `yaml:"conf_threshold"`
	IOUThreshold  float32 `yaml:"iou_threshold"`
	LibraryPath   string  `yaml:"library_path"`
}

// GPUConfigStruct GPU配置结构
type GPUConfigStruct struct {
	Enabled  bool `yaml:"enabled"`
	DeviceID int  `yaml:"device_id"`
}

// CaptureConfig 截图配置
type CaptureConfig struct {
	WindowTitle string `yaml:"window_title"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Hotkey      string `yaml:"hotkey"`
	FrameEvery  int    `yaml:"frame_every"` // 从录像中每隔多少帧取一帧
}

// ReviewConfig 审核界面配置
type ReviewConfig struct {
	BoxColor     string  `yaml:"box_color"`
	LabelColor   string  `yaml:"label_color"`
	LineWidth    int     `yaml:"line_width"`
	DrawLabels   bool    `yaml:"draw_labels"`
	WindowWidth  float32 `yaml:"window_width"`
	WindowHeight float32 `yaml:"window_height"`
}

// Default 内置默认配置
func Default() *AppConfig {
	return &AppConfig{
		Paths: PathsConfig{
			Screenshots:   "screenshots",
			Labels:        "labels",
			ArchiveImages: filepath.Join("clean_data", "images"),
			ArchiveLabels: filepath.Join("clean_data", "labels"),
			Model:         filepath.Join("models", "set6_best_model.onnx"),
			Vocabulary:    filepath.Join("models", "set6_labels.csv"),
			Journal:       filepath.Join("clean_data", "journal.db"),
		},
		YOLO: YOLOSection{
			InputSize:     640,
			ConfThreshold: 0.5,
			IOUThreshold:  0.5,
		},
		Capture: CaptureConfig{
			WindowTitle: "League of Legends (TM) Client",
			Width:       1920,
			Height:      1080,
			Hotkey:      "Ctrl+Shift+S",
			FrameEvery:  30,
		},
		Review: ReviewConfig{
			BoxColor:     "red",
			LabelColor:   "yellow",
			LineWidth:    2,
			DrawLabels:   true,
			WindowWidth:  1280,
			WindowHeight: 800,
		},
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	config *AppConfig
	path   string
}

// NewConfigManager 创建配置管理器
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		path: configPath,
	}
}

// Path 配置文件路径
func (cm *ConfigManager) Path() string {
	return cm.path
}

// LoadConfig 加载配置文件；文件中没有的字段保持默认值
//
// 文件不存在时返回的错误满足 errors.Is(err, fs.ErrNotExist)。
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件 %s 失败: %v", cm.path, err)
	}
	cm.config = cfg
	return nil
}

// LoadOrDefault 加载配置文件，文件不存在时使用默认配置
func (cm *ConfigManager) LoadOrDefault() error {
	err := cm.LoadConfig()
	if errors.Is(err, fs.ErrNotExist) {
		cm.config = Default()
		return nil
	}
	return err
}

// SaveConfig 保存配置文件
func (cm *ConfigManager) SaveConfig() error {
	data, err := yaml.Marshal(cm.Config())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cm.path), 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %v", err)
	}
	if err := os.WriteFile(cm.path, data, 0644); err != nil {
		return fmt.Errorf("保存配置文件失败: %v", err)
	}
	return nil
}

// CreateDefaultConfig 创建默认配置文件
func (cm *ConfigManager) CreateDefaultConfig() error {
	cm.config = Default()
	return cm.SaveConfig()
}

// Config 当前配置；尚未加载时返回默认配置
func (cm *ConfigManager) Config() *AppConfig {
	if cm.config == nil {
		cm.config = Default()
	}
	return cm.config
}
