package yolo

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// 全局变量用于管理ONNX Runtime环境
var (
	ortInitialized bool
	ortMutex       sync.Mutex
)

// initEnvironment 线程安全地初始化ONNX Runtime（整个进程只初始化一次）
func initEnvironment(libraryPath string) error {
	ortMutex.Lock()
	defer ortMutex.Unlock()

	if ortInitialized {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("无法初始化ONNX Runtime: %v", err)
	}
	ortInitialized = true
	return nil
}

// DestroyEnvironment 销毁ONNX Runtime环境（在所有检测器都关闭后调用）
func DestroyEnvironment() {
	ortMutex.Lock()
	defer ortMutex.Unlock()
	if ortInitialized {
		ort.DestroyEnvironment()
		ortInitialized = false
	}
}

// newSessionOptions 创建会话选项；启用GPU时依次尝试 CUDA、DirectML，都不可用时使用CPU
func newSessionOptions(cfg *YOLOConfig, out io.Writer) (*ort.SessionOptions, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("无法创建会话选项: %v", err)
	}

	// 对于高核心数CPU，使用75%的核心以避免过度竞争
	threads := runtime.NumCPU()
	if threads > 8 {
		threads = int(float64(threads) * 0.75)
	}
	if threads < 1 {
		threads = 1
	}
	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		fmt.Fprintf(out, "⚠️  设置线程数失败: %v\n", err)
	}
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		fmt.Fprintf(out, "⚠️  设置图优化级别失败: %v\n", err)
	}

	if !cfg.UseGPU {
		fmt.Fprintln(out, "💻 使用CPU模式")
		return opts, nil
	}

	fmt.Fprintln(out, "🚀 尝试启用GPU加速...")
	err = appendCUDA(opts, cfg.GPUDeviceID)
	if err == nil {
		fmt.Fprintln(out, "✅ CUDA GPU加速已启用")
		return opts, nil
	}
	fmt.Fprintf(out, "⚠️  CUDA不可用: %v\n", err)

	fmt.Fprintln(out, "🔄 尝试DirectML提供者...")
	err = appendDirectML(opts, cfg.GPUDeviceID)
	if err == nil {
		fmt.Fprintln(out, "✅ DirectML GPU加速已启用")
		return opts, nil
	}
	fmt.Fprintf(out, "⚠️  DirectML不可用: %v\n", err)

	fmt.Fprintln(out, "📋 GPU加速失败，将使用CPU")
	return opts, nil
}

// appendCUDA 添加CUDA执行提供者；不支持GPU的ONNX Runtime构建可能直接panic
func appendCUDA(opts *ort.SessionOptions, deviceID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("CUDA初始化发生panic: %v", r)
		}
	}()

	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("创建CUDA选项失败: %v", err)
	}
	defer cudaOptions.Destroy()

	if err := cudaOptions.Update(map[string]string{
		"device_id": fmt.Sprintf("%d", deviceID),
	}); err != nil {
		return fmt.Errorf("更新CUDA选项失败: %v", err)
	}
	return opts.AppendExecutionProviderCUDA(cudaOptions)
}

func appendDirectML(opts *ort.SessionOptions, deviceID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("DirectML初始化发生panic: %v", r)
		}
	}()
	return opts.AppendExecutionProviderDirectML(deviceID)
}
