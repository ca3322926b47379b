package capture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/disintegration/imaging"
)

// FrameOptions 从录像中抽帧的选项
type FrameOptions struct {
	Every  int       // 每隔多少帧保存一帧，<= 0 时为 1
	Width  int       // 期望宽度，0 表示不检查
	Height int       // 期望高度，0 表示不检查
	Out    io.Writer // 默认 os.Stdout
}

// ExtractFrames 把录像中每隔 Every 帧的画面按截图的编号规则保存到 folder，返回保存数量
func ExtractFrames(videoPath, folder string, opts FrameOptions) (int, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	every := opts.Every
	if every <= 0 {
		every = 1
	}
	if _, err := os.Stat(videoPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("视频文件 %s: %w", videoPath, os.ErrNotExist)
		}
		return 0, err
	}

	video, err := vidio.NewVideo(videoPath)
	if err != nil {
		return 0, fmt.Errorf("无法打开视频文件: %v", err)
	}
	defer video.Close()

	if err := CheckSize(video.Width(), video.Height(), opts.Width, opts.Height); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return 0, fmt.Errorf("创建目录 %s 失败: %v", folder, err)
	}
	fmt.Fprintf(out, "📹 视频信息: %dx%d, %.2f FPS, %d 帧, %.2f 秒\n",
		video.Width(), video.Height(), video.FPS(), video.Frames(), video.Duration())

	saved := 0
	frame := 0
	for video.Read() {
		frame++
		if (frame-1)%every != 0 {
			continue
		}
		img := frameToImage(video.FrameBuffer(), video.Width(), video.Height())
		path, err := NextPath(folder)
		if err != nil {
			return saved, err
		}
		if err := imaging.Save(img, path); err != nil {
			return saved, fmt.Errorf("保存第 %d 帧失败: %v", frame, err)
		}
		saved++
	}

	fmt.Fprintf(out, "✅ 共读取 %d 帧，保存 %d 张截图到 %s\n", frame, saved, folder)
	return saved, nil
}

// frameToImage 把 Vidio 的 RGBA 帧缓冲区复制为图像（缓冲区会被下一帧覆盖）
func frameToImage(frameBuffer []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, frameBuffer)
	return img
}
