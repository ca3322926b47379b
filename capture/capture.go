// Package capture 截取游戏窗口画面并按顺序编号保存到截图目录
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

var (
	// ErrWindowNotFound 找不到游戏窗口
	ErrWindowNotFound = errors.New("找不到游戏窗口")
	// ErrUnexpectedSize 截图尺寸与预期不符
	ErrUnexpectedSize = errors.New("截图尺寸不符")
)

// Capturer 截取一帧画面
type Capturer interface {
	Capture() (*image.RGBA, error)
}

// WindowCapturer 截取指定标题窗口的客户区
//
// 非 Windows 平台没有窗口查找，截取主显示器。
type WindowCapturer struct {
	Title  string
	Width  int // 期望宽度，0 表示不检查
	Height int // 期望高度，0 表示不检查
}

// Capture 截图；尺寸不符时返回 ErrUnexpectedSize
func (c WindowCapturer) Capture() (*image.RGBA, error) {
	rect, err := windowRect(c.Title)
	if err != nil {
		return nil, err
	}
	if err := CheckSize(rect.Dx(), rect.Dy(), c.Width, c.Height); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("截图失败: %v", err)
	}
	return img, nil
}

// CheckSize 检查尺寸，期望值为 0 时不检查
func CheckSize(width, height, wantWidth, wantHeight int) error {
	if wantWidth <= 0 || wantHeight <= 0 {
		return nil
	}
	if width != wantWidth || height != wantHeight {
		return fmt.Errorf("%w: 应为 %dx%d，实际 %dx%d", ErrUnexpectedSize, wantWidth, wantHeight, width, height)
	}
	return nil
}

// displayRect 主显示器范围
func displayRect() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: 没有可用的显示器", ErrWindowNotFound)
	}
	return screenshot.GetDisplayBounds(0), nil
}

// NextPath 目录中下一个可用的截图文件名：已有 png 数量作为编号，被占用时继续往后找
func NextPath(folder string) (string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("无法读取目录 %s: %v", folder, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".png" {
			n++
		}
	}
	for {
		path := filepath.Join(folder, strconv.Itoa(n)+".png")
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("无法检查 %s: %v", path, err)
		}
		n++
	}
}

// Session 连续截图
type Session struct {
	Capturer Capturer
	Folder   string
	Out      io.Writer // 默认 os.Stdout
}

func (s *Session) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

// Shoot 截一张图并保存，返回保存路径；截图失败时不写入任何文件
func (s *Session) Shoot() (string, error) {
	if err := os.MkdirAll(s.Folder, 0755); err != nil {
		return "", fmt.Errorf("创建目录 %s 失败: %v", s.Folder, err)
	}
	img, err := s.Capturer.Capture()
	if err != nil {
		return "", err
	}
	path, err := NextPath(s.Folder)
	if err != nil {
		return "", err
	}
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("保存截图失败: %v", err)
	}
	fmt.Fprintf(s.out(), "📸 截图已保存: %s\n", path)
	return path, nil
}

// RunPrompt 截图后等待回车再截下一张，直到输入结束
//
// 单次截图失败只打印错误，不会结束循环。
func (s *Session) RunPrompt(in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		if _, err := s.Shoot(); err != nil {
			fmt.Fprintf(s.out(), "⚠️  %v\n", err)
		}
		fmt.Fprint(s.out(), "按回车继续截图 ")
		if _, err := reader.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out())
				return nil
			}
			return err
		}
	}
}
