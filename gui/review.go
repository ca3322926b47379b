// Package gui 提供暂存截图的人工审核窗口和提交确认窗口
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/yolo"
)

// ReviewOptions 审核窗口配置
type ReviewOptions struct {
	Detection *yolo.DetectionOptions
	Width     float32
	Height    float32
}

// DefaultReviewOptions 返回默认审核窗口配置
func DefaultReviewOptions() ReviewOptions {
	return ReviewOptions{
		Detection: yolo.DefaultDetectionOptions(),
		Width:     1280,
		Height:    800,
	}
}

// ReviewWindow 逐张浏览暂存区截图及其自动标注
type ReviewWindow struct {
	window  fyne.Window
	pages   []Page
	opts    ReviewOptions
	current int

	imageDisplay *canvas.Image
	objectList   *widget.List
	statusLabel  *widget.Label
	posLabel     *widget.Label
	objects      []string
}

// NewReviewWindow 创建审核窗口，显示暂存区中的第一张截图
func NewReviewWindow(a fyne.App, staging dataset.Archive, opts ReviewOptions) (*ReviewWindow, error) {
	pages, err := LoadPages(staging)
	if err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultReviewOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	rw := &ReviewWindow{pages: pages, opts: opts}
	rw.createWindow(a, staging)
	rw.show(0)
	return rw, nil
}

// createWindow 创建窗口
func (rw *ReviewWindow) createWindow(a fyne.App, staging dataset.Archive) {
	rw.window = a.NewWindow(fmt.Sprintf("标注审核 - %s", staging.Images))
	rw.window.Resize(fyne.NewSize(rw.opts.Width, rw.opts.Height))

	rw.imageDisplay = &canvas.Image{}
	rw.imageDisplay.FillMode = canvas.ImageFillContain
	rw.imageDisplay.SetMinSize(fyne.NewSize(800, 450))

	rw.statusLabel = widget.NewLabel("")
	rw.posLabel = widget.NewLabel("")
	rw.objectList = widget.NewList(
		func() int { return len(rw.objects) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(rw.objects[id])
		},
	)

	prevBtn := widget.NewButtonWithIcon("上一张", theme.NavigateBackIcon(), rw.Prev)
	nextBtn := widget.NewButtonWithIcon("下一张", theme.NavigateNextIcon(), rw.Next)

	controls := container.NewHBox(prevBtn, nextBtn, rw.posLabel, rw.statusLabel)
	split := container.NewHSplit(rw.imageDisplay, rw.objectList)
	split.Offset = 0.8
	rw.window.SetContent(container.NewBorder(nil, controls, nil, nil, split))

	// 方向键翻页
	rw.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft:
			rw.Prev()
		case fyne.KeyRight:
			rw.Next()
		}
	})
}

// Current 当前页码，从 0 开始
func (rw *ReviewWindow) Current() int { return rw.current }

// Status 状态栏文本
func (rw *ReviewWindow) Status() string { return rw.statusLabel.Text }

// Next 显示下一张截图，到末尾时停留
func (rw *ReviewWindow) Next() {
	if rw.current+1 < len(rw.pages) {
		rw.show(rw.current + 1)
	}
}

// Prev 显示上一张截图，到开头时停留
func (rw *ReviewWindow) Prev() {
	if rw.current > 0 {
		rw.show(rw.current - 1)
	}
}

func (rw *ReviewWindow) show(index int) {
	rw.current = index
	rw.posLabel.SetText(position(index, len(rw.pages)))
	if len(rw.pages) == 0 {
		rw.objects = nil
		rw.statusLabel.SetText("暂存区没有截图")
		rw.objectList.Refresh()
		return
	}

	page := rw.pages[index]
	rendered, err := Render(page, rw.opts.Detection)
	if err != nil {
		rw.objects = nil
		rw.imageDisplay.Image = nil
		rw.statusLabel.SetText(fmt.Sprintf("❌ %v", err))
	} else {
		rw.objects = rendered.Objects
		rw.imageDisplay.Image = rendered.Image
		if rendered.Labeled {
			rw.statusLabel.SetText(fmt.Sprintf("%s: %d 个对象", page.Stem, len(rendered.Objects)))
		} else {
			rw.statusLabel.SetText(fmt.Sprintf("⚠️ %s: 没有标注", page.Stem))
		}
	}
	rw.imageDisplay.Refresh()
	rw.objectList.Refresh()
}

// Run 显示窗口并进入事件循环
func (rw *ReviewWindow) Run() {
	rw.window.ShowAndRun()
}
