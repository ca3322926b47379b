package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Cubiaa/tft-labeler/dataset"
)

// ConfirmPlan 在窗口中显示提交计划，只有点击"确认"才返回 true；关闭窗口视为取消
func ConfirmPlan(plan *dataset.Plan) (bool, error) {
	a := app.New()
	var confirmed bool
	w := newConfirmWindow(a, plan, func(ok bool) {
		confirmed = ok
		a.Quit()
	})
	w.ShowAndRun()
	return confirmed, nil
}

// newConfirmWindow 创建确认窗口，decide 在用户做出选择后调用一次
func newConfirmWindow(a fyne.App, plan *dataset.Plan, decide func(bool)) fyne.Window {
	w := a.NewWindow("确认提交")
	w.Resize(fyne.NewSize(900, 600))

	lines := planLines(plan)
	list := widget.NewList(
		func() int { return len(lines) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(lines[id])
		},
	)

	decided := false
	choose := func(ok bool) {
		if decided {
			return
		}
		decided = true
		decide(ok)
	}

	header := widget.NewLabel(fmt.Sprintf("以下 %d 对文件将被移动到数据集（编号 %d 起）", len(plan.Pairs), plan.FirstID))
	confirmBtn := widget.NewButton("确认", func() { choose(true) })
	confirmBtn.Importance = widget.HighImportance
	cancelBtn := widget.NewButton("取消", func() { choose(false) })

	w.SetContent(container.NewBorder(header, container.NewHBox(confirmBtn, cancelBtn), nil, nil, list))
	w.SetOnClosed(func() { choose(false) })
	return w
}
