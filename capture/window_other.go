//go:build !windows

package capture

import "image"

// windowRect 没有窗口查找时截取主显示器
func windowRect(string) (image.Rectangle, error) {
	return displayRect()
}
