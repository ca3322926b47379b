//go:build windows

package capture

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procGetClientRect       = user32.NewProc("GetClientRect")
	procClientToScreen      = user32.NewProc("ClientToScreen")
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type winPoint struct {
	X, Y int32
}

// windowRect 查找窗口，把它切到前台，返回客户区的屏幕坐标
func windowRect(title string) (image.Rectangle, error) {
	if title == "" {
		return displayRect()
	}
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return image.Rectangle{}, err
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
	}
	procSetForegroundWindow.Call(hwnd)

	var rc winRect
	if ret, _, callErr := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&rc))); ret == 0 {
		return image.Rectangle{}, fmt.Errorf("GetClientRect 失败: %v", callErr)
	}
	topLeft := winPoint{X: rc.Left, Y: rc.Top}
	bottomRight := winPoint{X: rc.Right, Y: rc.Bottom}
	for _, p := range []*winPoint{&topLeft, &bottomRight} {
		if ret, _, callErr := procClientToScreen.Call(hwnd, uintptr(unsafe.Pointer(p))); ret == 0 {
			return image.Rectangle{}, fmt.Errorf("ClientToScreen 失败: %v", callErr)
		}
	}
	return image.Rect(int(topLeft.X), int(topLeft.Y), int(bottomRight.X), int(bottomRight.Y)), nil
}
