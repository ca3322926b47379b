package capture

import (
	"context"
	"fmt"
	"log"
	"strings"

	gohook "github.com/robotn/gohook"
)

// RunHotkey 注册全局热键，每按一次截一张图，直到 ctx 结束
func (s *Session) RunHotkey(ctx context.Context, hotkey string) error {
	keys := ParseHotkey(hotkey)
	if len(keys) == 0 {
		return fmt.Errorf("无效的热键: %q", hotkey)
	}

	gohook.Register(gohook.KeyDown, keys, func(gohook.Event) {
		if _, err := s.Shoot(); err != nil {
			fmt.Fprintf(s.out(), "⚠️  %v\n", err)
		}
	})

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("无法启动全局键盘钩子")
	}
	log.Printf("hotkey registered: %v", keys)
	fmt.Fprintf(s.out(), "⌨️  按 %s 截图，按 Ctrl+C 退出\n", hotkey)

	go func() {
		<-ctx.Done()
		gohook.End()
	}()
	<-gohook.Process(evChan)
	return nil
}

// ParseHotkey 把 "Ctrl+Shift+s" 这样的热键转换为 gohook 的按键列表
func ParseHotkey(hotkey string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkey), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}
