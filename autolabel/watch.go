package autolabel

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// 新文件在这段时间内没有再被写入才开始标注，避免读到写了一半的截图
const (
	watchTick   = 250 * time.Millisecond
	watchSettle = 300 * time.Millisecond
)

// Watch 先处理目录中已有的图片，然后持续为新截图生成标注，直到 ctx 结束
func (l *Labeler) Watch(ctx context.Context, imagesDir string) error {
	if _, err := l.Run(imagesDir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(imagesDir); err != nil {
		return fmt.Errorf("无法监视目录 %s: %v", imagesDir, err)
	}
	fmt.Fprintf(l.out(), "👀 正在监视 %s，按 Ctrl+C 退出\n", imagesDir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || filepath.Ext(ev.Name) != ".png" {
				continue
			}
			pending[ev.Name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for path, t := range pending {
				if now.Sub(t) <= watchSettle {
					continue
				}
				delete(pending, path)
				if _, _, err := l.LabelImage(path); err != nil {
					fmt.Fprintf(l.out(), "⚠️  %v\n", err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
