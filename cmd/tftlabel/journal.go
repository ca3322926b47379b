package main

import (
	"fmt"
	"io"

	"github.com/Cubiaa/tft-labeler/config"
	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/journal"
)

// openRecorder 打开提交日志；disabled 时返回 nil 记录器
func openRecorder(s *config.Settings, disabled bool) (dataset.Recorder, func(), error) {
	if disabled {
		return nil, func() {}, nil
	}
	j, err := journal.Open(s.JournalPath())
	if err != nil {
		return nil, nil, err
	}
	return j, func() { j.Close() }, nil
}

// warnIncomplete 提示上次没有完成的批次
func warnIncomplete(w io.Writer, j *journal.Journal) error {
	batches, err := j.Incomplete()
	if err != nil {
		return err
	}
	for _, b := range batches {
		fmt.Fprintf(w, "⚠️  批次 %s (%s) 未完成: 状态 %s，已移动 %d/%d\n", b.ID, b.Kind, b.Status, b.Moved, b.Total)
	}
	return nil
}

// printBatches 每个批次一行
func printBatches(w io.Writer, batches []journal.Batch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "没有记录")
		return
	}
	for _, b := range batches {
		finished := "-"
		if b.Finished() {
			finished = b.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s  %-6s  %-7s  %d/%d  %s  %s  %s -> %s\n",
			b.ID, b.Kind, b.Status, b.Moved, b.Total,
			b.StartedAt.Format("2006-01-02 15:04:05"), finished, b.Source, b.Target)
	}
}

// printMoves 列出批次中的文件移动
func printMoves(w io.Writer, moves []journal.MoveEntry) {
	for _, m := range moves {
		mark := "  "
		if m.Moved {
			mark = "✔ "
		}
		fmt.Fprintf(w, "%s%3d  %s -> %s\n", mark, m.Seq, m.From, m.To)
	}
}
