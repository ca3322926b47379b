package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Cubiaa/tft-labeler/annotation"
)

// Move 一次文件移动
type Move struct {
	From string
	To   string
}

// PlannedPair 一对待提交的图片和标注
type PlannedPair struct {
	ID        int
	Stem      string
	ImageFrom string
	ImageTo   string
	LabelFrom string
	LabelTo   string
}

// Plan 提交计划：暂存区每一对文件在数据集中的新位置
type Plan struct {
	Staging Archive
	Archive Archive
	FirstID int
	Pairs   []PlannedPair
}

// Moves 返回所有文件移动（先标注后图片）
func (p *Plan) Moves() []Move {
	moves := make([]Move, 0, 2*len(p.Pairs))
	for _, pair := range p.Pairs {
		moves = append(moves, Move{From: pair.LabelFrom, To: pair.LabelTo})
	}
	for _, pair := range p.Pairs {
		moves = append(moves, Move{From: pair.ImageFrom, To: pair.ImageTo})
	}
	return moves
}

// Print 打印提交计划
func (p *Plan) Print(w io.Writer) {
	fmt.Fprintf(w, "📋 以下 %d 对文件将被移动到数据集（编号 %d 起）:\n", len(p.Pairs), p.FirstID)
	for _, m := range p.Moves() {
		fmt.Fprintf(w, "%s -> %s\n", m.From, m.To)
	}
}

// Confirmer 在修改任何文件之前征求操作者确认
type Confirmer func(plan *Plan) (bool, error)

// StdinConfirmer 从输入读取一行，只有 y/Y 表示继续
func StdinConfirmer(in io.Reader, out io.Writer) Confirmer {
	return func(*Plan) (bool, error) {
		fmt.Fprint(out, "继续? (y/n) ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("读取确认输入失败: %v", err)
		}
		return strings.EqualFold(strings.TrimSpace(line), "y"), nil
	}
}

// Recorder 记录数据集修改过程，便于中断后排查
type Recorder interface {
	BeginBatch(kind, source, target string, moves []Move) (string, error)
	MarkMoved(batchID string, seq int) error
	FinishBatch(batchID, status string) error
}

// 批次类型与状态
const (
	BatchCommit  = "commit"
	BatchRepair  = "repair"
	StatusDone   = "done"
	StatusFailed = "failed"
)

// CommitOptions 提交选项
type CommitOptions struct {
	Confirm  Confirmer // 必须提供
	Out      io.Writer // 默认 os.Stdout
	Recorder Recorder  // 可选
}

// CommitReport 提交结果
type CommitReport struct {
	Moved   bool
	FirstID int
	Pairs   int
	Total   int // 提交后数据集中的配对数量
	BatchID string
}

// PlanCommit 检查暂存区并为每对文件分配新编号，不修改任何文件（除了创建缺失的数据集目录）
func PlanCommit(staging, archive Archive) (*Plan, error) {
	listing, err := staging.Scan()
	if err != nil {
		return nil, err
	}
	// 先完整检查配对，任何缺失都不做修改
	if err := listing.CheckPairs(staging); err != nil {
		return nil, err
	}

	if err := archive.Ensure(); err != nil {
		return nil, err
	}
	// 数据集必须恰好是 0..n-1
	current, err := archive.Scan()
	if err != nil {
		return nil, err
	}
	if err := checkContiguous(archive, current); err != nil {
		return nil, err
	}
	labels := len(current.Labels)

	plan := &Plan{
		Staging: staging,
		Archive: archive,
		FirstID: labels,
	}
	for i, img := range listing.Images {
		labelFrom, _ := listing.LabelPath(img.Stem)
		id := labels + i
		pair := PlannedPair{
			ID:        id,
			Stem:      img.Stem,
			ImageFrom: img.Path,
			ImageTo:   archive.ImagePath(id),
			LabelFrom: labelFrom,
			LabelTo:   archive.LabelPath(id),
		}
		for _, dst := range []string{pair.ImageTo, pair.LabelTo} {
			if _, err := os.Stat(dst); err == nil {
				return nil, fmt.Errorf("%w: 目标文件 %s 已存在，编号与数量不符，请先运行 repair", ErrArchiveCorrupt, dst)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("无法检查目标文件 %s: %v", dst, err)
			}
		}
		plan.Pairs = append(plan.Pairs, pair)
	}
	return plan, nil
}

// Commit 把暂存区中人工确认过的图片和标注移动到数据集，编号接在现有编号之后
//
// 操作者拒绝时不修改任何文件。逐对移动过程中被中断会留下不连续的数据集，用 Repair 恢复。
func Commit(staging, archive Archive, opts CommitOptions) (*CommitReport, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Confirm == nil {
		return nil, errors.New("提交需要确认方式")
	}

	plan, err := PlanCommit(staging, archive)
	if err != nil {
		return nil, err
	}
	report := &CommitReport{FirstID: plan.FirstID, Pairs: len(plan.Pairs), Total: plan.FirstID}
	if len(plan.Pairs) == 0 {
		fmt.Fprintln(out, "⚠️  暂存区没有需要提交的文件")
		return report, nil
	}

	// 先解析全部标注，格式错误时不移动任何文件
	records := make([]annotation.Record, len(plan.Pairs))
	for i, pair := range plan.Pairs {
		r, err := annotation.ReadFile(pair.LabelFrom)
		if err != nil {
			return nil, err
		}
		if err := r.RequireLocation(); err != nil {
			return nil, fmt.Errorf("%s: %w", pair.LabelFrom, err)
		}
		records[i] = r
	}

	plan.Print(out)
	ok, err := opts.Confirm(plan)
	if err != nil {
		return nil, err
	}
	if !ok {
		fmt.Fprintln(out, "❎ 文件未移动")
		return report, nil
	}

	batchID, err := beginBatch(opts.Recorder, BatchCommit, staging.Labels, archive.Labels, plan.Moves())
	if err != nil {
		return nil, err
	}
	report.BatchID = batchID

	folder := filepath.Base(archive.Images)
	for i, pair := range plan.Pairs {
		absImage, err := filepath.Abs(pair.ImageTo)
		if err != nil {
			return nil, finishBatch(opts.Recorder, batchID, err)
		}
		moved := records[i].Relocate(folder, strconv.Itoa(pair.ID)+ImageExt, filepath.ToSlash(absImage))

		// 先在原位置写入新内容，再移动
		if err := annotation.WriteFile(pair.LabelFrom, moved); err != nil {
			return nil, finishBatch(opts.Recorder, batchID, err)
		}
		if err := os.Rename(pair.LabelFrom, pair.LabelTo); err != nil {
			return nil, finishBatch(opts.Recorder, batchID, fmt.Errorf("移动标注失败: %v", err))
		}
		if err := markMoved(opts.Recorder, batchID, i); err != nil {
			return nil, err
		}
		if err := os.Rename(pair.ImageFrom, pair.ImageTo); err != nil {
			return nil, finishBatch(opts.Recorder, batchID, fmt.Errorf("移动图片失败: %v", err))
		}
		if err := markMoved(opts.Recorder, batchID, len(plan.Pairs)+i); err != nil {
			return nil, err
		}
	}
	fmt.Fprintln(out, "✅ 文件移动完成")

	// 提交后检查：数量一致且编号连续
	listing, err := archive.Scan()
	if err != nil {
		return nil, finishBatch(opts.Recorder, batchID, err)
	}
	if err := checkContiguous(archive, listing); err != nil {
		return nil, finishBatch(opts.Recorder, batchID, err)
	}

	report.Moved = true
	report.Total = len(listing.Labels)
	if err := finishBatch(opts.Recorder, batchID, nil); err != nil {
		return nil, err
	}
	return report, nil
}

func beginBatch(rec Recorder, kind, source, target string, moves []Move) (string, error) {
	if rec == nil {
		return "", nil
	}
	id, err := rec.BeginBatch(kind, source, target, moves)
	if err != nil {
		return "", fmt.Errorf("写入日志失败: %w", err)
	}
	return id, nil
}

func markMoved(rec Recorder, batchID string, seq int) error {
	if rec == nil {
		return nil
	}
	if err := rec.MarkMoved(batchID, seq); err != nil {
		return fmt.Errorf("写入日志失败: %w", err)
	}
	return nil
}

// finishBatch 结束日志批次；cause 不为 nil 时记为失败并返回 cause
func finishBatch(rec Recorder, batchID string, cause error) error {
	if rec == nil {
		return cause
	}
	status := StatusDone
	if cause != nil {
		status = StatusFailed
	}
	if err := rec.FinishBatch(batchID, status); err != nil && cause == nil {
		return fmt.Errorf("写入日志失败: %w", err)
	}
	return cause
}
