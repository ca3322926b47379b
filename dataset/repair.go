package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Cubiaa/tft-labeler/annotation"
)

// RepairOptions 修复选项
type RepairOptions struct {
	Out      io.Writer // 默认 os.Stdout
	Recorder Recorder  // 可选
}

// RepairReport 修复结果
type RepairReport struct {
	Pairs     int
	Renamed   int // 重新编号的配对数量
	Rewritten int // 重写路径字段的标注数量
	BatchID   string
}

type numberedPair struct {
	id    int
	stem  string
	image string
	label string
}

// Repair 把数据集重新整理为连续编号 0..n-1，并让每个标注的路径字段指向对应图片
//
// 按编号的数值大小排序（"2" 在 "10" 之前），保持原有相对顺序。新编号总是不大于旧编号，
// 按升序重命名不会覆盖尚未处理的文件。对已经一致的数据集不做任何修改。
func Repair(archive Archive, opts RepairOptions) (*RepairReport, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	listing, err := archive.Scan()
	if err != nil {
		return nil, err
	}
	if err := listing.CheckPairs(archive); err != nil {
		return nil, err
	}
	if len(listing.Images) != len(listing.Labels) {
		return nil, fmt.Errorf("%w: %s 中有 %d 张图片，%s 中有 %d 个标注，两者必须相等",
			ErrCountMismatch, archive.Images, len(listing.Images), archive.Labels, len(listing.Labels))
	}

	pairs := make([]numberedPair, 0, len(listing.Images))
	seen := make(map[int]string, len(listing.Images))
	for _, img := range listing.Images {
		id, ok := parseID(img.Stem)
		if !ok {
			return nil, fmt.Errorf("%w: 文件名 %q 不是编号", ErrArchiveCorrupt, img.Path)
		}
		if other, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q 与 %q 编号相同", ErrArchiveCorrupt, other, img.Stem)
		}
		seen[id] = img.Stem
		label, _ := listing.LabelPath(img.Stem)
		pairs = append(pairs, numberedPair{id: id, stem: img.Stem, image: img.Path, label: label})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].id < pairs[j].id
	})

	// 重命名前先解析全部标注，格式错误时不做任何修改
	records := make([]annotation.Record, len(pairs))
	for i, p := range pairs {
		r, err := annotation.ReadFile(p.label)
		if err != nil {
			return nil, err
		}
		if err := r.RequireLocation(); err != nil {
			return nil, fmt.Errorf("%s: %w", p.label, err)
		}
		records[i] = r
	}

	var moves []Move
	for k, p := range pairs {
		if p.stem == strconv.Itoa(k) {
			continue
		}
		moves = append(moves,
			Move{From: p.image, To: archive.ImagePath(k)},
			Move{From: p.label, To: archive.LabelPath(k)},
		)
	}

	report := &RepairReport{Pairs: len(pairs)}
	batchID := ""
	if len(moves) > 0 {
		batchID, err = beginBatch(opts.Recorder, BatchRepair, archive.Labels, archive.Labels, moves)
		if err != nil {
			return nil, err
		}
		report.BatchID = batchID
	}

	seq := 0
	for k, p := range pairs {
		if p.stem == strconv.Itoa(k) {
			continue
		}
		for _, m := range []Move{
			{From: p.image, To: archive.ImagePath(k)},
			{From: p.label, To: archive.LabelPath(k)},
		} {
			if err := renameNoClobber(m.From, m.To); err != nil {
				return nil, finishBatch(opts.Recorder, batchID, err)
			}
			if err := markMoved(opts.Recorder, batchID, seq); err != nil {
				return nil, err
			}
			seq++
		}
		fmt.Fprintf(out, "🔁 %s -> %d\n", p.stem, k)
		report.Renamed++
	}

	// 修复路径字段
	folder := filepath.Base(archive.Images)
	for k := range pairs {
		imagePath, err := filepath.Abs(archive.ImagePath(k))
		if err != nil {
			return nil, finishBatch(opts.Recorder, batchID, err)
		}
		filename := strconv.Itoa(k) + ImageExt
		path := filepath.ToSlash(imagePath)
		if records[k].LocatedAt(folder, filename, path) {
			continue
		}
		if err := annotation.WriteFile(archive.LabelPath(k), records[k].Relocate(folder, filename, path)); err != nil {
			return nil, finishBatch(opts.Recorder, batchID, err)
		}
		report.Rewritten++
	}

	if batchID != "" {
		if err := finishBatch(opts.Recorder, batchID, nil); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(out, "✅ 修复完成: %d 对文件，重新编号 %d 对，重写标注 %d 个\n", report.Pairs, report.Renamed, report.Rewritten)
	return report, nil
}

// renameNoClobber 重命名文件，目标已存在时拒绝
func renameNoClobber(from, to string) error {
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("%w: 重命名 %s 会覆盖已存在的 %s", ErrArchiveCorrupt, from, to)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("无法检查 %s: %v", to, err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("重命名 %s 失败: %v", from, err)
	}
	return nil
}
