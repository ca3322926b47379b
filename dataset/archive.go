// Package dataset 维护训练数据集：图片目录与标注目录中的文件按 0..n-1 连续编号、一一对应。
//
// Commit 把人工确认过的暂存文件编号后并入数据集，Repair 把编号漂移的数据集重新整理为连续编号，
// Tally 统计各类别出现次数。
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Cubiaa/tft-labeler/annotation"
)

// 数据集文件扩展名
const (
	ImageExt = ".png"
	LabelExt = ".xml"
)

// Archive 一对目录：图片目录与标注目录
//
// 暂存区也用 Archive 表示，只是不要求编号连续。
type Archive struct {
	Images string
	Labels string
}

// New 创建 Archive
func New(images, labels string) Archive {
	return Archive{Images: images, Labels: labels}
}

// ImagePath 返回编号 id 的图片路径
func (a Archive) ImagePath(id int) string {
	return filepath.Join(a.Images, strconv.Itoa(id)+ImageExt)
}

// ImagePathFor 返回主干名对应的图片路径
func (a Archive) ImagePathFor(stem string) string {
	return filepath.Join(a.Images, stem+ImageExt)
}

// LabelPath 返回编号 id 的标注路径
func (a Archive) LabelPath(id int) string {
	return filepath.Join(a.Labels, strconv.Itoa(id)+LabelExt)
}

// Ensure 创建不存在的目录
func (a Archive) Ensure() error {
	for _, dir := range []string{a.Images, a.Labels} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("无法创建目录 %s: %v", dir, err)
		}
	}
	return nil
}

// Exists 检查两个目录是否都存在
func (a Archive) Exists() error {
	for _, dir := range []string{a.Images, a.Labels} {
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNotFound, dir)
			}
			return fmt.Errorf("无法访问目录 %s: %v", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s 不是目录", ErrNotFound, dir)
		}
	}
	return nil
}

// File 数据集中的一个文件
type File struct {
	Stem string
	Path string
}

// Listing 某一时刻两个目录的文件快照
type Listing struct {
	Images []File
	Labels []File

	imageByStem map[string]string
	labelByStem map[string]string
}

// Scan 列出两个目录中的图片和标注（按文件名顺序）
func (a Archive) Scan() (*Listing, error) {
	if err := a.Exists(); err != nil {
		return nil, err
	}
	images, err := listFiles(a.Images, ImageExt)
	if err != nil {
		return nil, err
	}
	labels, err := listFiles(a.Labels, LabelExt)
	if err != nil {
		return nil, err
	}

	l := &Listing{
		Images:      images,
		Labels:      labels,
		imageByStem: make(map[string]string, len(images)),
		labelByStem: make(map[string]string, len(labels)),
	}
	for _, f := range images {
		l.imageByStem[f.Stem] = f.Path
	}
	for _, f := range labels {
		l.labelByStem[f.Stem] = f.Path
	}
	return l, nil
}

// ImagePath 返回主干名对应的图片路径
func (l *Listing) ImagePath(stem string) (string, bool) {
	p, ok := l.imageByStem[stem]
	return p, ok
}

// LabelPath 返回主干名对应的标注路径
func (l *Listing) LabelPath(stem string) (string, bool) {
	p, ok := l.labelByStem[stem]
	return p, ok
}

// CheckPairs 检查图片与标注是否一一对应，返回第一个缺少配对的文件
func (l *Listing) CheckPairs(a Archive) error {
	for _, img := range l.Images {
		if _, ok := l.labelByStem[img.Stem]; !ok {
			return &PairError{
				Stem:    img.Stem,
				Have:    img.Path,
				Missing: filepath.Join(a.Labels, img.Stem+LabelExt),
			}
		}
	}
	for _, lbl := range l.Labels {
		if _, ok := l.imageByStem[lbl.Stem]; !ok {
			return &PairError{
				Stem:    lbl.Stem,
				Have:    lbl.Path,
				Missing: filepath.Join(a.Images, lbl.Stem+ImageExt),
			}
		}
	}
	return nil
}

// Validate 检查数据集不变式：图片与标注一一对应，且编号恰好为 0..n-1
func (a Archive) Validate() error {
	l, err := a.Scan()
	if err != nil {
		return err
	}
	if err := l.CheckPairs(a); err != nil {
		return err
	}
	return checkContiguous(a, l)
}

// checkContiguous 检查数量一致且 0..n-1 在两个目录中都存在
func checkContiguous(a Archive, l *Listing) error {
	if len(l.Images) != len(l.Labels) {
		return fmt.Errorf("%w: %s 中有 %d 张图片，%s 中有 %d 个标注，数据集可能已损坏",
			ErrArchiveCorrupt, a.Images, len(l.Images), a.Labels, len(l.Labels))
	}
	n := len(l.Labels)
	for i := 0; i < n; i++ {
		stem := strconv.Itoa(i)
		_, hasImage := l.imageByStem[stem]
		_, hasLabel := l.labelByStem[stem]
		if !hasImage || !hasLabel {
			return fmt.Errorf("%w: 编号 %d 缺失，文件名不连续，请运行 repair", ErrArchiveCorrupt, i)
		}
	}
	return nil
}

func listFiles(dir, ext string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("无法读取目录 %s: %v", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ext {
			continue
		}
		files = append(files, File{
			Stem: annotation.Stem(name),
			Path: filepath.Join(dir, name),
		})
	}
	return files, nil
}

// parseID 解析数据集编号（非负十进制整数）
func parseID(stem string) (int, bool) {
	if stem == "" {
		return 0, false
	}
	for _, c := range stem {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(stem)
	if err != nil {
		return 0, false
	}
	return id, true
}
