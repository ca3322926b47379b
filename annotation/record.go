package annotation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// 标注中固定不变的字段值
const (
	DefaultDatabase = "Unknown"
	DefaultPose     = "Unspecified"
)

// Box 边界框（像素坐标，xmin < xmax，ymin < ymax）
type Box struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Valid 检查边界框是否非退化
func (b Box) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}

// Width 边界框宽度
func (b Box) Width() int { return b.XMax - b.XMin }

// Height 边界框高度
func (b Box) Height() int { return b.YMax - b.YMin }

// Area 边界框面积
func (b Box) Area() int {
	if !b.Valid() {
		return 0
	}
	return b.Width() * b.Height()
}

// Object 一个标注对象：类别 + 边界框
type Object struct {
	Name      string
	Pose      string
	Truncated int
	Difficult int
	Box       Box
}

// NewObject 创建带默认描述字段的标注对象
func NewObject(name string, box Box) Object {
	return Object{
		Name: name,
		Pose: DefaultPose,
		Box:  box,
	}
}

// Record 一张图片的标注记录
//
// Record 按值传递；Relocate 等修改方法返回新的副本，原值不变。
type Record struct {
	Folder    string
	Filename  string
	Path      string
	Database  string
	Width     int
	Height    int
	Depth     int
	Segmented int
	Objects   []Object
}

// NewRecord 根据图片路径和尺寸创建标注记录
func NewRecord(imagePath string, width, height, depth int, objects []Object) Record {
	return Record{
		Folder:   filepath.Base(filepath.Dir(imagePath)),
		Filename: filepath.Base(imagePath),
		Path:     filepath.ToSlash(imagePath),
		Database: DefaultDatabase,
		Width:    width,
		Height:   height,
		Depth:    depth,
		Objects:  cloneObjects(objects),
	}
}

// Stem 返回图片文件名去掉扩展名后的部分（与标注文件的主干名一致）
func (r Record) Stem() string {
	return Stem(r.Filename)
}

// Relocate 返回指向新位置的副本
func (r Record) Relocate(folder, filename, path string) Record {
	out := r
	out.Folder = folder
	out.Filename = filename
	out.Path = path
	out.Objects = cloneObjects(r.Objects)
	return out
}

// WithObjects 返回替换了对象列表的副本
func (r Record) WithObjects(objects []Object) Record {
	out := r
	out.Objects = cloneObjects(objects)
	return out
}

// RequireLocation 检查重写路径信息时需要的字段是否存在
func (r Record) RequireLocation() error {
	var missing []string
	if r.Folder == "" {
		missing = append(missing, "folder")
	}
	if r.Filename == "" {
		missing = append(missing, "filename")
	}
	if r.Path == "" {
		missing = append(missing, "path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: 缺少字段 %s", ErrMalformedRecord, strings.Join(missing, ", "))
	}
	return nil
}

// LocatedAt 判断记录的路径字段是否已经指向给定位置
func (r Record) LocatedAt(folder, filename, path string) bool {
	return r.Folder == folder && r.Filename == filename && r.Path == path
}

// Stem 返回文件名去掉扩展名后的部分
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cloneObjects(objects []Object) []Object {
	if objects == nil {
		return nil
	}
	out := make([]Object, len(objects))
	copy(out, objects)
	return out
}
