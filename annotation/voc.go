package annotation

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// vocAnnotation Pascal VOC 标注文件的 xml 结构（字段顺序固定）
type vocAnnotation struct {
	XMLName   xml.Name    `xml:"annotation"`
	Folder    string      `xml:"folder"`
	Filename  string      `xml:"filename"`
	Path      string      `xml:"path"`
	Source    vocSource   `xml:"source"`
	Size      vocSize     `xml:"size"`
	Segmented int         `xml:"segmented"`
	Objects   []vocObject `xml:"object"`
}

type vocSource struct {
	Database string `xml:"database"`
}

type vocSize struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
	Depth  int `xml:"depth"`
}

type vocObject struct {
	Name      string    `xml:"name"`
	Pose      string    `xml:"pose"`
	Truncated int       `xml:"truncated"`
	Difficult int       `xml:"difficult"`
	BndBox    vocBndBox `xml:"bndbox"`
}

type vocBndBox struct {
	XMin int `xml:"xmin"`
	YMin int `xml:"ymin"`
	XMax int `xml:"xmax"`
	YMax int `xml:"ymax"`
}

// Marshal 把标注记录序列化为 VOC xml（制表符缩进，末尾换行）
func Marshal(r Record) ([]byte, error) {
	doc := vocAnnotation{
		Folder:    r.Folder,
		Filename:  r.Filename,
		Path:      r.Path,
		Source:    vocSource{Database: r.Database},
		Size:      vocSize{Width: r.Width, Height: r.Height, Depth: r.Depth},
		Segmented: r.Segmented,
	}
	for _, obj := range r.Objects {
		doc.Objects = append(doc.Objects, vocObject{
			Name:      obj.Name,
			Pose:      obj.Pose,
			Truncated: obj.Truncated,
			Difficult: obj.Difficult,
			BndBox: vocBndBox{
				XMin: obj.Box.XMin,
				YMin: obj.Box.YMin,
				XMax: obj.Box.XMax,
				YMax: obj.Box.YMax,
			},
		})
	}

	data, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("序列化标注失败: %v", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal 解析 VOC xml 标注
func Unmarshal(data []byte) (Record, error) {
	var doc vocAnnotation
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	// 根元素之后只允许空白、注释和处理指令
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return Record{}, fmt.Errorf("%w: 根元素之后有多余内容", ErrMalformedRecord)
			}
		default:
			return Record{}, fmt.Errorf("%w: 根元素之后有多余内容", ErrMalformedRecord)
		}
	}

	r := Record{
		Folder:    doc.Folder,
		Filename:  doc.Filename,
		Path:      doc.Path,
		Database:  doc.Source.Database,
		Width:     doc.Size.Width,
		Height:    doc.Size.Height,
		Depth:     doc.Size.Depth,
		Segmented: doc.Segmented,
	}
	for _, obj := range doc.Objects {
		r.Objects = append(r.Objects, Object{
			Name:      obj.Name,
			Pose:      obj.Pose,
			Truncated: obj.Truncated,
			Difficult: obj.Difficult,
			Box: Box{
				XMin: obj.BndBox.XMin,
				YMin: obj.BndBox.YMin,
				XMax: obj.BndBox.XMax,
				YMax: obj.BndBox.YMax,
			},
		})
	}
	return r, nil
}

// ReadFile 读取并解析标注文件
func ReadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Record{}, fmt.Errorf("读取标注文件失败: %v", err)
	}
	r, err := Unmarshal(data)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// WriteFile 把标注写入文件（覆盖已有文件）
func WriteFile(path string, r Record) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入标注文件失败: %v", err)
	}
	return nil
}

// CreateFile 把标注写入新文件，文件已存在时返回 fs.ErrExist
func CreateFile(path string, r Record) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	_, err = writeData(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// 不留下半截文件
		os.Remove(path)
		return fmt.Errorf("写入标注文件失败: %v", err)
	}
	return nil
}

var writeData = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}
