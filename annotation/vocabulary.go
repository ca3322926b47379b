package annotation

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Vocabulary 有序的类别表：单位全名 -> 缩写
//
// 加载后只读。Codes 的顺序就是模型的类别顺序。
type Vocabulary struct {
	names  []string
	codes  []string
	byName map[string]int
	byCode map[string]int
}

// LoadVocabulary 读取两列逗号分隔的类别表，每行 "全名, 缩写"
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: 类别表 %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("无法打开类别表: %v", err)
	}
	defer f.Close()

	v := &Vocabulary{
		byName: make(map[string]int),
		byCode: make(map[string]int),
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %s 第 %d 行应为两列，实际 %d 列", ErrParse, path, lineNo, len(fields))
		}
		name := strings.TrimSpace(fields[0])
		code := strings.TrimSpace(fields[1])
		if name == "" || code == "" {
			return nil, fmt.Errorf("%w: %s 第 %d 行存在空字段", ErrParse, path, lineNo)
		}
		if _, dup := v.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s 第 %d 行单位 %q 重复", ErrParse, path, lineNo, name)
		}

		v.byName[name] = len(v.names)
		if _, seen := v.byCode[code]; !seen {
			v.byCode[code] = len(v.codes)
		}
		v.names = append(v.names, name)
		v.codes = append(v.codes, code)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取类别表失败: %v", err)
	}

	return v, nil
}

// Len 类别数量
func (v *Vocabulary) Len() int {
	return len(v.names)
}

// Names 按文件顺序返回单位全名
func (v *Vocabulary) Names() []string {
	return append([]string(nil), v.names...)
}

// Codes 按文件顺序返回缩写（模型的类别列表）
func (v *Vocabulary) Codes() []string {
	return append([]string(nil), v.codes...)
}

// Code 返回全名对应的缩写
func (v *Vocabulary) Code(name string) (string, bool) {
	i, ok := v.byName[name]
	if !ok {
		return "", false
	}
	return v.codes[i], true
}

// Index 返回缩写第一次出现的位置，不存在时返回 -1
func (v *Vocabulary) Index(code string) int {
	i, ok := v.byCode[code]
	if !ok {
		return -1
	}
	return i
}
