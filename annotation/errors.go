package annotation

import "errors"

// 错误类型，调用方用 errors.Is 判断
var (
	// ErrNotFound 必需的文件或目录不存在
	ErrNotFound = errors.New("文件或目录不存在")
	// ErrParse 类别表格式错误
	ErrParse = errors.New("类别表格式错误")
	// ErrMalformedRecord 标注文件无法解析或缺少必需字段
	ErrMalformedRecord = errors.New("标注文件格式错误")
)
