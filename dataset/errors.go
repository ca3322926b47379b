package dataset

import (
	"errors"
	"fmt"

	"github.com/Cubiaa/tft-labeler/annotation"
)

var (
	// ErrNotFound 必需的文件或目录不存在
	ErrNotFound = annotation.ErrNotFound
	// ErrMissingPair 图片缺少对应标注，或标注缺少对应图片
	ErrMissingPair = errors.New("图片与标注不成对")
	// ErrCountMismatch 图片数量与标注数量不一致
	ErrCountMismatch = errors.New("图片数量与标注数量不一致")
	// ErrArchiveCorrupt 数据集编号不连续或两个目录不同步
	ErrArchiveCorrupt = errors.New("数据集编号损坏")
)

// PairError 指出缺少配对的具体文件
type PairError struct {
	Stem    string // 文件主干名
	Have    string // 已存在的文件
	Missing string // 缺少的文件
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s 不存在，但存在 %s（主干名 %q）。每张图片都必须有一个标注，反之亦然", e.Missing, e.Have, e.Stem)
}

// Unwrap 使 errors.Is(err, ErrMissingPair) 成立
func (e *PairError) Unwrap() error {
	return ErrMissingPair
}
