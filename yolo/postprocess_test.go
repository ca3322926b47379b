package yolo

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIoU(t *testing.T) {
	a := [4]float32{0, 0, 10, 10}
	assert.InDelta(t, 1.0, IoU(a, a), 1e-6)
	assert.InDelta(t, 0.0, IoU(a, [4]float32{20, 20, 30, 30}), 1e-6)
	// 交集 50，并集 150
	assert.InDelta(t, 1.0/3.0, IoU(a, [4]float32{5, 0, 15, 10}), 1e-6)
	assert.Zero(t, IoU([4]float32{0, 0, 0, 0}, [4]float32{0, 0, 0, 0}))
}

func TestNonMaxSuppression(t *testing.T) {
	dets := []Detection{
		{Box: [4]float32{0, 0, 10, 10}, Score: 0.6, Class: "A"},
		{Box: [4]float32{1, 1, 11, 11}, Score: 0.9, Class: "B"},
		{Box: [4]float32{50, 50, 60, 60}, Score: 0.7, Class: "A"},
	}
	kept := NonMaxSuppression(dets, 0.5)

	want := []Detection{
		{Box: [4]float32{1, 1, 11, 11}, Score: 0.9, Class: "B"},
		{Box: [4]float32{50, 50, 60, 60}, Score: 0.7, Class: "A"},
	}
	if diff := cmp.Diff(want, kept); diff != "" {
		t.Errorf("NMS mismatch (-want +got):\n%s", diff)
	}
	// 输入不被修改
	assert.Equal(t, float32(0.6), dets[0].Score)
}

func TestNonMaxSuppression_TieKeepsFirst(t *testing.T) {
	dets := []Detection{
		{Box: [4]float32{0, 0, 10, 10}, Score: 0.8, Class: "first"},
		{Box: [4]float32{0, 0, 10, 10}, Score: 0.8, Class: "second"},
	}
	kept := NonMaxSuppression(dets, 0.5)
	require.Len(t, kept, 1)
	assert.Equal(t, "first", kept[0].Class)
}

func TestNonMaxSuppression_ThresholdIsExclusive(t *testing.T) {
	// IoU 为 1/3：只有大于阈值才被抑制
	dets := []Detection{
		{Box: [4]float32{0, 0, 10, 10}, Score: 0.9},
		{Box: [4]float32{5, 0, 15, 10}, Score: 0.8},
	}
	assert.Len(t, NonMaxSuppression(dets, 0.5), 2)
	assert.Len(t, NonMaxSuppression(dets, 0.2), 1)
	assert.Nil(t, NonMaxSuppression(nil, 0.5))
}

func TestParseDetections(t *testing.T) {
	// 2 个类别，3 个候选框：特征按 [cx, cy, w, h, c0, c1] 排列
	output := []float32{
		10, 50, 100, // cx
		10, 50, 100, // cy
		4, 10, 20, // w
		6, 10, 20, // h
		0.9, 0.1, 0.2, // class 0
		0.05, 0.3, 0.7, // class 1
	}
	dets, err := ParseDetections(output, []int64{1, 6, 3}, []string{"AHR", "BLI"}, 0.5)
	require.NoError(t, err)

	want := []Detection{
		{Box: [4]float32{8, 7, 12, 13}, Score: 0.9, ClassID: 0, Class: "AHR"},
		{Box: [4]float32{90, 90, 110, 110}, Score: 0.7, ClassID: 1, Class: "BLI"},
	}
	if diff := cmp.Diff(want, dets); diff != "" {
		t.Errorf("ParseDetections mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDetections_UnknownClass(t *testing.T) {
	output := []float32{1, 1, 2, 2, 0.1, 0.9}
	dets, err := ParseDetections(output, []int64{1, 6, 1}, []string{"AHR"}, 0.5)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "unknown", dets[0].Class)
}

func TestParseDetections_BadShape(t *testing.T) {
	_, err := ParseDetections(nil, []int64{1, 84}, nil, 0.5)
	assert.Error(t, err)
	_, err = ParseDetections(nil, []int64{1, 4, 10}, nil, 0.5)
	assert.Error(t, err)
	_, err = ParseDetections(make([]float32, 5), []int64{1, 6, 1}, nil, 0.5)
	assert.Error(t, err)
}

func TestScaleBoxes(t *testing.T) {
	dets := []Detection{{Box: [4]float32{10, 20, 30, 40}}}
	ScaleBoxes(dets, 3, 0.5)
	assert.Equal(t, [4]float32{30, 10, 90, 20}, dets[0].Box)
}

func TestAnchorCount(t *testing.T) {
	assert.Equal(t, 8400, anchorCount(640, 640))
}

func TestPreprocess(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{255, 0, 51, 255})
		}
	}
	data := Preprocess(img, 2, 2)
	require.Len(t, data, 12)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1.0, data[i], 1e-3)
		assert.InDelta(t, 0.0, data[4+i], 1e-3)
		assert.InDelta(t, 0.2, data[8+i], 1e-3)
	}
}

func TestConfigInputDims(t *testing.T) {
	w, h := DefaultConfig().inputDims()
	assert.Equal(t, 640, w)
	assert.Equal(t, 640, h)

	w, h = DefaultConfig().WithInputDimensions(1024, 576).inputDims()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 576, h)

	w, _ = DefaultConfig().WithInputDimensions(1024, 576).WithInputSize(320).inputDims()
	assert.Equal(t, 320, w)
}
