package yolo

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawDetections(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	dets := []Detection{{Box: [4]float32{10, 40, 50, 80}, Class: "AHR", Score: 0.9}}

	out := DrawDetections(src, dets, DefaultDetectionOptions().WithLineWidth(1))

	red := color.RGBA{255, 0, 0, 255}
	assert.Equal(t, red, out.RGBAAt(10, 60))
	assert.Equal(t, red, out.RGBAAt(30, 40))
	assert.Equal(t, red, out.RGBAAt(50, 80))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(30, 60))
	// 原图不变
	assert.Equal(t, color.RGBA{}, src.RGBAAt(10, 60))
}

func TestDrawDetections_ClampsOutsideBoxes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	dets := []Detection{{Box: [4]float32{-10, -10, 500, 500}, Class: "X"}}
	opts := DefaultDetectionOptions().WithDrawLabels(false).WithBoxColor("green")

	out := DrawDetections(src, dets, opts)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, out.RGBAAt(19, 19))
}

func TestParseColor(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 4}
	assert.Equal(t, color.RGBA{255, 165, 0, 255}, ParseColor("Orange", fallback))
	assert.Equal(t, fallback, ParseColor("no-such-color", fallback))
}
