package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/annotation"
	"github.com/Cubiaa/tft-labeler/autolabel"
	"github.com/Cubiaa/tft-labeler/config"
	"github.com/Cubiaa/tft-labeler/yolo"
)

func newAutolabelCmd(opts *rootOptions) *cobra.Command {
	var (
		labels, images, model, vocabulary string
		watch, gpu                        bool
		conf                              float32
	)
	cmd := &cobra.Command{
		Use:   "autolabel",
		Short: "Draft labels for new screenshots with the current model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			staging := s.Staging()
			images = pick(s.Resolve(images), staging.Images)
			labels = pick(s.Resolve(labels), staging.Labels)

			out := cmd.OutOrStdout()
			detector, detOpts, err := loadDetector(cmd, s, detectorFlags{model: model, vocabulary: vocabulary, gpu: gpu, conf: conf})
			if err != nil {
				return err
			}
			defer yolo.DestroyEnvironment()
			defer detector.Close()

			labeler := &autolabel.Labeler{
				Predictor:    detector,
				LabelsDir:    labels,
				IOUThreshold: detOpts.IOUThreshold,
				Out:          out,
			}
			if watch {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				return labeler.Watch(ctx, images)
			}
			_, err = labeler.Run(images)
			return err
		},
	}
	cmd.Flags().StringVarP(&labels, "labels", "l", "", "Folder to write draft labels to")
	cmd.Flags().StringVarP(&images, "images", "i", "", "Folder of screenshots to label")
	cmd.Flags().StringVarP(&model, "model", "m", "", "ONNX model file")
	cmd.Flags().StringVarP(&vocabulary, "vocabulary", "f", "", "Unit vocabulary CSV (name, code)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and label screenshots as they appear")
	cmd.Flags().Float32Var(&conf, "conf", 0, "Confidence threshold (default: yolo.conf_threshold)")
	cmd.Flags().BoolVar(&gpu, "gpu", false, "Use GPU acceleration")
	return cmd
}

// detectorFlags 加载检测器相关的命令行参数
type detectorFlags struct {
	model, vocabulary string
	gpu               bool
	conf              float32
}

// loadDetector 检查模型和类别表后创建检测器；模型或类别表缺失时返回错误
func loadDetector(cmd *cobra.Command, s *config.Settings, f detectorFlags) (*yolo.YOLO, *yolo.DetectionOptions, error) {
	model := pick(s.Resolve(f.model), s.ModelPath())
	if _, err := os.Stat(model); err != nil {
		return nil, nil, fmt.Errorf("模型文件不可用 %s: %w", model, err)
	}
	vocab, err := annotation.LoadVocabulary(pick(s.Resolve(f.vocabulary), s.VocabularyPath()))
	if err != nil {
		return nil, nil, err
	}

	cfg := s.YOLOConfig()
	if cmd.Flags().Changed("gpu") {
		cfg.WithGPU(f.gpu)
	}
	detOpts := s.DetectionOptions()
	if f.conf > 0 {
		detOpts.WithConfThreshold(f.conf)
	}

	detector, err := yolo.NewYOLOWithOutput(model, vocab.Codes(), cfg, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}
	detector.SetRuntimeConfig(detOpts)
	return detector, detOpts, nil
}

// pick 返回第一个非空值
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
