package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/yolo"
)

func newDetectCmd(opts *rootOptions) *cobra.Command {
	var (
		model, vocabulary, output string
		gpu                       bool
		conf                      float32
	)
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Run the model on one image and print (or draw) the detections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			detector, _, err := loadDetector(cmd, s, detectorFlags{model: model, vocabulary: vocabulary, gpu: gpu, conf: conf})
			if err != nil {
				return err
			}
			defer yolo.DestroyEnvironment()
			defer detector.Close()

			out := cmd.OutOrStdout()
			imagePath := s.Resolve(args[0])
			var detections []yolo.Detection
			if output != "" {
				output = s.Resolve(output)
				if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
					return err
				}
				detections, err = detector.DetectAndSave(imagePath, output)
			} else {
				detections, err = detector.DetectImage(imagePath)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✅ 检测到 %d 个对象:\n", len(detections))
			for i, d := range detections {
				fmt.Fprintf(out, "  %d. %s (%.2f%%) - 坐标: [%.1f, %.1f, %.1f, %.1f]\n",
					i+1, d.Class, d.Score*100, d.Box[0], d.Box[1], d.Box[2], d.Box[3])
			}
			if output != "" {
				fmt.Fprintf(out, "💾 检测结果已保存到 %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "ONNX model file")
	cmd.Flags().StringVarP(&vocabulary, "vocabulary", "f", "", "Unit vocabulary CSV (name, code)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Save the image with detections drawn to this file")
	cmd.Flags().Float32Var(&conf, "conf", 0, "Confidence threshold (default: yolo.conf_threshold)")
	cmd.Flags().BoolVar(&gpu, "gpu", false, "Use GPU acceleration")
	return cmd
}
