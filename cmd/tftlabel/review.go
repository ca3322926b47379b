package main

import (
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/gui"
)

func newReviewCmd(opts *rootOptions) *cobra.Command {
	var images, labels string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Page through staged screenshots with their draft labels drawn on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			staging := s.Staging()
			staging = dataset.New(pick(s.Resolve(images), staging.Images), pick(s.Resolve(labels), staging.Labels))

			rw, err := gui.NewReviewWindow(app.New(), staging, gui.ReviewOptions{
				Detection: s.DetectionOptions(),
				Width:     s.App.Review.WindowWidth,
				Height:    s.App.Review.WindowHeight,
			})
			if err != nil {
				return err
			}
			rw.Run()
			return nil
		},
	}
	cmd.Flags().StringVarP(&images, "images", "i", "", "Staged screenshots folder")
	cmd.Flags().StringVarP(&labels, "labels", "l", "", "Staged labels folder")
	return cmd
}
