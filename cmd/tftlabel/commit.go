package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/gui"
)

func newCommitCmd(opts *rootOptions) *cobra.Command {
	var (
		images, labels         string
		imagesTo, labelsTo     string
		useGUI, disableJournal bool
	)
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Move reviewed screenshots and labels into the numbered dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			staging, archive := s.Staging(), s.Archive()
			staging = dataset.New(pick(s.Resolve(images), staging.Images), pick(s.Resolve(labels), staging.Labels))
			archive = dataset.New(pick(s.Resolve(imagesTo), archive.Images), pick(s.Resolve(labelsTo), archive.Labels))

			recorder, closeJournal, err := openRecorder(s, disableJournal)
			if err != nil {
				return err
			}
			defer closeJournal()

			out := cmd.OutOrStdout()
			confirm := dataset.StdinConfirmer(cmd.InOrStdin(), out)
			if useGUI {
				confirm = gui.ConfirmPlan
			}
			report, err := dataset.Commit(staging, archive, dataset.CommitOptions{
				Confirm:  confirm,
				Out:      out,
				Recorder: recorder,
			})
			if err != nil {
				return err
			}
			if report.Moved {
				fmt.Fprintf(out, "📦 已提交 %d 对文件（编号 %d-%d），数据集共 %d 对\n",
					report.Pairs, report.FirstID, report.FirstID+report.Pairs-1, report.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&images, "images", "i", "", "Staged screenshots folder")
	cmd.Flags().StringVarP(&labels, "labels", "l", "", "Staged labels folder")
	cmd.Flags().StringVar(&imagesTo, "commit-images-to", "", "Dataset images folder")
	cmd.Flags().StringVar(&labelsTo, "commit-labels-to", "", "Dataset labels folder")
	cmd.Flags().BoolVar(&useGUI, "gui", false, "Confirm the plan in a window instead of on stdin")
	cmd.Flags().BoolVar(&disableJournal, "no-journal", false, "Do not record the batch in the journal")
	return cmd
}
