package main

import (
	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/journal"
)

func newRepairCmd(opts *rootOptions) *cobra.Command {
	var (
		images, labels string
		disableJournal bool
	)
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Renumber the dataset to 0..n-1 and rewrite stale label paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			archive := s.Archive()
			archive = dataset.New(pick(s.Resolve(images), archive.Images), pick(s.Resolve(labels), archive.Labels))
			out := cmd.OutOrStdout()

			recorder, closeJournal, err := openRecorder(s, disableJournal)
			if err != nil {
				return err
			}
			defer closeJournal()
			if j, ok := recorder.(*journal.Journal); ok {
				if err := warnIncomplete(out, j); err != nil {
					return err
				}
			}

			_, err = dataset.Repair(archive, dataset.RepairOptions{Out: out, Recorder: recorder})
			return err
		},
	}
	cmd.Flags().StringVarP(&images, "images", "i", "", "Dataset images folder")
	cmd.Flags().StringVarP(&labels, "labels", "l", "", "Dataset labels folder")
	cmd.Flags().BoolVar(&disableJournal, "no-journal", false, "Do not record the batch in the journal")
	return cmd
}
