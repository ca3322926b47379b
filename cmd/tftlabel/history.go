package main

import (
	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/journal"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "List recent commit and repair batches, or the moves of one batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			j, err := journal.Open(s.JournalPath())
			if err != nil {
				return err
			}
			defer j.Close()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				b, err := j.Get(args[0])
				if err != nil {
					return err
				}
				moves, err := j.Moves(b.ID)
				if err != nil {
					return err
				}
				printBatches(out, []journal.Batch{*b})
				printMoves(out, moves)
				return nil
			}

			batches, err := j.Recent(limit)
			if err != nil {
				return err
			}
			printBatches(out, batches)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of batches to show")
	return cmd
}
