package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/annotation"
	"github.com/Cubiaa/tft-labeler/dataset"
	"github.com/Cubiaa/tft-labeler/report"
)

func newTallyCmd(opts *rootOptions) *cobra.Command {
	var (
		labels, images, vocabulary string
		htmlPath, pngPath          string
		verbose                    bool
	)
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Count unit occurrences across the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			archive := s.Archive()
			archive = dataset.New(pick(s.Resolve(images), archive.Images), pick(s.Resolve(labels), archive.Labels))

			vocab, err := annotation.LoadVocabulary(pick(s.Resolve(vocabulary), s.VocabularyPath()))
			if err != nil {
				return err
			}
			r, err := dataset.Tally(archive, vocab)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.PrintTally(out, r, verbose)
			if htmlPath != "" {
				if err := report.WriteHTMLChart(s.Resolve(htmlPath), r); err != nil {
					return err
				}
				fmt.Fprintf(out, "📈 图表已保存: %s\n", s.Resolve(htmlPath))
			}
			if pngPath != "" {
				if err := report.WritePNGChart(s.Resolve(pngPath), r); err != nil {
					return err
				}
				fmt.Fprintf(out, "📈 图表已保存: %s\n", s.Resolve(pngPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&labels, "labels", "l", "", "Dataset labels folder")
	cmd.Flags().StringVarP(&images, "images", "i", "", "Dataset images folder")
	cmd.Flags().StringVarP(&vocabulary, "vocabulary", "f", "", "Unit vocabulary CSV (name, code)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the count of every unit")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write an interactive bar chart to this HTML file")
	cmd.Flags().StringVar(&pngPath, "png", "", "Also write a bar chart to this PNG file")
	return cmd
}
