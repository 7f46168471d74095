package cmd

import (
	"fmt"

	"github.com/odincare/dcmseries/progress"
	"github.com/odincare/dcmseries/series"
	"github.com/spf13/cobra"
)

func newSeriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "series <dir>",
		Short: "scan a directory and print its ordered series list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, err := progress.Config(true)
			if err != nil {
				return err
			}
			list, err := series.ScanDirectory(args[0], series.ScanOptions{Progress: sink})
			if err != nil {
				return err
			}
			for i, s := range list {
				fmt.Printf("%d  %-40s slices=%-4d shape=%-16v sampling=%v\n",
					i, s.SeriesInstanceUID, len(s.Slices), s.Shape, s.Sampling)
			}
			return nil
		},
	}
}
