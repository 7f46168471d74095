// Package cmd implements the dcmseries CLI: inspect a single file, list a
// directory's series, or extract a series volume to raw frame files.
package cmd

import (
	"io"
	"os"

	"github.com/odincare/dcmseries/dicomlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRoot builds the dcmseries command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "dcmseries",
		Short: "inspect, list, and extract DICOM series",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile, _ := cmd.Flags().GetString("log-file")
			verbosity, _ := cmd.Flags().GetInt("verbosity")
			dicomlog.SetLevel(verbosity)

			var out io.Writer = os.Stderr
			if logFile != "" {
				out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
					Filename:   logFile,
					MaxSize:    10,
					MaxBackups: 3,
					MaxAge:     28,
				})
			}
			logrus.SetOutput(out)
		},
	}

	pf := root.PersistentFlags()
	pf.String("log-file", "", "rotate diagnostic logs to this file in addition to stderr")
	pf.Int("verbosity", 0, "dicomlog verbosity level; -1 disables logging")

	root.AddCommand(
		newInspectCmd(),
		newSeriesCmd(),
		newExtractCmd(),
	)
	return root
}
