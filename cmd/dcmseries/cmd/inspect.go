package cmd

import (
	"fmt"
	"sort"

	"github.com/odincare/dcmseries/dicom"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path>",
		Short: "parse one file and print its whitelisted tags and pixel shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dicom.Open(args[0])
			if err != nil {
				return err
			}

			names := make([]string, 0, len(ds.Values))
			for name := range ds.Values {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				v := ds.Values[name]
				fmt.Printf("%-24s %s\n", name, formatValue(v))
			}

			if ds.Shape != nil {
				fmt.Printf("%-24s %v\n", "shape", ds.Shape)
				fmt.Printf("%-24s %v\n", "sampling", ds.Sampling)
			} else {
				fmt.Println("shape                    (no pixel data)")
			}
			return nil
		},
	}
}

func formatValue(v dicom.Value) string {
	switch v.Kind {
	case dicom.KindString:
		if s, ok := v.String(); ok {
			return s
		}
	case dicom.KindInt:
		return fmt.Sprintf("%v", v.Ints)
	case dicom.KindFloat:
		return fmt.Sprintf("%v", v.Floats)
	case dicom.KindBytes:
		return fmt.Sprintf("<%d bytes>", len(v.Bytes))
	}
	return ""
}
