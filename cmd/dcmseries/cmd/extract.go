package cmd

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/odincare/dcmseries/dicom"
	"github.com/odincare/dcmseries/progress"
	"github.com/odincare/dcmseries/series"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <dir> <series-index> <out-dir>",
		Short: "materialize a series volume and dump each slice as a raw frame",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("series-index: %w", err)
			}
			outDir := args[2]
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			sink, err := progress.Config(true)
			if err != nil {
				return err
			}
			list, err := series.ScanDirectory(args[0], series.ScanOptions{Progress: sink})
			if err != nil {
				return err
			}
			if index < 0 || index >= len(list) {
				return fmt.Errorf("series index %d out of range (found %d series)", index, len(list))
			}
			s := list[index]

			volume, err := s.Volume(sink)
			if err != nil {
				return err
			}

			nFrames := len(s.Slices)
			frameLen := volume.Len() / nFrames
			for n := 0; n < nFrames; n++ {
				name := fmt.Sprintf("slice-%d-%s.bin", n, uuid.New().String())
				path := filepath.Join(outDir, name)
				if err := writeFrame(path, volume, n*frameLen, frameLen); err != nil {
					return err
				}
			}
			fmt.Printf("extracted %d frames to %s\n", nFrames, outDir)
			return nil
		},
	}
}

// writeFrame writes the [start, start+n) sample range of volume as raw
// little-endian bytes of its native element width.
func writeFrame(path string, volume *dicom.PixelArray, start, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 0, n*4)
	for i := start; i < start+n; i++ {
		switch volume.Dtype {
		case dicom.DtypeUint8:
			buf = append(buf, volume.Uint8[i])
		case dicom.DtypeInt8:
			buf = append(buf, byte(volume.Int8[i]))
		case dicom.DtypeUint16:
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], volume.Uint16[i])
			buf = append(buf, b[:]...)
		case dicom.DtypeInt16:
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(volume.Int16[i]))
			buf = append(buf, b[:]...)
		case dicom.DtypeUint32:
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], volume.Uint32[i])
			buf = append(buf, b[:]...)
		case dicom.DtypeInt32:
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(volume.Int32[i]))
			buf = append(buf, b[:]...)
		case dicom.DtypeFloat32:
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(volume.Float32[i]))
			buf = append(buf, b[:]...)
		}
	}
	_, err = f.Write(buf)
	return err
}
