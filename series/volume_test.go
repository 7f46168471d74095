package series

import (
	"testing"

	"github.com/odincare/dcmseries/dicom"
	"github.com/stretchr/testify/require"
)

func TestNewStackedArrayAndCopyInto(t *testing.T) {
	stack := newStackedArray(dicom.DtypeUint8, 3, 4)
	require.Equal(t, 12, len(stack.Uint8))

	slice0 := &dicom.PixelArray{Dtype: dicom.DtypeUint8, Uint8: []uint8{1, 2, 3, 4}}
	slice1 := &dicom.PixelArray{Dtype: dicom.DtypeUint8, Uint8: []uint8{5, 6, 7, 8}}
	slice2 := &dicom.PixelArray{Dtype: dicom.DtypeUint8, Uint8: []uint8{9, 10, 11, 12}}

	copyInto(stack, 0, slice0)
	copyInto(stack, 1, slice1)
	copyInto(stack, 2, slice2)

	require.Equal(t, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, stack.Uint8)
}

func TestVolumeEmptySeries(t *testing.T) {
	s := &Series{SeriesInstanceUID: "uid"}
	_, err := s.Volume(nil)
	require.ErrorIs(t, err, ErrEmptySeries)
}
