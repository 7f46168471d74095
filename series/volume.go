package series

import (
	"fmt"

	"github.com/odincare/dcmseries/dicom"
	"github.com/odincare/dcmseries/progress"
)

// Volume materializes every slice's PixelArray and stacks them along a new
// leading axis, reporting progress per slice. A single-slice series
// delegates directly to its sole dataset's PixelArray.
func (s *Series) Volume(sink progress.Sink) (*dicom.PixelArray, error) {
	if sink == nil {
		sink = progress.Noop
	}
	if len(s.Slices) == 0 {
		return nil, ErrEmptySeries
	}
	if len(s.Slices) == 1 {
		return s.Slices[0].PixelArray()
	}

	sink.Start("volume", "slices", len(s.Slices))

	first, err := s.Slices[0].PixelArray()
	if err != nil {
		return nil, fmt.Errorf("series: %s: slice 0: %w", s.SeriesInstanceUID, err)
	}

	stack := newStackedArray(first.Dtype, len(s.Slices), first.Len())
	copyInto(stack, 0, first)
	sink.SetProgress(1)

	for i := 1; i < len(s.Slices); i++ {
		arr, err := s.Slices[i].PixelArray()
		if err != nil {
			return nil, fmt.Errorf("series: %s: slice %d: %w", s.SeriesInstanceUID, i, err)
		}
		copyInto(stack, i, arr)
		sink.SetProgress(i + 1)
	}

	stack.Shape = append([]int(nil), s.Shape...)
	sink.Finish(fmt.Sprintf("series: %s: stacked %d slices", s.SeriesInstanceUID, len(s.Slices)))
	return stack, nil
}

// newStackedArray allocates a zero-filled array of the given Dtype holding
// n slices of perSlice samples each.
func newStackedArray(dtype dicom.Dtype, n, perSlice int) *dicom.PixelArray {
	total := n * perSlice
	arr := &dicom.PixelArray{Dtype: dtype}
	switch dtype {
	case dicom.DtypeUint8:
		arr.Uint8 = make([]uint8, total)
	case dicom.DtypeInt8:
		arr.Int8 = make([]int8, total)
	case dicom.DtypeUint16:
		arr.Uint16 = make([]uint16, total)
	case dicom.DtypeInt16:
		arr.Int16 = make([]int16, total)
	case dicom.DtypeUint32:
		arr.Uint32 = make([]uint32, total)
	case dicom.DtypeInt32:
		arr.Int32 = make([]int32, total)
	case dicom.DtypeFloat32:
		arr.Float32 = make([]float32, total)
	}
	return arr
}

// copyInto copies src's samples into the index-th slot of dst, which must
// have been allocated with the same Dtype via newStackedArray.
func copyInto(dst *dicom.PixelArray, index int, src *dicom.PixelArray) {
	n := src.Len()
	offset := index * n
	switch dst.Dtype {
	case dicom.DtypeUint8:
		copy(dst.Uint8[offset:offset+n], src.Uint8)
	case dicom.DtypeInt8:
		copy(dst.Int8[offset:offset+n], src.Int8)
	case dicom.DtypeUint16:
		copy(dst.Uint16[offset:offset+n], src.Uint16)
	case dicom.DtypeInt16:
		copy(dst.Int16[offset:offset+n], src.Int16)
	case dicom.DtypeUint32:
		copy(dst.Uint32[offset:offset+n], src.Uint32)
	case dicom.DtypeInt32:
		copy(dst.Int32[offset:offset+n], src.Int32)
	case dicom.DtypeFloat32:
		copy(dst.Float32[offset:offset+n], src.Float32)
	}
}
