package dicom

import (
	"encoding/binary"
	"math"
)

// Dtype identifies which field of a PixelArray holds its samples.
type Dtype int

const (
	DtypeUint8 Dtype = iota
	DtypeInt8
	DtypeUint16
	DtypeInt16
	DtypeUint32
	DtypeInt32
	DtypeFloat32
)

// PixelArray is a reshaped, rescaled typed view of a Dataset's pixel
// payload. Exactly one of the sample slices is populated, selected by Dtype.
type PixelArray struct {
	Shape []int
	Dtype Dtype

	Uint8   []uint8
	Int8    []int8
	Uint16  []uint16
	Int16   []int16
	Uint32  []uint32
	Int32   []int32
	Float32 []float32
}

// Len returns the number of samples, independent of Dtype.
func (a *PixelArray) Len() int {
	switch a.Dtype {
	case DtypeUint8:
		return len(a.Uint8)
	case DtypeInt8:
		return len(a.Int8)
	case DtypeUint16:
		return len(a.Uint16)
	case DtypeInt16:
		return len(a.Int16)
	case DtypeUint32:
		return len(a.Uint32)
	case DtypeInt32:
		return len(a.Int32)
	case DtypeFloat32:
		return len(a.Float32)
	}
	return 0
}

// IntAt returns the i-th sample as an int64. Valid only when Dtype isn't
// DtypeFloat32.
func (a *PixelArray) IntAt(i int) int64 {
	switch a.Dtype {
	case DtypeUint8:
		return int64(a.Uint8[i])
	case DtypeInt8:
		return int64(a.Int8[i])
	case DtypeUint16:
		return int64(a.Uint16[i])
	case DtypeInt16:
		return int64(a.Int16[i])
	case DtypeUint32:
		return int64(a.Uint32[i])
	case DtypeInt32:
		return int64(a.Int32[i])
	}
	return 0
}

// FloatAt returns the i-th sample as a float64, regardless of Dtype.
func (a *PixelArray) FloatAt(i int) float64 {
	if a.Dtype == DtypeFloat32 {
		return float64(a.Float32[i])
	}
	return float64(a.IntAt(i))
}

// Frame returns the i-th 2-D frame of a multi-frame array (Shape =
// [frames, rows, columns]) as an independent PixelArray. It is an error to
// call Frame on an array that isn't 3-D.
func (a *PixelArray) Frame(i int) (*PixelArray, error) {
	if len(a.Shape) != 3 {
		return nil, ErrUnsupportedPixelLayout
	}
	n := a.Shape[0]
	if i < 0 || i >= n {
		return nil, ErrFrameIndexOutOfRange
	}
	frameLen := a.Len() / n
	start, end := i*frameLen, (i+1)*frameLen
	shape := append([]int(nil), a.Shape[1:]...)
	switch a.Dtype {
	case DtypeUint8:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Uint8: append([]uint8(nil), a.Uint8[start:end]...)}, nil
	case DtypeInt8:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Int8: append([]int8(nil), a.Int8[start:end]...)}, nil
	case DtypeUint16:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Uint16: append([]uint16(nil), a.Uint16[start:end]...)}, nil
	case DtypeInt16:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Int16: append([]int16(nil), a.Int16[start:end]...)}, nil
	case DtypeUint32:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Uint32: append([]uint32(nil), a.Uint32[start:end]...)}, nil
	case DtypeInt32:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Int32: append([]int32(nil), a.Int32[start:end]...)}, nil
	case DtypeFloat32:
		return &PixelArray{Shape: shape, Dtype: a.Dtype, Float32: append([]float32(nil), a.Float32[start:end]...)}, nil
	}
	return nil, ErrUnsupportedPixelLayout
}

// PixelArray materializes the dataset's pixel payload: scalar type from
// (PixelRepresentation, BitsAllocated), endian-correct decode, reshape, and
// affine rescale when RescaleSlope/RescaleIntercept are present.
func (ds *Dataset) PixelArray() (*PixelArray, error) {
	if ds.Shape == nil {
		return nil, ErrNoPixelData
	}
	raw, err := ds.rawPixelBytes()
	if err != nil {
		return nil, err
	}

	bitsAllocated := int(intField(ds.Values, "BitsAllocated", 8))
	signed := intField(ds.Values, "PixelRepresentation", 0) == 1

	arr, err := scalarArrayFromBytes(raw, bitsAllocated, signed, ds.byteorder)
	if err != nil {
		return nil, err
	}
	arr.Shape = append([]int(nil), ds.Shape...)

	slope, hasSlope := ds.Values["RescaleSlope"]
	intercept, hasIntercept := ds.Values["RescaleIntercept"]
	if hasSlope || hasIntercept {
		s := 1.0
		if hasSlope {
			if f, ok := slope.Float(); ok {
				s = f
			}
		}
		o := 0.0
		if hasIntercept {
			if f, ok := intercept.Float(); ok {
				o = f
			}
		}
		arr = rescale(arr, s, o)
	}

	return arr, nil
}

func scalarArrayFromBytes(raw []byte, bitsAllocated int, signed bool, byteorder binary.ByteOrder) (*PixelArray, error) {
	switch bitsAllocated {
	case 8:
		if signed {
			out := make([]int8, len(raw))
			for i, b := range raw {
				out[i] = int8(b)
			}
			return &PixelArray{Dtype: DtypeInt8, Int8: out}, nil
		}
		out := append([]uint8(nil), raw...)
		return &PixelArray{Dtype: DtypeUint8, Uint8: out}, nil
	case 16:
		n := len(raw) / 2
		if signed {
			out := make([]int16, n)
			for i := 0; i < n; i++ {
				out[i] = int16(byteorder.Uint16(raw[i*2:]))
			}
			return &PixelArray{Dtype: DtypeInt16, Int16: out}, nil
		}
		out := make([]uint16, n)
		for i := 0; i < n; i++ {
			out[i] = byteorder.Uint16(raw[i*2:])
		}
		return &PixelArray{Dtype: DtypeUint16, Uint16: out}, nil
	case 32:
		n := len(raw) / 4
		if signed {
			out := make([]int32, n)
			for i := 0; i < n; i++ {
				out[i] = int32(byteorder.Uint32(raw[i*4:]))
			}
			return &PixelArray{Dtype: DtypeInt32, Int32: out}, nil
		}
		out := make([]uint32, n)
		for i := 0; i < n; i++ {
			out[i] = byteorder.Uint32(raw[i*4:])
		}
		return &PixelArray{Dtype: DtypeUint32, Uint32: out}, nil
	default:
		return nil, ErrUnsupportedPixelLayout
	}
}

func arrMinMax(arr *PixelArray) (float64, float64) {
	n := arr.Len()
	if n == 0 {
		return 0, 0
	}
	minV := arr.IntAt(0)
	maxV := minV
	for i := 1; i < n; i++ {
		v := arr.IntAt(i)
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return float64(minV), float64(maxV)
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

// pickDtype chooses the smallest integer width containing [minReq, maxReq],
// falling back to float32 if even 32 bits won't do. Preserved exactly as
// observed: both branches select a *signed* dtype name, even the one
// labeled "unsigned" below, and the unsigned branch's width thresholds are
// the unsigned ones (256/65536/4294967296) despite the signed dtype choice.
// See SPEC_FULL.md's Design Notes (§11).
func pickDtype(minReq, maxReq float64) Dtype {
	if minReq < 0 {
		bound := math.Max(-minReq, maxReq)
		switch {
		case bound < 128:
			return DtypeInt8
		case bound < 32768:
			return DtypeInt16
		case bound < 2147483648:
			return DtypeInt32
		default:
			return DtypeFloat32
		}
	}
	switch {
	case maxReq < 256:
		return DtypeInt8
	case maxReq < 65536:
		return DtypeInt16
	case maxReq < 4294967296:
		return DtypeInt32
	default:
		return DtypeFloat32
	}
}

func castToFloat32(arr *PixelArray) *PixelArray {
	if arr.Dtype == DtypeFloat32 {
		return &PixelArray{Shape: arr.Shape, Dtype: DtypeFloat32, Float32: append([]float32(nil), arr.Float32...)}
	}
	n := arr.Len()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = float32(arr.IntAt(i))
	}
	return &PixelArray{Shape: arr.Shape, Dtype: DtypeFloat32, Float32: out}
}

func castToInt(arr *PixelArray, dtype Dtype) *PixelArray {
	n := arr.Len()
	switch dtype {
	case DtypeInt8:
		out := make([]int8, n)
		for i := 0; i < n; i++ {
			out[i] = int8(arr.IntAt(i))
		}
		return &PixelArray{Shape: arr.Shape, Dtype: DtypeInt8, Int8: out}
	case DtypeInt16:
		out := make([]int16, n)
		for i := 0; i < n; i++ {
			out[i] = int16(arr.IntAt(i))
		}
		return &PixelArray{Shape: arr.Shape, Dtype: DtypeInt16, Int16: out}
	case DtypeInt32:
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			out[i] = int32(arr.IntAt(i))
		}
		return &PixelArray{Shape: arr.Shape, Dtype: DtypeInt32, Int32: out}
	}
	return arr
}

func applySlopeOffset(arr *PixelArray, s, o float64) {
	switch arr.Dtype {
	case DtypeFloat32:
		for i := range arr.Float32 {
			arr.Float32[i] = float32(float64(arr.Float32[i])*s + o)
		}
	case DtypeInt8:
		si, oi := int64(s), int64(o)
		for i := range arr.Int8 {
			arr.Int8[i] = int8(int64(arr.Int8[i])*si + oi)
		}
	case DtypeInt16:
		si, oi := int64(s), int64(o)
		for i := range arr.Int16 {
			arr.Int16[i] = int16(int64(arr.Int16[i])*si + oi)
		}
	case DtypeInt32:
		si, oi := int64(s), int64(o)
		for i := range arr.Int32 {
			arr.Int32[i] = int32(int64(arr.Int32[i])*si + oi)
		}
	}
}

// rescale applies x <- x*s + o, promoting the element type per the rule in
// SPEC_FULL.md (itself preserved from the observed source, bug-for-bug: see
// pickDtype and the minReq self-reference below).
func rescale(arr *PixelArray, s, o float64) *PixelArray {
	var target *PixelArray
	switch {
	case arr.Dtype == DtypeFloat32:
		target = arr
	case s != math.Trunc(s) || o != math.Trunc(o):
		target = castToFloat32(arr)
	default:
		dataMin, dataMax := arrMinMax(arr)
		// newMin is correct; newMax's middle term reuses the already-updated
		// newMin rather than the original dataMin, which is the preserved
		// quirk (can underestimate range for negative slopes).
		newMin := min3(dataMin, dataMin*s+o, dataMax*s+o)
		newMax := max3(dataMax, newMin*s+o, dataMax*s+o)
		dtype := pickDtype(newMin, newMax)
		if dtype == DtypeFloat32 {
			target = castToFloat32(arr)
		} else {
			target = castToInt(arr, dtype)
		}
	}
	applySlopeOffset(target, s, o)
	return target
}
