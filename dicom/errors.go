package dicom

import "errors"

// ErrNotADicomFile is returned when the 128-byte preamble isn't followed by
// the "DICM" magic.
var ErrNotADicomFile = errors.New("dicom: not a DICOM file")

// ErrUnsupportedPixelLayout is returned when SamplesPerPixel > 1 with
// BitsAllocated other than 8.
var ErrUnsupportedPixelLayout = errors.New("dicom: unsupported pixel layout")

// ErrNoPixelData is returned by PixelArray on a dataset with no PixelData
// element.
var ErrNoPixelData = errors.New("dicom: no pixel data")

// ErrFrameIndexOutOfRange is returned by PixelArray.Frame for an index
// outside [0, NumFrames).
var ErrFrameIndexOutOfRange = errors.New("dicom: frame index out of range")
