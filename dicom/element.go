package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/odincare/dcmseries/dicomio"
	"github.com/odincare/dcmseries/dicomtag"
	"github.com/sirupsen/logrus"
)

const undefinedLength uint32 = 0xFFFFFFFF

// scanWindowSize is the chunk size used by the undefined-length delimiter
// search. 128 comfortably covers any synthetic value used in tests and any
// realistic whitelisted-tag value; pixel data with undefined length (the
// encapsulated/compressed case) is the only payload likely to span many
// windows, and that case is out of scope (see Non-goals: compressed
// transfer syntaxes other than Deflated Explicit VR Little Endian).
const scanWindowSize = 128

// longVRs read a 2-byte reserved pad and a 32-bit length in explicit VR
// mode; every other VR reads a 16-bit length directly.
var longVRs = map[string]bool{
	"OB": true,
	"OW": true,
	"SQ": true,
	"UN": true,
}

// pixelDescriptor records where a deferred PixelData value lives, without
// reading its bytes.
type pixelDescriptor struct {
	offset    int64
	length    uint32
	undefined bool
}

// rawElement is the result of decoding a single element: its tag, VR, and
// either its raw value bytes or (for PixelData) a deferred descriptor.
type rawElement struct {
	Tag   dicomtag.Tag
	VR    string
	Pixel *pixelDescriptor
	Value []byte
}

func isASCIIAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// readRawElement implements the Element Decoder's read_element operation.
func readRawElement(dec *dicomio.Decoder) (rawElement, error) {
	group, err := dec.ReadUint16()
	if err != nil {
		return rawElement{}, err
	}
	element, err := dec.ReadUint16()
	if err != nil {
		return rawElement{}, err
	}
	tag := dicomtag.Tag{Group: group, Element: element}

	byteorder, implicit := dec.TransferSyntax()

	var vr string
	var length uint32
	if implicit == dicomio.ImplicitVR {
		if info, ok := dicomtag.Find(tag); ok {
			vr = info.VR
		} else {
			vr = "UN"
		}
		length, err = dec.ReadUint32()
		if err != nil {
			return rawElement{}, err
		}
	} else {
		vrBytes, err := dec.ReadBytes(2)
		if err != nil {
			return rawElement{}, err
		}
		if !isASCIIAlpha(vrBytes[0]) || !isASCIIAlpha(vrBytes[1]) {
			return rawElement{}, dicomio.ErrBadTag
		}
		vr = string(vrBytes)
		if longVRs[vr] {
			if err := dec.Skip(2); err != nil {
				return rawElement{}, err
			}
			length, err = dec.ReadUint32()
			if err != nil {
				return rawElement{}, err
			}
		} else {
			l16, err := dec.ReadUint16()
			if err != nil {
				return rawElement{}, err
			}
			length = uint32(l16)
		}
	}

	if tag == dicomtag.PixelData {
		offset := dec.Tell()
		if length == undefinedLength {
			raw, err := scanUndefinedLength(dec, byteorder)
			if err != nil {
				return rawElement{}, err
			}
			return rawElement{Tag: tag, VR: vr, Pixel: &pixelDescriptor{offset: offset, length: uint32(len(raw))}}, nil
		}
		if err := dec.Skip(int(length)); err != nil {
			return rawElement{}, err
		}
		return rawElement{Tag: tag, VR: vr, Pixel: &pixelDescriptor{offset: offset, length: length}}, nil
	}

	if length == undefinedLength {
		raw, err := scanUndefinedLength(dec, byteorder)
		if err != nil {
			return rawElement{}, err
		}
		return rawElement{Tag: tag, VR: vr, Value: raw}, nil
	}
	raw, err := dec.ReadBytes(int(length))
	if err != nil {
		return rawElement{}, err
	}
	return rawElement{Tag: tag, VR: vr, Value: raw}, nil
}

// scanUndefinedLength implements the windowed Sequence Delimiter search: read
// fixed-size windows, and on a miss keep everything but the last 3 bytes
// (preserving a needle that may straddle the window boundary) and rewind by
// exactly 3 before continuing. A miss in a short window means the source is
// exhausted, which is ErrEndOfStream.
func scanUndefinedLength(dec *dicomio.Decoder, byteorder binary.ByteOrder) ([]byte, error) {
	needle := make([]byte, 4)
	byteorder.PutUint16(needle[0:2], dicomtag.SequenceDelimitationItem.Group)
	byteorder.PutUint16(needle[2:4], dicomtag.SequenceDelimitationItem.Element)

	var acc []byte
	for {
		window, err := dec.ReadUpTo(scanWindowSize)
		if err != nil {
			if errors.Is(err, dicomio.ErrEndOfStream) {
				return nil, dicomio.ErrEndOfStream
			}
			return nil, err
		}

		if idx := bytes.Index(window, needle); idx >= 0 {
			dicomio.DoAssert(idx+4 <= len(window), "dicom: sequence delimiter match exceeds window", idx, len(window))
			acc = append(acc, window[:idx]...)
			if err := dec.Rewind(int64(len(window) - (idx + 4))); err != nil {
				return nil, err
			}
			trailer, err := dec.ReadBytes(4)
			if err != nil {
				return nil, err
			}
			for _, b := range trailer {
				if b != 0 {
					logrus.Warnf("dicom: non-zero bytes after sequence delimiter at offset %d", dec.Tell()-4)
					break
				}
			}
			return acc, nil
		}
		if len(window) < scanWindowSize {
			return nil, dicomio.ErrEndOfStream
		}

		keep := len(window) - 3
		if keep < 0 {
			keep = 0
		}
		acc = append(acc, window[:keep]...)
		if err := dec.Rewind(3); err != nil {
			return nil, err
		}
	}
}
