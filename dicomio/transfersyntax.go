package dicomio

import (
	"encoding/binary"
	"fmt"
)

// Transfer syntax UIDs this reader understands. Anything else is
// ErrUnsupportedTransferSyntax.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	JPEGLSLosslessLittleEndian     = "1.2.840.10008.1.2.4.70"
)

// ErrUnsupportedTransferSyntax is returned for any UID not in the table
// above.
type ErrUnsupportedTransferSyntax struct {
	UID string
}

func (e *ErrUnsupportedTransferSyntax) Error() string {
	return fmt.Sprintf("dicomio: unsupported transfer syntax %q", e.UID)
}

// Syntax is a resolved transfer syntax: byte order, VR explicitness, and
// whether the remaining stream needs deflate inflation before any further
// element is read.
type Syntax struct {
	ByteOrder binary.ByteOrder
	Implicit  IsImplicitVR
	Deflated  bool
}

// ParseTransferSyntaxUID maps a transfer syntax UID (or the empty string,
// meaning "absent", which defaults to explicit VR little endian) onto a
// Syntax. JPEGLSLosslessLittleEndian resolves to explicit VR little endian
// too: its pixel data is passed through undecoded, which needs no special
// element-level handling.
func ParseTransferSyntaxUID(uid string) (Syntax, error) {
	switch uid {
	case "", ExplicitVRLittleEndian, JPEGLSLosslessLittleEndian:
		return Syntax{ByteOrder: binary.LittleEndian, Implicit: ExplicitVR}, nil
	case ExplicitVRBigEndian:
		return Syntax{ByteOrder: binary.BigEndian, Implicit: ExplicitVR}, nil
	case ImplicitVRLittleEndian:
		return Syntax{ByteOrder: binary.LittleEndian, Implicit: ImplicitVR}, nil
	case DeflatedExplicitVRLittleEndian:
		return Syntax{ByteOrder: binary.LittleEndian, Implicit: ExplicitVR, Deflated: true}, nil
	default:
		return Syntax{}, &ErrUnsupportedTransferSyntax{UID: uid}
	}
}
