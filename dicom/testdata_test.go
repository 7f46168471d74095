package dicom_test

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
)

// longVR mirrors the explicit-VR long form (2-byte reserved pad, 4-byte
// length) used by OB/OW/SQ/UN.
var longVR = map[string]bool{"OB": true, "OW": true, "SQ": true, "UN": true}

func pad(b []byte) []byte {
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func writeExplicit(buf *bytes.Buffer, order binary.ByteOrder, group, element uint16, vr string, value []byte) {
	value = pad(value)
	var u16 [2]byte
	order.PutUint16(u16[:], group)
	buf.Write(u16[:])
	order.PutUint16(u16[:], element)
	buf.Write(u16[:])
	buf.WriteString(vr)
	if longVR[vr] {
		buf.Write([]byte{0, 0})
		var u32 [4]byte
		order.PutUint32(u32[:], uint32(len(value)))
		buf.Write(u32[:])
	} else {
		order.PutUint16(u16[:], uint16(len(value)))
		buf.Write(u16[:])
	}
	buf.Write(value)
}

func writeImplicit(buf *bytes.Buffer, order binary.ByteOrder, group, element uint16, value []byte) {
	value = pad(value)
	var u16 [2]byte
	order.PutUint16(u16[:], group)
	buf.Write(u16[:])
	order.PutUint16(u16[:], element)
	buf.Write(u16[:])
	var u32 [4]byte
	order.PutUint32(u32[:], uint32(len(value)))
	buf.Write(u32[:])
	buf.Write(value)
}

func uint16LE(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func uint16BE(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// metaHeader builds the 128-byte preamble, "DICM" magic, and a minimal
// file-meta group carrying only TransferSyntaxUID, always explicit VR
// little endian as the format requires.
func metaHeader(transferSyntaxUID string) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")
	writeExplicit(&buf, binary.LittleEndian, 0x0002, 0x0010, "UI", []byte(transferSyntaxUID))
	return buf.Bytes()
}

// explicitBody builds the body used by end-to-end scenario 1: a 2x3 8-bit
// unsigned frame.
func explicitBody(order binary.ByteOrder, pixels []byte) []byte {
	var buf bytes.Buffer
	writeExplicit(&buf, order, 0x0028, 0x0010, "US", uint16ForOrder(order, 2))
	writeExplicit(&buf, order, 0x0028, 0x0011, "US", uint16ForOrder(order, 3))
	writeExplicit(&buf, order, 0x7FE0, 0x0010, "OB", pixels)
	return buf.Bytes()
}

func uint16ForOrder(order binary.ByteOrder, v uint16) []byte {
	if order == binary.BigEndian {
		return uint16BE(v)
	}
	return uint16LE(v)
}

func implicitBody(pixels []byte) []byte {
	var buf bytes.Buffer
	writeImplicit(&buf, binary.LittleEndian, 0x0028, 0x0010, uint16LE(2))
	writeImplicit(&buf, binary.LittleEndian, 0x0028, 0x0011, uint16LE(3))
	writeImplicit(&buf, binary.LittleEndian, 0x7FE0, 0x0010, pixels)
	return buf.Bytes()
}

func deflateRaw(data []byte) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(data); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
