package dicom

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/odincare/dcmseries/dicomio"
	"github.com/stretchr/testify/require"
)

// TestScanUndefinedLengthProperty covers the testable property from §8:
// given V ++ needle ++ 0x00000000 ++ tail, the scanner returns exactly V and
// leaves the cursor at the start of tail.
func TestScanUndefinedLengthProperty(t *testing.T) {
	v := []byte("a value that does not contain the delimiter bytes")
	tail := []byte("trailing data after the delimiter")

	var buf bytes.Buffer
	buf.Write(v)
	buf.Write([]byte{0xFE, 0xFF, 0xDD, 0xE0}) // (0xFFFE,0xE0DD) little endian
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(tail)

	dec := dicomio.NewDecoder(bytes.NewReader(buf.Bytes()), binary.LittleEndian, dicomio.ExplicitVR)
	got, err := scanUndefinedLength(dec, binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, v, got)

	rest, err := dec.ReadBytes(len(tail))
	require.NoError(t, err)
	require.Equal(t, tail, rest)
}

func TestScanUndefinedLengthExhausted(t *testing.T) {
	dec := dicomio.NewDecoder(bytes.NewReader([]byte("no delimiter here")), binary.LittleEndian, dicomio.ExplicitVR)
	_, err := scanUndefinedLength(dec, binary.LittleEndian)
	require.ErrorIs(t, err, dicomio.ErrEndOfStream)
}
