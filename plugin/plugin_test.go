package plugin_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/odincare/dcmseries/dicom"
	"github.com/odincare/dcmseries/plugin"
	"github.com/stretchr/testify/require"
)

func pad(b []byte) []byte {
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func writeExplicit(buf *bytes.Buffer, group, element uint16, vr string, value []byte) {
	value = pad(value)
	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], group)
	buf.Write(u16[:])
	binary.LittleEndian.PutUint16(u16[:], element)
	buf.Write(u16[:])
	buf.WriteString(vr)
	if vr == "OB" {
		buf.Write([]byte{0, 0})
		var u32 [4]byte
		binary.LittleEndian.PutUint32(u32[:], uint32(len(value)))
		buf.Write(u32[:])
	} else {
		binary.LittleEndian.PutUint16(u16[:], uint16(len(value)))
		buf.Write(u16[:])
	}
	buf.Write(value)
}

func uint16LE(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func singleFrameFile(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")
	writeExplicit(&buf, 0x0002, 0x0010, "UI", []byte("1.2.840.10008.1.2.1"))
	writeExplicit(&buf, 0x0020, 0x000E, "UI", []byte("1.2.series.X"))
	writeExplicit(&buf, 0x0028, 0x0010, "US", uint16LE(2))
	writeExplicit(&buf, 0x0028, 0x0011, "US", uint16LE(2))
	writeExplicit(&buf, 0x7FE0, 0x0010, "OB", []byte{0, 1, 2, 3})
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// multiFrameFile writes a NumberOfFrames=2 single file: two 2x2 8-bit
// frames, back to back in PixelData.
func multiFrameFile(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")
	writeExplicit(&buf, 0x0002, 0x0010, "UI", []byte("1.2.840.10008.1.2.1"))
	writeExplicit(&buf, 0x0020, 0x000E, "UI", []byte("1.2.series.multiframe"))
	writeExplicit(&buf, 0x0028, 0x0008, "IS", []byte("2"))
	writeExplicit(&buf, 0x0028, 0x0010, "US", uint16LE(2))
	writeExplicit(&buf, 0x0028, 0x0011, "US", uint16LE(2))
	writeExplicit(&buf, 0x7FE0, 0x0010, "OB", []byte{0, 1, 2, 3, 4, 5, 6, 7})
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestCanReadRequiresMagicOnly(t *testing.T) {
	good := make([]byte, 132)
	copy(good[128:], []byte("DICM"))
	require.True(t, plugin.CanRead(plugin.Request{FirstBytes: good}))

	bad := make([]byte, 132)
	require.False(t, plugin.CanRead(plugin.Request{FirstBytes: bad}))

	short := make([]byte, 100)
	require.False(t, plugin.CanRead(plugin.Request{FirstBytes: short}))
}

func TestLooksLikeDICOMIsAdvisoryOnly(t *testing.T) {
	require.True(t, plugin.Request{Filename: "scan.dcm"}.LooksLikeDICOM())
	require.True(t, plugin.Request{Filename: "scan.CT"}.LooksLikeDICOM())
	require.False(t, plugin.Request{Filename: "scan.png"}.LooksLikeDICOM())
}

func TestReaderImageSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := singleFrameFile(t, dir, "a.dcm")

	rd := plugin.NewReader(plugin.Request{Filename: path, Expect: plugin.ExpectImage})
	require.NoError(t, rd.Open(nil))
	require.Equal(t, 1, rd.Length())

	data, err := rd.GetData(0, nil)
	require.NoError(t, err)
	require.NotNil(t, data)

	_, err = rd.GetData(1, nil)
	require.Error(t, err)
}

func TestReaderImageMultiFrameFile(t *testing.T) {
	dir := t.TempDir()
	path := multiFrameFile(t, dir, "multi.dcm")

	rd := plugin.NewReader(plugin.Request{Filename: path, Expect: plugin.ExpectImage})
	require.NoError(t, rd.Open(nil))
	require.Equal(t, 2, rd.Length())

	frame0, err := rd.GetData(0, nil)
	require.NoError(t, err)
	arr0, ok := frame0.(*dicom.PixelArray)
	require.True(t, ok)
	require.Equal(t, []uint8{0, 1, 2, 3}, arr0.Uint8)

	frame1, err := rd.GetData(1, nil)
	require.NoError(t, err)
	arr1, ok := frame1.(*dicom.PixelArray)
	require.True(t, ok)
	require.Equal(t, []uint8{4, 5, 6, 7}, arr1.Uint8)

	_, err = rd.GetData(2, nil)
	require.Error(t, err)

	meta0, err := rd.GetMetaData(0)
	require.NoError(t, err)
	meta1, err := rd.GetMetaData(1)
	require.NoError(t, err)
	require.Same(t, meta0, meta1)
}

func TestReaderVolumeOverMultiFrameFile(t *testing.T) {
	dir := t.TempDir()
	path := multiFrameFile(t, dir, "multi.dcm")

	rd := plugin.NewReader(plugin.Request{Filename: path, Expect: plugin.ExpectVolume})
	require.NoError(t, rd.Open(nil))
	require.Equal(t, 1, rd.Length())

	data, err := rd.GetData(0, nil)
	require.NoError(t, err)
	arr, ok := data.(*dicom.PixelArray)
	require.True(t, ok)
	require.Equal(t, 8, arr.Len())
}

func TestReaderVolumeOverDirectory(t *testing.T) {
	dir := t.TempDir()
	singleFrameFile(t, dir, "a.dcm")
	singleFrameFile(t, dir, "b.dcm")

	rd := plugin.NewReader(plugin.Request{Filename: dir, Expect: plugin.ExpectMultiVolume})
	require.NoError(t, rd.Open(nil))
	require.GreaterOrEqual(t, rd.Length(), 1)
}
