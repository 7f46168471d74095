// Package dicomio provides the low-level, endian-aware binary decoder used
// to walk a DICOM byte stream, plus the transfer-syntax table that maps a
// transfer syntax UID onto a decoding mode.
package dicomio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ErrEndOfStream is returned when a read runs past the end of the source.
// The meta-header scan and the body scan both treat it as the end of their
// element stream; a read of pixel bytes or an undefined-length value that
// runs out surfaces it.
var ErrEndOfStream = errors.New("dicomio: end of stream")

// ErrBadTag is returned when explicit-VR bytes are not ASCII letters.
var ErrBadTag = errors.New("dicomio: malformed VR bytes")

// ByteSource is the seekable byte source the decoder reads from: a file, an
// in-memory buffer, or an inflated byte slice wrapped in bytes.Reader.
type ByteSource interface {
	io.Reader
	io.Seeker
}

// IsImplicitVR selects whether a 2-byte VR code precedes each element's
// length, or the VR is recovered from the tag dictionary instead.
type IsImplicitVR bool

const (
	ImplicitVR IsImplicitVR = true
	ExplicitVR IsImplicitVR = false
)

type transferSyntaxState struct {
	byteorder binary.ByteOrder
	implicit  IsImplicitVR
}

// Decoder decodes the low-level DICOM binary primitives (fixed-width
// integers, fixed-length byte runs, and ASCII/UTF-8 strings) from a
// ByteSource under a current transfer syntax.
type Decoder struct {
	src ByteSource
	pos int64

	byteorder binary.ByteOrder
	implicit  IsImplicitVR

	savedSyntax []transferSyntaxState
}

// NewDecoder creates a Decoder reading from src, starting in the given
// transfer syntax mode.
func NewDecoder(src ByteSource, byteorder binary.ByteOrder, implicit IsImplicitVR) *Decoder {
	return &Decoder{src: src, byteorder: byteorder, implicit: implicit}
}

// TransferSyntax returns the decoder's current byte order and VR
// explicitness.
func (d *Decoder) TransferSyntax() (binary.ByteOrder, IsImplicitVR) {
	return d.byteorder, d.implicit
}

// PushTransferSyntax temporarily switches decoding mode; PopTransferSyntax
// restores whatever was active before the matching push.
func (d *Decoder) PushTransferSyntax(byteorder binary.ByteOrder, implicit IsImplicitVR) {
	d.savedSyntax = append(d.savedSyntax, transferSyntaxState{d.byteorder, d.implicit})
	d.byteorder = byteorder
	d.implicit = implicit
}

// PopTransferSyntax undoes the most recent PushTransferSyntax.
func (d *Decoder) PopTransferSyntax() {
	last := len(d.savedSyntax) - 1
	d.byteorder = d.savedSyntax[last].byteorder
	d.implicit = d.savedSyntax[last].implicit
	d.savedSyntax = d.savedSyntax[:last]
}

// Tell returns the current absolute offset into the source.
func (d *Decoder) Tell() int64 { return d.pos }

// Seek moves to an absolute offset in the source.
func (d *Decoder) Seek(offset int64) error {
	n, err := d.src.Seek(offset, io.SeekStart)
	if err != nil {
		return fmt.Errorf("dicomio: seek to %d: %w", offset, err)
	}
	d.pos = n
	return nil
}

// Rewind moves back n bytes from the current offset.
func (d *Decoder) Rewind(n int64) error {
	return d.Seek(d.pos - n)
}

func wrapShortRead(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrEndOfStream
	}
	return err
}

func (d *Decoder) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(d.src, buf)
	d.pos += int64(read)
	if err != nil {
		return nil, wrapShortRead(err)
	}
	return buf, nil
}

// ReadBytes reads exactly n raw bytes.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return d.readFull(n)
}

// ReadUint16 reads one 16-bit unsigned integer in the current endianness.
func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.readFull(2)
	if err != nil {
		return 0, err
	}
	return d.byteorder.Uint16(b), nil
}

// ReadUint32 reads one 32-bit unsigned integer in the current endianness.
func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.readFull(4)
	if err != nil {
		return 0, err
	}
	return d.byteorder.Uint32(b), nil
}

// ReadString reads n bytes and returns them as-is (DICOM's "string" VRs are
// 7-bit ASCII or UTF-8, both of which are valid Go strings byte-for-byte).
func (d *Decoder) ReadString(n int) (string, error) {
	b, err := d.readFull(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the source by n bytes without returning them.
func (d *Decoder) Skip(n int) error {
	if n == 0 {
		return nil
	}
	_, err := d.readFull(n)
	return err
}

// ReadUpTo reads between 1 and n bytes, returning fewer than n only when the
// source runs out first. It is used by the undefined-length scanner, whose
// final window is often shorter than the nominal window size.
func (d *Decoder) ReadUpTo(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(d.src, buf)
	d.pos += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if read == 0 {
				return nil, ErrEndOfStream
			}
			return buf[:read], nil
		}
		return nil, err
	}
	return buf[:read], nil
}

// ReadRemainder reads every byte left in the source. Used once, to hand the
// rest of a deflated stream to the inflater.
func (d *Decoder) ReadRemainder() ([]byte, error) {
	data, err := io.ReadAll(d.src)
	if err != nil {
		return nil, fmt.Errorf("dicomio: read remainder: %w", err)
	}
	d.pos += int64(len(data))
	return data, nil
}

// DoAssert panics with the given values if condition is false. Used for
// invariants that indicate a bug in this package rather than malformed
// input.
func DoAssert(condition bool, values ...interface{}) {
	if !condition {
		logrus.Panic(fmt.Sprint(values...))
	}
}
