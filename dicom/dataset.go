// Package dicom implements the Dataset Reader: it drives the low-level
// element decoder across a whole DICOM stream, learns the transfer syntax
// from the file-meta header, collects the whitelisted tags into a Dataset,
// and materializes the pixel array on demand.
package dicom

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/odincare/dcmseries/dicomio"
	"github.com/odincare/dcmseries/dicomtag"
)

// Dataset is a parsed DICOM instance: the whitelisted tag values plus the
// derived shape/sampling, and either a deferred or an already-materialized
// pixel payload.
type Dataset struct {
	Values   map[string]Value
	Shape    []int
	Sampling []float64

	byteorder binary.ByteOrder
	implicit  dicomio.IsImplicitVR

	filename   string
	pixel      *pixelDescriptor
	pixelBytes []byte
}

// Open parses a DICOM file from disk. The file handle is held only for the
// duration of the parse; if pixel data was seen and the transfer syntax
// needed no deflate, the filename is retained so PixelArray can reopen it
// later instead of holding the bytes in memory.
func Open(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("dicom: open %s: %w", filename, err)
	}
	defer f.Close()
	return parse(f, filename)
}

// ReadDataSet parses a DICOM instance already held in memory. Pixel data, if
// present, is always materialized immediately: there is no file to reopen
// later.
func ReadDataSet(data []byte) (*Dataset, error) {
	return parse(bytes.NewReader(data), "")
}

func parse(src dicomio.ByteSource, filename string) (*Dataset, error) {
	dec := dicomio.NewDecoder(src, binary.LittleEndian, dicomio.ExplicitVR)
	if err := checkMagic(dec); err != nil {
		return nil, err
	}

	transferSyntaxUID, err := scanMetaHeader(dec)
	if err != nil {
		return nil, err
	}

	syntax, err := dicomio.ParseTransferSyntaxUID(transferSyntaxUID)
	if err != nil {
		return nil, err
	}

	reopenable := filename != "" && !syntax.Deflated
	if syntax.Deflated {
		remainder, err := dec.ReadRemainder()
		if err != nil {
			return nil, err
		}
		inflated, err := inflateRaw(remainder)
		if err != nil {
			return nil, err
		}
		dec = dicomio.NewDecoder(bytes.NewReader(inflated), syntax.ByteOrder, syntax.Implicit)
	} else {
		dec.PushTransferSyntax(syntax.ByteOrder, syntax.Implicit)
	}

	values := make(map[string]Value)
	var pixel *pixelDescriptor
	for {
		el, err := readRawElement(dec)
		if err != nil {
			if errors.Is(err, dicomio.ErrEndOfStream) {
				break
			}
			return nil, err
		}
		if el.Pixel != nil {
			pixel = el.Pixel
			continue
		}
		if !dicomtag.InterestingGroups[el.Tag.Group] {
			continue
		}
		info, ok := dicomtag.Find(el.Tag)
		if !ok {
			continue
		}
		byteorder, _ := dec.TransferSyntax()
		values[info.Name] = convertValue(info.VR, el.Value, byteorder)
	}

	byteorder, implicit := dec.TransferSyntax()
	ds := &Dataset{
		Values:    values,
		byteorder: byteorder,
		implicit:  implicit,
		pixel:     pixel,
	}

	if _, ok := values["Rows"]; ok {
		shape, err := deriveShape(values)
		if err != nil {
			return nil, err
		}
		ds.Shape = shape
		ds.Sampling = deriveSampling(values, len(shape))
	}

	if pixel != nil {
		if reopenable {
			ds.filename = filename
		} else {
			raw, err := materializeNow(dec, pixel)
			if err != nil {
				return nil, err
			}
			ds.pixelBytes = raw
			ds.pixel = nil
		}
	}

	return ds, nil
}

func checkMagic(dec *dicomio.Decoder) error {
	if err := dec.Seek(128); err != nil {
		return err
	}
	magic, err := dec.ReadBytes(4)
	if err != nil || string(magic) != "DICM" {
		return ErrNotADicomFile
	}
	return nil
}

// scanMetaHeader reads group-0002 elements until it sees one that isn't,
// rewinding to that element's start so the body scan picks it up under the
// negotiated transfer syntax. It does not trust the meta group-length tag.
func scanMetaHeader(dec *dicomio.Decoder) (string, error) {
	var transferSyntaxUID string
	for {
		start := dec.Tell()
		// Peek at the group alone: a body element in another transfer syntax
		// may not decode as an explicit-VR little-endian element at all.
		group, err := dec.ReadUint16()
		if err == nil {
			err = dec.Seek(start)
		}
		if err != nil {
			if errors.Is(err, dicomio.ErrEndOfStream) {
				if err := dec.Seek(start); err != nil {
					return "", err
				}
				break
			}
			return "", err
		}
		if group != 0x0002 {
			break
		}
		el, err := readRawElement(dec)
		if err != nil {
			if errors.Is(err, dicomio.ErrEndOfStream) {
				break
			}
			return "", err
		}
		if el.Tag == dicomtag.TransferSyntaxUID {
			transferSyntaxUID = strings.TrimRight(string(el.Value), "\x00")
		}
	}
	return transferSyntaxUID, nil
}

func inflateRaw(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dicom: inflate: %w", err)
	}
	return out, nil
}

func materializeNow(dec *dicomio.Decoder, p *pixelDescriptor) ([]byte, error) {
	if err := dec.Seek(p.offset); err != nil {
		return nil, err
	}
	if p.undefined {
		byteorder, _ := dec.TransferSyntax()
		return scanUndefinedLength(dec, byteorder)
	}
	return dec.ReadBytes(int(p.length))
}

func intField(values map[string]Value, name string, def int64) int64 {
	if v, ok := values[name]; ok {
		if n, ok := v.Int(); ok {
			return n
		}
	}
	return def
}

func floatFieldAt(values map[string]Value, name string, idx int, def float64) float64 {
	if v, ok := values[name]; ok {
		if f, ok := v.FloatAt(idx); ok {
			return f
		}
	}
	return def
}

// deriveShape implements the shape derivation pseudocode in the component
// design: frame count and sample count first, falling back to a plain 2-D
// frame.
func deriveShape(values map[string]Value) ([]int, error) {
	rows := int(intField(values, "Rows", 0))
	columns := int(intField(values, "Columns", 0))
	samplesPerPixel := intField(values, "SamplesPerPixel", 1)
	numberOfFrames := intField(values, "NumberOfFrames", 1)
	bitsAllocated := intField(values, "BitsAllocated", 0)

	if numberOfFrames > 1 {
		if samplesPerPixel > 1 {
			return []int{int(samplesPerPixel), int(numberOfFrames), rows, columns}, nil
		}
		return []int{int(numberOfFrames), rows, columns}, nil
	}
	if samplesPerPixel > 1 {
		if bitsAllocated != 8 {
			return nil, ErrUnsupportedPixelLayout
		}
		return []int{int(samplesPerPixel), rows, columns}, nil
	}
	return []int{rows, columns}, nil
}

func deriveSampling(values map[string]Value, shapeLen int) []float64 {
	sampling := []float64{
		floatFieldAt(values, "PixelSpacing", 0, 1.0),
		floatFieldAt(values, "PixelSpacing", 1, 1.0),
	}
	if ss, ok := values["SliceSpacing"]; ok {
		if f, ok := ss.Float(); ok {
			if f < 0 {
				f = -f
			}
			sampling = append([]float64{f}, sampling...)
		}
	}
	for len(sampling) < shapeLen {
		sampling = append([]float64{1.0}, sampling...)
	}
	return sampling
}

// rawPixelBytes returns the pixel payload, reopening the source file when
// the Dataset deferred loading instead of materializing it eagerly.
func (ds *Dataset) rawPixelBytes() ([]byte, error) {
	if ds.pixelBytes != nil {
		return ds.pixelBytes, nil
	}
	if ds.pixel == nil {
		return nil, ErrNoPixelData
	}
	f, err := os.Open(ds.filename)
	if err != nil {
		return nil, fmt.Errorf("dicom: reopen %s: %w", ds.filename, err)
	}
	defer f.Close()
	dec := dicomio.NewDecoder(f, ds.byteorder, ds.implicit)
	return materializeNow(dec, ds.pixel)
}

// --- Typed accessors for the tags the Series Builder and volume assembly
// need directly. ---

func (ds *Dataset) stringField(name string) (string, bool) {
	v, ok := ds.Values[name]
	if !ok {
		return "", false
	}
	return v.String()
}

func (ds *Dataset) intField(name string) (int64, bool) {
	v, ok := ds.Values[name]
	if !ok {
		return 0, false
	}
	return v.Int()
}

// SeriesInstanceUID returns the series identifier, if present.
func (ds *Dataset) SeriesInstanceUID() (string, bool) { return ds.stringField("SeriesInstanceUID") }

// InstanceNumber returns the slice's ordinal within its series.
func (ds *Dataset) InstanceNumber() (int64, bool) { return ds.intField("InstanceNumber") }

// ImagePositionPatient returns the 3-float slice position, if present with
// all three components.
func (ds *Dataset) ImagePositionPatient() ([]float64, bool) {
	v, ok := ds.Values["ImagePositionPatient"]
	if !ok {
		return nil, false
	}
	x, okx := v.FloatAt(0)
	y, oky := v.FloatAt(1)
	z, okz := v.FloatAt(2)
	if !okx || !oky || !okz {
		return nil, false
	}
	return []float64{x, y, z}, true
}

// PixelSpacing returns the 2-float in-plane sampling, if present.
func (ds *Dataset) PixelSpacing() ([]float64, bool) {
	v, ok := ds.Values["PixelSpacing"]
	if !ok {
		return nil, false
	}
	x, okx := v.FloatAt(0)
	y, oky := v.FloatAt(1)
	if !okx || !oky {
		return nil, false
	}
	return []float64{x, y}, true
}

// Rows returns the per-frame row count.
func (ds *Dataset) Rows() (int64, bool) { return ds.intField("Rows") }

// Columns returns the per-frame column count.
func (ds *Dataset) Columns() (int64, bool) { return ds.intField("Columns") }

// HasPixelData reports whether a PixelData element was seen (deferred or
// already materialized).
func (ds *Dataset) HasPixelData() bool { return ds.pixel != nil || ds.pixelBytes != nil }

// NumFrames returns Shape[0] whenever Shape is 3-D, and 1 otherwise
// (including a dataset with no pixel data). A 3-D Shape is [frames, rows,
// columns] for a multi-frame dataset, but [samples, rows, columns] for a
// single-frame multi-sample one, which therefore reports its sample count.
// A 4-D Shape (multi-frame and multi-sample) reports 1.
func (ds *Dataset) NumFrames() int {
	if len(ds.Shape) == 3 {
		return ds.Shape[0]
	}
	return 1
}
