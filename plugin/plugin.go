// Package plugin implements the host plugin contract a generic image-I/O
// host drives: detect whether a resource is readable, open it, and expose
// it as a sequence of 2-D frames or volumes according to the host's
// declared Expect.
package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/odincare/dcmseries/dicom"
	"github.com/odincare/dcmseries/progress"
	"github.com/odincare/dcmseries/series"
)

// ByteSource is the seekable byte source a Request can hand back from
// GetFile, matching dicomio.ByteSource's read/seek subset.
type ByteSource interface {
	io.Reader
	io.Seeker
}

// Expect selects which view of the underlying Dataset/Series a Reader
// exposes through Length/GetData.
type Expect int

const (
	ExpectImage Expect = iota
	ExpectMultiImage
	ExpectVolume
	ExpectMultiVolume
)

// extensionHints are the advisory, non-authoritative filename patterns
// LooksLikeDICOM matches against. Carried over from the teacher's
// query-retrieve wildcard matcher (see DESIGN.md).
var extensionHints = compileHints([]string{"*.dcm", "*.ct", "*.mri"})

func compileHints(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, len(patterns))
	for i, p := range patterns {
		globs[i] = glob.MustCompile(p)
	}
	return globs
}

// Request carries everything the host supplies about the resource it wants
// read: a filename, the first bytes already sniffed off disk, a way to
// reopen the full resource, and the view the host expects back.
type Request struct {
	Filename   string
	FirstBytes []byte
	GetFile    func() (ByteSource, error)
	Expect     Expect
}

// LooksLikeDICOM is an advisory hint based on Filename's extension, matched
// case-insensitively. It is never consulted by CanRead, which sniffs content
// only.
func (r Request) LooksLikeDICOM() bool {
	name := strings.ToLower(r.Filename)
	for _, g := range extensionHints {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// CanRead implements the authoritative detection check: exactly
// firstbytes[128:132] == "DICM", nothing else.
func CanRead(r Request) bool {
	return len(r.FirstBytes) >= 132 && string(r.FirstBytes[128:132]) == "DICM"
}

var errIndexOutOfRange = errors.New("plugin: index out of range")

// Reader is the opened, host-facing view of a request: one Dataset (single
// file) or one directory's worth of Series, flattened according to Expect.
type Reader struct {
	request Request

	dataset     *dicom.Dataset
	seriesList  []*series.Series
	isDirectory bool
}

// NewReader constructs an unopened Reader for request. Call Open before
// Length/GetData/GetMetaData.
func NewReader(request Request) *Reader {
	return &Reader{request: request}
}

// Open parses the resource: a single Dataset if Filename names a file, or
// triggers the lazy directory scan (building the Series list) if it names a
// directory. Progress is advisory only and never influences control flow.
// Open reads Filename directly rather than calling GetFile: this Reader
// only ever serves local paths, but GetFile stays part of Request so a
// future host that hands back an in-memory or remote ByteSource has
// somewhere to plug in without changing the contract.
func (rd *Reader) Open(sink progress.Sink) error {
	if sink == nil {
		sink = progress.Noop
	}
	info, err := os.Stat(rd.request.Filename)
	if err != nil {
		return fmt.Errorf("plugin: stat %s: %w", rd.request.Filename, err)
	}
	if info.IsDir() {
		rd.isDirectory = true
		list, err := series.ScanDirectory(rd.request.Filename, series.ScanOptions{Progress: sink})
		if err != nil {
			return err
		}
		rd.seriesList = list
		return nil
	}

	ds, err := dicom.Open(rd.request.Filename)
	if err != nil {
		return err
	}
	rd.dataset = ds
	return nil
}

// Length implements the expect-dependent length table from the host plugin
// contract.
func (rd *Reader) Length() int {
	switch rd.request.Expect {
	case ExpectImage:
		return rd.nslices()
	case ExpectMultiImage:
		if n := rd.nslices(); n > 1 {
			return n
		}
		return rd.totalSlicesAcrossSeries()
	case ExpectVolume:
		if rd.dataset != nil {
			return 1
		}
		if n := rd.nslices(); n > 1 {
			return 1
		}
		return len(rd.seriesList)
	case ExpectMultiVolume:
		return len(rd.seriesList)
	}
	return 0
}

// nslices is "the current file"'s slice count: a directly-opened Dataset's
// NumFrames() (1 for an ordinary single-frame file, >1 for a multi-frame
// one), or (when opened on a directory) the slice count of its lone series,
// else 0.
func (rd *Reader) nslices() int {
	if rd.dataset != nil {
		return rd.dataset.NumFrames()
	}
	if len(rd.seriesList) == 1 {
		return len(rd.seriesList[0].Slices)
	}
	return 0
}

func (rd *Reader) totalSlicesAcrossSeries() int {
	total := 0
	for _, s := range rd.seriesList {
		total += len(s.Slices)
	}
	return total
}

// GetData returns the i-th element of the view selected by Expect: a 2-D
// frame for IMAGE/MULTI_IMAGE, a volume PixelArray for VOLUME/MULTI_VOLUME.
func (rd *Reader) GetData(i int, sink progress.Sink) (interface{}, error) {
	if sink == nil {
		sink = progress.Noop
	}
	switch rd.request.Expect {
	case ExpectImage:
		return rd.getImage(i)
	case ExpectMultiImage:
		return rd.getMultiImage(i, sink)
	case ExpectVolume:
		return rd.getVolume(i, sink)
	case ExpectMultiVolume:
		if i < 0 || i >= len(rd.seriesList) {
			return nil, errIndexOutOfRange
		}
		return rd.seriesList[i].Volume(sink)
	}
	return nil, fmt.Errorf("plugin: unknown expect %d", rd.request.Expect)
}

// getImage returns the i-th 2-D frame: the whole Dataset for an ordinary
// single-frame file or series slice, or the i-th sliced frame's PixelArray
// for a directly-opened multi-frame file.
func (rd *Reader) getImage(i int) (interface{}, error) {
	if rd.dataset != nil {
		if rd.dataset.NumFrames() > 1 {
			volume, err := rd.dataset.PixelArray()
			if err != nil {
				return nil, err
			}
			return volume.Frame(i)
		}
		if i != 0 {
			return nil, errIndexOutOfRange
		}
		return rd.dataset, nil
	}
	if len(rd.seriesList) == 1 {
		slices := rd.seriesList[0].Slices
		if i < 0 || i >= len(slices) {
			return nil, errIndexOutOfRange
		}
		return slices[i], nil
	}
	return nil, errIndexOutOfRange
}

// getMultiImage returns a single frame/slice when the current file (or its
// lone series) has more than one, else flattens every series into one
// sequence.
func (rd *Reader) getMultiImage(i int, sink progress.Sink) (interface{}, error) {
	if n := rd.nslices(); n > 1 {
		return rd.getImage(i)
	}
	idx := 0
	for _, s := range rd.seriesList {
		for _, slice := range s.Slices {
			if idx == i {
				return slice, nil
			}
			idx++
		}
	}
	return nil, errIndexOutOfRange
}

func (rd *Reader) getVolume(i int, sink progress.Sink) (*dicom.PixelArray, error) {
	if rd.dataset != nil {
		if i != 0 {
			return nil, errIndexOutOfRange
		}
		return rd.dataset.PixelArray()
	}
	if n := rd.nslices(); n > 1 {
		if i != 0 {
			return nil, errIndexOutOfRange
		}
		return rd.seriesList[0].Volume(sink)
	}
	if i < 0 || i >= len(rd.seriesList) {
		return nil, errIndexOutOfRange
	}
	return rd.seriesList[i].Volume(sink)
}

// GetMetaData returns the i-th frame's Dataset without materializing pixel
// data beyond what GetData would already have touched. A directly-opened
// multi-frame file shares one Dataset's metadata across all of its frame
// indices, since metadata is parsed eagerly regardless of how many frames
// the pixel payload is later sliced into.
func (rd *Reader) GetMetaData(i int) (*dicom.Dataset, error) {
	if rd.dataset != nil {
		if i < 0 || i >= rd.dataset.NumFrames() {
			return nil, errIndexOutOfRange
		}
		return rd.dataset, nil
	}
	if len(rd.seriesList) == 1 {
		slices := rd.seriesList[0].Slices
		if i < 0 || i >= len(slices) {
			return nil, errIndexOutOfRange
		}
		return slices[i], nil
	}
	idx := 0
	for _, s := range rd.seriesList {
		for _, slice := range s.Slices {
			if idx == i {
				return slice, nil
			}
			idx++
		}
	}
	return nil, errIndexOutOfRange
}
