package series

import (
	"fmt"
	"math"

	"github.com/odincare/dcmseries/dicom"
	"github.com/odincare/dcmseries/progress"
)

// splitVolumeBoundaries walks slices in sorted order tracking the previous
// pairwise z-gap. A gap exceeding 2.1x that distance starts a new bucket
// (the distance tracking resets with it); a gap exceeding 1.5x but not 2.1x
// only warns. Series without ImagePositionPatient on every slice, or with
// fewer than 2 slices, are never split.
func splitVolumeBoundaries(slices []*dicom.Dataset, sink progress.Sink) [][]*dicom.Dataset {
	if len(slices) < 2 {
		return [][]*dicom.Dataset{slices}
	}

	zs := make([]float64, len(slices))
	for i, ds := range slices {
		pos, ok := ds.ImagePositionPatient()
		if !ok {
			return [][]*dicom.Dataset{slices}
		}
		zs[i] = pos[2]
	}

	var buckets [][]*dicom.Dataset
	current := []*dicom.Dataset{slices[0]}
	var distance float64
	haveDistance := false

	for i := 1; i < len(slices); i++ {
		gap := math.Abs(zs[i] - zs[i-1])
		split := false
		if haveDistance {
			switch {
			case gap > 2.1*distance:
				buckets = append(buckets, current)
				current = nil
				haveDistance = false
				split = true
			case gap > 1.5*distance:
				sink.Write(fmt.Sprintf("series: missing slice suspected before instance index %d (gap %.3f, prior spacing %.3f)", i, gap, distance))
			}
		}
		current = append(current, slices[i])
		// A gap that triggered a split is abnormal by definition and must not
		// seed the new bucket's baseline; the new bucket's own first
		// transition seeds distance without comparison instead.
		if !split {
			distance = gap
			haveDistance = true
		}
	}
	buckets = append(buckets, current)
	return buckets
}

// finalize implements the Series finalize operation: dimension and sampling
// checks, inter-slice distance, and shape/sampling overwrite. A series whose
// first slice carries no derivable shape, or whose slices disagree on
// Rows/Columns, is dropped (returns an error the caller discards).
func finalize(uid string, bucket []*dicom.Dataset, sink progress.Sink) (*Series, error) {
	if len(bucket) == 0 {
		return nil, ErrEmptySeries
	}
	first := bucket[0]
	if first.Shape == nil {
		return nil, errNoPixelMetadata
	}
	if len(bucket) == 1 {
		return &Series{SeriesInstanceUID: uid, Slices: bucket, Shape: first.Shape, Sampling: first.Sampling}, nil
	}

	rows, _ := first.Rows()
	cols, _ := first.Columns()
	for _, ds := range bucket[1:] {
		r, _ := ds.Rows()
		c, _ := ds.Columns()
		if r != rows || c != cols {
			return nil, ErrDimensionMismatch
		}
	}

	if spacing, ok := first.PixelSpacing(); ok {
		for _, ds := range bucket[1:] {
			s, ok := ds.PixelSpacing()
			if !ok || s[0] != spacing[0] || s[1] != spacing[1] {
				sink.Write(fmt.Sprintf("series: %s: pixel spacing differs across slices", uid))
				break
			}
		}
	}

	var sum float64
	var count int
	for i := 1; i < len(bucket); i++ {
		pi, oki := bucket[i].ImagePositionPatient()
		pj, okj := bucket[i-1].ImagePositionPatient()
		if oki && okj {
			sum += math.Abs(pi[2] - pj[2])
			count++
		}
	}
	distanceMean := 1.0
	if count > 0 {
		distanceMean = sum / float64(count)
	}

	shape := append([]int{len(bucket)}, first.Shape...)
	sampling := append([]float64{distanceMean}, first.Sampling...)
	return &Series{SeriesInstanceUID: uid, Slices: bucket, Shape: shape, Sampling: sampling}, nil
}
