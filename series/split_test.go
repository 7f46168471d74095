package series

import (
	"testing"

	"github.com/odincare/dcmseries/dicom"
	"github.com/stretchr/testify/require"
)

type capturingSink struct {
	messages []string
}

func (c *capturingSink) Start(string, string, int) {}
func (c *capturingSink) SetProgress(int)           {}
func (c *capturingSink) Write(message string)      { c.messages = append(c.messages, message) }
func (c *capturingSink) Finish(string)             {}

func TestSplitVolumeBoundariesTwoBuckets(t *testing.T) {
	// z = 0,1,2,10,11,12: spacing is 1 for the first two gaps, then jumps to
	// 8 (> 2.1*1), producing two 3-slice buckets.
	zs := []float64{0, 1, 2, 10, 11, 12}
	var slices []*dicom.Dataset
	for i, z := range zs {
		slices = append(slices, newTestDataset("uid", int64(i+1), 2, 2, []float64{0, 0, z}, nil))
	}

	sink := &capturingSink{}
	buckets := splitVolumeBoundaries(slices, sink)
	require.Len(t, buckets, 2)
	require.Len(t, buckets[0], 3)
	require.Len(t, buckets[1], 3)
	require.Empty(t, sink.messages)
}

func TestSplitVolumeBoundariesWarnsWithoutSplitting(t *testing.T) {
	// z = 0,1,2,3.6,4.6: gap sequence is 1,1,1.6,1. The third gap (1.6)
	// exceeds 1.5x the running distance (1) but not 2.1x, so it only warns
	// and keeps one bucket.
	zs := []float64{0, 1, 2, 3.6, 4.6}
	var slices []*dicom.Dataset
	for i, z := range zs {
		slices = append(slices, newTestDataset("uid", int64(i+1), 2, 2, []float64{0, 0, z}, nil))
	}

	sink := &capturingSink{}
	buckets := splitVolumeBoundaries(slices, sink)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0], 5)
	require.Len(t, sink.messages, 1)
}

func TestSplitVolumeBoundariesDoesNotSeedFromTheSplitGap(t *testing.T) {
	// Gaps: 1,1,8(split),20. If the split gap (8) seeded the new bucket's
	// baseline, 20 > 2.1*8 would split again into 3/1/1; since it does NOT
	// seed, the new bucket's first transition (20) seeds without comparison
	// and the last two slices stay together.
	zs := []float64{0, 1, 2, 10, 30}
	var slices []*dicom.Dataset
	for i, z := range zs {
		slices = append(slices, newTestDataset("uid", int64(i+1), 2, 2, []float64{0, 0, z}, nil))
	}
	sink := &capturingSink{}
	buckets := splitVolumeBoundaries(slices, sink)
	require.Len(t, buckets, 2)
	require.Len(t, buckets[0], 3)
	require.Len(t, buckets[1], 2)
}

func TestSplitVolumeBoundariesNoPositionNeverSplits(t *testing.T) {
	slices := []*dicom.Dataset{
		newTestDataset("uid", 1, 2, 2, nil, nil),
		newTestDataset("uid", 2, 2, 2, nil, nil),
		newTestDataset("uid", 3, 2, 2, nil, nil),
	}
	sink := &capturingSink{}
	buckets := splitVolumeBoundaries(slices, sink)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0], 3)
}

func TestFinalizeSingleSlice(t *testing.T) {
	ds := newTestDataset("uid", 1, 4, 5, []float64{0, 0, 0}, nil)
	s, err := finalize("uid", []*dicom.Dataset{ds}, &capturingSink{})
	require.NoError(t, err)
	require.Equal(t, []int{4, 5}, s.Shape)
}

func TestFinalizeStacksShapeAndSampling(t *testing.T) {
	bucket := []*dicom.Dataset{
		newTestDataset("uid", 1, 4, 5, []float64{0, 0, 0}, []float64{0.5, 0.5}),
		newTestDataset("uid", 2, 4, 5, []float64{0, 0, 2}, []float64{0.5, 0.5}),
		newTestDataset("uid", 3, 4, 5, []float64{0, 0, 4}, []float64{0.5, 0.5}),
	}
	s, err := finalize("uid", bucket, &capturingSink{})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4, 5}, s.Shape)
	require.InDelta(t, 2.0, s.Sampling[0], 1e-9)
	require.InDelta(t, 1.0, s.Sampling[1], 1e-9)
}

func TestFinalizeDimensionMismatch(t *testing.T) {
	bucket := []*dicom.Dataset{
		newTestDataset("uid", 1, 4, 5, []float64{0, 0, 0}, nil),
		newTestDataset("uid", 2, 8, 8, []float64{0, 0, 1}, nil),
	}
	_, err := finalize("uid", bucket, &capturingSink{})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFinalizeNoPixelMetadataDropped(t *testing.T) {
	ds := newTestDataset("uid", 1, 4, 5, nil, nil)
	ds.Shape = nil
	_, err := finalize("uid", []*dicom.Dataset{ds}, &capturingSink{})
	require.ErrorIs(t, err, errNoPixelMetadata)
}
