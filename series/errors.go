package series

import "errors"

// ErrEmptySeries is returned by Volume on a series with no slices.
var ErrEmptySeries = errors.New("series: empty series")

// ErrDimensionMismatch is returned (internally, then swallowed by the
// builder per the finalize policy) when a series' slices disagree on
// Rows/Columns.
var ErrDimensionMismatch = errors.New("series: dimension mismatch across slices")

// errNoPixelMetadata marks a bucket whose first slice carries no derivable
// shape; such a series is dropped silently by the builder, per the
// finalize policy ("series whose finalize raises are dropped silently").
var errNoPixelMetadata = errors.New("series: no pixel metadata")
