package series

import "github.com/odincare/dcmseries/dicom"

// newTestDataset lives in package series so split_test.go (which needs the
// unexported splitVolumeBoundaries/finalize) can build fixtures without a
// real file.
func newTestDataset(seriesUID string, instanceNumber int64, rows, cols int64, pos []float64, pixelSpacing []float64) *dicom.Dataset {
	values := map[string]dicom.Value{
		"SeriesInstanceUID": {Kind: dicom.KindString, Strings: []string{seriesUID}},
		"InstanceNumber":    {Kind: dicom.KindInt, Ints: []int64{instanceNumber}},
		"Rows":              {Kind: dicom.KindInt, Ints: []int64{rows}},
		"Columns":           {Kind: dicom.KindInt, Ints: []int64{cols}},
	}
	if pos != nil {
		values["ImagePositionPatient"] = dicom.Value{Kind: dicom.KindFloat, Floats: pos}
	}
	if pixelSpacing != nil {
		values["PixelSpacing"] = dicom.Value{Kind: dicom.KindFloat, Floats: pixelSpacing}
	}
	return &dicom.Dataset{Values: values, Shape: []int{int(rows), int(cols)}, Sampling: []float64{1.0, 1.0}}
}
