package dicomtag

// whitelist is the fixed, process-wide tag dictionary. It is a pure
// constant: built once from a literal and never mutated, so there is no
// shared mutable state to guard.
var whitelist = map[Tag]TagInfo{
	{0x7FE0, 0x0010}: {Tag{0x7FE0, 0x0010}, "OB", "PixelData"},

	{0x0008, 0x0016}: {Tag{0x0008, 0x0016}, "UI", "SOPClassUID"},
	{0x0008, 0x0018}: {Tag{0x0008, 0x0018}, "UI", "SOPInstanceUID"},
	{0x0008, 0x0020}: {Tag{0x0008, 0x0020}, "DA", "StudyDate"},
	{0x0008, 0x0021}: {Tag{0x0008, 0x0021}, "DA", "SeriesDate"},
	{0x0008, 0x0022}: {Tag{0x0008, 0x0022}, "DA", "AcquisitionDate"},
	{0x0008, 0x0023}: {Tag{0x0008, 0x0023}, "DA", "ContentDate"},
	{0x0008, 0x0030}: {Tag{0x0008, 0x0030}, "TM", "StudyTime"},
	{0x0008, 0x0031}: {Tag{0x0008, 0x0031}, "TM", "SeriesTime"},
	{0x0008, 0x0032}: {Tag{0x0008, 0x0032}, "TM", "AcquisitionTime"},
	{0x0008, 0x0033}: {Tag{0x0008, 0x0033}, "TM", "ContentTime"},
	{0x0008, 0x0060}: {Tag{0x0008, 0x0060}, "CS", "Modality"},
	{0x0008, 0x0070}: {Tag{0x0008, 0x0070}, "LO", "Manufacturer"},
	{0x0008, 0x0080}: {Tag{0x0008, 0x0080}, "LO", "InstitutionName"},
	{0x0008, 0x0117}: {Tag{0x0008, 0x0117}, "UI", "ContextUID"},
	{0x0008, 0x1030}: {Tag{0x0008, 0x1030}, "LO", "StudyDescription"},
	{0x0008, 0x103E}: {Tag{0x0008, 0x103E}, "LO", "SeriesDescription"},

	{0x0010, 0x0010}: {Tag{0x0010, 0x0010}, "PN", "PatientName"},
	{0x0010, 0x0020}: {Tag{0x0010, 0x0020}, "LO", "PatientID"},
	{0x0010, 0x0030}: {Tag{0x0010, 0x0030}, "DA", "PatientBirthDate"},
	{0x0010, 0x0040}: {Tag{0x0010, 0x0040}, "CS", "PatientSex"},
	{0x0010, 0x1010}: {Tag{0x0010, 0x1010}, "AS", "PatientAge"},
	{0x0010, 0x1020}: {Tag{0x0010, 0x1020}, "DS", "PatientSize"},
	{0x0010, 0x1030}: {Tag{0x0010, 0x1030}, "DS", "PatientWeight"},

	{0x0018, 0x0088}: {Tag{0x0018, 0x0088}, "DS", "SliceSpacing"},

	{0x0020, 0x000D}: {Tag{0x0020, 0x000D}, "UI", "StudyInstanceUID"},
	{0x0020, 0x000E}: {Tag{0x0020, 0x000E}, "UI", "SeriesInstanceUID"},
	{0x0020, 0x0011}: {Tag{0x0020, 0x0011}, "IS", "SeriesNumber"},
	{0x0020, 0x0012}: {Tag{0x0020, 0x0012}, "IS", "AcquisitionNumber"},
	{0x0020, 0x0013}: {Tag{0x0020, 0x0013}, "IS", "InstanceNumber"},
	{0x0020, 0x0014}: {Tag{0x0020, 0x0014}, "IS", "IsotopeNumber"},
	{0x0020, 0x0015}: {Tag{0x0020, 0x0015}, "IS", "PhaseNumber"},
	{0x0020, 0x0016}: {Tag{0x0020, 0x0016}, "IS", "IntervalNumber"},
	{0x0020, 0x0017}: {Tag{0x0020, 0x0017}, "IS", "TimeSlotNumber"},
	{0x0020, 0x0018}: {Tag{0x0020, 0x0018}, "IS", "AngleNumber"},
	{0x0020, 0x0019}: {Tag{0x0020, 0x0019}, "IS", "ItemNumber"},
	{0x0020, 0x0020}: {Tag{0x0020, 0x0020}, "CS", "PatientOrientation"},
	{0x0020, 0x0030}: {Tag{0x0020, 0x0030}, "CS", "ImagePosition"},
	{0x0020, 0x0032}: {Tag{0x0020, 0x0032}, "CS", "ImagePositionPatient"},
	{0x0020, 0x0035}: {Tag{0x0020, 0x0035}, "CS", "ImageOrientation"},
	{0x0020, 0x0037}: {Tag{0x0020, 0x0037}, "CS", "ImageOrientationPatient"},

	{0x0028, 0x0002}: {Tag{0x0028, 0x0002}, "US", "SamplesPerPixel"},
	{0x0028, 0x0008}: {Tag{0x0028, 0x0008}, "IS", "NumberOfFrames"},
	{0x0028, 0x0010}: {Tag{0x0028, 0x0010}, "US", "Rows"},
	{0x0028, 0x0011}: {Tag{0x0028, 0x0011}, "US", "Columns"},
	{0x0028, 0x0030}: {Tag{0x0028, 0x0030}, "DS", "PixelSpacing"},
	{0x0028, 0x0052}: {Tag{0x0028, 0x0052}, "DS", "RescaleIntercept"},
	{0x0028, 0x0053}: {Tag{0x0028, 0x0053}, "DS", "RescaleSlope"},
	{0x0028, 0x0100}: {Tag{0x0028, 0x0100}, "US", "BitsAllocated"},
	{0x0028, 0x0101}: {Tag{0x0028, 0x0101}, "US", "BitsStored"},
	{0x0028, 0x0102}: {Tag{0x0028, 0x0102}, "US", "HighBit"},
	{0x0028, 0x0103}: {Tag{0x0028, 0x0103}, "US", "PixelRepresentation"},
}
