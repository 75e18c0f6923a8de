// Package tiffio encodes single-band grayscale rasters as LZW-compressed
// TIFF files, in the two sample formats the converter emits: float32 and
// uint16. It also provides matching readers used for output verification.
//
// The writer produces one IFD and one strip per file, little-endian. It is
// deliberately not a general TIFF library; anything beyond the converter's
// fixed layout is out of scope.
package tiffio
