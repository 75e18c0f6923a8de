// Package exiftool wraps the exiftool executable for copying EXIF and
// maker-note tags from a source thermal JPEG into the converted TIFF.
// Tag semantics stay entirely inside exiftool; this package only builds
// the command line and classifies failures.
package exiftool
