// Package decoder wraps the external radiometric decoder binary that turns
// proprietary DJI/FLIR thermal JPEGs into per-pixel Celsius frames. The
// decoding algorithms themselves live entirely in that tool; this package
// only shells out and parses the raw frame stream it emits.
package decoder
