// Package convert implements the batch conversion core: the per-format
// raster writers and the driver that walks an input directory, feeds each
// file through the external decoder, and emits the parseable progress
// protocol on stdout.
package convert
