// Package thermal defines the in-memory representation of decoded
// radiometric frames and the camera vocabulary shared by the decoder
// wrapper, the format writers, and the CLI.
package thermal
