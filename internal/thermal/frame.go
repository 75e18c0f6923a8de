package thermal

import (
	"fmt"
	"strings"
)

// Camera identifies the manufacturer whose radiometric JPEG layout a source
// file uses. The decoder needs it to pick the right payload extraction.
type Camera string

const (
	CameraDJI  Camera = "dji"
	CameraFLIR Camera = "flir"
)

// Cameras lists the supported camera values in CLI presentation order.
func Cameras() []string {
	return []string{string(CameraDJI), string(CameraFLIR)}
}

// ParseCamera validates a camera name supplied via flag or config.
func ParseCamera(value string) (Camera, error) {
	switch Camera(strings.ToLower(strings.TrimSpace(value))) {
	case CameraDJI:
		return CameraDJI, nil
	case CameraFLIR:
		return CameraFLIR, nil
	default:
		return "", fmt.Errorf("unsupported camera type %q (expected one of %s)", value, strings.Join(Cameras(), ", "))
	}
}

func (c Camera) String() string {
	return string(c)
}

// Frame holds the per-pixel temperatures decoded from one source image.
// Samples are degrees Celsius in row-major order. A frame is owned by the
// conversion loop for the duration of one file and never mutated after the
// decoder returns it.
type Frame struct {
	Width  int
	Height int
	Pix    []float64
}

// NewFrame allocates a zeroed frame with the given dimensions.
func NewFrame(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}, nil
}

// At returns the temperature at pixel (x, y).
func (f *Frame) At(x, y int) float64 {
	return f.Pix[y*f.Width+x]
}

// Len returns the number of samples in the frame.
func (f *Frame) Len() int {
	return len(f.Pix)
}

// Validate checks that the sample count matches the frame dimensions.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height; len(f.Pix) != want {
		return fmt.Errorf("frame has %d samples, dimensions %dx%d require %d", len(f.Pix), f.Width, f.Height, want)
	}
	return nil
}
