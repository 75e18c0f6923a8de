package convert

import (
	"fmt"
	"io"
	"math"
	"strings"

	"thermatiff/internal/fileutil"
	"thermatiff/internal/thermal"
	"thermatiff/internal/tiffio"
)

// Format selects the numeric encoding of the output raster.
type Format string

const (
	// FormatCelsius writes float32 degrees Celsius, lossless for any
	// finite temperature.
	FormatCelsius Format = "celsius"
	// FormatCentikelvin writes uint16 hundredths of a Kelvin, preserving
	// two decimal digits at the cost of saturating outside
	// [-273.15, 382.85] degrees Celsius.
	FormatCentikelvin Format = "centikelvin"
)

// Formats lists the supported output formats in CLI presentation order.
func Formats() []string {
	return []string{string(FormatCelsius), string(FormatCentikelvin)}
}

// ParseFormat validates a format name supplied via flag or config.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCelsius:
		return FormatCelsius, nil
	case FormatCentikelvin:
		return FormatCentikelvin, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected one of %s)", value, strings.Join(Formats(), ", "))
	}
}

type writerFunc func(path string, frame *thermal.Frame) error

// imageWriters dispatches a format to its writer. Extending the format set
// means adding one entry here plus a constant above.
var imageWriters = map[Format]writerFunc{
	FormatCelsius:     writeCelsiusFloat32,
	FormatCentikelvin: writeCentikelvinUint16,
}

func writeCelsiusFloat32(path string, frame *thermal.Frame) error {
	pix := make([]float32, frame.Len())
	for i, v := range frame.Pix {
		pix[i] = float32(v)
	}
	return fileutil.WriteFileAtomic(path, func(w io.Writer) error {
		return tiffio.EncodeGrayFloat32(w, frame.Width, frame.Height, pix)
	})
}

func writeCentikelvinUint16(path string, frame *thermal.Frame) error {
	pix := make([]uint16, frame.Len())
	for i, v := range frame.Pix {
		pix[i] = toCentikelvin(v)
	}
	return fileutil.WriteFileAtomic(path, func(w io.Writer) error {
		return tiffio.EncodeGray16(w, frame.Width, frame.Height, pix)
	})
}

const kelvinOffset = 273.15

// toCentikelvin converts Celsius to hundredths of a Kelvin, saturating at
// the uint16 bounds. Below absolute zero clamps to 0; above ~382.85 degrees
// Celsius clamps to 65535. Deliberate lossy saturation, not an error.
func toCentikelvin(celsius float64) uint16 {
	v := (celsius + kelvinOffset) * 100
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
