package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"thermatiff/internal/services"
	"thermatiff/internal/thermal"
)

var commandContext = exec.CommandContext

const defaultBinary = "thermal-decoder"

// Frames larger than this are rejected as corrupt decoder output rather
// than allocated. 64 megapixels is far beyond any thermal sensor.
const maxFramePixels = 64 << 20

// Client defines radiometric decoding behaviour. Implementations return a
// frame of Celsius samples for one source image.
type Client interface {
	Decode(ctx context.Context, path string, camera thermal.Camera) (*thermal.Frame, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default decoder binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the external radiometric decoder. The tool receives the source
// path and camera tag and emits the frame on stdout: a uint32 width, a
// uint32 height, then width*height float32 Celsius samples, all
// little-endian.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: defaultBinary}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the resolved decoder command.
func (c *CLI) Binary() string {
	return c.binary
}

// Decode runs the decoder for one source image and parses its output.
func (c *CLI) Decode(ctx context.Context, path string, camera thermal.Camera) (*thermal.Frame, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("source path required")
	}
	if _, err := thermal.ParseCamera(camera.String()); err != nil {
		return nil, err
	}

	args := []string{"decode", "--camera", camera.String(), "--raw-output", "-", path}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, services.Wrap(services.ErrExternalTool, "decoder", "decode", detail, err)
	}

	frame, err := parseFrame(stdout.Bytes())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "decoder", "parse output", path, err)
	}
	return frame, nil
}

func parseFrame(payload []byte) (*thermal.Frame, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("short decoder output (%d bytes)", len(payload))
	}
	width := binary.LittleEndian.Uint32(payload)
	height := binary.LittleEndian.Uint32(payload[4:])
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("decoder reported empty frame %dx%d", width, height)
	}
	pixels := uint64(width) * uint64(height)
	if pixels > maxFramePixels {
		return nil, fmt.Errorf("decoder reported implausible frame %dx%d", width, height)
	}
	want := 8 + pixels*4
	if uint64(len(payload)) != want {
		return nil, fmt.Errorf("decoder output has %d bytes, %dx%d frame requires %d", len(payload), width, height, want)
	}

	frame, err := thermal.NewFrame(int(width), int(height))
	if err != nil {
		return nil, err
	}
	data := payload[8:]
	for i := range frame.Pix {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		frame.Pix[i] = float64(math.Float32frombits(bits))
	}
	return frame, nil
}

var _ Client = (*CLI)(nil)
