package exiftool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"thermatiff/internal/services"
)

var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

const defaultBinary = "exiftool"

// Client defines metadata transplantation behaviour.
type Client interface {
	CopyTags(ctx context.Context, src, dest string) error
}

// CLI wraps the exiftool binary. The executable is resolved once at
// construction so a missing install fails the run before any file is
// processed.
type CLI struct {
	binary string
}

// NewCLI resolves the exiftool executable and returns a client. An empty
// binary argument falls back to PATH lookup of "exiftool".
func NewCLI(binary string) (*CLI, error) {
	name := strings.TrimSpace(binary)
	if name == "" {
		name = defaultBinary
	}
	resolved, err := lookPath(name)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "exiftool", "resolve binary", name, err)
	}
	return &CLI{binary: resolved}, nil
}

// Binary returns the resolved executable path.
func (c *CLI) Binary() string {
	return c.binary
}

// CopyTags copies all tag groups from src into dest, overwriting dest in
// place without keeping a backup. Existing destination tags win on
// conflict (-wm cg), matching exiftool's safe-merge write mode.
func (c *CLI) CopyTags(ctx context.Context, src, dest string) error {
	if strings.TrimSpace(src) == "" {
		return errors.New("source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("destination path required")
	}

	args := []string{
		"-tagsfromfile", src,
		"-wm", "cg",
		"-all:all",
		"-overwrite_original",
		dest,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "exiftool", "copy tags", detail, err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
