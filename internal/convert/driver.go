package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"thermatiff/internal/fileutil"
	"thermatiff/internal/logging"
	"thermatiff/internal/services"
	"thermatiff/internal/services/decoder"
	"thermatiff/internal/services/exiftool"
	"thermatiff/internal/thermal"
)

// ProgressMessage prefixes the stdout lines host GUIs parse for progress.
// The full line form is "Completed Files: <completed>/<total>".
const ProgressMessage = "Completed Files"

const lockFileName = ".thermatiff.lock"

// Options describes one batch conversion run.
type Options struct {
	InputDir        string
	OutputDir       string
	Camera          thermal.Camera
	Format          Format
	CopyEXIF        bool
	ContinueOnError bool
}

// FileResult records the outcome for one source file.
type FileResult struct {
	Source      string
	Destination string
	Err         error
}

// Result summarizes a finished (or aborted) run. Completed counts files
// whose raster was written and matches the final progress numerator; a
// metadata-copy failure after the write does not retract it. Files holds
// the definitive per-file outcomes, including post-write failures.
type Result struct {
	Total     int
	Completed int
	Files     []FileResult
}

// Failures returns the per-file results that ended in an error.
func (r *Result) Failures() []FileResult {
	var failures []FileResult
	for _, file := range r.Files {
		if file.Err != nil {
			failures = append(failures, file)
		}
	}
	return failures
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEXIF supplies the metadata copier used when Options.CopyEXIF is set.
func WithEXIF(client exiftool.Client) RunnerOption {
	return func(r *Runner) {
		r.exif = client
	}
}

// WithLogger overrides the no-op default logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgressWriter redirects the progress protocol away from stdout.
func WithProgressWriter(w io.Writer) RunnerOption {
	return func(r *Runner) {
		if w != nil {
			r.progress = w
		}
	}
}

// Runner drives a batch conversion: enumerate sources, decode, write,
// optionally transplant metadata, and report progress. One file is fully
// processed before the next begins; nothing is retained across iterations.
type Runner struct {
	decoder  decoder.Client
	exif     exiftool.Client
	logger   *slog.Logger
	progress io.Writer
}

// NewRunner constructs a Runner around the given decoder.
func NewRunner(dec decoder.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		decoder:  dec,
		logger:   logging.NewNop(),
		progress: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the batch described by opts. The returned Result is valid
// even when err is non-nil and reflects the work done before the abort.
// With Options.ContinueOnError set, per-file failures are collected in the
// Result instead of aborting the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if r.decoder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "run", "no decoder configured", nil)
	}
	if opts.CopyEXIF && r.exif == nil {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "run", "EXIF copy requested but no metadata copier configured", nil)
	}
	camera, err := thermal.ParseCamera(opts.Camera.String())
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	write := imageWriters[format]

	sources, err := listSourceFiles(opts.InputDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", opts.OutputDir, err)
	}

	lock := flock.New(filepath.Join(opts.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another conversion is already writing to %s", opts.OutputDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	result := &Result{Total: len(sources)}
	r.logger.Debug("starting conversion",
		logging.String("input", opts.InputDir),
		logging.String("output", opts.OutputDir),
		logging.String("camera", camera.String()),
		logging.String("format", string(format)),
		logging.Int("files", result.Total),
	)
	r.printProgress(result)

	for _, name := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		source := filepath.Join(opts.InputDir, name)
		dest := filepath.Join(opts.OutputDir, fileutil.ReplaceExt(name, ".tiff"))
		fileErr := r.convertFile(ctx, source, dest, camera, write)
		if fileErr == nil {
			result.Completed++
			r.printProgress(result)
			if opts.CopyEXIF {
				r.logger.Info("copying exif tags", logging.String("dest", dest))
				fileErr = r.exif.CopyTags(ctx, source, dest)
			}
		}

		result.Files = append(result.Files, FileResult{Source: source, Destination: dest, Err: fileErr})
		if fileErr != nil {
			r.logger.Error("conversion failed", logging.String("source", source), logging.Error(fileErr))
			if !opts.ContinueOnError {
				return result, fmt.Errorf("convert %s: %w", source, fileErr)
			}
		}
	}

	return result, nil
}

func (r *Runner) convertFile(ctx context.Context, source, dest string, camera thermal.Camera, write writerFunc) error {
	r.logger.Info("reading file", logging.String("source", source))
	frame, err := r.decoder.Decode(ctx, source, camera)
	if err != nil {
		return err
	}
	if err := frame.Validate(); err != nil {
		return services.Wrap(services.ErrExternalTool, "decoder", "validate frame", source, err)
	}

	r.logger.Info("saving file", logging.String("dest", dest))
	if err := write(dest, frame); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func (r *Runner) printProgress(result *Result) {
	fmt.Fprintf(r.progress, "%s: %d/%d\n", ProgressMessage, result.Completed, result.Total)
}

// listSourceFiles returns the names of regular files directly under dir,
// following symlinks to regular files. No extension filtering: the decoder
// is the authority on what it can read, and an unreadable file surfaces as
// a decode error.
func listSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input directory %q does not exist", dir)
		}
		return nil, fmt.Errorf("list input directory %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			names = append(names, entry.Name())
			continue
		}
		if !mode.IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
