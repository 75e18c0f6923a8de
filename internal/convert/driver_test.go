package convert_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"thermatiff/internal/convert"
	"thermatiff/internal/thermal"
	"thermatiff/internal/tiffio"
)

type stubDecoder struct {
	value    float64
	failFor  map[string]error
	decoded  []string
	lastCam  thermal.Camera
	badFrame bool
}

func (d *stubDecoder) Decode(_ context.Context, path string, camera thermal.Camera) (*thermal.Frame, error) {
	d.decoded = append(d.decoded, filepath.Base(path))
	d.lastCam = camera
	if err, ok := d.failFor[filepath.Base(path)]; ok {
		return nil, err
	}
	frame, err := thermal.NewFrame(2, 2)
	if err != nil {
		return nil, err
	}
	for i := range frame.Pix {
		frame.Pix[i] = d.value
	}
	if d.badFrame {
		frame.Pix = frame.Pix[:1]
	}
	return frame, nil
}

type stubExif struct {
	calls [][2]string
	err   error
}

func (e *stubExif) CopyTags(_ context.Context, src, dest string) error {
	e.calls = append(e.calls, [2]string{src, dest})
	return e.err
}

func seedInput(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("jpeg bytes"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return dir
}

func TestRunConvertsDirectoryAndEmitsProgress(t *testing.T) {
	input := seedInput(t, "a.jpg", "b.jpg")
	output := filepath.Join(t.TempDir(), "out")
	dec := &stubDecoder{value: 100.0}
	var progress bytes.Buffer

	runner := convert.NewRunner(dec, convert.WithProgressWriter(&progress))
	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: output,
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total != 2 || result.Completed != 2 {
		t.Fatalf("unexpected result counts: %+v", result)
	}

	wantLines := []string{"Completed Files: 0/2", "Completed Files: 1/2", "Completed Files: 2/2"}
	gotLines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	if len(gotLines) != len(wantLines) {
		t.Fatalf("expected %d progress lines, got %v", len(wantLines), gotLines)
	}
	for i, want := range wantLines {
		if gotLines[i] != want {
			t.Fatalf("progress line %d: got %q want %q", i, gotLines[i], want)
		}
	}

	for _, name := range []string{"a.tiff", "b.tiff"} {
		data, err := os.ReadFile(filepath.Join(output, name))
		if err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
		w, h, pix, err := tiffio.DecodeGrayFloat32(data)
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if w != 2 || h != 2 {
			t.Fatalf("%s has dimensions %dx%d, want 2x2", name, w, h)
		}
		for i, v := range pix {
			if v != 100.0 {
				t.Fatalf("%s pixel %d: got %v, want 100", name, i, v)
			}
		}
	}
	if dec.lastCam != thermal.CameraDJI {
		t.Fatalf("decoder received camera %q", dec.lastCam)
	}
}

func TestRunCentikelvinClampsBelowAbsoluteZero(t *testing.T) {
	input := seedInput(t, "cold.jpg")
	output := filepath.Join(t.TempDir(), "out")
	dec := &stubDecoder{value: -300.0}
	var progress bytes.Buffer

	runner := convert.NewRunner(dec, convert.WithProgressWriter(&progress))
	if _, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: output,
		Camera:    thermal.CameraFLIR,
		Format:    convert.FormatCentikelvin,
	}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(output, "cold.tiff"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	_, _, pix, err := tiffio.DecodeGray16(data)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("pixel %d: got %d, want 0", i, v)
		}
	}
}

func TestRunSkipsMetadataCopierWhenDisabled(t *testing.T) {
	input := seedInput(t, "a.jpg")
	exif := &stubExif{}
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithEXIF(exif), convert.WithProgressWriter(&bytes.Buffer{}))

	if _, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
		CopyEXIF:  false,
	}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(exif.calls) != 0 {
		t.Fatalf("expected no exif invocations, got %v", exif.calls)
	}
}

func TestRunCopiesMetadataPerFile(t *testing.T) {
	input := seedInput(t, "a.jpg", "b.jpg")
	output := filepath.Join(t.TempDir(), "out")
	exif := &stubExif{}
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithEXIF(exif), convert.WithProgressWriter(&bytes.Buffer{}))

	if _, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: output,
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
		CopyEXIF:  true,
	}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(exif.calls) != 2 {
		t.Fatalf("expected 2 exif invocations, got %d", len(exif.calls))
	}
	if exif.calls[0][0] != filepath.Join(input, "a.jpg") || exif.calls[0][1] != filepath.Join(output, "a.tiff") {
		t.Fatalf("unexpected first exif call %v", exif.calls[0])
	}
}

func TestRunRecordsMetadataFailureWithoutRetractingProgress(t *testing.T) {
	input := seedInput(t, "a.jpg", "b.jpg")
	exif := &stubExif{err: errors.New("exiftool exited 1")}
	var progress bytes.Buffer
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithEXIF(exif), convert.WithProgressWriter(&progress))

	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:        input,
		OutputDir:       filepath.Join(t.TempDir(), "out"),
		Camera:          thermal.CameraDJI,
		Format:          convert.FormatCelsius,
		CopyEXIF:        true,
		ContinueOnError: true,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Completed != 2 {
		t.Fatalf("written rasters should stay counted, got %d", result.Completed)
	}
	if !strings.Contains(progress.String(), "Completed Files: 2/2") {
		t.Fatalf("progress should reach 2/2, got %q", progress.String())
	}
	if failures := result.Failures(); len(failures) != 2 {
		t.Fatalf("both metadata failures should be recorded, got %v", failures)
	}
}

func TestRunRequiresCopierWhenEXIFEnabled(t *testing.T) {
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&bytes.Buffer{}))
	_, err := runner.Run(context.Background(), convert.Options{
		InputDir:  seedInput(t, "a.jpg"),
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
		CopyEXIF:  true,
	})
	if err == nil {
		t.Fatal("expected configuration error when EXIF copy has no copier")
	}
}

func TestRunFailFastAbortsRemainingFiles(t *testing.T) {
	input := seedInput(t, "a.jpg", "b.jpg", "c.jpg")
	decodeErr := errors.New("unsupported payload")
	dec := &stubDecoder{value: 20, failFor: map[string]error{"b.jpg": decodeErr}}
	var progress bytes.Buffer

	runner := convert.NewRunner(dec, convert.WithProgressWriter(&progress))
	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if !errors.Is(err, decodeErr) {
		t.Fatalf("expected decode error to abort the run, got %v", err)
	}
	if result.Completed != 1 {
		t.Fatalf("expected 1 completed file before abort, got %d", result.Completed)
	}
	if got := len(dec.decoded); got != 2 {
		t.Fatalf("expected decoding to stop after failure, decoded %d files", got)
	}
}

func TestRunContinueOnErrorCollectsFailures(t *testing.T) {
	input := seedInput(t, "a.jpg", "b.jpg", "c.jpg")
	dec := &stubDecoder{value: 20, failFor: map[string]error{"b.jpg": errors.New("unsupported payload")}}
	var progress bytes.Buffer

	runner := convert.NewRunner(dec, convert.WithProgressWriter(&progress))
	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:        input,
		OutputDir:       filepath.Join(t.TempDir(), "out"),
		Camera:          thermal.CameraDJI,
		Format:          convert.FormatCelsius,
		ContinueOnError: true,
	})
	if err != nil {
		t.Fatalf("expected isolated failures, got run error: %v", err)
	}
	if result.Completed != 2 {
		t.Fatalf("expected 2 completed files, got %d", result.Completed)
	}
	failures := result.Failures()
	if len(failures) != 1 || filepath.Base(failures[0].Source) != "b.jpg" {
		t.Fatalf("unexpected failures %v", failures)
	}
	if !strings.Contains(progress.String(), "Completed Files: 2/3") {
		t.Fatalf("expected final progress 2/3, got %q", progress.String())
	}
}

func TestRunRejectsInvalidDecoderFrame(t *testing.T) {
	input := seedInput(t, "a.jpg")
	dec := &stubDecoder{value: 20, badFrame: true}
	runner := convert.NewRunner(dec, convert.WithProgressWriter(&bytes.Buffer{}))

	_, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err == nil {
		t.Fatal("expected error for malformed decoder frame")
	}
}

func TestRunIgnoresSubdirectories(t *testing.T) {
	input := seedInput(t, "a.jpg")
	if err := os.Mkdir(filepath.Join(input, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	var progress bytes.Buffer
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&progress))

	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected subdirectory to be skipped, total=%d", result.Total)
	}
}

func TestRunFollowsSymlinksToRegularFiles(t *testing.T) {
	input := seedInput(t, "real.jpg")
	if err := os.Symlink(filepath.Join(input, "real.jpg"), filepath.Join(input, "linked.jpg")); err != nil {
		t.Fatalf("symlink linked.jpg: %v", err)
	}
	if err := os.Mkdir(filepath.Join(input, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	if err := os.Symlink(filepath.Join(input, "nested"), filepath.Join(input, "dirlink")); err != nil {
		t.Fatalf("symlink dirlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(input, "gone.jpg"), filepath.Join(input, "dangling.jpg")); err != nil {
		t.Fatalf("symlink dangling.jpg: %v", err)
	}

	output := filepath.Join(t.TempDir(), "out")
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&bytes.Buffer{}))
	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: output,
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected the file and its symlink only, total=%d", result.Total)
	}
	for _, name := range []string{"real.tiff", "linked.tiff"} {
		if _, err := os.Stat(filepath.Join(output, name)); err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
	}
}

func TestRunEmptyInputEmitsSingleProgressLine(t *testing.T) {
	var progress bytes.Buffer
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&progress))

	result, err := runner.Run(context.Background(), convert.Options{
		InputDir:  t.TempDir(),
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected empty run, got %+v", result)
	}
	if got := strings.TrimSpace(progress.String()); got != "Completed Files: 0/0" {
		t.Fatalf("unexpected progress output %q", got)
	}
}

func TestRunFailsWhenInputMissing(t *testing.T) {
	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&bytes.Buffer{}))
	_, err := runner.Run(context.Background(), convert.Options{
		InputDir:  filepath.Join(t.TempDir(), "missing"),
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestRunRefusesLockedOutputDirectory(t *testing.T) {
	input := seedInput(t, "a.jpg")
	output := t.TempDir()

	held := flock.New(filepath.Join(output, ".thermatiff.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&bytes.Buffer{}))
	_, err = runner.Run(context.Background(), convert.Options{
		InputDir:  input,
		OutputDir: output,
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if err == nil || !strings.Contains(err.Error(), "another conversion") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	input := seedInput(t, "a.jpg", "b.jpg")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := convert.NewRunner(&stubDecoder{value: 20}, convert.WithProgressWriter(&bytes.Buffer{}))
	_, err := runner.Run(ctx, convert.Options{
		InputDir:  input,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Camera:    thermal.CameraDJI,
		Format:    convert.FormatCelsius,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestProgressLineFormat(t *testing.T) {
	line := fmt.Sprintf("%s: %d/%d", convert.ProgressMessage, 3, 7)
	if line != "Completed Files: 3/7" {
		t.Fatalf("unexpected progress line %q", line)
	}
}
