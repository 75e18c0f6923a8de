package main

import (
	"errors"
	"testing"

	"thermatiff/internal/convert"
	"thermatiff/internal/history"
	"thermatiff/internal/testsupport"
)

func TestRootRejectsUnknownCameraType(t *testing.T) {
	configPath := newTestConfigFile(t)
	_, _, err := runCLI(t, []string{"--type", "seek", t.TempDir(), t.TempDir()}, configPath)
	if err == nil {
		t.Fatal("expected error for unknown camera type")
	}
	requireContains(t, err.Error(), "seek")
}

func TestConvertSubcommandRejectsUnknownCameraType(t *testing.T) {
	configPath := newTestConfigFile(t)
	_, _, err := runCLI(t, []string{"convert", "--type", "seek", t.TempDir(), t.TempDir()}, configPath)
	if err == nil {
		t.Fatal("expected error for unknown camera type")
	}
	requireContains(t, err.Error(), "seek")
}

func TestConvertFailsPreflightWhenDecoderMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	configPath := newTestConfigFile(t)
	_, _, err := runCLI(t, []string{"convert", t.TempDir(), t.TempDir()}, configPath)
	if err == nil {
		t.Fatal("expected preflight failure for missing decoder")
	}
	requireContains(t, err.Error(), "Thermal decoder")
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	configPath := newTestConfigFile(t)
	_, _, err := runCLI(t, []string{"--format", "fahrenheit", t.TempDir(), t.TempDir()}, configPath)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	requireContains(t, err.Error(), "fahrenheit")
}

func TestRootRejectsInvalidLogLevel(t *testing.T) {
	configPath := newTestConfigFile(t)
	_, _, err := runCLI(t, []string{"--log-level", "verbose", "deps"}, configPath)
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	requireContains(t, err.Error(), "verbose")
}

func TestDepsReportsStubbedBinaries(t *testing.T) {
	configPath := newTestConfigFile(t, testsupport.WithStubbedBinaries())
	out, _, err := runCLI(t, []string{"deps"}, configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "Thermal decoder")
	requireContains(t, out, "ExifTool")
	requireContains(t, out, "ok")
}

func TestDepsFailsWhenDecoderMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	configPath := newTestConfigFile(t)
	_, _, err := runCLI(t, []string{"deps"}, configPath)
	if err == nil {
		t.Fatal("expected error when required decoder is missing")
	}
}

func TestRunStatus(t *testing.T) {
	completed := &convert.Result{Total: 2, Completed: 2}
	if got := runStatus(completed, nil); got != history.StatusCompleted {
		t.Fatalf("clean run: got %q", got)
	}

	partial := &convert.Result{
		Total:     2,
		Completed: 1,
		Files:     []convert.FileResult{{Source: "a"}, {Source: "b", Err: errors.New("decode failed")}},
	}
	if got := runStatus(partial, nil); got != history.StatusPartial {
		t.Fatalf("partial run: got %q", got)
	}
	if got := runStatus(partial, errors.New("aborted")); got != history.StatusFailed {
		t.Fatalf("failed run: got %q", got)
	}
}

func TestSucceededFilesExcludesMetadataFailures(t *testing.T) {
	// Both rasters were written (Completed=2), but one metadata copy
	// failed afterwards; the history row must not count it twice.
	result := &convert.Result{
		Total:     2,
		Completed: 2,
		Files: []convert.FileResult{
			{Source: "a.jpg", Destination: "a.tiff"},
			{Source: "b.jpg", Destination: "b.tiff", Err: errors.New("exiftool exited 1")},
		},
	}
	succeeded := succeededFiles(result)
	failed := len(result.Failures())
	if succeeded != 1 || failed != 1 {
		t.Fatalf("succeeded=%d failed=%d, want 1 and 1", succeeded, failed)
	}
	if succeeded+failed > result.Total {
		t.Fatalf("succeeded+failed=%d exceeds total %d", succeeded+failed, result.Total)
	}
}

func TestFileRecordsCarryErrorText(t *testing.T) {
	result := &convert.Result{
		Files: []convert.FileResult{
			{Source: "a.jpg", Destination: "a.tiff"},
			{Source: "b.jpg", Destination: "b.tiff", Err: errors.New("decode failed")},
		},
	}
	records := fileRecords(result)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Error != "" || records[1].Error != "decode failed" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "value", "other"); got != "value" {
		t.Fatalf("got %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("expected empty fallback, got %q", got)
	}
}
