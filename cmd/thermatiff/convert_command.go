package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"thermatiff/internal/config"
	"thermatiff/internal/convert"
	"thermatiff/internal/deps"
	"thermatiff/internal/history"
	"thermatiff/internal/logging"
	"thermatiff/internal/preflight"
	"thermatiff/internal/services"
	"thermatiff/internal/services/decoder"
	"thermatiff/internal/services/exiftool"
	"thermatiff/internal/thermal"
)

const (
	fallbackInputDir  = "./input"
	fallbackOutputDir = "./output"
)

type convertFlags struct {
	camera          string
	format          string
	noCopyEXIF      bool
	continueOnError bool
}

func (f *convertFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.camera, "type", "t", "", "Camera type ("+strings.Join(thermal.Cameras(), ", ")+"; default dji)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format ("+strings.Join(convert.Formats(), ", ")+"; default celsius)")
	cmd.Flags().BoolVar(&f.noCopyEXIF, "no-copy-exif", false, "Skip copying EXIF metadata onto outputs")
	cmd.Flags().BoolVar(&f.continueOnError, "continue-on-error", false, "Keep converting remaining files after a failure")
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert [input-dir] [output-dir]",
		Short: "Convert a directory of thermal JPEGs to TIFF rasters",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(ctx, cmd, args, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runConvert(ctx *commandContext, cmd *cobra.Command, args []string, flags *convertFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	inputDir := firstNonEmpty(argAt(args, 0), cfg.Paths.InputDir, fallbackInputDir)
	outputDir := firstNonEmpty(argAt(args, 1), cfg.Paths.OutputDir, fallbackOutputDir)

	camera, err := thermal.ParseCamera(firstNonEmpty(flags.camera, cfg.Conversion.Camera))
	if err != nil {
		return err
	}
	format, err := convert.ParseFormat(firstNonEmpty(flags.format, cfg.Conversion.Format))
	if err != nil {
		return err
	}

	copyEXIF := cfg.Conversion.CopyEXIF && !flags.noCopyEXIF
	continueOnError := cfg.Conversion.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		continueOnError = flags.continueOnError
	}

	if err := runPreflight(cfg, copyEXIF, inputDir); err != nil {
		return err
	}

	runnerOpts := []convert.RunnerOption{convert.WithLogger(logger)}
	if copyEXIF {
		exif, err := exiftool.NewCLI(deps.ResolveExifTool(cfg.Tools.ExifToolBinary, cfg.Paths.ToolsDir))
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return fmt.Errorf("exiftool not found; install it with `thermatiff tools install` or pass --no-copy-exif: %w", err)
			}
			return err
		}
		runnerOpts = append(runnerOpts, convert.WithEXIF(exif))
	}

	runner := convert.NewRunner(decoder.NewCLI(decoder.WithBinary(cfg.Tools.DecoderBinary)), runnerOpts...)

	started := time.Now()
	result, runErr := runner.Run(cmd.Context(), convert.Options{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		Camera:          camera,
		Format:          format,
		CopyEXIF:        copyEXIF,
		ContinueOnError: continueOnError,
	})
	finished := time.Now()

	if result != nil && cfg.History.Enabled {
		recordHistory(ctx, cfg.HistoryPath(), history.Run{
			ID:         uuid.NewString(),
			InputDir:   inputDir,
			OutputDir:  outputDir,
			Camera:     camera.String(),
			Format:     string(format),
			Total:      result.Total,
			Completed:  succeededFiles(result),
			Failed:     len(result.Failures()),
			Status:     runStatus(result, runErr),
			StartedAt:  started,
			FinishedAt: finished,
		}, fileRecords(result))
	}

	if result != nil {
		if failures := result.Failures(); len(failures) > 0 && runErr == nil {
			out := cmd.ErrOrStderr()
			fmt.Fprintf(out, "%d of %d files failed:\n", len(failures), result.Total)
			for _, failure := range failures {
				fmt.Fprintf(out, "  %s: %v\n", failure.Source, failure.Err)
			}
			return fmt.Errorf("%d of %d files failed to convert", len(failures), result.Total)
		}
	}
	return runErr
}

// runPreflight surfaces setup problems before any file is touched: an
// unreadable input directory or a missing required binary.
func runPreflight(cfg *config.Config, copyEXIF bool, inputDir string) error {
	if check := preflight.CheckInputDirectory("Input directory", inputDir); !check.Passed {
		return fmt.Errorf("input directory check failed: %s", check.Detail)
	}

	effective := *cfg
	effective.Conversion.CopyEXIF = copyEXIF
	for _, status := range preflight.CheckSystemDeps(&effective) {
		if !status.Available && !status.Optional {
			return fmt.Errorf("%s unavailable (%s): run `thermatiff deps` for details", status.Name, status.Detail)
		}
	}
	return nil
}

func recordHistory(ctx *commandContext, path string, run history.Run, files []history.FileRecord) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return
	}
	defer store.Close()
	if err := store.RecordRun(context.Background(), run, files); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}

func runStatus(result *convert.Result, runErr error) string {
	switch {
	case runErr != nil:
		return history.StatusFailed
	case len(result.Failures()) > 0:
		return history.StatusPartial
	default:
		return history.StatusCompleted
	}
}

// succeededFiles counts files that completed fully, including the metadata
// copy. Result.Completed tracks written rasters for the progress protocol,
// which reports a file before its metadata is copied; using the per-file
// outcomes here keeps completed+failed within the run total.
func succeededFiles(result *convert.Result) int {
	succeeded := 0
	for _, file := range result.Files {
		if file.Err == nil {
			succeeded++
		}
	}
	return succeeded
}

func fileRecords(result *convert.Result) []history.FileRecord {
	records := make([]history.FileRecord, 0, len(result.Files))
	for _, file := range result.Files {
		record := history.FileRecord{Source: file.Source, Destination: file.Destination}
		if file.Err != nil {
			record.Error = file.Err.Error()
		}
		records = append(records, record)
	}
	return records
}

func argAt(args []string, index int) string {
	if index < len(args) {
		return args[index]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
