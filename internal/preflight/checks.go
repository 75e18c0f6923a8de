package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"thermatiff/internal/config"
	"thermatiff/internal/deps"
)

// Result captures one preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInputDirectory verifies the input directory can be read.
func CheckInputDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config. The
// deps command and the conversion setup both use this to avoid duplicating
// the requirements list. exiftool is marked optional when EXIF copying is
// disabled by config; a convert run with copying enabled still fails fast if
// it is missing.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Thermal decoder",
			Command:     cfg.Tools.DecoderBinary,
			Description: "Required to extract radiometric data from source images",
		},
		{
			Name:        "ExifTool",
			Command:     deps.ResolveExifTool(cfg.Tools.ExifToolBinary, cfg.Paths.ToolsDir),
			Description: "Required to copy EXIF metadata onto converted rasters",
			Optional:    !cfg.Conversion.CopyEXIF,
		},
	}
	return deps.CheckBinaries(requirements)
}
