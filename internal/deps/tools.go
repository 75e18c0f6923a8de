package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveExifTool returns the exiftool command the converter will execute.
//
// Lookup order mirrors the installer: an explicitly configured binary wins,
// then an executable placed in the tools directory by `thermatiff tools
// install`, then plain "exiftool" resolved from PATH.
func ResolveExifTool(configured, toolsDir string) string {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		return trimmed
	}
	if dir := strings.TrimSpace(toolsDir); dir != "" {
		candidate := filepath.Join(dir, executableName("exiftool"))
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate
		}
	}
	return "exiftool"
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
