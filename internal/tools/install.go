package tools

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"thermatiff/internal/config"
	"thermatiff/internal/logging"
	"thermatiff/internal/services"
)

// lookPath is swapped in tests to control PATH resolution.
var lookPath = exec.LookPath

// HTTPDoer describes the HTTP client used to fetch release tarballs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Installer downloads and unpacks ExifTool into the tools directory.
type Installer struct {
	version  string
	url      string
	toolsDir string
	client   HTTPDoer
	logger   *slog.Logger
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) InstallerOption {
	return func(i *Installer) {
		if client != nil {
			i.client = client
		}
	}
}

// WithLogger overrides the no-op default logger.
func WithLogger(logger *slog.Logger) InstallerOption {
	return func(i *Installer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInstaller builds an Installer from the tools section of cfg.
func NewInstaller(cfg *config.Config, opts ...InstallerOption) (*Installer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "tools", "new installer", "nil config", nil)
	}
	timeout := time.Duration(cfg.Tools.DownloadTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	inst := &Installer{
		version:  cfg.Tools.ExifToolVersion,
		url:      cfg.Tools.ExifToolDownloadURL,
		toolsDir: cfg.Paths.ToolsDir,
		client:   &http.Client{Timeout: timeout},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(inst)
	}
	if inst.version == "" || inst.url == "" || inst.toolsDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tools", "new installer", "exiftool version, download URL, and tools directory are required", nil)
	}
	return inst, nil
}

// InstalledPath returns the path the managed exiftool entry point lives at.
func (i *Installer) InstalledPath() string {
	return filepath.Join(i.toolsDir, "exiftool")
}

// Install fetches and unpacks ExifTool unless a usable copy already
// exists. It returns the path to the exiftool entry point. With force
// set, any existing managed copy is replaced; a system-wide exiftool on
// PATH is still preferred when not forcing.
func (i *Installer) Install(ctx context.Context, force bool) (string, error) {
	if !force {
		if path, err := lookPath("exiftool"); err == nil {
			i.logger.Info("exiftool already on PATH", logging.String("path", path))
			return path, nil
		}
		if entry := i.InstalledPath(); isExecutableFile(entry) {
			i.logger.Info("exiftool already installed", logging.String("path", entry))
			return entry, nil
		}
	}

	if err := os.MkdirAll(i.toolsDir, 0o755); err != nil {
		return "", fmt.Errorf("create tools directory: %w", err)
	}

	url := strings.ReplaceAll(i.url, "{version}", i.version)
	i.logger.Info("downloading exiftool", logging.String("version", i.version), logging.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "tools", "download exiftool", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalTool, "tools", "download exiftool",
			fmt.Sprintf("%s returned %d", url, resp.StatusCode), nil)
	}

	distDir := filepath.Join(i.toolsDir, "Image-ExifTool-"+i.version)
	if err := os.RemoveAll(distDir); err != nil {
		return "", fmt.Errorf("clear previous install: %w", err)
	}
	script, err := extractTarball(resp.Body, i.toolsDir)
	if err != nil {
		return "", err
	}
	if script == "" {
		return "", services.Wrap(services.ErrExternalTool, "tools", "install exiftool", "tarball contained no exiftool script", nil)
	}
	if err := os.Chmod(script, 0o755); err != nil {
		return "", fmt.Errorf("mark exiftool executable: %w", err)
	}

	entry := i.InstalledPath()
	if err := os.Remove(entry); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("replace exiftool link: %w", err)
	}
	rel, err := filepath.Rel(i.toolsDir, script)
	if err != nil {
		rel = script
	}
	if err := os.Symlink(rel, entry); err != nil {
		return "", fmt.Errorf("link exiftool entry point: %w", err)
	}

	i.logger.Info("exiftool installed", logging.String("path", entry))
	return entry, nil
}

// extractTarball unpacks a gzipped tar stream under destDir and returns
// the path of the exiftool script it contained. Entries that would
// escape destDir are rejected.
func extractTarball(r io.Reader, destDir string) (string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("read gzip stream: %w", err)
	}
	defer gz.Close()

	var script string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar entry: %w", err)
		}

		name := filepath.Clean(header.Name)
		if name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return "", fmt.Errorf("tar entry %q escapes destination", header.Name)
		}
		target := filepath.Join(destDir, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("create directory %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", fmt.Errorf("create directory for %s: %w", name, err)
			}
			if err := writeTarFile(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return "", fmt.Errorf("extract %s: %w", name, err)
			}
			if filepath.Base(name) == "exiftool" {
				script = target
			}
		default:
			// Symlinks and other entry types are not expected in the
			// upstream tarball and are skipped.
		}
	}
	return script, nil
}

func writeTarFile(target string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
