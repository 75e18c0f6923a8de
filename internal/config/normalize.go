package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeConversion()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ToolsDir) == "" {
		c.Paths.ToolsDir = defaultToolsDir
	}
	if c.Paths.ToolsDir, err = expandPath(c.Paths.ToolsDir); err != nil {
		return fmt.Errorf("paths.tools_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	c.Tools.DecoderBinary = strings.TrimSpace(c.Tools.DecoderBinary)
	if c.Tools.DecoderBinary == "" {
		c.Tools.DecoderBinary = defaultDecoderBinary
	}
	c.Tools.ExifToolBinary = strings.TrimSpace(c.Tools.ExifToolBinary)
	if strings.ContainsAny(c.Tools.ExifToolBinary, "/\\") {
		expanded, err := expandPath(c.Tools.ExifToolBinary)
		if err != nil {
			return fmt.Errorf("tools.exiftool_binary: %w", err)
		}
		c.Tools.ExifToolBinary = expanded
	}
	c.Tools.ExifToolVersion = strings.TrimSpace(c.Tools.ExifToolVersion)
	if c.Tools.ExifToolVersion == "" {
		c.Tools.ExifToolVersion = defaultExifToolVersion
	}
	c.Tools.ExifToolDownloadURL = strings.TrimSpace(c.Tools.ExifToolDownloadURL)
	if c.Tools.ExifToolDownloadURL == "" {
		c.Tools.ExifToolDownloadURL = defaultExifToolDownloadURL
	}
	if c.Tools.DownloadTimeout <= 0 {
		c.Tools.DownloadTimeout = defaultDownloadTimeout
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Camera = strings.ToLower(strings.TrimSpace(c.Conversion.Camera))
	if c.Conversion.Camera == "" {
		c.Conversion.Camera = defaultCamera
	}
	c.Conversion.Format = strings.ToLower(strings.TrimSpace(c.Conversion.Format))
	if c.Conversion.Format == "" {
		c.Conversion.Format = defaultFormat
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return nil
	}
	expanded, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
