package config

import (
	"fmt"
	"sort"
	"strings"
)

var (
	validCameras = map[string]struct{}{"dji": {}, "flir": {}}
	validFormats = map[string]struct{}{"celsius": {}, "centikelvin": {}}
	validLevels  = map[string]struct{}{"debug": {}, "info": {}, "warning": {}, "warn": {}, "error": {}, "critical": {}, "fatal": {}}
	validLogFmts = map[string]struct{}{"console": {}, "json": {}}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	if _, ok := validCameras[c.Conversion.Camera]; !ok {
		return fmt.Errorf("conversion.camera must be one of %s, got %q", keysOf(validCameras), c.Conversion.Camera)
	}
	if _, ok := validFormats[c.Conversion.Format]; !ok {
		return fmt.Errorf("conversion.format must be one of %s, got %q", keysOf(validFormats), c.Conversion.Format)
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.DecoderBinary) == "" {
		return fmt.Errorf("tools.decoder_binary must be set")
	}
	if c.Tools.DownloadTimeout <= 0 {
		return fmt.Errorf("tools.download_timeout must be positive, got %d", c.Tools.DownloadTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLogFmts[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format must be one of %s, got %q", keysOf(validLogFmts), c.Logging.Format)
	}
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level must be one of %s, got %q", keysOf(validLevels), c.Logging.Level)
	}
	return nil
}

func keysOf(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
