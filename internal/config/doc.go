// Package config loads, normalizes, and validates the converter's TOML
// configuration. All path fields come back expanded and absolute; callers
// never see "~" values.
package config
