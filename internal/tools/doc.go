// Package tools installs optional external helpers into the managed
// tools directory. Currently that is ExifTool, fetched as the upstream
// tarball and unpacked so the conversion pipeline can find it without a
// system-wide install.
package tools
