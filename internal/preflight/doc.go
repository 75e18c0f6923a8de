// Package preflight verifies that the environment can sustain a conversion
// run before any file is touched: external binaries resolvable, directories
// readable and writable.
package preflight
