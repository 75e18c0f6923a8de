// Package history persists a record of finished conversion runs in a
// local SQLite database so past batches can be inspected from the CLI.
package history
