// Package logging assembles the structured slog loggers used across the
// converter. It owns the console/JSON handlers and level plumbing, and
// keeps all log output off stdout so the progress protocol stays parseable.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
