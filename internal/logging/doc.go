// Package logging assembles the structured slog loggers used by the factor
// CLI and its packages.
//
// It owns the console and JSON handlers, routes output to stderr (and an
// optional JSON log file), applies per-component level overrides, and defines
// the standard field keys. NewNop gives tests and library callers a logger
// that cannot fail.
package logging
