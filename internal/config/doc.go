// Package config loads, normalizes, and validates settings for the factor CLI.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FACTOR_TEMPLATES_DIR. Observation parameters never live here; they come
// from parset files handled by package parset.
package config
