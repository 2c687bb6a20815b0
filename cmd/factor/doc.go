// Package main hosts the factor CLI entrypoint and command graph.
//
// The Cobra-based command tree loads and inspects Factor parsets, renders
// pipeline step templates, and scaffolds the tool settings file. It
// centralizes settings resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: parset semantics live in internal/parset and
// template rendering in internal/recipe; commands here only surface them.
package main
