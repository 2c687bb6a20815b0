// Package fileutil holds small filesystem helpers shared by the loader, the
// tool configuration and the CLI: path expansion and locked atomic writes.
package fileutil
