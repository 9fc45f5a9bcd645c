// Package tui renders run progress in the terminal.
//
// The progress subpackage implements driven.ProgressReporter twice: a
// bubbletea progress bar for interactive terminals and a logger-backed
// reporter for pipes, CI logs and --no-progress.
package tui
