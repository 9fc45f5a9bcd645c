// Package messages defines Bubbletea message types for the TUI.
package messages

// Started is sent when summarisation begins.
type Started struct {
	Total int
}

// Advanced is sent each time a chunk summary completes.
type Advanced struct {
	Done  int
	Total int
}

// Finished is sent when summarisation ends, successfully or not.
type Finished struct{}

// LogLine carries a log message to print above the bar.
type LogLine struct {
	Text string
}
