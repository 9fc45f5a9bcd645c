package driven

// ProgressReporter receives summarisation progress.
// Advance is called once per completed chunk in completion order.
// Implementations must be safe for concurrent use.
type ProgressReporter interface {
	Start(total int)
	Advance(done, total int)
	Finish()
}
