package domain

import "time"

// RunReport summarises one pipeline run.
type RunReport struct {
	// RunID identifies the run in logs and publish branches.
	RunID string

	// SourceTokens is the token count of the aggregated source tree.
	SourceTokens int

	// Chunks is the number of chunks summarised.
	Chunks int

	// CachedSummaries is the number of chunks served from the summary cache.
	CachedSummaries int

	// Result is the change detector's outcome.
	Result ChangeResult

	// PublishURL is the pull request URL when the run was published.
	PublishURL string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Changed returns true if the document was created or overwritten.
func (r *RunReport) Changed() bool {
	return r != nil && r.Result.Changed()
}
