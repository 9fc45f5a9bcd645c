package domain

// CompletionResult is the tagged outcome of a resilient completion call:
// either success with text, or terminal failure with the last cause.
type CompletionResult struct {
	// Text is the primary message content on success.
	Text string

	// Attempts is the number of attempts made.
	Attempts int

	// Cause is set on terminal failure and nil on success.
	Cause error
}

// Succeeded returns a successful result.
func Succeeded(text string, attempts int) CompletionResult {
	return CompletionResult{Text: text, Attempts: attempts}
}

// Failed returns a terminal failure wrapping the last underlying error.
func Failed(cause error, attempts int) CompletionResult {
	return CompletionResult{Attempts: attempts, Cause: cause}
}

// OK returns true on success.
func (r CompletionResult) OK() bool {
	return r.Cause == nil
}

// Err returns a *TerminalError on failure, nil on success.
func (r CompletionResult) Err() error {
	if r.Cause == nil {
		return nil
	}
	return &TerminalError{Attempts: r.Attempts, Cause: r.Cause}
}
