package progress

import (
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// Ensure reporters implement the interface.
var (
	_ driven.ProgressReporter = (*Reporter)(nil)
	_ driven.ProgressReporter = (*LogReporter)(nil)
)

// Reporter renders a bubbletea progress bar.
type Reporter struct {
	out      io.Writer
	onCancel func()
	options  []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	logs    io.Writer
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithProgramOptions passes extra options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(r *Reporter) {
		r.options = append(r.options, opts...)
	}
}

// NewReporter creates a bar reporter writing to out.
// onCancel runs if the user quits while the bar is shown.
func NewReporter(out io.Writer, onCancel func(), opts ...Option) *Reporter {
	r := &Reporter{out: out, onCancel: onCancel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the bar.
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		return
	}

	opts := append([]tea.ProgramOption{tea.WithOutput(r.out)}, r.options...)
	r.program = tea.NewProgram(NewModel(r.onCancel), opts...)
	r.done = make(chan struct{})

	program, done := r.program, r.done

	// Log lines written straight to the terminal would tear the bar.
	r.logs = logger.Output()
	logger.SetOutput(&barWriter{program: program, done: done, fallback: r.logs})

	go func() {
		defer close(done)
		if _, err := program.Run(); err != nil {
			logger.Debug("progress bar: %v", err)
		}
	}()
	program.Send(messages.Started{Total: total})
}

// Advance updates the bar.
func (r *Reporter) Advance(done, total int) {
	if p := r.current(); p != nil {
		p.Send(messages.Advanced{Done: done, Total: total})
	}
}

// Finish stops the bar and waits for the terminal to be restored.
func (r *Reporter) Finish() {
	r.mu.Lock()
	program, done, logs := r.program, r.done, r.logs
	r.program, r.logs = nil, nil
	r.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(messages.Finished{})
	<-done
	logger.SetOutput(logs)
}

func (r *Reporter) current() *tea.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program
}

// barWriter prints log output above the bar while the program runs and to
// fallback once it has exited.
type barWriter struct {
	program  *tea.Program
	done     <-chan struct{}
	fallback io.Writer
}

func (w *barWriter) Write(p []byte) (int, error) {
	select {
	case <-w.done:
		return w.fallback.Write(p)
	default:
	}
	w.program.Send(messages.LogLine{Text: strings.TrimRight(string(p), "\n")})
	return len(p), nil
}

// LogReporter writes progress through the logger.
type LogReporter struct{}

// NewLogReporter creates a logger-backed reporter.
func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

// Start logs the chunk count.
func (LogReporter) Start(total int) {
	logger.Info("Summarising %d chunks", total)
}

// Advance logs each completed chunk.
func (LogReporter) Advance(done, total int) {
	logger.Info("Summarised %d/%d chunks", done, total)
}

// Finish is a no-op.
func (LogReporter) Finish() {}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// New returns a bar reporter for interactive terminals and a log reporter
// otherwise. Passing disabled forces the log reporter.
func New(out io.Writer, disabled bool, onCancel func()) driven.ProgressReporter {
	if disabled || logger.IsQuiet() || !IsTerminal(out) {
		return NewLogReporter()
	}
	return NewReporter(out, onCancel)
}
