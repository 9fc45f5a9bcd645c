package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

// mockCompletionClient implements driven.CompletionClient.
// respond decides the reply for each call; calls are recorded.
type mockCompletionClient struct {
	mu      sync.Mutex
	respond func(call int, messages []driven.ChatMessage) (string, error)
	calls   [][]driven.ChatMessage
	opts    []driven.CompletionOptions
}

func (m *mockCompletionClient) Complete(ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.opts = append(m.opts, opts)
	call := len(m.calls)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.respond(call, messages)
}

func (m *mockCompletionClient) ModelName() string { return "mock-model" }
func (m *mockCompletionClient) Close() error      { return nil }

func (m *mockCompletionClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockCompleter implements Completer directly, bypassing retries.
type mockCompleter struct {
	mu      sync.Mutex
	respond func(prompt string) domain.CompletionResult
	prompts []string
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) domain.CompletionResult {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.respond(prompt)
}

func (m *mockCompleter) ModelName() string { return "mock-model" }

func (m *mockCompleter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockPromptStore implements driven.PromptStore with tiny templates.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptSystem:     "You are a helpful assistant.",
		driven.PromptSummarise:  "Summarise: %s",
		driven.PromptSynthesise: "Summaries:\n%s\nPrevious:\n%s\nIf nothing changes reply %s",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockDocumentStore implements driven.DocumentStore in memory.
type mockDocumentStore struct {
	mu      sync.Mutex
	path    string
	content string
	exists  bool
	readErr error
	reads   int
	writes  []string
}

func (m *mockDocumentStore) Read(_ context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return domain.Snapshot{}, m.readErr
	}
	return domain.Snapshot{Path: m.path, Content: m.content, Exists: m.exists}, nil
}

func (m *mockDocumentStore) Write(_ context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, content)
	m.content = content
	m.exists = true
	return nil
}

func (m *mockDocumentStore) Path() string { return m.path }

// mockSummaryCache implements driven.SummaryCache in memory.
type mockSummaryCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	putErr  error
}

func newMockSummaryCache() *mockSummaryCache {
	return &mockSummaryCache{entries: make(map[string]string)}
}

func (m *mockSummaryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mockSummaryCache) Put(_ context.Context, key, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[key] = summary
	return nil
}

func (m *mockSummaryCache) Close() error { return nil }

// mockProgress implements driven.ProgressReporter.
type mockProgress struct {
	mu       sync.Mutex
	total    int
	advances []int
	finished bool
}

func (m *mockProgress) Start(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

func (m *mockProgress) Advance(done, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances = append(m.advances, done)
}

func (m *mockProgress) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
}

// mockRunLock implements driven.RunLock.
type mockRunLock struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newMockRunLock() *mockRunLock {
	return &mockRunLock{held: make(map[string]bool)}
}

func (m *mockRunLock) Acquire(_ context.Context, name string, _ time.Duration) (bool, error) {
	if m.held[name] {
		return false, nil
	}
	m.held[name] = true
	m.acquired = append(m.acquired, name)
	return true, nil
}

func (m *mockRunLock) Release(_ context.Context, name string) error {
	delete(m.held, name)
	m.released = append(m.released, name)
	return nil
}

// mockPublisher implements driven.Publisher.
type mockPublisher struct {
	requests []driven.PublishRequest
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, req driven.PublishRequest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.requests = append(m.requests, req)
	return "https://github.com/acme/widgets/pull/7", nil
}

// mockSource implements driven.SourceReader.
type mockSource struct {
	text string
	err  error
}

func (m *mockSource) Read(_ context.Context) (string, error) { return m.text, m.err }
func (m *mockSource) Root() string                           { return "." }

// wordTokenizer treats each space-separated word as one token.
type wordTokenizer struct {
	mu    sync.Mutex
	vocab []string
	ids   map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: make(map[string]int)}
}

func (w *wordTokenizer) Encode(text string) []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	var tokens []int
	for _, word := range strings.Fields(text) {
		id, ok := w.ids[word]
		if !ok {
			id = len(w.vocab)
			w.vocab = append(w.vocab, word)
			w.ids[word] = id
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (w *wordTokenizer) Decode(tokens []int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = w.vocab[t]
	}
	return strings.Join(words, " ")
}

func (w *wordTokenizer) Count(text string) int { return len(strings.Fields(text)) }
func (w *wordTokenizer) Encoding() string      { return "words" }

// noSleep records backoff delays without waiting.
type noSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.mu.Lock()
	n.delays = append(n.delays, d)
	n.mu.Unlock()
	return ctx.Err()
}

func testSettings() domain.LLMSettings {
	s := domain.DefaultConfig().LLM
	s.APIKey = "test"
	return s
}
