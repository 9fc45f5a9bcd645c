package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
// With no directory configured only the embedded defaults are used.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a thoughtful and insightful documentation assistant. Write in a warm, clear, user-friendly tone.`,

	driven.PromptSummarise: `The following is part of an application's codebase. Extract useful information **for the end-user only**.
Focus on:
- Features
- Usage instructions
- Expected behaviors
- User-visible errors or messages
- Key functionalities

Code:
%s

Please output the summary in plain text, no code, using a friendly and supportive tone.`,

	driven.PromptSynthesise: `Your role is to create a warm, user-friendly FAQ for the users of this application.
- Be concise, clear, and supportive.
- Keep answers short, like a helpful conversation.
- Avoid technical jargon. No code snippets.
- Use bullet points and headings.
- Start with a friendly introduction.
- Include a Table of Contents at the top.
- Cover common user questions: what the app does, how to use it, helpful tips, what to do if something doesn't work.
- Do not reference development processes or the repository.
- Only speak about the user experience with the app.

Here are the summaries of the codebase:
%s

Here is the previous FAQ for reference:
%s

If the previous FAQ already covers everything and should not be changed, reply with exactly: %s

Otherwise, write the full FAQ in Markdown.`,
}

// placeholders is the number of %s verbs each template must contain.
var placeholders = map[string]int{
	driven.PromptSystem:     0,
	driven.PromptSummarise:  1,
	driven.PromptSynthesise: 3,
}

// DefaultPrompt returns the embedded default for a prompt name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// An empty promptDir serves the embedded defaults only.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) *PromptStore {
	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if the file doesn't exist, has the wrong
// number of placeholders, or uses a verb other than %s and %%.
func (s *PromptStore) Load(name string) (string, error) {
	defaultPrompt, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	if s.promptDir == "" {
		return defaultPrompt, nil
	}

	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return defaultPrompt, nil
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		return defaultPrompt, nil
	}
	if got, err := countPlaceholders(prompt); err != nil {
		logger.Warn("prompt %s: %v; using built-in prompt", name, err)
		prompt = defaultPrompt
	} else if want := placeholders[name]; got != want {
		logger.Warn("prompt %s has %d %%s placeholders, expected %d; using built-in prompt", name, got, want)
		prompt = defaultPrompt
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// countPlaceholders counts the %s verbs in a template. A literal percent sign
// must be written as %%; any other verb is an error since the template is
// rendered with fmt.Sprintf.
func countPlaceholders(prompt string) (int, error) {
	n := 0
	for i := 0; i < len(prompt); i++ {
		if prompt[i] != '%' {
			continue
		}
		if i+1 == len(prompt) {
			return 0, fmt.Errorf("trailing %% at offset %d, write a literal percent as %%%%", i)
		}
		i++
		switch prompt[i] {
		case 's':
			n++
		case '%':
		default:
			return 0, fmt.Errorf("unsupported verb %%%c at offset %d, write a literal percent as %%%%", prompt[i], i-1)
		}
	}
	return n, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("%v; using built-in prompts", s.initErr)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				logger.Warn("%v; using built-in prompts", s.initErr)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		logger.Debug("create prompt README: %v", err)
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# faqgen Prompts

This directory contains the prompts faqgen sends to the model.

## Files

- ` + "`system.txt`" + ` - Persona sent as the system message with every request
- ` + "`summarise.txt`" + ` - Summarises one chunk of the codebase (one ` + "`%s`" + `: the code)
- ` + "`synthesise.txt`" + ` - Writes the FAQ (three ` + "`%s`" + `: summaries, previous FAQ, no-change reply)

## Customisation

Edit any file to customise the output. Changes take effect on the next run.
A file with the wrong number of placeholders is ignored in favour of the
built-in prompt. Write a literal percent sign as ` + "`%%`" + `.
`
	return os.WriteFile(path, []byte(content), 0600)
}
