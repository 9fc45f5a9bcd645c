package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// fakeGitHub is a minimal GitHub REST API for one repository.
type fakeGitHub struct {
	mu            sync.Mutex
	existingFile  bool
	branchExists  bool
	prExists      bool
	createdRefs   []map[string]string
	puts          []map[string]any
	pulls         []map[string]any
	baseNotFound  bool
	contentsCalls int
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /repos/acme/widgets/git/ref/heads/main", func(w http.ResponseWriter, _ *http.Request) {
		if f.baseNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ref":    "refs/heads/main",
			"object": map[string]string{"sha": "base123", "type": "commit"},
		})
	})

	mux.HandleFunc("POST /repos/acme/widgets/git/refs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.createdRefs = append(f.createdRefs, body)
		exists := f.branchExists
		f.mu.Unlock()
		if exists {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Reference already exists"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ref": body["ref"], "object": map[string]string{"sha": body["sha"]}})
	})

	mux.HandleFunc("GET /repos/acme/widgets/contents/FAQ.md", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.contentsCalls++
		f.mu.Unlock()
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("ref"), "faqgen/update-"))
		if !f.existingFile {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"type": "file", "name": "FAQ.md", "path": "FAQ.md", "sha": "blob1",
			"encoding": "base64", "content": base64.StdEncoding.EncodeToString([]byte("old")),
		})
	})

	mux.HandleFunc("PUT /repos/acme/widgets/contents/FAQ.md", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.puts = append(f.puts, body)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"commit": map[string]string{"sha": "commit1"}})
	})

	mux.HandleFunc("POST /repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.pulls = append(f.pulls, body)
		exists := f.prExists
		f.mu.Unlock()
		if exists {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "A pull request already exists"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"number": 7, "html_url": "https://github.com/acme/widgets/pull/7"})
	})

	mux.HandleFunc("GET /repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("head"), "acme:faqgen/update-"))
		writeJSON(w, http.StatusOK, []map[string]any{{"number": 3, "html_url": "https://github.com/acme/widgets/pull/3"}})
	})

	return mux
}

func newTestPublisher(t *testing.T, fake *fakeGitHub) *Publisher {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, err := NewClientWithHTTPClient(srv.Client(),
		WithBaseURL(srv.URL),
		WithRateLimiter(NewRateLimiter(WithProactiveRate(rate.Inf, 1))),
	)
	require.NoError(t, err)

	return NewPublisherWithClient(client, domain.PublishSettings{
		Owner:      "acme",
		Repo:       "widgets",
		BaseBranch: "main",
	})
}

func TestPublisher_ImplementsInterface(t *testing.T) {
	var _ driven.Publisher = (*Publisher)(nil)
}

func TestPublisher_BranchName(t *testing.T) {
	p := NewPublisherWithClient(nil, domain.PublishSettings{Owner: "acme", Repo: "widgets"})

	assert.Equal(t, "faqgen/update-1b4e28ba", p.BranchName("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.Equal(t, "faqgen/update-abc", p.BranchName("abc"))
}

func TestPublisher_Publish_Create(t *testing.T) {
	fake := &fakeGitHub{}
	p := newTestPublisher(t, fake)

	url, err := p.Publish(context.Background(), driven.PublishRequest{
		RunID:    "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		Path:     "FAQ.md",
		Content:  "# FAQ\n",
		Decision: domain.DecisionCreate,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/widgets/pull/7", url)

	require.Len(t, fake.createdRefs, 1)
	assert.Equal(t, "refs/heads/faqgen/update-1b4e28ba", fake.createdRefs[0]["ref"])
	assert.Equal(t, "base123", fake.createdRefs[0]["sha"])

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "docs: add FAQ.md", put["message"])
	assert.Equal(t, "faqgen/update-1b4e28ba", put["branch"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("# FAQ\n")), put["content"])
	assert.NotContains(t, put, "sha")

	require.Len(t, fake.pulls, 1)
	assert.Equal(t, "main", fake.pulls[0]["base"])
	assert.Equal(t, "faqgen/update-1b4e28ba", fake.pulls[0]["head"])
	assert.Equal(t, "docs: add FAQ.md", fake.pulls[0]["title"])
}

func TestPublisher_Publish_Overwrite(t *testing.T) {
	fake := &fakeGitHub{existingFile: true}
	p := newTestPublisher(t, fake)

	_, err := p.Publish(context.Background(), driven.PublishRequest{
		RunID:    "run-0001",
		Path:     "FAQ.md",
		Content:  "# New\n",
		Decision: domain.DecisionOverwrite,
		Diff:     "--- Old FAQ.md\n+++ New FAQ.md\n@@ -1 +1 @@\n-old\n+# New\n",
	})

	require.NoError(t, err)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "blob1", fake.puts[0]["sha"])
	assert.Equal(t, "docs: update FAQ.md", fake.puts[0]["message"])

	body, _ := fake.pulls[0]["body"].(string)
	assert.Contains(t, body, "run-0001")
	assert.Contains(t, body, "```diff\n--- Old FAQ.md")
}

func TestPublisher_Publish_ReusesBranchAndPullRequest(t *testing.T) {
	fake := &fakeGitHub{branchExists: true, prExists: true}
	p := newTestPublisher(t, fake)

	url, err := p.Publish(context.Background(), driven.PublishRequest{
		RunID:    "run-0001",
		Path:     "FAQ.md",
		Content:  "# FAQ\n",
		Decision: domain.DecisionCreate,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/widgets/pull/3", url)
	assert.Len(t, fake.puts, 1)
}

func TestPublisher_Publish_BaseBranchMissing(t *testing.T) {
	fake := &fakeGitHub{baseNotFound: true}
	p := newTestPublisher(t, fake)

	_, err := p.Publish(context.Background(), driven.PublishRequest{
		RunID:    "run-0001",
		Path:     "FAQ.md",
		Content:  "# FAQ\n",
		Decision: domain.DecisionCreate,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBranchNotFound)
	assert.Empty(t, fake.createdRefs)
}

func TestPublisher_Publish_SkipDecision(t *testing.T) {
	fake := &fakeGitHub{}
	p := newTestPublisher(t, fake)

	_, err := p.Publish(context.Background(), driven.PublishRequest{
		RunID:    "run-0001",
		Path:     "FAQ.md",
		Decision: domain.DecisionSkipIdentical,
	})

	require.Error(t, err)
	assert.Zero(t, fake.contentsCalls)
}

func TestNewPublisher_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewPublisher(ctx, domain.PublishSettings{Owner: "acme", Repo: "widgets"})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = NewPublisher(ctx, domain.PublishSettings{Token: "t"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	p, err := NewPublisher(ctx, domain.PublishSettings{Owner: "acme", Repo: "widgets", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "main", p.baseBranch)
	assert.Equal(t, "faqgen/update", p.branchPrefix)
}

func TestPullRequestBody_TruncatesDiff(t *testing.T) {
	body := pullRequestBody(driven.PublishRequest{
		RunID: "r",
		Diff:  strings.Repeat("+x\n", maxDiffInBody),
	})

	assert.Contains(t, body, "(truncated)")
	assert.Less(t, len(body), maxDiffInBody+200)
}
