package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestClient_Complete(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"# FAQ"},{"type":"text","text":"\n"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "persona"},
		{Role: driven.RoleUser, Content: "question"},
	}, driven.CompletionOptions{Temperature: 0.3, TopP: 0.95})

	require.NoError(t, err)
	assert.Equal(t, "# FAQ\n", text)
	assert.Equal(t, "persona", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.Equal(t, DefaultModel, c.ModelName())
}

func TestClient_Complete_Failures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"type":"overloaded_error","message":"Overloaded"}}`))
		}))
		defer server.Close()
		c, err := NewClient(Config{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), nil, driven.CompletionOptions{})

		var apiErr *domain.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	})

	t.Run("no text blocks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"content":[]}`))
		}))
		defer server.Close()
		c, err := NewClient(Config{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), nil, driven.CompletionOptions{})

		assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	})
}
