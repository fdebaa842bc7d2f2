package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "1. Supermarkt\n"},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaProvider(srv.URL, "qwen3", 2*time.Second)
	got, err := p.Complete(context.Background(), "klassifiziere", "1. REWE, Einkauf")
	require.NoError(t, err)
	require.Equal(t, "1. Supermarkt", got)
}

func TestOllamaCompleteDaemonError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Error: "model not found"})
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaProvider(srv.URL, "missing", 2*time.Second)
	_, err := p.Complete(context.Background(), "s", "u")
	require.ErrorContains(t, err, "model not found")
}

func TestOllamaCompleteEmptyReply(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "   "}})
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaProvider(srv.URL, "m", 2*time.Second)
	_, err := p.Complete(context.Background(), "s", "u")
	require.ErrorContains(t, err, "empty response")
}
