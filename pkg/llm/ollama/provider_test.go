package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qr-health-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatHistory() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a health assistant."},
		{Role: llm.RoleUser, Content: "What does elevated glucose mean?"},
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "gemma2", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   req.Model,
			Message: ollamaMessage{Role: "assistant", Content: "Elevated glucose can indicate..."},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	reply, err := p.Chat(context.Background(), chatHistory())
	require.NoError(t, err)
	assert.Equal(t, "Elevated glucose can indicate...", reply)
}

func TestChatNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	_, err := p.Chat(context.Background(), chatHistory())
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestChatEndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Nothing is listening anymore.

	p := NewOllamaProvider(srv.URL, "gemma2")
	_, err := p.Chat(context.Background(), chatHistory())
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestChatMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	_, err := p.Chat(context.Background(), chatHistory())
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestChatStream(t *testing.T) {
	// Fragments are written in deliberately awkward chunks: the line
	// terminator may arrive in a separate write from its payload.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		flusher := w.(http.Flusher)
		chunks := []string{
			`{"message":{"content":"He"}}` + "\n" + `{"message":{"con`,
			`tent":"llo"}}`,
			"\n",
			"not a json line\n",
			`{"message":{"content":" world"}}` + "\n",
			`{"done":true}` + "\n",
		}
		for _, c := range chunks {
			w.Write([]byte(c))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")

	var fragments []string
	full, err := p.ChatStream(context.Background(), chatHistory(), func(f string) error {
		fragments = append(fragments, f)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"He", "llo", " world"}, fragments)
	assert.Equal(t, "Hello world", full)
}

func TestChatStreamCallbackAbort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"He"}}` + "\n"))
		w.Write([]byte(`{"message":{"content":"llo"}}` + "\n"))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	_, err := p.ChatStream(context.Background(), chatHistory(), func(f string) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(ollamaTagsResponse{})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	assert.True(t, p.Healthy(context.Background()))
}

func TestHealthyEndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	// Must report false, never panic or error.
	assert.False(t, p.Healthy(context.Background()))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"gemma2"},{"name":"llama3"}]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma2")
	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma2", "llama3"}, models)
}
