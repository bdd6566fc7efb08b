package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_MapsRolesAndReturnsContent(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: "Paris"}, Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "ctx"},
		{Role: "model", Content: "earlier"},
	}, llm.WithTemperature(0), llm.WithMaxTokens(32))

	require.NoError(t, err)
	assert.Equal(t, "Paris", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, llm.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, 0.0, got.Options.Temperature)
	assert.Equal(t, 32, got.Options.NumPredict)
}

func TestChatStream_YieldsTokensInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, tok := range []string{"The ", "capital ", "is Paris."} {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":false}`+"\n", tok)
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	stream, err := NewOllamaProvider(srv.URL, "llama3").ChatStream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.NoError(t, err)
	defer stream.Close()

	var sb strings.Builder
	for {
		tok, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sb.WriteString(tok)
	}
	assert.Equal(t, "The capital is Paris.", sb.String())
	assert.NoError(t, stream.Close())
}

func TestChatStream_TruncatedStreamIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"partial"},"done":false}`)
	}))
	defer srv.Close()

	stream, err := NewOllamaProvider(srv.URL, "llama3").ChatStream(context.Background(), nil)
	require.NoError(t, err)
	defer stream.Close()

	tok, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", tok)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestChatStream_RateLimitedBeforeFirstToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").ChatStream(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRateLimited)

	var rl *apperror.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.NotErrorIs(t, err, apperror.ErrRateLimited)
}
