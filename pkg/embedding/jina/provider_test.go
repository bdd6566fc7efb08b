package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfchat-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SendsTaskAndDimensions(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	p := NewProvider("key", "", 3).WithBaseURL(srv.URL)
	resp, err := p.Generate(context.Background(), "hello", embedding.TaskRetrievalQuery)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, resp.Embedding.Values)
	assert.Equal(t, defaultModel, got.Model)
	assert.Equal(t, "retrieval.query", got.Task)
	assert.Equal(t, 3, got.Dimensions)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewProvider("key", "", 0).WithBaseURL(srv.URL).Generate(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
