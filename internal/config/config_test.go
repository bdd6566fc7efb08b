package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("RAG_CONFIG_FILE", "")

	cfg := Load()

	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 0.5, cfg.RAG.Threshold)
	assert.Equal(t, 3000, cfg.RAG.ContextBudget)
	assert.Equal(t, 1500, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 768, cfg.Ai.EmbeddingDimensions)
	assert.Equal(t, 200*time.Millisecond, cfg.Reconcile.CommitBaseDelay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("RAG_THRESHOLD", "0.72")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("TRANSCRIPT_COMMIT_BASE_DELAY", "1s")
	t.Setenv("CLIENT_URL", "https://app.example.com/")
	t.Setenv("MIDTRANS_FINISH_URL", "")

	cfg := Load()

	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, 0.72, cfg.RAG.Threshold)
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, time.Second, cfg.Reconcile.CommitBaseDelay)
	assert.Equal(t, "https://app.example.com/chats?payment=success", cfg.Midtrans.FinishURL)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("RAG_TOP_K", "many")
	cfg := Load()
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestRAGConfig_Overlay(t *testing.T) {
	r := RAGConfig{ChunkSize: 1500, ChunkOverlap: 200, TopK: 5, Threshold: 0.5, ContextBudget: 3000}

	require.NoError(t, r.Overlay([]byte("top_k: 10\nthreshold: 0.65\n")))

	assert.Equal(t, 10, r.TopK)
	assert.Equal(t, 0.65, r.Threshold)
	assert.Equal(t, 1500, r.ChunkSize, "absent keys keep their value")
	assert.Equal(t, 3000, r.ContextBudget)
}

func TestRAGConfig_OverlayRejectsInvalid(t *testing.T) {
	r := RAGConfig{ChunkSize: 1500, ChunkOverlap: 200, Threshold: 0.5}

	assert.Error(t, r.Overlay([]byte("chunk_overlap: 1500\n")))
	assert.Error(t, r.Overlay([]byte("threshold: 3\n")))
	assert.Error(t, r.Overlay([]byte("top_k: [1, 2\n")))
	assert.Equal(t, 200, r.ChunkOverlap, "failed overlay leaves config untouched")
}

func TestRAGConfig_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_index: memory\ncontext_budget: 1200\n"), 0o644))

	r := RAGConfig{VectorIndex: "pgvector", ChunkSize: 1500, ChunkOverlap: 200}
	require.NoError(t, r.LoadFile(path))
	assert.Equal(t, "memory", r.VectorIndex)
	assert.Equal(t, 1200, r.ContextBudget)

	assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
