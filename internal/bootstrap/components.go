package bootstrap

import (
	"context"
	"fmt"

	"pdfchat-be/internal/config"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/implementation"
	"pdfchat-be/pkg/embedding"
	"pdfchat-be/pkg/embedding/jina"
	"pdfchat-be/pkg/llm"
	"pdfchat-be/pkg/llm/factory"
	"pdfchat-be/pkg/pdf"
	"pdfchat-be/pkg/rag/chunker"
	"pdfchat-be/pkg/rag/ingest"
	"pdfchat-be/pkg/rag/intent"
	"pdfchat-be/pkg/rag/retrieval"
	"pdfchat-be/pkg/storage"
	"pdfchat-be/pkg/vectorindex"

	"gorm.io/gorm"
)

// Builders shared by the REST server and the pdfctl CLI.

func NewEmbeddingProvider(cfg config.AIConfig) (embedding.EmbeddingProvider, error) {
	switch cfg.EmbeddingProvider {
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini embeddings require GOOGLE_GEMINI_API_KEY")
		}
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey, cfg.EmbeddingDimensions), nil
	case "ollama":
		model := cfg.OllamaModel
		if cfg.EmbeddingModel != "" {
			model = cfg.EmbeddingModel
		}
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, model), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embeddings require OPENAI_API_KEY")
		}
		return embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
	case "jina":
		if cfg.JinaAPIKey == "" {
			return nil, fmt.Errorf("jina embeddings require JINA_API_KEY")
		}
		return jina.NewProvider(cfg.JinaAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

func NewEmbedder(cfg config.AIConfig) (*embedding.Embedder, error) {
	provider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	return embedding.NewEmbedder(provider, cfg.EmbeddingDimensions), nil
}

// NewVectorIndex returns the pgvector table or, with VECTOR_INDEX=memory,
// a process-local index. db may be nil for the memory index.
func NewVectorIndex(kind string, db *gorm.DB, dimensions int) (vectorindex.Index, error) {
	switch kind {
	case "memory":
		return vectorindex.NewMemoryIndex(dimensions), nil
	case "pgvector", "":
		if db == nil {
			return nil, fmt.Errorf("pgvector index needs a database connection")
		}
		return implementation.NewDocumentEmbeddingRepository(db, dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported vector index: %s", kind)
	}
}

func NewDocumentStore(ctx context.Context, cfg config.StorageConfig) (storage.DocumentStore, error) {
	switch cfg.Driver {
	case "local", "":
		return storage.NewLocalStore(cfg.LocalRoot, cfg.LocalBaseURL), nil
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func NewLLMProvider(cfg config.AIConfig) (llm.LLMProvider, error) {
	baseURL := cfg.LLMBaseURL
	if baseURL == "" && cfg.LLMProvider == "ollama" {
		baseURL = cfg.OllamaBaseURL
	}
	return factory.NewLLMProvider(factory.ProviderConfig{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		BaseURL:  baseURL,
		APIKey:   cfg.LLMAPIKey,
	})
}

func LLMOptions(cfg config.AIConfig) []llm.Option {
	return []llm.Option{
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithMaxTokens(cfg.LLMMaxTokens),
	}
}

func NewIntentClassifier(cfg config.AIConfig, provider llm.LLMProvider, log logger.ILogger) intent.Classifier {
	pattern := intent.NewPatternClassifier()
	if cfg.IntentClassifier == "llm" && provider != nil {
		return intent.NewLLMClassifier(provider, pattern, log)
	}
	return pattern
}

func NewIngestPipeline(
	store storage.DocumentStore,
	embedder *embedding.Embedder,
	index vectorindex.Index,
	cfg config.RAGConfig,
	log logger.ILogger,
) *ingest.Pipeline {
	return ingest.NewPipeline(
		store,
		pdf.NewTextExtractor(),
		chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		index,
		ingest.Options{
			Concurrency:       cfg.IngestConcurrency,
			RequestsPerSecond: cfg.IngestRPS,
			Burst:             cfg.IngestBurst,
		},
		log,
	)
}

func NewRetrieval(
	embedder *embedding.Embedder,
	index vectorindex.Index,
	classifier intent.Classifier,
	cfg config.RAGConfig,
	log logger.ILogger,
) *retrieval.Service {
	return retrieval.NewService(embedder, index, classifier, retrieval.Options{
		TopK:      cfg.TopK,
		Threshold: cfg.Threshold,
		Budget:    cfg.ContextBudget,
	}, log)
}
