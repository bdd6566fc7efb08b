package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"pdfchat-be/internal/constant"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Ai        AIConfig
	RAG       RAGConfig
	Midtrans  MidtransConfig
	Quota     QuotaConfig
	Reconcile ReconcileConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type StorageConfig struct {
	Driver       string // "s3" or "local"
	LocalRoot    string
	LocalBaseURL string
	S3           S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	PublicBaseURL   string
}

type AIConfig struct {
	EmbeddingProvider   string // "gemini", "ollama", "openai" or "jina"
	EmbeddingModel      string
	EmbeddingDimensions int
	GeminiAPIKey        string
	OllamaBaseURL       string
	OllamaModel         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	JinaAPIKey          string

	LLMProvider    string // "ollama", "openai" or "huggingface"
	LLMModel       string
	LLMBaseURL     string
	LLMAPIKey      string
	LLMTemperature float64
	LLMMaxTokens   int

	IntentClassifier string // "pattern" or "llm"
}

// RAGConfig holds the retrieval and chunking knobs. These are the only
// settings a RAG_CONFIG_FILE may override.
type RAGConfig struct {
	VectorIndex       string  `yaml:"vector_index"` // "pgvector" or "memory"
	ChunkSize         int     `yaml:"chunk_size"`
	ChunkOverlap      int     `yaml:"chunk_overlap"`
	TopK              int     `yaml:"top_k"`
	Threshold         float64 `yaml:"threshold"`
	ContextBudget     int     `yaml:"context_budget"`
	MaxHistory        int     `yaml:"max_history"`
	IngestConcurrency int     `yaml:"ingest_concurrency"`
	IngestRPS         float64 `yaml:"ingest_rps"`
	IngestBurst       int     `yaml:"ingest_burst"`
}

type MidtransConfig struct {
	ServerKey    string
	IsProduction bool
	PlanSlug     string
	PlanName     string
	PlanPrice    int64
	FinishURL    string
}

type QuotaConfig struct {
	FreeDocumentLimit int
}

type ReconcileConfig struct {
	CommitAttempts  int
	CommitBaseDelay time.Duration
	MaxRedeliveries int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/ws.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", "local"),
			LocalRoot:    getEnv("STORAGE_LOCAL_ROOT", "."),
			LocalBaseURL: getEnv("STORAGE_LOCAL_BASE_URL", "http://localhost:3000"),
			S3: S3Config{
				Bucket:          getEnv("S3_BUCKET", ""),
				Region:          getEnv("S3_REGION", "us-east-1"),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			},
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			GeminiAPIKey:        getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", constant.OllamaDefaultBaseURL),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			JinaAPIKey:          getEnv("JINA_API_KEY", ""),
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:          getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:           getEnv("LLM_API_KEY", ""),
			LLMTemperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			LLMMaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 1024),
			IntentClassifier:    getEnv("INTENT_CLASSIFIER", "pattern"),
		},
		RAG: RAGConfig{
			VectorIndex:       getEnv("VECTOR_INDEX", "pgvector"),
			ChunkSize:         getEnvAsInt("RAG_CHUNK_SIZE", 1500),
			ChunkOverlap:      getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
			TopK:              getEnvAsInt("RAG_TOP_K", 5),
			Threshold:         getEnvAsFloat("RAG_THRESHOLD", 0.5),
			ContextBudget:     getEnvAsInt("RAG_CONTEXT_BUDGET", 3000),
			MaxHistory:        getEnvAsInt("RAG_MAX_HISTORY", 10),
			IngestConcurrency: getEnvAsInt("RAG_INGEST_CONCURRENCY", 4),
			IngestRPS:         getEnvAsFloat("RAG_INGEST_RPS", 10),
			IngestBurst:       getEnvAsInt("RAG_INGEST_BURST", 5),
		},
		Midtrans: MidtransConfig{
			ServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction: getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			PlanSlug:     getEnv("PLAN_SLUG", "pro-monthly"),
			PlanName:     getEnv("PLAN_NAME", "PDF Chat Pro"),
			PlanPrice:    int64(getEnvAsInt("PLAN_PRICE", 50000)),
			FinishURL:    getEnv("MIDTRANS_FINISH_URL", ""),
		},
		Quota: QuotaConfig{
			FreeDocumentLimit: getEnvAsInt("FREE_DOCUMENT_LIMIT", 3),
		},
		Reconcile: ReconcileConfig{
			CommitAttempts:  getEnvAsInt("TRANSCRIPT_COMMIT_ATTEMPTS", 3),
			CommitBaseDelay: getEnvAsDuration("TRANSCRIPT_COMMIT_BASE_DELAY", 200*time.Millisecond),
			MaxRedeliveries: getEnvAsInt("TRANSCRIPT_MAX_REDELIVERIES", 5),
		},
	}

	if cfg.Midtrans.FinishURL == "" {
		cfg.Midtrans.FinishURL = strings.TrimRight(cfg.App.ClientURL, "/") + "/chats?payment=success"
	}

	if path := getEnv("RAG_CONFIG_FILE", ""); path != "" {
		if err := cfg.RAG.LoadFile(path); err != nil {
			log.Printf("Warn: ignoring RAG_CONFIG_FILE: %v", err)
		}
	}

	return cfg
}

// LoadFile overlays the YAML at path onto r. Keys absent from the file
// keep their current value.
func (r *RAGConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.Overlay(data)
}

func (r *RAGConfig) Overlay(data []byte) error {
	next := *r
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("parse rag config: %w", err)
	}
	if next.ChunkOverlap >= next.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", next.ChunkOverlap, next.ChunkSize)
	}
	if next.Threshold < -1 || next.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [-1, 1]", next.Threshold)
	}
	*r = next
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
