package factory

import (
	"fmt"

	"pdfchat-be/internal/constant"
	"pdfchat-be/pkg/llm"
	"pdfchat-be/pkg/llm/ollama"
	"pdfchat-be/pkg/llm/openai"
)

const huggingFaceRouterURL = "https://router.huggingface.co/v1"

type ProviderConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = constant.OllamaDefaultBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = constant.OllamaDefaultModel
		}
		return ollama.NewOllamaProvider(baseURL, model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "huggingface":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = huggingFaceRouterURL
		}
		return openai.NewOpenAIProvider(cfg.APIKey, baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
