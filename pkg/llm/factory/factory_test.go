package factory

import (
	"testing"

	"pdfchat-be/pkg/llm/ollama"
	"pdfchat-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(ProviderConfig{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(ProviderConfig{Provider: "huggingface", Model: "meta-llama/Llama-3.1-8B-Instruct", APIKey: "hf_x"})
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIProvider{}, p)

	_, err = NewLLMProvider(ProviderConfig{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(ProviderConfig{Provider: "bard"})
	assert.ErrorContains(t, err, "unsupported LLM provider")
}
