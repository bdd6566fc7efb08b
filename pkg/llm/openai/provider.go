package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// OpenAIProvider talks to the chat completions API. Any OpenAI-compatible
// endpoint (Hugging Face router, vLLM, LM Studio) works through BaseURL.
type OpenAIProvider struct {
	client    *goopenai.Client
	ModelName string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, modelName string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = retryAfterDoer{next: cfg.HTTPClient}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &OpenAIProvider{
		client:    goopenai.NewClientWithConfig(cfg),
		ModelName: modelName,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	ctx, hint := withRetryHint(ctx)
	resp, err := p.client.CreateChatCompletion(ctx, p.request(history, false, opts))
	if err != nil {
		return "", mapError(err, hint)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	ctx, hint := withRetryHint(ctx)
	stream, err := p.client.CreateChatCompletionStream(ctx, p.request(history, true, opts))
	if err != nil {
		return nil, mapError(err, hint)
	}
	return &chatStream{stream: stream}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (p *OpenAIProvider) request(history []llm.Message, stream bool, opts []llm.Option) goopenai.ChatCompletionRequest {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7}, opts...)

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]goopenai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages[i] = goopenai.ChatCompletionMessage{Role: role, Content: msg.Content}
	}

	return goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		Stream:      stream,
	}
}

func mapError(err error, hint *retryHint) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &apperror.RateLimitError{RetryAfter: hint.after, Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &apperror.RateLimitError{RetryAfter: hint.after, Err: err}
	}
	return fmt.Errorf("openai chat: %w", err)
}

// go-openai drops response headers on errors, so the transport copies
// Retry-After into a hint that travels with the request context.
type retryHintKey struct{}

type retryHint struct {
	after time.Duration
}

func withRetryHint(ctx context.Context) (context.Context, *retryHint) {
	hint := &retryHint{}
	return context.WithValue(ctx, retryHintKey{}, hint), hint
}

type retryAfterDoer struct {
	next goopenai.HTTPDoer
}

func (d retryAfterDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}
	if hint, ok := req.Context().Value(retryHintKey{}).(*retryHint); ok {
		hint.after = llm.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return resp, nil
}

type chatStream struct {
	stream *goopenai.ChatCompletionStream
}

// Recv skips frames with no content (role headers, finish markers).
func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
