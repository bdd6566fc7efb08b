package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pdfchat-be/internal/constant"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/llm"
)

// LLMClassifier asks the language model for the intent and defers to a
// fallback classifier when the call fails or the reply is unusable.
type LLMClassifier struct {
	llmProvider   llm.LLMProvider
	fallback      Classifier
	minConfidence float64
	logger        logger.ILogger
}

type llmVerdict struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func NewLLMClassifier(llmProvider llm.LLMProvider, fallback Classifier, log logger.ILogger) *LLMClassifier {
	if fallback == nil {
		fallback = NewPatternClassifier()
	}
	return &LLMClassifier{
		llmProvider:   llmProvider,
		fallback:      fallback,
		minConfidence: 0.6,
		logger:        log,
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, query string) Intent {
	q := strings.TrimSpace(query)

	// Temperature 0 for deterministic output
	response, err := c.llmProvider.Generate(ctx, fmt.Sprintf(constant.IntentClassificationPrompt, q), llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Warn("INTENT", "Intent classification failed, using fallback", map[string]interface{}{
			"error": err,
		})
		return c.fallback.Classify(ctx, q)
	}

	verdict, err := parseVerdict(response)
	if err != nil {
		c.logger.Warn("INTENT", "Intent parsing failed, using fallback", map[string]interface{}{
			"error":    err.Error(),
			"response": response,
		})
		return c.fallback.Classify(ctx, q)
	}

	if verdict.Confidence < c.minConfidence {
		return c.fallback.Classify(ctx, q)
	}

	c.logger.Debug("INTENT", "Intent resolved", map[string]interface{}{
		"intent":     verdict.Intent,
		"confidence": verdict.Confidence,
	})

	if Kind(verdict.Intent) == KindSummary {
		return Summary()
	}
	return Targeted(q)
}

func parseVerdict(response string) (*llmVerdict, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(jsonContent), &v); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	v.Intent = strings.ToUpper(strings.TrimSpace(v.Intent))
	switch Kind(v.Intent) {
	case KindSummary, KindTargeted:
	default:
		return nil, fmt.Errorf("unknown intent %q", v.Intent)
	}
	return &v, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
