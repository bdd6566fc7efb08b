package prompt

import (
	"fmt"
	"strings"

	"pdfchat-be/internal/constant"
	"pdfchat-be/pkg/llm"
)

// Builder assembles the grounded conversation sent to the model.
type Builder struct {
	refusal    string
	maxHistory int
}

// NewBuilder keeps at most maxHistory prior turns (0 keeps all).
func NewBuilder(refusal string, maxHistory int) *Builder {
	if refusal == "" {
		refusal = constant.RefusalPhrase
	}
	return &Builder{refusal: refusal, maxHistory: maxHistory}
}

// SystemPrompt embeds retrievedContext verbatim.
func (b *Builder) SystemPrompt(retrievedContext string) string {
	return fmt.Sprintf(constant.GroundedAnswerSystemPrompt, b.refusal, retrievedContext)
}

// Build returns system prompt, prior turns and the final question. The
// question also carries the context so that models which weigh the last
// user turn most still see it.
func (b *Builder) Build(retrievedContext string, history []llm.Message, query string) []llm.Message {
	history = b.trim(history)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: b.SystemPrompt(retrievedContext)})
	for _, m := range history {
		if m.Role == llm.RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf(constant.GroundedAnswerUserPrompt, retrievedContext, query),
	})
	return messages
}

func (b *Builder) trim(history []llm.Message) []llm.Message {
	if b.maxHistory > 0 && len(history) > b.maxHistory {
		return history[len(history)-b.maxHistory:]
	}
	return history
}

// IsSentinel reports whether retrievedContext is one of the placeholders
// retrieval emits instead of document text.
func IsSentinel(retrievedContext string) bool {
	switch retrievedContext {
	case constant.NoRelevantContext, constant.NoIntroductoryContent, constant.RetrievalFailedContext:
		return true
	}
	return false
}
