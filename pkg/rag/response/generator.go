package response

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/llm"
	"pdfchat-be/pkg/rag/prompt"
	"pdfchat-be/pkg/utils"

	"github.com/google/uuid"
)

// Request is one chat turn. Context is the retrieval output, sentinels
// included.
type Request struct {
	ConversationID string
	History        []llm.Message
	Query          string
	Context        string
}

// Transcript is the user question and the completed answer of one turn.
// The message ids are fixed once so a replayed commit writes nothing new.
type Transcript struct {
	ConversationID string    `json:"conversation_id"`
	UserMessageID  string    `json:"user_message_id"`
	UserMessage    string    `json:"user_message"`
	AnswerID       string    `json:"answer_id"`
	Answer         string    `json:"answer"`
	CreatedAt      time.Time `json:"created_at"`
}

// TranscriptStore appends both messages of a turn atomically.
type TranscriptStore interface {
	AppendExchange(ctx context.Context, t Transcript) error
}

// Reconciler takes transcripts that could not be committed inline and
// retries them out of band.
type Reconciler interface {
	Enqueue(ctx context.Context, t Transcript) error
}

// Sink receives answer tokens in order.
type Sink func(token string) error

type CommitPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

func DefaultCommitPolicy() CommitPolicy {
	return CommitPolicy{Attempts: 3, BaseDelay: 200 * time.Millisecond}
}

type Generator struct {
	llmProvider llm.LLMProvider
	builder     *prompt.Builder
	store       TranscriptStore
	reconciler  Reconciler
	policy      CommitPolicy
	options     []llm.Option
	logger      logger.ILogger
}

func NewGenerator(
	llmProvider llm.LLMProvider,
	builder *prompt.Builder,
	store TranscriptStore,
	reconciler Reconciler,
	policy CommitPolicy,
	log logger.ILogger,
	options ...llm.Option,
) *Generator {
	if builder == nil {
		builder = prompt.NewBuilder("", 0)
	}
	return &Generator{
		llmProvider: llmProvider,
		builder:     builder,
		store:       store,
		reconciler:  reconciler,
		policy:      policy,
		options:     options,
		logger:      log,
	}
}

// Answer is an opened model stream for one turn.
type Answer struct {
	g       *Generator
	req     Request
	stream  llm.Stream
	started time.Time
}

// Open builds the grounded prompt and starts the model stream. A quota
// refusal is returned here as *apperror.RateLimitError, before any token
// reaches the caller.
func (g *Generator) Open(ctx context.Context, req Request) (*Answer, error) {
	messages := g.builder.Build(req.Context, req.History, req.Query)

	stream, err := g.llmProvider.ChatStream(ctx, messages, g.options...)
	if err != nil {
		if errors.Is(err, apperror.ErrRateLimited) {
			g.logger.Warn("Generator", "Language model rate limited", map[string]interface{}{
				"conversation_id": req.ConversationID,
				"error":           err,
			})
		} else {
			g.logger.Error("Generator", "Failed to open model stream", map[string]interface{}{
				"conversation_id": req.ConversationID,
				"error":           err,
			})
		}
		return nil, err
	}

	return &Answer{g: g, req: req, stream: stream, started: time.Now()}, nil
}

// Deliver pushes every token to sink, then commits the transcript. Commit
// failures are logged and queued for reconciliation, never returned: the
// caller has already shown the answer. A stream or sink failure returns
// the error and commits nothing.
func (a *Answer) Deliver(ctx context.Context, sink Sink) (string, error) {
	defer a.stream.Close()

	var sb strings.Builder
	for {
		token, err := a.stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			a.g.logger.Error("Generator", "Model stream interrupted", map[string]interface{}{
				"conversation_id": a.req.ConversationID,
				"delivered_runes": len([]rune(sb.String())),
				"error":           err,
			})
			return sb.String(), err
		}

		sb.WriteString(token)
		if err := sink(token); err != nil {
			a.g.logger.Warn("Generator", "Client went away mid-answer", map[string]interface{}{
				"conversation_id": a.req.ConversationID,
				"error":           err,
			})
			return sb.String(), err
		}
	}

	answer := sb.String()
	a.g.logger.Info("Generator", "Answer streamed", map[string]interface{}{
		"conversation_id": a.req.ConversationID,
		"answer_runes":    len([]rune(answer)),
		"grounded":        !prompt.IsSentinel(a.req.Context),
		"duration_ms":     time.Since(a.started).Milliseconds(),
	})

	// The request context may already be cancelled once the stream ends.
	a.g.commit(context.WithoutCancel(ctx), Transcript{
		ConversationID: a.req.ConversationID,
		UserMessageID:  uuid.NewString(),
		UserMessage:    a.req.Query,
		AnswerID:       uuid.NewString(),
		Answer:         answer,
		CreatedAt:      time.Now(),
	})
	return answer, nil
}

// Generate is Open followed by Deliver.
func (g *Generator) Generate(ctx context.Context, req Request, sink Sink) (string, error) {
	answer, err := g.Open(ctx, req)
	if err != nil {
		return "", err
	}
	return answer.Deliver(ctx, sink)
}

func (g *Generator) commit(ctx context.Context, t Transcript) {
	if g.store == nil {
		return
	}

	err := utils.Retry(ctx, g.policy.Attempts, g.policy.BaseDelay, func(ctx context.Context) error {
		return g.store.AppendExchange(ctx, t)
	})
	if err == nil {
		return
	}

	g.logger.Error("Generator", "Failed to persist transcript", map[string]interface{}{
		"conversation_id": t.ConversationID,
		"attempts":        g.policy.Attempts,
		"error":           apperror.Wrap(apperror.ErrPersistence, err),
	})

	if g.reconciler == nil {
		return
	}
	if qErr := g.reconciler.Enqueue(ctx, t); qErr != nil {
		g.logger.Error("Generator", "Failed to queue transcript for reconciliation", map[string]interface{}{
			"conversation_id": t.ConversationID,
			"error":           qErr,
		})
	}
}
