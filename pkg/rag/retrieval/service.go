package retrieval

import (
	"context"
	"sort"
	"strings"
	"time"

	"pdfchat-be/internal/constant"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/rag/intent"
	"pdfchat-be/pkg/vectorindex"
)

// QueryEmbedder is the query-side half of embedding.Embedder.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	TopK int
	// Threshold is the minimum cosine score a targeted match needs.
	Threshold float64
	// Budget caps the assembled context, in runes.
	Budget int
}

func DefaultOptions() Options {
	return Options{TopK: vectorindex.DefaultTopK, Threshold: 0.5, Budget: 3000}
}

// Result is everything a retrieval produced. Context is always non-empty:
// it holds either chunk text or one of the sentinel strings.
type Result struct {
	Intent   intent.Intent
	Matches  []vectorindex.Match
	Context  string
	Degraded bool
}

type Service struct {
	embedder   QueryEmbedder
	index      vectorindex.Index
	classifier intent.Classifier
	opts       Options
	logger     logger.ILogger
}

func NewService(embedder QueryEmbedder, index vectorindex.Index, classifier intent.Classifier, opts Options, log logger.ILogger) *Service {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.Budget <= 0 {
		opts.Budget = def.Budget
	}
	if classifier == nil {
		classifier = intent.NewPatternClassifier()
	}
	return &Service{
		embedder:   embedder,
		index:      index,
		classifier: classifier,
		opts:       opts,
		logger:     log,
	}
}

// Retrieve returns the context string for query against the document
// identified by fileKey.
func (s *Service) Retrieve(ctx context.Context, query, fileKey string) string {
	return s.Search(ctx, query, fileKey).Context
}

// Search never fails. Embedding or index outages degrade to the
// retrieval-failed sentinel so the answer becomes a refusal.
func (s *Service) Search(ctx context.Context, query, fileKey string) *Result {
	start := time.Now()
	namespace := vectorindex.Namespace(fileKey)
	in := s.classifier.Classify(ctx, query)
	res := &Result{Intent: in}

	vector, err := s.embedder.EmbedQuery(ctx, in.Query)
	if err != nil {
		return s.degrade(res, fileKey, "Query embedding failed", err)
	}

	matches, err := s.index.Query(ctx, namespace, vector, s.opts.TopK)
	if err != nil {
		return s.degrade(res, fileKey, "Vector query failed", err)
	}

	if in.IsSummary() {
		res.Matches = byPage(matches)
		res.Context = s.assemble(res.Matches, "\n\n", constant.NoIntroductoryContent)
	} else {
		res.Matches = aboveThreshold(matches, s.opts.Threshold)
		res.Context = s.assemble(res.Matches, "\n", constant.NoRelevantContext)
	}

	if len(res.Matches) == 0 {
		s.logger.Warn("Retrieval", "No relevant context found", map[string]interface{}{
			"file_key": fileKey,
			"intent":   string(in.Kind),
			"hits":     len(matches),
		})
	}

	s.logger.Debug("Retrieval", "Context assembled", map[string]interface{}{
		"file_key":    fileKey,
		"intent":      string(in.Kind),
		"matches":     len(res.Matches),
		"context_len": len([]rune(res.Context)),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return res
}

func (s *Service) degrade(res *Result, fileKey, msg string, err error) *Result {
	s.logger.Error("Retrieval", msg, map[string]interface{}{
		"file_key": fileKey,
		"error":    err,
	})
	res.Context = constant.RetrievalFailedContext
	res.Degraded = true
	return res
}

func (s *Service) assemble(matches []vectorindex.Match, sep, empty string) string {
	if len(matches) == 0 {
		return empty
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Metadata.Text
	}
	return Truncate(strings.Join(texts, sep), s.opts.Budget)
}

// aboveThreshold keeps matches scoring at least threshold, best first.
func aboveThreshold(matches []vectorindex.Match, threshold float64) []vectorindex.Match {
	kept := make([]vectorindex.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= threshold {
			kept = append(kept, m)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}

// byPage orders matches front to back, ignoring score.
func byPage(matches []vectorindex.Match) []vectorindex.Match {
	ordered := append([]vectorindex.Match(nil), matches...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Metadata.PageNumber < ordered[j].Metadata.PageNumber
	})
	return ordered
}

// Truncate cuts s to at most budget runes. The cut is exact and may land
// inside the last chunk.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == budget {
			return s[:i]
		}
		n++
	}
	return s
}
