package intent

import (
	"context"
	"regexp"
	"strings"

	"pdfchat-be/internal/constant"
)

// Kind tags how a question should be retrieved against.
type Kind string

const (
	KindTargeted Kind = "TARGETED"
	KindSummary  Kind = "SUMMARY"
)

// Intent is the resolved retrieval strategy. Query is what gets embedded:
// the question itself for targeted lookups, the proxy query for summaries.
type Intent struct {
	Kind  Kind
	Query string
}

func (i Intent) IsSummary() bool {
	return i.Kind == KindSummary
}

// Classifier decides how a user question should be retrieved against.
// Implementations never fail; when unsure they fall back to KindTargeted.
type Classifier interface {
	Classify(ctx context.Context, query string) Intent
}

var defaultSummaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsummar(y|ies|i[sz]e|i[sz]ing)\b`),
	regexp.MustCompile(`(?i)\boverview\b`),
	regexp.MustCompile(`(?i)\bwhat\s+is\b.*\b(document|pdf|file|paper)\b`),
	regexp.MustCompile(`(?i)\btl;?dr\b`),
}

// PatternClassifier flags summarization questions by regular expression.
type PatternClassifier struct {
	patterns []*regexp.Regexp
}

// NewPatternClassifier uses the built-in summary patterns plus any extra
// ones supplied.
func NewPatternClassifier(extra ...*regexp.Regexp) *PatternClassifier {
	patterns := make([]*regexp.Regexp, 0, len(defaultSummaryPatterns)+len(extra))
	patterns = append(patterns, defaultSummaryPatterns...)
	patterns = append(patterns, extra...)
	return &PatternClassifier{patterns: patterns}
}

func (c *PatternClassifier) Classify(_ context.Context, query string) Intent {
	q := strings.TrimSpace(query)
	for _, p := range c.patterns {
		if p.MatchString(q) {
			return Summary()
		}
	}
	return Targeted(q)
}

func Summary() Intent {
	return Intent{Kind: KindSummary, Query: constant.SummaryProxyQuery}
}

func Targeted(query string) Intent {
	return Intent{Kind: KindTargeted, Query: query}
}
