package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/pdf"
	"pdfchat-be/pkg/rag"
	"pdfchat-be/pkg/rag/chunker"
	"pdfchat-be/pkg/storage"
	"pdfchat-be/pkg/vectorindex"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Embedder is the document-side half of embedding.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	// Concurrency bounds in-flight embedding calls.
	Concurrency int
	// RequestsPerSecond and Burst throttle the embedding provider.
	RequestsPerSecond float64
	Burst             int
}

func DefaultOptions() Options {
	return Options{Concurrency: 4, RequestsPerSecond: 10, Burst: 5}
}

// Summary describes a finished ingestion. FirstPage feeds the
// conversation title and the document preview.
type Summary struct {
	FileKey    string
	Namespace  string
	PageCount  int
	ChunkCount int
	FirstPage  rag.Page
	Duration   time.Duration
}

type Pipeline struct {
	store     storage.DocumentStore
	extractor pdf.Extractor
	splitter  *chunker.Splitter
	embedder  Embedder
	index     vectorindex.Index
	opts      Options
	limiter   *rate.Limiter
	logger    logger.ILogger
}

func NewPipeline(
	store storage.DocumentStore,
	extractor pdf.Extractor,
	splitter *chunker.Splitter,
	embedder Embedder,
	index vectorindex.Index,
	opts Options,
	log logger.ILogger,
) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Pipeline{
		store:     store,
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, opts.Burst),
		logger:    log,
	}
}

// Ingest downloads, parses, chunks, embeds and indexes one document.
// Any failure aborts the whole run; nothing is written until every chunk
// has a vector. A successful run replaces whatever the namespace held.
func (p *Pipeline) Ingest(ctx context.Context, fileKey string) (*Summary, error) {
	start := time.Now()
	namespace := vectorindex.Namespace(fileKey)

	data, err := p.store.Download(ctx, fileKey)
	if err != nil {
		return nil, storageErr(err)
	}

	pages, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", apperror.ErrExtraction)
	}

	chunks := p.splitter.SplitPages(pages)
	if len(chunks) == 0 {
		p.logger.Warn("Ingest", "Document has no extractable text", map[string]interface{}{
			"file_key": fileKey,
			"pages":    len(pages),
		})
	}

	records, err := p.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := p.replace(ctx, namespace, records); err != nil {
		return nil, indexErr(err)
	}

	summary := &Summary{
		FileKey:    fileKey,
		Namespace:  namespace,
		PageCount:  len(pages),
		ChunkCount: len(records),
		FirstPage:  pages[0],
		Duration:   time.Since(start),
	}

	p.logger.Info("Ingest", "Document indexed", map[string]interface{}{
		"file_key":    fileKey,
		"namespace":   namespace,
		"pages":       summary.PageCount,
		"chunks":      summary.ChunkCount,
		"duration_ms": summary.Duration.Milliseconds(),
	})
	return summary, nil
}

func (p *Pipeline) embedAll(ctx context.Context, chunks []rag.Chunk) ([]vectorindex.Record, error) {
	records := make([]vectorindex.Record, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for i, c := range chunks {
		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return err
			}
			vec, err := p.embedder.Embed(gctx, c.Text)
			if err != nil {
				return fmt.Errorf("embed page %d chunk %d: %w", c.PageNumber, c.Index, err)
			}
			records[i] = vectorindex.Record{
				ID:     vectorindex.RecordID(c),
				Values: vec,
				Metadata: vectorindex.Metadata{
					Text:       chunker.TruncateBytes(c.Text, chunker.MaxMetadataBytes),
					PageNumber: c.PageNumber,
				},
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *Pipeline) replace(ctx context.Context, namespace string, records []vectorindex.Record) error {
	if r, ok := p.index.(vectorindex.Replacer); ok {
		return r.Replace(ctx, namespace, records)
	}
	if err := p.index.DeleteNamespace(ctx, namespace); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	return p.index.Upsert(ctx, namespace, records)
}

// storageErr keeps a missing source distinct from an unreachable store.
func storageErr(err error) error {
	if errors.Is(err, apperror.ErrSourceNotFound) || errors.Is(err, apperror.ErrStorageFailure) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperror.Wrap(apperror.ErrStorageFailure, err)
}

func indexErr(err error) error {
	if errors.Is(err, apperror.ErrIndexUnavailable) || errors.Is(err, vectorindex.ErrDimensionMismatch) {
		return err
	}
	return apperror.Wrap(apperror.ErrIndexUnavailable, err)
}
