package pdf

import (
	"bytes"
	"context"
	"fmt"

	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/rag"

	lpdf "github.com/ledongthuc/pdf"
)

var magic = []byte("%PDF-")

// Extractor turns raw document bytes into per-page text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]rag.Page, error)
}

type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns one Page per PDF page, numbered from 1. Pages without a
// text layer are kept with empty text so page numbers stay aligned.
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (pages []rag.Page, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), magic) {
		return nil, fmt.Errorf("%w: missing PDF header", apperror.ErrExtraction)
	}

	// the parser panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", apperror.ErrExtraction, r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrExtraction, err)
	}

	total := reader.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("%w: document has no pages", apperror.ErrExtraction)
	}

	pages = make([]rag.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, rag.Page{Number: i})
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", apperror.ErrExtraction, i, err)
		}
		pages = append(pages, rag.Page{Number: i, Text: text})
	}
	return pages, nil
}
