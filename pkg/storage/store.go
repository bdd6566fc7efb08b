package storage

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DocumentStore holds uploaded PDFs addressed by file key.
type DocumentStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	PublicURL(key string) string
}

// NewFileKey builds "uploads/<unix millis><name>" with whitespace in the
// name replaced by '-'. Directory parts of name are discarded.
func NewFileKey(name string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "document.pdf"
	}
	base = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, base)
	return "uploads/" + strconv.FormatInt(now.UnixMilli(), 10) + base
}
