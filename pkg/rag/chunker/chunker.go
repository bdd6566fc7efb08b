package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pdfchat-be/pkg/rag"
)

const (
	DefaultChunkSize = 1500
	DefaultOverlap   = 200

	// MaxMetadataBytes caps the chunk text stored next to a vector.
	MaxMetadataBytes = 36000
)

// Boundaries tried from most to least preferred when closing a window.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune(". "),
	[]rune("? "),
	[]rune("! "),
	[]rune("; "),
	[]rune(", "),
	[]rune(" "),
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)

// Splitter is a boundary-aware sliding window over normalized page text.
// Consecutive chunks share exactly Overlap runes.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

func NewDefaultSplitter() *Splitter {
	return NewSplitter(DefaultChunkSize, DefaultOverlap)
}

// Split turns one page into ordered chunks. Empty pages produce none.
func (s *Splitter) Split(page rag.Page) []rag.Chunk {
	text := Normalize(page.Text)
	if text == "" {
		return []rag.Chunk{}
	}

	pieces := s.window([]rune(text))
	chunks := make([]rag.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = rag.Chunk{
			PageNumber: page.Number,
			Index:      i,
			Text:       p,
		}
	}
	return chunks
}

// SplitPages chunks every page in order.
func (s *Splitter) SplitPages(pages []rag.Page) []rag.Chunk {
	var all []rag.Chunk
	for _, p := range pages {
		all = append(all, s.Split(p)...)
	}
	return all
}

func (s *Splitter) window(r []rune) []string {
	n := len(r)
	if n <= s.ChunkSize {
		return []string{string(r)}
	}

	var out []string
	start := 0
	for {
		end := start + s.ChunkSize
		if end >= n {
			out = append(out, string(r[start:n]))
			return out
		}

		// A break before start+Overlap+1 would stall the window.
		cut := end
		for _, sep := range separators {
			if idx := lastIndex(r, start+s.Overlap+1, end, sep); idx >= 0 {
				cut = idx + len(sep)
				break
			}
		}

		out = append(out, string(r[start:cut]))
		start = cut - s.Overlap
	}
}

// lastIndex finds the last occurrence of sep lying entirely in r[lo:hi].
func lastIndex(r []rune, lo, hi int, sep []rune) int {
	for i := hi - len(sep); i >= lo; i-- {
		match := true
		for j, c := range sep {
			if r[i+j] != c {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// Normalize joins wrapped lines, keeps blank-line paragraph breaks as
// "\n\n" and collapses every other whitespace run into one space.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// TruncateBytes cuts s to at most max bytes without splitting a rune.
func TruncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
