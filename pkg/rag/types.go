package rag

// Page is the extracted text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded slice of a page's normalized text.
// Index is 0-based and local to the page.
type Chunk struct {
	PageNumber int
	Index      int
	Text       string
}
