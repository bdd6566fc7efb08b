package vectorindex

import (
	"context"
	"testing"

	"pdfchat-be/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, values ...float32) Record {
	return Record{ID: id, Values: values, Metadata: Metadata{Text: "text " + id, PageNumber: 1}}
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"plain", "uploads/1700000000000report.pdf", `^uploads/1700000000000report\.pdf$`},
		{"accents", "uploads/résumé.pdf", `^uploads/resume\.pdf-[0-9a-f]{16}$`},
		{"non ascii", "uploads/報告書.pdf", `^uploads/-\.pdf-[0-9a-f]{16}$`},
		{"spaces", "uploads/my  file.pdf", `^uploads/my-file\.pdf-[0-9a-f]{16}$`},
		{"unsafe", "uploads/a?b#c.pdf", `^uploads/a-b-c\.pdf-[0-9a-f]{16}$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, tt.want, Namespace(tt.key))
		})
	}
}

func TestNamespace_DistinctKeysNeverCollide(t *testing.T) {
	pairs := [][2]string{
		{"uploads/1700000000000報告書.pdf", "uploads/1700000000000議事録.pdf"},
		{"uploads/1700000000000résumé.pdf", "uploads/1700000000000resume.pdf"},
		{"uploads/my file.pdf", "uploads/my-file.pdf"},
		{"uploads/a?b.pdf", "uploads/a#b.pdf"},
	}
	for _, p := range pairs {
		assert.NotEqual(t, Namespace(p[0]), Namespace(p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestNamespace_Deterministic(t *testing.T) {
	assert.Equal(t, Namespace("uploads/Ünïcode.pdf"), Namespace("uploads/Ünïcode.pdf"))

	a := Namespace("報告書")
	b := Namespace("議事録")
	assert.Regexp(t, `^ns-[0-9a-f]{16}$`, a)
	assert.NotEqual(t, a, b)
}

func TestRecordID(t *testing.T) {
	c := rag.Chunk{PageNumber: 1, Index: 0, Text: "hello"}
	assert.Equal(t, RecordID(c), RecordID(c))
	assert.NotEqual(t, RecordID(c), RecordID(rag.Chunk{PageNumber: 2, Index: 0, Text: "hello"}))
	assert.NotEqual(t, RecordID(c), RecordID(rag.Chunk{PageNumber: 1, Index: 1, Text: "hello"}))
}

func TestMemoryIndex_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(2)

	records := []Record{rec("a", 1, 0), rec("b", 0, 1)}
	require.NoError(t, idx.Upsert(ctx, "ns", records))
	require.NoError(t, idx.Upsert(ctx, "ns", records))

	assert.Equal(t, 2, idx.Count("ns"))
}

func TestMemoryIndex_QueryRanksByCosine(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert(ctx, "ns", []Record{
		rec("far", 0, 1),
		rec("near", 1, 0.1),
		rec("mid", 1, 1),
	}))

	matches, err := idx.Query(ctx, "ns", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "near", matches[0].ID)
	assert.Equal(t, "mid", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "text near", matches[0].Metadata.Text)
}

func TestMemoryIndex_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert(ctx, "doc-a", []Record{rec("a1", 1, 0)}))
	require.NoError(t, idx.Upsert(ctx, "doc-b", []Record{rec("b1", 1, 0)}))

	matches, err := idx.Query(ctx, "doc-a", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a1", matches[0].ID)
}

func TestMemoryIndex_EmptyNamespace(t *testing.T) {
	idx := NewMemoryIndex(2)
	matches, err := idx.Query(context.Background(), "missing", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestMemoryIndex_DimensionCheck(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(3)

	err := idx.Upsert(ctx, "ns", []Record{rec("a", 1, 0)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = idx.Query(ctx, "ns", []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemoryIndex_DeleteNamespace(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert(ctx, "ns", []Record{rec("a", 1, 0)}))
	require.NoError(t, idx.DeleteNamespace(ctx, "ns"))

	assert.Equal(t, 0, idx.Count("ns"))
}

func TestMemoryIndex_Replace(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert(ctx, "ns", []Record{rec("old1", 1, 0), rec("old2", 0, 1)}))

	require.NoError(t, idx.Replace(ctx, "ns", []Record{rec("new", 1, 1)}))

	matches, err := idx.Query(ctx, "ns", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].ID)

	err = idx.Replace(ctx, "ns", []Record{rec("bad", 1)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, idx.Count("ns"))
}
