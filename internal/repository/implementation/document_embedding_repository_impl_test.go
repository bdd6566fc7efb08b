package implementation

import (
	"context"
	"log"
	"os"
	"strconv"
	"testing"

	"pdfchat-be/internal/model"
	"pdfchat-be/internal/repository/contract"
	"pdfchat-be/pkg/database"
	"pdfchat-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openEmbeddingRepo connects to the database named by DB_CONNECTION_STRING.
// The vector width follows EMBEDDING_DIMENSIONS, as cmd/migrate does.
func openEmbeddingRepo(t *testing.T) (contract.DocumentEmbeddingRepository, *gorm.DB, int) {
	t.Helper()

	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	dims := 768
	if v, err := strconv.Atoi(os.Getenv("EMBEDDING_DIMENSIONS")); err == nil && v > 0 {
		dims = v
	}

	db, err := database.Open(dsn, database.DefaultOptions(false))
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error)
	if !db.Migrator().HasTable(&model.DocumentEmbedding{}) {
		require.NoError(t, db.AutoMigrate(&model.DocumentEmbedding{}))
		if dims != 768 {
			require.NoError(t, db.Exec(
				`ALTER TABLE document_embeddings ALTER COLUMN embedding_value TYPE vector(` + strconv.Itoa(dims) + `);`,
			).Error)
		}
	}

	return NewDocumentEmbeddingRepository(db, dims), db, dims
}

// testNamespace is unique per run and removed when the test ends.
func testNamespace(t *testing.T, repo contract.DocumentEmbeddingRepository) string {
	t.Helper()
	ns := "it-" + uuid.NewString()
	t.Cleanup(func() {
		_ = repo.DeleteNamespace(context.Background(), ns)
	})
	return ns
}

func countRows(t *testing.T, db *gorm.DB, namespace string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.DocumentEmbedding{}).Where("namespace = ?", namespace).Count(&n).Error)
	return n
}

func axis(dims, i int) []float32 {
	v := make([]float32, dims)
	v[i] = 1
	return v
}

func record(id string, values []float32, text string, page int) vectorindex.Record {
	return vectorindex.Record{ID: id, Values: values, Metadata: vectorindex.Metadata{Text: text, PageNumber: page}}
}

func TestDocumentEmbeddingRepository_UpsertIsIdempotent(t *testing.T) {
	repo, db, dims := openEmbeddingRepo(t)
	ctx := context.Background()
	ns := testNamespace(t, repo)

	records := []vectorindex.Record{
		record("a", axis(dims, 0), "first", 1),
		record("b", axis(dims, 1), "second", 2),
	}
	require.NoError(t, repo.Upsert(ctx, ns, records))
	require.NoError(t, repo.Upsert(ctx, ns, records))
	assert.Equal(t, int64(2), countRows(t, db, ns))

	require.NoError(t, repo.Upsert(ctx, ns, []vectorindex.Record{record("a", axis(dims, 0), "first, revised", 1)}))
	assert.Equal(t, int64(2), countRows(t, db, ns))

	matches, err := repo.Query(ctx, ns, axis(dims, 0), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "first, revised", matches[0].Metadata.Text)
}

func TestDocumentEmbeddingRepository_NamespacesAreIsolated(t *testing.T) {
	repo, db, dims := openEmbeddingRepo(t)
	ctx := context.Background()
	nsA := testNamespace(t, repo)
	nsB := testNamespace(t, repo)

	require.NoError(t, repo.Upsert(ctx, nsA, []vectorindex.Record{record("same-id", axis(dims, 0), "from A", 1)}))
	require.NoError(t, repo.Upsert(ctx, nsB, []vectorindex.Record{record("same-id", axis(dims, 0), "from B", 1)}))

	matches, err := repo.Query(ctx, nsA, axis(dims, 0), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "from A", matches[0].Metadata.Text)

	require.NoError(t, repo.DeleteNamespace(ctx, nsA))
	assert.Equal(t, int64(0), countRows(t, db, nsA))
	assert.Equal(t, int64(1), countRows(t, db, nsB))

	empty, err := repo.Query(ctx, "it-"+uuid.NewString(), axis(dims, 0), 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDocumentEmbeddingRepository_QueryScoresByCosine(t *testing.T) {
	repo, _, dims := openEmbeddingRepo(t)
	ctx := context.Background()
	ns := testNamespace(t, repo)

	diagonal := axis(dims, 0)
	diagonal[1] = 1
	require.NoError(t, repo.Upsert(ctx, ns, []vectorindex.Record{
		record("exact", axis(dims, 0), "exact", 1),
		record("diagonal", diagonal, "diagonal", 2),
		record("orthogonal", axis(dims, 1), "orthogonal", 3),
	}))

	matches, err := repo.Query(ctx, ns, axis(dims, 0), 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "exact", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Equal(t, "diagonal", matches[1].ID)
	assert.InDelta(t, 0.7071, matches[1].Score, 1e-3)
	assert.Equal(t, "orthogonal", matches[2].ID)
	assert.InDelta(t, 0.0, matches[2].Score, 1e-5)
	assert.Equal(t, 3, matches[2].Metadata.PageNumber)
}

func TestDocumentEmbeddingRepository_ReplaceIsAtomic(t *testing.T) {
	repo, db, dims := openEmbeddingRepo(t)
	ctx := context.Background()
	ns := testNamespace(t, repo)

	require.NoError(t, repo.Upsert(ctx, ns, []vectorindex.Record{
		record("old-1", axis(dims, 0), "old", 1),
		record("old-2", axis(dims, 1), "old", 2),
	}))

	require.NoError(t, repo.Replace(ctx, ns, []vectorindex.Record{record("new-1", axis(dims, 2), "new", 1)}))
	assert.Equal(t, int64(1), countRows(t, db, ns))

	// A bad record fails inside the transaction, after the purge.
	err := repo.Replace(ctx, ns, []vectorindex.Record{
		record("new-2", axis(dims, 3), "newer", 1),
		record("broken", []float32{1, 2}, "broken", 2),
	})
	assert.ErrorIs(t, err, vectorindex.ErrDimensionMismatch)

	matches, err := repo.Query(ctx, ns, axis(dims, 2), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new-1", matches[0].ID)
}

func TestDocumentEmbeddingRepository_DimensionChecks(t *testing.T) {
	repo, db, dims := openEmbeddingRepo(t)
	ctx := context.Background()
	ns := testNamespace(t, repo)

	err := repo.Upsert(ctx, ns, []vectorindex.Record{record("short", []float32{1}, "short", 1)})
	assert.ErrorIs(t, err, vectorindex.ErrDimensionMismatch)
	assert.Equal(t, int64(0), countRows(t, db, ns))

	_, err = repo.Query(ctx, ns, make([]float32, dims+1), 5)
	assert.ErrorIs(t, err, vectorindex.ErrDimensionMismatch)
}
