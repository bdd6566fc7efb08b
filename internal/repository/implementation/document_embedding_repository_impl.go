package implementation

import (
	"context"
	"fmt"

	"pdfchat-be/internal/mapper"
	"pdfchat-be/internal/model"
	"pdfchat-be/internal/repository/contract"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/vectorindex"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 100

type DocumentEmbeddingRepositoryImpl struct {
	db         *gorm.DB
	mapper     *mapper.DocumentEmbeddingMapper
	dimensions int
}

func NewDocumentEmbeddingRepository(db *gorm.DB, dimensions int) contract.DocumentEmbeddingRepository {
	return &DocumentEmbeddingRepositoryImpl{
		db:         db,
		mapper:     mapper.NewDocumentEmbeddingMapper(),
		dimensions: dimensions,
	}
}

func (r *DocumentEmbeddingRepositoryImpl) Upsert(ctx context.Context, namespace string, records []vectorindex.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.upsert(r.db.WithContext(ctx), namespace, records)
}

func (r *DocumentEmbeddingRepositoryImpl) upsert(db *gorm.DB, namespace string, records []vectorindex.Record) error {
	for _, rec := range records {
		if err := vectorindex.CheckDimensions(r.dimensions, rec.Values); err != nil {
			return fmt.Errorf("record %s: %w", rec.ID, err)
		}
	}

	models, err := r.mapper.ToModels(namespace, records)
	if err != nil {
		return err
	}

	err = db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "page_number", "metadata", "embedding_value", "updated_at"}),
		}).
		CreateInBatches(models, upsertBatchSize).Error
	if err != nil {
		return apperror.Wrap(apperror.ErrIndexUnavailable, err)
	}
	return nil
}

// Replace purges the namespace and writes records in one transaction, so
// readers see either the old document or the new one.
func (r *DocumentEmbeddingRepositoryImpl) Replace(ctx context.Context, namespace string, records []vectorindex.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("namespace = ?", namespace).Delete(&model.DocumentEmbedding{}).Error; err != nil {
			return apperror.Wrap(apperror.ErrIndexUnavailable, err)
		}
		if len(records) == 0 {
			return nil
		}
		return r.upsert(tx, namespace, records)
	})
}

func (r *DocumentEmbeddingRepositoryImpl) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]vectorindex.Match, error) {
	if err := vectorindex.CheckDimensions(r.dimensions, vector); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = vectorindex.DefaultTopK
	}

	// Cosine distance in pgvector is 1 - cosine_similarity.
	type result struct {
		model.DocumentEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("document_embeddings").
		Select("document_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("namespace = ?", namespace).
		Order(clause.Expr{SQL: "embedding_value <=> ?", Vars: []interface{}{queryVector}}).
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrIndexUnavailable, err)
	}

	matches := make([]vectorindex.Match, len(results))
	for i := range results {
		matches[i] = r.mapper.ToMatch(&results[i].DocumentEmbedding, results[i].Similarity)
	}
	return matches, nil
}

func (r *DocumentEmbeddingRepositoryImpl) DeleteNamespace(ctx context.Context, namespace string) error {
	err := r.db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&model.DocumentEmbedding{}).Error
	if err != nil {
		return apperror.Wrap(apperror.ErrIndexUnavailable, err)
	}
	return nil
}
