package mapper

import (
	"encoding/json"

	"pdfchat-be/internal/model"
	"pdfchat-be/pkg/vectorindex"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentEmbeddingMapper struct{}

func NewDocumentEmbeddingMapper() *DocumentEmbeddingMapper {
	return &DocumentEmbeddingMapper{}
}

func (m *DocumentEmbeddingMapper) ToModel(namespace string, r vectorindex.Record) (*model.DocumentEmbedding, error) {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, err
	}
	return &model.DocumentEmbedding{
		Namespace:      namespace,
		Id:             r.ID,
		Content:        r.Metadata.Text,
		PageNumber:     r.Metadata.PageNumber,
		Metadata:       datatypes.JSON(meta),
		EmbeddingValue: pgvector.NewVector(r.Values),
	}, nil
}

func (m *DocumentEmbeddingMapper) ToModels(namespace string, records []vectorindex.Record) ([]*model.DocumentEmbedding, error) {
	models := make([]*model.DocumentEmbedding, len(records))
	for i, r := range records {
		em, err := m.ToModel(namespace, r)
		if err != nil {
			return nil, err
		}
		models[i] = em
	}
	return models, nil
}

// ToMatch prefers the JSON metadata and falls back to the plain columns.
func (m *DocumentEmbeddingMapper) ToMatch(e *model.DocumentEmbedding, score float64) vectorindex.Match {
	meta := vectorindex.Metadata{Text: e.Content, PageNumber: e.PageNumber}
	if len(e.Metadata) > 0 {
		var decoded vectorindex.Metadata
		if err := json.Unmarshal(e.Metadata, &decoded); err == nil && decoded.Text != "" {
			meta = decoded
		}
	}
	return vectorindex.Match{ID: e.Id, Score: score, Metadata: meta}
}
