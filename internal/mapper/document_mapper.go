package mapper

import (
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:         d.Id,
		UserId:     d.UserId,
		FileKey:    d.FileKey,
		Name:       d.Name,
		SourceURL:  d.SourceURL,
		Namespace:  d.Namespace,
		Status:     entity.DocumentStatus(d.Status),
		PageCount:  d.PageCount,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:         d.Id,
		UserId:     d.UserId,
		FileKey:    d.FileKey,
		Name:       d.Name,
		SourceURL:  d.SourceURL,
		Namespace:  d.Namespace,
		Status:     string(d.Status),
		PageCount:  d.PageCount,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}
