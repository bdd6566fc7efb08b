package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByFileKey struct {
	FileKey string
}

func (s ByFileKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_key = ?", s.FileKey)
}

type ByDocumentStatus struct {
	Status string
}

func (s ByDocumentStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByOrderID struct {
	OrderID string
}

func (s ByOrderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_id = ?", s.OrderID)
}
