package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/events"
	"pdfchat-be/pkg/rag/ingest"
	"pdfchat-be/pkg/storage"
	"pdfchat-be/pkg/vectorindex"

	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

// Ingester is the indexing half of a document's lifecycle.
type Ingester interface {
	Ingest(ctx context.Context, fileKey string) (*ingest.Summary, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// SubscriptionChecker lifts the free document quota.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userId uuid.UUID) (bool, error)
}

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, fileName, contentType string, size int64, body io.Reader) (*dto.UploadDocumentResponse, error)
	Ingest(ctx context.Context, userId uuid.UUID, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	ListConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	store             storage.DocumentStore
	ingester          Ingester
	subscriptions     SubscriptionChecker
	publisher         EventPublisher
	freeDocumentLimit int
	logger            logger.ILogger
	now               func() time.Time
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	store storage.DocumentStore,
	ingester Ingester,
	subscriptions SubscriptionChecker,
	publisher EventPublisher,
	freeDocumentLimit int,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		store:             store,
		ingester:          ingester,
		subscriptions:     subscriptions,
		publisher:         publisher,
		freeDocumentLimit: freeDocumentLimit,
		logger:            log,
		now:               time.Now,
	}
}

func isPDF(fileName, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), pdfContentType) {
		return true
	}
	return strings.EqualFold(path.Ext(fileName), ".pdf")
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, fileName, contentType string, size int64, body io.Reader) (*dto.UploadDocumentResponse, error) {
	if !isPDF(fileName, contentType) {
		return nil, fmt.Errorf("%w: only PDF files are accepted", apperror.ErrExtraction)
	}

	key := storage.NewFileKey(fileName, s.now())
	if err := s.store.Upload(ctx, key, body, size, pdfContentType); err != nil {
		s.logger.Error("DocumentService", "Upload failed", map[string]interface{}{
			"user_id":  userId,
			"file_key": key,
			"error":    err.Error(),
		})
		return nil, err
	}

	doc := &entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		FileKey:   key,
		Name:      fileName,
		SourceURL: s.store.PublicURL(key),
		Namespace: vectorindex.Namespace(key),
		Status:    entity.DocumentStatusUploaded,
		CreatedAt: s.now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		s.logger.Error("DocumentService", "Failed to record upload", map[string]interface{}{
			"user_id":  userId,
			"file_key": key,
			"error":    err.Error(),
		})
		return nil, apperror.Wrap(apperror.ErrPersistence, err)
	}

	s.logger.Info("DocumentService", "Document uploaded", map[string]interface{}{
		"user_id":  userId,
		"file_key": key,
		"size":     size,
	})

	return &dto.UploadDocumentResponse{
		FileKey:  key,
		FileName: fileName,
		Url:      s.store.PublicURL(key),
	}, nil
}

// Ingest indexes a file the caller uploaded and records the document with
// its conversation. Keys without an upload record are unknown; keys
// uploaded by someone else are forbidden. Re-ingesting replaces the index
// and keeps the conversation.
func (s *documentService) Ingest(ctx context.Context, userId uuid.UUID, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DocumentRepository().FindOne(ctx, specification.ByFileKey{FileKey: req.FileKey})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: no upload recorded for %s", apperror.ErrNotFound, req.FileKey)
	}
	if existing.UserId != userId {
		return nil, apperror.ErrForbidden
	}
	if existing.Status != entity.DocumentStatusReady {
		if err := s.checkQuota(ctx, uow, userId); err != nil {
			return nil, err
		}
	}

	summary, err := s.ingester.Ingest(ctx, req.FileKey)
	if err != nil {
		s.logger.Error("DocumentService", "Ingestion failed", map[string]interface{}{
			"user_id":  userId,
			"file_key": req.FileKey,
			"error":    err.Error(),
		})
		s.publish(ctx, events.DocumentIngestionFailed(userId.String(), req.FileKey, errorReason(err)))
		return nil, err
	}

	doc, conv, err := s.record(ctx, userId, req, existing, summary)
	if err != nil {
		s.publish(ctx, events.DocumentIngestionFailed(userId.String(), req.FileKey, errorReason(err)))
		return nil, apperror.Wrap(apperror.ErrPersistence, err)
	}

	s.publish(ctx, events.DocumentIngested(
		userId.String(), doc.Id.String(), conv.Id.String(), doc.FileKey, doc.PageCount, doc.ChunkCount,
	))

	return &dto.IngestDocumentResponse{
		DocumentId:     doc.Id,
		ConversationId: conv.Id,
		FileKey:        doc.FileKey,
		Namespace:      doc.Namespace,
		PageCount:      doc.PageCount,
		ChunkCount:     doc.ChunkCount,
	}, nil
}

func (s *documentService) checkQuota(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	if s.freeDocumentLimit <= 0 {
		return nil
	}

	count, err := uow.DocumentRepository().Count(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDocumentStatus{Status: string(entity.DocumentStatusReady)},
	)
	if err != nil {
		return err
	}
	if count < int64(s.freeDocumentLimit) {
		return nil
	}

	if s.subscriptions != nil {
		subscribed, err := s.subscriptions.IsSubscribed(ctx, userId)
		if err != nil {
			return err
		}
		if subscribed {
			return nil
		}
	}
	return fmt.Errorf("%w: free plan allows %d documents", apperror.ErrQuotaExceeded, s.freeDocumentLimit)
}

func (s *documentService) record(
	ctx context.Context,
	userId uuid.UUID,
	req *dto.IngestDocumentRequest,
	existing *entity.Document,
	summary *ingest.Summary,
) (*entity.Document, *entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	doc := *existing
	doc.Name = req.FileName
	doc.SourceURL = s.store.PublicURL(req.FileKey)
	doc.Namespace = summary.Namespace
	doc.Status = entity.DocumentStatusReady
	doc.PageCount = summary.PageCount
	doc.ChunkCount = summary.ChunkCount

	if err := uow.DocumentRepository().Update(ctx, &doc); err != nil {
		return nil, nil, err
	}

	conv, err := uow.ConversationRepository().FindOne(ctx, specification.ByDocumentID{DocumentID: doc.Id})
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		conv = &entity.Conversation{
			Id:         uuid.New(),
			UserId:     userId,
			DocumentId: doc.Id,
			FileKey:    doc.FileKey,
			Title:      req.FileName,
			CreatedAt:  s.now(),
		}
		if err := uow.ConversationRepository().Create(ctx, conv); err != nil {
			return nil, nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return &doc, conv, nil
}

func (s *documentService) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("DocumentService", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *documentService) ListConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		res = append(res, &dto.ConversationResponse{
			Id:         c.Id,
			DocumentId: c.DocumentId,
			Title:      c.Title,
			FileKey:    c.FileKey,
			PdfUrl:     s.store.PublicURL(c.FileKey),
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return res, nil
}

// errorReason is what a failed ingestion event tells the client.
func errorReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrSourceNotFound):
		return "file not found"
	case errors.Is(err, apperror.ErrStorageFailure):
		return "file storage unavailable"
	case errors.Is(err, apperror.ErrExtraction):
		return "file could not be read as a PDF"
	case errors.Is(err, apperror.ErrEmbeddingService):
		return "embedding service unavailable"
	case errors.Is(err, apperror.ErrIndexUnavailable):
		return "vector index unavailable"
	default:
		return "ingestion failed"
	}
}
