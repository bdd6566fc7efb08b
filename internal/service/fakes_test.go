package service

import (
	"context"
	"sort"
	"sync"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/repository/contract"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/events"

	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for the Postgres repositories. It
// understands the specifications the services use.
type memDB struct {
	mu            sync.Mutex
	documents     map[uuid.UUID]*entity.Document
	conversations map[uuid.UUID]*entity.Conversation
	messages      []*entity.Message
	subscriptions map[uuid.UUID]*entity.UserSubscription
	commits       int
	failCreate    error
}

func newMemDB() *memDB {
	return &memDB{
		documents:     map[uuid.UUID]*entity.Document{},
		conversations: map[uuid.UUID]*entity.Conversation{},
		subscriptions: map[uuid.UUID]*entity.UserSubscription{},
	}
}

func (m *memDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{db: m}
}

type memUoW struct {
	db *memDB
}

func (u *memUoW) Begin(ctx context.Context) error { return nil }
func (u *memUoW) Rollback() error                 { return nil }
func (u *memUoW) Commit() error {
	u.db.mu.Lock()
	u.db.commits++
	u.db.mu.Unlock()
	return nil
}

func (u *memUoW) DocumentRepository() contract.DocumentRepository         { return &memDocuments{u.db} }
func (u *memUoW) ConversationRepository() contract.ConversationRepository { return &memConversations{u.db} }
func (u *memUoW) MessageRepository() contract.MessageRepository           { return &memMessages{u.db} }
func (u *memUoW) SubscriptionRepository() contract.SubscriptionRepository { return &memSubscriptions{u.db} }
func (u *memUoW) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return nil
}

// filter mirrors the WHERE clauses the specifications generate.
type filter struct {
	id             *uuid.UUID
	userID         *uuid.UUID
	fileKey        *string
	documentID     *uuid.UUID
	conversationID *uuid.UUID
	orderID        *string
	status         *string
	desc           bool
	limit          int
}

func parse(specs []specification.Specification) filter {
	var f filter
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			f.id = &v.ID
		case specification.UserOwnedBy:
			f.userID = &v.UserID
		case specification.ByFileKey:
			f.fileKey = &v.FileKey
		case specification.ByDocumentID:
			f.documentID = &v.DocumentID
		case specification.ByConversationID:
			f.conversationID = &v.ConversationID
		case specification.ByOrderID:
			f.orderID = &v.OrderID
		case specification.ByDocumentStatus:
			f.status = &v.Status
		case specification.OrderBy:
			f.desc = v.Desc
		case specification.Pagination:
			f.limit = v.Limit
		}
	}
	return f
}

type memDocuments struct{ db *memDB }

func (r *memDocuments) match(f filter, d *entity.Document) bool {
	return (f.id == nil || *f.id == d.Id) &&
		(f.userID == nil || *f.userID == d.UserId) &&
		(f.fileKey == nil || *f.fileKey == d.FileKey) &&
		(f.status == nil || *f.status == string(d.Status))
}

func (r *memDocuments) Create(ctx context.Context, d *entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate != nil {
		return r.db.failCreate
	}
	cp := *d
	r.db.documents[d.Id] = &cp
	return nil
}

func (r *memDocuments) Update(ctx context.Context, d *entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *d
	r.db.documents[d.Id] = &cp
	return nil
}

func (r *memDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.documents, id)
	return nil
}

func (r *memDocuments) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memDocuments) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parse(specs)
	var out []*entity.Document
	for _, d := range r.db.documents {
		if r.match(f, d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDocuments) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type memConversations struct{ db *memDB }

func (r *memConversations) Create(ctx context.Context, c *entity.Conversation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate != nil {
		return r.db.failCreate
	}
	cp := *c
	r.db.conversations[c.Id] = &cp
	return nil
}

func (r *memConversations) Update(ctx context.Context, c *entity.Conversation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *c
	r.db.conversations[c.Id] = &cp
	return nil
}

func (r *memConversations) Touch(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c, ok := r.db.conversations[id]; ok {
		now := c.CreatedAt
		c.UpdatedAt = &now
	}
	return nil
}

func (r *memConversations) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memConversations) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parse(specs)
	var out []*entity.Conversation
	for _, c := range r.db.conversations {
		if (f.id == nil || *f.id == c.Id) &&
			(f.userID == nil || *f.userID == c.UserId) &&
			(f.documentID == nil || *f.documentID == c.DocumentId) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memMessages struct{ db *memDB }

func (db *memDB) hasMessage(id uuid.UUID) bool {
	for _, m := range db.messages {
		if m.Id == id {
			return true
		}
	}
	return false
}

func (r *memMessages) CreateBulk(ctx context.Context, messages []*entity.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range messages {
		if r.db.hasMessage(m.Id) {
			continue
		}
		r.db.messages = append(r.db.messages, m)
	}
	return nil
}

func (r *memMessages) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parse(specs)
	var out []*entity.Message
	for _, m := range r.db.messages {
		if f.conversationID == nil || *f.conversationID == m.ConversationId {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.limit > 0 && len(out) > f.limit {
		out = out[:f.limit]
	}
	return out, nil
}

type memSubscriptions struct{ db *memDB }

func (r *memSubscriptions) Save(ctx context.Context, s *entity.UserSubscription) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *s
	r.db.subscriptions[s.UserId] = &cp
	return nil
}

func (r *memSubscriptions) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := parse(specs)
	for _, s := range r.db.subscriptions {
		if (f.userID == nil || *f.userID == s.UserId) && (f.orderID == nil || *f.orderID == s.OrderId) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSubscriptions) FindOneForUpdate(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error) {
	return r.FindOne(ctx, specs...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
