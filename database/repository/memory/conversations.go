package memoryRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hustlr/database"
	"hustlr/models"
)

type ConversationRepo struct {
	mu    sync.RWMutex
	convs map[string]*models.Conversation // keyed by session id
}

func NewConversationRepo() *ConversationRepo {
	return &ConversationRepo{convs: make(map[string]*models.Conversation)}
}

func cloneConversation(c *models.Conversation) *models.Conversation {
	out := *c
	out.Messages = append([]models.Message(nil), c.Messages...)
	if c.Draft != nil {
		d := *c.Draft
		if d.Address != nil {
			a := *d.Address
			d.Address = &a
		}
		out.Draft = &d
	}
	out.ProviderOptions = append([]models.ProviderOption(nil), c.ProviderOptions...)
	out.AddressOptions = append([]models.Address(nil), c.AddressOptions...)
	return &out
}

func (r *ConversationRepo) GetOpen(_ context.Context, phone string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Conversation
	for _, c := range r.convs {
		if c.Phone == phone && c.Status == models.StatusOpen {
			if latest == nil || c.StartedAt.After(latest.StartedAt) {
				latest = c
			}
		}
	}
	if latest == nil {
		return nil, database.ErrNotFound
	}
	return cloneConversation(latest), nil
}

func (r *ConversationRepo) GetBySession(_ context.Context, sessionID string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.convs[sessionID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneConversation(c), nil
}

func (r *ConversationRepo) Create(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.convs[conv.SessionID]; exists {
		return fmt.Errorf("conversation %s already exists", conv.SessionID)
	}
	r.convs[conv.SessionID] = cloneConversation(conv)
	return nil
}

func (r *ConversationRepo) mutate(sessionID string, fn func(c *models.Conversation)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[sessionID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", sessionID, database.ErrNotFound)
	}
	fn(c)
	return nil
}

func (r *ConversationRepo) AppendMessage(_ context.Context, sessionID string, msg models.Message) error {
	return r.mutate(sessionID, func(c *models.Conversation) {
		c.Messages = append(c.Messages, msg)
	})
}

func (r *ConversationRepo) SaveNegotiation(_ context.Context, sessionID string, n models.Negotiation) error {
	return r.mutate(sessionID, func(c *models.Conversation) {
		tmp := models.Conversation{Negotiation: n}
		c.Negotiation = cloneConversation(&tmp).Negotiation
	})
}

func (r *ConversationRepo) ClearNegotiation(_ context.Context, sessionID string) error {
	return r.mutate(sessionID, func(c *models.Conversation) {
		c.Negotiation = models.Negotiation{}
	})
}

func (r *ConversationRepo) Close(_ context.Context, sessionID string, endedAt time.Time) error {
	return r.mutate(sessionID, func(c *models.Conversation) {
		c.Status = models.StatusClosed
		c.EndedAt = &endedAt
	})
}
