package conversationRepo

import (
	"context"
	"time"

	"hustlr/models"
)

// ConversationRepository defines methods for conversation data access.
type ConversationRepository interface {
	// GetOpen returns the open conversation of a phone or database.ErrNotFound.
	GetOpen(ctx context.Context, phone string) (*models.Conversation, error)
	// GetBySession returns database.ErrNotFound for an unknown session.
	GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error)
	Create(ctx context.Context, conv *models.Conversation) error
	AppendMessage(ctx context.Context, sessionID string, msg models.Message) error
	// SaveNegotiation overwrites the booking negotiation state.
	SaveNegotiation(ctx context.Context, sessionID string, n models.Negotiation) error
	// ClearNegotiation removes the draft, its state and any offered options.
	ClearNegotiation(ctx context.Context, sessionID string) error
	// Close marks the conversation closed. Closing is terminal.
	Close(ctx context.Context, sessionID string, endedAt time.Time) error
}
