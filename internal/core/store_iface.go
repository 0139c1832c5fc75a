package core

import (
	"context"

	"github.com/dkeye/Duet/internal/domain"
)

// ConversationStore persists conversations keyed by a normalized pair.
// CreateConversation returns domain.ErrDuplicateConversation when the pair already exists.
type ConversationStore interface {
	FindConversation(ctx context.Context, pair domain.Pair) (*domain.Conversation, error)
	CreateConversation(ctx context.Context, pair domain.Pair) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error)
}

// MessageStore is an append-only, per-conversation ordered log.
type MessageStore interface {
	AppendMessage(ctx context.Context, id domain.ConversationID, sender domain.UserID, body string) (*domain.Message, error)
	ReadOrdered(ctx context.Context, id domain.ConversationID) ([]domain.Message, error)
}
