package sqlite

import (
	"context"
	"time"

	"github.com/dkeye/Duet/internal/domain"
)

func (s *Store) FindConversation(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user1_id, user2_id FROM conversations WHERE user1_id = ? AND user2_id = ?`,
		pair.Low, pair.High).
		Scan(&c.ID, &c.User1, &c.User2)
	if isNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("select conversation", err)
	}
	return c, nil
}

// CreateConversation inserts the normalized pair. A concurrent insert of the
// same pair loses on the unique constraint and gets ErrDuplicateConversation.
func (s *Store) CreateConversation(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (user1_id, user2_id, created_at) VALUES (?, ?, ?)`,
		pair.Low, pair.High, formatTime(time.Now()))
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrDuplicateConversation
		}
		if isForeignKeyError(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("insert conversation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, unavailable("conversation id", err)
	}
	return &domain.Conversation{ID: domain.ConversationID(id), User1: pair.Low, User2: pair.High}, nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user1_id, user2_id FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.User1, &c.User2)
	if isNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("select conversation", err)
	}
	return c, nil
}
