package sqlite

import (
	"context"
	"time"

	"github.com/dkeye/Duet/internal/domain"
)

// AppendMessage assigns the next per-conversation sequence number inside the
// insert statement itself, so concurrent appends can never share a seq.
func (s *Store) AppendMessage(ctx context.Context, id domain.ConversationID, sender domain.UserID, body string) (*domain.Message, error) {
	now := time.Now().UTC()
	m := &domain.Message{
		ConversationID: id,
		SenderID:       sender,
		Body:           body,
		Timestamp:      now,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, message, seq, timestamp)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?), ?)
		RETURNING id, seq`,
		id, sender, body, id, formatTime(now)).
		Scan(&m.ID, &m.Seq)
	if err != nil {
		if isForeignKeyError(err) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("insert message", err)
	}
	return m, nil
}

// ReadOrdered returns the full history in ascending sequence order.
// An unknown conversation yields an empty history.
func (s *Store) ReadOrdered(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, message, seq, timestamp
		FROM messages WHERE conversation_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, unavailable("select messages", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		var (
			m  domain.Message
			ts string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.Seq, &ts); err != nil {
			return nil, unavailable("scan message", err)
		}
		if m.Timestamp, err = parseTime(ts); err != nil {
			return nil, unavailable("parse timestamp", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate messages", err)
	}
	return msgs, nil
}
