package domain

import "time"

type (
	ConversationID int64
	MessageID      int64
)

// Conversation is an unordered pair of distinct users.
// Stores keep User1 < User2.
type Conversation struct {
	ID    ConversationID `json:"id"`
	User1 UserID         `json:"user1_id"`
	User2 UserID         `json:"user2_id"`
}

// Pair is the normalized form of an unordered pair of users.
type Pair struct {
	Low  UserID
	High UserID
}

func NewPair(a, b UserID) (Pair, error) {
	if a == b {
		return Pair{}, ErrSameUser
	}
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

func (c *Conversation) HasParticipant(u UserID) bool {
	return c.User1 == u || c.User2 == u
}

// Peer returns the other participant.
func (c *Conversation) Peer(u UserID) UserID {
	if c.User1 == u {
		return c.User2
	}
	return c.User1
}

type Message struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversation_id"`
	SenderID       UserID         `json:"sender_id"`
	Body           string         `json:"message"`
	Seq            int64          `json:"seq"`
	Timestamp      time.Time      `json:"timestamp"`
}
