package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Duet/internal/domain"
)

// Inbound event types.
const (
	EventStartConversation = "start conversation"
	EventJoinConversation  = "join conversation"
	EventChatMessage       = "chat message"
	EventPing              = "ping"
	EventWhoAmI            = "whoami"
)

// Outbound event types. EventChatMessage is used in both directions.
const (
	EventConversationStarted = "conversation started"
	EventLoadOldMessages     = "load old messages"
	EventError               = "error"
	EventPong                = "pong"
)

type ConversationStartedEvent struct {
	Type           string                `json:"type"`
	ConversationID domain.ConversationID `json:"conversation_id"`
}

type MessageDTO struct {
	ID             domain.MessageID      `json:"id"`
	ConversationID domain.ConversationID `json:"conversation_id"`
	SenderID       domain.UserID         `json:"sender_id"`
	Message        string                `json:"message"`
	Seq            int64                 `json:"seq"`
	Timestamp      time.Time             `json:"timestamp"`
}

func NewMessageDTO(m *domain.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Message:        m.Body,
		Seq:            m.Seq,
		Timestamp:      m.Timestamp,
	}
}

type LoadOldMessagesEvent struct {
	Type           string                `json:"type"`
	ConversationID domain.ConversationID `json:"conversation_id"`
	Messages       []MessageDTO          `json:"messages"`
}

type ChatMessageEvent struct {
	Type string `json:"type"`
	MessageDTO
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type WhoAmIEvent struct {
	Type           string                `json:"type"`
	User           domain.User           `json:"user"`
	ConversationID domain.ConversationID `json:"conversation_id,omitempty"`
}

func NewLoadOldMessages(id domain.ConversationID, msgs []domain.Message) LoadOldMessagesEvent {
	out := make([]MessageDTO, 0, len(msgs))
	for i := range msgs {
		out = append(out, NewMessageDTO(&msgs[i]))
	}
	return LoadOldMessagesEvent{Type: EventLoadOldMessages, ConversationID: id, Messages: out}
}

func NewChatMessage(m *domain.Message) ChatMessageEvent {
	return ChatMessageEvent{Type: EventChatMessage, MessageDTO: NewMessageDTO(m)}
}

func NewError(msg string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: msg}
}

// Encode marshals an outbound event into a frame.
func Encode(v any) (Frame, error) {
	return json.Marshal(v)
}
