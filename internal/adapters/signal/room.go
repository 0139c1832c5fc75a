package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

type startPayload struct {
	User1ID domain.UserID `json:"user1_id" validate:"gte=0"`
	User2ID domain.UserID `json:"user2_id" validate:"required,gt=0"`
}

type joinPayload struct {
	ConversationID domain.ConversationID `json:"conversation_id" validate:"required,gt=0"`
}

type chatPayload struct {
	ConversationID domain.ConversationID `json:"conversation_id" validate:"required,gt=0"`
	SenderID       domain.UserID         `json:"sender_id" validate:"gte=0"`
	Message        string                `json:"message"`
}

func (ctl *SignalWSController) handleStart(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) error {
	var p startPayload
	if !ctl.decode(conn, data, &p) {
		return nil
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int64("peer", int64(p.User2ID)).Msg("start conversation")
	return ctl.Orch.StartConversation(ctx, sid, p.User1ID, p.User2ID)
}

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) error {
	var p joinPayload
	if !ctl.decode(conn, data, &p) {
		return nil
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int64("conversation", int64(p.ConversationID)).Msg("join")
	return ctl.Orch.JoinConversation(ctx, sid, p.ConversationID)
}

func (ctl *SignalWSController) handleChat(
	ctx context.Context,
	sid core.SessionID,
	user *domain.User,
	conn *WsSignalConn,
	data []byte,
) error {
	var p chatPayload
	if !ctl.decode(conn, data, &p) {
		return nil
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(user.ID) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Int64("user", int64(user.ID)).Msg("chat rate limited")
		ctl.sendError(conn, "rate limited")
		return nil
	}
	return ctl.Orch.ChatMessage(ctx, sid, p.ConversationID, p.SenderID, p.Message)
}
