package orch

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// ChatMessage persists a message and, only once it is stored, fans it out
// to every session in the conversation's room, sender included.
func (o *Orchestrator) ChatMessage(ctx context.Context, sid core.SessionID, id domain.ConversationID, sender domain.UserID, body string) error {
	sess, err := o.session(sid)
	if err != nil {
		return err
	}
	me, err := identity(sess)
	if err != nil {
		return o.fail(sid, sess, err)
	}
	if sender != 0 && sender != me.ID {
		return o.fail(sid, sess, domain.ErrNotParticipant)
	}
	if cur, ok := o.Rooms.RoomOf(sid); !ok || cur != id || o.Registry.State(sid) != app.StateInRoom {
		return o.fail(sid, sess, domain.ErrNotJoined)
	}
	if strings.TrimSpace(body) == "" {
		return o.fail(sid, sess, domain.ErrEmptyMessage)
	}
	if utf8.RuneCountInString(body) > domain.MaxMessageBodyLen {
		return o.fail(sid, sess, domain.ErrMessageTooLong)
	}

	res, err := o.Rooms.Publish(id, func() (core.Frame, error) {
		m, err := o.Messages.AppendMessage(ctx, id, me.ID, body)
		if err != nil {
			return nil, err
		}
		return core.Encode(core.NewChatMessage(m))
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Int64("conversation", int64(id)).Msg("append message")
		if o.NotifySendFailure {
			return o.fail(sid, sess, err)
		}
		return err
	}
	o.applyPolicy(id, res)
	return nil
}
