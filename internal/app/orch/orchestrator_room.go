package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// StartConversation resolves (or creates) the conversation between the
// session's user and peer, joins its room and replays its history.
// user1 is optional; when set it must be the session's own identity.
func (o *Orchestrator) StartConversation(ctx context.Context, sid core.SessionID, user1, peer domain.UserID) error {
	sess, err := o.session(sid)
	if err != nil {
		return err
	}
	me, err := identity(sess)
	if err != nil {
		return o.fail(sid, sess, err)
	}
	if user1 != 0 && user1 != me.ID {
		return o.fail(sid, sess, domain.ErrNotParticipant)
	}
	if peer == me.ID {
		return o.fail(sid, sess, domain.ErrSameUser)
	}
	if _, err := o.Directory.Lookup(ctx, peer); err != nil {
		return o.fail(sid, sess, err)
	}

	prev := o.Registry.State(sid)
	o.Registry.SetState(sid, app.StateAwaitingConversation)
	id, err := o.Resolver.ResolveOrCreate(ctx, me.ID, peer)
	if err != nil {
		o.Registry.SetState(sid, prev)
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Int64("peer", int64(peer)).Msg("resolve conversation")
		return o.fail(sid, sess, err)
	}

	if err := o.send(sess, core.ConversationStartedEvent{Type: core.EventConversationStarted, ConversationID: id}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("conversation started not delivered")
	}
	return o.enterRoom(ctx, sid, sess, id)
}

// JoinConversation (re)joins a known conversation, e.g. after reconnecting.
func (o *Orchestrator) JoinConversation(ctx context.Context, sid core.SessionID, id domain.ConversationID) error {
	sess, err := o.session(sid)
	if err != nil {
		return err
	}
	me, err := identity(sess)
	if err != nil {
		return o.fail(sid, sess, err)
	}
	conv, err := o.Conversations.GetConversation(ctx, id)
	if err != nil {
		return o.fail(sid, sess, err)
	}
	if !conv.HasParticipant(me.ID) {
		return o.fail(sid, sess, domain.ErrNotParticipant)
	}
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Int64("peer", int64(conv.Peer(me.ID))).Msg("rejoin")
	return o.enterRoom(ctx, sid, sess, id)
}

// enterRoom joins the room and pushes full history to this session only.
// History is queued under the room ordering lock, before any live message.
func (o *Orchestrator) enterRoom(ctx context.Context, sid core.SessionID, sess core.MemberSession, id domain.ConversationID) error {
	err := o.Rooms.Join(id, sid, sess, func() error {
		msgs, err := o.Messages.ReadOrdered(ctx, id)
		if err != nil {
			return err
		}
		return o.send(sess, core.NewLoadOldMessages(id, msgs))
	})
	if err != nil {
		o.Registry.SetState(sid, app.StateIdle)
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Int64("conversation", int64(id)).Msg("join room")
		return o.fail(sid, sess, err)
	}
	o.Registry.SetState(sid, app.StateInRoom)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int64("conversation", int64(id)).Msg("in room")
	return nil
}
