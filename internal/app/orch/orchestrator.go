package orch

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// Orchestrator is the session controller: it drives each connection through
// Idle -> AwaitingConversation -> InRoom -> Closed and is the only component
// that emits events to clients.
type Orchestrator struct {
	Registry      *app.Registry
	Rooms         *app.RoomBroadcaster
	Resolver      *app.Resolver
	Directory     *app.Directory
	Conversations core.ConversationStore
	Messages      core.MessageStore
	Policy        app.Policy

	// NotifySendFailure makes a failed append visible to the sender as an error event.
	NotifySendFailure bool
}

// Connect registers a freshly authenticated connection in Idle state.
func (o *Orchestrator) Connect(sid core.SessionID, user *domain.User, signal core.SignalConnection, cancel context.CancelFunc) {
	sess := core.NewMemberSession(domain.NewMember(user), signal)
	o.Registry.BindSignal(sid, sess, cancel)
}

// Disconnect is terminal: the session leaves its room and is forgotten.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	o.Rooms.Leave(sid)
	o.Registry.SetState(sid, app.StateClosed)
	o.Registry.Cancel(sid)
	o.Registry.Unbind(sid)
}

// KickBySID drops a session from its room and closes its transport.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.Rooms.Leave(sid)
	o.Registry.SetState(sid, app.StateClosed)
	if sess, ok := o.Registry.GetSession(sid); ok {
		sess.Signal().Close()
	}
	o.Registry.Cancel(sid)
	log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("session kicked")
}

// WhoAmI reports the session's identity and current conversation.
func (o *Orchestrator) WhoAmI(sid core.SessionID) error {
	sess, err := o.session(sid)
	if err != nil {
		return err
	}
	resp := core.WhoAmIEvent{Type: core.EventWhoAmI, User: *sess.Meta().User}
	if id, ok := o.Rooms.RoomOf(sid); ok {
		resp.ConversationID = id
	}
	return o.send(sess, resp)
}

func (o *Orchestrator) session(sid core.SessionID) (core.MemberSession, error) {
	if o.Registry.State(sid) == app.StateClosed {
		return nil, domain.ErrSessionClosed
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, domain.ErrSessionClosed
	}
	return sess, nil
}

func identity(sess core.MemberSession) (*domain.User, error) {
	meta := sess.Meta()
	if meta.ID() == 0 {
		return nil, domain.ErrNoIdentity
	}
	return meta.User, nil
}

func (o *Orchestrator) send(sess core.MemberSession, v any) error {
	frame, err := core.Encode(v)
	if err != nil {
		return err
	}
	return sess.Signal().TrySend(frame)
}

// fail reports err to the session only. Internal details stay in the log.
func (o *Orchestrator) fail(sid core.SessionID, sess core.MemberSession, err error) error {
	if sendErr := o.send(sess, core.NewError(ClientMessage(err))); sendErr != nil {
		log.Warn().Err(sendErr).Str("module", "orch").Str("sid", string(sid)).Msg("error event not delivered")
	}
	return err
}

func (o *Orchestrator) applyPolicy(id domain.ConversationID, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, drop := range res.Dropped {
		switch o.Policy.OnBackPressure(id, drop) {
		case app.KickMember:
			o.KickBySID(drop.SID)
		case app.DropFrame, app.NoAction:
			log.Warn().Err(drop.Err).Str("module", "orch").Str("sid", string(drop.SID)).Int64("conversation", int64(id)).Msg("frame dropped")
		}
	}
}

// ClientMessage maps an error to the short text sent in error events.
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "service temporarily unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "conversation not found"
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSameUser),
		errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrNotJoined),
		errors.Is(err, domain.ErrNoIdentity),
		errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageTooLong):
		return err.Error()
	case errors.Is(err, core.ErrBackpressure), errors.Is(err, core.ErrConnClosed):
		return "connection too slow"
	default:
		return "internal error"
	}
}
