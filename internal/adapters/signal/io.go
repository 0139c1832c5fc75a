package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(ctl.opts.WriteTimeout))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, user *domain.User, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Disconnect(sid)
		c.Close()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(ctx, sid, user, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.SessionID, user *domain.User, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, "bad payload")
		return
	}

	var err error
	switch env.Type {
	case core.EventStartConversation:
		err = ctl.handleStart(ctx, sid, c, data)
	case core.EventJoinConversation:
		err = ctl.handleJoin(ctx, sid, c, data)
	case core.EventChatMessage:
		err = ctl.handleChat(ctx, sid, user, c, data)
	case core.EventPing:
		ctl.handlePing(c)
	case core.EventWhoAmI:
		err = ctl.handleWhoAmI(sid)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, "unknown event type")
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("event rejected")
	}
}

// decode unmarshals and validates a payload, answering the client on failure.
func (ctl *SignalWSController) decode(c *WsSignalConn, data []byte, dst any) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad payload")
		ctl.sendError(c, "bad payload")
		return false
	}
	if err := ctl.validate.Struct(dst); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("invalid payload")
		ctl.sendError(c, "invalid payload")
		return false
	}
	return true
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, v any) {
	b, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, msg string) {
	ctl.sendJSON(c, core.NewError(msg))
}
