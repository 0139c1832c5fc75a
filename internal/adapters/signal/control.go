package signal

import (
	"time"

	"github.com/dkeye/Duet/internal/core"
)

// handlePing answers with the server clock so clients can estimate skew.
func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type       string `json:"type"`
		ServerTime int64  `json:"server_time"`
	}{
		Type:       core.EventPong,
		ServerTime: time.Now().UnixMilli(),
	}
	ctl.sendJSON(conn, resp)
}
