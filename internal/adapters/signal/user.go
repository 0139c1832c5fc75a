package signal

import (
	"github.com/dkeye/Duet/internal/core"
)

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
) error {
	return ctl.Orch.WhoAmI(sid)
}
