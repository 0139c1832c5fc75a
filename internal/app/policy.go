package app

import (
	"errors"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member a broadcast frame could not be queued for.
type Policy interface {
	OnBackPressure(conv domain.ConversationID, drop core.Drop) BackpressureAction
}

// SimplePolicy kicks every member that fell behind or went away. A kicked
// client reconnects and replays history, so it never observes a gap.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ domain.ConversationID, _ core.Drop) BackpressureAction {
	return KickMember
}

// LenientPolicy kicks dead connections but only drops frames for slow ones.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(_ domain.ConversationID, drop core.Drop) BackpressureAction {
	if errors.Is(drop.Err, core.ErrBackpressure) {
		return DropFrame
	}
	return KickMember
}

// PolicyByName maps a config value to a Policy. Unknown names fall back to SimplePolicy.
func PolicyByName(name string) Policy {
	if name == "lenient" {
		return LenientPolicy{}
	}
	return SimplePolicy{}
}
