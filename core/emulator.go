package core

import (
	"github.com/asnell/dmgcore/core/debug"
	"github.com/asnell/dmgcore/core/input/action"
	"github.com/asnell/dmgcore/core/timing"
	"github.com/asnell/dmgcore/core/video"
)

// Emulator is the interface for all emulator implementations
type Emulator interface {
	RunUntilFrame() error
	GetCurrentFrame() *video.FrameBuffer
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.CompleteDebugData
	SetFrameLimiter(limiter timing.Limiter)
	ResetFrameTiming()
}

var _ Emulator = (*DMG)(nil)
