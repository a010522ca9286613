package backend

import (
	"github.com/asnell/dmgcore/core/audio"
	"github.com/asnell/dmgcore/core/debug"
	"github.com/asnell/dmgcore/core/input/action"
	"github.com/asnell/dmgcore/core/input/event"
	"github.com/asnell/dmgcore/core/video"
)

// InputEvent pairs a logical input action with whether it was pressed,
// held, or released, independent of which physical key or button produced
// it on the underlying platform.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Backend is a complete host platform: it owns rendering, raw input
// capture, and whatever debug/snapshot extras it supports. A single
// emulator core drives one Backend at a time (terminal, SDL2 window, or a
// headless runner for batch/test use), chosen at startup.
type Backend interface {
	// Init configures the backend; callers must invoke it once before the
	// first Update.
	Init(config BackendConfig) error

	// Update renders frame (or a test pattern, if configured) and drains
	// whatever platform input arrived since the previous call, translated
	// to InputEvents.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases any platform resources the backend acquired in Init.
	Cleanup() error
}

// DebugCapable is implemented by backends that can render a live view of
// PPU/APU internals (tile maps, OAM, register state) alongside the frame,
// gated behind BackendConfig.ShowDebug.
type DebugCapable interface {
	Backend
	SetDebugProvider(DebugDataProvider)
}

// DebugDataProvider exposes just enough of the emulator for a debug
// overlay to draw from, without handing the backend the full emulator.
type DebugDataProvider interface {
	// ExtractDebugData returns complete debug data for visualization, or
	// nil if none is available yet (e.g. before the first frame).
	ExtractDebugData() *debug.CompleteDebugData
}

// BackendConfig is the configuration a Backend.Init call receives. Fields
// a given backend has no use for (e.g. VSync on a terminal backend) are
// simply ignored rather than erroring.
type BackendConfig struct {
	Title       string
	Scale       int
	VSync       bool
	Fullscreen  bool
	ShowDebug   bool // backends may ignore unsupported features
	TestPattern bool // display a synthetic pattern instead of the running ROM

	DebugProvider DebugDataProvider  // optional: backends with a debug overlay
	Sound         audio.SoundProvider // optional: backends with audio output
}
