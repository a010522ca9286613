package core

import (
	"io/ioutil"
	"log/slog"
	"sync"

	"github.com/asnell/dmgcore/core/audio"
	"github.com/asnell/dmgcore/core/cpu"
	"github.com/asnell/dmgcore/core/debug"
	"github.com/asnell/dmgcore/core/input/action"
	"github.com/asnell/dmgcore/core/memory"
	"github.com/asnell/dmgcore/core/timing"
	"github.com/asnell/dmgcore/core/video"
)

// cyclesPerFrame is the number of machine cycles in one 70224 T-state
// Game Boy frame.
const cyclesPerFrame = 70224 / 4

// DebuggerState represents the current debugger mode
type DebuggerState int

const (
	DebuggerRunning   DebuggerState = iota // Normal execution
	DebuggerPaused                         // Paused, waiting for commands
	DebuggerStep                           // Execute one instruction then pause
	DebuggerStepFrame                      // Execute one frame then pause
)

// DMG is the root struct and entry point for running the emulation; it
// implements the Emulator interface.
type DMG struct {
	bus     *Bus
	limiter timing.Limiter

	// Debugger state
	debuggerState    DebuggerState
	debuggerMutex    sync.RWMutex
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

func (e *DMG) init(mem *memory.MMU) {
	e.bus = NewBus(mem, video.NewPPU(mem))
	e.limiter = timing.NewNoOpLimiter()
}

// New creates a new emulator instance
func New() *DMG {
	e := &DMG{}
	e.init(memory.NewWithCartridge(memory.NewCartridge()))

	return e
}

// NewWithFile creates a new emulator instance and loads the file specified into it.
func NewWithFile(path string) (*DMG, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM data", "size", len(data))

	e := &DMG{}
	e.init(memory.NewWithCartridge(memory.NewCartridgeWithData(data)))

	return e, nil
}

// stepCycle advances every peripheral by exactly one machine cycle, in the
// order real hardware resolves them: I/O-owned peripherals and the PPU see
// this cycle's state before the CPU acts on it.
func (e *DMG) stepCycle() {
	e.bus.StepCycle()
	e.instructionCount++
}

// RunUntilFrame advances the emulator to the next frame boundary, honoring
// whatever debugger state is currently active.
func (e *DMG) RunUntilFrame() error {
	e.debuggerMutex.RLock()
	state := e.debuggerState
	e.debuggerMutex.RUnlock()

	if state == DebuggerPaused {
		return nil
	}

	if state == DebuggerStep {
		e.debuggerMutex.Lock()
		if e.stepRequested {
			e.stepRequested = false
			e.debuggerMutex.Unlock()

			oldPC := e.bus.CPU.GetPC()
			for {
				e.stepCycle()
				if e.bus.CPU.GetPC() != oldPC {
					break
				}
			}

			e.SetDebuggerState(DebuggerPaused)
		} else {
			e.debuggerMutex.Unlock()
		}
		return nil
	}

	if state == DebuggerStepFrame {
		e.debuggerMutex.Lock()
		frameRequested := e.frameRequested
		if frameRequested {
			e.frameRequested = false
		}
		e.debuggerMutex.Unlock()

		if frameRequested {
			for i := 0; i < cyclesPerFrame; i++ {
				e.stepCycle()
			}
			e.frameCount++
			slog.Debug("Frame step completed", "frame", e.frameCount, "cycles", e.instructionCount)
			e.SetDebuggerState(DebuggerPaused)
		}
		return nil
	}

	// Normal execution (DebuggerRunning)
	for i := 0; i < cyclesPerFrame; i++ {
		e.stepCycle()
	}
	e.frameCount++
	if e.frameCount%60 == 0 {
		slog.Debug("Frame completed", "frame", e.frameCount, "pc", e.bus.CPU.GetPC())
	}
	e.limiter.WaitForNextFrame()
	return nil
}

func (e *DMG) GetCurrentFrame() *video.FrameBuffer {
	return e.bus.GPU.GetFrameBuffer()
}

func (e *DMG) HandleKeyPress(key memory.JoypadKey) {
	e.bus.MMU.HandleKeyPress(key)
}

func (e *DMG) HandleKeyRelease(key memory.JoypadKey) {
	e.bus.MMU.HandleKeyRelease(key)
}

func (e *DMG) GetCPU() *cpu.CPU {
	return e.bus.CPU
}

// Debugger control methods
func (e *DMG) SetDebuggerState(state DebuggerState) {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.debuggerState = state
	slog.Debug("Debugger state changed", "state", state)
}

func (e *DMG) GetDebuggerState() DebuggerState {
	e.debuggerMutex.RLock()
	defer e.debuggerMutex.RUnlock()
	return e.debuggerState
}

func (e *DMG) DebuggerPause() {
	e.SetDebuggerState(DebuggerPaused)
	slog.Info("Emulator paused")
}

func (e *DMG) DebuggerResume() {
	e.SetDebuggerState(DebuggerRunning)
	slog.Info("Emulator resumed")
}

func (e *DMG) DebuggerStepInstruction() {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.stepRequested = true
	e.debuggerState = DebuggerStep
	slog.Info("Step instruction requested")
}

func (e *DMG) DebuggerStepFrame() {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.frameRequested = true
	e.debuggerState = DebuggerStepFrame
	slog.Info("Step frame requested")
}

// GetInstructionCount returns the number of machine cycles stepped so far
// (stepCycle increments it once per cycle, not once per instruction).
func (e *DMG) GetInstructionCount() uint64 {
	return e.instructionCount
}

func (e *DMG) GetFrameCount() uint64 {
	return e.frameCount
}

func (e *DMG) GetMMU() *memory.MMU {
	return e.bus.MMU
}

var joypadKeyByAction = map[action.Action]memory.JoypadKey{
	action.GBButtonA:      memory.JoypadA,
	action.GBButtonB:      memory.JoypadB,
	action.GBButtonStart:  memory.JoypadStart,
	action.GBButtonSelect: memory.JoypadSelect,
	action.GBDPadUp:       memory.JoypadUp,
	action.GBDPadDown:     memory.JoypadDown,
	action.GBDPadLeft:     memory.JoypadLeft,
	action.GBDPadRight:    memory.JoypadRight,
}

// HandleAction routes a backend-reported action to the joypad; actions
// outside the Game Boy input category (debug toggles, snapshots, ...) are
// the backend's own responsibility and are ignored here.
func (e *DMG) HandleAction(act action.Action, pressed bool) {
	key, ok := joypadKeyByAction[act]
	if !ok {
		return
	}
	if pressed {
		e.HandleKeyPress(key)
	} else {
		e.HandleKeyRelease(key)
	}
}

// ExtractDebugData snapshots CPU/memory state for a debug view. Returns nil
// before the bus has been initialized (e.g. a zero-value DMG in a test).
func (e *DMG) ExtractDebugData() *debug.CompleteDebugData {
	if e.bus == nil {
		return nil
	}

	c := e.bus.CPU
	const snapshotSize = 16
	start := c.GetPC()
	if start > 0xFFFF-snapshotSize {
		start = 0xFFFF - snapshotSize
	}
	bytes := make([]byte, snapshotSize)
	for i := 0; i < snapshotSize; i++ {
		bytes[i] = e.bus.Read(start + uint16(i))
	}

	return &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			A: c.GetA(), F: c.GetF(), B: c.GetB(), C: c.GetC(),
			D: c.GetD(), E: c.GetE(), H: c.GetH(), L: c.GetL(),
			SP: c.GetSP(), PC: c.GetPC(), IME: c.IME(), Cycles: e.instructionCount,
		},
		Memory: &debug.MemorySnapshot{
			StartAddr: start,
			Bytes:     bytes,
		},
		DebuggerState:   debug.DebuggerState(e.GetDebuggerState()),
		InterruptEnable: e.bus.Read(0xFFFF),
		InterruptFlags:  e.bus.Read(0xFF0F),
	}
}

// SetFrameLimiter installs a frame pacing strategy; nil disables pacing.
func (e *DMG) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		e.limiter = timing.NewNoOpLimiter()
	} else {
		e.limiter = limiter
	}
}

func (e *DMG) ResetFrameTiming() {
	e.limiter.Reset()
}

// GetAudioProvider exposes the APU for backends that render audio.
func (e *DMG) GetAudioProvider() audio.SoundProvider {
	return e.bus.MMU.APU
}
