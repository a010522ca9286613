package memory

import "github.com/asnell/dmgcore/core/bit"

// JoypadKey represents a key on the Game Boy joypad.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad models the P1 register: two selectable, active-low 4-bit groups
// (buttons and d-pad) multiplexed onto the same four input lines.
type Joypad struct {
	buttons uint8 // active-low state of A/B/Select/Start
	dpad    uint8 // active-low state of Right/Left/Up/Down
	select_ uint8 // raw P1 bits 4-5 as last written

	JoypadInterruptHandler func()
}

// NewJoypad creates a Joypad with no keys pressed.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
		select_: 0x30,
	}
}

// Read returns the P1 register: bits 6-7 always 1, bits 4-5 echo the
// selection, bits 0-3 are the active-low state of whichever group(s) are
// selected (ANDed together if both are selected, 0x0F if neither is).
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | (j.select_ & 0x30)

	selectButtons := j.select_&0x20 == 0
	selectDpad := j.select_&0x10 == 0

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the selection bits (4-5); the rest of P1 is read-only.
func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0x30
}

// Press marks a key as held, raising the Joypad interrupt on the
// high-to-low (key-down) transition.
func (j *Joypad) Press(key JoypadKey) {
	beforeButtons, beforeDpad := j.buttons, j.dpad
	switch key {
	case JoypadRight:
		j.dpad = bit.Reset(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Reset(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Reset(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Reset(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Reset(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Reset(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Reset(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Reset(3, j.buttons)
	}

	// any bit that went from 1 to 0 is a key-down transition
	if (beforeButtons&^j.buttons|beforeDpad&^j.dpad)&0x0F != 0 && j.JoypadInterruptHandler != nil {
		j.JoypadInterruptHandler()
	}
}

// Release marks a key as no longer held.
func (j *Joypad) Release(key JoypadKey) {
	switch key {
	case JoypadRight:
		j.dpad = bit.Set(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Set(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Set(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Set(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Set(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Set(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Set(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Set(3, j.buttons)
	}
}

// Sync applies an external event-source snapshot: presses/releases each key
// to match pressed; any key-down transition raises the interrupt via Press.
func (j *Joypad) Sync(pressed [8]bool) {
	keys := [8]JoypadKey{JoypadRight, JoypadLeft, JoypadUp, JoypadDown, JoypadA, JoypadB, JoypadSelect, JoypadStart}
	for i, key := range keys {
		if pressed[i] {
			j.Press(key)
		} else {
			j.Release(key)
		}
	}
}
