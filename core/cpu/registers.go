package cpu

// Flag bit positions within F. The low nibble of F is wired to always read
// back as zero; only bits 4-7 are ever set.
const (
	FlagZ uint8 = 1 << 7
	FlagN uint8 = 1 << 6
	FlagH uint8 = 1 << 5
	FlagC uint8 = 1 << 4
)

// CPU holds the Sharp LR35902 register file and the small amount of state
// needed to drive one machine cycle at a time: the countdown until the next
// instruction boundary, and the pending/active interrupt master enable.
type CPU struct {
	A, B, C, D, E, H, L uint8
	F                   uint8
	SP, PC              uint16

	ime        bool
	imePending bool // EI schedules the master enable for after the instruction following it

	halted  bool
	stopped bool

	delay uint16 // machine cycles remaining before the next decode
}

// New returns a CPU with registers in their post-boot-ROM state, as if
// control had just been handed to the cartridge.
func New() *CPU {
	return &CPU{
		A: 0x01, F: 0xB0,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
		ime: false,
	}
}

func (c *CPU) bc() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) de() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) hl() uint16 { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) af() uint16 { return uint16(c.A)<<8 | uint16(c.F&0xF0) }

func (c *CPU) setBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) setDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) setHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }
func (c *CPU) setAF(v uint16) { c.A, c.F = uint8(v>>8), uint8(v)&0xF0 }

func (c *CPU) flag(mask uint8) bool { return c.F&mask != 0 }

func (c *CPU) setFlag(mask uint8, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

func (c *CPU) get16(r R16) uint16 {
	switch r {
	case R16BC:
		return c.bc()
	case R16DE:
		return c.de()
	case R16HL:
		return c.hl()
	case R16SP:
		return c.SP
	case R16AF:
		return c.af()
	}
	return 0
}

func (c *CPU) set16(r R16, v uint16) {
	switch r {
	case R16BC:
		c.setBC(v)
	case R16DE:
		c.setDE(v)
	case R16HL:
		c.setHL(v)
	case R16SP:
		c.SP = v
	case R16AF:
		c.setAF(v)
	}
}

func (c *CPU) get8(bus Bus, r R8, imm uint8) uint8 {
	switch r {
	case RB:
		return c.B
	case RC:
		return c.C
	case RD:
		return c.D
	case RE:
		return c.E
	case RH:
		return c.H
	case RL:
		return c.L
	case RA:
		return c.A
	case RHLInd:
		return bus.Read(c.hl())
	case RImm8:
		return imm
	}
	return 0
}

func (c *CPU) set8(bus Bus, r R8, v uint8) {
	switch r {
	case RB:
		c.B = v
	case RC:
		c.C = v
	case RD:
		c.D = v
	case RE:
		c.E = v
	case RH:
		c.H = v
	case RL:
		c.L = v
	case RA:
		c.A = v
	case RHLInd:
		bus.Write(c.hl(), v)
	}
}

// checkCondition reports whether a conditional branch should be taken given
// the current flags.
func (c *CPU) checkCondition(cond Condition) bool {
	switch cond {
	case CondAlways:
		return true
	case CondNZ:
		return !c.flag(FlagZ)
	case CondZ:
		return c.flag(FlagZ)
	case CondNC:
		return !c.flag(FlagC)
	case CondC:
		return c.flag(FlagC)
	}
	return false
}
