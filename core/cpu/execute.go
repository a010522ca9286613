package cpu

import (
	"log/slog"

	"github.com/asnell/dmgcore/core/addr"
)

var interruptPriority = [5]addr.Interrupt{
	addr.VBlankInterrupt,
	addr.LCDSTATInterrupt,
	addr.TimerInterrupt,
	addr.SerialInterrupt,
	addr.JoypadInterrupt,
}

// Step advances the CPU by exactly one machine cycle. The caller is
// expected to have already ticked every other peripheral for this cycle;
// interrupts raised during the current cycle are visible to the dispatch
// check below.
func (c *CPU) Step(bus Bus) {
	if c.delay > 0 {
		c.delay--
		return
	}

	if c.halted {
		if c.pendingInterrupt(bus) {
			c.halted = false
		} else {
			return
		}
	}

	if c.stopped {
		return
	}

	// The interrupt check is gated on ime as it stood BEFORE this cycle's
	// instruction runs. EI schedules imePending rather than setting ime
	// directly so that the instruction immediately following EI always
	// gets to execute once, uninterrupted, before any ISR can preempt it -
	// promoting imePending happens below, after that instruction retires.
	if c.ime && c.pendingInterrupt(bus) {
		c.dispatchInterrupt(bus)
		return
	}

	promote := c.imePending
	instr, size, baseCycles := Decode(bus, c.PC)
	c.PC += size
	extra := c.execute(bus, instr)

	if promote {
		c.imePending = false
		c.ime = true
	}

	total := baseCycles + extra
	if total == 0 {
		total = 1
	}
	c.delay = total - 1
}

func (c *CPU) pendingInterrupt(bus Bus) bool {
	return bus.Read(addr.IF)&bus.Read(addr.IE)&0x1F != 0
}

func (c *CPU) dispatchInterrupt(bus Bus) {
	ifReg := bus.Read(addr.IF)
	ieReg := bus.Read(addr.IE)
	active := ifReg & ieReg & 0x1F

	for _, i := range interruptPriority {
		if active&uint8(i) == 0 {
			continue
		}
		c.ime = false
		bus.Write(addr.IF, ifReg&^uint8(i))
		c.pushPC(bus)
		c.PC = addr.InterruptVector(i)
		c.delay = 5 - 1
		return
	}
}

func (c *CPU) pushPC(bus Bus) {
	c.SP -= 2
	bus.Write(c.SP, uint8(c.PC))
	bus.Write(c.SP+1, uint8(c.PC>>8))
}

// execute runs a decoded Instruction and returns any extra machine cycles
// charged beyond the baseline Decode already accounted for - this only
// happens for conditional branches that are actually taken.
func (c *CPU) execute(bus Bus, instr Instruction) uint16 {
	switch instr.Kind {
	case KindNop:
		return 0

	case KindUnknown:
		slog.Warn("unmapped opcode", "opcode", instr.Raw, "pc", c.PC)
		return 0

	case KindALU8:
		return c.executeALU8(bus, instr)

	case KindALU8Fast:
		return c.executeALU8Fast(instr.ALU8)

	case KindLoad8:
		c.executeLoad8(bus, instr)
		return 0

	case KindLoad16Imm:
		c.set16(instr.R16, instr.Imm16)
		return 0

	case KindLoadSPToAddr:
		bus.Write(instr.Imm16, uint8(c.SP))
		bus.Write(instr.Imm16+1, uint8(c.SP>>8))
		return 0

	case KindLoadHLSPOffset:
		c.setHL(c.aluAddSPSigned(instr.Rel))
		return 0

	case KindLoadSPFromHL:
		c.SP = c.hl()
		return 0

	case KindIncDec16:
		v := c.get16(instr.R16)
		if instr.ALU8 == OpInc {
			c.set16(instr.R16, v+1)
		} else {
			c.set16(instr.R16, v-1)
		}
		return 0

	case KindAddHL16:
		c.setHL(c.aluAddHL16(c.get16(instr.R16)))
		return 0

	case KindAddSPOffset:
		c.SP = c.aluAddSPSigned(instr.Rel)
		return 0

	case KindPush:
		v := c.get16(instr.R16)
		c.SP -= 2
		bus.Write(c.SP, uint8(v))
		bus.Write(c.SP+1, uint8(v>>8))
		return 0

	case KindPop:
		lo := bus.Read(c.SP)
		hi := bus.Read(c.SP + 1)
		c.SP += 2
		c.set16(instr.R16, uint16(hi)<<8|uint16(lo))
		return 0

	case KindJumpRel:
		if !c.checkCondition(instr.Cond) {
			return 0
		}
		c.PC = uint16(int32(c.PC) + int32(instr.Rel))
		if instr.Cond != CondAlways {
			return 1
		}
		return 0

	case KindJumpAbs:
		if !c.checkCondition(instr.Cond) {
			return 0
		}
		c.PC = instr.Imm16
		if instr.Cond != CondAlways {
			return 1
		}
		return 0

	case KindJumpHL:
		c.PC = c.hl()
		return 0

	case KindCall:
		if !c.checkCondition(instr.Cond) {
			return 0
		}
		c.pushPC(bus)
		c.PC = instr.Imm16
		if instr.Cond != CondAlways {
			return 3
		}
		return 0

	case KindRet:
		if !c.checkCondition(instr.Cond) {
			return 0
		}
		c.returnFromStack(bus)
		if instr.Cond != CondAlways {
			return 3
		}
		return 0

	case KindRetI:
		c.returnFromStack(bus)
		c.ime = true
		c.imePending = false
		return 0

	case KindRestart:
		c.pushPC(bus)
		c.PC = instr.Imm16
		return 0

	case KindDI:
		c.ime = false
		c.imePending = false
		return 0

	case KindEI:
		c.imePending = true
		return 0

	case KindHalt:
		c.halted = true
		return 0

	case KindStop:
		c.stopped = true
		return 0
	}
	return 0
}

func (c *CPU) returnFromStack(bus Bus) {
	lo := bus.Read(c.SP)
	hi := bus.Read(c.SP + 1)
	c.SP += 2
	c.PC = uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) executeLoad8(bus Bus, instr Instruction) {
	switch instr.Mode {
	case LoadHLInc:
		addr := c.hl()
		if instr.Src == RA {
			bus.Write(addr, c.A)
		} else {
			c.A = bus.Read(addr)
		}
		c.setHL(addr + 1)
	case LoadHLDec:
		addr := c.hl()
		if instr.Src == RA {
			bus.Write(addr, c.A)
		} else {
			c.A = bus.Read(addr)
		}
		c.setHL(addr - 1)
	case LoadHighImm:
		target := 0xFF00 + uint16(instr.Imm8)
		if instr.Src == RA {
			bus.Write(target, c.A)
		} else {
			c.A = bus.Read(target)
		}
	case LoadHighC:
		target := 0xFF00 + uint16(c.C)
		if instr.Src == RA {
			bus.Write(target, c.A)
		} else {
			c.A = bus.Read(target)
		}
	case LoadDirectAddr:
		if instr.Src == RA {
			bus.Write(instr.Imm16, c.A)
		} else {
			c.A = bus.Read(instr.Imm16)
		}
	case LoadIndirectR16:
		target := c.get16(instr.R16)
		if instr.Src == RA {
			bus.Write(target, c.A)
		} else {
			c.A = bus.Read(target)
		}
	default:
		v := c.get8(bus, instr.Src, instr.Imm8)
		c.set8(bus, instr.Dst, v)
	}
}

func (c *CPU) executeALU8(bus Bus, instr Instruction) uint16 {
	switch instr.ALU8 {
	case OpAdd:
		c.aluAdd(c.get8(bus, instr.Src, instr.Imm8), false)
	case OpAdc:
		c.aluAdd(c.get8(bus, instr.Src, instr.Imm8), true)
	case OpSub:
		c.aluSub(c.get8(bus, instr.Src, instr.Imm8), false, false)
	case OpSbc:
		c.aluSub(c.get8(bus, instr.Src, instr.Imm8), true, false)
	case OpAnd:
		c.aluAnd(c.get8(bus, instr.Src, instr.Imm8))
	case OpXor:
		c.aluXor(c.get8(bus, instr.Src, instr.Imm8))
	case OpOr:
		c.aluOr(c.get8(bus, instr.Src, instr.Imm8))
	case OpCp:
		c.aluSub(c.get8(bus, instr.Src, instr.Imm8), false, true)
	case OpInc:
		c.set8(bus, instr.Dst, c.aluInc8(c.get8(bus, instr.Src, instr.Imm8)))
	case OpDec:
		c.set8(bus, instr.Dst, c.aluDec8(c.get8(bus, instr.Src, instr.Imm8)))
	case OpRlc:
		c.set8(bus, instr.Dst, c.aluRlc(c.get8(bus, instr.Src, instr.Imm8), false))
	case OpRrc:
		c.set8(bus, instr.Dst, c.aluRrc(c.get8(bus, instr.Src, instr.Imm8), false))
	case OpRl:
		c.set8(bus, instr.Dst, c.aluRl(c.get8(bus, instr.Src, instr.Imm8), false))
	case OpRr:
		c.set8(bus, instr.Dst, c.aluRr(c.get8(bus, instr.Src, instr.Imm8), false))
	case OpSla:
		c.set8(bus, instr.Dst, c.aluSla(c.get8(bus, instr.Src, instr.Imm8)))
	case OpSra:
		c.set8(bus, instr.Dst, c.aluSra(c.get8(bus, instr.Src, instr.Imm8)))
	case OpSwap:
		c.set8(bus, instr.Dst, c.aluSwap(c.get8(bus, instr.Src, instr.Imm8)))
	case OpSrl:
		c.set8(bus, instr.Dst, c.aluSrl(c.get8(bus, instr.Src, instr.Imm8)))
	case OpBit:
		c.aluBitTest(c.get8(bus, instr.Src, instr.Imm8), instr.Bit)
	case OpRes:
		c.set8(bus, instr.Dst, aluRes(c.get8(bus, instr.Src, instr.Imm8), instr.Bit))
	case OpSet:
		c.set8(bus, instr.Dst, aluSet(c.get8(bus, instr.Src, instr.Imm8), instr.Bit))
	}
	return 0
}

func (c *CPU) executeALU8Fast(op ALU8Op) uint16 {
	switch op {
	case OpRlc:
		c.A = c.aluRlc(c.A, true)
	case OpRrc:
		c.A = c.aluRrc(c.A, true)
	case OpRl:
		c.A = c.aluRl(c.A, true)
	case OpRr:
		c.A = c.aluRr(c.A, true)
	case OpDaa:
		c.aluDaa()
	case OpCpl:
		c.aluCpl()
	case OpScf:
		c.aluScf()
	case OpCcf:
		c.aluCcf()
	}
	return 0
}
