package cpu

// Decode reads the opcode at pc (plus however many operand bytes it needs)
// and returns a fully-formed Instruction together with its encoded size in
// bytes and its baseline cost in machine cycles. Decode never mutates cpu
// state and never writes to the bus; conditional branches are priced at
// their not-taken cost, and execute reports the extra cycles charged when a
// branch is actually taken.
//
// The opcode space is decomposed the same way the original Z80 encoding
// does: x = op>>6, y = (op>>3)&7, z = op&7, p = y>>1, q = y&1. The Game Boy
// diverges from the Z80 at a handful of slots (no IX/IY, no alternate
// register file, the 0xE0/0xE2/0xEA/0xF0/0xF2/0xFA high-page loads replacing
// Z80's IN/OUT/EX, and 11 opcodes left entirely unmapped).
func Decode(bus Bus, pc uint16) (Instruction, uint16, uint16) {
	op := bus.Read(pc)
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return decodeX0(bus, pc, op, y, z, p, q)
	case 1:
		return decodeX1(op, y, z)
	case 2:
		return decodeX2(y, z)
	default:
		return decodeX3(bus, pc, op, y, z, p, q)
	}
}

func imm8(bus Bus, pc uint16) uint8   { return bus.Read(pc + 1) }
func imm16(bus Bus, pc uint16) uint16 { return uint16(bus.Read(pc+1)) | uint16(bus.Read(pc+2))<<8 }

// rp is the group-1 register pair table (BC, DE, HL, SP), indexed by p.
func rp(p uint8) R16 { return R16(p) }

// rp2 is the group-2 register pair table (BC, DE, HL, AF) used by PUSH/POP,
// indexed by p.
func rp2(p uint8) R16 {
	if p == 3 {
		return R16AF
	}
	return R16(p)
}

// cc is the condition table (NZ, Z, NC, C), indexed by y (0-3).
func cc(y uint8) Condition { return Condition(y + 1) }

func decodeX0(bus Bus, pc uint16, op uint8, y, z, p, q uint8) (Instruction, uint16, uint16) {
	switch z {
	case 0:
		switch {
		case y == 0:
			return Instruction{Kind: KindNop}, 1, 1
		case y == 1:
			return Instruction{Kind: KindLoadSPToAddr, Imm16: imm16(bus, pc)}, 3, 5
		case y == 2:
			return Instruction{Kind: KindStop}, 2, 1
		case y == 3:
			return Instruction{Kind: KindJumpRel, Cond: CondAlways, Rel: int8(imm8(bus, pc))}, 2, 3
		default:
			return Instruction{Kind: KindJumpRel, Cond: cc(y - 4), Rel: int8(imm8(bus, pc))}, 2, 2
		}
	case 1:
		if q == 0 {
			return Instruction{Kind: KindLoad16Imm, R16: rp(p), Imm16: imm16(bus, pc)}, 3, 3
		}
		return Instruction{Kind: KindAddHL16, R16: rp(p)}, 1, 2
	case 2:
		return decodeIndirectAccAddr(p, q), 1, 2
	case 3:
		if q == 0 {
			return Instruction{Kind: KindIncDec16, ALU8: OpInc, R16: rp(p)}, 1, 2
		}
		return Instruction{Kind: KindIncDec16, ALU8: OpDec, R16: rp(p)}, 1, 2
	case 4:
		r := R8(y)
		cycles := uint16(1)
		if r == RHLInd {
			cycles = 3
		}
		return Instruction{Kind: KindALU8, ALU8: OpInc, Src: r, Dst: r}, 1, cycles
	case 5:
		r := R8(y)
		cycles := uint16(1)
		if r == RHLInd {
			cycles = 3
		}
		return Instruction{Kind: KindALU8, ALU8: OpDec, Src: r, Dst: r}, 1, cycles
	case 6:
		r := R8(y)
		cycles := uint16(2)
		size := uint16(2)
		if r == RHLInd {
			cycles = 3
		}
		return Instruction{Kind: KindLoad8, Dst: r, Src: RImm8, Imm8: imm8(bus, pc)}, size, cycles
	default: // z == 7
		return Instruction{Kind: KindALU8Fast, ALU8: accumulatorOp(y)}, 1, 1
	}
}

// decodeIndirectAccAddr handles the four LD (BC/DE/HL+/HL-),A and
// LD A,(BC/DE/HL+/HL-) forms at x=0,z=2.
func decodeIndirectAccAddr(p, q uint8) Instruction {
	var r16 R16
	switch p {
	case 0:
		r16 = R16BC
	case 1:
		r16 = R16DE
	default:
		r16 = R16HL
	}
	kind := KindLoad8
	if q == 0 {
		// LD (rp),A
		switch p {
		case 2:
			return Instruction{Kind: kind, Dst: R8None, Src: RA, R16: r16, Mode: LoadHLInc}
		case 3:
			return Instruction{Kind: kind, Dst: R8None, Src: RA, R16: r16, Mode: LoadHLDec}
		default:
			return Instruction{Kind: kind, Dst: R8None, Src: RA, R16: r16, Mode: LoadIndirectR16}
		}
	}
	switch p {
	case 2:
		return Instruction{Kind: kind, Dst: RA, Src: R8None, R16: r16, Mode: LoadHLInc}
	case 3:
		return Instruction{Kind: kind, Dst: RA, Src: R8None, R16: r16, Mode: LoadHLDec}
	default:
		return Instruction{Kind: kind, Dst: RA, Src: R8None, R16: r16, Mode: LoadIndirectR16}
	}
}

func accumulatorOp(y uint8) ALU8Op {
	switch y {
	case 0:
		return OpRlc
	case 1:
		return OpRrc
	case 2:
		return OpRl
	case 3:
		return OpRr
	case 4:
		return OpDaa
	case 5:
		return OpCpl
	case 6:
		return OpScf
	default:
		return OpCcf
	}
}

func decodeX1(op uint8, y, z uint8) (Instruction, uint16, uint16) {
	if y == 6 && z == 6 {
		return Instruction{Kind: KindHalt}, 1, 1
	}
	src, dst := R8(z), R8(y)
	cycles := uint16(1)
	if src == RHLInd || dst == RHLInd {
		cycles = 2
	}
	return Instruction{Kind: KindLoad8, Src: src, Dst: dst}, 1, cycles
}

func decodeX2(y, z uint8) (Instruction, uint16, uint16) {
	src := R8(z)
	cycles := uint16(1)
	if src == RHLInd {
		cycles = 2
	}
	return Instruction{Kind: KindALU8, ALU8: ALU8Op(y), Src: src, Dst: RA}, 1, cycles
}

func decodeX3(bus Bus, pc uint16, op uint8, y, z, p, q uint8) (Instruction, uint16, uint16) {
	switch z {
	case 0:
		switch {
		case y <= 3:
			return Instruction{Kind: KindRet, Cond: cc(y)}, 1, 2
		case y == 4:
			return Instruction{Kind: KindLoad8, Dst: R8None, Src: RA, Mode: LoadHighImm, Imm8: imm8(bus, pc)}, 2, 3
		case y == 5:
			return Instruction{Kind: KindAddSPOffset, Rel: int8(imm8(bus, pc))}, 2, 4
		case y == 6:
			return Instruction{Kind: KindLoad8, Dst: RA, Src: R8None, Mode: LoadHighImm, Imm8: imm8(bus, pc)}, 2, 3
		default:
			return Instruction{Kind: KindLoadHLSPOffset, Rel: int8(imm8(bus, pc))}, 2, 3
		}
	case 1:
		if q == 0 {
			return Instruction{Kind: KindPop, R16: rp2(p)}, 1, 3
		}
		switch p {
		case 0:
			return Instruction{Kind: KindRet, Cond: CondAlways}, 1, 4
		case 1:
			return Instruction{Kind: KindRetI}, 1, 4
		case 2:
			return Instruction{Kind: KindJumpHL}, 1, 1
		default:
			return Instruction{Kind: KindLoadSPFromHL}, 1, 2
		}
	case 2:
		switch {
		case y <= 3:
			return Instruction{Kind: KindJumpAbs, Cond: cc(y), Imm16: imm16(bus, pc)}, 3, 3
		case y == 4:
			return Instruction{Kind: KindLoad8, Dst: R8None, Src: RA, Mode: LoadHighC}, 1, 2
		case y == 5:
			return Instruction{Kind: KindLoad8, Dst: R8None, Src: RA, Mode: LoadDirectAddr, Imm16: imm16(bus, pc)}, 3, 4
		case y == 6:
			return Instruction{Kind: KindLoad8, Dst: RA, Src: R8None, Mode: LoadHighC}, 1, 2
		default:
			return Instruction{Kind: KindLoad8, Dst: RA, Src: R8None, Mode: LoadDirectAddr, Imm16: imm16(bus, pc)}, 3, 4
		}
	case 3:
		switch y {
		case 0:
			return Instruction{Kind: KindJumpAbs, Cond: CondAlways, Imm16: imm16(bus, pc)}, 3, 4
		case 1:
			return decodeCB(bus, pc)
		case 6:
			return Instruction{Kind: KindDI}, 1, 1
		case 7:
			return Instruction{Kind: KindEI}, 1, 1
		default:
			return Instruction{Kind: KindUnknown, Raw: op}, 1, 1
		}
	case 4:
		if y <= 3 {
			return Instruction{Kind: KindCall, Cond: cc(y), Imm16: imm16(bus, pc)}, 3, 3
		}
		return Instruction{Kind: KindUnknown, Raw: op}, 1, 1
	case 5:
		if q == 0 {
			return Instruction{Kind: KindPush, R16: rp2(p)}, 1, 4
		}
		if p == 0 {
			return Instruction{Kind: KindCall, Cond: CondAlways, Imm16: imm16(bus, pc)}, 3, 6
		}
		return Instruction{Kind: KindUnknown, Raw: op}, 1, 1
	case 6:
		return Instruction{Kind: KindALU8, ALU8: ALU8Op(y), Src: RImm8, Dst: RA, Imm8: imm8(bus, pc)}, 2, 2
	default: // z == 7
		return Instruction{Kind: KindRestart, Imm16: uint16(y) * 8}, 1, 4
	}
}

// decodeCB decodes the second byte of a 0xCB-prefixed instruction.
func decodeCB(bus Bus, pc uint16) (Instruction, uint16, uint16) {
	op2 := bus.Read(pc + 1)
	x2 := op2 >> 6
	y2 := (op2 >> 3) & 7
	z2 := op2 & 7
	r := R8(z2)

	switch x2 {
	case 0:
		cycles := uint16(2)
		if r == RHLInd {
			cycles = 4
		}
		return Instruction{Kind: KindALU8, ALU8: rotateShiftOp(y2), Src: r, Dst: r}, 2, cycles
	case 1:
		cycles := uint16(2)
		if r == RHLInd {
			cycles = 3
		}
		return Instruction{Kind: KindALU8, ALU8: OpBit, Src: r, Bit: y2}, 2, cycles
	case 2:
		cycles := uint16(2)
		if r == RHLInd {
			cycles = 4
		}
		return Instruction{Kind: KindALU8, ALU8: OpRes, Src: r, Dst: r, Bit: y2}, 2, cycles
	default:
		cycles := uint16(2)
		if r == RHLInd {
			cycles = 4
		}
		return Instruction{Kind: KindALU8, ALU8: OpSet, Src: r, Dst: r, Bit: y2}, 2, cycles
	}
}

func rotateShiftOp(y uint8) ALU8Op {
	switch y {
	case 0:
		return OpRlc
	case 1:
		return OpRrc
	case 2:
		return OpRl
	case 3:
		return OpRr
	case 4:
		return OpSla
	case 5:
		return OpSra
	case 6:
		return OpSwap
	default:
		return OpSrl
	}
}
