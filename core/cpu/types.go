package cpu

// Bus is the narrow surface the CPU needs from whatever owns the address
// space. A real bus also drives the PPU/APU/timer, but the CPU only ever
// needs to read and write memory-mapped bytes, including IF/IE, which are
// ordinary registers from the CPU's point of view.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Kind identifies which shape of Instruction this is; execute switches on it.
type Kind uint8

const (
	KindNop Kind = iota
	KindUnknown
	KindALU8
	KindALU8Fast // RLCA/RRCA/RLA/RRA/DAA/CPL/SCF/CCF: always operate on A, Z forced low for the rotate forms
	KindLoad8
	KindLoad16Imm
	KindLoadSPToAddr
	KindLoadHLSPOffset
	KindLoadSPFromHL
	KindIncDec16
	KindAddHL16
	KindAddSPOffset
	KindPush
	KindPop
	KindJumpRel
	KindJumpAbs
	KindJumpHL
	KindCall
	KindRet
	KindRetI
	KindRestart
	KindDI
	KindEI
	KindHalt
	KindStop
)

// R8 names an 8-bit operand: one of the six plain registers, the (HL)
// indirect byte, an immediate embedded in the Instruction, or none.
type R8 uint8

const (
	RB R8 = iota
	RC
	RD
	RE
	RH
	RL
	RHLInd
	RA
	RImm8
	R8None
)

// R16 names a 16-bit register pair, in one of two groupings depending on
// which family of opcode references it (SP vs AF in the push/pop slot).
type R16 uint8

const (
	R16BC R16 = iota
	R16DE
	R16HL
	R16SP
	R16AF
)

// ALU8Op is an 8-bit ALU operation, dispatched on an operand fetched via R8.
type ALU8Op uint8

const (
	OpAdd ALU8Op = iota
	OpAdc
	OpSub
	OpSbc
	OpAnd
	OpXor
	OpOr
	OpCp
	OpInc
	OpDec
	OpRlc
	OpRrc
	OpRl
	OpRr
	OpSla
	OpSra
	OpSwap
	OpSrl
	OpBit
	OpRes
	OpSet
	OpDaa
	OpCpl
	OpScf
	OpCcf
)

// Condition selects which flag state gates a conditional branch.
type Condition uint8

const (
	CondAlways Condition = iota
	CondNZ
	CondZ
	CondNC
	CondC
)

// Instruction is a fully-decoded, self-contained description of one opcode:
// decode never mutates CPU state and never touches the bus beyond the bytes
// that make up the instruction itself.
type Instruction struct {
	Kind Kind

	ALU8 ALU8Op
	Src  R8
	Dst  R8
	Bit  uint8 // operand bit index for OpBit/OpRes/OpSet

	R16  R16
	Mode uint8 // disambiguates KindLoad8 variants that don't fit Src/Dst/R16 alone

	Imm8  uint8
	Imm16 uint16
	Rel   int8

	Cond Condition

	Raw uint8 // the opcode byte, for KindUnknown
}

// KindLoad8 Mode values, used only when the load's address isn't a plain
// register or (HL): the four HL+/HL- indirect forms and the three high-page
// / direct-address forms that read or write A.
const (
	LoadPlain      uint8 = 0
	LoadHLInc      uint8 = 1
	LoadHLDec      uint8 = 2
	LoadHighImm    uint8 = 3 // LD (0xFF00+n),A or LD A,(0xFF00+n)
	LoadHighC      uint8 = 4 // LD (0xFF00+C),A or LD A,(0xFF00+C)
	LoadDirectAddr  uint8 = 5 // LD (nn),A or LD A,(nn)
	LoadIndirectR16 uint8 = 6 // LD (BC/DE),A or LD A,(BC/DE), no increment/decrement
)
