package memory

import (
	"fmt"
	"log/slog"

	"github.com/asnell/dmgcore/core/addr"
	"github.com/asnell/dmgcore/core/audio"
	"github.com/asnell/dmgcore/core/bit"
	"github.com/asnell/dmgcore/core/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// MMU is the whole addressable 64KB space: cartridge (via its mapper), work
// RAM, VRAM, OAM and HRAM backed by a flat byte array, and every
// memory-mapped I/O register, dispatched to whichever peripheral owns it.
// The PPU and APU read and write their own registers and VRAM/OAM straight
// through Read/Write, exactly as the real chip does, so the MMU never needs
// a reference back to either.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	APU       *audio.APU
	regionMap [256]memRegion

	joypad     *Joypad
	interrupts InterruptController
	serial     SerialPort
	timer      Timer

	bootROM        []byte
	bootROMEnabled bool

	dma dmaState
}

// dmaState tracks an in-flight OAM DMA transfer: one byte is copied per
// machine cycle, 160 cycles total, and the bus refuses CPU access to
// anything outside HRAM while it's running.
type dmaState struct {
	active bool
	source uint16
	index  uint16
}

// New creates a new memory unit with default data, i.e. nothing cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		memory: make([]byte, 0x10000),
		cart:   NewCartridge(),
		APU:    audio.New(),
		joypad: NewJoypad(),
	}
	mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	mmu.joypad.JoypadInterruptHandler = func() { mmu.RequestInterrupt(addr.JoypadInterrupt) }
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge data loaded.
// Equivalent to turning on a Gameboy with a cartridge in.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	default:
		slog.Warn("unsupported cartridge type, falling back to plain ROM mapping", "cartType", fmt.Sprintf("0x%02X", cart.CartType))
		mmu.mbc = NewNoMBC(cart.data)
	}

	return mmu
}

// LoadBootROM installs a 256-byte boot ROM image, overlaid on 0x0000-0x00FF
// until the program disables it by writing to BootROMDisable.
func (m *MMU) LoadBootROM(data []byte) {
	m.bootROM = data
	m.bootROMEnabled = len(data) > 0
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// Tick advances every peripheral the MMU itself owns by one machine cycle:
// the timer, the serial port, and an in-flight OAM DMA transfer. The PPU and
// APU are ticked separately by whatever drives the bus, since they aren't
// reachable from here.
func (m *MMU) Tick() {
	m.timer.Tick()
	if m.serial != nil {
		m.serial.Tick(1)
	}
	m.stepDMA()
}

func (m *MMU) stepDMA() {
	if !m.dma.active {
		return
	}
	m.memory[addr.OAMStart+m.dma.index] = m.readRaw(m.dma.source + m.dma.index)
	m.dma.index++
	if m.dma.index >= 160 {
		m.dma.active = false
	}
}

// DMAActive reports whether an OAM DMA transfer is in progress; while true,
// the CPU may only access HRAM (0xFF80-0xFFFE).
func (m *MMU) DMAActive() bool {
	return m.dma.active
}

func (m *MMU) startDMA(value uint8) {
	m.dma = dmaState{active: true, source: uint16(value) << 8, index: 0}
}

// RequestInterrupt sets the corresponding bit in the IF register.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.interrupts.request(interrupt)
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}

// Read performs a CPU-visible read: gated to HRAM only during an active DMA
// transfer, per hardware.
func (m *MMU) Read(address uint16) byte {
	if m.dma.active && !isHRAM(address) {
		return 0xFF
	}
	return m.readRaw(address)
}

func isHRAM(address uint16) bool {
	return address >= 0xFF80 && address <= 0xFFFE
}

// readRaw bypasses DMA gating; used by the DMA engine itself to read its
// source bytes and by callers that need to peek regardless of a transfer.
func (m *MMU) readRaw(address uint16) byte {
	if m.bootROMEnabled && address < uint16(len(m.bootROM)) {
		return m.bootROM[address]
	}

	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		return m.memory[address]
	case regionIO:
		return m.readIO(address)
	default:
		return 0xFF
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return m.timer.Read(address)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.APU.ReadRegister(address)
	case address == addr.IF:
		return m.interrupts.readFlag()
	case address == addr.IE:
		return m.interrupts.readEnable()
	case address == addr.DMA:
		return uint8(m.dma.source >> 8)
	default:
		return m.memory[address]
	}
}

// Write performs a CPU-visible write: gated to HRAM only during an active
// DMA transfer, per hardware.
func (m *MMU) Write(address uint16, value byte) {
	if m.dma.active && !isHRAM(address) {
		return
	}

	switch m.regionMap[address>>8] {
	case regionROM:
		if m.mbc != nil {
			m.mbc.Write(address, value)
		}
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionExtRAM:
		if m.mbc != nil {
			m.mbc.Write(address, value)
		}
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		m.memory[address] = value
	case regionIO:
		m.writeIO(address, value)
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		m.timer.Write(address, value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.APU.WriteRegister(address, value)
	case address == addr.IF:
		m.interrupts.writeFlag(value)
	case address == addr.IE:
		m.interrupts.writeEnable(value)
	case address == addr.DMA:
		m.startDMA(value)
		m.memory[address] = value
	case address == addr.BootROMDisable:
		if value != 0 {
			m.bootROMEnabled = false
		}
	default:
		m.memory[address] = value
	}
}

// HandleKeyPress forwards a key-down event to the joypad, raising the
// Joypad interrupt on the high-to-low transition.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	m.joypad.Press(key)
}

// HandleKeyRelease forwards a key-up event to the joypad.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}

// Cartridge exposes the loaded cartridge's parsed header, for display/debug.
func (m *MMU) Cartridge() *Cartridge {
	return m.cart
}
