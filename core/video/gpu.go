package video

import (
	"fmt"
	"log/slog"

	"github.com/asnell/dmgcore/core/addr"
	"github.com/asnell/dmgcore/core/bit"
	"github.com/asnell/dmgcore/core/memory"
)

// Mode identifies which of the four scan stages the PPU is currently
// running. The numeric values double as the STAT register's bits 1:0, so
// setMode can write them through unchanged.
type Mode int

const (
	modeHBlank  Mode = 0 // CPU may access VRAM and OAM
	modeVBlank  Mode = 1 // CPU may access VRAM and OAM
	modeOAMScan Mode = 2 // OAM is locked to the CPU
	modeDraw    Mode = 3 // VRAM and OAM are both locked to the CPU
)

const (
	hblankCycles       = 204
	oamScanlineCycles  = 80
	vramScanlineCycles = 172
	scanlineCycles     = oamScanlineCycles + vramScanlineCycles + hblankCycles
)

// PPU reproduces the DMG picture-generation pipeline: a four-stage mode
// timer driving scanline rendering, one scanline composited in full the
// moment the draw stage begins rather than pixel-by-pixel.
type PPU struct {
	memory        *memory.MMU
	framebuffer   *FrameBuffer
	oam           *OAM
	bgPixelBuffer []byte // per-pixel BG/window color index, consulted for sprite priority

	mode                 Mode
	line                 int // LY: the scanline currently being timed (0-153)
	cycles               int // cycles elapsed in the current mode
	modeCounterAux       int // secondary counter used while timing the ten VBlank lines
	vBlankLine           int // which of the ten VBlank lines is active (0-9)
	pixelCounter         int // retained for callers that redraw a scanline incrementally
	tileCycleCounter     int
	isScanLineTransfered bool
	windowLine           int // internal window-only line counter (0-143)
}

func NewPPU(mmu *memory.MMU) *PPU {
	p := &PPU{
		framebuffer:   NewFrameBuffer(),
		memory:        mmu,
		oam:           NewOAM(mmu),
		bgPixelBuffer: make([]byte, FramebufferSize),
		mode:          modeVBlank,
		line:          144,
	}

	lcdc := mmu.Read(addr.LCDC)
	bgp := mmu.Read(addr.BGP)
	slog.Debug("ppu initialized", "LCDC", fmt.Sprintf("0x%02X", lcdc), "lcd_enabled", lcdc&0x80 != 0, "BGP", fmt.Sprintf("0x%02X", bgp))

	return p
}

func (p *PPU) GetFrameBuffer() *FrameBuffer {
	return p.framebuffer
}

// Tick advances the mode timer by the given number of cycles, driving mode
// transitions and, on entry to the draw stage, the scanline renderer.
func (p *PPU) Tick(cycles int) {
	p.cycles += cycles

	switch p.mode {
	case modeHBlank:
		p.stepHBlank()
	case modeVBlank:
		p.stepVBlank(cycles)
	case modeOAMScan:
		p.stepOAMScan()
	case modeDraw:
		p.stepDraw()
	}

	if p.cycles >= 70224 {
		p.cycles -= 70224
	}
}

func (p *PPU) stepHBlank() {
	if p.cycles < hblankCycles {
		return
	}
	p.cycles -= hblankCycles
	p.setMode(modeOAMScan)
	p.setLY(p.line + 1)

	if p.line == 144 {
		p.setMode(modeVBlank)
		p.vBlankLine = 0
		p.modeCounterAux = p.cycles
		p.windowLine = 0

		p.memory.RequestInterrupt(addr.VBlankInterrupt)
		if p.memory.ReadBit(statVblankIrq, addr.STAT) {
			p.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
		return
	}

	if p.memory.ReadBit(statOamIrq, addr.STAT) {
		p.memory.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

func (p *PPU) stepVBlank(cycles int) {
	p.modeCounterAux += cycles

	if p.modeCounterAux >= scanlineCycles {
		p.modeCounterAux -= scanlineCycles
		p.vBlankLine++
		if p.vBlankLine <= 9 {
			p.setLY(p.line + 1)
		}
	}

	if p.cycles >= 4104 && p.modeCounterAux >= 4 && p.line == 153 {
		p.setLY(0)
	}

	if p.cycles >= 4560 {
		p.cycles -= 4560
		p.setMode(modeOAMScan)
		if p.memory.ReadBit(statOamIrq, addr.STAT) {
			p.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	}
}

func (p *PPU) stepOAMScan() {
	if p.cycles < oamScanlineCycles {
		return
	}
	p.cycles -= oamScanlineCycles
	p.setMode(modeDraw)
	p.isScanLineTransfered = false
}

func (p *PPU) stepDraw() {
	if !p.isScanLineTransfered {
		if p.readLCDCVariable(lcdDisplayEnable) == 1 {
			p.drawScanline()
		}
		p.isScanLineTransfered = true
	}

	if p.cycles < vramScanlineCycles {
		return
	}
	p.pixelCounter = 0
	p.cycles -= vramScanlineCycles
	p.tileCycleCounter = 0
	p.setMode(modeHBlank)

	if p.memory.ReadBit(statHblankIrq, addr.STAT) {
		p.memory.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// drawScanline composites the whole visible line (background, then window,
// then sprites) in one pass the instant the draw stage begins.
func (p *PPU) drawScanline() {
	if p.readLCDCVariable(lcdDisplayEnable) == 0 {
		lineStart := p.line * FramebufferWidth
		for i := 0; i < FramebufferWidth; i++ {
			p.framebuffer.buffer[lineStart+i] = uint32(WhiteColor)
		}
		return
	}

	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}

// tileDataBase and tileMapBase resolve the two LCDC addressing toggles that
// both the background and window layers share.
func tileDataBase(useSignedTileSet bool) uint16 {
	if useSignedTileSet {
		return addr.TileData2
	}
	return addr.TileData0
}

func tileMapBase(useTileMapZero bool) uint16 {
	if useTileMapZero {
		return addr.TileMap0
	}
	return addr.TileMap1
}

// fetchTileRow reads the two bytes of one tile row directly, resolving the
// LCDC-selected signed/unsigned tile addressing mode, and hands them back
// as a TileRow so callers decode pixels through TileRow.GetPixel instead of
// re-deriving the bit-plane math themselves.
func fetchTileRow(mem MemoryReader, tilesAddr uint16, useSignedTileSet bool, tileIndex byte, rowInTile int) TileRow {
	var base uint16
	if useSignedTileSet {
		base = uint16(int32(tilesAddr) + int32(int8(tileIndex))*16)
	} else {
		base = tilesAddr + uint16(tileIndex)*16
	}
	rowAddr := base + uint16(rowInTile*2)
	return TileRow{Low: mem.Read(rowAddr), High: mem.Read(rowAddr + 1)}
}

func (p *PPU) drawBackground() {
	lineStart := p.line * FramebufferWidth

	if p.readLCDCVariable(bgDisplay) == 0 {
		// background disabled: every pixel shows BGP's color 0, and BG
		// priority reads as 0 so sprites always draw on top
		palette := p.memory.Read(addr.BGP)
		color := uint32(ByteToColor(palette & 0x03))
		for i := 0; i < FramebufferWidth; i++ {
			p.framebuffer.buffer[lineStart+i] = color
			p.bgPixelBuffer[lineStart+i] = 0
		}
		return
	}

	useSignedTileSet := p.readLCDCVariable(bgWindowTileDataSelect) == 0
	useTileMapZero := p.readLCDCVariable(bgTileMapDisplaySelect) == 0
	tilesAddr := tileDataBase(useSignedTileSet)
	tileMapAddr := tileMapBase(useTileMapZero)

	scrollX := p.memory.Read(addr.SCX)
	scrollY := p.memory.Read(addr.SCY)
	bgY := (p.line + int(scrollY)) & 0xFF // wraps at the 256x256 tilemap edge
	mapRow := (bgY / 8) * 32
	rowInTile := bgY % 8
	palette := p.memory.Read(addr.BGP)

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		bgX := (screenX + int(scrollX)) & 0xFF
		mapCol := bgX / 8
		colInTile := bgX % 8

		tileIndex := p.memory.Read(tileMapAddr + uint16(mapRow+mapCol))
		pixel := fetchTileRow(p.memory, tilesAddr, useSignedTileSet, tileIndex, rowInTile).GetPixel(colInTile)

		pos := lineStart + screenX
		color := (palette >> (pixel * 2)) & 0x03
		p.framebuffer.buffer[pos] = uint32(ByteToColor(color))
		p.bgPixelBuffer[pos] = color
	}
}

func (p *PPU) drawWindow() {
	if p.windowLine > 143 || p.readLCDCVariable(windowDisplayEnable) == 0 {
		return
	}

	// WX is stored with a +7 hardware offset; WX<7 wraps the uint8
	// subtraction past 159 and the bounds check below disables the window,
	// matching the real PPU's undefined behavior for that range.
	wx := p.memory.Read(addr.WX) - 7
	wy := p.memory.Read(addr.WY)
	if wx > 159 || wy > 143 || int(wy) > p.line {
		return
	}

	useSignedTileSet := p.readLCDCVariable(bgWindowTileDataSelect) == 0
	useTileMapZero := p.readLCDCVariable(windowTileMapSelect) == 0
	tilesAddr := tileDataBase(useSignedTileSet)
	tileMapAddr := tileMapBase(useTileMapZero)

	mapRow := (p.windowLine / 8) * 32
	rowInTile := p.windowLine % 8
	lineStart := p.line * FramebufferWidth
	palette := p.memory.Read(addr.BGP)

	for screenX := int(wx); screenX < FramebufferWidth; screenX++ {
		winX := screenX - int(wx)
		mapCol := winX / 8
		colInTile := winX % 8

		tileIndex := p.memory.Read(tileMapAddr + uint16(mapRow+mapCol))
		pixel := fetchTileRow(p.memory, tilesAddr, useSignedTileSet, tileIndex, rowInTile).GetPixel(colInTile)

		pos := lineStart + screenX
		color := (palette >> (pixel * 2)) & 0x03
		p.framebuffer.buffer[pos] = uint32(ByteToColor(color))
		p.bgPixelBuffer[pos] = color
	}

	p.windowLine++
}

// drawSprites asks OAM for the (already priority-resolved) sprites that
// overlap this scanline and paints only the pixels each one owns.
func (p *PPU) drawSprites() {
	if p.readLCDCVariable(spriteDisplayEnable) != 1 {
		return
	}

	lineStart := p.line * FramebufferWidth

	for _, sp := range p.oam.GetSpritesForScanline(p.line) {
		if !sp.HasPriorityForAnyPixel() {
			continue
		}

		rowInTile := p.line - int(sp.Y)
		if sp.FlipY {
			rowInTile = sp.Height - 1 - rowInTile
		}

		tileIndex := sp.TileIndex
		rowOffset := 0
		if sp.Height == 16 {
			tileIndex &= 0xFE
			if rowInTile >= 8 {
				rowInTile -= 8
				rowOffset = 16
			}
		}

		// sprites always address tile data unsigned, from 0x8000
		rowAddr := addr.TileData0 + uint16(tileIndex)*16 + uint16(rowOffset) + uint16(rowInTile*2)
		row := TileRow{Low: p.memory.Read(rowAddr), High: p.memory.Read(rowAddr + 1)}

		paletteAddr := addr.OBP0
		if sp.PaletteOBP1 {
			paletteAddr = addr.OBP1
		}
		palette := p.memory.Read(paletteAddr)

		for px := 0; px < 8; px++ {
			if !sp.HasPriorityForPixel(px) {
				continue
			}

			var pixel int
			if sp.FlipX {
				pixel = row.GetPixelFlipped(px)
			} else {
				pixel = row.GetPixel(px)
			}
			if pixel == 0 {
				continue // color 0 is always transparent for sprites
			}

			pos := lineStart + int(sp.X) + px
			if sp.BehindBG && p.bgPixelBuffer[pos] != 0 {
				continue
			}

			color := (palette >> (pixel * 2)) & 0x03
			p.framebuffer.buffer[pos] = uint32(ByteToColor(color))
		}
	}
}

// STAT register bit layout:
//
//	Bit 6 - LYC==LY interrupt enable
//	Bit 5 - Mode 2 (OAM scan) interrupt enable
//	Bit 4 - Mode 1 (VBlank) interrupt enable
//	Bit 3 - Mode 0 (HBlank) interrupt enable
//	Bit 2 - LYC==LY flag
//	Bit 1:0 - current Mode
type statFlag uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq                = 5
	statVblankIrq             = 4
	statHblankIrq             = 3
	statLycCondition          = 2
)

// LCDC register bit layout:
//
//	Bit 7 - LCD/PPU enable
//	Bit 6 - window tile map select (0=0x9800, 1=0x9C00)
//	Bit 5 - window enable
//	Bit 4 - BG/window tile data select (0=0x8800 signed, 1=0x8000 unsigned)
//	Bit 3 - BG tile map select (0=0x9800, 1=0x9C00)
//	Bit 2 - OBJ size (0=8x8, 1=8x16)
//	Bit 1 - OBJ enable
//	Bit 0 - BG/window enable (DMG) / BG-window priority (CGB)
type lcdcFlag uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect             = 6
	windowDisplayEnable             = 5
	bgWindowTileDataSelect          = 4
	bgTileMapDisplaySelect          = 3
	spriteSize                      = 2
	spriteDisplayEnable             = 1
	bgDisplay                       = 0
)

func (p *PPU) readLCDCVariable(flag lcdcFlag) byte {
	if bit.IsSet(uint8(flag), p.memory.Read(addr.LCDC)) {
		return 1
	}
	return 0
}

func (p *PPU) compareLYToLYC() {
	ly := p.memory.Read(addr.LY)
	lyc := p.memory.Read(addr.LYC)
	stat := p.memory.Read(addr.STAT)

	if ly == lyc {
		stat = bit.Set(statLycCondition, stat)
		if bit.IsSet(uint8(statLycIrq), stat) {
			p.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLycCondition, stat)
	}

	p.memory.Write(addr.STAT, stat)
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	stat := p.memory.Read(addr.STAT)
	p.memory.Write(addr.STAT, stat&0xFC|byte(mode))
}

func (p *PPU) setLY(line int) {
	p.line = line
	p.memory.Write(addr.LY, byte(p.line))
	p.compareLYToLYC()
}
