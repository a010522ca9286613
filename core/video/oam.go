package video

import (
	"github.com/asnell/dmgcore/core/addr"
	"github.com/asnell/dmgcore/core/bit"
)

// Sprite is a single object entry read out of OAM (0xFE00-0xFE9F), with the
// Y/X hardware offsets already removed and the attribute byte pre-parsed.
type Sprite struct {
	Y         uint8
	X         uint8
	TileIndex uint8
	Flags     uint8
	OAMIndex  int // 0-39, position in OAM - lower wins ties in priority
	Height    int // 8 or 16, from LCDC bit 2

	PaletteOBP1 bool
	FlipX       bool
	FlipY       bool
	BehindBG    bool

	// PixelMask records, per-pixel (bit 7 = leftmost of the 8 the sprite
	// covers), whether this sprite won priority resolution for that pixel.
	PixelMask uint8
}

func (s *Sprite) applyFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

func (s *Sprite) HasPriorityForAnyPixel() bool {
	return s.PixelMask != 0
}

// HasPriorityForPixel reports whether this sprite owns pixel index 0-7
// (0 = leftmost) within its own 8-pixel span.
func (s *Sprite) HasPriorityForPixel(pixelX int) bool {
	if pixelX < 0 || pixelX > 7 {
		return false
	}
	return s.PixelMask&(1<<(7-pixelX)) != 0
}

// OAMBus is the subset of memory access OAM scanning needs.
type OAMBus interface {
	Read(address uint16) byte
}

// OAM models Object Attribute Memory: 40 fixed-size sprite entries plus the
// per-scanline selection and priority rules the real PPU applies while
// reading them.
type OAM struct {
	bus      OAMBus
	priority SpritePriorityBuffer
	scanline [10]Sprite // hardware caps visible sprites per line at 10
}

func NewOAM(bus OAMBus) *OAM {
	return &OAM{bus: bus}
}

func (o *OAM) spriteHeight() int {
	if bit.IsSet(2, o.bus.Read(addr.LCDC)) {
		return 16
	}
	return 8
}

func entryAddr(index int) uint16 {
	return addr.OAMStart + uint16(index*4)
}

// GetSpritesForScanline returns, in OAM order, the up-to-10 sprites that
// overlap the given line with per-pixel priority already resolved: only Y
// position affects whether a sprite counts toward the limit (Pan Docs,
// OAM selection-priority), but every sprite's PixelMask is settled before
// this returns so the caller never has to compare sprites against each
// other.
func (o *OAM) GetSpritesForScanline(scanline int) []Sprite {
	height := o.spriteHeight()
	o.priority.Clear()

	sprites := o.scanline[:0]
	for i := 0; i < 40 && len(sprites) < 10; i++ {
		base := entryAddr(i)
		y := int(o.bus.Read(base)) - 16
		if y > scanline || y+height <= scanline {
			continue
		}

		sp := Sprite{
			Y:         uint8(y),
			X:         o.bus.Read(base+1) - 8,
			TileIndex: o.bus.Read(base + 2),
			Flags:     o.bus.Read(base + 3),
			OAMIndex:  i,
			Height:    height,
		}
		sp.applyFlags()
		sprites = append(sprites, sp)

		for px := 0; px < 8; px++ {
			o.priority.TryClaimPixel(int(sp.X)+px, sp.OAMIndex, int(sp.X))
		}
	}

	for i := range sprites {
		var mask uint8
		for px := 0; px < 8; px++ {
			if o.priority.GetOwner(int(sprites[i].X)+px) == sprites[i].OAMIndex {
				mask |= 1 << (7 - px)
			}
		}
		sprites[i].PixelMask = mask
	}

	copy(o.scanline[:], sprites)
	return o.scanline[:len(sprites)]
}

// GetSprite reads a single OAM entry by index (0-39), independent of any
// scanline or priority resolution. Used by debug tooling.
func (o *OAM) GetSprite(index int) *Sprite {
	if index < 0 || index >= 40 {
		return nil
	}

	base := entryAddr(index)
	sp := Sprite{
		Y:         o.bus.Read(base) - 16,
		X:         o.bus.Read(base+1) - 8,
		TileIndex: o.bus.Read(base + 2),
		Flags:     o.bus.Read(base + 3),
		OAMIndex:  index,
		Height:    o.spriteHeight(),
	}
	sp.applyFlags()
	return &sp
}

// GetAllSprites reads every OAM entry, unfiltered. Used by debug tooling.
func (o *OAM) GetAllSprites() []Sprite {
	all := make([]Sprite, 40)
	for i := range all {
		all[i] = *o.GetSprite(i)
	}
	return all
}
