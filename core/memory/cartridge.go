package memory

const titleLength = 16

const (
	titleAddress          = 0x134
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	destinationAddress    = 0x14A
	oldLicenseeAddress    = 0x14B
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D
)

// MBCType identifies which mapper variant a cartridge header requests.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBCUnknownType
)

// Cartridge holds the raw ROM image plus the metadata parsed out of its
// header (0x0104-0x014F), used to pick a mapper and to display info about
// the loaded game.
type Cartridge struct {
	data []byte

	Title        string
	CartType     uint8
	RomSize      uint8
	RamSize      uint8
	Destination  uint8
	OldLicensee  uint8
	Version      uint8
	HeaderChecksumOK bool

	mbcType      MBCType
	hasBattery   bool
	ramBankCount uint8
}

// NewCartridge creates an empty cartridge, useful only for debugging/tests
// with no ROM loaded (reads return zeroed data).
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x8000),
		mbcType: NoMBCType,
	}
}

// NewCartridgeWithData parses a ROM image's header and prepares the
// cartridge for use with NewWithCartridge.
func NewCartridgeWithData(data []byte) *Cartridge {
	cart := &Cartridge{data: data}

	if len(data) > titleAddress+titleLength {
		cart.Title = cleanGameboyTitle(data[titleAddress : titleAddress+titleLength])
	}
	if len(data) > headerChecksumAddress {
		cart.CartType = data[cartridgeTypeAddress]
		cart.RomSize = data[romSizeAddress]
		cart.RamSize = data[ramSizeAddress]
		cart.Destination = data[destinationAddress]
		cart.OldLicensee = data[oldLicenseeAddress]
		cart.Version = data[versionNumberAddress]
		cart.HeaderChecksumOK = verifyHeaderChecksum(data)
	}

	cart.mbcType, cart.hasBattery = classifyMBC(cart.CartType)
	cart.ramBankCount = ramBankCountFor(cart.RamSize)

	return cart
}

// verifyHeaderChecksum reproduces the boot ROM's header checksum: it must
// equal the stored byte at 0x014D, but a mismatch is informational only
// (Non-goal: the emulator never refuses to run a ROM over this).
func verifyHeaderChecksum(data []byte) bool {
	var sum uint8
	for i := 0x134; i <= 0x14C; i++ {
		sum = sum - data[i] - 1
	}
	return sum == data[headerChecksumAddress]
}

func classifyMBC(cartType uint8) (MBCType, bool) {
	switch cartType {
	case 0x00:
		return NoMBCType, false
	case 0x01, 0x02:
		return MBC1Type, false
	case 0x03:
		return MBC1Type, true
	default:
		// Any mapper beyond MBC1 is out of scope; fall back to treating the
		// image as a plain ROM rather than failing to load it.
		return NoMBCType, false
	}
}

func ramBankCountFor(ramSizeCode uint8) uint8 {
	switch ramSizeCode {
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// ReadByte reads a byte directly from the backing ROM image, bypassing any
// mapper logic. Used for header inspection.
func (c *Cartridge) ReadByte(addr uint16) uint8 {
	if int(addr) >= len(c.data) {
		return 0xFF
	}
	return c.data[addr]
}
