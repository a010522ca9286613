package memory

import "github.com/asnell/dmgcore/core/addr"

// order is fixed priority, VBlank highest.
var interruptPriority = [5]addr.Interrupt{
	addr.VBlankInterrupt,
	addr.LCDSTATInterrupt,
	addr.TimerInterrupt,
	addr.SerialInterrupt,
	addr.JoypadInterrupt,
}

// InterruptController holds the 5-bit flag and enable registers (IF/IE) and
// resolves which interrupt, if any, should be dispatched next.
type InterruptController struct {
	flag   uint8
	enable uint8
}

func (ic *InterruptController) readFlag() uint8 {
	// Unused top 3 bits always read back as 1.
	return ic.flag | 0xE0
}

func (ic *InterruptController) writeFlag(v uint8) {
	ic.flag = v & 0x1F
}

func (ic *InterruptController) readEnable() uint8 {
	return ic.enable
}

func (ic *InterruptController) writeEnable(v uint8) {
	ic.enable = v & 0x1F
}

func (ic *InterruptController) request(i addr.Interrupt) {
	ic.flag |= uint8(i)
}

// Pending reports whether any enabled interrupt is currently flagged,
// irrespective of the master enable flag in the CPU.
func (ic *InterruptController) Pending() bool {
	return ic.flag&ic.enable&0x1F != 0
}

// PendingVector returns the dispatch vector of the highest-priority
// interrupt that is both flagged and enabled, and true if one exists.
func (ic *InterruptController) PendingVector() (uint16, addr.Interrupt, bool) {
	active := ic.flag & ic.enable & 0x1F
	for _, i := range interruptPriority {
		if active&uint8(i) != 0 {
			return addr.InterruptVector(i), i, true
		}
	}
	return 0, 0, false
}

// Acknowledge clears the flag bit for the given interrupt, as done by the
// CPU when it begins servicing it.
func (ic *InterruptController) Acknowledge(i addr.Interrupt) {
	ic.flag &^= uint8(i)
}
