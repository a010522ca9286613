package memory

import (
	"testing"

	"github.com/asnell/dmgcore/core/addr"
)

func TestEchoRAMMirrorsWorkRAM(t *testing.T) {
	m := New()
	for v := 0; v <= 0xFF; v++ {
		m.Write(0xE042, byte(v))
		if got := m.Read(0xC042); got != byte(v) {
			t.Fatalf("write 0xE042=%#02x: read 0xC042 = %#02x", v, got)
		}

		m.Write(0xC100, byte(v))
		if got := m.Read(0xE100); got != byte(v) {
			t.Fatalf("write 0xC100=%#02x: read 0xE100 = %#02x", v, got)
		}
	}
}

func TestOAMDMATransfer(t *testing.T) {
	m := New()

	// fill the source page (0xC000-0xC0FF, i.e. page 0xC0) with a known
	// pattern in work RAM, and trigger DMA from it.
	for i := 0; i < 256; i++ {
		m.Write(0xC000+uint16(i), byte(i))
	}
	m.Write(addr.DMA, 0xC0)

	if !m.DMAActive() {
		t.Fatalf("expected DMA to be active immediately after the DMA register write")
	}

	for i := 0; i < 160; i++ {
		m.Tick()
	}

	if m.DMAActive() {
		t.Errorf("DMA still active after 160 cycles, want finished")
	}
	for i := 0; i < 160; i++ {
		if got := m.readRaw(addr.OAMStart + uint16(i)); got != byte(i) {
			t.Errorf("OAM[%d] = %#02x, want %#02x", i, got, byte(i))
		}
	}
}

func TestDMAGatesNonHRAMAccess(t *testing.T) {
	m := New()
	m.Write(0xC000, 0x42)
	m.Write(0xFF80, 0x99)

	m.Write(addr.DMA, 0x10)

	if got := m.Read(0xC000); got != 0xFF {
		t.Errorf("read 0xC000 during DMA = %#02x, want 0xFF", got)
	}
	if got := m.Read(0xFF80); got != 0x99 {
		t.Errorf("read 0xFF80 (HRAM) during DMA = %#02x, want 0x99 (HRAM stays reachable)", got)
	}
}

func TestInterruptPriority(t *testing.T) {
	m := New()
	m.Write(addr.IE, 0x1F)
	m.RequestInterrupt(addr.VBlankInterrupt)
	m.RequestInterrupt(addr.TimerInterrupt)

	vector, which, ok := m.interrupts.PendingVector()
	if !ok || vector != 0x40 {
		t.Fatalf("PendingVector = %#04x, ok=%v, want 0x40, true", vector, ok)
	}
	m.interrupts.Acknowledge(which)

	vector, _, ok = m.interrupts.PendingVector()
	if !ok || vector != 0x50 {
		t.Fatalf("PendingVector after ack = %#04x, ok=%v, want 0x50, true", vector, ok)
	}
}

func TestTimerFallingEdgeEvery256Cycles(t *testing.T) {
	m := New()
	m.Write(addr.TAC, 0x04) // enabled, clock select 0 -> bit 9

	fired := 0
	m.timer.TimerInterruptHandler = func() { fired++ }

	cycles := 0
	for m.timer.tima == 0 {
		m.timer.Tick()
		cycles++
		if cycles > 1000 {
			t.Fatalf("TIMA never incremented")
		}
	}
	if cycles != 256 {
		t.Errorf("first TIMA increment after %d cycles, want 256", cycles)
	}

	cycles = 0
	start := m.timer.tima
	for m.timer.tima == start {
		m.timer.Tick()
		cycles++
		if cycles > 1000 {
			t.Fatalf("TIMA never incremented a second time")
		}
	}
	if cycles != 256 {
		t.Errorf("second TIMA increment after %d cycles, want 256", cycles)
	}
}
