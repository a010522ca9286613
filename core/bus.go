package core

import (
	"github.com/asnell/dmgcore/core/addr"
	"github.com/asnell/dmgcore/core/cpu"
	"github.com/asnell/dmgcore/core/memory"
	"github.com/asnell/dmgcore/core/video"
)

// Bus ties the CPU to every peripheral that shares its address space. It
// satisfies cpu.Bus, so the CPU only ever sees a plain Read/Write surface;
// everything else (stepping the PPU/APU/timer/DMA in lockstep, one machine
// cycle at a time) is driven from here.
type Bus struct {
	CPU *cpu.CPU
	MMU *memory.MMU
	GPU *video.PPU
}

func NewBus(mmu *memory.MMU, gpu *video.PPU) *Bus {
	return &Bus{CPU: cpu.New(), MMU: mmu, GPU: gpu}
}

func (b *Bus) Read(address uint16) byte {
	return b.MMU.Read(address)
}

func (b *Bus) Write(address uint16, value byte) {
	b.MMU.Write(address, value)
}

// StepCycle advances every peripheral by one machine cycle, then lets the
// CPU act on the resulting state: this is the order real hardware resolves
// a cycle in.
func (b *Bus) StepCycle() {
	b.MMU.Tick()
	b.GPU.Tick(4)
	b.MMU.APU.Tick(4)
	b.CPU.Step(b)
}

func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.MMU.RequestInterrupt(interrupt)
}

func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return b.MMU.ReadBit(index, address)
}
