// Package memory models memory-mapped storage devices of the emulated
// machine.
package memory

import (
	"github.com/retromach/retromach/timing"
)

// Sync point tags used by the AmdFlash.
const (
	SyncProgram = iota
	SyncEraseSector
	SyncEraseChip
)

// JEDEC identification codes reported in autoselect mode.
const (
	ManufacturerAMD = 0x01
	DeviceAM29F040  = 0xA4
)

// Command and erase durations, in flash-clock cycles. Completion of a
// program or erase operation is observable through the status register only
// after the corresponding sync point fires.
const (
	programCycles     = 57      // ~16 us
	eraseSectorCycles = 3579545 // ~1 s
	eraseChipCycles   = 8 * eraseSectorCycles
)

const flashFreq = 3579545 * timing.Hz

// commandMask selects the address lines the command decoder sees.
const commandMask = 0x7FF

type flashState int

const (
	stateIdle flashState = iota
	stateIdent
)

type addressValue struct {
	addr  uint32
	value byte
}

// An AmdFlash emulates an AMD AM29F040-style flash chip: reads are served
// from the array, writes drive a command state machine, and the slow
// program/erase operations complete at a scheduled future time. While an
// operation is in flight, reads return the status register (DQ7 is the
// complement of the programmed bit, DQ6 toggles on every read).
type AmdFlash struct {
	name  string
	sched *timing.Scheduler
	clock timing.Clock

	data       []byte
	sectorSize int

	cmd   []addressValue
	state flashState

	busy         bool
	toggle       byte
	pendingAddr  uint32
	pendingValue byte
}

// NewAmdFlash creates a flash of the given geometry, erased to 0xFF.
func NewAmdFlash(
	name string,
	sched *timing.Scheduler,
	size, sectorSize int,
) *AmdFlash {
	if size%sectorSize != 0 {
		panic("memory: flash size must be a whole number of sectors")
	}

	f := &AmdFlash{
		name:       name,
		sched:      sched,
		clock:      timing.NewClock(flashFreq),
		data:       make([]byte, size),
		sectorSize: sectorSize,
		cmd:        make([]addressValue, 0, 8),
	}
	for i := range f.data {
		f.data[i] = 0xFF
	}

	return f
}

func (f *AmdFlash) Name() string {
	return f.name
}

// Size returns the size of the flash array in bytes.
func (f *AmdFlash) Size() int {
	return len(f.data)
}

// Busy reports whether a program or erase operation is in flight.
func (f *AmdFlash) Busy() bool {
	return f.busy
}

// Read returns the byte visible at address at time t.
func (f *AmdFlash) Read(t timing.EmuTime, addr uint32) byte {
	_ = t

	if f.busy {
		return f.readStatus()
	}

	if f.state == stateIdent {
		switch addr & 0x03 {
		case 0:
			return ManufacturerAMD
		case 1:
			return DeviceAM29F040
		default:
			return 0xFF
		}
	}

	return f.data[addr]
}

// Peek returns the byte at address without side effects.
func (f *AmdFlash) Peek(addr uint32) byte {
	return f.data[addr]
}

// readStatus emulates the status register: DQ6 toggles on every read while
// an operation is in flight, DQ7 is the complement of the value being
// programmed.
func (f *AmdFlash) readStatus() byte {
	status := f.toggle | (^f.pendingValue & 0x80)
	f.toggle ^= 0x40
	return status
}

// Write drives the command state machine with a memory-mapped write
// occurring at time t.
func (f *AmdFlash) Write(t timing.EmuTime, addr uint32, value byte) {
	if f.busy {
		return
	}

	f.cmd = append(f.cmd, addressValue{addr, value})

	switch {
	case f.checkCommandReset():
	case f.checkCommandProgram(t):
	case f.checkCommandEraseSector(t):
	case f.checkCommandEraseChip(t):
	case f.checkCommandAutoSelect():
	default:
		if !f.partialMatchAny() {
			f.softReset()
		}
	}
}

// ExecuteUntil completes the in-flight operation.
func (f *AmdFlash) ExecuteUntil(t timing.EmuTime, userData int) {
	switch userData {
	case SyncProgram:
		// Programming can only clear bits.
		f.data[f.pendingAddr] &= f.pendingValue
	case SyncEraseSector:
		sector := int(f.pendingAddr) / f.sectorSize * f.sectorSize
		for i := 0; i < f.sectorSize; i++ {
			f.data[sector+i] = 0xFF
		}
	case SyncEraseChip:
		for i := range f.data {
			f.data[i] = 0xFF
		}
	}

	f.busy = false
	f.softReset()
}

// Reset returns the chip to the idle state and cancels any in-flight
// operation, as a hardware reset pin would.
func (f *AmdFlash) Reset() {
	f.sched.RemoveSyncPoints(f)
	f.busy = false
	f.softReset()
}

func (f *AmdFlash) softReset() {
	f.cmd = f.cmd[:0]
	f.state = stateIdle
	f.toggle = 0
}

// Command sequences, addresses masked with commandMask. A zero address in
// the table matches any address.
var (
	seqProgram     = []addressValue{{0x555, 0xAA}, {0x2AA, 0x55}, {0x555, 0xA0}, {0, 0}}
	seqEraseSector = []addressValue{{0x555, 0xAA}, {0x2AA, 0x55}, {0x555, 0x80}, {0x555, 0xAA}, {0x2AA, 0x55}, {0, 0x30}}
	seqEraseChip   = []addressValue{{0x555, 0xAA}, {0x2AA, 0x55}, {0x555, 0x80}, {0x555, 0xAA}, {0x2AA, 0x55}, {0x555, 0x10}}
	seqAutoSelect  = []addressValue{{0x555, 0xAA}, {0x2AA, 0x55}, {0x555, 0x90}}
)

// partialMatch reports whether the received command sequence is a prefix of
// seq. Entries with a zero address match any address; entries with a zero
// value match any value.
func (f *AmdFlash) partialMatch(seq []addressValue) bool {
	if len(f.cmd) > len(seq) {
		return false
	}

	for i, av := range f.cmd {
		want := seq[i]
		if want.addr != 0 && av.addr&commandMask != want.addr {
			return false
		}
		if want.value != 0 && av.value != want.value {
			return false
		}
	}

	return true
}

// checkCommandReset honors 0xF0 only as the first cycle of a sequence. A
// 0xF0 in the data cycle of a program command is data, not a reset.
func (f *AmdFlash) checkCommandReset() bool {
	if f.cmd[0].value != 0xF0 {
		return false
	}

	f.softReset()

	return true
}

func (f *AmdFlash) partialMatchAny() bool {
	return f.partialMatch(seqProgram) ||
		f.partialMatch(seqEraseSector) ||
		f.partialMatch(seqEraseChip) ||
		f.partialMatch(seqAutoSelect)
}

func (f *AmdFlash) fullMatch(seq []addressValue) bool {
	return len(f.cmd) == len(seq) && f.partialMatch(seq)
}

func (f *AmdFlash) checkCommandProgram(t timing.EmuTime) bool {
	if !f.fullMatch(seqProgram) {
		return false
	}

	last := f.cmd[len(f.cmd)-1]
	f.pendingAddr = last.addr
	f.pendingValue = last.value
	f.busy = true
	f.sched.SetSyncPoint(t.Add(f.clock.Cycles(programCycles)), f, SyncProgram)

	return true
}

func (f *AmdFlash) checkCommandEraseSector(t timing.EmuTime) bool {
	if !f.fullMatch(seqEraseSector) {
		return false
	}

	f.pendingAddr = f.cmd[len(f.cmd)-1].addr
	f.pendingValue = 0
	f.busy = true
	f.sched.SetSyncPoint(
		t.Add(f.clock.Cycles(eraseSectorCycles)), f, SyncEraseSector)

	return true
}

func (f *AmdFlash) checkCommandEraseChip(t timing.EmuTime) bool {
	if !f.fullMatch(seqEraseChip) {
		return false
	}

	f.pendingValue = 0
	f.busy = true
	f.sched.SetSyncPoint(
		t.Add(f.clock.Cycles(eraseChipCycles)), f, SyncEraseChip)

	return true
}

func (f *AmdFlash) checkCommandAutoSelect() bool {
	if !f.fullMatch(seqAutoSelect) {
		return false
	}

	f.state = stateIdent
	f.cmd = f.cmd[:0]

	return true
}
