// Package simeeprom simulates an AT28C256-family parallel EEPROM behind the
// bus.Controller interface, so engine code can run with no hardware
// attached. The model covers the behaviors the programmer depends on:
// address clamping, page-buffered write cycles, data polling while a write
// cycle is in progress, and JEDEC software data protection.
package simeeprom

import (
	"github.com/eeprom-tools/eeprog/pkg/bus"
)

// DefaultBusyPolls is how many polls a write cycle stays busy for before
// committing. Deterministic in poll counts rather than wall time so tests
// behave the same everywhere.
const DefaultBusyPolls = 24

// pulse is one latched write: the clamped address that selects the memory
// cell, the raw pre-clamp address the command decoder sees, and the data.
type pulse struct {
	addr uint32
	raw  uint32
	data byte
}

type sdpStep struct {
	addr uint32
	data byte
}

// The software data protection command sequences, as the device decodes
// them (AT28C256 datasheet). lockSeq enables protection, unlockSeq disables
// it.
var (
	lockSeq = []sdpStep{
		{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0xA0},
	}
	unlockSeq = []sdpStep{
		{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0x80},
		{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0x20},
	}
)

// Chip is one simulated device. Not safe for concurrent use, same as a real
// bus.
type Chip struct {
	maxAddr  uint32
	pageSize uint32
	mem      []byte

	// Bus state. addr is clamped to the array; rawAddr keeps the full
	// driven value, which the command decoder matches against. Real
	// command addresses lie above the array top on small geometries, so
	// decoding the clamped latch would never see them.
	addr    uint32
	rawAddr uint32
	data    byte
	dir     bus.Direction
	ce      bool
	we      bool
	oe      bool

	// Pulses latched during the current chip-enable assertion.
	burst []pulse

	// Internal write cycle.
	busy      bool
	busyPolls int
	pending   []pulse
	lastData  byte
	toggle    bool

	protected   bool
	failWrites  bool
	writeCycles int
	contentions int
}

// New returns a blank chip with the given capacity in bytes and hardware
// page size. Memory starts erased (all zeroes).
func New(capacity, pageSize uint32) *Chip {
	return &Chip{
		maxAddr:  capacity - 1,
		pageSize: pageSize,
		mem:      make([]byte, capacity),
		dir:      bus.Output,
	}
}

// FailWrites makes every subsequent write cycle hang forever: polling never
// observes completion and nothing commits. Fault double for retry tests.
func (c *Chip) FailWrites(fail bool) {
	c.failWrites = fail
}

// ReadMem reads memory directly, bypassing the bus.
func (c *Chip) ReadMem(addr uint32) byte {
	return c.mem[bus.Clamp(addr, c.maxAddr)]
}

// WriteMem writes memory directly, bypassing the bus and protection.
func (c *Chip) WriteMem(addr uint32, b byte) {
	c.mem[bus.Clamp(addr, c.maxAddr)] = b
}

// Protected reports the software data protection state.
func (c *Chip) Protected() bool {
	return c.protected
}

// WriteCycles counts internal write cycles started so far. Protection
// toggles and protected (ignored) bursts do not count.
func (c *Chip) WriteCycles() int {
	return c.writeCycles
}

// Contentions counts the times write-enable and output-enable were asserted
// at once.
func (c *Chip) Contentions() int {
	return c.contentions
}

// Idle reports whether all three control lines are deasserted. Every
// engine operation must leave the bus in this state.
func (c *Chip) Idle() bool {
	return !c.ce && !c.we && !c.oe
}

// AddrLatch exposes the current address latch, post-clamp.
func (c *Chip) AddrLatch() uint32 {
	return c.addr
}

func (c *Chip) SetAddress(addr uint32) {
	c.rawAddr = addr
	c.addr = bus.Clamp(addr, c.maxAddr)
}

func (c *Chip) SetData(b byte) {
	c.data = b
}

func (c *Chip) SetDataDirection(dir bus.Direction) {
	c.dir = dir
}

func (c *Chip) AssertCE() {
	c.ce = true
	c.burst = nil
}

func (c *Chip) DeassertCE() {
	c.ce = false
	if len(c.burst) > 0 {
		c.endBurst()
	}
	c.burst = nil
}

func (c *Chip) AssertWE() {
	c.we = true
	if c.oe {
		c.contentions++
	}
}

// DeassertWE latches the current address/data pair; the device samples on
// the trailing edge of the write pulse.
func (c *Chip) DeassertWE() {
	latch := c.we && c.ce && c.dir == bus.Output && !c.busy
	c.we = false
	if latch {
		c.burst = append(c.burst, pulse{addr: c.addr, raw: c.rawAddr, data: c.data})
	}
}

func (c *Chip) AssertOE() {
	c.oe = true
	if c.we {
		c.contentions++
	}
}

func (c *Chip) DeassertOE() {
	c.oe = false
}

// ReadData samples the data bus. With the device not selected for output the
// bus floats high. During an internal write cycle the device drives the
// complement of the last-written byte's top bit, with bit 6 toggling on
// every read; the read that observes completion returns true data.
func (c *Chip) ReadData() byte {
	if c.dir != bus.Input {
		return c.data
	}
	if !c.ce || !c.oe {
		return 0xFF
	}
	if c.busy {
		if c.failWrites {
			return c.pollByte()
		}
		c.busyPolls--
		if c.busyPolls > 0 {
			return c.pollByte()
		}
		c.commit()
	}
	return c.mem[c.addr]
}

func (c *Chip) pollByte() byte {
	c.toggle = !c.toggle
	b := (^c.lastData & 0x80) | (c.lastData & 0x3F)
	if c.toggle {
		b |= 0x40
	} else {
		b &^= 0x40
	}
	return b
}

// endBurst decodes what a completed chip-enable assertion meant: a software
// data protection command, or a page load that starts a write cycle.
func (c *Chip) endBurst() {
	if matches(c.burst, lockSeq) {
		c.protected = true
		return
	}
	if matches(c.burst, unlockSeq) {
		c.protected = false
		return
	}
	if c.protected {
		// Ordinary write pulses are ignored while protected; no write
		// cycle starts and reads keep returning array data.
		return
	}

	// The device commits only the page addressed last; pulses aimed at
	// other pages within the same assertion are discarded, as on real
	// silicon.
	last := c.burst[len(c.burst)-1]
	page := last.addr &^ (c.pageSize - 1)
	c.pending = c.pending[:0]
	for _, p := range c.burst {
		if p.addr&^(c.pageSize-1) == page {
			c.pending = append(c.pending, p)
		}
	}
	c.lastData = last.data
	c.busy = true
	c.busyPolls = DefaultBusyPolls
	c.toggle = false
	c.writeCycles++
}

func (c *Chip) commit() {
	for _, p := range c.pending {
		c.mem[p.addr] = p.data
	}
	c.pending = c.pending[:0]
	c.busy = false
}

// matches compares a burst against a command sequence on the raw driven
// addresses, not the clamped ones.
func matches(burst []pulse, seq []sdpStep) bool {
	if len(burst) != len(seq) {
		return false
	}
	for i := range seq {
		if burst[i].raw != seq[i].addr || burst[i].data != seq[i].data {
			return false
		}
	}
	return true
}
