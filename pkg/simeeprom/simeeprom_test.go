package simeeprom

import (
	"testing"

	"github.com/eeprom-tools/eeprog/pkg/bus"
)

// writePulse runs one complete byte write on the raw pins.
func writePulse(c *Chip, addr uint32, b byte) {
	c.SetAddress(addr)
	c.SetDataDirection(bus.Output)
	c.SetData(b)
	c.AssertCE()
	c.AssertWE()
	c.DeassertWE()
	c.DeassertCE()
}

// drainWrite polls until the current write cycle completes.
func drainWrite(c *Chip) {
	c.SetDataDirection(bus.Input)
	c.AssertCE()
	c.AssertOE()
	for i := 0; i < DefaultBusyPolls+2; i++ {
		c.ReadData()
	}
	c.DeassertOE()
	c.DeassertCE()
}

func writeSeq(c *Chip, seq []sdpStep) {
	c.SetDataDirection(bus.Output)
	c.AssertCE()
	for _, p := range seq {
		c.SetAddress(p.addr)
		c.SetData(p.data)
		c.AssertWE()
		c.DeassertWE()
	}
	c.DeassertCE()
}

func TestAddressClamp(t *testing.T) {
	c := New(1024, 64)
	c.SetAddress(1023 + 100)
	if got := c.AddrLatch(); got != 1023 {
		t.Fatalf("Address latch is 0x%X, want clamp to 0x%X", got, 1023)
	}
}

func TestWriteCycleAndPolling(t *testing.T) {
	c := New(1024, 64)
	writePulse(c, 0x0010, 0x42)

	if got := c.ReadMem(0x0010); got != 0 {
		t.Fatalf("Memory committed before the write cycle finished: got 0x%02X", got)
	}

	// While busy, the device drives the complement of bit 7.
	c.SetDataDirection(bus.Input)
	c.AssertCE()
	c.AssertOE()
	first := c.ReadData()
	if first&0x80 == 0x42&0x80 {
		t.Fatalf("Busy read returned true data bit 7: got 0x%02X", first)
	}
	second := c.ReadData()
	if first&0x40 == second&0x40 {
		t.Fatalf("Toggle bit did not toggle: 0x%02X then 0x%02X", first, second)
	}
	for i := 0; i < DefaultBusyPolls; i++ {
		c.ReadData()
	}
	if got := c.ReadData(); got != 0x42 {
		t.Fatalf("Read after write cycle got 0x%02X, want 0x42", got)
	}
	c.DeassertOE()
	c.DeassertCE()

	if got := c.ReadMem(0x0010); got != 0x42 {
		t.Fatalf("Memory holds 0x%02X, want 0x42", got)
	}
	if got := c.WriteCycles(); got != 1 {
		t.Fatalf("WriteCycles() = %d, want 1", got)
	}
}

func TestPageBurstCommitsLastPageOnly(t *testing.T) {
	c := New(1024, 64)

	// Two pulses to page 0, then two to page 1, all in one assertion.
	c.SetDataDirection(bus.Output)
	c.AssertCE()
	for _, p := range []sdpStep{{0x00, 0x11}, {0x01, 0x22}, {0x40, 0x33}, {0x41, 0x44}} {
		c.SetAddress(p.addr)
		c.SetData(p.data)
		c.AssertWE()
		c.DeassertWE()
	}
	c.DeassertCE()
	drainWrite(c)

	if got := c.ReadMem(0x40); got != 0x33 {
		t.Fatalf("Last page byte 0x40 = 0x%02X, want 0x33", got)
	}
	if got := c.ReadMem(0x41); got != 0x44 {
		t.Fatalf("Last page byte 0x41 = 0x%02X, want 0x44", got)
	}
	if got := c.ReadMem(0x00); got != 0 {
		t.Fatalf("Byte 0x00 = 0x%02X, want pulses outside the last page discarded", got)
	}
}

func TestSoftwareDataProtection(t *testing.T) {
	c := New(32768, 64)

	writeSeq(c, lockSeq)
	if !c.Protected() {
		t.Fatalf("Chip not protected after lock sequence")
	}
	// Idempotent.
	writeSeq(c, lockSeq)
	if !c.Protected() {
		t.Fatalf("Chip not protected after repeated lock sequence")
	}

	// Ordinary writes are ignored while protected and start no cycle.
	writePulse(c, 0x0010, 0x42)
	if got := c.WriteCycles(); got != 0 {
		t.Fatalf("WriteCycles() = %d while protected, want 0", got)
	}
	if got := c.ReadMem(0x0010); got != 0 {
		t.Fatalf("Protected chip committed 0x%02X @ 0x0010", got)
	}

	writeSeq(c, unlockSeq)
	if c.Protected() {
		t.Fatalf("Chip still protected after unlock sequence")
	}
	writeSeq(c, unlockSeq)
	if c.Protected() {
		t.Fatalf("Chip protected again after repeated unlock sequence")
	}

	writePulse(c, 0x0010, 0x42)
	drainWrite(c)
	if got := c.ReadMem(0x0010); got != 0x42 {
		t.Fatalf("Unlocked write got 0x%02X, want 0x42", got)
	}
}

func TestSDPSequenceMustBeExact(t *testing.T) {
	c := New(32768, 64)
	almost := []sdpStep{{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0xA1}}
	writeSeq(c, almost)
	if c.Protected() {
		t.Fatalf("Deviant sequence toggled protection")
	}
}

func TestSDPOnSmallChip(t *testing.T) {
	// Command addresses 0x5555 and 0x2AAA lie past the end of a 1 KiB
	// device. Decode must use the raw pin addresses, not the clamped
	// memory latch.
	c := New(1024, 64)

	writeSeq(c, lockSeq)
	if !c.Protected() {
		t.Fatalf("1 KiB chip not protected after lock sequence")
	}
	if got := c.WriteCycles(); got != 0 {
		t.Fatalf("Lock sequence started %d write cycles, want 0", got)
	}
	if got := c.ReadMem(1023); got != 0 {
		t.Fatalf("Lock sequence corrupted top cell: 0x%02X", got)
	}

	writeSeq(c, unlockSeq)
	if c.Protected() {
		t.Fatalf("1 KiB chip still protected after unlock sequence")
	}
}

func TestContentionCounter(t *testing.T) {
	c := New(1024, 64)
	c.AssertCE()
	c.AssertOE()
	c.AssertWE()
	if got := c.Contentions(); got != 1 {
		t.Fatalf("Contentions() = %d, want 1", got)
	}
}

func TestFailWrites(t *testing.T) {
	c := New(1024, 64)
	c.FailWrites(true)
	writePulse(c, 0x0000, 0x55)

	c.SetDataDirection(bus.Input)
	c.AssertCE()
	c.AssertOE()
	for i := 0; i < DefaultBusyPolls*4; i++ {
		if got := c.ReadData(); got&0x80 == 0x55&0x80 {
			t.Fatalf("Failing chip completed a write cycle at poll %d (read 0x%02X)", i, got)
		}
	}
	c.DeassertOE()
	c.DeassertCE()
}
