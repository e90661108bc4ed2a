package engine

import (
	"time"

	"github.com/eeprom-tools/eeprog/pkg/bus"
)

type seqStep struct {
	addr uint32
	data byte
}

// The JEDEC software data protection command sequences. Order, addresses
// and values are all fixed by the device; any deviation makes the device
// silently ignore the command. These go straight to the bus, not through
// WriteByteAt: the pulses carry fixed command bytes, and there is no data
// polling step, only a fixed settle wait.
var (
	sdpEnableSeq = []seqStep{
		{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0xA0},
	}
	sdpDisableSeq = []seqStep{
		{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0x80},
		{0x5555, 0xAA}, {0x2AAA, 0x55}, {0x5555, 0x20},
	}
)

// Lock enables software data protection: subsequent write pulses are
// ignored by the device until Unlock. Idempotent.
func (e *Engine) Lock() {
	e.writeSequence(sdpEnableSeq)
}

// Unlock disables software data protection. Idempotent.
//
// Neither Lock nor Unlock can confirm the device honored the sequence;
// taking effect is only observable through whether later writes stick.
func (e *Engine) Unlock() {
	e.writeSequence(sdpDisableSeq)
}

func (e *Engine) writeSequence(seq []seqStep) {
	c := e.bus
	c.SetDataDirection(bus.Output)
	c.AssertCE()
	for _, s := range seq {
		c.SetAddress(s.addr)
		c.SetData(s.data)
		c.AssertWE()
		c.DeassertWE()
	}
	c.DeassertCE()
	time.Sleep(e.cfg.SettleDelay)
}
