package engine

import "github.com/eeprom-tools/eeprog/pkg/bus"

// WritePage writes up to one hardware page in a single chip-enable
// assertion, polls for the internal commit, then reads every byte back and
// compares. On polling timeout or any verify mismatch the whole page is
// rewritten from scratch; both symptoms mean the same thing, a write that
// did not take.
//
// Inputs outside the contract (empty page, longer than the page size, or a
// range running past the top of the device) are dropped without touching
// the bus; the command layer range-checks anything operator-supplied.
//
// With MaxPageRetries zero this loops until the page verifies, however
// long that takes. Returns false only when a configured retry cap runs out.
func (e *Engine) WritePage(data []byte, start uint32) bool {
	if len(data) == 0 || len(data) > e.cfg.PageSize {
		return true
	}
	if start > e.cfg.MaxAddr || start+uint32(len(data))-1 > e.cfg.MaxAddr {
		return true
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if e.cfg.MaxPageRetries > 0 && attempt >= e.cfg.MaxPageRetries {
				return false
			}
			if e.cfg.OnPageRetry != nil {
				e.cfg.OnPageRetry(start, attempt)
			}
		}

		e.burstWrite(data, start)
		if !e.pollData(data[len(data)-1]) {
			continue
		}
		if !e.verify(data, start) {
			continue
		}
		return true
	}
}

// burstWrite issues the page's write pulses back to back inside one
// chip-enable assertion, which is what makes the device buffer them as a
// single page write rather than discrete byte writes.
func (e *Engine) burstWrite(data []byte, start uint32) {
	c := e.bus
	c.SetDataDirection(bus.Output)
	c.AssertCE()
	for i, b := range data {
		c.SetAddress(start + uint32(i))
		c.SetData(b)
		c.AssertWE()
		c.DeassertWE()
	}
	c.DeassertCE()
}

func (e *Engine) verify(data []byte, start uint32) bool {
	for i, b := range data {
		if e.ReadByteAt(start+uint32(i)) != b {
			return false
		}
	}
	return true
}
