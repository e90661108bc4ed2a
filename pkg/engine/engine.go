// Package engine is the write-and-verify engine for AT28C-family parallel
// EEPROMs: single-byte bus transactions, data polling, page-buffered writes
// with read-back verification and retry, the software data protection
// command sequences, and bulk erase/load built on top of those.
//
// The engine is single-threaded by contract. The bus is the only shared
// state and every operation leaves it idle: chip-enable, write-enable and
// output-enable all deasserted. Callers that add concurrency around the
// engine must still serialize calls into it.
package engine

import (
	"time"

	"github.com/eeprom-tools/eeprog/pkg/bus"
)

// Defaults describe an AT28C256: 32 KiB, 64-byte pages, 10 ms max write
// cycle. The poll budget is sized well past the number of samples a healthy
// write cycle can consume, so exhausting it means a device fault, not a
// slow write.
const (
	DefaultMaxAddr     = 0x7FFF
	DefaultPageSize    = 64
	DefaultPollBudget  = 4096
	DefaultSettleDelay = 10 * time.Millisecond
)

// Config tunes an Engine for one device geometry.
type Config struct {
	// MaxAddr is the highest addressable byte.
	MaxAddr uint32
	// PageSize is the most bytes one write cycle accepts.
	PageSize int
	// PollBudget caps data-polling iterations per write cycle.
	PollBudget int
	// MaxPageRetries caps attempts per page write. Zero means retry
	// forever, which matches the device's interactive-tool heritage: a
	// page handed to the engine must end up correct or the operator
	// pulls the plug. Set a cap to turn exhaustion into a reported
	// failure instead.
	MaxPageRetries int
	// SettleDelay is the fixed wait after a protection command sequence.
	// Completion of those is not observable on the bus.
	SettleDelay time.Duration
	// OnPageRetry, if set, is called before every repeat attempt of a
	// page write. Used for operator progress and by test harnesses to
	// count retries.
	OnPageRetry func(startAddr uint32, attempt int)
}

// Engine drives one device through a bus.Controller.
type Engine struct {
	bus bus.Controller
	cfg Config
}

// New returns an engine for ctrl. Zero Config fields get the AT28C256
// defaults.
func New(ctrl bus.Controller, cfg Config) *Engine {
	if cfg.MaxAddr == 0 {
		cfg.MaxAddr = DefaultMaxAddr
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PollBudget == 0 {
		cfg.PollBudget = DefaultPollBudget
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	return &Engine{bus: ctrl, cfg: cfg}
}

// Bus exposes the controller for diagnostics passthrough; the command layer
// uses it for raw pin operations.
func (e *Engine) Bus() bus.Controller {
	return e.bus
}

// MaxAddr returns the highest addressable byte.
func (e *Engine) MaxAddr() uint32 {
	return e.cfg.MaxAddr
}

// PageSize returns the device page size in bytes.
func (e *Engine) PageSize() int {
	return e.cfg.PageSize
}

// ReadByteAt performs one bus read cycle. A read cannot fail: it returns
// whatever the device drives.
func (e *Engine) ReadByteAt(addr uint32) byte {
	c := e.bus
	c.SetAddress(addr)
	c.SetDataDirection(bus.Input)
	c.AssertCE()
	c.AssertOE()
	b := c.ReadData()
	c.DeassertOE()
	c.DeassertCE()
	return b
}

// WriteByteAt performs one write cycle and waits for it to finish via data
// polling. Returns false on polling timeout. No retry here; callers that
// need guaranteed success go through WritePage.
func (e *Engine) WriteByteAt(b byte, addr uint32) bool {
	c := e.bus
	c.SetAddress(addr)
	c.SetDataDirection(bus.Output)
	c.SetData(b)
	c.AssertCE()
	c.AssertWE()
	c.DeassertWE()
	c.DeassertCE()
	return e.pollData(b)
}

// pollData waits for an internal write cycle to complete. While the cycle
// runs the device drives the complement of the written byte's top bit, so
// the sampled value differs from want until the cycle ends. Bounded by the
// poll budget; false means the device never settled.
func (e *Engine) pollData(want byte) bool {
	c := e.bus
	c.SetDataDirection(bus.Input)
	c.AssertCE()
	c.AssertOE()
	done := false
	for i := 0; i < e.cfg.PollBudget; i++ {
		if c.ReadData() == want {
			done = true
			break
		}
	}
	c.DeassertOE()
	c.DeassertCE()
	return done
}
