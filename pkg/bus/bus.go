// Package bus models the parallel bus of a byte-wide EEPROM: a latched
// address bus, a bidirectional data bus and the three active-low control
// lines (chip-enable, write-enable, output-enable).
package bus

// Direction selects who is allowed to drive the data bus.
type Direction int

const (
	// Input floats the host side of the data bus so the device can drive it.
	Input Direction = iota
	// Output drives the data bus from the host side.
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Controller owns one device's bus pins. Implementations must keep latency
// of the control-line methods as low as their transport allows; the device
// side enforces minimum pulse widths, but the ordering of calls is the
// caller's responsibility.
//
// Controllers clamp out-of-range addresses to the highest addressable byte
// instead of rejecting them. Callers that want rejection must range-check
// before calling.
//
// Write-enable and output-enable must never be asserted at the same time;
// device behavior under contention is undefined.
type Controller interface {
	SetAddress(addr uint32)
	SetData(b byte)
	ReadData() byte
	SetDataDirection(dir Direction)

	AssertCE()
	DeassertCE()
	AssertWE()
	DeassertWE()
	AssertOE()
	DeassertOE()
}

// Clamp bounds addr to [0, maxAddr].
func Clamp(addr, maxAddr uint32) uint32 {
	if addr > maxAddr {
		return maxAddr
	}
	return addr
}
