package shell

import (
	"fmt"
	"strconv"
)

// ParseUint parses an unsigned integer literal in decimal or, with the
// usual prefixes, hex/octal/binary. Values that overflow or exceed max are
// rejected, never truncated: the engine clamps silently, so anything
// operator-typed has to be range-checked here.
func ParseUint(s string, max uint64) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	if v > max {
		return 0, fmt.Errorf("value 0x%X out of range [0, 0x%X]", v, max)
	}
	return v, nil
}

// parseAddr and parseByte are the two operand shapes every command uses.
func (s *Shell) parseAddr(tok string) (uint32, error) {
	v, err := ParseUint(tok, uint64(s.eng.MaxAddr()))
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func parseByte(tok string) (byte, error) {
	v, err := ParseUint(tok, 0xFF)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}
