package engine

import (
	"testing"
	"time"

	"github.com/eeprom-tools/eeprog/pkg/simeeprom"
)

func testConfig() Config {
	return Config{
		MaxAddr:     1023,
		PageSize:    64,
		PollBudget:  256,
		SettleDelay: time.Microsecond,
	}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *simeeprom.Chip) {
	t.Helper()
	chip := simeeprom.New(cfg.MaxAddr+1, uint32(cfg.PageSize))
	return New(chip, cfg), chip
}

func TestWriteReadRoundTrip(t *testing.T) {
	eng, chip := newTestEngine(t, testConfig())

	testCases := []struct {
		addr uint32
		data byte
	}{
		{0x0000, 0x00},
		{0x0000, 0xFF},
		{0x0010, 0x42},
		{0x0155, 0xA5},
		{1023, 0x7E}, // top of the device
	}
	for _, tc := range testCases {
		if !eng.WriteByteAt(tc.data, tc.addr) {
			t.Fatalf("WriteByteAt(0x%02X, 0x%04X) reported polling timeout", tc.data, tc.addr)
		}
		if got := eng.ReadByteAt(tc.addr); got != tc.data {
			t.Fatalf("ReadByteAt(0x%04X) = 0x%02X, want 0x%02X", tc.addr, got, tc.data)
		}
		if !chip.Idle() {
			t.Fatalf("Bus not idle after transaction @ 0x%04X", tc.addr)
		}
	}
}

func TestWriteByteAtTimeoutOnFaultyDevice(t *testing.T) {
	eng, chip := newTestEngine(t, testConfig())
	chip.FailWrites(true)

	if eng.WriteByteAt(0x42, 0x0010) {
		t.Fatalf("WriteByteAt succeeded on a device that never completes writes")
	}
	if !chip.Idle() {
		t.Fatalf("Bus not idle after polling timeout")
	}
}

func TestReadByteAtTopAddressClamp(t *testing.T) {
	eng, chip := newTestEngine(t, testConfig())
	chip.WriteMem(1023, 0x99)

	// Addresses past the top clamp to the last byte, never wrap.
	if got := eng.ReadByteAt(1023 + 100); got != 0x99 {
		t.Fatalf("ReadByteAt past the top = 0x%02X, want clamped read of 0x99", got)
	}
}
