package shell

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/eeprom-tools/eeprog/pkg/engine"
	"github.com/eeprom-tools/eeprog/pkg/simeeprom"
)

func newTestShell(t *testing.T) (*Shell, *simeeprom.Chip, *bytes.Buffer) {
	t.Helper()
	chip := simeeprom.New(1024, 64)
	eng := engine.New(chip, engine.Config{
		MaxAddr:        1023,
		PageSize:       64,
		PollBudget:     128,
		MaxPageRetries: 4,
		SettleDelay:    time.Microsecond,
	})
	out := &bytes.Buffer{}
	return New(eng, out), chip, out
}

func TestShellWriteAndRead(t *testing.T) {
	sh, chip, out := newTestShell(t)

	if err := sh.Exec("write 0x10 0x42"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := chip.ReadMem(0x10); got != 0x42 {
		t.Fatalf("Device holds 0x%02X @ 0x10, want 0x42", got)
	}

	out.Reset()
	if err := sh.Exec("read 0x10"); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := out.String(); got != "0x0010 = 0x42\n" {
		t.Fatalf("read output %q, want %q", got, "0x0010 = 0x42\n")
	}
}

func TestShellOperandChecking(t *testing.T) {
	sh, chip, _ := newTestShell(t)

	testCases := []struct {
		descr string
		line  string
	}{
		{"address beyond the device", "write 0x400 0x01"},
		{"byte beyond 255", "write 0x10 256"},
		{"malformed address", "read 0xZZ"},
		{"missing operand", "write 0x10"},
		{"dump running past the top", "dump 0x3FF 2"},
	}
	for _, tc := range testCases {
		if err := sh.Exec(tc.line); err == nil {
			t.Fatalf("Test %q: command %q accepted, want rejection", tc.descr, tc.line)
		}
	}
	if got := chip.WriteCycles(); got != 0 {
		t.Fatalf("Rejected commands started %d write cycles, want 0", got)
	}
}

func TestShellUnknownCommand(t *testing.T) {
	sh, _, _ := newTestShell(t)
	if err := sh.Exec("frobnicate"); err == nil {
		t.Fatalf("Unknown command accepted")
	}
}

func TestShellDump(t *testing.T) {
	sh, chip, out := newTestShell(t)
	chip.WriteMem(0, 'h')
	chip.WriteMem(1, 'i')

	if err := sh.Exec("dump 0 2"); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(out.String(), "|hi|") {
		t.Fatalf("dump output %q missing ascii column", out.String())
	}
}

func TestShellEraseLockUnlock(t *testing.T) {
	sh, chip, _ := newTestShell(t)
	chip.WriteMem(0x123, 0xFF)

	if err := sh.Exec("erase"); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if got := chip.ReadMem(0x123); got != 0 {
		t.Fatalf("Device holds 0x%02X after erase, want 0x00", got)
	}

	if err := sh.Exec("lock"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !chip.Protected() {
		t.Fatalf("Device not protected after lock command")
	}

	// A write against the locked device never polls complete and reports.
	if err := sh.Exec("write 0x10 0x42"); err == nil {
		t.Fatalf("write against a locked device reported success")
	}

	if err := sh.Exec("unlock"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if chip.Protected() {
		t.Fatalf("Device still protected after unlock command")
	}
}

func TestShellPinPassthrough(t *testing.T) {
	sh, chip, _ := newTestShell(t)

	for _, line := range []string{"setaddr 0x3FF", "dir out", "setdata 0xA5", "ce 1", "ce 0"} {
		if err := sh.Exec(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
	if got := chip.AddrLatch(); got != 0x3FF {
		t.Fatalf("Address latch 0x%04X, want 0x3FF", got)
	}
}

func TestShellLoad(t *testing.T) {
	sh, _, out := newTestShell(t)

	f, err := os.CreateTemp(t.TempDir(), "image_*.bin")
	if err != nil {
		t.Fatalf("cannot create temp file: %v", err)
	}
	payload := bytes.Repeat([]byte{0xEE, 0x11}, 65)
	if _, err := f.Write(payload); err != nil {
		t.Fatalf("cannot write temp file: %v", err)
	}
	f.Close()

	if err := sh.Exec("load " + f.Name() + " 0x40"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(out.String(), "loaded 130 bytes") {
		t.Fatalf("load output %q, want a 130-byte report", out.String())
	}

	out.Reset()
	if err := sh.Exec("read 0x40"); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := out.String(); got != "0x0040 = 0xEE\n" {
		t.Fatalf("read output %q, want %q", got, "0x0040 = 0xEE\n")
	}
}

func TestShellRunQuits(t *testing.T) {
	sh, _, out := newTestShell(t)

	script := "write 0x10 0x42\nread 0x10\nquit\nread 0x10\n"
	if err := sh.Run(strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Count(out.String(), "0x0010 = 0x42"); got != 1 {
		t.Fatalf("Commands after quit executed: output %q", out.String())
	}
}
