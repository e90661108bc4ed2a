// Package shell is the line-oriented command interpreter of the
// programmer. It maps operator commands onto engine operations plus the raw
// pin passthroughs used for board bring-up. The shell owns all operand
// range checking; the engine below it trusts its callers.
package shell

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eeprom-tools/eeprog/pkg/bus"
	"github.com/eeprom-tools/eeprog/pkg/engine"
)

const helpText = `Commands:
  read <addr>             read one byte
  write <addr> <byte>     write one byte (with data polling)
  dump <addr> <len>       hex dump a range
  load <file> [addr]      stream a file into the device (default addr 0)
  erase                   zero-fill the whole device
  lock                    enable software data protection
  unlock                  disable software data protection
  setaddr <addr>          drive the address bus
  setdata <byte>          drive the data bus
  readdata                sample the data bus
  ce|we|oe <0|1>          deassert/assert a control line
  dir <in|out>            set data bus direction
  help                    this text
  quit                    leave the shell
Numbers are decimal or 0x-prefixed hex.`

// Shell interprets commands against one engine.
type Shell struct {
	eng *engine.Engine
	out io.Writer
}

// New returns a shell writing its replies to out.
func New(eng *engine.Engine, out io.Writer) *Shell {
	return &Shell{eng: eng, out: out}
}

// Run reads lines from r until EOF or a quit command, executing each.
// Command errors are reported to the operator and do not stop the loop.
func (s *Shell) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(s.out, "eeprog> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := s.Exec(line); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// Exec runs a single command line.
func (s *Shell) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "read":
		return s.cmdRead(args)
	case "write":
		return s.cmdWrite(args)
	case "dump":
		return s.cmdDump(args)
	case "load":
		return s.cmdLoad(args)
	case "erase":
		if !s.eng.EraseAll() {
			return fmt.Errorf("erase did not complete")
		}
		fmt.Fprintln(s.out, "device erased")
		return nil
	case "lock":
		s.eng.Lock()
		fmt.Fprintln(s.out, "software data protection enabled")
		return nil
	case "unlock":
		s.eng.Unlock()
		fmt.Fprintln(s.out, "software data protection disabled")
		return nil
	case "setaddr", "setdata", "readdata", "ce", "we", "oe", "dir":
		return s.execPin(cmd, args)
	}
	return fmt.Errorf("unknown command %q, try \"help\"", cmd)
}

func (s *Shell) cmdRead(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: read <addr>")
	}
	addr, err := s.parseAddr(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "0x%04X = 0x%02X\n", addr, s.eng.ReadByteAt(addr))
	return nil
}

func (s *Shell) cmdWrite(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: write <addr> <byte>")
	}
	addr, err := s.parseAddr(args[0])
	if err != nil {
		return err
	}
	b, err := parseByte(args[1])
	if err != nil {
		return err
	}
	if !s.eng.WriteByteAt(b, addr) {
		return fmt.Errorf("write of 0x%02X @ 0x%04X did not complete (polling timeout; device locked or faulty?)", b, addr)
	}
	fmt.Fprintf(s.out, "0x%04X <- 0x%02X\n", addr, b)
	return nil
}

func (s *Shell) cmdDump(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: dump <addr> <len>")
	}
	addr, err := s.parseAddr(args[0])
	if err != nil {
		return err
	}
	count, err := ParseUint(args[1], uint64(s.eng.MaxAddr())-uint64(addr)+1)
	if err != nil {
		return err
	}
	buf := make([]byte, count)
	for i := range buf {
		buf[i] = s.eng.ReadByteAt(addr + uint32(i))
	}
	fmt.Fprint(s.out, hex.Dump(buf))
	return nil
}

func (s *Shell) cmdLoad(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: load <file> [addr]")
	}
	var addr uint32
	if len(args) == 2 {
		a, err := s.parseAddr(args[1])
		if err != nil {
			return err
		}
		addr = a
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open input file: %v", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat input file: %v", err)
	}

	written, err := s.eng.LoadStream(bufio.NewReader(f), st.Size(), addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "loaded %d bytes @ 0x%04X from %q\n", written, addr, args[0])
	return nil
}

// execPin is the diagnostics passthrough straight onto the bus controller.
// No idle-state guarantees here: the operator is driving pins by hand.
func (s *Shell) execPin(cmd string, args []string) error {
	c := s.eng.Bus()
	switch cmd {
	case "setaddr":
		if len(args) != 1 {
			return fmt.Errorf("usage: setaddr <addr>")
		}
		addr, err := s.parseAddr(args[0])
		if err != nil {
			return err
		}
		c.SetAddress(addr)
	case "setdata":
		if len(args) != 1 {
			return fmt.Errorf("usage: setdata <byte>")
		}
		b, err := parseByte(args[0])
		if err != nil {
			return err
		}
		c.SetData(b)
	case "readdata":
		fmt.Fprintf(s.out, "data bus = 0x%02X\n", c.ReadData())
	case "dir":
		if len(args) != 1 || (args[0] != "in" && args[0] != "out") {
			return fmt.Errorf("usage: dir <in|out>")
		}
		if args[0] == "in" {
			c.SetDataDirection(bus.Input)
		} else {
			c.SetDataDirection(bus.Output)
		}
	default: // ce, we, oe
		if len(args) != 1 || (args[0] != "0" && args[0] != "1") {
			return fmt.Errorf("usage: %s <0|1>", cmd)
		}
		assert := args[0] == "1"
		switch cmd {
		case "ce":
			if assert {
				c.AssertCE()
			} else {
				c.DeassertCE()
			}
		case "we":
			if assert {
				c.AssertWE()
			} else {
				c.DeassertWE()
			}
		case "oe":
			if assert {
				c.AssertOE()
			} else {
				c.DeassertOE()
			}
		}
	}
	return nil
}
