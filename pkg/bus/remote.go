package bus

import (
	"io"

	"github.com/pkg/errors"
)

// Wire protocol between the host and a bus adapter board. Every command is
// acknowledged with ackOK except cmdReadData, which replies with the sampled
// data byte instead.
const (
	cmdPing      = 'P'
	cmdSetAddr   = 'A' // followed by addr low byte, addr high byte
	cmdSetData   = 'D' // followed by the data byte
	cmdReadData  = 'r' // replies with the sampled byte
	cmdDirInput  = 'I'
	cmdDirOutput = 'O'
	cmdCEAssert  = 'C'
	cmdCEDeass   = 'c'
	cmdWEAssert  = 'W'
	cmdWEDeass   = 'w'
	cmdOEAssert  = 'E'
	cmdOEDeass   = 'e'

	ackOK = 'K'
)

// WireMaxAddr is the highest address the two-byte cmdSetAddr framing can
// carry. Larger addresses clamp here rather than wrap.
const WireMaxAddr = 0xFFFF

// Remote is a Controller backed by an adapter board on the far end of a
// byte stream (serial port or socket). The adapter does the raw pin
// wiggling and owns the pulse-width timing; Remote only sequences commands.
//
// The Controller interface carries no error returns, so transport failures
// are sticky: after the first one every method becomes a no-op and Err
// reports the cause.
type Remote struct {
	rw  io.ReadWriter
	err error
}

// NewRemote wraps an open stream to an adapter board.
func NewRemote(rw io.ReadWriter) *Remote {
	return &Remote{rw: rw}
}

// Err returns the first transport error encountered, if any.
func (r *Remote) Err() error {
	return r.err
}

// Ping verifies the adapter is alive and speaking our protocol.
func (r *Remote) Ping() error {
	r.cmd(cmdPing)
	return r.err
}

func (r *Remote) cmd(b ...byte) {
	if r.err != nil {
		return
	}
	if _, err := r.rw.Write(b); err != nil {
		r.err = errors.Wrapf(err, "sending command %q", b[0])
		return
	}
	reply := []byte{0}
	if _, err := io.ReadFull(r.rw, reply); err != nil {
		r.err = errors.Wrapf(err, "reading ack for command %q", b[0])
		return
	}
	if reply[0] != ackOK {
		r.err = errors.Errorf("adapter rejected command %q: got %#02x, want %#02x", b[0], reply[0], ackOK)
	}
}

func (r *Remote) SetAddress(addr uint32) {
	addr = Clamp(addr, WireMaxAddr)
	r.cmd(cmdSetAddr, byte(addr&0xFF), byte((addr>>8)&0xFF))
}

func (r *Remote) SetData(b byte) {
	r.cmd(cmdSetData, b)
}

func (r *Remote) ReadData() byte {
	if r.err != nil {
		return 0xFF
	}
	if _, err := r.rw.Write([]byte{cmdReadData}); err != nil {
		r.err = errors.Wrap(err, "sending read command")
		return 0xFF
	}
	reply := []byte{0}
	if _, err := io.ReadFull(r.rw, reply); err != nil {
		r.err = errors.Wrap(err, "reading data byte")
		return 0xFF
	}
	return reply[0]
}

func (r *Remote) SetDataDirection(dir Direction) {
	if dir == Input {
		r.cmd(cmdDirInput)
		return
	}
	r.cmd(cmdDirOutput)
}

func (r *Remote) AssertCE()   { r.cmd(cmdCEAssert) }
func (r *Remote) DeassertCE() { r.cmd(cmdCEDeass) }
func (r *Remote) AssertWE()   { r.cmd(cmdWEAssert) }
func (r *Remote) DeassertWE() { r.cmd(cmdWEDeass) }
func (r *Remote) AssertOE()   { r.cmd(cmdOEAssert) }
func (r *Remote) DeassertOE() { r.cmd(cmdOEDeass) }
