package bus

import (
	"io"

	"github.com/pkg/errors"
)

// ServeAdapter speaks the adapter side of the wire protocol on rw, applying
// each command to ctrl. It is what an adapter board's firmware does, usable
// in-process to put a simulated chip behind a socket. Returns nil when the
// peer closes the stream.
func ServeAdapter(rw io.ReadWriter, ctrl Controller) error {
	buf := []byte{0}
	for {
		if _, err := io.ReadFull(rw, buf); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "reading command")
		}

		reply := byte(ackOK)
		switch buf[0] {
		case cmdPing:
			// Nothing to do, ack is the reply.
		case cmdSetAddr:
			operand := []byte{0, 0}
			if _, err := io.ReadFull(rw, operand); err != nil {
				return errors.Wrap(err, "reading address operand")
			}
			ctrl.SetAddress(uint32(operand[0]) | uint32(operand[1])<<8)
		case cmdSetData:
			if _, err := io.ReadFull(rw, buf); err != nil {
				return errors.Wrap(err, "reading data operand")
			}
			ctrl.SetData(buf[0])
		case cmdReadData:
			reply = ctrl.ReadData()
		case cmdDirInput:
			ctrl.SetDataDirection(Input)
		case cmdDirOutput:
			ctrl.SetDataDirection(Output)
		case cmdCEAssert:
			ctrl.AssertCE()
		case cmdCEDeass:
			ctrl.DeassertCE()
		case cmdWEAssert:
			ctrl.AssertWE()
		case cmdWEDeass:
			ctrl.DeassertWE()
		case cmdOEAssert:
			ctrl.AssertOE()
		case cmdOEDeass:
			ctrl.DeassertOE()
		default:
			reply = '?'
		}

		if _, err := rw.Write([]byte{reply}); err != nil {
			return errors.Wrap(err, "writing reply")
		}
	}
}
