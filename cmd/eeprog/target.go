package main

import (
	"log"
	"net"
	"strings"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/eeprom-tools/eeprog/pkg/bus"
	"github.com/eeprom-tools/eeprog/pkg/engine"
	"github.com/eeprom-tools/eeprog/pkg/pagemap"
	"github.com/eeprom-tools/eeprog/pkg/simeeprom"
)

// openEngine builds the engine for whichever target the flags select.
// The returned func closes the underlying transport.
func openEngine() (*engine.Engine, func(), error) {
	if err := pagemap.ValidateGeometry(flagSize, flagPage); err != nil {
		return nil, nil, errors.Wrap(err, "bad --size/--page")
	}

	var ctrl bus.Controller
	closer := func() {}

	switch {
	case flagSim:
		ctrl = simeeprom.New(flagSize, uint32(flagPage))

	case flagSocket != "":
		if flagSize > bus.WireMaxAddr+1 {
			return nil, nil, errors.Errorf("--size %d exceeds the adapter wire limit of %d bytes", flagSize, bus.WireMaxAddr+1)
		}
		conn, err := net.Dial("unix", flagSocket)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "connecting to adapter socket %q", flagSocket)
		}
		remote := bus.NewRemote(conn)
		if err := remote.Ping(); err != nil {
			conn.Close()
			return nil, nil, errors.Wrap(err, "adapter did not answer ping")
		}
		ctrl = remote
		closer = func() { conn.Close() }

	case flagSerial != "":
		if flagSize > bus.WireMaxAddr+1 {
			return nil, nil, errors.Errorf("--size %d exceeds the adapter wire limit of %d bytes", flagSize, bus.WireMaxAddr+1)
		}
		mode := &serial.Mode{
			BaudRate: flagBaud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
		port, err := serial.Open(flagSerial, mode)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening serial port %q", flagSerial)
		}
		remote := bus.NewRemote(port)
		if err := remote.Ping(); err != nil {
			port.Close()
			return nil, nil, errors.Wrap(err, "adapter did not answer ping")
		}
		ctrl = remote
		closer = func() { port.Close() }

	case flagGPIOData != "":
		g, err := openGPIO()
		if err != nil {
			return nil, nil, err
		}
		ctrl = g

	default:
		return nil, nil, errors.New("no target: need one of --serial, --socket, --sim or --gpio-data")
	}

	cfg := engine.Config{
		MaxAddr:        flagSize - 1,
		PageSize:       flagPage,
		MaxPageRetries: flagRetries,
		OnPageRetry: func(addr uint32, attempt int) {
			log.Printf("retrying page @ 0x%04X (attempt %d)", addr, attempt)
		},
	}
	return engine.New(ctrl, cfg), closer, nil
}

func openGPIO() (*bus.GPIO, error) {
	pins := bus.GPIOPins{}
	var err error
	if pins.Addr, err = pinsByName(flagGPIOAddr); err != nil {
		return nil, errors.Wrap(err, "--gpio-addr")
	}
	if pins.Data, err = pinsByName(flagGPIOData); err != nil {
		return nil, errors.Wrap(err, "--gpio-data")
	}
	for _, line := range []struct {
		name string
		flag string
		dst  *gpio.PinIO
	}{
		{"--gpio-ce", flagGPIOCE, &pins.CE},
		{"--gpio-we", flagGPIOWE, &pins.WE},
		{"--gpio-oe", flagGPIOOE, &pins.OE},
	} {
		p := gpioreg.ByName(line.flag)
		if p == nil {
			return nil, errors.Errorf("%s: no pin named %q", line.name, line.flag)
		}
		*line.dst = p
	}
	return bus.NewGPIO(pins, flagSize-1)
}

func pinsByName(list string) ([]gpio.PinIO, error) {
	var pins []gpio.PinIO
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, errors.Errorf("no pin named %q", name)
		}
		pins = append(pins, p)
	}
	return pins, nil
}
