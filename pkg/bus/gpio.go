package bus

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
)

// GPIOPins names the host pins wired to the device. Address and data pins
// are listed least-significant bit first. The control lines are active-low
// on the chip, so asserting a line drives its pin low.
type GPIOPins struct {
	Addr []gpio.PinIO
	Data []gpio.PinIO // exactly 8 pins
	CE   gpio.PinIO
	WE   gpio.PinIO
	OE   gpio.PinIO
}

// GPIO is a Controller wired straight to host GPIOs via periph.io. Per-pin
// Out calls are the fastest path periph exposes portably; on boards where
// that is still too slow for the device's pulse-width minimums, use an
// adapter board and Remote instead.
type GPIO struct {
	pins    GPIOPins
	maxAddr uint32
	dir     Direction
}

// NewGPIO initializes the periph host, claims the pins and parks the bus in
// the idle state: all control lines deasserted, data bus driven low,
// address zero.
func NewGPIO(pins GPIOPins, maxAddr uint32) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing periph host")
	}
	if len(pins.Data) != 8 {
		return nil, errors.Errorf("need exactly 8 data pins, got %d", len(pins.Data))
	}
	if len(pins.Addr) == 0 {
		return nil, errors.New("no address pins given")
	}
	if pins.CE == nil || pins.WE == nil || pins.OE == nil {
		return nil, errors.New("all three control pins must be set")
	}

	g := &GPIO{pins: pins, maxAddr: maxAddr, dir: Output}

	// Control lines idle high before anything else so the device stays
	// deselected while the buses settle.
	for _, p := range []gpio.PinIO{pins.CE, pins.WE, pins.OE} {
		if err := p.Out(gpio.High); err != nil {
			return nil, errors.Wrapf(err, "parking control pin %s", p)
		}
	}
	g.SetDataDirection(Output)
	g.SetData(0)
	g.SetAddress(0)
	return g, nil
}

func (g *GPIO) SetAddress(addr uint32) {
	addr = Clamp(addr, g.maxAddr)
	for i, p := range g.pins.Addr {
		p.Out(gpio.Level(addr&(1<<uint(i)) != 0))
	}
}

func (g *GPIO) SetData(b byte) {
	if g.dir != Output {
		return
	}
	for i, p := range g.pins.Data {
		p.Out(gpio.Level(b&(1<<uint(i)) != 0))
	}
}

func (g *GPIO) ReadData() byte {
	var b byte
	for i, p := range g.pins.Data {
		if p.Read() == gpio.High {
			b |= 1 << uint(i)
		}
	}
	return b
}

func (g *GPIO) SetDataDirection(dir Direction) {
	g.dir = dir
	for _, p := range g.pins.Data {
		if dir == Input {
			p.In(gpio.PullNoChange, gpio.NoEdge)
		} else {
			p.Out(gpio.Low)
		}
	}
}

func (g *GPIO) AssertCE()   { g.pins.CE.Out(gpio.Low) }
func (g *GPIO) DeassertCE() { g.pins.CE.Out(gpio.High) }
func (g *GPIO) AssertWE()   { g.pins.WE.Out(gpio.Low) }
func (g *GPIO) DeassertWE() { g.pins.WE.Out(gpio.High) }
func (g *GPIO) AssertOE()   { g.pins.OE.Out(gpio.Low) }
func (g *GPIO) DeassertOE() { g.pins.OE.Out(gpio.High) }
