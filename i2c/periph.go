package i2c

import (
	"fmt"

	pi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Periph adapts a periph.io bus to Device.
type Periph struct {
	bus pi2c.BusCloser
	dev pi2c.Dev
}

func OpenPeriph(name string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open periph bus %q: %w", name, err)
	}
	return &Periph{bus: bus, dev: pi2c.Dev{Bus: bus}}, nil
}

func (p *Periph) SetAddress(address int) error {
	if address < 0 || address > 0x7f {
		return fmt.Errorf("invalid address 0x%x", address)
	}
	p.dev.Addr = uint16(address)
	return nil
}

func (p *Periph) ReadByteData(reg uint8) (uint8, error) {
	var buf [1]byte
	if err := p.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *Periph) WriteByteData(reg, val uint8) error {
	_, err := p.dev.Write([]byte{reg, val})
	return err
}

func (p *Periph) Close() error {
	return p.bus.Close()
}
