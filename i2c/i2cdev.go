package i2c

import (
	"errors"
	"fmt"

	di2c "github.com/d2r2/go-i2c"
)

// I2CDev adapts github.com/d2r2/go-i2c, which binds the slave address when
// the device node is opened. The node is reopened whenever the address
// changes.
type I2CDev struct {
	bus  int
	addr int
	conn *di2c.I2C
}

func OpenI2CDev(bus int) *I2CDev {
	return &I2CDev{bus: bus, addr: -1}
}

func (d *I2CDev) SetAddress(address int) error {
	if address == d.addr && d.conn != nil {
		return nil
	}
	if address < 0 || address > 0x7f {
		return fmt.Errorf("invalid address 0x%x", address)
	}
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			lg.Debugf("close i2c-%d: %v", d.bus, err)
		}
		d.conn = nil
	}
	conn, err := di2c.NewI2C(uint8(address), d.bus)
	if err != nil {
		return fmt.Errorf("open i2c-%d at 0x%02x: %w", d.bus, address, err)
	}
	d.conn = conn
	d.addr = address
	return nil
}

var errNoAddress = errors.New("no address selected")

func (d *I2CDev) ReadByteData(reg uint8) (uint8, error) {
	if d.conn == nil {
		return 0, errNoAddress
	}
	return d.conn.ReadRegU8(reg)
}

func (d *I2CDev) WriteByteData(reg, val uint8) error {
	if d.conn == nil {
		return errNoAddress
	}
	return d.conn.WriteRegU8(reg, val)
}

func (d *I2CDev) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
