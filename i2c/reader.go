package i2c

import "fmt"

// A Device is typically a *sysfs.I2cDevice (gobot.io/x/gobot/sysfs).
type Device interface {
	SetAddress(address int) error
	ReadByteData(reg uint8) (val uint8, err error)
	WriteByteData(reg, val uint8) error
}

// A DeviceCloser is a Device that owns the underlying bus handle.
type DeviceCloser interface {
	Device
	Close() error
}

// BusError is a failed transfer on the bus: no acknowledge, timeout or a
// closed handle.
type BusError struct {
	Op  string
	Reg uint8
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s register 0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Reader reads and writes registers, remembering the first error. Later
// calls become no-ops returning zero so a sequence of registers can be
// decoded straight-line and checked once.
type Reader struct {
	dev   Device
	error error
}

func NewReader(dev Device) *Reader {
	return &Reader{dev: dev}
}

func (r *Reader) Error() error {
	return r.error
}

func (r *Reader) Reset() {
	r.error = nil
}

// Read returns the values of regs, in order.
func (r *Reader) Read(regs ...uint8) ([]byte, error) {
	res := make([]byte, len(regs))

	for i := len(regs) - 1; i >= 0; i-- {
		val, err := r.dev.ReadByteData(regs[i])
		if err != nil {
			return nil, &BusError{Op: "read", Reg: regs[i], Err: err}
		}
		res[i] = val
	}
	return res, nil
}

// Signed decodes regs as a two's complement integer, most significant
// register first.
func (r *Reader) Signed(regs ...uint8) int {
	if r.error != nil {
		return 0
	}
	data, err := r.Read(regs...)
	if err != nil {
		r.error = err
		return 0
	}
	return signed(data)
}

// Unsigned decodes regs as an unsigned integer, most significant register
// first.
func (r *Reader) Unsigned(regs ...uint8) int {
	if r.error != nil {
		return 0
	}
	data, err := r.Read(regs...)
	if err != nil {
		r.error = err
		return 0
	}
	return unsigned(data)
}

func (r *Reader) Byte(reg uint8) int {
	if r.error != nil {
		return 0
	}
	val, err := r.dev.ReadByteData(reg)
	if err != nil {
		r.error = &BusError{Op: "read", Reg: reg, Err: err}
		return 0
	}
	return int(val)
}

func (r *Reader) Write(reg, val uint8) {
	if r.error != nil {
		return
	}
	if err := r.dev.WriteByteData(reg, val); err != nil {
		r.error = &BusError{Op: "write", Reg: reg, Err: err}
	}
}

func signed(data []byte) int {
	res := int(int8(data[0]))
	for _, val := range data[1:] {
		res <<= 8
		res |= int(val)
	}
	return res
}

func unsigned(data []byte) int {
	res := 0
	for _, val := range data {
		res <<= 8
		res |= int(val)
	}
	return res
}
