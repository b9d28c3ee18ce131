package i2c

import (
	"errors"
	"testing"
)

func TestSigned(t *testing.T) {
	cases := []struct {
		in  []byte
		out int
	}{
		{[]byte{1, 2, 3, 4}, 1<<24 + 2<<16 + 3<<8 + 4},
		{[]byte{0x7f, 0xff}, 0x7fff},
		{[]byte{0xff, 0xff}, -1},
		{[]byte{0x80, 0x00}, -32768},
		{[]byte{0xe7}, -25},
	}

	for _, tc := range cases {
		if res := signed(tc.in); res != tc.out {
			t.Errorf("%d != expected %d for %v", res, tc.out, tc.in)
		}
	}
}

func TestUnsigned(t *testing.T) {
	cases := []struct {
		in  []byte
		out int
	}{
		{[]byte{0xff, 0xff}, 0xffff},
		{[]byte{0x8d, 0xbc}, 36284},
		{[]byte{0x80}, 128},
	}

	for _, tc := range cases {
		if res := unsigned(tc.in); res != tc.out {
			t.Errorf("%d != expected %d for %v", res, tc.out, tc.in)
		}
	}
}

type regDevice struct {
	regs    [256]byte
	failReg int
	reads   int
}

var errNack = errors.New("nack")

func (d *regDevice) SetAddress(int) error { return nil }

func (d *regDevice) ReadByteData(reg uint8) (uint8, error) {
	d.reads++
	if int(reg) == d.failReg {
		return 0, errNack
	}
	return d.regs[reg], nil
}

func (d *regDevice) WriteByteData(reg, val uint8) error {
	if int(reg) == d.failReg {
		return errNack
	}
	d.regs[reg] = val
	return nil
}

func TestReaderHighByteFirst(t *testing.T) {
	dev := &regDevice{failReg: -1}
	dev.regs[0x8b] = 0x67
	dev.regs[0x8a] = 0x32

	r := NewReader(dev)
	if v := r.Signed(0x8b, 0x8a); v != 0x6732 {
		t.Errorf("got 0x%x", v)
	}
	if err := r.Error(); err != nil {
		t.Fatal(err)
	}
}

func TestReaderStickyError(t *testing.T) {
	dev := &regDevice{failReg: 0x10}
	r := NewReader(dev)

	r.Byte(0x01)
	r.Byte(0x10)
	reads := dev.reads
	if v := r.Byte(0x02); v != 0 {
		t.Errorf("read after error returned %d", v)
	}
	r.Write(0x03, 1)
	if dev.reads != reads || dev.regs[0x03] != 0 {
		t.Error("bus touched after error")
	}

	var be *BusError
	if !errors.As(r.Error(), &be) {
		t.Fatalf("not a bus error: %v", r.Error())
	}
	if be.Reg != 0x10 || be.Op != "read" || !errors.Is(r.Error(), errNack) {
		t.Errorf("unexpected error %v", be)
	}

	r.Reset()
	if r.Error() != nil {
		t.Error("error survived reset")
	}
}
