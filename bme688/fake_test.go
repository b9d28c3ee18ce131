package bme688

import (
	"errors"
	"sync"
)

var testCalibration = Calibration{
	T1: 25969, T2: 26418, T3: 3,
	P1: 36284, P2: -10427, P3: 88, P4: 6893, P5: -110,
	P6: 30, P7: 33, P8: -2430, P9: -2969, P10: 30,
	H1: 774, H2: 1033, H3: 0, H4: 45, H5: 20, H6: 120, H7: -100,
	G1: -25, G2: -11590, G3: 18,
	HeatRng: 1, HeatVal: 44,
}

var errNack = errors.New("no acknowledge")

// fakeDevice is a BME688 register map. Writing forced mode to ctrl_meas
// completes a measurement immediately unless neverReady is set.
type fakeDevice struct {
	mut        sync.Mutex
	regs       [256]byte
	addr       int
	triggers   int
	neverReady bool
	// wrongID makes the chip id register read as zero this many times.
	wrongID int
	// failReg makes every access to that register fail.
	failReg int
	// failAfterTriggers makes status reads fail from that trigger on.
	failAfterTriggers int
	// onTrigger may load new data registers for the cycle.
	onTrigger func(d *fakeDevice, n int)
}

func newFakeDevice() *fakeDevice {
	d := &fakeDevice{failReg: -1}
	d.regs[regChipID] = chipID
	d.setCalibration(testCalibration)
	d.setRaw(500000, 400000, 22000, 400, 5, true)
	return d
}

func (d *fakeDevice) SetAddress(addr int) error {
	d.mut.Lock()
	defer d.mut.Unlock()
	d.addr = addr
	return nil
}

func (d *fakeDevice) ReadByteData(reg uint8) (uint8, error) {
	d.mut.Lock()
	defer d.mut.Unlock()
	if int(reg) == d.failReg {
		return 0, errNack
	}
	if reg == regMeasStatus && d.failAfterTriggers > 0 && d.triggers >= d.failAfterTriggers {
		return 0, errNack
	}
	if reg == regChipID && d.wrongID > 0 {
		d.wrongID--
		return 0, nil
	}
	return d.regs[reg], nil
}

func (d *fakeDevice) WriteByteData(reg, val uint8) error {
	d.mut.Lock()
	defer d.mut.Unlock()
	if int(reg) == d.failReg {
		return errNack
	}
	d.regs[reg] = val
	if reg == regCtrlMeas && val&modeMask == modeForced {
		d.triggers++
		d.regs[regMeasStatus] = 0
		if d.onTrigger != nil {
			d.onTrigger(d, d.triggers)
		}
		if !d.neverReady {
			d.regs[regMeasStatus] |= statusNewData
		}
		// Back to sleep once the cycle is done.
		d.regs[regCtrlMeas] &^= modeMask
	}
	return nil
}

func (d *fakeDevice) put16(msb, lsb uint8, v uint16) {
	d.regs[msb] = uint8(v >> 8)
	d.regs[lsb] = uint8(v)
}

func (d *fakeDevice) setCalibration(c Calibration) {
	d.put16(regParT1MSB, regParT1LSB, uint16(c.T1))
	d.put16(regParT2MSB, regParT2LSB, uint16(c.T2))
	d.regs[regParT3] = uint8(c.T3)

	d.put16(regParP1MSB, regParP1LSB, c.P1)
	d.put16(regParP2MSB, regParP2LSB, uint16(c.P2))
	d.regs[regParP3] = uint8(c.P3)
	d.put16(regParP4MSB, regParP4LSB, uint16(c.P4))
	d.put16(regParP5MSB, regParP5LSB, uint16(c.P5))
	d.regs[regParP6] = uint8(c.P6)
	d.regs[regParP7] = uint8(c.P7)
	d.put16(regParP8MSB, regParP8LSB, uint16(c.P8))
	d.put16(regParP9MSB, regParP9LSB, uint16(c.P9))
	d.regs[regParP10] = uint8(c.P10)

	d.regs[regParH1MSB] = uint8(c.H1 >> 4)
	d.regs[regParH2MSB] = uint8(c.H2 >> 4)
	d.regs[regParH12LSB] = uint8(c.H2&0x0f)<<4 | uint8(c.H1&0x0f)
	d.regs[regParH3] = uint8(c.H3)
	d.regs[regParH4] = uint8(c.H4)
	d.regs[regParH5] = uint8(c.H5)
	d.regs[regParH6] = uint8(c.H6)
	d.regs[regParH7] = uint8(c.H7)

	d.regs[regParG1] = uint8(c.G1)
	d.put16(regParG2MSB, regParG2LSB, uint16(c.G2))
	d.regs[regParG3] = c.G3
	// Unrelated bits set around the range field.
	d.regs[regResHeatRng] = 0b_1000_0110 | c.HeatRng<<4
	d.regs[regResHeatVal] = uint8(c.HeatVal)
}

func (d *fakeDevice) setRaw(temp, press, hum, gas int32, rng uint8, stable bool) {
	d.regs[regTempMSB] = uint8(temp >> 12)
	d.regs[regTempLSB] = uint8(temp >> 4)
	d.regs[regTempXLSB] = uint8(temp<<4) | 0x0a
	d.regs[regPressMSB] = uint8(press >> 12)
	d.regs[regPressLSB] = uint8(press >> 4)
	d.regs[regPressXLSB] = uint8(press<<4) | 0x05
	d.regs[regHumMSB] = uint8(hum >> 8)
	d.regs[regHumLSB] = uint8(hum)
	d.regs[regGasMSB] = uint8(gas >> 2)
	lsb := uint8(gas&0x03)<<6 | rng&gasRangeMask
	if stable {
		lsb |= gasHeaterStable
	}
	d.regs[regGasLSB] = lsb
}

func (d *fakeDevice) reg(r uint8) uint8 {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.regs[r]
}

func (d *fakeDevice) triggerCount() int {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.triggers
}
