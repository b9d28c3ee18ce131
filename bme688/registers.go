package bme688

// Bosch BME688 gas, temperature, humidity and pressure sensor

const (
	DefaultAddress = 0x77
	chipID         = 0x61
	softResetCmd   = 0xb6

	regChipID     = 0xd0
	regReset      = 0xe0
	regCtrlHum    = 0x72
	regCtrlMeas   = 0x74
	regConfig     = 0x75
	regCtrlGas0   = 0x70
	regCtrlGas1   = 0x71
	regMeasStatus = 0x1d
	regResHeat0   = 0x5a
	regGasWait0   = 0x64

	regPressMSB  = 0x1f
	regPressLSB  = 0x20
	regPressXLSB = 0x21
	regTempMSB   = 0x22
	regTempLSB   = 0x23
	regTempXLSB  = 0x24
	regHumMSB    = 0x25
	regHumLSB    = 0x26
	regGasMSB    = 0x2c
	regGasLSB    = 0x2d

	modeMask   = 0b_0000_0011
	modeForced = 0b_0000_0001

	statusNewData   = 0b_1000_0000
	gasHeaterStable = 0b_0001_0000
	gasRangeMask    = 0b_0000_1111
	runGas          = 0b_0010_0000
)

// Calibration registers, most significant byte first where a pair.
const (
	regParT1MSB = 0xea
	regParT1LSB = 0xe9
	regParT2MSB = 0x8b
	regParT2LSB = 0x8a
	regParT3    = 0x8c

	regParP1MSB  = 0x8f
	regParP1LSB  = 0x8e
	regParP2MSB  = 0x91
	regParP2LSB  = 0x90
	regParP3     = 0x92
	regParP4MSB  = 0x95
	regParP4LSB  = 0x94
	regParP5MSB  = 0x97
	regParP5LSB  = 0x96
	regParP6     = 0x99
	regParP7     = 0x98
	regParP8MSB  = 0x9d
	regParP8LSB  = 0x9c
	regParP9MSB  = 0x9f
	regParP9LSB  = 0x9e
	regParP10    = 0xa0
	regParH1MSB  = 0xe3
	regParH12LSB = 0xe2 // H1 low nibble, H2 high nibble
	regParH2MSB  = 0xe1
	regParH3     = 0xe4
	regParH4     = 0xe5
	regParH5     = 0xe6
	regParH6     = 0xe7
	regParH7     = 0xe8

	regParG1       = 0xed
	regParG2MSB    = 0xec
	regParG2LSB    = 0xeb
	regParG3       = 0xee
	regResHeatRng  = 0x02
	regResHeatVal  = 0x00
	resHeatRngMask = 0b_0011_0000
)

// Oversampling is the oversampling setting of one measurement channel.
type Oversampling uint8

const (
	OversamplingSkip Oversampling = iota
	Oversampling1x
	Oversampling2x
	Oversampling4x
	Oversampling8x
	Oversampling16x
)

// Filter is the IIR filter coefficient setting.
type Filter uint8

const (
	FilterOff Filter = iota
	Filter1
	Filter3
	Filter7
	Filter15
	Filter31
	Filter63
	Filter127
)
