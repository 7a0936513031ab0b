package qmc5883l

// Register map, fixed by the QMC5883L datasheet
// (http://wiki.sunfounder.cc/images/7/72/QMC5883L-Datasheet-1.0.pdf).
const (
	// DefaultAddress is the chip's fixed 7-bit I2C address.
	DefaultAddress = 0x0D

	// Output data registers, low/high byte pairs, two's-complement.
	regXoutLSB = 0x00
	regYoutLSB = 0x02
	regZoutLSB = 0x04

	regStatus = 0x06

	// Temperature output, low/high byte pair, two's-complement, 100 LSB/°C.
	regToutLSB = 0x07

	regControl1  = 0x09
	regControl2  = 0x0A
	regRstPeriod = 0x0B
	regChipID    = 0x0D

	// Control register 2 bits.
	softReset       = 0x80
	pointerRollover = 0x40

	// The set/reset period register takes this fixed value per the datasheet.
	rstPeriodValue = 0x01

	// The chip ID register always reads back 0xFF on a genuine QMC5883L.
	chipIDValue = 0xFF
)

// StatusFlags is the contents of the status register. The chip updates it on
// every access cycle, so a value is only meaningful for the read it came from.
type StatusFlags byte

// Status register bits.
const (
	StatusDataReady   StatusFlags = 1 << 0
	StatusOverflow    StatusFlags = 1 << 1
	StatusDataSkipped StatusFlags = 1 << 2
)

// DataReady reports whether a fresh sample is waiting in the data registers.
func (s StatusFlags) DataReady() bool {
	return s&StatusDataReady != 0
}

// Overflow reports whether any axis saturated during the measurement. A
// saturated sample is still returned to the caller; the other axes stay valid.
func (s StatusFlags) Overflow() bool {
	return s&StatusOverflow != 0
}

// DataSkipped reports whether a sample was dropped before being read out.
func (s StatusFlags) DataSkipped() bool {
	return s&StatusDataSkipped != 0
}
