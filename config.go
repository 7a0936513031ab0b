package qmc5883l

import (
	"go.viam.com/utils"
)

// Oversampling is the number of internal samples averaged per reported
// measurement. Larger ratios lower noise at the cost of power.
type Oversampling byte

// Supported oversampling ratios.
const (
	Oversampling512 Oversampling = iota + 1
	Oversampling256
	Oversampling128
	Oversampling64
)

// bits returns the control register bits (7:6) for this ratio.
func (o Oversampling) bits() byte {
	switch o {
	case Oversampling256:
		return 0x40
	case Oversampling128:
		return 0x80
	case Oversampling64:
		return 0xC0
	default:
		return 0x00
	}
}

// Range is the full-scale measurement range. Use the 2 gauss range in
// magnetically clean environments, 8 gauss near strong fields.
type Range byte

// Supported ranges.
const (
	Range2Gauss Range = iota + 1
	Range8Gauss
)

// bits returns the control register bits (5:4) for this range.
func (r Range) bits() byte {
	if r == Range8Gauss {
		return 0x10
	}
	return 0x00
}

// DataRate is the output data rate.
type DataRate byte

// Supported output data rates.
const (
	DataRate10Hz DataRate = iota + 1
	DataRate50Hz
	DataRate100Hz
	DataRate200Hz
)

// bits returns the control register bits (3:2) for this rate.
func (d DataRate) bits() byte {
	switch d {
	case DataRate50Hz:
		return 0x04
	case DataRate100Hz:
		return 0x08
	case DataRate200Hz:
		return 0x0C
	default:
		return 0x00
	}
}

// Mode is the measurement mode.
type Mode byte

// Supported modes.
const (
	ModeStandby Mode = iota + 1
	ModeContinuous
)

// bits returns the control register bits (1:0) for this mode.
func (m Mode) bits() byte {
	if m == ModeContinuous {
		return 0x01
	}
	return 0x00
}

// Config holds the four axes of chip configuration. Every field must be set
// explicitly: power-on defaults vary by device batch, so none of them are
// filled in silently.
type Config struct {
	Oversampling Oversampling
	Range        Range
	DataRate     DataRate
	Mode         Mode
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch cfg.Oversampling {
	case Oversampling512, Oversampling256, Oversampling128, Oversampling64:
	default:
		return utils.NewConfigValidationFieldRequiredError(path, "oversampling")
	}
	switch cfg.Range {
	case Range2Gauss, Range8Gauss:
	default:
		return utils.NewConfigValidationFieldRequiredError(path, "range")
	}
	switch cfg.DataRate {
	case DataRate10Hz, DataRate50Hz, DataRate100Hz, DataRate200Hz:
	default:
		return utils.NewConfigValidationFieldRequiredError(path, "data_rate")
	}
	switch cfg.Mode {
	case ModeStandby, ModeContinuous:
	default:
		return utils.NewConfigValidationFieldRequiredError(path, "mode")
	}
	return nil
}

// controlByte packs the four configuration axes into the control 1 register
// value by ORing their bit patterns at fixed offsets.
func (cfg *Config) controlByte() byte {
	return cfg.Oversampling.bits() | cfg.Range.bits() | cfg.DataRate.bits() | cfg.Mode.bits()
}

// lsbPerGauss returns how many counts the chip reports per gauss at the
// configured range.
func (cfg *Config) lsbPerGauss() float64 {
	if cfg.Range == Range8Gauss {
		return 3000
	}
	return 12000
}
