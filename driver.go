// Package qmc5883l implements a driver for the QMC5883L 3-axis magnetometer
// (QST's clone of the Honeywell HMC5883) over I2C. A datasheet for this chip is
// at http://wiki.sunfounder.cc/images/7/72/QMC5883L-Datasheet-1.0.pdf
//
// The driver is synchronous: Configure and Read block for the duration of their
// bus transactions, and there is no background polling goroutine. It performs no
// locking of its own; callers sharing a Driver across goroutines must
// synchronize access themselves.
package qmc5883l

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/viam-labs/qmc5883l/buses"
	"github.com/viam-labs/qmc5883l/utils"
)

// ErrNotConfigured is returned by operations that need the chip's control
// registers written first.
var ErrNotConfigured = errors.New("magnetometer has not been configured")

const (
	// The chip reports temperature at 100 counts per degree Celsius, fixed by
	// its documented sensitivity.
	temperatureLSBPerDegC = 100.0

	// How long to wait between status polls while waiting for a fresh sample.
	dataWaitInterval = 5 * time.Millisecond

	// How long to wait between samples during a calibration sweep.
	calibrationInterval = 10 * time.Millisecond
)

// A Reading is one polled sample: raw axis counts (hard-iron offsets already
// subtracted), the status byte that accompanied it, and the die temperature in
// degrees Celsius. Overflow in Status is data, not an error: saturation on one
// axis does not invalidate the others, so the caller decides whether to keep
// the sample.
type Reading struct {
	X, Y, Z     int16
	Status      StatusFlags
	Temperature float64
}

// Driver talks to one QMC5883L on an injected bus. It does not own the bus;
// multiple drivers at distinct addresses can share one.
type Driver struct {
	bus     buses.I2C
	address byte
	logger  golog.Logger
	clock   clock.Clock

	configured bool
	control    byte // last written control 1 value, kept for diagnostics
	cfg        Config

	xOff, yOff, zOff int16
	tempOffset       float64
}

// Option configures a Driver at construction.
type Option func(*Driver)

// WithAddress overrides the chip's default I2C address, for boards that remap
// the device behind a translator.
func WithAddress(addr byte) Option {
	return func(d *Driver) {
		d.address = addr
	}
}

// WithClock substitutes the wall clock used for poll and calibration sleeps.
func WithClock(c clock.Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// New returns a driver for a chip on the given bus. No bus traffic happens
// until Configure.
func New(bus buses.I2C, logger golog.Logger, opts ...Option) *Driver {
	d := &Driver{
		bus:     bus,
		address: DefaultAddress,
		logger:  logger,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Configure encodes the given options and writes them to the chip: first the
// set/reset period register, then control register 1. The period register must
// be primed before the mode bits take effect, otherwise the first sample can
// come out with stale set/reset behavior. Bus faults are surfaced immediately
// with no retry; retry policy belongs to the caller, who knows the board's
// timing.
func (d *Driver) Configure(ctx context.Context, cfg Config) (err error) {
	if err := cfg.Validate(""); err != nil {
		return err
	}

	handle, err := d.bus.OpenHandle(d.address)
	if err != nil {
		return errors.Wrap(err, "can't open bus handle")
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()

	if err := handle.WriteByteData(ctx, regRstPeriod, rstPeriodValue); err != nil {
		return errors.Wrap(err, "can't write set/reset period register")
	}
	control := cfg.controlByte()
	if err := handle.WriteByteData(ctx, regControl1, control); err != nil {
		return errors.Wrap(err, "can't write control register")
	}

	d.cfg = cfg
	d.control = control
	d.configured = true
	d.logger.Debugf("configured QMC5883L at address 0x%X with control byte 0x%02X", d.address, control)
	return nil
}

// Read polls the chip once: status register, then the six data register bytes
// in one burst, then the temperature register pair. The operation is
// all-or-nothing; a bus fault at any step aborts it with no partial result.
func (d *Driver) Read(ctx context.Context) (_ Reading, err error) {
	if !d.configured {
		return Reading{}, ErrNotConfigured
	}

	handle, err := d.bus.OpenHandle(d.address)
	if err != nil {
		return Reading{}, errors.Wrap(err, "can't open bus handle")
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()

	status, err := handle.ReadByteData(ctx, regStatus)
	if err != nil {
		return Reading{}, errors.Wrap(err, "can't read status register")
	}
	return d.readSample(ctx, handle, StatusFlags(status))
}

// readSample reads and decodes the data and temperature registers, pairing
// them with an already-read status byte. The handle stays open across the
// reads so the whole sample comes from one bus transaction window.
func (d *Driver) readSample(ctx context.Context, handle buses.I2CHandle, status StatusFlags) (Reading, error) {
	data, err := handle.ReadBlockData(ctx, regXoutLSB, 6)
	if err != nil {
		return Reading{}, errors.Wrap(err, "can't read data registers")
	}
	tempData, err := handle.ReadBlockData(ctx, regToutLSB, 2)
	if err != nil {
		return Reading{}, errors.Wrap(err, "can't read temperature registers")
	}

	r := Reading{
		X:           utils.Int16FromBytesLE(data[0:2]) - d.xOff,
		Y:           utils.Int16FromBytesLE(data[2:4]) - d.yOff,
		Z:           utils.Int16FromBytesLE(data[4:6]) - d.zOff,
		Status:      status,
		Temperature: float64(utils.Int16FromBytesLE(tempData))/temperatureLSBPerDegC + d.tempOffset,
	}
	if r.Status.Overflow() {
		d.logger.Debugw("axis saturated during measurement", "status", byte(r.Status))
	}
	return r, nil
}

// WaitForData polls the status register until a fresh sample is ready, then
// reads and returns it. The bus is held for the whole wait. The poll loop
// sleeps between attempts and honors ctx cancellation.
func (d *Driver) WaitForData(ctx context.Context) (_ Reading, err error) {
	if !d.configured {
		return Reading{}, ErrNotConfigured
	}

	handle, err := d.bus.OpenHandle(d.address)
	if err != nil {
		return Reading{}, errors.Wrap(err, "can't open bus handle")
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()

	statusReg := &buses.I2CRegister{Handle: handle, Register: regStatus}
	for {
		status, err := statusReg.ReadByteData(ctx)
		if err != nil {
			return Reading{}, errors.Wrap(err, "can't read status register")
		}
		if StatusFlags(status).DataReady() {
			return d.readSample(ctx, handle, StatusFlags(status))
		}
		if err := ctx.Err(); err != nil {
			return Reading{}, err
		}
		select {
		case <-ctx.Done():
			return Reading{}, ctx.Err()
		case <-d.clock.After(dataWaitInterval):
		}
	}
}

// Reset issues a soft reset through control register 2, returning all chip
// registers to their power-on values. The driver drops back to its
// unconfigured state, so Configure must run again before the next Read.
func (d *Driver) Reset(ctx context.Context) error {
	if err := d.writeByte(ctx, regControl2, softReset); err != nil {
		return errors.Wrap(err, "can't write soft reset")
	}
	d.configured = false
	d.control = 0
	return nil
}

// Standby stops continuous sampling by rewriting control register 1 with the
// mode bits cleared. The rest of the configuration is preserved, and the
// driver stays configured; a later Configure with ModeContinuous resumes
// sampling.
func (d *Driver) Standby(ctx context.Context) error {
	if !d.configured {
		return ErrNotConfigured
	}
	cfg := d.cfg
	cfg.Mode = ModeStandby
	control := cfg.controlByte()
	if err := d.writeByte(ctx, regControl1, control); err != nil {
		return errors.Wrap(err, "can't write control register")
	}
	d.cfg = cfg
	d.control = control
	return nil
}

// CheckIdentity reads the chip ID register and verifies the fixed QMC5883L
// signature, catching a miswired or wrong device before any samples are
// trusted.
func (d *Driver) CheckIdentity(ctx context.Context) (err error) {
	handle, err := d.bus.OpenHandle(d.address)
	if err != nil {
		return errors.Wrap(err, "can't open bus handle")
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()

	id, err := handle.ReadByteData(ctx, regChipID)
	if err != nil {
		return errors.Wrap(err, "can't read chip ID register")
	}
	if id != chipIDValue {
		return errors.Errorf("unexpected non-QMC5883L device at address 0x%X: chip ID 0x%02X", d.address, id)
	}
	return nil
}

// ControlByte returns the last value written to control register 1, for
// diagnostics. It is zero while the driver is unconfigured.
func (d *Driver) ControlByte() byte {
	return d.control
}

// Close puts the chip in standby if it was sampling. The bus is injected, not
// owned, so it is left open.
func (d *Driver) Close(ctx context.Context) error {
	if !d.configured {
		return nil
	}
	return d.Standby(ctx)
}

// Field converts a reading into a field vector in gauss, using the full-scale
// range the chip was configured with.
func (d *Driver) Field(r Reading) (r3.Vector, error) {
	if !d.configured {
		return r3.Vector{}, ErrNotConfigured
	}
	scale := d.cfg.lsbPerGauss()
	return r3.Vector{
		X: float64(r.X) / scale,
		Y: float64(r.Y) / scale,
		Z: float64(r.Z) / scale,
	}, nil
}

// writeByte writes one register in its own bus transaction.
func (d *Driver) writeByte(ctx context.Context, register, value byte) (err error) {
	handle, err := d.bus.OpenHandle(d.address)
	if err != nil {
		return errors.Wrap(err, "can't open bus handle")
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()
	return handle.WriteByteData(ctx, register, value)
}
