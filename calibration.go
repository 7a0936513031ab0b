package qmc5883l

import (
	"context"

	"github.com/pkg/errors"
)

// SetOffsets stores hard-iron calibration offsets, subtracted from every
// subsequent reading's raw counts.
func (d *Driver) SetOffsets(x, y, z int16) {
	d.xOff = x
	d.yOff = y
	d.zOff = z
}

// Offsets returns the current hard-iron calibration offsets.
func (d *Driver) Offsets() (x, y, z int16) {
	return d.xOff, d.yOff, d.zOff
}

// SetTemperatureOffset stores a calibration offset in degrees Celsius, added
// to every subsequent temperature reading. The chip's temperature output is
// uncalibrated from the factory; only its slope is specified.
func (d *Driver) SetTemperatureOffset(offset float64) {
	d.tempOffset = offset
}

// Calibrate sweeps readings until ctx is cancelled, tracking the extremes seen
// on each axis, then stores the midpoints as hard-iron offsets. Rotate the
// sensor through a full turn while the sweep runs, then cancel. Any previous
// offsets are cleared before the sweep so the extremes come from raw counts.
func (d *Driver) Calibrate(ctx context.Context) error {
	if !d.configured {
		return ErrNotConfigured
	}
	d.SetOffsets(0, 0, 0)

	var minX, maxX, minY, maxY, minZ, maxZ int16
	sampled := false
	for {
		select {
		case <-ctx.Done():
			if !sampled {
				return errors.New("no samples collected during calibration sweep")
			}
			d.SetOffsets((minX+maxX)/2, (minY+maxY)/2, (minZ+maxZ)/2)
			d.logger.Debugf("calibrated offsets x=%d y=%d z=%d", d.xOff, d.yOff, d.zOff)
			return nil
		default:
		}

		r, err := d.Read(ctx)
		if err != nil {
			return err
		}
		if r.Status.DataReady() {
			if !sampled {
				minX, maxX = r.X, r.X
				minY, maxY = r.Y, r.Y
				minZ, maxZ = r.Z, r.Z
				sampled = true
			} else {
				minX, maxX = min(minX, r.X), max(maxX, r.X)
				minY, maxY = min(minY, r.Y), max(maxY, r.Y)
				minZ, maxZ = min(minZ, r.Z), max(maxZ, r.Z)
			}
		}
		d.clock.Sleep(calibrationInterval)
	}
}
