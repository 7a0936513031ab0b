// Package buses abstracts the two-wire serial bus a sensor hangs off of, so
// drivers can be exercised against an in-memory transport as well as real hardware.
package buses

import (
	"context"
)

// I2C is a shareable I2C bus.
type I2C interface {
	// OpenHandle locks the bus for one device and returns a handle that MUST
	// be closed when done. You cannot have two open handles for the same address.
	OpenHandle(addr byte) (I2CHandle, error)
}

// I2CHandle is a single-device view of the bus. It MUST be closed to release
// the bus for other devices.
type I2CHandle interface {
	Write(ctx context.Context, tx []byte) error
	// Read returns exactly count bytes or an error; short reads are faults.
	Read(ctx context.Context, count int) ([]byte, error)

	ReadByteData(ctx context.Context, register byte) (byte, error)
	WriteByteData(ctx context.Context, register, data byte) error

	ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error)
	WriteBlockData(ctx context.Context, register byte, data []byte) error

	// Close releases the lock on the bus.
	Close() error
}

// An I2CRegister is a lightweight wrapper around a handle for one particular
// register, useful when the same register is accessed over and over.
type I2CRegister struct {
	Handle   I2CHandle
	Register byte
}

// ReadByteData reads a byte from the wrapped register.
func (reg *I2CRegister) ReadByteData(ctx context.Context) (byte, error) {
	return reg.Handle.ReadByteData(ctx, reg.Register)
}

// WriteByteData writes a byte to the wrapped register.
func (reg *I2CRegister) WriteByteData(ctx context.Context, data byte) error {
	return reg.Handle.WriteByteData(ctx, reg.Register, data)
}
