// Package inject provides injectable test doubles for the bus interfaces.
package inject

import (
	"context"

	"github.com/viam-labs/qmc5883l/buses"
)

// I2C is an injected I2C bus.
type I2C struct {
	buses.I2C
	OpenHandleFunc func(addr byte) (buses.I2CHandle, error)
}

// OpenHandle calls the injected OpenHandle or the real version.
func (i *I2C) OpenHandle(addr byte) (buses.I2CHandle, error) {
	if i.OpenHandleFunc == nil {
		return i.I2C.OpenHandle(addr)
	}
	return i.OpenHandleFunc(addr)
}

// I2CHandle is an injected I2C handle.
type I2CHandle struct {
	buses.I2CHandle
	WriteFunc          func(ctx context.Context, tx []byte) error
	ReadFunc           func(ctx context.Context, count int) ([]byte, error)
	ReadByteDataFunc   func(ctx context.Context, register byte) (byte, error)
	WriteByteDataFunc  func(ctx context.Context, register, data byte) error
	ReadBlockDataFunc  func(ctx context.Context, register byte, numBytes uint8) ([]byte, error)
	WriteBlockDataFunc func(ctx context.Context, register byte, data []byte) error
	CloseFunc          func() error
}

// Write calls the injected Write or the real version.
func (h *I2CHandle) Write(ctx context.Context, tx []byte) error {
	if h.WriteFunc == nil {
		return h.I2CHandle.Write(ctx, tx)
	}
	return h.WriteFunc(ctx, tx)
}

// Read calls the injected Read or the real version.
func (h *I2CHandle) Read(ctx context.Context, count int) ([]byte, error) {
	if h.ReadFunc == nil {
		return h.I2CHandle.Read(ctx, count)
	}
	return h.ReadFunc(ctx, count)
}

// ReadByteData calls the injected ReadByteData or the real version.
func (h *I2CHandle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	if h.ReadByteDataFunc == nil {
		return h.I2CHandle.ReadByteData(ctx, register)
	}
	return h.ReadByteDataFunc(ctx, register)
}

// WriteByteData calls the injected WriteByteData or the real version.
func (h *I2CHandle) WriteByteData(ctx context.Context, register, data byte) error {
	if h.WriteByteDataFunc == nil {
		return h.I2CHandle.WriteByteData(ctx, register, data)
	}
	return h.WriteByteDataFunc(ctx, register, data)
}

// ReadBlockData calls the injected ReadBlockData or the real version.
func (h *I2CHandle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	if h.ReadBlockDataFunc == nil {
		return h.I2CHandle.ReadBlockData(ctx, register, numBytes)
	}
	return h.ReadBlockDataFunc(ctx, register, numBytes)
}

// WriteBlockData calls the injected WriteBlockData or the real version.
func (h *I2CHandle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	if h.WriteBlockDataFunc == nil {
		return h.I2CHandle.WriteBlockData(ctx, register, data)
	}
	return h.WriteBlockDataFunc(ctx, register, data)
}

// Close calls the injected Close or the real version.
func (h *I2CHandle) Close() error {
	if h.CloseFunc == nil {
		return h.I2CHandle.Close()
	}
	return h.CloseFunc()
}
