package buses

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var hostInit sync.Once

// NewPeriphI2C opens an I2C bus by name ("1", "/dev/i2c-1", ...) through periph.io.
func NewPeriphI2C(name string) (I2C, error) {
	var initErr error
	hostInit.Do(func() {
		_, initErr = host.Init()
	})
	if initErr != nil {
		return nil, errors.Wrap(initErr, "error initializing periph host drivers")
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open I2C bus '%s'", name)
	}
	return &periphI2C{bus: bus}, nil
}

type periphI2C struct {
	mu  sync.Mutex
	bus i2c.BusCloser
}

func (b *periphI2C) OpenHandle(addr byte) (I2CHandle, error) {
	// Lock the bus so no other handle can use it until this one is closed.
	b.mu.Lock()
	return &periphI2CHandle{parent: b, dev: i2c.Dev{Bus: b.bus, Addr: uint16(addr)}}, nil
}

// Close closes the underlying bus device.
func (b *periphI2C) Close() error {
	return b.bus.Close()
}

type periphI2CHandle struct {
	parent *periphI2C
	dev    i2c.Dev
	closed bool
}

func (h *periphI2CHandle) Write(ctx context.Context, tx []byte) error {
	return h.dev.Tx(tx, nil)
}

func (h *periphI2CHandle) Read(ctx context.Context, count int) ([]byte, error) {
	buf := make([]byte, count)
	if err := h.dev.Tx(nil, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (h *periphI2CHandle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	result, err := h.ReadBlockData(ctx, register, 1)
	if err != nil {
		return 0, err
	}
	return result[0], nil
}

func (h *periphI2CHandle) WriteByteData(ctx context.Context, register, data byte) error {
	return h.dev.Tx([]byte{register, data}, nil)
}

func (h *periphI2CHandle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	buf := make([]byte, numBytes)
	if err := h.dev.Tx([]byte{register}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (h *periphI2CHandle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	return h.dev.Tx(append([]byte{register}, data...), nil)
}

func (h *periphI2CHandle) Close() error {
	if h.closed {
		return errors.New("I2C handle already closed")
	}
	h.closed = true
	h.parent.mu.Unlock()
	return nil
}
