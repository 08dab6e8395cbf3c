// Package spibus provides the shared SPI bus handle used by the accelerometer/gyro drivers.
// A Device wraps a Bus transport and adds register access and the bus clock speed that
// drivers temporarily lower while bringing a sensor up.
package spibus

import (
	"errors"
	"fmt"
	"sync"
)

const (
	readFlag  byte = 0x80 // set on the register address for reads
	writeMask byte = 0x7F
	filler    byte = 0xFF // clocked out while reading
)

var (
	ErrShortTransfer = errors.New("spibus: rx buffer shorter than tx")
	ErrClosed        = errors.New("spibus: bus closed")
)

// Bus is a full-duplex SPI transport with a single chip select.
type Bus interface {
	// Transfer clocks out tx and stores the bytes clocked in into rx. len(rx) >= len(tx).
	Transfer(tx, rx []byte) error
	// SetSpeed changes the bus clock. Implementations derive their own clock divisor.
	SetSpeed(hz int) error
	Close() error
}

// Device is a Bus shared between everything on the sensor subsystem. The clock speed is
// visible to every user of the handle.
type Device struct {
	bus Bus

	mu          sync.Mutex
	speed       int
	writeErrors uint64
}

// NewDevice wraps bus, which is assumed to be running at speedHz.
func NewDevice(bus Bus, speedHz int) *Device {
	return &Device{bus: bus, speed: speedHz}
}

// Speed returns the current bus clock in Hz.
func (d *Device) Speed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speed
}

// SetSpeed changes the bus clock for all users of the handle.
func (d *Device) SetSpeed(hz int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setSpeed(hz)
}

func (d *Device) setSpeed(hz int) error {
	if err := d.bus.SetSpeed(hz); err != nil {
		return fmt.Errorf("spibus: set speed %d Hz: %w", hz, err)
	}
	d.speed = hz
	return nil
}

// WriteErrors returns the number of register writes that failed since the handle was created.
func (d *Device) WriteErrors() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeErrors
}

// Transfer performs one raw transfer.
func (d *Device) Transfer(tx, rx []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transfer(tx, rx)
}

func (d *Device) transfer(tx, rx []byte) error {
	if len(rx) < len(tx) {
		return ErrShortTransfer
	}
	return d.bus.Transfer(tx, rx)
}

func (d *Device) WriteRegister(reg, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(reg, value)
}

func (d *Device) writeRegister(reg, value byte) error {
	tx := []byte{reg & writeMask, value}
	rx := make([]byte, len(tx))
	err := d.transfer(tx, rx)
	if err != nil {
		d.writeErrors++
	}
	return err
}

// ReadRegister reads a single register.
func (d *Device) ReadRegister(reg byte) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(reg)
}

func (d *Device) readRegister(reg byte) (byte, error) {
	var buf [1]byte
	if err := d.readRegisterBuffer(reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadRegisterBuffer burst-reads len(data) consecutive registers starting at reg.
// data is left untouched when the transfer fails.
func (d *Device) ReadRegisterBuffer(reg byte, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegisterBuffer(reg, data)
}

func (d *Device) readRegisterBuffer(reg byte, data []byte) error {
	tx := make([]byte, len(data)+1)
	tx[0] = reg | readFlag
	for i := 1; i < len(tx); i++ {
		tx[i] = filler
	}
	rx := make([]byte, len(tx))
	if err := d.transfer(tx, rx); err != nil {
		return err
	}
	copy(data, rx[1:])
	return nil
}

// Tx is the view of a Device handed to Exclusive. Its methods must only be used inside the
// callback.
type Tx struct {
	d *Device
}

func (t Tx) WriteRegister(reg, value byte) error { return t.d.writeRegister(reg, value) }

// Exclusive runs fn with the handle locked, so that register sequences which depend on
// device-global state (bank select) are never interleaved with other bus traffic.
func (d *Device) Exclusive(fn func(tx Tx)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(Tx{d: d})
}

// Close closes the underlying transport.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bus.Close()
}
