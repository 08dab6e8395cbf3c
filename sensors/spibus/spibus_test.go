package spibus

import (
	"bytes"
	"errors"
	"testing"
)

type loopBus struct {
	txs    [][]byte
	reply  []byte
	err    error
	speeds []int
}

func (b *loopBus) Transfer(tx, rx []byte) error {
	b.txs = append(b.txs, append([]byte(nil), tx...))
	if b.err != nil {
		return b.err
	}
	copy(rx, b.reply)
	return nil
}

func (b *loopBus) SetSpeed(hz int) error {
	b.speeds = append(b.speeds, hz)
	return nil
}

func (b *loopBus) Close() error { return nil }

func TestWriteRegisterClearsReadFlag(t *testing.T) {
	bus := &loopBus{}
	d := NewDevice(bus, 1000000)

	if err := d.WriteRegister(0xCE, 0x0F); err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := []byte{0x4E, 0x0F}; !bytes.Equal(bus.txs[0], want) {
		t.Errorf("tx = % x, want % x", bus.txs[0], want)
	}
}

func TestReadRegisterBuffer(t *testing.T) {
	bus := &loopBus{reply: []byte{0x00, 0x01, 0x02, 0x03}}
	d := NewDevice(bus, 1000000)

	data := make([]byte, 3)
	if err := d.ReadRegisterBuffer(0x1F, data); err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := []byte{0x9F, 0xFF, 0xFF, 0xFF}; !bytes.Equal(bus.txs[0], want) {
		t.Errorf("tx = % x, want % x", bus.txs[0], want)
	}
	if want := []byte{0x01, 0x02, 0x03}; !bytes.Equal(data, want) {
		t.Errorf("data = % x, want % x", data, want)
	}
}

func TestReadFailureKeepsBuffer(t *testing.T) {
	bus := &loopBus{err: errors.New("nak")}
	d := NewDevice(bus, 1000000)

	data := []byte{0xAA, 0xBB}
	if err := d.ReadRegisterBuffer(0x1F, data); err == nil {
		t.Fatal("expected error")
	}
	if data[0] != 0xAA || data[1] != 0xBB {
		t.Errorf("data modified on failure: % x", data)
	}
}

func TestWriteErrorsCounted(t *testing.T) {
	bus := &loopBus{err: errors.New("nak")}
	d := NewDevice(bus, 1000000)

	d.WriteRegister(0x10, 1)
	d.Exclusive(func(tx Tx) {
		tx.WriteRegister(0x11, 2)
	})
	if got := d.WriteErrors(); got != 2 {
		t.Errorf("WriteErrors() = %d, want 2", got)
	}
}

func TestSetSpeed(t *testing.T) {
	bus := &loopBus{}
	d := NewDevice(bus, 24000000)

	if err := d.SetSpeed(1000000); err != nil {
		t.Fatalf("set speed: %v", err)
	}
	if d.Speed() != 1000000 {
		t.Errorf("Speed() = %d", d.Speed())
	}
	if len(bus.speeds) != 1 || bus.speeds[0] != 1000000 {
		t.Errorf("bus speeds = %v", bus.speeds)
	}
}

func TestShortRx(t *testing.T) {
	d := NewDevice(&loopBus{}, 1000000)
	if err := d.Transfer([]byte{1, 2}, make([]byte, 1)); !errors.Is(err, ErrShortTransfer) {
		t.Errorf("err = %v, want ErrShortTransfer", err)
	}
}
