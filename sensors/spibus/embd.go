package spibus

import (
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"
)

// EmbdBus uses the Linux spidev driver through embd. spidev fixes the clock when the channel
// is opened, so a speed change reopens the channel.
type EmbdBus struct {
	channel byte
	bus     embd.SPIBus
}

func NewEmbdBus(channel byte, speedHz int) (*EmbdBus, error) {
	if err := embd.InitSPI(); err != nil {
		return nil, err
	}
	return &EmbdBus{
		channel: channel,
		bus:     embd.NewSPIBus(embd.SPIMode3, channel, speedHz, 8, 0),
	}, nil
}

func (b *EmbdBus) Transfer(tx, rx []byte) error {
	if b.bus == nil {
		return ErrClosed
	}
	copy(rx, tx)
	return b.bus.TransferAndReceiveData(rx[:len(tx)])
}

func (b *EmbdBus) SetSpeed(hz int) error {
	if b.bus == nil {
		return ErrClosed
	}
	if err := b.bus.Close(); err != nil {
		return err
	}
	b.bus = embd.NewSPIBus(embd.SPIMode3, b.channel, hz, 8, 0)
	return nil
}

func (b *EmbdBus) Close() error {
	if b.bus == nil {
		return nil
	}
	err := b.bus.Close()
	b.bus = nil
	if cerr := embd.CloseSPI(); err == nil {
		err = cerr
	}
	return err
}
