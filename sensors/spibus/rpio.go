package spibus

import (
	"log"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOBus drives the BCM283x hardware SPI controller through /dev/gpiomem. rpio derives the
// core clock divisor from the requested speed.
type RPIOBus struct {
	dev    rpio.SpiDev
	closed bool
}

// NewRPIOBus opens the rpio memory map and starts SPI on dev with the given chip select,
// in mode 3 (CPOL=1, CPHA=1) at speedHz.
func NewRPIOBus(dev rpio.SpiDev, chipSelect uint8, speedHz int) (*RPIOBus, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	if err := rpio.SpiBegin(dev); err != nil {
		rpio.Close()
		return nil, err
	}
	rpio.SpiChipSelect(chipSelect)
	rpio.SpiMode(1, 1)
	rpio.SpiSpeed(speedHz)
	return &RPIOBus{dev: dev}, nil
}

func (b *RPIOBus) Transfer(tx, rx []byte) error {
	if b.closed {
		return ErrClosed
	}
	copy(rx, tx)
	rpio.SpiExchange(rx[:len(tx)])
	return nil
}

func (b *RPIOBus) SetSpeed(hz int) error {
	if b.closed {
		return ErrClosed
	}
	rpio.SpiSpeed(hz)
	return nil
}

func (b *RPIOBus) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	rpio.SpiEnd(b.dev)
	return rpio.Close()
}

// RPIOPin is a GPIO input watched for rising edges, used for the sensor's data-ready line.
type RPIOPin struct {
	pin rpio.Pin
}

func NewRPIOPin(bcm int) *RPIOPin {
	return &RPIOPin{pin: rpio.Pin(bcm)}
}

// Arm configures the pin as an input with rising edge detection.
func (p *RPIOPin) Arm() error {
	p.pin.Input()
	p.pin.PullDown()
	p.pin.Detect(rpio.RiseEdge)
	log.Printf("IMU Info: data-ready armed on GPIO%d\n", int(p.pin))
	return nil
}

// Ready reports whether a rising edge occurred since the last call.
func (p *RPIOPin) Ready() bool {
	return p.pin.EdgeDetected()
}

func (p *RPIOPin) Disarm() {
	p.pin.Detect(rpio.NoEdge)
}
