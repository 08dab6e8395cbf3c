package accgyro

import (
	"errors"
	"testing"

	"github.com/b3nn0/gyrod/sensors/spibus"
)

type nullBus struct{ speeds []int }

func (b *nullBus) Transfer(tx, rx []byte) error { return nil }
func (b *nullBus) SetSpeed(hz int) error       { b.speeds = append(b.speeds, hz); return nil }
func (b *nullBus) Close() error                { return nil }

func TestDetectSPIFirstMatchWins(t *testing.T) {
	bus := &nullBus{}
	dev := spibus.NewDevice(bus, 10000000)

	var calls []string
	miss := func(*spibus.Device) Sensor { calls = append(calls, "miss"); return None }
	hit := func(*spibus.Device) Sensor { calls = append(calls, "hit"); return ICM42605SPI }
	never := func(*spibus.Device) Sensor { calls = append(calls, "never"); return ICM42605SPI }

	res := DetectSPI(dev, 10000000, miss, hit, never)
	if res.Sensor != ICM42605SPI {
		t.Fatalf("sensor = %v", res.Sensor)
	}
	if len(calls) != 2 || calls[1] != "hit" {
		t.Errorf("calls = %v", calls)
	}
	if len(bus.speeds) != 0 {
		t.Errorf("bus speed touched on success: %v", bus.speeds)
	}
}

func TestDetectSPIRestoresSpeedOnFailure(t *testing.T) {
	bus := &nullBus{}
	dev := spibus.NewDevice(bus, 10000000)

	slow := func(d *spibus.Device) Sensor {
		d.SetSpeed(1000000)
		return None
	}
	res := DetectSPI(dev, 10000000, slow)
	if res.Sensor != None {
		t.Fatalf("sensor = %v", res.Sensor)
	}
	if dev.Speed() != 10000000 {
		t.Errorf("speed = %d, want 10000000", dev.Speed())
	}
}

type pin struct {
	err   error
	armed bool
}

func (p *pin) Arm() error  { p.armed = p.err == nil; return p.err }
func (p *pin) Ready() bool { return p.armed }
func (p *pin) Disarm()     { p.armed = false }

func TestGyroPreInit(t *testing.T) {
	good := &pin{}
	g := &GyroDev{DataReadyPin: good}
	GyroPreInit(g)
	if !good.armed || g.DataReadyPin == nil {
		t.Errorf("pin not armed")
	}

	g = &GyroDev{DataReadyPin: &pin{err: errors.New("no gpio")}}
	GyroPreInit(g)
	if g.DataReadyPin != nil {
		t.Errorf("failed pin should be dropped")
	}

	GyroPreInit(&GyroDev{})
}

func TestSensorString(t *testing.T) {
	if None.String() != "none" || ICM42605SPI.String() == "none" {
		t.Errorf("unexpected names %q %q", None, ICM42605SPI)
	}
}
