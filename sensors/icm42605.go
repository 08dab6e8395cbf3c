package sensors

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/b3nn0/gyrod/sensors/accgyro"
	"github.com/b3nn0/gyrod/sensors/icm42605"
	"github.com/b3nn0/gyrod/sensors/spibus"
)

var ErrNoIMU = errors.New("sensors: no supported IMU found on SPI bus")

const defaultPeriod = time.Millisecond

// ICM42605Config selects how the ICM-42605 is brought up.
type ICM42605Config struct {
	DefaultBusHz int // bus speed to restore when detection fails
	RateKHz      uint8
	DividerDrops uint8
	HardwareLPF  uint8
	Driver       icm42605.Config
	Period       time.Duration // sampling period when there is no data-ready pin
	DataReady    accgyro.DataReadyPin
}

// ICM42605 is an InvenSense ICM-42605 on the SPI bus and satisfies the IMUReader interface.
// A goroutine samples the gyro and accelerometer and publishes every sample on C.
type ICM42605 struct {
	C <-chan Sample

	gyro    *accgyro.GyroDev
	acc     *accgyro.AccDev
	gyroDrv accgyro.GyroDriver
	accDrv  accgyro.AccDriver
	period  time.Duration

	mu   sync.Mutex
	last Sample

	c    chan Sample
	quit chan struct{}
	done chan struct{}
}

// NewICM42605 detects and initializes an ICM-42605 on bus and starts sampling it.
func NewICM42605(bus *spibus.Device, cfg ICM42605Config) (*ICM42605, error) {
	drv, err := icm42605.New(cfg.Driver)
	if err != nil {
		return nil, err
	}

	res := accgyro.DetectSPI(bus, cfg.DefaultBusHz, icm42605.Detect)

	gyro := &accgyro.GyroDev{
		Bus:          bus,
		Detection:    res,
		RateKHz:      cfg.RateKHz,
		DividerDrops: cfg.DividerDrops,
		HardwareLPF:  cfg.HardwareLPF,
		DataReadyPin: cfg.DataReady,
	}
	acc := &accgyro.AccDev{Bus: bus, Detection: res}

	gyroDrv, ok := drv.GyroDetect(gyro)
	if !ok {
		return nil, ErrNoIMU
	}
	accDrv, ok := drv.AccDetect(acc)
	if !ok {
		return nil, ErrNoIMU
	}

	accgyro.GyroPreInit(gyro)
	gyroDrv.Init(gyro)
	accDrv.Init(acc)

	if gyro.RateKHz != cfg.RateKHz {
		log.Printf("IMU Info: requested gyro rate not supported, running at %d kHz\n", gyro.RateKHz)
	}

	period := cfg.Period
	if period <= 0 {
		period = defaultPeriod
	}
	m := &ICM42605{
		gyro:    gyro,
		acc:     acc,
		gyroDrv: gyroDrv,
		accDrv:  accDrv,
		period:  period,
		c:       make(chan Sample, 64),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.C = m.c
	go m.run()
	return m, nil
}

func (m *ICM42605) run() {
	defer close(m.done)
	defer close(m.c)
	timer := time.NewTicker(m.period)
	defer timer.Stop()
	for {
		select {
		case <-m.quit:
			return
		case <-timer.C:
		}
		if pin := m.gyro.DataReadyPin; pin != nil && !pin.Ready() {
			continue
		}
		s := m.sample()
		select { // Don't block if nobody is listening; Read still sees the sample.
		case m.c <- s:
		default:
		}
	}
}

func (m *ICM42605) sample() Sample {
	gyroErr := m.gyroDrv.Read(m.gyro)
	accErr := m.accDrv.Read(m.acc)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = Sample{
		T:       time.Now(),
		Gyro:    m.gyro.ADCRaw,
		Acc:     m.acc.ADCRaw,
		GyroErr: gyroErr,
		AccErr:  accErr,
	}
	return m.last
}

// Read returns the most recent sample.
func (m *ICM42605) Read() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// GyroScale returns degrees/s per LSB.
func (m *ICM42605) GyroScale() float64 { return m.gyro.Scale }

// OneG returns accelerometer LSB per g.
func (m *ICM42605) OneG() int { return m.acc.OneG }

// RateKHz returns the negotiated gyro output data rate.
func (m *ICM42605) RateKHz() uint8 { return m.gyro.RateKHz }

// Close stops sampling. The bus is owned by the caller and stays open.
func (m *ICM42605) Close() {
	select {
	case <-m.quit:
		return
	default:
	}
	close(m.quit)
	<-m.done
	if m.gyro.DataReadyPin != nil {
		m.gyro.DataReadyPin.Disarm()
	}
}
