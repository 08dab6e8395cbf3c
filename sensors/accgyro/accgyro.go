// Package accgyro holds the device state shared by the accelerometer/gyro drivers and the
// detection chain that picks a driver for an SPI attached IMU.
package accgyro

import (
	"log"

	"github.com/b3nn0/gyrod/sensors/spibus"
)

// Sensor identifies the chip found by detection.
type Sensor uint8

const (
	None Sensor = iota
	ICM42605SPI
)

func (s Sensor) String() string {
	switch s {
	case ICM42605SPI:
		return "ICM-42605 (SPI)"
	default:
		return "none"
	}
}

// Full scale range selectors, InvenSense numbering.
const (
	FSR250DPS  = 0
	FSR500DPS  = 1
	FSR1000DPS = 2
	FSR2000DPS = 3

	FSR2G  = 0
	FSR4G  = 1
	FSR8G  = 2
	FSR16G = 3
)

// GyroScale2000DPS is degrees/s per LSB at +/-2000 dps.
const GyroScale2000DPS = 2000.0 / (1 << 15)

// Hardware LPF selectors. 0 keeps the default filter path; 1-3 select an anti-alias filter
// profile.
const (
	HardwareLPFNormal uint8 = iota
	HardwareLPFExperimental
	HardwareLPFAAF319
	HardwareLPFAAF236
)

// DetectionResult is filled in by DetectSPI and consulted by the driver detect functions.
type DetectionResult struct {
	Sensor Sensor
}

// DataReadyPin is the interrupt line the gyro raises when a new sample is available.
type DataReadyPin interface {
	Arm() error
	Ready() bool
	Disarm()
}

// GyroDev is the gyro state owned by the caller. Drivers fill ADCRaw and may correct RateKHz.
type GyroDev struct {
	Bus       *spibus.Device
	Detection DetectionResult

	RateKHz      uint8 // requested rate, 0 for the driver default; holds the negotiated rate after Init
	DividerDrops uint8 // sample rate divider relative to the 8 kHz base rate
	HardwareLPF  uint8
	Scale        float64

	DataReadyPin DataReadyPin

	ADCRaw [3]int16
}

// AccDev is the accelerometer state owned by the caller.
type AccDev struct {
	Bus       *spibus.Device
	Detection DetectionResult

	OneG int // LSB per g

	ADCRaw [3]int16
}

type GyroDriver interface {
	Init(gyro *GyroDev)
	// Read stores a new sample in gyro.ADCRaw. On error the previous sample is kept.
	Read(gyro *GyroDev) error
}

type AccDriver interface {
	Init(acc *AccDev)
	// Read stores a new sample in acc.ADCRaw. On error the previous sample is kept.
	Read(acc *AccDev) error
}

// SPIDetector probes the bus for one chip. It may change the bus speed.
type SPIDetector func(bus *spibus.Device) Sensor

// DetectSPI tries each detector in turn and returns the first match. When nothing matches,
// the bus is put back to defaultHz since detectors leave it at their init speed on failure.
func DetectSPI(bus *spibus.Device, defaultHz int, detectors ...SPIDetector) DetectionResult {
	for _, detect := range detectors {
		if s := detect(bus); s != None {
			log.Printf("IMU Info: detected %s\n", s)
			return DetectionResult{Sensor: s}
		}
	}
	if err := bus.SetSpeed(defaultHz); err != nil {
		log.Printf("IMU Error: couldn't restore SPI speed: %s\n", err)
	}
	return DetectionResult{Sensor: None}
}

// GyroPreInit performs the chip independent part of gyro bring-up.
func GyroPreInit(gyro *GyroDev) {
	if gyro.DataReadyPin == nil {
		return
	}
	if err := gyro.DataReadyPin.Arm(); err != nil {
		log.Printf("IMU Error: couldn't arm data-ready pin, falling back to polling: %s\n", err)
		gyro.DataReadyPin = nil
	}
}
