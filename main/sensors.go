/*
	Copyright (c) 2026 gyrod authors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	sensors.go: Open the SPI bus, find the IMU and hand its samples to the log, the metrics
	and the websocket clients.
*/

package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/b3nn0/gyrod/sensors"
	"github.com/b3nn0/gyrod/sensors/accgyro"
	"github.com/b3nn0/gyrod/sensors/spibus"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	detectInterval  = 4 * time.Second
	failLogInterval = 10 * time.Second
)

type status struct {
	Version          string
	IMUConnected     bool
	IMU              string
	GyroRateKHz      uint8
	GyroScale        float64
	AccOneG          int
	Samples          uint64
	GyroReadErrors   uint64
	AccReadErrors    uint64
	SPIWriteErrors   uint64
	SampleLogDropped uint64
	SampleClients    int
	LastSampleAge    string
	Uptime           string
	LastSample       *sampleMessage `json:",omitempty"`
}

type sampleMessage struct {
	T    int64 // unix nanoseconds
	Gyro [3]int16
	Acc  [3]int16
}

var (
	spiDevice   *spibus.Device
	myIMUReader sensors.IMUReader

	statusMu       sync.Mutex
	globalStatus   status
	lastSampleTime time.Time
)

func openSPIBus(s settings) (*spibus.Device, error) {
	var (
		bus spibus.Bus
		err error
	)
	switch s.SPI_Backend {
	case spiBackendEmbd:
		bus, err = spibus.NewEmbdBus(byte(s.SPI_Channel), s.SPI_Default_Hz)
	default:
		bus, err = spibus.NewRPIOBus(rpio.Spi0, uint8(s.SPI_Channel), s.SPI_Default_Hz)
	}
	if err != nil {
		return nil, err
	}
	return spibus.NewDevice(bus, s.SPI_Default_Hz), nil
}

func initSPISensors() {
	cfg := currentSettings()
	dev, err := openSPIBus(cfg)
	if err != nil {
		log.Printf("IMU Error: couldn't open SPI bus (%s): %s\n", cfg.SPI_Backend, err)
		return
	}
	spiDevice = dev
	go pollSensors()
}

// pollSensors retries detection until an IMU answers. Once the IMU has been initialized it is
// never initialized again: the configuration sequence is only valid once per power up.
func pollSensors() {
	timer := time.NewTicker(detectInterval)
	defer timer.Stop()
	for {
		if initIMU() {
			go sensorSampleSender(myIMUReader.(*sensors.ICM42605))
			return
		}
		<-timer.C
	}
}

func initIMU() (ok bool) {
	imuDetectAttempts.Inc()
	logDbg("IMU Info: attempting to connect to ICM-42605\n")

	cfg := currentSettings()
	var pin accgyro.DataReadyPin
	if cfg.DataReady_Enabled {
		pin = spibus.NewRPIOPin(cfg.DataReady_Pin)
	}
	imu, err := sensors.NewICM42605(spiDevice, sensors.ICM42605Config{
		DefaultBusHz: cfg.SPI_Default_Hz,
		RateKHz:      cfg.Gyro_Rate_kHz,
		DividerDrops: cfg.Gyro_Divider_Drops,
		HardwareLPF:  cfg.Gyro_Hardware_LPF,
		Driver:       cfg.driverConfig(),
		Period:       time.Duration(cfg.Sample_Period_us) * time.Microsecond,
		DataReady:    pin,
	})
	if err != nil {
		logDbg("IMU Info: %s\n", err)
		return false
	}
	myIMUReader = imu
	log.Printf("IMU Info: Successfully initialized ICM-42605, gyro at %d kHz\n", imu.RateKHz())

	imuConnected.Set(1)
	imuRateKHz.Set(float64(imu.RateKHz()))

	statusMu.Lock()
	globalStatus.IMUConnected = true
	globalStatus.IMU = accgyro.ICM42605SPI.String()
	globalStatus.GyroRateKHz = imu.RateKHz()
	globalStatus.GyroScale = imu.GyroScale()
	globalStatus.AccOneG = imu.OneG()
	statusMu.Unlock()
	return true
}

// sensorSampleSender drains the IMU. Failed reads keep the previous sample and are retried on
// the next cycle; they are only counted and logged.
func sensorSampleSender(imu *sensors.ICM42605) {
	var lastFailLog time.Time
	for s := range imu.C {
		imuSamples.Inc()
		if s.GyroErr != nil {
			imuReadFailures.WithLabelValues("gyro").Inc()
		}
		if s.AccErr != nil {
			imuReadFailures.WithLabelValues("acc").Inc()
		}
		if (s.GyroErr != nil || s.AccErr != nil) && time.Since(lastFailLog) > failLogInterval {
			log.Printf("IMU Error: read failed, keeping last sample: gyro %v, acc %v\n", s.GyroErr, s.AccErr)
			lastFailLog = time.Now()
		}

		msg := sampleMessage{T: s.T.UnixNano(), Gyro: s.Gyro, Acc: s.Acc}

		statusMu.Lock()
		globalStatus.Samples++
		if s.GyroErr != nil {
			globalStatus.GyroReadErrors++
		}
		if s.AccErr != nil {
			globalStatus.AccReadErrors++
		}
		globalStatus.LastSample = &msg
		lastSampleTime = s.T
		statusMu.Unlock()

		if sampleLog != nil {
			sampleLog.Add(s)
		}
		if sampleBroadcaster != nil {
			if buf, err := json.Marshal(msg); err == nil {
				sampleBroadcaster.Send(buf)
			}
		}
	}
}

func closeSensors() {
	if myIMUReader != nil {
		myIMUReader.Close()
	}
	if spiDevice != nil {
		spiDevice.Close()
	}
}
