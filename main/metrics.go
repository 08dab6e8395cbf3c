package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Initialize Prometheus metrics.
var (
	imuDetectAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gyrod_imu_detect_attempts_total",
		Help: "IMU detection attempts.",
	})

	imuConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gyrod_imu_connected",
		Help: "1 when an IMU has been detected and initialized.",
	})

	imuRateKHz = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gyrod_gyro_rate_khz",
		Help: "Negotiated gyro output data rate.",
	})

	imuSamples = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gyrod_samples_total",
		Help: "Samples read from the IMU.",
	})

	imuReadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gyrod_read_failures_total",
			Help: "Failed sample reads, previous sample kept.",
		},
		[]string{"sensor"},
	)

	spiWriteErrors = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gyrod_spi_write_errors",
		Help: "Register writes that failed on the SPI bus.",
	}, func() float64 {
		if spiDevice == nil {
			return 0
		}
		return float64(spiDevice.WriteErrors())
	})
)

func registerMetrics(r prometheus.Registerer) {
	r.MustRegister(imuDetectAttempts)
	r.MustRegister(imuConnected)
	r.MustRegister(imuRateKHz)
	r.MustRegister(imuSamples)
	r.MustRegister(imuReadFailures)
	r.MustRegister(spiWriteErrors)
}
