// Package sensors provides a gyrod interface to the IMUs whose raw samples feed the
// sensor-fusion pipeline.
package sensors

import "time"

// Sample is one raw gyro/accel reading. When a read fails the previous axis values are kept
// and the error is set.
type Sample struct {
	T       time.Time
	Gyro    [3]int16
	Acc     [3]int16
	GyroErr error
	AccErr  error
}

// IMUReader provides an interface to Inertial Measurement Units that report raw counts.
type IMUReader interface {
	// Read returns the most recent sample.
	Read() Sample
	// GyroScale returns degrees/s per LSB.
	GyroScale() float64
	// OneG returns accelerometer LSB per g.
	OneG() int
	// Close stops reading the IMU.
	Close()
}
