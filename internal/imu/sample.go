// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// Sample is a single accelerometer + gyroscope reading.
// Acceleration is in g, angular rate in degrees/second.
type Sample struct {
	Ax float64 `json:"ax"` // accel
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // gyro
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`
}

// Port supplies raw samples on demand.
type Port interface {
	ReadAccel() (ax, ay, az float64, err error)
	ReadGyro() (gx, gy, gz float64, err error)
}

// Read pulls one full sample from p, gyro first.
func Read(p Port) (Sample, error) {
	gx, gy, gz, err := p.ReadGyro()
	if err != nil {
		return Sample{}, err
	}
	ax, ay, az, err := p.ReadAccel()
	if err != nil {
		return Sample{}, err
	}
	return Sample{Ax: ax, Ay: ay, Az: az, Gx: gx, Gy: gy, Gz: gz}, nil
}
