// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// Full-scale sensitivities indexed by the range code written to
// ACCEL_CONFIG / GYRO_CONFIG.
var (
	accelLSBPerG  = [4]float64{16384, 8192, 4096, 2048}
	gyroLSBPerDPS = [4]float64{131, 65.5, 32.8, 16.4}
	accelRangeG   = [4]int{2, 4, 8, 16}
	gyroRangeDPS  = [4]int{250, 500, 1000, 2000}
)

// rawReader is the part of *mpu9250.MPU9250 the port reads from.
type rawReader interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
	GetRotationX() (int16, error)
	GetRotationY() (int16, error)
	GetRotationZ() (int16, error)
}

// MPU9250Port reads an MPU9250 and converts counts to g and °/s. It
// implements imu.Port.
type MPU9250Port struct {
	name     string
	dev      rawReader
	accelLSB float64
	gyroLSB  float64
}

// OpenMPU9250 initializes an MPU9250 on spiDev with chip select csPin and
// applies the accelerometer and gyroscope range codes (0-3).
func OpenMPU9250(spiDev, csPin string, accelRange, gyroRange byte) (*MPU9250Port, error) {
	if accelRange > 3 || gyroRange > 3 {
		return nil, fmt.Errorf("IMU: range codes must be 0-3, got accel=%d gyro=%d", accelRange, gyroRange)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", accelRange, accelRangeG[accelRange])

	if err := dev.SetGyroRange(gyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	log.Printf("IMU: gyroscope range set to %d (±%d°/s)", gyroRange, gyroRangeDPS[gyroRange])

	return newPort(spiDev, dev, accelRange, gyroRange), nil
}

func newPort(name string, dev rawReader, accelRange, gyroRange byte) *MPU9250Port {
	return &MPU9250Port{
		name:     name,
		dev:      dev,
		accelLSB: accelLSBPerG[accelRange],
		gyroLSB:  gyroLSBPerDPS[gyroRange],
	}
}

// ReadAccel returns acceleration in g.
func (p *MPU9250Port) ReadAccel() (float64, float64, float64, error) {
	x, err := p.dev.GetAccelerationX()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s IMU accel X: %w", p.name, err)
	}
	y, err := p.dev.GetAccelerationY()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s IMU accel Y: %w", p.name, err)
	}
	z, err := p.dev.GetAccelerationZ()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s IMU accel Z: %w", p.name, err)
	}
	return float64(x) / p.accelLSB, float64(y) / p.accelLSB, float64(z) / p.accelLSB, nil
}

// ReadGyro returns angular rate in °/s.
func (p *MPU9250Port) ReadGyro() (float64, float64, float64, error) {
	x, err := p.dev.GetRotationX()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s IMU gyro X: %w", p.name, err)
	}
	y, err := p.dev.GetRotationY()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s IMU gyro Y: %w", p.name, err)
	}
	z, err := p.dev.GetRotationZ()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s IMU gyro Z: %w", p.name, err)
	}
	return float64(x) / p.gyroLSB, float64(y) / p.gyroLSB, float64(z) / p.gyroLSB, nil
}
