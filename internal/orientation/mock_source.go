// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/artificial_horizon/internal/imu"
)

type mockPort struct {
	start time.Time
	now   func() time.Time
}

// NewMockPort creates a sensor port that swings the unit smoothly in roll
// and pitch, for bench runs without an IMU attached.
func NewMockPort() imu.Port {
	return &mockPort{start: time.Now(), now: time.Now}
}

func (m *mockPort) angles() (roll, pitch, rollRate float64) {
	elapsed := m.now().Sub(m.start).Seconds()
	roll = 20 * degToRad * math.Sin(elapsed)
	pitch = 15 * degToRad * math.Cos(elapsed*0.7)
	rollRate = 20 * math.Cos(elapsed) // deg/s
	return roll, pitch, rollRate
}

// ReadAccel returns the gravity vector for the current mock attitude.
func (m *mockPort) ReadAccel() (float64, float64, float64, error) {
	roll, pitch, _ := m.angles()
	ax := -math.Sin(pitch)
	ay := math.Cos(pitch) * math.Sin(roll)
	az := math.Cos(pitch) * math.Cos(roll)
	return ax, ay, az, nil
}

func (m *mockPort) ReadGyro() (float64, float64, float64, error) {
	_, _, rate := m.angles()
	return rate, 0, 0, nil
}
