// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/artificial_horizon/internal/imu"
)

// Blend weights toward the gyro-integrated roll, selected by how far the
// accelerometer magnitude deviates from 1 g.
const (
	AlphaSteady   = 0.90
	AlphaModerate = 0.95
	AlphaDynamic  = 0.985

	SteadyAccelError   = 0.05
	ModerateAccelError = 0.15
)

const degToRad = math.Pi / 180.0

// State is the attitude shared by the estimator, renderer and telemetry.
// Angles are radians.
type State struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// Degrees returns roll and pitch in degrees.
func (s State) Degrees() (roll, pitch float64) {
	return s.Roll / degToRad, s.Pitch / degToRad
}

// Blend returns the gyro weight for a given |‖a‖ - 1g| error.
func Blend(accelErr float64) float64 {
	switch {
	case accelErr < SteadyAccelError:
		return AlphaSteady
	case accelErr < ModerateAccelError:
		return AlphaModerate
	default:
		return AlphaDynamic
	}
}

// Update runs one complementary filter step.
//
// Roll fuses the integrated gyro X rate with atan2(ay, az); pitch is taken
// straight from the accelerometer:
//
//	roll  = α·(prior + gx·dt) + (1-α)·atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// The returned roll is wrapped into (-π, π].
func Update(s imu.Sample, dt float64, prior State) State {
	rollGyro := prior.Roll + s.Gx*degToRad*dt
	rollAccel := math.Atan2(s.Ay, s.Az)

	accMag := math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
	alpha := Blend(math.Abs(accMag - 1.0))

	return State{
		Roll:  wrap(alpha*rollGyro + (1-alpha)*rollAccel),
		Pitch: math.Atan2(-s.Ax, math.Sqrt(s.Ay*s.Ay+s.Az*s.Az)),
	}
}

// wrap applies a single ±2π correction; per-tick drift is bounded well below 2π.
func wrap(a float64) float64 {
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
