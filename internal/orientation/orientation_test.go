// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/artificial_horizon/internal/imu"
)

func TestBlend(t *testing.T) {
	testCases := []struct {
		err  float64
		want float64
	}{
		{0, AlphaSteady},
		{0.049, AlphaSteady},
		{0.05, AlphaModerate},
		{0.149, AlphaModerate},
		{0.15, AlphaDynamic},
		{3, AlphaDynamic},
	}
	for _, tc := range testCases {
		assert.Equalf(t, tc.want, Blend(tc.err), "err=%v", tc.err)
	}
}

func TestUpdateRollStaysWrapped(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var st State
	for i := 0; i < 20000; i++ {
		s := imu.Sample{
			Ax: rng.Float64()*4 - 2,
			Ay: rng.Float64()*4 - 2,
			Az: rng.Float64()*4 - 2,
			Gx: rng.Float64()*4000 - 2000,
			Gy: rng.Float64()*100 - 50,
			Gz: rng.Float64()*100 - 50,
		}
		st = Update(s, 0.03, st)
		require.Truef(t, st.Roll > -math.Pi && st.Roll <= math.Pi, "tick %d: roll=%v out of (-π, π]", i, st.Roll)
		require.Truef(t, st.Pitch >= -math.Pi/2 && st.Pitch <= math.Pi/2, "tick %d: pitch=%v", i, st.Pitch)
	}
}

func TestUpdateWrapsAcrossPi(t *testing.T) {
	prior := State{Roll: math.Pi - 0.01}
	// Upside down and spinning positive: the gyro term pushes past π.
	st := Update(imu.Sample{Ay: 0.001, Az: -1, Gx: 1000}, 0.03, prior)
	assert.True(t, st.Roll <= math.Pi)
	assert.True(t, st.Roll < 0, "roll=%v want wrapped to negative side", st.Roll)

	assert.Equal(t, math.Pi, wrap(-math.Pi))
	assert.Equal(t, math.Pi, wrap(math.Pi))
}

func TestUpdateDeterministic(t *testing.T) {
	s := imu.Sample{Ax: 0.1, Ay: 0.3, Az: 0.9, Gx: 12, Gy: -3, Gz: 1}
	prior := State{Roll: 0.2, Pitch: -0.1}
	require.Equal(t, Update(s, 0.01, prior), Update(s, 0.01, prior))
}

func TestUpdateLevelConverges(t *testing.T) {
	st := State{Roll: 0.5, Pitch: 0.3}
	level := imu.Sample{Az: 1}
	for i := 0; i < 200; i++ {
		st = Update(level, 0.01, st)
	}
	assert.InDelta(t, 0, st.Roll, 1e-6)
	assert.Equal(t, 0.0, st.Pitch)

	// Starting from rest it never leaves zero.
	st = State{}
	for i := 0; i < 50; i++ {
		st = Update(level, 0.01, st)
	}
	assert.Equal(t, State{}, st)
}

func TestUpdatePureLateralG(t *testing.T) {
	st := Update(imu.Sample{Ay: 1}, 0.01, State{})
	// |a| = 1 exactly, so the steady weight applies.
	want := AlphaSteady*0 + (1-AlphaSteady)*(math.Pi/2)
	assert.InDelta(t, want, st.Roll, 1e-12)
	assert.InDelta(t, 0, st.Pitch, 1e-12)
}

func TestUpdateGyroTrustedUnderLinearAcceleration(t *testing.T) {
	prior := State{Roll: 0.3}
	// 1.5 g: accelerometer is mostly linear acceleration.
	st := Update(imu.Sample{Ay: 1.5, Az: 0}, 0.01, prior)
	want := AlphaDynamic*0.3 + (1-AlphaDynamic)*(math.Pi/2)
	assert.InDelta(t, want, st.Roll, 1e-12)
}

func TestDegrees(t *testing.T) {
	r, p := State{Roll: math.Pi / 2, Pitch: -math.Pi / 4}.Degrees()
	assert.InDelta(t, 90, r, 1e-9)
	assert.InDelta(t, -45, p, 1e-9)
}

func TestMockPortGravity(t *testing.T) {
	p := NewMockPort().(*mockPort)
	ax, ay, az, err := p.ReadAccel()
	require.NoError(t, err)
	assert.InDelta(t, 1, math.Sqrt(ax*ax+ay*ay+az*az), 1e-9)

	s, err := imu.Read(p)
	require.NoError(t, err)
	roll, pitch, rate := p.angles()
	assert.InDelta(t, rate, s.Gx, 1)
	assert.InDelta(t, roll, math.Atan2(s.Ay, s.Az), 0.05)
	assert.InDelta(t, pitch, math.Atan2(-s.Ax, math.Sqrt(s.Ay*s.Ay+s.Az*s.Az)), 0.05)
}
