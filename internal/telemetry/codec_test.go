// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/artificial_horizon/internal/mode"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
)

func TestEncodeKnownFrame(t *testing.T) {
	f := Encode(orientation.State{Roll: 1.5708, Pitch: -0.3}, mode.PitchOnly)
	want := [FrameSize]byte{
		0xFE,
		0xF9, 0x0F, 0xC9, 0x3F, // 1.5708f
		0x9A, 0x99, 0x99, 0xBE, // -0.3f
		0x01,
		0xFF,
	}
	require.Equal(t, want, f)

	var d Decoder
	p, ok := d.FeedAll(f[:])
	require.True(t, ok)
	assert.Equal(t, Packet{Roll: 1.5708, Pitch: -0.3, Mode: mode.PitchOnly}, p)
}

func randomFiniteFloat32(rng *rand.Rand) float32 {
	for {
		f := math.Float32frombits(rng.Uint32())
		if !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0) {
			return f
		}
	}
}

func TestRoundTripBitExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var d Decoder
	for i := 0; i < 5000; i++ {
		roll, pitch := randomFiniteFloat32(rng), randomFiniteFloat32(rng)
		m := mode.Mode(rng.Intn(2))
		st := orientation.State{Roll: float64(roll), Pitch: float64(pitch)}

		f := Encode(st, m)
		p, ok := d.FeedAll(f[:])
		require.Truef(t, ok, "frame %d not decoded: % X", i, f)
		require.Equalf(t, math.Float32bits(roll), math.Float32bits(p.Roll), "frame %d roll", i)
		require.Equalf(t, math.Float32bits(pitch), math.Float32bits(p.Pitch), "frame %d pitch", i)
		require.Equal(t, m, p.Mode)
		require.Equal(t, st, p.State())
	}
	assert.Equal(t, uint64(5000), d.Stats().Frames)
}

func TestResyncAfterNoise(t *testing.T) {
	frame := Encode(orientation.State{Roll: -0.25, Pitch: 0.125}, mode.RollOnly)
	rng := rand.New(rand.NewSource(1))

	for _, n := range []int{0, 1, 7, 10, 11, 12, 100, 1000} {
		var d Decoder
		// Noise never contains STX: an STX inside the noise can legitimately
		// swallow the real frame (see package doc).
		for i := 0; i < n; i++ {
			b := byte(rng.Intn(256))
			if b == STX {
				b = 0x00
			}
			_, ok := d.Feed(b)
			require.False(t, ok)
		}

		var got []Packet
		for _, b := range frame {
			if p, ok := d.Feed(b); ok {
				got = append(got, p)
			}
		}
		require.Lenf(t, got, 1, "noise=%d", n)
		assert.Equal(t, Packet{Roll: -0.25, Pitch: 0.125, Mode: mode.RollOnly}, got[0])
		assert.Equal(t, uint64(n), d.Stats().Skipped)
	}
}

func TestBadTerminatorDiscardsWholeFrame(t *testing.T) {
	good := Encode(orientation.State{Roll: 0.5}, mode.RollOnly)
	bad := good
	bad[10] = 0x00

	var d Decoder
	_, ok := d.FeedAll(bad[:])
	require.False(t, ok)
	assert.Equal(t, uint64(1), d.Stats().BadTerminators)

	// Decoder is back hunting for STX, so the next frame decodes cleanly.
	p, ok := d.FeedAll(good[:])
	require.True(t, ok)
	assert.Equal(t, float32(0.5), p.Roll)
}

func TestLostByteMisframes(t *testing.T) {
	a := Encode(orientation.State{Roll: 0.1}, mode.RollOnly)
	b := Encode(orientation.State{Roll: 0.2}, mode.RollOnly)

	stream := append([]byte{}, a[:5]...)
	stream = append(stream, a[6:]...) // one payload byte lost
	stream = append(stream, b[:]...)

	var d Decoder
	var got []Packet
	for _, c := range stream {
		if p, ok := d.Feed(c); ok {
			got = append(got, p)
		}
	}
	// The short frame borrows b's STX as its 11th byte and fails the ETX
	// check; b is then consumed from its second byte on and never aligns.
	assert.Empty(t, got)
	assert.Equal(t, uint64(1), d.Stats().BadTerminators)
}

func TestInvalidModeRejected(t *testing.T) {
	f := Encode(orientation.State{}, mode.RollOnly)
	f[9] = 0x02

	var d Decoder
	_, ok := d.FeedAll(f[:])
	assert.False(t, ok)
	assert.Equal(t, uint64(1), d.Stats().BadModes)

	_, err := DecodeFrame(f[:])
	assert.Error(t, err)
}

func TestFeedAllKeepsLastPacket(t *testing.T) {
	a := Encode(orientation.State{Roll: 1}, mode.RollOnly)
	b := Encode(orientation.State{Roll: 2}, mode.PitchOnly)

	var d Decoder
	p, ok := d.FeedAll(append(a[:], b[:]...))
	require.True(t, ok)
	assert.Equal(t, Packet{Roll: 2, Mode: mode.PitchOnly}, p)
	assert.Equal(t, uint64(2), d.Stats().Frames)
}

func TestDecodeFrame(t *testing.T) {
	f := Encode(orientation.State{Roll: 0.75, Pitch: -0.5}, mode.PitchOnly)
	p, err := DecodeFrame(f[:])
	require.NoError(t, err)
	assert.Equal(t, Packet{Roll: 0.75, Pitch: -0.5, Mode: mode.PitchOnly}, p)

	_, err = DecodeFrame(f[:10])
	assert.Error(t, err)

	g := f
	g[0] = 0x00
	_, err = DecodeFrame(g[:])
	assert.Error(t, err)
}

func TestOverrunGuard(t *testing.T) {
	d := Decoder{state: stateCollecting, idx: FrameSize}
	_, ok := d.Feed(0x00)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), d.Stats().Overruns)
	assert.Equal(t, stateWaitSync, d.state)
	assert.Zero(t, d.idx)
}
