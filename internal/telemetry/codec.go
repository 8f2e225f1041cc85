// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry carries attitude between units over a byte link.
//
// Each packet is a fixed 11-byte frame:
//
//	[0]     0xFE STX
//	[1..4]  roll,  IEEE-754 float32, little-endian
//	[5..8]  pitch, IEEE-754 float32, little-endian
//	[9]     display mode (0 roll, 1 pitch)
//	[10]    0xFF ETX
//
// There is no checksum, escaping, flow control or retransmission. The
// decoder resynchronizes by hunting for the next STX byte; an STX value
// inside a payload is not recognized as a frame start, so a lost byte can
// keep the stream misframed until an STX lines up by chance.
package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/relabs-tech/artificial_horizon/internal/mode"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
)

const (
	FrameSize = 11

	STX byte = 0xFE
	ETX byte = 0xFF

	rollOffset  = 1
	pitchOffset = 5
	modeOffset  = 9
	etxOffset   = 10
)

// Packet is the decoded view of a frame.
type Packet struct {
	Roll  float32
	Pitch float32
	Mode  mode.Mode
}

// State widens the packet angles back to an attitude.
func (p Packet) State() orientation.State {
	return orientation.State{Roll: float64(p.Roll), Pitch: float64(p.Pitch)}
}

// Encode builds the frame for st and m.
func Encode(st orientation.State, m mode.Mode) [FrameSize]byte {
	var f [FrameSize]byte
	f[0] = STX
	binary.LittleEndian.PutUint32(f[rollOffset:], math.Float32bits(float32(st.Roll)))
	binary.LittleEndian.PutUint32(f[pitchOffset:], math.Float32bits(float32(st.Pitch)))
	f[modeOffset] = byte(m)
	f[etxOffset] = ETX
	return f
}

// DecodeFrame decodes one complete, aligned frame.
func DecodeFrame(f []byte) (Packet, error) {
	if len(f) != FrameSize {
		return Packet{}, fmt.Errorf("frame length %d, want %d", len(f), FrameSize)
	}
	if f[0] != STX || f[etxOffset] != ETX {
		return Packet{}, fmt.Errorf("missing start/end delimiters")
	}
	p := unpack(f)
	if !p.Mode.Valid() {
		return Packet{}, fmt.Errorf("invalid mode byte 0x%02X", byte(p.Mode))
	}
	return p, nil
}

func unpack(f []byte) Packet {
	return Packet{
		Roll:  math.Float32frombits(binary.LittleEndian.Uint32(f[rollOffset:])),
		Pitch: math.Float32frombits(binary.LittleEndian.Uint32(f[pitchOffset:])),
		Mode:  mode.Mode(f[modeOffset]),
	}
}

type decodeState int

const (
	stateWaitSync   decodeState = iota // discarding until STX
	stateCollecting                    // filling positions 1..10
)

// Stats counts what the decoder has seen.
type Stats struct {
	Frames         uint64 // frames delivered
	BadTerminators uint64 // 11th byte was not ETX
	BadModes       uint64 // mode byte outside {0, 1}
	Skipped        uint64 // bytes discarded while waiting for STX
	Overruns       uint64 // index guard resets
}

// Decoder reassembles frames from a byte stream, one byte at a time.
// The zero value is ready to use.
type Decoder struct {
	state decodeState
	buf   [FrameSize]byte
	idx   int
	stats Stats
}

// Feed consumes one byte. It returns a packet when b completes a valid frame.
func (d *Decoder) Feed(b byte) (Packet, bool) {
	switch d.state {
	case stateWaitSync:
		if b != STX {
			d.stats.Skipped++
			return Packet{}, false
		}
		d.buf[0] = b
		d.idx = 1
		d.state = stateCollecting
		return Packet{}, false

	case stateCollecting:
		if d.idx >= FrameSize {
			// Cannot happen with well-formed state; never index past the buffer.
			d.stats.Overruns++
			d.reset()
			return Packet{}, false
		}
		d.buf[d.idx] = b
		d.idx++
		if d.idx < FrameSize {
			return Packet{}, false
		}
		defer d.reset()
		if d.buf[etxOffset] != ETX {
			d.stats.BadTerminators++
			return Packet{}, false
		}
		p := unpack(d.buf[:])
		if !p.Mode.Valid() {
			d.stats.BadModes++
			return Packet{}, false
		}
		d.stats.Frames++
		return p, true
	}
	d.reset()
	return Packet{}, false
}

// FeedAll feeds every byte in b and returns the last packet completed by it,
// if any. Earlier packets completed within the same call are superseded.
func (d *Decoder) FeedAll(b []byte) (Packet, bool) {
	var (
		last Packet
		got  bool
	)
	for _, c := range b {
		if p, ok := d.Feed(c); ok {
			last, got = p, true
		}
	}
	return last, got
}

// Stats returns a copy of the decoder counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) reset() {
	d.state = stateWaitSync
	d.idx = 0
}
