// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/artificial_horizon/internal/mailbox"
	"github.com/relabs-tech/artificial_horizon/internal/mode"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
)

func TestSenderReceiverOverPipe(t *testing.T) {
	pr, pw := io.Pipe()
	box := mailbox.New[Packet]()
	rx := NewReceiver(pr, box)

	done := make(chan error, 1)
	go func() { done <- rx.Run(context.Background()) }()

	tx := NewSender(pw)
	require.NoError(t, tx.Send(orientation.State{Roll: 0.5, Pitch: -0.25}, mode.PitchOnly))

	select {
	case <-box.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("no packet delivered")
	}
	p, ok := box.Take()
	require.True(t, ok)
	assert.Equal(t, Packet{Roll: 0.5, Pitch: -0.25, Mode: mode.PitchOnly}, p)
	assert.Equal(t, uint64(1), tx.Sent())

	require.NoError(t, pw.Close())
	select {
	case err := <-done:
		assert.NoError(t, err, "EOF ends the receiver cleanly")
	case <-time.After(2 * time.Second):
		t.Fatal("receiver did not stop")
	}
	assert.Equal(t, uint64(1), rx.Stats().Frames)
}

func TestReceiverOverwritesUntakenPackets(t *testing.T) {
	var stream bytes.Buffer
	for i := 1; i <= 5; i++ {
		f := Encode(orientation.State{Roll: float64(i)}, mode.RollOnly)
		stream.Write(f[:])
	}
	box := mailbox.New[Packet]()
	require.NoError(t, NewReceiver(&stream, box).Run(context.Background()))

	p, ok := box.Take()
	require.True(t, ok)
	assert.Equal(t, float32(5), p.Roll)
	assert.Equal(t, uint64(4), box.Overwritten())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("line noise") }

func TestReceiverReportsReadErrors(t *testing.T) {
	err := NewReceiver(failingReader{}, mailbox.New[Packet]()).Run(context.Background())
	assert.ErrorContains(t, err, "line noise")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, NewReceiver(failingReader{}, mailbox.New[Packet]()).Run(ctx))
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestSenderShortWrite(t *testing.T) {
	err := NewSender(shortWriter{}).Send(orientation.State{}, mode.RollOnly)
	assert.Error(t, err)
}
