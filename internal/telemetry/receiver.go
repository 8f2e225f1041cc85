// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/relabs-tech/artificial_horizon/internal/mailbox"
	"github.com/relabs-tech/artificial_horizon/internal/mode"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
)

// Receiver drains a byte link into a decoder and hands every completed
// packet to a single-slot mailbox. It is the only goroutine touching the
// decoder.
type Receiver struct {
	r   io.Reader
	box *mailbox.Mailbox[Packet]

	mu  sync.Mutex
	dec Decoder
}

// NewReceiver wires r to box.
func NewReceiver(r io.Reader, box *mailbox.Mailbox[Packet]) *Receiver {
	return &Receiver{r: r, box: box}
}

// Run reads until the link fails, reaches EOF or ctx is cancelled.
// Cancelling ctx does not interrupt a blocked Read; close the link for that.
func (rx *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := rx.r.Read(buf)
		if n > 0 {
			rx.consume(buf[:n])
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return fmt.Errorf("receiver: read: %w", err)
		}
	}
}

func (rx *Receiver) consume(b []byte) {
	rx.mu.Lock()
	defer rx.mu.Unlock()
	for _, c := range b {
		if p, ok := rx.dec.Feed(c); ok {
			rx.box.Put(p)
		}
	}
}

// Stats returns the decoder counters.
func (rx *Receiver) Stats() Stats {
	rx.mu.Lock()
	defer rx.mu.Unlock()
	return rx.dec.Stats()
}

// Sender writes one frame per call.
type Sender struct {
	w    io.Writer
	sent uint64
}

// NewSender wraps w.
func NewSender(w io.Writer) *Sender {
	return &Sender{w: w}
}

// Send encodes st and m and writes the whole frame.
func (s *Sender) Send(st orientation.State, m mode.Mode) error {
	f := Encode(st, m)
	n, err := s.w.Write(f[:])
	if err != nil {
		return fmt.Errorf("telemetry: write frame: %w", err)
	}
	if n != FrameSize {
		return fmt.Errorf("telemetry: short write %d/%d", n, FrameSize)
	}
	s.sent++
	if s.sent == 1 {
		log.Printf("telemetry: first frame sent (roll=%.3f pitch=%.3f mode=%s)", st.Roll, st.Pitch, m)
	}
	return nil
}

// Sent reports how many frames were written.
func (s *Sender) Sent() uint64 {
	return s.sent
}
