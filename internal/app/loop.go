// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/artificial_horizon/internal/clock"
	"github.com/relabs-tech/artificial_horizon/internal/config"
	"github.com/relabs-tech/artificial_horizon/internal/display"
	"github.com/relabs-tech/artificial_horizon/internal/imu"
	"github.com/relabs-tech/artificial_horizon/internal/mailbox"
	"github.com/relabs-tech/artificial_horizon/internal/mode"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
	"github.com/relabs-tech/artificial_horizon/internal/render"
	"github.com/relabs-tech/artificial_horizon/internal/telemetry"
)

// Attitude is what observers see after every rendered update.
type Attitude struct {
	Roll  float64   `json:"roll"`  // degrees
	Pitch float64   `json:"pitch"` // degrees
	Mode  string    `json:"mode"`
	Seq   uint64    `json:"seq"`
	Time  time.Time `json:"time"`

	State orientation.State `json:"-"`
}

// Observer is told about each update; it must not block the loop.
type Observer interface {
	Observe(a Attitude)
}

// Loop is the single control loop shared by every role.
//
// source and standalone wake on Clock: read Port, estimate, poll Button,
// send a frame (source only) and render. sink wakes on Inbox: take the
// latest packet, follow its mode and render.
type Loop struct {
	Role    string
	Surface display.Surface

	// source / standalone
	Clock  clock.Source
	Port   imu.Port
	Button mode.Edge // nil when there is no button
	Sender *telemetry.Sender
	Dt     float64 // seconds

	// sink
	Inbox      *mailbox.Mailbox[telemetry.Packet]
	Complement bool // render the view the sender is not showing

	Debounce  time.Duration
	Observers []Observer

	renderer render.Renderer
	modes    *mode.Controller
	state    orientation.State
	seq      uint64
	now      func() time.Time
}

func (l *Loop) setup() {
	if l.modes == nil {
		l.modes = mode.NewController(l.Debounce, &l.renderer)
	}
	if l.now == nil {
		l.now = time.Now
	}
}

// Mode is the active display mode.
func (l *Loop) Mode() mode.Mode {
	l.setup()
	return l.modes.Mode()
}

// State is the last estimated or received attitude.
func (l *Loop) State() orientation.State {
	return l.state
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.setup()

	var (
		ticks <-chan time.Time
		ready <-chan struct{}
	)
	if l.Role == config.RoleSink {
		ready = l.Inbox.Ready()
	} else {
		ticks = l.Clock.C()
		defer l.Clock.Stop()
	}
	log.Printf("loop: running as %s", l.Role)

	for {
		select {
		case <-ctx.Done():
			log.Printf("loop: stopping after %d updates", l.seq)
			return nil
		case <-ticks:
			l.tick()
		case <-ready:
			l.receive()
		}
	}
}

// tick runs one source/standalone cycle. A failed sensor read skips the
// cycle and keeps the prior attitude.
func (l *Loop) tick() {
	s, err := imu.Read(l.Port)
	if err != nil {
		log.Printf("loop: sensor read: %v", err)
		return
	}
	l.state = orientation.Update(s, l.Dt, l.state)
	l.modes.Poll(l.Button)

	if l.Sender != nil {
		if err := l.Sender.Send(l.state, l.modes.Mode()); err != nil {
			log.Printf("loop: send frame: %v", err)
		}
	}
	l.draw()
}

// receive renders the newest packet, if one is waiting.
func (l *Loop) receive() {
	p, ok := l.Inbox.Take()
	if !ok {
		return
	}
	m := p.Mode
	if l.Complement {
		m = m.Other()
	}
	l.modes.Set(m)
	l.state = p.State()
	l.draw()
}

func (l *Loop) draw() {
	m := l.modes.Mode()
	l.renderer.Render(l.Surface, l.state, m)
	if err := display.Flush(l.Surface); err != nil {
		log.Printf("loop: display: %v", err)
	}

	l.seq++
	if len(l.Observers) == 0 {
		return
	}
	roll, pitch := l.state.Degrees()
	a := Attitude{Roll: roll, Pitch: pitch, Mode: m.String(), Seq: l.seq, Time: l.now(), State: l.state}
	for _, o := range l.Observers {
		o.Observe(a)
	}
}
