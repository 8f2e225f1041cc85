// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock provides the control loop's tick: a blocking receive on a
// periodic channel. Late ticks are simply late; nothing counts missed ones.
package clock

import (
	"sync"
	"time"
)

// Source delivers ticks on C until Stop.
type Source interface {
	C() <-chan time.Time
	Stop()
}

// Ticker is the wall-clock Source.
type Ticker struct {
	t *time.Ticker
}

// NewTicker ticks every d.
func NewTicker(d time.Duration) *Ticker {
	return &Ticker{t: time.NewTicker(d)}
}

func (t *Ticker) C() <-chan time.Time { return t.t.C }

func (t *Ticker) Stop() { t.t.Stop() }

// Manual is a virtual clock for tests: every Tick hands one tick to the
// loop and blocks until the loop has taken it.
type Manual struct {
	c    chan time.Time
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewManual starts at start and advances by step on every Tick.
func NewManual(start time.Time, step time.Duration) *Manual {
	return &Manual{c: make(chan time.Time), now: start, step: step}
}

func (m *Manual) C() <-chan time.Time { return m.c }

func (m *Manual) Stop() {}

// Tick advances the clock and delivers the new time.
func (m *Manual) Tick() {
	m.mu.Lock()
	m.now = m.now.Add(m.step)
	now := m.now
	m.mu.Unlock()
	m.c <- now
}

// Now is the time of the last delivered tick.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
