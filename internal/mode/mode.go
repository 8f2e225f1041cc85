// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mode

import (
	"fmt"
	"log"
	"time"
)

// Mode selects which attitude axis the display shows. The numeric values
// are the telemetry wire byte.
type Mode byte

const (
	RollOnly  Mode = 0
	PitchOnly Mode = 1
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == RollOnly || m == PitchOnly
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == PitchOnly {
		return RollOnly
	}
	return PitchOnly
}

func (m Mode) String() string {
	switch m {
	case RollOnly:
		return "roll"
	case PitchOnly:
		return "pitch"
	default:
		return fmt.Sprintf("mode(%d)", byte(m))
	}
}

// Parse accepts "roll" or "pitch".
func Parse(s string) (Mode, error) {
	switch s {
	case "roll":
		return RollOnly, nil
	case "pitch":
		return PitchOnly, nil
	}
	return 0, fmt.Errorf("unknown display mode %q", s)
}

// Edge is the button collaborator: an edge flag latched elsewhere and the
// current (debounced-by-caller) level.
type Edge interface {
	TakeEdge() bool
	Pressed() bool
}

// Resetter is anything holding per-mode render state that must be dropped
// when the mode changes.
type Resetter interface {
	Reset()
}

// Controller owns the active display mode.
type Controller struct {
	current  Mode
	debounce time.Duration
	sleep    func(time.Duration)
	reset    Resetter
}

// NewController starts in RollOnly. reset is invoked on every mode change.
func NewController(debounce time.Duration, reset Resetter) *Controller {
	return &Controller{
		current:  RollOnly,
		debounce: debounce,
		sleep:    time.Sleep,
		reset:    reset,
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.current
}

// Poll consumes a pending button edge. The press is confirmed by waiting
// the debounce delay and re-checking the level; a confirmed press toggles
// the mode. Returns true when the mode changed.
func (c *Controller) Poll(in Edge) bool {
	if in == nil || !in.TakeEdge() {
		return false
	}
	if c.debounce > 0 {
		c.sleep(c.debounce)
	}
	if !in.Pressed() {
		return false
	}
	c.apply(c.current.Other())
	log.Printf("mode: button toggled display to %s", c.current)
	return true
}

// Set forces a mode, e.g. the one carried by a telemetry packet.
// Returns true when the mode changed.
func (c *Controller) Set(m Mode) bool {
	if m == c.current {
		return false
	}
	c.apply(m)
	return true
}

func (c *Controller) apply(m Mode) {
	c.current = m
	if c.reset != nil {
		c.reset.Reset()
	}
}
