// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package button latches falling edges of an active-low push button on a
// GPIO pin. Debouncing is left to the consumer (see mode.Controller).
package button

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgeWait bounds each WaitForEdge so Close is noticed.
const edgeWait = 100 * time.Millisecond

// Button implements mode.Edge for a GPIO pin wired to ground through the
// switch, with the internal pull-up enabled.
type Button struct {
	pin  gpio.PinIn
	edge atomic.Bool
	done chan struct{}
}

// New configures pin as a pulled-up input with falling-edge detection and
// starts watching it.
func New(pin gpio.PinIn) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("button %s: configure input: %w", pin, err)
	}
	b := &Button{pin: pin, done: make(chan struct{})}
	go b.watch()
	return b, nil
}

// Open looks the pin up by name (e.g. "GPIO17" or "17").
func Open(name string) (*Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("button pin %q not found", name)
	}
	b, err := New(pin)
	if err != nil {
		return nil, err
	}
	log.Printf("button: watching %s", pin)
	return b, nil
}

func (b *Button) watch() {
	for {
		select {
		case <-b.done:
			return
		default:
		}
		if b.pin.WaitForEdge(edgeWait) {
			b.edge.Store(true)
		}
	}
}

// TakeEdge reports and clears a latched edge.
func (b *Button) TakeEdge() bool {
	return b.edge.Swap(false)
}

// Pressed reads the current level; the switch pulls the pin low.
func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// Close stops the watcher and halts the pin.
func (b *Button) Close() error {
	close(b.done)
	return b.pin.Halt()
}
