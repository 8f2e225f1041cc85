// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mailbox provides a single-slot, overwrite-on-write handoff between
// a producer goroutine and a consumer loop.
//
// At most one value is pending at any time. Put replaces an unread value
// instead of queueing it, so a slow consumer always sees the latest value
// and never applies backpressure to the producer.
package mailbox

import "sync"

// Mailbox holds at most one pending value of type T.
type Mailbox[T any] struct {
	mu          sync.Mutex
	value       T
	full        bool
	overwritten uint64
	ready       chan struct{}
}

// New returns an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Put stores v, dropping any value that was not taken yet.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	if m.full {
		m.overwritten++
	}
	m.value = v
	m.full = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Take copies the pending value out and clears the slot.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.value, m.full
	var zero T
	m.value = zero
	m.full = false
	return v, ok
}

// Ready is signalled after each Put. A signal may be stale (the value was
// already taken), so consumers must still check Take's ok result.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

// Overwritten reports how many values were replaced before being taken.
func (m *Mailbox[T]) Overwritten() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overwritten
}
