// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import "sync"

// Broadcaster fans attitude updates out to any number of listeners. It
// keeps the most recent value so new subscribers get an immediate sample,
// and drops updates for listeners that fall behind.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan Attitude
	nextID   int
	last     Attitude
	haveLast bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Attitude)}
}

// Observe implements Observer.
func (b *Broadcaster) Observe(a Attitude) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last, b.haveLast = a, true
	for _, ch := range b.subs {
		select {
		case ch <- a:
		default:
		}
	}
}

// Last returns the most recent update.
func (b *Broadcaster) Last() (Attitude, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.haveLast
}

func (b *Broadcaster) Subscribe(buffer int) (int, <-chan Attitude) {
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan Attitude, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.haveLast {
		ch <- b.last
	}
	b.mu.Unlock()
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}
