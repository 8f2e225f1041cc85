// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterLast(t *testing.T) {
	b := NewBroadcaster()
	_, ok := b.Last()
	assert.False(t, ok)

	b.Observe(Attitude{Seq: 1})
	b.Observe(Attitude{Seq: 2})
	a, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(2), a.Seq)
}

func TestBroadcasterSubscribeReplaysLast(t *testing.T) {
	b := NewBroadcaster()
	b.Observe(Attitude{Seq: 7})

	id, ch := b.Subscribe(4)
	defer b.Unsubscribe(id)
	assert.Equal(t, uint64(7), (<-ch).Seq)

	b.Observe(Attitude{Seq: 8})
	assert.Equal(t, uint64(8), (<-ch).Seq)
}

func TestBroadcasterDropsForSlowListener(t *testing.T) {
	b := NewBroadcaster()
	id, ch := b.Subscribe(1)
	for i := uint64(1); i <= 5; i++ {
		b.Observe(Attitude{Seq: i})
	}
	assert.Equal(t, uint64(1), (<-ch).Seq)
	assert.Len(t, ch, 0)

	b.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
	b.Unsubscribe(id)
}
