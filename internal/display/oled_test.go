// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type fakePanel struct {
	draws int
	last  image.Image
}

func (p *fakePanel) String() string          { return "fake-oled" }
func (p *fakePanel) Halt() error             { return nil }
func (p *fakePanel) ColorModel() color.Model { return image1bit.BitModel }
func (p *fakePanel) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }
func (p *fakePanel) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	p.draws++
	p.last = src
	return nil
}

func TestMonoThreshold(t *testing.T) {
	panel := &fakePanel{}
	m := NewMono(panel)
	w, h := m.Size()
	require.Equal(t, 128, w)
	require.Equal(t, 64, h)

	m.Clear(Color{B: 255})
	assert.False(t, m.Lit(0, 0), "sky is dark on the oled")
	m.FillRect(0, 0, 4, 4, Color{R: 255, G: 255})
	assert.True(t, m.Lit(3, 3))
	assert.False(t, m.Lit(4, 4))
	m.DrawLine(Point{0, 63}, Point{127, 63}, white)
	assert.True(t, m.Lit(127, 63))
}

func TestMonoFlushOnlyWhenDirty(t *testing.T) {
	panel := &fakePanel{}
	m := NewMono(panel)
	require.NoError(t, m.Flush())
	require.NoError(t, m.Flush())
	assert.Equal(t, 1, panel.draws)

	m.DrawHLine(0, 0, 3, white)
	require.NoError(t, m.Flush())
	assert.Equal(t, 2, panel.draws)
	assert.NotNil(t, panel.last)
}

func TestRecorderKeepsOpsAndPixels(t *testing.T) {
	r := NewRecorder(32, 16)
	r.Clear(Color{})
	r.FillRect(1, 1, 2, 2, white)
	r.DrawString(10, 0, "5", white, 1)

	ops := r.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, OpFillRect, ops[1].Kind)
	assert.Equal(t, "5", ops[2].Text)
	assert.Equal(t, white, r.Framebuffer().At(2, 2))

	r.Reset()
	assert.Empty(t, r.Ops())
	assert.Equal(t, white, r.Framebuffer().At(1, 1))

	snap := r.Snapshot()
	assert.Equal(t, uint8(255), snap.RGBAAt(1, 1).R)
}

func TestTraceDoesNotRetain(t *testing.T) {
	tr := NewTrace(8, 8)
	tr.DrawVLine(0, 0, 8, white)
	assert.Empty(t, tr.Ops())
	assert.Equal(t, white, tr.Framebuffer().At(0, 7))
}
