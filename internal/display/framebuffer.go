// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"image"
	"sync"
)

// Framebuffer is an in-memory RGB surface. The control loop draws into it
// while the web server takes snapshots, hence the lock.
type Framebuffer struct {
	mu  sync.Mutex
	img *image.RGBA
}

// NewFramebuffer allocates a w x h framebuffer, initially black.
func NewFramebuffer(w, h int) *Framebuffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return &Framebuffer{img: img}
}

func (f *Framebuffer) Size() (int, int) {
	b := f.img.Bounds()
	return b.Dx(), b.Dy()
}

func (f *Framebuffer) Clear(c Color) {
	w, h := f.Size()
	f.FillRect(0, 0, w, h, c)
}

func (f *Framebuffer) FillRect(x, y, w, h int, c Color) {
	sw, sh := f.Size()
	x, y, w, h, ok := clip(x, y, w, h, sw, sh)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for row := y; row < y+h; row++ {
		off := f.img.PixOffset(x, row)
		for i := 0; i < w; i++ {
			p := f.img.Pix[off+4*i : off+4*i+4 : off+4*i+4]
			p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xFF
		}
	}
}

func (f *Framebuffer) DrawLine(p1, p2 Point, c Color) {
	drawLine(f.FillRect, p1, p2, c)
}

func (f *Framebuffer) DrawHLine(x, y, length int, c Color) {
	f.FillRect(x, y, length, 1, c)
}

func (f *Framebuffer) DrawVLine(x, y, length int, c Color) {
	f.FillRect(x, y, 1, length, c)
}

func (f *Framebuffer) DrawString(x, y int, text string, c Color, scale int) {
	drawString(f.FillRect, x, y, text, c, scale)
}

// At returns the color of one pixel; out of bounds reads black.
func (f *Framebuffer) At(x, y int) Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !(image.Point{X: x, Y: y}).In(f.img.Bounds()) {
		return Color{}
	}
	p := f.img.RGBAAt(x, y)
	return Color{R: p.R, G: p.G, B: p.B}
}

// Snapshot returns a copy of the current contents.
func (f *Framebuffer) Snapshot() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := image.NewRGBA(f.img.Bounds())
	copy(out.Pix, f.img.Pix)
	return out
}

// Snapshotter is implemented by surfaces that can hand out their pixels.
type Snapshotter interface {
	Snapshot() *image.RGBA
}
