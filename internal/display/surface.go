// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display holds the drawing capability the horizon renderer needs
// and one implementation per display controller.
//
// Every Surface clips out-of-bounds geometry silently; drawing never
// returns an error. Surfaces that talk to hardware latch the first bus
// error and report it from Flush.
package display

import "image/color"

// Color is a 24-bit RGB triple. Controllers reduce it to their native
// format (RGB565 for the TFTs, one bit for the OLED).
type Color struct {
	R, G, B uint8
}

// RGB565 packs c the way ST77xx controllers expect it in COLMOD 0x05.
func (c Color) RGB565() uint16 {
	return uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B>>3)
}

// RGBA converts c to an opaque image/color value.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// Luma is the integer Rec. 601 brightness of c, 0..255.
func (c Color) Luma() int {
	return (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
}

// Point is a pixel coordinate; y grows downward.
type Point struct {
	X, Y int
}

// Surface is the minimal drawing capability shared by every display.
type Surface interface {
	Size() (w, h int)
	Clear(c Color)
	FillRect(x, y, w, h int, c Color)
	DrawLine(p1, p2 Point, c Color)
	DrawHLine(x, y, length int, c Color)
	DrawVLine(x, y, length int, c Color)
	// DrawString draws text with its top-left corner at (x, y). Glyphs are
	// 7x13 cells multiplied by scale.
	DrawString(x, y int, text string, c Color, scale int)
}

// Flusher is implemented by surfaces that buffer drawing or latch errors.
type Flusher interface {
	Flush() error
}

// Flush flushes s if it buffers, otherwise it is a no-op.
func Flush(s Surface) error {
	if f, ok := s.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// clip intersects the rectangle with [0,sw)x[0,sh). ok is false when
// nothing is left.
func clip(x, y, w, h, sw, sh int) (int, int, int, int, bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0, false
	}
	x0, y0, x1, y1 := x, y, x+w, y+h
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > sw {
		x1 = sw
	}
	if y1 > sh {
		y1 = sh
	}
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1 - x0, y1 - y0, true
}

// fillFunc fills an unclipped rectangle; the callee clips.
type fillFunc func(x, y, w, h int, c Color)

// drawLine rasterizes p1-p2 with Bresenham and hands straight runs to fill,
// so a shallow line costs one fill per row instead of one per pixel.
func drawLine(fill fillFunc, p1, p2 Point, c Color) {
	dx := abs(p2.X - p1.X)
	dy := -abs(p2.Y - p1.Y)
	sx, sy := 1, 1
	if p1.X > p2.X {
		sx = -1
	}
	if p1.Y > p2.Y {
		sy = -1
	}
	steep := -dy > dx

	x, y := p1.X, p1.Y
	runX, runY, runLen := x, y, 0
	flush := func() {
		if runLen == 0 {
			return
		}
		if steep {
			top := runY
			if sy < 0 {
				top = runY - runLen + 1
			}
			fill(runX, top, 1, runLen, c)
		} else {
			left := runX
			if sx < 0 {
				left = runX - runLen + 1
			}
			fill(left, runY, runLen, 1, c)
		}
		runLen = 0
	}

	e := dx + dy
	for {
		if runLen == 0 {
			runX, runY = x, y
		}
		runLen++
		if x == p2.X && y == p2.Y {
			break
		}
		e2 := 2 * e
		movedX, movedY := false, false
		if e2 >= dy {
			e += dy
			x += sx
			movedX = true
		}
		if e2 <= dx {
			e += dx
			y += sy
			movedY = true
		}
		if (steep && movedX) || (!steep && movedY) {
			flush()
		}
	}
	flush()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
