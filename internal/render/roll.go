// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"math"

	"github.com/relabs-tech/artificial_horizon/internal/display"
)

// RollView draws a single horizon line through the screen centre, tilted
// by roll, over a static protractor.
type RollView struct {
	drawn   bool
	hasLine bool
	p1, p2  display.Point
}

// Reset marks the view undrawn; the next Draw repaints from scratch.
func (v *RollView) Reset() {
	*v = RollView{}
}

// Line returns the endpoints drawn last, if any.
func (v *RollView) Line() (p1, p2 display.Point, ok bool) {
	return v.p1, v.p2, v.hasLine
}

// RollEndpoints places the horizon line for roll (radians) symmetric about
// (cx, cy).
func RollEndpoints(cx, cy int, roll float64) (display.Point, display.Point) {
	dx := int(math.Round(RollRadius * math.Cos(roll)))
	dy := int(math.Round(RollRadius * math.Sin(roll)))
	return display.Point{X: cx + dx, Y: cy - dy}, display.Point{X: cx - dx, Y: cy + dy}
}

// Draw brings the surface up to date with roll.
func (v *RollView) Draw(s display.Surface, roll float64) {
	w, h := s.Size()
	cx, cy := w/2, h/2

	if !v.drawn {
		s.Clear(Background)
		drawProtractor(s, cx, cy)
		v.drawn = true
		v.hasLine = false
	}

	p1, p2 := RollEndpoints(cx, cy, roll)
	if v.hasLine {
		x, y, ew, eh := eraseBox(v.p1, v.p2, w, h)
		s.FillRect(x, y, ew, eh, Background)
	}
	s.DrawLine(p1, p2, Foreground)
	v.p1, v.p2, v.hasLine = p1, p2, true
}

// eraseBox is the bounding box of p1-p2 grown by ErasePad and clamped to
// the screen.
func eraseBox(p1, p2 display.Point, w, h int) (x, y, bw, bh int) {
	x0 := max(min(p1.X, p2.X)-ErasePad, 0)
	y0 := max(min(p1.Y, p2.Y)-ErasePad, 0)
	x1 := min(max(p1.X, p2.X)+ErasePad, w-1)
	y1 := min(max(p1.Y, p2.Y)+ErasePad, h-1)
	return x0, y0, x1 - x0 + 1, y1 - y0 + 1
}

func drawProtractor(s display.Surface, cx, cy int) {
	for _, l := range ProtractorLabels {
		a := float64(l.Deg) * math.Pi / 180
		c, sn := math.Cos(a), math.Sin(a)
		in := display.Point{X: cx + int(math.Round(ProtractorInner*c)), Y: cy - int(math.Round(ProtractorInner*sn))}
		out := display.Point{X: cx + int(math.Round(ProtractorOuter*c)), Y: cy - int(math.Round(ProtractorOuter*sn))}
		s.DrawLine(in, out, Foreground)

		ax := cx + int(math.Round(ProtractorLabelRadius*c))
		ay := cy - int(math.Round(ProtractorLabelRadius*sn))
		s.DrawString(ax+l.DX, ay+l.DY, l.Text, Foreground, LabelScale)
	}
}
