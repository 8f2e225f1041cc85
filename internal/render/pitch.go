// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"math"
	"strconv"

	"github.com/relabs-tech/artificial_horizon/internal/display"
)

// PitchView draws a sky/ground split and a pitch ladder that move with the
// quantized pitch, plus a fixed reference line.
type PitchView struct {
	drawn   bool
	bucket  int
	horizon int
}

// Reset marks the view undrawn; the next Draw repaints from scratch.
func (v *PitchView) Reset() {
	*v = PitchView{}
}

// State reports the bucket and horizon row drawn last.
func (v *PitchView) State() (bucket, horizon int, ok bool) {
	return v.bucket, v.horizon, v.drawn
}

// Bucket clamps pitch to ±PitchLimitDeg and quantizes it to the 5° grid:
// floor((deg + 2) / 5) * 5, so -1.9..2.0 all land on 0 and 3.0 on 5.
func Bucket(pitchDeg float64) int {
	pitchDeg = math.Max(-PitchLimitDeg, math.Min(PitchLimitDeg, pitchDeg))
	return int(math.Floor((pitchDeg+BucketBias)/BucketDeg)) * BucketDeg
}

// HorizonRow is the first ground row for bucket on a screen of height h.
func HorizonRow(cy, h, bucket int) int {
	y := cy - int(math.Round(degToRad(bucket)*PixelsPerRadian))
	return max(0, min(h, y))
}

// RungRow is where the rung for relative angle a sits above horizon.
func RungRow(horizon, a int) int {
	return horizon - int(math.Round(degToRad(a)*PixelsPerRadian))
}

func degToRad(d int) float64 {
	return float64(d) * math.Pi / 180
}

// Draw brings the surface up to date with pitch (radians).
func (v *PitchView) Draw(s display.Surface, pitch float64) {
	w, h := s.Size()
	cx, cy := w/2, h/2
	bucket := Bucket(pitch * 180 / math.Pi)
	horizon := HorizonRow(cy, h, bucket)

	switch {
	case !v.drawn:
		s.Clear(Background)
		s.FillRect(0, 0, w, horizon, Sky)
		s.FillRect(0, horizon, w, h-horizon, Ground)
		drawLadder(s, cx, horizon)
		v.drawn = true

	case bucket != v.bucket:
		if horizon > v.horizon {
			s.FillRect(0, v.horizon, w, horizon-v.horizon, Sky)
		} else if horizon < v.horizon {
			s.FillRect(0, horizon, w, v.horizon-horizon, Ground)
		}
		for _, r := range ladderRects(cx, v.horizon) {
			fillBackground(s, r, horizon)
		}
		drawLadder(s, cx, horizon)
	}
	v.bucket, v.horizon = bucket, horizon

	s.DrawHLine(cx-ReferenceWidth/2, cy, ReferenceWidth, Foreground)
}

type rect struct {
	x, y, w, h int
}

// rung describes one ladder mark relative to the horizon.
type rung struct {
	deg   int
	width int
	color display.Color
	label string
}

var ladder = buildLadder()

func buildLadder() []rung {
	var out []rung
	for a := -LadderSpanDeg; a <= LadderSpanDeg; a += BucketDeg {
		r := rung{deg: a, width: ShortRungWidth, color: Foreground}
		switch {
		case a == 0:
			r.width, r.color = ZeroRungWidth, Highlight
		case a%LabelEveryDeg == 0:
			r.width, r.label = LongRungWidth, strconv.Itoa(a)
		}
		out = append(out, r)
	}
	return out
}

func labelOrigin(cx, y int) (int, int) {
	return cx + LongRungWidth/2 + LabelGap, y - display.TextHeight(LabelScale)/2
}

func drawLadder(s display.Surface, cx, horizon int) {
	for _, r := range ladder {
		y := RungRow(horizon, r.deg)
		s.DrawHLine(cx-r.width/2, y, r.width, r.color)
		if r.label != "" {
			lx, ly := labelOrigin(cx, y)
			s.DrawString(lx, ly, r.label, r.color, LabelScale)
		}
	}
}

// ladderRects covers every pixel drawLadder touches for horizon.
func ladderRects(cx, horizon int) []rect {
	out := make([]rect, 0, 2*len(ladder))
	for _, r := range ladder {
		y := RungRow(horizon, r.deg)
		out = append(out, rect{cx - r.width/2, y, r.width, 1})
		if r.label != "" {
			lx, ly := labelOrigin(cx, y)
			out = append(out, rect{lx, ly, display.TextWidth(r.label, LabelScale), display.TextHeight(LabelScale)})
		}
	}
	return out
}

// fillBackground repaints r with whatever lies under the ladder: sky above
// horizon, ground from horizon down.
func fillBackground(s display.Surface, r rect, horizon int) {
	if r.y < horizon {
		s.FillRect(r.x, r.y, r.w, min(r.h, horizon-r.y), Sky)
	}
	if r.y+r.h > horizon {
		top := max(r.y, horizon)
		s.FillRect(r.x, top, r.w, r.y+r.h-top, Ground)
	}
}
