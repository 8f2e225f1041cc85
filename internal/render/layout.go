// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package render turns an attitude into the smallest set of drawing calls
// that keeps a display.Surface correct. The bus to a TFT is slow, so each
// view remembers what it drew last and only repaints what changed.
package render

import "github.com/relabs-tech/artificial_horizon/internal/display"

// Palette.
var (
	Background = display.Color{}
	Foreground = display.Color{R: 255, G: 255, B: 255}
	Sky        = display.Color{R: 0, G: 0, B: 255}
	Ground     = display.Color{R: 101, G: 67, B: 33}
	Highlight  = display.Color{R: 255, G: 255, B: 0}
)

// Roll view geometry.
const (
	// RollRadius is the half length of the horizon line in pixels.
	RollRadius = 40
	// ErasePad grows the previous line's bounding box before it is erased.
	ErasePad = 2

	// Protractor ticks run radially between these radii. The inner radius
	// keeps every tick outside any padded erase box of the roll line.
	ProtractorInner = 46
	ProtractorOuter = 54
	// ProtractorLabelRadius anchors labels before their per-label offset.
	ProtractorLabelRadius = 57
)

// ProtractorLabel is one protractor tick and where its label goes.
type ProtractorLabel struct {
	Deg    int
	Text   string
	DX, DY int // from the anchor point to the label's top-left corner
}

// ProtractorLabels are hand-tuned for a 160x128 panel; other panels still
// get readable, if less balanced, labels.
var ProtractorLabels = []ProtractorLabel{
	{Deg: 60, Text: "60", DX: -4, DY: -12},
	{Deg: 30, Text: "30", DX: 2, DY: -10},
	{Deg: 0, Text: "0", DX: 2, DY: -6},
	{Deg: -30, Text: "-30", DX: 2, DY: -2},
	{Deg: -60, Text: "-60", DX: -8, DY: -2},
}

// Pitch view geometry.
const (
	// PixelsPerRadian scales pitch to screen rows.
	PixelsPerRadian = 60.0
	// BucketDeg is the pitch quantization step.
	BucketDeg = 5
	// BucketBias is added before flooring to the bucket grid.
	BucketBias = 2.0
	// PitchLimitDeg clamps pitch before quantization.
	PitchLimitDeg = 45

	// LadderSpanDeg is how far above and below the horizon rungs are drawn.
	LadderSpanDeg = 45
	// LabelEveryDeg marks which rungs are long and labelled.
	LabelEveryDeg = 15

	ShortRungWidth = 20
	LongRungWidth  = 40
	ZeroRungWidth  = 100
	// LabelGap separates a long rung from its label.
	LabelGap   = 4
	LabelScale = 1

	// ReferenceWidth is the fixed aircraft reference line at screen centre.
	ReferenceWidth = 80
)
