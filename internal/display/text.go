// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph cell metrics of basicfont.Face7x13 at scale 1.
const (
	GlyphWidth  = 7
	GlyphHeight = 13
	glyphAscent = 11
)

// The label glyph set. Anything else advances one blank cell.
const glyphSet = "0123456789+-."

// basicfont only covers ASCII, so the degree sign is hand drawn.
var degreeBitmap = []string{
	".###.",
	"#...#",
	"#...#",
	".###.",
}

// span is a horizontal run of lit pixels inside a glyph cell.
type span struct {
	x, y, w int
}

var glyphs = buildGlyphs()

func buildGlyphs() map[rune][]span {
	out := make(map[rune][]span, len(glyphSet)+1)
	for _, r := range glyphSet {
		mask := image.NewAlpha(image.Rect(0, 0, GlyphWidth, GlyphHeight))
		d := &font.Drawer{
			Dst:  mask,
			Src:  image.Opaque,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(0, glyphAscent),
		}
		d.DrawString(string(r))
		out[r] = maskSpans(func(x, y int) bool { return mask.AlphaAt(x, y).A != 0 })
	}
	out['°'] = maskSpans(func(x, y int) bool {
		y-- // one row of headroom
		if y < 0 || y >= len(degreeBitmap) || x < 1 || x > len(degreeBitmap[y]) {
			return false
		}
		return degreeBitmap[y][x-1] == '#'
	})
	return out
}

func maskSpans(lit func(x, y int) bool) []span {
	var spans []span
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; {
			if !lit(x, y) {
				x++
				continue
			}
			start := x
			for x < GlyphWidth && lit(x, y) {
				x++
			}
			spans = append(spans, span{x: start, y: y, w: x - start})
		}
	}
	return spans
}

// TextWidth is the pixel width DrawString uses for text at scale.
func TextWidth(text string, scale int) int {
	return len([]rune(text)) * GlyphWidth * normScale(scale)
}

// TextHeight is the pixel height of one line of text at scale.
func TextHeight(scale int) int {
	return GlyphHeight * normScale(scale)
}

func normScale(scale int) int {
	if scale < 1 {
		return 1
	}
	return scale
}

// drawString paints text as scaled glyph spans through fill.
func drawString(fill fillFunc, x, y int, text string, c Color, scale int) {
	scale = normScale(scale)
	for _, r := range text {
		for _, s := range glyphs[r] {
			fill(x+s.x*scale, y+s.y*scale, s.w*scale, scale, c)
		}
		x += GlyphWidth * scale
	}
}
