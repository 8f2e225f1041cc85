// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"log"
	"sync"
)

// OpKind names a Surface call.
type OpKind string

const (
	OpClear      OpKind = "clear"
	OpFillRect   OpKind = "fill"
	OpLine       OpKind = "line"
	OpHLine      OpKind = "hline"
	OpVLine      OpKind = "vline"
	OpDrawString OpKind = "text"
)

// Op is one recorded Surface call. Only the fields relevant to Kind are set.
type Op struct {
	Kind   OpKind
	X, Y   int
	W, H   int
	P1, P2 Point
	Text   string
	Scale  int
	Color  Color
}

func (o Op) String() string {
	switch o.Kind {
	case OpClear:
		return fmt.Sprintf("clear %v", o.Color)
	case OpLine:
		return fmt.Sprintf("line %v-%v %v", o.P1, o.P2, o.Color)
	case OpDrawString:
		return fmt.Sprintf("text (%d,%d) %q x%d %v", o.X, o.Y, o.Text, o.Scale, o.Color)
	default:
		return fmt.Sprintf("%s (%d,%d) %dx%d %v", o.Kind, o.X, o.Y, o.W, o.H, o.Color)
	}
}

// Recorder is a Surface that remembers every call and also paints into a
// Framebuffer, so tests can check both the op stream and the pixels. With
// logging enabled it becomes the "trace" display driver.
type Recorder struct {
	fb *Framebuffer

	mu   sync.Mutex
	ops  []Op
	keep bool
	log  bool
}

// NewRecorder returns a recording surface of the given size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{fb: NewFramebuffer(w, h), keep: true}
}

// NewTrace returns a surface that logs each call instead of keeping it.
func NewTrace(w, h int) *Recorder {
	return &Recorder{fb: NewFramebuffer(w, h), log: true}
}

func (r *Recorder) record(op Op) {
	if r.log {
		log.Printf("display: %s", op)
	}
	if !r.keep {
		return
	}
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Ops returns the calls recorded since the last Reset.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Reset forgets recorded calls; pixels are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

// Framebuffer exposes the pixels painted so far.
func (r *Recorder) Framebuffer() *Framebuffer { return r.fb }

func (r *Recorder) Snapshot() *image.RGBA { return r.fb.Snapshot() }

func (r *Recorder) Size() (int, int) { return r.fb.Size() }

func (r *Recorder) Clear(c Color) {
	r.record(Op{Kind: OpClear, Color: c})
	r.fb.Clear(c)
}

func (r *Recorder) FillRect(x, y, w, h int, c Color) {
	r.record(Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: c})
	r.fb.FillRect(x, y, w, h, c)
}

func (r *Recorder) DrawLine(p1, p2 Point, c Color) {
	r.record(Op{Kind: OpLine, P1: p1, P2: p2, Color: c})
	r.fb.DrawLine(p1, p2, c)
}

func (r *Recorder) DrawHLine(x, y, length int, c Color) {
	r.record(Op{Kind: OpHLine, X: x, Y: y, W: length, H: 1, Color: c})
	r.fb.DrawHLine(x, y, length, c)
}

func (r *Recorder) DrawVLine(x, y, length int, c Color) {
	r.record(Op{Kind: OpVLine, X: x, Y: y, W: 1, H: length, Color: c})
	r.fb.DrawVLine(x, y, length, c)
}

func (r *Recorder) DrawString(x, y int, text string, c Color, scale int) {
	r.record(Op{Kind: OpDrawString, X: x, Y: y, Text: text, Scale: scale, Color: c})
	r.fb.DrawString(x, y, text, c, scale)
}
