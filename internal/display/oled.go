// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"log"

	pdisplay "periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// monoThreshold is the luma at and above which a pixel is lit. Sky and
// ground both fall below it, so the OLED shows line art on black.
const monoThreshold = 128

// Mono adapts the renderer to a 1-bit OLED. Drawing goes to an in-memory
// page buffer and Flush pushes the changed frame to the device.
type Mono struct {
	dev   pdisplay.Drawer
	img   *image1bit.VerticalLSB
	w, h  int
	dirty bool
}

// NewMono wraps any periph display.Drawer, typically an *ssd1306.Dev.
func NewMono(dev pdisplay.Drawer) *Mono {
	b := dev.Bounds()
	return &Mono{
		dev:   dev,
		img:   image1bit.NewVerticalLSB(image.Rect(0, 0, b.Dx(), b.Dy())),
		w:     b.Dx(),
		h:     b.Dy(),
		dirty: true,
	}
}

// OpenSSD1306 opens the I2C bus (empty name for the default bus) and an
// SSD1306 panel of w x h pixels. The returned closer releases the bus.
func OpenSSD1306(busName string, w, h int) (*Mono, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("ssd1306: open I2C bus %q: %w", busName, err)
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = w, h
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("ssd1306: init: %w", err)
	}
	log.Printf("display: ssd1306 %dx%d on I2C bus %q", w, h, busName)
	return NewMono(dev), bus, nil
}

func (m *Mono) Size() (int, int) { return m.w, m.h }

func (m *Mono) Clear(c Color) { m.FillRect(0, 0, m.w, m.h, c) }

func (m *Mono) FillRect(x, y, w, h int, c Color) {
	x, y, w, h, ok := clip(x, y, w, h, m.w, m.h)
	if !ok {
		return
	}
	bit := image1bit.Off
	if c.Luma() >= monoThreshold {
		bit = image1bit.On
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			m.img.SetBit(col, row, bit)
		}
	}
	m.dirty = true
}

func (m *Mono) DrawLine(p1, p2 Point, c Color) { drawLine(m.FillRect, p1, p2, c) }

func (m *Mono) DrawHLine(x, y, length int, c Color) { m.FillRect(x, y, length, 1, c) }

func (m *Mono) DrawVLine(x, y, length int, c Color) { m.FillRect(x, y, 1, length, c) }

func (m *Mono) DrawString(x, y int, text string, c Color, scale int) {
	drawString(m.FillRect, x, y, text, c, scale)
}

// Lit reports whether the pixel at (x, y) is on in the page buffer.
func (m *Mono) Lit(x, y int) bool {
	return m.img.BitAt(x, y) == image1bit.On
}

// Flush sends the page buffer when anything was drawn since the last call.
func (m *Mono) Flush() error {
	if !m.dirty {
		return nil
	}
	if err := m.dev.Draw(m.dev.Bounds(), m.img, image.Point{}); err != nil {
		return fmt.Errorf("ssd1306: draw: %w", err)
	}
	m.dirty = false
	return nil
}
