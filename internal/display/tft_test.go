// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type busWrite struct {
	command bool
	b       []byte
}

// fakeBus records every SPI write together with the D/C level at the time.
type fakeBus struct {
	dc     *gpiotest.Pin
	writes []busWrite
	fail   error
}

func (f *fakeBus) String() string      { return "fake-spi" }
func (f *fakeBus) Duplex() conn.Duplex { return conn.Half }
func (f *fakeBus) Tx(w, _ []byte) error {
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, busWrite{command: f.dc.Read() == gpio.Low, b: append([]byte(nil), w...)})
	return nil
}

// commands folds the write log into command byte -> data bytes in order.
func (f *fakeBus) commands() []busWrite {
	var out []busWrite
	for _, w := range f.writes {
		if w.command {
			out = append(out, busWrite{command: true, b: w.b})
			continue
		}
		if len(out) == 0 {
			continue
		}
		last := &out[len(out)-1]
		last.b = append(last.b, w.b...)
	}
	return out
}

func newTestTFT(t *testing.T, opts TFTOpts) (*TFT, *fakeBus, *gpiotest.Pin) {
	t.Helper()
	dc := &gpiotest.Pin{N: "DC", Num: 25}
	rst := &gpiotest.Pin{N: "RST", Num: 24}
	bus := &fakeBus{dc: dc}
	var slept time.Duration
	d, err := newTFT(bus, dc, rst, opts, func(d time.Duration) { slept += d })
	require.NoError(t, err)
	require.NotZero(t, slept)
	return d, bus, rst
}

func TestTFTInitScript(t *testing.T) {
	d, bus, rst := newTestTFT(t, TFTOpts{Controller: ST7735S})
	w, h := d.Size()
	assert.Equal(t, 160, w)
	assert.Equal(t, 128, h)
	assert.Equal(t, gpio.High, rst.Read())

	cmds := bus.commands()
	require.Len(t, cmds, len(st7735sInit))
	assert.Equal(t, []byte{cmdSWRESET}, cmds[0].b)
	assert.Equal(t, []byte{cmdMADCTL, 0x60}, cmds[3].b)
	assert.Equal(t, []byte{cmdDISPON}, cmds[len(cmds)-1].b)

	d, bus, _ = newTestTFT(t, TFTOpts{Controller: ST7789})
	w, h = d.Size()
	assert.Equal(t, 240, w)
	assert.Equal(t, 240, h)
	assert.Equal(t, []byte{cmdMADCTL, 0x68}, bus.commands()[1].b)
}

func TestTFTFillRectWindowAndPixels(t *testing.T) {
	d, bus, _ := newTestTFT(t, TFTOpts{Controller: ST7735S, ColOffset: 1, RowOffset: 2})
	bus.writes = nil

	d.FillRect(10, 20, 3, 2, Color{R: 255})
	require.NoError(t, d.Flush())

	cmds := bus.commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, []byte{cmdCASET, 0, 11, 0, 13}, cmds[0].b)
	assert.Equal(t, []byte{cmdRASET, 0, 22, 0, 23}, cmds[1].b)
	require.Equal(t, byte(cmdRAMWR), cmds[2].b[0])
	px := cmds[2].b[1:]
	require.Len(t, px, 2*3*2)
	for i := 0; i < len(px); i += 2 {
		assert.Equal(t, []byte{0xF8, 0x00}, px[i:i+2])
	}
}

func TestTFTClipsAndChunks(t *testing.T) {
	d, bus, _ := newTestTFT(t, TFTOpts{Controller: ST7789})
	bus.writes = nil

	d.FillRect(-10, -10, 5, 5, white)
	assert.Empty(t, bus.writes)

	d.Clear(white)
	var data int
	for _, w := range bus.writes {
		assert.LessOrEqual(t, len(w.b), maxTx)
		if !w.command {
			data += len(w.b)
		}
	}
	assert.Equal(t, 8+240*240*2, data, "window arguments plus pixels")
}

func TestTFTLatchesBusError(t *testing.T) {
	d, bus, _ := newTestTFT(t, TFTOpts{Controller: ST7735S})
	bus.fail = errors.New("spi gone")
	d.DrawHLine(0, 0, 10, white)
	d.DrawVLine(0, 0, 10, white)
	assert.ErrorContains(t, d.Flush(), "spi gone")
	assert.NoError(t, d.Flush())
}
