// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Controller selects the TFT controller's init script and default geometry.
type Controller int

const (
	ST7735S Controller = iota
	ST7789
)

func (c Controller) String() string {
	switch c {
	case ST7735S:
		return "st7735s"
	case ST7789:
		return "st7789"
	default:
		return fmt.Sprintf("controller(%d)", int(c))
	}
}

// DefaultSize is the landscape panel size the controller is usually sold with.
func (c Controller) DefaultSize() (int, int) {
	if c == ST7789 {
		return 240, 240
	}
	return 160, 128
}

// Commands shared by both controllers.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// MADCTL bits.
const (
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlBGR = 0x08
)

type initStep struct {
	cmd   byte
	data  []byte
	delay time.Duration
}

var st7735sInit = []initStep{
	{cmd: cmdSWRESET, delay: 150 * time.Millisecond},
	{cmd: cmdSLPOUT, delay: 255 * time.Millisecond},
	{cmd: cmdCOLMOD, data: []byte{0x05}},
	{cmd: cmdMADCTL, data: []byte{madctlMX | madctlMV}},
	{cmd: 0xB2, data: []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}}, // porch
	{cmd: 0xB7, data: []byte{0x35}},                         // gate
	{cmd: 0xBB, data: []byte{0x2B}},                         // VCOM
	{cmd: 0xC0, data: []byte{0x2C}},
	{cmd: 0xC2, data: []byte{0x01, 0xFF}},
	{cmd: 0xC3, data: []byte{0x11}},
	{cmd: 0xC4, data: []byte{0x20}},
	{cmd: 0xC6, data: []byte{0x0F}}, // frame rate
	{cmd: 0xD0, data: []byte{0xA4, 0xA1}},
	{cmd: cmdNORON, delay: 10 * time.Millisecond},
	{cmd: cmdDISPON, delay: 100 * time.Millisecond},
}

var st7789Init = []initStep{
	{cmd: cmdSLPOUT, delay: 10 * time.Millisecond},
	{cmd: cmdMADCTL, data: []byte{madctlMX | madctlMV | madctlBGR}},
	{cmd: cmdCOLMOD, data: []byte{0x05}},
	{cmd: 0xB2, data: []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}},
	{cmd: 0xB7, data: []byte{0x35}},
	{cmd: 0xBB, data: []byte{0x19}},
	{cmd: 0xC2, data: []byte{0x01}},
	{cmd: 0xE0, data: []byte{0xD0, 0x04, 0x0D, 0x11, 0x13, 0x2B, 0x3F, 0x54, 0x4C, 0x18, 0x0D, 0x0B, 0x1F, 0x23}},
	{cmd: 0xE1, data: []byte{0xD0, 0x04, 0x0C, 0x11, 0x13, 0x2C, 0x3F, 0x44, 0x51, 0x2F, 0x1F, 0x1F, 0x20, 0x23}},
	{cmd: cmdDISPON, delay: 100 * time.Millisecond},
}

// TFTOpts describes the panel behind the controller.
type TFTOpts struct {
	Controller Controller
	// Width and Height default to Controller.DefaultSize when zero.
	Width, Height int
	// ColOffset and RowOffset shift the address window for panels that
	// are smaller than the controller's RAM.
	ColOffset, RowOffset int
}

// maxTx is the largest single SPI write; spidev defaults to 4096.
const maxTx = 4096

// TFT drives an ST7735S or ST7789 over 4-wire SPI: D/C selects command or
// data, RST is optional.
type TFT struct {
	conn conn.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut
	opts TFTOpts

	buf   []byte
	err   error
	sleep func(time.Duration)
}

// NewTFT resets and initializes the controller.
func NewTFT(c conn.Conn, dc, rst gpio.PinOut, opts TFTOpts) (*TFT, error) {
	return newTFT(c, dc, rst, opts, time.Sleep)
}

func newTFT(c conn.Conn, dc, rst gpio.PinOut, opts TFTOpts, sleep func(time.Duration)) (*TFT, error) {
	if dc == nil {
		return nil, fmt.Errorf("%s: D/C pin is required", opts.Controller)
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = opts.Controller.DefaultSize()
	}
	d := &TFT{
		conn:  c,
		dc:    dc,
		rst:   rst,
		opts:  opts,
		buf:   make([]byte, maxTx),
		sleep: sleep,
	}
	if err := d.init(); err != nil {
		return nil, fmt.Errorf("%s: init: %w", opts.Controller, err)
	}
	return d, nil
}

// OpenTFT opens the SPI device and GPIO pins by name and initializes the
// panel. rstPin may be empty when RST is tied high. The returned closer
// releases the SPI port.
func OpenTFT(spiDev string, hz physic.Frequency, dcPin, rstPin string, opts TFTOpts) (*TFT, spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: open %s: %w", opts.Controller, spiDev, err)
	}
	c, err := port.Connect(hz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("%s: connect %s: %w", opts.Controller, spiDev, err)
	}
	dc := gpioreg.ByName(dcPin)
	if dc == nil {
		port.Close()
		return nil, nil, fmt.Errorf("%s: D/C pin %q not found", opts.Controller, dcPin)
	}
	var rst gpio.PinOut
	if rstPin != "" {
		p := gpioreg.ByName(rstPin)
		if p == nil {
			port.Close()
			return nil, nil, fmt.Errorf("%s: reset pin %q not found", opts.Controller, rstPin)
		}
		rst = p
	}
	d, err := NewTFT(c, dc, rst, opts)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	log.Printf("display: %s %dx%d on %s at %s", opts.Controller, d.opts.Width, d.opts.Height, spiDev, hz)
	return d, port, nil
}

func (d *TFT) init() error {
	if d.rst != nil {
		for _, s := range []struct {
			l gpio.Level
			t time.Duration
		}{{gpio.High, 10 * time.Millisecond}, {gpio.Low, 10 * time.Millisecond}, {gpio.High, 150 * time.Millisecond}} {
			if err := d.rst.Out(s.l); err != nil {
				return fmt.Errorf("reset pin: %w", err)
			}
			d.sleep(s.t)
		}
	}
	script := st7735sInit
	if d.opts.Controller == ST7789 {
		script = st7789Init
	}
	for _, s := range script {
		d.command(s.cmd, s.data...)
		if s.delay > 0 {
			d.sleep(s.delay)
		}
	}
	return d.Flush()
}

// tx sends b with D/C at level. Only the first error is kept.
func (d *TFT) tx(level gpio.Level, b []byte) {
	if d.err != nil || len(b) == 0 {
		return
	}
	if err := d.dc.Out(level); err != nil {
		d.err = fmt.Errorf("D/C pin: %w", err)
		return
	}
	for len(b) > 0 {
		n := min(len(b), maxTx)
		if err := d.conn.Tx(b[:n], nil); err != nil {
			d.err = fmt.Errorf("spi write: %w", err)
			return
		}
		b = b[n:]
	}
}

func (d *TFT) command(cmd byte, data ...byte) {
	d.tx(gpio.Low, []byte{cmd})
	d.tx(gpio.High, data)
}

func (d *TFT) window(x0, y0, x1, y1 int) {
	var b [4]byte
	binary.BigEndian.PutUint16(b[0:], uint16(x0+d.opts.ColOffset))
	binary.BigEndian.PutUint16(b[2:], uint16(x1+d.opts.ColOffset))
	d.command(cmdCASET, b[:]...)
	binary.BigEndian.PutUint16(b[0:], uint16(y0+d.opts.RowOffset))
	binary.BigEndian.PutUint16(b[2:], uint16(y1+d.opts.RowOffset))
	d.command(cmdRASET, b[:]...)
	d.tx(gpio.Low, []byte{cmdRAMWR})
}

// Flush reports and clears the first bus error since the last Flush.
func (d *TFT) Flush() error {
	err := d.err
	d.err = nil
	return err
}

func (d *TFT) Size() (int, int) {
	return d.opts.Width, d.opts.Height
}

func (d *TFT) Clear(c Color) {
	d.FillRect(0, 0, d.opts.Width, d.opts.Height, c)
}

// FillRect opens an address window and streams the color into RAM.
func (d *TFT) FillRect(x, y, w, h int, c Color) {
	x, y, w, h, ok := clip(x, y, w, h, d.opts.Width, d.opts.Height)
	if !ok {
		return
	}
	d.window(x, y, x+w-1, y+h-1)

	px := c.RGB565()
	hi, lo := byte(px>>8), byte(px)
	total := 2 * w * h
	chunk := min(total, len(d.buf))
	for i := 0; i < chunk; i += 2 {
		d.buf[i], d.buf[i+1] = hi, lo
	}
	for total > 0 {
		n := min(total, chunk)
		d.tx(gpio.High, d.buf[:n])
		total -= n
	}
}

func (d *TFT) DrawLine(p1, p2 Point, c Color) {
	drawLine(d.FillRect, p1, p2, c)
}

func (d *TFT) DrawHLine(x, y, length int, c Color) {
	d.FillRect(x, y, length, 1, c)
}

func (d *TFT) DrawVLine(x, y, length int, c Color) {
	d.FillRect(x, y, 1, length, c)
}

func (d *TFT) DrawString(x, y int, text string, c Color, scale int) {
	drawString(d.FillRect, x, y, text, c, scale)
}
