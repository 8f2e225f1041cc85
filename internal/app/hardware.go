// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/artificial_horizon/internal/button"
	"github.com/relabs-tech/artificial_horizon/internal/config"
	"github.com/relabs-tech/artificial_horizon/internal/display"
	"github.com/relabs-tech/artificial_horizon/internal/imu"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
	"github.com/relabs-tech/artificial_horizon/internal/sensors"
)

// closers releases opened hardware in reverse order.
type closers []func() error

func (c *closers) add(f func() error) { *c = append(*c, f) }

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.Printf("app: close: %v", err)
		}
	}
}

// OpenSurface builds the configured display.
func OpenSurface(cfg *config.Config, cl *closers) (display.Surface, error) {
	switch cfg.DisplayDriver {
	case config.DisplayST7735S, config.DisplayST7789:
		ctrl := display.ST7735S
		if cfg.DisplayDriver == config.DisplayST7789 {
			ctrl = display.ST7789
		}
		tft, port, err := display.OpenTFT(cfg.DisplaySPIDevice, physic.Frequency(cfg.DisplaySPIHz)*physic.Hertz,
			cfg.DisplayDCPin, cfg.DisplayResetPin, display.TFTOpts{
				Controller: ctrl,
				Width:      cfg.DisplayWidth,
				Height:     cfg.DisplayHeight,
				ColOffset:  cfg.DisplayColOffset,
				RowOffset:  cfg.DisplayRowOffset,
			})
		if err != nil {
			return nil, err
		}
		cl.add(port.Close)
		log.Printf("display: %s %dx%d on %s", ctrl, cfg.DisplayWidth, cfg.DisplayHeight, cfg.DisplaySPIDevice)
		return tft, nil

	case config.DisplaySSD1306:
		oled, bus, err := display.OpenSSD1306(cfg.DisplayI2CBus, cfg.DisplayWidth, cfg.DisplayHeight)
		if err != nil {
			return nil, err
		}
		cl.add(bus.Close)
		log.Printf("display: ssd1306 %dx%d", cfg.DisplayWidth, cfg.DisplayHeight)
		return oled, nil

	case config.DisplayFramebuffer:
		return display.NewFramebuffer(cfg.DisplayWidth, cfg.DisplayHeight), nil

	case config.DisplayTrace:
		return display.NewTrace(cfg.DisplayWidth, cfg.DisplayHeight), nil
	}
	return nil, fmt.Errorf("display: unknown driver %q", cfg.DisplayDriver)
}

// OpenPort builds the configured motion sensor.
func OpenPort(cfg *config.Config) (imu.Port, error) {
	switch cfg.SensorDriver {
	case config.SensorMPU9250:
		p, err := sensors.OpenMPU9250(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange, cfg.IMUGyroRange)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.SensorMock:
		log.Println("sensor: using mock motion source")
		return orientation.NewMockPort(), nil
	}
	return nil, fmt.Errorf("sensor: unknown driver %q", cfg.SensorDriver)
}

// OpenButton returns nil when no button pin is configured.
func OpenButton(cfg *config.Config, cl *closers) (*button.Button, error) {
	if cfg.ButtonPin == "" {
		return nil, nil
	}
	b, err := button.Open(cfg.ButtonPin)
	if err != nil {
		return nil, err
	}
	cl.add(b.Close)
	return b, nil
}
