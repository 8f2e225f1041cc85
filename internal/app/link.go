// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/artificial_horizon/internal/config"
	"github.com/relabs-tech/artificial_horizon/internal/telemetry"
)

// Link is the byte stream between a source and a sink.
type Link struct {
	io.Reader
	io.Writer
	close func() error

	once sync.Once
	err  error
}

// Close may be called more than once; it also unblocks a pending Read.
func (l *Link) Close() error {
	if l == nil || l.close == nil {
		return nil
	}
	l.once.Do(func() { l.err = l.close() })
	return l.err
}

// ConnectMQTT connects to the configured broker.
func ConnectMQTT(cfg *config.Config) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	log.Printf("mqtt: connected to %s as %s", cfg.MQTTBroker, cfg.MQTTClientID)
	return client, nil
}

// OpenLink opens the configured telemetry link. client is only used for
// LINK=mqtt and may be nil otherwise. A nil link means LINK=none.
func OpenLink(cfg *config.Config, client mqtt.Client) (*Link, error) {
	switch cfg.Link {
	case config.LinkNone:
		return nil, nil

	case config.LinkSerial:
		port, err := telemetry.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return nil, err
		}
		log.Printf("link: serial %s at %d baud", cfg.SerialPort, cfg.SerialBaudRate)
		return &Link{Reader: port, Writer: port, close: port.Close}, nil

	case config.LinkMQTT:
		if client == nil {
			return nil, fmt.Errorf("link: mqtt link needs a connected client")
		}
		l := &Link{Writer: telemetry.NewMQTTWriter(client, cfg.TopicFrames)}
		if cfg.Role == config.RoleSink {
			r, err := telemetry.NewMQTTReader(client, cfg.TopicFrames)
			if err != nil {
				return nil, err
			}
			l.Reader = r
			l.close = r.Close
		}
		log.Printf("link: mqtt topic %s", cfg.TopicFrames)
		return l, nil
	}
	return nil, fmt.Errorf("link: unknown link %q", cfg.Link)
}
