// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/artificial_horizon/internal/telemetry"
)

// Publisher mirrors every update to MQTT as JSON and as an NMEA XDR
// sentence, for tools that do not speak the binary frame.
type Publisher struct {
	client        mqtt.Client
	attitudeTopic string
	nmeaTopic     string
}

// NewPublisher publishes to attitudeTopic and nmeaTopic; an empty topic is
// skipped.
func NewPublisher(client mqtt.Client, attitudeTopic, nmeaTopic string) *Publisher {
	return &Publisher{client: client, attitudeTopic: attitudeTopic, nmeaTopic: nmeaTopic}
}

func (p *Publisher) Observe(a Attitude) {
	if p.attitudeTopic != "" {
		payload, err := json.Marshal(a)
		if err != nil {
			log.Printf("mqtt: attitude marshal error: %v", err)
		} else if token := p.client.Publish(p.attitudeTopic, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("mqtt: publish error (%s): %v", p.attitudeTopic, token.Error())
		}
	}
	if p.nmeaTopic != "" {
		line := telemetry.FormatXDR(a.State)
		if token := p.client.Publish(p.nmeaTopic, 0, false, line); token.Wait() && token.Error() != nil {
			log.Printf("mqtt: publish error (%s): %v", p.nmeaTopic, token.Error())
		}
	}
}
