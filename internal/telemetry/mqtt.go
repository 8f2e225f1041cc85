// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"io"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttWriter publishes every Write as one message, so a frame written in a
// single call travels as a single payload.
type mqttWriter struct {
	client mqtt.Client
	topic  string
}

// NewMQTTWriter returns a byte sink that publishes to topic with QoS 0.
func NewMQTTWriter(client mqtt.Client, topic string) io.Writer {
	return &mqttWriter{client: client, topic: topic}
}

func (w *mqttWriter) Write(p []byte) (int, error) {
	payload := make([]byte, len(p))
	copy(payload, p)
	token := w.client.Publish(w.topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		return 0, fmt.Errorf("mqtt publish %s: %w", w.topic, token.Error())
	}
	return len(p), nil
}

// mqttReader turns message payloads on a topic back into a byte stream.
// Payloads are queued in arrival order; when the queue is full the newest
// payload is dropped, like an overrun UART.
type mqttReader struct {
	client mqtt.Client
	topic  string

	chunks  chan []byte
	pending []byte

	closeOnce sync.Once
	closed    chan struct{}
}

const mqttReaderQueue = 64

// NewMQTTReader subscribes to topic and returns its payload stream.
func NewMQTTReader(client mqtt.Client, topic string) (io.ReadCloser, error) {
	r := &mqttReader{
		client: client,
		topic:  topic,
		chunks: make(chan []byte, mqttReaderQueue),
		closed: make(chan struct{}),
	}

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		b := append([]byte(nil), msg.Payload()...)
		select {
		case r.chunks <- b:
		default:
			log.Printf("telemetry: mqtt reader queue full, dropping %d bytes", len(b))
		}
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, token.Error())
	}
	log.Printf("telemetry: subscribed to %s", topic)
	return r, nil
}

func (r *mqttReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		select {
		case b := <-r.chunks:
			r.pending = b
		case <-r.closed:
			return 0, io.EOF
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *mqttReader) Close() error {
	r.closeOnce.Do(func() {
		close(r.closed)
		if token := r.client.Unsubscribe(r.topic); token.Wait() && token.Error() != nil {
			log.Printf("telemetry: unsubscribe %s: %v", r.topic, token.Error())
		}
	})
	return nil
}
