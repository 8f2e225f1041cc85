// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/artificial_horizon/internal/orientation"
	"github.com/relabs-tech/artificial_horizon/internal/telemetry"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic   string
	payload interface{}
}

// recordingClient keeps every publish.
type recordingClient struct {
	mqtt.Client

	mu   sync.Mutex
	msgs []published
	err  error
}

func (c *recordingClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic, payload})
	return doneToken{c.err}
}

func TestPublisherSendsJSONAndXDR(t *testing.T) {
	c := &recordingClient{}
	p := NewPublisher(c, "horizon/attitude", "horizon/nmea")

	st := orientation.State{Roll: math.Pi / 4, Pitch: -math.Pi / 18}
	roll, pitch := st.Degrees()
	p.Observe(Attitude{Roll: roll, Pitch: pitch, Mode: "roll", Seq: 3, State: st})

	require.Len(t, c.msgs, 2)
	assert.Equal(t, "horizon/attitude", c.msgs[0].topic)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(c.msgs[0].payload.([]byte), &got))
	assert.InDelta(t, 45, got["roll"], 1e-9)
	assert.InDelta(t, -10, got["pitch"], 1e-9)
	assert.Equal(t, "roll", got["mode"])
	assert.NotContains(t, got, "State")

	assert.Equal(t, "horizon/nmea", c.msgs[1].topic)
	back, err := telemetry.ParseXDR(c.msgs[1].payload.(string))
	require.NoError(t, err)
	assert.InDelta(t, st.Roll, back.Roll, 0.001)
	assert.InDelta(t, st.Pitch, back.Pitch, 0.001)
}

func TestPublisherSkipsEmptyTopicsAndSurvivesErrors(t *testing.T) {
	c := &recordingClient{err: errors.New("not connected")}
	p := NewPublisher(c, "", "horizon/nmea")
	p.Observe(Attitude{})
	p.Observe(Attitude{})
	require.Len(t, c.msgs, 2)
	assert.Equal(t, "horizon/nmea", c.msgs[0].topic)
}
