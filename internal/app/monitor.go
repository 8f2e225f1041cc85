// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/artificial_horizon/internal/config"
	"github.com/relabs-tech/artificial_horizon/internal/mailbox"
	"github.com/relabs-tech/artificial_horizon/internal/telemetry"
)

// Monitor prints every frame seen on a link plus periodic decoder stats.
type Monitor struct {
	Out   io.Writer
	Every time.Duration // stats period, 0 disables

	rx  *telemetry.Receiver
	box *mailbox.Mailbox[telemetry.Packet]
}

func NewMonitor(r io.Reader, out io.Writer) *Monitor {
	box := mailbox.New[telemetry.Packet]()
	return &Monitor{Out: out, Every: 5 * time.Second, rx: telemetry.NewReceiver(r, box), box: box}
}

// Run returns when the link ends or ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- m.rx.Run(ctx) }()

	var stats <-chan time.Time
	if m.Every > 0 {
		t := time.NewTicker(m.Every)
		defer t.Stop()
		stats = t.C
	}

	for {
		select {
		case <-ctx.Done():
			m.printStats()
			return nil
		case err := <-done:
			m.drain()
			m.printStats()
			return err
		case <-m.box.Ready():
			m.drain()
		case <-stats:
			m.printStats()
		}
	}
}

func (m *Monitor) drain() {
	p, ok := m.box.Take()
	if !ok {
		return
	}
	roll, pitch := p.State().Degrees()
	fmt.Fprintf(m.Out, "[FRAME] ROLL=%7.2f  PITCH=%7.2f  MODE=%s\n", roll, pitch, p.Mode)
}

func (m *Monitor) printStats() {
	st := m.rx.Stats()
	fmt.Fprintf(m.Out, "[STATS] frames=%d skipped=%d bad_etx=%d bad_mode=%d overruns=%d dropped=%d\n",
		st.Frames, st.Skipped, st.BadTerminators, st.BadModes, st.Overruns, m.box.Overwritten())
}

// RunMonitor opens the configured link read-only and prints what arrives.
func RunMonitor(ctx context.Context, cfg *config.Config) error {
	var client mqtt.Client
	if cfg.Link == config.LinkMQTT {
		var err error
		client, err = ConnectMQTT(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
	}

	// The monitor always listens, whatever role the file names.
	listen := *cfg
	listen.Role = config.RoleSink
	link, err := OpenLink(&listen, client)
	if err != nil {
		return err
	}
	if link == nil {
		return fmt.Errorf("monitor: LINK=none, nothing to monitor")
	}
	defer link.Close()

	go func() {
		<-ctx.Done()
		link.Close()
	}()
	log.Printf("monitor: listening on %s link", cfg.Link)
	return NewMonitor(link, os.Stdout).Run(ctx)
}
