// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/artificial_horizon/internal/clock"
	"github.com/relabs-tech/artificial_horizon/internal/config"
	"github.com/relabs-tech/artificial_horizon/internal/display"
	"github.com/relabs-tech/artificial_horizon/internal/mailbox"
	"github.com/relabs-tech/artificial_horizon/internal/telemetry"
)

// Run opens everything cfg names and runs the horizon until ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	log.Printf("starting artificial horizon (role=%s link=%s display=%s)", cfg.Role, cfg.Link, cfg.DisplayDriver)

	var cl closers
	defer cl.closeAll()

	surface, err := OpenSurface(cfg, &cl)
	if err != nil {
		return err
	}

	var client mqtt.Client
	if cfg.Link == config.LinkMQTT || cfg.PublishAttitude {
		client, err = ConnectMQTT(cfg)
		if err != nil {
			return err
		}
		cl.add(func() error { client.Disconnect(250); return nil })
	}

	link, err := OpenLink(cfg, client)
	if err != nil {
		return err
	}
	cl.add(link.Close)

	loop := &Loop{
		Role:     cfg.Role,
		Surface:  surface,
		Debounce: cfg.Debounce(),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	errs := make(chan error, 2)

	switch cfg.Role {
	case config.RoleSink:
		loop.Inbox = mailbox.New[telemetry.Packet]()
		loop.Complement = cfg.SinkView == config.SinkViewComplement
		rx := telemetry.NewReceiver(link, loop.Inbox)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rx.Run(ctx); err != nil {
				errs <- err
			}
			st := rx.Stats()
			log.Printf("link: receiver stopped (frames=%d skipped=%d bad_mode=%d bad_etx=%d)", st.Frames, st.Skipped, st.BadModes, st.BadTerminators)
			cancel()
		}()

	default:
		port, err := OpenPort(cfg)
		if err != nil {
			return err
		}
		loop.Port = port
		loop.Clock = clock.NewTicker(cfg.Tick())
		loop.Dt = cfg.Dt()

		b, err := OpenButton(cfg, &cl)
		if err != nil {
			return err
		}
		if b != nil {
			loop.Button = b
		}
		if cfg.Role == config.RoleSource {
			loop.Sender = telemetry.NewSender(link)
		}
	}

	if client != nil && cfg.PublishAttitude {
		loop.Observers = append(loop.Observers, NewPublisher(client, cfg.TopicAttitude, cfg.TopicNMEA))
	}
	if cfg.WebServerPort > 0 {
		feed := NewBroadcaster()
		loop.Observers = append(loop.Observers, feed)
		snap, _ := surface.(display.Snapshotter)
		web := NewWebServer(feed, snap)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := web.Serve(ctx, fmt.Sprintf(":%d", cfg.WebServerPort)); err != nil {
				errs <- fmt.Errorf("web server: %w", err)
				cancel()
			}
		}()
	}

	err = loop.Run(ctx)
	cancel()
	// A blocked link Read only returns once the link is closed.
	link.Close()
	wg.Wait()
	close(errs)
	if err != nil {
		return err
	}
	return <-errs
}
