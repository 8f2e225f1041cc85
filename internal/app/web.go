// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/nfnt/resize"

	"github.com/relabs-tech/artificial_horizon/internal/display"
)

const maxSnapshotScale = 8

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local network tool
	},
}

// WebServer exposes the latest attitude as JSON, a live websocket stream
// and, when the surface keeps pixels, a PNG of the screen.
type WebServer struct {
	feed   *Broadcaster
	screen display.Snapshotter // nil when the display cannot be read back
	router *mux.Router
}

func NewWebServer(feed *Broadcaster, screen display.Snapshotter) *WebServer {
	s := &WebServer{feed: feed, screen: screen, router: mux.NewRouter()}
	s.router.HandleFunc("/api/attitude", s.handleAttitude).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleStream)
	s.router.HandleFunc("/display.png", s.handleDisplay).Methods(http.MethodGet)
	return s
}

func (s *WebServer) Handler() http.Handler { return s.router }

// Serve listens on addr until ctx is cancelled.
func (s *WebServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Printf("web: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WebServer) handleAttitude(w http.ResponseWriter, r *http.Request) {
	a, ok := s.feed.Last()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (s *WebServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id, updates := s.feed.Subscribe(8)
	defer s.feed.Unsubscribe(id)

	// The client never sends anything useful; reading detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case a, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteJSON(a); err != nil {
				return
			}
		}
	}
}

func (s *WebServer) handleDisplay(w http.ResponseWriter, r *http.Request) {
	if s.screen == nil {
		http.Error(w, "display cannot be read back", http.StatusNotFound)
		return
	}
	scale := 1
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSnapshotScale {
			http.Error(w, "scale must be 1-8", http.StatusBadRequest)
			return
		}
		scale = n
	}

	var img image.Image = s.screen.Snapshot()
	if scale > 1 {
		b := img.Bounds()
		img = resize.Resize(uint(b.Dx()*scale), uint(b.Dy()*scale), img, resize.NearestNeighbor)
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("web: png encode error: %v", err)
	}
}
