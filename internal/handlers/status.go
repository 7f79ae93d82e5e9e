// internal/handlers/status.go

// Package handlers exposes the HTTP diagnostics surface. The game protocol
// itself lives on the raw TCP listener; this package only reports on it.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/coordinator"
)

// statusInterval is the push cadence on the websocket feed.
const statusInterval = 5 * time.Second

// snapshotTimeout bounds one directory query so a wedged coordinator shows
// up as a 504 instead of a hung request.
const snapshotTimeout = 3 * time.Second

// StatusServer serves lobby directory snapshots over plain JSON and a
// websocket push feed.
type StatusServer struct {
	log   *logrus.Entry
	coord chan<- coordinator.Message
}

// NewStatusServer wires the diagnostics surface to the coordinator inbox.
func NewStatusServer(logger *logrus.Logger, coord chan<- coordinator.Message) *StatusServer {
	return &StatusServer{
		log:   logger.WithField("component", "status"),
		coord: coord,
	}
}

// Routes builds the diagnostics mux with request logging on every endpoint.
func (s *StatusServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/status", s.logRequests(http.HandlerFunc(s.statusHandler)))
	mux.Handle("/status/ws", s.logRequests(http.HandlerFunc(s.statusWSHandler)))
	return mux
}

// logRequests records method, path, and duration for each request.
func (s *StatusServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		}).Info("diagnostics request")
	})
}

// snapshot asks the coordinator for its current view of the directory.
func (s *StatusServer) snapshot(ctx context.Context) (coordinator.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	reply := make(chan coordinator.Snapshot, 1)
	select {
	case s.coord <- coordinator.Stats{Reply: reply}:
	case <-ctx.Done():
		return coordinator.Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return coordinator.Snapshot{}, ctx.Err()
	}
}

// statusHandler returns one JSON snapshot of every live lobby.
func (s *StatusServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		http.Error(w, "coordinator unavailable", http.StatusGatewayTimeout)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.WithError(err).Warn("encoding status response")
	}
}

// statusWSHandler upgrades to a websocket and pushes a snapshot every few
// seconds until the peer goes away.
func (s *StatusServer) statusWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"status"},
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	feedLog := s.log.WithField("remote", r.RemoteAddr)
	feedLog.Info("status feed connected")

	if conn.Subprotocol() != "status" {
		conn.Close(websocket.StatusPolicyViolation, "client must speak the status subprotocol")
		return
	}

	ctx := r.Context()
	defer func() {
		conn.Close(websocket.StatusNormalClosure, "")
		feedLog.Info("status feed disconnected")
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return
		}
		if err := wsjson.Write(ctx, conn, snap); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
