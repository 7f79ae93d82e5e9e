// internal/server/server.go

// Package server owns the TCP listener and the per-connection actors. Each
// accepted socket gets a reader goroutine and a writer goroutine; everything
// else happens in the coordinator and lobby actors they talk to.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/coordinator"
)

// Keep-alive probes detect half-open connections from crashed game clients;
// the protocol itself has no heartbeat obligation on the server side.
const (
	keepAliveIdle     = 10 * time.Second
	keepAliveInterval = time.Second
)

// Server accepts game connections and hands each one to a client actor.
type Server struct {
	log   *logrus.Entry
	base  *logrus.Logger
	coord chan<- coordinator.Message
}

// New wires a server to the coordinator's inbox.
func New(logger *logrus.Logger, coord chan<- coordinator.Message) *Server {
	return &Server{
		log:   logger.WithField("component", "server"),
		base:  logger,
		coord: coord,
	}
}

// Listen binds the game port. A failure to bind is returned to the caller;
// the process cannot do anything useful without it.
func (s *Server) Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		KeepAliveConfig: net.KeepAliveConfig{
			Enable:   true,
			Idle:     keepAliveIdle,
			Interval: keepAliveInterval,
		},
	}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve accepts connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.WithField("addr", ln.Addr().String()).Info("accepting game connections")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		c := newClient(s.base, conn, s.coord)
		go c.run(ctx)
	}
}
