// internal/server/client.go
package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/coordinator"
	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/lobby"
	"github.com/mwhitten/cardshark/internal/protocol"
)

// outboxSize bounds the per-connection write queue. When a socket cannot
// drain fast enough, frames are dropped with a warning instead of stalling
// the lobby actor behind it.
const outboxSize = 256

// flushTimeout bounds the final drain on close so a peer that stopped
// reading cannot hold the reader goroutine hostage.
const flushTimeout = 5 * time.Second

// client is the per-connection actor pair: run() is the reader, writeLoop()
// the writer. The id is server-minted and never changes for the life of the
// connection.
type client struct {
	id      string
	log     *logrus.Entry
	conn    net.Conn
	coord   chan<- coordinator.Message
	profile game.ClientProfile

	outbox     chan []byte
	done       chan struct{}
	writerDone chan struct{}

	// inbox of the joined lobby, nil while unseated. Only the reader
	// goroutine touches it.
	lobby chan<- lobby.Message
}

func newClient(logger *logrus.Logger, conn net.Conn, coord chan<- coordinator.Message) *client {
	id := uuid.NewString()
	return &client{
		id:      id,
		log:     logger.WithFields(logrus.Fields{"client": id, "remote": conn.RemoteAddr().String()}),
		conn:    conn,
		coord:   coord,
		profile: game.DefaultProfile(id),
		outbox:     make(chan []byte, outboxSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// SendFrame queues one encoded frame for the writer. It never blocks; a full
// queue drops the frame so a slow socket cannot back up a lobby actor.
func (c *client) SendFrame(frame []byte) {
	select {
	case c.outbox <- frame:
	default:
		c.log.WithField("bytes", len(frame)).Warn("outbox full, dropping frame")
	}
}

func (c *client) send(msg protocol.ServerMessage) {
	c.SendFrame(protocol.Encode(msg))
}

// run is the reader loop. It owns the connection lifecycle: greeting,
// framing, dispatch, and the leave on the way out.
func (c *client) run(ctx context.Context) {
	defer c.close()
	go c.writeLoop()

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	c.log.Info("client connected")
	c.send(protocol.Connected(c.id))

	for {
		payload, err := protocol.ReadFrame(c.conn)
		switch {
		case err == nil:
		case errors.Is(err, protocol.ErrEmptyFrame):
			c.send(protocol.Error("Empty message"))
			continue
		case errors.Is(err, protocol.ErrOversized):
			c.send(protocol.Error("Message too large"))
			c.log.WithError(err).Warn("closing connection")
			return
		default:
			c.log.WithError(err).Debug("client disconnected")
			return
		}

		action, err := protocol.DecodeAction(payload)
		if err != nil {
			c.log.WithError(err).Debug("undecodable frame")
			c.send(protocol.Error("Malformed message"))
			continue
		}
		c.dispatch(action)
	}
}

// dispatch routes one action: connection-scoped ones are answered here,
// everything else forwards into the joined lobby.
func (c *client) dispatch(action protocol.ClientAction) {
	switch a := action.(type) {
	case *protocol.KeepAlive:
		c.send(protocol.KeepAliveResponse())

	case *protocol.Version:
		c.log.WithField("version", a.Version).Info("client version")
		c.send(protocol.VersionOk())

	case *protocol.SetClientData:
		c.profile.Username = a.Username
		c.profile.Colour = a.Colour
		c.profile.ModHash = a.ModHash
		if c.lobby != nil {
			c.forward(action)
		}

	case *protocol.CreateLobby:
		c.leaveLobby()
		reply := make(chan coordinator.JoinResult, 1)
		c.coord <- coordinator.CreateLobby{
			Profile: c.profile,
			Sender:  c,
			Mode:    a.GameMode,
			Ruleset: a.Ruleset,
			Reply:   reply,
		}
		c.seat(<-reply)

	case *protocol.JoinLobby:
		c.leaveLobby()
		reply := make(chan coordinator.JoinResult, 1)
		c.coord <- coordinator.JoinLobby{
			Profile: c.profile,
			Sender:  c,
			Code:    a.Code,
			Reply:   reply,
		}
		c.seat(<-reply)

	case *protocol.LeaveLobby:
		c.leaveLobby()

	default:
		if c.lobby == nil {
			c.send(protocol.Error("Not in a lobby"))
			return
		}
		c.forward(action)
	}
}

// seat completes a create or join by asking the lobby itself for a place.
// The error frames for full, started, or missing lobbies have already been
// sent by the directory or the lobby by the time this returns. The directory
// lookup raced the lobby's own lifetime, so every wait here also watches the
// actor's done signal: a lobby that emptied out moments ago must not strand
// this reader.
func (c *client) seat(res coordinator.JoinResult) {
	if !res.Found {
		return
	}
	reply := make(chan lobby.JoinReply, 1)
	select {
	case res.Inbox <- lobby.Join{Profile: c.profile, Sender: c, Reply: reply}:
	case <-res.Done:
		c.send(protocol.Error("Lobby not found"))
		return
	}
	select {
	case r := <-reply:
		if r.Joined {
			c.lobby = res.Inbox
			c.log.WithField("lobby", res.Code).Info("seated in lobby")
		}
	case <-res.Done:
		c.send(protocol.Error("Lobby not found"))
	}
}

func (c *client) forward(action protocol.ClientAction) {
	c.lobby <- lobby.Act{PlayerID: c.id, Action: action}
}

func (c *client) leaveLobby() {
	if c.lobby == nil {
		return
	}
	c.lobby <- lobby.Leave{PlayerID: c.id}
	c.lobby = nil
}

// close tears the connection down. The socket closes only after the writer
// has flushed, so a final error frame still reaches the peer. The outbox is
// never closed: a lobby actor may still hold this client as a Sender for a
// few more messages, and those sends must land in a live channel and age
// out, not panic.
func (c *client) close() {
	c.leaveLobby()
	close(c.done)
	c.conn.SetWriteDeadline(time.Now().Add(flushTimeout))
	<-c.writerDone
	c.conn.Close()
	c.log.Info("client closed")
}

// writeLoop drains the outbox onto the socket until the reader signals done,
// then flushes whatever is still queued.
func (c *client) writeLoop() {
	defer close(c.writerDone)
	for {
		select {
		case <-c.done:
			c.flush()
			return
		case frame := <-c.outbox:
			if err := protocol.WriteFrame(c.conn, frame); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}
		}
	}
}

// flush writes the frames already queued at shutdown, like the oversize
// error the reader sends right before it returns.
func (c *client) flush() {
	for {
		select {
		case frame := <-c.outbox:
			if err := protocol.WriteFrame(c.conn, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
