// internal/coordinator/coordinator.go

// Package coordinator implements the lobby directory actor. It is the only
// owner of the code-to-lobby map: lobbies are created, found, and forgotten
// here, and nowhere else.
package coordinator

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/lobby"
	"github.com/mwhitten/cardshark/internal/protocol"
	"github.com/mwhitten/cardshark/internal/shortid"
)

const inboxSize = 256

// statsTimeout caps how long the stats collector waits on any one lobby. A
// lobby that emptied between snapshot and query must not hang diagnostics.
const statsTimeout = time.Second

// Message is the closed union of coordinator inputs.
type Message interface {
	isCoordinatorMessage()
}

// CreateLobby mints a fresh lobby and hands its inbox back to the client.
type CreateLobby struct {
	Profile game.ClientProfile
	Sender  lobby.Sender
	Mode    game.Mode
	Ruleset string
	Reply   chan<- JoinResult
}

// JoinLobby looks up an existing lobby by code.
type JoinLobby struct {
	Profile game.ClientProfile
	Sender  lobby.Sender
	Code    string
	Reply   chan<- JoinResult
}

// Stats asks for a directory-wide snapshot for the diagnostics surface.
type Stats struct {
	Reply chan<- Snapshot
}

// lobbyClosed retires an emptied lobby's code. Sent by the lobby's OnEmpty
// hook, never from outside the package.
type lobbyClosed struct {
	code string
}

func (CreateLobby) isCoordinatorMessage() {}
func (JoinLobby) isCoordinatorMessage()   {}
func (Stats) isCoordinatorMessage()       {}
func (lobbyClosed) isCoordinatorMessage() {}

// JoinResult points the client at a lobby inbox. Found is false when the
// code is unknown or the mode invalid; the error frame has already been
// sent, so the caller only has to give up. Done lets the caller detect a
// lobby that emptied and exited while the result was in flight.
type JoinResult struct {
	Found bool
	Code  string
	Inbox chan<- lobby.Message
	Done  <-chan struct{}
}

// lobbyRef is the directory's handle on one running lobby actor.
type lobbyRef struct {
	inbox chan<- lobby.Message
	done  <-chan struct{}
}

// Snapshot is the directory view served by the diagnostics endpoint.
type Snapshot struct {
	Lobbies []lobby.StatsSnapshot `json:"lobbies"`
	Count   int                   `json:"count"`
	Players int                   `json:"players"`
}

// Coordinator owns the lobby directory.
type Coordinator struct {
	log     *logrus.Entry
	logger  *logrus.Logger
	lobbies map[string]lobbyRef
	inbox   chan Message
}

// New builds an empty directory.
func New(logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		log:     logger.WithField("component", "coordinator"),
		logger:  logger,
		lobbies: map[string]lobbyRef{},
		inbox:   make(chan Message, inboxSize),
	}
}

// Inbox exposes the directory mailbox to connection actors.
func (c *Coordinator) Inbox() chan<- Message { return c.inbox }

// Run drives the directory until the server shuts down. Lobby actors are
// spawned from here and inherit ctx, so one cancel tears the tree down.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Info("coordinator started")
	defer c.log.Info("coordinator stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.inbox:
			switch m := msg.(type) {
			case CreateLobby:
				c.handleCreate(ctx, m)
			case JoinLobby:
				c.handleJoin(m)
			case lobbyClosed:
				delete(c.lobbies, m.code)
				c.log.WithField("lobby", m.code).Info("lobby closed")
			case Stats:
				c.collectStats(m.Reply)
			}
		}
	}
}

func (c *Coordinator) handleCreate(ctx context.Context, m CreateLobby) {
	if !m.Mode.Valid() {
		m.Sender.SendFrame(protocol.Encode(protocol.Error("Unknown game mode")))
		m.Reply <- JoinResult{}
		return
	}

	code := c.mintCode()
	l := lobby.New(c.logger, code, m.Mode, m.Ruleset, c.retire)
	c.lobbies[code] = lobbyRef{inbox: l.Inbox(), done: l.Done()}
	go l.Run(ctx)

	c.log.WithFields(logrus.Fields{
		"lobby":     code,
		"mode":      m.Mode.String(),
		"player_id": m.Profile.ID,
	}).Info("lobby created")

	m.Reply <- JoinResult{Found: true, Code: code, Inbox: l.Inbox(), Done: l.Done()}
}

func (c *Coordinator) handleJoin(m JoinLobby) {
	code := strings.ToUpper(m.Code)
	ref, ok := c.lobbies[code]
	if !ok {
		m.Sender.SendFrame(protocol.Encode(protocol.Error("Lobby not found")))
		m.Reply <- JoinResult{}
		return
	}
	m.Reply <- JoinResult{Found: true, Code: code, Inbox: ref.inbox, Done: ref.done}
}

// mintCode draws codes until one is free. Collisions are rare at five
// characters, so the loop almost always runs once.
func (c *Coordinator) mintCode() string {
	for {
		code := shortid.LobbyCode()
		if _, taken := c.lobbies[code]; !taken {
			return code
		}
	}
}

// retire runs on the emptying lobby's goroutine; it only posts a message,
// so the lobby actor can exit without waiting on the directory.
func (c *Coordinator) retire(code string) {
	select {
	case c.inbox <- lobbyClosed{code: code}:
	default:
		go func() { c.inbox <- lobbyClosed{code: code} }()
	}
}

// collectStats queries every lobby off the coordinator goroutine so a busy
// or dying lobby cannot stall the directory.
func (c *Coordinator) collectStats(reply chan<- Snapshot) {
	refs := make([]lobbyRef, 0, len(c.lobbies))
	for _, ref := range c.lobbies {
		refs = append(refs, ref)
	}

	go func() {
		snap := Snapshot{Lobbies: []lobby.StatsSnapshot{}, Count: len(refs)}
		for _, ref := range refs {
			statsReply := make(chan lobby.StatsSnapshot, 1)
			select {
			case ref.inbox <- lobby.Stats{Reply: statsReply}:
			case <-ref.done:
				continue
			case <-time.After(statsTimeout):
				continue
			}
			select {
			case s := <-statsReply:
				snap.Lobbies = append(snap.Lobbies, s)
				snap.Players += s.Players
			case <-ref.done:
			case <-time.After(statsTimeout):
			}
		}
		reply <- snap
	}()
}
