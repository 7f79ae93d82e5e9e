// internal/lobby/lobby.go

// Package lobby implements the lobby actor: one goroutine per lobby owning
// every piece of lobby state. All mutation happens inside the actor loop;
// the rest of the server talks to it only through its inbox channel.
package lobby

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/protocol"
	"github.com/mwhitten/cardshark/internal/score"
)

// inboxSize bounds the actor's mailbox. Senders block when it fills, which
// backpressures a flooding client instead of growing memory.
const inboxSize = 256

// Sender delivers one encoded frame to a connection's writer. Implementations
// must never block the caller; the lobby actor cannot stall on a slow socket.
type Sender interface {
	SendFrame(frame []byte)
}

// Message is the closed union of inputs the actor accepts.
type Message interface {
	isLobbyMessage()
}

// Join seats a new player. The actor answers on Reply after it has sent
// either joinedLobby or an error frame to the sender.
type Join struct {
	Profile game.ClientProfile
	Sender  Sender
	Reply   chan<- JoinReply
}

// JoinReply reports whether the seat was taken.
type JoinReply struct {
	Joined bool
}

// Leave removes a player, either explicitly or on disconnect.
type Leave struct {
	PlayerID string
}

// Act carries one decoded client action into the lobby.
type Act struct {
	PlayerID string
	Action   protocol.ClientAction
}

// Stats asks for a point-in-time snapshot for the diagnostics surface.
type Stats struct {
	Reply chan<- StatsSnapshot
}

// StatsSnapshot is what the diagnostics endpoint sees of one lobby.
type StatsSnapshot struct {
	Code     string    `json:"code"`
	GameMode game.Mode `json:"game_mode"`
	Players  int       `json:"players"`
	Started  bool      `json:"started"`
	Stage    int32     `json:"stage"`
}

func (Join) isLobbyMessage()  {}
func (Leave) isLobbyMessage() {}
func (Act) isLobbyMessage()   {}
func (Stats) isLobbyMessage() {}

// seat pairs a player's state record with the way to reach their connection.
type seat struct {
	entry *game.ClientLobbyEntry
	out   Sender
}

// Lobby is the actor's private state. Nothing outside the package touches it.
type Lobby struct {
	log *logrus.Entry

	code       string
	options    game.LobbyOptions
	maxPlayers int

	started   bool
	stage     int32
	bossChips score.Number

	players map[string]*seat
	hostID  string

	inbox   chan Message
	done    chan struct{}
	onEmpty func(code string)
}

// New builds a lobby for the given mode. The ruleset, when non-empty,
// overrides the mode default. onEmpty runs on the actor goroutine after the
// last player leaves, right before the loop exits.
func New(logger *logrus.Logger, code string, mode game.Mode, ruleset string, onEmpty func(code string)) *Lobby {
	options := mode.DefaultOptions()
	if ruleset != "" {
		options.Ruleset = ruleset
	}
	return &Lobby{
		log:        logger.WithFields(logrus.Fields{"lobby": code, "mode": mode.String()}),
		code:       code,
		options:    options,
		maxPlayers: mode.MaxPlayers(),
		bossChips:  score.Regular(0),
		players:    map[string]*seat{},
		inbox:      make(chan Message, inboxSize),
		done:       make(chan struct{}),
		onEmpty:    onEmpty,
	}
}

// Inbox exposes the actor mailbox for the coordinator and seated clients.
func (l *Lobby) Inbox() chan<- Message { return l.inbox }

// Done is closed when the actor loop exits. Anyone holding the inbox of a
// possibly-emptied lobby must select against it instead of waiting blind.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Code returns the lobby's join code.
func (l *Lobby) Code() string { return l.code }

// handleJoin seats the player or explains why not. The reply fires after the
// outcome frame is queued so the caller can order its own sends behind it.
func (l *Lobby) handleJoin(m Join) {
	if len(l.players) >= l.maxPlayers {
		m.Sender.SendFrame(protocol.Encode(protocol.Error("Lobby is full")))
		m.Reply <- JoinReply{}
		return
	}
	if l.started {
		m.Sender.SendFrame(protocol.Encode(protocol.Error("Lobby is already started")))
		m.Reply <- JoinReply{}
		return
	}

	isHost := len(l.players) == 0
	entry := game.NewLobbyEntry(m.Profile, l.code, isHost, l.options.StartingLives)
	l.players[m.Profile.ID] = &seat{entry: entry, out: m.Sender}
	if isHost {
		l.hostID = m.Profile.ID
	}

	m.Sender.SendFrame(protocol.Encode(protocol.JoinedLobby(m.Profile.ID, l.snapshot())))
	l.broadcastExcept(m.Profile.ID, protocol.PlayerJoinedLobby(*entry))
	l.broadcast(protocol.LobbyReady(l.readyStates()))
	m.Reply <- JoinReply{Joined: true}

	l.log.WithFields(logrus.Fields{
		"player_id": m.Profile.ID,
		"username":  m.Profile.Username,
		"players":   len(l.players),
	}).Info("player joined lobby")
}

// handleLeave removes the player and reports whether the lobby is now empty
// and the actor should stop.
func (l *Lobby) handleLeave(playerID string) bool {
	s, ok := l.players[playerID]
	if !ok {
		return false
	}
	wasHost := s.entry.LobbyState.IsHost
	delete(l.players, playerID)

	l.log.WithFields(logrus.Fields{
		"player_id": playerID,
		"players":   len(l.players),
	}).Info("player left lobby")

	if len(l.players) == 0 {
		if l.onEmpty != nil {
			l.onEmpty(l.code)
		}
		return true
	}

	if wasHost {
		l.promoteHost()
	}
	l.broadcast(protocol.PlayerLeftLobby(playerID, l.hostID))

	if l.started && len(l.inGameSeats()) < 2 {
		l.stopGame()
	}
	return false
}

// promoteHost hands the lobby to the lexicographically smallest player id so
// reconnect races still settle on one successor.
func (l *Lobby) promoteHost() {
	next := ""
	for id := range l.players {
		if next == "" || id < next {
			next = id
		}
	}
	l.hostID = next
	s := l.players[next]
	s.entry.LobbyState.IsHost = true
	s.entry.LobbyState.IsReady = true
}

// snapshot freezes the lobby record for a joiner.
func (l *Lobby) snapshot() protocol.LobbySnapshot {
	players := make(map[string]*game.ClientLobbyEntry, len(l.players))
	for id, s := range l.players {
		entry := *s.entry
		players[id] = &entry
	}
	return protocol.LobbySnapshot{
		Code:         l.code,
		Started:      l.started,
		Stage:        l.stage,
		BossChips:    l.bossChips,
		LobbyOptions: l.options,
		Players:      players,
		MaxPlayers:   l.maxPlayers,
	}
}

func (l *Lobby) readyStates() map[string]bool {
	states := make(map[string]bool, len(l.players))
	for id, s := range l.players {
		states[id] = s.entry.LobbyState.IsReady
	}
	return states
}

func (l *Lobby) inGameStatuses() map[string]bool {
	statuses := make(map[string]bool, len(l.players))
	for id, s := range l.players {
		statuses[id] = s.entry.LobbyState.InGame
	}
	return statuses
}

// inGameSeats returns the seats still in the running game, ordered by player
// id so every pass over them is deterministic.
func (l *Lobby) inGameSeats() []*seat {
	seats := make([]*seat, 0, len(l.players))
	for _, s := range l.players {
		if s.entry.LobbyState.InGame {
			seats = append(seats, s)
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		return seats[i].entry.Profile.ID < seats[j].entry.Profile.ID
	})
	return seats
}

// seatsByID returns every seat ordered by player id.
func (l *Lobby) seatsByID() []*seat {
	seats := make([]*seat, 0, len(l.players))
	for _, s := range l.players {
		seats = append(seats, s)
	}
	sort.Slice(seats, func(i, j int) bool {
		return seats[i].entry.Profile.ID < seats[j].entry.Profile.ID
	})
	return seats
}

// startGame flips the lobby into a running game. Seed policy: an explicit
// custom seed always wins; with "random" the server mints one shared seed
// unless every player is meant to roll their own.
func (l *Lobby) startGame(hostSeed string, stake int32, mintSeed func() string) {
	seed := hostSeed
	if l.options.CustomSeed != "random" {
		seed = l.options.CustomSeed
	} else if !l.options.DifferentSeeds {
		seed = mintSeed()
	}

	l.started = true
	l.stage = 0
	l.bossChips = score.Regular(0)

	entries := make([]game.ClientLobbyEntry, 0, len(l.players))
	for _, s := range l.seatsByID() {
		s.entry.ResetForGame(l.options.StartingLives, true)
		entries = append(entries, *s.entry)
	}
	l.broadcast(protocol.ResetPlayers(entries))
	l.broadcast(protocol.GameStarted(seed, stake))
	l.broadcast(protocol.LobbyReady(l.readyStates()))
	l.broadcast(protocol.InGameStatuses(l.inGameStatuses()))

	l.log.WithFields(logrus.Fields{"seed": seed, "stake": stake}).Info("game started")
}

// stopGame returns the lobby to its pre-game state. Player records reset so
// a stale score or life count can never leak into the next game.
func (l *Lobby) stopGame() {
	l.started = false
	l.stage = 0
	l.bossChips = score.Regular(0)
	l.options.CustomSeed = "random"
	for _, s := range l.players {
		s.entry.ResetForGame(l.options.StartingLives, false)
		if s.entry.LobbyState.IsHost {
			s.entry.LobbyState.IsReady = true
		}
	}
	l.broadcast(protocol.GameStopped())
	l.broadcast(protocol.LobbyReady(l.readyStates()))
	l.broadcast(protocol.InGameStatuses(l.inGameStatuses()))

	l.log.Info("game stopped")
}

// startBlind consumes the ready flags, rearms scores and hands, and tells
// everyone still in the game to open the next blind.
func (l *Lobby) startBlind() {
	seats := l.inGameSeats()
	for _, s := range seats {
		s.entry.LobbyState.IsReady = false
	}
	l.resetScores(seats)
	l.broadcastWhere(func(e *game.ClientLobbyEntry) bool {
		return e.LobbyState.InGame
	}, protocol.StartBlind())
	l.broadcast(protocol.LobbyReady(l.readyStates()))
}

func (l *Lobby) stats() StatsSnapshot {
	return StatsSnapshot{
		Code:     l.code,
		GameMode: l.options.GameMode,
		Players:  len(l.players),
		Started:  l.started,
		Stage:    l.stage,
	}
}
