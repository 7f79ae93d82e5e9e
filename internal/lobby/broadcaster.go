// internal/lobby/broadcaster.go
package lobby

import (
	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/protocol"
)

// Fan-out helpers. Each encodes the message exactly once and hands the same
// frame to every matching writer; Sender implementations drop rather than
// block, so a slow socket never stalls the actor.

// send delivers to a single seat, if it still exists.
func (l *Lobby) send(playerID string, msg protocol.ServerMessage) {
	if s, ok := l.players[playerID]; ok {
		s.out.SendFrame(protocol.Encode(msg))
	}
}

// broadcast delivers to every seat.
func (l *Lobby) broadcast(msg protocol.ServerMessage) {
	frame := protocol.Encode(msg)
	for _, s := range l.players {
		s.out.SendFrame(frame)
	}
}

// broadcastExcept delivers to every seat but one, usually the originator.
func (l *Lobby) broadcastExcept(playerID string, msg protocol.ServerMessage) {
	frame := protocol.Encode(msg)
	for id, s := range l.players {
		if id == playerID {
			continue
		}
		s.out.SendFrame(frame)
	}
}

// broadcastWhere delivers to every seat whose entry satisfies the predicate.
func (l *Lobby) broadcastWhere(pred func(*game.ClientLobbyEntry) bool, msg protocol.ServerMessage) {
	frame := protocol.Encode(msg)
	for _, s := range l.players {
		if pred(s.entry) {
			s.out.SendFrame(frame)
		}
	}
}
