// internal/lobby/handlers.go
package lobby

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/protocol"
	"github.com/mwhitten/cardshark/internal/shortid"
)

// handleAction dispatches one decoded client action against lobby state.
// Host-only actions from non-hosts are dropped on the floor; an attacker
// learns nothing and honest clients never send them.
func (l *Lobby) handleAction(playerID string, action protocol.ClientAction) {
	s, ok := l.players[playerID]
	if !ok {
		l.log.WithField("player_id", playerID).Warn("action from player not in lobby")
		return
	}

	switch a := action.(type) {
	case *protocol.SetClientData:
		s.entry.Profile.Username = a.Username
		s.entry.Profile.Colour = a.Colour
		s.entry.Profile.ModHash = a.ModHash

	case *protocol.UpdateLobbyOptions:
		if !s.entry.LobbyState.IsHost {
			return
		}
		mode := l.options.GameMode
		l.options = a.Options
		// The mode is fixed at creation; a host cannot retag the lobby.
		l.options.GameMode = mode
		// New rules void every prior ready-up except the host's.
		for _, o := range l.players {
			o.entry.LobbyState.IsReady = o.entry.LobbyState.IsHost
		}
		l.broadcastExcept(playerID, protocol.LobbyReady(l.readyStates()))
		l.broadcastExcept(playerID, protocol.UpdatedLobbyOptions(l.options))

	case *protocol.SetReady:
		s.entry.LobbyState.IsReady = a.IsReady
		if a.IsReady && !s.entry.LobbyState.FirstReady {
			s.entry.LobbyState.FirstReady = true
		}
		if l.started {
			if l.allInGameReady() {
				l.startBlind()
			}
		} else {
			l.broadcastExcept(playerID, protocol.LobbyReady(l.readyStates()))
		}

	case *protocol.StartGame:
		if !s.entry.LobbyState.IsHost {
			return
		}
		if l.started {
			return
		}
		l.startGame(a.Seed, a.Stake, func() string { return shortid.TimeSeeded(8) })

	case *protocol.StopGame:
		l.stopGame()

	case *protocol.PlayHand:
		gs := &s.entry.GameState
		gs.Score = gs.Score.Add(a.Score)
		gs.HandsLeft = a.HandsLeft
		if gs.HighestScore.Less(gs.Score) {
			gs.HighestScore = gs.Score
		}
		l.broadcastExcept(playerID, protocol.GameStateUpdate(playerID, *gs))
		l.maybeEvaluateRound()

	case *protocol.Discard:
		gs := &s.entry.GameState
		if gs.DiscardsLeft > 0 {
			gs.DiscardsLeft--
		}
		l.broadcastExcept(playerID, protocol.GameStateUpdate(playerID, *gs))

	case *protocol.FailRound:
		if l.options.DeathOnRoundLoss {
			if l.options.GameMode == game.ModeCoopSurvival {
				for _, o := range l.inGameSeats() {
					l.applyLifeLoss(o, 1)
				}
			} else {
				l.applyLifeLoss(s, 1)
			}
		}
		l.broadcastLifeUpdates(s)
		l.checkGameOver()

	case *protocol.FailTimer:
		if l.options.DeathOnRoundLoss {
			l.applyLifeLoss(s, 1)
		}
		l.broadcastLifeUpdates(s)
		l.checkGameOver()
		l.broadcast(protocol.AnteTimerPaused(uint32(l.options.TimerBaseSeconds)))

	case *protocol.SetBossBlind:
		if !s.entry.LobbyState.IsHost {
			return
		}
		l.bossChips = a.Chips
		l.broadcastExcept(playerID, protocol.BossBlind(a.Key))

	case *protocol.Skip:
		gs := &s.entry.GameState
		gs.Skips++
		if a.Blind > gs.FurthestBlind {
			gs.FurthestBlind = a.Blind
		}
		l.broadcast(protocol.GameStateUpdate(playerID, *gs))

	case *protocol.SetLocation:
		s.entry.GameState.Location = a.Location
		l.broadcast(protocol.GameStateUpdate(playerID, s.entry.GameState))

	case *protocol.UpdateHandsAndDiscards:
		gs := &s.entry.GameState
		gs.HandsMax = a.HandsMax
		gs.DiscardsMax = a.DiscardsMax
		l.broadcast(protocol.GameStateUpdate(playerID, *gs))

	case *protocol.SetFurthestBlind:
		gs := &s.entry.GameState
		if a.Blind > gs.FurthestBlind {
			gs.FurthestBlind = a.Blind
		}
		l.broadcast(protocol.GameStateUpdate(playerID, *gs))
		l.maybeEndSurvival(s)

	case *protocol.SendPlayerDeck:
		l.broadcastExcept(playerID, protocol.ReceivePlayerDeck(playerID, a.Deck))

	case *protocol.SendPlayerJokers:
		l.broadcastExcept(playerID, protocol.ReceivePlayerJokers(playerID, a.Jokers))

	case *protocol.SendPhantom:
		l.broadcastExcept(playerID, protocol.PhantomSent(a.Key))

	case *protocol.RemovePhantom:
		l.broadcastExcept(playerID, protocol.PhantomRemoved(a.Key))

	case *protocol.Asteroid:
		if a.Target != "" {
			l.send(a.Target, protocol.AsteroidFrom(playerID))
		} else {
			l.broadcastExcept(playerID, protocol.AsteroidFrom(playerID))
		}

	case *protocol.LetsGoGamblingNemesis:
		l.broadcastExcept(playerID, protocol.NemesisGambling())

	case *protocol.EatPizza:
		l.broadcastExcept(playerID, protocol.PizzaEaten(a.Discards))

	case *protocol.SoldJoker:
		l.broadcastExcept(playerID, protocol.JokerSold())

	case *protocol.StartAnteTimer:
		l.broadcastExcept(playerID, protocol.AnteTimerStarted(a.Time))

	case *protocol.PauseAnteTimer:
		l.broadcastExcept(playerID, protocol.AnteTimerPaused(a.Time))

	case *protocol.SpentLastShop:
		s.entry.GameState.SpentInShop = append(s.entry.GameState.SpentInShop, a.Amount)
		l.broadcast(protocol.ShopSpend(playerID, a.Amount))

	case *protocol.Magnet:
		l.broadcastExcept(playerID, protocol.MagnetPulse())

	case *protocol.MagnetResponse:
		l.broadcastExcept(playerID, protocol.MagnetReply(a.Key))

	case *protocol.SendMoney:
		l.send(a.PlayerID, protocol.MoneyReceived())

	default:
		l.log.WithFields(logrus.Fields{
			"player_id": playerID,
			"action":    fmt.Sprintf("%T", action),
		}).Warn("unhandled lobby action")
	}
}

// allInGameReady reports whether every in-game player has readied up for the
// next blind.
func (l *Lobby) allInGameReady() bool {
	any := false
	for _, s := range l.players {
		if !s.entry.LobbyState.InGame {
			continue
		}
		any = true
		if !s.entry.LobbyState.IsReady {
			return false
		}
	}
	return any
}
