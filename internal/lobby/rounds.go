// internal/lobby/rounds.go
package lobby

import (
	"github.com/sirupsen/logrus"

	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/protocol"
	"github.com/mwhitten/cardshark/internal/score"
)

// roundResult pairs a seat with its outcome for one blind.
type roundResult struct {
	seat *seat
	won  bool
}

// maybeEvaluateRound fires once every in-game player has exhausted their
// hands. The non-game-over path rearms hands_left to hands_max, so a second
// call for the same blind is a no-op by construction.
func (l *Lobby) maybeEvaluateRound() {
	if !l.started {
		return
	}
	seats := l.inGameSeats()
	if len(seats) == 0 {
		return
	}
	for _, s := range seats {
		if s.entry.GameState.HandsLeft != 0 {
			return
		}
	}

	results := l.determineRoundOutcome(seats)
	if results == nil {
		return
	}
	l.processRoundOutcome(results)
	l.broadcastAllGameStates(seats)

	if l.checkGameOver() {
		return
	}

	// The game continues: rearm the survivors and hand out the round
	// verdicts. Anyone eliminated this round already got loseGame.
	l.resetRound(l.inGameSeats())
	for _, r := range results {
		if !r.seat.entry.LobbyState.InGame {
			continue
		}
		l.send(r.seat.entry.Profile.ID, protocol.EndPvp(r.won))
	}
	l.broadcast(protocol.InGameStatuses(l.inGameStatuses()))
}

// determineRoundOutcome decides who won the blind. A nil result means the
// round cannot be judged and nothing happens.
func (l *Lobby) determineRoundOutcome(seats []*seat) []roundResult {
	switch l.options.GameMode {
	case game.ModeCoopSurvival:
		total := score.Regular(0)
		for _, s := range seats {
			total = total.Add(s.entry.GameState.Score)
		}
		// The team must beat the boss outright; a tie loses.
		won := l.bossChips.Less(total)
		l.log.WithFields(logrus.Fields{
			"total": total.String(),
			"boss":  l.bossChips.String(),
			"won":   won,
		}).Debug("coop round evaluated")
		results := make([]roundResult, len(seats))
		for i, s := range seats {
			results[i] = roundResult{seat: s, won: won}
		}
		return results

	case game.ModeSurvival:
		var maxBlind uint32
		for _, s := range seats {
			if s.entry.GameState.FurthestBlind > maxBlind {
				maxBlind = s.entry.GameState.FurthestBlind
			}
		}
		results := make([]roundResult, len(seats))
		for i, s := range seats {
			results[i] = roundResult{seat: s, won: s.entry.GameState.FurthestBlind == maxBlind}
		}
		return results

	case game.ModeClash:
		return scoreRankedResults(seats)

	default:
		if len(seats) < 2 {
			return nil
		}
		return scoreRankedResults(seats)
	}
}

// scoreRankedResults orders seats by score, highest first, and marks the top
// tier as winners. Input arrives ordered by player id, so ties stay stable.
func scoreRankedResults(seats []*seat) []roundResult {
	ranked := make([]*seat, len(seats))
	copy(ranked, seats)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j-1].entry.GameState.Score.Less(ranked[j].entry.GameState.Score); j-- {
			ranked[j-1], ranked[j] = ranked[j], ranked[j-1]
		}
	}

	best := ranked[0].entry.GameState.Score
	results := make([]roundResult, len(ranked))
	for i, s := range ranked {
		results[i] = roundResult{seat: s, won: !s.entry.GameState.Score.Less(best)}
	}
	return results
}

// processRoundOutcome charges the losers. Only Clash escalates damage by
// stage and loser rank, and only Clash advances the stage counter; every
// other mode costs a flat life. The coop team shares its loss.
func (l *Lobby) processRoundOutcome(results []roundResult) {
	switch l.options.GameMode {
	case game.ModeCoopSurvival:
		if results[0].won {
			return
		}
		for _, r := range results {
			l.applyLifeLoss(r.seat, 1)
		}

	case game.ModeClash:
		rank := 0
		for _, r := range results {
			if r.won {
				continue
			}
			l.applyLifeLoss(r.seat, game.ClashDamageAt(l.stage)+uint8(rank)+1)
			rank++
		}
		l.stage++

	default:
		for _, r := range results {
			if !r.won {
				l.applyLifeLoss(r.seat, 1)
			}
		}
	}
}

// checkGameOver settles the match if a life pool just emptied. It reports
// whether the game ended.
func (l *Lobby) checkGameOver() bool {
	if !l.started {
		return false
	}
	if !l.settleGameOver() {
		return false
	}
	l.endGame()
	l.broadcast(protocol.InGameStatuses(l.inGameStatuses()))
	return true
}

// settleGameOver checks the mode's end condition and, when met, sends the
// final winGame/loseGame verdicts. Clash additionally eliminates dead
// players even when the match continues for the rest.
func (l *Lobby) settleGameOver() bool {
	seats := l.inGameSeats()

	switch l.options.GameMode {
	case game.ModeCoopSurvival:
		for _, s := range seats {
			if s.entry.GameState.Lives == 0 {
				for _, o := range seats {
					l.send(o.entry.Profile.ID, protocol.LoseGame())
				}
				return true
			}
		}
		return false

	case game.ModeSurvival:
		alive := 0
		for _, s := range seats {
			if s.entry.GameState.Lives > 0 {
				alive++
			}
		}
		if alive > 1 {
			return false
		}
		winner := survivalWinner(seats)
		for _, s := range seats {
			if s == winner {
				l.send(s.entry.Profile.ID, protocol.WinGame())
			} else {
				l.send(s.entry.Profile.ID, protocol.LoseGame())
			}
		}
		return true

	case game.ModeClash:
		dead := 0
		for _, s := range seats {
			if s.entry.GameState.Lives == 0 {
				s.entry.LobbyState.InGame = false
				l.send(s.entry.Profile.ID, protocol.LoseGame())
				dead++
			}
		}
		if dead == 0 {
			return false
		}
		survivors := l.inGameSeats()
		if len(survivors) == 1 {
			l.send(survivors[0].entry.Profile.ID, protocol.WinGame())
			return true
		}
		return len(survivors) == 0

	default:
		anyDead := false
		for _, s := range seats {
			if s.entry.GameState.Lives == 0 {
				anyDead = true
				break
			}
		}
		if !anyDead {
			return false
		}
		for _, s := range seats {
			if s.entry.GameState.Lives > 0 {
				l.send(s.entry.Profile.ID, protocol.WinGame())
			} else {
				l.send(s.entry.Profile.ID, protocol.LoseGame())
			}
		}
		return true
	}
}

// survivalWinner is the seat with the deepest blind reached.
func survivalWinner(seats []*seat) *seat {
	var best *seat
	for _, s := range seats {
		if best == nil || s.entry.GameState.FurthestBlind > best.entry.GameState.FurthestBlind {
			best = s
		}
	}
	return best
}

// maybeEndSurvival ends a Survival run when the blind setter is the last
// player left alive and holds the deepest blind in the lobby.
func (l *Lobby) maybeEndSurvival(s *seat) {
	if !l.started || l.options.GameMode != game.ModeSurvival {
		return
	}
	seats := l.inGameSeats()
	var maxBlind uint32
	for _, o := range seats {
		if o.entry.GameState.FurthestBlind > maxBlind {
			maxBlind = o.entry.GameState.FurthestBlind
		}
		if o != s && o.entry.GameState.Lives > 0 {
			return
		}
	}
	if s.entry.GameState.FurthestBlind != maxBlind {
		return
	}

	for _, o := range seats {
		if o == s {
			l.send(o.entry.Profile.ID, protocol.WinGame())
		} else {
			l.send(o.entry.Profile.ID, protocol.LoseGame())
		}
	}
	l.endGame()
	l.broadcast(protocol.InGameStatuses(l.inGameStatuses()))
}

// endGame returns the lobby to its between-games idle state. The verdict
// messages have already gone out; player records keep their final values
// until the next startGame or stopGame wipes them.
func (l *Lobby) endGame() {
	l.started = false
	for _, s := range l.players {
		s.entry.LobbyState.IsReady = s.entry.LobbyState.IsHost
	}
	l.broadcast(protocol.LobbyReady(l.readyStates()))
	l.log.Info("game ended")
}

// applyLifeLoss subtracts lives without wrapping below zero.
func (l *Lobby) applyLifeLoss(s *seat, damage uint8) {
	gs := &s.entry.GameState
	if damage >= gs.Lives {
		gs.Lives = 0
	} else {
		gs.Lives -= damage
	}
}

// broadcastAllGameStates fans out every given seat's state so all clients
// render the same life and score counts.
func (l *Lobby) broadcastAllGameStates(seats []*seat) {
	for _, s := range seats {
		l.broadcast(protocol.GameStateUpdate(s.entry.Profile.ID, s.entry.GameState))
	}
}

// broadcastLifeUpdates publishes the fallout of a player-reported fail. The
// coop team shares lives, so everyone's state goes out; otherwise only the
// failing player changed.
func (l *Lobby) broadcastLifeUpdates(s *seat) {
	if l.options.GameMode == game.ModeCoopSurvival {
		l.broadcastAllGameStates(l.inGameSeats())
	} else {
		l.broadcast(protocol.GameStateUpdate(s.entry.Profile.ID, s.entry.GameState))
	}
}

// resetScores rearms the given seats for the next blind.
func (l *Lobby) resetScores(seats []*seat) {
	for _, s := range seats {
		gs := &s.entry.GameState
		gs.Score = score.Regular(0)
		gs.HandsLeft = gs.HandsMax
		gs.DiscardsLeft = gs.DiscardsMax
	}
}

// resetRound is resetScores plus the round counter tick.
func (l *Lobby) resetRound(seats []*seat) {
	l.resetScores(seats)
	for _, s := range seats {
		s.entry.GameState.Round++
	}
}
