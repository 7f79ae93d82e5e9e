// internal/game/state.go
package game

import "github.com/mwhitten/cardshark/internal/score"

// ClientProfile is the identity a connection carries into a lobby. The id
// is server-minted at accept time; everything else is self-reported display
// metadata and never trusted for decisions.
type ClientProfile struct {
	ID       string `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
	Colour   uint8  `json:"colour" msgpack:"colour"`
	ModHash  string `json:"mod_hash" msgpack:"mod_hash"`
}

// DefaultProfile returns the profile used until the client sends
// setClientData.
func DefaultProfile(id string) ClientProfile {
	return ClientProfile{
		ID:       id,
		Username: "Guest",
		Colour:   1,
		ModHash:  "NULL",
	}
}

// ClientLobbyState is a player's membership bookkeeping within one lobby.
type ClientLobbyState struct {
	CurrentLobby string `json:"current_lobby" msgpack:"current_lobby"`
	IsReady      bool   `json:"is_ready" msgpack:"is_ready"`
	FirstReady   bool   `json:"first_ready" msgpack:"first_ready"`
	IsCached     bool   `json:"is_cached" msgpack:"is_cached"`
	IsHost       bool   `json:"is_host" msgpack:"is_host"`
	InGame       bool   `json:"in_game" msgpack:"in_game"`
}

// ClientGameState is the per-player progress snapshot the lobby owns and
// fans out on every update.
type ClientGameState struct {
	Ante          uint32       `json:"ante" msgpack:"ante"`
	Round         uint32       `json:"round" msgpack:"round"`
	FurthestBlind uint32       `json:"furthest_blind" msgpack:"furthest_blind"`
	HandsLeft     uint8        `json:"hands_left" msgpack:"hands_left"`
	HandsMax      uint8        `json:"hands_max" msgpack:"hands_max"`
	DiscardsLeft  uint8        `json:"discards_left" msgpack:"discards_left"`
	DiscardsMax   uint8        `json:"discards_max" msgpack:"discards_max"`
	Lives         uint8        `json:"lives" msgpack:"lives"`
	LivesBlocker  bool         `json:"lives_blocker" msgpack:"lives_blocker"`
	Location      string       `json:"location" msgpack:"location"`
	Skips         uint8        `json:"skips" msgpack:"skips"`
	Score         score.Number `json:"score" msgpack:"score"`
	HighestScore  score.Number `json:"highest_score" msgpack:"highest_score"`
	SpentInShop   []uint32     `json:"spent_in_shop" msgpack:"spent_in_shop"`
	Team          uint8        `json:"team" msgpack:"team"`
}

// NewGameState returns the baseline state a player holds between games.
func NewGameState(startingLives uint8) ClientGameState {
	return ClientGameState{
		Ante:          0,
		Round:         1,
		FurthestBlind: 1,
		HandsLeft:     4,
		HandsMax:      4,
		DiscardsLeft:  3,
		DiscardsMax:   3,
		Lives:         startingLives,
		Location:      "loc_selecting",
		Score:         score.Regular(0),
		HighestScore:  score.Regular(0),
		SpentInShop:   []uint32{},
		Team:          1,
	}
}

// ClientLobbyEntry bundles everything a lobby tracks about one seat.
type ClientLobbyEntry struct {
	Profile    ClientProfile    `json:"profile" msgpack:"profile"`
	LobbyState ClientLobbyState `json:"lobby_state" msgpack:"lobby_state"`
	GameState  ClientGameState  `json:"game_state" msgpack:"game_state"`
}

// NewLobbyEntry seats a player. Hosts start ready so a solo host can flip
// straight into a game once someone joins.
func NewLobbyEntry(profile ClientProfile, lobbyCode string, isHost bool, startingLives uint8) *ClientLobbyEntry {
	return &ClientLobbyEntry{
		Profile: profile,
		LobbyState: ClientLobbyState{
			CurrentLobby: lobbyCode,
			IsReady:      isHost,
			IsHost:       isHost,
		},
		GameState: NewGameState(startingLives),
	}
}

// ResetForGame puts the entry into its round-one state at game start.
func (e *ClientLobbyEntry) ResetForGame(startingLives uint8, inGame bool) {
	e.LobbyState.IsReady = false
	e.LobbyState.InGame = inGame
	e.GameState = NewGameState(startingLives)
}
