// internal/game/mode.go

// Package game holds the static game-mode registry and the per-player state
// records the lobby actor owns. The server never simulates cards: modes only
// decide seat counts, default options, and how round outcomes translate into
// life loss.
package game

import "fmt"

// Mode is the closed set of game modes, keyed by wire value.
type Mode string

const (
	ModeAttrition    Mode = "gamemode_mp_attrition"
	ModeShowdown     Mode = "gamemode_mp_showdown"
	ModeSurvival     Mode = "gamemode_mp_survival"
	ModeCoopSurvival Mode = "gamemode_mp_coopSurvival"
	ModeClash        Mode = "gamemode_mp_clash"
)

// ClashBaseDamage is the per-stage base life cost in Clash. A loser ranked
// i (0-indexed among losers) at stage s loses ClashBaseDamage[s] + i + 1
// lives. Stages past the end reuse the last entry.
var ClashBaseDamage = []uint8{1, 1, 2, 2, 3, 3, 4}

// ClashDamageAt returns the base damage for a stage, clamping the index so
// long matches stay in bounds.
func ClashDamageAt(stage int32) uint8 {
	if stage < 0 {
		return ClashBaseDamage[0]
	}
	if int(stage) >= len(ClashBaseDamage) {
		return ClashBaseDamage[len(ClashBaseDamage)-1]
	}
	return ClashBaseDamage[stage]
}

// BlindChoice names the blinds a client should present for an ante. The
// server relays these through the mode table; it never interprets them.
type BlindChoice struct {
	Small string `json:"small,omitempty" msgpack:"small,omitempty"`
	Big   string `json:"big,omitempty" msgpack:"big,omitempty"`
	Boss  string `json:"boss,omitempty" msgpack:"boss,omitempty"`
}

func pvpOnly() BlindChoice {
	return BlindChoice{Small: "bl_pvp", Big: "bl_pvp", Boss: "bl_pvp"}
}

// ModeData is one row of the static registry.
type ModeData struct {
	DefaultOptions LobbyOptions
	MaxPlayers     int
	BlindFromAnte  func(ante int32, opts *LobbyOptions) BlindChoice
}

var modeTable = map[Mode]*ModeData{
	ModeAttrition: {
		DefaultOptions: defaultOptions(ModeAttrition, pvpDefaults{}),
		MaxPlayers:     2,
		BlindFromAnte: func(int32, *LobbyOptions) BlindChoice {
			return BlindChoice{Boss: "bl_pvp"}
		},
	},
	ModeShowdown: {
		DefaultOptions: defaultOptions(ModeShowdown, pvpDefaults{}),
		MaxPlayers:     2,
		BlindFromAnte: func(ante int32, opts *LobbyOptions) BlindChoice {
			if ante <= opts.ShowdownStartingAntes {
				return BlindChoice{}
			}
			return pvpOnly()
		},
	},
	ModeSurvival: {
		DefaultOptions: defaultOptions(ModeSurvival, pvpDefaults{pvpStartRound: 20}),
		MaxPlayers:     6,
		BlindFromAnte: func(int32, *LobbyOptions) BlindChoice {
			return BlindChoice{}
		},
	},
	ModeCoopSurvival: {
		DefaultOptions: coopDefaults(),
		MaxPlayers:     6,
		BlindFromAnte: func(int32, *LobbyOptions) BlindChoice {
			return BlindChoice{}
		},
	},
	ModeClash: {
		DefaultOptions: defaultOptions(ModeClash, pvpDefaults{}),
		MaxPlayers:     6,
		BlindFromAnte: func(int32, *LobbyOptions) BlindChoice {
			return BlindChoice{Boss: "bl_pvp"}
		},
	},
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeTable[m]
	return ok
}

// Data returns the registry row for m, or an error for unknown modes.
func (m Mode) Data() (*ModeData, error) {
	d, ok := modeTable[m]
	if !ok {
		return nil, fmt.Errorf("unknown game mode: %q", string(m))
	}
	return d, nil
}

// DefaultOptions returns a copy of the mode's default lobby options.
func (m Mode) DefaultOptions() LobbyOptions {
	if d, ok := modeTable[m]; ok {
		return d.DefaultOptions
	}
	return defaultOptions(m, pvpDefaults{})
}

// MaxPlayers returns the seat count for the mode.
func (m Mode) MaxPlayers() int {
	if d, ok := modeTable[m]; ok {
		return d.MaxPlayers
	}
	return 2
}

// BlindFromAnte consults the mode's blind policy hook.
func (m Mode) BlindFromAnte(ante int32, opts *LobbyOptions) BlindChoice {
	if d, ok := modeTable[m]; ok {
		return d.BlindFromAnte(ante, opts)
	}
	return BlindChoice{}
}

func (m Mode) String() string { return string(m) }

type pvpDefaults struct {
	pvpStartRound int32
}

func defaultOptions(m Mode, d pvpDefaults) LobbyOptions {
	startRound := d.pvpStartRound
	if startRound == 0 {
		startRound = 2
	}
	return LobbyOptions{
		Back:                    "Red Deck",
		Challenge:               0,
		CustomSeed:              "random",
		DeathOnRoundLoss:        false,
		DifferentDecks:          false,
		DifferentSeeds:          false,
		DisableLiveAndTimerHUD:  false,
		GameMode:                m,
		GoldOnLifeLoss:          true,
		MultiplayerJokers:       true,
		NoGoldOnRoundLoss:       false,
		NormalBosses:            false,
		PvpStartRound:           startRound,
		Ruleset:                 "ruleset_mp_standard",
		ShowdownStartingAntes:   3,
		Sleeve:                  "sleeve_casl_none",
		Stake:                   1,
		StartingLives:           4,
		TimerBaseSeconds:        150,
		TimerIncrementSeconds:   60,
	}
}

func coopDefaults() LobbyOptions {
	return LobbyOptions{
		Back:                    "Red Deck",
		Challenge:               0,
		CustomSeed:              "random",
		DeathOnRoundLoss:        true,
		DifferentDecks:          true,
		DifferentSeeds:          true,
		DisableLiveAndTimerHUD:  false,
		GameMode:                ModeCoopSurvival,
		GoldOnLifeLoss:          false,
		MultiplayerJokers:       false,
		NoGoldOnRoundLoss:       true,
		NormalBosses:            true,
		PvpStartRound:           2,
		Ruleset:                 "ruleset_mp_coop",
		ShowdownStartingAntes:   3,
		Sleeve:                  "sleeve_casl_none",
		Stake:                   1,
		StartingLives:           2,
		TimerBaseSeconds:        150,
		TimerIncrementSeconds:   60,
	}
}

// LobbyOptions is the full option block relayed between host and clients.
// Most fields are opaque to the server; the exceptions are gamemode,
// custom_seed, different_seeds, death_on_round_loss, starting_lives, and
// the timer values, which the lobby actor consults directly.
type LobbyOptions struct {
	Back                   string `json:"back" msgpack:"back"`
	Challenge              int32  `json:"challenge" msgpack:"challenge"`
	CustomSeed             string `json:"custom_seed" msgpack:"custom_seed"`
	DeathOnRoundLoss       bool   `json:"death_on_round_loss" msgpack:"death_on_round_loss"`
	DifferentDecks         bool   `json:"different_decks" msgpack:"different_decks"`
	DifferentSeeds         bool   `json:"different_seeds" msgpack:"different_seeds"`
	DisableLiveAndTimerHUD bool   `json:"disable_live_and_timer_hud" msgpack:"disable_live_and_timer_hud"`
	GameMode               Mode   `json:"gamemode" msgpack:"gamemode"`
	GoldOnLifeLoss         bool   `json:"gold_on_life_loss" msgpack:"gold_on_life_loss"`
	MultiplayerJokers      bool   `json:"multiplayer_jokers" msgpack:"multiplayer_jokers"`
	NoGoldOnRoundLoss      bool   `json:"no_gold_on_round_loss" msgpack:"no_gold_on_round_loss"`
	NormalBosses           bool   `json:"normal_bosses" msgpack:"normal_bosses"`
	PvpStartRound          int32  `json:"pvp_start_round" msgpack:"pvp_start_round"`
	Ruleset                string `json:"ruleset" msgpack:"ruleset"`
	ShowdownStartingAntes  int32  `json:"showdown_starting_antes" msgpack:"showdown_starting_antes"`
	Sleeve                 string `json:"sleeve" msgpack:"sleeve"`
	Stake                  int32  `json:"stake" msgpack:"stake"`
	StartingLives          uint8  `json:"starting_lives" msgpack:"starting_lives"`
	TimerBaseSeconds       int32  `json:"timer_base_seconds" msgpack:"timer_base_seconds"`
	TimerIncrementSeconds  int32  `json:"timer_increment_seconds" msgpack:"timer_increment_seconds"`
}
