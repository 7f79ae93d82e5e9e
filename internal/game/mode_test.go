// internal/game/mode_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeValidity(t *testing.T) {
	for _, m := range []Mode{ModeAttrition, ModeShowdown, ModeSurvival, ModeCoopSurvival, ModeClash} {
		assert.True(t, m.Valid(), "%s should be a known mode", m)
	}
	assert.False(t, Mode("gamemode_mp_solitaire").Valid())

	_, err := Mode("bogus").Data()
	assert.Error(t, err)
}

func TestModeSeatCounts(t *testing.T) {
	assert.Equal(t, 2, ModeAttrition.MaxPlayers())
	assert.Equal(t, 2, ModeShowdown.MaxPlayers())
	assert.Equal(t, 6, ModeSurvival.MaxPlayers())
	assert.Equal(t, 6, ModeCoopSurvival.MaxPlayers())
	assert.Equal(t, 6, ModeClash.MaxPlayers())
}

func TestDefaultOptionsPerMode(t *testing.T) {
	std := ModeAttrition.DefaultOptions()
	assert.Equal(t, "ruleset_mp_standard", std.Ruleset)
	assert.Equal(t, uint8(4), std.StartingLives)
	assert.Equal(t, int32(2), std.PvpStartRound)
	assert.False(t, std.DeathOnRoundLoss)
	assert.Equal(t, ModeAttrition, std.GameMode)

	survival := ModeSurvival.DefaultOptions()
	assert.Equal(t, int32(20), survival.PvpStartRound)

	coop := ModeCoopSurvival.DefaultOptions()
	assert.Equal(t, "ruleset_mp_coop", coop.Ruleset)
	assert.Equal(t, uint8(2), coop.StartingLives)
	assert.True(t, coop.DeathOnRoundLoss)
	assert.True(t, coop.DifferentSeeds)
	assert.False(t, coop.MultiplayerJokers)
}

func TestDefaultOptionsAreCopies(t *testing.T) {
	a := ModeClash.DefaultOptions()
	a.StartingLives = 99
	b := ModeClash.DefaultOptions()
	require.Equal(t, uint8(4), b.StartingLives, "mutating one copy must not leak into the registry")
}

func TestClashDamageClamps(t *testing.T) {
	assert.Equal(t, ClashBaseDamage[0], ClashDamageAt(-5))
	assert.Equal(t, ClashBaseDamage[3], ClashDamageAt(3))
	assert.Equal(t, ClashBaseDamage[len(ClashBaseDamage)-1], ClashDamageAt(100))
}

func TestBlindFromAnte(t *testing.T) {
	opts := ModeShowdown.DefaultOptions()

	// Early antes run normal blinds, later ones are all-pvp.
	early := ModeShowdown.BlindFromAnte(2, &opts)
	assert.Empty(t, early.Boss)
	late := ModeShowdown.BlindFromAnte(4, &opts)
	assert.Equal(t, "bl_pvp", late.Boss)
	assert.Equal(t, "bl_pvp", late.Small)

	attrition := ModeAttrition.BlindFromAnte(1, &opts)
	assert.Equal(t, "bl_pvp", attrition.Boss)
	assert.Empty(t, attrition.Small)
}

func TestNewGameStateBaseline(t *testing.T) {
	gs := NewGameState(4)
	assert.Equal(t, uint8(4), gs.Lives)
	assert.Equal(t, uint8(4), gs.HandsLeft)
	assert.Equal(t, uint8(3), gs.DiscardsLeft)
	assert.Equal(t, "loc_selecting", gs.Location)
	assert.True(t, gs.Score.IsZero())
	assert.Equal(t, uint8(1), gs.Team)
}

func TestResetForGame(t *testing.T) {
	entry := NewLobbyEntry(DefaultProfile("p1"), "ABCDE", true, 4)
	assert.True(t, entry.LobbyState.IsReady, "host seats start ready")

	entry.GameState.Lives = 1
	entry.GameState.Skips = 7
	entry.ResetForGame(4, true)

	assert.True(t, entry.LobbyState.InGame)
	assert.False(t, entry.LobbyState.IsReady)
	assert.Equal(t, uint8(4), entry.GameState.Lives)
	assert.Zero(t, entry.GameState.Skips)
}
