// internal/protocol/actions.go
package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/score"
)

// Client-to-server action tags. The discriminant travels in the "action"
// field of the payload map.
const (
	ActionKeepAlive              = "k"
	ActionVersion                = "version"
	ActionSetClientData          = "setClientData"
	ActionCreateLobby            = "createLobby"
	ActionJoinLobby              = "joinLobby"
	ActionLeaveLobby             = "leaveLobby"
	ActionUpdateLobbyOptions     = "updateLobbyOptions"
	ActionSetReady               = "setReady"
	ActionPlayHand               = "playHand"
	ActionDiscard                = "discard"
	ActionFailRound              = "failRound"
	ActionSetBossBlind           = "setBossBlind"
	ActionSkip                   = "skip"
	ActionSetLocation            = "setLocation"
	ActionStartGame              = "startGame"
	ActionStopGame               = "stopGame"
	ActionUpdateHandsAndDiscards = "updateHandsAndDiscards"
	ActionSendPlayerDeck         = "sendPlayerDeck"
	ActionSendPlayerJokers       = "sendPlayerJokers"
	ActionSetFurthestBlind       = "setFurthestBlind"
	ActionSendPhantom            = "sendPhantom"
	ActionRemovePhantom          = "removePhantom"
	ActionAsteroid               = "asteroid"
	ActionLetsGoGamblingNemesis  = "letsGoGamblingNemesis"
	ActionEatPizza               = "eatPizza"
	ActionSoldJoker              = "soldJoker"
	ActionStartAnteTimer         = "startAnteTimer"
	ActionPauseAnteTimer         = "pauseAnteTimer"
	ActionFailTimer              = "failTimer"
	ActionSpentLastShop          = "spentLastShop"
	ActionMagnet                 = "magnet"
	ActionMagnetResponse         = "magnetResponse"
	ActionSendMoney              = "sendMoney"
)

// ClientAction is the closed union of inbound actions. Concrete types carry
// an Action field holding their tag; the decoder fills it from the wire and
// test clients set it when encoding.
type ClientAction interface {
	isClientAction()
}

type KeepAlive struct {
	Action string `json:"action" msgpack:"action"`
}

type Version struct {
	Action  string `json:"action" msgpack:"action"`
	Version string `json:"version" msgpack:"version"`
}

type SetClientData struct {
	Action   string `json:"action" msgpack:"action"`
	Username string `json:"username" msgpack:"username"`
	Colour   uint8  `json:"colour" msgpack:"colour"`
	ModHash  string `json:"mod_hash" msgpack:"mod_hash"`
}

type CreateLobby struct {
	Action   string    `json:"action" msgpack:"action"`
	Ruleset  string    `json:"ruleset" msgpack:"ruleset"`
	GameMode game.Mode `json:"gameMode" msgpack:"gameMode"`
}

type JoinLobby struct {
	Action string `json:"action" msgpack:"action"`
	Code   string `json:"code" msgpack:"code"`
}

type LeaveLobby struct {
	Action string `json:"action" msgpack:"action"`
}

type UpdateLobbyOptions struct {
	Action  string            `json:"action" msgpack:"action"`
	Options game.LobbyOptions `json:"options" msgpack:"options"`
}

type SetReady struct {
	Action  string `json:"action" msgpack:"action"`
	IsReady bool   `json:"is_ready" msgpack:"is_ready"`
}

type PlayHand struct {
	Action    string       `json:"action" msgpack:"action"`
	Score     score.Number `json:"score" msgpack:"score"`
	HandsLeft uint8        `json:"hands_left" msgpack:"hands_left"`
}

type Discard struct {
	Action string `json:"action" msgpack:"action"`
}

type FailRound struct {
	Action string `json:"action" msgpack:"action"`
}

type SetBossBlind struct {
	Action string       `json:"action" msgpack:"action"`
	Key    string       `json:"key" msgpack:"key"`
	Chips  score.Number `json:"chips" msgpack:"chips"`
}

type Skip struct {
	Action string `json:"action" msgpack:"action"`
	Blind  uint32 `json:"blind" msgpack:"blind"`
}

type SetLocation struct {
	Action   string `json:"action" msgpack:"action"`
	Location string `json:"location" msgpack:"location"`
}

type StartGame struct {
	Action string `json:"action" msgpack:"action"`
	Seed   string `json:"seed" msgpack:"seed"`
	Stake  int32  `json:"stake" msgpack:"stake"`
}

type StopGame struct {
	Action string `json:"action" msgpack:"action"`
}

type UpdateHandsAndDiscards struct {
	Action      string `json:"action" msgpack:"action"`
	HandsMax    uint8  `json:"hands_max" msgpack:"hands_max"`
	DiscardsMax uint8  `json:"discards_max" msgpack:"discards_max"`
}

type SendPlayerDeck struct {
	Action string `json:"action" msgpack:"action"`
	Deck   string `json:"deck" msgpack:"deck"`
}

type SendPlayerJokers struct {
	Action string `json:"action" msgpack:"action"`
	Jokers string `json:"jokers" msgpack:"jokers"`
}

type SetFurthestBlind struct {
	Action string `json:"action" msgpack:"action"`
	Blind  uint32 `json:"blind" msgpack:"blind"`
}

type SendPhantom struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type RemovePhantom struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type Asteroid struct {
	Action string `json:"action" msgpack:"action"`
	Target string `json:"target" msgpack:"target"`
}

type LetsGoGamblingNemesis struct {
	Action string `json:"action" msgpack:"action"`
}

type EatPizza struct {
	Action   string `json:"action" msgpack:"action"`
	Discards uint8  `json:"discards" msgpack:"discards"`
}

type SoldJoker struct {
	Action string `json:"action" msgpack:"action"`
}

type StartAnteTimer struct {
	Action string `json:"action" msgpack:"action"`
	Time   uint32 `json:"time" msgpack:"time"`
}

type PauseAnteTimer struct {
	Action string `json:"action" msgpack:"action"`
	Time   uint32 `json:"time" msgpack:"time"`
}

type FailTimer struct {
	Action string `json:"action" msgpack:"action"`
}

type SpentLastShop struct {
	Action string `json:"action" msgpack:"action"`
	Amount uint32 `json:"amount" msgpack:"amount"`
}

type Magnet struct {
	Action string `json:"action" msgpack:"action"`
}

type MagnetResponse struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type SendMoney struct {
	Action   string `json:"action" msgpack:"action"`
	PlayerID string `json:"player_id" msgpack:"player_id"`
}

func (KeepAlive) isClientAction()              {}
func (Version) isClientAction()                {}
func (SetClientData) isClientAction()          {}
func (CreateLobby) isClientAction()            {}
func (JoinLobby) isClientAction()              {}
func (LeaveLobby) isClientAction()             {}
func (UpdateLobbyOptions) isClientAction()     {}
func (SetReady) isClientAction()               {}
func (PlayHand) isClientAction()               {}
func (Discard) isClientAction()                {}
func (FailRound) isClientAction()              {}
func (SetBossBlind) isClientAction()           {}
func (Skip) isClientAction()                   {}
func (SetLocation) isClientAction()            {}
func (StartGame) isClientAction()              {}
func (StopGame) isClientAction()               {}
func (UpdateHandsAndDiscards) isClientAction() {}
func (SendPlayerDeck) isClientAction()         {}
func (SendPlayerJokers) isClientAction()       {}
func (SetFurthestBlind) isClientAction()       {}
func (SendPhantom) isClientAction()            {}
func (RemovePhantom) isClientAction()          {}
func (Asteroid) isClientAction()               {}
func (LetsGoGamblingNemesis) isClientAction()  {}
func (EatPizza) isClientAction()               {}
func (SoldJoker) isClientAction()              {}
func (StartAnteTimer) isClientAction()         {}
func (PauseAnteTimer) isClientAction()         {}
func (FailTimer) isClientAction()              {}
func (SpentLastShop) isClientAction()          {}
func (Magnet) isClientAction()                 {}
func (MagnetResponse) isClientAction()         {}
func (SendMoney) isClientAction()              {}

// DecodeAction decodes a frame payload into its concrete action. Unknown
// tags and undecodable payloads return ErrMalformed (wrapped).
func DecodeAction(payload []byte) (ClientAction, error) {
	var probe struct {
		Action string `msgpack:"action"`
	}
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	decode := func(dst ClientAction) (ClientAction, error) {
		if err := msgpack.Unmarshal(payload, dst); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, probe.Action, err)
		}
		return dst, nil
	}

	switch probe.Action {
	case ActionKeepAlive:
		return decode(&KeepAlive{})
	case ActionVersion:
		return decode(&Version{})
	case ActionSetClientData:
		return decode(&SetClientData{})
	case ActionCreateLobby:
		return decode(&CreateLobby{})
	case ActionJoinLobby:
		return decode(&JoinLobby{})
	case ActionLeaveLobby:
		return decode(&LeaveLobby{})
	case ActionUpdateLobbyOptions:
		return decode(&UpdateLobbyOptions{})
	case ActionSetReady:
		return decode(&SetReady{})
	case ActionPlayHand:
		return decode(&PlayHand{})
	case ActionDiscard:
		return decode(&Discard{})
	case ActionFailRound:
		return decode(&FailRound{})
	case ActionSetBossBlind:
		return decode(&SetBossBlind{})
	case ActionSkip:
		return decode(&Skip{})
	case ActionSetLocation:
		return decode(&SetLocation{})
	case ActionStartGame:
		return decode(&StartGame{})
	case ActionStopGame:
		return decode(&StopGame{})
	case ActionUpdateHandsAndDiscards:
		return decode(&UpdateHandsAndDiscards{})
	case ActionSendPlayerDeck:
		return decode(&SendPlayerDeck{})
	case ActionSendPlayerJokers:
		return decode(&SendPlayerJokers{})
	case ActionSetFurthestBlind:
		return decode(&SetFurthestBlind{})
	case ActionSendPhantom:
		return decode(&SendPhantom{})
	case ActionRemovePhantom:
		return decode(&RemovePhantom{})
	case ActionAsteroid:
		return decode(&Asteroid{})
	case ActionLetsGoGamblingNemesis:
		return decode(&LetsGoGamblingNemesis{})
	case ActionEatPizza:
		return decode(&EatPizza{})
	case ActionSoldJoker:
		return decode(&SoldJoker{})
	case ActionStartAnteTimer:
		return decode(&StartAnteTimer{})
	case ActionPauseAnteTimer:
		return decode(&PauseAnteTimer{})
	case ActionFailTimer:
		return decode(&FailTimer{})
	case ActionSpentLastShop:
		return decode(&SpentLastShop{})
	case ActionMagnet:
		return decode(&Magnet{})
	case ActionMagnetResponse:
		return decode(&MagnetResponse{})
	case ActionSendMoney:
		return decode(&SendMoney{})
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrMalformed, probe.Action)
	}
}

// EncodeAction encodes a client action; used by test clients and tooling.
func EncodeAction(action ClientAction) ([]byte, error) {
	return msgpack.Marshal(action)
}
