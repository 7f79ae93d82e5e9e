// internal/protocol/messages.go
package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/score"
)

// Server-to-client action tags.
const (
	MsgConnected             = "connected"
	MsgKeepAliveResponse     = "a"
	MsgVersionOk             = "versionOk"
	MsgError                 = "error"
	MsgJoinedLobby           = "joinedLobby"
	MsgPlayerJoinedLobby     = "playerJoinedLobby"
	MsgPlayerLeftLobby       = "playerLeftLobby"
	MsgUpdateLobbyOptions    = "updateLobbyOptions"
	MsgGameStarted           = "gameStarted"
	MsgStartBlind            = "startBlind"
	MsgGameStopped           = "gameStopped"
	MsgLoseGame              = "loseGame"
	MsgWinGame               = "winGame"
	MsgReceivePlayerJokers   = "receivePlayerJokers"
	MsgReceivePlayerDeck     = "receivePlayerDeck"
	MsgSetBossBlind          = "setBossBlind"
	MsgEndPvp                = "endPvp"
	MsgGameStateUpdate       = "gameStateUpdate"
	MsgResetPlayers          = "resetPlayers"
	MsgLobbyReady            = "lobbyReady"
	MsgInGameStatuses        = "inGameStatuses"
	MsgSendPhantom           = "sendPhantom"
	MsgRemovePhantom         = "removePhantom"
	MsgAsteroid              = "asteroid"
	MsgLetsGoGamblingNemesis = "letsGoGamblingNemesis"
	MsgEatPizza              = "eatPizza"
	MsgSoldJoker             = "soldJoker"
	MsgSpentLastShop         = "spentLastShop"
	MsgStartAnteTimer        = "startAnteTimer"
	MsgPauseAnteTimer        = "pauseAnteTimer"
	MsgMagnet                = "magnet"
	MsgMagnetResponse        = "magnetResponse"
	MsgReceivedMoney         = "receivedMoney"
)

// ServerMessage is the closed union of outbound messages. Construct values
// through the helper functions below so the Action discriminant is always
// stamped.
type ServerMessage interface {
	isServerMessage()
}

// LobbySnapshot is the lobby_data payload a joiner receives. It mirrors the
// lobby actor's record at join time.
type LobbySnapshot struct {
	Code         string                            `json:"code" msgpack:"code"`
	Started      bool                              `json:"started" msgpack:"started"`
	Stage        int32                             `json:"stage" msgpack:"stage"`
	BossChips    score.Number                      `json:"boss_chips" msgpack:"boss_chips"`
	LobbyOptions game.LobbyOptions                 `json:"lobby_options" msgpack:"lobby_options"`
	Players      map[string]*game.ClientLobbyEntry `json:"players" msgpack:"players"`
	MaxPlayers   int                               `json:"max_players" msgpack:"max_players"`
}

type ConnectedMsg struct {
	Action   string `json:"action" msgpack:"action"`
	ClientID string `json:"clientId" msgpack:"clientId"`
}

type KeepAliveResponseMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type VersionOkMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type ErrorMsg struct {
	Action  string `json:"action" msgpack:"action"`
	Message string `json:"message" msgpack:"message"`
}

type JoinedLobbyMsg struct {
	Action    string        `json:"action" msgpack:"action"`
	PlayerID  string        `json:"player_id" msgpack:"player_id"`
	LobbyData LobbySnapshot `json:"lobby_data" msgpack:"lobby_data"`
}

type PlayerJoinedLobbyMsg struct {
	Action string                `json:"action" msgpack:"action"`
	Player game.ClientLobbyEntry `json:"player" msgpack:"player"`
}

type PlayerLeftLobbyMsg struct {
	Action   string `json:"action" msgpack:"action"`
	PlayerID string `json:"player_id" msgpack:"player_id"`
	HostID   string `json:"host_id" msgpack:"host_id"`
}

type UpdateLobbyOptionsMsg struct {
	Action  string            `json:"action" msgpack:"action"`
	Options game.LobbyOptions `json:"options" msgpack:"options"`
}

type GameStartedMsg struct {
	Action string `json:"action" msgpack:"action"`
	Seed   string `json:"seed" msgpack:"seed"`
	Stake  int32  `json:"stake" msgpack:"stake"`
}

type StartBlindMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type GameStoppedMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type LoseGameMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type WinGameMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type ReceivePlayerJokersMsg struct {
	Action   string `json:"action" msgpack:"action"`
	PlayerID string `json:"player_id" msgpack:"player_id"`
	Jokers   string `json:"jokers" msgpack:"jokers"`
}

type ReceivePlayerDeckMsg struct {
	Action   string `json:"action" msgpack:"action"`
	PlayerID string `json:"player_id" msgpack:"player_id"`
	Deck     string `json:"deck" msgpack:"deck"`
}

type SetBossBlindMsg struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type EndPvpMsg struct {
	Action string `json:"action" msgpack:"action"`
	Won    bool   `json:"won" msgpack:"won"`
}

type GameStateUpdateMsg struct {
	Action    string               `json:"action" msgpack:"action"`
	PlayerID  string               `json:"player_id" msgpack:"player_id"`
	GameState game.ClientGameState `json:"game_state" msgpack:"game_state"`
}

type ResetPlayersMsg struct {
	Action  string                  `json:"action" msgpack:"action"`
	Players []game.ClientLobbyEntry `json:"players" msgpack:"players"`
}

type LobbyReadyMsg struct {
	Action      string          `json:"action" msgpack:"action"`
	ReadyStates map[string]bool `json:"ready_states" msgpack:"ready_states"`
}

type InGameStatusesMsg struct {
	Action   string          `json:"action" msgpack:"action"`
	Statuses map[string]bool `json:"statuses" msgpack:"statuses"`
}

type SendPhantomMsg struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type RemovePhantomMsg struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type AsteroidMsg struct {
	Action string `json:"action" msgpack:"action"`
	Sender string `json:"sender" msgpack:"sender"`
}

type LetsGoGamblingNemesisMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type EatPizzaMsg struct {
	Action   string `json:"action" msgpack:"action"`
	Discards uint8  `json:"discards" msgpack:"discards"`
}

type SoldJokerMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type SpentLastShopMsg struct {
	Action   string `json:"action" msgpack:"action"`
	PlayerID string `json:"player_id" msgpack:"player_id"`
	Amount   uint32 `json:"amount" msgpack:"amount"`
}

type StartAnteTimerMsg struct {
	Action string `json:"action" msgpack:"action"`
	Time   uint32 `json:"time" msgpack:"time"`
}

type PauseAnteTimerMsg struct {
	Action string `json:"action" msgpack:"action"`
	Time   uint32 `json:"time" msgpack:"time"`
}

type MagnetMsg struct {
	Action string `json:"action" msgpack:"action"`
}

type MagnetResponseMsg struct {
	Action string `json:"action" msgpack:"action"`
	Key    string `json:"key" msgpack:"key"`
}

type ReceivedMoneyMsg struct {
	Action string `json:"action" msgpack:"action"`
}

func (ConnectedMsg) isServerMessage()             {}
func (KeepAliveResponseMsg) isServerMessage()     {}
func (VersionOkMsg) isServerMessage()             {}
func (ErrorMsg) isServerMessage()                 {}
func (JoinedLobbyMsg) isServerMessage()           {}
func (PlayerJoinedLobbyMsg) isServerMessage()     {}
func (PlayerLeftLobbyMsg) isServerMessage()       {}
func (UpdateLobbyOptionsMsg) isServerMessage()    {}
func (GameStartedMsg) isServerMessage()           {}
func (StartBlindMsg) isServerMessage()            {}
func (GameStoppedMsg) isServerMessage()           {}
func (LoseGameMsg) isServerMessage()              {}
func (WinGameMsg) isServerMessage()               {}
func (ReceivePlayerJokersMsg) isServerMessage()   {}
func (ReceivePlayerDeckMsg) isServerMessage()     {}
func (SetBossBlindMsg) isServerMessage()          {}
func (EndPvpMsg) isServerMessage()                {}
func (GameStateUpdateMsg) isServerMessage()       {}
func (ResetPlayersMsg) isServerMessage()          {}
func (LobbyReadyMsg) isServerMessage()            {}
func (InGameStatusesMsg) isServerMessage()        {}
func (SendPhantomMsg) isServerMessage()           {}
func (RemovePhantomMsg) isServerMessage()         {}
func (AsteroidMsg) isServerMessage()              {}
func (LetsGoGamblingNemesisMsg) isServerMessage() {}
func (EatPizzaMsg) isServerMessage()              {}
func (SoldJokerMsg) isServerMessage()             {}
func (SpentLastShopMsg) isServerMessage()         {}
func (StartAnteTimerMsg) isServerMessage()        {}
func (PauseAnteTimerMsg) isServerMessage()        {}
func (MagnetMsg) isServerMessage()                {}
func (MagnetResponseMsg) isServerMessage()        {}
func (ReceivedMoneyMsg) isServerMessage()         {}

// Constructors. These are the only sanctioned way to build outbound
// messages; they stamp the discriminant.

func Connected(clientID string) ConnectedMsg {
	return ConnectedMsg{Action: MsgConnected, ClientID: clientID}
}

func KeepAliveResponse() KeepAliveResponseMsg {
	return KeepAliveResponseMsg{Action: MsgKeepAliveResponse}
}

func VersionOk() VersionOkMsg {
	return VersionOkMsg{Action: MsgVersionOk}
}

func Error(message string) ErrorMsg {
	return ErrorMsg{Action: MsgError, Message: message}
}

func JoinedLobby(playerID string, data LobbySnapshot) JoinedLobbyMsg {
	return JoinedLobbyMsg{Action: MsgJoinedLobby, PlayerID: playerID, LobbyData: data}
}

func PlayerJoinedLobby(player game.ClientLobbyEntry) PlayerJoinedLobbyMsg {
	return PlayerJoinedLobbyMsg{Action: MsgPlayerJoinedLobby, Player: player}
}

func PlayerLeftLobby(playerID, hostID string) PlayerLeftLobbyMsg {
	return PlayerLeftLobbyMsg{Action: MsgPlayerLeftLobby, PlayerID: playerID, HostID: hostID}
}

func UpdatedLobbyOptions(options game.LobbyOptions) UpdateLobbyOptionsMsg {
	return UpdateLobbyOptionsMsg{Action: MsgUpdateLobbyOptions, Options: options}
}

func GameStarted(seed string, stake int32) GameStartedMsg {
	return GameStartedMsg{Action: MsgGameStarted, Seed: seed, Stake: stake}
}

func StartBlind() StartBlindMsg {
	return StartBlindMsg{Action: MsgStartBlind}
}

func GameStopped() GameStoppedMsg {
	return GameStoppedMsg{Action: MsgGameStopped}
}

func LoseGame() LoseGameMsg {
	return LoseGameMsg{Action: MsgLoseGame}
}

func WinGame() WinGameMsg {
	return WinGameMsg{Action: MsgWinGame}
}

func ReceivePlayerJokers(playerID, jokers string) ReceivePlayerJokersMsg {
	return ReceivePlayerJokersMsg{Action: MsgReceivePlayerJokers, PlayerID: playerID, Jokers: jokers}
}

func ReceivePlayerDeck(playerID, deck string) ReceivePlayerDeckMsg {
	return ReceivePlayerDeckMsg{Action: MsgReceivePlayerDeck, PlayerID: playerID, Deck: deck}
}

func BossBlind(key string) SetBossBlindMsg {
	return SetBossBlindMsg{Action: MsgSetBossBlind, Key: key}
}

func EndPvp(won bool) EndPvpMsg {
	return EndPvpMsg{Action: MsgEndPvp, Won: won}
}

func GameStateUpdate(playerID string, state game.ClientGameState) GameStateUpdateMsg {
	return GameStateUpdateMsg{Action: MsgGameStateUpdate, PlayerID: playerID, GameState: state}
}

func ResetPlayers(players []game.ClientLobbyEntry) ResetPlayersMsg {
	return ResetPlayersMsg{Action: MsgResetPlayers, Players: players}
}

func LobbyReady(readyStates map[string]bool) LobbyReadyMsg {
	return LobbyReadyMsg{Action: MsgLobbyReady, ReadyStates: readyStates}
}

func InGameStatuses(statuses map[string]bool) InGameStatusesMsg {
	return InGameStatusesMsg{Action: MsgInGameStatuses, Statuses: statuses}
}

func PhantomSent(key string) SendPhantomMsg {
	return SendPhantomMsg{Action: MsgSendPhantom, Key: key}
}

func PhantomRemoved(key string) RemovePhantomMsg {
	return RemovePhantomMsg{Action: MsgRemovePhantom, Key: key}
}

func AsteroidFrom(sender string) AsteroidMsg {
	return AsteroidMsg{Action: MsgAsteroid, Sender: sender}
}

func NemesisGambling() LetsGoGamblingNemesisMsg {
	return LetsGoGamblingNemesisMsg{Action: MsgLetsGoGamblingNemesis}
}

func PizzaEaten(discards uint8) EatPizzaMsg {
	return EatPizzaMsg{Action: MsgEatPizza, Discards: discards}
}

func JokerSold() SoldJokerMsg {
	return SoldJokerMsg{Action: MsgSoldJoker}
}

func ShopSpend(playerID string, amount uint32) SpentLastShopMsg {
	return SpentLastShopMsg{Action: MsgSpentLastShop, PlayerID: playerID, Amount: amount}
}

func AnteTimerStarted(time uint32) StartAnteTimerMsg {
	return StartAnteTimerMsg{Action: MsgStartAnteTimer, Time: time}
}

func AnteTimerPaused(time uint32) PauseAnteTimerMsg {
	return PauseAnteTimerMsg{Action: MsgPauseAnteTimer, Time: time}
}

func MagnetPulse() MagnetMsg {
	return MagnetMsg{Action: MsgMagnet}
}

func MagnetReply(key string) MagnetResponseMsg {
	return MagnetResponseMsg{Action: MsgMagnetResponse, Key: key}
}

func MoneyReceived() ReceivedMoneyMsg {
	return ReceivedMoneyMsg{Action: MsgReceivedMoney}
}

// serializationFailed is the canned frame sent when encoding a message
// fails; building it cannot itself fail because the payload is static.
var serializationFailed = func() []byte {
	raw, err := msgpack.Marshal(Error("Serialization failed"))
	if err != nil {
		panic(fmt.Sprintf("encoding canned error frame: %v", err))
	}
	return raw
}()

// Encode serializes an outbound message. It never fails observably: if the
// value cannot be encoded the pre-encoded "Serialization failed" error
// frame is returned instead.
func Encode(msg ServerMessage) []byte {
	raw, err := msgpack.Marshal(msg)
	if err != nil {
		return serializationFailed
	}
	return raw
}

// DecodeServerMessage decodes an outbound frame back into its concrete
// type. The server never calls this; it exists for test clients and for
// protocol tooling.
func DecodeServerMessage(payload []byte) (ServerMessage, error) {
	var probe struct {
		Action string `msgpack:"action"`
	}
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	decode := func(dst interface{}) (ServerMessage, error) {
		if err := msgpack.Unmarshal(payload, dst); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, probe.Action, err)
		}
		return dst.(ServerMessage), nil
	}

	switch probe.Action {
	case MsgConnected:
		return decode(&ConnectedMsg{})
	case MsgKeepAliveResponse:
		return decode(&KeepAliveResponseMsg{})
	case MsgVersionOk:
		return decode(&VersionOkMsg{})
	case MsgError:
		return decode(&ErrorMsg{})
	case MsgJoinedLobby:
		return decode(&JoinedLobbyMsg{})
	case MsgPlayerJoinedLobby:
		return decode(&PlayerJoinedLobbyMsg{})
	case MsgPlayerLeftLobby:
		return decode(&PlayerLeftLobbyMsg{})
	case MsgUpdateLobbyOptions:
		return decode(&UpdateLobbyOptionsMsg{})
	case MsgGameStarted:
		return decode(&GameStartedMsg{})
	case MsgStartBlind:
		return decode(&StartBlindMsg{})
	case MsgGameStopped:
		return decode(&GameStoppedMsg{})
	case MsgLoseGame:
		return decode(&LoseGameMsg{})
	case MsgWinGame:
		return decode(&WinGameMsg{})
	case MsgReceivePlayerJokers:
		return decode(&ReceivePlayerJokersMsg{})
	case MsgReceivePlayerDeck:
		return decode(&ReceivePlayerDeckMsg{})
	case MsgSetBossBlind:
		return decode(&SetBossBlindMsg{})
	case MsgEndPvp:
		return decode(&EndPvpMsg{})
	case MsgGameStateUpdate:
		return decode(&GameStateUpdateMsg{})
	case MsgResetPlayers:
		return decode(&ResetPlayersMsg{})
	case MsgLobbyReady:
		return decode(&LobbyReadyMsg{})
	case MsgInGameStatuses:
		return decode(&InGameStatusesMsg{})
	case MsgSendPhantom:
		return decode(&SendPhantomMsg{})
	case MsgRemovePhantom:
		return decode(&RemovePhantomMsg{})
	case MsgAsteroid:
		return decode(&AsteroidMsg{})
	case MsgLetsGoGamblingNemesis:
		return decode(&LetsGoGamblingNemesisMsg{})
	case MsgEatPizza:
		return decode(&EatPizzaMsg{})
	case MsgSoldJoker:
		return decode(&SoldJokerMsg{})
	case MsgSpentLastShop:
		return decode(&SpentLastShopMsg{})
	case MsgStartAnteTimer:
		return decode(&StartAnteTimerMsg{})
	case MsgPauseAnteTimer:
		return decode(&PauseAnteTimerMsg{})
	case MsgMagnet:
		return decode(&MagnetMsg{})
	case MsgMagnetResponse:
		return decode(&MagnetResponseMsg{})
	case MsgReceivedMoney:
		return decode(&ReceivedMoneyMsg{})
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrMalformed, probe.Action)
	}
}
