// internal/server/server_test.go
package server

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitten/cardshark/internal/coordinator"
	"github.com/mwhitten/cardshark/internal/game"
	"github.com/mwhitten/cardshark/internal/protocol"
)

// startServer boots a coordinator and game listener on an ephemeral port.
func startServer(t *testing.T) net.Addr {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	coord := coordinator.New(logger)
	go coord.Run(ctx)

	srv := New(logger, coord.Inbox())
	ln, err := srv.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ctx, ln)

	return ln.Addr()
}

// testClient is a minimal game client speaking the framed protocol.
type testClient struct {
	t    *testing.T
	conn net.Conn
	id   string
}

func dialClient(t *testing.T, addr net.Addr) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &testClient{t: t, conn: conn}
	connected := expect[protocol.ConnectedMsg](c)
	require.NotEmpty(t, connected.ClientID)
	c.id = connected.ClientID
	return c
}

func (c *testClient) sendAction(action protocol.ClientAction) {
	c.t.Helper()
	payload, err := protocol.EncodeAction(action)
	require.NoError(c.t, err)
	require.NoError(c.t, protocol.WriteFrame(c.conn, payload))
}

func (c *testClient) read() protocol.ServerMessage {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	payload, err := protocol.ReadFrame(c.conn)
	require.NoError(c.t, err)
	msg, err := protocol.DecodeServerMessage(payload)
	require.NoError(c.t, err)
	return msg
}

// expect reads frames until one decodes to type M, discarding unrelated
// broadcasts along the way.
func expect[M protocol.ServerMessage](c *testClient) *M {
	c.t.Helper()
	for i := 0; i < 16; i++ {
		if msg, ok := any(c.read()).(*M); ok {
			return msg
		}
	}
	c.t.Fatalf("never received expected message type")
	return nil
}

func TestConnectHandshake(t *testing.T) {
	addr := startServer(t)
	c := dialClient(t, addr)

	c.sendAction(&protocol.KeepAlive{Action: protocol.ActionKeepAlive})
	expect[protocol.KeepAliveResponseMsg](c)

	c.sendAction(&protocol.Version{Action: protocol.ActionVersion, Version: "0.2.7"})
	expect[protocol.VersionOkMsg](c)
}

func TestEmptyFrameIsRecoverable(t *testing.T) {
	addr := startServer(t)
	c := dialClient(t, addr)

	// A zero-length frame earns an error but keeps the connection.
	var header [4]byte
	_, err := c.conn.Write(header[:])
	require.NoError(t, err)

	errMsg := expect[protocol.ErrorMsg](c)
	assert.Equal(t, "Empty message", errMsg.Message)

	c.sendAction(&protocol.KeepAlive{Action: protocol.ActionKeepAlive})
	expect[protocol.KeepAliveResponseMsg](c)
}

func TestMalformedPayloadIsRecoverable(t *testing.T) {
	addr := startServer(t)
	c := dialClient(t, addr)

	require.NoError(t, protocol.WriteFrame(c.conn, []byte{0xc1, 0x00, 0x01}))
	errMsg := expect[protocol.ErrorMsg](c)
	assert.Equal(t, "Malformed message", errMsg.Message)

	c.sendAction(&protocol.KeepAlive{Action: protocol.ActionKeepAlive})
	expect[protocol.KeepAliveResponseMsg](c)
}

func TestOversizedFrameClosesConnection(t *testing.T) {
	addr := startServer(t)
	c := dialClient(t, addr)

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], protocol.MaxFrameSize+1)
	_, err := c.conn.Write(header[:])
	require.NoError(t, err)

	errMsg := expect[protocol.ErrorMsg](c)
	assert.Equal(t, "Message too large", errMsg.Message)

	// The stream position is untrusted now; the server hangs up.
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = protocol.ReadFrame(c.conn)
	assert.Error(t, err)
}

func TestActionOutsideLobbyRejected(t *testing.T) {
	addr := startServer(t)
	c := dialClient(t, addr)

	c.sendAction(&protocol.SetReady{Action: protocol.ActionSetReady, IsReady: true})
	errMsg := expect[protocol.ErrorMsg](c)
	assert.Equal(t, "Not in a lobby", errMsg.Message)
}

func TestCreateAndJoinLobbyEndToEnd(t *testing.T) {
	addr := startServer(t)

	host := dialClient(t, addr)
	host.sendAction(&protocol.SetClientData{
		Action:   protocol.ActionSetClientData,
		Username: "Host",
		Colour:   3,
		ModHash:  "abc123",
	})
	host.sendAction(&protocol.CreateLobby{
		Action:   protocol.ActionCreateLobby,
		Ruleset:  "ruleset_mp_standard",
		GameMode: game.ModeAttrition,
	})

	joined := expect[protocol.JoinedLobbyMsg](host)
	require.Len(t, joined.LobbyData.Code, 5)
	assert.Equal(t, host.id, joined.PlayerID)
	assert.Equal(t, "Host", joined.LobbyData.Players[host.id].Profile.Username)

	guest := dialClient(t, addr)
	guest.sendAction(&protocol.JoinLobby{Action: protocol.ActionJoinLobby, Code: joined.LobbyData.Code})

	guestJoined := expect[protocol.JoinedLobbyMsg](guest)
	assert.Equal(t, joined.LobbyData.Code, guestJoined.LobbyData.Code)
	assert.Len(t, guestJoined.LobbyData.Players, 2)

	notify := expect[protocol.PlayerJoinedLobbyMsg](host)
	assert.Equal(t, guest.id, notify.Player.Profile.ID)
}

func TestJoinUnknownCodeEndToEnd(t *testing.T) {
	addr := startServer(t)
	c := dialClient(t, addr)

	c.sendAction(&protocol.JoinLobby{Action: protocol.ActionJoinLobby, Code: "NOPEZ"})
	errMsg := expect[protocol.ErrorMsg](c)
	assert.Equal(t, "Lobby not found", errMsg.Message)
}

func TestDisconnectPromotesNewHost(t *testing.T) {
	addr := startServer(t)

	host := dialClient(t, addr)
	host.sendAction(&protocol.CreateLobby{
		Action:   protocol.ActionCreateLobby,
		GameMode: game.ModeSurvival,
	})
	joined := expect[protocol.JoinedLobbyMsg](host)

	guest := dialClient(t, addr)
	guest.sendAction(&protocol.JoinLobby{Action: protocol.ActionJoinLobby, Code: joined.LobbyData.Code})
	expect[protocol.JoinedLobbyMsg](guest)

	host.conn.Close()

	left := expect[protocol.PlayerLeftLobbyMsg](guest)
	assert.Equal(t, host.id, left.PlayerID)
	assert.Equal(t, guest.id, left.HostID, "sole remaining player becomes host")
}
