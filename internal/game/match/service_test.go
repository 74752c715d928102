package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

type fixture struct {
	sessions *session.Registry
	channels *channel.Registry
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := session.NewRegistry()
	channels := channel.NewRegistry(sessions, zap.NewNop())
	return &fixture{
		sessions: sessions,
		channels: channels,
		svc:      NewService(NewRegistry(), sessions, channels, zap.NewNop()),
	}
}

func (f *fixture) login(t *testing.T, id int32, name string) *session.Player {
	t.Helper()
	p := session.NewPlayer(session.Identity{ID: id, Name: name, Privileges: session.Normal | session.Verified}, session.ClientInfo{}, time.Now())
	require.NoError(t, f.sessions.Register(p))
	return p
}

func (f *fixture) watcher(t *testing.T, id int32) *session.Player {
	t.Helper()
	p := f.login(t, id, "watcher")
	require.True(t, f.channels.Join(p, f.channels.Lobby()))
	p.Outbox.Drain()
	return p
}

func TestService_CreateJoinLeaveLifecycle(t *testing.T) {
	f := newFixture(t)
	lobby := f.watcher(t, 99)
	host := f.login(t, hostID, "Host")
	bob := f.login(t, bobID, "Bob")

	m := f.svc.Create(host, packet.MatchState{Name: "room"})
	require.NotNil(t, m)
	assert.Equal(t, int32(1), m.ID)
	assert.Equal(t, m.ID, host.MatchID())
	assert.Contains(t, ops(t, host.Outbox.Drain()), packet.ChoMatchJoinSuccess)
	assert.Equal(t, []packet.Opcode{packet.ChoNewMatch, packet.ChoUpdateMatch}, ops(t, lobby.Outbox.Drain()))

	chat, ok := f.channels.Get("#multi_1")
	require.True(t, ok)
	assert.True(t, chat.Has(hostID))

	require.True(t, f.svc.Join(bob, m.ID, ""))
	assert.True(t, chat.Has(bobID))
	assert.True(t, bob.InChannel("#multi_1"))
	assert.Contains(t, ops(t, host.Outbox.Drain()), packet.ChoUpdateMatch)
	bob.Outbox.Drain()

	assert.Nil(t, f.svc.Create(bob, packet.MatchState{Name: "second"}))
	assert.Equal(t, []packet.Opcode{packet.ChoMatchJoinFail}, ops(t, bob.Outbox.Drain()))

	require.True(t, f.svc.Leave(host))
	assert.Equal(t, session.NoMatch, host.MatchID())
	assert.False(t, host.InChannel("#multi_1"))
	assert.Equal(t, bobID, m.Host())
	assert.Contains(t, ops(t, bob.Outbox.Drain()), packet.ChoMatchTransferHost)

	lobby.Outbox.Drain()
	require.True(t, f.svc.Leave(bob))
	assert.Contains(t, ops(t, lobby.Outbox.Drain()), packet.ChoDisposeMatch)
	assert.Zero(t, f.svc.Matches().Count())
	_, ok = f.channels.Get("#multi_1")
	assert.False(t, ok)

	assert.False(t, f.svc.Join(host, m.ID, ""))
	assert.Equal(t, session.NoMatch, host.MatchID())
}

func TestService_JoinFailures(t *testing.T) {
	f := newFixture(t)
	host := f.login(t, hostID, "Host")
	bob := f.login(t, bobID, "Bob")
	m := f.svc.Create(host, packet.MatchState{Name: "room", Password: "pw"})
	require.NotNil(t, m)

	assert.False(t, f.svc.Join(bob, m.ID, "nope"))
	assert.Equal(t, []packet.Opcode{packet.ChoMatchJoinFail}, ops(t, bob.Outbox.Drain()))
	assert.Equal(t, session.NoMatch, bob.MatchID())
	assert.False(t, bob.InChannel(m.Chat))

	assert.False(t, f.svc.Join(bob, 404, "pw"))
	assert.Equal(t, []packet.Opcode{packet.ChoMatchJoinFail}, ops(t, bob.Outbox.Drain()))

	assert.False(t, f.svc.Join(host, m.ID, "pw"), "already seated")
}

func TestService_LowestFreeID(t *testing.T) {
	f := newFixture(t)
	var ms []*Match
	for i := int32(0); i < 3; i++ {
		m := f.svc.Create(f.login(t, hostID+i, "p"), packet.MatchState{Name: "room"})
		require.NotNil(t, m)
		ms = append(ms, m)
	}
	assert.Equal(t, []int32{1, 2, 3}, []int32{ms[0].ID, ms[1].ID, ms[2].ID})

	p, ok := f.sessions.ByID(hostID + 1)
	require.True(t, ok)
	require.True(t, f.svc.Leave(p))

	m := f.svc.Create(f.login(t, 50, "late"), packet.MatchState{Name: "room"})
	require.NotNil(t, m)
	assert.Equal(t, int32(2), m.ID)
}

func TestService_JoinLobbyListsPopulatedMatches(t *testing.T) {
	f := newFixture(t)
	host := f.login(t, hostID, "Host")
	require.NotNil(t, f.svc.Create(host, packet.MatchState{Name: "room", Password: "pw"}))

	bob := f.login(t, bobID, "Bob")
	f.svc.JoinLobby(bob)
	assert.True(t, bob.InLobby())
	pkts := bob.Outbox.Drain()
	assert.Equal(t, []packet.Opcode{packet.ChoNewMatch}, ops(t, pkts))

	f.svc.PartLobby(bob)
	assert.False(t, bob.InLobby())

	f.svc.JoinLobby(host)
	assert.Equal(t, session.NoMatch, host.MatchID(), "entering the lobby leaves the match")
}

func TestService_Invite(t *testing.T) {
	f := newFixture(t)
	host := f.login(t, hostID, "Host")
	bob := f.login(t, bobID, "Bob")
	assert.False(t, f.svc.Invite(host, bob))

	require.NotNil(t, f.svc.Create(host, packet.MatchState{Name: "my room", Password: "p w"}))
	require.True(t, f.svc.Invite(host, bob))
	pkt, ok, err := packet.Decode(bob.Outbox.Drain()).Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, packet.ChoMatchInvite, pkt.Opcode)
	msg := pkt.Reader().Message()
	assert.Equal(t, "Come join my multiplayer match: [osump://1/p_w my room]", msg.Text)
	assert.Equal(t, "Host", msg.Sender)
}
