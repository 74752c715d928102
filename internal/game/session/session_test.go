package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestPlayer(id int32, name string) *Player {
	return NewPlayer(Identity{ID: id, Name: name, Privileges: Normal | Verified}, ClientInfo{}, epoch)
}

func opcodes(t *testing.T, b []byte) []packet.Opcode {
	t.Helper()
	var out []packet.Opcode
	for pkt, err := range packet.Decode(b).All() {
		require.NoError(t, err)
		out = append(out, pkt.Opcode)
	}
	return out
}

func TestOutbox_DrainClears(t *testing.T) {
	var o Outbox
	assert.Nil(t, o.Drain())

	o.Enqueue([]byte{1, 2})
	o.Enqueue(nil)
	o.Enqueue([]byte{3})
	assert.Equal(t, 3, o.Len())
	assert.Equal(t, []byte{1, 2, 3}, o.Drain())
	assert.Nil(t, o.Drain())
}

func TestOutbox_ConcurrentEnqueue(t *testing.T) {
	var o Outbox
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				o.Enqueue([]byte{0xAA})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, o.Drain(), 1000)
}

func TestOutbox_DrainPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chunks := rapid.SliceOf(rapid.SliceOfN(rapid.Byte(), 1, 8)).Draw(t, "chunks")
		var o Outbox
		var want []byte
		for _, c := range chunks {
			o.Enqueue(c)
			want = append(want, c...)
		}
		got := o.Drain()
		if len(want) == 0 {
			assert.Nil(t, got)
			return
		}
		assert.Equal(t, want, got)
	})
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "cookiezi_fan", SafeName("Cookiezi Fan"))
	assert.Equal(t, "abc", SafeName(" ABC "))
}

func TestPlayer_Predicates(t *testing.T) {
	p := newTestPlayer(3, "Alice")
	assert.False(t, p.Restricted())
	assert.False(t, p.Staff())

	p.SetPrivileges(Normal)
	assert.True(t, p.Restricted())

	p.SetPrivileges(Normal | Pending)
	assert.False(t, p.Restricted())

	p.SetPrivileges(Normal | Verified | BAT | Supporter | Admin)
	assert.True(t, p.Staff())
	assert.Equal(t, int32(1|4|8), p.ClientPrivileges())
}

func TestPlayer_NewPlayerDefaults(t *testing.T) {
	p := newTestPlayer(3, "Alice Bob")
	assert.Equal(t, "alice_bob", p.SafeName)
	assert.NotEmpty(t, p.Token)
	assert.Equal(t, NoMatch, p.MatchID())
	assert.Equal(t, epoch, p.LastSeen())
	assert.Empty(t, p.Channels())
}

func TestPlayer_BotDiscardsPackets(t *testing.T) {
	bot := NewBot(1, "Ragnarok", epoch)
	bot.Enqueue(packet.Pong())
	assert.Nil(t, bot.Outbox.Drain())
	assert.True(t, bot.Staff())
}

func TestPlayer_PresenceEncodesModeAndOffset(t *testing.T) {
	p := NewPlayer(Identity{ID: 9, Name: "Eve", Privileges: Normal | Verified}, ClientInfo{UTCOffset: -5}, epoch)
	p.SetStatus(Status{Mode: 3})
	pres := p.Presence()
	assert.Equal(t, uint8(19), pres.UTCOffset)
	assert.Equal(t, uint8(3), pres.Mode)
	assert.Equal(t, []packet.Opcode{packet.ChoUserPresence, packet.ChoUserStats}, opcodes(t, p.PresencePackets()))
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	alice := newTestPlayer(3, "Alice")
	require.NoError(t, r.Register(alice))

	got, ok := r.ByID(3)
	require.True(t, ok)
	assert.Same(t, alice, got)

	got, ok = r.ByToken(alice.Token)
	require.True(t, ok)
	assert.Same(t, alice, got)

	got, ok = r.ByName("alice")
	require.True(t, ok)
	assert.Same(t, alice, got)

	_, ok = r.ByName("bob")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newTestPlayer(3, "Alice")))
	err := r.Register(newTestPlayer(3, "Alice"))
	assert.ErrorIs(t, err, ErrAlreadyOnline)
}

func TestRegistry_RemoveAnnouncesLogout(t *testing.T) {
	r := NewRegistry()
	alice := newTestPlayer(3, "Alice")
	bob := newTestPlayer(4, "Bob")
	require.NoError(t, r.Register(alice))
	require.NoError(t, r.Register(bob))

	assert.True(t, r.Remove(alice))
	assert.False(t, r.Remove(alice))

	assert.Equal(t, []packet.Opcode{packet.ChoUserLogout}, opcodes(t, bob.Outbox.Drain()))
	assert.Nil(t, alice.Outbox.Drain())
	_, ok := r.ByToken(alice.Token)
	assert.False(t, ok)
}

func TestRegistry_BroadcastExcludes(t *testing.T) {
	r := NewRegistry()
	players := make([]*Player, 0, 4)
	for i := int32(1); i <= 4; i++ {
		p := newTestPlayer(i, fmt.Sprintf("p%d", i))
		require.NoError(t, r.Register(p))
		players = append(players, p)
	}

	r.Broadcast(packet.Pong(), 2, 4)
	assert.NotNil(t, players[0].Outbox.Drain())
	assert.Nil(t, players[1].Outbox.Drain())
	assert.NotNil(t, players[2].Outbox.Drain())
	assert.Nil(t, players[3].Outbox.Drain())

	assert.True(t, r.Enqueue(1, packet.Pong()))
	assert.False(t, r.Enqueue(99, packet.Pong()))
	assert.Equal(t, 4, r.Count())
}

func TestRegistry_TouchAndExpired(t *testing.T) {
	r := NewRegistry()
	alice := newTestPlayer(3, "Alice")
	bob := newTestPlayer(4, "Bob")
	bot := NewBot(1, "Ragnarok", epoch)
	require.NoError(t, r.Register(alice))
	require.NoError(t, r.Register(bob))
	require.NoError(t, r.Register(bot))

	assert.True(t, r.Touch(bob.Token, epoch.Add(50*time.Second)))
	assert.False(t, r.Touch("nope", epoch))

	expired := r.Expired(epoch.Add(61*time.Second), time.Minute)
	require.Len(t, expired, 1)
	assert.Same(t, alice, expired[0])
}

func TestSweeper_LogsOutExpired(t *testing.T) {
	r := NewRegistry()
	alice := newTestPlayer(3, "Alice")
	require.NoError(t, r.Register(alice))

	var out []*Player
	s := NewSweeper(r, time.Second, time.Minute, func(p *Player) {
		out = append(out, p)
		r.Remove(p)
	}, zap.NewNop())
	s.now = func() time.Time { return epoch.Add(2 * time.Minute) }

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, []*Player{alice}, out)
	assert.Equal(t, 0, s.Sweep())
}

func TestSweeper_StopEndsStart(t *testing.T) {
	s := NewSweeper(NewRegistry(), time.Millisecond, time.Minute, func(*Player) {}, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	s.Stop()
	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSpectate_JoinAndLeave(t *testing.T) {
	r := NewRegistry()
	host := newTestPlayer(1, "Host")
	first := newTestPlayer(2, "First")
	second := newTestPlayer(3, "Second")
	for _, p := range []*Player{host, first, second} {
		require.NoError(t, r.Register(p))
	}

	require.True(t, r.StartSpectating(host, first))
	assert.False(t, r.StartSpectating(host, first))
	require.True(t, r.StartSpectating(host, second))

	assert.Equal(t, []int32{2, 3}, host.Spectators())
	assert.Equal(t, int32(1), second.Spectating())
	assert.Equal(t, []packet.Opcode{packet.ChoSpectatorJoined, packet.ChoSpectatorJoined}, opcodes(t, host.Outbox.Drain()))
	assert.Equal(t, []packet.Opcode{packet.ChoFellowSpectatorJoined}, opcodes(t, first.Outbox.Drain()))
	assert.Equal(t, []packet.Opcode{packet.ChoFellowSpectatorJoined}, opcodes(t, second.Outbox.Drain()))

	r.RelayFrames(host, []byte{1, 2, 3})
	assert.Equal(t, []packet.Opcode{packet.ChoSpectateFrames}, opcodes(t, first.Outbox.Drain()))
	assert.Equal(t, []packet.Opcode{packet.ChoSpectateFrames}, opcodes(t, second.Outbox.Drain()))

	require.True(t, r.StopSpectating(first))
	assert.False(t, r.StopSpectating(first))
	assert.Equal(t, []int32{3}, host.Spectators())
	assert.Equal(t, []packet.Opcode{packet.ChoSpectatorLeft}, opcodes(t, host.Outbox.Drain()))
	assert.Equal(t, []packet.Opcode{packet.ChoFellowSpectatorLeft}, opcodes(t, second.Outbox.Drain()))
}

func TestSpectate_AtMostOneTarget(t *testing.T) {
	r := NewRegistry()
	a := newTestPlayer(1, "A")
	b := newTestPlayer(2, "B")
	watcher := newTestPlayer(3, "W")
	for _, p := range []*Player{a, b, watcher} {
		require.NoError(t, r.Register(p))
	}

	require.True(t, r.StartSpectating(a, watcher))
	require.True(t, r.StartSpectating(b, watcher))
	assert.Empty(t, a.Spectators())
	assert.Equal(t, []int32{3}, b.Spectators())
	assert.Equal(t, int32(2), watcher.Spectating())
	assert.False(t, r.StartSpectating(watcher, watcher))
}

func TestSpectate_DetachOnLogout(t *testing.T) {
	r := NewRegistry()
	host := newTestPlayer(1, "Host")
	w := newTestPlayer(2, "W")
	require.NoError(t, r.Register(host))
	require.NoError(t, r.Register(w))
	require.True(t, r.StartSpectating(host, w))

	r.DetachSpectators(host)
	assert.Empty(t, host.Spectators())
	assert.Zero(t, w.Spectating())
}

func TestPlayer_ClaimMatchIsExclusive(t *testing.T) {
	p := newTestPlayer(3, "Alice")
	require.True(t, p.ClaimMatch(4))
	assert.False(t, p.ClaimMatch(5))
	assert.Equal(t, int32(4), p.MatchID())

	p.ReleaseMatch(5)
	assert.Equal(t, int32(4), p.MatchID(), "releasing a different match is a no-op")
	p.ReleaseMatch(4)
	assert.Equal(t, NoMatch, p.MatchID())

	var wg sync.WaitGroup
	var won sync.Map
	for i := int32(1); i <= 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.ClaimMatch(i) {
				won.Store(i, true)
			}
		}()
	}
	wg.Wait()
	n := 0
	won.Range(func(any, any) bool { n++; return true })
	assert.Equal(t, 1, n)
}

func TestParseRole(t *testing.T) {
	priv, err := ParseRole("staff")
	require.NoError(t, err)
	p := NewPlayer(Identity{ID: 9, Name: "mod", Privileges: priv}, ClientInfo{}, epoch)
	assert.True(t, p.Staff())
	assert.False(t, p.Restricted())

	priv, err = ParseRole("restricted")
	require.NoError(t, err)
	p = NewPlayer(Identity{ID: 10, Name: "quiet", Privileges: priv}, ClientInfo{}, epoch)
	assert.True(t, p.Restricted())

	_, err = ParseRole("overlord")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player")
}

func TestRoleNamesSorted(t *testing.T) {
	names := RoleNames()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
