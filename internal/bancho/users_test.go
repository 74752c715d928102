package bancho

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

func changeAction(action session.Action, text string, mode mods.Mode) []byte {
	return packet.NewWriter().
		U8(uint8(action)).String(text).String("abc").U32(uint32(mods.Hidden)).U8(uint8(mode)).I32(75).
		Build(packet.OsuChangeAction)
}

func TestChangeAction_BroadcastsStats(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")
	f.drainAll()

	out := f.send(alice, changeAction(session.Action(2), "Song [Insane]", mods.Osu))
	require.Len(t, filter(t, out, packet.ChoUserStats), 1)

	rs := filter(t, bob.Outbox.Drain(), packet.ChoUserStats)
	require.Len(t, rs, 1)
	assert.Equal(t, alice.ID, rs[0].I32())

	st := alice.Status()
	assert.Equal(t, "Song [Insane]", st.Text)
	assert.Equal(t, mods.Hidden, st.Mods)
	assert.Equal(t, int32(75), st.BeatmapID)
	assert.Equal(t, int16(1200), alice.Stats().PP)
}

func TestChangeAction_ModeReloadsStats(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")

	f.send(alice, changeAction(session.Idle, "", mods.Mania))
	assert.Equal(t, mods.Mania, alice.Status().Mode)
	assert.Equal(t, int32(300), alice.Stats().PlayCount)
}

func TestChangeAction_RestrictedStaysPrivate(t *testing.T) {
	f := newFixture(t)
	shadow := f.login(t, "shadow")
	bob := f.login(t, "bob")
	f.drainAll()

	out := f.send(shadow, changeAction(session.Idle, "", mods.Osu))
	assert.Len(t, filter(t, out, packet.ChoUserStats), 1)
	assert.Empty(t, filter(t, bob.Outbox.Drain(), packet.ChoUserStats))
}

func TestStatusUpdate(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	rs := filter(t, f.send(alice, empty(packet.OsuRequestStatusUpdate)), packet.ChoUserStats)
	require.Len(t, rs, 1)
	assert.Equal(t, alice.ID, rs[0].I32())
}

func TestStatsRequest(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")
	f.login(t, "shadow")
	f.drainAll()

	out := f.send(alice, ints(packet.OsuUserStatsRequest, alice.ID, bob.ID, 5, 99))
	rs := filter(t, out, packet.ChoUserStats)
	require.Len(t, rs, 1)
	assert.Equal(t, bob.ID, rs[0].I32())
	assert.Empty(t, bob.Outbox.Drain())
}

func TestStatsRequest_TooMany(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	f.login(t, "bob")
	f.drainAll()

	ids := make([]int32, maxStatsRequest+1)
	for i := range ids {
		ids[i] = 3
	}
	assert.Empty(t, f.send(alice, ints(packet.OsuUserStatsRequest, ids...)))
}

func TestPresenceRequests(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")
	f.drainAll()

	rs := filter(t, f.send(alice, ints(packet.OsuUserPresenceRequest, bob.ID)), packet.ChoUserPresence)
	require.Len(t, rs, 1)
	assert.Equal(t, bob.ID, rs[0].I32())

	var ids []int32
	for _, r := range filter(t, f.send(alice, empty(packet.OsuUserPresenceRequestAll)), packet.ChoUserPresence) {
		ids = append(ids, r.I32())
	}
	assert.ElementsMatch(t, []int32{f.bot.ID, bob.ID}, ids)
}

func TestFriends_AddAndRemove(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")

	f.send(alice, i32(packet.OsuFriendAdd, 4))
	assert.True(t, alice.IsFriend(4))
	ids, err := f.friends.Friends(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, ids)

	f.send(alice, i32(packet.OsuFriendAdd, 4))
	ids, _ = f.friends.Friends(context.Background(), alice.ID)
	assert.Equal(t, []int32{3, 4}, ids, "adding twice is a no-op")

	f.send(alice, i32(packet.OsuFriendRemove, 3))
	assert.False(t, alice.IsFriend(3))
	ids, _ = f.friends.Friends(context.Background(), alice.ID)
	assert.Equal(t, []int32{4}, ids)
}

func TestFriends_InMemoryWithoutStore(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	f.srv.friends = nil

	f.send(alice, i32(packet.OsuFriendAdd, 9))
	assert.True(t, alice.IsFriend(9))
	f.send(alice, i32(packet.OsuFriendAdd, alice.ID))
	assert.False(t, alice.IsFriend(alice.ID))
}

func TestSpectating(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")
	f.drainAll()

	f.send(bob, i32(packet.OsuStartSpectating, alice.ID))
	assert.Equal(t, alice.ID, bob.Spectating())
	assert.Contains(t, opcodes(t, alice.Outbox.Drain()), packet.ChoSpectatorJoined)

	f.send(alice, packet.Frame(packet.OsuSpectateFrames, []byte{1, 2, 3}))
	frames := filter(t, bob.Outbox.Drain(), packet.ChoSpectateFrames)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{1, 2, 3}, frames[0].Raw())

	f.send(bob, empty(packet.OsuCantSpectate))
	assert.Contains(t, opcodes(t, alice.Outbox.Drain()), packet.ChoSpectatorCantSpectate)

	f.send(bob, empty(packet.OsuStopSpectating))
	assert.Equal(t, int32(0), bob.Spectating())

	f.send(bob, i32(packet.OsuStartSpectating, f.bot.ID))
	assert.Equal(t, int32(0), bob.Spectating())
}
