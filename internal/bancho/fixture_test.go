package bancho

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/beatmap"
	"github.com/jeenyuhs/Ragnarok/internal/command"
	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/confirm"
	"github.com/jeenyuhs/Ragnarok/internal/game/dice"
	"github.com/jeenyuhs/Ragnarok/internal/game/match"
	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
	"github.com/jeenyuhs/Ragnarok/internal/storage/postgres"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeUsers struct {
	users map[string]postgres.User
	stats map[int32]session.Stats
}

func (f *fakeUsers) ByName(_ context.Context, name string) (postgres.User, error) {
	u, ok := f.users[session.SafeName(name)]
	if !ok {
		return postgres.User{}, postgres.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Stats(_ context.Context, id int32, mode mods.Mode) (session.Stats, error) {
	s := f.stats[id]
	if mode != mods.Osu {
		s.PlayCount = int32(mode) * 100
	}
	return s, nil
}

type fakeFriends struct {
	mu    sync.Mutex
	lists map[int32][]int32
}

func (f *fakeFriends) Friends(_ context.Context, userID int32) ([]int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32(nil), f.lists[userID]...), nil
}

func (f *fakeFriends) Add(_ context.Context, userID, friendID int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[userID] = append(f.lists[userID], friendID)
	return nil
}

func (f *fakeFriends) Remove(_ context.Context, userID, friendID int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []int32
	for _, id := range f.lists[userID] {
		if id != friendID {
			kept = append(kept, id)
		}
	}
	f.lists[userID] = kept
	return nil
}

// plainVerifier treats the stored hash as the digest itself.
type plainVerifier struct{}

func (plainVerifier) Verify(passwordMD5, hash string) bool { return passwordMD5 == hash }

type fakeBeatmaps map[string]beatmap.Beatmap

func (f fakeBeatmaps) ByMD5(_ context.Context, md5 string) (beatmap.Beatmap, error) {
	b, ok := f[md5]
	if !ok {
		return beatmap.Beatmap{}, beatmap.ErrNotFound
	}
	return b, nil
}

type fixture struct {
	srv      *Server
	sessions *session.Registry
	channels *channel.Registry
	matches  *match.Service
	broker   *confirm.Broker
	friends  *fakeFriends
	bot      *session.Player
	clock    time.Time
}

func account(id int32, name string, priv session.Privileges) postgres.User {
	return postgres.User{
		ID:         id,
		Name:       name,
		SafeName:   session.SafeName(name),
		Password:   "pw-" + name,
		Privileges: priv,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := session.NewRegistry()
	channels := channel.NewRegistry(sessions, zap.NewNop())
	channels.Seed([]channel.Options{
		{Name: "#osu", Topic: "General discussion.", Public: true, AutoJoin: true},
		{Name: "#lobby", Topic: "Multiplayer lobby.", Public: true},
		{Name: "#announce", Topic: "Announcements.", Public: true, ReadOnly: true, AutoJoin: true},
		{Name: "#staff", Topic: "Staff only.", Staff: true},
	})
	matches := match.NewService(match.NewRegistry(), sessions, channels, zap.NewNop())
	broker := confirm.NewBroker()
	cmds := command.NewExecutor(
		command.Options{Prefix: "!", ConfirmTimeout: time.Second},
		sessions, matches, broker,
		dice.NewRoller(dice.Fixed(42), zap.NewNop()),
		zap.NewNop(),
	)
	t.Cleanup(cmds.Stop)

	bot := session.NewBot(1, "Ragnarok", now)
	require.NoError(t, sessions.Register(bot))

	verified := session.Normal | session.Verified
	users := &fakeUsers{
		users: map[string]postgres.User{},
		stats: map[int32]session.Stats{2: {PP: 1200, Rank: 7, PlayCount: 50}},
	}
	for _, u := range []postgres.User{
		account(2, "alice", verified),
		account(3, "bob", verified),
		account(4, "staffer", verified|session.BAT),
		account(5, "shadow", session.Normal),
		account(6, "exiled", verified|session.Banned),
		account(7, "newbie", session.Normal|session.Pending),
	} {
		users.users[u.SafeName] = u
	}
	friends := &fakeFriends{lists: map[int32][]int32{2: {3}}}

	f := &fixture{
		sessions: sessions,
		channels: channels,
		matches:  matches,
		broker:   broker,
		friends:  friends,
		bot:      bot,
		clock:    now,
	}
	f.srv = NewServer(Config{MenuIcon: "https://example.com/icon.png|https://example.com", WelcomeMessage: "Welcome!"}, Deps{
		Sessions: sessions,
		Channels: channels,
		Matches:  matches,
		Commands: cmds,
		Confirm:  broker,
		Beatmaps: fakeBeatmaps{"abc": {MapID: 75, MD5: "abc", Artist: "Artist", Title: "Song", Version: "Insane"}},
		Users:    users,
		Friends:  friends,
		Verifier: plainVerifier{},
		Bot:      bot,
		Logger:   zap.NewNop(),
	})
	f.srv.now = func() time.Time { return f.clock }
	return f
}

func loginBody(name, password string) []byte {
	return []byte(name + "\n" + password + "\nb20240101|2|1|a:b:c:d:e:|0\n")
}

// login authenticates name and returns its session with an empty outbox.
func (f *fixture) login(t *testing.T, name string) *session.Player {
	t.Helper()
	token, out := f.srv.Login(context.Background(), loginBody(name, "pw-"+name), "127.0.0.1")
	require.NotEmpty(t, token, "login of %s failed", name)
	require.NotEmpty(t, out)
	p, ok := f.sessions.ByToken(token)
	require.True(t, ok)
	return p
}

// drainAll empties every outbox.
func (f *fixture) drainAll() {
	for _, p := range f.sessions.All() {
		p.Outbox.Drain()
	}
}

func (f *fixture) send(p *session.Player, pkts ...[]byte) []byte {
	return f.srv.Handle(context.Background(), p.Token, bytes.Join(pkts, nil))
}

func empty(op packet.Opcode) []byte { return packet.Frame(op, nil) }

func i32(op packet.Opcode, v int32) []byte { return packet.NewWriter().I32(v).Build(op) }

func str(op packet.Opcode, s string) []byte { return packet.NewWriter().String(s).Build(op) }

func ints(op packet.Opcode, vs ...int32) []byte { return packet.NewWriter().I32List(vs).Build(op) }

func chat(op packet.Opcode, target, text string) []byte {
	return packet.NewWriter().Message(packet.Message{Text: text, Target: target}).Build(op)
}

func decode(t *testing.T, b []byte) []packet.Packet {
	t.Helper()
	var out []packet.Packet
	for pkt, err := range packet.Decode(b).All() {
		require.NoError(t, err)
		out = append(out, pkt)
	}
	return out
}

func opcodes(t *testing.T, b []byte) []packet.Opcode {
	t.Helper()
	var out []packet.Opcode
	for _, pkt := range decode(t, b) {
		out = append(out, pkt.Opcode)
	}
	return out
}

func filter(t *testing.T, b []byte, op packet.Opcode) []*packet.Reader {
	t.Helper()
	var out []*packet.Reader
	for _, pkt := range decode(t, b) {
		if pkt.Opcode == op {
			out = append(out, pkt.Reader())
		}
	}
	return out
}

func notifications(t *testing.T, b []byte) []string {
	t.Helper()
	var out []string
	for _, r := range filter(t, b, packet.ChoNotification) {
		out = append(out, r.String())
	}
	return out
}

func messages(t *testing.T, b []byte) []packet.Message {
	t.Helper()
	var out []packet.Message
	for _, r := range filter(t, b, packet.ChoSendMessage) {
		out = append(out, r.Message())
	}
	return out
}

func userID(t *testing.T, b []byte) int32 {
	t.Helper()
	rs := filter(t, b, packet.ChoUserID)
	require.Len(t, rs, 1)
	return rs[0].I32()
}
