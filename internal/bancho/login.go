package bancho

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
	"github.com/jeenyuhs/Ragnarok/internal/storage/postgres"
)

// Login results carried in place of a user id.
const (
	loginFailed   int32 = -1
	loginOutdated int32 = -2
	loginBanned   int32 = -3
)

const (
	alreadyOnlineNotice = "You're already online on the server!"
	restrictedNotice    = "Your account has been set in restricted mode."
)

// credentials is the parsed login body.
type credentials struct {
	name        string
	passwordMD5 string
	client      session.ClientInfo
	hashes      string
}

// parseLogin splits a login body of the form
//
//	name\npassword-md5\nversion|utc-offset|show-city|client-hashes|block-dms\n
//
// It returns false when the name or password line is missing. A missing or
// short client-info line leaves the client fields empty.
func parseLogin(body []byte) (credentials, bool) {
	lines := strings.Split(string(body), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	if len(lines) < 2 || strings.TrimSpace(lines[0]) == "" || lines[1] == "" {
		return credentials{}, false
	}

	c := credentials{name: strings.TrimSpace(lines[0]), passwordMD5: lines[1]}
	if len(lines) < 3 {
		return c, true
	}
	info := strings.Split(lines[2], "|")
	c.client.Version = info[0]
	if len(info) > 1 {
		if off, err := strconv.Atoi(info[1]); err == nil && off >= -24 && off <= 24 {
			c.client.UTCOffset = int8(off)
		}
	}
	if len(info) > 3 {
		c.hashes = info[3]
	}
	if len(info) > 4 {
		c.client.BlockNonFriendDMs = info[4] == "1"
	}
	return c, true
}

// validClientHashes reports whether the colon separated client hash field
// carries at least four parts. Old clients send fewer.
func validClientHashes(h string) bool {
	return len(strings.Split(h, ":")) >= 4
}

// Login authenticates a login body and registers the session.
//
// Postcondition: On success returns the new session token and the full
// greeting. On failure returns an empty token and a user-id packet carrying
// the failure code, possibly preceded by a notification.
func (s *Server) Login(ctx context.Context, body []byte, ip string) (string, []byte) {
	start := s.now()

	c, ok := parseLogin(body)
	if !ok {
		s.logger.Debug("login refused", zap.String("reason", "malformed body"), zap.String("ip", ip))
		return "", packet.UserID(loginFailed)
	}
	if s.users == nil || s.verifier == nil {
		s.logger.Info("login refused", zap.String("reason", "no user store"), zap.String("name", c.name))
		return "", packet.UserID(loginFailed)
	}

	u, err := s.users.ByName(ctx, c.name)
	if err != nil {
		if !errors.Is(err, postgres.ErrUserNotFound) {
			s.logger.Error("loading user", zap.String("name", c.name), zap.Error(err))
		}
		return "", packet.UserID(loginFailed)
	}
	if !s.verifier.Verify(c.passwordMD5, u.Password) {
		s.logger.Warn("login refused", zap.String("reason", "wrong password"), zap.String("name", u.Name), zap.Int32("id", u.ID))
		return "", packet.UserID(loginFailed)
	}
	if _, online := s.sessions.ByID(u.ID); online {
		return "", append(packet.Notification(alreadyOnlineNotice), packet.UserID(loginFailed)...)
	}
	if !validClientHashes(c.hashes) {
		s.logger.Info("login refused", zap.String("reason", "outdated client"), zap.String("name", u.Name))
		return "", packet.UserID(loginOutdated)
	}
	if u.Privileges&session.Banned != 0 {
		s.logger.Info("login refused", zap.String("reason", "banned"), zap.String("name", u.Name))
		return "", packet.UserID(loginBanned)
	}

	c.client.IP = ip
	p := session.NewPlayer(u.Identity(), c.client, start)
	stats, err := s.users.Stats(ctx, u.ID, mods.Osu)
	if err != nil {
		s.logger.Warn("loading stats", zap.String("player", p.Name), zap.Error(err))
	}
	p.SetStats(stats)
	if s.friends != nil {
		ids, err := s.friends.Friends(ctx, u.ID)
		if err != nil {
			s.logger.Warn("loading friends", zap.String("player", p.Name), zap.Error(err))
		}
		p.SetFriends(ids)
	}

	p.Enqueue(packet.ProtocolNegotiation())
	if p.Restricted() {
		p.Enqueue(packet.Notification(restrictedNotice))
	}
	p.Enqueue(packet.UserID(p.ID))
	p.Enqueue(packet.Privileges(p.ClientPrivileges()))
	if s.cfg.MenuIcon != "" {
		p.Enqueue(packet.MainMenuIcon(s.cfg.MenuIcon))
	}
	p.Enqueue(packet.FriendsList(p.Friends()))
	p.Enqueue(p.PresencePackets())

	if err := s.sessions.Register(p); err != nil {
		if errors.Is(err, session.ErrAlreadyOnline) {
			return "", append(packet.Notification(alreadyOnlineNotice), packet.UserID(loginFailed)...)
		}
		s.logger.Error("registering session", zap.String("player", p.Name), zap.Error(err))
		return "", packet.UserID(loginFailed)
	}

	s.joinChannels(p)
	s.exchangePresence(p)
	p.Enqueue(packet.ChannelInfoEnd())

	took := float64(s.now().Sub(start).Microseconds()) / 1000
	p.Enqueue(packet.Notification(fmt.Sprintf("%s\nAuthorization took %.2fms.", s.cfg.WelcomeMessage, took)))

	s.logger.Info("login",
		zap.String("player", p.Name),
		zap.Int32("id", p.ID),
		zap.String("version", p.Version),
		zap.String("ip", ip),
	)
	return p.Token, p.Outbox.Drain()
}

// joinChannels lists the public channels, joining the auto-join ones, and
// joins staff channels for staff.
func (s *Server) joinChannels(p *session.Player) {
	for _, c := range s.channels.All() {
		switch {
		case c.IsMatch() || c.IsDirect():
		case c.Public:
			p.Enqueue(c.Info())
			if c.AutoJoin {
				p.Enqueue(c.AutoJoinInfo())
				s.channels.Join(p, c)
			}
		case c.Staff && p.Staff():
			p.Enqueue(c.Info())
			s.channels.Join(p, c)
		}
	}
}

// exchangePresence sends p every visible peer and, unless p is restricted,
// sends p to every peer. Restricted players are left out of rosters.
func (s *Server) exchangePresence(p *session.Player) {
	mine := p.PresencePackets()
	for _, peer := range s.sessions.All() {
		if peer.ID == p.ID {
			continue
		}
		if !p.Restricted() {
			peer.Enqueue(mine)
		}
		if !peer.Restricted() {
			p.Enqueue(peer.PresencePackets())
		}
	}
}
