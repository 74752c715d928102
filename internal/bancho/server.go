// Package bancho runs the request cycle of the osu! chat and multiplayer
// server: it authenticates logins, decodes the packet stream a client
// polls with, and dispatches each packet to its handler.
package bancho

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/beatmap"
	"github.com/jeenyuhs/Ragnarok/internal/command"
	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/confirm"
	"github.com/jeenyuhs/Ragnarok/internal/game/match"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// DefaultLogoutGrace is how long after login a logout packet is ignored.
// Clients send a stray logout when they reconnect.
const DefaultLogoutGrace = time.Second

// Config holds the presentation settings of a Server.
type Config struct {
	MenuIcon       string
	WelcomeMessage string
	LogoutGrace    time.Duration
}

// Deps are the collaborators of a Server. Users, Friends and Verifier may
// be nil, in which case every login is refused and friend changes stay in
// memory.
type Deps struct {
	Sessions *session.Registry
	Channels *channel.Registry
	Matches  *match.Service
	Commands *command.Executor
	Confirm  *confirm.Broker
	Beatmaps beatmap.Resolver
	Users    Users
	Friends  Friends
	Verifier Verifier
	// Bot answers private messages and command replies.
	Bot    *session.Player
	Logger *zap.Logger
}

// Server executes request cycles against the shared registries.
type Server struct {
	cfg      Config
	sessions *session.Registry
	channels *channel.Registry
	matches  *match.Service
	commands *command.Executor
	confirm  *confirm.Broker
	beatmaps beatmap.Resolver
	users    Users
	friends  Friends
	verifier Verifier
	bot      *session.Player
	logger   *zap.Logger
	routes   map[packet.Opcode]route
	now      func() time.Time
}

// NewServer creates a Server.
//
// Precondition: Sessions, Channels, Matches, Commands, Confirm, Bot and
// Logger must be non-nil.
func NewServer(cfg Config, d Deps) *Server {
	if cfg.LogoutGrace <= 0 {
		cfg.LogoutGrace = DefaultLogoutGrace
	}
	if d.Beatmaps == nil {
		d.Beatmaps = beatmap.None{}
	}
	s := &Server{
		cfg:      cfg,
		sessions: d.Sessions,
		channels: d.Channels,
		matches:  d.Matches,
		commands: d.Commands,
		confirm:  d.Confirm,
		beatmaps: d.Beatmaps,
		users:    d.Users,
		friends:  d.Friends,
		verifier: d.Verifier,
		bot:      d.Bot,
		logger:   d.Logger,
		now:      time.Now,
	}
	s.routes = s.routeTable()
	return s
}

// Handle runs one request cycle for the session identified by token.
//
// Postcondition: Returns the bytes drained from the session outbox. An
// unknown token yields a restart instruction. A malformed frame stops the
// cycle; packets decoded before it keep their effects.
func (s *Server) Handle(ctx context.Context, token string, body []byte) []byte {
	p, ok := s.sessions.ByToken(token)
	if !ok {
		return append(packet.Notification("Server has restarted"), packet.Restart(0)...)
	}

	for pkt, err := range packet.Decode(body).All() {
		if err != nil {
			s.logger.Warn("decoding packets", zap.String("player", p.Name), zap.Error(err))
			break
		}
		if !s.dispatch(ctx, p, pkt) {
			break
		}
	}

	s.sessions.Touch(token, s.now())
	return p.Outbox.Drain()
}

// dispatch runs the handler for pkt. It returns false when the payload was
// unreadable and the rest of the body cannot be trusted.
func (s *Server) dispatch(ctx context.Context, p *session.Player, pkt packet.Packet) (cont bool) {
	rt, ok := s.routes[pkt.Opcode]
	if !ok {
		s.logger.Debug("unhandled packet", zap.String("player", p.Name), zap.Stringer("opcode", pkt.Opcode))
		return true
	}
	if p.Restricted() && !rt.allowRestricted {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				zap.String("player", p.Name),
				zap.Stringer("opcode", pkt.Opcode),
				zap.Any("panic", r),
			)
			cont = true
		}
	}()

	r := pkt.Reader()
	err := rt.handle(ctx, p, r)
	if err == nil {
		err = r.Err()
	}
	if err == nil {
		return true
	}
	if errors.Is(err, packet.ErrShortPayload) || errors.Is(err, packet.ErrBadString) {
		s.logger.Warn("malformed payload",
			zap.String("player", p.Name),
			zap.Stringer("opcode", pkt.Opcode),
			zap.Error(err),
		)
		return false
	}
	s.logger.Error("handling packet",
		zap.String("player", p.Name),
		zap.Stringer("opcode", pkt.Opcode),
		zap.Error(err),
	)
	return true
}

// Logout detaches p from every match, spectate relation and channel, then
// removes the session and tells the remaining players.
func (s *Server) Logout(p *session.Player) {
	s.matches.Leave(p)
	s.matches.PartLobby(p)
	s.sessions.DetachSpectators(p)
	s.sessions.StopSpectating(p)
	s.channels.LeaveAll(p)
	if !s.sessions.Remove(p) {
		return
	}
	s.logger.Info("logout", zap.String("player", p.Name), zap.Int32("id", p.ID))
}
