package match

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Service binds matches to the session and channel registries. It owns
// membership bookkeeping on the player side and delivers transition effects.
type Service struct {
	matches  *Registry
	sessions *session.Registry
	channels *channel.Registry
	logger   *zap.Logger
}

// NewService creates a Service.
//
// Precondition: every argument must be non-nil.
func NewService(matches *Registry, sessions *session.Registry, channels *channel.Registry, logger *zap.Logger) *Service {
	return &Service{
		matches:  matches,
		sessions: sessions,
		channels: channels,
		logger:   logger,
	}
}

// Matches returns the underlying registry.
func (s *Service) Matches() *Registry { return s.matches }

// Current returns the match p occupies.
func (s *Service) Current(p *session.Player) (*Match, bool) {
	id := p.MatchID()
	if id == session.NoMatch {
		return nil, false
	}
	return s.matches.Get(id)
}

// Create registers a new match from a client settings packet and seats p as
// its host.
//
// Postcondition: Returns nil and enqueues a join failure when p is already in
// a match or no id is free.
func (s *Service) Create(p *session.Player, st packet.MatchState) *Match {
	if p.MatchID() != session.NoMatch {
		p.Enqueue(packet.MatchJoinFail())
		return nil
	}
	m, err := s.matches.Create(p.ID, SettingsFromState(st))
	if err != nil {
		s.logger.Warn("creating match", zap.Int32("host", p.ID), zap.Error(err))
		p.Enqueue(packet.MatchJoinFail())
		return nil
	}
	chat := channel.New(channel.Options{
		Name:        m.Chat,
		DisplayName: channel.MatchDisplayName,
		Topic:       st.Name,
	})
	if err := s.channels.Add(chat); err != nil {
		s.logger.Error("creating match chat", zap.Stringer("match", m), zap.Error(err))
	}
	s.channels.Enqueue(s.channels.Lobby(), packet.NewMatch(m.State()))
	s.logger.Info("match created", zap.Stringer("match", m), zap.String("host", p.Name))

	if !s.Join(p, m.ID, st.Password) {
		s.teardown(m)
		return nil
	}
	return m
}

// Join seats p in match id.
//
// Postcondition: Returns false and enqueues a join failure when p is already
// in a match, the match does not exist, the password is wrong, or no slot is
// open.
func (s *Service) Join(p *session.Player, id int32, password string) bool {
	m, ok := s.matches.Get(id)
	if !ok || !p.ClaimMatch(id) {
		p.Enqueue(packet.MatchJoinFail())
		return false
	}
	e, ok := m.Join(p.ID, p.Name, password)
	if !ok {
		p.ReleaseMatch(id)
		p.Enqueue(packet.MatchJoinFail())
		s.logger.Debug("match join refused", zap.String("player", p.Name), zap.Stringer("match", m))
		return false
	}
	if chat, ok := s.channels.Get(m.Chat); ok {
		s.channels.Join(p, chat)
	}
	s.Emit(m, e)
	s.logger.Info("match joined", zap.String("player", p.Name), zap.Stringer("match", m))
	return true
}

// Leave removes p from its match. Disposes the match when p was the last
// member.
func (s *Service) Leave(p *session.Player) bool {
	m, ok := s.Current(p)
	if !ok {
		p.SetMatchID(session.NoMatch)
		return false
	}
	if chat, ok := s.channels.Get(m.Chat); ok {
		s.channels.Leave(p, chat, false)
	}
	e, ok := m.Leave(p.ID)
	p.ReleaseMatch(m.ID)
	if !ok {
		return false
	}
	s.logger.Info("match left", zap.String("player", p.Name), zap.Stringer("match", m))
	s.Emit(m, e)
	return true
}

// Emit delivers e and tears m down when e reports disposal.
func (s *Service) Emit(m *Match, e Effects) {
	for _, d := range e.Deliveries {
		s.sessions.Enqueue(d.To, d.Data)
	}
	if lobby := s.channels.Lobby(); lobby != nil {
		for _, b := range e.Lobby {
			s.channels.Enqueue(lobby, b)
		}
	}
	if e.Disposed {
		s.teardown(m)
	}
}

func (s *Service) teardown(m *Match) {
	if s.matches.Remove(m) {
		s.channels.Remove(m.Chat)
		s.logger.Info("match disposed", zap.Stringer("match", m))
	}
}

// JoinLobby marks p as browsing the listing and sends every populated match.
// A player still seated in a match leaves it first.
func (s *Service) JoinLobby(p *session.Player) {
	p.SetInLobby(true)
	if p.Privileges()&session.Pending != 0 {
		return
	}
	if p.MatchID() != session.NoMatch {
		s.Leave(p)
	}
	for _, m := range s.matches.All() {
		if len(m.Connected()) > 0 {
			p.Enqueue(packet.NewMatch(m.State()))
		}
	}
}

// PartLobby clears p's listing flag.
func (s *Service) PartLobby(p *session.Player) {
	p.SetInLobby(false)
}

// Invite sends target a private message from p carrying the join link of
// p's match.
func (s *Service) Invite(p, target *session.Player) bool {
	m, ok := s.Current(p)
	if !ok || target.Bot {
		return false
	}
	target.Enqueue(packet.MatchInvite(packet.Message{
		Sender:   p.Name,
		Text:     fmt.Sprintf("Come join my multiplayer match: %s", m.InviteLink()),
		Target:   target.Name,
		SenderID: p.ID,
	}))
	return true
}
