package bancho

import (
	"context"

	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

func (s *Server) startSpectating(_ context.Context, p *session.Player, r *packet.Reader) error {
	id := r.I32()
	if r.Err() != nil {
		return r.Err()
	}
	host, ok := s.sessions.ByID(id)
	if !ok || host.Bot {
		return nil
	}
	s.sessions.StartSpectating(host, p)
	return nil
}

func (s *Server) stopSpectating(_ context.Context, p *session.Player, _ *packet.Reader) error {
	s.sessions.StopSpectating(p)
	return nil
}

func (s *Server) spectateFrames(_ context.Context, p *session.Player, r *packet.Reader) error {
	s.sessions.RelayFrames(p, r.Raw())
	return nil
}

func (s *Server) cantSpectate(_ context.Context, p *session.Player, _ *packet.Reader) error {
	s.sessions.CantSpectate(p)
	return nil
}
