package bancho

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/beatmap"
	"github.com/jeenyuhs/Ragnarok/internal/game/match"
	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

const inviteOfflineNotice = "You can't invite someone who's offline."

// inMatch applies a transition to p's current match and delivers its
// effects once the match lock is released.
func (s *Server) inMatch(p *session.Player, transition func(m *match.Match) (match.Effects, bool)) {
	m, ok := s.matches.Current(p)
	if !ok {
		return
	}
	if e, ok := transition(m); ok {
		s.matches.Emit(m, e)
	}
}

// slotTransition adapts a transition that takes only the caller's id.
func (s *Server) slotTransition(fn func(m *match.Match, id int32) (match.Effects, bool)) Handler {
	return func(_ context.Context, p *session.Player, _ *packet.Reader) error {
		s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return fn(m, p.ID) })
		return nil
	}
}

func (s *Server) joinLobby(_ context.Context, p *session.Player, _ *packet.Reader) error {
	s.matches.JoinLobby(p)
	return nil
}

func (s *Server) partLobby(_ context.Context, p *session.Player, _ *packet.Reader) error {
	s.matches.PartLobby(p)
	return nil
}

func (s *Server) createMatch(_ context.Context, p *session.Player, r *packet.Reader) error {
	st := r.Match()
	if r.Err() != nil {
		return r.Err()
	}
	s.matches.Create(p, st)
	return nil
}

func (s *Server) joinMatch(_ context.Context, p *session.Player, r *packet.Reader) error {
	id := r.I32()
	password := r.String()
	if r.Err() != nil {
		return r.Err()
	}
	s.matches.Join(p, id, password)
	return nil
}

func (s *Server) partMatch(_ context.Context, p *session.Player, _ *packet.Reader) error {
	s.matches.Leave(p)
	return nil
}

func (s *Server) changeSlot(_ context.Context, p *session.Player, r *packet.Reader) error {
	slot := int(r.I32())
	if r.Err() != nil {
		return r.Err()
	}
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return m.ChangeSlot(p.ID, slot) })
	return nil
}

func (s *Server) ready(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).Ready)(ctx, p, r)
}

func (s *Server) notReady(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).Unready)(ctx, p, r)
}

func (s *Server) noBeatmap(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).NoBeatmap)(ctx, p, r)
}

func (s *Server) hasBeatmap(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).HasBeatmap)(ctx, p, r)
}

func (s *Server) loadComplete(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).LoadComplete)(ctx, p, r)
}

func (s *Server) skipRequest(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).SkipRequest)(ctx, p, r)
}

func (s *Server) complete(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).Complete)(ctx, p, r)
}

func (s *Server) failed(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).Failed)(ctx, p, r)
}

func (s *Server) changeTeam(ctx context.Context, p *session.Player, r *packet.Reader) error {
	return s.slotTransition((*match.Match).ChangeTeam)(ctx, p, r)
}

func (s *Server) lockSlot(_ context.Context, p *session.Player, r *packet.Reader) error {
	slot := int(r.I32())
	if r.Err() != nil {
		return r.Err()
	}
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return m.ToggleLock(p.ID, slot) })
	return nil
}

func (s *Server) transferHost(_ context.Context, p *session.Player, r *packet.Reader) error {
	slot := int(r.I32())
	if r.Err() != nil {
		return r.Err()
	}
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return m.TransferHost(p.ID, slot) })
	return nil
}

func (s *Server) changeMods(_ context.Context, p *session.Player, r *packet.Reader) error {
	want := mods.Mods(r.U32())
	if r.Err() != nil {
		return r.Err()
	}
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return m.ChangeMods(p.ID, want) })
	return nil
}

func (s *Server) changePassword(_ context.Context, p *session.Player, r *packet.Reader) error {
	st := r.Match()
	if r.Err() != nil {
		return r.Err()
	}
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return m.ChangePassword(p.ID, st.Password) })
	return nil
}

func (s *Server) scoreUpdate(_ context.Context, p *session.Player, r *packet.Reader) error {
	frame := r.ScoreFrame()
	if r.Err() != nil {
		return r.Err()
	}
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) { return m.ScoreUpdate(p.ID, frame) })
	return nil
}

// startMatch starts on the host's request. The client asks the host to
// confirm an unready start itself, so the packet always forces.
func (s *Server) startMatch(_ context.Context, p *session.Player, _ *packet.Reader) error {
	s.inMatch(p, func(m *match.Match) (match.Effects, bool) {
		e, outcome := m.Start(p.ID, true)
		return e, outcome == match.Started
	})
	return nil
}

// changeSettings resolves a newly picked beatmap before taking the match
// lock so the lookup never blocks other players of the match.
func (s *Server) changeSettings(ctx context.Context, p *session.Player, r *packet.Reader) error {
	st := r.Match()
	if r.Err() != nil {
		return r.Err()
	}
	m, ok := s.matches.Current(p)
	if !ok {
		return nil
	}

	var resolved *match.Beatmap
	if st.BeatmapMD5 != "" && st.BeatmapMD5 != m.Snapshot().Beatmap.MD5 {
		b, err := s.beatmaps.ByMD5(ctx, st.BeatmapMD5)
		switch {
		case err == nil:
			resolved = &match.Beatmap{MD5: b.MD5, ID: b.MapID, Title: b.FullTitle(), Mode: b.Mode}
		case !errors.Is(err, beatmap.ErrNotFound):
			s.logger.Warn("resolving beatmap", zap.String("md5", st.BeatmapMD5), zap.Error(err))
		}
	}

	if e, ok := m.ChangeSettings(p.ID, st, resolved); ok {
		s.matches.Emit(m, e)
	}
	return nil
}

func (s *Server) invite(_ context.Context, p *session.Player, r *packet.Reader) error {
	id := r.I32()
	if r.Err() != nil {
		return r.Err()
	}
	target, ok := s.sessions.ByID(id)
	if !ok {
		p.Enqueue(packet.Notification(inviteOfflineNotice))
		return nil
	}
	s.matches.Invite(p, target)
	return nil
}
