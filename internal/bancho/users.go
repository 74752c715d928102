package bancho

import (
	"context"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Request size limits for roster lookups.
const (
	maxStatsRequest    = 32
	maxPresenceRequest = 256
)

func (s *Server) changeAction(ctx context.Context, p *session.Player, r *packet.Reader) error {
	st := session.Status{
		Action:     session.Action(r.U8()),
		Text:       r.String(),
		BeatmapMD5: r.String(),
		Mods:       mods.Mods(r.U32()),
		Mode:       mods.Mode(r.U8()),
		BeatmapID:  r.I32(),
	}
	if r.Err() != nil {
		return r.Err()
	}
	if !st.Mode.Valid() {
		st.Mode = mods.Osu
	}

	if st.Mode != p.Status().Mode && s.users != nil {
		stats, err := s.users.Stats(ctx, p.ID, st.Mode)
		if err != nil {
			s.logger.Warn("loading stats", zap.String("player", p.Name), zap.Stringer("mode", st.Mode), zap.Error(err))
		} else {
			p.SetStats(stats)
		}
	}
	p.SetStatus(st)
	s.announceStats(p)
	return nil
}

// announceStats sends p's statistics to every player, or only to p while
// restricted.
func (s *Server) announceStats(p *session.Player) {
	b := packet.UserStats(p.StatsBlock())
	if p.Restricted() {
		p.Enqueue(b)
		return
	}
	s.sessions.Broadcast(b)
}

func (s *Server) logout(_ context.Context, p *session.Player, _ *packet.Reader) error {
	if s.now().Sub(p.LoginTime) < s.cfg.LogoutGrace {
		return nil
	}
	s.Logout(p)
	return nil
}

func (s *Server) statusUpdate(_ context.Context, p *session.Player, _ *packet.Reader) error {
	p.Enqueue(packet.UserStats(p.StatsBlock()))
	return nil
}

func (s *Server) ping(_ context.Context, p *session.Player, _ *packet.Reader) error {
	p.Enqueue(packet.Pong())
	return nil
}

// visible resolves the live, non-restricted players among ids, skipping the
// requester.
func (s *Server) visible(p *session.Player, ids []int32) []*session.Player {
	out := make([]*session.Player, 0, len(ids))
	for _, id := range ids {
		if id == p.ID {
			continue
		}
		if other, ok := s.sessions.ByID(id); ok && !other.Restricted() {
			out = append(out, other)
		}
	}
	return out
}

func (s *Server) statsRequest(_ context.Context, p *session.Player, r *packet.Reader) error {
	ids := r.I32List()
	if r.Err() != nil || len(ids) > maxStatsRequest {
		return r.Err()
	}
	for _, other := range s.visible(p, ids) {
		p.Enqueue(packet.UserStats(other.StatsBlock()))
	}
	return nil
}

func (s *Server) presenceRequest(_ context.Context, p *session.Player, r *packet.Reader) error {
	ids := r.I32List()
	if r.Err() != nil || len(ids) > maxPresenceRequest {
		return r.Err()
	}
	for _, other := range s.visible(p, ids) {
		p.Enqueue(packet.UserPresence(other.Presence()))
	}
	return nil
}

func (s *Server) presenceRequestAll(_ context.Context, p *session.Player, _ *packet.Reader) error {
	for _, other := range s.sessions.All() {
		if other.ID == p.ID || other.Restricted() {
			continue
		}
		p.Enqueue(packet.UserPresence(other.Presence()))
	}
	return nil
}

func (s *Server) friendAdd(ctx context.Context, p *session.Player, r *packet.Reader) error {
	id := r.I32()
	if r.Err() != nil || id == p.ID || p.IsFriend(id) {
		return r.Err()
	}
	if s.friends != nil {
		if err := s.friends.Add(ctx, p.ID, id); err != nil {
			return err
		}
	}
	p.AddFriend(id)
	return nil
}

func (s *Server) friendRemove(ctx context.Context, p *session.Player, r *packet.Reader) error {
	id := r.I32()
	if r.Err() != nil || !p.IsFriend(id) {
		return r.Err()
	}
	if s.friends != nil {
		if err := s.friends.Remove(ctx, p.ID, id); err != nil {
			return err
		}
	}
	p.RemoveFriend(id)
	return nil
}

func (s *Server) setAwayMessage(_ context.Context, p *session.Player, r *packet.Reader) error {
	m := r.Message()
	if r.Err() != nil {
		return r.Err()
	}
	p.SetAwayMessage(m.Text)
	return nil
}

func (s *Server) toggleBlockNonFriendDMs(_ context.Context, p *session.Player, r *packet.Reader) error {
	v := r.I32()
	if r.Err() != nil {
		return r.Err()
	}
	p.SetBlockNonFriendDMs(v == 1)
	return nil
}

// receiveUpdates carries the client's roster filter. Presence is always
// sent to everyone, so the filter is only recorded in the log.
func (s *Server) receiveUpdates(_ context.Context, p *session.Player, r *packet.Reader) error {
	filter := r.I32()
	if r.Err() != nil {
		return r.Err()
	}
	s.logger.Debug("presence filter", zap.String("player", p.Name), zap.Int32("filter", filter))
	return nil
}
