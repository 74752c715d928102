package bancho

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

const (
	spectatorChannel = "#spectator"

	notConnectedNotice = "You can't send messages to a channel, you're not already connected to."
	offlineNotice      = "The player you're trying to reach is currently offline."
	noChannelNotice    = "Channel couldn't be found."
	botFallback        = "beep boop"
)

// resolveChat maps a client chat target onto a channel. The shared match
// display name resolves to the sender's own match chat.
func (s *Server) resolveChat(p *session.Player, target string) (*channel.Channel, bool) {
	switch target {
	case channel.MatchDisplayName:
		m, ok := s.matches.Current(p)
		if !ok {
			return nil, false
		}
		return s.channels.Get(m.Chat)
	case spectatorChannel:
		return nil, false
	}
	c, ok := s.channels.Get(target)
	if !ok || c.IsMatch() {
		return nil, false
	}
	return c, true
}

func (s *Server) publicMessage(_ context.Context, p *session.Player, r *packet.Reader) error {
	m := r.Message()
	if r.Err() != nil {
		return r.Err()
	}
	if p.Privileges()&session.Pending != 0 || strings.TrimSpace(m.Text) == "" {
		return nil
	}

	c, ok := s.resolveChat(p, m.Target)
	if !ok || !s.channels.Send(p, c, m.Text) {
		p.Enqueue(packet.Notification(notConnectedNotice))
		return nil
	}

	if s.confirm.Offer(p.Token, m.Text) {
		return nil
	}
	s.commands.Execute(p, c, m.Text, func(reply string) {
		s.channels.Send(s.bot, c, reply)
	})
	return nil
}

// botMessage sends text to p as a private message from the bot.
func (s *Server) botMessage(p *session.Player, text string) {
	p.Enqueue(packet.SendMessage(packet.Message{
		Sender:   s.bot.Name,
		Text:     text,
		Target:   p.Name,
		SenderID: s.bot.ID,
	}))
}

func (s *Server) privateMessage(_ context.Context, p *session.Player, r *packet.Reader) error {
	m := r.Message()
	if r.Err() != nil {
		return r.Err()
	}
	if p.Privileges()&session.Pending != 0 || strings.TrimSpace(m.Text) == "" {
		return nil
	}

	target, ok := s.sessions.ByName(m.Target)
	if !ok {
		p.Enqueue(packet.Notification(offlineNotice))
		return nil
	}

	if target.Bot {
		if s.confirm.Offer(p.Token, m.Text) {
			return nil
		}
		var replied atomic.Bool
		s.commands.Execute(p, nil, m.Text, func(reply string) {
			replied.Store(true)
			s.botMessage(p, reply)
		})
		if !replied.Load() {
			s.botMessage(p, botFallback)
		}
		return nil
	}

	if target.BlockNonFriendDMs() && !target.IsFriend(p.ID) {
		p.Enqueue(packet.UserDMBlocked(target.Name))
		return nil
	}
	target.Enqueue(packet.SendMessage(packet.Message{
		Sender:   p.Name,
		Text:     m.Text,
		Target:   target.Name,
		SenderID: p.ID,
	}))
	if away := target.AwayMessage(); away != "" {
		p.Enqueue(packet.SendMessage(packet.Message{
			Sender:   target.Name,
			Text:     away,
			Target:   p.Name,
			SenderID: target.ID,
		}))
	}
	return nil
}

func (s *Server) channelJoin(_ context.Context, p *session.Player, r *packet.Reader) error {
	name := r.String()
	if r.Err() != nil {
		return r.Err()
	}
	c, ok := s.channels.Get(name)
	if !ok || c.IsMatch() || c.IsDirect() {
		p.Enqueue(packet.Notification(noChannelNotice))
		return nil
	}
	s.channels.Join(p, c)
	return nil
}

// channelPart leaves a channel the client closed. Match chats follow match
// membership and direct-message tabs have no channel, so both are ignored.
func (s *Server) channelPart(_ context.Context, p *session.Player, r *packet.Reader) error {
	name := r.String()
	if r.Err() != nil || name == channel.MatchDisplayName {
		return r.Err()
	}
	c, ok := s.channels.Get(name)
	if !ok || c.IsMatch() || c.IsDirect() {
		return nil
	}
	s.channels.Leave(p, c, true)
	return nil
}
