package bancho

import (
	"context"

	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Handler processes one client packet. Reader errors are checked by the
// dispatcher after the handler returns.
type Handler func(ctx context.Context, p *session.Player, r *packet.Reader) error

type route struct {
	handle          Handler
	allowRestricted bool
}

func (s *Server) routeTable() map[packet.Opcode]route {
	open := func(h Handler) route { return route{handle: h, allowRestricted: true} }
	full := func(h Handler) route { return route{handle: h} }

	return map[packet.Opcode]route{
		packet.OsuChangeAction:           open(s.changeAction),
		packet.OsuLogout:                 open(s.logout),
		packet.OsuRequestStatusUpdate:    open(s.statusUpdate),
		packet.OsuPing:                   open(s.ping),
		packet.OsuChannelJoin:            open(s.channelJoin),
		packet.OsuChannelPart:            open(s.channelPart),
		packet.OsuFriendAdd:              open(s.friendAdd),
		packet.OsuFriendRemove:           open(s.friendRemove),
		packet.OsuUserStatsRequest:       open(s.statsRequest),
		packet.OsuUserPresenceRequest:    open(s.presenceRequest),
		packet.OsuUserPresenceRequestAll: open(s.presenceRequestAll),

		packet.OsuSendPublicMessage:       full(s.publicMessage),
		packet.OsuSendPrivateMessage:      full(s.privateMessage),
		packet.OsuSetAwayMessage:          full(s.setAwayMessage),
		packet.OsuToggleBlockNonFriendDMs: full(s.toggleBlockNonFriendDMs),
		packet.OsuReceiveUpdates:          full(s.receiveUpdates),

		packet.OsuStartSpectating: full(s.startSpectating),
		packet.OsuStopSpectating:  full(s.stopSpectating),
		packet.OsuSpectateFrames:  full(s.spectateFrames),
		packet.OsuCantSpectate:    full(s.cantSpectate),

		packet.OsuJoinLobby:           full(s.joinLobby),
		packet.OsuPartLobby:           full(s.partLobby),
		packet.OsuCreateMatch:         full(s.createMatch),
		packet.OsuJoinMatch:           full(s.joinMatch),
		packet.OsuPartMatch:           full(s.partMatch),
		packet.OsuMatchChangeSlot:     full(s.changeSlot),
		packet.OsuMatchReady:          full(s.ready),
		packet.OsuMatchNotReady:       full(s.notReady),
		packet.OsuMatchLock:           full(s.lockSlot),
		packet.OsuMatchChangeSettings: full(s.changeSettings),
		packet.OsuMatchStart:          full(s.startMatch),
		packet.OsuMatchScoreUpdate:    full(s.scoreUpdate),
		packet.OsuMatchComplete:       full(s.complete),
		packet.OsuMatchChangeMods:     full(s.changeMods),
		packet.OsuMatchLoadComplete:   full(s.loadComplete),
		packet.OsuMatchNoBeatmap:      full(s.noBeatmap),
		packet.OsuMatchHasBeatmap:     full(s.hasBeatmap),
		packet.OsuMatchFailed:         full(s.failed),
		packet.OsuMatchSkipRequest:    full(s.skipRequest),
		packet.OsuMatchTransferHost:   full(s.transferHost),
		packet.OsuMatchChangeTeam:     full(s.changeTeam),
		packet.OsuMatchInvite:         full(s.invite),
		packet.OsuMatchChangePassword: full(s.changePassword),
	}
}
