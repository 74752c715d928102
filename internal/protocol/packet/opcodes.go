// Package packet implements the bancho wire framing and the payload
// primitives used by the osu! client (protocol version 19).
//
// Every frame is a 7 byte little-endian header (u16 opcode, one padding
// byte, u32 payload length) followed by exactly that many payload bytes.
package packet

import "fmt"

// Opcode identifies a bancho packet. Client-originated packets are prefixed
// Osu, server-originated packets are prefixed Cho.
type Opcode uint16

// ProtocolVersion is the bancho protocol revision spoken by this server.
const ProtocolVersion = 19

const (
	OsuChangeAction                Opcode = 0
	OsuSendPublicMessage           Opcode = 1
	OsuLogout                      Opcode = 2
	OsuRequestStatusUpdate         Opcode = 3
	OsuPing                        Opcode = 4
	ChoUserID                      Opcode = 5
	ChoSendMessage                 Opcode = 7
	ChoPong                        Opcode = 8
	ChoHandleIRCChangeUsername     Opcode = 9
	ChoHandleIRCQuit               Opcode = 10
	ChoUserStats                   Opcode = 11
	ChoUserLogout                  Opcode = 12
	ChoSpectatorJoined             Opcode = 13
	ChoSpectatorLeft               Opcode = 14
	ChoSpectateFrames              Opcode = 15
	OsuStartSpectating             Opcode = 16
	OsuStopSpectating              Opcode = 17
	OsuSpectateFrames              Opcode = 18
	ChoVersionUpdate               Opcode = 19
	OsuErrorReport                 Opcode = 20
	OsuCantSpectate                Opcode = 21
	ChoSpectatorCantSpectate       Opcode = 22
	ChoGetAttention                Opcode = 23
	ChoNotification                Opcode = 24
	OsuSendPrivateMessage          Opcode = 25
	ChoUpdateMatch                 Opcode = 26
	ChoNewMatch                    Opcode = 27
	ChoDisposeMatch                Opcode = 28
	OsuPartLobby                   Opcode = 29
	OsuJoinLobby                   Opcode = 30
	OsuCreateMatch                 Opcode = 31
	OsuJoinMatch                   Opcode = 32
	OsuPartMatch                   Opcode = 33
	ChoToggleBlockNonFriendDMs     Opcode = 34
	ChoMatchJoinSuccess            Opcode = 36
	ChoMatchJoinFail               Opcode = 37
	OsuMatchChangeSlot             Opcode = 38
	OsuMatchReady                  Opcode = 39
	OsuMatchLock                   Opcode = 40
	OsuMatchChangeSettings         Opcode = 41
	ChoFellowSpectatorJoined       Opcode = 42
	ChoFellowSpectatorLeft         Opcode = 43
	OsuMatchStart                  Opcode = 44
	ChoAllPlayersLoaded            Opcode = 45
	ChoMatchStart                  Opcode = 46
	OsuMatchScoreUpdate            Opcode = 47
	ChoMatchScoreUpdate            Opcode = 48
	OsuMatchComplete               Opcode = 49
	ChoMatchTransferHost           Opcode = 50
	OsuMatchChangeMods             Opcode = 51
	OsuMatchLoadComplete           Opcode = 52
	ChoMatchAllPlayersLoaded       Opcode = 53
	OsuMatchNoBeatmap              Opcode = 54
	OsuMatchNotReady               Opcode = 55
	OsuMatchFailed                 Opcode = 56
	ChoMatchPlayerFailed           Opcode = 57
	ChoMatchComplete               Opcode = 58
	OsuMatchHasBeatmap             Opcode = 59
	OsuMatchSkipRequest            Opcode = 60
	ChoMatchSkip                   Opcode = 61
	ChoUnauthorized                Opcode = 62
	OsuChannelJoin                 Opcode = 63
	ChoChannelJoinSuccess          Opcode = 64
	ChoChannelInfo                 Opcode = 65
	ChoChannelKick                 Opcode = 66
	ChoChannelAutoJoin             Opcode = 67
	OsuBeatmapInfoRequest          Opcode = 68
	ChoBeatmapInfoReply            Opcode = 69
	OsuMatchTransferHost           Opcode = 70
	ChoPrivileges                  Opcode = 71
	ChoFriendsList                 Opcode = 72
	OsuFriendAdd                   Opcode = 73
	OsuFriendRemove                Opcode = 74
	ChoProtocolVersion             Opcode = 75
	ChoMainMenuIcon                Opcode = 76
	OsuMatchChangeTeam             Opcode = 77
	OsuChannelPart                 Opcode = 78
	OsuReceiveUpdates              Opcode = 79
	ChoMonitor                     Opcode = 80
	ChoMatchPlayerSkipped          Opcode = 81
	OsuSetAwayMessage              Opcode = 82
	ChoUserPresence                Opcode = 83
	OsuIRCOnly                     Opcode = 84
	OsuUserStatsRequest            Opcode = 85
	ChoRestart                     Opcode = 86
	OsuMatchInvite                 Opcode = 87
	ChoMatchInvite                 Opcode = 88
	ChoChannelInfoEnd              Opcode = 89
	OsuMatchChangePassword         Opcode = 90
	ChoMatchChangePassword         Opcode = 91
	ChoSilenceEnd                  Opcode = 92
	OsuTournamentMatchInfoRequest  Opcode = 93
	ChoUserSilenced                Opcode = 94
	ChoUserPresenceSingle          Opcode = 95
	ChoUserPresenceBundle          Opcode = 96
	OsuUserPresenceRequest         Opcode = 97
	OsuUserPresenceRequestAll      Opcode = 98
	OsuToggleBlockNonFriendDMs     Opcode = 99
	ChoUserDMBlocked               Opcode = 100
	ChoTargetIsSilenced            Opcode = 101
	ChoVersionUpdateForced         Opcode = 102
	ChoSwitchServer                Opcode = 103
	ChoAccountRestricted           Opcode = 104
	ChoRTX                         Opcode = 105
	ChoMatchAbort                  Opcode = 106
	ChoSwitchTournamentServer      Opcode = 107
	OsuTournamentJoinMatchChannel  Opcode = 108
	OsuTournamentLeaveMatchChannel Opcode = 109
)

var opcodeNames = map[Opcode]string{
	OsuChangeAction:            "OSU_CHANGE_ACTION",
	OsuSendPublicMessage:       "OSU_SEND_PUBLIC_MESSAGE",
	OsuLogout:                  "OSU_LOGOUT",
	OsuRequestStatusUpdate:     "OSU_REQUEST_STATUS_UPDATE",
	OsuPing:                    "OSU_PING",
	OsuStartSpectating:         "OSU_START_SPECTATING",
	OsuStopSpectating:          "OSU_STOP_SPECTATING",
	OsuSpectateFrames:          "OSU_SPECTATE_FRAMES",
	OsuErrorReport:             "OSU_ERROR_REPORT",
	OsuCantSpectate:            "OSU_CANT_SPECTATE",
	OsuSendPrivateMessage:      "OSU_SEND_PRIVATE_MESSAGE",
	OsuPartLobby:               "OSU_PART_LOBBY",
	OsuJoinLobby:               "OSU_JOIN_LOBBY",
	OsuCreateMatch:             "OSU_CREATE_MATCH",
	OsuJoinMatch:               "OSU_JOIN_MATCH",
	OsuPartMatch:               "OSU_PART_MATCH",
	OsuMatchChangeSlot:         "OSU_MATCH_CHANGE_SLOT",
	OsuMatchReady:              "OSU_MATCH_READY",
	OsuMatchLock:               "OSU_MATCH_LOCK",
	OsuMatchChangeSettings:     "OSU_MATCH_CHANGE_SETTINGS",
	OsuMatchStart:              "OSU_MATCH_START",
	OsuMatchScoreUpdate:        "OSU_MATCH_SCORE_UPDATE",
	OsuMatchComplete:           "OSU_MATCH_COMPLETE",
	OsuMatchChangeMods:         "OSU_MATCH_CHANGE_MODS",
	OsuMatchLoadComplete:       "OSU_MATCH_LOAD_COMPLETE",
	OsuMatchNoBeatmap:          "OSU_MATCH_NO_BEATMAP",
	OsuMatchNotReady:           "OSU_MATCH_NOT_READY",
	OsuMatchFailed:             "OSU_MATCH_FAILED",
	OsuMatchHasBeatmap:         "OSU_MATCH_HAS_BEATMAP",
	OsuMatchSkipRequest:        "OSU_MATCH_SKIP_REQUEST",
	OsuChannelJoin:             "OSU_CHANNEL_JOIN",
	OsuBeatmapInfoRequest:      "OSU_BEATMAP_INFO_REQUEST",
	OsuMatchTransferHost:       "OSU_MATCH_TRANSFER_HOST",
	OsuFriendAdd:               "OSU_FRIEND_ADD",
	OsuFriendRemove:            "OSU_FRIEND_REMOVE",
	OsuMatchChangeTeam:         "OSU_MATCH_CHANGE_TEAM",
	OsuChannelPart:             "OSU_CHANNEL_PART",
	OsuReceiveUpdates:          "OSU_RECEIVE_UPDATES",
	OsuSetAwayMessage:          "OSU_SET_AWAY_MESSAGE",
	OsuIRCOnly:                 "OSU_IRC_ONLY",
	OsuUserStatsRequest:        "OSU_USER_STATS_REQUEST",
	OsuMatchInvite:             "OSU_MATCH_INVITE",
	OsuMatchChangePassword:     "OSU_MATCH_CHANGE_PASSWORD",
	OsuUserPresenceRequest:     "OSU_USER_PRESENCE_REQUEST",
	OsuUserPresenceRequestAll:  "OSU_USER_PRESENCE_REQUEST_ALL",
	OsuToggleBlockNonFriendDMs: "OSU_TOGGLE_BLOCK_NON_FRIEND_DMS",
}

// String returns the conventional upper-case name of a client opcode, or a
// numeric form for anything else.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE_%d", uint16(o))
}
