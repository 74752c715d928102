package packet

// Server packet builders. Each returns one complete frame ready to be
// enqueued to a player's outbox.

// Login result codes carried by UserID when authentication fails.
const (
	LoginFailed        int32 = -1
	LoginOutdated      int32 = -2
	LoginBanned        int32 = -3
	LoginAlreadyOnline int32 = -1
)

func empty(op Opcode) []byte { return Frame(op, nil) }

func i32(op Opcode, v int32) []byte { return NewWriter().I32(v).Build(op) }

func str(op Opcode, s string) []byte { return NewWriter().String(s).Build(op) }

// UserID reports the login result: the assigned id, or a negative code.
func UserID(id int32) []byte { return i32(ChoUserID, id) }

// Privileges reports the client-side privilege bits.
func Privileges(bits int32) []byte { return i32(ChoPrivileges, bits) }

// ProtocolNegotiation announces the protocol version.
func ProtocolNegotiation() []byte { return i32(ChoProtocolVersion, ProtocolVersion) }

// Notification shows a pop-up notification.
func Notification(text string) []byte { return str(ChoNotification, text) }

// SendMessage delivers a chat message.
func SendMessage(m Message) []byte { return NewWriter().Message(m).Build(ChoSendMessage) }

// Pong answers a keepalive ping.
func Pong() []byte { return empty(ChoPong) }

// UserStats sends a status and statistics block.
func UserStats(s Stats) []byte { return NewWriter().Stats(s).Build(ChoUserStats) }

// UserPresence sends a roster entry.
func UserPresence(p Presence) []byte { return NewWriter().Presence(p).Build(ChoUserPresence) }

// UserPresenceBundle lists online ids so the client can request presences.
func UserPresenceBundle(ids []int32) []byte {
	return NewWriter().I32List(ids).Build(ChoUserPresenceBundle)
}

// Logout announces that userID has left.
func Logout(userID int32) []byte { return NewWriter().I32(userID).U8(0).Build(ChoUserLogout) }

func channelInfo(op Opcode, name, topic string, members int16) []byte {
	return NewWriter().String(name).String(topic).I16(members).Build(op)
}

// ChannelInfo advertises a channel and its member count.
func ChannelInfo(name, topic string, members int16) []byte {
	return channelInfo(ChoChannelInfo, name, topic, members)
}

// ChannelAutoJoin advertises a channel the client should join on its own.
func ChannelAutoJoin(name, topic string, members int16) []byte {
	return channelInfo(ChoChannelAutoJoin, name, topic, members)
}

// ChannelJoin confirms a channel join.
func ChannelJoin(name string) []byte { return str(ChoChannelJoinSuccess, name) }

// ChannelKick removes a channel tab from the client.
func ChannelKick(name string) []byte { return str(ChoChannelKick, name) }

// ChannelInfoEnd terminates the initial channel listing.
func ChannelInfoEnd() []byte { return empty(ChoChannelInfoEnd) }

// FriendsList sends the player's friend ids.
func FriendsList(ids []int32) []byte { return NewWriter().I32List(ids).Build(ChoFriendsList) }

// MainMenuIcon sets the main menu image; the argument is "<image url>|<click url>".
func MainMenuIcon(icon string) []byte { return str(ChoMainMenuIcon, icon) }

// Restart asks the client to reconnect after ms milliseconds.
func Restart(ms int32) []byte { return i32(ChoRestart, ms) }

// SilenceEnd reports the remaining silence in seconds.
func SilenceEnd(seconds int32) []byte { return i32(ChoSilenceEnd, seconds) }

// SpectatorJoined tells a host that id started watching.
func SpectatorJoined(id int32) []byte { return i32(ChoSpectatorJoined, id) }

// SpectatorLeft tells a host that id stopped watching.
func SpectatorLeft(id int32) []byte { return i32(ChoSpectatorLeft, id) }

// FellowSpectatorJoined tells spectators that id joined them.
func FellowSpectatorJoined(id int32) []byte { return i32(ChoFellowSpectatorJoined, id) }

// FellowSpectatorLeft tells spectators that id left them.
func FellowSpectatorLeft(id int32) []byte { return i32(ChoFellowSpectatorLeft, id) }

// SpectateFrames relays an opaque replay frame bundle.
func SpectateFrames(raw []byte) []byte { return Frame(ChoSpectateFrames, raw) }

// CantSpectate tells the host that id is missing the beatmap.
func CantSpectate(id int32) []byte { return i32(ChoSpectatorCantSpectate, id) }

// NewMatch announces a match to the lobby.
func NewMatch(m MatchState) []byte { return NewWriter().Match(m, false).Build(ChoNewMatch) }

// UpdateMatch sends refreshed match state. sendPassword is set only for
// recipients inside the match.
func UpdateMatch(m MatchState, sendPassword bool) []byte {
	return NewWriter().Match(m, sendPassword).Build(ChoUpdateMatch)
}

// DisposeMatch removes a match from the lobby listing.
func DisposeMatch(id int32) []byte { return i32(ChoDisposeMatch, id) }

// MatchJoinSuccess admits the player into a match.
func MatchJoinSuccess(m MatchState) []byte {
	return NewWriter().Match(m, true).Build(ChoMatchJoinSuccess)
}

// MatchJoinFail rejects a join attempt.
func MatchJoinFail() []byte { return empty(ChoMatchJoinFail) }

// MatchStart starts gameplay for a playing occupant.
func MatchStart(m MatchState) []byte { return NewWriter().Match(m, true).Build(ChoMatchStart) }

// MatchScoreUpdate relays a score frame. The frame's id byte must already
// carry the sender's slot index.
func MatchScoreUpdate(s ScoreFrame) []byte {
	return NewWriter().ScoreFrame(s).Build(ChoMatchScoreUpdate)
}

// MatchTransferHost tells the new host it holds the match.
func MatchTransferHost() []byte { return empty(ChoMatchTransferHost) }

// MatchAllPlayersLoaded tells playing occupants everyone has loaded.
func MatchAllPlayersLoaded() []byte { return empty(ChoMatchAllPlayersLoaded) }

// MatchPlayerFailed reports that the occupant of slot failed.
func MatchPlayerFailed(slot int32) []byte { return i32(ChoMatchPlayerFailed, slot) }

// MatchComplete ends gameplay for a playing occupant.
func MatchComplete() []byte { return empty(ChoMatchComplete) }

// MatchSkip tells playing occupants to skip the intro.
func MatchSkip() []byte { return empty(ChoMatchSkip) }

// MatchPlayerSkipped reports that the occupant of slot requested a skip.
func MatchPlayerSkipped(slot int32) []byte { return i32(ChoMatchPlayerSkipped, slot) }

// MatchChangePassword delivers a new match password.
func MatchChangePassword(password string) []byte {
	return str(ChoMatchChangePassword, password)
}

// MatchAbort stops gameplay without results.
func MatchAbort() []byte { return empty(ChoMatchAbort) }

// MatchInvite delivers an invitation as a chat message.
func MatchInvite(m Message) []byte { return NewWriter().Message(m).Build(ChoMatchInvite) }

// AccountRestricted tells the client it is restricted.
func AccountRestricted() []byte { return empty(ChoAccountRestricted) }

// UserDMBlocked tells a sender that the target only accepts friend DMs.
func UserDMBlocked(target string) []byte {
	return NewWriter().Message(Message{Target: target}).Build(ChoUserDMBlocked)
}
