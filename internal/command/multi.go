package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeenyuhs/Ragnarok/internal/game/confirm"
	"github.com/jeenyuhs/Ragnarok/internal/game/match"
)

const (
	startedReply = "Starting match... Good luck!"
	forcePrompt  = "All players aren't ready, would you like to force start? (y/n)"
	invitePrompt = "Who do you want to invite?"
	offlineReply = "The user is not online."
)

// current resolves the issuer's match, provided the command was typed in
// that match's own chat.
func (x *Executor) current(c *Call) (*match.Match, bool) {
	if c.Channel == nil || !c.Channel.IsMatch() {
		return nil, false
	}
	m, ok := x.matches.Current(c.Player)
	if !ok || m.Chat != c.Channel.Name {
		return nil, false
	}
	return m, true
}

// hosted is current restricted to the match host.
func (x *Executor) hosted(c *Call) (*match.Match, bool) {
	m, ok := x.current(c)
	if !ok || m.Host() != c.Player.ID {
		return nil, false
	}
	return m, true
}

func multiHelp(x *Executor, _ *Call) string {
	var b strings.Builder
	b.WriteString("Multiplayer commands:\n")
	for _, cmd := range x.multi.Commands() {
		fmt.Fprintf(&b, "%smulti %s - %s\n", x.opts.Prefix, cmd.Name, cmd.Help)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func multiStart(x *Executor, c *Call) string {
	m, ok := x.hosted(c)
	if !ok {
		return ""
	}
	force := len(c.Args) > 0 && strings.EqualFold(c.Args[0], "force")

	e, outcome := m.Start(c.Player.ID, force)
	switch outcome {
	case match.Started:
		x.matches.Emit(m, e)
		return startedReply
	case match.StartNeedsConfirm:
		x.ask(c, forcePrompt, func(reply string, ok bool) {
			if !ok || !confirm.Affirmative(reply) {
				return
			}
			// The match may have changed while waiting; Start re-checks
			// host and progress under the match lock.
			e, outcome := m.Start(c.Player.ID, true)
			if outcome != match.Started {
				return
			}
			x.matches.Emit(m, e)
			c.Reply(startedReply)
		})
	}
	return ""
}

func multiAbort(x *Executor, c *Call) string {
	m, ok := x.hosted(c)
	if !ok {
		return ""
	}
	e, ok := m.Abort(c.Player.ID)
	if !ok {
		return ""
	}
	x.matches.Emit(m, e)
	return "Aborted match."
}

func multiWin(x *Executor, c *Call) string {
	m, ok := x.hosted(c)
	if !ok {
		return ""
	}
	if len(c.Args) == 0 {
		return fmt.Sprintf("Wrong usage. %smulti %s <score/acc/combo/sv2/pp>", x.opts.Prefix, c.Name)
	}
	cond := strings.ToLower(c.Args[0])
	before := m.Snapshot().ScoringType
	e, ok := m.SetWinCondition(c.Player.ID, cond)
	if !ok {
		return "Not a valid win condition"
	}
	x.matches.Emit(m, e)
	if cond == "pp" {
		return "Changed win condition to pp."
	}
	return fmt.Sprintf("Changed win condition from %s to %s", before, m.Snapshot().ScoringType)
}

func multiMove(x *Executor, c *Call) string {
	m, ok := x.hosted(c)
	if !ok {
		return ""
	}
	if len(c.Args) < 2 {
		return fmt.Sprintf("Wrong usage: %smulti move <player> <to_slot>", x.opts.Prefix)
	}
	slot, err := strconv.Atoi(c.Args[1])
	if err != nil || slot < 1 || slot > match.SlotCount {
		return fmt.Sprintf("Slot must be between 1 and %d.", match.SlotCount)
	}
	target, ok := x.sessions.ByName(c.Args[0])
	if !ok || m.SlotOf(target.ID) < 0 {
		return "Slot is not occupied."
	}
	if m.Snapshot().Slots[slot-1].Status.IsOccupied() {
		return "That slot is already occupied."
	}
	e, ok := m.Move(c.Player.ID, target.ID, slot-1)
	if !ok {
		return ""
	}
	x.matches.Emit(m, e)
	return fmt.Sprintf("Moved %s to slot %d", target.Name, slot)
}

func multiSize(x *Executor, c *Call) string {
	m, ok := x.hosted(c)
	if !ok || m.InProgress() {
		return ""
	}
	if len(c.Args) == 0 {
		return fmt.Sprintf("Wrong usage: %smulti size <amount of available slots>", x.opts.Prefix)
	}
	n, err := strconv.Atoi(c.Args[0])
	if err != nil {
		return fmt.Sprintf("Wrong usage: %smulti size <amount of available slots>", x.opts.Prefix)
	}
	e, ok := m.Resize(c.Player.ID, n)
	if !ok {
		return fmt.Sprintf("Size must be between 1 and %d.", match.SlotCount)
	}
	x.matches.Emit(m, e)
	return fmt.Sprintf("Changed size to %d", n)
}

func multiInvite(x *Executor, c *Call) string {
	if _, ok := x.current(c); !ok {
		return ""
	}
	if len(c.Args) == 0 {
		x.ask(c, invitePrompt, func(reply string, ok bool) {
			if !ok {
				return
			}
			c.Reply(x.invite(c, strings.TrimSpace(reply)))
		})
		return ""
	}
	return x.invite(c, strings.Join(c.Args, " "))
}

func (x *Executor) invite(c *Call, name string) string {
	target, ok := x.sessions.ByName(name)
	if !ok || target.Bot {
		return offlineReply
	}
	if target == c.Player {
		return "You can't invite yourself."
	}
	if !x.matches.Invite(c.Player, target) {
		return offlineReply
	}
	return fmt.Sprintf("Invited %s", target.Name)
}
