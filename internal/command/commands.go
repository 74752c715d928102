// Package command provides the chat command registry, parser, and the
// built-in commands answered by the server bot.
package command

import (
	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
)

// Categories for organizing commands in !help.
const (
	CategoryGeneral     = "General"
	CategoryMultiplayer = "Multiplayer"
)

// Handler runs a command and returns the bot's reply. An empty reply sends
// nothing.
type Handler func(x *Executor, c *Call) string

// Command defines a player-invocable chat command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command in help output.
	Category string
	// Privileges, when non-zero, are the account bits of which the issuer
	// must hold at least one.
	Privileges session.Privileges
	// Hidden commands are omitted from help output.
	Hidden bool
	// Run executes the command.
	Run Handler
}

// Permits reports whether p may run the command.
func (c *Command) Permits(p *session.Player) bool {
	return c.Privileges == 0 || p.Privileges()&c.Privileges != 0
}

// Call is one invocation of a command.
type Call struct {
	// Player is the issuer.
	Player *session.Player
	// Channel is where the command was typed, or nil for a private message
	// to the bot.
	Channel *channel.Channel
	// Name is the command word as typed, lowercased.
	Name string
	// Args are the words after the command.
	Args []string
	// Reply sends a bot message back to where the command was typed.
	Reply func(text string)
}

// BuiltinCommands returns the top-level chat commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "help", Help: "The help message", Category: CategoryGeneral, Run: help},
		{Name: "ping", Help: "Ping the server, to see if it responds.", Category: CategoryGeneral, Run: ping},
		{Name: "roll", Help: "Roll a dice!", Category: CategoryGeneral, Run: roll},
	}
}

// MultiCommands returns the subcommands reached through !multi.
func MultiCommands() []Command {
	return []Command{
		{Name: "help", Help: "List the multiplayer commands.", Category: CategoryMultiplayer, Run: multiHelp},
		{Name: "start", Help: "Start the match when everyone is ready, or force it.", Category: CategoryMultiplayer, Run: multiStart},
		{Name: "abort", Aliases: []string{"ab"}, Help: "Abort the running match.", Category: CategoryMultiplayer, Run: multiAbort},
		{Name: "win", Aliases: []string{"wc"}, Help: "Change the win condition.", Category: CategoryMultiplayer, Run: multiWin},
		{Name: "move", Help: "Move a player to another slot.", Category: CategoryMultiplayer, Run: multiMove},
		{Name: "size", Help: "Change the number of available slots.", Category: CategoryMultiplayer, Run: multiSize},
		{Name: "invite", Help: "Invite a player to the match.", Category: CategoryMultiplayer, Run: multiInvite},
	}
}
