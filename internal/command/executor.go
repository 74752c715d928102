package command

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/confirm"
	"github.com/jeenyuhs/Ragnarok/internal/game/dice"
	"github.com/jeenyuhs/Ragnarok/internal/game/match"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
)

// Options configure an Executor.
type Options struct {
	// Prefix introduces a command, for example "!".
	Prefix string
	// ConfirmTimeout bounds how long a yes/no prompt waits for its answer.
	ConfirmTimeout time.Duration
}

// Executor parses chat lines, resolves commands, and runs them against the
// live registries. Follow-up prompts run on background goroutines owned by
// the Executor; it satisfies server.Service so they are cancelled on
// shutdown.
type Executor struct {
	opts     Options
	general  *Registry
	multi    *Registry
	sessions *session.Registry
	matches  *match.Service
	confirm  *confirm.Broker
	roller   *dice.Roller
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup
}

// NewExecutor creates an Executor with the built-in command sets.
//
// Precondition: every pointer argument must be non-nil; opts.Prefix must be non-empty.
func NewExecutor(opts Options, sessions *session.Registry, matches *match.Service, broker *confirm.Broker, roller *dice.Roller, logger *zap.Logger) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		opts:     opts,
		general:  DefaultRegistry(),
		multi:    MultiRegistry(),
		sessions: sessions,
		matches:  matches,
		confirm:  broker,
		roller:   roller,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Prefix returns the command prefix.
func (x *Executor) Prefix() string { return x.opts.Prefix }

// Execute runs text as a command issued by p in ch (nil for a private
// message to the bot). The reply, if any, goes through reply.
//
// Postcondition: Returns false, doing nothing, when text is not a command.
// Unknown or forbidden commands return true and reply nothing.
func (x *Executor) Execute(p *session.Player, ch *channel.Channel, text string, reply func(string)) bool {
	res, ok := Parse(x.opts.Prefix, text)
	if !ok {
		return false
	}

	reg := x.general
	if res.Command == "multi" {
		reg = x.multi
		res = Split(res.RawArgs)
		if res.Command == "" {
			res.Command = "help"
		}
	}

	cmd, found := reg.Resolve(res.Command)
	if !found || !cmd.Permits(p) {
		x.logger.Debug("command ignored",
			zap.String("player", p.Name),
			zap.String("command", res.Command),
			zap.Bool("known", found),
		)
		return true
	}

	c := &Call{Player: p, Channel: ch, Name: res.Command, Args: res.Args, Reply: reply}
	x.logger.Debug("command",
		zap.String("player", p.Name),
		zap.String("command", cmd.Name),
		zap.Strings("args", res.Args),
	)
	if out := cmd.Run(x, c); out != "" {
		reply(out)
	}
	return true
}

// ask sends prompt and hands the next chat line of c.Player to then on a
// background goroutine. then receives ok=false on timeout or shutdown.
func (x *Executor) ask(c *Call, prompt string, then func(reply string, ok bool)) {
	if x.confirm.Pending(c.Player.Token) {
		x.logger.Debug("replacing unanswered prompt",
			zap.Int32("player", c.Player.ID),
			zap.String("command", c.Name),
		)
	}
	pending := x.confirm.Expect(c.Player.Token)
	c.Reply(prompt)
	x.wg.Add(1)
	go func() {
		defer x.wg.Done()
		reply, ok := pending.Wait(x.ctx, x.opts.ConfirmTimeout)
		then(reply, ok)
	}()
}

// Start blocks until Stop is called.
func (x *Executor) Start() error {
	<-x.ctx.Done()
	return nil
}

// Stop cancels pending prompts and waits for their goroutines.
func (x *Executor) Stop() {
	x.once.Do(x.cancel)
	x.wg.Wait()
}
