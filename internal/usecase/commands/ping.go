package commands

import (
	"context"
	"fmt"
	"time"

	"prBot/internal/domain"
)

type PingCommand struct {
	latency func() time.Duration
}

// NewPingCommand reports the gateway heartbeat latency returned by latency;
// latency may be nil.
func NewPingCommand(latency func() time.Duration) *PingCommand {
	return &PingCommand{latency: latency}
}

func (c *PingCommand) Name() string {
	return "ping"
}

func (c *PingCommand) Description() string {
	return "Check if the bot is alive."
}

func (c *PingCommand) Options() []domain.CommandOption {
	return nil
}

func (c *PingCommand) Checks() []Check {
	return []Check{BotPermissions(ReplyPermissions)}
}

func (c *PingCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	description := "The bot is alive."
	if c.latency != nil {
		description = fmt.Sprintf("The bot latency is %dms.", c.latency().Milliseconds())
	}
	return cmdCtx.Reply(ctx, domain.Reply{
		Title:       "🏓 Pong!",
		Description: description,
	})
}
