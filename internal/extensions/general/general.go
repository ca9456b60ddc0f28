// Package general holds the everyday commands: chart and ping.
package general

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
	"prBot/internal/usecase/extensions"
)

type Extension struct {
	access           *commands.Access
	latency          func() time.Duration
	chartChannel     string
	chartPermissions string
}

// New builds the extension. The manifest setting chart_channel restricts the
// chart command to one channel; chart_permissions lists the member
// permissions (comma separated) needed to run it.
func New(access *commands.Access, latency func() time.Duration, m extensions.Manifest) *Extension {
	return &Extension{
		access:           access,
		latency:          latency,
		chartChannel:     strings.TrimSpace(m.Settings["chart_channel"]),
		chartPermissions: m.Settings["chart_permissions"],
	}
}

func (e *Extension) Setup(reg extensions.Registrar) error {
	required, err := domain.ParsePermissions(strings.Split(e.chartPermissions, ","))
	if err != nil {
		return fmt.Errorf("general: chart_permissions: %w", err)
	}
	reg.Add(&chartCommand{access: e.access, channelID: e.chartChannel, userPermissions: required})
	reg.Add(commands.NewPingCommand(e.latency))
	return nil
}

type chartCommand struct {
	access          *commands.Access
	channelID       string
	userPermissions domain.Permission
}

func (c *chartCommand) Name() string { return "chart" }

func (c *chartCommand) Description() string {
	return "Show a PR chart for an exercise."
}

func (c *chartCommand) Options() []domain.CommandOption {
	return []domain.CommandOption{
		{Name: "metric", Description: "Exercise", Kind: domain.OptionString, Required: true},
		{Name: "user", Description: "Person", Kind: domain.OptionUser, Required: true},
	}
}

func (c *chartCommand) Checks() []commands.Check {
	checks := []commands.Check{c.access.NotBlacklisted(), commands.NotInDM()}
	if c.channelID != "" {
		checks = append(checks, c.inChartChannel)
	}
	if c.userPermissions != 0 {
		checks = append(checks, commands.UserPermissions(c.userPermissions))
	}
	return append(checks, commands.BotPermissions(commands.ReplyPermissions))
}

func (c *chartCommand) inChartChannel(ctx context.Context, cmdCtx *commands.Context) error {
	if cmdCtx.Interaction.ChannelID != c.channelID {
		return &domain.WrongContextError{Reason: fmt.Sprintf("use this command in <#%s>.", c.channelID)}
	}
	return nil
}

// Handle acknowledges the request; chart rendering is not available.
func (c *chartCommand) Handle(ctx context.Context, cmdCtx *commands.Context) error {
	in := cmdCtx.Interaction
	return cmdCtx.Reply(ctx, domain.Reply{
		Title:       "📈 Chart",
		Description: fmt.Sprintf("No chart for %s of <@%s> yet.", in.Option("metric"), in.Option("user")),
		Ephemeral:   true,
	})
}
