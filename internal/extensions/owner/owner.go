// Package owner holds the commands reserved to the bot owners.
package owner

import (
	"context"
	"fmt"
	"strings"

	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
	"prBot/internal/usecase/extensions"
)

// Overrider stores a manual presence that suppresses rotation for a while.
type Overrider interface {
	SetOverride(text string) domain.ManualOverride
}

type Config struct {
	Access    *commands.Access
	Overrides Overrider
	Presence  domain.PresencePublisher
	// States reports the extension table; it is read when the command runs.
	States func() []domain.Extension
}

type Extension struct {
	cfg Config
}

func New(cfg Config) *Extension {
	return &Extension{cfg: cfg}
}

func (e *Extension) Setup(reg extensions.Registrar) error {
	if e.cfg.Overrides == nil || e.cfg.Presence == nil {
		return fmt.Errorf("owner: presence collaborators are required")
	}
	reg.Add(&statusCommand{cfg: e.cfg})
	reg.Add(&extensionsCommand{cfg: e.cfg})
	return nil
}

type statusCommand struct {
	cfg Config
}

func (c *statusCommand) Name() string        { return "status" }
func (c *statusCommand) Description() string { return "Set the bot status for the next hour." }

func (c *statusCommand) Options() []domain.CommandOption {
	return []domain.CommandOption{
		{Name: "text", Description: "The status to show", Kind: domain.OptionString, Required: true},
	}
}

func (c *statusCommand) Checks() []commands.Check {
	return []commands.Check{c.cfg.Access.OwnerOnly()}
}

func (c *statusCommand) Handle(ctx context.Context, cmdCtx *commands.Context) error {
	text := strings.TrimSpace(cmdCtx.Interaction.Option("text"))
	if text == "" {
		return &domain.WrongContextError{Reason: "the status cannot be empty."}
	}
	c.cfg.Overrides.SetOverride(text)
	if err := c.cfg.Presence.SetPresence(ctx, text); err != nil {
		return err
	}
	return cmdCtx.Reply(ctx, domain.Reply{
		Title:       "Status updated",
		Description: fmt.Sprintf("Showing \"%s\" for the next hour.", text),
		Ephemeral:   true,
	})
}

type extensionsCommand struct {
	cfg Config
}

func (c *extensionsCommand) Name() string                    { return "extensions" }
func (c *extensionsCommand) Description() string             { return "List the loaded extensions." }
func (c *extensionsCommand) Options() []domain.CommandOption { return nil }

func (c *extensionsCommand) Checks() []commands.Check {
	return []commands.Check{c.cfg.Access.OwnerOnly()}
}

func (c *extensionsCommand) Handle(ctx context.Context, cmdCtx *commands.Context) error {
	var states []domain.Extension
	if c.cfg.States != nil {
		states = c.cfg.States()
	}
	return cmdCtx.Reply(ctx, domain.Reply{
		Title:       "Extensions",
		Description: describeStates(states),
		Ephemeral:   true,
	})
}

func describeStates(states []domain.Extension) string {
	if len(states) == 0 {
		return "No extensions discovered."
	}
	var b strings.Builder
	for i, st := range states {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "`%s` %s", st.Name, st.State)
		if st.Err != nil {
			fmt.Fprintf(&b, ": %v", st.Err)
		}
	}
	return b.String()
}
