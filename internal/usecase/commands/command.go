package commands

import (
	"context"

	"prBot/internal/domain"
)

type Command interface {
	Name() string
	Description() string
	Options() []domain.CommandOption
	Handle(ctx context.Context, c *Context) error
}

// Check is a precondition evaluated before Handle. A non-nil error aborts the
// command and is classified like any other failure.
type Check func(ctx context.Context, c *Context) error

// Guarded is implemented by commands that have preconditions.
type Guarded interface {
	Checks() []Check
}

type Context struct {
	Interaction *domain.Interaction
	Out         domain.InteractionResponder
}

// Reply sends the initial response, or a follow-up when the interaction was
// already acknowledged.
func (c *Context) Reply(ctx context.Context, reply domain.Reply) error {
	if c.Interaction.Acknowledged() {
		return c.Out.FollowUp(ctx, c.Interaction, reply)
	}
	return c.Out.Respond(ctx, c.Interaction, reply)
}
