package commands

import (
	"context"
	"strings"

	"prBot/internal/domain"
)

// Access holds the owner and blacklist sets the checks consult.
type Access struct {
	owners      map[string]struct{}
	blacklisted map[string]struct{}
}

func NewAccess(owners, blacklisted []string) *Access {
	return &Access{
		owners:      toSet(owners),
		blacklisted: toSet(blacklisted),
	}
}

func (a *Access) IsOwner(userID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.owners[userID]
	return ok
}

func (a *Access) IsBlacklisted(userID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.blacklisted[userID]
	return ok
}

func (a *Access) NotBlacklisted() Check {
	return func(ctx context.Context, c *Context) error {
		if a.IsBlacklisted(c.Interaction.User.ID) {
			return domain.ErrBlacklisted
		}
		return nil
	}
}

func (a *Access) OwnerOnly() Check {
	return func(ctx context.Context, c *Context) error {
		if !a.IsOwner(c.Interaction.User.ID) {
			return domain.ErrNotOwner
		}
		return nil
	}
}

func NotInDM() Check {
	return func(ctx context.Context, c *Context) error {
		if c.Interaction.InDM() {
			return &domain.WrongContextError{Reason: "this command cannot be used in private messages."}
		}
		return nil
	}
}

// ReplyPermissions are what the bot needs to answer with an embed.
const ReplyPermissions = domain.PermSendMessages | domain.PermEmbedLinks

func UserPermissions(required domain.Permission) Check {
	return func(ctx context.Context, c *Context) error {
		if missing := c.Interaction.UserPermissions.Missing(required); len(missing) > 0 {
			return &domain.MissingPermissionsError{Permissions: missing}
		}
		return nil
	}
}

func BotPermissions(required domain.Permission) Check {
	return func(ctx context.Context, c *Context) error {
		if missing := c.Interaction.BotPermissions.Missing(required); len(missing) > 0 {
			return &domain.MissingPermissionsError{Bot: true, Permissions: missing}
		}
		return nil
	}
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
