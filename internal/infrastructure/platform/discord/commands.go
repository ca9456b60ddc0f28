package discordinfra

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"prBot/internal/domain"
)

// SyncCommands overwrites the platform's command list once per scope and
// returns the synced commands with their platform ids. A failing scope does
// not stop the others; its error is joined into the returned one.
func (c *Client) SyncCommands(ctx context.Context, refs []domain.CommandRef) ([]domain.CommandRef, error) {
	appID := c.ApplicationID()
	if appID == "" {
		return nil, fmt.Errorf("discord: application id unknown")
	}

	byScope := make(map[domain.Scope][]*discordgo.ApplicationCommand)
	for _, ref := range refs {
		byScope[ref.Scope] = append(byScope[ref.Scope], applicationCommand(ref))
	}
	scopes := make([]domain.Scope, 0, len(byScope))
	for scope := range byScope {
		scopes = append(scopes, scope)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].GuildID < scopes[j].GuildID })

	var (
		synced []domain.CommandRef
		errs   []error
	)
	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		created, err := c.api.ApplicationCommandBulkOverwrite(appID, scope.GuildID, byScope[scope])
		if err != nil {
			errs = append(errs, fmt.Errorf("discord: sync %s: %w", scope, mapError(err)))
			continue
		}
		for _, cmd := range created {
			synced = append(synced, domain.CommandRef{
				Name:        cmd.Name,
				Description: cmd.Description,
				Scope:       scope,
				ID:          cmd.ID,
			})
		}
		c.log.Info().Str("scope", scope.String()).Int("commands", len(created)).Msg("application commands synced")
	}
	return synced, errors.Join(errs...)
}

func applicationCommand(ref domain.CommandRef) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        ref.Name,
		Description: ref.Description,
		Type:        discordgo.ChatApplicationCommand,
		GuildID:     ref.Scope.GuildID,
	}
	for _, opt := range ref.Options {
		cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
			Type:        optionType(opt.Kind),
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		})
	}
	return cmd
}

func optionType(kind domain.OptionKind) discordgo.ApplicationCommandOptionType {
	switch kind {
	case domain.OptionUser:
		return discordgo.ApplicationCommandOptionUser
	case domain.OptionInt:
		return discordgo.ApplicationCommandOptionInteger
	default:
		return discordgo.ApplicationCommandOptionString
	}
}
