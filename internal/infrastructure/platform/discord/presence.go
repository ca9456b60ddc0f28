package discordinfra

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SetPresence shows text as the bot's custom status.
func (c *Client) SetPresence(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapError(c.api.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name:  "Custom Status",
			Type:  discordgo.ActivityTypeCustom,
			State: text,
		}},
	}))
}
