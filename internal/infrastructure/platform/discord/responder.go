package discordinfra

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"prBot/internal/domain"
)

func (c *Client) Respond(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embedOf(reply)},
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := c.api.InteractionRespond(rawInteraction(in), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return mapError(err)
	}
	in.MarkAcknowledged()
	return nil
}

func (c *Client) FollowUp(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embedOf(reply)},
	}
	if reply.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := c.api.FollowupMessageCreate(rawInteraction(in), true, params)
	return mapError(err)
}

// rawInteraction rebuilds the fields the webhook endpoints address by.
func rawInteraction(in *domain.Interaction) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:    in.ID,
		AppID: in.AppID,
		Token: in.Token,
	}
}

func embedOf(reply domain.Reply) *discordgo.MessageEmbed {
	title := reply.Title
	if reply.Emoji != "" {
		title = strings.TrimSpace(reply.Emoji + " " + title)
	}
	color := colorDefault
	if reply.Failure {
		color = colorFailure
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: reply.Description,
		Color:       color,
	}
}
