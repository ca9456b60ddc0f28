package discordinfra

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"prBot/internal/domain"
)

// API is the part of *discordgo.Session the client calls.
type API interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

const (
	colorDefault = 0xBEBEFE
	colorFailure = 0xE02B2B
)

// Client implements the outward ports (replies, presence, command sync) on
// top of a discordgo session.
type Client struct {
	api API
	log zerolog.Logger

	mu    sync.RWMutex
	appID string
}

func NewClient(api API, appID string, logger zerolog.Logger) *Client {
	return &Client{
		api:   api,
		appID: appID,
		log:   logger.With().Str("component", "discord").Logger(),
	}
}

// SetApplicationID fills in the application id when the configuration left
// it empty; the ready event carries it.
func (c *Client) SetApplicationID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.appID == "" {
		c.appID = id
	}
}

func (c *Client) ApplicationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appID
}

// mapError turns discordgo failures into the domain error types.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) && rl.RateLimit != nil && rl.TooManyRequests != nil {
		return &domain.CooldownError{RetryAfter: rl.RetryAfter}
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		code := 0
		if rest.Response != nil {
			code = rest.Response.StatusCode
		}
		return &domain.TransportError{StatusCode: code, Err: err}
	}
	return err
}
