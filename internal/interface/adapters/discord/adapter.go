// Package discordadapter translates gateway events into domain interactions.
package discordadapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"prBot/internal/domain"
)

type InteractionHandler func(ctx context.Context, in *domain.Interaction)

// ReadyHandler runs once, on the first ready event of the process.
type ReadyHandler func(ctx context.Context, botUserID string)

// StateLookup is the cache the adapter reads guild names from.
type StateLookup interface {
	Guild(guildID string) (*discordgo.Guild, error)
}

type Adapter struct {
	session *discordgo.Session
	log     zerolog.Logger

	mu      sync.RWMutex
	handler InteractionHandler
	onReady ReadyHandler

	readyOnce sync.Once
	removers  []func()
}

func NewAdapter(session *discordgo.Session, logger zerolog.Logger) *Adapter {
	return &Adapter{
		session: session,
		log:     logger.With().Str("component", "gateway").Logger(),
	}
}

func (a *Adapter) SetHandler(h InteractionHandler) {
	a.mu.Lock()
	a.handler = h
	a.mu.Unlock()
}

func (a *Adapter) SetReadyHandler(h ReadyHandler) {
	a.mu.Lock()
	a.onReady = h
	a.mu.Unlock()
}

// Open subscribes to the gateway events and connects. Events are handled
// with ctx until Close.
func (a *Adapter) Open(ctx context.Context) error {
	a.removers = append(a.removers,
		a.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			a.handleReady(ctx, r)
		}),
		a.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
			a.handleInteraction(ctx, s, ic)
		}),
	)
	if err := a.session.Open(); err != nil {
		a.removeHandlers()
		return fmt.Errorf("discord: open gateway: %w", err)
	}
	return nil
}

func (a *Adapter) Close() error {
	a.removeHandlers()
	return a.session.Close()
}

func (a *Adapter) removeHandlers() {
	for _, remove := range a.removers {
		remove()
	}
	a.removers = nil
}

func (a *Adapter) handleReady(ctx context.Context, r *discordgo.Ready) {
	if r == nil || r.User == nil {
		return
	}
	a.log.Info().
		Str("user", r.User.Username).
		Str("user_id", r.User.ID).
		Int("guilds", len(r.Guilds)).
		Msgf("Logged in as %s", r.User.Username)

	a.readyOnce.Do(func() {
		a.mu.RLock()
		onReady := a.onReady
		a.mu.RUnlock()
		if onReady != nil {
			onReady(ctx, r.User.ID)
		}
	})
}

func (a *Adapter) handleInteraction(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic == nil || ic.Interaction == nil || ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	a.mu.RLock()
	handler := a.handler
	a.mu.RUnlock()
	if handler == nil {
		return
	}

	var state StateLookup
	if s != nil && s.State != nil {
		state = s.State
	}
	handler(ctx, ToInteraction(ic.Interaction, state))
}

// ToInteraction copies what the command core reads out of a gateway
// interaction. Subcommand names are joined onto the command name and their
// options flattened. state may be nil.
func ToInteraction(i *discordgo.Interaction, state StateLookup) *domain.Interaction {
	data := i.ApplicationCommandData()

	in := &domain.Interaction{
		ID:             i.ID,
		AppID:          i.AppID,
		Token:          i.Token,
		GuildID:        i.GuildID,
		ChannelID:      i.ChannelID,
		BotPermissions: domain.Permission(i.AppPermissions),
		Options:        make(map[string]string),
	}

	switch {
	case i.Member != nil:
		in.UserPermissions = domain.Permission(i.Member.Permissions)
		if i.Member.User != nil {
			in.User = domain.User{ID: i.Member.User.ID, Username: i.Member.User.Username}
		}
	case i.User != nil:
		in.User = domain.User{ID: i.User.ID, Username: i.User.Username}
	}

	parts := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 && isSubcommand(opts[0].Type) {
		parts = append(parts, opts[0].Name)
		opts = opts[0].Options
	}
	in.Command = strings.Join(parts, " ")
	for _, opt := range opts {
		in.Options[opt.Name] = optionValue(opt)
	}

	if state != nil && in.GuildID != "" {
		if g, err := state.Guild(in.GuildID); err == nil && g != nil {
			in.GuildName = g.Name
		}
	}
	return in
}

func isSubcommand(t discordgo.ApplicationCommandOptionType) bool {
	return t == discordgo.ApplicationCommandOptionSubCommand || t == discordgo.ApplicationCommandOptionSubCommandGroup
}

func optionValue(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return strconv.FormatInt(opt.IntValue(), 10)
	case discordgo.ApplicationCommandOptionBoolean:
		return strconv.FormatBool(opt.BoolValue())
	default:
		return fmt.Sprint(opt.Value)
	}
}
