// Package handle_interaction runs commands for incoming interactions and
// turns their outcome into exactly one reply on failure, or a log line and a
// usage increment on success.
package handle_interaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"prBot/internal/app/events"
	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
)

type Config struct {
	Router *commands.Router
	Out    domain.InteractionResponder
	Usage  domain.UsageSink
	Bus    *events.Bus
	Logger zerolog.Logger
	// NewIncidentID defaults to uuid.NewString.
	NewIncidentID func() string
}

type Interactor struct {
	router     *commands.Router
	out        domain.InteractionResponder
	usage      domain.UsageSink
	bus        *events.Bus
	log        zerolog.Logger
	incidentID func() string
}

func NewInteractor(cfg Config) *Interactor {
	newID := cfg.NewIncidentID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Interactor{
		router:     cfg.Router,
		out:        cfg.Out,
		usage:      cfg.Usage,
		bus:        cfg.Bus,
		log:        cfg.Logger.With().Str("component", "commands").Logger(),
		incidentID: newID,
	}
}

// Handle runs the interaction's command. Command failures never escape: they
// are answered and logged here.
func (uc *Interactor) Handle(ctx context.Context, in *domain.Interaction) {
	if err := uc.router.Handle(ctx, in, uc.out); err != nil {
		uc.HandleError(ctx, in, err)
		return
	}
	uc.HandleCompleted(ctx, in)
}

// HandleCompleted logs the executed command and records one usage for its
// top-level name. Recording never blocks.
func (uc *Interactor) HandleCompleted(ctx context.Context, in *domain.Interaction) {
	executed := in.TopLevelCommand()
	uc.log.Info().
		Str("command", executed).
		Str("guild_id", in.GuildID).
		Str("user_id", in.User.ID).
		Msg(executedMessage(in, executed))

	uc.publish(events.TopicCommandCompleted, events.NewCommandDTO(in, "", ""))

	if uc.usage != nil {
		uc.usage.Record(in.User.ID, executed, 1)
	}
}

// HandleError classifies err and sends exactly one reply: the initial
// response when the interaction is not acknowledged yet, a follow-up
// otherwise. It emits exactly one log line.
func (uc *Interactor) HandleError(ctx context.Context, in *domain.Interaction, err error) {
	class := Classify(err)
	incident := uc.incidentID()

	path := "initial"
	var sendErr error
	if in.Acknowledged() {
		path = "follow_up"
		sendErr = uc.out.FollowUp(ctx, in, class.Reply)
	} else {
		sendErr = uc.out.Respond(ctx, in, class.Reply)
	}

	level := class.Severity
	if sendErr != nil && level < zerolog.ErrorLevel {
		level = zerolog.ErrorLevel
	}
	event := uc.log.WithLevel(level).
		Str("incident_id", incident).
		Str("kind", string(class.Kind)).
		Str("command", in.Command).
		Str("guild_id", in.GuildID).
		Str("user_id", in.User.ID).
		Str("error_type", domain.ErrorTypeName(err)).
		Str("reply", path)
	if sendErr != nil {
		event = event.AnErr("send_error", sendErr)
	}
	event.Msg(failureMessage(in, class.Kind, err))

	uc.publish(events.TopicCommandErrored, events.NewCommandDTO(in, class.Kind, incident))
}

func (uc *Interactor) publish(topic string, payload any) {
	if uc.bus != nil {
		uc.bus.Publish(topic, payload)
	}
}

func executedMessage(in *domain.Interaction, executed string) string {
	if in.InDM() {
		return fmt.Sprintf("Executed %s command by %s (ID: %s) in DMs", executed, in.User, in.User.ID)
	}
	return fmt.Sprintf("Executed %s command in %s (ID: %s) by %s (ID: %s)", executed, in.GuildName, in.GuildID, in.User, in.User.ID)
}

func failureMessage(in *domain.Interaction, kind domain.ErrorKind, err error) string {
	var what string
	switch kind {
	case domain.KindBlacklisted:
		what = "a command"
	case domain.KindNotOwner:
		what = "an owner only command"
	default:
		if err == nil {
			return string(kind)
		}
		return err.Error()
	}

	where := "in the bot's DMs"
	if !in.InDM() {
		where = fmt.Sprintf("in the guild %s (ID: %s)", in.GuildName, in.GuildID)
	}
	reason := "the user is blacklisted from using the bot"
	if kind == domain.KindNotOwner {
		reason = "the user is not an owner of the bot"
	}
	return fmt.Sprintf("%s (ID: %s) tried to execute %s %s, but %s.", in.User, in.User.ID, what, where, reason)
}
