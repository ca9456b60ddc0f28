package handle_interaction

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"prBot/internal/domain"
)

type Classification struct {
	Kind     domain.ErrorKind
	Reply    domain.Reply
	Severity zerolog.Level
}

// Classify maps any error to exactly one kind. The order of the checks is the
// precedence when an error matches several kinds through wrapping.
func Classify(err error) Classification {
	kind := kindOf(err)
	return Classification{
		Kind:     kind,
		Reply:    render(kind, err),
		Severity: severityOf(kind),
	}
}

func kindOf(err error) domain.ErrorKind {
	var (
		cooldown  *domain.CooldownError
		missing   *domain.MissingPermissionsError
		wrong     *domain.WrongContextError
		extension *domain.ExtensionError
		transport *domain.TransportError
	)
	switch {
	case err == nil:
		return domain.KindUnclassified
	case errors.As(err, &cooldown):
		return domain.KindRateLimited
	case errors.Is(err, domain.ErrBlacklisted):
		return domain.KindBlacklisted
	case errors.Is(err, domain.ErrNotOwner):
		return domain.KindNotOwner
	case errors.As(err, &missing) && !missing.Bot:
		return domain.KindMissingUserPermissions
	case errors.As(err, &missing) && missing.Bot:
		return domain.KindMissingBotPermissions
	case errors.As(err, &wrong):
		return domain.KindWrongContext
	case errors.Is(err, domain.ErrNotInVoice):
		return domain.KindNotInVoice
	case errors.Is(err, domain.ErrBotNotInVoice):
		return domain.KindBotNotInVoice
	case errors.Is(err, domain.ErrBotNotPlaying):
		return domain.KindBotNotPlaying
	case errors.Is(err, domain.ErrTimedOut):
		return domain.KindTimedOut
	case errors.As(err, &extension):
		return domain.KindExtensionError
	case errors.As(err, &transport):
		return domain.KindTransportError
	default:
		return domain.KindUnclassified
	}
}

func render(kind domain.ErrorKind, err error) domain.Reply {
	reply := domain.Reply{Failure: true}

	switch kind {
	case domain.KindRateLimited:
		var cooldown *domain.CooldownError
		errors.As(err, &cooldown)
		reply.Title = "**Please slow down** - You can use this command again in " + HumanizeRetry(cooldown.RetryAfter) + "."
		reply.Emoji = "⏲️"
		reply.Ephemeral = true
	case domain.KindBlacklisted:
		reply.Title = "You are blacklisted from using the bot!"
	case domain.KindNotOwner:
		reply.Title = "You are not the owner of the bot!"
		reply.Emoji = "🛑"
	case domain.KindMissingUserPermissions:
		reply.Title = "You are missing the permission(s) `" + missingNames(err) + "` to execute this command!"
	case domain.KindMissingBotPermissions:
		reply.Title = "I am missing the permission(s) `" + missingNames(err) + "` to fully perform this command!"
	case domain.KindWrongContext:
		var wrong *domain.WrongContextError
		errors.As(err, &wrong)
		reply.Title = "Wrong channel!"
		reply.Description = capitalize(wrong.Reason)
	case domain.KindNotInVoice:
		reply.Title = "You are not in a voice channel"
		reply.Emoji = "🔇"
	case domain.KindBotNotInVoice:
		reply.Title = "Bot is not in vc"
		reply.Description = "use /join to add bot to vc"
		reply.Emoji = "🔇"
	case domain.KindBotNotPlaying:
		reply.Title = "The bot is not playing anything at the moment."
		reply.Description = "Use /play to play a song or playlist"
		reply.Emoji = "🔇"
	case domain.KindTimedOut:
		reply.Title = "You took too long!"
		reply.Emoji = "⏲️"
	case domain.KindExtensionError:
		reply.Title = "Cog error!"
	case domain.KindTransportError:
		reply.Title = "Something went wrong!"
		reply.Description = "most likely daily application command limits."
	case domain.KindUnclassified:
		reply.Title = "Error!"
		if err != nil {
			reply.Description = capitalize(err.Error())
		}
	}
	return reply
}

func severityOf(kind domain.ErrorKind) zerolog.Level {
	switch kind {
	case domain.KindBlacklisted, domain.KindNotOwner:
		return zerolog.WarnLevel
	case domain.KindExtensionError, domain.KindTransportError, domain.KindUnclassified:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func missingNames(err error) string {
	var missing *domain.MissingPermissionsError
	if !errors.As(err, &missing) {
		return ""
	}
	return strings.Join(missing.Permissions, ", ")
}

// capitalize upper-cases the first letter only.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
