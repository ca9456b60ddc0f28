package handle_interaction

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"prBot/internal/domain"
)

func TestHumanizeRetry(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{3665 * time.Second, "1 hours 1 minutes 5 seconds"},
		{45 * time.Second, "45 seconds"},
		{3600 * time.Second, "1 hours"},
		{61 * time.Second, "1 minutes 1 seconds"},
		{7260 * time.Second, "2 hours 1 minutes"},
		{90 * time.Hour, "90 hours"},
		{1500 * time.Millisecond, "2 seconds"},
		{200 * time.Millisecond, "0 seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HumanizeRetry(tt.in))
		})
	}
}

func TestClassifyRateLimited(t *testing.T) {
	c := Classify(&domain.CooldownError{RetryAfter: 3665 * time.Second})

	assert.Equal(t, domain.KindRateLimited, c.Kind)
	assert.Contains(t, c.Reply.Title, "1 hours 1 minutes 5 seconds")
	assert.True(t, c.Reply.Ephemeral)

	c = Classify(&domain.CooldownError{RetryAfter: 45 * time.Second})
	assert.Contains(t, c.Reply.Title, "in 45 seconds.")
	assert.NotContains(t, c.Reply.Title, "minutes")
	assert.NotContains(t, c.Reply.Title, "hours")
}

func TestClassifyIsTotal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     domain.ErrorKind
		title    string
		severity zerolog.Level
	}{
		{"blacklisted", domain.ErrBlacklisted, domain.KindBlacklisted, "You are blacklisted from using the bot!", zerolog.WarnLevel},
		{"not owner", fmt.Errorf("check: %w", domain.ErrNotOwner), domain.KindNotOwner, "You are not the owner of the bot!", zerolog.WarnLevel},
		{"user perms", &domain.MissingPermissionsError{Permissions: []string{"ban_members", "kick_members"}}, domain.KindMissingUserPermissions, "You are missing the permission(s) `ban_members, kick_members` to execute this command!", zerolog.InfoLevel},
		{"bot perms", &domain.MissingPermissionsError{Bot: true, Permissions: []string{"embed_links"}}, domain.KindMissingBotPermissions, "I am missing the permission(s) `embed_links` to fully perform this command!", zerolog.InfoLevel},
		{"wrong context", &domain.WrongContextError{Reason: "use this in #prs"}, domain.KindWrongContext, "Wrong channel!", zerolog.InfoLevel},
		{"not in voice", domain.ErrNotInVoice, domain.KindNotInVoice, "You are not in a voice channel", zerolog.InfoLevel},
		{"bot not in voice", domain.ErrBotNotInVoice, domain.KindBotNotInVoice, "Bot is not in vc", zerolog.InfoLevel},
		{"bot not playing", domain.ErrBotNotPlaying, domain.KindBotNotPlaying, "The bot is not playing anything at the moment.", zerolog.InfoLevel},
		{"timed out", domain.ErrTimedOut, domain.KindTimedOut, "You took too long!", zerolog.InfoLevel},
		{"extension", &domain.ExtensionError{Extension: "general", Err: errors.New("secret detail")}, domain.KindExtensionError, "Cog error!", zerolog.ErrorLevel},
		{"transport", &domain.TransportError{StatusCode: 400, Err: errors.New("raw body")}, domain.KindTransportError, "Something went wrong!", zerolog.ErrorLevel},
		{"unclassified", errors.New("no data for squat"), domain.KindUnclassified, "Error!", zerolog.ErrorLevel},
		{"nil", nil, domain.KindUnclassified, "Error!", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.title, c.Reply.Title)
			assert.Equal(t, tt.severity, c.Severity)
			assert.True(t, c.Reply.Failure)
		})
	}
}

func TestClassifyRendersPayloads(t *testing.T) {
	c := Classify(&domain.WrongContextError{Reason: "use this in #prs"})
	assert.Equal(t, "Use this in #prs", c.Reply.Description)

	c = Classify(errors.New("no data for squat"))
	assert.Equal(t, "No data for squat", c.Reply.Description)

	c = Classify(&domain.ExtensionError{Extension: "general", Err: errors.New("secret detail")})
	assert.Empty(t, c.Reply.Description)

	c = Classify(&domain.TransportError{Err: errors.New("raw body")})
	assert.Equal(t, "most likely daily application command limits.", c.Reply.Description)
	assert.NotContains(t, c.Reply.Description, "raw body")
}

func TestClassifyExtensionBeforeTransport(t *testing.T) {
	err := &domain.ExtensionError{Extension: "general", Err: &domain.TransportError{Err: errors.New("x")}}
	assert.Equal(t, domain.KindExtensionError, Classify(err).Kind)
}

func TestEveryKindRendersATitle(t *testing.T) {
	samples := map[domain.ErrorKind]error{
		domain.KindRateLimited:            &domain.CooldownError{RetryAfter: time.Second},
		domain.KindBlacklisted:            domain.ErrBlacklisted,
		domain.KindNotOwner:               domain.ErrNotOwner,
		domain.KindMissingUserPermissions: &domain.MissingPermissionsError{Permissions: []string{"speak"}},
		domain.KindMissingBotPermissions:  &domain.MissingPermissionsError{Bot: true, Permissions: []string{"speak"}},
		domain.KindWrongContext:           &domain.WrongContextError{Reason: "x"},
		domain.KindNotInVoice:             domain.ErrNotInVoice,
		domain.KindBotNotInVoice:          domain.ErrBotNotInVoice,
		domain.KindBotNotPlaying:          domain.ErrBotNotPlaying,
		domain.KindTimedOut:               domain.ErrTimedOut,
		domain.KindExtensionError:         &domain.ExtensionError{Err: errors.New("x")},
		domain.KindTransportError:         &domain.TransportError{Err: errors.New("x")},
		domain.KindUnclassified:           errors.New("x"),
	}
	for _, kind := range domain.ErrorKinds {
		err, ok := samples[kind]
		if !assert.True(t, ok, "no sample for %s", kind) {
			continue
		}
		c := Classify(err)
		assert.Equal(t, kind, c.Kind)
		assert.NotEmpty(t, c.Reply.Title, kind)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Élan", capitalize("élan"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "ABC", capitalize("aBC"))
}
