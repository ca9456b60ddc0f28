package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorKind string

const (
	KindRateLimited            ErrorKind = "rate_limited"
	KindBlacklisted            ErrorKind = "blacklisted"
	KindNotOwner               ErrorKind = "not_owner"
	KindMissingUserPermissions ErrorKind = "missing_user_permissions"
	KindMissingBotPermissions  ErrorKind = "missing_bot_permissions"
	KindWrongContext           ErrorKind = "wrong_context"
	KindNotInVoice             ErrorKind = "not_in_voice"
	KindBotNotInVoice          ErrorKind = "bot_not_in_voice"
	KindBotNotPlaying          ErrorKind = "bot_not_playing"
	KindTimedOut               ErrorKind = "timed_out"
	KindExtensionError         ErrorKind = "extension_error"
	KindTransportError         ErrorKind = "transport_error"
	KindUnclassified           ErrorKind = "unclassified"
)

// ErrorKinds lists every kind in classification order.
var ErrorKinds = []ErrorKind{
	KindRateLimited,
	KindBlacklisted,
	KindNotOwner,
	KindMissingUserPermissions,
	KindMissingBotPermissions,
	KindWrongContext,
	KindNotInVoice,
	KindBotNotInVoice,
	KindBotNotPlaying,
	KindTimedOut,
	KindExtensionError,
	KindTransportError,
	KindUnclassified,
}

var (
	ErrBlacklisted   = errors.New("user is blacklisted")
	ErrNotOwner      = errors.New("user is not an owner of the bot")
	ErrNotInVoice    = errors.New("user is not in a voice channel")
	ErrBotNotInVoice = errors.New("bot is not in a voice channel")
	ErrBotNotPlaying = errors.New("bot is not playing anything")
	ErrTimedOut      = errors.New("interaction timed out")
)

// CooldownError is the platform telling us to retry later.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command on cooldown, retry in %s", e.RetryAfter)
}

type MissingPermissionsError struct {
	Bot         bool
	Permissions []string
}

func (e *MissingPermissionsError) Error() string {
	who := "user"
	if e.Bot {
		who = "bot"
	}
	return fmt.Sprintf("%s is missing permission(s): %s", who, strings.Join(e.Permissions, ", "))
}

// WrongContextError is a failed channel or location precondition. Reason is
// shown to the user.
type WrongContextError struct {
	Reason string
}

func (e *WrongContextError) Error() string {
	return e.Reason
}

type ExtensionError struct {
	Extension string
	Err       error
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("extension %s: %v", e.Extension, e.Err)
}

func (e *ExtensionError) Unwrap() error {
	return e.Err
}

// TransportError is a failure reported by the platform API itself.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RootCause follows the Unwrap chain to the innermost error.
func RootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// ErrorTypeName is the short type name logged next to a failure.
func ErrorTypeName(err error) string {
	if err == nil {
		return ""
	}
	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
