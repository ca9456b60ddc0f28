// Package builtin lists the extensions compiled into the bot.
package builtin

import (
	"time"

	"prBot/internal/domain"
	"prBot/internal/extensions/general"
	"prBot/internal/extensions/owner"
	"prBot/internal/usecase/commands"
	"prBot/internal/usecase/extensions"
)

type Deps struct {
	Access    *commands.Access
	Latency   func() time.Duration
	Overrides owner.Overrider
	Presence  domain.PresencePublisher
	States    func() []domain.Extension
}

func Catalog(deps Deps) extensions.Catalog {
	return extensions.Catalog{
		"general": func(m extensions.Manifest) (extensions.Extension, error) {
			return general.New(deps.Access, deps.Latency, m), nil
		},
		"owner": func(m extensions.Manifest) (extensions.Extension, error) {
			return owner.New(owner.Config{
				Access:    deps.Access,
				Overrides: deps.Overrides,
				Presence:  deps.Presence,
				States:    deps.States,
			}), nil
		},
	}
}
