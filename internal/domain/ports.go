package domain

import "context"

type Reply struct {
	Title       string
	Description string
	Emoji       string
	Ephemeral   bool
	Failure     bool
}

// InteractionResponder sends replies for an interaction. Respond is the
// initial response and marks the interaction acknowledged; FollowUp is used
// once it already is.
type InteractionResponder interface {
	Respond(ctx context.Context, in *Interaction, reply Reply) error
	FollowUp(ctx context.Context, in *Interaction, reply Reply) error
}

type PresencePublisher interface {
	SetPresence(ctx context.Context, text string) error
}

// CommandSyncer registers the declared commands with the platform and
// returns them with the ids the platform assigned.
type CommandSyncer interface {
	SyncCommands(ctx context.Context, refs []CommandRef) ([]CommandRef, error)
}
