package domain

import "sync/atomic"

type User struct {
	ID       string
	Username string
}

func (u User) String() string {
	if u.Username == "" {
		return u.ID
	}
	return u.Username
}

// Interaction is one user-triggered command invocation. Only the fields the
// command core reads are carried; the platform adapter fills them in.
type Interaction struct {
	ID    string
	AppID string
	Token string

	GuildID   string
	GuildName string
	ChannelID string
	User      User

	// Command is the qualified name, subcommands separated by spaces.
	Command string
	Options map[string]string

	UserPermissions Permission
	BotPermissions  Permission

	acknowledged atomic.Bool
}

func (i *Interaction) InDM() bool {
	return i.GuildID == ""
}

func (i *Interaction) TopLevelCommand() string {
	return TopLevelName(i.Command)
}

func (i *Interaction) Option(name string) string {
	if i.Options == nil {
		return ""
	}
	return i.Options[name]
}

// Acknowledged reports whether an initial response was already sent.
func (i *Interaction) Acknowledged() bool {
	return i.acknowledged.Load()
}

func (i *Interaction) MarkAcknowledged() {
	i.acknowledged.Store(true)
}
