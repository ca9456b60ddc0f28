package domain

import "strings"

// Scope is where a command is registered. The zero value is the global scope.
type Scope struct {
	GuildID string
}

var GlobalScope = Scope{}

func GuildScope(guildID string) Scope {
	return Scope{GuildID: guildID}
}

func (s Scope) IsGlobal() bool {
	return s.GuildID == ""
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "guild:" + s.GuildID
}

type CommandOption struct {
	Name        string
	Description string
	Kind        OptionKind
	Required    bool
}

type OptionKind string

const (
	OptionString OptionKind = "string"
	OptionUser   OptionKind = "user"
	OptionInt    OptionKind = "integer"
)

// CommandRef is a locally declared command. ID stays empty until the
// platform sync assigns one and is never changed afterwards.
type CommandRef struct {
	Name        string
	Description string
	Scope       Scope
	Extension   string
	Options     []CommandOption
	ID          string
}

func (c CommandRef) Key() CommandKey {
	return CommandKey{Scope: c.Scope, Name: strings.ToLower(c.Name)}
}

type CommandKey struct {
	Scope Scope
	Name  string
}

// TopLevelName returns the first word of a qualified command name
// ("stats show" -> "stats").
func TopLevelName(qualified string) string {
	fields := strings.Fields(qualified)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
