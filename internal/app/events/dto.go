package events

import (
	"time"

	"prBot/internal/domain"
)

// CommandDTO is published for every finished interaction, successful or not.
type CommandDTO struct {
	InteractionID string `json:"interaction_id"`
	Command       string `json:"command"`
	GuildID       string `json:"guild_id,omitempty"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Kind          string `json:"kind,omitempty"`
	IncidentID    string `json:"incident_id,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func NewCommandDTO(in *domain.Interaction, kind domain.ErrorKind, incidentID string) CommandDTO {
	return CommandDTO{
		InteractionID: in.ID,
		Command:       in.TopLevelCommand(),
		GuildID:       in.GuildID,
		UserID:        in.User.ID,
		Username:      in.User.Username,
		Kind:          string(kind),
		IncidentID:    incidentID,
		Timestamp:     now(),
	}
}

type PresenceDTO struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

const (
	PresenceSourceScheduler = "scheduler"
	PresenceSourceManual    = "manual"
	PresenceSourceExpired   = "expired"
)

func NewPresenceDTO(text, source string) PresenceDTO {
	return PresenceDTO{Text: text, Source: source, Timestamp: now()}
}

type ExtensionDTO struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func NewExtensionDTO(ext domain.Extension) ExtensionDTO {
	dto := ExtensionDTO{Name: ext.Name, State: string(ext.State)}
	if ext.Err != nil {
		dto.Error = ext.Err.Error()
	}
	return dto
}

type UsageDropDTO struct {
	UserID  string `json:"user_id"`
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
