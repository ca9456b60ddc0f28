package commands

import (
	"context"

	"prBot/internal/domain"
)

type CommandDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scope       string   `json:"scope"`
	Extension   string   `json:"extension"`
	ID          string   `json:"id,omitempty"`
	Synced      bool     `json:"synced"`
	Options     []string `json:"options,omitempty"`
}

// Service exposes the command table to operators.
type Service struct {
	router *Router
}

func NewService(router *Router) *Service {
	return &Service{router: router}
}

func (s *Service) List(ctx context.Context) ([]CommandDTO, error) {
	_ = ctx
	if s == nil || s.router == nil {
		return nil, nil
	}
	refs := s.router.Refs()
	out := make([]CommandDTO, 0, len(refs))
	for _, ref := range refs {
		out = append(out, commandDTOFromDomain(ref))
	}
	return out, nil
}

func commandDTOFromDomain(ref domain.CommandRef) CommandDTO {
	options := make([]string, 0, len(ref.Options))
	for _, opt := range ref.Options {
		options = append(options, opt.Name)
	}
	return CommandDTO{
		Name:        ref.Name,
		Description: ref.Description,
		Scope:       ref.Scope.String(),
		Extension:   ref.Extension,
		ID:          ref.ID,
		Synced:      ref.ID != "",
		Options:     options,
	}
}
