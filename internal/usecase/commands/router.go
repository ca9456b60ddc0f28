package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"prBot/internal/domain"
)

// ErrUnknownCommand is returned when an interaction names no registered command.
type ErrUnknownCommand struct {
	Name string
}

func (e *ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

type Registration struct {
	Scope   domain.Scope
	Command Command
}

type entry struct {
	ref domain.CommandRef
	cmd Command
}

// Router is the command table. Commands are registered before the gateway
// opens; afterwards only the platform ids are written, once each.
type Router struct {
	mu       sync.RWMutex
	cmdIndex map[domain.CommandKey]*entry
}

func NewRouter() *Router {
	return &Router{
		cmdIndex: make(map[domain.CommandKey]*entry),
	}
}

// RegisterAll adds every registration of one extension, or none of them if
// any name is taken within its scope.
func (r *Router) RegisterAll(extension string, regs []Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[domain.CommandKey]*entry, len(regs))
	for _, reg := range regs {
		if reg.Command == nil {
			return fmt.Errorf("commands: %s: nil command", extension)
		}
		name := strings.ToLower(strings.TrimSpace(reg.Command.Name()))
		if name == "" {
			return fmt.Errorf("commands: %s: empty command name", extension)
		}
		ref := domain.CommandRef{
			Name:        name,
			Description: reg.Command.Description(),
			Scope:       reg.Scope,
			Extension:   extension,
			Options:     reg.Command.Options(),
		}
		key := ref.Key()
		if existing, ok := r.cmdIndex[key]; ok {
			return fmt.Errorf("commands: %s: %q already registered in %s by %s", extension, name, reg.Scope, existing.ref.Extension)
		}
		if _, ok := pending[key]; ok {
			return fmt.Errorf("commands: %s: %q declared twice in %s", extension, name, reg.Scope)
		}
		pending[key] = &entry{ref: ref, cmd: reg.Command}
	}

	for key, e := range pending {
		r.cmdIndex[key] = e
	}
	return nil
}

func (r *Router) Register(extension string, scope domain.Scope, cmd Command) error {
	return r.RegisterAll(extension, []Registration{{Scope: scope, Command: cmd}})
}

// Refs returns copies of the declared commands ordered by scope then name.
func (r *Router) Refs() []domain.CommandRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CommandRef, 0, len(r.cmdIndex))
	for _, e := range r.cmdIndex {
		out = append(out, e.ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scope.GuildID != out[j].Scope.GuildID {
			return out[i].Scope.GuildID < out[j].Scope.GuildID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *Router) Lookup(scope domain.Scope, name string) (domain.CommandRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cmdIndex[domain.CommandKey{Scope: scope, Name: strings.ToLower(name)}]
	if !ok {
		return domain.CommandRef{}, false
	}
	return e.ref, true
}

// SyncAndCache writes platform-assigned ids onto the matching local refs.
// Synced entries without a local match are returned and otherwise ignored.
// An id already cached is kept.
func (r *Router) SyncAndCache(synced []domain.CommandRef) []domain.CommandRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	var unmatched []domain.CommandRef
	for _, s := range synced {
		e, ok := r.cmdIndex[s.Key()]
		if !ok {
			unmatched = append(unmatched, s)
			continue
		}
		if e.ref.ID == "" {
			e.ref.ID = s.ID
		}
	}
	return unmatched
}

func (r *Router) resolve(in *domain.Interaction) (*entry, bool) {
	name := strings.ToLower(in.TopLevelCommand())

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !in.InDM() {
		if e, ok := r.cmdIndex[domain.CommandKey{Scope: domain.GuildScope(in.GuildID), Name: name}]; ok {
			return e, true
		}
	}
	e, ok := r.cmdIndex[domain.CommandKey{Scope: domain.GlobalScope, Name: name}]
	return e, ok
}

// Handle runs the command named by the interaction: checks first, then the
// command itself. A panic inside either is returned as an error.
func (r *Router) Handle(ctx context.Context, in *domain.Interaction, out domain.InteractionResponder) (err error) {
	e, ok := r.resolve(in)
	if !ok {
		return &ErrUnknownCommand{Name: in.Command}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("command %s panicked: %v", e.ref.Name, rec)
		}
	}()

	cmdCtx := &Context{
		Interaction: in,
		Out:         out,
	}

	if guarded, ok := e.cmd.(Guarded); ok {
		for _, check := range guarded.Checks() {
			if err := check(ctx, cmdCtx); err != nil {
				return err
			}
		}
	}

	return e.cmd.Handle(ctx, cmdCtx)
}
