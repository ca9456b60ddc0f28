// Package extensions activates the command modules listed in a manifest
// directory. A broken extension is marked failed and never stops the others.
package extensions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"prBot/internal/app/events"
	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
)

var ErrUnknownExtension = errors.New("no such extension in catalog")

// Manifest is the on-disk description of one extension.
type Manifest struct {
	// Factory names the catalog entry; it defaults to the file name.
	Factory  string            `yaml:"factory"`
	GuildID  string            `yaml:"guild_id"`
	Settings map[string]string `yaml:"settings"`
}

func (m Manifest) Scope() domain.Scope {
	if m.GuildID == "" {
		return domain.GlobalScope
	}
	return domain.GuildScope(m.GuildID)
}

// Registrar receives the commands an extension contributes.
type Registrar interface {
	// Add registers cmd in the extension's manifest scope.
	Add(cmd commands.Command)
	AddIn(scope domain.Scope, cmd commands.Command)
}

type Extension interface {
	Setup(reg Registrar) error
}

type Factory func(m Manifest) (Extension, error)

type Catalog map[string]Factory

type Result struct {
	Loaded []string
	Failed map[string]error
}

type Loader struct {
	catalog Catalog
	router  *commands.Router
	bus     *events.Bus
	log     zerolog.Logger

	mu     sync.RWMutex
	states []domain.Extension
}

func NewLoader(catalog Catalog, router *commands.Router, bus *events.Bus, logger zerolog.Logger) *Loader {
	return &Loader{
		catalog: catalog,
		router:  router,
		bus:     bus,
		log:     logger.With().Str("component", "extensions").Logger(),
	}
}

// LoadAll activates every manifest found in dir, in file name order. Only a
// missing or unreadable directory is returned as an error.
func (l *Loader) LoadAll(ctx context.Context, dir string) (Result, error) {
	names, err := discover(dir)
	if err != nil {
		return Result{}, err
	}

	res := Result{Failed: make(map[string]error)}
	states := make([]domain.Extension, 0, len(names))
	for _, file := range names {
		name := strings.TrimSuffix(file, filepath.Ext(file))
		ext := domain.Extension{Name: name, State: domain.ExtensionDiscovered}

		if err := ctx.Err(); err != nil {
			ext.Err = &domain.ExtensionError{Extension: name, Err: err}
		} else {
			ext.Err = l.activate(name, filepath.Join(dir, file))
		}

		if ext.Err != nil {
			ext.State = domain.ExtensionFailed
			res.Failed[name] = ext.Err
			l.log.Error().
				Str("extension", name).
				Str("error_type", domain.ErrorTypeName(domain.RootCause(ext.Err))).
				Err(ext.Err).
				Msgf("Failed to load extension %s", name)
		} else {
			ext.State = domain.ExtensionLoaded
			res.Loaded = append(res.Loaded, name)
			l.log.Info().Str("extension", name).Msgf("Loaded extension '%s'", name)
		}

		states = append(states, ext)
		if l.bus != nil {
			l.bus.Publish(events.TopicExtensionState, events.NewExtensionDTO(ext))
		}
	}

	l.mu.Lock()
	l.states = states
	l.mu.Unlock()
	return res, nil
}

// States returns the outcome of the last LoadAll.
func (l *Loader) States() []domain.Extension {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Extension(nil), l.states...)
}

func (l *Loader) activate(name, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during setup: %v", rec)
		}
		if err != nil {
			err = &domain.ExtensionError{Extension: name, Err: err}
		}
	}()

	manifest, err := readManifest(path)
	if err != nil {
		return err
	}
	factoryName := manifest.Factory
	if factoryName == "" {
		factoryName = name
	}
	factory, ok := l.catalog[factoryName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExtension, factoryName)
	}
	ext, err := factory(manifest)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	stage := &staging{scope: manifest.Scope()}
	if err := ext.Setup(stage); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	return l.router.RegisterAll(name, stage.regs)
}

func discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("extensions: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func readManifest(path string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("manifest: %w", err)
	}
	m.Factory = strings.TrimSpace(m.Factory)
	m.GuildID = strings.TrimSpace(m.GuildID)
	return m, nil
}

// staging collects registrations so a failing extension commits nothing.
type staging struct {
	scope domain.Scope
	regs  []commands.Registration
}

func (s *staging) Add(cmd commands.Command) {
	s.AddIn(s.scope, cmd)
}

func (s *staging) AddIn(scope domain.Scope, cmd commands.Command) {
	s.regs = append(s.regs, commands.Registration{Scope: scope, Command: cmd})
}
