// Package presence rotates the bot's status text and honours a manual
// override until it expires.
package presence

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"prBot/internal/app/events"
	"prBot/internal/domain"
)

const (
	DefaultInterval    = time.Minute
	DefaultOverrideTTL = time.Hour
)

type Config struct {
	Pool      []string
	Publisher domain.PresencePublisher
	Bus       *events.Bus
	Logger    zerolog.Logger
	Interval  time.Duration
	// OverrideTTL is how long a manual status suppresses rotation.
	OverrideTTL time.Duration
	Now         func() time.Time
	// Pick returns an index in [0, n).
	Pick func(n int) int
}

type Scheduler struct {
	pool      []string
	publisher domain.PresencePublisher
	bus       *events.Bus
	log       zerolog.Logger
	interval  time.Duration
	ttl       time.Duration
	now       func() time.Time
	pick      func(n int) int

	mu       sync.Mutex
	override *domain.ManualOverride

	cron *cron.Cron
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	pool := make([]string, 0, len(cfg.Pool))
	for _, s := range cfg.Pool {
		if s = strings.TrimSpace(s); s != "" {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, domain.DefaultPresencePool...)
	}
	if cfg.Publisher == nil {
		return nil, fmt.Errorf("presence: publisher is required")
	}
	s := &Scheduler{
		pool:      pool,
		publisher: cfg.Publisher,
		bus:       cfg.Bus,
		log:       cfg.Logger.With().Str("component", "presence").Logger(),
		interval:  cfg.Interval,
		ttl:       cfg.OverrideTTL,
		now:       cfg.Now,
		pick:      cfg.Pick,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.ttl <= 0 {
		s.ttl = DefaultOverrideTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.pick == nil {
		s.pick = rand.Intn
	}
	return s, nil
}

// SetOverride stores a manual status, replacing any previous one. Publishing
// the text to the platform is left to the caller.
func (s *Scheduler) SetOverride(text string) domain.ManualOverride {
	o := domain.ManualOverride{Text: text, CreatedAt: s.now()}
	s.mu.Lock()
	s.override = &o
	s.mu.Unlock()
	s.publish(events.NewPresenceDTO(text, events.PresenceSourceManual))
	return o
}

func (s *Scheduler) Override() (domain.ManualOverride, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.override == nil {
		return domain.ManualOverride{}, false
	}
	return *s.override, true
}

// Tick clears an override whose age reached the TTL and, when no override
// is active, publishes a random status from the pool. It returns the
// published text, or "" when the override is still honoured.
func (s *Scheduler) Tick(ctx context.Context) (string, error) {
	now := s.now()

	s.mu.Lock()
	if s.override != nil && s.override.Age(now) >= s.ttl {
		s.log.Info().Str("status", s.override.Text).Msg("manual status expired")
		s.override = nil
		s.publish(events.NewPresenceDTO("", events.PresenceSourceExpired))
	}
	active := s.override != nil
	s.mu.Unlock()

	if active {
		return "", nil
	}

	picked := s.pool[s.pick(len(s.pool))]
	if err := s.publisher.SetPresence(ctx, picked); err != nil {
		return "", fmt.Errorf("presence: publish: %w", err)
	}
	s.publish(events.NewPresenceDTO(picked, events.PresenceSourceScheduler))
	return picked, nil
}

// Start ticks once immediately and then on every interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(&s.log)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.runTick(ctx) }); err != nil {
		return fmt.Errorf("presence: schedule: %w", err)
	}
	s.cron = c

	s.runTick(ctx)
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	picked, err := s.Tick(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("status task failed")
		return
	}
	if picked != "" {
		s.log.Debug().Str("status", picked).Msg("status updated")
	}
}

func (s *Scheduler) publish(dto events.PresenceDTO) {
	if s.bus != nil {
		s.bus.Publish(events.TopicPresenceChanged, dto)
	}
}
