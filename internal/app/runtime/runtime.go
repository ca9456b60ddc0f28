package runtime

import (
	"context"
	"errors"
	"fmt"
	goruntime "runtime"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"prBot/internal/app/events"
	"prBot/internal/app/stats"
	"prBot/internal/app/telemetry"
	"prBot/internal/domain"
	"prBot/internal/extensions/builtin"
	"prBot/internal/infrastructure/config"
	discordinfra "prBot/internal/infrastructure/platform/discord"
	discordadapter "prBot/internal/interface/adapters/discord"
	"prBot/internal/interface/api/status"
	"prBot/internal/usecase/commands"
	"prBot/internal/usecase/extensions"
	"prBot/internal/usecase/handle_interaction"
	"prBot/internal/usecase/presence"
)

type Options struct {
	// Config is loaded from the environment when nil.
	Config *config.Config
	Logger zerolog.Logger
}

// Runtime owns every long-lived component of the bot.
type Runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	log    zerolog.Logger

	store      usageStore
	bus        *events.Bus
	stats      *stats.Runner
	telemetry  *telemetry.Collector
	router     *commands.Router
	commandSvc *commands.Service
	loader     *extensions.Loader
	client     *discordinfra.Client
	adapter    *discordadapter.Adapter
	scheduler  *presence.Scheduler
	status     *status.Server

	wg      sync.WaitGroup
	started bool
}

// Start builds the bot, loads the extensions and opens the gateway. Errors
// are fatal for the process.
func Start(ctx context.Context, opts Options) (*Runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runtimeCtx, cancel := context.WithCancel(ctx)

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	logger := opts.Logger

	store, err := openUsageStore(runtimeCtx, cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("usage store: %w", err)
	}

	run := &Runtime{
		ctx:    runtimeCtx,
		cancel: cancel,
		cfg:    cfg,
		log:    logger,
		store:  store,
		bus:    events.NewBus(logger),
	}

	run.stats = stats.New(stats.Config{
		Recorder: store,
		Bus:      run.bus,
		Logger:   logger,
	})
	run.stats.Start(runtimeCtx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	run.telemetry = telemetry.NewCollector(registry, run.bus, run.stats.Counters, logger)
	run.telemetry.Start(runtimeCtx)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		run.shutdown()
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	// A 429 surfaces as a cooldown reply instead of a silent retry.
	session.ShouldRetryOnRateLimit = false

	run.client = discordinfra.NewClient(session, cfg.DiscordAppID, logger)

	run.scheduler, err = presence.NewScheduler(presence.Config{
		Pool:      cfg.PresenceStatuses,
		Publisher: run.client,
		Bus:       run.bus,
		Logger:    logger,
		Interval:  cfg.PresenceInterval,
	})
	if err != nil {
		run.shutdown()
		return nil, err
	}

	run.router = commands.NewRouter()
	run.commandSvc = commands.NewService(run.router)
	catalog := builtin.Catalog(builtin.Deps{
		Access:    commands.NewAccess(cfg.OwnerIDs, cfg.BlacklistedIDs),
		Latency:   session.HeartbeatLatency,
		Overrides: run.scheduler,
		Presence:  run.client,
		States:    run.ExtensionStates,
	})
	run.loader = extensions.NewLoader(catalog, run.router, run.bus, logger)
	if _, err := run.loader.LoadAll(runtimeCtx, cfg.ExtensionsDir); err != nil {
		run.shutdown()
		return nil, err
	}

	uc := handle_interaction.NewInteractor(handle_interaction.Config{
		Router: run.router,
		Out:    run.client,
		Usage:  run.stats,
		Bus:    run.bus,
		Logger: logger,
	})

	run.status = status.NewServer(status.Config{
		Addr:           cfg.StatusAddr,
		AllowedOrigins: cfg.StatusAllowedOrigins,
		Bus:            run.bus,
		Commands:       run.commandSvc,
		Extensions:     run.ExtensionStates,
		Gatherer:       registry,
		Logger:         logger,
	})
	run.wg.Add(1)
	go func() {
		defer run.wg.Done()
		if err := run.status.Start(runtimeCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("status server error")
		}
	}()

	run.adapter = discordadapter.NewAdapter(session, logger)
	run.adapter.SetHandler(uc.Handle)
	run.adapter.SetReadyHandler(run.onReady)
	if err := run.adapter.Open(runtimeCtx); err != nil {
		run.shutdown()
		return nil, err
	}

	run.started = true
	return run, nil
}

// onReady syncs the command table once and starts the presence rotation.
func (r *Runtime) onReady(ctx context.Context, botUserID string) {
	r.log.Info().
		Str("go_version", goruntime.Version()).
		Str("platform", goruntime.GOOS+"/"+goruntime.GOARCH).
		Str("discordgo_version", discordgo.VERSION).
		Msg("gateway ready")

	r.client.SetApplicationID(botUserID)
	synced, err := r.client.SyncCommands(ctx, r.router.Refs())
	if err != nil {
		r.log.Error().Err(err).Msg("command sync failed")
	}
	for _, ref := range r.router.SyncAndCache(synced) {
		r.log.Debug().
			Str("command", ref.Name).
			Str("scope", ref.Scope.String()).
			Str("id", ref.ID).
			Msg("synced command has no local declaration")
	}

	if err := r.scheduler.Start(ctx); err != nil {
		r.log.Error().Err(err).Msg("presence scheduler not started")
	}
}

func (r *Runtime) ExtensionStates() []domain.Extension {
	if r == nil || r.loader == nil {
		return nil
	}
	return r.loader.States()
}

func (r *Runtime) Stop() error {
	if r == nil || !r.started {
		return nil
	}
	r.started = false
	var errs []error
	if err := r.adapter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close gateway: %w", err))
	}
	if err := r.shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// shutdown cancels the runtime context, drains the stats queue and closes
// the store.
func (r *Runtime) shutdown() error {
	r.cancel()
	if r.stats != nil {
		_ = r.stats.Close()
	}
	r.wg.Wait()
	r.bus.Close()
	if r.telemetry != nil {
		r.telemetry.Wait()
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			return fmt.Errorf("close usage store: %w", err)
		}
	}
	return nil
}

func (r *Runtime) Bus() *events.Bus {
	if r == nil {
		return nil
	}
	return r.bus
}

func (r *Runtime) CommandService() *commands.Service {
	if r == nil {
		return nil
	}
	return r.commandSvc
}
