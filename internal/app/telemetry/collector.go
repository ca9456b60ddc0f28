// Package telemetry turns bus events into Prometheus metrics.
package telemetry

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"prBot/internal/app/events"
	"prBot/internal/app/stats"
	"prBot/internal/domain"
)

const namespace = "prbot"

type Collector struct {
	bus *events.Bus
	log zerolog.Logger

	Commands     *prometheus.CounterVec
	Presence     *prometheus.CounterVec
	Extensions   *prometheus.GaugeVec
	UsageDropped prometheus.Counter

	wg sync.WaitGroup
}

// NewCollector registers the metrics on reg. usage, when set, is sampled on
// every scrape.
func NewCollector(reg prometheus.Registerer, bus *events.Bus, usage func() stats.Counters, logger zerolog.Logger) *Collector {
	factory := promauto.With(reg)
	c := &Collector{
		bus: bus,
		log: logger.With().Str("component", "telemetry").Logger(),
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Finished command interactions by outcome",
			},
			[]string{"command", "outcome"},
		),
		Presence: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "presence_changes_total",
				Help:      "Presence changes by source",
			},
			[]string{"source"},
		),
		Extensions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "extension_loaded",
				Help:      "1 when the extension loaded, 0 when it failed",
			},
			[]string{"extension"},
		),
		UsageDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "usage_dropped_total",
				Help:      "Usage increments dropped before reaching the store",
			},
		),
	}

	if usage != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_pending",
			Help:      "Usage increments waiting in the queue",
		}, func() float64 { return float64(usage().Pending) })
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_written_total",
			Help:      "Usage increments written to the store",
		}, func() float64 { return float64(usage().Written) })
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_failed_total",
			Help:      "Usage increments the store rejected",
		}, func() float64 { return float64(usage().Failed) })
	}
	return c
}

// Start consumes the bus until ctx is done or the bus closes.
func (c *Collector) Start(ctx context.Context) {
	c.consume(ctx, events.TopicCommandCompleted, func(msg any) {
		if dto, ok := msg.(events.CommandDTO); ok {
			c.Commands.WithLabelValues(dto.Command, "completed").Inc()
		}
	})
	c.consume(ctx, events.TopicCommandErrored, func(msg any) {
		if dto, ok := msg.(events.CommandDTO); ok {
			c.Commands.WithLabelValues(dto.Command, dto.Kind).Inc()
		}
	})
	c.consume(ctx, events.TopicPresenceChanged, func(msg any) {
		if dto, ok := msg.(events.PresenceDTO); ok {
			c.Presence.WithLabelValues(dto.Source).Inc()
		}
	})
	c.consume(ctx, events.TopicExtensionState, func(msg any) {
		if dto, ok := msg.(events.ExtensionDTO); ok {
			v := 0.0
			if dto.State == string(domain.ExtensionLoaded) {
				v = 1
			}
			c.Extensions.WithLabelValues(dto.Name).Set(v)
		}
	})
	c.consume(ctx, events.TopicUsageDropped, func(any) {
		c.UsageDropped.Inc()
	})
}

// Wait blocks until every consumer returned.
func (c *Collector) Wait() {
	c.wg.Wait()
}

func (c *Collector) consume(ctx context.Context, topic string, apply func(any)) {
	ch, unsubscribe := c.bus.Subscribe(topic)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				apply(msg)
			}
		}
	}()
	c.log.Debug().Str("topic", topic).Msg("subscribed")
}
