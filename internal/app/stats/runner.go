// Package stats records command usage off the interaction path. Record
// never blocks: increments are queued and written by a single worker that
// guards the store with a circuit breaker.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"prBot/internal/app/events"
	"prBot/internal/domain"
)

const (
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

type Config struct {
	Recorder  domain.UsageRecorder
	Bus       *events.Bus
	Logger    zerolog.Logger
	QueueSize int
	// Timeout bounds a single store write.
	Timeout time.Duration
	// Breaker overrides the default circuit breaker settings.
	Breaker *gobreaker.Settings
}

type increment struct {
	userID  string
	command string
	delta   int
}

type Runner struct {
	cfg     Config
	log     zerolog.Logger
	breaker *gobreaker.CircuitBreaker

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []increment
	closed bool
	wg     sync.WaitGroup

	done      chan struct{}
	closeOnce sync.Once

	written uint64
	failed  uint64
	dropped uint64
}

var _ domain.UsageSink = (*Runner)(nil)

func New(cfg Config) *Runner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	r := &Runner{
		cfg: cfg,
		log:  cfg.Logger.With().Str("component", "stats").Logger(),
		done: make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)

	settings := gobreaker.Settings{
		Name:        "usage-store",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	if cfg.Breaker != nil {
		settings = *cfg.Breaker
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		r.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("usage store breaker changed state")
	}
	r.breaker = gobreaker.NewCircuitBreaker(settings)
	return r
}

func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		select {
		case <-ctx.Done():
		case <-r.done:
			return
		}
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		r.cond.Broadcast()
	}()
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx))
	}()
}

// Record queues an increment. It drops the increment when the queue is full
// or the runner is closed.
func (r *Runner) Record(userID, command string, delta int) {
	r.mu.Lock()
	if r.closed || len(r.queue) >= r.cfg.QueueSize {
		r.dropped++
		reason := "queue full"
		if r.closed {
			reason = "closed"
		}
		r.mu.Unlock()
		r.log.Warn().Str("user_id", userID).Str("command", command).Str("reason", reason).Msg("usage increment dropped")
		r.publish(events.TopicUsageDropped, events.UsageDropDTO{UserID: userID, Command: command, Reason: reason})
		return
	}
	r.queue = append(r.queue, increment{userID: userID, command: command, delta: delta})
	r.mu.Unlock()
	r.cond.Signal()
}

func (r *Runner) run(ctx context.Context) {
	for {
		inc, ok := r.next()
		if !ok {
			return
		}
		r.write(ctx, inc)
	}
}

// next returns queued work until the runner is closed and the queue drained.
func (r *Runner) next() (increment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if len(r.queue) > 0 {
			inc := r.queue[0]
			r.queue = r.queue[1:]
			return inc, true
		}
		if r.closed {
			return increment{}, false
		}
		r.cond.Wait()
	}
}

func (r *Runner) write(ctx context.Context, inc increment) {
	if r.cfg.Recorder == nil {
		return
	}
	_, err := r.breaker.Execute(func() (_ any, err error) {
		// A panicking store counts as a failed write.
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("usage store panicked: %v", rec)
			}
		}()
		writeCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
		return nil, r.cfg.Recorder.Increment(writeCtx, inc.userID, inc.command, inc.delta)
	})

	r.mu.Lock()
	if err != nil {
		r.failed++
	} else {
		r.written++
	}
	r.mu.Unlock()

	if err != nil {
		event := r.log.Error()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			event = r.log.Warn()
		}
		event.Err(err).Str("user_id", inc.userID).Str("command", inc.command).Msg("usage increment failed")
	}
}

type Counters struct {
	Written uint64
	Failed  uint64
	Dropped uint64
	Pending int
}

func (r *Runner) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counters{Written: r.written, Failed: r.failed, Dropped: r.dropped, Pending: len(r.queue)}
}

// Close stops accepting increments, writes what is already queued and waits
// for the worker.
func (r *Runner) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cond.Broadcast()
	r.closeOnce.Do(func() { close(r.done) })

	r.wg.Wait()
	return nil
}

func (r *Runner) publish(topic string, payload any) {
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(topic, payload)
	}
}
