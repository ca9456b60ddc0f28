package handle_interaction

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prBot/internal/app/stats"
	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
)

type countingResponder struct {
	mu        sync.Mutex
	initial   []domain.Reply
	followUps []domain.Reply
	err       error
}

func (r *countingResponder) Respond(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initial = append(r.initial, reply)
	if r.err == nil {
		in.MarkAcknowledged()
	}
	return r.err
}

func (r *countingResponder) FollowUp(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.followUps = append(r.followUps, reply)
	return r.err
}

func (r *countingResponder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.initial) + len(r.followUps)
}

type usageCall struct {
	userID, command string
	delta           int
}

type fakeSink struct {
	calls []usageCall
}

func (f *fakeSink) Record(userID, command string, delta int) {
	f.calls = append(f.calls, usageCall{userID, command, delta})
}

type failingRecorder struct{}

func (failingRecorder) Increment(ctx context.Context, userID, command string, delta int) error {
	return errors.New("database is down")
}

type fnCommand struct {
	name string
	fn   func(ctx context.Context, c *commands.Context) error
}

func (f *fnCommand) Name() string                    { return f.name }
func (f *fnCommand) Description() string             { return f.name }
func (f *fnCommand) Options() []domain.CommandOption { return nil }
func (f *fnCommand) Handle(ctx context.Context, c *commands.Context) error {
	return f.fn(ctx, c)
}

func logLines(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func newInteractor(t *testing.T, out domain.InteractionResponder, sink domain.UsageSink, cmds ...commands.Command) (*Interactor, *bytes.Buffer) {
	t.Helper()
	router := commands.NewRouter()
	for _, cmd := range cmds {
		require.NoError(t, router.Register("general", domain.GlobalScope, cmd))
	}
	var buf bytes.Buffer
	uc := NewInteractor(Config{
		Router:        router,
		Out:           out,
		Usage:         sink,
		Logger:        zerolog.New(&buf),
		NewIncidentID: func() string { return "incident-1" },
	})
	return uc, &buf
}

func guildInteraction(command string) *domain.Interaction {
	return &domain.Interaction{
		ID:        "100",
		GuildID:   "7",
		GuildName: "Gym",
		Command:   command,
		User:      domain.User{ID: "42", Username: "lifter"},
	}
}

func TestHandleErrorSendsExactlyOneReply(t *testing.T) {
	failures := []error{
		&domain.CooldownError{RetryAfter: 10 * time.Second},
		domain.ErrBlacklisted,
		domain.ErrNotOwner,
		&domain.MissingPermissionsError{Permissions: []string{"manage_messages"}},
		&domain.TransportError{StatusCode: 429, Err: errors.New("limit")},
		errors.New("something odd"),
	}

	for _, acknowledged := range []bool{false, true} {
		for _, failure := range failures {
			out := &countingResponder{}
			uc, buf := newInteractor(t, out, &fakeSink{})
			in := guildInteraction("chart")
			if acknowledged {
				in.MarkAcknowledged()
			}

			uc.HandleError(context.Background(), in, failure)

			assert.Equal(t, 1, out.total(), "failure %v acknowledged=%v", failure, acknowledged)
			if acknowledged {
				assert.Len(t, out.followUps, 1)
			} else {
				assert.Len(t, out.initial, 1)
			}
			assert.Len(t, logLines(buf), 1)
		}
	}
}

func TestHandleErrorLogsSendFailureOnSameLine(t *testing.T) {
	out := &countingResponder{err: errors.New("unknown interaction")}
	uc, buf := newInteractor(t, out, &fakeSink{})

	uc.HandleError(context.Background(), guildInteraction("chart"), domain.ErrTimedOut)

	lines := logLines(buf)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"send_error":"unknown interaction"`)
	assert.Contains(t, lines[0], `"level":"error"`)
	assert.Equal(t, 1, out.total())
}

func TestHandleErrorBlacklistedWarnsWithContext(t *testing.T) {
	out := &countingResponder{}
	uc, buf := newInteractor(t, out, &fakeSink{})

	uc.HandleError(context.Background(), guildInteraction("chart"), domain.ErrBlacklisted)
	dm := &domain.Interaction{Command: "chart", User: domain.User{ID: "42", Username: "lifter"}}
	uc.HandleError(context.Background(), dm, domain.ErrBlacklisted)

	lines := logLines(buf)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[0], "in the guild Gym (ID: 7), but the user is blacklisted from using the bot.")
	assert.Contains(t, lines[1], "in the bot's DMs")
	assert.Contains(t, lines[0], `"incident_id":"incident-1"`)
}

func TestHandleCompletedRecordsOneIncrement(t *testing.T) {
	sink := &fakeSink{}
	uc, buf := newInteractor(t, &countingResponder{}, sink)

	uc.HandleCompleted(context.Background(), guildInteraction("stats show weekly"))

	require.Len(t, sink.calls, 1)
	assert.Equal(t, usageCall{"42", "stats", 1}, sink.calls[0])

	lines := logLines(buf)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Executed stats command in Gym (ID: 7) by lifter (ID: 42)")
}

func TestHandleCompletedInDMs(t *testing.T) {
	uc, buf := newInteractor(t, &countingResponder{}, &fakeSink{})

	uc.HandleCompleted(context.Background(), &domain.Interaction{Command: "ping", User: domain.User{ID: "42", Username: "lifter"}})

	assert.Contains(t, buf.String(), "Executed ping command by lifter (ID: 42) in DMs")
}

func TestRecorderFailureDoesNotAffectSuccessPath(t *testing.T) {
	runner := stats.New(stats.Config{Recorder: failingRecorder{}, Logger: zerolog.Nop()})
	runner.Start(context.Background())

	out := &countingResponder{}
	ping := &fnCommand{name: "ping", fn: func(ctx context.Context, c *commands.Context) error {
		return c.Reply(ctx, domain.Reply{Title: "Pong"})
	}}
	uc, buf := newInteractor(t, out, runner, ping)

	assert.NotPanics(t, func() {
		uc.Handle(context.Background(), guildInteraction("ping"))
	})
	before := buf.String()
	require.NoError(t, runner.Close())

	assert.Equal(t, before, buf.String())
	assert.Len(t, logLines(buf), 1)
	assert.Contains(t, before, "Executed ping command")
	assert.Equal(t, 1, out.total())
	assert.Equal(t, uint64(1), runner.Counters().Failed)
}

func TestHandleRoutesFailureToResponder(t *testing.T) {
	out := &countingResponder{}
	sink := &fakeSink{}
	slow := &fnCommand{name: "chart", fn: func(ctx context.Context, c *commands.Context) error {
		if err := c.Reply(ctx, domain.Reply{Title: "Working on it"}); err != nil {
			return err
		}
		return domain.ErrTimedOut
	}}
	uc, _ := newInteractor(t, out, sink, slow)

	uc.Handle(context.Background(), guildInteraction("chart"))

	require.Len(t, out.initial, 1)
	require.Len(t, out.followUps, 1)
	assert.Equal(t, "You took too long!", out.followUps[0].Title)
	assert.Empty(t, sink.calls)
}

func TestHandleUnknownCommandIsUnclassified(t *testing.T) {
	out := &countingResponder{}
	uc, _ := newInteractor(t, out, &fakeSink{})

	uc.Handle(context.Background(), guildInteraction("nope"))

	require.Len(t, out.initial, 1)
	assert.Equal(t, "Error!", out.initial[0].Title)
	assert.Equal(t, `Unknown command "nope"`, out.initial[0].Description)
}
