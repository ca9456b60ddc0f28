package owner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
)

type recorder struct {
	overrides []string
	presences []string
	replies   []domain.Reply
	presErr   error
}

func (r *recorder) SetOverride(text string) domain.ManualOverride {
	r.overrides = append(r.overrides, text)
	return domain.ManualOverride{Text: text, CreatedAt: time.Now()}
}

func (r *recorder) SetPresence(ctx context.Context, text string) error {
	if r.presErr != nil {
		return r.presErr
	}
	r.presences = append(r.presences, text)
	return nil
}

func (r *recorder) Respond(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	r.replies = append(r.replies, reply)
	in.MarkAcknowledged()
	return nil
}

func (r *recorder) FollowUp(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	r.replies = append(r.replies, reply)
	return nil
}

func setup(t *testing.T, rec *recorder, states func() []domain.Extension) *commands.Router {
	t.Helper()
	router := commands.NewRouter()
	ext := New(Config{
		Access:    commands.NewAccess([]string{"1"}, nil),
		Overrides: rec,
		Presence:  rec,
		States:    states,
	})
	stage := &stager{}
	require.NoError(t, ext.Setup(stage))
	require.NoError(t, router.RegisterAll("owner", stage.regs))
	return router
}

type stager struct{ regs []commands.Registration }

func (s *stager) Add(cmd commands.Command) { s.AddIn(domain.GlobalScope, cmd) }
func (s *stager) AddIn(scope domain.Scope, cmd commands.Command) {
	s.regs = append(s.regs, commands.Registration{Scope: scope, Command: cmd})
}

func TestStatusSetsOverrideAndPublishesOnce(t *testing.T) {
	rec := &recorder{}
	router := setup(t, rec, nil)

	in := &domain.Interaction{Command: "status", User: domain.User{ID: "1"}, Options: map[string]string{"text": " deadlifting "}}
	require.NoError(t, router.Handle(context.Background(), in, rec))

	assert.Equal(t, []string{"deadlifting"}, rec.overrides)
	assert.Equal(t, []string{"deadlifting"}, rec.presences)
	require.Len(t, rec.replies, 1)
	assert.True(t, rec.replies[0].Ephemeral)
}

func TestStatusIsOwnerOnly(t *testing.T) {
	rec := &recorder{}
	router := setup(t, rec, nil)

	in := &domain.Interaction{Command: "status", User: domain.User{ID: "2"}, Options: map[string]string{"text": "x"}}
	err := router.Handle(context.Background(), in, rec)

	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Empty(t, rec.overrides)
	assert.Empty(t, rec.replies)
}

func TestStatusPublishFailureIsReturned(t *testing.T) {
	rec := &recorder{presErr: &domain.TransportError{Err: errors.New("closed")}}
	router := setup(t, rec, nil)

	in := &domain.Interaction{Command: "status", User: domain.User{ID: "1"}, Options: map[string]string{"text": "x"}}
	err := router.Handle(context.Background(), in, rec)

	var transport *domain.TransportError
	assert.ErrorAs(t, err, &transport)
	assert.Empty(t, rec.replies)
}

func TestExtensionsListsStates(t *testing.T) {
	rec := &recorder{}
	router := setup(t, rec, func() []domain.Extension {
		return []domain.Extension{
			{Name: "general", State: domain.ExtensionLoaded},
			{Name: "music", State: domain.ExtensionFailed, Err: errors.New("no codec")},
		}
	})

	in := &domain.Interaction{Command: "extensions", User: domain.User{ID: "1"}}
	require.NoError(t, router.Handle(context.Background(), in, rec))

	require.Len(t, rec.replies, 1)
	assert.Contains(t, rec.replies[0].Description, "`general` loaded")
	assert.Contains(t, rec.replies[0].Description, "`music` failed: no codec")
}
