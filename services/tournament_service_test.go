package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/repositories"
)

type tournamentServiceFixture struct {
	repo      *fakeTournamentRepository
	publisher *fakePublisher
	timer     *fakeTimer
	service   TournamentService
}

func newTournamentServiceFixture(t *testing.T, existing ...*models.Tournament) *tournamentServiceFixture {
	t.Helper()
	repo := newFakeRepository(existing...)
	publisher := &fakePublisher{}
	timer := &fakeTimer{}
	rounds := NewRoundService(repo, &fakeGamesClient{}, &fakeNotifier{}, zap.NewNop())
	service := NewTournamentService(repo, publisher, timer, rounds, nil, 30, zap.NewNop())
	return &tournamentServiceFixture{repo: repo, publisher: publisher, timer: timer, service: service}
}

func TestTournamentServiceCreate(t *testing.T) {
	f := newTournamentServiceFixture(t)

	created, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:       "Friday Cup",
		Size:       4,
		Visibility: models.VisibilityPublic,
		Owner:      participantInput(1),
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", created.OwnerID)
	assert.True(t, created.HasParticipant("p1"))
	assert.Equal(t, 1, created.Version)

	// События опубликованы после сохранения, буфер очищен.
	assert.Equal(t, []string{models.EventTournamentCreated, models.EventPlayerJoined}, f.publisher.names())
	assert.Empty(t, created.RecordedEvents())

	stored, err := f.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestTournamentServiceCreateRejectsBusyOwner(t *testing.T) {
	active := startedTournament(t)
	f := newTournamentServiceFixture(t, active)

	_, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:       "Second Cup",
		Size:       4,
		Visibility: models.VisibilityPublic,
		Owner:      participantInput(1),
	})
	assert.ErrorIs(t, err, ErrPlayerInActiveTournament)
	assert.Zero(t, f.repo.saveCalls)
}

func TestTournamentServiceCreateInvalidInput(t *testing.T) {
	f := newTournamentServiceFixture(t)

	_, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:       "x",
		Size:       4,
		Visibility: models.VisibilityPublic,
		Owner:      participantInput(1),
	})
	assert.ErrorIs(t, err, models.ErrTournamentNameInvalid)
}

func TestTournamentServiceJoinStartsTimerWhenFull(t *testing.T) {
	f := newTournamentServiceFixture(t)

	created, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:       "Friday Cup",
		Size:       4,
		Visibility: models.VisibilityPublic,
		Owner:      participantInput(1),
	})
	require.NoError(t, err)

	for i := 2; i <= 3; i++ {
		_, err := f.service.Join(context.Background(), created.ID, participantInput(i))
		require.NoError(t, err)
		assert.Empty(t, f.timer.started)
	}

	full, err := f.service.Join(context.Background(), created.ID, participantInput(4))
	require.NoError(t, err)

	assert.Equal(t, models.TournamentStatusStarted, full.Status)
	assert.Equal(t, []string{created.ID}, f.timer.started)
	assert.Equal(t, 30, f.timer.seconds)
}

func TestTournamentServiceJoinUnknownTournament(t *testing.T) {
	f := newTournamentServiceFixture(t)

	_, err := f.service.Join(context.Background(), "missing", participantInput(2))
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
}

func TestTournamentServiceLeave(t *testing.T) {
	f := newTournamentServiceFixture(t)

	created, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:       "Friday Cup",
		Size:       4,
		Visibility: models.VisibilityPublic,
		Owner:      participantInput(1),
	})
	require.NoError(t, err)
	_, err = f.service.Join(context.Background(), created.ID, participantInput(2))
	require.NoError(t, err)

	require.NoError(t, f.service.Leave(context.Background(), created.ID, "p2"))

	stored, err := f.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasParticipant("p2"))

	err = f.service.Leave(context.Background(), created.ID, "p2")
	assert.ErrorIs(t, err, models.ErrParticipantNotRegistered)
}

func TestTournamentServiceCancel(t *testing.T) {
	f := newTournamentServiceFixture(t)

	created, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:       "Friday Cup",
		Size:       4,
		Visibility: models.VisibilityPublic,
		Owner:      participantInput(1),
	})
	require.NoError(t, err)

	t.Run("only owner can cancel", func(t *testing.T) {
		err := f.service.Cancel(context.Background(), created.ID, "p2")
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("owner cancels and timer is stopped", func(t *testing.T) {
		require.NoError(t, f.service.Cancel(context.Background(), created.ID, "p1"))

		stored, err := f.repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TournamentStatusCanceled, stored.Status)
		assert.Equal(t, []string{created.ID}, f.timer.stopped)
		assert.Contains(t, f.publisher.names(), models.EventTournamentCancelled)
	})
}

func TestTournamentServiceGetActiveByParticipant(t *testing.T) {
	active := startedTournament(t)
	f := newTournamentServiceFixture(t, active)

	found, err := f.service.GetActiveByParticipant(context.Background(), "p3")
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	_, err = f.service.GetActiveByParticipant(context.Background(), "stranger")
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
}
