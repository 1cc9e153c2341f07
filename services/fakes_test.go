package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pongarena/tournament-engine/games"
	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/repositories"
	"github.com/pongarena/tournament-engine/scheduler"
)

// fakeTournamentRepository — потокобезопасное in-memory хранилище агрегатов
// для сервисных тестов.
type fakeTournamentRepository struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament
	saveCalls   int
	saveErr     error
}

func newFakeRepository(tournaments ...*models.Tournament) *fakeTournamentRepository {
	repo := &fakeTournamentRepository{tournaments: make(map[string]*models.Tournament)}
	for _, t := range tournaments {
		repo.tournaments[t.ID] = t
	}
	return repo
}

func (r *fakeTournamentRepository) Save(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	t.Version++
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepository) FindByID(_ context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tournaments[id]; ok {
		return t, nil
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepository) FindByMatchID(_ context.Context, matchID string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		for _, m := range t.Matches {
			if m.ID == matchID {
				return t, nil
			}
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepository) FindActiveByParticipantID(_ context.Context, participantID string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.IsActive() && t.HasParticipant(participantID) {
			return t, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepository) FindAll(_ context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		all = append(all, t)
	}
	return all, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *fakePublisher) PublishAll(_ context.Context, events []models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

type fakeNotifier struct {
	mu           sync.Mutex
	startedMatch []string
	scoreUpdates []string
}

func (n *fakeNotifier) NotifyMatchStarted(_, matchID string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.startedMatch = append(n.startedMatch, matchID)
}

func (n *fakeNotifier) NotifyMatchScoreUpdated(_, matchID string, _, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scoreUpdates = append(n.scoreUpdates, matchID)
}

type fakeTimer struct {
	mu      sync.Mutex
	started []string
	stopped []string
	seconds int
}

func (t *fakeTimer) Start(tournamentID string, seconds int, _ scheduler.CompletionFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = append(t.started, tournamentID)
	t.seconds = seconds
}

func (t *fakeTimer) Stop(tournamentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = append(t.stopped, tournamentID)
}

type fakeGamesClient struct {
	mu       sync.Mutex
	commands []games.CreateGameCommand
	failFor  map[string]error
}

func (c *fakeGamesClient) CreateGame(_ context.Context, cmd games.CreateGameCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failFor[cmd.MatchID]; ok {
		return err
	}
	c.commands = append(c.commands, cmd)
	return nil
}

func participantInput(i int) ParticipantInput {
	return ParticipantInput{
		ID:          fmt.Sprintf("p%d", i),
		DisplayName: fmt.Sprintf("Player %d", i),
		Type:        models.ParticipantTypeUser,
	}
}

// startedTournament собирает полный турнир на 4 участников (p1..p4)
// с уже сгенерированной сеткой и пустым буфером событий.
func startedTournament(t *testing.T) *models.Tournament {
	t.Helper()
	tournament, err := models.NewTournament("Friday Cup", "p1", 4, models.VisibilityPublic, nil)
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		p, err := models.NewParticipant(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), models.ParticipantTypeUser)
		require.NoError(t, err)
		require.NoError(t, tournament.Join(p))
	}
	require.Equal(t, models.TournamentStatusStarted, tournament.Status)
	tournament.ClearRecordedEvents()
	return tournament
}
