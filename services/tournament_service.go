package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/repositories"
)

type ParticipantInput struct {
	ID          string
	DisplayName string
	Type        models.ParticipantType
}

type CreateTournamentInput struct {
	Name       string
	Size       int
	Visibility models.TournamentVisibility
	Owner      ParticipantInput
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Join(ctx context.Context, tournamentID string, participant ParticipantInput) (*models.Tournament, error)
	Leave(ctx context.Context, tournamentID, participantID string) error
	Cancel(ctx context.Context, tournamentID, requesterID string) error
	GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error)
	GetActiveByParticipant(ctx context.Context, participantID string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
}

// tournamentService — тонкий конвейер load → mutate → save → publish →
// (условно) таймер. Доменные ошибки агрегата пробрасываются без изменений.
type tournamentService struct {
	repo             repositories.TournamentRepository
	publisher        EventsPublisher
	timer            RoundTimerControl
	rounds           *RoundService
	seeding          models.SeedingStrategy
	roundReadySecond int
	logger           *zap.Logger
}

func NewTournamentService(
	repo repositories.TournamentRepository,
	publisher EventsPublisher,
	timer RoundTimerControl,
	rounds *RoundService,
	seeding models.SeedingStrategy,
	roundReadySeconds int,
	logger *zap.Logger,
) TournamentService {
	return &tournamentService{
		repo:             repo,
		publisher:        publisher,
		timer:            timer,
		rounds:           rounds,
		seeding:          seeding,
		roundReadySecond: roundReadySeconds,
		logger:           logger,
	}
}

// Create создаёт турнир; владелец автоматически становится первым участником.
func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	owner, err := models.NewParticipant(input.Owner.ID, input.Owner.DisplayName, input.Owner.Type)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotInActiveTournament(ctx, owner.ID); err != nil {
		return nil, err
	}

	t, err := models.NewTournament(input.Name, owner.ID, input.Size, input.Visibility, s.seeding)
	if err != nil {
		return nil, err
	}
	if err := t.Join(owner); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.drainAndPublish(ctx, t)

	s.logger.Info("tournament created",
		zap.String("tournament_id", t.ID),
		zap.String("owner_id", owner.ID),
		zap.Int("size", t.Size))
	return t, nil
}

func (s *tournamentService) Join(ctx context.Context, tournamentID string, input ParticipantInput) (*models.Tournament, error) {
	participant, err := models.NewParticipant(input.ID, input.DisplayName, input.Type)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotInActiveTournament(ctx, participant.ID); err != nil {
		return nil, err
	}

	t, err := s.repo.FindByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := t.Join(participant); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.drainAndPublish(ctx, t)

	// Последний участник запускает турнир: первый раунд стартует
	// по истечении окна готовности.
	if t.Status == models.TournamentStatusStarted {
		s.timer.Start(t.ID, s.roundReadySecond, s.rounds.Execute)
	}
	return t, nil
}

func (s *tournamentService) Leave(ctx context.Context, tournamentID, participantID string) error {
	t, err := s.repo.FindByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if err := t.Leave(participantID); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return err
	}
	s.drainAndPublish(ctx, t)
	return nil
}

// Cancel отменяет турнир. Право на отмену есть только у владельца.
func (s *tournamentService) Cancel(ctx context.Context, tournamentID, requesterID string) error {
	t, err := s.repo.FindByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.OwnerID != requesterID {
		return ErrForbiddenOperation
	}
	if err := t.Cancel(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return err
	}
	s.drainAndPublish(ctx, t)
	s.timer.Stop(t.ID)
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	return s.repo.FindByID(ctx, tournamentID)
}

func (s *tournamentService) GetActiveByParticipant(ctx context.Context, participantID string) (*models.Tournament, error) {
	return s.repo.FindActiveByParticipantID(ctx, participantID)
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.repo.FindAll(ctx)
}

func (s *tournamentService) ensureNotInActiveTournament(ctx context.Context, participantID string) error {
	_, err := s.repo.FindActiveByParticipantID(ctx, participantID)
	switch {
	case err == nil:
		return ErrPlayerInActiveTournament
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return nil
	default:
		return err
	}
}

// drainAndPublish публикует буфер событий и очищает его.
// Вызывается строго после успешного Save: события не должны уходить
// раньше, чем состояние закоммичено.
func (s *tournamentService) drainAndPublish(ctx context.Context, t *models.Tournament) {
	recorded := t.RecordedEvents()
	if len(recorded) == 0 {
		return
	}
	s.publisher.PublishAll(ctx, recorded)
	t.ClearRecordedEvents()
}
