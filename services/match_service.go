package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/repositories"
)

type MatchService interface {
	// ProcessMatchResult заводит счёт завершённой игры в агрегат;
	// matchID совпадает с gameId игрового сервиса. Непустой winnerID
	// закрывает матч, даже если счёт не достиг целевого.
	ProcessMatchResult(ctx context.Context, matchID string, scoreA, scoreB int, winnerID string) error
	DeclareWalkover(ctx context.Context, matchID, winnerID string) error
}

type matchService struct {
	repo             repositories.TournamentRepository
	publisher        EventsPublisher
	notifier         RealtimeNotifier
	timer            RoundTimerControl
	rounds           *RoundService
	roundReadySecond int
	logger           *zap.Logger
}

func NewMatchService(
	repo repositories.TournamentRepository,
	publisher EventsPublisher,
	notifier RealtimeNotifier,
	timer RoundTimerControl,
	rounds *RoundService,
	roundReadySeconds int,
	logger *zap.Logger,
) MatchService {
	return &matchService{
		repo:             repo,
		publisher:        publisher,
		notifier:         notifier,
		timer:            timer,
		rounds:           rounds,
		roundReadySecond: roundReadySeconds,
		logger:           logger,
	}
}

func (s *matchService) ProcessMatchResult(ctx context.Context, matchID string, scoreA, scoreB int, winnerID string) error {
	return s.applyResult(ctx, matchID, func(t *models.Tournament) error {
		return t.UpdateMatchScore(matchID, scoreA, scoreB, winnerID)
	})
}

func (s *matchService) DeclareWalkover(ctx context.Context, matchID, winnerID string) error {
	return s.applyResult(ctx, matchID, func(t *models.Tournament) error {
		return t.DeclareWalkover(matchID, winnerID)
	})
}

// applyResult — общий конвейер результата матча: load → mutate → save →
// publish → пересчёт таймера раунда.
func (s *matchService) applyResult(ctx context.Context, matchID string, mutate func(*models.Tournament) error) error {
	t, err := s.repo.FindByMatchID(ctx, matchID)
	if err != nil {
		return err
	}
	if err := mutate(t); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return err
	}

	recorded := t.RecordedEvents()
	s.publisher.PublishAll(ctx, recorded)
	t.ClearRecordedEvents()

	match, err := t.MatchByID(matchID)
	if err != nil {
		return err
	}
	s.notifier.NotifyMatchScoreUpdated(t.ID, matchID, match.ScoreA, match.ScoreB)

	if match.Status != models.MatchStatusFinished {
		return nil
	}
	s.rounds.ClearDispatched(matchID)

	switch {
	case t.Status == models.TournamentStatusFinished:
		s.timer.Stop(t.ID)
		s.logger.Info("tournament finished",
			zap.String("tournament_id", t.ID),
			zap.String("winner_id", t.Winner.ID))
	case t.IsRoundFinished(match.Round):
		// Раунд закрыт: взводим окно готовности следующего раунда.
		s.timer.Start(t.ID, s.roundReadySecond, s.rounds.Execute)
	}
	return nil
}
