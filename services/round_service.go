package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/games"
	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/repositories"
)

// RoundService — обработчик истечения таймера раунда: находит готовые
// незавершённые матчи текущего раунда и выдаёт игровому сервису по одной
// команде на матч.
type RoundService struct {
	repo     repositories.TournamentRepository
	games    games.Client
	notifier RealtimeNotifier
	logger   *zap.Logger

	// dispatched защищает от повторной выдачи команды на матч при
	// повторном вызове Execute. Достаточно памяти процесса: таймеры
	// турнира принадлежат одному процессу.
	mu         sync.Mutex
	dispatched map[string]bool
}

func NewRoundService(
	repo repositories.TournamentRepository,
	gamesClient games.Client,
	notifier RealtimeNotifier,
	logger *zap.Logger,
) *RoundService {
	return &RoundService{
		repo:       repo,
		games:      gamesClient,
		notifier:   notifier,
		logger:     logger,
		dispatched: make(map[string]bool),
	}
}

// Execute запускает матчи текущего раунда. Отказ создания одной игры
// логируется и не прерывает обработку остальных матчей раунда.
func (s *RoundService) Execute(ctx context.Context, tournamentID string) error {
	t, err := s.repo.FindByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %s for round start: %w", tournamentID, err)
	}
	if t.Status != models.TournamentStatusStarted {
		s.logger.Info("skipping round start: tournament is not running",
			zap.String("tournament_id", tournamentID),
			zap.String("status", string(t.Status)))
		return nil
	}

	round := t.CurrentRound()
	if round == 0 {
		return nil
	}
	totalRounds := t.TotalRounds()

	for _, match := range t.MatchesInRound(round) {
		if match.Status == models.MatchStatusFinished || !match.IsReady() {
			continue
		}
		if s.alreadyDispatched(match.ID) {
			continue
		}

		cmd := games.CreateGameCommand{
			MatchID:      match.ID,
			PlayerAID:    match.PlayerA.ID,
			PlayerBID:    match.PlayerB.ID,
			TournamentID: t.ID,
			IsFinal:      round == totalRounds,
		}
		if createErr := s.games.CreateGame(ctx, cmd); createErr != nil {
			s.logger.Error("failed to create game for match",
				zap.String("tournament_id", t.ID),
				zap.String("match_id", match.ID),
				zap.Int("round", round),
				zap.Error(createErr))
			continue
		}

		s.markDispatched(match.ID)
		s.notifier.NotifyMatchStarted(t.ID, match.ID, round)
	}
	return nil
}

// ClearDispatched снимает защиту от повторной выдачи после того,
// как результат матча принят.
func (s *RoundService) ClearDispatched(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dispatched, matchID)
}

func (s *RoundService) alreadyDispatched(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatched[matchID]
}

func (s *RoundService) markDispatched(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched[matchID] = true
}
