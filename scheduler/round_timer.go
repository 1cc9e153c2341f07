package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// completionTimeout ограничивает обработчик истёкшего таймера.
const completionTimeout = 30 * time.Second

// TickNotifier транслирует оставшееся время в realtime-канал.
type TickNotifier interface {
	NotifyTimerTick(tournamentID string, remainingSeconds int)
}

// CompletionFunc вызывается по истечении отсчёта.
type CompletionFunc func(ctx context.Context, tournamentID string) error

// RoundTimer ведёт отсчёт между раундами, по одному таймеру на турнир.
// Карта таймеров защищена мьютексом и принадлежит сервису, а не пакету:
// инжектируется при сборке, гасится целиком на shutdown.
type RoundTimer struct {
	mu     sync.Mutex
	timers map[string]chan struct{}

	notifier TickNotifier
	logger   *zap.Logger
}

func NewRoundTimer(notifier TickNotifier, logger *zap.Logger) *RoundTimer {
	return &RoundTimer{
		timers:   make(map[string]chan struct{}),
		notifier: notifier,
		logger:   logger,
	}
}

// Start запускает отсчёт для турнира, отменяя уже идущий.
// Каждую секунду оставшееся время транслируется в комнату турнира;
// на нуле таймер снимается и асинхронно вызывается onComplete.
func (rt *RoundTimer) Start(tournamentID string, seconds int, onComplete CompletionFunc) {
	rt.mu.Lock()
	if stop, ok := rt.timers[tournamentID]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	rt.timers[tournamentID] = stop
	rt.mu.Unlock()

	rt.logger.Info("round timer started",
		zap.String("tournament_id", tournamentID), zap.Int("seconds", seconds))

	go rt.run(tournamentID, seconds, stop, onComplete)
}

func (rt *RoundTimer) run(tournamentID string, seconds int, stop chan struct{}, onComplete CompletionFunc) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := seconds
	rt.notifier.NotifyTimerTick(tournamentID, remaining)

	for {
		select {
		case <-ticker.C:
			remaining--
			rt.notifier.NotifyTimerTick(tournamentID, remaining)
			if remaining > 0 {
				continue
			}
			rt.remove(tournamentID, stop)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
				defer cancel()
				if err := onComplete(ctx, tournamentID); err != nil {
					rt.logger.Error("round timer completion failed",
						zap.String("tournament_id", tournamentID), zap.Error(err))
				}
			}()
			return

		case <-stop:
			return
		}
	}
}

// Stop снимает таймер турнира; отсутствие таймера — не ошибка.
func (rt *RoundTimer) Stop(tournamentID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if stop, ok := rt.timers[tournamentID]; ok {
		close(stop)
		delete(rt.timers, tournamentID)
	}
}

// StopAll гасит все таймеры; вызывается при остановке процесса.
func (rt *RoundTimer) StopAll() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for id, stop := range rt.timers {
		close(stop)
		delete(rt.timers, id)
	}
}

// remove удаляет запись, только если она всё ещё принадлежит этому отсчёту:
// Start мог успеть заменить её новым таймером.
func (rt *RoundTimer) remove(tournamentID string, stop chan struct{}) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if current, ok := rt.timers[tournamentID]; ok && current == stop {
		delete(rt.timers, tournamentID)
	}
}
