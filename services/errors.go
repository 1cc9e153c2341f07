package services

import "errors"

// Ошибки сервисного слоя. Доменные ошибки models.* пробрасываются как есть.
var (
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Игрок может состоять не более чем в одном активном турнире;
	// проверяется поиском в репозитории, а не внутри агрегата.
	ErrPlayerInActiveTournament = errors.New("player already participates in an active tournament")
)
