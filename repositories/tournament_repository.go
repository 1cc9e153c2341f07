package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pongarena/tournament-engine/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	// ErrTournamentVersionConflict возвращается, когда агрегат был изменён
	// конкурентно между load и save; вся транзакция откатывается.
	ErrTournamentVersionConflict = errors.New("tournament was modified concurrently")
	ErrTournamentIDConflict      = errors.New("tournament id already exists")
)

type TournamentRepository interface {
	// Save выполняет единую транзакцию: upsert строки турнира с проверкой
	// версии, затем полная замена (delete+insert) участников и матчей.
	Save(ctx context.Context, tournament *models.Tournament) error
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	FindByMatchID(ctx context.Context, matchID string) (*models.Tournament, error)
	FindActiveByParticipantID(ctx context.Context, participantID string) (*models.Tournament, error)
	FindAll(ctx context.Context) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db      *sql.DB
	seeding models.SeedingStrategy
}

func NewPostgresTournamentRepository(db *sql.DB, seeding models.SeedingStrategy) TournamentRepository {
	return &postgresTournamentRepository{db: db, seeding: seeding}
}

func (r *postgresTournamentRepository) Save(ctx context.Context, t *models.Tournament) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if t.Version == 0 {
		if err := r.insertTournament(ctx, tx, t); err != nil {
			return err
		}
	} else {
		if err := r.updateTournament(ctx, tx, t); err != nil {
			return err
		}
	}

	// Замена дочерних строк целиком: дороже по записи, зато исключает
	// ошибки диффа ростера и сетки.
	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE tournament_id = $1`, t.ID); err != nil {
		return fmt.Errorf("failed to clear participants for tournament %s: %w", t.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, t.ID); err != nil {
		return fmt.Errorf("failed to clear matches for tournament %s: %w", t.ID, err)
	}

	if err := r.insertParticipants(ctx, tx, t); err != nil {
		return err
	}
	if err := r.insertMatches(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament %s: %w", t.ID, err)
	}
	t.Version++
	return nil
}

func (r *postgresTournamentRepository) insertTournament(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (id, name, size, owner_id, status, visibility, winner_id, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)`

	_, err := exec.ExecContext(ctx, query,
		t.ID, t.Name, t.Size, t.OwnerID, t.Status, t.Visibility, playerID(t.Winner),
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrTournamentIDConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert tournament %s: %w", t.ID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) updateTournament(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			status = $2,
			visibility = $3,
			winner_id = $4,
			version = version + 1
		WHERE id = $5 AND version = $6`

	result, err := exec.ExecContext(ctx, query,
		t.Name, t.Status, t.Visibility, playerID(t.Winner), t.ID, t.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentVersionConflict)
}

func (r *postgresTournamentRepository) insertParticipants(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO participants (tournament_id, id, display_name, type, join_order)
		VALUES ($1, $2, $3, $4, $5)`

	for i, p := range t.Participants {
		if _, err := exec.ExecContext(ctx, query, t.ID, p.ID, p.DisplayName, p.Type, i); err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *postgresTournamentRepository) insertMatches(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO matches (id, tournament_id, round, position,
			player_a_id, player_b_id, score_a, score_b, winner_id, status, win_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, m := range t.Matches {
		var winReason *string
		if m.WinReason != nil {
			reason := string(*m.WinReason)
			winReason = &reason
		}
		_, err := exec.ExecContext(ctx, query,
			m.ID, t.ID, m.Round, m.Position,
			playerID(m.PlayerA), playerID(m.PlayerB),
			m.ScoreA, m.ScoreB, playerID(m.Winner), m.Status, winReason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *postgresTournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	return r.hydrate(ctx, id)
}

func (r *postgresTournamentRepository) FindByMatchID(ctx context.Context, matchID string) (*models.Tournament, error) {
	var tournamentID string
	err := r.db.QueryRowContext(ctx,
		`SELECT tournament_id FROM matches WHERE id = $1`, matchID,
	).Scan(&tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to resolve tournament by match %s: %w", matchID, err)
	}
	return r.hydrate(ctx, tournamentID)
}

func (r *postgresTournamentRepository) FindActiveByParticipantID(ctx context.Context, participantID string) (*models.Tournament, error) {
	query := `
		SELECT t.id
		FROM tournaments t
		JOIN participants p ON p.tournament_id = t.id
		WHERE p.id = $1 AND t.status IN ($2, $3)
		LIMIT 1`

	var tournamentID string
	err := r.db.QueryRowContext(ctx, query,
		participantID, models.TournamentStatusCreated, models.TournamentStatusStarted,
	).Scan(&tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to resolve active tournament for participant %s: %w", participantID, err)
	}
	return r.hydrate(ctx, tournamentID)
}

func (r *postgresTournamentRepository) FindAll(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tournaments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	tournaments := make([]*models.Tournament, 0, len(ids))
	for _, id := range ids {
		t, hydrateErr := r.hydrate(ctx, id)
		if hydrateErr != nil {
			if errors.Is(hydrateErr, ErrTournamentNotFound) {
				continue // удалён между запросами
			}
			return nil, hydrateErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}

// hydrate восстанавливает агрегат в два прохода: сначала участники
// (строится карта id → Participant), затем матчи, чьи ссылки на игроков
// резолвятся через эту карту — в хранилище матчи держат только id.
func (r *postgresTournamentRepository) hydrate(ctx context.Context, id string) (*models.Tournament, error) {
	query := `
		SELECT id, name, size, owner_id, status, visibility, winner_id, version
		FROM tournaments
		WHERE id = $1`

	var (
		name, ownerID      string
		size, version      int
		status             models.TournamentStatus
		visibility         models.TournamentVisibility
		tournamentWinnerID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&id, &name, &size, &ownerID, &status, &visibility, &tournamentWinnerID, &version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}

	participants, byID, err := r.loadParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := r.loadMatches(ctx, id, byID)
	if err != nil {
		return nil, err
	}

	var winner *models.Participant
	if tournamentWinnerID.Valid {
		if p, ok := byID[tournamentWinnerID.String]; ok {
			winner = &p
		}
	}

	return models.RestoreTournament(
		id, name, size, ownerID, status, visibility, version,
		participants, matches, winner, r.seeding,
	), nil
}

func (r *postgresTournamentRepository) loadParticipants(ctx context.Context, tournamentID string) ([]models.Participant, map[string]models.Participant, error) {
	query := `
		SELECT id, display_name, type
		FROM participants
		WHERE tournament_id = $1
		ORDER BY join_order`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load participants for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	byID := make(map[string]models.Participant)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(&p.ID, &p.DisplayName, &p.Type); scanErr != nil {
			return nil, nil, scanErr
		}
		participants = append(participants, p)
		byID[p.ID] = p
	}
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}
	return participants, byID, nil
}

func (r *postgresTournamentRepository) loadMatches(ctx context.Context, tournamentID string, byID map[string]models.Participant) ([]*models.Match, error) {
	query := `
		SELECT id, round, position, player_a_id, player_b_id,
		       score_a, score_b, winner_id, status, win_reason
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round, position`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var (
			m                           models.Match
			playerAID, playerBID, winID sql.NullString
			winReason                   sql.NullString
		)
		if scanErr := rows.Scan(
			&m.ID, &m.Round, &m.Position, &playerAID, &playerBID,
			&m.ScoreA, &m.ScoreB, &winID, &m.Status, &winReason,
		); scanErr != nil {
			return nil, scanErr
		}

		m.PlayerA = resolvePlayer(byID, playerAID)
		m.PlayerB = resolvePlayer(byID, playerBID)
		m.Winner = resolvePlayer(byID, winID)
		if winReason.Valid {
			reason := models.WinReason(winReason.String)
			m.WinReason = &reason
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func resolvePlayer(byID map[string]models.Participant, id sql.NullString) *models.Participant {
	if !id.Valid {
		return nil
	}
	if p, ok := byID[id.String]; ok {
		return &p
	}
	return nil
}

func playerID(p *models.Participant) *string {
	if p == nil {
		return nil
	}
	return &p.ID
}
