package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/skirmish-hq/tournament-system/models"
)

var (
	ErrRoundNotFound       = errors.New("round not found")
	ErrRoundNumberConflict = errors.New("round number already exists for this tournament")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	GetByNumber(ctx context.Context, tournamentID, roundNumber int) (*models.Round, error)
	MarkCompleted(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (tournament_id, round_number, status, started_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, started_at`

	err := exec.QueryRowContext(ctx, query,
		round.TournamentID,
		round.RoundNumber,
		round.Status,
	).Scan(&round.ID, &round.StartedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "rounds_tournament_id_round_number_key" {
			return ErrRoundNumberConflict
		}
		return fmt.Errorf("failed to create round %d for tournament %d: %w", round.RoundNumber, round.TournamentID, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	return r.scanRound(r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, round_number, status, started_at, completed_at FROM rounds WHERE id = $1`, id))
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, tournamentID, roundNumber int) (*models.Round, error) {
	return r.scanRound(r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, round_number, status, started_at, completed_at
		 FROM rounds WHERE tournament_id = $1 AND round_number = $2`, tournamentID, roundNumber))
}

func (r *postgresRoundRepository) scanRound(row *sql.Row) (*models.Round, error) {
	round := &models.Round{}
	err := row.Scan(
		&round.ID,
		&round.TournamentID,
		&round.RoundNumber,
		&round.Status,
		&round.StartedAt,
		&round.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return round, nil
}

func (r *postgresRoundRepository) MarkCompleted(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE rounds SET status = $1, completed_at = CURRENT_TIMESTAMP WHERE id = $2`,
		models.RoundStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to complete round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM rounds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
