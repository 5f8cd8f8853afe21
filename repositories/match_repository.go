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
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchNotPending    = errors.New("match is not pending")
	ErrMatchPlayerInvalid = errors.New("match player reference invalid")
)

const matchColumns = `id, round_id, tournament_id, table_number, player1_id, player2_id, status, winner_id,
	player1_score, player2_score, player1_control_points, player2_control_points,
	player1_army_points, player2_army_points, scenario, result_type, created_at, completed_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByRound(ctx context.Context, roundID int) ([]*models.Match, error)
	// ListResolvedByTournament returns completed and bye matches, the
	// inputs of opponent history and standings.
	ListResolvedByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// SubmitResult completes a pending match. The status guard in the
	// UPDATE serializes concurrent submissions: only one caller moves the
	// row out of pending, every other one gets ErrMatchNotPending.
	SubmitResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ResetResult(ctx context.Context, exec SQLExecutor, id int) error
	CountPendingByRound(ctx context.Context, exec SQLExecutor, roundID int) (int, error)
	DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches
			(round_id, tournament_id, table_number, player1_id, player2_id, status, winner_id,
			 player1_score, player2_score, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		m.RoundID,
		m.TournamentID,
		m.TableNumber,
		m.Player1ID,
		m.Player2ID,
		m.Status,
		m.WinnerID,
		m.Player1Score,
		m.Player2Score,
		m.CompletedAt,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)

	m := &models.Match{}
	if err := scanMatch(row.Scan, m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE round_id = $1 ORDER BY table_number ASC`
	return r.queryMatches(ctx, query, roundID)
}

func (r *postgresMatchRepository) ListResolvedByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND status IN ('completed', 'bye')
		ORDER BY id ASC`
	return r.queryMatches(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows.Scan, &m); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func scanMatch(scan func(dest ...interface{}) error, m *models.Match) error {
	return scan(
		&m.ID,
		&m.RoundID,
		&m.TournamentID,
		&m.TableNumber,
		&m.Player1ID,
		&m.Player2ID,
		&m.Status,
		&m.WinnerID,
		&m.Player1Score,
		&m.Player2Score,
		&m.Player1ControlPoints,
		&m.Player2ControlPoints,
		&m.Player1ArmyPoints,
		&m.Player2ArmyPoints,
		&m.Scenario,
		&m.ResultType,
		&m.CreatedAt,
		&m.CompletedAt,
	)
}

func (r *postgresMatchRepository) SubmitResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	result, err := r.execResultUpdate(ctx, exec, m, ` AND status = 'pending'`)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotPending)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	result, err := r.execResultUpdate(ctx, exec, m, "")
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) execResultUpdate(ctx context.Context, exec SQLExecutor, m *models.Match, guard string) (sql.Result, error) {
	query := `
		UPDATE matches
		SET status = $1, winner_id = $2,
		    player1_score = $3, player2_score = $4,
		    player1_control_points = $5, player2_control_points = $6,
		    player1_army_points = $7, player2_army_points = $8,
		    scenario = $9, result_type = $10,
		    completed_at = $11
		WHERE id = $12` + guard

	return exec.ExecContext(ctx, query,
		m.Status,
		m.WinnerID,
		m.Player1Score,
		m.Player2Score,
		m.Player1ControlPoints,
		m.Player2ControlPoints,
		m.Player1ArmyPoints,
		m.Player2ArmyPoints,
		m.Scenario,
		m.ResultType,
		m.CompletedAt,
		m.ID,
	)
}

func (r *postgresMatchRepository) ResetResult(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		UPDATE matches
		SET status = 'pending', winner_id = NULL,
		    player1_score = 0, player2_score = 0,
		    player1_control_points = 0, player2_control_points = 0,
		    player1_army_points = 0, player2_army_points = 0,
		    scenario = NULL, result_type = NULL,
		    completed_at = NULL
		WHERE id = $1`

	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountPendingByRound(ctx context.Context, exec SQLExecutor, roundID int) (int, error) {
	var pending int
	err := exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE round_id = $1 AND status = 'pending'`, roundID).Scan(&pending)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending matches for round %d: %w", roundID, err)
	}
	return pending, nil
}

func (r *postgresMatchRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE round_id = $1`, roundID); err != nil {
		return fmt.Errorf("failed to delete matches for round %d: %w", roundID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_player1_id_fkey", "matches_player2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
