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
	ErrPlayerNotFound          = errors.New("player registration not found")
	ErrPlayerConflict          = errors.New("user is already registered for this tournament")
	ErrPlayerTournamentInvalid = errors.New("player tournament reference invalid")
	ErrPlayerUserInvalid       = errors.New("player user reference invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	// ListByTournament returns registrations with display names and
	// running win/loss totals over completed matches. activeOnly drops
	// the dropped.
	ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Player, error)
	UpdateProfile(ctx context.Context, id int, faction, listName *string) error
	Drop(ctx context.Context, id int, dropRound int) error
	Delete(ctx context.Context, id int) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	CountMatchesByPlayer(ctx context.Context, id int) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO tournament_players (tournament_id, user_id, faction, list_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.TournamentID,
		p.UserID,
		p.Faction,
		p.ListName,
	).Scan(&p.ID, &p.CreatedAt)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT tp.id, tp.tournament_id, tp.user_id, u.username, tp.faction, tp.list_name,
		       tp.dropped, tp.drop_round, tp.created_at
		FROM tournament_players tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.TournamentID,
		&p.UserID,
		&p.DisplayName,
		&p.Faction,
		&p.ListName,
		&p.Dropped,
		&p.DropRound,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Player, error) {
	query := `
		SELECT tp.id, tp.tournament_id, tp.user_id, u.username, tp.faction, tp.list_name,
		       tp.dropped, tp.drop_round, tp.created_at,
		       COALESCE(SUM(CASE WHEN m.winner_id = tp.id THEN 1 ELSE 0 END), 0) AS wins,
		       COALESCE(SUM(CASE WHEN m.winner_id IS NOT NULL AND m.winner_id != tp.id THEN 1 ELSE 0 END), 0) AS losses
		FROM tournament_players tp
		JOIN users u ON u.id = tp.user_id
		LEFT JOIN matches m ON (m.player1_id = tp.id OR m.player2_id = tp.id)
			AND m.tournament_id = tp.tournament_id
			AND m.status IN ('completed', 'bye')
		WHERE tp.tournament_id = $1`
	if activeOnly {
		query += ` AND tp.dropped = false`
	}
	query += `
		GROUP BY tp.id, u.username
		ORDER BY tp.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(
			&p.ID,
			&p.TournamentID,
			&p.UserID,
			&p.DisplayName,
			&p.Faction,
			&p.ListName,
			&p.Dropped,
			&p.DropRound,
			&p.CreatedAt,
			&p.Wins,
			&p.Losses,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateProfile(ctx context.Context, id int, faction, listName *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_players SET faction = $1, list_name = $2 WHERE id = $3`,
		faction, listName, id)
	if err != nil {
		return fmt.Errorf("failed to update player %d profile: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Drop(ctx context.Context, id int, dropRound int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_players SET dropped = true, drop_round = $1 WHERE id = $2 AND dropped = false`,
		dropRound, id)
	if err != nil {
		return fmt.Errorf("failed to drop player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_players WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresPlayerRepository) CountMatchesByPlayer(ctx context.Context, id int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE player1_id = $1 OR player2_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for player %d: %w", id, err)
	}
	return count, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "tournament_players_tournament_id_user_id_key":
			return ErrPlayerConflict
		case "tournament_players_tournament_id_fkey":
			return ErrPlayerTournamentInvalid
		case "tournament_players_user_id_fkey":
			return ErrPlayerUserInvalid
		}
	}
	return err
}
