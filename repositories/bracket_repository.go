package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrBracketMatchNotFound = errors.New("bracket match not found")
	ErrBracketExists        = errors.New("bracket already generated for tournament category")
)

type BracketRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.BracketMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error)
	// GetForUpdate locks a single match row.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error)
	GetByPositionForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, categoryID, roundIndex, position int) (*models.BracketMatch, error)
	ListByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) ([]models.BracketMatch, error)
	Count(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) (int, error)
	SaveResult(ctx context.Context, exec SQLExecutor, id int, sets []models.SetScore, winnerPairID *int, status models.MatchStatus) error
	SetSlot(ctx context.Context, exec SQLExecutor, id, slot, pairID int) error
}

type postgresBracketRepository struct {
	baseRepository
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{baseRepository{db: db}}
}

const bracketColumns = `
	id, tournament_id, category_id, round_name, round_index, position,
	pair1_id, pair2_id, seed1, seed2,
	set1_p1, set1_p2, set2_p1, set2_p2, set3_p1, set3_p2,
	winner_pair_id, status, next_round_index, next_position, next_slot, updated_at`

func scanBracketMatch(row interface{ Scan(...interface{}) error }) (*models.BracketMatch, error) {
	m := &models.BracketMatch{}
	var sets setColumns
	dest := []interface{}{
		&m.ID, &m.TournamentID, &m.CategoryID, &m.Round, &m.RoundIndex, &m.Position,
		&m.Pair1ID, &m.Pair2ID, &m.Seed1, &m.Seed2,
	}
	dest = append(dest, sets.dest()...)
	dest = append(dest, &m.WinnerPairID, &m.Status, &m.NextRoundIndex, &m.NextPosition, &m.NextSlot, &m.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Sets = sets.sets()
	return m, nil
}

func (r *postgresBracketRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.BracketMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_matches
			(tournament_id, category_id, round_name, round_index, position, pair1_id, pair2_id, seed1, seed2,
			 status, next_round_index, next_position, next_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, updated_at`
	for i := range matches {
		m := &matches[i]
		if m.Status == "" {
			m.Status = models.MatchPending
		}
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.CategoryID, m.Round, m.RoundIndex, m.Position, m.Pair1ID, m.Pair2ID, m.Seed1, m.Seed2,
			m.Status, m.NextRoundIndex, m.NextPosition, m.NextSlot,
		).Scan(&m.ID, &m.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "bracket_matches_slot_key") {
				return ErrBracketExists
			}
			return fmt.Errorf("failed to create bracket match round %d position %d: %w", m.RoundIndex, m.Position, err)
		}
	}
	return nil
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error) {
	return r.get(ctx, exec, `SELECT `+bracketColumns+` FROM bracket_matches WHERE id = $1`, id)
}

func (r *postgresBracketRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error) {
	return r.get(ctx, exec, `SELECT `+bracketColumns+` FROM bracket_matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresBracketRepository) GetByPositionForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, categoryID, roundIndex, position int) (*models.BracketMatch, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_matches
		WHERE tournament_id = $1 AND category_id = $2 AND round_index = $3 AND position = $4
		FOR UPDATE`
	return r.get(ctx, exec, query, tournamentID, categoryID, roundIndex, position)
}

func (r *postgresBracketRepository) get(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.BracketMatch, error) {
	m, err := scanBracketMatch(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketMatchNotFound
		}
		return nil, fmt.Errorf("failed to get bracket match: %w", err)
	}
	return m, nil
}

func (r *postgresBracketRepository) ListByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) ([]models.BracketMatch, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_matches
		WHERE tournament_id = $1 AND category_id = $2
		ORDER BY round_index, position`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.BracketMatch, 0)
	for rows.Next() {
		m, err := scanBracketMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bracket match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresBracketRepository) Count(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) (int, error) {
	var n int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bracket_matches WHERE tournament_id = $1 AND category_id = $2`, tournamentID, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count bracket matches: %w", err)
	}
	return n, nil
}

func (r *postgresBracketRepository) SaveResult(ctx context.Context, exec SQLExecutor, id int, sets []models.SetScore, winnerPairID *int, status models.MatchStatus) error {
	query := `
		UPDATE bracket_matches SET
			set1_p1 = $1, set1_p2 = $2, set2_p1 = $3, set2_p2 = $4, set3_p1 = $5, set3_p2 = $6,
			winner_pair_id = $7, status = $8, updated_at = now()
		WHERE id = $9`
	args := append(setArgs(sets), winnerPairID, status, id)
	result, err := r.getExecutor(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save result of bracket match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotFound)
}

func (r *postgresBracketRepository) SetSlot(ctx context.Context, exec SQLExecutor, id, slot, pairID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE bracket_matches SET pair1_id = $1, updated_at = now() WHERE id = $2`
	case 2:
		query = `UPDATE bracket_matches SET pair2_id = $1, updated_at = now() WHERE id = $2`
	default:
		return fmt.Errorf("invalid slot %d", slot)
	}
	result, err := r.getExecutor(exec).ExecContext(ctx, query, pairID, id)
	if err != nil {
		return fmt.Errorf("failed to fill slot %d of bracket match %d: %w", slot, id, err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotFound)
}
