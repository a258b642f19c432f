package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrPairNotFound            = errors.New("pair not found")
	ErrCompetitorAlreadyPaired = errors.New("competitor already entered in a pair for this tournament")
	ErrPairInUse               = errors.New("pair is referenced by a zone or match")
)

type PairRepository interface {
	// Create inserts the pair and one membership row per competitor.
	Create(ctx context.Context, exec SQLExecutor, p *models.Pair) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pair, error)
	ListByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) ([]models.Pair, error)
	// PairedCompetitors returns which of the given competitors already belong to a pair of the tournament.
	PairedCompetitors(ctx context.Context, exec SQLExecutor, tournamentID int, competitorIDs []int) ([]int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPairRepository struct {
	baseRepository
}

func NewPostgresPairRepository(db *sql.DB) PairRepository {
	return &postgresPairRepository{baseRepository{db: db}}
}

func (r *postgresPairRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Pair) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pairs (tournament_id, category_id, competitor1_id, competitor2_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, p.TournamentID, p.CategoryID, p.Competitor1ID, p.Competitor2ID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return r.handlePairError(err)
	}

	memberQuery := `
		INSERT INTO pair_members (pair_id, tournament_id, competitor_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (pair_id, competitor_id) DO NOTHING`
	for _, cid := range p.CompetitorIDs() {
		if _, err := executor.ExecContext(ctx, memberQuery, p.ID, p.TournamentID, cid); err != nil {
			return r.handlePairError(err)
		}
	}
	return nil
}

func (r *postgresPairRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pair, error) {
	query := `
		SELECT id, tournament_id, category_id, competitor1_id, competitor2_id, created_at
		FROM pairs WHERE id = $1`
	p := &models.Pair{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.TournamentID, &p.CategoryID, &p.Competitor1ID, &p.Competitor2ID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairNotFound
		}
		return nil, fmt.Errorf("failed to get pair %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPairRepository) ListByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) ([]models.Pair, error) {
	query := `
		SELECT p.id, p.tournament_id, p.category_id, p.competitor1_id, p.competitor2_id, p.created_at,
		       c1.first_name, c1.last_name, c2.first_name, c2.last_name
		FROM pairs p
		JOIN competitors c1 ON c1.id = p.competitor1_id
		JOIN competitors c2 ON c2.id = p.competitor2_id
		WHERE p.tournament_id = $1 AND p.category_id = $2
		ORDER BY p.id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs of tournament %d category %d: %w", tournamentID, categoryID, err)
	}
	defer rows.Close()

	pairs := make([]models.Pair, 0)
	for rows.Next() {
		var p models.Pair
		c1, c2 := &models.Competitor{}, &models.Competitor{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.CategoryID, &p.Competitor1ID, &p.Competitor2ID, &p.CreatedAt,
			&c1.FirstName, &c1.LastName, &c2.FirstName, &c2.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan pair row: %w", err)
		}
		c1.ID, c2.ID = p.Competitor1ID, p.Competitor2ID
		p.Competitor1, p.Competitor2 = c1, c2
		pairs = append(pairs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pair rows iteration: %w", err)
	}
	return pairs, nil
}

func (r *postgresPairRepository) PairedCompetitors(ctx context.Context, exec SQLExecutor, tournamentID int, competitorIDs []int) ([]int, error) {
	query := `
		SELECT competitor_id FROM pair_members
		WHERE tournament_id = $1 AND competitor_id = ANY($2)
		ORDER BY competitor_id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID, pq.Array(competitorIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to check paired competitors: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan competitor id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresPairRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM pairs WHERE id = $1`, id)
	if err != nil {
		if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			return ErrPairInUse
		}
		return fmt.Errorf("failed to delete pair %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPairNotFound)
}

func (r *postgresPairRepository) handlePairError(err error) error {
	code, constraint, ok := pqConstraint(err)
	if !ok {
		return fmt.Errorf("failed to create pair: %w", err)
	}
	switch {
	case code == pqUniqueViolation && constraint == "pair_members_tournament_competitor_key":
		return ErrCompetitorAlreadyPaired
	case code == pqForeignKeyViolation && constraint == "pairs_tournament_id_category_id_fkey":
		return ErrTournamentCategoryNotFound
	case code == pqForeignKeyViolation:
		return ErrCompetitorNotFound
	}
	return fmt.Errorf("failed to create pair: %w", err)
}
