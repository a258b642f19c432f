package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/padel-circuit/models"
)

var ErrCompetitorNotFound = errors.New("competitor not found")

type CompetitorRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.Competitor) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competitor, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Competitor, error)
	SetActive(ctx context.Context, exec SQLExecutor, id int, active bool) error
	// AddCategory records a category membership. Duplicate memberships are no-ops.
	AddCategory(ctx context.Context, exec SQLExecutor, competitorID, categoryID int) error
	HasCategory(ctx context.Context, exec SQLExecutor, competitorID, categoryID int) (bool, error)
}

type postgresCompetitorRepository struct {
	baseRepository
}

func NewPostgresCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &postgresCompetitorRepository{baseRepository{db: db}}
}

func (r *postgresCompetitorRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Competitor) error {
	query := `
		INSERT INTO competitors (first_name, last_name, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, c.FirstName, c.LastName, c.Active).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("failed to create competitor: %w", err)
	}
	return nil
}

func (r *postgresCompetitorRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competitor, error) {
	query := `SELECT id, first_name, last_name, active, created_at FROM competitors WHERE id = $1`
	c := &models.Competitor{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to get competitor %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCompetitorRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Competitor, error) {
	query := `
		SELECT id, first_name, last_name, active, created_at
		FROM competitors
		WHERE id = ANY($1)
		ORDER BY id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	defer rows.Close()

	out := make([]models.Competitor, 0, len(ids))
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresCompetitorRepository) SetActive(ctx context.Context, exec SQLExecutor, id int, active bool) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE competitors SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update competitor %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) AddCategory(ctx context.Context, exec SQLExecutor, competitorID, categoryID int) error {
	query := `
		INSERT INTO competitor_categories (competitor_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (competitor_id, category_id) DO NOTHING`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, competitorID, categoryID); err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			if constraint == "competitor_categories_category_id_fkey" {
				return ErrCategoryNotFound
			}
			return ErrCompetitorNotFound
		}
		return fmt.Errorf("failed to add competitor %d to category %d: %w", competitorID, categoryID, err)
	}
	return nil
}

func (r *postgresCompetitorRepository) HasCategory(ctx context.Context, exec SQLExecutor, competitorID, categoryID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM competitor_categories WHERE competitor_id = $1 AND category_id = $2)`
	var ok bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, competitorID, categoryID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check competitor category: %w", err)
	}
	return ok, nil
}
