package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrTournamentNotFound         = errors.New("tournament not found")
	ErrTournamentSequenceConflict = errors.New("tournament sequence already used in season")
	ErrTournamentCategoryNotFound = errors.New("category is not part of tournament")
	ErrCategoryNotFound           = errors.New("category not found")
	ErrCategoryNameConflict       = errors.New("category name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate locks the tournament row until the transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, season *int) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, finalizedAt *time.Time) error

	AddCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) error
	ListCategories(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentCategory, error)
	// LockCategory locks the tournament-category row that serializes bracket work.
	LockCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) (*models.TournamentCategory, error)
	MarkBracketGenerated(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int, at time.Time) error

	CreateCategory(ctx context.Context, exec SQLExecutor, c *models.Category) error
	GetCategory(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error)
	GetCategoryByName(ctx context.Context, exec SQLExecutor, name string) (*models.Category, error)
	ListAllCategories(ctx context.Context, exec SQLExecutor) ([]models.Category, error)
}

type postgresTournamentRepository struct {
	baseRepository
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{baseRepository{db: db}}
}

const tournamentColumns = `id, name, sequence, season, status, created_at, finalized_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(&t.ID, &t.Name, &t.Sequence, &t.Season, &t.Status, &t.CreatedAt, &t.FinalizedAt)
	return t, err
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, sequence, season, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	if t.Status == "" {
		t.Status = models.TournamentScheduled
	}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, t.Name, t.Sequence, t.Season, t.Status).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "tournaments_season_sequence_key") {
			return ErrTournamentSequenceConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTournamentRepository) get(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Tournament, error) {
	t, err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, season *int) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments`
	args := []interface{}{}
	if season != nil {
		query += ` WHERE season = $1`
		args = append(args, *season)
	}
	query += ` ORDER BY season DESC, sequence ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, finalizedAt *time.Time) error {
	query := `UPDATE tournaments SET status = $1, finalized_at = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, finalizedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) error {
	query := `
		INSERT INTO tournament_categories (tournament_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (tournament_id, category_id) DO NOTHING`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, categoryID); err != nil {
		if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to add category %d to tournament %d: %w", categoryID, tournamentID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) ListCategories(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentCategory, error) {
	query := `
		SELECT tournament_id, category_id, bracket_generated_at
		FROM tournament_categories
		WHERE tournament_id = $1
		ORDER BY category_id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	out := make([]models.TournamentCategory, 0)
	for rows.Next() {
		var tc models.TournamentCategory
		if err := rows.Scan(&tc.TournamentID, &tc.CategoryID, &tc.BracketGeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament category: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (r *postgresTournamentRepository) LockCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) (*models.TournamentCategory, error) {
	query := `
		SELECT tournament_id, category_id, bracket_generated_at
		FROM tournament_categories
		WHERE tournament_id = $1 AND category_id = $2
		FOR UPDATE`
	tc := &models.TournamentCategory{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, categoryID).
		Scan(&tc.TournamentID, &tc.CategoryID, &tc.BracketGeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentCategoryNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament %d category %d: %w", tournamentID, categoryID, err)
	}
	return tc, nil
}

func (r *postgresTournamentRepository) MarkBracketGenerated(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int, at time.Time) error {
	query := `UPDATE tournament_categories SET bracket_generated_at = $1 WHERE tournament_id = $2 AND category_id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, at, tournamentID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to mark bracket generated: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentCategoryNotFound)
}

func (r *postgresTournamentRepository) CreateCategory(ctx context.Context, exec SQLExecutor, c *models.Category) error {
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, c.Name).Scan(&c.ID); err != nil {
		if isUniqueViolation(err, "categories_name_key") {
			return ErrCategoryNameConflict
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetCategory(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error) {
	c := &models.Category{}
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresTournamentRepository) GetCategoryByName(ctx context.Context, exec SQLExecutor, name string) (*models.Category, error) {
	c := &models.Category{}
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = $1`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %q: %w", name, err)
	}
	return c, nil
}

func (r *postgresTournamentRepository) ListAllCategories(ctx context.Context, exec SQLExecutor) ([]models.Category, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	out := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
