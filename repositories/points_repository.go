package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrLedgerEntryNotFound = errors.New("points ledger entry not found")
	ErrStandingNotFound    = errors.New("season standing not found")
)

type PointsRepository interface {
	// ListRules returns the category rules followed by the default rules (category_id NULL).
	ListRules(ctx context.Context, exec SQLExecutor, categoryID *int) ([]models.PointsRule, error)
	// ReplaceRules swaps the whole table of one category, or of the default when categoryID is nil.
	ReplaceRules(ctx context.Context, exec SQLExecutor, categoryID *int, rules []models.PointsRule) error

	GetLedgerEntry(ctx context.Context, exec SQLExecutor, competitorID, tournamentID, categoryID int) (*models.PointsLedgerEntry, error)
	UpsertLedgerEntry(ctx context.Context, exec SQLExecutor, e *models.PointsLedgerEntry) error
	ListLedgerByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.PointsLedgerEntry, error)

	GetStandingForUpdate(ctx context.Context, exec SQLExecutor, competitorID, categoryID, season int) (*models.SeasonStanding, error)
	SaveStanding(ctx context.Context, exec SQLExecutor, s *models.SeasonStanding) error
	ListStandings(ctx context.Context, exec SQLExecutor, categoryID, season int) ([]models.SeasonStanding, error)
}

type postgresPointsRepository struct {
	baseRepository
}

func NewPostgresPointsRepository(db *sql.DB) PointsRepository {
	return &postgresPointsRepository{baseRepository{db: db}}
}

func (r *postgresPointsRepository) ListRules(ctx context.Context, exec SQLExecutor, categoryID *int) ([]models.PointsRule, error) {
	query := `
		SELECT category_id, instance, points
		FROM points_rules
		WHERE category_id IS NULL OR category_id = $1
		ORDER BY category_id NULLS LAST, instance`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list points rules: %w", err)
	}
	defer rows.Close()

	rules := make([]models.PointsRule, 0)
	for rows.Next() {
		var rule models.PointsRule
		if err := rows.Scan(&rule.CategoryID, &rule.Instance, &rule.Points); err != nil {
			return nil, fmt.Errorf("failed to scan points rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *postgresPointsRepository) ReplaceRules(ctx context.Context, exec SQLExecutor, categoryID *int, rules []models.PointsRule) error {
	executor := r.getExecutor(exec)
	var err error
	if categoryID == nil {
		_, err = executor.ExecContext(ctx, `DELETE FROM points_rules WHERE category_id IS NULL`)
	} else {
		_, err = executor.ExecContext(ctx, `DELETE FROM points_rules WHERE category_id = $1`, *categoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to clear points rules: %w", err)
	}

	for _, rule := range rules {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO points_rules (category_id, instance, points) VALUES ($1, $2, $3)`,
			categoryID, rule.Instance, rule.Points)
		if err != nil {
			if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to insert points rule %s: %w", rule.Instance, err)
		}
	}
	return nil
}

const ledgerColumns = `id, competitor_id, tournament_id, category_id, pair_id, instance, points, created_at, updated_at`

func scanLedger(row interface{ Scan(...interface{}) error }) (*models.PointsLedgerEntry, error) {
	e := &models.PointsLedgerEntry{}
	err := row.Scan(&e.ID, &e.CompetitorID, &e.TournamentID, &e.CategoryID, &e.PairID, &e.Instance, &e.Points, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *postgresPointsRepository) GetLedgerEntry(ctx context.Context, exec SQLExecutor, competitorID, tournamentID, categoryID int) (*models.PointsLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM points_ledger
		WHERE competitor_id = $1 AND tournament_id = $2 AND category_id = $3
		FOR UPDATE`
	e, err := scanLedger(r.getExecutor(exec).QueryRowContext(ctx, query, competitorID, tournamentID, categoryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLedgerEntryNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

func (r *postgresPointsRepository) UpsertLedgerEntry(ctx context.Context, exec SQLExecutor, e *models.PointsLedgerEntry) error {
	query := `
		INSERT INTO points_ledger (competitor_id, tournament_id, category_id, pair_id, instance, points)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT points_ledger_entry_key DO UPDATE SET
			pair_id = EXCLUDED.pair_id,
			instance = EXCLUDED.instance,
			points = EXCLUDED.points,
			updated_at = now()
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		e.CompetitorID, e.TournamentID, e.CategoryID, e.PairID, e.Instance, e.Points,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry for competitor %d: %w", e.CompetitorID, err)
	}
	return nil
}

func (r *postgresPointsRepository) ListLedgerByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.PointsLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM points_ledger WHERE tournament_id = $1 ORDER BY category_id, points DESC, competitor_id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]models.PointsLedgerEntry, 0)
	for rows.Next() {
		e, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *postgresPointsRepository) GetStandingForUpdate(ctx context.Context, exec SQLExecutor, competitorID, categoryID, season int) (*models.SeasonStanding, error) {
	query := `
		SELECT competitor_id, category_id, season, total_points, best_instance, tournaments_played, updated_at
		FROM season_standings
		WHERE competitor_id = $1 AND category_id = $2 AND season = $3
		FOR UPDATE`
	s := &models.SeasonStanding{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, competitorID, categoryID, season).
		Scan(&s.CompetitorID, &s.CategoryID, &s.Season, &s.TotalPoints, &s.BestInstance, &s.TournamentsPlayed, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to get season standing: %w", err)
	}
	return s, nil
}

func (r *postgresPointsRepository) SaveStanding(ctx context.Context, exec SQLExecutor, s *models.SeasonStanding) error {
	query := `
		INSERT INTO season_standings (competitor_id, category_id, season, total_points, best_instance, tournaments_played)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (competitor_id, category_id, season) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			best_instance = EXCLUDED.best_instance,
			tournaments_played = EXCLUDED.tournaments_played,
			updated_at = now()
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		s.CompetitorID, s.CategoryID, s.Season, s.TotalPoints, s.BestInstance, s.TournamentsPlayed,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save season standing of competitor %d: %w", s.CompetitorID, err)
	}
	return nil
}

func (r *postgresPointsRepository) ListStandings(ctx context.Context, exec SQLExecutor, categoryID, season int) ([]models.SeasonStanding, error) {
	query := `
		SELECT s.competitor_id, s.category_id, s.season, s.total_points, s.best_instance, s.tournaments_played, s.updated_at,
		       c.first_name, c.last_name, c.active
		FROM season_standings s
		JOIN competitors c ON c.id = s.competitor_id
		WHERE s.category_id = $1 AND s.season = $2
		ORDER BY s.total_points DESC, s.tournaments_played ASC, s.competitor_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, categoryID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list season standings: %w", err)
	}
	defer rows.Close()

	out := make([]models.SeasonStanding, 0)
	for rows.Next() {
		var s models.SeasonStanding
		c := &models.Competitor{}
		if err := rows.Scan(&s.CompetitorID, &s.CategoryID, &s.Season, &s.TotalPoints, &s.BestInstance, &s.TournamentsPlayed, &s.UpdatedAt,
			&c.FirstName, &c.LastName, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan season standing: %w", err)
		}
		c.ID = s.CompetitorID
		s.Competitor = c
		out = append(out, s)
	}
	return out, rows.Err()
}
