package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrZoneMatchNotFound = errors.New("zone match not found")
	ErrZoneSlotFilled    = errors.New("zone match slot already filled")
)

type ZoneMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.ZoneMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ZoneMatch, error)
	ListByZone(ctx context.Context, exec SQLExecutor, zoneID int) ([]models.ZoneMatch, error)
	// ListDependents returns the matches with a slot sourced from the given match.
	ListDependents(ctx context.Context, exec SQLExecutor, sourceMatchID int) ([]models.ZoneMatch, error)
	SaveResult(ctx context.Context, exec SQLExecutor, id int, sets []models.SetScore, winnerPairID *int, status models.MatchStatus) error
	SetPair(ctx context.Context, exec SQLExecutor, id, slot, pairID int) error
}

type postgresZoneMatchRepository struct {
	baseRepository
}

func NewPostgresZoneMatchRepository(db *sql.DB) ZoneMatchRepository {
	return &postgresZoneMatchRepository{baseRepository{db: db}}
}

const zoneMatchColumns = `
	id, zone_id, kind, match_order, pair1_id, pair2_id,
	pair1_source_match_id, pair1_source_outcome, pair2_source_match_id, pair2_source_outcome,
	set1_p1, set1_p2, set2_p1, set2_p2, set3_p1, set3_p2,
	winner_pair_id, status, updated_at`

func scanZoneMatch(row interface{ Scan(...interface{}) error }) (*models.ZoneMatch, error) {
	m := &models.ZoneMatch{}
	var (
		src1ID, src2ID           sql.NullInt64
		src1Outcome, src2Outcome sql.NullString
		sets                     setColumns
	)
	dest := []interface{}{
		&m.ID, &m.ZoneID, &m.Kind, &m.Order, &m.Pair1ID, &m.Pair2ID,
		&src1ID, &src1Outcome, &src2ID, &src2Outcome,
	}
	dest = append(dest, sets.dest()...)
	dest = append(dest, &m.WinnerPairID, &m.Status, &m.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Pair1Source = slotSource(src1ID, src1Outcome)
	m.Pair2Source = slotSource(src2ID, src2Outcome)
	m.Sets = sets.sets()
	return m, nil
}

func slotSource(id sql.NullInt64, outcome sql.NullString) *models.SlotSource {
	if !id.Valid {
		return nil
	}
	return &models.SlotSource{MatchID: int(id.Int64), Outcome: models.Outcome(outcome.String)}
}

func sourceArgs(s *models.SlotSource) (interface{}, interface{}) {
	if s == nil {
		return nil, nil
	}
	return s.MatchID, string(s.Outcome)
}

func (r *postgresZoneMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.ZoneMatch) error {
	query := `
		INSERT INTO zone_matches
			(zone_id, kind, match_order, pair1_id, pair2_id,
			 pair1_source_match_id, pair1_source_outcome, pair2_source_match_id, pair2_source_outcome, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, updated_at`
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	s1ID, s1Out := sourceArgs(m.Pair1Source)
	s2ID, s2Out := sourceArgs(m.Pair2Source)
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ZoneID, m.Kind, m.Order, m.Pair1ID, m.Pair2ID, s1ID, s1Out, s2ID, s2Out, m.Status,
	).Scan(&m.ID, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create zone match: %w", err)
	}
	return nil
}

func (r *postgresZoneMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ZoneMatch, error) {
	m, err := scanZoneMatch(r.getExecutor(exec).QueryRowContext(ctx, `SELECT `+zoneMatchColumns+` FROM zone_matches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrZoneMatchNotFound
		}
		return nil, fmt.Errorf("failed to get zone match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresZoneMatchRepository) ListByZone(ctx context.Context, exec SQLExecutor, zoneID int) ([]models.ZoneMatch, error) {
	return r.list(ctx, exec, `SELECT `+zoneMatchColumns+` FROM zone_matches WHERE zone_id = $1 ORDER BY match_order`, zoneID)
}

func (r *postgresZoneMatchRepository) ListDependents(ctx context.Context, exec SQLExecutor, sourceMatchID int) ([]models.ZoneMatch, error) {
	query := `SELECT ` + zoneMatchColumns + ` FROM zone_matches
		WHERE pair1_source_match_id = $1 OR pair2_source_match_id = $1
		ORDER BY match_order`
	return r.list(ctx, exec, query, sourceMatchID)
}

func (r *postgresZoneMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, arg int) ([]models.ZoneMatch, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query zone matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.ZoneMatch, 0)
	for rows.Next() {
		m, err := scanZoneMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during zone match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresZoneMatchRepository) SaveResult(ctx context.Context, exec SQLExecutor, id int, sets []models.SetScore, winnerPairID *int, status models.MatchStatus) error {
	query := `
		UPDATE zone_matches SET
			set1_p1 = $1, set1_p2 = $2, set2_p1 = $3, set2_p2 = $4, set3_p1 = $5, set3_p2 = $6,
			winner_pair_id = $7, status = $8, updated_at = now()
		WHERE id = $9`
	args := append(setArgs(sets), winnerPairID, status, id)
	result, err := r.getExecutor(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save result of zone match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrZoneMatchNotFound)
}

func (r *postgresZoneMatchRepository) SetPair(ctx context.Context, exec SQLExecutor, id, slot, pairID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE zone_matches SET pair1_id = $1, updated_at = now() WHERE id = $2 AND pair1_id IS NULL`
	case 2:
		query = `UPDATE zone_matches SET pair2_id = $1, updated_at = now() WHERE id = $2 AND pair2_id IS NULL`
	default:
		return fmt.Errorf("invalid slot %d", slot)
	}
	result, err := r.getExecutor(exec).ExecContext(ctx, query, pairID, id)
	if err != nil {
		return fmt.Errorf("failed to fill slot %d of zone match %d: %w", slot, id, err)
	}
	return checkAffectedRows(result, ErrZoneSlotFilled)
}
