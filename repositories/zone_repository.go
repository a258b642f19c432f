package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrZoneNotFound         = errors.New("zone not found")
	ErrZonePositionConflict = errors.New("zone position already used in category")
	ErrZoneEntryNotFound    = errors.New("zone entry not found")
	ErrPairInAnotherZone    = errors.New("pair already assigned to another zone")
)

type ZoneRepository interface {
	Create(ctx context.Context, exec SQLExecutor, z *models.Zone) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Zone, error)
	// GetForUpdate locks the zone row; every zone mutation takes this lock first.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Zone, error)
	ListByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) ([]models.Zone, error)
	NextPosition(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ZoneStatus, finalizedAt *time.Time) error

	// AddEntry inserts a zone membership. Re-adding the same pair to the same zone is a no-op.
	AddEntry(ctx context.Context, exec SQLExecutor, zoneID, pairID int) error
	ListEntries(ctx context.Context, exec SQLExecutor, zoneID int) ([]models.ZoneEntry, error)
	ZoneOfPair(ctx context.Context, exec SQLExecutor, pairID int) (*int, error)
	ApplyDelta(ctx context.Context, exec SQLExecutor, zoneID, pairID int, d models.StatsDelta) error
	SetFinalRanks(ctx context.Context, exec SQLExecutor, zoneID int, ranks map[int]int) error
	ClearFinalRanks(ctx context.Context, exec SQLExecutor, zoneID int) error

	CreateTieResolution(ctx context.Context, exec SQLExecutor, t *models.TieResolution) error
	LatestTieResolution(ctx context.Context, exec SQLExecutor, zoneID int) (*models.TieResolution, error)
	CompleteTieResolution(ctx context.Context, exec SQLExecutor, id string, at time.Time) error
}

var ErrTieResolutionNotFound = errors.New("tie resolution not found")

type postgresZoneRepository struct {
	baseRepository
}

func NewPostgresZoneRepository(db *sql.DB) ZoneRepository {
	return &postgresZoneRepository{baseRepository{db: db}}
}

const zoneColumns = `id, tournament_id, category_id, name, position, format, status, created_at, finalized_at`

func scanZone(row interface{ Scan(...interface{}) error }) (*models.Zone, error) {
	z := &models.Zone{}
	err := row.Scan(&z.ID, &z.TournamentID, &z.CategoryID, &z.Name, &z.Position, &z.Format, &z.Status, &z.CreatedAt, &z.FinalizedAt)
	return z, err
}

func (r *postgresZoneRepository) Create(ctx context.Context, exec SQLExecutor, z *models.Zone) error {
	query := `
		INSERT INTO zones (tournament_id, category_id, name, position, format, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, z.TournamentID, z.CategoryID, z.Name, z.Position, z.Format, z.Status).
		Scan(&z.ID, &z.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "zones_position_key") {
			return ErrZonePositionConflict
		}
		if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			return ErrTournamentCategoryNotFound
		}
		return fmt.Errorf("failed to create zone: %w", err)
	}
	return nil
}

func (r *postgresZoneRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Zone, error) {
	return r.get(ctx, exec, `SELECT `+zoneColumns+` FROM zones WHERE id = $1`, id)
}

func (r *postgresZoneRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Zone, error) {
	return r.get(ctx, exec, `SELECT `+zoneColumns+` FROM zones WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresZoneRepository) get(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Zone, error) {
	z, err := scanZone(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to get zone %d: %w", id, err)
	}
	return z, nil
}

func (r *postgresZoneRepository) ListByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) ([]models.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE tournament_id = $1 AND category_id = $2 ORDER BY position`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", err)
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

func (r *postgresZoneRepository) NextPosition(ctx context.Context, exec SQLExecutor, tournamentID, categoryID int) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) + 1 FROM zones WHERE tournament_id = $1 AND category_id = $2`
	var pos int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, categoryID).Scan(&pos); err != nil {
		return 0, fmt.Errorf("failed to compute zone position: %w", err)
	}
	return pos, nil
}

func (r *postgresZoneRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ZoneStatus, finalizedAt *time.Time) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE zones SET status = $1, finalized_at = $2 WHERE id = $3`, status, finalizedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update zone %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrZoneNotFound)
}

func (r *postgresZoneRepository) AddEntry(ctx context.Context, exec SQLExecutor, zoneID, pairID int) error {
	query := `
		INSERT INTO zone_entries (zone_id, pair_id)
		VALUES ($1, $2)
		ON CONFLICT (zone_id, pair_id) DO NOTHING`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, zoneID, pairID); err != nil {
		if isUniqueViolation(err, "zone_entries_pair_id_key") {
			return ErrPairInAnotherZone
		}
		if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			return ErrPairNotFound
		}
		return fmt.Errorf("failed to add pair %d to zone %d: %w", pairID, zoneID, err)
	}
	return nil
}

func (r *postgresZoneRepository) ListEntries(ctx context.Context, exec SQLExecutor, zoneID int) ([]models.ZoneEntry, error) {
	query := `
		SELECT zone_id, pair_id, matches_won, matches_lost, sets_won, sets_lost, games_won, games_lost, final_rank
		FROM zone_entries
		WHERE zone_id = $1
		ORDER BY pair_id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone %d entries: %w", zoneID, err)
	}
	defer rows.Close()

	entries := make([]models.ZoneEntry, 0)
	for rows.Next() {
		var e models.ZoneEntry
		if err := rows.Scan(&e.ZoneID, &e.PairID, &e.MatchesWon, &e.MatchesLost, &e.SetsWon, &e.SetsLost,
			&e.GamesWon, &e.GamesLost, &e.FinalRank); err != nil {
			return nil, fmt.Errorf("failed to scan zone entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresZoneRepository) ZoneOfPair(ctx context.Context, exec SQLExecutor, pairID int) (*int, error) {
	var zoneID int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT zone_id FROM zone_entries WHERE pair_id = $1`, pairID).Scan(&zoneID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find zone of pair %d: %w", pairID, err)
	}
	return &zoneID, nil
}

func (r *postgresZoneRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, zoneID, pairID int, d models.StatsDelta) error {
	query := `
		UPDATE zone_entries SET
			matches_won  = matches_won  + $3,
			matches_lost = matches_lost + $4,
			sets_won     = sets_won     + $5,
			sets_lost    = sets_lost    + $6,
			games_won    = games_won    + $7,
			games_lost   = games_lost   + $8
		WHERE zone_id = $1 AND pair_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, zoneID, pairID,
		d.MatchesWon, d.MatchesLost, d.SetsWon, d.SetsLost, d.GamesWon, d.GamesLost)
	if err != nil {
		return fmt.Errorf("failed to update standings of pair %d in zone %d: %w", pairID, zoneID, err)
	}
	return checkAffectedRows(result, ErrZoneEntryNotFound)
}

func (r *postgresZoneRepository) SetFinalRanks(ctx context.Context, exec SQLExecutor, zoneID int, ranks map[int]int) error {
	executor := r.getExecutor(exec)
	for pairID, rank := range ranks {
		result, err := executor.ExecContext(ctx,
			`UPDATE zone_entries SET final_rank = $1 WHERE zone_id = $2 AND pair_id = $3`, rank, zoneID, pairID)
		if err != nil {
			return fmt.Errorf("failed to set rank of pair %d: %w", pairID, err)
		}
		if err := checkAffectedRows(result, ErrZoneEntryNotFound); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresZoneRepository) ClearFinalRanks(ctx context.Context, exec SQLExecutor, zoneID int) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE zone_entries SET final_rank = NULL WHERE zone_id = $1`, zoneID); err != nil {
		return fmt.Errorf("failed to clear ranks of zone %d: %w", zoneID, err)
	}
	return nil
}

func (r *postgresZoneRepository) CreateTieResolution(ctx context.Context, exec SQLExecutor, t *models.TieResolution) error {
	query := `
		INSERT INTO tie_resolutions (id, zone_id, method, seed, pair_order, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, t.ID, t.ZoneID, t.Method, t.Seed, pq.Array(t.Order), t.CompletedAt).
		Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record tie resolution for zone %d: %w", t.ZoneID, err)
	}
	return nil
}

func (r *postgresZoneRepository) LatestTieResolution(ctx context.Context, exec SQLExecutor, zoneID int) (*models.TieResolution, error) {
	query := `
		SELECT id, zone_id, method, seed, pair_order, created_at, completed_at
		FROM tie_resolutions
		WHERE zone_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	t := &models.TieResolution{}
	var order pq.Int64Array
	err := r.getExecutor(exec).QueryRowContext(ctx, query, zoneID).
		Scan(&t.ID, &t.ZoneID, &t.Method, &t.Seed, &order, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTieResolutionNotFound
		}
		return nil, fmt.Errorf("failed to get tie resolution of zone %d: %w", zoneID, err)
	}
	t.Order = make([]int, len(order))
	for i, v := range order {
		t.Order[i] = int(v)
	}
	return t, nil
}

func (r *postgresZoneRepository) CompleteTieResolution(ctx context.Context, exec SQLExecutor, id string, at time.Time) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE tie_resolutions SET completed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to complete tie resolution %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTieResolutionNotFound)
}
