package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const instanceCheck = `('champion', 'runner_up', 'semifinalist', 'quarterfinalist', 'round_of_16', 'round_of_32', 'zone_eliminated')`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`CREATE TABLE IF NOT EXISTS points_rules (
					id          SERIAL PRIMARY KEY,
					category_id INT REFERENCES categories(id) ON DELETE CASCADE,
					instance    TEXT NOT NULL CHECK (instance IN `+instanceCheck+`),
					points      INT NOT NULL CHECK (points >= 0)
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS points_rules_default_key ON points_rules (instance) WHERE category_id IS NULL`,
				`CREATE UNIQUE INDEX IF NOT EXISTS points_rules_category_key ON points_rules (category_id, instance) WHERE category_id IS NOT NULL`,
				`CREATE TABLE IF NOT EXISTS points_ledger (
					id            SERIAL PRIMARY KEY,
					competitor_id INT NOT NULL REFERENCES competitors(id),
					tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
					category_id   INT NOT NULL REFERENCES categories(id),
					pair_id       INT NOT NULL REFERENCES pairs(id),
					instance      TEXT NOT NULL CHECK (instance IN `+instanceCheck+`),
					points        INT NOT NULL CHECK (points >= 0),
					created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
					CONSTRAINT points_ledger_entry_key UNIQUE (competitor_id, tournament_id, category_id)
				)`,
				`CREATE TABLE IF NOT EXISTS season_standings (
					competitor_id      INT NOT NULL REFERENCES competitors(id),
					category_id        INT NOT NULL REFERENCES categories(id),
					season             INT NOT NULL,
					total_points       INT NOT NULL DEFAULT 0,
					best_instance      TEXT NOT NULL CHECK (best_instance IN `+instanceCheck+`),
					tournaments_played INT NOT NULL DEFAULT 0 CHECK (tournaments_played >= 0),
					updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
					PRIMARY KEY (competitor_id, category_id, season)
				)`,
				`CREATE INDEX IF NOT EXISTS season_standings_rank_idx ON season_standings (category_id, season, total_points DESC)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`DROP TABLE IF EXISTS season_standings`,
				`DROP TABLE IF EXISTS points_ledger`,
				`DROP TABLE IF EXISTS points_rules`,
			)
		},
	)
}
