package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`CREATE TABLE IF NOT EXISTS zones (
					id            SERIAL PRIMARY KEY,
					tournament_id INT NOT NULL,
					category_id   INT NOT NULL,
					name          TEXT NOT NULL,
					position      INT NOT NULL CHECK (position BETWEEN 1 AND 26),
					format        TEXT NOT NULL CHECK (format IN ('round_robin', 'chained')),
					status        TEXT NOT NULL DEFAULT 'pending'
					              CHECK (status IN ('pending', 'in_progress', 'finalized')),
					created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
					finalized_at  TIMESTAMPTZ,
					CONSTRAINT zones_position_key UNIQUE (tournament_id, category_id, position),
					FOREIGN KEY (tournament_id, category_id)
						REFERENCES tournament_categories(tournament_id, category_id) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS zone_entries (
					zone_id      INT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
					pair_id      INT NOT NULL REFERENCES pairs(id),
					matches_won  INT NOT NULL DEFAULT 0 CHECK (matches_won >= 0),
					matches_lost INT NOT NULL DEFAULT 0 CHECK (matches_lost >= 0),
					sets_won     INT NOT NULL DEFAULT 0 CHECK (sets_won >= 0),
					sets_lost    INT NOT NULL DEFAULT 0 CHECK (sets_lost >= 0),
					games_won    INT NOT NULL DEFAULT 0 CHECK (games_won >= 0),
					games_lost   INT NOT NULL DEFAULT 0 CHECK (games_lost >= 0),
					final_rank   INT CHECK (final_rank >= 1),
					PRIMARY KEY (zone_id, pair_id),
					CONSTRAINT zone_entries_pair_id_key UNIQUE (pair_id)
				)`,
				`CREATE TABLE IF NOT EXISTS zone_matches (
					id                    SERIAL PRIMARY KEY,
					zone_id               INT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
					kind                  TEXT NOT NULL CHECK (kind IN ('round_robin', 'chained', 'tiebreak')),
					match_order           INT NOT NULL,
					pair1_id              INT REFERENCES pairs(id),
					pair2_id              INT REFERENCES pairs(id),
					pair1_source_match_id INT REFERENCES zone_matches(id) ON DELETE CASCADE,
					pair1_source_outcome  TEXT CHECK (pair1_source_outcome IN ('winner', 'loser')),
					pair2_source_match_id INT REFERENCES zone_matches(id) ON DELETE CASCADE,
					pair2_source_outcome  TEXT CHECK (pair2_source_outcome IN ('winner', 'loser')),
					set1_p1 SMALLINT CHECK (set1_p1 BETWEEN 0 AND 7),
					set1_p2 SMALLINT CHECK (set1_p2 BETWEEN 0 AND 7),
					set2_p1 SMALLINT CHECK (set2_p1 BETWEEN 0 AND 7),
					set2_p2 SMALLINT CHECK (set2_p2 BETWEEN 0 AND 7),
					set3_p1 SMALLINT CHECK (set3_p1 BETWEEN 0 AND 7),
					set3_p2 SMALLINT CHECK (set3_p2 BETWEEN 0 AND 7),
					winner_pair_id        INT REFERENCES pairs(id),
					status                TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'finalized')),
					updated_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
					CONSTRAINT zone_matches_order_key UNIQUE (zone_id, match_order),
					CHECK ((status = 'finalized') = (winner_pair_id IS NOT NULL)),
					CHECK (winner_pair_id IS NULL OR (pair1_id IS NOT NULL AND pair2_id IS NOT NULL))
				)`,
				`CREATE TABLE IF NOT EXISTS tie_resolutions (
					id           UUID PRIMARY KEY,
					zone_id      INT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
					method       TEXT NOT NULL CHECK (method IN ('draw', 'tiebreak')),
					seed         BIGINT NOT NULL,
					pair_order   INT[] NOT NULL,
					created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
					completed_at TIMESTAMPTZ
				)`,
				`CREATE INDEX IF NOT EXISTS tie_resolutions_zone_idx ON tie_resolutions (zone_id, created_at DESC)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`DROP TABLE IF EXISTS tie_resolutions`,
				`DROP TABLE IF EXISTS zone_matches`,
				`DROP TABLE IF EXISTS zone_entries`,
				`DROP TABLE IF EXISTS zones`,
			)
		},
	)
}
