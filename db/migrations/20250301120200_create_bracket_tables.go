package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`CREATE TABLE IF NOT EXISTS bracket_matches (
					id               SERIAL PRIMARY KEY,
					tournament_id    INT NOT NULL,
					category_id      INT NOT NULL,
					round_name       TEXT NOT NULL
					                 CHECK (round_name IN ('round_of_32', 'round_of_16', 'quarterfinal', 'semifinal', 'final')),
					round_index      INT NOT NULL CHECK (round_index >= 1),
					position         INT NOT NULL CHECK (position >= 1),
					pair1_id         INT REFERENCES pairs(id),
					pair2_id         INT REFERENCES pairs(id),
					seed1            TEXT,
					seed2            TEXT,
					set1_p1 SMALLINT CHECK (set1_p1 BETWEEN 0 AND 7),
					set1_p2 SMALLINT CHECK (set1_p2 BETWEEN 0 AND 7),
					set2_p1 SMALLINT CHECK (set2_p1 BETWEEN 0 AND 7),
					set2_p2 SMALLINT CHECK (set2_p2 BETWEEN 0 AND 7),
					set3_p1 SMALLINT CHECK (set3_p1 BETWEEN 0 AND 7),
					set3_p2 SMALLINT CHECK (set3_p2 BETWEEN 0 AND 7),
					winner_pair_id   INT REFERENCES pairs(id),
					status           TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'finalized')),
					next_round_index INT,
					next_position    INT,
					next_slot        SMALLINT CHECK (next_slot IN (1, 2)),
					updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
					CONSTRAINT bracket_matches_slot_key UNIQUE (tournament_id, category_id, round_index, position),
					CHECK ((status = 'finalized') = (winner_pair_id IS NOT NULL)),
					CHECK (winner_pair_id IS NULL OR (pair1_id IS NOT NULL AND pair2_id IS NOT NULL)),
					CHECK ((next_round_index IS NULL) = (next_position IS NULL) AND (next_position IS NULL) = (next_slot IS NULL)),
					FOREIGN KEY (tournament_id, category_id)
						REFERENCES tournament_categories(tournament_id, category_id) ON DELETE CASCADE
				)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db, `DROP TABLE IF EXISTS bracket_matches`)
		},
	)
}
