package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`CREATE TABLE IF NOT EXISTS categories (
					id   SERIAL PRIMARY KEY,
					name TEXT NOT NULL UNIQUE
				)`,
				`CREATE TABLE IF NOT EXISTS tournaments (
					id           SERIAL PRIMARY KEY,
					name         TEXT NOT NULL,
					sequence     INT NOT NULL CHECK (sequence > 0),
					season       INT NOT NULL,
					status       TEXT NOT NULL DEFAULT 'scheduled'
					             CHECK (status IN ('scheduled', 'in_progress', 'finalized')),
					created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
					finalized_at TIMESTAMPTZ,
					UNIQUE (season, sequence)
				)`,
				`CREATE TABLE IF NOT EXISTS tournament_categories (
					tournament_id        INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
					category_id          INT NOT NULL REFERENCES categories(id),
					bracket_generated_at TIMESTAMPTZ,
					PRIMARY KEY (tournament_id, category_id)
				)`,
				`CREATE TABLE IF NOT EXISTS competitors (
					id         SERIAL PRIMARY KEY,
					first_name TEXT NOT NULL,
					last_name  TEXT NOT NULL DEFAULT '',
					active     BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
				`CREATE TABLE IF NOT EXISTS competitor_categories (
					competitor_id INT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
					category_id   INT NOT NULL REFERENCES categories(id),
					created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
					PRIMARY KEY (competitor_id, category_id)
				)`,
				`CREATE TABLE IF NOT EXISTS pairs (
					id             SERIAL PRIMARY KEY,
					tournament_id  INT NOT NULL,
					category_id    INT NOT NULL,
					competitor1_id INT NOT NULL REFERENCES competitors(id),
					competitor2_id INT NOT NULL REFERENCES competitors(id),
					created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
					CHECK (competitor1_id <> competitor2_id),
					FOREIGN KEY (tournament_id, category_id)
						REFERENCES tournament_categories(tournament_id, category_id) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS pair_members (
					pair_id       INT NOT NULL REFERENCES pairs(id) ON DELETE CASCADE,
					tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
					competitor_id INT NOT NULL REFERENCES competitors(id),
					PRIMARY KEY (pair_id, competitor_id),
					CONSTRAINT pair_members_tournament_competitor_key UNIQUE (tournament_id, competitor_id)
				)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`DROP TABLE IF EXISTS pair_members`,
				`DROP TABLE IF EXISTS pairs`,
				`DROP TABLE IF EXISTS competitor_categories`,
				`DROP TABLE IF EXISTS competitors`,
				`DROP TABLE IF EXISTS tournament_categories`,
				`DROP TABLE IF EXISTS tournaments`,
				`DROP TABLE IF EXISTS categories`,
			)
		},
	)
}
