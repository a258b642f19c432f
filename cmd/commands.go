package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/config"
	"github.com/Dosada05/padel-circuit/db"
	"github.com/Dosada05/padel-circuit/repositories"
	"github.com/Dosada05/padel-circuit/services"
)

func newStore(conn *sql.DB) services.Store {
	return services.Store{
		Tournaments: repositories.NewPostgresTournamentRepository(conn),
		Competitors: repositories.NewPostgresCompetitorRepository(conn),
		Pairs:       repositories.NewPostgresPairRepository(conn),
		Zones:       repositories.NewPostgresZoneRepository(conn),
		ZoneMatches: repositories.NewPostgresZoneMatchRepository(conn),
		Brackets:    repositories.NewPostgresBracketRepository(conn),
		Points:      repositories.NewPostgresPointsRepository(conn),
	}
}

// withDB runs fn with a connected database and closes it afterwards.
func withDB(fn func(c *cli.Context, cfg *config.Config, logger *slog.Logger, conn *sql.DB) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(c, cfg, logger, conn)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: withDB(func(c *cli.Context, _ *config.Config, logger *slog.Logger, conn *sql.DB) error {
					return db.Migrate(c.Context, conn, logger)
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: withDB(func(c *cli.Context, _ *config.Config, logger *slog.Logger, conn *sql.DB) error {
					return db.Rollback(c.Context, conn, logger)
				}),
			},
			{
				Name:  "status",
				Usage: "list applied and pending migrations",
				Action: withDB(func(c *cli.Context, _ *config.Config, _ *slog.Logger, conn *sql.DB) error {
					applied, pending, err := db.Status(c.Context, conn)
					if err != nil {
						return err
					}
					for _, name := range applied {
						fmt.Fprintf(c.App.Writer, "applied  %s\n", name)
					}
					for _, name := range pending {
						fmt.Fprintf(c.App.Writer, "pending  %s\n", name)
					}
					return nil
				}),
			},
		},
	}
}

func seedPointsCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-points",
		Usage: "replace the points tables with a YAML file (the built-in table by default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "points YAML, overrides POINTS_FILE"},
		},
		Action: withDB(func(c *cli.Context, cfg *config.Config, logger *slog.Logger, conn *sql.DB) error {
			path := cfg.PointsFile
			if c.IsSet("file") {
				path = c.String("file")
			}
			table, err := config.LoadPoints(path)
			if err != nil {
				return err
			}
			deps := services.Deps{Tx: repositories.NewTransactor(conn), Logger: logger}
			if err := services.NewPointsService(newStore(conn), deps).Seed(c.Context, table); err != nil {
				return err
			}
			logger.Info("points tables seeded", slog.String("file", path), slog.Int("categories", len(table.Categories)))
			return nil
		}),
	}
}

func topologyCommand() *cli.Command {
	return &cli.Command{
		Name:      "topology",
		Usage:     "print the zone layout and bracket of a pair count, or list supported counts",
		ArgsUsage: "[pairs]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				for _, n := range brackets.SupportedPairCounts() {
					t, err := brackets.Lookup(n)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%2d pairs: zones %v, draw of %d, %d matches\n", n, t.ZoneSizes, t.DrawSize, t.MatchCount())
				}
				return nil
			}

			n, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid pair count %q", c.Args().First())
			}
			t, err := brackets.Lookup(n)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}
