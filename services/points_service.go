package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Dosada05/padel-circuit/config"
	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
)

type PointsService interface {
	// GetTable returns the effective table of a category, or the default table when
	// categoryID is nil.
	GetTable(ctx context.Context, categoryID *int) (map[models.Instance]int, error)
	ReplaceTable(ctx context.Context, categoryID *int, table map[models.Instance]int) error
	// Seed loads a whole points file: the default table and every category table by name.
	Seed(ctx context.Context, table *config.PointsTable) error
}

type pointsService struct {
	store Store
	deps  Deps
}

func NewPointsService(store Store, deps Deps) PointsService {
	return &pointsService{store: store, deps: deps.withDefaults()}
}

func (s *pointsService) GetTable(ctx context.Context, categoryID *int) (map[models.Instance]int, error) {
	var table map[models.Instance]int
	err := s.deps.observe(ctx, "points.get", func(ctx context.Context) error {
		if categoryID != nil {
			if _, err := s.store.Tournaments.GetCategory(ctx, nil, *categoryID); err != nil {
				return err
			}
		}
		rules, err := s.store.Points.ListRules(ctx, nil, categoryID)
		if err != nil {
			return err
		}
		table = effectiveTable(rules)
		return nil
	})
	return table, err
}

func (s *pointsService) ReplaceTable(ctx context.Context, categoryID *int, table map[models.Instance]int) error {
	return s.deps.observe(ctx, "points.replace", func(ctx context.Context) error {
		if err := validateTable(table); err != nil {
			return err
		}
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if categoryID != nil {
				if _, err := s.store.Tournaments.GetCategory(ctx, exec, *categoryID); err != nil {
					return err
				}
			}
			return s.store.Points.ReplaceRules(ctx, exec, categoryID, config.Rules(categoryID, table))
		})
	})
}

func validateTable(table map[models.Instance]int) error {
	if len(table) == 0 {
		return invalid("points", "table is empty")
	}
	for inst, points := range table {
		if !inst.Valid() {
			return invalid("points."+string(inst), "unknown instance")
		}
		if points < 0 {
			return invalid("points."+string(inst), "must not be negative, got %d", points)
		}
	}
	return nil
}

func (s *pointsService) Seed(ctx context.Context, table *config.PointsTable) error {
	return s.deps.observe(ctx, "points.seed", func(ctx context.Context) error {
		if err := validateTable(table.Default); err != nil {
			return err
		}
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.store.Points.ReplaceRules(ctx, exec, nil, config.Rules(nil, table.Default)); err != nil {
				return err
			}
			for name, rules := range table.Categories {
				if err := validateTable(rules); err != nil {
					return err
				}
				c, err := s.store.Tournaments.GetCategoryByName(ctx, exec, name)
				if errors.Is(err, repositories.ErrCategoryNotFound) {
					c = &models.Category{Name: name}
					err = s.store.Tournaments.CreateCategory(ctx, exec, c)
				}
				if err != nil {
					return err
				}
				if err := s.store.Points.ReplaceRules(ctx, exec, &c.ID, config.Rules(&c.ID, rules)); err != nil {
					return err
				}
				s.deps.Logger.InfoContext(ctx, "category points seeded", "category", name, "category_id", c.ID)
			}
			return nil
		})
	})
}

// RankedStanding is a season standing with its position in the category ranking.
type RankedStanding struct {
	Position int `json:"position"`
	models.SeasonStanding
}

type RankingService interface {
	SeasonRanking(ctx context.Context, categoryID, season int) ([]RankedStanding, error)
}

type rankingService struct {
	store Store
	deps  Deps
}

func NewRankingService(store Store, deps Deps) RankingService {
	return &rankingService{store: store, deps: deps.withDefaults()}
}

// SeasonRanking lists the standings by total points. Equal totals share a position.
func (s *rankingService) SeasonRanking(ctx context.Context, categoryID, season int) ([]RankedStanding, error) {
	var ranked []RankedStanding
	err := s.deps.observe(ctx, "ranking.season", func(ctx context.Context) error {
		if _, err := s.store.Tournaments.GetCategory(ctx, nil, categoryID); err != nil {
			return err
		}
		standings, err := s.store.Points.ListStandings(ctx, nil, categoryID, season)
		if err != nil {
			return err
		}
		ranked = make([]RankedStanding, len(standings))
		for i, st := range standings {
			pos := i + 1
			if i > 0 && st.TotalPoints == standings[i-1].TotalPoints {
				pos = ranked[i-1].Position
			}
			ranked[i] = RankedStanding{Position: pos, SeasonStanding: st}
		}
		return nil
	}, attribute.Int("category_id", categoryID), attribute.Int("season", season))
	return ranked, err
}
