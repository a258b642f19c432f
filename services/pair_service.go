package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
)

type CreateCompetitorInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CategoryIDs []int  `json:"category_ids"`
}

// CompetitorService is the registry facade the engine needs: existence, activity and
// category membership of competitors.
type CompetitorService interface {
	CreateCompetitor(ctx context.Context, input CreateCompetitorInput) (*models.Competitor, error)
	GetCompetitor(ctx context.Context, id int) (*models.Competitor, error)
	AddCategory(ctx context.Context, competitorID, categoryID int) error
	SetActive(ctx context.Context, competitorID int, active bool) error
}

type competitorService struct {
	store Store
	deps  Deps
}

func NewCompetitorService(store Store, deps Deps) CompetitorService {
	return &competitorService{store: store, deps: deps.withDefaults()}
}

func (s *competitorService) CreateCompetitor(ctx context.Context, input CreateCompetitorInput) (*models.Competitor, error) {
	c := &models.Competitor{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Active:    true,
	}
	err := s.deps.observe(ctx, "competitor.create", func(ctx context.Context) error {
		if c.FirstName == "" {
			return invalid("first_name", "is required")
		}
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.store.Competitors.Create(ctx, exec, c); err != nil {
				return err
			}
			for _, categoryID := range input.CategoryIDs {
				if _, err := s.store.Tournaments.GetCategory(ctx, exec, categoryID); err != nil {
					return err
				}
				if err := s.store.Competitors.AddCategory(ctx, exec, c.ID, categoryID); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *competitorService) GetCompetitor(ctx context.Context, id int) (*models.Competitor, error) {
	var c *models.Competitor
	err := s.deps.observe(ctx, "competitor.get", func(ctx context.Context) error {
		var err error
		c, err = s.store.Competitors.GetByID(ctx, nil, id)
		return err
	}, attribute.Int("competitor_id", id))
	return c, err
}

// AddCategory is idempotent: adding an existing membership succeeds without a write.
func (s *competitorService) AddCategory(ctx context.Context, competitorID, categoryID int) error {
	return s.deps.observe(ctx, "competitor.add_category", func(ctx context.Context) error {
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if _, err := s.store.Competitors.GetByID(ctx, exec, competitorID); err != nil {
				return err
			}
			if _, err := s.store.Tournaments.GetCategory(ctx, exec, categoryID); err != nil {
				return err
			}
			return s.store.Competitors.AddCategory(ctx, exec, competitorID, categoryID)
		})
	}, attribute.Int("competitor_id", competitorID), attribute.Int("category_id", categoryID))
}

func (s *competitorService) SetActive(ctx context.Context, competitorID int, active bool) error {
	return s.deps.observe(ctx, "competitor.set_active", func(ctx context.Context) error {
		return s.store.Competitors.SetActive(ctx, nil, competitorID, active)
	}, attribute.Int("competitor_id", competitorID))
}

type RegisterPairInput struct {
	TournamentID  int `json:"tournament_id"`
	CategoryID    int `json:"category_id"`
	Competitor1ID int `json:"competitor1_id"`
	Competitor2ID int `json:"competitor2_id"`
}

type PairService interface {
	RegisterPair(ctx context.Context, input RegisterPairInput) (*models.Pair, error)
	ListPairs(ctx context.Context, tournamentID, categoryID int) ([]models.Pair, error)
	DeletePair(ctx context.Context, pairID int) error
}

type pairService struct {
	store Store
	deps  Deps
}

func NewPairService(store Store, deps Deps) PairService {
	return &pairService{store: store, deps: deps.withDefaults()}
}

// RegisterPair enters two active competitors of the category as a pair. A competitor already
// paired in the tournament is a conflict; the check runs before any write and the unique
// membership constraint backs it up.
func (s *pairService) RegisterPair(ctx context.Context, input RegisterPairInput) (*models.Pair, error) {
	var pair *models.Pair
	err := s.deps.observe(ctx, "pair.register", func(ctx context.Context) error {
		switch {
		case input.TournamentID <= 0:
			return invalid("tournament_id", "is required")
		case input.CategoryID <= 0:
			return invalid("category_id", "is required")
		case input.Competitor1ID <= 0:
			return invalid("competitor1_id", "is required")
		case input.Competitor2ID <= 0:
			return invalid("competitor2_id", "is required")
		case input.Competitor1ID == input.Competitor2ID:
			return invalid("competitor2_id", "must differ from competitor1_id")
		}

		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			t, err := s.store.Tournaments.GetByID(ctx, exec, input.TournamentID)
			if err != nil {
				return err
			}
			if t.Status == models.TournamentFinalized {
				return ErrTournamentFinalized
			}
			tc, err := s.store.Tournaments.LockCategory(ctx, exec, input.TournamentID, input.CategoryID)
			if err != nil {
				return err
			}
			if tc.BracketGeneratedAt != nil {
				return ErrRegistrationClosed
			}

			ids := []int{input.Competitor1ID, input.Competitor2ID}
			for _, id := range ids {
				c, err := s.store.Competitors.GetByID(ctx, exec, id)
				if err != nil {
					return err
				}
				if !c.Active {
					return fmt.Errorf("%w: %d", ErrCompetitorInactive, id)
				}
				ok, err := s.store.Competitors.HasCategory(ctx, exec, id, input.CategoryID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: competitor %d, category %d", ErrCompetitorNotInCategory, id, input.CategoryID)
				}
			}

			paired, err := s.store.Pairs.PairedCompetitors(ctx, exec, input.TournamentID, ids)
			if err != nil {
				return err
			}
			if len(paired) > 0 {
				return fmt.Errorf("%w: %v", ErrCompetitorAlreadyPaired, paired)
			}

			p := &models.Pair{
				TournamentID:  input.TournamentID,
				CategoryID:    input.CategoryID,
				Competitor1ID: input.Competitor1ID,
				Competitor2ID: input.Competitor2ID,
			}
			if err := s.store.Pairs.Create(ctx, exec, p); err != nil {
				return err
			}
			pair = p
			return nil
		})
	}, attribute.Int("tournament_id", input.TournamentID), attribute.Int("category_id", input.CategoryID))
	if err != nil {
		return nil, err
	}
	s.deps.Logger.InfoContext(ctx, "pair registered", "pair_id", pair.ID, "tournament_id", pair.TournamentID)
	return pair, nil
}

func (s *pairService) ListPairs(ctx context.Context, tournamentID, categoryID int) ([]models.Pair, error) {
	var pairs []models.Pair
	err := s.deps.observe(ctx, "pair.list", func(ctx context.Context) error {
		var err error
		pairs, err = s.store.Pairs.ListByTournamentCategory(ctx, nil, tournamentID, categoryID)
		return err
	}, attribute.Int("tournament_id", tournamentID), attribute.Int("category_id", categoryID))
	return pairs, err
}

// DeletePair removes a pair that has not been assigned to a zone yet.
func (s *pairService) DeletePair(ctx context.Context, pairID int) error {
	return s.deps.observe(ctx, "pair.delete", func(ctx context.Context) error {
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if _, err := s.store.Pairs.GetByID(ctx, exec, pairID); err != nil {
				return err
			}
			zoneID, err := s.store.Zones.ZoneOfPair(ctx, exec, pairID)
			if err != nil {
				return err
			}
			if zoneID != nil {
				return fmt.Errorf("%w: zone %d", ErrPairInZone, *zoneID)
			}
			if err := s.store.Pairs.Delete(ctx, exec, pairID); err != nil {
				if errors.Is(err, repositories.ErrPairInUse) {
					return ErrPairInZone
				}
				return err
			}
			return nil
		})
	}, attribute.Int("pair_id", pairID))
}
