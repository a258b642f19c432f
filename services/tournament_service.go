package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
)

type CreateTournamentInput struct {
	Name        string `json:"name"`
	Sequence    int    `json:"sequence"`
	Season      int    `json:"season"`
	CategoryIDs []int  `json:"category_ids"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, season *int) ([]models.Tournament, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type tournamentService struct {
	store         Store
	deps          Deps
	defaultSeason int
}

func NewTournamentService(store Store, deps Deps, defaultSeason int) TournamentService {
	return &tournamentService{store: store, deps: deps.withDefaults(), defaultSeason: defaultSeason}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	var created *models.Tournament
	err := s.deps.observe(ctx, "tournament.create", func(ctx context.Context) error {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return invalid("name", "is required")
		}
		if input.Sequence < 1 {
			return invalid("sequence", "must be positive, got %d", input.Sequence)
		}
		season := input.Season
		if season == 0 {
			season = s.defaultSeason
		}
		if season < 1 {
			return invalid("season", "must be positive, got %d", season)
		}
		if len(input.CategoryIDs) == 0 {
			return invalid("category_ids", "at least one category is required")
		}

		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			t := &models.Tournament{Name: name, Sequence: input.Sequence, Season: season, Status: models.TournamentScheduled}
			if err := s.store.Tournaments.Create(ctx, exec, t); err != nil {
				return err
			}
			seen := make(map[int]bool, len(input.CategoryIDs))
			for _, categoryID := range input.CategoryIDs {
				if seen[categoryID] {
					continue
				}
				seen[categoryID] = true
				category, err := s.store.Tournaments.GetCategory(ctx, exec, categoryID)
				if err != nil {
					return err
				}
				if err := s.store.Tournaments.AddCategory(ctx, exec, t.ID, categoryID); err != nil {
					return err
				}
				t.Categories = append(t.Categories, *category)
			}
			created = t
			return nil
		})
	}, attribute.Int("sequence", input.Sequence))
	if err != nil {
		return nil, err
	}
	s.deps.Logger.InfoContext(ctx, "tournament created",
		"tournament_id", created.ID, "season", created.Season, "categories", len(created.Categories))
	return created, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var t *models.Tournament
	err := s.deps.observe(ctx, "tournament.get", func(ctx context.Context) error {
		var err error
		if t, err = s.store.Tournaments.GetByID(ctx, nil, id); err != nil {
			return err
		}
		links, err := s.store.Tournaments.ListCategories(ctx, nil, id)
		if err != nil {
			return err
		}
		t.Categories = make([]models.Category, 0, len(links))
		for _, link := range links {
			c, err := s.store.Tournaments.GetCategory(ctx, nil, link.CategoryID)
			if err != nil {
				return err
			}
			t.Categories = append(t.Categories, *c)
		}
		return nil
	}, attribute.Int("tournament_id", id))
	return t, err
}

func (s *tournamentService) ListTournaments(ctx context.Context, season *int) ([]models.Tournament, error) {
	var list []models.Tournament
	err := s.deps.observe(ctx, "tournament.list", func(ctx context.Context) error {
		var err error
		list, err = s.store.Tournaments.List(ctx, nil, season)
		return err
	})
	return list, err
}

func (s *tournamentService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	c := &models.Category{Name: strings.TrimSpace(name)}
	err := s.deps.observe(ctx, "category.create", func(ctx context.Context) error {
		if c.Name == "" {
			return invalid("name", "is required")
		}
		return s.store.Tournaments.CreateCategory(ctx, nil, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *tournamentService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	err := s.deps.observe(ctx, "category.list", func(ctx context.Context) error {
		var err error
		list, err = s.store.Tournaments.ListAllCategories(ctx, nil)
		return err
	})
	return list, err
}
