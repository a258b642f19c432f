package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
	"github.com/Dosada05/padel-circuit/scoring"
)

type GenerateResult struct {
	TournamentID int                   `json:"tournament_id"`
	CategoryID   int                   `json:"category_id"`
	PairCount    int                   `json:"pair_count"`
	MatchCount   int                   `json:"match_count"`
	Rounds       []models.RoundName    `json:"rounds"`
	Matches      []models.BracketMatch `json:"matches"`
}

type BracketResult struct {
	MatchResult
	// AdvancedTo is the next-round slot the winner was written into.
	AdvancedTo *brackets.Link `json:"advanced_to,omitempty"`
	// FinalDecided is set when this result decided the final: the tournament can be closed.
	FinalDecided bool `json:"final_decided"`
}

type BracketRound struct {
	Index   int                   `json:"index"`
	Name    models.RoundName      `json:"name"`
	Matches []models.BracketMatch `json:"matches"`
}

type BracketView struct {
	TournamentID int                 `json:"tournament_id"`
	CategoryID   int                 `json:"category_id"`
	Rounds       []BracketRound      `json:"rounds"`
	Pairs        map[int]models.Pair `json:"pairs"`
	Champion     *int                `json:"champion_pair_id,omitempty"`
}

type BracketService interface {
	Generate(ctx context.Context, tournamentID, categoryID int) (*GenerateResult, error)
	SubmitResult(ctx context.Context, matchID int, sets []models.SetScore) (*BracketResult, error)
	GetBracket(ctx context.Context, tournamentID, categoryID int) (*BracketView, error)
	Topology(ctx context.Context, pairCount int) (*brackets.Topology, error)
}

type bracketService struct {
	store Store
	deps  Deps
}

func NewBracketService(store Store, deps Deps) BracketService {
	return &bracketService{store: store, deps: deps.withDefaults()}
}

// Generate seeds the bracket of a tournament category from its finalized zones. It runs once:
// the category row is locked and an existing bracket rejects the call.
func (s *bracketService) Generate(ctx context.Context, tournamentID, categoryID int) (*GenerateResult, error) {
	var out *GenerateResult
	err := s.deps.observe(ctx, "bracket.generate", func(ctx context.Context) error {
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			t, err := s.store.Tournaments.GetByID(ctx, exec, tournamentID)
			if err != nil {
				return err
			}
			if t.Status == models.TournamentFinalized {
				return ErrTournamentFinalized
			}
			if _, err := s.store.Tournaments.LockCategory(ctx, exec, tournamentID, categoryID); err != nil {
				return err
			}
			existing, err := s.store.Brackets.Count(ctx, exec, tournamentID, categoryID)
			if err != nil {
				return err
			}
			if existing > 0 {
				return ErrBracketExists
			}

			zoneList, err := s.store.Zones.ListByTournamentCategory(ctx, exec, tournamentID, categoryID)
			if err != nil {
				return err
			}
			if len(zoneList) == 0 {
				return ErrNoZones
			}
			pairCount := 0
			for i := range zoneList {
				z := &zoneList[i]
				if z.Status != models.ZoneFinalized {
					return fmt.Errorf("%w: zone %s is %s", ErrZonesNotFinalized, z.Name, z.Status)
				}
				if z.Entries, err = s.store.Zones.ListEntries(ctx, exec, z.ID); err != nil {
					return err
				}
				pairCount += len(z.Entries)
			}

			topology, err := brackets.Lookup(pairCount)
			if err != nil {
				return err
			}
			matches, err := brackets.Generate(topology, tournamentID, categoryID, zoneList)
			if err != nil {
				return err
			}
			if err := s.store.Brackets.CreateBatch(ctx, exec, matches); err != nil {
				return err
			}
			if err := s.store.Tournaments.MarkBracketGenerated(ctx, exec, tournamentID, categoryID, s.deps.Now()); err != nil {
				return err
			}

			out = &GenerateResult{
				TournamentID: tournamentID,
				CategoryID:   categoryID,
				PairCount:    pairCount,
				MatchCount:   len(matches),
				Rounds:       topology.RoundNames(),
				Matches:      matches,
			}
			return nil
		})
	}, attribute.Int("tournament_id", tournamentID), attribute.Int("category_id", categoryID))
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.BracketGenerated(out.PairCount)
	s.deps.Logger.InfoContext(ctx, "bracket generated",
		"tournament_id", tournamentID, "category_id", categoryID, "pairs", out.PairCount, "matches", out.MatchCount)
	s.deps.Notifier.BroadcastTournament(tournamentID, brackets.EventBracketUpdated, out)
	return out, nil
}

// SubmitResult records a bracket match score and, when it decides the match, writes the
// winner into the next-round slot named by the match's adjacency row.
func (s *bracketService) SubmitResult(ctx context.Context, matchID int, sets []models.SetScore) (*BracketResult, error) {
	var out *BracketResult
	var tournamentID int
	err := s.deps.observe(ctx, "bracket.submit_result", func(ctx context.Context) error {
		res, err := scoring.Evaluate(sets)
		if err != nil {
			return err
		}

		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			m, err := s.store.Brackets.GetByID(ctx, exec, matchID)
			if err != nil {
				return err
			}
			if _, err := s.store.Tournaments.LockCategory(ctx, exec, m.TournamentID, m.CategoryID); err != nil {
				return err
			}
			if m, err = s.store.Brackets.GetForUpdate(ctx, exec, matchID); err != nil {
				return err
			}
			t, err := s.store.Tournaments.GetByID(ctx, exec, m.TournamentID)
			if err != nil {
				return err
			}
			if t.Status == models.TournamentFinalized {
				return ErrTournamentFinalized
			}
			if m.Status == models.MatchFinalized {
				return ErrMatchFinalized
			}
			if !m.SlotsFilled() {
				return ErrMatchSlotsOpen
			}

			winner := scoring.WinnerPair(res, *m.Pair1ID, *m.Pair2ID)
			status := models.MatchPending
			if winner != nil {
				status = models.MatchFinalized
			}
			if err := s.store.Brackets.SaveResult(ctx, exec, m.ID, sets, winner, status); err != nil {
				return err
			}

			tournamentID = m.TournamentID
			out = &BracketResult{MatchResult: MatchResult{MatchID: m.ID, WinnerPairID: winner, Status: status, Totals: res}}
			if winner == nil {
				return nil
			}

			link, ok := brackets.Advance(m)
			if !ok {
				out.FinalDecided = true
				return nil
			}
			next, err := s.store.Brackets.GetByPositionForUpdate(ctx, exec, m.TournamentID, m.CategoryID, link.RoundIndex, link.Position)
			if err != nil {
				return err
			}
			if err := brackets.Place(next, link.Slot, *winner); err != nil {
				return err
			}
			if err := s.store.Brackets.SetSlot(ctx, exec, next.ID, link.Slot, *winner); err != nil {
				return err
			}
			out.AdvancedTo = &link
			return nil
		})
	}, attribute.Int("match_id", matchID))
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.ResultSubmitted("bracket", out.WinnerPairID != nil)
	if out.FinalDecided {
		s.deps.Logger.InfoContext(ctx, "final decided", "tournament_id", tournamentID, "winner_pair_id", *out.WinnerPairID)
	}
	s.deps.Notifier.BroadcastTournament(tournamentID, brackets.EventBracketUpdated, out)
	return out, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID, categoryID int) (*BracketView, error) {
	view := &BracketView{TournamentID: tournamentID, CategoryID: categoryID, Pairs: make(map[int]models.Pair)}
	err := s.deps.observe(ctx, "bracket.get", func(ctx context.Context) error {
		var matches []models.BracketMatch
		var pairs []models.Pair

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			matches, err = s.store.Brackets.ListByTournamentCategory(gctx, nil, tournamentID, categoryID)
			return err
		})
		g.Go(func() error {
			var err error
			pairs, err = s.store.Pairs.ListByTournamentCategory(gctx, nil, tournamentID, categoryID)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		if len(matches) == 0 {
			if err := s.requireCategory(ctx, tournamentID, categoryID); err != nil {
				return err
			}
			return ErrBracketMissing
		}

		for _, p := range pairs {
			view.Pairs[p.ID] = p
		}
		byIndex := make(map[int]int)
		for _, m := range matches {
			i, ok := byIndex[m.RoundIndex]
			if !ok {
				i = len(view.Rounds)
				byIndex[m.RoundIndex] = i
				view.Rounds = append(view.Rounds, BracketRound{Index: m.RoundIndex, Name: m.Round})
			}
			view.Rounds[i].Matches = append(view.Rounds[i].Matches, m)
			if brackets.IsFinal(&m) && m.WinnerPairID != nil {
				view.Champion = intPtr(*m.WinnerPairID)
			}
		}
		return nil
	}, attribute.Int("tournament_id", tournamentID), attribute.Int("category_id", categoryID))
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *bracketService) requireCategory(ctx context.Context, tournamentID, categoryID int) error {
	links, err := s.store.Tournaments.ListCategories(ctx, nil, tournamentID)
	if err != nil {
		return err
	}
	for _, link := range links {
		if link.CategoryID == categoryID {
			return nil
		}
	}
	return repositories.ErrTournamentCategoryNotFound
}

func (s *bracketService) Topology(ctx context.Context, pairCount int) (*brackets.Topology, error) {
	var t *brackets.Topology
	err := s.deps.observe(ctx, "bracket.topology", func(ctx context.Context) error {
		var err error
		t, err = brackets.Lookup(pairCount)
		return err
	}, attribute.Int("pairs", pairCount))
	return t, err
}
