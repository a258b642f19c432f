package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
	"github.com/Dosada05/padel-circuit/scoring"
	"github.com/Dosada05/padel-circuit/zones"
)

const DefaultZoneCapacity = 4

// RandomizerFactory returns the randomness source for one tie resolution.
type RandomizerFactory func() zones.Randomizer

type CreateZoneInput struct {
	TournamentID int               `json:"tournament_id"`
	CategoryID   int               `json:"category_id"`
	Name         string            `json:"name"`
	Format       models.ZoneFormat `json:"format"`
	PairIDs      []int             `json:"pair_ids"`
}

// MatchResult is the outcome of a result submission.
type MatchResult struct {
	MatchID      int                `json:"match_id"`
	WinnerPairID *int               `json:"winner_pair_id,omitempty"`
	Status       models.MatchStatus `json:"status"`
	Totals       scoring.Result     `json:"totals"`
}

type ZoneResult struct {
	MatchResult
	ZoneID     int               `json:"zone_id"`
	ZoneStatus models.ZoneStatus `json:"zone_status"`
}

// ZoneDetail is a zone with its entries in standing order and its matches in play order.
type ZoneDetail struct {
	models.Zone
	TripleTie bool                  `json:"triple_tie"`
	Tie       *models.TieResolution `json:"tie_resolution,omitempty"`
}

type TieOutcome struct {
	Method     models.TieMethod      `json:"method"`
	ZoneStatus models.ZoneStatus     `json:"zone_status"`
	Resolution *models.TieResolution `json:"resolution"`
	Matches    []models.ZoneMatch    `json:"matches,omitempty"`
}

type ZoneService interface {
	CreateZone(ctx context.Context, input CreateZoneInput) (*ZoneDetail, error)
	GetZone(ctx context.Context, zoneID int) (*ZoneDetail, error)
	ListZones(ctx context.Context, tournamentID, categoryID int) ([]models.Zone, error)
	SubmitResult(ctx context.Context, matchID int, sets []models.SetScore) (*ZoneResult, error)
	SetState(ctx context.Context, zoneID int, target models.ZoneStatus) (*ZoneDetail, error)
	ResolveTie(ctx context.Context, zoneID int, method models.TieMethod) (*TieOutcome, error)
}

type zoneService struct {
	store      Store
	deps       Deps
	capacity   int
	randomizer RandomizerFactory
}

func NewZoneService(store Store, deps Deps, capacity int, randomizer RandomizerFactory) ZoneService {
	if capacity < zones.MinPairs {
		capacity = DefaultZoneCapacity
	}
	if randomizer == nil {
		randomizer = zones.NewRandomizer
	}
	return &zoneService{store: store, deps: deps.withDefaults(), capacity: capacity, randomizer: randomizer}
}

func (s *zoneService) CreateZone(ctx context.Context, input CreateZoneInput) (*ZoneDetail, error) {
	var zoneID int
	err := s.deps.observe(ctx, "zone.create", func(ctx context.Context) error {
		if len(input.PairIDs) > s.capacity {
			return invalid("pair_ids", "zone capacity is %d pairs, got %d", s.capacity, len(input.PairIDs))
		}
		if input.Format == "" {
			input.Format = models.ZoneFormatRoundRobin
		}
		fixtures, err := zones.Schedule(input.Format, input.PairIDs)
		if err != nil {
			return err
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
				return ErrZoneHasBracket
			}

			for _, pairID := range input.PairIDs {
				p, err := s.store.Pairs.GetByID(ctx, exec, pairID)
				if err != nil {
					return err
				}
				if p.TournamentID != input.TournamentID || p.CategoryID != input.CategoryID {
					return fmt.Errorf("%w: pair %d", ErrPairOutsideCategory, pairID)
				}
			}

			position, err := s.store.Zones.NextPosition(ctx, exec, input.TournamentID, input.CategoryID)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(input.Name)
			if name == "" {
				name = "Zone " + models.ZoneLetter(position)
			}
			z := &models.Zone{
				TournamentID: input.TournamentID,
				CategoryID:   input.CategoryID,
				Name:         name,
				Position:     position,
				Format:       input.Format,
				Status:       models.ZonePending,
			}
			if err := s.store.Zones.Create(ctx, exec, z); err != nil {
				return err
			}
			for _, pairID := range input.PairIDs {
				if err := s.store.Zones.AddEntry(ctx, exec, z.ID, pairID); err != nil {
					return err
				}
			}
			if _, err := s.persistFixtures(ctx, exec, z.ID, 0, fixtures); err != nil {
				return err
			}
			zoneID = z.ID
			return nil
		})
	}, attribute.Int("tournament_id", input.TournamentID), attribute.Int("category_id", input.CategoryID))
	if err != nil {
		return nil, err
	}

	detail, err := s.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	s.deps.Logger.InfoContext(ctx, "zone created",
		"zone_id", zoneID, "format", detail.Format, "pairs", len(input.PairIDs), "matches", len(detail.Matches))
	s.deps.Notifier.BroadcastTournament(detail.TournamentID, brackets.EventZoneUpdated, detail)
	return detail, nil
}

// persistFixtures writes fixtures in order, turning fixture-index sources into match IDs.
func (s *zoneService) persistFixtures(ctx context.Context, exec repositories.SQLExecutor, zoneID, orderOffset int, fixtures []zones.Fixture) ([]models.ZoneMatch, error) {
	created := make([]models.ZoneMatch, 0, len(fixtures))
	source := func(src *zones.Source) *models.SlotSource {
		if src == nil {
			return nil
		}
		return &models.SlotSource{MatchID: created[src.Fixture].ID, Outcome: src.Outcome}
	}
	for i, f := range fixtures {
		m := models.ZoneMatch{
			ZoneID:      zoneID,
			Kind:        f.Kind,
			Order:       orderOffset + i + 1,
			Pair1ID:     f.Pair1ID,
			Pair2ID:     f.Pair2ID,
			Pair1Source: source(f.Pair1From),
			Pair2Source: source(f.Pair2From),
			Status:      models.MatchPending,
		}
		if err := s.store.ZoneMatches.Create(ctx, exec, &m); err != nil {
			return nil, err
		}
		created = append(created, m)
	}
	return created, nil
}

func (s *zoneService) GetZone(ctx context.Context, zoneID int) (*ZoneDetail, error) {
	var detail *ZoneDetail
	err := s.deps.observe(ctx, "zone.get", func(ctx context.Context) error {
		var err error
		detail, err = s.loadDetail(ctx, nil, zoneID)
		return err
	}, attribute.Int("zone_id", zoneID))
	return detail, err
}

func (s *zoneService) loadDetail(ctx context.Context, exec repositories.SQLExecutor, zoneID int) (*ZoneDetail, error) {
	z, err := s.store.Zones.GetByID(ctx, exec, zoneID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Zones.ListEntries(ctx, exec, zoneID)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.ZoneMatches.ListByZone(ctx, exec, zoneID)
	if err != nil {
		return nil, err
	}
	if z.Status == models.ZoneFinalized {
		z.Entries = zones.ByFinalRank(entries)
	} else {
		z.Entries = zones.Order(entries)
	}
	z.Matches = matches

	detail := &ZoneDetail{Zone: *z, TripleTie: zones.IsTripleTie(entries) && allFinalized(matches, models.ZoneMatchTiebreak)}
	tie, err := s.store.Zones.LatestTieResolution(ctx, exec, zoneID)
	switch {
	case err == nil:
		detail.Tie = tie
	case !errors.Is(err, repositories.ErrTieResolutionNotFound):
		return nil, err
	}
	return detail, nil
}

func (s *zoneService) ListZones(ctx context.Context, tournamentID, categoryID int) ([]models.Zone, error) {
	var list []models.Zone
	err := s.deps.observe(ctx, "zone.list", func(ctx context.Context) error {
		var err error
		list, err = s.store.Zones.ListByTournamentCategory(ctx, nil, tournamentID, categoryID)
		return err
	}, attribute.Int("tournament_id", tournamentID), attribute.Int("category_id", categoryID))
	return list, err
}

// SubmitResult records a zone match score. A deciding score also updates both pairs'
// standings, fills the slots of the matches that depend on this one and, for the last
// tiebreak match, freezes the zone ranking. Everything happens under the zone lock in one
// transaction.
func (s *zoneService) SubmitResult(ctx context.Context, matchID int, sets []models.SetScore) (*ZoneResult, error) {
	var out *ZoneResult
	var tournamentID int
	err := s.deps.observe(ctx, "zone.submit_result", func(ctx context.Context) error {
		res, err := scoring.Evaluate(sets)
		if err != nil {
			return err
		}

		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			m, err := s.store.ZoneMatches.GetByID(ctx, exec, matchID)
			if err != nil {
				return err
			}
			z, err := s.store.Zones.GetForUpdate(ctx, exec, m.ZoneID)
			if err != nil {
				return err
			}
			// re-read under the zone lock
			if m, err = s.store.ZoneMatches.GetByID(ctx, exec, matchID); err != nil {
				return err
			}
			if z.Status == models.ZoneFinalized {
				return ErrZoneFinalized
			}
			if m.Status == models.MatchFinalized {
				return ErrMatchFinalized
			}
			if m.Pair1ID == nil || m.Pair2ID == nil {
				return ErrMatchSlotsOpen
			}

			winner := scoring.WinnerPair(res, *m.Pair1ID, *m.Pair2ID)
			status := models.MatchPending
			if winner != nil {
				status = models.MatchFinalized
			}
			if err := s.store.ZoneMatches.SaveResult(ctx, exec, m.ID, sets, winner, status); err != nil {
				return err
			}
			m.Sets, m.WinnerPairID, m.Status = sets, winner, status

			zoneStatus := z.Status
			if zoneStatus == models.ZonePending {
				if err := s.store.Zones.UpdateStatus(ctx, exec, z.ID, models.ZoneInProgress, nil); err != nil {
					return err
				}
				zoneStatus = models.ZoneInProgress
			}
			if err := s.startTournament(ctx, exec, z.TournamentID); err != nil {
				return err
			}

			if winner != nil {
				if m.Kind != models.ZoneMatchTiebreak {
					d1, d2 := scoring.Deltas(res)
					if err := s.store.Zones.ApplyDelta(ctx, exec, z.ID, *m.Pair1ID, d1); err != nil {
						return err
					}
					if err := s.store.Zones.ApplyDelta(ctx, exec, z.ID, *m.Pair2ID, d2); err != nil {
						return err
					}
				}
				if err := s.fillDependents(ctx, exec, m); err != nil {
					return err
				}
				if m.Kind == models.ZoneMatchTiebreak {
					finalized, err := s.completeTiebreak(ctx, exec, z.ID)
					if err != nil {
						return err
					}
					if finalized {
						zoneStatus = models.ZoneFinalized
					}
				}
			}

			tournamentID = z.TournamentID
			out = &ZoneResult{
				MatchResult: MatchResult{MatchID: m.ID, WinnerPairID: winner, Status: status, Totals: res},
				ZoneID:      z.ID,
				ZoneStatus:  zoneStatus,
			}
			return nil
		})
	}, attribute.Int("match_id", matchID))
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.ResultSubmitted("zone", out.WinnerPairID != nil)
	s.deps.Notifier.BroadcastTournament(tournamentID, brackets.EventZoneUpdated, out)
	return out, nil
}

// startTournament moves a scheduled tournament to in_progress on its first accepted result.
func (s *zoneService) startTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	t, err := s.store.Tournaments.GetByID(ctx, exec, tournamentID)
	if err != nil {
		return err
	}
	switch t.Status {
	case models.TournamentScheduled:
		return s.store.Tournaments.UpdateStatus(ctx, exec, tournamentID, models.TournamentInProgress, nil)
	case models.TournamentFinalized:
		return ErrTournamentFinalized
	}
	return nil
}

func (s *zoneService) fillDependents(ctx context.Context, exec repositories.SQLExecutor, finished *models.ZoneMatch) error {
	dependents, err := s.store.ZoneMatches.ListDependents(ctx, exec, finished.ID)
	if err != nil {
		return err
	}
	for _, d := range dependents {
		slots := []struct {
			source *models.SlotSource
			pair   *int
		}{{d.Pair1Source, d.Pair1ID}, {d.Pair2Source, d.Pair2ID}}
		for i, slot := range slots {
			if slot.source == nil || slot.source.MatchID != finished.ID {
				continue
			}
			pairID := zones.Outcome(finished, slot.source.Outcome)
			if pairID == nil {
				continue
			}
			if slot.pair != nil {
				if *slot.pair == *pairID {
					continue
				}
				return fmt.Errorf("%w: zone match %d slot %d", repositories.ErrZoneSlotFilled, d.ID, i+1)
			}
			if err := s.store.ZoneMatches.SetPair(ctx, exec, d.ID, i+1, *pairID); err != nil {
				return err
			}
		}
	}
	return nil
}

// completeTiebreak finalizes the zone with the tiebreak ranking once both tiebreak matches
// are decided.
func (s *zoneService) completeTiebreak(ctx context.Context, exec repositories.SQLExecutor, zoneID int) (bool, error) {
	matches, err := s.store.ZoneMatches.ListByZone(ctx, exec, zoneID)
	if err != nil {
		return false, err
	}
	var tiebreak []models.ZoneMatch
	for _, m := range matches {
		if m.Kind == models.ZoneMatchTiebreak {
			tiebreak = append(tiebreak, m)
		}
	}
	sort.Slice(tiebreak, func(i, j int) bool { return tiebreak[i].Order < tiebreak[j].Order })
	if len(tiebreak) < 2 {
		return false, nil
	}
	first, second := tiebreak[len(tiebreak)-2], tiebreak[len(tiebreak)-1]
	order, err := zones.TiebreakOrder(&first, &second)
	if errors.Is(err, zones.ErrTiebreakIncomplete) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := s.deps.Now()
	if err := s.store.Zones.SetFinalRanks(ctx, exec, zoneID, zones.RanksFromOrder(order)); err != nil {
		return false, err
	}
	if err := s.store.Zones.UpdateStatus(ctx, exec, zoneID, models.ZoneFinalized, &now); err != nil {
		return false, err
	}
	tie, err := s.store.Zones.LatestTieResolution(ctx, exec, zoneID)
	if err != nil {
		return false, err
	}
	if err := s.store.Zones.CompleteTieResolution(ctx, exec, tie.ID, now); err != nil {
		return false, err
	}
	s.deps.Logger.InfoContext(ctx, "zone finalized by tiebreak", "zone_id", zoneID, "order", order)
	return true, nil
}

// SetState closes (finalized) or reopens (in_progress) a zone. Closing freezes the computed
// standing order as final ranks; reopening clears them and is refused once the category
// bracket exists.
func (s *zoneService) SetState(ctx context.Context, zoneID int, target models.ZoneStatus) (*ZoneDetail, error) {
	var tournamentID int
	err := s.deps.observe(ctx, "zone.set_state", func(ctx context.Context) error {
		switch target {
		case models.ZoneFinalized, models.ZoneInProgress:
		default:
			return invalid("status", "must be %q or %q, got %q", models.ZoneFinalized, models.ZoneInProgress, target)
		}

		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			z, err := s.store.Zones.GetByID(ctx, exec, zoneID)
			if err != nil {
				return err
			}
			tournamentID = z.TournamentID
			if target == models.ZoneInProgress {
				return s.reopen(ctx, exec, z)
			}
			return s.finalize(ctx, exec, zoneID)
		})
	}, attribute.Int("zone_id", zoneID), attribute.String("target", string(target)))
	if err != nil {
		return nil, err
	}

	detail, err := s.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	s.deps.Notifier.BroadcastTournament(tournamentID, brackets.EventZoneUpdated, detail)
	return detail, nil
}

func (s *zoneService) finalize(ctx context.Context, exec repositories.SQLExecutor, zoneID int) error {
	z, err := s.store.Zones.GetForUpdate(ctx, exec, zoneID)
	if err != nil {
		return err
	}
	if z.Status == models.ZoneFinalized {
		return ErrZoneFinalized
	}
	matches, err := s.store.ZoneMatches.ListByZone(ctx, exec, zoneID)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.Status == models.MatchFinalized {
			continue
		}
		if m.Kind == models.ZoneMatchTiebreak {
			return ErrTiebreakInProgress
		}
		return fmt.Errorf("%w: match %d is %s", ErrZoneIncomplete, m.ID, m.Status)
	}
	entries, err := s.store.Zones.ListEntries(ctx, exec, zoneID)
	if err != nil {
		return err
	}

	now := s.deps.Now()
	if err := s.store.Zones.SetFinalRanks(ctx, exec, zoneID, zones.Ranks(entries)); err != nil {
		return err
	}
	if err := s.store.Zones.UpdateStatus(ctx, exec, zoneID, models.ZoneFinalized, &now); err != nil {
		return err
	}
	if zones.IsTripleTie(entries) {
		s.deps.Logger.WarnContext(ctx, "zone closed on an unresolved triple tie", "zone_id", zoneID)
	}
	return nil
}

func (s *zoneService) reopen(ctx context.Context, exec repositories.SQLExecutor, z *models.Zone) error {
	// category lock first: same order as bracket generation
	tc, err := s.store.Tournaments.LockCategory(ctx, exec, z.TournamentID, z.CategoryID)
	if err != nil {
		return err
	}
	if tc.BracketGeneratedAt != nil {
		return ErrZoneHasBracket
	}
	if z, err = s.store.Zones.GetForUpdate(ctx, exec, z.ID); err != nil {
		return err
	}
	if z.Status != models.ZoneFinalized {
		return fmt.Errorf("%w: zone is %s, only a finalized zone can be reopened", ErrPrecondition, z.Status)
	}
	// completed tie resolutions are final
	tie, err := s.store.Zones.LatestTieResolution(ctx, exec, z.ID)
	switch {
	case err == nil && tie.CompletedAt != nil:
		s.deps.Logger.WarnContext(ctx, "reopen refused, tie already resolved",
			"zone_id", z.ID, "tie_id", tie.ID, "method", tie.Method)
		return ErrTieSettled
	case err != nil && !errors.Is(err, repositories.ErrTieResolutionNotFound):
		return err
	}
	if err := s.store.Zones.ClearFinalRanks(ctx, exec, z.ID); err != nil {
		return err
	}
	return s.store.Zones.UpdateStatus(ctx, exec, z.ID, models.ZoneInProgress, nil)
}

// ResolveTie settles a three-way tie of a fully played three-pair zone, either by a drawn
// ranking that finalizes the zone or by scheduling two tiebreak matches. The randomizer seed
// is stored with the outcome.
func (s *zoneService) ResolveTie(ctx context.Context, zoneID int, method models.TieMethod) (*TieOutcome, error) {
	var out *TieOutcome
	var tournamentID int
	err := s.deps.observe(ctx, "zone.resolve_tie", func(ctx context.Context) error {
		if method != models.TieMethodDraw && method != models.TieMethodTiebreak {
			return invalid("method", "must be %q or %q, got %q", models.TieMethodDraw, models.TieMethodTiebreak, method)
		}

		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			z, err := s.store.Zones.GetForUpdate(ctx, exec, zoneID)
			if err != nil {
				return err
			}
			tournamentID = z.TournamentID
			if z.Status == models.ZoneFinalized {
				return ErrZoneFinalized
			}
			matches, err := s.store.ZoneMatches.ListByZone(ctx, exec, zoneID)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if m.Kind == models.ZoneMatchTiebreak {
					return ErrTiebreakInProgress
				}
				if m.Status != models.MatchFinalized {
					return fmt.Errorf("%w: match %d is %s", ErrZoneIncomplete, m.ID, m.Status)
				}
			}
			entries, err := s.store.Zones.ListEntries(ctx, exec, zoneID)
			if err != nil {
				return err
			}
			pairIDs, err := zones.CheckTripleTie(entries)
			if err != nil {
				return err
			}

			r := s.randomizer()
			now := s.deps.Now()
			tie := &models.TieResolution{ID: uuid.NewString(), ZoneID: zoneID, Method: method, Seed: r.Seed()}
			out = &TieOutcome{Method: method, Resolution: tie}

			switch method {
			case models.TieMethodDraw:
				tie.Order = zones.DrawOrder(pairIDs, r)
				tie.CompletedAt = &now
				if err := s.store.Zones.SetFinalRanks(ctx, exec, zoneID, zones.RanksFromOrder(tie.Order)); err != nil {
					return err
				}
				if err := s.store.Zones.UpdateStatus(ctx, exec, zoneID, models.ZoneFinalized, &now); err != nil {
					return err
				}
				out.ZoneStatus = models.ZoneFinalized

			case models.TieMethodTiebreak:
				fixtures, order, err := zones.TiebreakFixtures(pairIDs, r)
				if err != nil {
					return err
				}
				tie.Order = order
				created, err := s.persistFixtures(ctx, exec, zoneID, len(matches), fixtures)
				if err != nil {
					return err
				}
				if z.Status == models.ZonePending {
					if err := s.store.Zones.UpdateStatus(ctx, exec, zoneID, models.ZoneInProgress, nil); err != nil {
						return err
					}
				}
				out.ZoneStatus = models.ZoneInProgress
				out.Matches = created
			}
			return s.store.Zones.CreateTieResolution(ctx, exec, tie)
		})
	}, attribute.Int("zone_id", zoneID), attribute.String("method", string(method)))
	if err != nil {
		return nil, err
	}

	s.deps.Logger.InfoContext(ctx, "zone tie resolved",
		"zone_id", zoneID, "method", method, "seed", out.Resolution.Seed, "order", out.Resolution.Order)
	s.deps.Notifier.BroadcastTournament(tournamentID, brackets.EventZoneUpdated, out)
	return out, nil
}

// allFinalized reports whether every match except those of the skipped kind is finalized.
func allFinalized(matches []models.ZoneMatch, skip models.ZoneMatchKind) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if m.Kind != skip && m.Status != models.MatchFinalized {
			return false
		}
	}
	return true
}
