package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
)

// Publisher delivers a closure report to downstream consumers. msgID deduplicates retries.
type Publisher interface {
	Publish(ctx context.Context, msgID string, body []byte) error
}

// ReportStore keeps a copy of the closure report and returns where it can be read.
type ReportStore interface {
	PutReport(ctx context.Context, key string, body []byte) (string, error)
}

type CompetitorResult struct {
	CompetitorID int             `json:"competitor_id"`
	PairID       int             `json:"pair_id"`
	Instance     models.Instance `json:"instance"`
	Points       int             `json:"points"`
}

type CategoryClosure struct {
	CategoryID  int                `json:"category_id"`
	ChampionID  *int               `json:"champion_pair_id,omitempty"`
	Competitors []CompetitorResult `json:"competitors"`
}

// ClosureReport is the settlement of a tournament: the instance and points of every
// competitor per category.
type ClosureReport struct {
	TournamentID int               `json:"tournament_id"`
	Season       int               `json:"season"`
	Categories   []CategoryClosure `json:"categories"`
	ReportURL    string            `json:"report_url,omitempty"`
}

// Instances flattens the report into competitor → instance.
func (r *ClosureReport) Instances() map[int]models.Instance {
	out := make(map[int]models.Instance)
	for _, c := range r.Categories {
		for _, cr := range c.Competitors {
			out[cr.CompetitorID] = cr.Instance
		}
	}
	return out
}

type ClosureService interface {
	CloseTournament(ctx context.Context, tournamentID int) (*ClosureReport, error)
	Results(ctx context.Context, tournamentID int) (*ClosureReport, error)
}

type closureService struct {
	store     Store
	deps      Deps
	publisher Publisher
	reports   ReportStore
}

// NewClosureService wires the settlement. publisher and reports may be nil.
func NewClosureService(store Store, deps Deps, publisher Publisher, reports ReportStore) ClosureService {
	return &closureService{store: store, deps: deps.withDefaults(), publisher: publisher, reports: reports}
}

// CloseTournament settles every bracketed category of a tournament in one transaction:
// instances reached, ledger rows, season standings and the finalized state land together.
func (s *closureService) CloseTournament(ctx context.Context, tournamentID int) (*ClosureReport, error) {
	var report *ClosureReport
	err := s.deps.observe(ctx, "tournament.close", func(ctx context.Context) error {
		return s.deps.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			t, err := s.store.Tournaments.GetForUpdate(ctx, exec, tournamentID)
			if err != nil {
				return err
			}
			if t.Status == models.TournamentFinalized {
				return ErrTournamentFinalized
			}
			links, err := s.store.Tournaments.ListCategories(ctx, exec, tournamentID)
			if err != nil {
				return err
			}

			report = &ClosureReport{TournamentID: t.ID, Season: t.Season}
			for _, link := range links {
				closure, err := s.settleCategory(ctx, exec, t, link.CategoryID)
				if err != nil {
					return err
				}
				if closure != nil {
					report.Categories = append(report.Categories, *closure)
				}
			}
			if len(report.Categories) == 0 {
				return fmt.Errorf("%w: no category of tournament %d has a bracket", ErrFinalNotDecided, tournamentID)
			}

			now := s.deps.Now()
			return s.store.Tournaments.UpdateStatus(ctx, exec, tournamentID, models.TournamentFinalized, &now)
		})
	}, attribute.Int("tournament_id", tournamentID))
	if err != nil {
		return nil, err
	}

	competitors := len(report.Instances())
	s.deps.Metrics.TournamentClosed(competitors)
	s.deps.Logger.InfoContext(ctx, "tournament closed",
		"tournament_id", tournamentID, "categories", len(report.Categories), "competitors", competitors)
	s.publish(ctx, report)
	s.deps.Notifier.BroadcastTournament(tournamentID, brackets.EventTournamentClosed, report)
	return report, nil
}

// settleCategory returns nil for a category nobody entered.
func (s *closureService) settleCategory(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, categoryID int) (*CategoryClosure, error) {
	if _, err := s.store.Tournaments.LockCategory(ctx, exec, t.ID, categoryID); err != nil {
		return nil, err
	}
	pairs, err := s.store.Pairs.ListByTournamentCategory(ctx, exec, t.ID, categoryID)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.Brackets.ListByTournamentCategory(ctx, exec, t.ID, categoryID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if len(pairs) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: category %d", ErrBracketMissing, categoryID)
	}

	// только пары, сыгравшие в зонах
	entered := pairs[:0]
	for _, p := range pairs {
		zoneID, err := s.store.Zones.ZoneOfPair(ctx, exec, p.ID)
		if err != nil {
			return nil, err
		}
		if zoneID == nil {
			s.deps.Logger.WarnContext(ctx, "pair never entered a zone, not settled",
				"pair_id", p.ID, "category_id", categoryID)
			continue
		}
		entered = append(entered, p)
	}
	pairs = entered

	pairIDs := make([]int, 0, len(pairs))
	for _, p := range pairs {
		pairIDs = append(pairIDs, p.ID)
	}
	reached, err := brackets.InstancesReached(matches, pairIDs)
	if err != nil {
		return nil, err
	}
	table, err := s.pointsTable(ctx, exec, categoryID)
	if err != nil {
		return nil, err
	}

	closure := &CategoryClosure{CategoryID: categoryID}
	for _, p := range pairs {
		inst := reached[p.ID]
		if inst == models.InstanceChampion {
			closure.ChampionID = intPtr(p.ID)
		}
		points, ok := table[inst]
		if !ok {
			s.deps.Logger.WarnContext(ctx, "no points configured for instance, awarding 0",
				"category_id", categoryID, "instance", inst)
		}
		for _, competitorID := range p.CompetitorIDs() {
			if err := s.settle(ctx, exec, t, categoryID, p.ID, competitorID, inst, points); err != nil {
				return nil, err
			}
			closure.Competitors = append(closure.Competitors, CompetitorResult{
				CompetitorID: competitorID, PairID: p.ID, Instance: inst, Points: points,
			})
		}
	}
	sort.SliceStable(closure.Competitors, func(i, j int) bool {
		a, b := closure.Competitors[i], closure.Competitors[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.CompetitorID < b.CompetitorID
	})
	return closure, nil
}

// pointsTable merges the category rules over the default rules.
func (s *closureService) pointsTable(ctx context.Context, exec repositories.SQLExecutor, categoryID int) (map[models.Instance]int, error) {
	rules, err := s.store.Points.ListRules(ctx, exec, &categoryID)
	if err != nil {
		return nil, err
	}
	return effectiveTable(rules), nil
}

func effectiveTable(rules []models.PointsRule) map[models.Instance]int {
	table := make(map[models.Instance]int, len(rules))
	for _, r := range rules {
		if r.CategoryID == nil {
			if _, ok := table[r.Instance]; ok {
				continue
			}
		}
		table[r.Instance] = r.Points
	}
	return table
}

// settle writes one ledger row and moves the season standing by the difference to what the
// ledger held before, so replaying a settlement never double counts.
func (s *closureService) settle(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, categoryID, pairID, competitorID int, inst models.Instance, points int) error {
	prev, err := s.store.Points.GetLedgerEntry(ctx, exec, competitorID, t.ID, categoryID)
	if err != nil && !errors.Is(err, repositories.ErrLedgerEntryNotFound) {
		return err
	}
	entry := &models.PointsLedgerEntry{
		CompetitorID: competitorID,
		TournamentID: t.ID,
		CategoryID:   categoryID,
		PairID:       pairID,
		Instance:     inst,
		Points:       points,
	}
	if err := s.store.Points.UpsertLedgerEntry(ctx, exec, entry); err != nil {
		return err
	}

	standing, err := s.store.Points.GetStandingForUpdate(ctx, exec, competitorID, categoryID, t.Season)
	switch {
	case errors.Is(err, repositories.ErrStandingNotFound):
		standing = &models.SeasonStanding{CompetitorID: competitorID, CategoryID: categoryID, Season: t.Season}
	case err != nil:
		return err
	}

	delta := points
	if prev != nil {
		delta -= prev.Points
	} else {
		standing.TournamentsPlayed++
	}
	standing.TotalPoints += delta
	if standing.BestInstance == "" || inst.Better(standing.BestInstance) {
		standing.BestInstance = inst
	}
	return s.store.Points.SaveStanding(ctx, exec, standing)
}

// publish fans the committed report out to the bus and the report store. Failures are
// logged only: the settlement is already durable.
func (s *closureService) publish(ctx context.Context, report *ClosureReport) {
	if s.publisher == nil && s.reports == nil {
		return
	}
	body, err := json.Marshal(report)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "marshal closure report", "tournament_id", report.TournamentID, "error", err)
		return
	}

	var g errgroup.Group
	if s.publisher != nil {
		g.Go(func() error {
			msgID := fmt.Sprintf("tournament-%d-closed", report.TournamentID)
			if err := s.publisher.Publish(ctx, msgID, body); err != nil {
				s.deps.Logger.ErrorContext(ctx, "publish closure report", "tournament_id", report.TournamentID, "error", err)
			}
			return nil
		})
	}
	if s.reports != nil {
		g.Go(func() error {
			key := fmt.Sprintf("reports/season-%d/tournament-%d.json", report.Season, report.TournamentID)
			url, err := s.reports.PutReport(ctx, key, body)
			if err != nil {
				s.deps.Logger.ErrorContext(ctx, "store closure report", "tournament_id", report.TournamentID, "error", err)
				return nil
			}
			report.ReportURL = url
			return nil
		})
	}
	_ = g.Wait()
}

// Results rebuilds the closure report of a finalized tournament from its ledger.
func (s *closureService) Results(ctx context.Context, tournamentID int) (*ClosureReport, error) {
	var report *ClosureReport
	err := s.deps.observe(ctx, "tournament.results", func(ctx context.Context) error {
		t, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentFinalized {
			return fmt.Errorf("%w: tournament %d is %s", ErrPrecondition, tournamentID, t.Status)
		}
		entries, err := s.store.Points.ListLedgerByTournament(ctx, nil, tournamentID)
		if err != nil {
			return err
		}

		report = &ClosureReport{TournamentID: t.ID, Season: t.Season}
		index := make(map[int]int)
		for _, e := range entries {
			i, ok := index[e.CategoryID]
			if !ok {
				i = len(report.Categories)
				index[e.CategoryID] = i
				report.Categories = append(report.Categories, CategoryClosure{CategoryID: e.CategoryID})
			}
			c := &report.Categories[i]
			if e.Instance == models.InstanceChampion {
				c.ChampionID = intPtr(e.PairID)
			}
			c.Competitors = append(c.Competitors, CompetitorResult{
				CompetitorID: e.CompetitorID, PairID: e.PairID, Instance: e.Instance, Points: e.Points,
			})
		}
		return nil
	}, attribute.Int("tournament_id", tournamentID))
	return report, err
}
