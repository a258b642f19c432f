package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-circuit/config"
	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/zones"
)

const testSeason = 2026

type fixedRandomizer struct {
	perm []int
	bye  int
	seed int64
}

func (r *fixedRandomizer) Perm(n int) []int {
	if len(r.perm) == n {
		return append([]int(nil), r.perm...)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (r *fixedRandomizer) IntN(int) int { return r.bye }

func (r *fixedRandomizer) Seed() int64 { return r.seed }

type broadcast struct {
	TournamentID int
	Type         string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []broadcast
}

func (n *recordingNotifier) BroadcastTournament(tournamentID int, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, broadcast{TournamentID: tournamentID, Type: eventType})
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Type == eventType {
			c++
		}
	}
	return c
}

type recordingMetrics struct {
	mu        sync.Mutex
	classes   map[string]int
	decided   int
	undecided int
	brackets  int
	closures  int
}

func (m *recordingMetrics) ObserveOperation(_ string, class string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.classes == nil {
		m.classes = map[string]int{}
	}
	m.classes[class]++
}

func (m *recordingMetrics) ResultSubmitted(_ string, decided bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if decided {
		m.decided++
	} else {
		m.undecided++
	}
}

func (m *recordingMetrics) BracketGenerated(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brackets++
}

func (m *recordingMetrics) TournamentClosed(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closures++
}

type testEnv struct {
	t        *testing.T
	ctx      context.Context
	db       *memDB
	faker    *gofakeit.Faker
	notifier *recordingNotifier
	metrics  *recordingMetrics
	random   *fixedRandomizer

	tournaments TournamentService
	competitors CompetitorService
	pairs       PairService
	zones       ZoneService
	brackets    BracketService
	closure     ClosureService
	points      PointsService
	ranking     RankingService
}

type envOption func(*testEnv, *Deps, *closureWiring)

type closureWiring struct {
	publisher Publisher
	reports   ReportStore
}

func withClosureOutputs(p Publisher, r ReportStore) envOption {
	return func(_ *testEnv, _ *Deps, w *closureWiring) {
		w.publisher, w.reports = p, r
	}
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := newMemDB()
	e := &testEnv{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		faker:    gofakeit.New(7),
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
		random:   &fixedRandomizer{seed: 42},
	}
	deps := Deps{
		Tx:       db,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  e.metrics,
		Notifier: e.notifier,
	}
	var w closureWiring
	for _, opt := range opts {
		opt(e, &deps, &w)
	}

	store := db.store()
	e.tournaments = NewTournamentService(store, deps, testSeason)
	e.competitors = NewCompetitorService(store, deps)
	e.pairs = NewPairService(store, deps)
	e.zones = NewZoneService(store, deps, DefaultZoneCapacity, func() zones.Randomizer { return e.random })
	e.brackets = NewBracketService(store, deps)
	e.closure = NewClosureService(store, deps, w.publisher, w.reports)
	e.points = NewPointsService(store, deps)
	e.ranking = NewRankingService(store, deps)

	table, err := config.LoadPoints("")
	require.NoError(t, err)
	require.NoError(t, e.points.Seed(e.ctx, table))
	return e
}

func (e *testEnv) category(name string) *models.Category {
	e.t.Helper()
	c, err := e.tournaments.CreateCategory(e.ctx, name)
	require.NoError(e.t, err)
	return c
}

func (e *testEnv) tournament(sequence int, categoryIDs ...int) *models.Tournament {
	e.t.Helper()
	t, err := e.tournaments.CreateTournament(e.ctx, CreateTournamentInput{
		Name:        e.faker.City() + " Open",
		Sequence:    sequence,
		Season:      testSeason,
		CategoryIDs: categoryIDs,
	})
	require.NoError(e.t, err)
	return t
}

func (e *testEnv) competitor(categoryIDs ...int) *models.Competitor {
	e.t.Helper()
	c, err := e.competitors.CreateCompetitor(e.ctx, CreateCompetitorInput{
		FirstName:   e.faker.FirstName(),
		LastName:    e.faker.LastName(),
		CategoryIDs: categoryIDs,
	})
	require.NoError(e.t, err)
	return c
}

// registerPairs enters n fresh pairs into a tournament category.
func (e *testEnv) registerPairs(tournamentID, categoryID, n int) []int {
	e.t.Helper()
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		a, b := e.competitor(categoryID), e.competitor(categoryID)
		p, err := e.pairs.RegisterPair(e.ctx, RegisterPairInput{
			TournamentID:  tournamentID,
			CategoryID:    categoryID,
			Competitor1ID: a.ID,
			Competitor2ID: b.ID,
		})
		require.NoError(e.t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func (e *testEnv) zone(tournamentID, categoryID int, format models.ZoneFormat, pairIDs []int) *ZoneDetail {
	e.t.Helper()
	z, err := e.zones.CreateZone(e.ctx, CreateZoneInput{
		TournamentID: tournamentID,
		CategoryID:   categoryID,
		Format:       format,
		PairIDs:      pairIDs,
	})
	require.NoError(e.t, err)
	return z
}

func set(p1, p2 int) models.SetScore {
	return models.SetScore{P1: &p1, P2: &p2}
}

// straightSets is a 6-3 6-4 win for side 1.
func straightSets() []models.SetScore {
	return []models.SetScore{set(6, 3), set(6, 4)}
}

func flip(sets []models.SetScore) []models.SetScore {
	out := make([]models.SetScore, len(sets))
	for i, s := range sets {
		out[i] = models.SetScore{P1: s.P2, P2: s.P1}
	}
	return out
}

// oriented returns sets written from the winner's side for the given match.
func oriented(m models.ZoneMatch, winner int, sets []models.SetScore) []models.SetScore {
	if m.Pair1ID != nil && *m.Pair1ID == winner {
		return sets
	}
	return flip(sets)
}

func (e *testEnv) zoneMatch(zoneID, a, b int) models.ZoneMatch {
	e.t.Helper()
	z, err := e.zones.GetZone(e.ctx, zoneID)
	require.NoError(e.t, err)
	for _, m := range z.Matches {
		if m.Pair1ID == nil || m.Pair2ID == nil || m.Status == models.MatchFinalized {
			continue
		}
		if (*m.Pair1ID == a && *m.Pair2ID == b) || (*m.Pair1ID == b && *m.Pair2ID == a) {
			return m
		}
	}
	e.t.Fatalf("no open match between pairs %d and %d in zone %d", a, b, zoneID)
	return models.ZoneMatch{}
}

// beat records winner beating loser with sets given from the winner's side.
func (e *testEnv) beat(zoneID, winner, loser int, sets []models.SetScore) *ZoneResult {
	e.t.Helper()
	m := e.zoneMatch(zoneID, winner, loser)
	res, err := e.zones.SubmitResult(e.ctx, m.ID, oriented(m, winner, sets))
	require.NoError(e.t, err)
	require.NotNil(e.t, res.WinnerPairID)
	require.Equal(e.t, winner, *res.WinnerPairID)
	return res
}

// playZone plays every playable match until none is left. The pair listed earlier in
// strength wins.
func (e *testEnv) playZone(zoneID int, strength []int) {
	e.t.Helper()
	rank := make(map[int]int, len(strength))
	for i, id := range strength {
		rank[id] = i
	}
	for {
		z, err := e.zones.GetZone(e.ctx, zoneID)
		require.NoError(e.t, err)
		played := false
		for _, m := range z.Matches {
			if m.Status == models.MatchFinalized || m.Pair1ID == nil || m.Pair2ID == nil {
				continue
			}
			winner := *m.Pair1ID
			if rank[*m.Pair2ID] < rank[winner] {
				winner = *m.Pair2ID
			}
			_, err := e.zones.SubmitResult(e.ctx, m.ID, oriented(m, winner, straightSets()))
			require.NoError(e.t, err)
			played = true
		}
		if !played {
			return
		}
	}
}

func (e *testEnv) closeZone(zoneID int) *ZoneDetail {
	e.t.Helper()
	z, err := e.zones.SetState(e.ctx, zoneID, models.ZoneFinalized)
	require.NoError(e.t, err)
	return z
}

type categorySetup struct {
	tournament *models.Tournament
	category   *models.Category
	zoneIDs    []int
	// zonePairs lists each zone's pairs strongest first.
	zonePairs [][]int
}

// setupCategory creates a tournament category with zones of the given sizes, plays every
// zone and closes it. The first pair of each zone ranks first.
func (e *testEnv) setupCategory(sequence int, sizes ...int) *categorySetup {
	e.t.Helper()
	c := e.category(fmt.Sprintf("Category %d", sequence))
	t := e.tournament(sequence, c.ID)
	s := &categorySetup{tournament: t, category: c}
	for _, size := range sizes {
		pairIDs := e.registerPairs(t.ID, c.ID, size)
		z := e.zone(t.ID, c.ID, models.ZoneFormatRoundRobin, pairIDs)
		e.playZone(z.ID, pairIDs)
		e.closeZone(z.ID)
		s.zoneIDs = append(s.zoneIDs, z.ID)
		s.zonePairs = append(s.zonePairs, pairIDs)
	}
	return s
}

// playBracket decides every bracket match, letting pick choose the winner of each.
func (e *testEnv) playBracket(tournamentID, categoryID int, pick func(m models.BracketMatch) int) *BracketResult {
	e.t.Helper()
	var last *BracketResult
	for {
		view, err := e.brackets.GetBracket(e.ctx, tournamentID, categoryID)
		require.NoError(e.t, err)
		played := false
		for _, round := range view.Rounds {
			for _, m := range round.Matches {
				if m.Status == models.MatchFinalized || !m.SlotsFilled() {
					continue
				}
				sets := straightSets()
				if pick(m) == *m.Pair2ID {
					sets = flip(sets)
				}
				last, err = e.brackets.SubmitResult(e.ctx, m.ID, sets)
				require.NoError(e.t, err)
				played = true
			}
		}
		if !played {
			return last
		}
	}
}

// higherSeed picks the pair in slot 1.
func higherSeed(m models.BracketMatch) int {
	return *m.Pair1ID
}
