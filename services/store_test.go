package services

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/repositories"
)

// memState holds rows by value so a shallow map clone is a full snapshot. Slice and pointer
// fields are always replaced, never mutated in place.
type memState struct {
	seq            int
	tournaments    map[int]models.Tournament
	categories     map[int]models.Category
	tournamentCats map[[2]int]models.TournamentCategory
	competitors    map[int]models.Competitor
	competitorCats map[[2]int]bool
	pairs          map[int]models.Pair
	zones          map[int]models.Zone
	entries        map[[2]int]models.ZoneEntry
	zoneMatches    map[int]models.ZoneMatch
	ties           []models.TieResolution
	bracket        map[int]models.BracketMatch
	rules          []models.PointsRule
	ledger         map[[3]int]models.PointsLedgerEntry
	standings      map[[3]int]models.SeasonStanding
}

func (s memState) clone() memState {
	s.tournaments = maps.Clone(s.tournaments)
	s.categories = maps.Clone(s.categories)
	s.tournamentCats = maps.Clone(s.tournamentCats)
	s.competitors = maps.Clone(s.competitors)
	s.competitorCats = maps.Clone(s.competitorCats)
	s.pairs = maps.Clone(s.pairs)
	s.zones = maps.Clone(s.zones)
	s.entries = maps.Clone(s.entries)
	s.zoneMatches = maps.Clone(s.zoneMatches)
	s.ties = slices.Clone(s.ties)
	s.bracket = maps.Clone(s.bracket)
	s.rules = slices.Clone(s.rules)
	s.ledger = maps.Clone(s.ledger)
	s.standings = maps.Clone(s.standings)
	return s
}

// memDB is an in-memory implementation of every repository. Transactions are serialized and
// roll back to a snapshot on error.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	// failOn makes the named operation fail with the returned error.
	failOn func(op string) error
	commits int
}

func newMemDB() *memDB {
	return &memDB{st: memState{
		tournaments:    map[int]models.Tournament{},
		categories:     map[int]models.Category{},
		tournamentCats: map[[2]int]models.TournamentCategory{},
		competitors:    map[int]models.Competitor{},
		competitorCats: map[[2]int]bool{},
		pairs:          map[int]models.Pair{},
		zones:          map[int]models.Zone{},
		entries:        map[[2]int]models.ZoneEntry{},
		zoneMatches:    map[int]models.ZoneMatch{},
		bracket:        map[int]models.BracketMatch{},
		ledger:         map[[3]int]models.PointsLedgerEntry{},
		standings:      map[[3]int]models.SeasonStanding{},
	}}
}

func (db *memDB) store() Store {
	return Store{
		Tournaments: memTournaments{db},
		Competitors: memCompetitors{db},
		Pairs:       memPairs{db},
		Zones:       memZones{db},
		ZoneMatches: memZoneMatches{db},
		Brackets:    memBrackets{db},
		Points:      memPoints{db},
	}
}

func (db *memDB) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snap := db.st.clone()
	db.mu.Unlock()

	if err := fn(nil); err != nil {
		db.mu.Lock()
		db.st = snap
		db.mu.Unlock()
		return err
	}
	db.mu.Lock()
	db.commits++
	db.mu.Unlock()
	return nil
}

func (db *memDB) lock(op string) (func(), error) {
	db.mu.Lock()
	if db.failOn != nil {
		if err := db.failOn(op); err != nil {
			db.mu.Unlock()
			return nil, err
		}
	}
	return db.mu.Unlock, nil
}

func (db *memDB) nextID() int {
	db.st.seq++
	return db.st.seq
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// --- tournaments ---

type memTournaments struct{ db *memDB }

func (r memTournaments) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	unlock, err := r.db.lock("tournaments.create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, other := range r.db.st.tournaments {
		if other.Season == t.Season && other.Sequence == t.Sequence {
			return repositories.ErrTournamentSequenceConflict
		}
	}
	if t.Status == "" {
		t.Status = models.TournamentScheduled
	}
	t.ID = r.db.nextID()
	t.CreatedAt = time.Now()
	row := *t
	row.Categories = nil
	r.db.st.tournaments[t.ID] = row
	return nil
}

func (r memTournaments) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	unlock, err := r.db.lock("tournaments.get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	t, ok := r.db.st.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournaments) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memTournaments) List(_ context.Context, _ repositories.SQLExecutor, season *int) ([]models.Tournament, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.db.st.tournaments {
		if season == nil || t.Season == *season {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memTournaments) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus, finalizedAt *time.Time) error {
	unlock, err := r.db.lock("tournaments.update_status")
	if err != nil {
		return err
	}
	defer unlock()
	t, ok := r.db.st.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status, t.FinalizedAt = status, finalizedAt
	r.db.st.tournaments[id] = t
	return nil
}

func (r memTournaments) AddCategory(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.categories[categoryID]; !ok {
		return repositories.ErrCategoryNotFound
	}
	key := [2]int{tournamentID, categoryID}
	if _, ok := r.db.st.tournamentCats[key]; !ok {
		r.db.st.tournamentCats[key] = models.TournamentCategory{TournamentID: tournamentID, CategoryID: categoryID}
	}
	return nil
}

func (r memTournaments) ListCategories(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.TournamentCategory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.TournamentCategory, 0)
	for key, tc := range r.db.st.tournamentCats {
		if key[0] == tournamentID {
			out = append(out, tc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (r memTournaments) LockCategory(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int) (*models.TournamentCategory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	tc, ok := r.db.st.tournamentCats[[2]int{tournamentID, categoryID}]
	if !ok {
		return nil, repositories.ErrTournamentCategoryNotFound
	}
	return &tc, nil
}

func (r memTournaments) MarkBracketGenerated(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int, at time.Time) error {
	unlock, err := r.db.lock("tournaments.mark_bracket")
	if err != nil {
		return err
	}
	defer unlock()
	key := [2]int{tournamentID, categoryID}
	tc, ok := r.db.st.tournamentCats[key]
	if !ok {
		return repositories.ErrTournamentCategoryNotFound
	}
	tc.BracketGeneratedAt = &at
	r.db.st.tournamentCats[key] = tc
	return nil
}

func (r memTournaments) CreateCategory(_ context.Context, _ repositories.SQLExecutor, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.st.categories {
		if other.Name == c.Name {
			return repositories.ErrCategoryNameConflict
		}
	}
	c.ID = r.db.nextID()
	r.db.st.categories[c.ID] = *c
	return nil
}

func (r memTournaments) GetCategory(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.st.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	return &c, nil
}

func (r memTournaments) GetCategoryByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.st.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, repositories.ErrCategoryNotFound
}

func (r memTournaments) ListAllCategories(_ context.Context, _ repositories.SQLExecutor) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := slices.Collect(maps.Values(r.db.st.categories))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- competitors ---

type memCompetitors struct{ db *memDB }

func (r memCompetitors) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Competitor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.nextID()
	c.CreatedAt = time.Now()
	r.db.st.competitors[c.ID] = *c
	return nil
}

func (r memCompetitors) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Competitor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.st.competitors[id]
	if !ok {
		return nil, repositories.ErrCompetitorNotFound
	}
	return &c, nil
}

func (r memCompetitors) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]models.Competitor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Competitor, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.db.st.competitors[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCompetitors) SetActive(_ context.Context, _ repositories.SQLExecutor, id int, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.st.competitors[id]
	if !ok {
		return repositories.ErrCompetitorNotFound
	}
	c.Active = active
	r.db.st.competitors[id] = c
	return nil
}

func (r memCompetitors) AddCategory(_ context.Context, _ repositories.SQLExecutor, competitorID, categoryID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.st.competitorCats[[2]int{competitorID, categoryID}] = true
	return nil
}

func (r memCompetitors) HasCategory(_ context.Context, _ repositories.SQLExecutor, competitorID, categoryID int) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.st.competitorCats[[2]int{competitorID, categoryID}], nil
}

// --- pairs ---

type memPairs struct{ db *memDB }

func (r memPairs) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Pair) error {
	unlock, err := r.db.lock("pairs.create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, other := range r.db.st.pairs {
		if other.TournamentID != p.TournamentID {
			continue
		}
		for _, a := range other.CompetitorIDs() {
			if a == p.Competitor1ID || a == p.Competitor2ID {
				return repositories.ErrCompetitorAlreadyPaired
			}
		}
	}
	p.ID = r.db.nextID()
	p.CreatedAt = time.Now()
	r.db.st.pairs[p.ID] = *p
	return nil
}

func (r memPairs) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Pair, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.st.pairs[id]
	if !ok {
		return nil, repositories.ErrPairNotFound
	}
	return &p, nil
}

func (r memPairs) ListByTournamentCategory(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int) ([]models.Pair, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Pair, 0)
	for _, p := range r.db.st.pairs {
		if p.TournamentID == tournamentID && p.CategoryID == categoryID {
			c1, c2 := r.db.st.competitors[p.Competitor1ID], r.db.st.competitors[p.Competitor2ID]
			p.Competitor1, p.Competitor2 = &c1, &c2
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPairs) PairedCompetitors(_ context.Context, _ repositories.SQLExecutor, tournamentID int, competitorIDs []int) ([]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []int
	for _, p := range r.db.st.pairs {
		if p.TournamentID != tournamentID {
			continue
		}
		for _, id := range p.CompetitorIDs() {
			if slices.Contains(competitorIDs, id) {
				out = append(out, id)
			}
		}
	}
	sort.Ints(out)
	return out, nil
}

func (r memPairs) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.pairs[id]; !ok {
		return repositories.ErrPairNotFound
	}
	for key := range r.db.st.entries {
		if key[1] == id {
			return repositories.ErrPairInUse
		}
	}
	delete(r.db.st.pairs, id)
	return nil
}

// --- zones ---

type memZones struct{ db *memDB }

func (r memZones) Create(_ context.Context, _ repositories.SQLExecutor, z *models.Zone) error {
	unlock, err := r.db.lock("zones.create")
	if err != nil {
		return err
	}
	defer unlock()
	z.ID = r.db.nextID()
	z.CreatedAt = time.Now()
	row := *z
	row.Entries, row.Matches = nil, nil
	r.db.st.zones[z.ID] = row
	return nil
}

func (r memZones) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Zone, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	z, ok := r.db.st.zones[id]
	if !ok {
		return nil, repositories.ErrZoneNotFound
	}
	return &z, nil
}

func (r memZones) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Zone, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memZones) ListByTournamentCategory(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int) ([]models.Zone, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Zone, 0)
	for _, z := range r.db.st.zones {
		if z.TournamentID == tournamentID && z.CategoryID == categoryID {
			out = append(out, z)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r memZones) NextPosition(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	max := 0
	for _, z := range r.db.st.zones {
		if z.TournamentID == tournamentID && z.CategoryID == categoryID && z.Position > max {
			max = z.Position
		}
	}
	return max + 1, nil
}

func (r memZones) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.ZoneStatus, finalizedAt *time.Time) error {
	unlock, err := r.db.lock("zones.update_status")
	if err != nil {
		return err
	}
	defer unlock()
	z, ok := r.db.st.zones[id]
	if !ok {
		return repositories.ErrZoneNotFound
	}
	z.Status, z.FinalizedAt = status, finalizedAt
	r.db.st.zones[id] = z
	return nil
}

func (r memZones) AddEntry(_ context.Context, _ repositories.SQLExecutor, zoneID, pairID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for key := range r.db.st.entries {
		if key[1] != pairID {
			continue
		}
		if key[0] == zoneID {
			return nil
		}
		return repositories.ErrPairInAnotherZone
	}
	r.db.st.entries[[2]int{zoneID, pairID}] = models.ZoneEntry{ZoneID: zoneID, PairID: pairID}
	return nil
}

func (r memZones) ListEntries(_ context.Context, _ repositories.SQLExecutor, zoneID int) ([]models.ZoneEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.ZoneEntry, 0)
	for key, e := range r.db.st.entries {
		if key[0] == zoneID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PairID < out[j].PairID })
	return out, nil
}

func (r memZones) ZoneOfPair(_ context.Context, _ repositories.SQLExecutor, pairID int) (*int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for key := range r.db.st.entries {
		if key[1] == pairID {
			return intPtr(key[0]), nil
		}
	}
	return nil, nil
}

func (r memZones) ApplyDelta(_ context.Context, _ repositories.SQLExecutor, zoneID, pairID int, d models.StatsDelta) error {
	unlock, err := r.db.lock("zones.apply_delta")
	if err != nil {
		return err
	}
	defer unlock()
	key := [2]int{zoneID, pairID}
	e, ok := r.db.st.entries[key]
	if !ok {
		return repositories.ErrZoneEntryNotFound
	}
	e.MatchesWon += d.MatchesWon
	e.MatchesLost += d.MatchesLost
	e.SetsWon += d.SetsWon
	e.SetsLost += d.SetsLost
	e.GamesWon += d.GamesWon
	e.GamesLost += d.GamesLost
	r.db.st.entries[key] = e
	return nil
}

func (r memZones) SetFinalRanks(_ context.Context, _ repositories.SQLExecutor, zoneID int, ranks map[int]int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for pairID, rank := range ranks {
		key := [2]int{zoneID, pairID}
		e, ok := r.db.st.entries[key]
		if !ok {
			return repositories.ErrZoneEntryNotFound
		}
		e.FinalRank = intPtr(rank)
		r.db.st.entries[key] = e
	}
	return nil
}

func (r memZones) ClearFinalRanks(_ context.Context, _ repositories.SQLExecutor, zoneID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for key, e := range r.db.st.entries {
		if key[0] == zoneID {
			e.FinalRank = nil
			r.db.st.entries[key] = e
		}
	}
	return nil
}

func (r memZones) CreateTieResolution(_ context.Context, _ repositories.SQLExecutor, t *models.TieResolution) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.CreatedAt = time.Now()
	row := *t
	row.Order = slices.Clone(t.Order)
	r.db.st.ties = append(r.db.st.ties, row)
	return nil
}

func (r memZones) LatestTieResolution(_ context.Context, _ repositories.SQLExecutor, zoneID int) (*models.TieResolution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := len(r.db.st.ties) - 1; i >= 0; i-- {
		if t := r.db.st.ties[i]; t.ZoneID == zoneID {
			return &t, nil
		}
	}
	return nil, repositories.ErrTieResolutionNotFound
}

func (r memZones) CompleteTieResolution(_ context.Context, _ repositories.SQLExecutor, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, t := range r.db.st.ties {
		if t.ID == id {
			t.CompletedAt = &at
			r.db.st.ties[i] = t
			return nil
		}
	}
	return repositories.ErrTieResolutionNotFound
}

// --- zone matches ---

type memZoneMatches struct{ db *memDB }

func (r memZoneMatches) Create(_ context.Context, _ repositories.SQLExecutor, m *models.ZoneMatch) error {
	unlock, err := r.db.lock("zone_matches.create")
	if err != nil {
		return err
	}
	defer unlock()
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	m.ID = r.db.nextID()
	m.UpdatedAt = time.Now()
	r.db.st.zoneMatches[m.ID] = *m
	return nil
}

func (r memZoneMatches) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.ZoneMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.st.zoneMatches[id]
	if !ok {
		return nil, repositories.ErrZoneMatchNotFound
	}
	return &m, nil
}

func (r memZoneMatches) ListByZone(_ context.Context, _ repositories.SQLExecutor, zoneID int) ([]models.ZoneMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.ZoneMatch, 0)
	for _, m := range r.db.st.zoneMatches {
		if m.ZoneID == zoneID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r memZoneMatches) ListDependents(_ context.Context, _ repositories.SQLExecutor, sourceMatchID int) ([]models.ZoneMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.ZoneMatch, 0)
	for _, m := range r.db.st.zoneMatches {
		if (m.Pair1Source != nil && m.Pair1Source.MatchID == sourceMatchID) ||
			(m.Pair2Source != nil && m.Pair2Source.MatchID == sourceMatchID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r memZoneMatches) SaveResult(_ context.Context, _ repositories.SQLExecutor, id int, sets []models.SetScore, winnerPairID *int, status models.MatchStatus) error {
	unlock, err := r.db.lock("zone_matches.save_result")
	if err != nil {
		return err
	}
	defer unlock()
	m, ok := r.db.st.zoneMatches[id]
	if !ok {
		return repositories.ErrZoneMatchNotFound
	}
	m.Sets, m.WinnerPairID, m.Status = slices.Clone(sets), cloneInt(winnerPairID), status
	r.db.st.zoneMatches[id] = m
	return nil
}

func (r memZoneMatches) SetPair(_ context.Context, _ repositories.SQLExecutor, id, slot, pairID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.st.zoneMatches[id]
	if !ok {
		return repositories.ErrZoneSlotFilled
	}
	target := &m.Pair1ID
	if slot == 2 {
		target = &m.Pair2ID
	}
	if *target != nil {
		return repositories.ErrZoneSlotFilled
	}
	*target = intPtr(pairID)
	r.db.st.zoneMatches[id] = m
	return nil
}

// --- bracket ---

type memBrackets struct{ db *memDB }

func (r memBrackets) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []models.BracketMatch) error {
	unlock, err := r.db.lock("brackets.create_batch")
	if err != nil {
		return err
	}
	defer unlock()
	for i := range matches {
		m := &matches[i]
		for _, other := range r.db.st.bracket {
			if other.TournamentID == m.TournamentID && other.CategoryID == m.CategoryID &&
				other.RoundIndex == m.RoundIndex && other.Position == m.Position {
				return repositories.ErrBracketExists
			}
		}
		m.ID = r.db.nextID()
		m.UpdatedAt = time.Now()
		r.db.st.bracket[m.ID] = *m
	}
	return nil
}

func (r memBrackets) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.BracketMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.st.bracket[id]
	if !ok {
		return nil, repositories.ErrBracketMatchNotFound
	}
	return &m, nil
}

func (r memBrackets) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.BracketMatch, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memBrackets) GetByPositionForUpdate(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID, roundIndex, position int) (*models.BracketMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.st.bracket {
		if m.TournamentID == tournamentID && m.CategoryID == categoryID && m.RoundIndex == roundIndex && m.Position == position {
			return &m, nil
		}
	}
	return nil, repositories.ErrBracketMatchNotFound
}

func (r memBrackets) ListByTournamentCategory(_ context.Context, _ repositories.SQLExecutor, tournamentID, categoryID int) ([]models.BracketMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.BracketMatch, 0)
	for _, m := range r.db.st.bracket {
		if m.TournamentID == tournamentID && m.CategoryID == categoryID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundIndex != out[j].RoundIndex {
			return out[i].RoundIndex < out[j].RoundIndex
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r memBrackets) Count(ctx context.Context, exec repositories.SQLExecutor, tournamentID, categoryID int) (int, error) {
	list, err := r.ListByTournamentCategory(ctx, exec, tournamentID, categoryID)
	return len(list), err
}

func (r memBrackets) SaveResult(_ context.Context, _ repositories.SQLExecutor, id int, sets []models.SetScore, winnerPairID *int, status models.MatchStatus) error {
	unlock, err := r.db.lock("brackets.save_result")
	if err != nil {
		return err
	}
	defer unlock()
	m, ok := r.db.st.bracket[id]
	if !ok {
		return repositories.ErrBracketMatchNotFound
	}
	m.Sets, m.WinnerPairID, m.Status = slices.Clone(sets), cloneInt(winnerPairID), status
	r.db.st.bracket[id] = m
	return nil
}

func (r memBrackets) SetSlot(_ context.Context, _ repositories.SQLExecutor, id, slot, pairID int) error {
	unlock, err := r.db.lock("brackets.set_slot")
	if err != nil {
		return err
	}
	defer unlock()
	m, ok := r.db.st.bracket[id]
	if !ok {
		return repositories.ErrBracketMatchNotFound
	}
	if slot == 1 {
		m.Pair1ID = intPtr(pairID)
	} else {
		m.Pair2ID = intPtr(pairID)
	}
	r.db.st.bracket[id] = m
	return nil
}

// --- points ---

type memPoints struct{ db *memDB }

func (r memPoints) ListRules(_ context.Context, _ repositories.SQLExecutor, categoryID *int) ([]models.PointsRule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var category, defaults []models.PointsRule
	for _, rule := range r.db.st.rules {
		switch {
		case rule.CategoryID == nil:
			defaults = append(defaults, rule)
		case categoryID != nil && *rule.CategoryID == *categoryID:
			category = append(category, rule)
		}
	}
	return append(category, defaults...), nil
}

func (r memPoints) ReplaceRules(_ context.Context, _ repositories.SQLExecutor, categoryID *int, rules []models.PointsRule) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := make([]models.PointsRule, 0, len(r.db.st.rules)+len(rules))
	for _, rule := range r.db.st.rules {
		same := (rule.CategoryID == nil && categoryID == nil) ||
			(rule.CategoryID != nil && categoryID != nil && *rule.CategoryID == *categoryID)
		if !same {
			kept = append(kept, rule)
		}
	}
	r.db.st.rules = append(kept, rules...)
	return nil
}

func (r memPoints) GetLedgerEntry(_ context.Context, _ repositories.SQLExecutor, competitorID, tournamentID, categoryID int) (*models.PointsLedgerEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.st.ledger[[3]int{competitorID, tournamentID, categoryID}]
	if !ok {
		return nil, repositories.ErrLedgerEntryNotFound
	}
	return &e, nil
}

func (r memPoints) UpsertLedgerEntry(_ context.Context, _ repositories.SQLExecutor, e *models.PointsLedgerEntry) error {
	unlock, err := r.db.lock("points.upsert_ledger")
	if err != nil {
		return err
	}
	defer unlock()
	key := [3]int{e.CompetitorID, e.TournamentID, e.CategoryID}
	now := time.Now()
	if prev, ok := r.db.st.ledger[key]; ok {
		e.ID, e.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		e.ID, e.CreatedAt = r.db.nextID(), now
	}
	e.UpdatedAt = now
	r.db.st.ledger[key] = *e
	return nil
}

func (r memPoints) ListLedgerByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.PointsLedgerEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.PointsLedgerEntry, 0)
	for _, e := range r.db.st.ledger {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.CompetitorID < b.CompetitorID
	})
	return out, nil
}

func (r memPoints) GetStandingForUpdate(_ context.Context, _ repositories.SQLExecutor, competitorID, categoryID, season int) (*models.SeasonStanding, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.st.standings[[3]int{competitorID, categoryID, season}]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	return &s, nil
}

func (r memPoints) SaveStanding(_ context.Context, _ repositories.SQLExecutor, s *models.SeasonStanding) error {
	unlock, err := r.db.lock("points.save_standing")
	if err != nil {
		return err
	}
	defer unlock()
	s.UpdatedAt = time.Now()
	row := *s
	row.Competitor = nil
	r.db.st.standings[[3]int{s.CompetitorID, s.CategoryID, s.Season}] = row
	return nil
}

func (r memPoints) ListStandings(_ context.Context, _ repositories.SQLExecutor, categoryID, season int) ([]models.SeasonStanding, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.SeasonStanding, 0)
	for _, s := range r.db.st.standings {
		if s.CategoryID == categoryID && s.Season == season {
			c := r.db.st.competitors[s.CompetitorID]
			s.Competitor = &c
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TournamentsPlayed != b.TournamentsPlayed {
			return a.TournamentsPlayed < b.TournamentsPlayed
		}
		return a.CompetitorID < b.CompetitorID
	})
	return out, nil
}
