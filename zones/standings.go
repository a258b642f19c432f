package zones

import (
	"sort"

	"github.com/Dosada05/padel-circuit/models"
)

// Less orders zone entries: matches won, then set difference, then sets won, all descending.
// Pair ID ascending keeps the order total when every statistic is equal.
func Less(a, b models.ZoneEntry) bool {
	if a.MatchesWon != b.MatchesWon {
		return a.MatchesWon > b.MatchesWon
	}
	if a.SetDiff() != b.SetDiff() {
		return a.SetDiff() > b.SetDiff()
	}
	if a.SetsWon != b.SetsWon {
		return a.SetsWon > b.SetsWon
	}
	return a.PairID < b.PairID
}

// Tied reports whether two entries are equal on every ranking statistic.
func Tied(a, b models.ZoneEntry) bool {
	return a.MatchesWon == b.MatchesWon && a.SetDiff() == b.SetDiff() && a.SetsWon == b.SetsWon
}

// Order returns a sorted copy of the entries in standing order.
func Order(entries []models.ZoneEntry) []models.ZoneEntry {
	sorted := make([]models.ZoneEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j])
	})
	return sorted
}

// Ranks maps pair ID to its 1-based rank in standing order.
func Ranks(entries []models.ZoneEntry) map[int]int {
	ranks := make(map[int]int, len(entries))
	for i, e := range Order(entries) {
		ranks[e.PairID] = i + 1
	}
	return ranks
}

// RanksFromOrder maps an explicit ranking (pair IDs, first place first) to ranks.
func RanksFromOrder(order []int) map[int]int {
	ranks := make(map[int]int, len(order))
	for i, id := range order {
		ranks[id] = i + 1
	}
	return ranks
}

// ByFinalRank orders entries by their frozen rank; unranked entries go last by pair ID.
func ByFinalRank(entries []models.ZoneEntry) []models.ZoneEntry {
	sorted := make([]models.ZoneEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].FinalRank, sorted[j].FinalRank
		switch {
		case ri != nil && rj != nil:
			return *ri < *rj
		case ri != nil:
			return true
		case rj != nil:
			return false
		default:
			return sorted[i].PairID < sorted[j].PairID
		}
	})
	return sorted
}
