package zones

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrNotTripleTie       = errors.New("zone is not in a three-way tie")
	ErrTiebreakIncomplete = errors.New("tiebreak matches are not finished")
)

// IsTripleTie reports whether a three-pair zone ended with every pair level on matches won,
// set difference and game difference.
func IsTripleTie(entries []models.ZoneEntry) bool {
	if len(entries) != 3 {
		return false
	}
	return level(entries[0], entries[1]) && level(entries[1], entries[2])
}

func level(a, b models.ZoneEntry) bool {
	return a.MatchesWon == b.MatchesWon && a.SetDiff() == b.SetDiff() && a.GameDiff() == b.GameDiff()
}

// CheckTripleTie returns the pair IDs of a tied zone in ascending order.
func CheckTripleTie(entries []models.ZoneEntry) ([]int, error) {
	if !IsTripleTie(entries) {
		return nil, ErrNotTripleTie
	}
	ordered := Order(entries)
	ids := make([]int, 0, len(ordered))
	for _, e := range ordered {
		ids = append(ids, e.PairID)
	}
	return ids, nil
}

// DrawOrder returns a uniformly random ranking of the given pairs, first place first.
func DrawOrder(pairIDs []int, r Randomizer) []int {
	perm := r.Perm(len(pairIDs))
	order := make([]int, len(pairIDs))
	for i, p := range perm {
		order[i] = pairIDs[p]
	}
	return order
}

// TiebreakFixtures picks a random pair for the bye and builds the two supplementary
// matches: the other two pairs play first, the winner then meets the bye pair.
// The returned order lists the first-match pairs followed by the bye pair.
func TiebreakFixtures(pairIDs []int, r Randomizer) ([]Fixture, []int, error) {
	if len(pairIDs) != 3 {
		return nil, nil, fmt.Errorf("%w: tiebreak needs 3 pairs, got %d", ErrNotTripleTie, len(pairIDs))
	}
	bye := r.IntN(3)
	var firstMatch []int
	for i, id := range pairIDs {
		if i != bye {
			firstMatch = append(firstMatch, id)
		}
	}
	a, b, c := firstMatch[0], firstMatch[1], pairIDs[bye]

	fixtures := []Fixture{
		{Kind: models.ZoneMatchTiebreak, Pair1ID: &a, Pair2ID: &b},
		{Kind: models.ZoneMatchTiebreak, Pair1From: &Source{Fixture: 0, Outcome: models.OutcomeWinner}, Pair2ID: &c},
	}
	return fixtures, []int{a, b, c}, nil
}

// TiebreakOrder derives the final ranking from the two finished tiebreak matches:
// the second match's winner is first, its loser second, the first match's loser third.
func TiebreakOrder(first, second *models.ZoneMatch) ([]int, error) {
	if first == nil || second == nil {
		return nil, ErrTiebreakIncomplete
	}
	firstLoser := Outcome(first, models.OutcomeLoser)
	winner := Outcome(second, models.OutcomeWinner)
	runnerUp := Outcome(second, models.OutcomeLoser)
	if firstLoser == nil || winner == nil || runnerUp == nil {
		return nil, ErrTiebreakIncomplete
	}
	return []int{*winner, *runnerUp, *firstLoser}, nil
}
