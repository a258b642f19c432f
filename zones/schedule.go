// Package zones holds the zone-stage rules: match scheduling, standings order and
// triple-tie handling. It has no storage dependencies.
package zones

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

const MinPairs = 2

var (
	ErrTooFewPairs       = errors.New("zone needs at least two pairs")
	ErrDuplicatePair     = errors.New("pair listed twice in zone")
	ErrUnsupportedFormat = errors.New("zone format not supported for this zone size")
)

// Source refers to the winner or loser of an earlier fixture by its index in the schedule.
type Source struct {
	Fixture int
	Outcome models.Outcome
}

// Fixture is a match to be created. A slot has either a pair or a source.
type Fixture struct {
	Kind      models.ZoneMatchKind
	Pair1ID   *int
	Pair2ID   *int
	Pair1From *Source
	Pair2From *Source
}

// Schedule builds the fixtures of a zone in play order. Sources always point to an earlier
// fixture, so fixtures can be persisted in order.
func Schedule(format models.ZoneFormat, pairIDs []int) ([]Fixture, error) {
	if len(pairIDs) < MinPairs {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPairs, len(pairIDs))
	}
	seen := make(map[int]bool, len(pairIDs))
	for _, id := range pairIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePair, id)
		}
		seen[id] = true
	}

	switch format {
	case models.ZoneFormatRoundRobin, "":
		return RoundRobin(pairIDs), nil
	case models.ZoneFormatChained:
		return Chained(pairIDs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrUnsupportedFormat, format)
	}
}

// RoundRobin pairs every pair with every other pair once, ordered by the circle method so
// that nobody plays twice in a row when it can be avoided.
func RoundRobin(pairIDs []int) []Fixture {
	n := len(pairIDs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Нечётное число пар: добавляем фиктивного участника (-1) для «выходного».
	if n%2 != 0 {
		idx = append(idx, -1)
	}
	size := len(idx)
	half := size / 2

	fixtures := make([]Fixture, 0, n*(n-1)/2)
	for round := 1; round < size; round++ {
		for i := 0; i < half; i++ {
			a, b := idx[i], idx[size-1-i]
			if a < 0 || b < 0 {
				continue
			}
			p1, p2 := pairIDs[a], pairIDs[b]
			fixtures = append(fixtures, Fixture{
				Kind:    models.ZoneMatchRoundRobin,
				Pair1ID: &p1,
				Pair2ID: &p2,
			})
		}
		// rotate all but the first
		idx = append([]int{idx[0], idx[size-1]}, idx[1:size-1]...)
	}
	return fixtures
}

// Chained builds the dependency-chained formats.
//
// Three pairs: A–B, then loser(1)–C, then winner(1)–C.
// Four pairs: A–B, C–D, winner(1)–winner(2), loser(1)–loser(2).
func Chained(pairIDs []int) ([]Fixture, error) {
	ids := append([]int(nil), pairIDs...)
	switch len(ids) {
	case 3:
		a, b, c := ids[0], ids[1], ids[2]
		return []Fixture{
			{Kind: models.ZoneMatchChained, Pair1ID: &a, Pair2ID: &b},
			{Kind: models.ZoneMatchChained, Pair1From: &Source{Fixture: 0, Outcome: models.OutcomeLoser}, Pair2ID: &c},
			{Kind: models.ZoneMatchChained, Pair1From: &Source{Fixture: 0, Outcome: models.OutcomeWinner}, Pair2ID: &c},
		}, nil
	case 4:
		a, b, c, d := ids[0], ids[1], ids[2], ids[3]
		return []Fixture{
			{Kind: models.ZoneMatchChained, Pair1ID: &a, Pair2ID: &b},
			{Kind: models.ZoneMatchChained, Pair1ID: &c, Pair2ID: &d},
			{
				Kind:      models.ZoneMatchChained,
				Pair1From: &Source{Fixture: 0, Outcome: models.OutcomeWinner},
				Pair2From: &Source{Fixture: 1, Outcome: models.OutcomeWinner},
			},
			{
				Kind:      models.ZoneMatchChained,
				Pair1From: &Source{Fixture: 0, Outcome: models.OutcomeLoser},
				Pair2From: &Source{Fixture: 1, Outcome: models.OutcomeLoser},
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: chained format needs 3 or 4 pairs, got %d", ErrUnsupportedFormat, len(ids))
	}
}

// Outcome returns the pair that fills a slot sourced from a finalized match.
func Outcome(m *models.ZoneMatch, outcome models.Outcome) *int {
	if m == nil || m.Status != models.MatchFinalized || m.WinnerPairID == nil {
		return nil
	}
	if outcome == models.OutcomeWinner {
		return m.WinnerPairID
	}
	return m.LoserPairID()
}
