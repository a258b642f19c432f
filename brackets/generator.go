package brackets

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrZoneLayoutMismatch = errors.New("zone composition does not match the bracket topology")
	ErrZoneNotRanked      = errors.New("zone has no frozen ranking")
)

// Qualifiers maps every seed label of the finalized zones to the pair holding it. Only the
// first two ranks of each zone qualify.
func Qualifiers(zones []models.Zone) (map[string]int, error) {
	seeds := make(map[string]int, 2*len(zones))
	for _, z := range zones {
		if z.Status != models.ZoneFinalized {
			return nil, fmt.Errorf("%w: zone %s is %s", ErrZoneNotRanked, z.Letter(), z.Status)
		}
		for _, e := range z.Entries {
			if e.FinalRank == nil {
				return nil, fmt.Errorf("%w: zone %s pair %d", ErrZoneNotRanked, z.Letter(), e.PairID)
			}
			if *e.FinalRank > 2 {
				continue
			}
			seeds[Seed{Rank: *e.FinalRank, Zone: z.Position}.String()] = e.PairID
		}
	}
	return seeds, nil
}

// CheckLayout verifies that the zones have the composition the topology was built for.
func CheckLayout(t *Topology, zones []models.Zone) error {
	if len(zones) != t.Zones() {
		return fmt.Errorf("%w: %d zones, topology for %d pairs expects %d", ErrZoneLayoutMismatch, len(zones), t.PairCount, t.Zones())
	}
	got := make([]int, 0, len(zones))
	positions := make(map[int]bool, len(zones))
	for _, z := range zones {
		got = append(got, len(z.Entries))
		if z.Position < 1 || z.Position > len(zones) || positions[z.Position] {
			return fmt.Errorf("%w: zone positions must be 1..%d without gaps", ErrZoneLayoutMismatch, len(zones))
		}
		positions[z.Position] = true
	}
	want := append([]int(nil), t.ZoneSizes...)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return fmt.Errorf("%w: zone sizes %v, expected %v", ErrZoneLayoutMismatch, got, want)
	}
	return nil
}

// Generate instantiates every topology match for a tournament category, resolving seed
// labels to pairs and copying the adjacency rows used by propagation.
func Generate(t *Topology, tournamentID, categoryID int, zones []models.Zone) ([]models.BracketMatch, error) {
	if err := CheckLayout(t, zones); err != nil {
		return nil, err
	}
	seeds, err := Qualifiers(zones)
	if err != nil {
		return nil, err
	}

	matches := make([]models.BracketMatch, 0, t.MatchCount())
	for _, round := range t.Rounds {
		for _, slot := range round.Matches {
			m := models.BracketMatch{
				TournamentID: tournamentID,
				CategoryID:   categoryID,
				Round:        round.Name,
				RoundIndex:   round.Index,
				Position:     slot.Position,
				Status:       models.MatchPending,
			}
			if m.Pair1ID, m.Seed1, err = resolve(seeds, slot.Seed1); err != nil {
				return nil, err
			}
			if m.Pair2ID, m.Seed2, err = resolve(seeds, slot.Seed2); err != nil {
				return nil, err
			}
			if slot.Next != nil {
				ri, pos, side := slot.Next.RoundIndex, slot.Next.Position, slot.Next.Slot
				m.NextRoundIndex, m.NextPosition, m.NextSlot = &ri, &pos, &side
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func resolve(seeds map[string]int, label string) (*int, *string, error) {
	if label == "" {
		return nil, nil, nil
	}
	pairID, ok := seeds[label]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no pair for seed %s", ErrZoneLayoutMismatch, label)
	}
	l := label
	return &pairID, &l, nil
}
