package brackets

import (
	"fmt"
	"math/bits"

	"github.com/Dosada05/padel-circuit/models"
)

// Link is an adjacency row: the winner of a match moves to Slot (1 or 2) of the match at
// (RoundIndex, Position).
type Link struct {
	RoundIndex int `json:"round_index"`
	Position   int `json:"position"`
	Slot       int `json:"slot"`
}

// MatchSlot is one match of a topology. An empty seed awaits the winner of an earlier match.
type MatchSlot struct {
	RoundIndex int    `json:"round_index"`
	Position   int    `json:"position"`
	Seed1      string `json:"seed1,omitempty"`
	Seed2      string `json:"seed2,omitempty"`
	Next       *Link  `json:"next,omitempty"`
}

type Round struct {
	Index   int              `json:"index"`
	Name    models.RoundName `json:"name"`
	Matches []MatchSlot      `json:"matches"`
}

// Topology is the fixed bracket shape for one pair count.
type Topology struct {
	PairCount int     `json:"pair_count"`
	ZoneSizes []int   `json:"zone_sizes"`
	Entrants  int     `json:"entrants"`
	DrawSize  int     `json:"draw_size"`
	Rounds    []Round `json:"rounds"`
}

func (t *Topology) Zones() int {
	return len(t.ZoneSizes)
}

func (t *Topology) MatchCount() int {
	n := 0
	for _, r := range t.Rounds {
		n += len(r.Matches)
	}
	return n
}

func (t *Topology) RoundNames() []models.RoundName {
	names := make([]models.RoundName, len(t.Rounds))
	for i, r := range t.Rounds {
		names[i] = r.Name
	}
	return names
}

// Match returns the slot at the given round index and position.
func (t *Topology) Match(roundIndex, position int) (MatchSlot, bool) {
	if roundIndex < 1 || roundIndex > len(t.Rounds) {
		return MatchSlot{}, false
	}
	for _, m := range t.Rounds[roundIndex-1].Matches {
		if m.Position == position {
			return m, true
		}
	}
	return MatchSlot{}, false
}

// RoundName labels a round by the number of matches a full draw has in it.
func RoundName(matchesInFullDraw int) models.RoundName {
	switch matchesInFullDraw {
	case 1:
		return models.Final
	case 2:
		return models.Semifinal
	case 4:
		return models.Quarterfinal
	case 8:
		return models.RoundOf16
	default:
		return models.RoundOf32
	}
}

func drawSize(entrants int) int {
	if entrants <= 2 {
		return 2
	}
	return 1 << bits.Len(uint(entrants-1))
}

// buildTopology lays out the bracket for the given zone sizes. Zone winners are the top
// seeds and receive the byes; a bye seed is placed straight into its round-two slot, so
// round one only holds the matches that are actually played.
func buildTopology(pairCount int, zoneSizes []int) (*Topology, error) {
	zones := len(zoneSizes)
	entrants := 2 * zones
	size := drawSize(entrants)
	labels := seedLabels(zones)

	slots := make([]*Seed, size)
	for i, s := range seedOrder(size) {
		if s <= entrants {
			seed := labels[s-1]
			slots[i] = &seed
		}
	}
	if err := separateZones(slots); err != nil {
		return nil, fmt.Errorf("pair count %d: %w", pairCount, err)
	}

	roundCount := bits.Len(uint(size)) - 1
	t := &Topology{
		PairCount: pairCount,
		ZoneSizes: append([]int(nil), zoneSizes...),
		Entrants:  entrants,
		DrawSize:  size,
		Rounds:    make([]Round, roundCount),
	}

	for r := 1; r <= roundCount; r++ {
		full := size >> r
		round := Round{Index: r, Name: RoundName(full)}
		if r > 1 {
			for p := 1; p <= full; p++ {
				round.Matches = append(round.Matches, MatchSlot{RoundIndex: r, Position: p, Next: nextLink(r, p, roundCount)})
			}
		}
		t.Rounds[r-1] = round
	}

	// round one: played matches get compact positions, byes seed round two directly
	first := &t.Rounds[0]
	for k := 0; k < size/2; k++ {
		a, b := slots[2*k], slots[2*k+1]
		fullPos := k + 1
		if a != nil && b != nil {
			first.Matches = append(first.Matches, MatchSlot{
				RoundIndex: 1,
				Position:   len(first.Matches) + 1,
				Seed1:      a.String(),
				Seed2:      b.String(),
				Next:       nextLink(1, fullPos, roundCount),
			})
			continue
		}
		seed := a
		if seed == nil {
			seed = b
		}
		link := nextLink(1, fullPos, roundCount)
		target := &t.Rounds[1].Matches[link.Position-1]
		if link.Slot == 1 {
			target.Seed1 = seed.String()
		} else {
			target.Seed2 = seed.String()
		}
	}
	return t, nil
}

func nextLink(roundIndex, position, roundCount int) *Link {
	if roundIndex >= roundCount {
		return nil
	}
	slot := 1
	if position%2 == 0 {
		slot = 2
	}
	return &Link{RoundIndex: roundIndex + 1, Position: (position + 1) / 2, Slot: slot}
}
