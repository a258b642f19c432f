package brackets

import (
	"errors"
	"sort"

	"github.com/Dosada05/padel-circuit/models"
)

var ErrFinalNotDecided = errors.New("final match is not finalized")

// InstancesReached assigns every pair of the category its terminal instance. Matches are
// walked from the final down so each pair keeps the best instance it reached; pairs that
// never played a bracket match are zone eliminated.
func InstancesReached(matches []models.BracketMatch, pairIDs []int) (map[int]models.Instance, error) {
	sorted := make([]models.BracketMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RoundIndex != sorted[j].RoundIndex {
			return sorted[i].RoundIndex > sorted[j].RoundIndex
		}
		return sorted[i].Position < sorted[j].Position
	})

	if len(sorted) == 0 || !IsFinal(&sorted[0]) || sorted[0].Status != models.MatchFinalized || sorted[0].WinnerPairID == nil {
		return nil, ErrFinalNotDecided
	}

	reached := make(map[int]models.Instance, len(pairIDs))
	assign := func(pairID *int, inst models.Instance) {
		if pairID == nil {
			return
		}
		if cur, ok := reached[*pairID]; ok && !inst.Better(cur) {
			return
		}
		reached[*pairID] = inst
	}

	for i := range sorted {
		m := &sorted[i]
		if m.Status != models.MatchFinalized {
			continue
		}
		if IsFinal(m) {
			assign(m.WinnerPairID, models.InstanceChampion)
		}
		assign(m.LoserPairID(), models.LoserInstance(m.Round))
	}

	for _, id := range pairIDs {
		if _, ok := reached[id]; !ok {
			reached[id] = models.InstanceZoneEliminated
		}
	}
	return reached, nil
}
