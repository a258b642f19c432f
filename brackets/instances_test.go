package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-circuit/models"
)

func slotOne(*models.BracketMatch) int { return 1 }

// playOut decides every match round by round and propagates through the adjacency rows.
func playOut(t *testing.T, matches []models.BracketMatch, pick func(*models.BracketMatch) int) {
	t.Helper()
	for ri := 1; ; ri++ {
		played := false
		for i := range matches {
			m := &matches[i]
			if m.RoundIndex != ri {
				continue
			}
			played = true
			require.True(t, m.SlotsFilled(), "round %d position %d", m.RoundIndex, m.Position)
			w := decide(m, pick(m))
			if link, ok := Advance(m); ok {
				require.NoError(t, Place(find(matches, link.RoundIndex, link.Position), link.Slot, w))
			}
		}
		if !played {
			return
		}
	}
}

func TestInstancesReached(t *testing.T) {
	topo, err := Lookup(12)
	require.NoError(t, err)
	zones := rankedZones(topo.ZoneSizes)
	matches, err := Generate(topo, 1, 1, zones)
	require.NoError(t, err)
	playOut(t, matches, slotOne)

	var all []int
	for _, z := range zones {
		for _, e := range z.Entries {
			all = append(all, e.PairID)
		}
	}

	got, err := InstancesReached(matches, all)
	require.NoError(t, err)
	require.Len(t, got, 12)

	counts := map[models.Instance]int{}
	for _, inst := range got {
		counts[inst]++
	}
	assert.Equal(t, 1, counts[models.InstanceChampion])
	assert.Equal(t, 1, counts[models.InstanceRunnerUp])
	assert.Equal(t, 2, counts[models.InstanceSemifinalist])
	assert.Equal(t, 4, counts[models.InstanceQuarterfinalist])
	assert.Equal(t, 4, counts[models.InstanceZoneEliminated])

	// slot 1 always wins, so the seed in the first slot of the first match takes the title
	assert.Equal(t, models.InstanceChampion, got[101])
	assert.Equal(t, models.InstanceZoneEliminated, got[103])
}

func TestInstancesReached_ByeLoserGetsRoundTwoInstance(t *testing.T) {
	topo, err := Lookup(9)
	require.NoError(t, err)
	matches, err := Generate(topo, 1, 1, rankedZones(topo.ZoneSizes))
	require.NoError(t, err)

	// zone winners A and B skip round one and lose their first match
	playOut(t, matches, func(m *models.BracketMatch) int {
		if m.RoundIndex == 2 {
			return 2
		}
		return 1
	})

	got, err := InstancesReached(matches, nil)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceSemifinalist, got[101])
	assert.Equal(t, models.InstanceSemifinalist, got[201])
	assert.Equal(t, models.InstanceChampion, got[302])
}

func TestInstancesReached_RequiresDecidedFinal(t *testing.T) {
	topo, err := Lookup(6)
	require.NoError(t, err)
	matches, err := Generate(topo, 1, 1, rankedZones(topo.ZoneSizes))
	require.NoError(t, err)

	_, err = InstancesReached(matches, nil)
	assert.ErrorIs(t, err, ErrFinalNotDecided)

	_, err = InstancesReached(nil, nil)
	assert.ErrorIs(t, err, ErrFinalNotDecided)
}
