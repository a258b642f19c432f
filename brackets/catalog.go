package brackets

import (
	"errors"
	"fmt"
	"sort"
)

const (
	MinPairCount = 6
	MaxPairCount = 35
)

var ErrUnsupportedPairCount = errors.New("no bracket topology for pair count")

// zoneLayouts is the zone composition for every supported pair count: zones of three,
// with one zone of four per leftover pair.
var zoneLayouts = map[int][]int{
	6:  {3, 3},
	7:  {4, 3},
	8:  {4, 4},
	9:  {3, 3, 3},
	10: {4, 3, 3},
	11: {4, 4, 3},
	12: {3, 3, 3, 3},
	13: {4, 3, 3, 3},
	14: {4, 4, 3, 3},
	15: {3, 3, 3, 3, 3},
	16: {4, 3, 3, 3, 3},
	17: {4, 4, 3, 3, 3},
	18: {3, 3, 3, 3, 3, 3},
	19: {4, 3, 3, 3, 3, 3},
	20: {4, 4, 3, 3, 3, 3},
	21: {3, 3, 3, 3, 3, 3, 3},
	22: {4, 3, 3, 3, 3, 3, 3},
	23: {4, 4, 3, 3, 3, 3, 3},
	24: {3, 3, 3, 3, 3, 3, 3, 3},
	25: {4, 3, 3, 3, 3, 3, 3, 3},
	26: {4, 4, 3, 3, 3, 3, 3, 3},
	27: {3, 3, 3, 3, 3, 3, 3, 3, 3},
	28: {4, 3, 3, 3, 3, 3, 3, 3, 3},
	29: {4, 4, 3, 3, 3, 3, 3, 3, 3},
	30: {3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	31: {4, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	32: {4, 4, 3, 3, 3, 3, 3, 3, 3, 3},
	33: {3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	34: {4, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	35: {4, 4, 3, 3, 3, 3, 3, 3, 3, 3, 3},
}

var catalog = mustBuildCatalog()

func mustBuildCatalog() map[int]*Topology {
	c := make(map[int]*Topology, len(zoneLayouts))
	for pairs, layout := range zoneLayouts {
		t, err := buildTopology(pairs, layout)
		if err != nil {
			panic(err)
		}
		c[pairs] = t
	}
	return c
}

// Lookup returns the topology for an exact pair count. The returned value is shared and
// must not be modified.
func Lookup(pairCount int) (*Topology, error) {
	t, ok := catalog[pairCount]
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported %d-%d)", ErrUnsupportedPairCount, pairCount, MinPairCount, MaxPairCount)
	}
	return t, nil
}

// ZoneLayout returns the zone sizes expected for a pair count.
func ZoneLayout(pairCount int) ([]int, error) {
	t, err := Lookup(pairCount)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), t.ZoneSizes...), nil
}

func SupportedPairCounts() []int {
	counts := make([]int, 0, len(catalog))
	for n := range catalog {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	return counts
}
