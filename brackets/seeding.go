package brackets

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/padel-circuit/models"
)

var ErrInvalidSeed = errors.New("invalid seed label")

// Seed names a qualifier by zone rank and zone position, printed as "1A" for the winner
// of zone A.
type Seed struct {
	Rank int
	Zone int
}

func (s Seed) String() string {
	return strconv.Itoa(s.Rank) + models.ZoneLetter(s.Zone)
}

// ParseSeed reads a label such as "2C".
func ParseSeed(label string) (Seed, error) {
	if len(label) < 2 {
		return Seed{}, fmt.Errorf("%w: %q", ErrInvalidSeed, label)
	}
	letter := label[len(label)-1]
	if letter < 'A' || letter > 'Z' {
		return Seed{}, fmt.Errorf("%w: %q", ErrInvalidSeed, label)
	}
	rank, err := strconv.Atoi(label[:len(label)-1])
	if err != nil || rank < 1 {
		return Seed{}, fmt.Errorf("%w: %q", ErrInvalidSeed, label)
	}
	return Seed{Rank: rank, Zone: int(letter-'A') + 1}, nil
}

// seedOrder returns the standard draw order for a power-of-two draw: seed 1 and seed 2
// can only meet in the final, and every first-round match pairs seed s with size+1-s.
func seedOrder(size int) []int {
	order := []int{1, 2}
	for len(order) < size {
		n := len(order) * 2
		next := make([]int, 0, n)
		for _, s := range order {
			next = append(next, s, n+1-s)
		}
		order = next
	}
	return order
}

// seedLabels ranks qualifiers of z zones: all zone winners first (A, B, …), then all
// runners-up in the same zone order.
func seedLabels(zones int) []Seed {
	labels := make([]Seed, 0, 2*zones)
	for rank := 1; rank <= 2; rank++ {
		for z := 1; z <= zones; z++ {
			labels = append(labels, Seed{Rank: rank, Zone: z})
		}
	}
	return labels
}

// pairing is two draw slots whose seeds meet in their first match.
type pairing [2]int

// firstMeetings lists the seeded first matches of a draw. A slot without a seed is a bye:
// its opponent meets the winner of the neighbouring round-one match, or its seed directly
// when that neighbour is a bye too.
func firstMeetings(slots []*Seed) []pairing {
	var out []pairing
	for i := 0; i < len(slots); i += 2 {
		a, b := slots[i], slots[i+1]
		switch {
		case a != nil && b != nil:
			out = append(out, pairing{i, i + 1})
		case a == nil && b == nil:
			// never produced: byes are fewer than half the draw
		default:
			// the sibling round-one match feeds the same round-two match
			sib := i ^ 2
			if i > sib {
				continue
			}
			self := i
			if a == nil {
				self = i + 1
			}
			sa, sb := slots[sib], slots[sib+1]
			if (sa == nil) == (sb == nil) {
				continue
			}
			other := sib
			if sa == nil {
				other = sib + 1
			}
			out = append(out, pairing{self, other})
		}
	}
	return out
}

func sameZone(slots []*Seed, p pairing) bool {
	return slots[p[0]].Zone == slots[p[1]].Zone
}

func runnerUpSlot(slots []*Seed, p pairing) int {
	if slots[p[0]].Rank == 2 {
		return p[0]
	}
	if slots[p[1]].Rank == 2 {
		return p[1]
	}
	return -1
}

// separateZones swaps runner-up seeds until no seeded first match pairs two qualifiers of
// the same zone.
func separateZones(slots []*Seed) error {
	meetings := firstMeetings(slots)
	for i, p := range meetings {
		if !sameZone(slots, p) {
			continue
		}
		from := runnerUpSlot(slots, p)
		if from < 0 {
			return fmt.Errorf("seeds %s and %s share a zone", slots[p[0]], slots[p[1]])
		}

		fixed := false
		for j, q := range meetings {
			if j == i {
				continue
			}
			to := runnerUpSlot(slots, q)
			if to < 0 {
				continue
			}
			slots[from], slots[to] = slots[to], slots[from]
			if !sameZone(slots, p) && !sameZone(slots, q) {
				fixed = true
				break
			}
			slots[from], slots[to] = slots[to], slots[from]
		}
		if !fixed {
			return fmt.Errorf("cannot separate zone %s in the first round", models.ZoneLetter(slots[p[0]].Zone))
		}
	}
	return nil
}
