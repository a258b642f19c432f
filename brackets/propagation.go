package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

var (
	ErrSlotOccupied = errors.New("bracket slot already holds another pair")
	ErrNoAdjacency  = errors.New("bracket match has no successor")
)

// Advance returns where the winner of a decided match goes. ok is false for the final.
func Advance(m *models.BracketMatch) (Link, bool) {
	if m.NextRoundIndex == nil || m.NextPosition == nil || m.NextSlot == nil {
		return Link{}, false
	}
	return Link{RoundIndex: *m.NextRoundIndex, Position: *m.NextPosition, Slot: *m.NextSlot}, true
}

// Place writes pairID into the given slot of next. Writing the same pair again is a no-op.
func Place(next *models.BracketMatch, slot, pairID int) error {
	var target **int
	switch slot {
	case 1:
		target = &next.Pair1ID
	case 2:
		target = &next.Pair2ID
	default:
		return fmt.Errorf("%w: slot %d", ErrNoAdjacency, slot)
	}
	if *target != nil {
		if **target == pairID {
			return nil
		}
		return fmt.Errorf("%w: round %d position %d slot %d", ErrSlotOccupied, next.RoundIndex, next.Position, slot)
	}
	id := pairID
	*target = &id
	return nil
}

// IsFinal reports whether m is the last match of the bracket.
func IsFinal(m *models.BracketMatch) bool {
	return m.NextRoundIndex == nil
}
