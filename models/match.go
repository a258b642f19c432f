package models

import "time"

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchFinalized MatchStatus = "finalized"
)

// MaxSets is the length of a best-of-three match.
const MaxSets = 3

// SetScore holds the games of one set. A nil side means the value was not submitted.
type SetScore struct {
	P1 *int `json:"p1"`
	P2 *int `json:"p2"`
}

func (s SetScore) IsEmpty() bool {
	return s.P1 == nil && s.P2 == nil
}

// Outcome selects which side of a finished match feeds a dependent slot.
type Outcome string

const (
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

type ZoneMatchKind string

const (
	ZoneMatchRoundRobin ZoneMatchKind = "round_robin"
	ZoneMatchChained    ZoneMatchKind = "chained"
	ZoneMatchTiebreak   ZoneMatchKind = "tiebreak"
)

// SlotSource points a zone match slot at the winner or loser of an earlier match.
type SlotSource struct {
	MatchID int     `json:"match_id"`
	Outcome Outcome `json:"outcome"`
}

type ZoneMatch struct {
	ID           int           `json:"id" db:"id"`
	ZoneID       int           `json:"zone_id" db:"zone_id"`
	Kind         ZoneMatchKind `json:"kind" db:"kind"`
	Order        int           `json:"order" db:"match_order"`
	Pair1ID      *int          `json:"pair1_id,omitempty" db:"pair1_id"`
	Pair2ID      *int          `json:"pair2_id,omitempty" db:"pair2_id"`
	Pair1Source  *SlotSource   `json:"pair1_source,omitempty" db:"-"`
	Pair2Source  *SlotSource   `json:"pair2_source,omitempty" db:"-"`
	Sets         []SetScore    `json:"sets" db:"-"`
	WinnerPairID *int          `json:"winner_pair_id,omitempty" db:"winner_pair_id"`
	Status       MatchStatus   `json:"status" db:"status"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// LoserPairID returns the pair that lost a finalized match.
func (m *ZoneMatch) LoserPairID() *int {
	return loserOf(m.WinnerPairID, m.Pair1ID, m.Pair2ID)
}

// RoundName is the elimination level of a bracket match.
type RoundName string

const (
	RoundOf32    RoundName = "round_of_32"
	RoundOf16    RoundName = "round_of_16"
	Quarterfinal RoundName = "quarterfinal"
	Semifinal    RoundName = "semifinal"
	Final        RoundName = "final"
)

type BracketMatch struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	CategoryID   int         `json:"category_id" db:"category_id"`
	Round        RoundName   `json:"round" db:"round_name"`
	RoundIndex   int         `json:"round_index" db:"round_index"`
	Position     int         `json:"position" db:"position"`
	Pair1ID      *int        `json:"pair1_id,omitempty" db:"pair1_id"`
	Pair2ID      *int        `json:"pair2_id,omitempty" db:"pair2_id"`
	Seed1        *string     `json:"seed1,omitempty" db:"seed1"`
	Seed2        *string     `json:"seed2,omitempty" db:"seed2"`
	Sets         []SetScore  `json:"sets" db:"-"`
	WinnerPairID *int        `json:"winner_pair_id,omitempty" db:"winner_pair_id"`
	Status       MatchStatus `json:"status" db:"status"`

	// Adjacency row: where the winner of this match goes. Nil for the final.
	NextRoundIndex *int `json:"next_round_index,omitempty" db:"next_round_index"`
	NextPosition   *int `json:"next_position,omitempty" db:"next_position"`
	NextSlot       *int `json:"next_slot,omitempty" db:"next_slot"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (m *BracketMatch) LoserPairID() *int {
	return loserOf(m.WinnerPairID, m.Pair1ID, m.Pair2ID)
}

func (m *BracketMatch) SlotsFilled() bool {
	return m.Pair1ID != nil && m.Pair2ID != nil
}

func loserOf(winner, p1, p2 *int) *int {
	if winner == nil || p1 == nil || p2 == nil {
		return nil
	}
	if *winner == *p1 {
		return p2
	}
	return p1
}
