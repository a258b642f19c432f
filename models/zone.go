package models

import "time"

type ZoneStatus string

const (
	ZonePending    ZoneStatus = "pending"
	ZoneInProgress ZoneStatus = "in_progress"
	ZoneFinalized  ZoneStatus = "finalized"
)

// ZoneFormat defines how zone matches are scheduled.
type ZoneFormat string

const (
	ZoneFormatRoundRobin ZoneFormat = "round_robin"
	ZoneFormatChained    ZoneFormat = "chained"
)

// Zone is a round-robin group inside a tournament category. Position (1-based) gives the zone
// letter used by bracket seeds: 1 → A, 2 → B, …
type Zone struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	CategoryID   int        `json:"category_id" db:"category_id"`
	Name         string     `json:"name" db:"name"`
	Position     int        `json:"position" db:"position"`
	Format       ZoneFormat `json:"format" db:"format"`
	Status       ZoneStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty" db:"finalized_at"`

	Entries []ZoneEntry `json:"entries,omitempty" db:"-"`
	Matches []ZoneMatch `json:"matches,omitempty" db:"-"`
}

// Letter returns the zone letter for its position.
func (z *Zone) Letter() string {
	return ZoneLetter(z.Position)
}

func ZoneLetter(position int) string {
	if position < 1 || position > 26 {
		return "?"
	}
	return string(rune('A' + position - 1))
}

// ZoneEntry is a pair's membership and accumulated statistics in a zone.
type ZoneEntry struct {
	ZoneID      int  `json:"zone_id" db:"zone_id"`
	PairID      int  `json:"pair_id" db:"pair_id"`
	MatchesWon  int  `json:"matches_won" db:"matches_won"`
	MatchesLost int  `json:"matches_lost" db:"matches_lost"`
	SetsWon     int  `json:"sets_won" db:"sets_won"`
	SetsLost    int  `json:"sets_lost" db:"sets_lost"`
	GamesWon    int  `json:"games_won" db:"games_won"`
	GamesLost   int  `json:"games_lost" db:"games_lost"`
	FinalRank   *int `json:"final_rank,omitempty" db:"final_rank"`
}

func (e ZoneEntry) SetDiff() int {
	return e.SetsWon - e.SetsLost
}

func (e ZoneEntry) GameDiff() int {
	return e.GamesWon - e.GamesLost
}

// StatsDelta is the increment a finalized match applies to one zone entry.
type StatsDelta struct {
	MatchesWon  int
	MatchesLost int
	SetsWon     int
	SetsLost    int
	GamesWon    int
	GamesLost   int
}

type TieMethod string

const (
	TieMethodDraw     TieMethod = "draw"
	TieMethodTiebreak TieMethod = "tiebreak"
)

// TieResolution is the audit record of a triple-tie resolution. For a draw, Order is the
// drawn ranking (pair IDs, rank 1 first). For a tiebreak, Order lists the first match pair,
// then the pair with the bye.
type TieResolution struct {
	ID          string     `json:"id" db:"id"`
	ZoneID      int        `json:"zone_id" db:"zone_id"`
	Method      TieMethod  `json:"method" db:"method"`
	Seed        int64      `json:"seed" db:"seed"`
	Order       []int      `json:"order" db:"pair_order"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
