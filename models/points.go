package models

import "time"

// Instance is the terminal stage a pair reached in a tournament.
type Instance string

const (
	InstanceChampion        Instance = "champion"
	InstanceRunnerUp        Instance = "runner_up"
	InstanceSemifinalist    Instance = "semifinalist"
	InstanceQuarterfinalist Instance = "quarterfinalist"
	InstanceRoundOf16       Instance = "round_of_16"
	InstanceRoundOf32       Instance = "round_of_32"
	InstanceZoneEliminated  Instance = "zone_eliminated"
)

// instanceRank orders instances best first; lower is better.
var instanceRank = map[Instance]int{
	InstanceChampion:        1,
	InstanceRunnerUp:        2,
	InstanceSemifinalist:    3,
	InstanceQuarterfinalist: 4,
	InstanceRoundOf16:       5,
	InstanceRoundOf32:       6,
	InstanceZoneEliminated:  7,
}

// AllInstances lists every instance, best first.
func AllInstances() []Instance {
	return []Instance{
		InstanceChampion, InstanceRunnerUp, InstanceSemifinalist, InstanceQuarterfinalist,
		InstanceRoundOf16, InstanceRoundOf32, InstanceZoneEliminated,
	}
}

func (i Instance) Valid() bool {
	_, ok := instanceRank[i]
	return ok
}

// Better reports whether i is a strictly better finish than other. Unknown instances lose.
func (i Instance) Better(other Instance) bool {
	ri, ok := instanceRank[i]
	if !ok {
		return false
	}
	ro, ok := instanceRank[other]
	if !ok {
		return true
	}
	return ri < ro
}

// LoserInstance is the instance reached by the loser of a match in the given round.
func LoserInstance(round RoundName) Instance {
	switch round {
	case Final:
		return InstanceRunnerUp
	case Semifinal:
		return InstanceSemifinalist
	case Quarterfinal:
		return InstanceQuarterfinalist
	case RoundOf16:
		return InstanceRoundOf16
	case RoundOf32:
		return InstanceRoundOf32
	default:
		return InstanceZoneEliminated
	}
}

// PointsRule is one row of the points table. CategoryID nil is the default table.
type PointsRule struct {
	CategoryID *int     `json:"category_id,omitempty" db:"category_id"`
	Instance   Instance `json:"instance" db:"instance"`
	Points     int      `json:"points" db:"points"`
}

type PointsLedgerEntry struct {
	ID           int       `json:"id" db:"id"`
	CompetitorID int       `json:"competitor_id" db:"competitor_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	PairID       int       `json:"pair_id" db:"pair_id"`
	Instance     Instance  `json:"instance" db:"instance"`
	Points       int       `json:"points" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SeasonStanding is the cumulative per-category total of a competitor in a season.
type SeasonStanding struct {
	CompetitorID      int       `json:"competitor_id" db:"competitor_id"`
	CategoryID        int       `json:"category_id" db:"category_id"`
	Season            int       `json:"season" db:"season"`
	TotalPoints       int       `json:"total_points" db:"total_points"`
	BestInstance      Instance  `json:"best_instance" db:"best_instance"`
	TournamentsPlayed int       `json:"tournaments_played" db:"tournaments_played"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	Competitor *Competitor `json:"competitor,omitempty" db:"-"`
}
