package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие CHECK в БД.
type TournamentStatus string

const (
	TournamentScheduled  TournamentStatus = "scheduled"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentFinalized  TournamentStatus = "finalized"
)

// Tournament is one scheduled stop of the circuit for a season.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Sequence    int              `json:"sequence" db:"sequence"`
	Season      int              `json:"season" db:"season"`
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	FinalizedAt *time.Time       `json:"finalized_at,omitempty" db:"finalized_at"`

	Categories []Category `json:"categories,omitempty" db:"-"`
}

// Category is a competitive tier (e.g. "4ta", "Suma 13").
type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// TournamentCategory is the per-category anchor inside a tournament. Bracket work for the
// category is serialized on this row.
type TournamentCategory struct {
	TournamentID       int        `json:"tournament_id" db:"tournament_id"`
	CategoryID         int        `json:"category_id" db:"category_id"`
	BracketGeneratedAt *time.Time `json:"bracket_generated_at,omitempty" db:"bracket_generated_at"`
}
