package models

import "time"

type Competitor struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (c *Competitor) DisplayName() string {
	if c == nil {
		return "N/A"
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Pair: два игрока, записанные вместе на один турнир и категорию.
type Pair struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	CategoryID    int       `json:"category_id" db:"category_id"`
	Competitor1ID int       `json:"competitor1_id" db:"competitor1_id"`
	Competitor2ID int       `json:"competitor2_id" db:"competitor2_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Competitor1 *Competitor `json:"competitor1,omitempty" db:"-"`
	Competitor2 *Competitor `json:"competitor2,omitempty" db:"-"`
}

func (p *Pair) CompetitorIDs() []int {
	return []int{p.Competitor1ID, p.Competitor2ID}
}
