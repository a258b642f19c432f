// Package scoring applies the set and match rules of a best-of-three padel match.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/models"
)

const (
	MinGames = 0
	MaxGames = 7
)

// Side identifies one side of a match. SideNone means undecided.
type Side int

const (
	SideNone Side = 0
	Side1    Side = 1
	Side2    Side = 2
)

var ErrInvalidScore = errors.New("invalid score")

// ScoreError names the offending field of a rejected submission.
type ScoreError struct {
	Field   string
	Message string
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ScoreError) Unwrap() error {
	return ErrInvalidScore
}

// Result is the evaluation of a (possibly partial) score sheet.
type Result struct {
	SetWinners []Side `json:"set_winners"`
	SetsP1     int    `json:"sets_p1"`
	SetsP2     int    `json:"sets_p2"`
	GamesP1    int    `json:"games_p1"`
	GamesP2    int    `json:"games_p2"`
	Winner     Side   `json:"winner"`
}

// Decided reports whether the match has a winner.
func (r Result) Decided() bool {
	return r.Winner != SideNone
}

// SetWinner returns the side that won a set, or SideNone when the set is unfinished.
// A side wins with at least 6 games and a 2-game lead, or with 7 against 5 or 6.
func SetWinner(p1, p2 int) Side {
	switch {
	case wins(p1, p2):
		return Side1
	case wins(p2, p1):
		return Side2
	default:
		return SideNone
	}
}

func wins(a, b int) bool {
	if a >= 6 && a-b >= 2 {
		return true
	}
	return a == 7 && (b == 5 || b == 6)
}

// Evaluate validates the submitted sets and derives set winners, totals and the match winner.
// Sets with a missing side are kept as partial and have no winner.
func Evaluate(sets []models.SetScore) (Result, error) {
	if len(sets) > models.MaxSets {
		return Result{}, &ScoreError{Field: "sets", Message: fmt.Sprintf("at most %d sets allowed, got %d", models.MaxSets, len(sets))}
	}

	res := Result{SetWinners: make([]Side, len(sets))}
	for i, set := range sets {
		if err := validateGames(i, "p1", set.P1); err != nil {
			return Result{}, err
		}
		if err := validateGames(i, "p2", set.P2); err != nil {
			return Result{}, err
		}

		if i == models.MaxSets-1 && !set.IsEmpty() && (res.SetsP1 == 2 || res.SetsP2 == 2) {
			return Result{}, &ScoreError{Field: "sets[2]", Message: "match already decided in two sets"}
		}

		if set.P1 != nil {
			res.GamesP1 += *set.P1
		}
		if set.P2 != nil {
			res.GamesP2 += *set.P2
		}
		if set.P1 == nil || set.P2 == nil {
			continue
		}

		w := SetWinner(*set.P1, *set.P2)
		res.SetWinners[i] = w
		switch w {
		case Side1:
			res.SetsP1++
		case Side2:
			res.SetsP2++
		}
	}

	switch {
	case res.SetsP1 >= 2:
		res.Winner = Side1
	case res.SetsP2 >= 2:
		res.Winner = Side2
	}
	return res, nil
}

func validateGames(set int, side string, v *int) error {
	if v == nil {
		return nil
	}
	if *v < MinGames || *v > MaxGames {
		return &ScoreError{
			Field:   fmt.Sprintf("sets[%d].%s", set, side),
			Message: fmt.Sprintf("games must be between %d and %d, got %d", MinGames, MaxGames, *v),
		}
	}
	return nil
}

// Deltas converts a decided result into the standings increments of side 1 and side 2.
func Deltas(res Result) (side1, side2 models.StatsDelta) {
	side1 = models.StatsDelta{SetsWon: res.SetsP1, SetsLost: res.SetsP2, GamesWon: res.GamesP1, GamesLost: res.GamesP2}
	side2 = models.StatsDelta{SetsWon: res.SetsP2, SetsLost: res.SetsP1, GamesWon: res.GamesP2, GamesLost: res.GamesP1}
	switch res.Winner {
	case Side1:
		side1.MatchesWon, side2.MatchesLost = 1, 1
	case Side2:
		side2.MatchesWon, side1.MatchesLost = 1, 1
	}
	return side1, side2
}

// WinnerPair maps the winning side onto the pair IDs of the match.
func WinnerPair(res Result, pair1ID, pair2ID int) *int {
	switch res.Winner {
	case Side1:
		return &pair1ID
	case Side2:
		return &pair2ID
	default:
		return nil
	}
}
