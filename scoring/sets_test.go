package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-circuit/models"
)

func set(p1, p2 int) models.SetScore {
	return models.SetScore{P1: &p1, P2: &p2}
}

func TestSetWinner(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 int
		want   Side
	}{
		{"six four", 6, 4, Side1},
		{"six five is unfinished", 6, 5, SideNone},
		{"seven five", 7, 5, Side1},
		{"seven six tiebreak", 7, 6, Side1},
		{"six seven tiebreak", 6, 7, Side2},
		{"six all", 6, 6, SideNone},
		{"love six", 0, 6, Side2},
		{"five three unfinished", 5, 3, SideNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetWinner(tt.p1, tt.p2))
		})
	}
}

func TestEvaluate_ThreeSetWin(t *testing.T) {
	res, err := Evaluate([]models.SetScore{set(6, 4), set(3, 6), set(7, 5)})
	require.NoError(t, err)

	assert.Equal(t, Side1, res.Winner)
	assert.Equal(t, 2, res.SetsP1)
	assert.Equal(t, 1, res.SetsP2)
	assert.Equal(t, 16, res.GamesP1)
	assert.Equal(t, 15, res.GamesP2)
	assert.Equal(t, []Side{Side1, Side2, Side1}, res.SetWinners)
}

func TestEvaluate_OneAllHasNoWinner(t *testing.T) {
	res, err := Evaluate([]models.SetScore{set(6, 4), set(3, 6)})
	require.NoError(t, err)
	assert.False(t, res.Decided())
	assert.Equal(t, 1, res.SetsP1)
	assert.Equal(t, 1, res.SetsP2)
}

func TestEvaluate_PartialSetIsSaved(t *testing.T) {
	four := 4
	res, err := Evaluate([]models.SetScore{set(6, 2), {P1: &four}})
	require.NoError(t, err)
	assert.False(t, res.Decided())
	assert.Equal(t, 10, res.GamesP1)
	assert.Equal(t, 2, res.GamesP2)
	assert.Equal(t, []Side{Side1, SideNone}, res.SetWinners)
}

func TestEvaluate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		sets      []models.SetScore
		wantField string
	}{
		{"game above seven", []models.SetScore{set(8, 6)}, "sets[0].p1"},
		{"negative game", []models.SetScore{set(6, 4), set(6, -1)}, "sets[1].p2"},
		{"third set after two-nil", []models.SetScore{set(6, 4), set(6, 3), set(6, 0)}, "sets[2]"},
		{"too many sets", []models.SetScore{set(6, 4), set(3, 6), set(6, 4), set(6, 4)}, "sets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.sets)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScore)

			var scoreErr *ScoreError
			require.ErrorAs(t, err, &scoreErr)
			assert.Equal(t, tt.wantField, scoreErr.Field)
		})
	}
}

func TestEvaluate_EmptyThirdSetAfterTwoNilIsAccepted(t *testing.T) {
	res, err := Evaluate([]models.SetScore{set(6, 4), set(6, 3), {}})
	require.NoError(t, err)
	assert.Equal(t, Side1, res.Winner)
}

func TestEvaluate_WinnerMatchesSetMajority(t *testing.T) {
	// every valid finished set score, both orders, over two- and three-set sheets
	var finished [][2]int
	for a := MinGames; a <= MaxGames; a++ {
		for b := MinGames; b <= MaxGames; b++ {
			if SetWinner(a, b) != SideNone {
				finished = append(finished, [2]int{a, b})
			}
		}
	}

	for _, s1 := range finished {
		for _, s2 := range finished {
			sheet := []models.SetScore{set(s1[0], s1[1]), set(s2[0], s2[1])}
			res, err := Evaluate(sheet)
			require.NoError(t, err)

			w1, w2 := SetWinner(s1[0], s1[1]), SetWinner(s2[0], s2[1])
			if w1 == w2 {
				assert.Equal(t, w1, res.Winner)
				continue
			}
			assert.Equal(t, SideNone, res.Winner)

			for _, s3 := range finished {
				res3, err := Evaluate(append(sheet, set(s3[0], s3[1])))
				require.NoError(t, err)
				assert.Equal(t, SetWinner(s3[0], s3[1]), res3.Winner)
			}
		}
	}
}

func TestDeltas(t *testing.T) {
	res, err := Evaluate([]models.SetScore{set(6, 4), set(3, 6), set(7, 5)})
	require.NoError(t, err)

	d1, d2 := Deltas(res)
	assert.Equal(t, models.StatsDelta{MatchesWon: 1, SetsWon: 2, SetsLost: 1, GamesWon: 16, GamesLost: 15}, d1)
	assert.Equal(t, models.StatsDelta{MatchesLost: 1, SetsWon: 1, SetsLost: 2, GamesWon: 15, GamesLost: 16}, d2)
}

func TestWinnerPair(t *testing.T) {
	assert.Equal(t, 20, *WinnerPair(Result{Winner: Side2}, 10, 20))
	assert.Nil(t, WinnerPair(Result{}, 10, 20))
}
