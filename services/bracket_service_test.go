package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/models"
)

func TestGenerate_TwelvePairs(t *testing.T) {
	e := newEnv(t)
	s := e.setupCategory(1, 3, 3, 3, 3)

	gen, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
	require.NoError(t, err)

	assert.Equal(t, 12, gen.PairCount)
	assert.Equal(t, 7, gen.MatchCount)
	assert.Equal(t, []models.RoundName{models.Quarterfinal, models.Semifinal, models.Final}, gen.Rounds)
	assert.Len(t, e.db.st.bracket, 7)
	assert.Equal(t, 1, e.metrics.brackets)
	assert.Equal(t, 1, e.notifier.count(brackets.EventBracketUpdated))

	qualified := map[int]bool{}
	for _, zp := range s.zonePairs {
		qualified[zp[0]], qualified[zp[1]] = true, true
	}
	seen := map[int]bool{}
	for _, m := range gen.Matches {
		if m.Round != models.Quarterfinal {
			assert.Nil(t, m.Pair1ID)
			assert.Nil(t, m.Pair2ID)
			continue
		}
		require.True(t, m.SlotsFilled())
		for _, id := range []int{*m.Pair1ID, *m.Pair2ID} {
			assert.True(t, qualified[id], "pair %d did not qualify", id)
			assert.False(t, seen[id], "pair %d seeded twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 8)

	tc := e.db.st.tournamentCats[[2]int{s.tournament.ID, s.category.ID}]
	assert.NotNil(t, tc.BracketGeneratedAt)
}

func TestGenerate_OnlyOnce(t *testing.T) {
	e := newEnv(t)
	s := e.setupCategory(1, 3, 3)

	_, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
	require.NoError(t, err)
	before := len(e.db.st.bracket)

	_, err = e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
	require.ErrorIs(t, err, ErrBracketExists)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Len(t, e.db.st.bracket, before)
}

func TestGenerate_Rejections(t *testing.T) {
	t.Run("unsupported pair count", func(t *testing.T) {
		e := newEnv(t)
		s := e.setupCategory(1, 3, 2)
		_, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
		require.ErrorIs(t, err, ErrUnsupportedConfiguration)
		require.ErrorIs(t, err, brackets.ErrUnsupportedPairCount)
		assert.Empty(t, e.db.st.bracket)
	})

	t.Run("zone layout mismatch", func(t *testing.T) {
		e := newEnv(t)
		s := e.setupCategory(1, 3, 2, 2)
		_, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
		require.ErrorIs(t, err, ErrUnsupportedConfiguration)
		assert.Empty(t, e.db.st.bracket)
	})

	t.Run("no zones", func(t *testing.T) {
		e := newEnv(t)
		c := e.category("4ta")
		tr := e.tournament(1, c.ID)
		_, err := e.brackets.Generate(e.ctx, tr.ID, c.ID)
		require.ErrorIs(t, err, ErrNoZones)
	})

	t.Run("zone still open", func(t *testing.T) {
		e := newEnv(t)
		s := e.setupCategory(1, 3)
		pairs := e.registerPairs(s.tournament.ID, s.category.ID, 3)
		e.zone(s.tournament.ID, s.category.ID, models.ZoneFormatRoundRobin, pairs)
		_, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
		require.ErrorIs(t, err, ErrZonesNotFinalized)
		tc := e.db.st.tournamentCats[[2]int{s.tournament.ID, s.category.ID}]
		assert.Nil(t, tc.BracketGeneratedAt)
	})

	t.Run("category outside tournament", func(t *testing.T) {
		e := newEnv(t)
		s := e.setupCategory(1, 3, 3)
		other := e.category("Libre")
		_, err := e.brackets.Generate(e.ctx, s.tournament.ID, other.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBracketSubmit_Propagation(t *testing.T) {
	e := newEnv(t)
	s := e.setupCategory(1, 3, 3, 3, 3)
	gen, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
	require.NoError(t, err)

	byPos := map[[2]int]models.BracketMatch{}
	for _, m := range gen.Matches {
		byPos[[2]int{m.RoundIndex, m.Position}] = m
	}
	semi := byPos[[2]int{2, 1}]
	_, err = e.brackets.SubmitResult(e.ctx, semi.ID, straightSets())
	require.ErrorIs(t, err, ErrMatchSlotsOpen)

	qf1, qf2 := byPos[[2]int{1, 1}], byPos[[2]int{1, 2}]
	res, err := e.brackets.SubmitResult(e.ctx, qf1.ID, straightSets())
	require.NoError(t, err)
	assert.Equal(t, &brackets.Link{RoundIndex: 2, Position: 1, Slot: 1}, res.AdvancedTo)
	assert.False(t, res.FinalDecided)

	res, err = e.brackets.SubmitResult(e.ctx, qf2.ID, flip(straightSets()))
	require.NoError(t, err)
	assert.Equal(t, &brackets.Link{RoundIndex: 2, Position: 1, Slot: 2}, res.AdvancedTo)

	stored := e.db.st.bracket[semi.ID]
	require.True(t, stored.SlotsFilled())
	assert.Equal(t, *qf1.Pair1ID, *stored.Pair1ID)
	assert.Equal(t, *qf2.Pair2ID, *stored.Pair2ID)

	_, err = e.brackets.SubmitResult(e.ctx, qf1.ID, straightSets())
	require.ErrorIs(t, err, ErrMatchFinalized)

	_, err = e.brackets.SubmitResult(e.ctx, semi.ID, []models.SetScore{set(6, 4), set(6, 4), set(6, 4)})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.MatchPending, e.db.st.bracket[semi.ID].Status)
}

func TestBracketSubmit_FullDraw(t *testing.T) {
	e := newEnv(t)
	s := e.setupCategory(1, 3, 3, 3, 3)
	_, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
	require.NoError(t, err)

	last := e.playBracket(s.tournament.ID, s.category.ID, higherSeed)
	require.NotNil(t, last)
	assert.True(t, last.FinalDecided)
	assert.Nil(t, last.AdvancedTo)

	view, err := e.brackets.GetBracket(e.ctx, s.tournament.ID, s.category.ID)
	require.NoError(t, err)
	require.Len(t, view.Rounds, 3)
	assert.Equal(t, models.Final, view.Rounds[2].Name)
	require.NotNil(t, view.Champion)
	assert.Equal(t, *view.Rounds[2].Matches[0].WinnerPairID, *view.Champion)
	assert.Len(t, view.Pairs, 12)
	for _, round := range view.Rounds {
		for _, m := range round.Matches {
			assert.Equal(t, models.MatchFinalized, m.Status, "round %s position %d", round.Name, m.Position)
		}
	}
}

func TestBracketSubmit_ByesSeedSecondRound(t *testing.T) {
	e := newEnv(t)
	s := e.setupCategory(1, 4, 3, 3)
	gen, err := e.brackets.Generate(e.ctx, s.tournament.ID, s.category.ID)
	require.NoError(t, err)

	topology, err := e.brackets.Topology(e.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, topology.MatchCount(), gen.MatchCount)
	assert.Less(t, len(topology.Rounds[0].Matches), topology.DrawSize/2)

	last := e.playBracket(s.tournament.ID, s.category.ID, higherSeed)
	require.NotNil(t, last)
	assert.True(t, last.FinalDecided)
}

func TestGetBracket_Missing(t *testing.T) {
	e := newEnv(t)
	c := e.category("4ta")
	tr := e.tournament(1, c.ID)

	_, err := e.brackets.GetBracket(e.ctx, tr.ID, c.ID)
	require.ErrorIs(t, err, ErrBracketMissing)

	_, err = e.brackets.GetBracket(e.ctx, tr.ID, c.ID+100)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTopology_Unsupported(t *testing.T) {
	e := newEnv(t)
	_, err := e.brackets.Topology(e.ctx, brackets.MinPairCount-1)
	require.ErrorIs(t, err, ErrUnsupportedConfiguration)
	_, err = e.brackets.Topology(e.ctx, brackets.MaxPairCount+1)
	require.ErrorIs(t, err, ErrUnsupportedConfiguration)
}
