package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// innSnapshot captures every externally visible innings field so that undo
// can be checked for exact restoration.
type innSnapshot struct {
	runs, wickets, over, ballsInOver int64
	extras                           Extras
	striker, nonStriker, bowler      string
	needNewBowler                    bool
	lastOverBowler                   string
	status                           InningsStatus
	dismissed                        map[string]bool
	history                          int
}

func snapshot(inn *Innings) innSnapshot {
	dism := make(map[string]bool, len(inn.dismissed))
	for k, v := range inn.dismissed {
		dism[k] = v
	}
	return innSnapshot{
		runs:           inn.Runs,
		wickets:        inn.Wickets,
		over:           inn.Over,
		ballsInOver:    inn.BallsInOver,
		extras:         inn.Extras,
		striker:        inn.Striker,
		nonStriker:     inn.NonStriker,
		bowler:         inn.Bowler,
		needNewBowler:  inn.NeedNewBowler,
		lastOverBowler: inn.LastOverBowler,
		status:         inn.Status,
		dismissed:      dism,
		history:        len(inn.History),
	}
}

func TestUndoRestoresExactState(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	seq := []Ball{
		runs(1),
		{Runs: 4, BoundaryFour: true},
		{Extra: ExtraWide, ExtraRuns: 1},
		runs(3),
		{Extra: ExtraNoBall, ExtraRuns: 1, Runs: 1},
		{Extra: ExtraLegBye, ExtraRuns: 2},
		{Wicket: &Wicket{Batter: "Bilal", Method: DismissalCaught, Fielder: "Riz", NewBatter: "Omar"}},
	}

	for i, b := range seq {
		before := snapshot(inn)
		recorded, _, err := m.RecordBall(b)
		require.NoError(t, err, "ball %d", i)

		popped, err := m.UndoLastBall()
		require.NoError(t, err)
		assert.Equal(t, recorded, popped)
		assert.Equal(t, before, snapshot(inn), "undo of ball %d must restore the prior state", i)

		// Re-record so the sequence continues as if never undone.
		_, _, err = m.RecordBall(b)
		require.NoError(t, err)
	}
}

func TestUndoAcrossOverBoundary(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	for i := 0; i < 5; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}
	before := snapshot(inn)

	_, _, err := m.RecordBall(runs(1))
	require.NoError(t, err)
	require.True(t, inn.NeedNewBowler)
	require.Equal(t, int64(1), inn.Over)

	_, err = m.UndoLastBall()
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(inn))
	assert.False(t, inn.NeedNewBowler)
	assert.Equal(t, int64(5), inn.BallsInOver)

	// The over can be completed again after the undo.
	_, _, err = m.RecordBall(dot())
	require.NoError(t, err)
	assert.Equal(t, int64(1), inn.Over)
}

func TestUndoWicketRestoresBatter(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	_, _, err := m.RecordBall(Ball{Wicket: &Wicket{
		Batter:    "Asif",
		Method:    DismissalBowled,
		NewBatter: "Omar",
	}})
	require.NoError(t, err)
	require.True(t, inn.Dismissed("Asif"))
	require.Equal(t, "Omar", inn.Striker)

	_, err = m.UndoLastBall()
	require.NoError(t, err)

	assert.False(t, inn.Dismissed("Asif"))
	assert.Equal(t, "Asif", inn.Striker)
	assert.Equal(t, int64(0), inn.Wickets)
}

func TestUndoAfterManualStrikeSwap(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	// A manual swap before the ball is stamped into that ball's record, so
	// replay after an undo keeps the swap in place.
	require.NoError(t, m.SwapStrike())
	require.Equal(t, "Bilal", inn.Striker)

	_, _, err := m.RecordBall(runs(2))
	require.NoError(t, err)
	require.Equal(t, "Bilal", inn.Striker)

	_, _, err = m.RecordBall(runs(1))
	require.NoError(t, err)
	require.Equal(t, "Asif", inn.Striker)

	_, err = m.UndoLastBall()
	require.NoError(t, err)
	assert.Equal(t, "Bilal", inn.Striker, "replay preserves the manual swap")
}

func TestUndoAfterBowlerChange(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	for i := 0; i < 6; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}
	require.NoError(t, m.ChangeBowler("Saeed"))

	_, _, err := m.RecordBall(dot())
	require.NoError(t, err)

	_, err = m.UndoLastBall()
	require.NoError(t, err)

	// Replay cannot see the not-yet-used bowler change, so the completed
	// over's gate is raised again.
	assert.True(t, inn.NeedNewBowler)
	assert.Equal(t, "Khan", inn.LastOverBowler)

	require.NoError(t, m.ChangeBowler("Saeed"))
	_, _, err = m.RecordBall(dot())
	require.NoError(t, err)
	assert.Equal(t, "Saeed", inn.Bowler)
}

func TestRecomputeMatchesLiveState(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	seq := []Ball{
		runs(1),
		{Extra: ExtraWide, ExtraRuns: 1},
		runs(4),
		{Wicket: &Wicket{Batter: "Asif", Method: DismissalRunOut, Fielder: "Riz", NewBatter: "Omar"}},
		{Extra: ExtraBye, ExtraRuns: 2},
		runs(6),
		runs(1),
	}
	for _, b := range seq {
		_, _, err := m.RecordBall(b)
		require.NoError(t, err)
	}

	live := snapshot(inn)
	m.Recompute()
	assert.Equal(t, live, snapshot(inn), "replaying the history reproduces the live counters")
}

func TestScorecardFigures(t *testing.T) {
	m := newTestMatch(t, 20)

	seq := []Ball{
		{Runs: 4, BoundaryFour: true},
		{Runs: 6, BoundarySix: true},
		{Extra: ExtraWide, ExtraRuns: 1},
		runs(1),
		{Extra: ExtraLegBye, ExtraRuns: 1},
		dot(),
		{Wicket: &Wicket{Batter: "Bilal", Method: DismissalBowled, NewBatter: "Omar"}},
	}
	for _, b := range seq {
		_, _, err := m.RecordBall(b)
		require.NoError(t, err)
	}

	card := m.BuildScorecard()
	require.Len(t, card.Innings, 1)
	ic := card.Innings[0]

	assert.Equal(t, int64(13), ic.Runs)
	assert.Equal(t, int64(1), ic.Wickets)
	assert.Equal(t, int64(2), ic.ExtrasTotal)

	byName := make(map[string]BattingLine)
	for _, l := range ic.Batting {
		byName[l.Name] = l
	}

	// Asif: boundaries plus the single that crossed him over. The wide
	// credits him nothing.
	asif := byName["Asif"]
	assert.Equal(t, int64(11), asif.Runs)
	assert.Equal(t, int64(1), asif.Fours)
	assert.Equal(t, int64(1), asif.Sixes)
	assert.Equal(t, "not out", asif.HowOut)

	// Bilal faced the leg-bye, the dot and the dismissal without scoring.
	bilal := byName["Bilal"]
	assert.Equal(t, int64(0), bilal.Runs)
	assert.Equal(t, int64(3), bilal.BallsFaced)
	assert.Equal(t, "b Khan", bilal.HowOut)

	omar, ok := byName["Omar"]
	require.True(t, ok, "the incoming batter appears before facing a ball")
	assert.Equal(t, "not out", omar.HowOut)
	assert.Equal(t, int64(0), omar.BallsFaced)

	require.Len(t, ic.Bowling, 1)
	khan := ic.Bowling[0]
	assert.Equal(t, "Khan", khan.Name)
	assert.Equal(t, int64(1), khan.Wickets)
	assert.Equal(t, int64(1), khan.Wides)
	// Wide counts against the bowler; the leg-bye does not.
	assert.Equal(t, int64(12), khan.RunsConceded)
	assert.Equal(t, "1", khan.Overs)

	require.Len(t, ic.Fall, 1)
	assert.Equal(t, "Bilal", ic.Fall[0].Batter)
	assert.Equal(t, "13/1", ic.Fall[0].Score)
	assert.Equal(t, "0.6", ic.Fall[0].Over)
}

func TestMaidenOver(t *testing.T) {
	m := newTestMatch(t, 20)

	for i := 0; i < 6; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}
	require.NoError(t, m.ChangeBowler("Saeed"))
	// Second over concedes only a leg-bye, which is still a maiden.
	_, _, err := m.RecordBall(Ball{Extra: ExtraLegBye, ExtraRuns: 1})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}

	card := m.BuildScorecard()
	byName := make(map[string]BowlingLine)
	for _, l := range card.Innings[0].Bowling {
		byName[l.Name] = l
	}
	assert.Equal(t, int64(1), byName["Khan"].Maidens)
	assert.Equal(t, int64(1), byName["Saeed"].Maidens)
	assert.Equal(t, "1", byName["Khan"].Overs)
}

func TestStateSurvivesJSONRoundTrip(t *testing.T) {
	m := newTestMatch(t, 2)

	seq := []Ball{
		runs(1),
		{Runs: 4, BoundaryFour: true},
		{Extra: ExtraWide, ExtraRuns: 1},
		{Wicket: &Wicket{Batter: "Bilal", Method: DismissalBowled, NewBatter: "Omar"}},
		{Extra: ExtraLegBye, ExtraRuns: 2},
	}
	for _, b := range seq {
		_, _, err := m.RecordBall(b)
		require.NoError(t, err)
	}

	state, err := json.Marshal(m)
	require.NoError(t, err)

	var loaded Match
	require.NoError(t, json.Unmarshal(state, &loaded))
	loaded.Version = m.Version
	loaded.Recompute()

	assert.Equal(t, m.Status, loaded.Status)
	assert.Equal(t, m.TossWinner, loaded.TossWinner)
	require.Len(t, loaded.Innings, 1)
	assert.Equal(t, snapshot(m.CurrentInnings()), snapshot(loaded.CurrentInnings()))

	// The loaded aggregate must accept further scoring.
	_, _, err = loaded.RecordBall(dot())
	require.NoError(t, err)
	assert.Equal(t, m.CurrentInnings().Runs, loaded.CurrentInnings().Runs)
}

func TestCompletedInningsStatusSurvivesRoundTrip(t *testing.T) {
	m := newTestMatch(t, 2)
	_, _, err := m.RecordBall(runs(2))
	require.NoError(t, err)
	require.NoError(t, m.EndInnings())

	state, err := json.Marshal(m)
	require.NoError(t, err)

	var loaded Match
	require.NoError(t, json.Unmarshal(state, &loaded))
	loaded.Recompute()

	assert.Equal(t, MatchInningsBreak, loaded.Status)
	assert.Equal(t, InningsCompleted, loaded.Innings[0].Status)
}
