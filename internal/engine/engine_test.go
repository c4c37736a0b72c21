package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch(t *testing.T, overs int64) *Match {
	t.Helper()
	m, err := NewMatch("Lions", "Tigers", overs, 11, "Victoria Park")
	require.NoError(t, err)
	require.NoError(t, m.SetToss("Lions", TossBat))
	_, err = m.StartInnings("Lions", "Tigers", "Asif", "Bilal", "Khan")
	require.NoError(t, err)
	return m
}

func dot() Ball { return Ball{} }

func runs(n int64) Ball { return Ball{Runs: n} }

func TestNewMatch_Validation(t *testing.T) {
	tests := []struct {
		name   string
		teamA  string
		teamB  string
		overs  int64
		wantOK bool
	}{
		{name: "valid", teamA: "Lions", teamB: "Tigers", overs: 20, wantOK: true},
		{name: "missing team", teamA: "", teamB: "Tigers", overs: 20},
		{name: "same teams", teamA: "Lions", teamB: "Lions", overs: 20},
		{name: "zero overs", teamA: "Lions", teamB: "Tigers", overs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatch(tt.teamA, tt.teamB, tt.overs, 0, "")
			if !tt.wantOK {
				var rv RuleViolationError
				assert.ErrorAs(t, err, &rv)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MatchScheduled, m.Status)
			assert.Equal(t, int64(DefaultPlayersPerSide), m.PlayersPerSide)
			assert.NotEmpty(t, m.ID)
		})
	}
}

func TestSetToss(t *testing.T) {
	m, err := NewMatch("Lions", "Tigers", 20, 11, "")
	require.NoError(t, err)

	err = m.SetToss("Bears", TossBat)
	var rv RuleViolationError
	assert.ErrorAs(t, err, &rv)

	require.NoError(t, m.SetToss("Tigers", TossBowl))
	assert.Equal(t, MatchInProgress, m.Status)

	err = m.SetToss("Tigers", TossBowl)
	var it InvalidTransitionError
	assert.ErrorAs(t, err, &it)
}

func TestStartInnings_Transitions(t *testing.T) {
	m := newTestMatch(t, 20)

	// A second innings cannot start while the first is in progress.
	_, err := m.StartInnings("Tigers", "Lions", "Omar", "Tariq", "Asif")
	var it InvalidTransitionError
	require.ErrorAs(t, err, &it)

	require.NoError(t, m.EndInnings())
	assert.Equal(t, MatchInningsBreak, m.Status)

	inn2, err := m.StartInnings("Tigers", "Lions", "Omar", "Tariq", "Asif")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inn2.Number)
	assert.Equal(t, int64(1), inn2.Target, "target is first innings total plus one")

	require.NoError(t, m.EndInnings())
	_, err = m.StartInnings("Lions", "Tigers", "Asif", "Bilal", "Khan")
	require.ErrorAs(t, err, &it, "no third innings")
}

func TestRecordBall_RunsTotals(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	balls := []Ball{
		runs(1),
		runs(4),
		{Runs: 4, BoundaryFour: true},
		{Extra: ExtraWide, ExtraRuns: 1},
		{Extra: ExtraNoBall, ExtraRuns: 1, Runs: 2},
		{Extra: ExtraLegBye, ExtraRuns: 2},
	}
	var want int64
	for _, b := range balls {
		_, _, err := m.RecordBall(b)
		require.NoError(t, err)
		want += b.Runs + b.ExtraRuns
	}

	assert.Equal(t, want, inn.Runs, "total equals the sum of event runs plus extras")
	assert.Equal(t, int64(1), inn.Extras.Wides)
	assert.Equal(t, int64(1), inn.Extras.NoBalls)
	assert.Equal(t, int64(2), inn.Extras.LegByes)
}

func TestRecordBall_FourKeepsStrike(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	_, _, err := m.RecordBall(Ball{Runs: 4, BoundaryFour: true})
	require.NoError(t, err)

	assert.Equal(t, int64(4), inn.Runs)
	assert.Equal(t, int64(0), inn.Wickets)
	assert.Equal(t, "Asif", inn.Striker, "even runs keep the striker on strike")
	assert.Equal(t, int64(1), inn.BallsInOver)
}

func TestStrikeRotation(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	_, _, err := m.RecordBall(runs(1))
	require.NoError(t, err)
	assert.Equal(t, "Bilal", inn.Striker, "odd single swaps strike")
	assert.Equal(t, "Asif", inn.NonStriker)

	// Five more legal deliveries complete the over; strike swaps again at
	// the over boundary.
	for i := 0; i < 5; i++ {
		_, _, err = m.RecordBall(dot())
		require.NoError(t, err)
	}
	assert.Equal(t, "Asif", inn.Striker, "over completion swaps strike")
	assert.Equal(t, int64(1), inn.Over)
	assert.Equal(t, int64(0), inn.BallsInOver)
	assert.True(t, inn.NeedNewBowler)
}

func TestNoBallOddRunsRotateStrike(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	_, _, err := m.RecordBall(Ball{Extra: ExtraNoBall, ExtraRuns: 1, Runs: 1})
	require.NoError(t, err)
	assert.Equal(t, "Bilal", inn.Striker)
	assert.Equal(t, int64(0), inn.BallsInOver, "no-ball does not advance the over")
}

func TestOverNeverExceedsSixLegalDeliveries(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	// Interleave extras with legal deliveries; only legal balls count.
	for i := 0; i < 5; i++ {
		_, _, err := m.RecordBall(Ball{Extra: ExtraWide, ExtraRuns: 1})
		require.NoError(t, err)
		_, _, err = m.RecordBall(dot())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(5), inn.BallsInOver)

	_, events, err := m.RecordBall(dot())
	require.NoError(t, err)
	assert.Equal(t, int64(1), inn.Over)
	assert.Equal(t, int64(0), inn.BallsInOver)

	var sawOverComplete bool
	for _, e := range events {
		if e.Kind == EventOverComplete {
			sawOverComplete = true
		}
	}
	assert.True(t, sawOverComplete)

	// Further deliveries are rejected until a new bowler is set.
	_, _, err = m.RecordBall(dot())
	var rv RuleViolationError
	assert.ErrorAs(t, err, &rv)
}

func TestChangeBowler(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	for i := 0; i < 6; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}
	require.True(t, inn.NeedNewBowler)

	err := m.ChangeBowler("Khan")
	var rv RuleViolationError
	require.ErrorAs(t, err, &rv, "no consecutive overs by the same bowler")

	require.NoError(t, m.ChangeBowler("Saeed"))
	assert.Equal(t, "Saeed", inn.Bowler)
	assert.False(t, inn.NeedNewBowler)

	_, _, err = m.RecordBall(dot())
	require.NoError(t, err)

	err = m.ChangeBowler("Khan")
	require.ErrorAs(t, err, &rv, "no bowler change mid-over")
}

func TestWicketOnSixthBall(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	for i := 0; i < 5; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}

	_, events, err := m.RecordBall(Ball{Wicket: &Wicket{
		Batter:    "Asif",
		Method:    DismissalBowled,
		NewBatter: "Omar",
	}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), inn.Wickets)
	assert.Equal(t, int64(1), inn.Over)
	assert.True(t, inn.NeedNewBowler)

	kinds := make([]EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, EventWicket)
	assert.Contains(t, kinds, EventOverComplete)

	// The next operation must be a bowler change.
	_, _, err = m.RecordBall(dot())
	var rv RuleViolationError
	assert.ErrorAs(t, err, &rv)
	require.NoError(t, m.ChangeBowler("Saeed"))
	_, _, err = m.RecordBall(dot())
	require.NoError(t, err)
}

func TestWicketValidation(t *testing.T) {
	m := newTestMatch(t, 20)

	tests := []struct {
		name string
		w    Wicket
	}{
		{name: "missing method", w: Wicket{Batter: "Asif", NewBatter: "Omar"}},
		{name: "missing batter", w: Wicket{Method: DismissalBowled, NewBatter: "Omar"}},
		{name: "not at crease", w: Wicket{Batter: "Omar", Method: DismissalBowled, NewBatter: "Tariq"}},
		{name: "missing new batter", w: Wicket{Batter: "Asif", Method: DismissalBowled}},
		{name: "new batter at crease", w: Wicket{Batter: "Asif", Method: DismissalBowled, NewBatter: "Bilal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.w
			_, _, err := m.RecordBall(Ball{Wicket: &w})
			var rv RuleViolationError
			assert.ErrorAs(t, err, &rv)
			assert.Equal(t, int64(0), m.CurrentInnings().Wickets, "rejected ball must not mutate state")
		})
	}
}

func TestDismissedBatterCannotReturn(t *testing.T) {
	m := newTestMatch(t, 20)

	_, _, err := m.RecordBall(Ball{Wicket: &Wicket{
		Batter:    "Asif",
		Method:    DismissalBowled,
		NewBatter: "Omar",
	}})
	require.NoError(t, err)

	_, _, err = m.RecordBall(Ball{Wicket: &Wicket{
		Batter:    "Omar",
		Method:    DismissalCaught,
		Fielder:   "Riz",
		NewBatter: "Asif",
	}})
	var rv RuleViolationError
	assert.ErrorAs(t, err, &rv, "a dismissed batter cannot bat again")
}

func TestAllOutEndsInnings(t *testing.T) {
	m, err := NewMatch("Lions", "Tigers", 20, 3, "")
	require.NoError(t, err)
	require.NoError(t, m.SetToss("Lions", TossBat))
	_, err = m.StartInnings("Lions", "Tigers", "Asif", "Bilal", "Khan")
	require.NoError(t, err)
	inn := m.CurrentInnings()

	// Three per side: two wickets is all out. The final wicket needs no
	// replacement.
	_, _, err = m.RecordBall(Ball{Wicket: &Wicket{Batter: "Asif", Method: DismissalBowled, NewBatter: "Omar"}})
	require.NoError(t, err)
	_, events, err := m.RecordBall(Ball{Wicket: &Wicket{Batter: "Omar", Method: DismissalLbw}})
	require.NoError(t, err)

	assert.Equal(t, InningsCompleted, inn.Status)
	assert.Equal(t, MatchInningsBreak, m.Status)

	var sawComplete bool
	for _, e := range events {
		if e.Kind == EventInningsComplete {
			sawComplete = true
		}
	}
	assert.True(t, sawComplete)
}

func TestTargetReachedCompletesMatch(t *testing.T) {
	m := newTestMatch(t, 20)

	_, _, err := m.RecordBall(runs(4))
	require.NoError(t, err)
	require.NoError(t, m.EndInnings())

	_, err = m.StartInnings("Tigers", "Lions", "Omar", "Tariq", "Asif")
	require.NoError(t, err)

	_, _, err = m.RecordBall(runs(4))
	require.NoError(t, err)
	_, events, err := m.RecordBall(runs(1))
	require.NoError(t, err)

	assert.Equal(t, MatchCompleted, m.Status)
	assert.Equal(t, "Tigers won by 10 wicket(s)", m.Result)

	var sawMatchComplete bool
	for _, e := range events {
		if e.Kind == EventMatchComplete {
			sawMatchComplete = true
		}
	}
	assert.True(t, sawMatchComplete)

	_, _, err = m.RecordBall(dot())
	var it InvalidTransitionError
	assert.ErrorAs(t, err, &it, "completed match rejects further deliveries")
}

func TestOverLimitEndsInnings(t *testing.T) {
	m := newTestMatch(t, 1)
	inn := m.CurrentInnings()

	for i := 0; i < 6; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}

	assert.Equal(t, InningsCompleted, inn.Status)
	assert.Equal(t, MatchInningsBreak, m.Status)
}

func TestRunsWinResult(t *testing.T) {
	m := newTestMatch(t, 1)

	for i := 0; i < 5; i++ {
		_, _, err := m.RecordBall(runs(4))
		require.NoError(t, err)
	}
	_, _, err := m.RecordBall(dot())
	require.NoError(t, err)

	_, err = m.StartInnings("Tigers", "Lions", "Omar", "Tariq", "Asif")
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, _, err := m.RecordBall(dot())
		require.NoError(t, err)
	}

	assert.Equal(t, MatchCompleted, m.Status)
	assert.Equal(t, "Lions won by 20 run(s)", m.Result)
}

func TestTiedResult(t *testing.T) {
	m := newTestMatch(t, 1)

	_, _, err := m.RecordBall(runs(2))
	require.NoError(t, err)
	require.NoError(t, m.EndInnings())

	_, err = m.StartInnings("Tigers", "Lions", "Omar", "Tariq", "Asif")
	require.NoError(t, err)
	_, _, err = m.RecordBall(runs(2))
	require.NoError(t, err)
	require.NoError(t, m.EndInnings())

	assert.Equal(t, "Match tied", m.Result)
}

func TestSwapStrike(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()

	require.NoError(t, m.SwapStrike())
	assert.Equal(t, "Bilal", inn.Striker)
	assert.Equal(t, "Asif", inn.NonStriker)
}

func TestAbandonMatchIsTerminal(t *testing.T) {
	m := newTestMatch(t, 20)

	require.NoError(t, m.AbandonMatch())
	assert.Equal(t, MatchAbandoned, m.Status)
	assert.Equal(t, "Match Abandoned", m.Result)
	assert.Equal(t, InningsCompleted, m.Innings[0].Status)

	var it InvalidTransitionError
	_, _, err := m.RecordBall(dot())
	assert.ErrorAs(t, err, &it)
	_, err = m.StartInnings("Tigers", "Lions", "Omar", "Tariq", "Asif")
	assert.ErrorAs(t, err, &it)
	assert.ErrorAs(t, m.AbandonMatch(), &it)
}

func TestRejectedBallsDoNotMutate(t *testing.T) {
	m := newTestMatch(t, 20)
	inn := m.CurrentInnings()
	version := m.Version

	bad := []Ball{
		{Runs: 7},
		{Runs: -1},
		{Runs: 4, BoundaryFour: true, BoundarySix: true},
		{Runs: 3, BoundaryFour: true},
		{Extra: ExtraWide},
		{Extra: ExtraWide, ExtraRuns: 1, Runs: 1},
		{Extra: ExtraBye},
		{ExtraRuns: 1},
	}
	for _, b := range bad {
		_, _, err := m.RecordBall(b)
		var rv RuleViolationError
		require.ErrorAs(t, err, &rv)
	}

	assert.Equal(t, int64(0), inn.Runs)
	assert.Equal(t, int64(0), inn.BallsInOver)
	assert.Empty(t, inn.History)
	assert.Equal(t, version, m.Version, "rejected operations do not bump the version")
}

func TestUndoEmptyHistory(t *testing.T) {
	m := newTestMatch(t, 20)

	_, err := m.UndoLastBall()
	assert.True(t, errors.Is(err, ErrEmptyHistory))
}
