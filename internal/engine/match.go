package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Match is the authoritative aggregate for one match's live state. It is
// mutated only through its operation set and is not safe for concurrent
// mutation: callers must apply at most one mutating operation at a time per
// match (the hub's apply path and the API layer both take a per-match lock).
// Distinct matches may be scored concurrently.
type Match struct {
	ID             string       `json:"id"`
	TeamA          string       `json:"team_a"`
	TeamB          string       `json:"team_b"`
	Venue          string       `json:"venue,omitempty"`
	TotalOvers     int64        `json:"total_overs"`
	PlayersPerSide int64        `json:"players_per_side"`
	TossWinner     string       `json:"toss_winner,omitempty"`
	TossDecision   TossDecision `json:"toss_decision,omitempty"`
	Status         MatchStatus  `json:"status"`
	Result         string       `json:"result,omitempty"`
	Innings        []*Innings   `json:"innings"`
	CreatedAt      time.Time    `json:"created_at"`
	Version        int64        `json:"-"`
}

// Innings holds one team's batting turn. All counter fields are derived
// from History plus the opening configuration and are recomputed wholesale
// on undo and load.
type Innings struct {
	Number      int64         `json:"number"`
	BattingTeam string        `json:"batting_team"`
	BowlingTeam string        `json:"bowling_team"`
	Status      InningsStatus `json:"status"`
	Target      int64         `json:"target,omitempty"`
	Runs        int64         `json:"runs"`
	Wickets     int64         `json:"wickets"`
	Over        int64         `json:"over"`
	BallsInOver int64         `json:"balls_in_over"`
	Extras      Extras        `json:"extras"`
	Striker     string        `json:"striker"`
	NonStriker  string        `json:"non_striker"`
	Bowler      string        `json:"bowler"`

	// NeedNewBowler is raised when an over completes and cleared by
	// ChangeBowler; while raised, RecordBall is rejected.
	NeedNewBowler  bool   `json:"need_new_bowler"`
	LastOverBowler string `json:"last_over_bowler,omitempty"`

	OpeningStriker    string `json:"opening_striker"`
	OpeningNonStriker string `json:"opening_non_striker"`
	OpeningBowler     string `json:"opening_bowler"`

	History []BallEvent `json:"history"`

	dismissed  map[string]bool
	batterRuns map[string]int64
}

// OversString renders the progress of the innings as "O.B".
func (inn *Innings) OversString() string {
	if inn.BallsInOver == 0 {
		return fmt.Sprintf("%d", inn.Over)
	}
	return fmt.Sprintf("%d.%d", inn.Over, inn.BallsInOver)
}

// Dismissed reports whether the named batter has been given out in this
// innings.
func (inn *Innings) Dismissed(batter string) bool {
	return inn.dismissed[batter]
}

// NewMatch creates a match in the scheduled state, awaiting the toss.
func NewMatch(teamA, teamB string, totalOvers, playersPerSide int64, venue string) (*Match, error) {
	teamA = strings.TrimSpace(teamA)
	teamB = strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return nil, ruleViolation("both team names must be provided")
	}
	if teamA == teamB {
		return nil, ruleViolation("teams must be distinct")
	}
	if totalOvers < 1 {
		return nil, ruleViolation("total overs must be at least 1")
	}
	if playersPerSide == 0 {
		playersPerSide = DefaultPlayersPerSide
	}
	if playersPerSide < 2 {
		return nil, ruleViolation("players per side must be at least 2")
	}

	return &Match{
		ID:             uuid.NewString(),
		TeamA:          teamA,
		TeamB:          teamB,
		Venue:          strings.TrimSpace(venue),
		TotalOvers:     totalOvers,
		PlayersPerSide: playersPerSide,
		Status:         MatchScheduled,
		Innings:        []*Innings{},
		CreatedAt:      time.Now().UTC(),
		Version:        1,
	}, nil
}

// maxWickets is the all-out threshold: roster size minus one.
func (m *Match) maxWickets() int64 {
	return m.PlayersPerSide - 1
}

func (m *Match) hasTeam(name string) bool {
	return name == m.TeamA || name == m.TeamB
}

// CurrentInnings returns the innings currently in progress, or nil.
func (m *Match) CurrentInnings() *Innings {
	for _, inn := range m.Innings {
		if inn.Status == InningsInProgress {
			return inn
		}
	}
	return nil
}

func (m *Match) activeInnings(op string) (*Innings, error) {
	if m.Status != MatchInProgress {
		return nil, invalidTransition(op, fmt.Sprintf("match is %s", m.Status))
	}
	inn := m.CurrentInnings()
	if inn == nil {
		return nil, invalidTransition(op, "no innings in progress")
	}
	return inn, nil
}

// SetToss records the toss and moves the match into progress.
func (m *Match) SetToss(winner string, decision TossDecision) error {
	if m.Status != MatchScheduled {
		return invalidTransition("set toss", fmt.Sprintf("match is %s", m.Status))
	}
	winner = strings.TrimSpace(winner)
	if !m.hasTeam(winner) {
		return ruleViolation("toss winner must be one of the two teams")
	}
	if decision != TossBat && decision != TossBowl {
		return ruleViolation(`toss decision must be "bat" or "bowl"`)
	}

	m.TossWinner = winner
	m.TossDecision = decision
	m.Status = MatchInProgress
	m.Version++
	return nil
}

// StartInnings opens a new innings. It fails while a prior innings is still
// in progress and once both innings exist. The second innings is assigned a
// target of the first innings total plus one.
func (m *Match) StartInnings(batting, bowling, striker, nonStriker, bowler string) (*Innings, error) {
	const op = "start innings"

	if m.Status != MatchInProgress && m.Status != MatchInningsBreak {
		return nil, invalidTransition(op, fmt.Sprintf("match is %s", m.Status))
	}
	if m.CurrentInnings() != nil {
		return nil, invalidTransition(op, "an innings is already in progress")
	}
	if len(m.Innings) >= 2 {
		return nil, invalidTransition(op, "both innings have been played")
	}

	batting = strings.TrimSpace(batting)
	bowling = strings.TrimSpace(bowling)
	striker = strings.TrimSpace(striker)
	nonStriker = strings.TrimSpace(nonStriker)
	bowler = strings.TrimSpace(bowler)

	if !m.hasTeam(batting) || !m.hasTeam(bowling) {
		return nil, ruleViolation("batting and bowling teams must be the match teams")
	}
	if batting == bowling {
		return nil, ruleViolation("batting and bowling teams must differ")
	}
	if striker == "" || nonStriker == "" || bowler == "" {
		return nil, ruleViolation("opening striker, non-striker and bowler must be provided")
	}
	if striker == nonStriker {
		return nil, ruleViolation("striker and non-striker must be distinct")
	}

	var target int64
	if len(m.Innings) == 1 {
		target = m.Innings[0].Runs + 1
	}

	inn := &Innings{
		Number:            int64(len(m.Innings)) + 1,
		BattingTeam:       batting,
		BowlingTeam:       bowling,
		Status:            InningsInProgress,
		Target:            target,
		OpeningStriker:    striker,
		OpeningNonStriker: nonStriker,
		OpeningBowler:     bowler,
		History:           []BallEvent{},
	}
	inn.reset()

	m.Innings = append(m.Innings, inn)
	m.Status = MatchInProgress
	m.Version++
	return inn, nil
}

// EndInnings closes the current innings without a further delivery
// (declaration, forfeiture, or scorer decision).
func (m *Match) EndInnings() error {
	inn, err := m.activeInnings("end innings")
	if err != nil {
		return err
	}
	inn.Status = InningsCompleted
	m.settleAfterInnings(inn)
	m.Version++
	return nil
}

// AbandonMatch is a terminal transition: it freezes all mutable state and
// rejects every further scoring operation.
func (m *Match) AbandonMatch() error {
	switch m.Status {
	case MatchCompleted:
		return invalidTransition("abandon match", "match is completed")
	case MatchAbandoned:
		return invalidTransition("abandon match", "match is already abandoned")
	}

	if inn := m.CurrentInnings(); inn != nil {
		inn.Status = InningsCompleted
	}
	m.Status = MatchAbandoned
	m.Result = "Match Abandoned"
	m.Version++
	return nil
}

// settleAfterInnings applies the match-level transition after an innings
// closes: break after the first, completion and a result after the second.
func (m *Match) settleAfterInnings(inn *Innings) {
	if inn.Number == 1 {
		m.Status = MatchInningsBreak
		return
	}
	m.Status = MatchCompleted
	m.Result = m.calculateResult(inn)
}

func (m *Match) calculateResult(second *Innings) string {
	first := m.Innings[0]
	switch {
	case second.Target > 0 && second.Runs >= second.Target:
		remaining := m.maxWickets() - second.Wickets
		return fmt.Sprintf("%s won by %d wicket(s)", second.BattingTeam, remaining)
	case second.Runs == first.Runs:
		return "Match tied"
	default:
		return fmt.Sprintf("%s won by %d run(s)", first.BattingTeam, first.Runs-second.Runs)
	}
}

// Recompute replays every innings history from scratch, rebuilding all
// derived counters. Used after loading a match from storage.
func (m *Match) Recompute() {
	for _, inn := range m.Innings {
		status := inn.Status
		inn.replay(m)
		// Replay re-derives completion from the counters; a manually
		// ended or abandoned innings keeps its stored terminal status.
		if status == InningsCompleted {
			inn.Status = InningsCompleted
		}
	}
}
