package engine

import (
	"encoding/json"
	"errors"
)

const (
	// DefaultPlayersPerSide is used when a match is created without an
	// explicit roster size. An innings closes at PlayersPerSide-1 wickets.
	DefaultPlayersPerSide = 11

	ballsPerOver = 6
)

type MatchStatus int64

const (
	MatchScheduled MatchStatus = iota
	MatchInProgress
	MatchInningsBreak
	MatchCompleted
	MatchAbandoned
)

func (s MatchStatus) String() string {
	switch s {
	case MatchScheduled:
		return "scheduled"
	case MatchInProgress:
		return "in_progress"
	case MatchInningsBreak:
		return "innings_break"
	case MatchCompleted:
		return "completed"
	case MatchAbandoned:
		return "abandoned"
	default:
		return ""
	}
}

func (s MatchStatus) MarshalJSON() ([]byte, error) {
	str := s.String()
	if str == "" {
		return nil, errors.New("invalid match status")
	}
	return []byte(`"` + str + `"`), nil
}

func (s *MatchStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseMatchStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseMatchStatus maps the stored string form back to a MatchStatus.
func ParseMatchStatus(s string) (MatchStatus, error) {
	switch s {
	case "scheduled":
		return MatchScheduled, nil
	case "in_progress":
		return MatchInProgress, nil
	case "innings_break":
		return MatchInningsBreak, nil
	case "completed":
		return MatchCompleted, nil
	case "abandoned":
		return MatchAbandoned, nil
	default:
		return 0, errors.New("invalid match status")
	}
}

type InningsStatus int64

const (
	InningsNotStarted InningsStatus = iota
	InningsInProgress
	InningsCompleted
)

func (s InningsStatus) String() string {
	switch s {
	case InningsNotStarted:
		return "not_started"
	case InningsInProgress:
		return "in_progress"
	case InningsCompleted:
		return "completed"
	default:
		return ""
	}
}

func (s InningsStatus) MarshalJSON() ([]byte, error) {
	str := s.String()
	if str == "" {
		return nil, errors.New("invalid innings status")
	}
	return []byte(`"` + str + `"`), nil
}

func (s *InningsStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseInningsStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseInningsStatus(s string) (InningsStatus, error) {
	switch s {
	case "not_started":
		return InningsNotStarted, nil
	case "in_progress":
		return InningsInProgress, nil
	case "completed":
		return InningsCompleted, nil
	default:
		return 0, errors.New("invalid innings status")
	}
}

type TossDecision string

const (
	TossBat  TossDecision = "bat"
	TossBowl TossDecision = "bowl"
)

type ExtraType string

const (
	ExtraNone    ExtraType = ""
	ExtraWide    ExtraType = "wide"
	ExtraNoBall  ExtraType = "no_ball"
	ExtraBye     ExtraType = "bye"
	ExtraLegBye  ExtraType = "leg_bye"
	ExtraPenalty ExtraType = "penalty"
)

// Legal reports whether a delivery with this extra type counts toward the
// six legal balls of an over. Wides and no-balls must be re-bowled.
func (e ExtraType) Legal() bool {
	return e != ExtraWide && e != ExtraNoBall
}

type DismissalType string

const (
	DismissalBowled      DismissalType = "bowled"
	DismissalCaught      DismissalType = "caught"
	DismissalLbw         DismissalType = "lbw"
	DismissalRunOut      DismissalType = "run_out"
	DismissalStumped     DismissalType = "stumped"
	DismissalHitWicket   DismissalType = "hit_wicket"
	DismissalRetiredHurt DismissalType = "retired_hurt"
	DismissalObstructing DismissalType = "obstructing_the_field"
	DismissalTimedOut    DismissalType = "timed_out"
	DismissalHandledBall DismissalType = "handled_the_ball"
)

// Known reports whether d is one of the recognised dismissal methods.
func (d DismissalType) Known() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLbw, DismissalRunOut, DismissalStumped,
		DismissalHitWicket, DismissalRetiredHurt, DismissalObstructing, DismissalTimedOut,
		DismissalHandledBall:
		return true
	default:
		return false
	}
}

// CreditedToBowler reports whether the dismissal counts in the bowler's
// wicket column.
func (d DismissalType) CreditedToBowler() bool {
	switch d {
	case DismissalRunOut, DismissalRetiredHurt, DismissalObstructing,
		DismissalTimedOut, DismissalHandledBall:
		return false
	default:
		return true
	}
}

// Extras holds the running extras breakdown for one innings.
type Extras struct {
	Wides     int64 `json:"wides"`
	NoBalls   int64 `json:"no_balls"`
	Byes      int64 `json:"byes"`
	LegByes   int64 `json:"leg_byes"`
	Penalties int64 `json:"penalties"`
}

func (e Extras) Total() int64 {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes + e.Penalties
}

// Wicket describes the dismissal portion of a delivery.
type Wicket struct {
	Batter    string        `json:"batter"`
	Method    DismissalType `json:"method"`
	Fielder   string        `json:"fielder,omitempty"`
	NewBatter string        `json:"new_batter,omitempty"`
}

// Ball is the caller-supplied portion of a delivery.
type Ball struct {
	Runs         int64     `json:"runs"`
	Extra        ExtraType `json:"extra,omitempty"`
	ExtraRuns    int64     `json:"extra_runs,omitempty"`
	BoundaryFour bool      `json:"boundary_four,omitempty"`
	BoundarySix  bool      `json:"boundary_six,omitempty"`
	Wicket       *Wicket   `json:"wicket,omitempty"`
}

// BallEvent is a Ball stamped with the innings state it was bowled under.
// Events are immutable once recorded; undo removes the newest event and the
// remaining history is replayed.
type BallEvent struct {
	Seq        int64  `json:"seq"`
	Over       int64  `json:"over"`
	BallInOver int64  `json:"ball_in_over"`
	Bowler     string `json:"bowler"`
	Striker    string `json:"striker"`
	NonStriker string `json:"non_striker"`
	Ball
	Legal bool `json:"legal"`
}

type EventKind string

const (
	EventWicket          EventKind = "wicket"
	EventOverComplete    EventKind = "over_complete"
	EventInningsComplete EventKind = "innings_complete"
	EventMatchComplete   EventKind = "match_complete"
	EventMilestone       EventKind = "milestone"
)

// Event is a plain data record emitted for the notification collaborator.
// Delivery is fire-and-forget; the engine only produces them.
type Event struct {
	Kind    EventKind `json:"kind"`
	MatchID string    `json:"match_id"`
	Innings int64     `json:"innings"`
	Over    int64     `json:"over"`
	Message string    `json:"message"`
}
