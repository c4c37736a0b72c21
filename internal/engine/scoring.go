package engine

import (
	"fmt"
	"strings"
)

// RecordBall validates the delivery against the current state, appends it to
// the innings history and advances all derived counters. Validation happens
// before any mutation: a rejected ball leaves the match untouched. The
// returned events describe what the delivery caused (wicket, over complete,
// innings complete, milestones) for the notification collaborator.
func (m *Match) RecordBall(b Ball) (BallEvent, []Event, error) {
	const op = "record ball"

	inn, err := m.activeInnings(op)
	if err != nil {
		return BallEvent{}, nil, err
	}
	if inn.NeedNewBowler {
		return BallEvent{}, nil, ruleViolation(
			"over %d is complete: a new bowler must be set before the next delivery", inn.Over)
	}
	if err := inn.validateBall(b, m.maxWickets()); err != nil {
		return BallEvent{}, nil, err
	}

	ev := BallEvent{
		Seq:        int64(len(inn.History)) + 1,
		Over:       inn.Over,
		BallInOver: inn.BallsInOver,
		Bowler:     inn.Bowler,
		Striker:    inn.Striker,
		NonStriker: inn.NonStriker,
		Ball:       b,
		Legal:      b.Extra.Legal(),
	}

	inn.History = append(inn.History, ev)
	events := inn.apply(ev, m)

	if inn.Status == InningsCompleted {
		m.settleAfterInnings(inn)
		if m.Status == MatchCompleted {
			events = append(events, Event{
				Kind:    EventMatchComplete,
				MatchID: m.ID,
				Innings: inn.Number,
				Over:    inn.Over,
				Message: m.Result,
			})
		}
	}

	m.Version++
	return ev, events, nil
}

// UndoLastBall removes the most recent delivery and rebuilds the innings by
// replaying the remaining history from the start, rather than reversing the
// delivery incrementally. The restored state is exactly the state before the
// delivery was recorded, including strike, counters and dismissals.
func (m *Match) UndoLastBall() (BallEvent, error) {
	inn, err := m.activeInnings("undo last ball")
	if err != nil {
		return BallEvent{}, err
	}
	if len(inn.History) == 0 {
		return BallEvent{}, ErrEmptyHistory
	}

	popped := inn.History[len(inn.History)-1]
	inn.History = inn.History[:len(inn.History)-1]
	inn.replay(m)

	m.Version++
	return popped, nil
}

// ChangeBowler sets the bowler for the over about to start. It is rejected
// mid-over and for the bowler who bowled the immediately preceding over.
func (m *Match) ChangeBowler(name string) error {
	inn, err := m.activeInnings("change bowler")
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ruleViolation("bowler name must be provided")
	}
	if inn.BallsInOver != 0 {
		return ruleViolation("bowler can only be changed at the start of an over")
	}
	if name == inn.LastOverBowler {
		return ruleViolation("%s bowled the previous over and cannot bowl consecutive overs", name)
	}

	inn.Bowler = name
	inn.NeedNewBowler = false
	m.Version++
	return nil
}

// SwapStrike is the manual override for the pre-ball strike state, for
// situations the engine cannot infer (short runs, umpire correction).
func (m *Match) SwapStrike() error {
	inn, err := m.activeInnings("swap strike")
	if err != nil {
		return err
	}
	inn.Striker, inn.NonStriker = inn.NonStriker, inn.Striker
	m.Version++
	return nil
}

func (inn *Innings) validateBall(b Ball, maxWickets int64) error {
	if b.Runs < 0 || b.Runs > 6 {
		return ruleViolation("runs must be between 0 and 6")
	}
	if b.ExtraRuns < 0 {
		return ruleViolation("extra runs cannot be negative")
	}
	if b.BoundaryFour && b.BoundarySix {
		return ruleViolation("a delivery cannot be both a four and a six")
	}
	if b.BoundaryFour && b.Runs != 4 {
		return ruleViolation("a boundary four must score 4 runs")
	}
	if b.BoundarySix && b.Runs != 6 {
		return ruleViolation("a boundary six must score 6 runs")
	}

	switch b.Extra {
	case ExtraNone:
		if b.ExtraRuns != 0 {
			return ruleViolation("extra runs require an extra type")
		}
	case ExtraWide:
		if b.ExtraRuns < 1 {
			return ruleViolation("a wide concedes at least one extra run")
		}
		if b.Runs != 0 {
			return ruleViolation("runs off a wide are recorded as extra runs")
		}
	case ExtraNoBall:
		if b.ExtraRuns < 1 {
			return ruleViolation("a no-ball concedes at least one extra run")
		}
	case ExtraBye, ExtraLegBye:
		if b.ExtraRuns < 1 {
			return ruleViolation("byes and leg-byes require at least one extra run")
		}
		if b.Runs != 0 {
			return ruleViolation("byes and leg-byes are recorded as extra runs")
		}
	case ExtraPenalty:
		if b.ExtraRuns < 1 {
			return ruleViolation("a penalty requires at least one extra run")
		}
	default:
		return ruleViolation("unknown extra type %q", b.Extra)
	}

	if w := b.Wicket; w != nil {
		if strings.TrimSpace(w.Batter) == "" {
			return ruleViolation("the dismissed batter must be named")
		}
		if w.Method == "" {
			return ruleViolation("a dismissal method is required for a wicket")
		}
		if !w.Method.Known() {
			return ruleViolation("unknown dismissal method %q", w.Method)
		}
		if w.Batter != inn.Striker && w.Batter != inn.NonStriker {
			return ruleViolation("%s is not at the crease", w.Batter)
		}
		if inn.Wickets+1 < maxWickets {
			if strings.TrimSpace(w.NewBatter) == "" {
				return ruleViolation("a new batter must be named for the wicket")
			}
			if inn.dismissed[w.NewBatter] {
				return ruleViolation("%s has already been dismissed", w.NewBatter)
			}
			if w.NewBatter == inn.Striker || w.NewBatter == inn.NonStriker {
				return ruleViolation("%s is already at the crease", w.NewBatter)
			}
		}
	}

	return nil
}

// reset restores the opening configuration of the innings, clearing every
// derived counter. History is left untouched.
func (inn *Innings) reset() {
	inn.Runs = 0
	inn.Wickets = 0
	inn.Over = 0
	inn.BallsInOver = 0
	inn.Extras = Extras{}
	inn.Striker = inn.OpeningStriker
	inn.NonStriker = inn.OpeningNonStriker
	inn.Bowler = inn.OpeningBowler
	inn.NeedNewBowler = false
	inn.LastOverBowler = ""
	inn.Status = InningsInProgress
	inn.dismissed = make(map[string]bool)
	inn.batterRuns = make(map[string]int64)
}

// replay folds the retained history over a fresh innings state.
func (inn *Innings) replay(m *Match) {
	history := inn.History
	inn.reset()
	inn.History = history
	for _, ev := range history {
		inn.apply(ev, m)
	}
}

// apply advances the innings state by one recorded delivery. The event's
// stamped striker/non-striker/bowler are authoritative for the pre-ball
// state, which is what makes replay deterministic across manual strike
// swaps and bowler changes.
func (inn *Innings) apply(ev BallEvent, m *Match) []Event {
	events := make([]Event, 0, 2)

	// The delivery's existence proves a bowler was in place.
	inn.NeedNewBowler = false
	inn.Striker = ev.Striker
	inn.NonStriker = ev.NonStriker
	inn.Bowler = ev.Bowler

	teamBefore := inn.Runs
	inn.Runs += ev.Runs + ev.ExtraRuns

	switch ev.Extra {
	case ExtraWide:
		inn.Extras.Wides += ev.ExtraRuns
	case ExtraNoBall:
		inn.Extras.NoBalls += ev.ExtraRuns
	case ExtraBye:
		inn.Extras.Byes += ev.ExtraRuns
	case ExtraLegBye:
		inn.Extras.LegByes += ev.ExtraRuns
	case ExtraPenalty:
		inn.Extras.Penalties += ev.ExtraRuns
	}

	// Runs off the bat are credited to the striker except on wides, byes
	// and leg-byes.
	if ev.Runs > 0 && (ev.Extra == ExtraNone || ev.Extra == ExtraNoBall) {
		before := inn.batterRuns[ev.Striker]
		after := before + ev.Runs
		inn.batterRuns[ev.Striker] = after
		if after/50 > before/50 {
			events = append(events, inn.milestone(m, fmt.Sprintf("%s reached %d", ev.Striker, (after/50)*50)))
		}
	}
	if inn.Runs/50 > teamBefore/50 {
		events = append(events, inn.milestone(m, fmt.Sprintf("%s reached %d", inn.BattingTeam, (inn.Runs/50)*50)))
	}

	rotate := false
	if ev.Legal {
		if ev.Runs%2 == 1 {
			rotate = true
		}
	} else if ev.Extra == ExtraNoBall && ev.Runs%2 == 1 {
		rotate = true
	}

	if ev.Wicket != nil {
		inn.Wickets++
		inn.dismissed[ev.Wicket.Batter] = true
		events = append(events, Event{
			Kind:    EventWicket,
			MatchID: m.ID,
			Innings: inn.Number,
			Over:    inn.Over,
			Message: fmt.Sprintf("%s out (%s), %d/%d", ev.Wicket.Batter, ev.Wicket.Method, inn.Runs, inn.Wickets),
		})
	}

	if ev.Legal {
		inn.BallsInOver++
		if inn.BallsInOver >= ballsPerOver {
			inn.BallsInOver = 0
			inn.Over++
			rotate = !rotate
			inn.NeedNewBowler = true
			inn.LastOverBowler = ev.Bowler
			events = append(events, Event{
				Kind:    EventOverComplete,
				MatchID: m.ID,
				Innings: inn.Number,
				Over:    inn.Over,
				Message: fmt.Sprintf("over %d complete, %s %d/%d", inn.Over, inn.BattingTeam, inn.Runs, inn.Wickets),
			})
		}
	}

	if rotate {
		inn.Striker, inn.NonStriker = inn.NonStriker, inn.Striker
	}

	// Seat the replacement batter in whichever end the dismissed batter
	// occupies after rotation.
	if ev.Wicket != nil && ev.Wicket.NewBatter != "" {
		if ev.Wicket.Batter == ev.Striker {
			if rotate {
				inn.NonStriker = ev.Wicket.NewBatter
			} else {
				inn.Striker = ev.Wicket.NewBatter
			}
		} else {
			if rotate {
				inn.Striker = ev.Wicket.NewBatter
			} else {
				inn.NonStriker = ev.Wicket.NewBatter
			}
		}
	}

	var reason string
	switch {
	case inn.Wickets >= m.maxWickets():
		reason = "all out"
	case inn.Over >= m.TotalOvers && inn.BallsInOver == 0:
		reason = "overs complete"
	case inn.Target > 0 && inn.Runs >= inn.Target:
		reason = "target reached"
	}
	if reason != "" {
		inn.Status = InningsCompleted
		events = append(events, Event{
			Kind:    EventInningsComplete,
			MatchID: m.ID,
			Innings: inn.Number,
			Over:    inn.Over,
			Message: fmt.Sprintf("innings %d complete (%s): %s %d/%d", inn.Number, reason, inn.BattingTeam, inn.Runs, inn.Wickets),
		})
	}

	return events
}

func (inn *Innings) milestone(m *Match, msg string) Event {
	return Event{
		Kind:    EventMilestone,
		MatchID: m.ID,
		Innings: inn.Number,
		Over:    inn.Over,
		Message: msg,
	}
}
