package engine

import (
	"fmt"
	"math"
)

// Scorecard is the full derived card for a match, rebuilt from the ball
// history on demand. It carries no behaviour.
type Scorecard struct {
	MatchID string        `json:"match_id"`
	TeamA   string        `json:"team_a"`
	TeamB   string        `json:"team_b"`
	Venue   string        `json:"venue,omitempty"`
	Status  MatchStatus   `json:"status"`
	Result  string        `json:"result,omitempty"`
	Innings []InningsCard `json:"innings"`
}

type InningsCard struct {
	Number      int64          `json:"number"`
	BattingTeam string         `json:"batting_team"`
	BowlingTeam string         `json:"bowling_team"`
	Runs        int64          `json:"runs"`
	Wickets     int64          `json:"wickets"`
	Overs       string         `json:"overs"`
	Target      int64          `json:"target,omitempty"`
	Extras      Extras         `json:"extras"`
	ExtrasTotal int64          `json:"extras_total"`
	Batting     []BattingLine  `json:"batting"`
	Bowling     []BowlingLine  `json:"bowling"`
	Fall        []FallOfWicket `json:"fall_of_wickets"`
}

type BattingLine struct {
	Name       string  `json:"name"`
	Runs       int64   `json:"runs"`
	BallsFaced int64   `json:"balls_faced"`
	Fours      int64   `json:"fours"`
	Sixes      int64   `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	HowOut     string  `json:"how_out"`
}

type BowlingLine struct {
	Name         string  `json:"name"`
	Overs        string  `json:"overs"`
	Maidens      int64   `json:"maidens"`
	RunsConceded int64   `json:"runs_conceded"`
	Wickets      int64   `json:"wickets"`
	Wides        int64   `json:"wides"`
	NoBalls      int64   `json:"no_balls"`
	Economy      float64 `json:"economy"`
}

type FallOfWicket struct {
	Wicket int64  `json:"wicket"`
	Batter string `json:"batter"`
	Score  string `json:"score"`
	Over   string `json:"over"`
}

// BuildScorecard derives batting and bowling figures, extras and fall of
// wickets for every innings from the recorded ball histories.
func (m *Match) BuildScorecard() Scorecard {
	card := Scorecard{
		MatchID: m.ID,
		TeamA:   m.TeamA,
		TeamB:   m.TeamB,
		Venue:   m.Venue,
		Status:  m.Status,
		Result:  m.Result,
		Innings: make([]InningsCard, 0, len(m.Innings)),
	}
	for _, inn := range m.Innings {
		card.Innings = append(card.Innings, inn.buildCard())
	}
	return card
}

type battingTally struct {
	runs, balls, fours, sixes int64
	howOut                    string
}

type bowlingTally struct {
	balls, runs, wickets, wides, noBalls, maidens int64
}

func (inn *Innings) buildCard() InningsCard {
	batting := make(map[string]*battingTally)
	bowling := make(map[string]*bowlingTally)
	var batOrder, bowlOrder []string
	var fall []FallOfWicket

	bat := func(name string) *battingTally {
		t, ok := batting[name]
		if !ok {
			t = &battingTally{howOut: "not out"}
			batting[name] = t
			batOrder = append(batOrder, name)
		}
		return t
	}
	bowl := func(name string) *bowlingTally {
		t, ok := bowling[name]
		if !ok {
			t = &bowlingTally{}
			bowling[name] = t
			bowlOrder = append(bowlOrder, name)
		}
		return t
	}

	// Per (over, bowler) concessions for maiden detection.
	type overKey struct {
		over   int64
		bowler string
	}
	overRuns := make(map[overKey]int64)
	overBalls := make(map[overKey]int64)

	var running int64
	for _, ev := range inn.History {
		running += ev.Runs + ev.ExtraRuns

		bt := bat(ev.Striker)
		if ev.Legal || ev.Extra == ExtraNoBall {
			bt.balls++
		}
		if ev.Extra == ExtraNone || ev.Extra == ExtraNoBall {
			bt.runs += ev.Runs
		}
		if ev.BoundaryFour {
			bt.fours++
		}
		if ev.BoundarySix {
			bt.sixes++
		}

		bw := bowl(ev.Bowler)
		key := overKey{over: ev.Over, bowler: ev.Bowler}
		if ev.Legal {
			bw.balls++
			overBalls[key]++
		}
		switch ev.Extra {
		case ExtraWide:
			bw.wides++
			bw.runs += ev.ExtraRuns
			overRuns[key] += ev.ExtraRuns
		case ExtraNoBall:
			bw.noBalls++
			bw.runs += ev.ExtraRuns + ev.Runs
			overRuns[key] += ev.ExtraRuns + ev.Runs
		case ExtraBye, ExtraLegBye, ExtraPenalty:
			// not conceded by the bowler
		default:
			bw.runs += ev.Runs
			overRuns[key] += ev.Runs
		}

		if w := ev.Wicket; w != nil {
			out := bat(w.Batter)
			out.howOut = dismissalLine(ev)
			if w.Method.CreditedToBowler() {
				bw.wickets++
			}
			fall = append(fall, FallOfWicket{
				Wicket: int64(len(fall)) + 1,
				Batter: w.Batter,
				Score:  fmt.Sprintf("%d/%d", running, len(fall)+1),
				Over:   fmt.Sprintf("%d.%d", ev.Over, ev.BallInOver+boolToInt64(ev.Legal)),
			})
		}
	}

	// The not-out pair appears on the card even before facing a ball.
	if inn.Striker != "" {
		bat(inn.Striker)
	}
	if inn.NonStriker != "" {
		bat(inn.NonStriker)
	}

	for key, runs := range overRuns {
		if runs == 0 && overBalls[key] == ballsPerOver {
			bowling[key.bowler].maidens++
		}
	}
	// An over with no concession never enters overRuns; count those too.
	for key, balls := range overBalls {
		if _, seen := overRuns[key]; !seen && balls == ballsPerOver {
			bowling[key.bowler].maidens++
		}
	}

	battingLines := make([]BattingLine, 0, len(batOrder))
	for _, name := range batOrder {
		t := batting[name]
		var sr float64
		if t.balls > 0 {
			sr = round2(float64(t.runs) / float64(t.balls) * 100)
		}
		battingLines = append(battingLines, BattingLine{
			Name:       name,
			Runs:       t.runs,
			BallsFaced: t.balls,
			Fours:      t.fours,
			Sixes:      t.sixes,
			StrikeRate: sr,
			HowOut:     t.howOut,
		})
	}

	bowlingLines := make([]BowlingLine, 0, len(bowlOrder))
	for _, name := range bowlOrder {
		t := bowling[name]
		overs := fmt.Sprintf("%d", t.balls/ballsPerOver)
		if rem := t.balls % ballsPerOver; rem != 0 {
			overs = fmt.Sprintf("%d.%d", t.balls/ballsPerOver, rem)
		}
		var econ float64
		if t.balls > 0 {
			econ = round2(float64(t.runs) / (float64(t.balls) / ballsPerOver))
		}
		bowlingLines = append(bowlingLines, BowlingLine{
			Name:         name,
			Overs:        overs,
			Maidens:      t.maidens,
			RunsConceded: t.runs,
			Wickets:      t.wickets,
			Wides:        t.wides,
			NoBalls:      t.noBalls,
			Economy:      econ,
		})
	}

	return InningsCard{
		Number:      inn.Number,
		BattingTeam: inn.BattingTeam,
		BowlingTeam: inn.BowlingTeam,
		Runs:        inn.Runs,
		Wickets:     inn.Wickets,
		Overs:       inn.OversString(),
		Target:      inn.Target,
		Extras:      inn.Extras,
		ExtrasTotal: inn.Extras.Total(),
		Batting:     battingLines,
		Bowling:     bowlingLines,
		Fall:        fall,
	}
}

// dismissalLine renders the traditional scorecard dismissal notation.
func dismissalLine(ev BallEvent) string {
	w := ev.Wicket
	switch w.Method {
	case DismissalBowled:
		return fmt.Sprintf("b %s", ev.Bowler)
	case DismissalLbw:
		return fmt.Sprintf("lbw b %s", ev.Bowler)
	case DismissalCaught:
		if w.Fielder != "" {
			return fmt.Sprintf("c %s b %s", w.Fielder, ev.Bowler)
		}
		return fmt.Sprintf("c & b %s", ev.Bowler)
	case DismissalStumped:
		return fmt.Sprintf("st %s b %s", w.Fielder, ev.Bowler)
	case DismissalHitWicket:
		return fmt.Sprintf("hit wicket b %s", ev.Bowler)
	case DismissalRunOut:
		if w.Fielder != "" {
			return fmt.Sprintf("run out (%s)", w.Fielder)
		}
		return "run out"
	default:
		return string(w.Method)
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
