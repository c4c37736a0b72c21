package matchhub

import (
	"encoding/json"
	"testing"

	"CricketScoreApi/internal/assert"
	"CricketScoreApi/internal/engine"
)

func parseRaw(t *testing.T, raw string) (matchEvent, error) {
	t.Helper()
	var generic GenericEvent
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return generic.parseEvent()
}

func TestParseBallEvent(t *testing.T) {
	event, err := parseRaw(t, `{"type":0,"runs":4,"four":true}`)
	assert.NilError(t, err)

	ball, ok := event.(ballEvent)
	assert.Equal(t, ok, true)
	assert.Equal(t, ball.Ball.Runs, int64(4))
	assert.Equal(t, ball.Ball.BoundaryFour, true)
	assert.Equal(t, ball.Ball.Extra, engine.ExtraNone)
}

func TestParseBallEventWithWicket(t *testing.T) {
	raw := `{"type":0,"wicket_batter":"Asif","wicket_method":"caught",` +
		`"wicket_fielder":"Riz","wicket_new_batter":"Omar"}`
	event, err := parseRaw(t, raw)
	assert.NilError(t, err)

	ball, ok := event.(ballEvent)
	assert.Equal(t, ok, true)
	if ball.Ball.Wicket == nil {
		t.Fatal("expected wicket to be parsed")
	}
	assert.Equal(t, ball.Ball.Wicket.Batter, "Asif")
	assert.Equal(t, ball.Ball.Wicket.Method, engine.DismissalCaught)
	assert.Equal(t, ball.Ball.Wicket.Fielder, "Riz")
	assert.Equal(t, ball.Ball.Wicket.NewBatter, "Omar")
}

func TestParseExtraEvent(t *testing.T) {
	event, err := parseRaw(t, `{"type":0,"extra":"wide","extra_runs":1}`)
	assert.NilError(t, err)

	ball, ok := event.(ballEvent)
	assert.Equal(t, ok, true)
	assert.Equal(t, ball.Ball.Extra, engine.ExtraWide)
	assert.Equal(t, ball.Ball.ExtraRuns, int64(1))
}

func TestParseChangeBowlerEvent(t *testing.T) {
	event, err := parseRaw(t, `{"type":2,"bowler":"Saeed"}`)
	assert.NilError(t, err)

	cb, ok := event.(changeBowlerEvent)
	assert.Equal(t, ok, true)
	assert.Equal(t, cb.Bowler, "Saeed")
}

func TestParseStartInningsEvent(t *testing.T) {
	raw := `{"type":4,"batting":"Lions","bowling":"Tigers","striker":"Asif",` +
		`"non_striker":"Bilal","bowler":"Khan"}`
	event, err := parseRaw(t, raw)
	assert.NilError(t, err)

	si, ok := event.(startInningsEvent)
	assert.Equal(t, ok, true)
	assert.Equal(t, si.Batting, "Lions")
	assert.Equal(t, si.Bowler, "Khan")
}

func TestParseEventFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Missing Type", raw: `{"runs":4}`},
		{name: "Unknown Type", raw: `{"type":99}`},
		{name: "Bowler Not String", raw: `{"type":2,"bowler":3}`},
		{name: "Missing Bowler", raw: `{"type":2}`},
		{name: "Runs Not Number", raw: `{"type":0,"runs":"four"}`},
		{name: "Incomplete Innings", raw: `{"type":4,"batting":"Lions"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRaw(t, tt.raw)
			assert.Error(t, err)
		})
	}
}
