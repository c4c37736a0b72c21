package matchhub

import (
	"context"

	"CricketScoreApi/internal/engine"
)

type matchEvent interface {
	execute(h *Hub) error
}

type matchEventType int64

const (
	ball matchEventType = iota
	undo
	changeBowler
	swapStrike
	startInnings
	endInnings
	abandon
)

type GenericEvent map[string]any

func (e GenericEvent) parseEvent() (matchEvent, error) {
	eventType, err := checkAndAssertIntFromMap(e, "type")
	if err != nil {
		return nil, ErrEventParseFailed
	}

	switch matchEventType(eventType) {
	case ball:
		return e.parseBallEvent()
	case undo:
		return undoEvent{}, nil
	case changeBowler:
		event := changeBowlerEvent{}
		event.Bowler, err = checkAndAssertStringFromMap(e, "bowler")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil
	case swapStrike:
		return swapStrikeEvent{}, nil
	case startInnings:
		event := startInningsEvent{}
		for key, dest := range map[string]*string{
			"batting":     &event.Batting,
			"bowling":     &event.Bowling,
			"striker":     &event.Striker,
			"non_striker": &event.NonStriker,
			"bowler":      &event.Bowler,
		} {
			*dest, err = checkAndAssertStringFromMap(e, key)
			if err != nil {
				return nil, ErrEventParseFailed
			}
		}
		return event, nil
	case endInnings:
		return endInningsEvent{}, nil
	case abandon:
		return abandonEvent{}, nil
	}

	return nil, ErrEventParseFailed
}

func (e GenericEvent) parseBallEvent() (matchEvent, error) {
	event := ballEvent{}

	if _, ok := e["runs"]; ok {
		runs, err := checkAndAssertIntFromMap(e, "runs")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Ball.Runs = runs
	}
	if _, ok := e["extra"]; ok {
		extra, err := checkAndAssertStringFromMap(e, "extra")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Ball.Extra = engine.ExtraType(extra)
	}
	if _, ok := e["extra_runs"]; ok {
		extraRuns, err := checkAndAssertIntFromMap(e, "extra_runs")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Ball.ExtraRuns = extraRuns
	}
	if _, ok := e["four"]; ok {
		four, err := checkAndAssertBoolFromMap(e, "four")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Ball.BoundaryFour = four
	}
	if _, ok := e["six"]; ok {
		six, err := checkAndAssertBoolFromMap(e, "six")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Ball.BoundarySix = six
	}

	if _, ok := e["wicket_batter"]; ok {
		w := &engine.Wicket{}
		var err error
		w.Batter, err = checkAndAssertStringFromMap(e, "wicket_batter")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		method, err := checkAndAssertStringFromMap(e, "wicket_method")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		w.Method = engine.DismissalType(method)
		w.Fielder, _ = checkAndAssertStringFromMap(e, "wicket_fielder")
		w.NewBatter, _ = checkAndAssertStringFromMap(e, "wicket_new_batter")
		event.Ball.Wicket = w
	}

	return event, nil
}

type ballEvent struct {
	Ball engine.Ball
}

func (e ballEvent) execute(h *Hub) error {
	_, _, err := h.RecordBall(context.Background(), e.Ball)
	return err
}

type undoEvent struct{}

func (e undoEvent) execute(h *Hub) error {
	_, err := h.UndoLastBall(context.Background())
	return err
}

type changeBowlerEvent struct {
	Bowler string
}

func (e changeBowlerEvent) execute(h *Hub) error {
	if e.Bowler == "" {
		return ErrEventValidationFailed
	}
	return h.ChangeBowler(context.Background(), e.Bowler)
}

type swapStrikeEvent struct{}

func (e swapStrikeEvent) execute(h *Hub) error {
	return h.SwapStrike(context.Background())
}

type startInningsEvent struct {
	Batting    string
	Bowling    string
	Striker    string
	NonStriker string
	Bowler     string
}

func (e startInningsEvent) execute(h *Hub) error {
	_, err := h.StartInnings(context.Background(), e.Batting, e.Bowling, e.Striker,
		e.NonStriker, e.Bowler)
	return err
}

type endInningsEvent struct{}

func (e endInningsEvent) execute(h *Hub) error {
	return h.EndInnings(context.Background())
}

type abandonEvent struct{}

func (e abandonEvent) execute(h *Hub) error {
	return h.Abandon(context.Background())
}
