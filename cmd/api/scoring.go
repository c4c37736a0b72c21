package main

import (
	"encoding/json"
	"net/http"

	"CricketScoreApi/internal/engine"
	"CricketScoreApi/internal/matchhub"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (app *application) StartInnings(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Batting    string `json:"batting"`
		Bowling    string `json:"bowling"`
		Striker    string `json:"striker"`
		NonStriker string `json:"non_striker"`
		Bowler     string `json:"bowler"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	innings, err := hub.StartInnings(r.Context(), input.Batting, input.Bowling, input.Striker,
		input.NonStriker, input.Bowler)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"innings": innings}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) RecordBall(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Runs      int64          `json:"runs"`
		Extra     string         `json:"extra"`
		ExtraRuns int64          `json:"extra_runs"`
		Four      bool           `json:"four"`
		Six       bool           `json:"six"`
		Wicket    *engine.Wicket `json:"wicket"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	ball := engine.Ball{
		Runs:         input.Runs,
		Extra:        engine.ExtraType(input.Extra),
		ExtraRuns:    input.ExtraRuns,
		BoundaryFour: input.Four,
		BoundarySix:  input.Six,
		Wicket:       input.Wicket,
	}

	ev, events, err := hub.RecordBall(r.Context(), ball)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	app.notifyMatchCompletion(hub)

	err = app.writeJSON(w, http.StatusCreated, envelope{
		"ball":   ev,
		"events": events,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) UndoBall(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	ev, err := hub.UndoLastBall(r.Context())
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"undone": ev,
		"match":  json.RawMessage(hub.StateJSON()),
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ChangeBowler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Bowler string `json:"bowler"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = hub.ChangeBowler(r.Context(), input.Bowler)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"match": json.RawMessage(hub.StateJSON())}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) SwapStrike(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = hub.SwapStrike(r.Context())
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"match": json.RawMessage(hub.StateJSON())}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) EndInnings(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = hub.EndInnings(r.Context())
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	app.notifyMatchCompletion(hub)

	err = app.writeJSON(w, http.StatusOK, envelope{"match": json.RawMessage(hub.StateJSON())}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ScoreMatch upgrades a scorer connection onto the match hub. Pin checks
// happen in the route middleware, before the upgrade.
func (app *application) ScoreMatch(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logError(r, err)
		return
	}

	hub.JoinKeeper(conn)
}

// WatchMatch upgrades a read-only connection onto the match hub.
func (app *application) WatchMatch(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	hub, err := app.hubs.Get(r.Context(), id)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logError(r, err)
		return
	}

	hub.JoinViewer(conn)
}

// notifyMatchCompletion mails the result summary to the club list once a
// match reaches a terminal result.
func (app *application) notifyMatchCompletion(hub *matchhub.Hub) {
	if hub.Status() != engine.MatchCompleted {
		return
	}
	if app.config.smtp.resultsTo == "" {
		return
	}

	card := hub.Scorecard()
	app.backgroundTask(func() {
		err := app.mailer.Send(app.config.smtp.resultsTo, "match_result.tmpl", envelope{
			"TeamA":   card.TeamA,
			"TeamB":   card.TeamB,
			"Venue":   card.Venue,
			"Result":  card.Result,
			"Innings": card.Innings,
		})
		if err != nil {
			app.logger.PrintError(err, map[string]string{"match_id": card.MatchID})
		}
	})
}
