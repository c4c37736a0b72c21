package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"CricketScoreApi/internal/engine"
	"CricketScoreApi/internal/validator"
)

func (app *application) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TeamA          string `json:"team_a"`
		TeamB          string `json:"team_b"`
		Venue          string `json:"venue"`
		TotalOvers     int64  `json:"total_overs"`
		PlayersPerSide int64  `json:"players_per_side"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	match, err := engine.NewMatch(input.TeamA, input.TeamB, input.TotalOvers,
		input.PlayersPerSide, input.Venue)
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.models.Matches.Insert(r.Context(), match)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.hubs.Register(match)

	err = app.writeJSON(w, http.StatusCreated, envelope{"match": match}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetMatch(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(hub.StateJSON())
}

func (app *application) GetAllMatches(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	statuses := app.readCSMatchStatus(qs, []engine.MatchStatus{}, v)
	team := app.readString(qs, "team", "")
	page := app.readInt(qs, "page", 1, v)
	pageSize := app.readInt(qs, "page_size", 20, v)

	v.Check(page > 0, "page", "must be greater than zero")
	v.Check(pageSize > 0 && pageSize <= 100, "page_size", "must be between 1 and 100")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	matches, err := app.models.Matches.GetAll(r.Context(), statuses, team, pageSize,
		(page-1)*pageSize)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"matches": matches}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	app.hubs.Release(id)

	err = app.models.Matches.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMatchNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "match successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetScorecard(w http.ResponseWriter, r *http.Request) {
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

	err = app.writeJSON(w, http.StatusOK, envelope{"scorecard": hub.Scorecard()}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) SetToss(w http.ResponseWriter, r *http.Request) {
	id, err := app.readMatchIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Winner   string `json:"winner"`
		Decision string `json:"decision"`
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

	err = hub.SetToss(r.Context(), input.Winner, engine.TossDecision(input.Decision))
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"match": json.RawMessage(hub.StateJSON())}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) AbandonMatch(w http.ResponseWriter, r *http.Request) {
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

	err = hub.Abandon(r.Context())
	if err != nil {
		app.scoringErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"match": json.RawMessage(hub.StateJSON())}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
