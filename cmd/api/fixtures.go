package main

import (
	"errors"
	"net/http"
	"time"

	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/validator"
)

func (app *application) CreateFixture(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Opponent string    `json:"opponent"`
		Venue    string    `json:"venue"`
		StartsAt time.Time `json:"starts_at"`
		Notes    string    `json:"notes"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	fixture := &data.Fixture{
		Opponent: input.Opponent,
		Venue:    input.Venue,
		StartsAt: input.StartsAt,
		Notes:    input.Notes,
	}

	v := validator.New()
	if data.ValidateFixture(v, fixture); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Fixtures.Insert(r.Context(), fixture)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"fixture": fixture}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetUpcomingFixtures(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	today := time.Now().Truncate(24 * time.Hour)
	within := data.DateRange{
		Start: app.readDate(qs, "from", today, v),
		End:   app.readDate(qs, "to", time.Time{}, v),
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	fixtures, err := app.models.Fixtures.GetUpcoming(r.Context(), within)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"fixtures": fixtures}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeleteFixture(w http.ResponseWriter, r *http.Request) {
	id, err := app.readInt64Param(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Fixtures.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "fixture successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := app.readInt64Param(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		PlayerName string `json:"player_name"`
		Reply      string `json:"reply"`
		DeviceFp   string `json:"device_fp"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	availability := &data.Availability{
		FixtureID:  id,
		PlayerName: input.PlayerName,
		Reply:      input.Reply,
		DeviceFp:   input.DeviceFp,
	}

	v := validator.New()
	if data.ValidateAvailability(v, availability); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Fixtures.SetAvailability(r.Context(), availability)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"availability": availability}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := app.readInt64Param(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	if _, err := app.models.Fixtures.Get(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	summary, err := app.models.Fixtures.GetAvailability(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"availability": summary}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
