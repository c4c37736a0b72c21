package main

import (
	"errors"
	"net/http"

	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/validator"
)

func (app *application) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Year  int64 `json:"year"`
		Month int64 `json:"month"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	period := &data.Period{Year: input.Year, Month: input.Month}

	v := validator.New()
	if data.ValidatePeriod(v, period); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Finance.InsertPeriod(r.Context(), period)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"period": period}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) AddEntries(w http.ResponseWriter, r *http.Request) {
	id, err := app.readInt64Param(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Entries []struct {
			Member      string `json:"member"`
			Description string `json:"description"`
			AmountCents int64  `json:"amount_cents"`
			Kind        string `json:"kind"`
		} `json:"entries"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(input.Entries) > 0, "entries", "must contain at least one entry")

	entries := make([]data.Entry, 0, len(input.Entries))
	for _, in := range input.Entries {
		entry := data.Entry{
			PeriodID:    id,
			Member:      in.Member,
			Description: in.Description,
			AmountCents: in.AmountCents,
			Kind:        in.Kind,
		}
		data.ValidateEntry(v, &entry)
		entries = append(entries, entry)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Finance.InsertEntries(r.Context(), id, entries)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"inserted": len(entries)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetEntries(w http.ResponseWriter, r *http.Request) {
	id, err := app.readInt64Param(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	entries, err := app.models.Finance.GetEntries(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"entries": entries}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	year := app.readInt(qs, "year", 0, v)
	month := app.readInt(qs, "month", 0, v)
	v.Check(year > 0, "year", "must be provided")
	v.Check(month >= 1 && month <= 12, "month", "must be between 1 and 12")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	summary, err := app.models.Finance.GetSummary(r.Context(), int64(year), int64(month))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"summary": summary}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
