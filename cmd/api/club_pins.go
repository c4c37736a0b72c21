package main

import (
	"net/http"

	"CricketScoreApi/internal/pins"
	"CricketScoreApi/internal/validator"
)

// RotatePin generates a new pin for a scope and stores its hash. The
// plaintext pin appears in the response once and is never stored.
func (app *application) RotatePin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Scope string `json:"scope"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(validator.PermittedValue(input.Scope, pins.ScopeManager, pins.ScopeScorer), "scope",
		`must be "manager" or "scorer"`)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	plaintext := pins.GeneratePin(8)
	hash, err := pins.Hash(plaintext)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Pins.SetHash(r.Context(), input.Scope, hash)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"scope": input.Scope,
		"pin":   plaintext,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
