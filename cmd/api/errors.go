package main

import (
	"errors"
	"fmt"
	"net/http"

	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/engine"
)

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int,
	message any) {
	response := envelope{"error": message}

	err := app.writeJSON(w, status, response, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) logError(r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowedRequest(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request,
	errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "unable to update the record due to an edit conflict, please try again"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	app.errorResponse(w, r, http.StatusTooManyRequests, message)
}

func (app *application) invalidPinResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid or missing pin"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

// scoringErrorResponse maps the engine's error taxonomy onto HTTP statuses:
// transition errors are conflicts with the current state, rule violations
// are unprocessable input.
func (app *application) scoringErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr engine.InvalidTransitionError
	var ruleErr engine.RuleViolationError

	switch {
	case errors.As(err, &transitionErr):
		app.errorResponse(w, r, http.StatusConflict, transitionErr.Error())
	case errors.As(err, &ruleErr):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, ruleErr.Error())
	case errors.Is(err, engine.ErrEmptyHistory):
		app.errorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrMatchNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, data.ErrEditConflict):
		app.editConflictResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
