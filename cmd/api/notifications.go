package main

import (
	"errors"
	"net/http"

	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/validator"
)

func (app *application) Subscribe(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Endpoint string `json:"endpoint"`
		P256dh   string `json:"p256dh"`
		Auth     string `json:"auth"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sub := &data.Subscription{
		Endpoint: input.Endpoint,
		P256dh:   input.P256dh,
		Auth:     input.Auth,
	}

	v := validator.New()
	if data.ValidateSubscription(v, sub); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Subscriptions.Insert(r.Context(), sub)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"subscription": sub}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Endpoint string `json:"endpoint"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Subscriptions.Delete(r.Context(), input.Endpoint)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "subscription removed"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetPushPublicKey serves the VAPID public key browsers need before they
// can register a push subscription.
func (app *application) GetPushPublicKey(w http.ResponseWriter, r *http.Request) {
	if app.config.push.vapidPublicKey == "" {
		app.notFoundResponse(w, r)
		return
	}

	err := app.writeJSON(w, http.StatusOK, envelope{
		"public_key": app.config.push.vapidPublicKey,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := app.models.Subscriptions.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"subscriptions": subs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
