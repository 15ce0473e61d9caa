package handlers

import (
	"net/http"
	"time"

	"jewelshot/internal/domain"
	"jewelshot/internal/i18n"
	"jewelshot/internal/middleware"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sessionRequest struct {
	AccessToken  string    `json:"accessToken" validate:"required"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type authResponse struct {
	State                stateDTO `json:"state"`
	ConfirmationRequired bool     `json:"confirmationRequired,omitempty"`
	Message              string   `json:"message,omitempty"`
}

func (a *App) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !a.decode(w, r, &req) {
		return
	}
	ctrl := a.controller(r)
	st, err := ctrl.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, authResponse{State: toStateDTO(locale, st, ctrl.Draft().Len())})
}

func (a *App) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !a.decode(w, r, &req) {
		return
	}
	ctrl := a.controller(r)
	res, err := ctrl.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	out := authResponse{
		State:                toStateDTO(locale, res.State, ctrl.Draft().Len()),
		ConfirmationRequired: res.ConfirmationRequired,
	}
	if res.ConfirmationRequired {
		out.Message = i18n.Sprintf(locale, i18n.MsgConfirmEmail)
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.controller(r).ResetPassword(r.Context(), req.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, map[string]string{"message": i18n.Sprintf(locale, i18n.MsgResetSent)})
}

func (a *App) SignOut(w http.ResponseWriter, r *http.Request) {
	ctrl := a.controller(r)
	st, err := ctrl.SignOut(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, authResponse{
		State:   toStateDTO(locale, st, ctrl.Draft().Len()),
		Message: i18n.Sprintf(locale, i18n.MsgSignedOut),
	})
}

// RestoreSession adopts tokens the browser kept from an earlier visit.
func (a *App) RestoreSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !a.decode(w, r, &req) {
		return
	}
	ctrl := a.controller(r)
	st, err := ctrl.Restore(r.Context(), &domain.Session{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, authResponse{State: toStateDTO(locale, st, ctrl.Draft().Len())})
}
