package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jewelshot/internal/domain"
	"jewelshot/internal/i18n"
	"jewelshot/internal/imagegen"
	"jewelshot/internal/infra"
	"jewelshot/internal/middleware"
	"jewelshot/internal/viewstate"
)

type App struct {
	Config    *infra.Config
	Clients   *Clients
	Stats     *imagegen.Stats
	Logger    zerolog.Logger
	StartedAt time.Time

	validate *validator.Validate
}

func NewApp(cfg *infra.Config, clients *Clients, stats *imagegen.Stats, logger zerolog.Logger) *App {
	if cfg == nil {
		cfg = &infra.Config{}
	}
	if stats == nil {
		stats = &imagegen.Stats{}
	}
	return &App{
		Config:    cfg,
		Clients:   clients,
		Stats:     stats,
		Logger:    logger,
		StartedAt: time.Now(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// fail maps err onto a status and a localized message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("client_id", middleware.ClientIDFromContext(r.Context())).
			Msg("request failed")
	}
	a.error(w, status, i18n.KeyFor(err), i18n.ErrorMessage(locale, err))
}

func statusFor(err error) int {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		if authErr.Status >= 400 && authErr.Status < 500 {
			return authErr.Status
		}
		return http.StatusUnauthorized
	}
	if errors.Is(err, domain.ErrClosed) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindConfiguration:
		return http.StatusServiceUnavailable
	case domain.KindNetwork, domain.KindNoUsableResult:
		return http.StatusBadGateway
	case domain.KindTransition:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and validates it.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	locale := middleware.LocaleFromContext(r.Context())
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, i18n.MsgInvalidPayload, i18n.Sprintf(locale, i18n.MsgInvalidPayload))
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		a.error(w, http.StatusUnprocessableEntity, i18n.MsgInvalidPayload, i18n.Sprintf(locale, i18n.MsgInvalidPayload))
		return false
	}
	return true
}

// controller returns the controller of the calling client.
func (a *App) controller(r *http.Request) *viewstate.Controller {
	id := middleware.ClientIDFromContext(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	return a.Clients.Get(id)
}

// RateLimited answers requests rejected by the rate limiter.
func (a *App) RateLimited(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	a.error(w, http.StatusTooManyRequests, i18n.MsgRateLimited, i18n.Sprintf(locale, i18n.MsgRateLimited))
}

// NotFound answers unknown API routes.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.fail(w, r, domain.ErrNotFound)
}
